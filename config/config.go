package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
		MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	} `yaml:"http"`
	Model struct {
		Type      string        `yaml:"type"`
		Path      string        `yaml:"path"`
		Watch     bool          `yaml:"watch"`
		Debounce  time.Duration `yaml:"debounce"`
		CacheSize int           `yaml:"cache_size"`
	} `yaml:"model"`
	// Smoker codes have no default: they must be checked against the
	// convention the model was trained with and written down here.
	Encoding struct {
		Version   string `yaml:"version"`
		SmokerNo  *int   `yaml:"smoker_no"`
		SmokerYes *int   `yaml:"smoker_yes"`
	} `yaml:"encoding"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"log"`
}

// Locate returns config.yaml from the working directory, falling back to the
// parent so the binary can also be started from a subdirectory.
func Locate(name string) string {
	if _, err := os.Stat(name); errors.Is(err, os.ErrNotExist) {
		return filepath.Join("..", name)
	}
	return name
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	config.applyDefaults()
	config.resolvePaths(filepath.Dir(path))
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Http.Port == 0 {
		c.Http.Port = 8080
	}
	if c.Http.Timeout == 0 {
		c.Http.Timeout = 30 * time.Second
	}
	if len(c.Http.AllowedOrigins) == 0 {
		c.Http.AllowedOrigins = []string{"*"}
	}
	if c.Http.MaxBodyBytes == 0 {
		c.Http.MaxBodyBytes = 1 << 16
	}
	if c.Model.Debounce == 0 {
		c.Model.Debounce = 500 * time.Millisecond
	}
	if c.Model.CacheSize == 0 {
		c.Model.CacheSize = 4
	}
	if c.Encoding.Version == "" {
		c.Encoding.Version = "v1"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 50
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 28
	}
}

// resolvePaths makes relative file paths relative to the config file.
func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{&c.Model.Path, &c.Database.Path, &c.Log.File} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port %d out of range", c.Http.Port))
	}
	if c.Model.Type == "" {
		errs = append(errs, errors.New("model.type is required"))
	}
	if c.Model.Path == "" {
		errs = append(errs, errors.New("model.path is required"))
	}
	switch {
	case c.Encoding.SmokerNo == nil || c.Encoding.SmokerYes == nil:
		errs = append(errs, errors.New("encoding.smoker_no and encoding.smoker_yes must be set explicitly"))
	case *c.Encoding.SmokerNo == *c.Encoding.SmokerYes:
		errs = append(errs, errors.New("encoding.smoker_no and encoding.smoker_yes must differ"))
	case !isBinary(*c.Encoding.SmokerNo) || !isBinary(*c.Encoding.SmokerYes):
		errs = append(errs, errors.New("encoding smoker codes must be 0 or 1"))
	}
	return errors.Join(errs...)
}

func isBinary(v int) bool {
	return v == 0 || v == 1
}
