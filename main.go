package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"insurecost/config"
	"insurecost/db"
	qhttp "insurecost/http"
	"insurecost/insurance"
	"insurecost/logging"
	"insurecost/ml"
)

func main() {
	// 1. Load config
	cfg, err := config.Load(config.Locate("config.yaml"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	encoding, err := effectiveEncoding(cfg)
	if err != nil {
		logger.Fatal("invalid encoding", zap.Error(err))
	}

	// 2. Initialize database
	var store *db.Store
	if cfg.Database.Path != "" {
		store, err = db.Open(cfg.Database.Path)
		if err != nil {
			logger.Fatal("failed to initialize database", zap.Error(err))
		}
		logger.Info("database initialized", zap.String("path", cfg.Database.Path))
	}

	// 3. Load the model once; a failure leaves the form blocked, not the process dead
	loader, err := ml.NewLoader(cfg.Model.CacheSize)
	if err != nil {
		logger.Fatal("failed to create model loader", zap.Error(err))
	}
	slot := insurance.NewPredictorSlot()
	reload := newReloader(cfg, loader, encoding, slot, store, logger)
	reload(cfg.Model.Path)

	var watcher *ml.Watcher
	if cfg.Model.Watch {
		watcher, err = ml.NewWatcher(cfg.Model.Path, cfg.Model.Debounce, reload, logger)
		if err == nil {
			err = watcher.Watch()
		}
		if err != nil {
			logger.Fatal("failed to watch model artifact", zap.Error(err))
		}
	}

	// 4. Start HTTP server
	var loads qhttp.ModelLoadLister
	if store != nil {
		loads = store
	}
	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		AllowedOrigins: cfg.Http.AllowedOrigins,
		MaxBodyBytes:   cfg.Http.MaxBodyBytes,
	}, qhttp.NewHandlers(slot, loads, logger), logger)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 5. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	err = server.Stop()
	if watcher != nil {
		err = multierr.Append(err, watcher.Close())
	}
	err = multierr.Append(err, store.Close())
	if err != nil {
		logger.Error("shutdown", zap.Error(err))
	}

	logger.Info("exiting")
}

func effectiveEncoding(cfg *config.Config) (insurance.Encoding, error) {
	base, err := insurance.LookupEncoding(cfg.Encoding.Version)
	if err != nil {
		return insurance.Encoding{}, err
	}
	return base.WithSmokerCodes(*cfg.Encoding.SmokerNo, *cfg.Encoding.SmokerYes)
}

// newReloader returns the function that (re)loads the artifact at path into
// slot and records the attempt.
func newReloader(cfg *config.Config, loader *ml.Loader, encoding insurance.Encoding,
	slot *insurance.PredictorSlot, store *db.Store, logger *zap.Logger) func(string) {
	return func(path string) {
		record := db.ModelLoad{ModelType: cfg.Model.Type, Path: path}

		predictor, err := loadPredictor(loader, cfg.Model.Type, path, encoding)
		if err != nil {
			slot.Fail(err)
			record.Status = db.StatusRejected
			record.Error = err.Error()
			logger.Error("model unavailable", zap.String("path", path), zap.Error(err))
		} else {
			slot.Set(predictor)
			meta := predictor.Metadata()
			record.Status = db.StatusLoaded
			record.Checksum = meta.Checksum
			record.Version = meta.Version
			logger.Info("model loaded",
				zap.String("path", path),
				zap.String("type", meta.ModelType),
				zap.String("version", meta.Version),
				zap.String("checksum", meta.Checksum),
			)
		}

		if store != nil {
			if err := store.RecordModelLoad(record); err != nil {
				logger.Warn("record model load", zap.Error(err))
			}
		}
	}
}

func loadPredictor(loader *ml.Loader, modelType, path string, encoding insurance.Encoding) (*insurance.Predictor, error) {
	model, err := loader.Load(modelType, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", insurance.ErrModelUnavailable, err)
	}
	return insurance.NewPredictor(model, encoding)
}
