package ml

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LoadModel reads and decodes one artifact without caching.
func LoadModel(modelType, path string) (Regressor, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeModel(modelType, payload)
}

func DecodeModel(modelType string, payload []byte) (Regressor, error) {
	sum := sha256.Sum256(payload)
	checksum := hex.EncodeToString(sum[:])

	switch modelType {
	case TypeLinearRegression:
		model := &LinearRegression{}
		if err := model.decode(payload); err != nil {
			return nil, fmt.Errorf("decode %s: %w", modelType, err)
		}
		if err := checkDeclaredType(model.meta.ModelType, modelType); err != nil {
			return nil, err
		}
		model.meta.ModelType = modelType
		model.meta.Checksum = checksum
		return model, nil
	case TypeRegressionTree:
		model := &RegressionTree{}
		if err := model.decode(payload); err != nil {
			return nil, fmt.Errorf("decode %s: %w", modelType, err)
		}
		if err := checkDeclaredType(model.meta.ModelType, modelType); err != nil {
			return nil, err
		}
		model.meta.ModelType = modelType
		model.meta.Checksum = checksum
		return model, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, modelType)
	}
}

func checkDeclaredType(declared, want string) error {
	if declared != "" && declared != want {
		return fmt.Errorf("artifact declares model_type %q, configured %q", declared, want)
	}
	return nil
}

type cacheKey struct {
	modelType string
	checksum  string
}

// Loader decodes artifacts and keeps recently decoded ones keyed by content
// hash, so rewriting an unchanged file does not produce a new model.
type Loader struct {
	cache *lru.Cache[cacheKey, Regressor]
}

func NewLoader(size int) (*Loader, error) {
	if size <= 0 {
		size = 1
	}
	cache, err := lru.New[cacheKey, Regressor](size)
	if err != nil {
		return nil, err
	}
	return &Loader{cache: cache}, nil
}

func (l *Loader) Load(modelType, path string) (Regressor, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(payload)
	key := cacheKey{modelType: modelType, checksum: hex.EncodeToString(sum[:])}
	if model, ok := l.cache.Get(key); ok {
		return model, nil
	}
	model, err := DecodeModel(modelType, payload)
	if err != nil {
		return nil, err
	}
	l.cache.Add(key, model)
	return model, nil
}

func (l *Loader) Cached() int {
	return l.cache.Len()
}
