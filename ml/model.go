package ml

import (
	"errors"
	"fmt"
)

// Regressor is a loaded, immutable model artifact exposing one inference call.
type Regressor interface {
	Predict(features []float64) (float64, error)
	InputWidth() int
	Metadata() Metadata
}

// Metadata is the self-description carried in an artifact file. Every field
// except ModelType is optional; Checksum is filled in by the loader.
type Metadata struct {
	ModelType    string         `json:"model_type"`
	Version      string         `json:"version,omitempty"`
	Encoding     string         `json:"encoding,omitempty"`
	FeatureNames []string       `json:"feature_names,omitempty"`
	SmokerCodes  map[string]int `json:"smoker_codes,omitempty"`
	Checksum     string         `json:"checksum,omitempty"`
}

var (
	ErrNotLoaded       = errors.New("model not loaded")
	ErrUnsupportedType = errors.New("unsupported model type")
)

// ShapeError reports an input vector whose length differs from what the
// artifact was trained on.
type ShapeError struct {
	Want int
	Got  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("feature vector has %d values, model expects %d", e.Got, e.Want)
}

func checkWidth(features []float64, want int) error {
	if len(features) != want {
		return &ShapeError{Want: want, Got: len(features)}
	}
	return nil
}
