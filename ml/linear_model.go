package ml

import (
	"encoding/json"
	"errors"
	"os"
)

const TypeLinearRegression = "linear_regression"

type LinearRegression struct {
	meta         Metadata
	intercept    float64
	coefficients []float64
}

type linearArtifact struct {
	Metadata
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

func NewLinearRegression(meta Metadata, intercept float64, coefficients []float64) *LinearRegression {
	meta.ModelType = TypeLinearRegression
	return &LinearRegression{
		meta:         meta,
		intercept:    intercept,
		coefficients: append([]float64(nil), coefficients...),
	}
}

func (lr *LinearRegression) Predict(features []float64) (float64, error) {
	if len(lr.coefficients) == 0 {
		return 0, ErrNotLoaded
	}
	if err := checkWidth(features, len(lr.coefficients)); err != nil {
		return 0, err
	}
	sum := lr.intercept
	for i, c := range lr.coefficients {
		sum += c * features[i]
	}
	return sum, nil
}

func (lr *LinearRegression) InputWidth() int {
	return len(lr.coefficients)
}

func (lr *LinearRegression) Metadata() Metadata {
	return lr.meta
}

func (lr *LinearRegression) Save(path string) error {
	if len(lr.coefficients) == 0 {
		return ErrNotLoaded
	}
	payload, err := json.MarshalIndent(linearArtifact{
		Metadata:     lr.meta,
		Intercept:    lr.intercept,
		Coefficients: lr.coefficients,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (lr *LinearRegression) decode(payload []byte) error {
	var artifact linearArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return err
	}
	if len(artifact.Coefficients) == 0 {
		return errors.New("linear model has no coefficients")
	}
	if len(artifact.FeatureNames) > 0 && len(artifact.FeatureNames) != len(artifact.Coefficients) {
		return errors.New("feature_names and coefficients length mismatch")
	}
	lr.meta = artifact.Metadata
	lr.intercept = artifact.Intercept
	lr.coefficients = artifact.Coefficients
	return nil
}
