package ml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLinearRegressionPredict(t *testing.T) {
	model := NewLinearRegression(Metadata{Version: "test"}, 100, []float64{2, 10})

	got, err := model.Predict([]float64{3, 1})
	require.NoError(t, err)
	require.InDelta(t, 116.0, got, 1e-9)
	require.Equal(t, 2, model.InputWidth())
	require.Equal(t, TypeLinearRegression, model.Metadata().ModelType)
}

func TestLinearRegressionShapeMismatch(t *testing.T) {
	model := NewLinearRegression(Metadata{}, 0, []float64{1, 1, 1})

	_, err := model.Predict([]float64{1, 2})
	var shapeErr *ShapeError
	require.True(t, errors.As(err, &shapeErr))
	require.Equal(t, 3, shapeErr.Want)
	require.Equal(t, 2, shapeErr.Got)
}

func TestLinearRegressionUnloaded(t *testing.T) {
	model := &LinearRegression{}
	_, err := model.Predict([]float64{1})
	require.ErrorIs(t, err, ErrNotLoaded)
}

func TestLinearRegressionSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linear.json")
	meta := Metadata{
		Version:      "2024.1",
		Encoding:     "v1",
		FeatureNames: []string{"a", "b"},
		SmokerCodes:  map[string]int{"No": 1, "Yes": 0},
	}
	require.NoError(t, NewLinearRegression(meta, -5, []float64{1.5, 2.5}).Save(path))

	loaded, err := LoadModel(TypeLinearRegression, path)
	require.NoError(t, err)
	got, err := loaded.Predict([]float64{2, 2})
	require.NoError(t, err)
	require.InDelta(t, 3.0, got, 1e-9)

	loadedMeta := loaded.Metadata()
	require.Equal(t, "2024.1", loadedMeta.Version)
	require.Equal(t, map[string]int{"No": 1, "Yes": 0}, loadedMeta.SmokerCodes)
	require.Len(t, loadedMeta.Checksum, 64)
}

func TestLinearRegressionRejectsMismatchedNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	payload := `{"model_type":"linear_regression","feature_names":["a"],"intercept":0,"coefficients":[1,2]}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	_, err := LoadModel(TypeLinearRegression, path)
	require.Error(t, err)
}
