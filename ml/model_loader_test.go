package ml

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeLinear(t *testing.T, path string, intercept float64) {
	t.Helper()
	require.NoError(t, NewLinearRegression(Metadata{}, intercept, []float64{1}).Save(path))
}

func TestLoadModelErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadModel(TypeLinearRegression, filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, os.WriteFile(corrupt, []byte("\x80\x04pickle"), 0o600))
	_, err = LoadModel(TypeLinearRegression, corrupt)
	require.Error(t, err)

	good := filepath.Join(dir, "good.json")
	writeLinear(t, good, 1)
	_, err = LoadModel("random_forest", good)
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = LoadModel(TypeRegressionTree, good)
	require.Error(t, err)
}

func TestLoaderCachesByContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	writeLinear(t, path, 10)

	loader, err := NewLoader(2)
	require.NoError(t, err)

	first, err := loader.Load(TypeLinearRegression, path)
	require.NoError(t, err)
	writeLinear(t, path, 10)
	second, err := loader.Load(TypeLinearRegression, path)
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, 1, loader.Cached())

	writeLinear(t, path, 20)
	third, err := loader.Load(TypeLinearRegression, path)
	require.NoError(t, err)
	require.NotSame(t, first, third)
	got, err := third.Predict([]float64{0})
	require.NoError(t, err)
	require.Equal(t, 20.0, got)
}
