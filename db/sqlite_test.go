package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordAndListModelLoads(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer store.Close()

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.RecordModelLoad(ModelLoad{
		ModelType: "linear_regression",
		Path:      "models/insurance.json",
		Checksum:  "abc",
		Version:   "2024.1",
		Status:    StatusLoaded,
		LoadedAt:  base,
	}))
	require.NoError(t, store.RecordModelLoad(ModelLoad{
		ModelType: "linear_regression",
		Path:      "models/insurance.json",
		Status:    StatusRejected,
		Error:     "model expects 5 features, encoder produces 6",
		LoadedAt:  base.Add(time.Minute),
	}))

	loads, err := store.RecentModelLoads(10)
	require.NoError(t, err)
	require.Len(t, loads, 2)
	require.Equal(t, StatusRejected, loads[0].Status)
	require.Contains(t, loads[0].Error, "5 features")
	require.Equal(t, "2024.1", loads[1].Version)
	require.True(t, base.Equal(loads[1].LoadedAt))

	loads, err = store.RecentModelLoads(1)
	require.NoError(t, err)
	require.Len(t, loads, 1)
}

func TestNilStore(t *testing.T) {
	var store *Store
	require.Error(t, store.RecordModelLoad(ModelLoad{}))
	require.NoError(t, store.Close())
}
