package insurance

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPredictorSlot(t *testing.T) {
	slot := NewPredictorSlot()
	_, err := slot.Get()
	require.ErrorIs(t, err, ErrModelUnavailable)

	slot.Fail(errors.New("open trainedmodel.json: no such file"))
	_, err = slot.Get()
	require.ErrorIs(t, err, ErrModelUnavailable)
	require.Contains(t, err.Error(), "no such file")

	p, err := NewPredictor(&fakeModel{width: FeatureCount}, EncodingV1)
	require.NoError(t, err)
	slot.Set(p)
	got, err := slot.Get()
	require.NoError(t, err)
	require.Same(t, p, got)

	slot.Fail(errors.New("corrupt reload"))
	got, err = slot.Get()
	require.NoError(t, err)
	require.Same(t, p, got)
}
