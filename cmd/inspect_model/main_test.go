package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"insurecost/insurance"
	"insurecost/ml"
)

func linearModel() ml.Regressor {
	return ml.NewLinearRegression(ml.Metadata{Version: "t", FeatureNames: insurance.FeatureNames()},
		-12000, []float64{260, -130, 330, 475, -23800, -350})
}

func TestReportConsistentConvention(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, report(&out, linearModel(), insurance.EncodingV1))
	require.Contains(t, out.String(), "input width:   6")
	require.Contains(t, out.String(), "smoker=Yes")
	require.NotContains(t, out.String(), "WARNING")
}

func TestReportFlagsInvertedConvention(t *testing.T) {
	flipped, err := insurance.EncodingV1.WithSmokerCodes(0, 1)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, report(&out, linearModel(), flipped))
	require.Contains(t, out.String(), "WARNING")
}

func TestReportRejectsWrongWidth(t *testing.T) {
	var out bytes.Buffer
	err := report(&out, ml.NewLinearRegression(ml.Metadata{}, 0, []float64{1, 2}), insurance.EncodingV1)
	require.ErrorIs(t, err, insurance.ErrModelUnavailable)
}
