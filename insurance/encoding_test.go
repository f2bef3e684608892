package insurance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodingV1IsTotalAndDistinct(t *testing.T) {
	require.NoError(t, EncodingV1.Check())

	seen := map[int]Sex{}
	for _, s := range Sexes() {
		code, ok := EncodingV1.Sex[s]
		require.True(t, ok, "missing code for %s", s)
		_, dup := seen[code]
		require.False(t, dup, "sex code %d reused", code)
		seen[code] = s
	}
	require.Len(t, EncodingV1.Sex, len(Sexes()))

	codes := map[int]bool{}
	for _, r := range Regions() {
		codes[EncodingV1.Region[r]] = true
	}
	require.Equal(t, map[int]bool{0: true, 1: true, 2: true, 3: true}, codes)
}

func TestEncodeReferenceVector(t *testing.T) {
	req := PredictionRequest{Age: 30, Sex: Male, BMI: 25.0, Children: 0, Smoker: SmokerNo, Region: Southwest}

	vec, err := EncodingV1.Encode(req)
	require.NoError(t, err)
	require.Equal(t, FeatureVector{30, 0, 25.0, 0, 1, 0}, vec)

	req.Smoker = SmokerYes
	vec, err = EncodingV1.Encode(req)
	require.NoError(t, err)
	require.Equal(t, 0.0, vec[4])
}

func TestEncodeRegionSelectsDistinctCodes(t *testing.T) {
	want := map[Region]float64{Southwest: 0, Northwest: 1, Southeast: 2, Northeast: 3}
	for _, r := range Regions() {
		req := DefaultRequest()
		req.Region = r
		for i := 0; i < 2; i++ {
			vec, err := EncodingV1.Encode(req)
			require.NoError(t, err)
			require.Equal(t, want[r], vec[5], "region %s", r)
		}
	}
}

func TestEncodeRejectsInvalidRequest(t *testing.T) {
	req := DefaultRequest()
	req.Region = "Midwest"
	_, err := EncodingV1.Encode(req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestWithSmokerCodes(t *testing.T) {
	flipped, err := EncodingV1.WithSmokerCodes(0, 1)
	require.NoError(t, err)
	require.Equal(t, 1, flipped.Smoker[SmokerYes])
	require.Equal(t, 0, EncodingV1.Smoker[SmokerYes], "base table must not change")

	_, err = EncodingV1.WithSmokerCodes(1, 1)
	require.Error(t, err)
}

func TestLookupEncoding(t *testing.T) {
	enc, err := LookupEncoding("v1")
	require.NoError(t, err)
	require.Equal(t, "v1", enc.Version)

	_, err = LookupEncoding("v9")
	require.Error(t, err)
}

func TestCheckDetectsCollisions(t *testing.T) {
	enc := EncodingV1.clone()
	enc.Region[Northeast] = 0
	require.Error(t, enc.Check())

	enc = EncodingV1.clone()
	delete(enc.Sex, Female)
	require.Error(t, enc.Check())
}
