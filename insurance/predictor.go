package insurance

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	"insurecost/ml"
)

var (
	ErrModelUnavailable = errors.New("model unavailable")
	ErrPrediction       = errors.New("prediction failed")
)

// Estimate is the outcome of one prediction.
type Estimate struct {
	Cost         float64       `json:"cost"`
	Formatted    string        `json:"formatted"`
	Features     FeatureVector `json:"features"`
	ModelVersion string        `json:"model_version,omitempty"`
}

// Predictor pairs a loaded model with the encoding it was trained against.
// It is immutable once built.
type Predictor struct {
	model    ml.Regressor
	encoding Encoding
	meta     ml.Metadata
}

// NewPredictor refuses models whose declared input shape or encoding does not
// match enc.
func NewPredictor(model ml.Regressor, enc Encoding) (*Predictor, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: no model", ErrModelUnavailable)
	}
	if err := enc.Check(); err != nil {
		return nil, err
	}
	meta := model.Metadata()
	if width := model.InputWidth(); width != FeatureCount {
		return nil, fmt.Errorf("%w: model expects %d features, encoder produces %d",
			ErrModelUnavailable, width, FeatureCount)
	}
	if len(meta.FeatureNames) > 0 && !slices.Equal(meta.FeatureNames, FeatureNames()) {
		return nil, fmt.Errorf("%w: model feature order %v, encoder order %v",
			ErrModelUnavailable, meta.FeatureNames, FeatureNames())
	}
	if meta.Encoding != "" && meta.Encoding != enc.Version {
		return nil, fmt.Errorf("%w: model trained with encoding %q, configured %q",
			ErrModelUnavailable, meta.Encoding, enc.Version)
	}
	if err := checkSmokerCodes(meta.SmokerCodes, enc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	return &Predictor{
		model:    model,
		encoding: enc.clone(),
		meta:     meta,
	}, nil
}

func checkSmokerCodes(declared map[string]int, enc Encoding) error {
	if len(declared) == 0 {
		return nil
	}
	for _, v := range SmokerValues() {
		code, ok := declared[string(v)]
		if !ok {
			return fmt.Errorf("model smoker_codes missing %q", v)
		}
		if code != enc.Smoker[v] {
			return fmt.Errorf("model encodes smoker=%s as %d, configured %d", v, code, enc.Smoker[v])
		}
	}
	return nil
}

// Predict validates and encodes req, runs the model once and formats the
// result. All failures wrap ErrPrediction.
func (p *Predictor) Predict(req PredictionRequest) (Estimate, error) {
	features, err := p.encoding.Encode(req)
	if err != nil {
		return Estimate{}, fmt.Errorf("%w: %w", ErrPrediction, err)
	}
	cost, err := p.model.Predict(features[:])
	if err != nil {
		return Estimate{}, fmt.Errorf("%w: %w", ErrPrediction, err)
	}
	if math.IsNaN(cost) || math.IsInf(cost, 0) {
		return Estimate{}, fmt.Errorf("%w: model returned %s", ErrPrediction, strconv.FormatFloat(cost, 'g', -1, 64))
	}
	return Estimate{
		Cost:         cost,
		Formatted:    FormatCost(cost),
		Features:     features,
		ModelVersion: p.meta.Version,
	}, nil
}

func (p *Predictor) Metadata() ml.Metadata {
	return p.meta
}

func (p *Predictor) Encoding() Encoding {
	return p.encoding.clone()
}
