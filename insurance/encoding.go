package insurance

import (
	"fmt"
)

const FeatureCount = 6

// FeatureVector is ordered [age, sex, bmi, children, smoker, region]. The order
// and codes must match the convention the model was trained with; a mismatch
// yields plausible but wrong estimates rather than an error.
type FeatureVector [FeatureCount]float64

func FeatureNames() []string {
	return []string{"age", "sex", "bmi", "children", "smoker", "region"}
}

// Encoding maps categorical values to the integer codes used at training time.
type Encoding struct {
	Version string
	Sex     map[Sex]int
	Smoker  map[Smoker]int
	Region  map[Region]int
}

// EncodingV1 is the table the bundled insurance models were trained with.
// Smoker is inverted (No=1, Yes=0).
var EncodingV1 = Encoding{
	Version: "v1",
	Sex: map[Sex]int{
		Male:   0,
		Female: 1,
	},
	Smoker: map[Smoker]int{
		SmokerNo:  1,
		SmokerYes: 0,
	},
	Region: map[Region]int{
		Southwest: 0,
		Northwest: 1,
		Southeast: 2,
		Northeast: 3,
	},
}

// LookupEncoding returns a copy of a known table by version.
func LookupEncoding(version string) (Encoding, error) {
	switch version {
	case "", EncodingV1.Version:
		return EncodingV1.clone(), nil
	default:
		return Encoding{}, fmt.Errorf("unknown encoding version %q", version)
	}
}

// WithSmokerCodes returns a copy of e using the given smoker codes.
func (e Encoding) WithSmokerCodes(no, yes int) (Encoding, error) {
	out := e.clone()
	out.Smoker = map[Smoker]int{SmokerNo: no, SmokerYes: yes}
	if err := out.Check(); err != nil {
		return Encoding{}, err
	}
	return out, nil
}

// Check verifies every enum value has exactly one code and codes within a
// field never collide.
func (e Encoding) Check() error {
	if err := checkTable("sex", e.Sex, Sexes()); err != nil {
		return err
	}
	if err := checkTable("smoker", e.Smoker, SmokerValues()); err != nil {
		return err
	}
	return checkTable("region", e.Region, Regions())
}

func checkTable[K ~string](field string, table map[K]int, values []K) error {
	if len(table) != len(values) {
		return fmt.Errorf("encoding %s: expected %d codes, got %d", field, len(values), len(table))
	}
	seen := make(map[int]K, len(values))
	for _, v := range values {
		code, ok := table[v]
		if !ok {
			return fmt.Errorf("encoding %s: no code for %q", field, v)
		}
		if prev, dup := seen[code]; dup {
			return fmt.Errorf("encoding %s: %q and %q share code %d", field, prev, v, code)
		}
		seen[code] = v
	}
	return nil
}

// Encode validates req and assembles its feature vector.
func (e Encoding) Encode(req PredictionRequest) (FeatureVector, error) {
	if err := req.Validate(); err != nil {
		return FeatureVector{}, err
	}
	sex, ok := e.Sex[req.Sex]
	if !ok {
		return FeatureVector{}, fmt.Errorf("no sex code for %q", req.Sex)
	}
	smoker, ok := e.Smoker[req.Smoker]
	if !ok {
		return FeatureVector{}, fmt.Errorf("no smoker code for %q", req.Smoker)
	}
	region, ok := e.Region[req.Region]
	if !ok {
		return FeatureVector{}, fmt.Errorf("no region code for %q", req.Region)
	}
	return FeatureVector{
		float64(req.Age),
		float64(sex),
		req.BMI,
		float64(req.Children),
		float64(smoker),
		float64(region),
	}, nil
}

func (e Encoding) clone() Encoding {
	out := Encoding{
		Version: e.Version,
		Sex:     make(map[Sex]int, len(e.Sex)),
		Smoker:  make(map[Smoker]int, len(e.Smoker)),
		Region:  make(map[Region]int, len(e.Region)),
	}
	for k, v := range e.Sex {
		out.Sex[k] = v
	}
	for k, v := range e.Smoker {
		out.Smoker[k] = v
	}
	for k, v := range e.Region {
		out.Region[k] = v
	}
	return out
}
