package insurance

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Sex string

const (
	Male   Sex = "Male"
	Female Sex = "Female"
)

type Smoker string

const (
	SmokerYes Smoker = "Yes"
	SmokerNo  Smoker = "No"
)

type Region string

const (
	Southwest Region = "Southwest"
	Southeast Region = "Southeast"
	Northwest Region = "Northwest"
	Northeast Region = "Northeast"
)

// Domain limits shared by the form and the validator tags below.
const (
	MinAge      = 18
	MaxAge      = 100
	MinBMI      = 10.0
	MaxBMI      = 50.0
	MaxChildren = 5
)

func Sexes() []Sex           { return []Sex{Male, Female} }
func SmokerValues() []Smoker { return []Smoker{SmokerYes, SmokerNo} }
func Regions() []Region      { return []Region{Southwest, Southeast, Northwest, Northeast} }

// PredictionRequest is built from one form submission and discarded after use.
type PredictionRequest struct {
	Age      int     `json:"age" validate:"gte=18,lte=100"`
	Sex      Sex     `json:"sex" validate:"oneof=Male Female"`
	BMI      float64 `json:"bmi" validate:"gte=10,lte=50"`
	Children int     `json:"children" validate:"gte=0,lte=5"`
	Smoker   Smoker  `json:"smoker" validate:"oneof=Yes No"`
	Region   Region  `json:"region" validate:"oneof=Southwest Southeast Northwest Northeast"`
}

// DefaultRequest mirrors the form's initial state.
func DefaultRequest() PredictionRequest {
	return PredictionRequest{
		Age:      30,
		Sex:      Male,
		BMI:      25.0,
		Children: 0,
		Smoker:   SmokerNo,
		Region:   Southwest,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// Validate checks every field against its declared domain.
func (r PredictionRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fieldName(fe.StructField()),
			Message: describe(fe),
		})
	}
	return out
}

func fieldName(structField string) string {
	switch structField {
	case "BMI":
		return "bmi"
	default:
		return strings.ToLower(structField)
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("must be at least %s, got %v", fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("must be at most %s, got %v", fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}
