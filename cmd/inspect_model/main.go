package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"insurecost/insurance"
	"insurecost/ml"
)

func main() {
	modelType := flag.String("type", ml.TypeLinearRegression, "model type (linear_regression, regression_tree)")
	modelPath := flag.String("model", "./models/insurance_linear.json", "model artifact path")
	smokerNo := flag.Int("smoker_no", 1, "code used for smoker=No")
	smokerYes := flag.Int("smoker_yes", 0, "code used for smoker=Yes")
	flag.Parse()

	model, err := ml.LoadModel(*modelType, *modelPath)
	if err != nil {
		log.Fatalf("failed to load model: %v", err)
	}
	encoding, err := insurance.EncodingV1.WithSmokerCodes(*smokerNo, *smokerYes)
	if err != nil {
		log.Fatalf("invalid smoker codes: %v", err)
	}
	if err := report(os.Stdout, model, encoding); err != nil {
		log.Fatal(err)
	}
}

// report prints the artifact's self-description and the estimate for a
// reference person as a non-smoker and a smoker. Smokers cost far more in any
// sane insurance model; if they come out cheaper the smoker codes are inverted.
func report(w io.Writer, model ml.Regressor, encoding insurance.Encoding) error {
	meta := model.Metadata()
	fmt.Fprintf(w, "type:          %s\n", meta.ModelType)
	fmt.Fprintf(w, "version:       %s\n", orDash(meta.Version))
	fmt.Fprintf(w, "checksum:      %s\n", orDash(meta.Checksum))
	fmt.Fprintf(w, "input width:   %d\n", model.InputWidth())
	fmt.Fprintf(w, "feature names: %s\n", orDash(strings.Join(meta.FeatureNames, ", ")))
	fmt.Fprintf(w, "encoding:      %s\n", orDash(meta.Encoding))
	if len(meta.SmokerCodes) > 0 {
		fmt.Fprintf(w, "smoker codes:  No=%d Yes=%d (declared)\n", meta.SmokerCodes["No"], meta.SmokerCodes["Yes"])
	}

	predictor, err := insurance.NewPredictor(model, encoding)
	if err != nil {
		return fmt.Errorf("model does not fit the encoder: %w", err)
	}

	req := insurance.DefaultRequest()
	nonSmoker, err := predictor.Predict(req)
	if err != nil {
		return err
	}
	req.Smoker = insurance.SmokerYes
	smoker, err := predictor.Predict(req)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nreference person, smoker codes No=%d Yes=%d\n", encoding.Smoker[insurance.SmokerNo], encoding.Smoker[insurance.SmokerYes])
	fmt.Fprintf(w, "  smoker=No   %v -> %s\n", nonSmoker.Features, nonSmoker.Formatted)
	fmt.Fprintf(w, "  smoker=Yes  %v -> %s\n", smoker.Features, smoker.Formatted)
	if smoker.Cost <= nonSmoker.Cost {
		fmt.Fprintln(w, "WARNING: smokers are not estimated higher than non-smokers; the smoker codes are probably inverted")
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
