package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"insurecost/db"
	"insurecost/insurance"
	"insurecost/ml"
)

type fakeModel struct {
	cost float64
	err  error
}

func (f *fakeModel) Predict(features []float64) (float64, error) { return f.cost, f.err }
func (f *fakeModel) InputWidth() int                             { return insurance.FeatureCount }
func (f *fakeModel) Metadata() ml.Metadata {
	return ml.Metadata{ModelType: "fake", Version: "test-1"}
}

type fakeLoads struct {
	loads []db.ModelLoad
}

func (f *fakeLoads) RecentModelLoads(limit int) ([]db.ModelLoad, error) {
	return f.loads, nil
}

func newTestRouter(t *testing.T, model ml.Regressor) (http.Handler, *insurance.PredictorSlot) {
	t.Helper()
	slot := insurance.NewPredictorSlot()
	if model != nil {
		p, err := insurance.NewPredictor(model, insurance.EncodingV1)
		require.NoError(t, err)
		slot.Set(p)
	}
	loads := &fakeLoads{loads: []db.ModelLoad{{ModelType: "fake", Status: db.StatusLoaded, LoadedAt: time.Now()}}}
	logger := zaptest.NewLogger(t)
	return NewRouter(DefaultServerConfig(), NewHandlers(slot, loads, logger), logger), slot
}

func TestHealthHandler(t *testing.T) {
	router, _ := newTestRouter(t, &fakeModel{cost: 1})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	router, _ = newTestRouter(t, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.JSONEq(t, `{"status":"degraded"}`, w.Body.String())
}

func postJSON(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandlePredict(t *testing.T) {
	router, _ := newTestRouter(t, &fakeModel{cost: 12345.678})

	w := postJSON(router, `{"age":30,"sex":"Male","bmi":25.0,"children":0,"smoker":"No","region":"Southwest"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var est insurance.Estimate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &est))
	require.Equal(t, "$12,345.68", est.Formatted)
	require.Equal(t, insurance.FeatureVector{30, 0, 25, 0, 1, 0}, est.Features)
	require.Equal(t, "test-1", est.ModelVersion)
	require.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestHandlePredictErrors(t *testing.T) {
	router, _ := newTestRouter(t, &fakeModel{cost: 1})

	w := postJSON(router, `{"age":12,"sex":"Male","bmi":25,"children":0,"smoker":"No","region":"Southwest"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Fields, 1)
	require.Equal(t, "age", body.Fields[0].Field)

	w = postJSON(router, `{"age":30,"weight":80}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(router, `not json`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	router, _ = newTestRouter(t, &fakeModel{err: errors.New("shape mismatch")})
	w = postJSON(router, `{"age":30,"sex":"Male","bmi":25,"children":0,"smoker":"No","region":"Southwest"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "shape mismatch")
}

func TestHandlePredictModelUnavailable(t *testing.T) {
	router, slot := newTestRouter(t, nil)
	slot.Fail(errors.New("open models/insurance.json: no such file or directory"))

	w := postJSON(router, `{"age":30,"sex":"Male","bmi":25,"children":0,"smoker":"No","region":"Southwest"}`)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), "no such file")
	require.NotContains(t, w.Body.String(), "formatted")
}

func TestHandleModel(t *testing.T) {
	router, _ := newTestRouter(t, &fakeModel{cost: 1})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/model", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Available bool `json:"available"`
		Metadata  struct {
			Version string `json:"version"`
		} `json:"metadata"`
		Encoding struct {
			Order  []string       `json:"order"`
			Smoker map[string]int `json:"smoker"`
		} `json:"encoding"`
		Loads []db.ModelLoad `json:"loads"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Available)
	require.Equal(t, "test-1", resp.Metadata.Version)
	require.Equal(t, insurance.FeatureNames(), resp.Encoding.Order)
	require.Equal(t, map[string]int{"No": 1, "Yes": 0}, resp.Encoding.Smoker)
	require.Len(t, resp.Loads, 1)
}
