package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"insurecost/db"
	"insurecost/insurance"
	"insurecost/ml"
)

// ModelLoadLister 模型加载记录查询
type ModelLoadLister interface {
	RecentModelLoads(limit int) ([]db.ModelLoad, error)
}

// Handlers 持有请求处理所需的依赖, 由 main 显式构造
type Handlers struct {
	slot     *insurance.PredictorSlot
	loads    ModelLoadLister
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewHandlers(slot *insurance.PredictorSlot, loads ModelLoadLister, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		slot:   slot,
		loads:  loads,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func RegisterHandlers(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("GET /{$}", h.handleForm)
	mux.HandleFunc("POST /predict", h.handleFormPredict)
	mux.Handle("GET /static/", http.FileServerFS(assets))
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api/model", h.handleModel)
	mux.HandleFunc("POST /api/predict", h.handlePredict)
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if _, err := h.slot.Get(); err != nil {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

type modelResponse struct {
	Available bool           `json:"available"`
	Error     string         `json:"error,omitempty"`
	Metadata  *ml.Metadata   `json:"metadata,omitempty"`
	Encoding  *encodingView  `json:"encoding,omitempty"`
	Loads     []db.ModelLoad `json:"loads,omitempty"`
}

type encodingView struct {
	Version string                   `json:"version"`
	Order   []string                 `json:"order"`
	Sex     map[insurance.Sex]int    `json:"sex"`
	Smoker  map[insurance.Smoker]int `json:"smoker"`
	Region  map[insurance.Region]int `json:"region"`
}

func (h *Handlers) handleModel(w http.ResponseWriter, r *http.Request) {
	var resp modelResponse
	if p, err := h.slot.Get(); err != nil {
		resp.Error = err.Error()
	} else {
		meta := p.Metadata()
		enc := p.Encoding()
		resp.Available = true
		resp.Metadata = &meta
		resp.Encoding = &encodingView{
			Version: enc.Version,
			Order:   insurance.FeatureNames(),
			Sex:     enc.Sex,
			Smoker:  enc.Smoker,
			Region:  enc.Region,
		}
	}
	if h.loads != nil {
		loads, err := h.loads.RecentModelLoads(10)
		if err != nil {
			h.logger.Warn("list model loads", zap.Error(err))
		} else {
			resp.Loads = loads
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type errorResponse struct {
	Error  string                 `json:"error"`
	Fields []insurance.FieldError `json:"fields,omitempty"`
}

func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req insurance.PredictionRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	estimate, err := h.predict(r, req)
	if err != nil {
		status, body := classify(err)
		writeJSON(w, status, body)
		return
	}
	writeJSON(w, http.StatusOK, estimate)
}

// predict 单次推理, 失败只影响本次请求
func (h *Handlers) predict(r *http.Request, req insurance.PredictionRequest) (insurance.Estimate, error) {
	p, err := h.slot.Get()
	if err != nil {
		return insurance.Estimate{}, err
	}
	estimate, err := p.Predict(req)
	if err != nil {
		var verr *insurance.ValidationError
		if !errors.As(err, &verr) {
			h.logger.Warn("prediction failed",
				zap.String("request_id", GetRequestID(r.Context())),
				zap.Error(err),
			)
		}
		return insurance.Estimate{}, err
	}
	return estimate, nil
}

func classify(err error) (int, errorResponse) {
	var verr *insurance.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Fields: verr.Fields}
	case errors.Is(err, insurance.ErrModelUnavailable):
		return http.StatusServiceUnavailable, errorResponse{Error: err.Error()}
	default:
		return http.StatusInternalServerError, errorResponse{Error: err.Error()}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
