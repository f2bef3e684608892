package http

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"insurecost/insurance"
)

//go:embed templates/*.html static/*
var assets embed.FS

var formTemplate = template.Must(template.ParseFS(assets, "templates/form.html"))

type formView struct {
	Request     insurance.PredictionRequest
	Sexes       []insurance.Sex
	Smokers     []insurance.Smoker
	Regions     []insurance.Region
	Children    []int
	MinAge      int
	MaxAge      int
	MinBMI      float64
	MaxBMI      float64
	Estimate    *insurance.Estimate
	Error       string
	Detail      string
	Fields      map[string]string
	Unavailable string
}

func newFormView(req insurance.PredictionRequest) *formView {
	children := make([]int, insurance.MaxChildren+1)
	for i := range children {
		children[i] = i
	}
	return &formView{
		Request:  req,
		Sexes:    insurance.Sexes(),
		Smokers:  insurance.SmokerValues(),
		Regions:  insurance.Regions(),
		Children: children,
		MinAge:   insurance.MinAge,
		MaxAge:   insurance.MaxAge,
		MinBMI:   insurance.MinBMI,
		MaxBMI:   insurance.MaxBMI,
	}
}

func (h *Handlers) handleForm(w http.ResponseWriter, r *http.Request) {
	view := newFormView(insurance.DefaultRequest())
	if _, err := h.slot.Get(); err != nil {
		view.Unavailable = err.Error()
		h.render(w, http.StatusServiceUnavailable, view)
		return
	}
	h.render(w, http.StatusOK, view)
}

func (h *Handlers) handleFormPredict(w http.ResponseWriter, r *http.Request) {
	req, parseErr := parseForm(r)
	view := newFormView(req)

	if _, err := h.slot.Get(); err != nil {
		view.Unavailable = err.Error()
		h.render(w, http.StatusServiceUnavailable, view)
		return
	}

	err := parseErr
	if err == nil {
		var estimate insurance.Estimate
		estimate, err = h.predict(r, req)
		if err == nil {
			view.Estimate = &estimate
			h.render(w, http.StatusOK, view)
			return
		}
	}

	status, _ := classify(err)
	var verr *insurance.ValidationError
	if errors.As(err, &verr) {
		view.Error = "Please correct the highlighted fields."
		view.Fields = make(map[string]string, len(verr.Fields))
		for _, f := range verr.Fields {
			view.Fields[f.Field] = f.Message
		}
	} else {
		view.Error = "Prediction failed."
	}
	view.Detail = err.Error()
	h.render(w, status, view)
}

// parseForm 读取表单; 数值解析失败按字段校验错误返回
func parseForm(r *http.Request) (insurance.PredictionRequest, error) {
	req := insurance.DefaultRequest()
	if err := r.ParseForm(); err != nil {
		return req, &insurance.ValidationError{Fields: []insurance.FieldError{{Field: "form", Message: err.Error()}}}
	}

	var fields []insurance.FieldError
	parseInt := func(name string, dst *int) {
		raw := strings.TrimSpace(r.PostForm.Get(name))
		v, err := strconv.Atoi(raw)
		if err != nil {
			fields = append(fields, insurance.FieldError{Field: name, Message: "must be a whole number, got " + strconv.Quote(raw)})
			return
		}
		*dst = v
	}
	parseInt("age", &req.Age)
	parseInt("children", &req.Children)

	rawBMI := strings.TrimSpace(r.PostForm.Get("bmi"))
	if bmi, err := strconv.ParseFloat(rawBMI, 64); err != nil {
		fields = append(fields, insurance.FieldError{Field: "bmi", Message: "must be a number, got " + strconv.Quote(rawBMI)})
	} else {
		req.BMI = bmi
	}

	req.Sex = insurance.Sex(r.PostForm.Get("sex"))
	req.Smoker = insurance.Smoker(r.PostForm.Get("smoker"))
	req.Region = insurance.Region(r.PostForm.Get("region"))

	if len(fields) > 0 {
		return req, &insurance.ValidationError{Fields: fields}
	}
	return req, nil
}

func (h *Handlers) render(w http.ResponseWriter, status int, view *formView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := formTemplate.Execute(w, view); err != nil {
		h.logger.Error("render form", zap.Error(err))
	}
}
