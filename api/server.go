package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"goanam/adapters/report"
	"goanam/app"
	"goanam/domain/anamorphosis"
	"goanam/domain/core"
	"goanam/internal/config"
	"goanam/internal/errors"
)

// Server exposes calibration and transforms over HTTP. Fitted models are held
// in an in-memory registry; nothing is persisted.
type Server struct {
	router *chi.Mux
	svc    *app.CalibrationService
	cfg    *config.Config

	mu     sync.RWMutex
	models map[core.ModelID]*anamorphosis.Model
}

// NewServer creates the API server and mounts its routes.
func NewServer(cfg *config.Config, svc *app.CalibrationService) *Server {
	s := &Server{
		router: chi.NewRouter(),
		svc:    svc,
		cfg:    cfg,
		models: make(map[core.ModelID]*anamorphosis.Model),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/health", s.handleHealth)
	s.router.Route("/api", func(r chi.Router) {
		r.Post("/calibrate", s.handleCalibrate)
		r.Post("/calibrate/batch", s.handleCalibrateBatch)
		r.Get("/models/{id}", s.handleGetModel)
		r.Get("/models/{id}/report", s.handleModelReport)
		r.Post("/models/{id}/transform", s.handleTransform)
		r.Post("/models/{id}/effects", s.handleEffects)
	})
	return s
}

// Handler returns the underlying router.
func (s *Server) Handler() http.Handler { return s.router }

// Start blocks serving HTTP on the configured port.
func (s *Server) Start() error {
	addr := ":" + s.cfg.Server.Port
	log.Printf("[API] listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCalibrate(w http.ResponseWriter, r *http.Request) {
	var req app.CalibrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput(fmt.Sprintf("bad request body: %v", err)))
		return
	}
	if req.Order == 0 {
		req.Order = s.cfg.Fit.DefaultOrder
	}
	if req.Order > s.cfg.Fit.MaxOrder {
		writeError(w, errors.InvalidInput(fmt.Sprintf("order %d exceeds maximum %d", req.Order, s.cfg.Fit.MaxOrder)))
		return
	}

	model, err := s.svc.Calibrate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	s.models[model.ID] = model
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, model)
}

func (s *Server) handleCalibrateBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Requests []app.CalibrationRequest `json:"requests"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput(fmt.Sprintf("bad request body: %v", err)))
		return
	}
	for i := range req.Requests {
		if req.Requests[i].Order == 0 {
			req.Requests[i].Order = s.cfg.Fit.DefaultOrder
		}
		if req.Requests[i].Order > s.cfg.Fit.MaxOrder {
			writeError(w, errors.InvalidInput(fmt.Sprintf("request %d: order %d exceeds maximum %d",
				i, req.Requests[i].Order, s.cfg.Fit.MaxOrder)))
			return
		}
	}

	models, err := s.svc.CalibrateBatch(r.Context(), req.Requests)
	if err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	for _, m := range models {
		s.models[m.ID] = m
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, models)
}

func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	model, err := s.lookupModel(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model)
}

func (s *Server) handleModelReport(w http.ResponseWriter, r *http.Request) {
	model, err := s.lookupModel(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	md := report.ModelMarkdown(*model)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(report.RenderHTML(md))
}

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	model, err := s.lookupModel(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Direction string    `json:"direction"` // "y2z" or "z2y"
		Values    []float64 `json:"values"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput(fmt.Sprintf("bad request body: %v", err)))
		return
	}

	var out []float64
	switch req.Direction {
	case "y2z":
		out = s.svc.GaussianToRaw(model, req.Values)
	case "z2y":
		out, err = s.svc.RawToGaussian(model, req.Values)
		if err != nil {
			writeError(w, err)
			return
		}
	default:
		writeError(w, errors.InvalidInput(fmt.Sprintf("unknown direction %q", req.Direction)))
		return
	}
	writeJSON(w, http.StatusOK, map[string][]float64{"values": out})
}

func (s *Server) handleEffects(w http.ResponseWriter, r *http.Request) {
	model, err := s.lookupModel(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		VarZv    float64 `json:"var_zv"`
		VarZvEst float64 `json:"var_zv_est"`
		Covar    float64 `json:"covar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.InvalidInput(fmt.Sprintf("bad request body: %v", err)))
		return
	}

	coeffs, err := s.svc.Effects(model, req.VarZv, req.VarZvEst, req.Covar)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coeffs)
}

func (s *Server) lookupModel(id string) (*anamorphosis.Model, error) {
	modelID, err := core.ParseModelID(id)
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	model, ok := s.models[modelID]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("model %s", id))
	}
	return model, nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[API] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeBadOrder, errors.CodeShapeMismatch,
		errors.CodeTableInvalid, errors.CodeBoundsInvalid:
		status = http.StatusBadRequest
	case errors.CodeCurveInconsistent, errors.CodeRootBracket:
		status = http.StatusUnprocessableEntity
	case errors.CodeNotFound:
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
