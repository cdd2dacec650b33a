package triage

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/medilink-health/triage/pkg/common/logger"
	"github.com/medilink-health/triage/pkg/common/models"
	"github.com/medilink-health/triage/pkg/localization"
	"github.com/medilink-health/triage/pkg/recommendation"
)

type HTTPHandler struct {
	engine          *Engine
	recommendations *recommendation.Store
	maxBody         int64
}

// NewHTTPHandler builds the triage API. recommendations may be nil, in which
// case session handoff is disabled.
func NewHTTPHandler(engine *Engine, recommendations *recommendation.Store, maxBody int64) *HTTPHandler {
	return &HTTPHandler{engine: engine, recommendations: recommendations, maxBody: maxBody}
}

// Register mounts the routes. admin guards the mapping write routes.
func (h *HTTPHandler) Register(router *mux.Router, admin mux.MiddlewareFunc) {
	router.HandleFunc("/triage/analyze", h.handleAnalyze).Methods(http.MethodPost)
	router.HandleFunc("/triage/mappings", h.handleListMappings).Methods(http.MethodGet)
	router.HandleFunc("/recommendations/{session}", h.handleRecommendation).Methods(http.MethodGet)

	writes := router.PathPrefix("/triage/mappings").Subrouter()
	if admin != nil {
		writes.Use(admin)
	}
	writes.HandleFunc("/{key}", h.handleUpsertMapping).Methods(http.MethodPut)
	writes.HandleFunc("/{key}", h.handleDeleteMapping).Methods(http.MethodDelete)
}

func (h *HTTPHandler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.WithError(err).Warn("invalid analyze payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	lang := localization.ParseLanguage(req.Language)
	result, err := h.engine.Analyze(r.Context(), req.Symptoms, lang)
	if err != nil {
		logger.Log.WithError(err).Warn("analysis aborted")
		http.Error(w, "request cancelled", http.StatusServiceUnavailable)
		return
	}

	if req.SessionID != "" && h.recommendations != nil {
		rec := models.Recommendation{
			SessionID:       req.SessionID,
			Specialization:  result.RecommendedSpecialization,
			Specializations: result.Specializations,
			Disease:         result.Disease,
		}
		if err := h.recommendations.Save(r.Context(), rec); err != nil {
			// The analysis is still useful without the handoff.
			logger.Log.WithError(err).WithField("session_id", req.SessionID).Warn("failed to store recommendation")
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) handleListMappings(w http.ResponseWriter, r *http.Request) {
	mappings := h.engine.Mappings(r.Context())
	out := make([]models.MappingView, 0, len(mappings))
	for _, m := range mappings {
		source := "base"
		if m.Overlay {
			source = "overlay"
		}
		out = append(out, models.MappingView{
			Key:             string(m.Key),
			Specializations: m.Specializations,
			Severity:        string(m.Severity),
			Remedies:        m.Remedies,
			Source:          source,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) handleUpsertMapping(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	var req models.MappingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := EntryFromRequest(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.engine.UpsertMapping(r.Context(), key, entry); err != nil {
		h.writeMappingError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) handleDeleteMapping(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if err := h.engine.DeleteMapping(r.Context(), key); err != nil {
		h.writeMappingError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) writeMappingError(w http.ResponseWriter, err error) {
	switch {
	case IsValidationError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "mapping not found", http.StatusNotFound)
	case IsStorageError(err):
		logger.Log.WithError(err).Error("mapping could not be saved")
		http.Error(w, "could not save mapping", http.StatusServiceUnavailable)
	default:
		logger.Log.WithError(err).Error("failed to change mapping")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *HTTPHandler) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	if h.recommendations == nil {
		http.Error(w, "recommendations disabled", http.StatusNotFound)
		return
	}
	rec, err := h.recommendations.Get(r.Context(), mux.Vars(r)["session"])
	if err != nil {
		if errors.Is(err, recommendation.ErrNotFound) {
			http.Error(w, "recommendation not found", http.StatusNotFound)
			return
		}
		logger.Log.WithError(err).Error("failed to load recommendation")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// EntryFromRequest converts a wire mapping into a validated MappingEntry.
func EntryFromRequest(req models.MappingRequest) (MappingEntry, error) {
	severity, err := ParseSeverity(req.Severity)
	if err != nil {
		return MappingEntry{}, err
	}
	entry := MappingEntry{
		Specializations: trimAll(req.Specializations),
		Severity:        severity,
		Remedies:        trimAll(req.Remedies),
	}
	if err := entry.Validate(); err != nil {
		return MappingEntry{}, err
	}
	return entry, nil
}

func trimAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Error("failed to encode response")
	}
}
