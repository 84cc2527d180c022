package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/montrealcare/care-router/internal/application/services"
	"github.com/montrealcare/care-router/internal/domain/entities"
	"github.com/montrealcare/care-router/internal/infrastructure/observability"
	apperrors "github.com/montrealcare/care-router/pkg/errors"
)

// RecommendationHandler handles recommendation HTTP requests
type RecommendationHandler struct {
	service *services.RecommendationService
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(service *services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		service: service,
	}
}

// Recommend handles POST /api/recommend
func (h *RecommendationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req entities.RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.Recommend(r.Context(), &req)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (h *RecommendationHandler) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
		case apperrors.ErrorTypeNotFound:
			respondWithError(w, http.StatusNotFound, appErr.Message)
		case apperrors.ErrorTypeExternal:
			observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("collaborator failure")
			respondWithError(w, http.StatusBadGateway, appErr.Message)
		default:
			observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("recommendation failed")
			respondWithError(w, http.StatusInternalServerError, appErr.Message)
		}
		return
	}

	observability.LoggerFromContext(r.Context()).Error().Err(err).Msg("recommendation failed")
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
