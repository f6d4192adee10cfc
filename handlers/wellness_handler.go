package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"renascerConnectAPI/internal/types/dailylog"
	"renascerConnectAPI/middleware"
	"renascerConnectAPI/services"
)

type WellnessHandler struct {
	wellnessService *services.WellnessService
}

func NewWellnessHandler(wellnessService *services.WellnessService) *WellnessHandler {
	return &WellnessHandler{
		wellnessService: wellnessService,
	}
}

// POST /api/v1/user/daily-log
func (h *WellnessHandler) UpsertDailyLog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req dailylog.UpsertDailyLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry, err := h.wellnessService.UpsertDailyLog(ctx, clerkID, &req)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, entry)
}

// GET /api/v1/user/daily-log?date=2006-01-02
func (h *WellnessHandler) GetDailyLog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	date := time.Now().UTC()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid date format, use YYYY-MM-DD")
			return
		}
		date = parsed
	}

	entry, err := h.wellnessService.GetDailyLog(ctx, clerkID, date)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entry == nil {
		respondWithJSON(w, http.StatusOK, nil)
		return
	}

	respondWithJSON(w, http.StatusOK, entry)
}

// GET /api/v1/user/consistency
func (h *WellnessHandler) GetConsistency(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	result, err := h.wellnessService.GetConsistency(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
