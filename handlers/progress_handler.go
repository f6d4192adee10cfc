package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"renascerConnectAPI/internal/stats"
	"renascerConnectAPI/internal/types/activity"
	"renascerConnectAPI/middleware"
	"renascerConnectAPI/services"
)

type ProgressHandler struct {
	progressService *services.ProgressService
}

func NewProgressHandler(progressService *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
	}
}

// POST /api/v1/user/activity
func (h *ProgressHandler) LogActivity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req activity.LogActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "Field 'name' is required")
		return
	}

	resp, err := h.progressService.LogActivity(ctx, clerkID, &req)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyLogged) {
			respondWithError(w, http.StatusConflict, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, resp)
}

// DELETE /api/v1/user/activity?date=2006-01-02
func (h *ProgressHandler) RemoveActivity(w http.ResponseWriter, r *http.Request) {
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

	if err := h.progressService.RemoveActivity(ctx, clerkID, date); err != nil {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Workout removed"})
}

// GET /api/v1/user/activity?limit=50
func (h *ProgressHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	completions, err := h.progressService.ListActivities(ctx, clerkID, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, completions)
}

// GET /api/v1/user/streak — the derived display streak plus stored state.
func (h *ProgressHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	derived, stored, err := h.progressService.GetCurrentStreak(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	payload := map[string]interface{}{
		"current_streak": derived,
	}
	if stored != nil {
		payload["longest_streak"] = stored.LongestStreak
		payload["last_activity_date"] = stored.LastActivityDate
	}

	respondWithJSON(w, http.StatusOK, payload)
}

// GET /api/v1/user/achievements
func (h *ProgressHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	achievements, err := h.progressService.GetAchievements(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, achievements)
}

// PUT /api/v1/user/achievements/seen
func (h *ProgressHandler) MarkAchievementsSeen(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.progressService.MarkAchievementsNotified(ctx, clerkID); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Achievements marked as seen"})
}

// GET /api/v1/user/stats/weekly
func (h *ProgressHandler) GetWeeklyStats(w http.ResponseWriter, r *http.Request) {
	h.periodStats(w, r, h.progressService.GetWeeklyDaysTrained)
}

// GET /api/v1/user/stats/monthly
func (h *ProgressHandler) GetMonthlyStats(w http.ResponseWriter, r *http.Request) {
	h.periodStats(w, r, h.progressService.GetMonthlyDaysTrained)
}

// GET /api/v1/user/stats/yearly
func (h *ProgressHandler) GetYearlyStats(w http.ResponseWriter, r *http.Request) {
	h.periodStats(w, r, h.progressService.GetYearlyDaysTrained)
}

// GET /api/v1/user/stats/all-time
func (h *ProgressHandler) GetAllTimeStats(w http.ResponseWriter, r *http.Request) {
	h.periodStats(w, r, h.progressService.GetAllTimeDaysTrained)
}

func (h *ProgressHandler) periodStats(w http.ResponseWriter, r *http.Request, fetch func(context.Context, string) (*stats.DaysStat, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	stat, err := fetch(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, stat)
}
