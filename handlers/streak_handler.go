package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"lovebotAPI/internal/types/marriage"
	"lovebotAPI/internal/types/streak"
	"lovebotAPI/middleware"
	"lovebotAPI/services"
)

type StreakHandler struct {
	streakService   *services.StreakService
	marriageService *services.MarriageService
}

func NewStreakHandler(streakService *services.StreakService, marriageService *services.MarriageService) *StreakHandler {
	return &StreakHandler{
		streakService:   streakService,
		marriageService: marriageService,
	}
}

// CheckIn is the /love command's backend: one partner marking today
// complete.
func (h *StreakHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var body struct {
		UserID  string `json:"userId"`
		GuildID string `json:"guildId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" || body.GuildID == "" {
		respondWithError(w, http.StatusBadRequest, "userId and guildId are required")
		return
	}

	result, err := h.streakService.CheckIn(ctx, body.UserID, body.GuildID)
	if err != nil {
		if errors.Is(err, marriage.ErrNotMarried) {
			respondWithError(w, http.StatusNotFound, "You are not married")
			return
		}
		if errors.Is(err, streak.ErrTransientStore) {
			respondWithError(w, http.StatusServiceUnavailable, "Temporary issue, please try again")
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	middleware.ObserveCheckIn(string(result.Status))
	respondWithJSON(w, http.StatusOK, result)
}

// GetStreak serves the raw record for profile views.
func (h *StreakHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, guildID := r.URL.Query().Get("userId"), r.URL.Query().Get("guildId")
	if userID == "" || guildID == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameters 'userId' and 'guildId' are required")
		return
	}

	rec, err := h.streakService.GetStreakByUser(ctx, userID, guildID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rec == nil {
		respondWithError(w, http.StatusNotFound, "No streak found")
		return
	}

	respondWithJSON(w, http.StatusOK, rec)
}

// GetStreakBox serves the per-partner status payload the gateway renders as
// the streak box embed.
func (h *StreakHandler) GetStreakBox(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, guildID := r.URL.Query().Get("userId"), r.URL.Query().Get("guildId")
	if userID == "" || guildID == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameters 'userId' and 'guildId' are required")
		return
	}

	m, err := h.marriageService.GetByUser(ctx, userID, guildID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if m == nil {
		respondWithError(w, http.StatusNotFound, "You are not married")
		return
	}

	rec, err := h.streakService.GetStreak(ctx, m.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rec == nil {
		respondWithError(w, http.StatusNotFound, "No streak found")
		return
	}

	respondWithJSON(w, http.StatusOK, h.streakService.FormatStreakBox(rec, m))
}

// ResetDaily is the external scheduler's nightly hook.
func (h *StreakHandler) ResetDaily(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	count, err := h.streakService.ResetDailyCompletions(ctx)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// ResetMonthly is the external scheduler's 1st-of-month hook.
func (h *StreakHandler) ResetMonthly(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	count, err := h.streakService.ResetMonthlyRecoveries(ctx)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
