package handlers

import (
	"context"
	"net/http"
	"time"

	"lovebotAPI/internal/types/attendance"
	"lovebotAPI/internal/types/marriage"
	"lovebotAPI/internal/types/streak"
	"lovebotAPI/services"
	"lovebotAPI/utils"
)

type ProfileHandler struct {
	streakService     *services.StreakService
	marriageService   *services.MarriageService
	attendanceService *services.AttendanceService
}

func NewProfileHandler(streakService *services.StreakService, marriageService *services.MarriageService, attendanceService *services.AttendanceService) *ProfileHandler {
	return &ProfileHandler{
		streakService:     streakService,
		marriageService:   marriageService,
		attendanceService: attendanceService,
	}
}

type profileResponse struct {
	Marriage      *marriage.Marriage `json:"marriage"`
	Streak        *streak.Streak     `json:"streak"`
	Attendance    *attendance.Stats  `json:"attendance"`
	DevotionScore float64            `json:"devotion_score"`
}

// GetProfile aggregates marriage, streak and attendance for the status
// command's profile embed.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
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

	var rec *streak.Streak
	if m != nil {
		rec, err = h.streakService.GetStreak(ctx, m.ID)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	stats, err := h.attendanceService.GetStats(ctx, userID, guildID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	currentStreak, totalDays := 0, 0
	if rec != nil {
		currentStreak, totalDays = rec.CurrentStreak, rec.TotalDays
	}

	respondWithJSON(w, http.StatusOK, &profileResponse{
		Marriage:      m,
		Streak:        rec,
		Attendance:    stats,
		DevotionScore: utils.CalculateDevotionScore(currentStreak, totalDays, stats.TotalDays),
	})
}
