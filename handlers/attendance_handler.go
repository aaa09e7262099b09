package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"lovebotAPI/internal/types/attendance"
	"lovebotAPI/services"
)

type AttendanceHandler struct {
	attendanceService *services.AttendanceService
}

func NewAttendanceHandler(attendanceService *services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceService: attendanceService,
	}
}

// RecordAttendance marks the user present for today's civil day.
func (h *AttendanceHandler) RecordAttendance(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var body struct {
		UserID      string `json:"userId"`
		GuildID     string `json:"guildId"`
		ChannelID   string `json:"channelId"`
		ChannelName string `json:"channelName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" || body.GuildID == "" {
		respondWithError(w, http.StatusBadRequest, "userId and guildId are required")
		return
	}

	rec, err := h.attendanceService.RecordAttendance(ctx, body.UserID, body.GuildID, body.ChannelID, body.ChannelName)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyRecorded) {
			respondWithError(w, http.StatusConflict, "Attendance already recorded today")
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, rec)
}

func (h *AttendanceHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, guildID := r.URL.Query().Get("userId"), r.URL.Query().Get("guildId")
	if userID == "" || guildID == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameters 'userId' and 'guildId' are required")
		return
	}

	stats, err := h.attendanceService.GetStats(ctx, userID, guildID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}
