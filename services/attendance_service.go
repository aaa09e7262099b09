package services

import (
	"context"

	"github.com/google/uuid"

	"lovebotAPI/internal/clock"
	"lovebotAPI/internal/repository"
	"lovebotAPI/internal/types/attendance"
)

// AttendanceService records daily voice-channel attendance, one row per user
// per civil day. Idempotence comes from the unique index, not from a
// read-then-write.
type AttendanceService struct {
	attendance repository.AttendanceRepository
	clock      *clock.Clock
}

func NewAttendanceService(repo repository.AttendanceRepository, clk *clock.Clock) *AttendanceService {
	return &AttendanceService{attendance: repo, clock: clk}
}

// RecordAttendance stores today's attendance for the user. Returns
// attendance.ErrAlreadyRecorded on a same-day duplicate.
func (s *AttendanceService) RecordAttendance(ctx context.Context, userID, guildID, channelID, channelName string) (*attendance.Record, error) {
	rec := &attendance.Record{
		ID:          uuid.New(),
		UserID:      userID,
		GuildID:     guildID,
		ChannelID:   channelID,
		ChannelName: channelName,
		Date:        s.clock.Today(),
		RecordedAt:  s.clock.Now(),
	}
	if err := s.attendance.Insert(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *AttendanceService) GetStats(ctx context.Context, userID, guildID string) (*attendance.Stats, error) {
	return s.attendance.GetStats(ctx, userID, guildID)
}
