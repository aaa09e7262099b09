package attendance

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrAlreadyRecorded means the user already checked attendance for the civil
// day; the unique index on (user_id, guild_id, date) enforces this.
var ErrAlreadyRecorded = errors.New("attendance already recorded today")

type Record struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	GuildID     string    `json:"guild_id" db:"guild_id"`
	ChannelID   string    `json:"channel_id" db:"channel_id"`
	ChannelName string    `json:"channel_name" db:"channel_name"`
	Date        string    `json:"date" db:"date"`
	RecordedAt  time.Time `json:"recorded_at" db:"recorded_at"`
}

type Stats struct {
	TotalDays          int     `json:"total_days"`
	LastAttendanceDate *string `json:"last_attendance_date"`
}
