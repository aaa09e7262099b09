package streak

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MaxRecoveriesPerMonth is the monthly grace budget for missed days.
const MaxRecoveriesPerMonth = 3

// ErrTransientStore is returned when the persistence layer stays unavailable
// after the bounded retries. Callers should surface it as "try again".
var ErrTransientStore = errors.New("streak store temporarily unavailable")

type Status string

const (
	StatusFirstCompleted   Status = "first_completed"
	StatusBothCompleted    Status = "both_completed"
	StatusAlreadyCompleted Status = "already_completed"
	StatusRecovered        Status = "streak_recovered"
	StatusLost             Status = "streak_lost"
)

type Streak struct {
	ID                      uuid.UUID `json:"id" db:"id"`
	MarriageID              uuid.UUID `json:"marriage_id" db:"marriage_id"`
	CurrentStreak           int       `json:"current_streak" db:"current_streak"`
	BestStreak              int       `json:"best_streak" db:"best_streak"`
	TotalDays               int       `json:"total_days" db:"total_days"`
	User1CompletedToday     bool      `json:"user1_completed_today" db:"user1_completed_today"`
	User2CompletedToday     bool      `json:"user2_completed_today" db:"user2_completed_today"`
	LastCompletedDate       *string   `json:"last_completed_date" db:"last_completed_date"`
	RecoveriesUsedThisMonth int       `json:"recoveries_used_this_month" db:"recoveries_used_this_month"`
	LastRecoveryResetDate   string    `json:"last_recovery_reset_date" db:"last_recovery_reset_date"`
	CreatedAt               time.Time `json:"created_at" db:"created_at"`
	UpdatedAt               time.Time `json:"updated_at" db:"updated_at"`
}

// Update carries a partial mutation. Nil fields are left untouched by the
// repository. LastCompletedDate is a double pointer so the outer nil means
// "untouched" while an inner nil clears the column.
type Update struct {
	CurrentStreak           *int
	BestStreak              *int
	TotalDays               *int
	User1CompletedToday     *bool
	User2CompletedToday     *bool
	LastCompletedDate       **string
	RecoveriesUsedThisMonth *int
	LastRecoveryResetDate   *string
}

type CheckInResult struct {
	Status              Status  `json:"status"`
	Streak              *Streak `json:"streak"`
	Message             string  `json:"message"`
	RecoveriesRemaining *int    `json:"recoveries_remaining,omitempty"`
	IsLastRecovery      bool    `json:"is_last_recovery,omitempty"`
}

type ParticipantStatus struct {
	UserID    string `json:"user_id"`
	Completed bool   `json:"completed"`
}

// StreakBox is the render-agnostic status payload. The gateway maps
// Completed to its own emoji glyphs.
type StreakBox struct {
	Participants  []ParticipantStatus `json:"participants"`
	CurrentStreak int                 `json:"current_streak"`
	BothCompleted bool                `json:"both_completed"`
}
