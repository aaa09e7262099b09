// Package repository defines the persistence interfaces the services depend
// on. Postgres implementations live alongside; tests substitute in-memory
// fakes.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lovebotAPI/internal/types/attendance"
	"lovebotAPI/internal/types/marriage"
	"lovebotAPI/internal/types/streak"
)

// StreakRepository persists one streak record per marriage.
// Lookups return (nil, nil) when no record exists.
type StreakRepository interface {
	GetByMarriageID(ctx context.Context, marriageID uuid.UUID) (*streak.Streak, error)

	// Create inserts a zeroed record with the recovery anchor set to
	// anchorDate (today's civil date).
	Create(ctx context.Context, marriageID uuid.UUID, anchorDate string) (*streak.Streak, error)

	// Update applies a partial mutation and returns the mutated record.
	// Fields left nil in upd are untouched.
	Update(ctx context.Context, id uuid.UUID, upd *streak.Update) (*streak.Streak, error)

	// ResetDailyCompletions clears both completed-today flags on every
	// record and returns the affected count.
	ResetDailyCompletions(ctx context.Context) (int64, error)

	// ResetMonthlyRecoveries zeroes the recovery budget on every record,
	// re-anchoring it to today, and returns the affected count.
	ResetMonthlyRecoveries(ctx context.Context, today string) (int64, error)

	DeleteByMarriageID(ctx context.Context, marriageID uuid.UUID) error
}

// MarriageRepository persists marriages and proposals.
// Lookups return (nil, nil) when nothing matches.
type MarriageRepository interface {
	GetByUser(ctx context.Context, userID, guildID string) (*marriage.Marriage, error)
	Create(ctx context.Context, m *marriage.Marriage) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateProposal(ctx context.Context, p *marriage.Proposal) error
	GetProposal(ctx context.Context, id uuid.UUID) (*marriage.Proposal, error)
	GetPendingProposal(ctx context.Context, proposerID, proposedID, guildID string) (*marriage.Proposal, error)
	UpdateProposalStatus(ctx context.Context, id uuid.UUID, status marriage.ProposalStatus) error

	// MarkExpiredProposals flips pending proposals whose button expired
	// before now to the expired status.
	MarkExpiredProposals(ctx context.Context, now time.Time) (int64, error)

	// DeleteProposalsBefore removes terminal proposals created before cutoff.
	DeleteProposalsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AttendanceRepository persists daily attendance rows, one per
// (user, guild, civil date).
type AttendanceRepository interface {
	// Insert stores a record; attendance.ErrAlreadyRecorded when the
	// unique index rejects a same-day duplicate.
	Insert(ctx context.Context, rec *attendance.Record) error
	GetStats(ctx context.Context, userID, guildID string) (*attendance.Stats, error)
}
