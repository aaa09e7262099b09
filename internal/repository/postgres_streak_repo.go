package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lovebotAPI/internal/types/streak"
)

const streakColumns = `id, marriage_id, current_streak, best_streak, total_days,
	user1_completed_today, user2_completed_today, last_completed_date,
	recoveries_used_this_month, last_recovery_reset_date, created_at, updated_at`

const (
	maxStoreAttempts  = 3
	storeRetryBackoff = 100 * time.Millisecond
)

type PostgresStreakRepository struct {
	db *pgxpool.Pool
}

func NewPostgresStreakRepository(db *pgxpool.Pool) *PostgresStreakRepository {
	return &PostgresStreakRepository{db: db}
}

func (r *PostgresStreakRepository) GetByMarriageID(ctx context.Context, marriageID uuid.UUID) (*streak.Streak, error) {
	query := fmt.Sprintf(`SELECT %s FROM love_streaks WHERE marriage_id = $1`, streakColumns)

	var s *streak.Streak
	err := withRetry(ctx, func() error {
		row := r.db.QueryRow(ctx, query, marriageID)
		scanned, err := scanStreak(row)
		if err != nil {
			return err
		}
		s = scanned
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func (r *PostgresStreakRepository) Create(ctx context.Context, marriageID uuid.UUID, anchorDate string) (*streak.Streak, error) {
	query := fmt.Sprintf(`
	INSERT INTO love_streaks (id, marriage_id, last_recovery_reset_date, created_at, updated_at)
	VALUES ($1, $2, $3, NOW(), NOW())
	RETURNING %s`, streakColumns)

	var s *streak.Streak
	err := withRetry(ctx, func() error {
		row := r.db.QueryRow(ctx, query, uuid.New(), marriageID, anchorDate)
		scanned, err := scanStreak(row)
		if err != nil {
			return err
		}
		s = scanned
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create streak: %w", err)
	}
	return s, nil
}

func (r *PostgresStreakRepository) Update(ctx context.Context, id uuid.UUID, upd *streak.Update) (*streak.Streak, error) {
	sets := []string{"updated_at = NOW()"}
	args := []any{}
	arg := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.CurrentStreak != nil {
		arg("current_streak", *upd.CurrentStreak)
	}
	if upd.BestStreak != nil {
		arg("best_streak", *upd.BestStreak)
	}
	if upd.TotalDays != nil {
		arg("total_days", *upd.TotalDays)
	}
	if upd.User1CompletedToday != nil {
		arg("user1_completed_today", *upd.User1CompletedToday)
	}
	if upd.User2CompletedToday != nil {
		arg("user2_completed_today", *upd.User2CompletedToday)
	}
	if upd.LastCompletedDate != nil {
		arg("last_completed_date", *upd.LastCompletedDate)
	}
	if upd.RecoveriesUsedThisMonth != nil {
		arg("recoveries_used_this_month", *upd.RecoveriesUsedThisMonth)
	}
	if upd.LastRecoveryResetDate != nil {
		arg("last_recovery_reset_date", *upd.LastRecoveryResetDate)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE love_streaks SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), streakColumns)

	var s *streak.Streak
	err := withRetry(ctx, func() error {
		row := r.db.QueryRow(ctx, query, args...)
		scanned, err := scanStreak(row)
		if err != nil {
			return err
		}
		s = scanned
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update streak %s: %w", id, err)
	}
	return s, nil
}

func (r *PostgresStreakRepository) ResetDailyCompletions(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
	UPDATE love_streaks
	SET user1_completed_today = FALSE, user2_completed_today = FALSE, updated_at = NOW()
	WHERE user1_completed_today OR user2_completed_today`)
	if err != nil {
		return 0, fmt.Errorf("failed to reset daily completions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresStreakRepository) ResetMonthlyRecoveries(ctx context.Context, today string) (int64, error) {
	tag, err := r.db.Exec(ctx, `
	UPDATE love_streaks
	SET recoveries_used_this_month = 0, last_recovery_reset_date = $1, updated_at = NOW()`, today)
	if err != nil {
		return 0, fmt.Errorf("failed to reset monthly recoveries: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresStreakRepository) DeleteByMarriageID(ctx context.Context, marriageID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM love_streaks WHERE marriage_id = $1`, marriageID); err != nil {
		return fmt.Errorf("failed to delete streak for marriage %s: %w", marriageID, err)
	}
	return nil
}

func scanStreak(row pgx.Row) (*streak.Streak, error) {
	s := &streak.Streak{}
	err := row.Scan(
		&s.ID,
		&s.MarriageID,
		&s.CurrentStreak,
		&s.BestStreak,
		&s.TotalDays,
		&s.User1CompletedToday,
		&s.User2CompletedToday,
		&s.LastCompletedDate,
		&s.RecoveriesUsedThisMonth,
		&s.LastRecoveryResetDate,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// withRetry runs op up to maxStoreAttempts times, backing off between
// attempts on transient connection or serialization failures. Exhausting the
// attempts surfaces streak.ErrTransientStore so callers can tell the user to
// try again.
func withRetry(ctx context.Context, op func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxStoreAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil || !isTransient(lastErr) {
			return lastErr
		}
		log.Printf("[StreakRepository] transient store error (attempt %d/%d): %v", attempt, maxStoreAttempts, lastErr)
		if attempt < maxStoreAttempts {
			select {
			case <-time.After(storeRetryBackoff * time.Duration(attempt)):
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", streak.ErrTransientStore, ctx.Err())
			}
		}
	}
	return fmt.Errorf("%w: %v", streak.ErrTransientStore, lastErr)
}

func isTransient(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Connection failures, serialization failures, deadlocks and
		// admin shutdowns are worth retrying; everything else is not.
		switch {
		case strings.HasPrefix(pgErr.Code, "08"):
			return true
		case pgErr.Code == "40001" || pgErr.Code == "40P01":
			return true
		case strings.HasPrefix(pgErr.Code, "57P"):
			return true
		}
		return false
	}
	return pgconn.SafeToRetry(err)
}
