package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"lovebotAPI/internal/clock"
	"lovebotAPI/internal/repository"
	"lovebotAPI/internal/types/marriage"
	"lovebotAPI/internal/types/streak"
)

// MarriageLookup is the narrow read-only view of the marriage component the
// streak engine composes. Keeping it one-directional: the marriage service
// never imports streak code.
type MarriageLookup interface {
	GetByUser(ctx context.Context, userID, guildID string) (*marriage.Marriage, error)
}

// StreakService is the daily love-streak state machine. The state is derived
// on every check-in from the persisted record plus the civil date; there is
// no explicit status column. All the date math lives here and in the clock,
// nowhere else.
type StreakService struct {
	streaks   repository.StreakRepository
	marriages MarriageLookup
	clock     *clock.Clock

	// One mutex per marriage so two partners checking in at the same
	// instant cannot both observe the other as incomplete and drop the
	// streak increment. Cross-couple check-ins run in parallel.
	locks sync.Map
}

func NewStreakService(streaks repository.StreakRepository, marriages MarriageLookup, clk *clock.Clock) *StreakService {
	return &StreakService{
		streaks:   streaks,
		marriages: marriages,
		clock:     clk,
	}
}

// CheckIn processes one partner's daily completion and returns the outcome:
// first_completed, both_completed, already_completed, streak_recovered or
// streak_lost.
func (s *StreakService) CheckIn(ctx context.Context, userID, guildID string) (*streak.CheckInResult, error) {
	m, err := s.marriages.GetByUser(ctx, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve marriage: %w", err)
	}
	if m == nil {
		return nil, marriage.ErrNotMarried
	}

	mu := s.lockFor(m.ID)
	mu.Lock()
	defer mu.Unlock()

	rec, err := s.streaks.GetByMarriageID(ctx, m.ID)
	if err != nil {
		// A read failure must not fabricate a fresh record; that would
		// silently wipe the couple's history on the next write.
		return nil, err
	}
	if rec == nil {
		rec, err = s.streaks.Create(ctx, m.ID, s.clock.Today())
		if err != nil {
			return nil, err
		}
	}
	assertValid(rec)

	rec, err = s.rolloverMonthlyBudget(ctx, rec)
	if err != nil {
		return nil, err
	}

	isUser1 := m.User1ID == userID
	mine, theirs := rec.User1CompletedToday, rec.User2CompletedToday
	if !isUser1 {
		mine, theirs = theirs, mine
	}

	if mine {
		return &streak.CheckInResult{
			Status:  streak.StatusAlreadyCompleted,
			Streak:  rec,
			Message: "You already completed today",
		}, nil
	}

	today := s.clock.Today()
	yesterday := s.clock.Yesterday()

	// lastCompletedDate equal to yesterday is normal continuation, equal
	// to today covers re-pairing before the nightly reset has run. Any
	// other present value means a day was missed.
	if rec.LastCompletedDate != nil && *rec.LastCompletedDate != yesterday && *rec.LastCompletedDate != today {
		return s.handleMissedDay(ctx, rec, isUser1)
	}

	upd := &streak.Update{}
	setCompleted(upd, isUser1, true)

	if theirs {
		newStreak := rec.CurrentStreak + 1
		upd.CurrentStreak = intp(newStreak)
		upd.BestStreak = intp(max(rec.BestStreak, newStreak))
		upd.TotalDays = intp(rec.TotalDays + 1)
		upd.LastCompletedDate = datep(&today)

		updated, err := s.streaks.Update(ctx, rec.ID, upd)
		if err != nil {
			return nil, err
		}
		return &streak.CheckInResult{
			Status:  streak.StatusBothCompleted,
			Streak:  updated,
			Message: fmt.Sprintf("Streak maintained! Your streak is %d days", newStreak),
		}, nil
	}

	updated, err := s.streaks.Update(ctx, rec.ID, upd)
	if err != nil {
		return nil, err
	}
	return &streak.CheckInResult{
		Status:  streak.StatusFirstCompleted,
		Streak:  updated,
		Message: "You completed first! Waiting for your partner...",
	}, nil
}

// handleMissedDay consumes a recovery when the monthly budget allows it,
// otherwise resets the streak. Either way the missed day's partial pairing
// is discarded and today's pairing restarts with only the caller checked in.
func (s *StreakService) handleMissedDay(ctx context.Context, rec *streak.Streak, isUser1 bool) (*streak.CheckInResult, error) {
	upd := &streak.Update{
		User1CompletedToday: boolp(isUser1),
		User2CompletedToday: boolp(!isUser1),
		LastCompletedDate:   datep(nil),
	}

	if rec.RecoveriesUsedThisMonth < streak.MaxRecoveriesPerMonth {
		used := rec.RecoveriesUsedThisMonth + 1
		remaining := streak.MaxRecoveriesPerMonth - used
		upd.RecoveriesUsedThisMonth = intp(used)

		updated, err := s.streaks.Update(ctx, rec.ID, upd)
		if err != nil {
			return nil, err
		}

		msg := fmt.Sprintf("Streak recovered! %d recoveries remaining this month", remaining)
		if remaining == 0 {
			msg = "Streak recovered, but that was your last recovery this month!"
		}
		return &streak.CheckInResult{
			Status:              streak.StatusRecovered,
			Streak:              updated,
			Message:             msg,
			RecoveriesRemaining: intp(remaining),
			IsLastRecovery:      remaining == 0,
		}, nil
	}

	upd.CurrentStreak = intp(0)

	updated, err := s.streaks.Update(ctx, rec.ID, upd)
	if err != nil {
		return nil, err
	}
	return &streak.CheckInResult{
		Status:  streak.StatusLost,
		Streak:  updated,
		Message: "Your streak was lost",
	}, nil
}

// rolloverMonthlyBudget lazily resets the recovery budget when the civil
// month moved past the stored anchor. This is a distinct persisted mutation,
// applied before the check-in outcome is evaluated.
func (s *StreakService) rolloverMonthlyBudget(ctx context.Context, rec *streak.Streak) (*streak.Streak, error) {
	if s.clock.CurrentMonth() == clock.MonthOf(rec.LastRecoveryResetDate) {
		return rec, nil
	}
	today := s.clock.Today()
	return s.streaks.Update(ctx, rec.ID, &streak.Update{
		RecoveriesUsedThisMonth: intp(0),
		LastRecoveryResetDate:   &today,
	})
}

// GetStreak returns the record for a marriage, or nil when none exists yet.
func (s *StreakService) GetStreak(ctx context.Context, marriageID uuid.UUID) (*streak.Streak, error) {
	return s.streaks.GetByMarriageID(ctx, marriageID)
}

// GetStreakByUser resolves the caller's marriage first. Both "not married"
// and "no record yet" come back as nil.
func (s *StreakService) GetStreakByUser(ctx context.Context, userID, guildID string) (*streak.Streak, error) {
	m, err := s.marriages.GetByUser(ctx, userID, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve marriage: %w", err)
	}
	if m == nil {
		return nil, nil
	}
	return s.streaks.GetByMarriageID(ctx, m.ID)
}

// FormatStreakBox renders the per-partner completion status the gateway
// turns into an embed. Pure function of its inputs.
func (s *StreakService) FormatStreakBox(rec *streak.Streak, m *marriage.Marriage) *streak.StreakBox {
	return &streak.StreakBox{
		Participants: []streak.ParticipantStatus{
			{UserID: m.User1ID, Completed: rec.User1CompletedToday},
			{UserID: m.User2ID, Completed: rec.User2CompletedToday},
		},
		CurrentStreak: rec.CurrentStreak,
		BothCompleted: rec.User1CompletedToday && rec.User2CompletedToday,
	}
}

// ResetDailyCompletions clears today's completion flags on every record.
// Runs at civil midnight; safe to run more than once.
func (s *StreakService) ResetDailyCompletions(ctx context.Context) (int64, error) {
	count, err := s.streaks.ResetDailyCompletions(ctx)
	if err != nil {
		return 0, err
	}
	log.Printf("[StreakService] Daily reset: %d streaks reset", count)
	return count, nil
}

// ResetMonthlyRecoveries zeroes every record's recovery budget. Runs on the
// 1st of the civil month; agrees with the lazy per-record rollover because
// both use the same clock.
func (s *StreakService) ResetMonthlyRecoveries(ctx context.Context) (int64, error) {
	count, err := s.streaks.ResetMonthlyRecoveries(ctx, s.clock.Today())
	if err != nil {
		return 0, err
	}
	log.Printf("[StreakService] Monthly reset: %d streaks reset", count)
	return count, nil
}

func (s *StreakService) lockFor(marriageID uuid.UUID) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(marriageID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// assertValid panics on counters no correct sequence of engine mutations can
// produce. Clamping would hide the logic defect.
func assertValid(rec *streak.Streak) {
	if rec.CurrentStreak < 0 || rec.BestStreak < rec.CurrentStreak ||
		rec.TotalDays < 0 ||
		rec.RecoveriesUsedThisMonth < 0 || rec.RecoveriesUsedThisMonth > streak.MaxRecoveriesPerMonth {
		panic(fmt.Sprintf("corrupt streak record %s: current=%d best=%d total=%d recoveries=%d",
			rec.ID, rec.CurrentStreak, rec.BestStreak, rec.TotalDays, rec.RecoveriesUsedThisMonth))
	}
}

func setCompleted(upd *streak.Update, isUser1, value bool) {
	if isUser1 {
		upd.User1CompletedToday = boolp(value)
	} else {
		upd.User2CompletedToday = boolp(value)
	}
}

func intp(v int) *int { return &v }

func boolp(v bool) *bool { return &v }

// datep wraps a date value for a partial update; datep(nil) clears the
// column.
func datep(v *string) **string { return &v }
