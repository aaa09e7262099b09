package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"lovebotAPI/internal/clock"
	"lovebotAPI/internal/types/marriage"
	"lovebotAPI/internal/types/streak"
)

// The fixed instants below are noon UTC+7 on the named civil days.
var (
	day15 = time.Date(2025, 6, 15, 5, 0, 0, 0, time.UTC) // 2025-06-15 in UTC+7
	day16 = time.Date(2025, 6, 16, 5, 0, 0, 0, time.UTC)
	day18 = time.Date(2025, 6, 18, 5, 0, 0, 0, time.UTC)
	july2 = time.Date(2025, 7, 2, 5, 0, 0, 0, time.UTC)
)

// memStreakRepo is an in-memory StreakRepository with the same partial
// update semantics as the Postgres implementation.
type memStreakRepo struct {
	mu         sync.Mutex
	records    map[uuid.UUID]*streak.Streak
	byMarriage map[uuid.UUID]uuid.UUID
	updates    int
	failReads  bool
}

func newMemStreakRepo() *memStreakRepo {
	return &memStreakRepo{
		records:    make(map[uuid.UUID]*streak.Streak),
		byMarriage: make(map[uuid.UUID]uuid.UUID),
	}
}

func (r *memStreakRepo) GetByMarriageID(_ context.Context, marriageID uuid.UUID) (*streak.Streak, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failReads {
		return nil, streak.ErrTransientStore
	}
	id, ok := r.byMarriage[marriageID]
	if !ok {
		return nil, nil
	}
	cp := *r.records[id]
	return &cp, nil
}

func (r *memStreakRepo) Create(_ context.Context, marriageID uuid.UUID, anchorDate string) (*streak.Streak, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &streak.Streak{
		ID:                    uuid.New(),
		MarriageID:            marriageID,
		LastRecoveryResetDate: anchorDate,
		CreatedAt:             time.Now(),
		UpdatedAt:             time.Now(),
	}
	r.records[s.ID] = s
	r.byMarriage[marriageID] = s.ID
	cp := *s
	return &cp, nil
}

func (r *memStreakRepo) Update(_ context.Context, id uuid.UUID, upd *streak.Update) (*streak.Streak, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.records[id]
	if !ok {
		return nil, errors.New("no such record")
	}
	r.updates++
	if upd.CurrentStreak != nil {
		s.CurrentStreak = *upd.CurrentStreak
	}
	if upd.BestStreak != nil {
		s.BestStreak = *upd.BestStreak
	}
	if upd.TotalDays != nil {
		s.TotalDays = *upd.TotalDays
	}
	if upd.User1CompletedToday != nil {
		s.User1CompletedToday = *upd.User1CompletedToday
	}
	if upd.User2CompletedToday != nil {
		s.User2CompletedToday = *upd.User2CompletedToday
	}
	if upd.LastCompletedDate != nil {
		s.LastCompletedDate = *upd.LastCompletedDate
	}
	if upd.RecoveriesUsedThisMonth != nil {
		s.RecoveriesUsedThisMonth = *upd.RecoveriesUsedThisMonth
	}
	if upd.LastRecoveryResetDate != nil {
		s.LastRecoveryResetDate = *upd.LastRecoveryResetDate
	}
	s.UpdatedAt = time.Now()
	cp := *s
	return &cp, nil
}

func (r *memStreakRepo) ResetDailyCompletions(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, s := range r.records {
		if s.User1CompletedToday || s.User2CompletedToday {
			s.User1CompletedToday = false
			s.User2CompletedToday = false
			count++
		}
	}
	return count, nil
}

func (r *memStreakRepo) ResetMonthlyRecoveries(_ context.Context, today string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, s := range r.records {
		s.RecoveriesUsedThisMonth = 0
		s.LastRecoveryResetDate = today
		count++
	}
	return count, nil
}

func (r *memStreakRepo) DeleteByMarriageID(_ context.Context, marriageID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byMarriage[marriageID]; ok {
		delete(r.records, id)
		delete(r.byMarriage, marriageID)
	}
	return nil
}

func (r *memStreakRepo) updateCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updates
}

type memMarriageLookup struct {
	m *marriage.Marriage
}

func (l *memMarriageLookup) GetByUser(_ context.Context, userID, guildID string) (*marriage.Marriage, error) {
	if l.m == nil || l.m.GuildID != guildID {
		return nil, nil
	}
	if l.m.User1ID != userID && l.m.User2ID != userID {
		return nil, nil
	}
	return l.m, nil
}

const (
	userA   = "user-a"
	userB   = "user-b"
	guildID = "guild-1"
)

func testMarriage() *marriage.Marriage {
	return &marriage.Marriage{
		ID:      uuid.New(),
		User1ID: userA,
		User2ID: userB,
		GuildID: guildID,
	}
}

func newTestService(repo *memStreakRepo, m *marriage.Marriage, instant time.Time) *StreakService {
	return NewStreakService(repo, &memMarriageLookup{m: m}, clock.NewFixed(instant))
}

// seed creates the record and applies overrides directly through the repo.
func seed(t *testing.T, repo *memStreakRepo, m *marriage.Marriage, anchor string, upd *streak.Update) *streak.Streak {
	t.Helper()
	rec, err := repo.Create(context.Background(), m.ID, anchor)
	if err != nil {
		t.Fatalf("seed create: %v", err)
	}
	if upd != nil {
		rec, err = repo.Update(context.Background(), rec.ID, upd)
		if err != nil {
			t.Fatalf("seed update: %v", err)
		}
	}
	repo.mu.Lock()
	repo.updates = 0
	repo.mu.Unlock()
	return rec
}

func TestCheckInNotMarried(t *testing.T) {
	svc := newTestService(newMemStreakRepo(), testMarriage(), day15)

	_, err := svc.CheckIn(context.Background(), "stranger", guildID)
	if !errors.Is(err, marriage.ErrNotMarried) {
		t.Fatalf("expected ErrNotMarried, got %v", err)
	}
}

func TestCheckInFreshPairing(t *testing.T) {
	repo := newMemStreakRepo()
	m := testMarriage()
	svc := newTestService(repo, m, day15)
	ctx := context.Background()

	res, err := svc.CheckIn(ctx, userA, guildID)
	if err != nil {
		t.Fatalf("first check-in: %v", err)
	}
	if res.Status != streak.StatusFirstCompleted {
		t.Errorf("status = %s, want %s", res.Status, streak.StatusFirstCompleted)
	}
	if !res.Streak.User1CompletedToday || res.Streak.User2CompletedToday {
		t.Errorf("flags = (%v, %v), want (true, false)", res.Streak.User1CompletedToday, res.Streak.User2CompletedToday)
	}
	if res.Streak.CurrentStreak != 0 {
		t.Errorf("currentStreak = %d, want 0 before partner completes", res.Streak.CurrentStreak)
	}

	res, err = svc.CheckIn(ctx, userB, guildID)
	if err != nil {
		t.Fatalf("second check-in: %v", err)
	}
	if res.Status != streak.StatusBothCompleted {
		t.Errorf("status = %s, want %s", res.Status, streak.StatusBothCompleted)
	}
	if res.Streak.CurrentStreak != 1 || res.Streak.TotalDays != 1 || res.Streak.BestStreak != 1 {
		t.Errorf("counters = (%d, %d, %d), want (1, 1, 1)",
			res.Streak.CurrentStreak, res.Streak.TotalDays, res.Streak.BestStreak)
	}
	if res.Streak.LastCompletedDate == nil || *res.Streak.LastCompletedDate != "2025-06-15" {
		t.Errorf("lastCompletedDate = %v, want 2025-06-15", res.Streak.LastCompletedDate)
	}
}

func TestCheckInSameDayIdempotence(t *testing.T) {
	repo := newMemStreakRepo()
	m := testMarriage()
	svc := newTestService(repo, m, day15)
	ctx := context.Background()

	if _, err := svc.CheckIn(ctx, userA, guildID); err != nil {
		t.Fatalf("check-in: %v", err)
	}
	before := repo.updateCount()

	res, err := svc.CheckIn(ctx, userA, guildID)
	if err != nil {
		t.Fatalf("repeat check-in: %v", err)
	}
	if res.Status != streak.StatusAlreadyCompleted {
		t.Errorf("status = %s, want %s", res.Status, streak.StatusAlreadyCompleted)
	}
	if repo.updateCount() != before {
		t.Errorf("repeat check-in mutated the record (%d updates)", repo.updateCount()-before)
	}
}

func TestCheckInContinuationAfterYesterday(t *testing.T) {
	repo := newMemStreakRepo()
	m := testMarriage()
	yesterday := "2025-06-14"
	seed(t, repo, m, "2025-06-01", &streak.Update{
		CurrentStreak:     intp(5),
		BestStreak:        intp(5),
		TotalDays:         intp(5),
		LastCompletedDate: datep(&yesterday),
	})
	svc := newTestService(repo, m, day15)

	res, err := svc.CheckIn(context.Background(), userA, guildID)
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if res.Status != streak.StatusFirstCompleted {
		t.Errorf("status = %s, want %s (yesterday is continuation, not a miss)", res.Status, streak.StatusFirstCompleted)
	}
	if res.Streak.CurrentStreak != 5 {
		t.Errorf("currentStreak = %d, want unchanged 5", res.Streak.CurrentStreak)
	}
}

func TestCheckInSameDayAsLastCompleted(t *testing.T) {
	// Nightly maintenance has not run yet: lastCompletedDate is today and
	// the flags were cleared by a recovery restart. Not a miss.
	repo := newMemStreakRepo()
	m := testMarriage()
	today := "2025-06-15"
	seed(t, repo, m, "2025-06-01", &streak.Update{
		CurrentStreak:     intp(3),
		BestStreak:        intp(3),
		TotalDays:         intp(3),
		LastCompletedDate: datep(&today),
	})
	svc := newTestService(repo, m, day15)

	res, err := svc.CheckIn(context.Background(), userB, guildID)
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if res.Status != streak.StatusFirstCompleted {
		t.Errorf("status = %s, want %s", res.Status, streak.StatusFirstCompleted)
	}
}

func TestCheckInBestStreakNotLowered(t *testing.T) {
	repo := newMemStreakRepo()
	m := testMarriage()
	yesterday := "2025-06-14"
	u1 := true
	seed(t, repo, m, "2025-06-01", &streak.Update{
		CurrentStreak:       intp(5),
		BestStreak:          intp(20),
		TotalDays:           intp(40),
		User1CompletedToday: &u1,
		LastCompletedDate:   datep(&yesterday),
	})
	svc := newTestService(repo, m, day15)

	res, err := svc.CheckIn(context.Background(), userB, guildID)
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if res.Status != streak.StatusBothCompleted {
		t.Fatalf("status = %s, want %s", res.Status, streak.StatusBothCompleted)
	}
	if res.Streak.CurrentStreak != 6 || res.Streak.BestStreak != 20 || res.Streak.TotalDays != 41 {
		t.Errorf("counters = (%d, %d, %d), want (6, 20, 41)",
			res.Streak.CurrentStreak, res.Streak.BestStreak, res.Streak.TotalDays)
	}
}

func TestCheckInRecovery(t *testing.T) {
	tests := []struct {
		name          string
		used          int
		wantRemaining int
		wantLast      bool
	}{
		{"first recovery", 0, 2, false},
		{"second recovery", 1, 1, false},
		{"third recovery", 2, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemStreakRepo()
			m := testMarriage()
			twoDaysAgo := "2025-06-13"
			u2 := true
			seed(t, repo, m, "2025-06-01", &streak.Update{
				CurrentStreak:           intp(10),
				BestStreak:              intp(10),
				TotalDays:               intp(10),
				User2CompletedToday:     &u2, // stale partial pairing from the missed day
				LastCompletedDate:       datep(&twoDaysAgo),
				RecoveriesUsedThisMonth: intp(tt.used),
			})
			svc := newTestService(repo, m, day15)

			res, err := svc.CheckIn(context.Background(), userA, guildID)
			if err != nil {
				t.Fatalf("check-in: %v", err)
			}
			if res.Status != streak.StatusRecovered {
				t.Fatalf("status = %s, want %s", res.Status, streak.StatusRecovered)
			}
			if res.Streak.CurrentStreak != 10 {
				t.Errorf("currentStreak = %d, want unchanged 10", res.Streak.CurrentStreak)
			}
			if res.Streak.RecoveriesUsedThisMonth != tt.used+1 {
				t.Errorf("recoveriesUsed = %d, want %d", res.Streak.RecoveriesUsedThisMonth, tt.used+1)
			}
			if res.RecoveriesRemaining == nil || *res.RecoveriesRemaining != tt.wantRemaining {
				t.Errorf("recoveriesRemaining = %v, want %d", res.RecoveriesRemaining, tt.wantRemaining)
			}
			if res.IsLastRecovery != tt.wantLast {
				t.Errorf("isLastRecovery = %v, want %v", res.IsLastRecovery, tt.wantLast)
			}
			// The missed day's partial pairing restarts with only the caller.
			if !res.Streak.User1CompletedToday || res.Streak.User2CompletedToday {
				t.Errorf("flags = (%v, %v), want (true, false)",
					res.Streak.User1CompletedToday, res.Streak.User2CompletedToday)
			}
			if res.Streak.LastCompletedDate != nil {
				t.Errorf("lastCompletedDate = %q, want cleared", *res.Streak.LastCompletedDate)
			}
		})
	}
}

func TestCheckInStreakLostWhenBudgetExhausted(t *testing.T) {
	repo := newMemStreakRepo()
	m := testMarriage()
	twoDaysAgo := "2025-06-13"
	seed(t, repo, m, "2025-06-01", &streak.Update{
		CurrentStreak:           intp(15),
		BestStreak:              intp(25),
		TotalDays:               intp(60),
		LastCompletedDate:       datep(&twoDaysAgo),
		RecoveriesUsedThisMonth: intp(3),
	})
	svc := newTestService(repo, m, day15)

	res, err := svc.CheckIn(context.Background(), userB, guildID)
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if res.Status != streak.StatusLost {
		t.Fatalf("status = %s, want %s", res.Status, streak.StatusLost)
	}
	if res.Streak.CurrentStreak != 0 {
		t.Errorf("currentStreak = %d, want 0", res.Streak.CurrentStreak)
	}
	if res.Streak.BestStreak != 25 {
		t.Errorf("bestStreak = %d, want untouched 25", res.Streak.BestStreak)
	}
	if !res.Streak.User2CompletedToday || res.Streak.User1CompletedToday {
		t.Errorf("flags = (%v, %v), want caller only",
			res.Streak.User1CompletedToday, res.Streak.User2CompletedToday)
	}
}

func TestCheckInMonthRolloverResetsBudgetFirst(t *testing.T) {
	// Budget exhausted in June, missed days into July: the lazy rollover
	// must reset the budget before the missed-day branch runs, so July 2nd
	// yields a recovery, not a loss.
	repo := newMemStreakRepo()
	m := testMarriage()
	june29 := "2025-06-29"
	seed(t, repo, m, "2025-06-05", &streak.Update{
		CurrentStreak:           intp(8),
		BestStreak:              intp(8),
		TotalDays:               intp(8),
		LastCompletedDate:       datep(&june29),
		RecoveriesUsedThisMonth: intp(3),
	})
	svc := newTestService(repo, m, july2)

	res, err := svc.CheckIn(context.Background(), userA, guildID)
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if res.Status != streak.StatusRecovered {
		t.Fatalf("status = %s, want %s after rollover", res.Status, streak.StatusRecovered)
	}
	if res.Streak.RecoveriesUsedThisMonth != 1 {
		t.Errorf("recoveriesUsed = %d, want 1 (0 after reset, then this recovery)", res.Streak.RecoveriesUsedThisMonth)
	}
	if res.Streak.LastRecoveryResetDate != "2025-07-02" {
		t.Errorf("anchor = %s, want 2025-07-02", res.Streak.LastRecoveryResetDate)
	}
	if res.Streak.CurrentStreak != 8 {
		t.Errorf("currentStreak = %d, want unchanged 8", res.Streak.CurrentStreak)
	}
}

func TestCheckInFullScenario(t *testing.T) {
	// Day 1: A then B. Day 2: B then A. Day 3 skipped. Day 4: A recovers.
	repo := newMemStreakRepo()
	m := testMarriage()
	ctx := context.Background()

	day1 := newTestService(repo, m, day15)
	if res, _ := day1.CheckIn(ctx, userA, guildID); res.Status != streak.StatusFirstCompleted {
		t.Fatalf("day1 A: %s", res.Status)
	}
	res, err := day1.CheckIn(ctx, userB, guildID)
	if err != nil {
		t.Fatalf("day1 B: %v", err)
	}
	if res.Status != streak.StatusBothCompleted || res.Streak.CurrentStreak != 1 || res.Streak.TotalDays != 1 || res.Streak.BestStreak != 1 {
		t.Fatalf("day1 B: status=%s streak=%d total=%d best=%d", res.Status, res.Streak.CurrentStreak, res.Streak.TotalDays, res.Streak.BestStreak)
	}

	// Nightly reset between civil days.
	if _, err := day1.ResetDailyCompletions(ctx); err != nil {
		t.Fatalf("daily reset: %v", err)
	}

	day2 := newTestService(repo, m, day16)
	if res, _ = day2.CheckIn(ctx, userB, guildID); res.Status != streak.StatusFirstCompleted {
		t.Fatalf("day2 B: %s", res.Status)
	}
	res, err = day2.CheckIn(ctx, userA, guildID)
	if err != nil {
		t.Fatalf("day2 A: %v", err)
	}
	if res.Status != streak.StatusBothCompleted || res.Streak.CurrentStreak != 2 || res.Streak.BestStreak != 2 {
		t.Fatalf("day2 A: status=%s streak=%d best=%d", res.Status, res.Streak.CurrentStreak, res.Streak.BestStreak)
	}

	if _, err := day2.ResetDailyCompletions(ctx); err != nil {
		t.Fatalf("daily reset: %v", err)
	}

	// Day 3 passes with no check-ins; the reset on its boundary is a no-op.
	if count, _ := day2.ResetDailyCompletions(ctx); count != 0 {
		t.Fatalf("idle reset affected %d records, want 0", count)
	}

	day4 := newTestService(repo, m, day18)
	res, err = day4.CheckIn(ctx, userA, guildID)
	if err != nil {
		t.Fatalf("day4 A: %v", err)
	}
	if res.Status != streak.StatusRecovered {
		t.Fatalf("day4 A: status=%s, want %s", res.Status, streak.StatusRecovered)
	}
	if res.Streak.CurrentStreak != 2 {
		t.Errorf("day4 currentStreak = %d, want preserved 2", res.Streak.CurrentStreak)
	}
	if res.RecoveriesRemaining == nil || *res.RecoveriesRemaining != 2 {
		t.Errorf("day4 recoveriesRemaining = %v, want 2", res.RecoveriesRemaining)
	}

	// B completes the recovered day.
	res, err = day4.CheckIn(ctx, userB, guildID)
	if err != nil {
		t.Fatalf("day4 B: %v", err)
	}
	if res.Status != streak.StatusBothCompleted || res.Streak.CurrentStreak != 3 || res.Streak.TotalDays != 3 {
		t.Fatalf("day4 B: status=%s streak=%d total=%d", res.Status, res.Streak.CurrentStreak, res.Streak.TotalDays)
	}
}

func TestCheckInConcurrentPartners(t *testing.T) {
	// Both partners check in at the same instant; exactly one of them must
	// observe the completed pairing.
	for i := 0; i < 25; i++ {
		repo := newMemStreakRepo()
		m := testMarriage()
		svc := newTestService(repo, m, day15)
		ctx := context.Background()

		results := make(chan streak.Status, 2)
		var wg sync.WaitGroup
		for _, user := range []string{userA, userB} {
			wg.Add(1)
			go func(u string) {
				defer wg.Done()
				res, err := svc.CheckIn(ctx, u, guildID)
				if err != nil {
					t.Errorf("concurrent check-in: %v", err)
					return
				}
				results <- res.Status
			}(user)
		}
		wg.Wait()
		close(results)

		var first, both int
		for status := range results {
			switch status {
			case streak.StatusFirstCompleted:
				first++
			case streak.StatusBothCompleted:
				both++
			}
		}
		if first != 1 || both != 1 {
			t.Fatalf("iteration %d: got %d first_completed and %d both_completed, want 1 and 1", i, first, both)
		}

		rec, err := svc.GetStreak(ctx, m.ID)
		if err != nil {
			t.Fatalf("get streak: %v", err)
		}
		if rec.CurrentStreak != 1 || rec.TotalDays != 1 {
			t.Fatalf("iteration %d: counters = (%d, %d), want (1, 1)", i, rec.CurrentStreak, rec.TotalDays)
		}
	}
}

func TestCheckInSurfacesStoreReadFailure(t *testing.T) {
	repo := newMemStreakRepo()
	repo.failReads = true
	m := testMarriage()
	svc := newTestService(repo, m, day15)

	_, err := svc.CheckIn(context.Background(), userA, guildID)
	if !errors.Is(err, streak.ErrTransientStore) {
		t.Fatalf("expected ErrTransientStore, got %v", err)
	}
	repo.mu.Lock()
	created := len(repo.records)
	repo.mu.Unlock()
	if created != 0 {
		t.Errorf("read failure fabricated %d fresh records", created)
	}
}

func TestResetDailyCompletions(t *testing.T) {
	repo := newMemStreakRepo()
	m := testMarriage()
	u1, u2 := true, true
	seed(t, repo, m, "2025-06-01", &streak.Update{
		User1CompletedToday: &u1,
		User2CompletedToday: &u2,
	})
	svc := newTestService(repo, m, day15)
	ctx := context.Background()

	count, err := svc.ResetDailyCompletions(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	// Second run is a no-op.
	count, err = svc.ResetDailyCompletions(ctx)
	if err != nil {
		t.Fatalf("second reset: %v", err)
	}
	if count != 0 {
		t.Errorf("second run count = %d, want 0", count)
	}
}

func TestResetMonthlyRecoveries(t *testing.T) {
	repo := newMemStreakRepo()
	m := testMarriage()
	seed(t, repo, m, "2025-05-20", &streak.Update{
		RecoveriesUsedThisMonth: intp(3),
	})
	svc := newTestService(repo, m, day15)

	count, err := svc.ResetMonthlyRecoveries(context.Background())
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	rec, err := svc.GetStreak(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("get streak: %v", err)
	}
	if rec.RecoveriesUsedThisMonth != 0 {
		t.Errorf("recoveriesUsed = %d, want 0", rec.RecoveriesUsedThisMonth)
	}
	if rec.LastRecoveryResetDate != "2025-06-15" {
		t.Errorf("anchor = %s, want 2025-06-15", rec.LastRecoveryResetDate)
	}
}

func TestGetStreakByUserNotMarried(t *testing.T) {
	svc := newTestService(newMemStreakRepo(), testMarriage(), day15)

	rec, err := svc.GetStreakByUser(context.Background(), "stranger", guildID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record for unmarried user, got %+v", rec)
	}
}

func TestFormatStreakBox(t *testing.T) {
	m := testMarriage()
	rec := &streak.Streak{
		CurrentStreak:       7,
		User1CompletedToday: true,
	}
	svc := newTestService(newMemStreakRepo(), m, day15)

	box := svc.FormatStreakBox(rec, m)
	if len(box.Participants) != 2 {
		t.Fatalf("participants = %d, want 2", len(box.Participants))
	}
	if box.Participants[0].UserID != userA || !box.Participants[0].Completed {
		t.Errorf("participant 1 = %+v, want %s completed", box.Participants[0], userA)
	}
	if box.Participants[1].UserID != userB || box.Participants[1].Completed {
		t.Errorf("participant 2 = %+v, want %s pending", box.Participants[1], userB)
	}
	if box.CurrentStreak != 7 {
		t.Errorf("currentStreak = %d, want 7", box.CurrentStreak)
	}
	if box.BothCompleted {
		t.Error("bothCompleted = true, want false")
	}

	rec.User2CompletedToday = true
	if box := svc.FormatStreakBox(rec, m); !box.BothCompleted {
		t.Error("bothCompleted = false, want true")
	}
}
