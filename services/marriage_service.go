package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"lovebotAPI/internal/clock"
	"lovebotAPI/internal/repository"
	"lovebotAPI/internal/types/marriage"
)

// cleanedUpProposalAge is how long terminal proposals are kept before the
// periodic sweep removes them.
const cleanedUpProposalAge = 24 * time.Hour

type proposerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MarriageService owns proposals, marriages and divorces. The streak engine
// only sees it through the narrow MarriageLookup interface.
type MarriageService struct {
	marriages repository.MarriageRepository
	clock     *clock.Clock

	mu       sync.Mutex
	limiters map[string]*proposerLimiter
}

func NewMarriageService(marriages repository.MarriageRepository, clk *clock.Clock) *MarriageService {
	return &MarriageService{
		marriages: marriages,
		clock:     clk,
		limiters:  make(map[string]*proposerLimiter),
	}
}

// GetByUser returns the caller's marriage in the guild, or nil when single.
func (s *MarriageService) GetByUser(ctx context.Context, userID, guildID string) (*marriage.Marriage, error) {
	return s.marriages.GetByUser(ctx, userID, guildID)
}

// CreateProposal validates and stores a new proposal. The answer buttons on
// the gateway side expire after marriage.ProposalButtonTTL.
func (s *MarriageService) CreateProposal(ctx context.Context, proposerID, proposedID, guildID, channelID string) (*marriage.Proposal, error) {
	if proposerID == proposedID {
		return nil, marriage.ErrSelfProposal
	}

	if m, err := s.marriages.GetByUser(ctx, proposerID, guildID); err != nil {
		return nil, err
	} else if m != nil {
		return nil, marriage.ErrAlreadyMarried
	}

	if m, err := s.marriages.GetByUser(ctx, proposedID, guildID); err != nil {
		return nil, err
	} else if m != nil {
		return nil, marriage.ErrPartnerMarried
	}

	pending, err := s.marriages.GetPendingProposal(ctx, proposerID, proposedID, guildID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, marriage.ErrProposalExists
	}

	if !s.allowProposal(proposerID, guildID) {
		return nil, marriage.ErrProposalRateLimit
	}

	now := s.clock.Now()
	p := &marriage.Proposal{
		ID:              uuid.New(),
		ProposerID:      proposerID,
		ProposedID:      proposedID,
		GuildID:         guildID,
		ChannelID:       channelID,
		Status:          marriage.ProposalPending,
		ButtonExpiresAt: now.Add(marriage.ProposalButtonTTL),
		CreatedAt:       now,
	}
	if err := s.marriages.CreateProposal(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RespondToProposal accepts or declines a pending proposal. Accepting
// creates the marriage; only the proposed user may respond.
func (s *MarriageService) RespondToProposal(ctx context.Context, proposalID uuid.UUID, responderID string, accept bool) (*marriage.Marriage, error) {
	p, err := s.marriages.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.Status != marriage.ProposalPending {
		return nil, marriage.ErrProposalNotFound
	}
	if p.ProposedID != responderID {
		return nil, errors.New("only the proposed user can respond to this proposal")
	}
	if s.clock.Now().After(p.ButtonExpiresAt) {
		if err := s.marriages.UpdateProposalStatus(ctx, p.ID, marriage.ProposalExpired); err != nil {
			log.Printf("[MarriageService] Failed to mark proposal %s expired: %v", p.ID, err)
		}
		return nil, marriage.ErrProposalExpired
	}

	if !accept {
		if err := s.marriages.UpdateProposalStatus(ctx, p.ID, marriage.ProposalDeclined); err != nil {
			return nil, err
		}
		return nil, nil
	}

	// Either party may have married someone else while the buttons sat
	// unanswered.
	for _, userID := range []string{p.ProposerID, p.ProposedID} {
		if m, err := s.marriages.GetByUser(ctx, userID, p.GuildID); err != nil {
			return nil, err
		} else if m != nil {
			return nil, marriage.ErrAlreadyMarried
		}
	}

	m := &marriage.Marriage{
		ID:        uuid.New(),
		User1ID:   p.ProposerID,
		User2ID:   p.ProposedID,
		GuildID:   p.GuildID,
		ChannelID: p.ChannelID,
		MarriedAt: s.clock.Now(),
	}
	if err := s.marriages.Create(ctx, m); err != nil {
		return nil, err
	}
	if err := s.marriages.UpdateProposalStatus(ctx, p.ID, marriage.ProposalAccepted); err != nil {
		return nil, err
	}
	return m, nil
}

// Divorce removes the marriage. The streak record goes with it via the
// ON DELETE CASCADE on love_streaks.marriage_id.
func (s *MarriageService) Divorce(ctx context.Context, userID, guildID string) error {
	m, err := s.marriages.GetByUser(ctx, userID, guildID)
	if err != nil {
		return err
	}
	if m == nil {
		return marriage.ErrNotMarried
	}
	return s.marriages.Delete(ctx, m.ID)
}

// CleanupProposals marks pending proposals past their button expiry and
// removes terminal ones older than a day. Called by the periodic worker and
// on startup.
func (s *MarriageService) CleanupProposals(ctx context.Context) (int64, error) {
	now := s.clock.Now()

	marked, err := s.marriages.MarkExpiredProposals(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to mark expired proposals: %w", err)
	}
	if marked > 0 {
		log.Printf("[MarriageService] Marked %d proposals expired", marked)
	}

	removed, err := s.marriages.DeleteProposalsBefore(ctx, now.Add(-cleanedUpProposalAge))
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale proposals: %w", err)
	}

	s.pruneLimiters(now)
	return removed, nil
}

func (s *MarriageService) allowProposal(proposerID, guildID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := proposerID + ":" + guildID
	l, ok := s.limiters[key]
	if !ok {
		// One proposal every ten minutes, small initial burst.
		l = &proposerLimiter{limiter: rate.NewLimiter(rate.Every(10*time.Minute), 2)}
		s.limiters[key] = l
	}
	l.lastSeen = s.clock.Now()
	return l.limiter.Allow()
}

func (s *MarriageService) pruneLimiters(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, l := range s.limiters {
		if now.Sub(l.lastSeen) > time.Hour {
			delete(s.limiters, key)
		}
	}
}
