package marriage

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ProposalButtonTTL is how long a proposal stays answerable.
const ProposalButtonTTL = 15 * time.Minute

var (
	ErrNotMarried        = errors.New("user is not married")
	ErrAlreadyMarried    = errors.New("user is already married")
	ErrPartnerMarried    = errors.New("proposed user is already married")
	ErrSelfProposal      = errors.New("cannot propose to yourself")
	ErrProposalExists    = errors.New("a pending proposal already exists")
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrProposalExpired   = errors.New("proposal has expired")
	ErrProposalRateLimit = errors.New("too many proposals, try again later")
)

type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalDeclined ProposalStatus = "declined"
	ProposalExpired  ProposalStatus = "expired"
)

type Proposal struct {
	ID              uuid.UUID      `json:"id" db:"id"`
	ProposerID      string         `json:"proposer_id" db:"proposer_id"`
	ProposedID      string         `json:"proposed_id" db:"proposed_id"`
	GuildID         string         `json:"guild_id" db:"guild_id"`
	ChannelID       string         `json:"channel_id" db:"channel_id"`
	Status          ProposalStatus `json:"status" db:"status"`
	ButtonExpiresAt time.Time      `json:"button_expires_at" db:"button_expires_at"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
}

type Marriage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	User1ID   string    `json:"user1_id" db:"user1_id"`
	User2ID   string    `json:"user2_id" db:"user2_id"`
	GuildID   string    `json:"guild_id" db:"guild_id"`
	ChannelID string    `json:"channel_id" db:"channel_id"`
	MarriedAt time.Time `json:"married_at" db:"married_at"`
}

// PartnerOf returns the other participant, or "" when userID is not part of
// the marriage.
func (m *Marriage) PartnerOf(userID string) string {
	switch userID {
	case m.User1ID:
		return m.User2ID
	case m.User2ID:
		return m.User1ID
	}
	return ""
}
