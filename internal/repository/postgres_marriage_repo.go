package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lovebotAPI/internal/types/marriage"
)

const marriageColumns = `id, user1_id, user2_id, guild_id, channel_id, married_at`
const proposalColumns = `id, proposer_id, proposed_id, guild_id, channel_id, status, button_expires_at, created_at`

type PostgresMarriageRepository struct {
	db *pgxpool.Pool
}

func NewPostgresMarriageRepository(db *pgxpool.Pool) *PostgresMarriageRepository {
	return &PostgresMarriageRepository{db: db}
}

func (r *PostgresMarriageRepository) GetByUser(ctx context.Context, userID, guildID string) (*marriage.Marriage, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM marriages
	WHERE (user1_id = $1 OR user2_id = $1) AND guild_id = $2`, marriageColumns)

	m := &marriage.Marriage{}
	err := r.db.QueryRow(ctx, query, userID, guildID).Scan(
		&m.ID, &m.User1ID, &m.User2ID, &m.GuildID, &m.ChannelID, &m.MarriedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get marriage: %w", err)
	}
	return m, nil
}

func (r *PostgresMarriageRepository) Create(ctx context.Context, m *marriage.Marriage) error {
	_, err := r.db.Exec(ctx, `
	INSERT INTO marriages (id, user1_id, user2_id, guild_id, channel_id, married_at)
	VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.User1ID, m.User2ID, m.GuildID, m.ChannelID, m.MarriedAt)
	if err != nil {
		return fmt.Errorf("failed to create marriage: %w", err)
	}
	return nil
}

func (r *PostgresMarriageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM marriages WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete marriage %s: %w", id, err)
	}
	return nil
}

func (r *PostgresMarriageRepository) CreateProposal(ctx context.Context, p *marriage.Proposal) error {
	_, err := r.db.Exec(ctx, `
	INSERT INTO proposals (id, proposer_id, proposed_id, guild_id, channel_id, status, button_expires_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.ProposerID, p.ProposedID, p.GuildID, p.ChannelID, p.Status, p.ButtonExpiresAt, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create proposal: %w", err)
	}
	return nil
}

func (r *PostgresMarriageRepository) GetProposal(ctx context.Context, id uuid.UUID) (*marriage.Proposal, error) {
	query := fmt.Sprintf(`SELECT %s FROM proposals WHERE id = $1`, proposalColumns)
	return r.scanProposal(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresMarriageRepository) GetPendingProposal(ctx context.Context, proposerID, proposedID, guildID string) (*marriage.Proposal, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM proposals
	WHERE proposer_id = $1 AND proposed_id = $2 AND guild_id = $3 AND status = 'pending'`, proposalColumns)
	return r.scanProposal(r.db.QueryRow(ctx, query, proposerID, proposedID, guildID))
}

func (r *PostgresMarriageRepository) UpdateProposalStatus(ctx context.Context, id uuid.UUID, status marriage.ProposalStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE proposals SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update proposal %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return marriage.ErrProposalNotFound
	}
	return nil
}

func (r *PostgresMarriageRepository) MarkExpiredProposals(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
	UPDATE proposals SET status = 'expired'
	WHERE status = 'pending' AND button_expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to mark expired proposals: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresMarriageRepository) DeleteProposalsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
	DELETE FROM proposals
	WHERE status IN ('expired', 'declined') AND created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up proposals: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresMarriageRepository) scanProposal(row pgx.Row) (*marriage.Proposal, error) {
	p := &marriage.Proposal{}
	err := row.Scan(
		&p.ID, &p.ProposerID, &p.ProposedID, &p.GuildID, &p.ChannelID,
		&p.Status, &p.ButtonExpiresAt, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get proposal: %w", err)
	}
	return p, nil
}
