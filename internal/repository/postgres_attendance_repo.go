package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lovebotAPI/internal/types/attendance"
)

type PostgresAttendanceRepository struct {
	db *pgxpool.Pool
}

func NewPostgresAttendanceRepository(db *pgxpool.Pool) *PostgresAttendanceRepository {
	return &PostgresAttendanceRepository{db: db}
}

func (r *PostgresAttendanceRepository) Insert(ctx context.Context, rec *attendance.Record) error {
	_, err := r.db.Exec(ctx, `
	INSERT INTO attendance (id, user_id, guild_id, channel_id, channel_name, date, recorded_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.UserID, rec.GuildID, rec.ChannelID, rec.ChannelName, rec.Date, rec.RecordedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return attendance.ErrAlreadyRecorded
		}
		return fmt.Errorf("failed to record attendance: %w", err)
	}
	return nil
}

func (r *PostgresAttendanceRepository) GetStats(ctx context.Context, userID, guildID string) (*attendance.Stats, error) {
	stats := &attendance.Stats{}
	err := r.db.QueryRow(ctx, `
	SELECT COUNT(*), MAX(date)
	FROM attendance
	WHERE user_id = $1 AND guild_id = $2`, userID, guildID).Scan(
		&stats.TotalDays, &stats.LastAttendanceDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance stats: %w", err)
	}
	return stats, nil
}
