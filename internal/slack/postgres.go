package slack

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectionSchema = `
CREATE TABLE IF NOT EXISTS slack_selected_channels (
    team_id    TEXT NOT NULL,
    channel_id TEXT NOT NULL,
    position   INT  NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (team_id, channel_id)
)`

// PostgresSelectionStore stores selections in slack_selected_channels.
type PostgresSelectionStore struct {
	pool *pgxpool.Pool
}

func NewPostgresSelectionStore(pool *pgxpool.Pool) *PostgresSelectionStore {
	return &PostgresSelectionStore{pool: pool}
}

// OpenPostgresSelectionStore connects, pings and ensures the schema exists.
func OpenPostgresSelectionStore(ctx context.Context, databaseURL string) (*PostgresSelectionStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	store := NewPostgresSelectionStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresSelectionStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, selectionSchema); err != nil {
		return fmt.Errorf("failed to create selection table: %w", err)
	}
	return nil
}

func (s *PostgresSelectionStore) Close() {
	s.pool.Close()
}

func (s *PostgresSelectionStore) Load(ctx context.Context, teamID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT channel_id FROM slack_selected_channels
        WHERE team_id = $1
        ORDER BY position
    `, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load selected channels: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan selected channels: %w", err)
	}
	return ids, nil
}

// Save replaces the team's selection in one transaction.
func (s *PostgresSelectionStore) Save(ctx context.Context, teamID string, channelIDs []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM slack_selected_channels WHERE team_id = $1`, teamID); err != nil {
		return fmt.Errorf("failed to clear selected channels: %w", err)
	}

	batch := &pgx.Batch{}
	for i, id := range dedupe(channelIDs) {
		batch.Queue(`
            INSERT INTO slack_selected_channels (team_id, channel_id, position)
            VALUES ($1, $2, $3)
        `, teamID, id, i)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert selected channels: %w", err)
		}
	}

	return tx.Commit(ctx)
}
