package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"curvescope/internal/model"
	"curvescope/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	event_type   TEXT NOT NULL,
	address      TEXT NOT NULL,
	block_number BIGINT NOT NULL,
	tx_hash      TEXT NOT NULL,
	tx_index     BIGINT NOT NULL,
	log_index    BIGINT NOT NULL,
	payload      JSONB NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (block_number, tx_index, log_index)
)`

// Store provides Postgres persistence for decoded events.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// PutEventBatch inserts a batch of events; replays of the same chain
// position are ignored so backfills stay idempotent.
func (s *Store) PutEventBatch(events []model.Event) error {
	return s.PutEventBatchContext(context.Background(), events)
}

// PutEventBatchContext is PutEventBatch with an explicit context.
func (s *Store) PutEventBatchContext(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, event := range events {
		record := storage.NewEventRecord(event)
		payload, err := json.Marshal(record.Payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		batch.Queue(`
			INSERT INTO events (
				event_type, address, block_number, tx_hash, tx_index, log_index, payload
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (block_number, tx_index, log_index) DO NOTHING
		`,
			record.Type,
			record.Address,
			int64(record.BlockNumber),
			record.TxHash,
			int64(record.TxIndex),
			int64(record.LogIndex),
			payload,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
