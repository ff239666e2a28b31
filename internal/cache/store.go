// internal/cache/store.go
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	apperrors "ecoscore/internal/common/errors"
	"ecoscore/internal/models"
)

// ErrNotFound marks a cache/store miss. Absence is a valid, non-error
// outcome for callers; the sentinel only distinguishes miss from outage.
var ErrNotFound = fmt.Errorf("score record not found")

// ScoreStore is the persistent keyed storage boundary for score records.
type ScoreStore interface {
	Get(ctx context.Context, productKey string) (models.ScoreBreakdown, error)
	Upsert(ctx context.Context, record models.ScoreBreakdown) error
	Delete(ctx context.Context, productKey string) error
}

// PostgresScoreStore persists breakdowns as JSONB rows keyed by product key.
type PostgresScoreStore struct {
	db *sql.DB
}

func NewPostgresScoreStore(db *sql.DB) *PostgresScoreStore {
	return &PostgresScoreStore{db: db}
}

func (s *PostgresScoreStore) Get(ctx context.Context, productKey string) (models.ScoreBreakdown, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM score_records WHERE product_key = $1`, productKey).Scan(&payload)
	if err == sql.ErrNoRows {
		return models.ScoreBreakdown{}, ErrNotFound
	}
	if err != nil {
		return models.ScoreBreakdown{}, apperrors.NewStoreUnavailableError("postgres", err)
	}

	var record models.ScoreBreakdown
	if err := json.Unmarshal(payload, &record); err != nil {
		return models.ScoreBreakdown{}, fmt.Errorf("decode score record: %w", err)
	}
	return record, nil
}

func (s *PostgresScoreStore) Upsert(ctx context.Context, record models.ScoreBreakdown) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode score record: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO score_records (product_key, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (product_key) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = NOW()`,
		record.ProductKey, payload)
	if err != nil {
		return apperrors.NewStoreWriteFailedError("postgres", err)
	}
	return nil
}

func (s *PostgresScoreStore) Delete(ctx context.Context, productKey string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM score_records WHERE product_key = $1`, productKey)
	if err != nil {
		return apperrors.NewStoreWriteFailedError("postgres", err)
	}
	return nil
}

// MemoryScoreStore is the process-local fallback used when the persistent
// store is unreachable. At-most-one-write semantics hold within the process;
// cross-process deduplication is lost in this mode.
type MemoryScoreStore struct {
	mu      sync.RWMutex
	records map[string]models.ScoreBreakdown
}

func NewMemoryScoreStore() *MemoryScoreStore {
	return &MemoryScoreStore{records: make(map[string]models.ScoreBreakdown)}
}

func (s *MemoryScoreStore) Get(_ context.Context, productKey string) (models.ScoreBreakdown, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[productKey]
	if !ok {
		return models.ScoreBreakdown{}, ErrNotFound
	}
	return record, nil
}

func (s *MemoryScoreStore) Upsert(_ context.Context, record models.ScoreBreakdown) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ProductKey] = record
	return nil
}

func (s *MemoryScoreStore) Delete(_ context.Context, productKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, productKey)
	return nil
}
