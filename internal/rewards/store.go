// internal/rewards/store.go
package rewards

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	apperrors "ecoscore/internal/common/errors"
	"ecoscore/internal/models"
)

// ErrAccountNotFound marks a missing account. Absence is a valid outcome:
// accounts are created lazily on first fold.
var ErrAccountNotFound = fmt.Errorf("reward account not found")

// AccountStore is the keyed storage boundary for reward accounts.
type AccountStore interface {
	Get(ctx context.Context, accountID string) (models.RewardAccount, error)
	Upsert(ctx context.Context, account models.RewardAccount) error
}

// PostgresAccountStore persists accounts with their history as JSONB.
type PostgresAccountStore struct {
	db *sql.DB
}

func NewPostgresAccountStore(db *sql.DB) *PostgresAccountStore {
	return &PostgresAccountStore{db: db}
}

func (s *PostgresAccountStore) Get(ctx context.Context, accountID string) (models.RewardAccount, error) {
	var (
		account models.RewardAccount
		history []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT account_id, value, total_count, favorable_count, history, updated_at
		FROM reward_accounts WHERE account_id = $1`, accountID).
		Scan(&account.AccountID, &account.Value, &account.TotalCount,
			&account.FavorableCount, &history, &account.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.RewardAccount{}, ErrAccountNotFound
	}
	if err != nil {
		return models.RewardAccount{}, apperrors.NewStoreUnavailableError("postgres", err)
	}

	if err := json.Unmarshal(history, &account.History); err != nil {
		account.History = nil
	}
	return account, nil
}

func (s *PostgresAccountStore) Upsert(ctx context.Context, account models.RewardAccount) error {
	history, err := json.Marshal(account.History)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reward_accounts (account_id, value, total_count, favorable_count, history, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (account_id) DO UPDATE
		SET value = EXCLUDED.value,
		    total_count = EXCLUDED.total_count,
		    favorable_count = EXCLUDED.favorable_count,
		    history = EXCLUDED.history,
		    updated_at = EXCLUDED.updated_at`,
		account.AccountID, account.Value, account.TotalCount,
		account.FavorableCount, history, account.UpdatedAt)
	if err != nil {
		return apperrors.NewStoreWriteFailedError("postgres", err)
	}
	return nil
}

// MemoryAccountStore is the process-local fallback for store outages.
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]models.RewardAccount
}

func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{accounts: make(map[string]models.RewardAccount)}
}

func (s *MemoryAccountStore) Get(_ context.Context, accountID string) (models.RewardAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[accountID]
	if !ok {
		return models.RewardAccount{}, ErrAccountNotFound
	}
	return cloneAccount(account), nil
}

func (s *MemoryAccountStore) Upsert(_ context.Context, account models.RewardAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.AccountID] = cloneAccount(account)
	return nil
}

// cloneAccount copies the history slice so callers cannot alias stored state.
func cloneAccount(a models.RewardAccount) models.RewardAccount {
	out := a
	out.History = make([]models.RewardEvent, len(a.History))
	copy(out.History, a.History)
	return out
}
