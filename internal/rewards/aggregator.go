// internal/rewards/aggregator.go

// Package rewards folds a stream of per-product grades into one bounded
// account value per user, with counters and an append-only history log.
package rewards

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"ecoscore/internal/common/config"
	apperrors "ecoscore/internal/common/errors"
	"ecoscore/internal/common/logger"
	"ecoscore/internal/common/metrics"
	"ecoscore/internal/models"
)

type Aggregator struct {
	store     AccountStore
	fallback  *MemoryAccountStore
	deltas    map[string]int
	favorable map[string]bool

	startValue   int
	historyLimit int

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	logger logger.Logger
	now    func() time.Time
}

func NewAggregator(store AccountStore, cfg config.RewardsConfig, favorableGrades []string, log logger.Logger) *Aggregator {
	favorable := make(map[string]bool, len(favorableGrades))
	for _, g := range favorableGrades {
		favorable[g] = true
	}
	return &Aggregator{
		store:        store,
		fallback:     NewMemoryAccountStore(),
		deltas:       cfg.Deltas,
		favorable:    favorable,
		startValue:   cfg.StartValue,
		historyLimit: cfg.HistoryLimit,
		locks:        make(map[string]*sync.Mutex),
		logger:       log.With(map[string]interface{}{"component": "rewards"}),
		now:          time.Now,
	}
}

// Apply folds one grade into the account, creating it lazily at the neutral
// start value. The account value is clamped to [0,100]; an unrecognized
// grade applies delta 0 and logs a data-integrity warning, never an error.
// Mutations for the same account are serialized; different accounts are
// fully independent.
func (a *Aggregator) Apply(ctx context.Context, accountID, grade string) (models.RewardAccount, error) {
	lock := a.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	account := a.load(ctx, accountID)

	delta, ok := a.deltas[grade]
	if !ok {
		serr := apperrors.NewUnknownGradeError(grade)
		a.logger.Warn("unrecognized grade, applying zero delta", map[string]interface{}{
			"accountId": accountID,
			"grade":     grade,
			"code":      string(serr.Code),
			"category":  apperrors.GetErrorCategory(serr.Code),
		})
		delta = 0
	}

	account.Value = clampValue(account.Value + delta)
	account.TotalCount++
	if a.favorable[grade] {
		account.FavorableCount++
	}
	account.History = append(account.History, models.RewardEvent{
		ID:        uuid.NewString(),
		Grade:     grade,
		Delta:     delta,
		Timestamp: a.now().UTC(),
	})
	if a.historyLimit > 0 && len(account.History) > a.historyLimit {
		// Cap retained history, keeping the newest entries.
		trimmed := make([]models.RewardEvent, a.historyLimit)
		copy(trimmed, account.History[len(account.History)-a.historyLimit:])
		account.History = trimmed
	}
	account.UpdatedAt = a.now().UTC()

	a.persist(ctx, account)
	metrics.RewardApplies.WithLabelValues(grade).Inc()

	return account, nil
}

// Snapshot returns the current account state. A missing account yields a
// fresh one at the neutral start value, without persisting it.
func (a *Aggregator) Snapshot(ctx context.Context, accountID string) models.RewardAccount {
	lock := a.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()
	return a.load(ctx, accountID)
}

// Direction reports the account's change for one applied grade.
func (a *Aggregator) Direction(grade string) models.Direction {
	return models.DirectionOf(a.deltas[grade])
}

// load reads through store then fallback, creating a fresh account when
// neither holds one. Caller must hold the account lock.
func (a *Aggregator) load(ctx context.Context, accountID string) models.RewardAccount {
	account, err := a.store.Get(ctx, accountID)
	if err == nil {
		return account
	}
	if !errors.Is(err, ErrAccountNotFound) {
		a.logger.Warn("account store read failed, using local fallback", map[string]interface{}{
			"accountId": accountID,
			"error":     err.Error(),
		})
		metrics.StoreFallbacks.WithLabelValues("rewards").Inc()
		if local, err := a.fallback.Get(ctx, accountID); err == nil {
			return local
		}
	}

	return models.RewardAccount{
		AccountID: accountID,
		Value:     a.startValue,
	}
}

// persist writes the account, degrading to the local fallback on outage.
func (a *Aggregator) persist(ctx context.Context, account models.RewardAccount) {
	if err := a.store.Upsert(ctx, account); err != nil {
		a.logger.Warn("account store write failed, degrading to local store", map[string]interface{}{
			"accountId": account.AccountID,
			"error":     err.Error(),
		})
		metrics.StoreFallbacks.WithLabelValues("rewards").Inc()
		_ = a.fallback.Upsert(ctx, account)
	}
}

// accountLock returns the per-account mutex, creating it on first use.
func (a *Aggregator) accountLock(accountID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.locks[accountID]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[accountID] = lock
	}
	return lock
}

func clampValue(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
