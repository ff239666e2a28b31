package rewards

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecoscore/internal/common/config"
	"ecoscore/internal/common/logger"
	"ecoscore/internal/models"
)

func newTestAggregator(t *testing.T, store AccountStore) *Aggregator {
	t.Helper()
	if store == nil {
		store = NewMemoryAccountStore()
	}
	return NewAggregator(store, config.RewardsConfig{
		Deltas:       config.DefaultRewardDeltas(),
		StartValue:   50,
		HistoryLimit: 200,
	}, config.DefaultFavorableGrades(), logger.NewNoOpLogger())
}

func TestApply_CreatesAccountLazily(t *testing.T) {
	a := newTestAggregator(t, nil)

	account, err := a.Apply(context.Background(), "user-1", "A")
	require.NoError(t, err)

	assert.Equal(t, "user-1", account.AccountID)
	assert.Equal(t, 65, account.Value) // 50 start + 15 for grade A
	assert.Equal(t, 1, account.TotalCount)
	assert.Equal(t, 1, account.FavorableCount)
	require.Len(t, account.History, 1)
	assert.Equal(t, "A", account.History[0].Grade)
	assert.Equal(t, 15, account.History[0].Delta)
	assert.NotEmpty(t, account.History[0].ID)
}

func TestApply_DeltaTable(t *testing.T) {
	tests := []struct {
		grade    string
		expected int
	}{
		{"A", 65}, {"B", 60}, {"C", 55}, {"D", 50}, {"E", 45}, {"F", 40}, {"G", 35},
	}

	for _, tt := range tests {
		t.Run(tt.grade, func(t *testing.T) {
			a := newTestAggregator(t, nil)
			account, err := a.Apply(context.Background(), "user", tt.grade)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, account.Value)
		})
	}
}

func TestApply_ClampsAtUpperBound(t *testing.T) {
	store := NewMemoryAccountStore()
	require.NoError(t, store.Upsert(context.Background(), models.RewardAccount{
		AccountID: "user", Value: 95,
	}))
	a := newTestAggregator(t, store)

	var account models.RewardAccount
	var err error
	for i := 0; i < 4; i++ { // +15 each from 95
		account, err = a.Apply(context.Background(), "user", "A")
		require.NoError(t, err)
		assert.LessOrEqual(t, account.Value, 100)
	}

	assert.Equal(t, 100, account.Value)
	assert.Equal(t, 4, account.TotalCount, "counters keep advancing at the bound")
}

func TestApply_ClampsAtLowerBound(t *testing.T) {
	store := NewMemoryAccountStore()
	require.NoError(t, store.Upsert(context.Background(), models.RewardAccount{
		AccountID: "user", Value: 5,
	}))
	a := newTestAggregator(t, store)

	var account models.RewardAccount
	var err error
	for i := 0; i < 4; i++ { // -15 each from 5
		account, err = a.Apply(context.Background(), "user", "G")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, account.Value, 0)
	}

	assert.Equal(t, 0, account.Value)
	assert.Equal(t, 4, account.TotalCount)
	assert.Len(t, account.History, 4, "history records events even at the bound")
}

func TestApply_UnknownGradeAppliesZeroDelta(t *testing.T) {
	a := newTestAggregator(t, nil)

	account, err := a.Apply(context.Background(), "user", "Z")
	require.NoError(t, err, "an unknown grade must never fail the fold")

	assert.Equal(t, 50, account.Value)
	assert.Equal(t, 1, account.TotalCount)
	assert.Equal(t, 0, account.FavorableCount)
	require.Len(t, account.History, 1)
	assert.Equal(t, 0, account.History[0].Delta)
}

func TestApply_FavorableCountsOnlyTopGrades(t *testing.T) {
	a := newTestAggregator(t, nil)

	for _, grade := range []string{"A", "B", "C", "G", "B"} {
		_, err := a.Apply(context.Background(), "user", grade)
		require.NoError(t, err)
	}

	account := a.Snapshot(context.Background(), "user")
	assert.Equal(t, 5, account.TotalCount)
	assert.Equal(t, 3, account.FavorableCount)
}

func TestApply_HistoryIsAppendOnly(t *testing.T) {
	a := newTestAggregator(t, nil)

	first, err := a.Apply(context.Background(), "user", "A")
	require.NoError(t, err)
	firstEvent := first.History[0]

	second, err := a.Apply(context.Background(), "user", "G")
	require.NoError(t, err)

	require.Len(t, second.History, 2)
	assert.Equal(t, firstEvent.ID, second.History[0].ID, "prior entries must be untouched")
	assert.Equal(t, firstEvent.Grade, second.History[0].Grade)
	assert.Equal(t, "G", second.History[1].Grade)
}

func TestApply_HistoryCapKeepsNewest(t *testing.T) {
	store := NewMemoryAccountStore()
	a := NewAggregator(store, config.RewardsConfig{
		Deltas:       config.DefaultRewardDeltas(),
		StartValue:   50,
		HistoryLimit: 3,
	}, config.DefaultFavorableGrades(), logger.NewNoOpLogger())

	grades := []string{"A", "B", "C", "D", "E"}
	var account models.RewardAccount
	var err error
	for _, g := range grades {
		account, err = a.Apply(context.Background(), "user", g)
		require.NoError(t, err)
	}

	require.Len(t, account.History, 3)
	assert.Equal(t, "C", account.History[0].Grade)
	assert.Equal(t, "D", account.History[1].Grade)
	assert.Equal(t, "E", account.History[2].Grade)
	assert.Equal(t, 5, account.TotalCount, "counters outlive trimmed history")
}

func TestApply_ConcurrentFoldsSerialize(t *testing.T) {
	// Unit deltas keep the value strictly inside [0,100] for every
	// interleaving, so the final value is order-independent.
	a := NewAggregator(NewMemoryAccountStore(), config.RewardsConfig{
		Deltas:       map[string]int{"up": 1, "down": -1},
		StartValue:   50,
		HistoryLimit: 200,
	}, nil, logger.NewNoOpLogger())

	const folds = 40
	var wg sync.WaitGroup
	for i := 0; i < folds; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			grade := "up"
			if i%2 == 1 {
				grade = "down"
			}
			_, err := a.Apply(context.Background(), "user", grade)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	account := a.Snapshot(context.Background(), "user")
	assert.Equal(t, folds, account.TotalCount, "no fold may be lost")
	assert.Len(t, account.History, folds)
	assert.Equal(t, 50, account.Value, "balanced deltas return to the start value")
}

func TestApply_AccountsAreIndependent(t *testing.T) {
	a := newTestAggregator(t, nil)

	_, err := a.Apply(context.Background(), "user-1", "A")
	require.NoError(t, err)
	_, err = a.Apply(context.Background(), "user-2", "G")
	require.NoError(t, err)

	assert.Equal(t, 65, a.Snapshot(context.Background(), "user-1").Value)
	assert.Equal(t, 35, a.Snapshot(context.Background(), "user-2").Value)
}

func TestApply_StoreOutageDegradesToFallback(t *testing.T) {
	a := newTestAggregator(t, &failingAccountStore{})

	first, err := a.Apply(context.Background(), "user", "A")
	require.NoError(t, err, "a store outage must not fail the fold")
	assert.Equal(t, 65, first.Value)

	// State survived in the local fallback.
	second, err := a.Apply(context.Background(), "user", "B")
	require.NoError(t, err)
	assert.Equal(t, 75, second.Value)
	assert.Equal(t, 2, second.TotalCount)
}

func TestSnapshot_MissingAccountIsNeutral(t *testing.T) {
	a := newTestAggregator(t, nil)

	account := a.Snapshot(context.Background(), "nobody")
	assert.Equal(t, 50, account.Value)
	assert.Zero(t, account.TotalCount)
	assert.Empty(t, account.History)
}

func TestDirection(t *testing.T) {
	a := newTestAggregator(t, nil)

	assert.Equal(t, models.DirectionUp, a.Direction("A"))
	assert.Equal(t, models.DirectionDown, a.Direction("G"))
	assert.Equal(t, models.DirectionFlat, a.Direction("D"))
	assert.Equal(t, models.DirectionFlat, a.Direction("Z"))
}

func TestApply_EventTimestampsAdvance(t *testing.T) {
	a := newTestAggregator(t, nil)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	a.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	_, err := a.Apply(context.Background(), "user", "A")
	require.NoError(t, err)
	account, err := a.Apply(context.Background(), "user", "B")
	require.NoError(t, err)

	require.Len(t, account.History, 2)
	assert.True(t, account.History[1].Timestamp.After(account.History[0].Timestamp))
}

type failingAccountStore struct{}

func (s *failingAccountStore) Get(_ context.Context, _ string) (models.RewardAccount, error) {
	return models.RewardAccount{}, assert.AnError
}

func (s *failingAccountStore) Upsert(_ context.Context, _ models.RewardAccount) error {
	return assert.AnError
}
