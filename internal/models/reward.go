// internal/models/reward.go
package models

import "time"

// RewardEvent is one append-only history entry on a reward account.
type RewardEvent struct {
	ID        string    `json:"id"`
	Grade     string    `json:"grade"`
	Delta     int       `json:"delta"`
	Timestamp time.Time `json:"timestamp"`
}

// RewardAccount is the bounded, history-tracked state aggregating many
// product evaluations for one user. Value stays in [0,100]; history grows
// append-only (callers may cap retained length).
type RewardAccount struct {
	AccountID      string        `json:"accountId"`
	Value          int           `json:"value"`
	TotalCount     int           `json:"totalCount"`
	FavorableCount int           `json:"favorableCount"`
	History        []RewardEvent `json:"history"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// Direction describes the account's change for one applied product.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// DirectionOf maps a signed delta to a direction.
func DirectionOf(delta int) Direction {
	switch {
	case delta > 0:
		return DirectionUp
	case delta < 0:
		return DirectionDown
	default:
		return DirectionFlat
	}
}
