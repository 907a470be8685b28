package domain

import "github.com/shopspring/decimal"

// TrackTarget is a user-assigned price target on an item.
type TrackTarget struct {
	Enabled bool            `json:"enabled"`
	Price   decimal.Decimal `json:"price"`
	// Direction is "UP" or "DOWN", fixed when the target is set so a
	// price crossing the target from either side triggers exactly once.
	Direction string `json:"direction,omitempty"`
}

// NewTrackTarget creates a target relative to the current price.
// Direction is determined automatically:
//   - UP: target > current (waiting for the price to rise)
//   - DOWN: target < current (waiting for the price to fall)
func NewTrackTarget(target, current decimal.Decimal) TrackTarget {
	direction := "UP"
	if target.LessThan(current) {
		direction = "DOWN"
	}
	return TrackTarget{
		Enabled:   true,
		Price:     target,
		Direction: direction,
	}
}

// Hit reports whether the target condition is met at the given price.
func (t *TrackTarget) Hit(current decimal.Decimal) bool {
	if !t.Enabled {
		return false
	}
	switch t.Direction {
	case "UP":
		return current.GreaterThanOrEqual(t.Price)
	case "DOWN":
		return current.LessThanOrEqual(t.Price)
	default:
		return false
	}
}
