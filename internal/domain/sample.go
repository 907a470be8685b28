package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Window names a historical time range over which price samples are
// aggregated. The values match the remote API's statistics keys.
type Window string

const (
	// WindowShort is the recent 48-hour statistics window.
	WindowShort Window = "48hours"
	// WindowLong is the historical 90-day statistics window.
	WindowLong Window = "90days"
)

// PriceSample is one closed-statistics data point for an item.
// Only level-0 (base condition) samples participate in averages and
// trends; higher levels describe upgraded variants of the same item.
type PriceSample struct {
	Median decimal.Decimal `json:"median"`
	Level  int             `json:"level"`
	At     time.Time       `json:"at"`
}

// Trend classifies the direction of an item's price movement.
type Trend string

const (
	TrendIncreasing Trend = "Increasing"
	TrendDecreasing Trend = "Decreasing"
	TrendEven       Trend = "Even"
)
