package domain

import "github.com/shopspring/decimal"

const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Trader is the short descriptor of the user behind an order.
type Trader struct {
	Name       string `json:"name"`
	Reputation int    `json:"reputation"`
	Online     bool   `json:"online"`
}

// Order is a single live offer for an item. Orders are ephemeral:
// they are fetched fresh every refresh cycle and never persisted.
type Order struct {
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Side     string          `json:"side"` // "buy" or "sell"
	Visible  bool            `json:"visible"`
	Level    int             `json:"level"` // condition level, 0 = base
	User     Trader          `json:"user"`
}

// Eligible reports whether the order may be considered for best-order
// selection: the submitting user is online, the order is visible, and it
// is at base condition. Non-base levels are noise for catalog-wide price
// comparison and are excluded on both sides.
func (o *Order) Eligible() bool {
	return o.User.Online && o.Visible && o.Level == 0
}

// IsSell reports whether the order is on the sell side.
func (o *Order) IsSell() bool {
	return o.Side == SideSell
}
