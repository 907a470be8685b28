package domain

import "github.com/shopspring/decimal"

// ItemRecord is the latest computed state of one tradable item. Identity
// is the display name assigned at catalog load; Slot is the record's
// stable index in the record store for the lifetime of one catalog load.
//
// A record is mutated in place by whichever refresh worker currently owns
// its slot; readers always receive copies.
type ItemRecord struct {
	Slot    int    `json:"slot"`
	Name    string `json:"name"`
	URLName string `json:"url_name"`

	// Catalog metadata, filled in on the first detailed refresh.
	Tags     []string `json:"tags,omitempty"`
	Relics   []string `json:"relics,omitempty"`
	Ducats   int      `json:"ducats,omitempty"`
	WikiLink string   `json:"wiki_link,omitempty"`
	Detailed bool     `json:"detailed"`

	// Derived market state, recomputed every completed cycle.
	BuyOrder    *Order           `json:"buy_order,omitempty"`
	SellOrder   *Order           `json:"sell_order,omitempty"`
	BuyPrice    *decimal.Decimal `json:"buy_price,omitempty"`
	SellPrice   *decimal.Decimal `json:"sell_price,omitempty"`
	Profit      *decimal.Decimal `json:"profit,omitempty"`
	Avg48h      decimal.Decimal  `json:"avg_48h"`
	Avg90d      decimal.Decimal  `json:"avg_90d"`
	Trend       Trend            `json:"trend"`
	SampleCount int              `json:"sample_count"`
	GoodBuy     bool             `json:"good_buy"`

	// Fresh marks records whose derived fields were computed this
	// session, as opposed to values restored from a previous one.
	Fresh bool `json:"fresh"`

	// User-assigned tracking target.
	Track TrackTarget `json:"track"`
}

// DucatsPerPlat returns the ducat value per platinum spent, using the
// current best sell price and falling back to the 48-hour average when no
// sell order exists. Zero when the item has no ducat value or no price.
func (r *ItemRecord) DucatsPerPlat() decimal.Decimal {
	if r.Ducats == 0 {
		return decimal.Zero
	}
	d := decimal.NewFromInt(int64(r.Ducats))
	if r.SellPrice != nil && !r.SellPrice.IsZero() {
		return d.Div(*r.SellPrice)
	}
	if !r.Avg48h.IsZero() {
		return d.Div(r.Avg48h)
	}
	return decimal.Zero
}

// CurrentPrice returns the price the tracking target is evaluated
// against: the best sell price when present, else the 48-hour average.
// The second return is false when neither is available.
func (r *ItemRecord) CurrentPrice() (decimal.Decimal, bool) {
	if r.SellPrice != nil {
		return *r.SellPrice, true
	}
	if !r.Avg48h.IsZero() {
		return r.Avg48h, true
	}
	return decimal.Zero, false
}
