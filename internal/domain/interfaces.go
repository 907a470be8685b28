package domain

import "context"

// CatalogEntry is one item discovered in the remote catalog listing.
type CatalogEntry struct {
	Name    string `json:"name"`
	URLName string `json:"url_name"`
	Thumb   string `json:"thumb,omitempty"`
}

// ItemDetail is the full item metadata embedded in an order-book
// response. It is only needed once per item per session.
type ItemDetail struct {
	Tags     []string
	Relics   []string
	Ducats   int
	WikiLink string
}

// OrderBook is the decoded order-book response for a single item.
type OrderBook struct {
	Orders []Order
	Detail *ItemDetail
}

// MarketSource is the opaque fetch boundary to the remote trading API.
// Implementations decode wire responses into domain shapes; the engine
// never sees the wire format.
type MarketSource interface {
	Catalog(ctx context.Context) ([]CatalogEntry, error)
	OrderBook(ctx context.Context, urlName string) (*OrderBook, error)
	Statistics(ctx context.Context, urlName string, window Window) ([]PriceSample, error)
}

// StoreListener receives single-slot change notifications from the
// record store. Implementations must not block: notifications are
// delivered synchronously from the refresh workers.
type StoreListener interface {
	RecordUpdated(slot int)
	RecordAdded(slot int)
}
