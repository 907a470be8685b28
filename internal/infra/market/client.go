package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"platwatch/internal/domain"
	"platwatch/internal/infra"
)

// Client talks to the remote trading API. It implements
// domain.MarketSource; all three call shapes are plain read-only GETs
// decoded into domain types at this boundary.
type Client struct {
	http *resty.Client
}

// Options configures a Client.
type Options struct {
	BaseURL  string
	Platform string // sent as the Platform header on every request
	Timeout  time.Duration
}

// NewClient creates a market client for the given API root.
func NewClient(opts Options) *Client {
	c := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", infra.DefaultUserAgent)
	if opts.Platform != "" {
		c.SetHeader("Platform", opts.Platform)
	}
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	return &Client{http: c}
}

// Catalog fetches the full item listing: one (display name, lookup key)
// pair per tradable item.
func (c *Client) Catalog(ctx context.Context) ([]domain.CatalogEntry, error) {
	var env itemsEnvelope
	if err := c.getJSON(ctx, "catalog", "/items", &env); err != nil {
		return nil, err
	}
	if len(env.Payload.Items) == 0 {
		return nil, domain.NewMalformedResponseError("catalog", fmt.Errorf("empty items payload"))
	}

	entries := make([]domain.CatalogEntry, 0, len(env.Payload.Items))
	for _, it := range env.Payload.Items {
		if it.ItemName == "" || it.URLName == "" {
			continue
		}
		entries = append(entries, domain.CatalogEntry{
			Name:    it.ItemName,
			URLName: it.URLName,
			Thumb:   it.Thumb,
		})
	}
	return entries, nil
}

// OrderBook fetches the current orders for one item, including the full
// item metadata the API piggybacks on the response.
func (c *Client) OrderBook(ctx context.Context, urlName string) (*domain.OrderBook, error) {
	var env ordersEnvelope
	path := fmt.Sprintf("/items/%s/orders?include=item", urlName)
	if err := c.getJSON(ctx, "orders", path, &env); err != nil {
		return nil, err
	}

	book := &domain.OrderBook{
		Orders: make([]domain.Order, 0, len(env.Payload.Orders)),
	}
	for i := range env.Payload.Orders {
		book.Orders = append(book.Orders, env.Payload.Orders[i].toDomain())
	}
	if env.Include.Item != nil {
		book.Detail = env.Include.Item.toDetail()
	}
	return book, nil
}

// Statistics fetches the closed-statistics samples for one item over the
// named window. Samples of all condition levels are returned; filtering
// is the cache's concern.
func (c *Client) Statistics(ctx context.Context, urlName string, window domain.Window) ([]domain.PriceSample, error) {
	var env statisticsEnvelope
	path := fmt.Sprintf("/items/%s/statistics?include=item", urlName)
	if err := c.getJSON(ctx, "statistics", path, &env); err != nil {
		return nil, err
	}

	period, ok := env.Payload.StatisticsClosed[string(window)]
	if !ok {
		return nil, domain.NewMalformedResponseError("statistics",
			fmt.Errorf("window %q missing from response", window))
	}

	samples := make([]domain.PriceSample, 0, len(period))
	for i := range period {
		samples = append(samples, period[i].toDomain())
	}
	return samples, nil
}

// getJSON performs a GET and decodes the body, classifying failures:
// transport errors and throttling/server statuses are transient, decode
// failures are malformed, anything else is a hard failure.
func (c *Client) getJSON(ctx context.Context, op, path string, dst interface{}) error {
	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return domain.NewTransientFetchError(op, err)
	}

	status := resp.StatusCode()
	switch {
	case status == http.StatusOK:
		// fall through to decode
	case status == http.StatusTooManyRequests || status >= 500:
		return domain.NewTransientFetchError(op, fmt.Errorf("remote status %d", status))
	default:
		return &domain.FetchError{
			Op:        op,
			Err:       fmt.Errorf("remote status %d", status),
			Retriable: false,
		}
	}

	if err := json.Unmarshal(resp.Body(), dst); err != nil {
		return domain.NewMalformedResponseError(op, err)
	}
	return nil
}
