package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"platwatch/internal/domain"
	"platwatch/internal/infra"
)

const (
	// minTrendSamples is the minimum long-window sequence length for a
	// meaningful trend; below it the short window substitutes.
	minTrendSamples = 60
	// goodBuyMinSamples and goodBuyMinProfit gate the "good buy" signal.
	goodBuyMinSamples = 30
	goodBuyMinProfit  = 3

	// idlePoll is how often a paused or drained worker rechecks its queue.
	idlePoll = 100 * time.Millisecond
)

// WorkerOptions carries the timing and retry knobs of a refresh worker.
type WorkerOptions struct {
	// RequestDelay is the inter-request throttle after an uncached
	// statistics fetch, and the base of the retry backoff.
	RequestDelay time.Duration
	// CycleDelay is the sleep between item cycles.
	CycleDelay time.Duration
	// MaxRetries bounds retries of a transient fetch failure within one
	// cycle. Zero disables retrying.
	MaxRetries int
}

// RefreshWorker is the single-threaded consumer loop bound to one queue.
// It pulls a slot, runs the fetch/compute pipeline, merges the result
// into the record store, re-enqueues the slot, and sleeps. A fetch
// failure aborts the current item's cycle: the record keeps its previous
// values and the worker moves on; only context cancellation stops it.
type RefreshWorker struct {
	name   string
	queue  *Queue
	source domain.MarketSource
	cache  *PriceCache
	store  *RecordStore
	opts   WorkerOptions
	log    *slog.Logger

	paused atomic.Bool
}

// NewRefreshWorker creates a worker bound to the given queue.
func NewRefreshWorker(name string, queue *Queue, source domain.MarketSource, cache *PriceCache, store *RecordStore, opts WorkerOptions) *RefreshWorker {
	return &RefreshWorker{
		name:   name,
		queue:  queue,
		source: source,
		cache:  cache,
		store:  store,
		opts:   opts,
		log:    slog.Default().With(slog.String("worker", name)),
	}
}

// SetPaused pauses or resumes the loop. A paused worker performs no
// fetches and no record mutations; the current cycle, if any, completes.
func (w *RefreshWorker) SetPaused(paused bool) {
	if w.paused.Swap(paused) != paused {
		w.log.Info("worker pause state changed", slog.Bool("paused", paused))
	}
}

// Paused reports the pause flag.
func (w *RefreshWorker) Paused() bool {
	return w.paused.Load()
}

// Queue returns the queue this worker consumes.
func (w *RefreshWorker) Queue() *Queue {
	return w.queue
}

// Run consumes the queue until ctx is cancelled. It must be run in its
// own goroutine; there is exactly one Run loop per queue.
func (w *RefreshWorker) Run(ctx context.Context) {
	w.log.Info("worker started")
	for {
		if ctx.Err() != nil {
			w.log.Info("worker stopped")
			return
		}

		if w.paused.Load() {
			sleepCtx(ctx, idlePoll)
			continue
		}

		slot, ok := w.queue.Pop()
		if !ok {
			sleepCtx(ctx, idlePoll)
			continue
		}

		if err := w.refresh(ctx, slot); err != nil {
			infra.GlobalMetrics.RecordAbortedCycle()
			w.log.Warn("refresh cycle aborted",
				slog.Int("slot", slot),
				slog.String("error", err.Error()))
		} else {
			infra.GlobalMetrics.RecordCycle()
		}

		w.queue.Requeue(slot)
		sleepCtx(ctx, w.opts.CycleDelay)
	}
}

// refresh runs the fetch/compute pipeline for one slot. On error the
// record keeps its previous values; the slot is still re-enqueued by the
// caller for its next natural turn.
func (w *RefreshWorker) refresh(ctx context.Context, slot int) error {
	rec, ok := w.store.Get(slot)
	if !ok {
		// Catalog was reloaded under us; drop the stale slot silently.
		return nil
	}
	key := rec.URLName

	longCached := w.cache.Contains(key, domain.WindowLong)
	if longCached {
		infra.GlobalMetrics.RecordCacheHit()
	} else {
		infra.GlobalMetrics.RecordCacheMiss()
	}

	var book *domain.OrderBook
	err := w.withRetry(ctx, "orders", func() error {
		var ferr error
		book, ferr = w.source.OrderBook(ctx, key)
		return ferr
	})
	if err != nil {
		return err
	}

	bestBuy, bestSell := BestOrders(book.Orders)

	var long []domain.PriceSample
	err = w.withRetry(ctx, "statistics", func() error {
		var ferr error
		long, ferr = w.cache.Get(ctx, key, domain.WindowLong, false)
		return ferr
	})
	if err != nil {
		return err
	}
	if !longCached {
		// A fresh remote call happened; honor the provider's rate limit
		// before the next one.
		sleepCtx(ctx, w.opts.RequestDelay)
	}

	var short []domain.PriceSample
	err = w.withRetry(ctx, "statistics", func() error {
		var ferr error
		short, ferr = w.cache.Get(ctx, key, domain.WindowShort, false)
		return ferr
	})
	if err != nil {
		return err
	}

	avg90 := Mean(long).Round(2)
	avg48 := Mean(short).Round(2)

	// Sparse long windows are too thin for a meaningful regression; fall
	// back to the short window for the trend while still reporting both
	// averages independently.
	trendInput := long
	if len(long) < minTrendSamples {
		trendInput = short
	}
	trend := FitTrend(trendInput).Direction()

	profit := Profit(bestBuy, bestSell, avg48, avg90)
	goodBuy := profit != nil &&
		profit.GreaterThan(decimal.NewFromInt(goodBuyMinProfit)) &&
		len(long) > goodBuyMinSamples &&
		trend == domain.TrendIncreasing

	return w.store.Update(slot, func(r *domain.ItemRecord) {
		r.BuyOrder = bestBuy
		r.SellOrder = bestSell
		r.BuyPrice = orderPrice(bestBuy)
		r.SellPrice = orderPrice(bestSell)
		r.Profit = profit
		r.Avg48h = avg48
		r.Avg90d = avg90
		r.Trend = trend
		r.SampleCount = len(trendInput)
		r.GoodBuy = goodBuy
		r.Fresh = true

		if book.Detail != nil && !r.Detailed {
			r.Tags = book.Detail.Tags
			r.Relics = book.Detail.Relics
			r.Ducats = book.Detail.Ducats
			r.WikiLink = book.Detail.WikiLink
			r.Detailed = true
		}

		if price, ok := r.CurrentPrice(); ok && r.Track.Hit(price) {
			w.log.Info("tracked item hit target",
				slog.String("item", r.Name),
				slog.String("price", price.String()),
				slog.String("target", r.Track.Price.String()))
		}
	})
}

// withRetry runs fn, retrying transient failures up to MaxRetries times
// with an exponential backoff that starts at the inter-request delay, so
// retries never undercut the provider's rate limit.
func (w *RefreshWorker) withRetry(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= w.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			infra.GlobalMetrics.RecordFetchRetry()
			backoff := w.opts.RequestDelay << uint(attempt-1)
			w.log.Info("retrying fetch",
				slog.String("op", op),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff))
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		infra.GlobalMetrics.RecordFetchError()
		if !domain.IsRetriable(err) {
			break
		}
	}
	return lastErr
}

func orderPrice(o *domain.Order) *decimal.Decimal {
	if o == nil {
		return nil
	}
	p := o.Price
	return &p
}

// sleepCtx sleeps for d or until ctx is cancelled. Returns false when
// the context ended the sleep early. A non-positive d returns at once.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
