package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"platwatch/internal/domain"
)

// Queue names accepted by Purge and reported in stats.
const (
	QueueAll      = "all"
	QueueFiltered = "filtered"
)

// FilterPredicate decides whether a record belongs to the filtered
// subset. It receives a copy and must not retain it.
type FilterPredicate func(domain.ItemRecord) bool

// Scheduler owns the two work queues and their refresh workers: the full
// catalog queue and the filtered subset queue. Exactly one of the two is
// active (unpaused) under normal operation: entering filter mode pauses
// the all-items worker and activates the filtered one, and leaving it
// reverses that.
type Scheduler struct {
	store  *RecordStore
	source domain.MarketSource
	cache  *PriceCache
	log    *slog.Logger

	allQueue       *Queue
	filteredQueue  *Queue
	allWorker      *RefreshWorker
	filteredWorker *RefreshWorker

	// filter debounce: keystroke-level filter changes reset the timer so
	// the filtered queue is repopulated once, after typing settles.
	filterDelay time.Duration
	mu          sync.Mutex
	debounce    *time.Timer
	pred        FilterPredicate
	filtering   bool

	wg sync.WaitGroup
}

// SchedulerOptions configures the scheduler and both of its workers.
type SchedulerOptions struct {
	Worker      WorkerOptions
	FilterDelay time.Duration
}

// NewScheduler creates the dual-queue scheduler. Workers do not run
// until Start.
func NewScheduler(source domain.MarketSource, cache *PriceCache, store *RecordStore, opts SchedulerOptions) *Scheduler {
	allQueue := NewQueue()
	filteredQueue := NewQueue()
	s := &Scheduler{
		store:          store,
		source:         source,
		cache:          cache,
		log:            slog.Default().With(slog.String("component", "scheduler")),
		allQueue:       allQueue,
		filteredQueue:  filteredQueue,
		allWorker:      NewRefreshWorker(QueueAll, allQueue, source, cache, store, opts.Worker),
		filteredWorker: NewRefreshWorker(QueueFiltered, filteredQueue, source, cache, store, opts.Worker),
		filterDelay:    opts.FilterDelay,
	}
	// The filtered worker idles until a filter is entered.
	s.filteredWorker.SetPaused(true)
	return s
}

// LoadCatalog fetches the catalog listing, atomically replaces the
// record store contents (pre-populated from saved snapshots), purges
// both queues and queues every slot for refresh. Safe to call again for
// a full catalog reload.
func (s *Scheduler) LoadCatalog(ctx context.Context, saved map[string]domain.RecordSnapshot) ([]domain.CatalogEntry, error) {
	entries, err := s.source.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("load catalog: %w", domain.ErrMalformedResponse)
	}

	s.allQueue.Purge()
	s.filteredQueue.Purge()
	n := s.store.Load(entries, saved)
	for slot := 0; slot < n; slot++ {
		s.allQueue.Push(slot)
	}

	s.log.Info("catalog loaded", slog.Int("items", n))
	return entries, nil
}

// Start launches both worker loops. They run until ctx is cancelled;
// Wait blocks until both have finished their current cycle and exited.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.allWorker.Run(ctx)
	}()
	go func() {
		defer s.wg.Done()
		s.filteredWorker.Run(ctx)
	}()
}

// Wait blocks until both workers have exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// EnterFilter switches to filtered mode with the given predicate. The
// filtered queue is (re)populated after a short debounce, so rapid
// successive calls (one per keystroke in a search box) cost one
// repopulation, not one each.
func (s *Scheduler) EnterFilter(pred FilterPredicate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pred = pred
	if s.debounce == nil {
		s.debounce = time.AfterFunc(s.filterDelay, s.populateFiltered)
	} else {
		s.debounce.Reset(s.filterDelay)
	}
}

// populateFiltered fills the filtered queue with the slots currently
// passing the predicate and flips which worker is active.
func (s *Scheduler) populateFiltered() {
	s.mu.Lock()
	pred := s.pred
	s.mu.Unlock()
	if pred == nil {
		return
	}

	s.filteredQueue.Purge()
	matched := 0
	for _, rec := range s.store.Snapshot() {
		if pred(rec) {
			s.filteredQueue.Push(rec.Slot)
			matched++
		}
	}

	s.allWorker.SetPaused(true)
	s.filteredWorker.SetPaused(false)

	s.mu.Lock()
	s.filtering = true
	s.mu.Unlock()

	s.log.Info("filter mode entered", slog.Int("matched", matched))
}

// ExitFilter leaves filtered mode: the filtered queue is purged and
// paused, and the all-items worker resumes.
func (s *Scheduler) ExitFilter() {
	s.mu.Lock()
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.pred = nil
	s.filtering = false
	s.mu.Unlock()

	s.filteredQueue.Purge()
	s.filteredWorker.SetPaused(true)
	s.allWorker.SetPaused(false)
	s.log.Info("filter mode exited")
}

// Filtering reports whether filtered mode is active.
func (s *Scheduler) Filtering() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filtering
}

// RefreshNow bypasses queue ordering: the slot is pushed to the recency
// end of whichever queue is currently active and will be processed next.
func (s *Scheduler) RefreshNow(slot int) error {
	if _, ok := s.store.Get(slot); !ok {
		return domain.ErrUnknownSlot
	}
	if s.Filtering() {
		s.filteredQueue.Push(slot)
	} else {
		s.allQueue.Push(slot)
	}
	return nil
}

// Pause pauses the currently active worker; Resume resumes it. The
// inactive worker is unaffected, preserving the one-active-queue
// invariant across a pause/resume round trip.
func (s *Scheduler) Pause() {
	s.activeWorker().SetPaused(true)
}

// Resume resumes the currently active worker.
func (s *Scheduler) Resume() {
	s.activeWorker().SetPaused(false)
}

// Paused reports whether the currently active worker is paused.
func (s *Scheduler) Paused() bool {
	return s.activeWorker().Paused()
}

func (s *Scheduler) activeWorker() *RefreshWorker {
	if s.Filtering() {
		return s.filteredWorker
	}
	return s.allWorker
}

// Purge clears all pending slots from the named queue ("all" or
// "filtered") without touching record store contents.
func (s *Scheduler) Purge(name string) error {
	switch name {
	case QueueAll:
		s.allQueue.Purge()
	case QueueFiltered:
		s.filteredQueue.Purge()
	default:
		return fmt.Errorf("unknown queue %q", name)
	}
	return nil
}

// QueueLengths reports the pending counts per queue.
func (s *Scheduler) QueueLengths() map[string]int {
	return map[string]int{
		QueueAll:      s.allQueue.Len(),
		QueueFiltered: s.filteredQueue.Len(),
	}
}
