package engine

import (
	"sort"
	"sync"

	"platwatch/internal/domain"
)

// slotEntry pairs a record with its own lock. Queue discipline already
// gives each slot a single writer at a time, but an item can migrate
// between queues while the previous owner is mid-cycle and the display
// layer reads concurrently, so every slot carries its own mutex.
type slotEntry struct {
	mu  sync.Mutex
	rec domain.ItemRecord
}

// RecordStore is the externally visible mapping from slot index to the
// latest computed record. Workers write, the display layer reads; reads
// always return copies.
type RecordStore struct {
	mu       sync.RWMutex // guards the slice itself across catalog reloads
	slots    []*slotEntry
	listener domain.StoreListener
}

// NewRecordStore creates an empty store.
func NewRecordStore() *RecordStore {
	return &RecordStore{}
}

// SetListener registers the display-layer listener for single-slot
// change notifications. Must be called before workers start.
func (s *RecordStore) SetListener(l domain.StoreListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

// Load atomically replaces the store contents with one record per
// catalog entry, sorted by display name so slot indexes are stable and
// dense for this catalog load. Previously persisted snapshots, if any,
// pre-populate matching records. Returns the number of slots.
func (s *RecordStore) Load(entries []domain.CatalogEntry, saved map[string]domain.RecordSnapshot) int {
	sorted := make([]domain.CatalogEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	slots := make([]*slotEntry, 0, len(sorted))
	for i, e := range sorted {
		rec := domain.ItemRecord{
			Slot:    i,
			Name:    e.Name,
			URLName: e.URLName,
			Trend:   domain.TrendEven,
		}
		if snap, ok := saved[e.Name]; ok {
			snap.Restore(&rec)
		}
		slots = append(slots, &slotEntry{rec: rec})
	}

	s.mu.Lock()
	listener := s.listener
	s.slots = slots
	s.mu.Unlock()

	if listener != nil {
		for i := range slots {
			listener.RecordAdded(i)
		}
	}
	return len(slots)
}

// Len returns the number of slots in the current catalog load.
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots)
}

func (s *RecordStore) entry(slot int) *slotEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if slot < 0 || slot >= len(s.slots) {
		return nil
	}
	return s.slots[slot]
}

// Get returns a copy of the record at the slot.
func (s *RecordStore) Get(slot int) (domain.ItemRecord, bool) {
	e := s.entry(slot)
	if e == nil {
		return domain.ItemRecord{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec, true
}

// Update applies fn to the record at the slot under its lock and emits a
// single-slot change notification. Returns domain.ErrUnknownSlot when
// the slot does not exist in the current catalog load.
func (s *RecordStore) Update(slot int, fn func(*domain.ItemRecord)) error {
	e := s.entry(slot)
	if e == nil {
		return domain.ErrUnknownSlot
	}

	e.mu.Lock()
	fn(&e.rec)
	e.rec.Slot = slot
	e.mu.Unlock()

	s.mu.RLock()
	listener := s.listener
	s.mu.RUnlock()
	if listener != nil {
		listener.RecordUpdated(slot)
	}
	return nil
}

// Snapshot returns copies of all records in slot order.
func (s *RecordStore) Snapshot() []domain.ItemRecord {
	s.mu.RLock()
	slots := s.slots
	s.mu.RUnlock()

	out := make([]domain.ItemRecord, 0, len(slots))
	for _, e := range slots {
		e.mu.Lock()
		out = append(out, e.rec)
		e.mu.Unlock()
	}
	return out
}
