package storage

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"platwatch/internal/domain"
)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	return s
}

func testRecord(name string) domain.ItemRecord {
	return domain.ItemRecord{
		Name:     name,
		URLName:  name + "_url",
		Tags:     []string{"prime"},
		Relics:   []string{"Lith T1"},
		Ducats:   45,
		Detailed: true,
		Avg48h:   decimal.NewFromFloat(12.5),
		Avg90d:   decimal.NewFromFloat(13.75),
	}
}

func TestStorage_SaveLoadRoundTrip(t *testing.T) {
	s := setupTestStorage(t)

	records := []domain.ItemRecord{testRecord("Adder Prime"), testRecord("Boar Prime")}
	records[1].Track = domain.NewTrackTarget(decimal.NewFromInt(20), decimal.NewFromInt(12))

	if err := s.SaveRecords(records); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := s.LoadRecords()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded = %d snapshots, want 2", len(loaded))
	}

	snap, ok := loaded["Boar Prime"]
	if !ok {
		t.Fatal("Boar Prime missing")
	}
	if snap.URLName != "Boar Prime_url" || snap.Ducats != 45 || !snap.Detailed {
		t.Errorf("snapshot = %+v", snap)
	}
	if !snap.Avg90d.Equal(decimal.NewFromFloat(13.75)) {
		t.Errorf("avg90d = %v, want 13.75", snap.Avg90d)
	}
	if !snap.Tracked || snap.TargetDir != "UP" {
		t.Errorf("tracking lost: %+v", snap)
	}
	if !snap.TargetPrice.Equal(decimal.NewFromInt(20)) {
		t.Errorf("target price = %v, want 20", snap.TargetPrice)
	}
}

func TestStorage_SaveReplacesPreviousSet(t *testing.T) {
	s := setupTestStorage(t)

	if err := s.SaveRecords([]domain.ItemRecord{testRecord("Old Prime")}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveRecords([]domain.ItemRecord{testRecord("New Prime")}); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := s.LoadRecords()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("loaded = %d snapshots, want 1", len(loaded))
	}
	if _, ok := loaded["Old Prime"]; ok {
		t.Error("previous session's snapshots should be replaced")
	}
}

func TestStorage_SaveEmptySet(t *testing.T) {
	s := setupTestStorage(t)
	if err := s.SaveRecords([]domain.ItemRecord{testRecord("Adder Prime")}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveRecords(nil); err != nil {
		t.Fatalf("save empty: %v", err)
	}
	loaded, err := s.LoadRecords()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("loaded = %d snapshots, want 0", len(loaded))
	}
}

func TestStorage_SaveRecordUpserts(t *testing.T) {
	s := setupTestStorage(t)

	rec := testRecord("Adder Prime")
	if err := s.SaveRecord(rec); err != nil {
		t.Fatalf("save record: %v", err)
	}

	rec.Track = domain.NewTrackTarget(decimal.NewFromInt(30), decimal.NewFromInt(12))
	if err := s.SaveRecord(rec); err != nil {
		t.Fatalf("save record again: %v", err)
	}

	loaded, err := s.LoadRecords()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("loaded = %d snapshots, want 1 upserted row", len(loaded))
	}
	if !loaded["Adder Prime"].Tracked {
		t.Error("upsert should carry the new tracking target")
	}
}
