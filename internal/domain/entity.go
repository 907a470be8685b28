package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RecordSnapshot is the persisted form of an ItemRecord, flattened for
// storage. Live order data is deliberately absent: orders are ephemeral
// and only averages and metadata survive a session.
type RecordSnapshot struct {
	Name        string          `gorm:"primaryKey" json:"name"`
	URLName     string          `json:"url_name"`
	Tags        string          `json:"tags"`   // semicolon-joined
	Relics      string          `json:"relics"` // semicolon-joined
	Ducats      int             `json:"ducats"`
	WikiLink    string          `json:"wiki_link"`
	Detailed    bool            `json:"detailed"`
	Avg48h      decimal.Decimal `gorm:"type:numeric" json:"avg_48h"`
	Avg90d      decimal.Decimal `gorm:"type:numeric" json:"avg_90d"`
	Tracked     bool            `gorm:"index" json:"tracked"`
	TargetPrice decimal.Decimal `gorm:"type:numeric" json:"target_price"`
	TargetDir   string          `json:"target_dir"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// SnapshotOf flattens a record for persistence.
func SnapshotOf(r ItemRecord) RecordSnapshot {
	return RecordSnapshot{
		Name:        r.Name,
		URLName:     r.URLName,
		Tags:        strings.Join(r.Tags, ";"),
		Relics:      strings.Join(r.Relics, ";"),
		Ducats:      r.Ducats,
		WikiLink:    r.WikiLink,
		Detailed:    r.Detailed,
		Avg48h:      r.Avg48h,
		Avg90d:      r.Avg90d,
		Tracked:     r.Track.Enabled,
		TargetPrice: r.Track.Price,
		TargetDir:   r.Track.Direction,
	}
}

// Restore copies the persisted fields back onto a freshly loaded record.
// Slot, name and derived live-market fields are left untouched; restored
// records are not marked Fresh.
func (s *RecordSnapshot) Restore(r *ItemRecord) {
	if s.URLName != "" {
		r.URLName = s.URLName
	}
	r.Tags = splitJoined(s.Tags)
	r.Relics = splitJoined(s.Relics)
	r.Ducats = s.Ducats
	r.WikiLink = s.WikiLink
	r.Detailed = s.Detailed
	r.Avg48h = s.Avg48h
	r.Avg90d = s.Avg90d
	r.Track = TrackTarget{
		Enabled:   s.Tracked,
		Price:     s.TargetPrice,
		Direction: s.TargetDir,
	}
}

func splitJoined(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ";")
}
