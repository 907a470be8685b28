package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"platwatch/internal/domain"
)

// Storage persists item records between sessions so the display layer
// has data before the first refresh cycles complete.
type Storage struct {
	db *gorm.DB
}

// NewStorage opens (or creates) the SQLite database. An empty path puts
// the file under the user config directory.
func NewStorage(path string) (*Storage, error) {
	dbPath := path
	if dbPath == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve DB path: %w", err)
		}
		dbPath = filepath.Join(configDir, "PlatWatch", "data", "platwatch.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Pure-Go SQLite driver
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.RecordSnapshot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// SaveRecords replaces the stored snapshot set with the given records.
// Called once at shutdown; partial writes would leave a mixed-session
// snapshot, so the replacement runs in one transaction.
func (s *Storage) SaveRecords(records []domain.ItemRecord) error {
	snapshots := make([]domain.RecordSnapshot, 0, len(records))
	for _, r := range records {
		snapshots = append(snapshots, domain.SnapshotOf(r))
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.RecordSnapshot{}).Error; err != nil {
			return err
		}
		if len(snapshots) == 0 {
			return nil
		}
		return tx.CreateInBatches(snapshots, 200).Error
	})
}

// LoadRecords returns all stored snapshots keyed by item name.
func (s *Storage) LoadRecords() (map[string]domain.RecordSnapshot, error) {
	var snapshots []domain.RecordSnapshot
	if err := s.db.Find(&snapshots).Error; err != nil {
		return nil, err
	}

	result := make(map[string]domain.RecordSnapshot, len(snapshots))
	for _, snap := range snapshots {
		result[snap.Name] = snap
	}
	return result, nil
}

// SaveRecord upserts a single record's snapshot. Used when tracking
// targets change so a crash does not lose them.
func (s *Storage) SaveRecord(record domain.ItemRecord) error {
	snap := domain.SnapshotOf(record)
	return s.db.Save(&snap).Error
}
