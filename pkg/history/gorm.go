package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormHistory implements History using GORM.
type GormHistory struct {
	db *gorm.DB
}

// NewGormHistory creates a new GORM-backed history archive.
func NewGormHistory(db *gorm.DB) *GormHistory {
	return &GormHistory{db: db}
}

// Migrate creates the necessary tables.
func (h *GormHistory) Migrate(ctx context.Context) error {
	return h.db.WithContext(ctx).AutoMigrate(&Entry{})
}

// Record archives one timer outcome.
func (h *GormHistory) Record(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Outcome == "" {
		return fmt.Errorf("timers: history entry for %s has no outcome", e.TimerID)
	}
	return h.db.WithContext(ctx).Create(e).Error
}

// Recent returns the most recently archived entries, newest first.
func (h *GormHistory) Recent(ctx context.Context, limit int) ([]Entry, error) {
	var entries []Entry
	err := h.db.WithContext(ctx).
		Order("recorded_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// CountByOutcome returns how many entries share the given outcome.
func (h *GormHistory) CountByOutcome(ctx context.Context, o Outcome) (int64, error) {
	var count int64
	err := h.db.WithContext(ctx).
		Model(&Entry{}).
		Where("outcome = ?", o).
		Count(&count).Error
	return count, err
}
