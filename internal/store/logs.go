package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"inventory-backend/internal/model"
)

// AppendLog inserts the entry and drops the oldest entries beyond maxEntries.
func (s *gormStore) AppendLog(ctx context.Context, entry *model.LogEntry, maxEntries int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to append log entry: %w", err)
		}
		if maxEntries <= 0 {
			return nil
		}
		keep := tx.Model(&model.LogEntry{}).Select("id").Order("id DESC").Limit(maxEntries)
		if err := tx.Where("id NOT IN (?)", keep).Delete(&model.LogEntry{}).Error; err != nil {
			return fmt.Errorf("failed to prune log entries: %w", err)
		}
		return nil
	})
}

// ListLogs returns entries newest first.
func (s *gormStore) ListLogs(ctx context.Context, filter LogFilter) ([]model.LogEntry, error) {
	q := s.db.WithContext(ctx).Model(&model.LogEntry{})
	if filter.Module != "" {
		q = q.Where("module = ?", filter.Module)
	}
	if filter.Severity != "" {
		q = q.Where("severity = ?", filter.Severity)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var entries []model.LogEntry
	if err := q.Order("id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list log entries: %w", err)
	}
	return entries, nil
}

func (s *gormStore) ClearLogs(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("1 = 1").Delete(&model.LogEntry{}).Error; err != nil {
		return fmt.Errorf("failed to clear log entries: %w", err)
	}
	return nil
}
