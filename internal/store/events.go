package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"inventory-backend/internal/model"
)

func (s *gormStore) ListEvents(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	err := s.db.WithContext(ctx).
		Preload("Registrations", func(db *gorm.DB) *gorm.DB { return db.Order("registered_at") }).
		Order("date, time, created_at").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *gormStore) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	err := s.db.WithContext(ctx).
		Preload("Registrations", func(db *gorm.DB) *gorm.DB { return db.Order("registered_at") }).
		First(&e, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &e, nil
}

func (s *gormStore) CreateEvent(ctx context.Context, e *model.Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Omit("Registrations").Create(e).Error; err != nil {
		return fmt.Errorf("failed to create event %q: %w", e.Title, err)
	}
	return nil
}

func (s *gormStore) DeleteEvent(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&model.Registration{}).Error; err != nil {
			return fmt.Errorf("failed to delete registrations of event %s: %w", id, err)
		}
		res := tx.Delete(&model.Event{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete event %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// AddRegistration inserts a registration unless the event is full. A capacity of zero means unlimited.
func (s *gormStore) AddRegistration(ctx context.Context, r *model.Registration) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event model.Event
		if err := tx.First(&event, "id = ?", r.EventID).Error; err != nil {
			return fmt.Errorf("event %s: %w", r.EventID, notFound(err))
		}
		if event.Capacity > 0 {
			var count int64
			if err := tx.Model(&model.Registration{}).Where("event_id = ?", r.EventID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to count registrations: %w", err)
			}
			if count >= int64(event.Capacity) {
				return ErrEventFull
			}
		}
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if err := tx.Create(r).Error; err != nil {
			return fmt.Errorf("failed to create registration: %w", err)
		}
		return nil
	})
}

func (s *gormStore) GetRegistration(ctx context.Context, eventID, registrationID string) (*model.Registration, error) {
	var r model.Registration
	err := s.db.WithContext(ctx).
		First(&r, "id = ? AND event_id = ?", registrationID, eventID).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

// MarkAttended flips attended from false to true. The conditional update makes a
// second check-in fail with ErrAlreadyAttended.
func (s *gormStore) MarkAttended(ctx context.Context, eventID, registrationID string, at time.Time) (*model.Registration, error) {
	var reg model.Registration
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Registration{}).
			Where("id = ? AND event_id = ? AND attended = ?", registrationID, eventID, false).
			Updates(map[string]any{"attended": true, "attended_at": at})
		if res.Error != nil {
			return fmt.Errorf("failed to check in registration %s: %w", registrationID, res.Error)
		}
		if err := tx.First(&reg, "id = ? AND event_id = ?", registrationID, eventID).Error; err != nil {
			return notFound(err)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyAttended
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &reg, nil
}
