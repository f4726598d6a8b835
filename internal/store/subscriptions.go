package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inventory-backend/internal/model"
)

// PutSubscription creates or replaces a subscription and its watch list.
func (s *gormStore) PutSubscription(ctx context.Context, sub *model.PushSubscription, propertyIDs []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Properties").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(sub).Error; err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}

		var props []*model.Property
		if len(propertyIDs) > 0 {
			if err := tx.Where("id IN ?", propertyIDs).Find(&props).Error; err != nil {
				return fmt.Errorf("failed to load watched properties: %w", err)
			}
		}
		if err := tx.Model(sub).Association("Properties").Replace(props); err != nil {
			return fmt.Errorf("failed to replace watch list: %w", err)
		}
		return nil
	})
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).Preload("Properties").First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		return nil, notFound(err)
	}
	return &sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM subscription_property_watch WHERE push_subscription_endpoint = ?", endpoint).Error; err != nil {
			return fmt.Errorf("failed to delete watch list: %w", err)
		}
		if err := tx.Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
			return fmt.Errorf("failed to delete subscription: %w", err)
		}
		return nil
	})
}

func (s *gormStore) SubscriptionsForProperty(ctx context.Context, propertyID string) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_property_watch spw ON spw.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("spw.property_id = ?", propertyID).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load subscriptions for property %s: %w", propertyID, err)
	}
	return subs, nil
}
