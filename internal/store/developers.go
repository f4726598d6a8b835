package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"inventory-backend/internal/model"
)

func (s *gormStore) ListDevelopers(ctx context.Context) ([]model.Developer, error) {
	var devs []model.Developer
	if err := s.db.WithContext(ctx).Order("name").Find(&devs).Error; err != nil {
		return nil, fmt.Errorf("failed to list developers: %w", err)
	}
	return devs, nil
}

func (s *gormStore) GetDeveloper(ctx context.Context, id string) (*model.Developer, error) {
	var d model.Developer
	if err := s.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (s *gormStore) CreateDeveloper(ctx context.Context, d *model.Developer) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("failed to create developer %q: %w", d.Name, err)
	}
	return nil
}

// UpdateDeveloper replaces the developer and refreshes the name copied onto projects and units.
func (s *gormStore) UpdateDeveloper(ctx context.Context, d *model.Developer) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Select("*").Omit("created_at").Save(d)
		if res.Error != nil {
			return fmt.Errorf("failed to update developer %s: %w", d.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("developer %s: %w", d.ID, ErrNotFound)
		}

		var projectIDs []string
		if err := tx.Model(&model.Project{}).Where("developer_id = ?", d.ID).Pluck("id", &projectIDs).Error; err != nil {
			return fmt.Errorf("failed to select projects of developer %s: %w", d.ID, err)
		}
		if len(projectIDs) == 0 {
			return nil
		}
		if err := tx.Model(&model.Project{}).Where("id IN ?", projectIDs).
			Update("developer_name", d.Name).Error; err != nil {
			return fmt.Errorf("failed to propagate developer name to projects: %w", err)
		}
		if err := tx.Model(&model.Property{}).Where("project_id IN ?", projectIDs).
			Update("developer_name", d.Name).Error; err != nil {
			return fmt.Errorf("failed to propagate developer name to units: %w", err)
		}
		return nil
	})
}

// DeleteDeveloper removes a developer. Without cascade the delete is blocked while projects
// reference it; with cascade those projects and their units go too.
func (s *gormStore) DeleteDeveloper(ctx context.Context, id string, cascade bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var projectIDs []string
		if err := tx.Model(&model.Project{}).Where("developer_id = ?", id).Pluck("id", &projectIDs).Error; err != nil {
			return fmt.Errorf("failed to select projects of developer %s: %w", id, err)
		}
		if len(projectIDs) > 0 {
			if !cascade {
				return fmt.Errorf("developer %s has %d projects: %w", id, len(projectIDs), ErrInUse)
			}
			for _, pid := range projectIDs {
				if err := deleteProject(tx, pid, true); err != nil {
					return err
				}
			}
		}
		res := tx.Delete(&model.Developer{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete developer %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
