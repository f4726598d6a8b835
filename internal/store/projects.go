package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"inventory-backend/internal/model"
)

func (s *gormStore) ListProjects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if err := s.db.WithContext(ctx).Order("name").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *gormStore) GetProject(ctx context.Context, id string) (*model.Project, error) {
	var p model.Project
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// FindProjectByName matches the project name case-insensitively.
func (s *gormStore) FindProjectByName(ctx context.Context, name string) (*model.Project, error) {
	var p model.Project
	err := s.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *gormStore) CreateProject(ctx context.Context, p *model.Project) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := resolveDeveloper(tx, p); err != nil {
			return err
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("failed to create project %q: %w", p.Name, err)
		}
		return nil
	})
}

// UpdateProject replaces the project and refreshes the names copied onto its units.
func (s *gormStore) UpdateProject(ctx context.Context, p *model.Project) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := resolveDeveloper(tx, p); err != nil {
			return err
		}
		res := tx.Select("*").Omit("created_at").Save(p)
		if res.Error != nil {
			return fmt.Errorf("failed to update project %s: %w", p.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("project %s: %w", p.ID, ErrNotFound)
		}
		if err := tx.Model(&model.Property{}).
			Where("project_id = ?", p.ID).
			Updates(map[string]any{"project_name": p.Name, "developer_name": p.DeveloperName}).Error; err != nil {
			return fmt.Errorf("failed to propagate project %s to units: %w", p.ID, err)
		}
		return nil
	})
}

// DeleteProject removes a project. Without cascade the delete is blocked while units reference it;
// with cascade those units go too.
func (s *gormStore) DeleteProject(ctx context.Context, id string, cascade bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteProject(tx, id, cascade)
	})
}

func deleteProject(tx *gorm.DB, id string, cascade bool) error {
	var units int64
	if err := tx.Model(&model.Property{}).Where("project_id = ?", id).Count(&units).Error; err != nil {
		return fmt.Errorf("failed to count units of project %s: %w", id, err)
	}
	if units > 0 {
		if !cascade {
			return fmt.Errorf("project %s has %d units: %w", id, units, ErrInUse)
		}
		if _, err := deletePropertiesWhere(tx, "project_id = ?", id); err != nil {
			return err
		}
	}
	res := tx.Delete(&model.Project{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete project %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// resolveDeveloper checks the developer reference and copies its name onto the project.
func resolveDeveloper(tx *gorm.DB, p *model.Project) error {
	if p.DeveloperID == nil || *p.DeveloperID == "" {
		p.DeveloperID = nil
		return nil
	}
	var dev model.Developer
	if err := tx.First(&dev, "id = ?", *p.DeveloperID).Error; err != nil {
		return fmt.Errorf("developer %s: %w", *p.DeveloperID, notFound(err))
	}
	p.DeveloperName = dev.Name
	return nil
}
