package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"inventory-backend/internal/model"
)

func (s *gormStore) ListProperties(ctx context.Context, filter PropertyFilter) ([]model.Property, error) {
	q := s.db.WithContext(ctx).Model(&model.Property{})
	if filter.ProjectID != "" {
		q = q.Where("project_id = ?", filter.ProjectID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		q = q.Where("LOWER(unit_number) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.IDs != nil {
		q = q.Where("id IN ?", filter.IDs)
	}

	var props []model.Property
	if err := q.Order("project_name, unit_number, id").Find(&props).Error; err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return props, nil
}

func (s *gormStore) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	var p model.Property
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *gormStore) GetPropertiesByIDs(ctx context.Context, ids []string) ([]model.Property, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.ListProperties(ctx, PropertyFilter{IDs: ids})
}

func (s *gormStore) FindPropertyByUnitNumber(ctx context.Context, unitNumber string) (*model.Property, error) {
	var p model.Property
	err := s.db.WithContext(ctx).
		Where("unit_number = ?", strings.TrimSpace(unitNumber)).
		Order("project_name, id").
		First(&p).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *gormStore) CreateProperty(ctx context.Context, p *model.Property) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := resolveProject(tx, p); err != nil {
			return err
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("failed to create property %s: %w", p.UnitNumber, err)
		}
		return nil
	})
}

// CreateProperties inserts the whole batch or nothing.
func (s *gormStore) CreateProperties(ctx context.Context, props []model.Property) error {
	if len(props) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range props {
			if err := resolveProject(tx, &props[i]); err != nil {
				return err
			}
			if props[i].ID == "" {
				props[i].ID = uuid.NewString()
			}
		}
		if err := tx.CreateInBatches(props, 100).Error; err != nil {
			return fmt.Errorf("failed to insert %d properties: %w", len(props), err)
		}
		return nil
	})
}

// UpdateProperty replaces every column of the stored unit except its creation time.
func (s *gormStore) UpdateProperty(ctx context.Context, p *model.Property) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := resolveProject(tx, p); err != nil {
			return err
		}
		return replaceProperty(tx, p)
	})
}

// SaveProperties replaces a batch of units in one transaction.
func (s *gormStore) SaveProperties(ctx context.Context, props []model.Property) error {
	if len(props) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range props {
			if err := replaceProperty(tx, &props[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func replaceProperty(tx *gorm.DB, p *model.Property) error {
	res := tx.Select("*").Omit("created_at").Save(p)
	if res.Error != nil {
		return fmt.Errorf("failed to update property %s: %w", p.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("property %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (s *gormStore) DeleteProperty(ctx context.Context, id string) error {
	n, err := s.DeleteProperties(ctx, []string{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) DeleteProperties(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		deleted, err = deletePropertiesWhere(tx, "id IN ?", ids)
		return err
	})
	return deleted, err
}

// deletePropertiesWhere removes matching units together with their watch-list rows.
func deletePropertiesWhere(tx *gorm.DB, query string, args ...any) (int64, error) {
	var ids []string
	if err := tx.Model(&model.Property{}).Where(query, args...).Pluck("id", &ids).Error; err != nil {
		return 0, fmt.Errorf("failed to select properties for deletion: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := tx.Exec("DELETE FROM subscription_property_watch WHERE property_id IN ?", ids).Error; err != nil {
		return 0, fmt.Errorf("failed to delete watch-list rows: %w", err)
	}
	res := tx.Where("id IN ?", ids).Delete(&model.Property{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete properties: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// resolveProject checks the project reference and copies its denormalized names onto the unit.
func resolveProject(tx *gorm.DB, p *model.Property) error {
	if p.ProjectID == nil || *p.ProjectID == "" {
		p.ProjectID = nil
		return nil
	}
	var project model.Project
	if err := tx.First(&project, "id = ?", *p.ProjectID).Error; err != nil {
		return fmt.Errorf("project %s: %w", *p.ProjectID, notFound(err))
	}
	p.ProjectName = project.Name
	if project.DeveloperName != "" {
		p.DeveloperName = project.DeveloperName
	}
	return nil
}

func (s *gormStore) Summary(ctx context.Context) (*InventorySummary, error) {
	type statusRow struct {
		Status model.Status
		Units  int64
		Value  float64
	}
	var rows []statusRow
	if err := s.db.WithContext(ctx).
		Model(&model.Property{}).
		Select("status, COUNT(*) AS units, COALESCE(SUM(price), 0) AS value").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate statuses: %w", err)
	}

	type projectRow struct {
		ProjectName string
		Units       int64
	}
	var projects []projectRow
	if err := s.db.WithContext(ctx).
		Model(&model.Property{}).
		Select("project_name, COUNT(*) AS units").
		Group("project_name").
		Scan(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate projects: %w", err)
	}

	summary := &InventorySummary{
		ByStatus:       make(map[model.Status]int64, len(model.Statuses)),
		UnitsByProject: make(map[string]int64, len(projects)),
	}
	for _, st := range model.Statuses {
		summary.ByStatus[st] = 0
	}
	for _, r := range rows {
		summary.ByStatus[r.Status] = r.Units
		summary.TotalUnits += r.Units
		summary.TotalValue += r.Value
		switch r.Status {
		case model.StatusAvailable:
			summary.AvailableValue = r.Value
		case model.StatusSold:
			summary.SoldValue = r.Value
		}
	}
	for _, p := range projects {
		summary.UnitsByProject[p.ProjectName] = p.Units
	}
	return summary, nil
}
