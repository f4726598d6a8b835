package workflow

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"inventory-backend/internal/auditlog"
	"inventory-backend/internal/model"
	"inventory-backend/internal/store"
)

const auditModule = "status"

// Notifier is told about units that became available again.
type Notifier interface {
	Dispatch(propertyID string)
}

// BulkRequest changes the status of several units at once.
type BulkRequest struct {
	PropertyIDs           []string                     `json:"propertyIds"`
	Status                model.Status                 `json:"status"`
	ClientInfo            map[string]*model.ClientInfo `json:"clientInfo,omitempty"`
	SharedClientInfo      *model.ClientInfo            `json:"sharedClientInfo,omitempty"`
	ApplySharedClientInfo bool                         `json:"applySharedClientInfo,omitempty"`
}

// Service loads units, applies transitions and persists them.
type Service struct {
	store    store.PropertyStore
	notifier Notifier
	audit    *auditlog.Recorder
	log      *zap.Logger
	now      func() time.Time
}

// NewService creates a workflow service. notifier may be nil.
func NewService(s store.PropertyStore, notifier Notifier, audit *auditlog.Recorder, log *zap.Logger) *Service {
	return &Service{store: s, notifier: notifier, audit: audit, log: log, now: time.Now}
}

// ChangeStatus moves one unit to target.
func (s *Service) ChangeStatus(ctx context.Context, id string, target model.Status, info *model.ClientInfo) (*model.Property, error) {
	p, err := s.store.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	from := p.Status
	if err := Transition(p, target, info, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.UpdateProperty(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save status change: %w", err)
	}

	s.log.Info("status changed",
		zap.String("property_id", p.ID),
		zap.String("from", string(from)),
		zap.String("to", string(p.Status)))
	s.audit.Record(ctx, auditModule, "Status changed",
		fmt.Sprintf("%s: %s -> %s", p.UnitNumber, from, p.Status), model.SeverityInfo)
	s.notifyAvailable(from, p)
	return p, nil
}

// BulkChangeStatus moves every selected unit to the same status in one transaction.
func (s *Service) BulkChangeStatus(ctx context.Context, req BulkRequest) ([]model.Property, error) {
	if len(req.PropertyIDs) == 0 {
		return nil, ErrEmptySelection
	}
	props, err := s.store.GetPropertiesByIDs(ctx, req.PropertyIDs)
	if err != nil {
		return nil, err
	}
	if want := len(uniq(req.PropertyIDs)); len(props) != want {
		return nil, fmt.Errorf("%d of %d selected units: %w", want-len(props), want, store.ErrNotFound)
	}

	updated, err := BulkTransition(props, req.Status, req.ClientInfo, req.SharedClientInfo, req.ApplySharedClientInfo, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveProperties(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save bulk status change: %w", err)
	}

	target := updated[0].Status
	s.log.Info("bulk status change", zap.Int("units", len(updated)), zap.String("to", string(target)))
	s.audit.Record(ctx, auditModule, "Bulk status change",
		fmt.Sprintf("%d units -> %s", len(updated), target), model.SeverityInfo)
	for i := range updated {
		s.notifyAvailable(props[i].Status, &updated[i])
	}
	return updated, nil
}

func (s *Service) notifyAvailable(from model.Status, p *model.Property) {
	if s.notifier == nil || from == model.StatusAvailable || p.Status != model.StatusAvailable {
		return
	}
	s.notifier.Dispatch(p.ID)
}

func uniq(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
