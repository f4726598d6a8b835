package pricing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"inventory-backend/internal/auditlog"
	"inventory-backend/internal/model"
	"inventory-backend/internal/store"
)

const auditModule = "pricing"

// Engine parks previews until they are committed, discarded or expire.
// Any successful commit discards every pending preview, since they were all
// computed against the prices it just replaced.
type Engine struct {
	store    store.PropertyStore
	previews *cache.Cache
	audit    *auditlog.Recorder
	log      *zap.Logger
	now      func() time.Time

	// mu serialises commits against preview creation so that a preview
	// computed during a commit cannot survive the flush.
	mu sync.Mutex
}

// NewEngine creates an engine whose previews expire after ttl.
func NewEngine(s store.PropertyStore, ttl time.Duration, audit *auditlog.Recorder, log *zap.Logger) *Engine {
	return &Engine{
		store:    s,
		previews: cache.New(ttl, 2*ttl),
		audit:    audit,
		log:      log,
		now:      time.Now,
	}
}

// Preview computes req against the current inventory and keeps the result for Commit.
func (e *Engine) Preview(ctx context.Context, req Request) (*Preview, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	props, err := e.store.ListProperties(ctx, store.PropertyFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load properties: %w", err)
	}
	preview, err := Calculate(req, props)
	if err != nil {
		return nil, err
	}
	preview.ID = uuid.NewString()
	preview.CreatedAt = e.now().UTC()
	e.previews.Set(preview.ID, preview, cache.DefaultExpiration)

	e.log.Debug("price preview computed",
		zap.String("preview_id", preview.ID),
		zap.String("rule", string(preview.Request.Rule)),
		zap.Int("matched", preview.Matched))
	return preview, nil
}

// Get returns a pending preview.
func (e *Engine) Get(id string) (*Preview, error) {
	v, ok := e.previews.Get(id)
	if !ok {
		return nil, ErrPreviewNotFound
	}
	return v.(*Preview), nil
}

// Pending returns the number of previews waiting for a decision.
func (e *Engine) Pending() int {
	return e.previews.ItemCount()
}

// Discard drops a pending preview.
func (e *Engine) Discard(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.previews.Get(id); !ok {
		return ErrPreviewNotFound
	}
	e.previews.Delete(id)
	return nil
}

// Invalidate drops every pending preview.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.previews.Flush()
}

// Commit writes the prices of a pending preview in one transaction.
// If any base price moved since the preview was computed nothing is written
// and the preview is dropped.
func (e *Engine) Commit(ctx context.Context, id string) (*CommitResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, ok := e.previews.Get(id)
	if !ok {
		return nil, ErrPreviewNotFound
	}
	preview := v.(*Preview)

	var ids []string
	for _, c := range preview.Changes {
		if c.NewPrice != c.OldPrice {
			ids = append(ids, c.PropertyID)
		}
	}

	current, err := e.store.GetPropertiesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to reload properties: %w", err)
	}
	byID := make(map[string]model.Property, len(current))
	for _, p := range current {
		byID[p.ID] = p
	}

	updated := make([]model.Property, 0, len(ids))
	for _, c := range preview.Changes {
		if c.NewPrice == c.OldPrice {
			continue
		}
		p, ok := byID[c.PropertyID]
		if !ok || p.Price != c.OldPrice {
			e.previews.Delete(id)
			e.log.Info("rejected stale price preview",
				zap.String("preview_id", id),
				zap.String("property_id", c.PropertyID))
			return nil, fmt.Errorf("unit %s: %w", c.UnitNumber, ErrStalePreview)
		}
		p.SetPrice(c.NewPrice)
		updated = append(updated, p)
	}

	if err := e.store.SaveProperties(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save prices: %w", err)
	}
	e.previews.Flush()

	rule := preview.Request.Rule
	e.log.Info("price preview committed",
		zap.String("preview_id", id),
		zap.String("rule", string(rule)),
		zap.Int("updated", len(updated)))
	e.audit.Record(ctx, auditModule, "Price adjustment applied",
		fmt.Sprintf("%s rule updated %d of %d units", rule, len(updated), len(preview.Changes)),
		model.SeveritySuccess)

	return &CommitResult{
		PreviewID: id,
		Rule:      rule,
		Updated:   len(updated),
		Changes:   preview.Changes,
	}, nil
}
