// Package api exposes the inventory over a JSON HTTP API.
package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"inventory-backend/internal/auditlog"
	"inventory-backend/internal/blob"
	"inventory-backend/internal/events"
	"inventory-backend/internal/importer"
	"inventory-backend/internal/metrics"
	"inventory-backend/internal/pricing"
	"inventory-backend/internal/store"
	"inventory-backend/internal/workflow"
)

// Deps are the collaborators the handlers delegate to.
type Deps struct {
	Store    store.Store
	Pricing  *pricing.Engine
	Workflow *workflow.Service
	Importer *importer.Service
	Events   *events.Service
	Audit    *auditlog.Recorder
	Blobs    blob.Store
	Metrics  *metrics.Metrics
	WebPush  *webpush.Options
	Log      *zap.Logger

	// MaxUploadBytes caps spreadsheet, floor plan and logo uploads.
	MaxUploadBytes int64
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	pricing   *pricing.Engine
	workflow  *workflow.Service
	importer  *importer.Service
	events    *events.Service
	audit     *auditlog.Recorder
	blobs     blob.Store
	metrics   *metrics.Metrics
	webpush   *webpush.Options
	log       *zap.Logger
	maxUpload int64
	now       func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	maxUpload := d.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &Handler{
		store:     d.Store,
		pricing:   d.Pricing,
		workflow:  d.Workflow,
		importer:  d.Importer,
		events:    d.Events,
		audit:     d.Audit,
		blobs:     d.Blobs,
		metrics:   d.Metrics,
		webpush:   d.WebPush,
		log:       log,
		maxUpload: maxUpload,
		now:       time.Now,
	}
}
