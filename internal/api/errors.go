package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inventory-backend/internal/blob"
	"inventory-backend/internal/events"
	"inventory-backend/internal/importer"
	"inventory-backend/internal/pricing"
	"inventory-backend/internal/store"
	"inventory-backend/internal/workflow"
)

var (
	errBadRequest = errors.New("bad request")
	errConflict   = errors.New("conflict")
)

// fieldError is a rejected request field.
type fieldError struct {
	Field   string
	Message string
}

func (e *fieldError) Error() string { return e.Field + ": " + e.Message }

func (e *fieldError) Unwrap() error { return errBadRequest }

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

var notFoundErrors = []error{
	store.ErrNotFound,
	pricing.ErrPreviewNotFound,
	pricing.ErrUnitNotFound,
	importer.ErrUploadNotFound,
	blob.ErrNotFound,
}

var conflictErrors = []error{
	errConflict,
	store.ErrInUse,
	store.ErrEventFull,
	store.ErrAlreadyAttended,
	pricing.ErrStalePreview,
	blob.ErrExists,
}

var invalidErrors = []error{
	errBadRequest,
	pricing.ErrInvalidInput,
	pricing.ErrNoMatchingUnits,
	pricing.ErrEmptySelection,
	workflow.ErrInvalidStatus,
	workflow.ErrClientInfoRequired,
	workflow.ErrEmptySelection,
	importer.ErrInvalidImport,
	importer.ErrUnsupportedFormat,
	importer.ErrNoHeader,
	events.ErrInvalidInput,
	events.ErrInvalidPayload,
	events.ErrWrongEvent,
	blob.ErrInvalidKey,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// statusOf maps a service error onto an HTTP status code.
func statusOf(err error) int {
	switch {
	case isAny(err, notFoundErrors):
		return http.StatusNotFound
	case isAny(err, conflictErrors):
		return http.StatusConflict
	case isAny(err, invalidErrors):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type blockedUnit struct {
	PropertyID string   `json:"propertyId"`
	UnitNumber string   `json:"unitNumber"`
	Missing    []string `json:"missing"`
}

// fail writes err as a JSON error response. Storage failures are logged and
// reported without their internals.
func (h *Handler) fail(c *gin.Context, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.AbortWithStatusJSON(code, gin.H{"error": "internal error, nothing was persisted"})
		return
	}

	body := gin.H{"error": err.Error()}

	var fe *fieldError
	var pve *pricing.ValidationError
	var eve *events.ValidationError
	switch {
	case errors.As(err, &fe):
		body["field"] = fe.Field
	case errors.As(err, &pve):
		body["field"] = pve.Field
	case errors.As(err, &eve):
		body["field"] = eve.Field
	}

	var report *importer.Report
	if errors.As(err, &report) {
		body["report"] = report
	}

	var blocked []blockedUnit
	var be *workflow.BulkError
	var cie *workflow.ClientInfoError
	switch {
	case errors.As(err, &be):
		for _, f := range be.Failures {
			blocked = append(blocked, blockedUnit{PropertyID: f.PropertyID, UnitNumber: f.UnitNumber, Missing: f.Missing})
		}
	case errors.As(err, &cie):
		blocked = append(blocked, blockedUnit{PropertyID: cie.PropertyID, UnitNumber: cie.UnitNumber, Missing: cie.Missing})
	}
	if blocked != nil {
		body["blocked"] = blocked
	}

	c.AbortWithStatusJSON(code, body)
}

// bind decodes the JSON body into v, reporting a 400 on malformed input.
func (h *Handler) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		h.fail(c, badRequest("invalid request body: %v", err))
		return false
	}
	return true
}
