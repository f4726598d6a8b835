package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"inventory-backend/internal/importer"
	"inventory-backend/internal/model"
	"inventory-backend/internal/store"
	"inventory-backend/internal/workflow"
)

const propertiesModule = "properties"

// ListProperties handles GET /api/properties.
func (h *Handler) ListProperties(c *gin.Context) {
	filter := store.PropertyFilter{
		ProjectID: c.Query("projectId"),
		Search:    strings.TrimSpace(c.Query("search")),
	}
	if raw := c.Query("status"); raw != "" {
		st, ok := model.ParseStatus(raw)
		if !ok {
			h.fail(c, &fieldError{Field: "status", Message: fmt.Sprintf("unknown status %q", raw)})
			return
		}
		filter.Status = st
	}
	props, err := h.store.ListProperties(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, props)
}

// GetProperty handles GET /api/properties/:id.
func (h *Handler) GetProperty(c *gin.Context) {
	p, err := h.store.GetProperty(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreateProperty handles POST /api/properties.
func (h *Handler) CreateProperty(c *gin.Context) {
	var p model.Property
	if !h.bind(c, &p) {
		return
	}
	p.ID = ""
	if err := h.prepareProperty(&p); err != nil {
		h.fail(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := h.store.CreateProperty(ctx, &p); err != nil {
		h.fail(c, err)
		return
	}
	h.audit.Record(ctx, propertiesModule, "Unit added", fmt.Sprintf("%s (%s)", p.UnitNumber, p.ProjectName), model.SeveritySuccess)
	c.JSON(http.StatusCreated, p)
}

// UpdateProperty handles PUT /api/properties/:id. The body replaces the stored unit.
func (h *Handler) UpdateProperty(c *gin.Context) {
	var p model.Property
	if !h.bind(c, &p) {
		return
	}
	p.ID = c.Param("id")
	if err := h.prepareProperty(&p); err != nil {
		h.fail(c, err)
		return
	}
	ctx := c.Request.Context()
	if err := h.store.UpdateProperty(ctx, &p); err != nil {
		h.fail(c, err)
		return
	}
	h.pricing.Invalidate()
	h.audit.Record(ctx, propertiesModule, "Unit updated", p.UnitNumber, model.SeverityInfo)
	c.JSON(http.StatusOK, p)
}

// DeleteProperty handles DELETE /api/properties/:id.
func (h *Handler) DeleteProperty(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := h.store.DeleteProperty(ctx, id); err != nil {
		h.fail(c, err)
		return
	}
	h.pricing.Invalidate()
	h.audit.Record(ctx, propertiesModule, "Unit deleted", id, model.SeverityWarning)
	c.Status(http.StatusNoContent)
}

type bulkDeleteRequest struct {
	PropertyIDs []string `json:"propertyIds"`
}

// BulkDeleteProperties handles POST /api/properties/bulk-delete.
func (h *Handler) BulkDeleteProperties(c *gin.Context) {
	var req bulkDeleteRequest
	if !h.bind(c, &req) {
		return
	}
	if len(req.PropertyIDs) == 0 {
		h.fail(c, &fieldError{Field: "propertyIds", Message: "select at least one unit"})
		return
	}
	ctx := c.Request.Context()
	n, err := h.store.DeleteProperties(ctx, req.PropertyIDs)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.pricing.Invalidate()
	h.audit.Record(ctx, propertiesModule, "Units deleted", fmt.Sprintf("%d units", n), model.SeverityWarning)
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}

type statusRequest struct {
	Status     model.Status      `json:"status" binding:"required"`
	ClientInfo *model.ClientInfo `json:"clientInfo"`
}

// ChangeStatus handles POST /api/properties/:id/status.
func (h *Handler) ChangeStatus(c *gin.Context) {
	var req statusRequest
	if !h.bind(c, &req) {
		return
	}
	p, err := h.workflow.ChangeStatus(c.Request.Context(), c.Param("id"), req.Status, req.ClientInfo)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.StatusChanged(string(p.Status), 1)
	c.JSON(http.StatusOK, p)
}

// BulkChangeStatus handles POST /api/properties/bulk-status.
func (h *Handler) BulkChangeStatus(c *gin.Context) {
	var req workflow.BulkRequest
	if !h.bind(c, &req) {
		return
	}
	props, err := h.workflow.BulkChangeStatus(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	if len(props) > 0 {
		h.metrics.StatusChanged(string(props[0].Status), len(props))
	}
	c.JSON(http.StatusOK, props)
}

// UploadFloorPlan handles PUT /api/properties/:id/floor-plan with a multipart "file".
func (h *Handler) UploadFloorPlan(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.store.GetProperty(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	key, err := h.storeUpload(c, "floor-plans/"+p.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	previous := p.FloorPlan
	p.FloorPlan = &key
	if err := h.store.UpdateProperty(ctx, p); err != nil {
		h.discardBlob(c, key)
		h.fail(c, err)
		return
	}
	if previous != nil {
		h.discardBlob(c, *previous)
	}
	h.audit.Record(ctx, propertiesModule, "Floor plan uploaded", p.UnitNumber, model.SeverityInfo)
	c.JSON(http.StatusOK, p)
}

// prepareProperty validates a submitted unit and brings its derived fields and
// client information in line with its status.
func (h *Handler) prepareProperty(p *model.Property) error {
	p.UnitNumber = strings.TrimSpace(p.UnitNumber)
	p.UnitType = strings.TrimSpace(p.UnitType)
	switch {
	case p.UnitNumber == "":
		return &fieldError{Field: "unitNumber", Message: "a unit number is required"}
	case p.UnitType == "":
		return &fieldError{Field: "unitType", Message: "a unit type is required"}
	case p.TotalArea <= 0:
		return &fieldError{Field: "totalArea", Message: "total area must be greater than zero"}
	case p.Price < 0:
		return &fieldError{Field: "price", Message: "price cannot be negative"}
	case p.InternalArea < 0 || p.ExternalArea < 0:
		return &fieldError{Field: "internalArea", Message: "areas cannot be negative"}
	}
	p.BuildingName = strings.TrimSpace(p.BuildingName)
	importer.InferLocation(p)
	if p.Status == "" {
		p.Status = model.StatusAvailable
	}
	if err := workflow.Transition(p, p.Status, nil, h.now()); err != nil {
		return err
	}
	p.RecomputeDerived()
	return nil
}
