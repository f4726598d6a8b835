package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"inventory-backend/internal/export"
	"inventory-backend/internal/model"
	"inventory-backend/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type exportRequest struct {
	PropertyIDs []string `json:"propertyIds"`
}

// ExportProperties handles POST /api/export?format=csv|xlsx. The body may name
// the units to export; otherwise the whole inventory is written.
func (h *Handler) ExportProperties(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	if format != "csv" && format != "xlsx" {
		h.fail(c, &fieldError{Field: "format", Message: "format must be csv or xlsx"})
		return
	}

	var req exportRequest
	if c.Request.ContentLength > 0 && !h.bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	var (
		props []model.Property
		err   error
	)
	if len(req.PropertyIDs) > 0 {
		props, err = h.store.GetPropertiesByIDs(ctx, req.PropertyIDs)
	} else {
		props, err = h.store.ListProperties(ctx, store.PropertyFilter{})
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	var (
		buf         bytes.Buffer
		filename    = export.CSVFilename
		contentType = "text/csv; charset=utf-8"
	)
	if format == "xlsx" {
		filename, contentType = export.XLSXFilename, xlsxContentType
		err = export.WriteXLSX(&buf, props)
	} else {
		err = export.WriteCSV(&buf, props)
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	h.audit.Record(ctx, "export", "Units exported", fmt.Sprintf("%d units as %s", len(props), format), model.SeverityInfo)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
