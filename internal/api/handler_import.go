package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"inventory-backend/internal/importer"
)

// previewRows is how many parsed rows an upload response echoes back.
const previewRows = 5

// ListImportFields handles GET /api/import/fields.
func (h *Handler) ListImportFields(c *gin.Context) {
	c.JSON(http.StatusOK, importer.Fields)
}

type uploadResponse struct {
	Token            string                `json:"token"`
	Filename         string                `json:"filename"`
	Headers          []string              `json:"headers"`
	Rows             int                   `json:"rows"`
	Preview          []map[string]string   `json:"preview"`
	Skipped          []importer.SkippedRow `json:"skipped,omitempty"`
	SuggestedMapping importer.Mapping      `json:"suggestedMapping"`
	MissingRequired  []string              `json:"missingRequired,omitempty"`
}

// UploadImport handles POST /api/import/upload. The parsed file is held under a
// token until /api/import/commit names the column mapping.
func (h *Handler) UploadImport(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, badRequest("file exceeds %d bytes", h.maxUpload))
			return
		}
		h.fail(c, badRequest("a multipart field named file is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	defer f.Close()

	table, err := importer.Parse(fh.Filename, f)
	if err != nil {
		h.fail(c, err)
		return
	}

	mapping := importer.SuggestMapping(table.Headers)
	resp := uploadResponse{
		Token:            h.importer.Hold(table),
		Filename:         table.Filename,
		Headers:          table.Headers,
		Rows:             len(table.Rows),
		Skipped:          table.Skipped,
		SuggestedMapping: mapping,
		MissingRequired:  mapping.MissingRequired(),
	}
	for _, row := range table.Rows[:min(previewRows, len(table.Rows))] {
		values := make(map[string]string, len(table.Headers))
		for _, header := range table.Headers {
			values[header] = row.Value(header)
		}
		resp.Preview = append(resp.Preview, values)
	}
	c.JSON(http.StatusCreated, resp)
}

type commitImportRequest struct {
	Token   string           `json:"token" binding:"required"`
	Mapping importer.Mapping `json:"mapping" binding:"required"`
}

// CommitImport handles POST /api/import/commit. Either every row is inserted or,
// when validation fails, none is and the report lists every problem.
func (h *Handler) CommitImport(c *gin.Context) {
	var req commitImportRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := h.importer.ImportHeld(c.Request.Context(), req.Token, req.Mapping)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.pricing.Invalidate()
	h.metrics.UnitsImported(res.Imported)
	c.JSON(http.StatusCreated, res)
}
