package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inventory-backend/internal/pricing"
)

// PreviewPrices handles POST /api/pricing/preview. Nothing is persisted until
// the returned preview is committed.
func (h *Handler) PreviewPrices(c *gin.Context) {
	var req pricing.Request
	if !h.bind(c, &req) {
		return
	}
	preview, err := h.pricing.Preview(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, preview)
}

// GetPricePreview handles GET /api/pricing/previews/:id.
func (h *Handler) GetPricePreview(c *gin.Context) {
	preview, err := h.pricing.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// CommitPrices handles POST /api/pricing/previews/:id/commit.
func (h *Handler) CommitPrices(c *gin.Context) {
	res, err := h.pricing.Commit(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.PriceCommitted(string(res.Rule), res.Updated)
	c.JSON(http.StatusOK, res)
}

// DiscardPrices handles DELETE /api/pricing/previews/:id.
func (h *Handler) DiscardPrices(c *gin.Context) {
	if err := h.pricing.Discard(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
