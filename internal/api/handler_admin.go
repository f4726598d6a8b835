package api

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"inventory-backend/internal/model"
	"inventory-backend/internal/store"
)

// ListLogs handles GET /api/logs[?module=&severity=&limit=], newest first.
func (h *Handler) ListLogs(c *gin.Context) {
	filter := store.LogFilter{
		Module:   c.Query("module"),
		Severity: model.Severity(c.Query("severity")),
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.fail(c, &fieldError{Field: "limit", Message: "limit must be a non-negative integer"})
			return
		}
		filter.Limit = n
	}
	entries, err := h.store.ListLogs(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// ClearLogs handles DELETE /api/logs.
func (h *Handler) ClearLogs(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.store.ClearLogs(ctx); err != nil {
		h.fail(c, err)
		return
	}
	h.audit.Record(ctx, "system", "Logs cleared", "", model.SeverityWarning)
	c.Status(http.StatusNoContent)
}

// Setting defaults.
const (
	DefaultCurrency = "USD"
	DefaultAreaUnit = "sqft"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// settingsBody is the preference document; absent fields keep their stored value.
type settingsBody struct {
	PreferredCurrency *string `json:"preferredCurrency"`
	PreferredAreaUnit *string `json:"preferredAreaUnit"`
}

func (h *Handler) loadSettings(c *gin.Context) (gin.H, error) {
	stored, err := h.store.GetSettings(c.Request.Context())
	if err != nil {
		return nil, err
	}
	out := gin.H{
		model.SettingPreferredCurrency: DefaultCurrency,
		model.SettingPreferredAreaUnit: DefaultAreaUnit,
	}
	for _, key := range []string{model.SettingPreferredCurrency, model.SettingPreferredAreaUnit} {
		if v, ok := stored[key]; ok && v != "" {
			out[key] = v
		}
	}
	return out, nil
}

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.loadSettings(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// PutSettings handles PUT /api/settings.
func (h *Handler) PutSettings(c *gin.Context) {
	var body settingsBody
	if !h.bind(c, &body) {
		return
	}

	updates := map[string]string{}
	if body.PreferredCurrency != nil {
		v := strings.ToUpper(strings.TrimSpace(*body.PreferredCurrency))
		if !currencyPattern.MatchString(v) {
			h.fail(c, &fieldError{Field: model.SettingPreferredCurrency, Message: "currency must be a three-letter code"})
			return
		}
		updates[model.SettingPreferredCurrency] = v
	}
	if body.PreferredAreaUnit != nil {
		v := strings.ToLower(strings.TrimSpace(*body.PreferredAreaUnit))
		if v != "sqft" && v != "sqm" {
			h.fail(c, &fieldError{Field: model.SettingPreferredAreaUnit, Message: "area unit must be sqft or sqm"})
			return
		}
		updates[model.SettingPreferredAreaUnit] = v
	}

	ctx := c.Request.Context()
	for key, value := range updates {
		if err := h.store.PutSetting(ctx, key, value); err != nil {
			h.fail(c, err)
			return
		}
		h.audit.Record(ctx, "settings", "Preference changed", fmt.Sprintf("%s = %s", key, value), model.SeverityInfo)
	}

	settings, err := h.loadSettings(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// GetDashboard handles GET /api/dashboard.
func (h *Handler) GetDashboard(c *gin.Context) {
	summary, err := h.store.Summary(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary":         summary,
		"pendingPreviews": h.pricing.Pending(),
	})
}
