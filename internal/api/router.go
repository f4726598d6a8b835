package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"inventory-backend/config"
	"inventory-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.Default()
	r.Use(h.metrics.Middleware())
	r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, cfg.RequestIPHeader)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)

	api := r.Group("/api")
	api.Use(rateLimiter, mw.ActingUser(), caching)
	{
		api.GET("/properties", h.ListProperties)
		api.POST("/properties", h.CreateProperty)
		api.POST("/properties/bulk-delete", h.BulkDeleteProperties)
		api.POST("/properties/bulk-status", h.BulkChangeStatus)
		api.GET("/properties/:id", h.GetProperty)
		api.PUT("/properties/:id", h.UpdateProperty)
		api.DELETE("/properties/:id", h.DeleteProperty)
		api.POST("/properties/:id/status", h.ChangeStatus)
		api.PUT("/properties/:id/floor-plan", h.UploadFloorPlan)

		api.POST("/pricing/preview", h.PreviewPrices)
		api.GET("/pricing/previews/:id", h.GetPricePreview)
		api.POST("/pricing/previews/:id/commit", h.CommitPrices)
		api.DELETE("/pricing/previews/:id", h.DiscardPrices)

		api.GET("/import/fields", h.ListImportFields)
		api.POST("/import/upload", h.UploadImport)
		api.POST("/import/commit", h.CommitImport)
		api.POST("/export", h.ExportProperties)

		api.GET("/projects", h.ListProjects)
		api.POST("/projects", h.CreateProject)
		api.GET("/projects/:id", h.GetProject)
		api.PUT("/projects/:id", h.UpdateProject)
		api.DELETE("/projects/:id", h.DeleteProject)

		api.GET("/developers", h.ListDevelopers)
		api.POST("/developers", h.CreateDeveloper)
		api.GET("/developers/:id", h.GetDeveloper)
		api.PUT("/developers/:id", h.UpdateDeveloper)
		api.DELETE("/developers/:id", h.DeleteDeveloper)
		api.PUT("/developers/:id/logo", h.UploadDeveloperLogo)

		api.GET("/events", h.ListEvents)
		api.POST("/events", h.CreateEvent)
		api.GET("/events/:id", h.GetEvent)
		api.DELETE("/events/:id", h.DeleteEvent)
		api.POST("/events/:id/registrations", h.RegisterAttendee)
		api.GET("/events/:id/registrations/:rid/qr", h.GetRegistrationQR)
		api.POST("/events/:id/checkin", h.CheckIn)

		api.GET("/logs", h.ListLogs)
		api.DELETE("/logs", h.ClearLogs)
		api.GET("/settings", h.GetSettings)
		api.PUT("/settings", h.PutSettings)
		api.GET("/dashboard", h.GetDashboard)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)

		api.GET("/blobs/*key", h.GetBlob)
	}

	return r
}
