package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"inventory-backend/internal/model"
	"inventory-backend/internal/store"
)

const (
	projectsModule   = "projects"
	developersModule = "developers"
)

// ListProjects handles GET /api/projects.
func (h *Handler) ListProjects(c *gin.Context) {
	projects, err := h.store.ListProjects(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

// GetProject handles GET /api/projects/:id.
func (h *Handler) GetProject(c *gin.Context) {
	p, err := h.store.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreateProject handles POST /api/projects.
func (h *Handler) CreateProject(c *gin.Context) {
	var p model.Project
	if !h.bind(c, &p) {
		return
	}
	p.ID = ""
	ctx := c.Request.Context()
	if err := h.checkProjectName(c, &p); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.store.CreateProject(ctx, &p); err != nil {
		h.fail(c, err)
		return
	}
	h.audit.Record(ctx, projectsModule, "Project added", p.Name, model.SeveritySuccess)
	c.JSON(http.StatusCreated, p)
}

// UpdateProject handles PUT /api/projects/:id. Units of the project pick up its new names.
func (h *Handler) UpdateProject(c *gin.Context) {
	var p model.Project
	if !h.bind(c, &p) {
		return
	}
	p.ID = c.Param("id")
	ctx := c.Request.Context()
	if err := h.checkProjectName(c, &p); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.store.UpdateProject(ctx, &p); err != nil {
		h.fail(c, err)
		return
	}
	h.audit.Record(ctx, projectsModule, "Project updated", p.Name, model.SeverityInfo)
	c.JSON(http.StatusOK, p)
}

// DeleteProject handles DELETE /api/projects/:id[?cascade=true].
func (h *Handler) DeleteProject(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	cascade := c.Query("cascade") == "true"
	if err := h.store.DeleteProject(ctx, id, cascade); err != nil {
		h.fail(c, err)
		return
	}
	if cascade {
		h.pricing.Invalidate()
	}
	h.audit.Record(ctx, projectsModule, "Project deleted", id, model.SeverityWarning)
	c.Status(http.StatusNoContent)
}

// checkProjectName trims the name and rejects one already used by another project.
func (h *Handler) checkProjectName(c *gin.Context, p *model.Project) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return &fieldError{Field: "name", Message: "a project name is required"}
	}
	existing, err := h.store.FindProjectByName(c.Request.Context(), p.Name)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != p.ID:
		return fmt.Errorf("%w: project %q already exists", errConflict, p.Name)
	}
	return nil
}

// ListDevelopers handles GET /api/developers.
func (h *Handler) ListDevelopers(c *gin.Context) {
	devs, err := h.store.ListDevelopers(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, devs)
}

// GetDeveloper handles GET /api/developers/:id.
func (h *Handler) GetDeveloper(c *gin.Context) {
	d, err := h.store.GetDeveloper(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// CreateDeveloper handles POST /api/developers.
func (h *Handler) CreateDeveloper(c *gin.Context) {
	var d model.Developer
	if !h.bind(c, &d) {
		return
	}
	d.ID = ""
	if d.Name = strings.TrimSpace(d.Name); d.Name == "" {
		h.fail(c, &fieldError{Field: "name", Message: "a developer name is required"})
		return
	}
	ctx := c.Request.Context()
	if err := h.store.CreateDeveloper(ctx, &d); err != nil {
		h.fail(c, err)
		return
	}
	h.audit.Record(ctx, developersModule, "Developer added", d.Name, model.SeveritySuccess)
	c.JSON(http.StatusCreated, d)
}

// UpdateDeveloper handles PUT /api/developers/:id.
func (h *Handler) UpdateDeveloper(c *gin.Context) {
	var d model.Developer
	if !h.bind(c, &d) {
		return
	}
	d.ID = c.Param("id")
	if d.Name = strings.TrimSpace(d.Name); d.Name == "" {
		h.fail(c, &fieldError{Field: "name", Message: "a developer name is required"})
		return
	}
	ctx := c.Request.Context()
	if err := h.store.UpdateDeveloper(ctx, &d); err != nil {
		h.fail(c, err)
		return
	}
	h.audit.Record(ctx, developersModule, "Developer updated", d.Name, model.SeverityInfo)
	c.JSON(http.StatusOK, d)
}

// DeleteDeveloper handles DELETE /api/developers/:id[?cascade=true].
func (h *Handler) DeleteDeveloper(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	cascade := c.Query("cascade") == "true"
	if err := h.store.DeleteDeveloper(ctx, id, cascade); err != nil {
		h.fail(c, err)
		return
	}
	if cascade {
		h.pricing.Invalidate()
	}
	h.audit.Record(ctx, developersModule, "Developer deleted", id, model.SeverityWarning)
	c.Status(http.StatusNoContent)
}

// UploadDeveloperLogo handles PUT /api/developers/:id/logo with a multipart "file".
func (h *Handler) UploadDeveloperLogo(c *gin.Context) {
	ctx := c.Request.Context()
	d, err := h.store.GetDeveloper(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	key, err := h.storeUpload(c, "logos/"+d.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	previous := d.Logo
	d.Logo = &key
	if err := h.store.UpdateDeveloper(ctx, d); err != nil {
		h.discardBlob(c, key)
		h.fail(c, err)
		return
	}
	if previous != nil {
		h.discardBlob(c, *previous)
	}
	h.audit.Record(ctx, developersModule, "Logo uploaded", d.Name, model.SeverityInfo)
	c.JSON(http.StatusOK, d)
}
