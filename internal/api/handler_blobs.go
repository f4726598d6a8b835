package api

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GetBlob handles GET /api/blobs/*key and streams a stored floor plan or logo.
func (h *Handler) GetBlob(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	info, body, err := h.blobs.Get(c.Request.Context(), key)
	if err != nil {
		h.fail(c, err)
		return
	}
	defer body.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	headers := map[string]string{"X-Content-Type-Options": "nosniff"}
	if !inlineSafe(contentType) {
		headers["Content-Disposition"] = mime.FormatMediaType("attachment", map[string]string{"filename": filepath.Base(key)})
	}
	c.DataFromReader(http.StatusOK, info.Size, contentType, body, headers)
}

// inlineSafe reports whether a stored type may render in the browser. SVG can carry script.
func inlineSafe(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/") && mediaType != "image/svg+xml"
}

// storeUpload saves the multipart "file" of the request under prefix and returns its key.
func (h *Handler) storeUpload(c *gin.Context, prefix string) (string, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", badRequest("file exceeds %d bytes", h.maxUpload)
		}
		return "", badRequest("a multipart field named file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			contentType = byExt
		}
	}
	info, err := h.blobs.Put(c.Request.Context(), prefix+"/"+uuid.NewString()+ext, f, contentType)
	if err != nil {
		return "", err
	}
	return info.Key, nil
}

// discardBlob removes a blob that is no longer referenced. Failures only leave an orphan behind.
func (h *Handler) discardBlob(c *gin.Context, key string) {
	if _, err := h.blobs.Delete(c.Request.Context(), key); err != nil {
		h.log.Warn("failed to delete blob", zap.String("key", key), zap.Error(err))
	}
}
