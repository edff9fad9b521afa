package uploads

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"

	"resume-renderer/internal/shared/server/middleware"
	"resume-renderer/internal/shared/server/respond"
	"resume-renderer/internal/shared/storage/object"
	"resume-renderer/internal/shared/telemetry"
	"resume-renderer/internal/shared/util"
)

const (
	maxUploadBytes = 10 << 20 // 10MB
	// multipart framing on top of the file itself
	maxBodyBytes = maxUploadBytes + 1<<20
	avatarDir    = "avatars"
)

// allowedContentTypes maps accepted image types to their stored extension.
var allowedContentTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// Handler accepts profile photo uploads.
type Handler struct {
	Store object.ObjectStore
	Now   func() time.Time
}

func NewHandler(store object.ObjectStore) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/uploads/avatar", h.avatar)
}

type avatarResponse struct {
	URL string `json:"url"`
}

func (h *Handler) avatar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusBadRequest, "FILE_TOO_LARGE", "file exceeds the 10MB limit", "")
			return
		}
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "file is required", "")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		respond.Error(c, http.StatusBadRequest, "FILE_TOO_LARGE",
			"file exceeds the 10MB limit", fmt.Sprintf("%.2fMB", float64(fileHeader.Size)/(1<<20)))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "unable to read file", "")
		return
	}
	defer file.Close()

	br := bufio.NewReaderSize(file, 512)
	head, _ := br.Peek(512)
	contentType := http.DetectContentType(head)
	ext, ok := allowedContentTypes[contentType]
	if !ok {
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "file must be a JPEG, PNG, WebP or GIF image", "")
		return
	}

	userID := middleware.UserIDFromContext(c)
	key := avatarKey(userID, h.now(), ext)
	obj, err := h.Store.PutKey(c.Request.Context(), key, br, object.PutOptions{ContentType: contentType})
	if err != nil {
		telemetry.Error("uploads.avatar.failed", map[string]any{
			"err":        err.Error(),
			"key":        key,
			"size_bytes": fileHeader.Size,
			"request_id": middleware.RequestIDFromContext(c),
		})
		respond.Error(c, http.StatusInternalServerError, "UPLOAD_FAILED", "upload failed", "")
		return
	}

	respond.OK(c, avatarResponse{URL: obj.URL})
}

// avatarKey names avatars by a hash of the owner so user ids never appear in
// public URLs.
func avatarKey(userID string, now time.Time, ext string) string {
	return path.Join(avatarDir, fmt.Sprintf("%s-%d.%s", util.HashUserKey(userID), now.UnixMilli(), ext))
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
