package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-chat-service/internal/models"
	"storefront-chat-service/internal/moderation"
	"storefront-chat-service/internal/storage"
)

// UploadHandler is the out-of-band file endpoint. It enforces the same MIME
// allow-list and size cap as message moderation, so a URL returned here is
// one the chat path will accept.
type UploadHandler struct {
	store     storage.ObjectStore
	moderator *moderation.Moderator
}

// NewUploadHandler builds an UploadHandler.
func NewUploadHandler(store storage.ObjectStore, moderator *moderation.Moderator) *UploadHandler {
	return &UploadHandler{store: store, moderator: moderator}
}

// Upload accepts a single multipart file and returns the stored file
// metadata for embedding in a chatMessage payload.
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, moderation.MaxFileBytes+4096)

	header, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": moderation.ReasonFileTooLarge})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file := &models.FileAttachment{
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         header.Size,
	}
	if verdict := h.moderator.CheckFile(file); !verdict.Allowed {
		c.JSON(http.StatusBadRequest, gin.H{"error": verdict.Reason})
		return
	}

	src, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}
	defer src.Close()

	url, err := h.store.Put(c.Request.Context(), header.Filename, file.MimeType, src, header.Size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}
	file.URL = url

	c.JSON(http.StatusCreated, file)
}
