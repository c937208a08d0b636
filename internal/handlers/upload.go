package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/devjasani79/WhatsUpDev/internal/models"
	"github.com/devjasani79/WhatsUpDev/internal/services"
	"github.com/devjasani79/WhatsUpDev/pkg/errors"
	"github.com/devjasani79/WhatsUpDev/pkg/logger"
	"github.com/devjasani79/WhatsUpDev/pkg/utils"
)

const maxUploadBytes = 50 * 1024 * 1024 // 50MB, matches the client cap

var allowedUploadTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"video/mp4":  true,
	"video/webm": true,
	"audio/webm": true,
	"audio/mpeg": true,
}

// Blobs is the attachment store; main wires the R2 implementation, tests
// swap in a fake.
var Blobs services.BlobStore

// UploadAttachment validates the declared type and size against the
// allow-list before a single byte reaches storage, then stores the file
// and returns the URL the message content will carry.
func UploadAttachment(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded", "field": "file"})
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		c.Error(errors.BadRequest("File exceeds the 50MB limit").
			WithCode(errors.CodeFileTooLarge))
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !allowedUploadTypes[contentType] {
		c.Error(errors.BadRequest("Invalid file type").
			WithCode(errors.CodeInvalidFileType))
		return
	}

	if Blobs == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Attachment storage not configured"})
		return
	}

	key := "chat/" + utils.GenerateID() + filepath.Ext(header.Filename)
	url, err := Blobs.Put(c.Request.Context(), key, contentType, file)
	if err != nil {
		logger.Error().Err(err).Str("key", key).Msg("Attachment upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to upload file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url": url,
		"fileMetadata": models.FileMetadata{
			FileName: header.Filename,
			FileSize: header.Size,
			MimeType: contentType,
		},
	})
}
