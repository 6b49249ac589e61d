package services

import (
	"strings"

	"github.com/locketbot/backend/internal/models"
	"github.com/locketbot/backend/pkg/apperrors"
)

// Media constraints
const (
	MediaMaxSizeBytes = 10 * 1024 * 1024 // 10MB
	CaptionMaxLength  = 500
)

// MaxConnectionsPerUser caps the ACCEPTED connections any single user may
// hold. Enforced at creation time only, not retroactively.
const MaxConnectionsPerUser = 50

var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"image/gif":       true,
	"video/mp4":       true,
	"video/quicktime": true,
}

// ValidateMedia checks an upload against the content-type allow-list, the
// size cap and the caption bound. It runs before any side effect.
func ValidateMedia(mimeType string, sizeBytes int64, caption string) error {
	if mimeType == "" {
		return apperrors.InvalidArg("file has no content type")
	}
	if !allowedMimeTypes[mimeType] {
		return apperrors.InvalidArg("unsupported file format, only images and short videos are allowed")
	}
	if sizeBytes <= 0 {
		return apperrors.InvalidArg("file is empty")
	}
	if sizeBytes > MediaMaxSizeBytes {
		return apperrors.InvalidArg("file too large, the limit is 10MB")
	}
	if len(caption) > CaptionMaxLength {
		return apperrors.InvalidArg("caption must be at most 500 characters")
	}
	return nil
}

// MediaTypeOf maps a MIME type to the coarse media kind.
func MediaTypeOf(mimeType string) models.MediaType {
	if strings.HasPrefix(mimeType, "video/") {
		return models.MediaTypeVideo
	}
	return models.MediaTypeImage
}
