package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// StorageScheme prefixes every storage key minted by this store. The full key
// format is "dump:<channelId>:<messageId>" and must round-trip exactly.
const StorageScheme = "dump"

// MediaStore maps uploaded blobs to durable storage keys using a messaging
// channel as the backing object store.
type MediaStore struct {
	channel ChannelStore
	logger  *slog.Logger
}

// NewMediaStore creates a MediaStore on top of a channel collaborator.
func NewMediaStore(channel ChannelStore, logger *slog.Logger) *MediaStore {
	return &MediaStore{channel: channel, logger: logger}
}

// Put uploads the blob to the dump channel and returns its storage key. A
// failed upload is fatal to the enclosing operation: callers must not persist
// any metadata referencing a key that was never returned.
func (s *MediaStore) Put(ctx context.Context, data []byte, mimeType, ownerTag string) (string, error) {
	filename := fmt.Sprintf("locket_%s.%s", uuid.NewString(), extensionFor(mimeType))
	note := fmt.Sprintf("[Dump] uploaded by %s", ownerTag)

	channelID, messageID, err := s.channel.SendAttachment(ctx, filename, mimeType, data, note)
	if err != nil {
		s.logger.Error("dump channel upload failed", "owner", ownerTag, "err", err)
		return "", fmt.Errorf("dump upload failed: %w", err)
	}

	return fmt.Sprintf("%s:%s:%s", StorageScheme, channelID, messageID), nil
}

// Resolve re-derives a fetch URL for a storage key. Attachment URLs expire, so
// the message is re-fetched on every access and the URL must never be cached
// long-term. A deleted message or any fetch failure yields "", which callers
// treat as "content unavailable".
func (s *MediaStore) Resolve(ctx context.Context, storageKey string) string {
	if !strings.HasPrefix(storageKey, StorageScheme+":") {
		// Legacy keys from the old S3 store are already URLs.
		return storageKey
	}

	parts := strings.SplitN(storageKey, ":", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		s.logger.Warn("malformed storage key", "key", storageKey)
		return ""
	}

	url, err := s.channel.AttachmentURL(ctx, parts[1], parts[2])
	if err != nil {
		s.logger.Warn("failed to fetch fresh attachment url", "key", storageKey, "err", err)
		return ""
	}
	return url
}

func extensionFor(mimeType string) string {
	if i := strings.IndexByte(mimeType, '/'); i >= 0 && i+1 < len(mimeType) {
		return mimeType[i+1:]
	}
	if strings.HasPrefix(mimeType, "video") {
		return "mp4"
	}
	return "jpg"
}
