package services

import (
	"context"
	"errors"

	"github.com/locketbot/backend/internal/models"
)

// ChannelStore is the messaging-channel collaborator used as a blob store: a
// posted attachment yields a permanent (channel, message) coordinate, and the
// attachment's transient URL can be re-derived from that coordinate at any
// time.
type ChannelStore interface {
	SendAttachment(ctx context.Context, filename, contentType string, data []byte, note string) (channelID, messageID string, err error)
	// AttachmentURL re-fetches the message and returns the attachment's current
	// URL. A deleted message or attachment yields ("", nil), not an error.
	AttachmentURL(ctx context.Context, channelID, messageID string) (string, error)
}

// ErrDirectMessagesDisabled is returned by a Notifier when the recipient has
// disabled direct messages. The pipeline reports it differently from generic
// delivery failures, so implementations must keep it distinguishable via
// errors.Is.
var ErrDirectMessagesDisabled = errors.New("recipient has disabled direct messages")

// DirectMessage is the payload delivered to one recipient during fan-out.
type DirectMessage struct {
	SenderUsername  string
	SenderAvatarURL string
	MediaURL        string
	MediaType       models.MediaType
	Caption         string
}

// Notifier is the notification-send collaborator.
type Notifier interface {
	SendDirect(ctx context.Context, recipientDiscordID string, msg DirectMessage) error
}
