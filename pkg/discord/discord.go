// Package discord implements the messaging-channel collaborators on top of a
// Discord bot session: the dump channel doubles as the media blob store and
// user DMs carry the delivery notifications.
package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/locketbot/backend/internal/models"
	"github.com/locketbot/backend/internal/services"
)

// Client wraps a discordgo session plus the dump channel it stores media in.
type Client struct {
	session       *discordgo.Session
	dumpChannelID string
}

// New creates a Client from a bot token and the dump channel ID. The session
// is opened immediately so REST calls and DMs are usable right away.
func New(token, dumpChannelID string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("discord bot token not provided")
	}
	if dumpChannelID == "" {
		return nil, fmt.Errorf("discord dump channel ID not provided")
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}

	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("error opening discord gateway: %w", err)
	}

	log.Println("Discord session opened successfully!")
	return &Client{session: session, dumpChannelID: dumpChannelID}, nil
}

// Close shuts the gateway connection down.
func (c *Client) Close() error {
	return c.session.Close()
}

// SendAttachment posts the blob to the dump channel and returns the permanent
// (channel, message) coordinate of the stored attachment.
func (c *Client) SendAttachment(ctx context.Context, filename, contentType string, data []byte, note string) (string, string, error) {
	msg, err := c.session.ChannelMessageSendComplex(c.dumpChannelID, &discordgo.MessageSend{
		Content: note,
		Files: []*discordgo.File{{
			Name:        filename,
			ContentType: contentType,
			Reader:      bytes.NewReader(data),
		}},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", "", err
	}
	return msg.ChannelID, msg.ID, nil
}

// AttachmentURL re-fetches the dump message and returns the attachment's
// current transient URL. A deleted message or attachment yields ("", nil).
func (c *Client) AttachmentURL(ctx context.Context, channelID, messageID string) (string, error) {
	msg, err := c.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		var restErr *discordgo.RESTError
		if errors.As(err, &restErr) && restErr.Message != nil &&
			restErr.Message.Code == discordgo.ErrCodeUnknownMessage {
			return "", nil
		}
		return "", err
	}
	if len(msg.Attachments) == 0 {
		return "", nil
	}
	return msg.Attachments[0].URL, nil
}

// SendDirect delivers one media notification to a user's DMs. A recipient who
// has disabled server DMs surfaces as services.ErrDirectMessagesDisabled so
// the pipeline can account for it uniformly.
func (c *Client) SendDirect(ctx context.Context, recipientDiscordID string, dm services.DirectMessage) error {
	channel, err := c.session.UserChannelCreate(recipientDiscordID, discordgo.WithContext(ctx))
	if err != nil {
		return mapDMError(err)
	}

	caption := dm.Caption
	if caption == "" {
		caption = "No caption"
	}

	embed := &discordgo.MessageEmbed{
		Color:       0x2b2d31,
		Description: caption,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    dm.SenderUsername,
			IconURL: dm.SenderAvatarURL,
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Locket Bot"},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	send := &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}
	if dm.MediaType == models.MediaTypeImage {
		embed.Image = &discordgo.MessageEmbedImage{URL: dm.MediaURL}
	} else if dm.MediaURL != "" {
		// Discord does not play videos inside an embed image, so the video
		// link rides alongside the embed.
		send.Content = dm.MediaURL
	}

	if _, err := c.session.ChannelMessageSendComplex(channel.ID, send, discordgo.WithContext(ctx)); err != nil {
		return mapDMError(err)
	}
	return nil
}

func mapDMError(err error) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil &&
		restErr.Message.Code == discordgo.ErrCodeCannotSendMessagesToThisUser {
		return services.ErrDirectMessagesDisabled
	}
	return err
}
