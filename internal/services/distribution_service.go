package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/locketbot/backend/internal/models"
	"github.com/locketbot/backend/internal/ratelimit"
	"github.com/locketbot/backend/internal/repositories"
	"github.com/locketbot/backend/pkg/apperrors"
	"gorm.io/gorm"
)

// DistributionService orchestrates one media send: admission check, media
// validation, recipient resolution, blob storage, metadata persistence and
// concurrent fan-out with partial-failure accounting.
type DistributionService struct {
	connections *ConnectionService
	media       repositories.MediaRepository
	deliveries  repositories.DeliveryRepository
	moments     repositories.MomentRepository
	store       *MediaStore
	notifier    Notifier
	limiter     *ratelimit.Limiter
	logger      *slog.Logger
}

// NewDistributionService creates a new DistributionService
func NewDistributionService(
	connections *ConnectionService,
	media repositories.MediaRepository,
	deliveries repositories.DeliveryRepository,
	moments repositories.MomentRepository,
	store *MediaStore,
	notifier Notifier,
	limiter *ratelimit.Limiter,
	logger *slog.Logger,
) *DistributionService {
	return &DistributionService{
		connections: connections,
		media:       media,
		deliveries:  deliveries,
		moments:     moments,
		store:       store,
		notifier:    notifier,
		limiter:     limiter,
		logger:      logger,
	}
}

// DistributeInput carries one captured media item to broadcast.
type DistributeInput struct {
	Data      []byte
	MimeType  string
	SizeBytes int64
	Width     *int
	Height    *int
	Caption   string
}

// DistributeResult is the deterministic partial-success accounting of one
// send. Failed recipients are reported by display name; a zero Delivered is a
// reporting state, not an error.
type DistributeResult struct {
	Delivered       int      `json:"delivered"`
	Failed          int      `json:"failed"`
	Total           int      `json:"total"`
	FailedUsernames []string `json:"failed_usernames,omitempty"`

	MediaItem *models.MediaItem `json:"media_item,omitempty"`
}

// Distribute broadcasts one media item to every ACCEPTED friend of the
// sender. Each step is a hard precondition for the next; per-recipient notify
// attempts run concurrently and fail independently. Re-invoking with the same
// input creates a new media item and new delivery records.
func (s *DistributionService) Distribute(ctx context.Context, sender *models.User, in DistributeInput) (*DistributeResult, error) {
	admitted, err := s.limiter.Check(ctx, ratelimit.PhotoKey(sender.DiscordID), ratelimit.PhotoUpload)
	if err != nil {
		return nil, apperrors.Unavailable("rate limiter unavailable", err)
	}
	if !admitted {
		return nil, apperrors.ErrRateLimited
	}

	if err := ValidateMedia(in.MimeType, in.SizeBytes, in.Caption); err != nil {
		return nil, err
	}

	// The recipient set comes from the connection graph, never from the caller.
	friends, err := s.connections.ListFriends(ctx, sender.ID)
	if err != nil {
		return nil, err
	}
	if len(friends) == 0 {
		return nil, apperrors.ErrNoRecipients
	}

	// Store the blob first: the metadata row is the durable proof of the
	// store write and must never reference a key that was not written.
	storageKey, err := s.store.Put(ctx, in.Data, in.MimeType, sender.DiscordID)
	if err != nil {
		return nil, apperrors.Unavailable("media storage unavailable", err)
	}

	item := &models.MediaItem{
		SenderID:   sender.ID,
		StorageKey: storageKey,
		MimeType:   in.MimeType,
		MediaType:  MediaTypeOf(in.MimeType),
		SizeBytes:  in.SizeBytes,
		Width:      in.Width,
		Height:     in.Height,
		Caption:    in.Caption,
	}
	if err := s.media.CreateMediaItem(ctx, item); err != nil {
		return nil, err
	}

	// Resolved once and reused for every recipient, so per-recipient failures
	// stay decoupled from storage round-trips.
	mediaURL := s.store.Resolve(ctx, storageKey)
	if mediaURL == "" {
		s.logger.Warn("fresh media url unavailable, recipients get a degraded message",
			"media_item", item.ID, "storage_key", storageKey)
	}

	msg := DirectMessage{
		SenderUsername:  sender.Username,
		SenderAvatarURL: sender.AvatarURL,
		MediaURL:        mediaURL,
		MediaType:       item.MediaType,
		Caption:         in.Caption,
	}

	result := s.fanOut(ctx, item, friends, msg)
	result.MediaItem = item

	s.logger.Info("media distributed",
		"sender", sender.DiscordID,
		"media_item", item.ID,
		"delivered", result.Delivered,
		"failed", result.Failed,
		"total", result.Total)

	return result, nil
}

// fanOut notifies every recipient concurrently and independently: one
// recipient's failure never aborts, delays or rolls back a sibling attempt.
// All attempts settle before the aggregate is folded.
func (s *DistributionService) fanOut(ctx context.Context, item *models.MediaItem, recipients []models.User, msg DirectMessage) *DistributeResult {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result = &DistributeResult{Total: len(recipients)}
	)

	for _, recipient := range recipients {
		wg.Add(1)
		go func(recipient models.User) {
			defer wg.Done()

			if err := s.notifier.SendDirect(ctx, recipient.DiscordID, msg); err != nil {
				if errors.Is(err, ErrDirectMessagesDisabled) {
					s.logger.Warn("recipient has direct messages disabled",
						"media_item", item.ID, "recipient", recipient.DiscordID)
				} else {
					s.logger.Error("delivery failed",
						"media_item", item.ID, "recipient", recipient.DiscordID, "err", err)
				}
				mu.Lock()
				result.Failed++
				result.FailedUsernames = append(result.FailedUsernames, recipient.Username)
				mu.Unlock()
				return
			}

			deliveredAt := time.Now()
			record := &models.DeliveryRecord{
				MediaItemID: item.ID,
				RecipientID: recipient.ID,
				DeliveredAt: deliveredAt,
			}
			if err := s.deliveries.CreateDeliveryRecord(ctx, record); err != nil {
				// The notify succeeded; a missing record only skews reads.
				s.logger.Error("failed to persist delivery record",
					"media_item", item.ID, "recipient", recipient.ID, "err", err)
			}

			moment := &models.Moment{
				MediaItemID:     item.ID,
				RecipientID:     recipient.ID,
				SenderUsername:  msg.SenderUsername,
				SenderAvatarURL: msg.SenderAvatarURL,
				StorageKey:      item.StorageKey,
				MediaType:       item.MediaType,
				Caption:         item.Caption,
				DeliveredAt:     deliveredAt,
			}
			if err := s.moments.InsertMoment(ctx, moment); err != nil {
				s.logger.Error("failed to insert feed moment",
					"media_item", item.ID, "recipient", recipient.ID, "err", err)
			}

			mu.Lock()
			result.Delivered++
			mu.Unlock()
		}(recipient)
	}

	wg.Wait()
	return result
}

// MomentsPage is one page of a recipient's received feed.
type MomentsPage struct {
	Items    []models.Moment `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	HasMore  bool            `json:"has_more"`
}

// ReceivedMoments returns a page of the user's received feed, newest first.
func (s *DistributionService) ReceivedMoments(ctx context.Context, userID uint, page, pageSize int) (*MomentsPage, error) {
	skip := int64((page - 1) * pageSize)
	items, total, err := s.moments.GetMomentsByRecipient(ctx, userID, skip, int64(pageSize))
	if err != nil {
		return nil, err
	}
	return &MomentsPage{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasMore:  skip+int64(len(items)) < total,
	}, nil
}

// SentMediaPage is one page of a sender's own media with delivered counts.
type SentMediaPage struct {
	Items    []SentMediaItem `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	HasMore  bool            `json:"has_more"`
}

// SentMediaItem pairs a media item with its derived delivered count.
type SentMediaItem struct {
	models.MediaItem
	Delivered int64 `json:"delivered"`
}

// SentMedia returns a page of the user's own sent media, newest first.
func (s *DistributionService) SentMedia(ctx context.Context, userID uint, page, pageSize int) (*SentMediaPage, error) {
	items, total, err := s.media.GetMediaBySender(ctx, userID, page, pageSize)
	if err != nil {
		return nil, err
	}

	out := make([]SentMediaItem, 0, len(items))
	for _, item := range items {
		delivered, err := s.deliveries.CountByMediaItem(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, SentMediaItem{MediaItem: item, Delivered: delivered})
	}

	skip := int64((page - 1) * pageSize)
	return &SentMediaPage{
		Items:    out,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasMore:  skip+int64(len(out)) < total,
	}, nil
}

// MarkViewed stamps the viewed time on a recipient's delivery record, once.
func (s *DistributionService) MarkViewed(ctx context.Context, mediaItemID, recipientID uint) error {
	return s.deliveries.MarkViewed(ctx, mediaItemID, recipientID)
}

// DeleteMedia removes a media item, its delivery records and its feed
// moments. Media is owned exclusively by its sender.
func (s *DistributionService) DeleteMedia(ctx context.Context, mediaItemID, actorID uint) error {
	item, err := s.media.GetMediaItemByID(ctx, mediaItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrMediaNotFound
		}
		return err
	}
	if item.SenderID != actorID {
		return apperrors.ErrNotSender
	}

	if err := s.media.DeleteMediaItem(ctx, item.ID); err != nil {
		return err
	}
	if err := s.moments.DeleteMomentsByMediaItem(ctx, item.ID); err != nil {
		s.logger.Error("failed to delete feed moments", "media_item", item.ID, "err", err)
	}
	return nil
}
