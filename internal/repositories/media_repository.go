package repositories

import (
	"context"

	"github.com/locketbot/backend/internal/models"
	"gorm.io/gorm"
)

// MediaRepository defines the interface for media item data operations
type MediaRepository interface {
	CreateMediaItem(ctx context.Context, item *models.MediaItem) error
	GetMediaItemByID(ctx context.Context, id uint) (*models.MediaItem, error)
	GetMediaBySender(ctx context.Context, senderID uint, page, limit int) ([]models.MediaItem, int64, error)
	DeleteMediaItem(ctx context.Context, id uint) error
}

// PostgresMediaRepository implements MediaRepository for PostgreSQL
type PostgresMediaRepository struct {
	db *gorm.DB
}

// NewPostgresMediaRepository creates a new PostgresMediaRepository
func NewPostgresMediaRepository(db *gorm.DB) *PostgresMediaRepository {
	return &PostgresMediaRepository{db: db}
}

// CreateMediaItem creates a new media item in PostgreSQL
func (r *PostgresMediaRepository) CreateMediaItem(ctx context.Context, item *models.MediaItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetMediaItemByID retrieves a media item by ID from PostgreSQL
func (r *PostgresMediaRepository) GetMediaItemByID(ctx context.Context, id uint) (*models.MediaItem, error) {
	var item models.MediaItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// GetMediaBySender retrieves a sender's media items with pagination, newest first
func (r *PostgresMediaRepository) GetMediaBySender(ctx context.Context, senderID uint, page, limit int) ([]models.MediaItem, int64, error) {
	var items []models.MediaItem
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.MediaItem{}).
		Where("sender_id = ?", senderID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := r.db.WithContext(ctx).
		Where("sender_id = ?", senderID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&items).Error

	return items, total, err
}

// DeleteMediaItem deletes a media item and its delivery records
func (r *PostgresMediaRepository) DeleteMediaItem(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("media_item_id = ?", id).Delete(&models.DeliveryRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.MediaItem{}, id).Error
	})
}
