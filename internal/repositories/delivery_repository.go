package repositories

import (
	"context"
	"time"

	"github.com/locketbot/backend/internal/models"
	"gorm.io/gorm"
)

// DeliveryRepository defines the interface for delivery record operations
type DeliveryRepository interface {
	CreateDeliveryRecord(ctx context.Context, record *models.DeliveryRecord) error
	CountByMediaItem(ctx context.Context, mediaItemID uint) (int64, error)
	MarkViewed(ctx context.Context, mediaItemID, recipientID uint) error
}

// PostgresDeliveryRepository implements DeliveryRepository for PostgreSQL
type PostgresDeliveryRepository struct {
	db *gorm.DB
}

// NewPostgresDeliveryRepository creates a new PostgresDeliveryRepository
func NewPostgresDeliveryRepository(db *gorm.DB) *PostgresDeliveryRepository {
	return &PostgresDeliveryRepository{db: db}
}

// CreateDeliveryRecord creates a new delivery record in PostgreSQL
func (r *PostgresDeliveryRepository) CreateDeliveryRecord(ctx context.Context, record *models.DeliveryRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// CountByMediaItem counts the delivery records for a media item. The delivered
// count is always derived here, never read from a stored counter.
func (r *PostgresDeliveryRepository) CountByMediaItem(ctx context.Context, mediaItemID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DeliveryRecord{}).
		Where("media_item_id = ?", mediaItemID).Count(&count).Error
	return count, err
}

// MarkViewed stamps viewed_at on a delivery record if it has not been viewed yet
func (r *PostgresDeliveryRepository) MarkViewed(ctx context.Context, mediaItemID, recipientID uint) error {
	return r.db.WithContext(ctx).Model(&models.DeliveryRecord{}).
		Where("media_item_id = ? AND recipient_id = ? AND viewed_at IS NULL", mediaItemID, recipientID).
		Update("viewed_at", time.Now()).Error
}
