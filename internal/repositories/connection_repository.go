package repositories

import (
	"context"
	"errors"

	"github.com/locketbot/backend/internal/models"
	"github.com/locketbot/backend/pkg/apperrors"
	"gorm.io/gorm"
)

// ConnectionRepository defines the interface for connection data operations
type ConnectionRepository interface {
	CreateConnection(ctx context.Context, conn *models.Connection) error
	GetConnectionByID(ctx context.Context, id uint) (*models.Connection, error)
	GetConnectionByPair(ctx context.Context, userA, userB uint) (*models.Connection, error)
	CountAccepted(ctx context.Context, userID uint) (int64, error)
	UpdateConnectionStatus(ctx context.Context, id uint, status models.ConnectionStatus) error
	DeleteConnection(ctx context.Context, id uint) error
	GetAcceptedFriends(ctx context.Context, userID uint) ([]models.User, error)
	GetPendingRequests(ctx context.Context, addresseeID uint) ([]models.Connection, error)
}

// PostgresConnectionRepository implements ConnectionRepository for PostgreSQL
type PostgresConnectionRepository struct {
	db *gorm.DB
}

// NewPostgresConnectionRepository creates a new PostgresConnectionRepository
func NewPostgresConnectionRepository(db *gorm.DB) *PostgresConnectionRepository {
	return &PostgresConnectionRepository{db: db}
}

// CreateConnection inserts a connection row. The unique index on pair_key
// closes the race where two establish calls for the same pair both observe
// "no existing row"; the loser surfaces as ErrAlreadyPending.
func (r *PostgresConnectionRepository) CreateConnection(ctx context.Context, conn *models.Connection) error {
	conn.PairKey = models.PairKeyFor(conn.RequesterID, conn.AddresseeID)
	err := r.db.WithContext(ctx).Create(conn).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.ErrAlreadyPending
	}
	return err
}

// GetConnectionByID retrieves a connection by ID from PostgreSQL
func (r *PostgresConnectionRepository) GetConnectionByID(ctx context.Context, id uint) (*models.Connection, error) {
	var conn models.Connection
	if err := r.db.WithContext(ctx).First(&conn, id).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}

// GetConnectionByPair finds the row for an unordered user pair, checking both
// orderings of (requester, addressee). Returns gorm.ErrRecordNotFound when no
// row exists.
func (r *PostgresConnectionRepository) GetConnectionByPair(ctx context.Context, userA, userB uint) (*models.Connection, error) {
	var conn models.Connection
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			userA, userB, userB, userA).
		First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// CountAccepted counts the ACCEPTED connections a user holds on either side
func (r *PostgresConnectionRepository) CountAccepted(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Connection{}).
		Where("status = ? AND (requester_id = ? OR addressee_id = ?)",
			models.ConnectionStatusAccepted, userID, userID).
		Count(&count).Error
	return count, err
}

// UpdateConnectionStatus updates the status of a connection
func (r *PostgresConnectionRepository) UpdateConnectionStatus(ctx context.Context, id uint, status models.ConnectionStatus) error {
	return r.db.WithContext(ctx).Model(&models.Connection{}).
		Where("id = ?", id).Update("status", status).Error
}

// DeleteConnection hard-deletes a connection row
func (r *PostgresConnectionRepository) DeleteConnection(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Connection{}, id).Error
}

// GetAcceptedFriends returns the users connected to userID via an ACCEPTED
// row, resolving to the other side regardless of which column held userID.
func (r *PostgresConnectionRepository) GetAcceptedFriends(ctx context.Context, userID uint) ([]models.User, error) {
	var conns []models.Connection
	err := r.db.WithContext(ctx).
		Where("status = ? AND (requester_id = ? OR addressee_id = ?)",
			models.ConnectionStatusAccepted, userID, userID).
		Find(&conns).Error
	if err != nil {
		return nil, err
	}

	if len(conns) == 0 {
		return []models.User{}, nil
	}

	friendIDs := make([]uint, 0, len(conns))
	for _, conn := range conns {
		if conn.RequesterID == userID {
			friendIDs = append(friendIDs, conn.AddresseeID)
		} else {
			friendIDs = append(friendIDs, conn.RequesterID)
		}
	}

	var friends []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", friendIDs).Find(&friends).Error; err != nil {
		return nil, err
	}
	return friends, nil
}

// GetPendingRequests retrieves pending requests addressed to a user, newest first
func (r *PostgresConnectionRepository) GetPendingRequests(ctx context.Context, addresseeID uint) ([]models.Connection, error) {
	var conns []models.Connection
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Where("addressee_id = ? AND status = ?", addresseeID, models.ConnectionStatusPending).
		Order("created_at DESC").
		Find(&conns).Error
	return conns, err
}
