package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/locketbot/backend/internal/models"
	"github.com/locketbot/backend/internal/repositories"
	"github.com/locketbot/backend/pkg/apperrors"
	"gorm.io/gorm"
)

// ConnectionService implements the connection graph: an undirected relation
// between two users with a PENDING/ACCEPTED/BLOCKED lifecycle.
type ConnectionService struct {
	users       repositories.UserRepository
	connections repositories.ConnectionRepository
	logger      *slog.Logger
}

// NewConnectionService creates a new ConnectionService
func NewConnectionService(users repositories.UserRepository, connections repositories.ConnectionRepository, logger *slog.Logger) *ConnectionService {
	return &ConnectionService{users: users, connections: connections, logger: logger}
}

// GetOrCreateUser upserts a user by Discord ID: created on first contact with
// a freshly minted invite code, display fields refreshed on every later call.
// It is idempotent and never errors on duplicates.
func (s *ConnectionService) GetOrCreateUser(ctx context.Context, discordID, username, avatarURL string) (*models.User, error) {
	user, err := s.users.GetUserByDiscordID(ctx, discordID)
	if err == nil {
		if user.Username != username || user.AvatarURL != avatarURL {
			user.Username = username
			user.AvatarURL = avatarURL
			if err := s.users.UpdateUser(ctx, user); err != nil {
				return nil, err
			}
		}
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = &models.User{
		DiscordID:       discordID,
		Username:        username,
		AvatarURL:       avatarURL,
		InviteCode:      newInviteCode(),
		NotifyOnReceive: true,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		// Lost a create race; the row exists now.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.users.GetUserByDiscordID(ctx, discordID)
		}
		return nil, err
	}
	return user, nil
}

// RequestConnection creates a PENDING request from requester to addressee.
func (s *ConnectionService) RequestConnection(ctx context.Context, requesterID, addresseeID uint) (*models.Connection, error) {
	if requesterID == addresseeID {
		return nil, apperrors.ErrSelfConnection
	}

	if existing, err := s.connections.GetConnectionByPair(ctx, requesterID, addresseeID); err == nil {
		return nil, conflictFor(existing.Status)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	count, err := s.connections.CountAccepted(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if count >= MaxConnectionsPerUser {
		return nil, apperrors.ErrLimitReached
	}

	conn := &models.Connection{
		RequesterID: requesterID,
		AddresseeID: addresseeID,
		Status:      models.ConnectionStatusPending,
	}
	if err := s.connections.CreateConnection(ctx, conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// ConnectByInvite establishes a connection directly via the target's invite
// code. Possession of the code is the consent signal, so the PENDING handshake
// is bypassed: an existing non-ACCEPTED row flips to ACCEPTED, otherwise an
// ACCEPTED row is created outright.
func (s *ConnectionService) ConnectByInvite(ctx context.Context, requesterID uint, code string) (*models.User, error) {
	target, err := s.users.GetUserByInviteCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInviteNotFound
		}
		return nil, err
	}

	if target.ID == requesterID {
		return nil, apperrors.ErrSelfConnection
	}

	existing, err := s.connections.GetConnectionByPair(ctx, requesterID, target.ID)
	switch {
	case err == nil:
		if existing.Status == models.ConnectionStatusAccepted {
			return nil, apperrors.ErrAlreadyConnected
		}
		if existing.Status == models.ConnectionStatusBlocked {
			return nil, apperrors.ErrBlocked
		}
		if err := s.connections.UpdateConnectionStatus(ctx, existing.ID, models.ConnectionStatusAccepted); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		conn := &models.Connection{
			RequesterID: requesterID,
			AddresseeID: target.ID,
			Status:      models.ConnectionStatusAccepted,
		}
		if err := s.connections.CreateConnection(ctx, conn); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	return target, nil
}

// AcceptConnection transitions a PENDING request to ACCEPTED. Only the
// addressee may accept.
func (s *ConnectionService) AcceptConnection(ctx context.Context, connectionID, actorID uint) (*models.Connection, error) {
	conn, err := s.getConnection(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if conn.AddresseeID != actorID {
		return nil, apperrors.ErrNotAddressee
	}
	if conn.Status != models.ConnectionStatusPending {
		return nil, apperrors.ErrNotPending
	}

	if err := s.connections.UpdateConnectionStatus(ctx, conn.ID, models.ConnectionStatusAccepted); err != nil {
		return nil, err
	}
	conn.Status = models.ConnectionStatusAccepted
	return conn, nil
}

// RejectConnection deletes a request. Only the addressee may reject; no
// BLOCKED intermediate state is modeled here.
func (s *ConnectionService) RejectConnection(ctx context.Context, connectionID, actorID uint) error {
	conn, err := s.getConnection(ctx, connectionID)
	if err != nil {
		return err
	}
	if conn.AddresseeID != actorID {
		return apperrors.ErrNotAddressee
	}
	return s.connections.DeleteConnection(ctx, conn.ID)
}

// RemoveConnection deletes the row for an unordered pair. Either party may
// disconnect without the other's consent.
func (s *ConnectionService) RemoveConnection(ctx context.Context, userA, userB uint) error {
	conn, err := s.connections.GetConnectionByPair(ctx, userA, userB)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrConnectionNotFound
		}
		return err
	}
	return s.connections.DeleteConnection(ctx, conn.ID)
}

// ListFriends returns the users connected to userID via an ACCEPTED row.
func (s *ConnectionService) ListFriends(ctx context.Context, userID uint) ([]models.User, error) {
	return s.connections.GetAcceptedFriends(ctx, userID)
}

// ListPendingRequests returns the PENDING requests addressed to userID.
func (s *ConnectionService) ListPendingRequests(ctx context.Context, userID uint) ([]models.Connection, error) {
	return s.connections.GetPendingRequests(ctx, userID)
}

func (s *ConnectionService) getConnection(ctx context.Context, id uint) (*models.Connection, error) {
	conn, err := s.connections.GetConnectionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrConnectionNotFound
		}
		return nil, err
	}
	return conn, nil
}

func conflictFor(status models.ConnectionStatus) error {
	switch status {
	case models.ConnectionStatusAccepted:
		return apperrors.ErrAlreadyConnected
	case models.ConnectionStatusBlocked:
		return apperrors.ErrBlocked
	default:
		return apperrors.ErrAlreadyPending
	}
}

func newInviteCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}
