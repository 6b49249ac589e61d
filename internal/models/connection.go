package models

import (
	"fmt"
	"time"
)

// ConnectionStatus represents the lifecycle status of a connection.
type ConnectionStatus string

const (
	// ConnectionStatusPending indicates a request awaiting the addressee's answer.
	ConnectionStatusPending ConnectionStatus = "PENDING"
	// ConnectionStatusAccepted indicates an established, symmetric connection.
	ConnectionStatusAccepted ConnectionStatus = "ACCEPTED"
	// ConnectionStatusBlocked is a terminal state set by moderation tooling only;
	// none of the modeled operations transition into it.
	ConnectionStatusBlocked ConnectionStatus = "BLOCKED"
)

// Connection represents a symmetric relationship between two users, stored as
// an ordered (requester, addressee) pair. At most one row may exist for any
// unordered pair; PairKey normalizes the pair so the database can enforce that
// regardless of which side initiated.
type Connection struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	RequesterID uint             `json:"requester_id" gorm:"not null;index"`
	AddresseeID uint             `json:"addressee_id" gorm:"not null;index"`
	PairKey     string           `json:"-" gorm:"uniqueIndex;not null"`
	Status      ConnectionStatus `json:"status" gorm:"type:varchar(20);default:'PENDING'"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	Requester User `json:"requester,omitempty" gorm:"foreignKey:RequesterID"`
	Addressee User `json:"addressee,omitempty" gorm:"foreignKey:AddresseeID"`
}

// TableName specifies the table name for GORM
func (Connection) TableName() string {
	return "connections"
}

// PairKeyFor returns the normalized key for an unordered user pair, smaller ID
// first, so "a connects b" and "b connects a" collide on the unique index.
func PairKeyFor(a, b uint) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// ConnectionRequestBody defines the request body for sending a connection request
type ConnectionRequestBody struct {
	TargetDiscordID string `json:"target_discord_id" validate:"required"`
}

// InviteConnectBody defines the request body for connecting via an invite code
type InviteConnectBody struct {
	Code string `json:"code" validate:"required,min=4,max=16"`
}
