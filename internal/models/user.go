package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User represents a registered participant in the connection graph. Users are
// upserted on first contact and never deleted by the backend.
type User struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	DiscordID       string    `json:"discord_id" gorm:"uniqueIndex;not null"`
	Username        string    `json:"username"`
	AvatarURL       string    `json:"avatar_url"`
	InviteCode      string    `json:"invite_code,omitempty" gorm:"uniqueIndex"` // shared out-of-band to connect without a handshake
	FirebaseUID     string    `json:"-" gorm:"index"`                           // link to the dashboard's Firebase account, empty until first login
	NotifyOnReceive bool      `json:"notify_on_receive" gorm:"default:true"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FirebaseLoginRequest defines the request body for exchanging a Firebase ID
// token for a service JWT
type FirebaseLoginRequest struct {
	IDToken   string `json:"id_token" validate:"required"`
	DiscordID string `json:"discord_id" validate:"required"`
	Username  string `json:"username" validate:"required,min=2,max=32"`
	AvatarURL string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

// UpdateSettingsRequest defines the request body for updating user settings
type UpdateSettingsRequest struct {
	NotifyOnReceive *bool `json:"notify_on_receive,omitempty"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID    uint   `json:"user_id"`
	DiscordID string `json:"discord_id"`
	jwt.RegisteredClaims
}
