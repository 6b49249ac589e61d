package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Moment is the denormalized feed document stored in MongoDB, one per
// successful delivery. It carries everything the dashboard feed needs so a
// page load never joins back into PostgreSQL. The authoritative delivery
// accounting stays in delivery_records.
type Moment struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	MediaItemID     uint               `json:"media_item_id" bson:"media_item_id"`
	RecipientID     uint               `json:"recipient_id" bson:"recipient_id"`
	SenderUsername  string             `json:"sender_username" bson:"sender_username"`
	SenderAvatarURL string             `json:"sender_avatar_url" bson:"sender_avatar_url"`
	StorageKey      string             `json:"storage_key" bson:"storage_key"`
	MediaType       MediaType          `json:"media_type" bson:"media_type"`
	Caption         string             `json:"caption,omitempty" bson:"caption,omitempty"`
	DeliveredAt     time.Time          `json:"delivered_at" bson:"delivered_at"`
}
