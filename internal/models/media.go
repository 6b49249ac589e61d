package models

import "time"

// MediaType is the coarse kind of a distributed media item.
type MediaType string

const (
	MediaTypeImage MediaType = "IMAGE"
	MediaTypeVideo MediaType = "VIDEO"
)

// MediaItem represents one distributed piece of content and its metadata. The
// row is only ever written after the blob has been stored, so StorageKey
// always points at a successful write.
type MediaItem struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SenderID   uint      `json:"sender_id" gorm:"not null;index"`
	StorageKey string    `json:"storage_key" gorm:"type:varchar(255);not null"`
	MimeType   string    `json:"mime_type" gorm:"type:varchar(64);not null"`
	MediaType  MediaType `json:"media_type" gorm:"type:varchar(10);not null"`
	SizeBytes  int64     `json:"size_bytes" gorm:"not null"`
	Width      *int      `json:"width,omitempty"`
	Height     *int      `json:"height,omitempty"`
	Caption    string    `json:"caption,omitempty" gorm:"type:varchar(500)"`
	CreatedAt  time.Time `json:"created_at"`

	Sender User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
}

// TableName specifies the table name for GORM
func (MediaItem) TableName() string {
	return "media_items"
}

// DeliveryRecord is proof that one recipient was successfully notified of one
// media item. Recipients that could not be notified get no record, so the
// delivered count is always COUNT(*) over this table.
type DeliveryRecord struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	MediaItemID uint       `json:"media_item_id" gorm:"not null;index"`
	RecipientID uint       `json:"recipient_id" gorm:"not null;index"`
	DeliveredAt time.Time  `json:"delivered_at"`
	ViewedAt    *time.Time `json:"viewed_at,omitempty"`

	MediaItem MediaItem `json:"media_item,omitempty" gorm:"foreignKey:MediaItemID"`
	Recipient User      `json:"recipient,omitempty" gorm:"foreignKey:RecipientID"`
}

// TableName specifies the table name for GORM
func (DeliveryRecord) TableName() string {
	return "delivery_records"
}
