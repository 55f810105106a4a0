package models

import (
	"time"
)

// ClipboardItem describes one clipboard entry, independent of its payload
// bytes. All fields are immutable after creation.
type ClipboardItem struct {
	OwnerID     string    `json:"owner_id"`
	ItemID      string    `json:"item_id"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	BlobName    string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
