package repositories

import (
	"context"
	"io"

	"github.com/clipvault/clipvault/internal/models"
)

// MetadataStore is the durable index of clipboard items, keyed by
// (ownerID, itemID).
type MetadataStore interface {
	Add(ctx context.Context, item *models.ClipboardItem) error
	Get(ctx context.Context, ownerID, itemID string) (*models.ClipboardItem, error)
	ListRecent(ctx context.Context, ownerID string, take int) ([]*models.ClipboardItem, error)
	ListAll(ctx context.Context, ownerID string) ([]*models.ClipboardItem, error)
	Remove(ctx context.Context, ownerID, itemID string) error
}

// PayloadStore holds raw payload bytes keyed by an opaque blob name chosen by
// the caller. The store never interprets blob names or payload content.
type PayloadStore interface {
	// Upload stores the payload read from r and returns the number of
	// payload bytes written.
	Upload(ctx context.Context, blobName string, r io.Reader, contentType string) (int64, error)
	OpenRead(ctx context.Context, blobName string) (io.ReadCloser, error)
	Delete(ctx context.Context, blobName string) error
}

// OwnerStateStore tracks the per-owner pause flag. Get returns a default
// unpaused state for owners that have never been written.
type OwnerStateStore interface {
	Get(ctx context.Context, ownerID string) (*models.OwnerState, error)
	Set(ctx context.Context, ownerID string, isPaused bool) (*models.OwnerState, error)
}
