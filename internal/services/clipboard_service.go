package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/clipvault/clipvault/internal/models"
	"github.com/clipvault/clipvault/internal/repositories"
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrOwnerPaused      = errors.New("owner is paused")
	ErrPayloadMissing   = errors.New("payload missing for stored item")
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound is the repositories sentinel so callers can match either way.
	ErrNotFound = repositories.ErrNotFound
)

const (
	DefaultMaxItemsPerOwner = 200
	DefaultPageSize         = 50
)

// ClipboardService coordinates the metadata index, the payload store and the
// per-owner pause flag. There is no transaction spanning the stores; instead
// every mutation uses an asymmetric ordering that keeps a crash at any point
// from leaving a metadata record whose blob is gone. Orphan blobs (payload
// with no metadata) can be left behind and are tolerated garbage.
type ClipboardService struct {
	metadata   repositories.MetadataStore
	payloads   repositories.PayloadStore
	ownerState repositories.OwnerStateStore

	maxItemsPerOwner int
	defaultPageSize  int
}

func NewClipboardService(
	metadata repositories.MetadataStore,
	payloads repositories.PayloadStore,
	ownerState repositories.OwnerStateStore,
	maxItemsPerOwner int,
	defaultPageSize int,
) *ClipboardService {
	if maxItemsPerOwner <= 0 {
		maxItemsPerOwner = DefaultMaxItemsPerOwner
	}
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}
	return &ClipboardService{
		metadata:         metadata,
		payloads:         payloads,
		ownerState:       ownerState,
		maxItemsPerOwner: maxItemsPerOwner,
		defaultPageSize:  defaultPageSize,
	}
}

// AddItem uploads the payload first and writes metadata second. A crash (or
// failure) between the two steps leaves an unreferenced blob, never a
// metadata record pointing at nothing. On a metadata-write failure the fresh
// blob is deleted best-effort; if that also fails the orphan is left for
// out-of-band garbage collection.
func (s *ClipboardService) AddItem(ctx context.Context, ownerID, contentType string, payload io.Reader) (*models.ClipboardItem, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidArgument)
	}
	if contentType == "" {
		return nil, fmt.Errorf("%w: content type is required", ErrInvalidArgument)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: payload is required", ErrInvalidArgument)
	}

	if err := s.ensureNotPaused(ctx, ownerID); err != nil {
		return nil, err
	}

	itemID := uuid.New().String()
	blobName := ownerID + "/" + itemID

	size, err := s.payloads.Upload(ctx, blobName, payload, contentType)
	if err != nil {
		return nil, storeUnavailable("upload payload", err)
	}

	item := &models.ClipboardItem{
		OwnerID:     ownerID,
		ItemID:      itemID,
		ContentType: contentType,
		SizeBytes:   size,
		BlobName:    blobName,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.metadata.Add(ctx, item); err != nil {
		// The metadata never landed, so the uploaded blob is unreferenced.
		// Compensation runs without the caller's cancellation so a cancelled
		// add still gets a chance to clean up after itself.
		if delErr := s.payloads.Delete(context.WithoutCancel(ctx), blobName); delErr != nil {
			log.Printf("clipboard: orphan blob %s left behind after failed add: %v", blobName, delErr)
		}
		return nil, storeUnavailable("add metadata", err)
	}

	// Retention runs after the add is already durable; its failures must not
	// turn a successful add into an error.
	s.trim(ctx, ownerID)

	return item, nil
}

// GetItem returns the item's metadata and an open payload stream. A metadata
// record whose blob is gone is an invariant violation and is surfaced as
// ErrPayloadMissing, never masked as empty content.
func (s *ClipboardService) GetItem(ctx context.Context, ownerID, itemID string) (*models.ClipboardItem, io.ReadCloser, error) {
	if ownerID == "" || itemID == "" {
		return nil, nil, fmt.Errorf("%w: owner id and item id are required", ErrInvalidArgument)
	}

	item, err := s.metadata.Get(ctx, ownerID, itemID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, storeUnavailable("get metadata", err)
	}

	payload, err := s.payloads.OpenRead(ctx, item.BlobName)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: item %s", ErrPayloadMissing, itemID)
	}
	if err != nil {
		return nil, nil, storeUnavailable("open payload", err)
	}

	return item, payload, nil
}

// ListRecent returns at most take items, newest first. A non-positive take
// selects the configured default page size.
func (s *ClipboardService) ListRecent(ctx context.Context, ownerID string, take int) ([]*models.ClipboardItem, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidArgument)
	}
	if take <= 0 {
		take = s.defaultPageSize
	}

	items, err := s.metadata.ListRecent(ctx, ownerID, take)
	if err != nil {
		return nil, storeUnavailable("list metadata", err)
	}
	return items, nil
}

// ListAll returns the owner's full history, newest first. Intended for
// export and clear-all flows; callers bear the pagination cost.
func (s *ClipboardService) ListAll(ctx context.Context, ownerID string) ([]*models.ClipboardItem, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidArgument)
	}

	items, err := s.metadata.ListAll(ctx, ownerID)
	if err != nil {
		return nil, storeUnavailable("list metadata", err)
	}
	return items, nil
}

// RemoveItem deletes metadata first and the blob second, the inverse of
// AddItem's ordering and for the same reason: the surviving state after a
// crash must never be a metadata record referencing a deleted blob.
func (s *ClipboardService) RemoveItem(ctx context.Context, ownerID, itemID string) error {
	if ownerID == "" || itemID == "" {
		return fmt.Errorf("%w: owner id and item id are required", ErrInvalidArgument)
	}

	if err := s.ensureNotPaused(ctx, ownerID); err != nil {
		return err
	}

	item, err := s.metadata.Get(ctx, ownerID, itemID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return storeUnavailable("get metadata", err)
	}

	return s.removeStored(ctx, item)
}

// SetPaused flips the owner's pause flag. Setting the current value again is
// a no-op that still refreshes UpdatedAt. The flag throttles new mutating
// calls; it does not cancel operations already in flight.
func (s *ClipboardService) SetPaused(ctx context.Context, ownerID string, isPaused bool) (*models.OwnerState, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidArgument)
	}

	state, err := s.ownerState.Set(ctx, ownerID, isPaused)
	if err != nil {
		return nil, storeUnavailable("set owner state", err)
	}
	return state, nil
}

// ensureNotPaused is advisory: the check is not atomic with the write that
// follows, so a pause racing an in-flight mutation may let it complete.
func (s *ClipboardService) ensureNotPaused(ctx context.Context, ownerID string) error {
	state, err := s.ownerState.Get(ctx, ownerID)
	if err != nil {
		return storeUnavailable("get owner state", err)
	}
	if state.IsPaused {
		return ErrOwnerPaused
	}
	return nil
}

// removeStored is the shared deletion path for RemoveItem and retention
// trimming. When the blob delete fails after the metadata delete succeeded,
// the item is already gone from the owner's view, so the operation still
// succeeds and the orphan blob is logged for garbage collection.
func (s *ClipboardService) removeStored(ctx context.Context, item *models.ClipboardItem) error {
	if err := s.metadata.Remove(ctx, item.OwnerID, item.ItemID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return storeUnavailable("remove metadata", err)
	}

	if err := s.payloads.Delete(ctx, item.BlobName); err != nil {
		log.Printf("clipboard: orphan blob %s left behind after remove: %v", item.BlobName, err)
	}
	return nil
}

// trim enforces the per-owner retention cap, removing the oldest items
// beyond maxItemsPerOwner through the same metadata-first deletion path.
func (s *ClipboardService) trim(ctx context.Context, ownerID string) {
	items, err := s.metadata.ListAll(ctx, ownerID)
	if err != nil {
		log.Printf("clipboard: retention listing for owner %s failed: %v", ownerID, err)
		return
	}

	excess := len(items) - s.maxItemsPerOwner
	if excess <= 0 {
		return
	}

	// Items arrive newest first; the victims are at the tail.
	for _, item := range items[len(items)-excess:] {
		if err := s.removeStored(ctx, item); err != nil {
			log.Printf("clipboard: retention trim of item %s for owner %s failed: %v", item.ItemID, ownerID, err)
		}
	}
}

func storeUnavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}
