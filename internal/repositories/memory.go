package repositories

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/clipvault/clipvault/internal/models"
)

// In-memory implementations of the three store contracts. They back the
// coordinator tests and are handy for embedding without external services.
// All are safe for concurrent use.

type MemoryMetadataStore struct {
	mu    sync.Mutex
	items map[string]map[string]models.ClipboardItem // ownerID -> itemID -> item
}

func NewMemoryMetadataStore() *MemoryMetadataStore {
	return &MemoryMetadataStore{items: make(map[string]map[string]models.ClipboardItem)}
}

func (s *MemoryMetadataStore) Add(ctx context.Context, item *models.ClipboardItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, ok := s.items[item.OwnerID]
	if !ok {
		owner = make(map[string]models.ClipboardItem)
		s.items[item.OwnerID] = owner
	}
	owner[item.ItemID] = *item
	return nil
}

func (s *MemoryMetadataStore) Get(ctx context.Context, ownerID, itemID string) (*models.ClipboardItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[ownerID][itemID]
	if !ok {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (s *MemoryMetadataStore) ListRecent(ctx context.Context, ownerID string, take int) ([]*models.ClipboardItem, error) {
	items, err := s.ListAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(items) > take {
		items = items[:take]
	}
	return items, nil
}

func (s *MemoryMetadataStore) ListAll(ctx context.Context, ownerID string) ([]*models.ClipboardItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []*models.ClipboardItem
	for _, item := range s.items[ownerID] {
		item := item
		items = append(items, &item)
	}

	// Newest first, item ID as the tie-breaker so equal timestamps still
	// produce a stable order.
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ItemID > items[j].ItemID
	})

	return items, nil
}

func (s *MemoryMetadataStore) Remove(ctx context.Context, ownerID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner := s.items[ownerID]
	if _, ok := owner[itemID]; !ok {
		return ErrNotFound
	}
	delete(owner, itemID)
	return nil
}

type MemoryPayloadStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemoryPayloadStore() *MemoryPayloadStore {
	return &MemoryPayloadStore{blobs: make(map[string][]byte)}
}

func (s *MemoryPayloadStore) Upload(ctx context.Context, blobName string, r io.Reader, contentType string) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[blobName] = data
	return int64(len(data)), nil
}

func (s *MemoryPayloadStore) OpenRead(ctx context.Context, blobName string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.blobs[blobName]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryPayloadStore) Delete(ctx context.Context, blobName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[blobName]; !ok {
		return ErrNotFound
	}
	delete(s.blobs, blobName)
	return nil
}

// Len reports the number of stored blobs.
func (s *MemoryPayloadStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

type MemoryOwnerStateStore struct {
	mu     sync.Mutex
	states map[string]models.OwnerState
}

func NewMemoryOwnerStateStore() *MemoryOwnerStateStore {
	return &MemoryOwnerStateStore{states: make(map[string]models.OwnerState)}
}

func (s *MemoryOwnerStateStore) Get(ctx context.Context, ownerID string) (*models.OwnerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[ownerID]
	if !ok {
		return &models.OwnerState{OwnerID: ownerID, IsPaused: false}, nil
	}
	return &state, nil
}

func (s *MemoryOwnerStateStore) Set(ctx context.Context, ownerID string, isPaused bool) (*models.OwnerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := models.OwnerState{
		OwnerID:   ownerID,
		IsPaused:  isPaused,
		UpdatedAt: time.Now().UTC(),
	}
	s.states[ownerID] = state
	return &state, nil
}
