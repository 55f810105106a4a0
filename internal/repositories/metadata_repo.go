package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clipvault/clipvault/internal/models"
)

var ErrNotFound = errors.New("not found")

type PostgresMetadataStore struct {
	pool *pgxpool.Pool
}

func NewPostgresMetadataStore(pool *pgxpool.Pool) *PostgresMetadataStore {
	return &PostgresMetadataStore{pool: pool}
}

func (r *PostgresMetadataStore) Add(ctx context.Context, item *models.ClipboardItem) error {
	query := `INSERT INTO clipboard_items (owner_id, item_id, content_type, size_bytes, blob_name, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query,
		item.OwnerID,
		item.ItemID,
		item.ContentType,
		item.SizeBytes,
		item.BlobName,
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add item: %w", err)
	}
	return nil
}

func (r *PostgresMetadataStore) Get(ctx context.Context, ownerID, itemID string) (*models.ClipboardItem, error) {
	query := `SELECT owner_id, item_id, content_type, size_bytes, blob_name, created_at
	          FROM clipboard_items
	          WHERE owner_id = $1 AND item_id = $2`

	var item models.ClipboardItem
	err := r.pool.QueryRow(ctx, query, ownerID, itemID).Scan(
		&item.OwnerID,
		&item.ItemID,
		&item.ContentType,
		&item.SizeBytes,
		&item.BlobName,
		&item.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

// ListRecent returns at most take items for the owner, newest first. Ties on
// created_at are broken by item_id descending so the order is stable.
func (r *PostgresMetadataStore) ListRecent(ctx context.Context, ownerID string, take int) ([]*models.ClipboardItem, error) {
	query := `SELECT owner_id, item_id, content_type, size_bytes, blob_name, created_at
	          FROM clipboard_items
	          WHERE owner_id = $1
	          ORDER BY created_at DESC, item_id DESC
	          LIMIT $2`

	rows, err := r.pool.Query(ctx, query, ownerID, take)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

func (r *PostgresMetadataStore) ListAll(ctx context.Context, ownerID string) ([]*models.ClipboardItem, error) {
	query := `SELECT owner_id, item_id, content_type, size_bytes, blob_name, created_at
	          FROM clipboard_items
	          WHERE owner_id = $1
	          ORDER BY created_at DESC, item_id DESC`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

func (r *PostgresMetadataStore) Remove(ctx context.Context, ownerID, itemID string) error {
	query := `DELETE FROM clipboard_items WHERE owner_id = $1 AND item_id = $2`

	result, err := r.pool.Exec(ctx, query, ownerID, itemID)
	if err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanItems(rows pgx.Rows) ([]*models.ClipboardItem, error) {
	var items []*models.ClipboardItem
	for rows.Next() {
		var item models.ClipboardItem
		err := rows.Scan(
			&item.OwnerID,
			&item.ItemID,
			&item.ContentType,
			&item.SizeBytes,
			&item.BlobName,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}
