package repositories

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const (
	tempDirName = ".tmp"
	blobDirName = "blobs"
	blobFileExt = ".zst"
)

// FSPayloadStore keeps payloads on the local filesystem, zstd-compressed at
// rest. Blob names are hashed into a two-level directory layout so large item
// counts do not pile up in a single directory, and the hash keeps arbitrary
// blob names from ever becoming filesystem paths.
type FSPayloadStore struct {
	root string
}

func NewFSPayloadStore(root string) (*FSPayloadStore, error) {
	root = filepath.Clean(root)

	if err := os.MkdirAll(filepath.Join(root, blobDirName), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blobs directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(root, tempDirName), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &FSPayloadStore{root: root}, nil
}

// Upload writes the payload to a temp file first and renames it into place,
// so a partially written blob is never visible under its final name.
// The returned count is the uncompressed payload length.
func (s *FSPayloadStore) Upload(ctx context.Context, blobName string, r io.Reader, contentType string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(filepath.Join(s.root, tempDirName), "upload-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	enc, err := zstd.NewWriter(tmp)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to create zstd writer: %w", err)
	}

	written, err := io.Copy(enc, r)
	if err != nil {
		enc.Close()
		tmp.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to write payload: %w", err)
	}

	if err := enc.Close(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to flush payload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to close temp file: %w", err)
	}

	finalPath := s.blobPath(blobName)
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to create blob directory: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("failed to store payload: %w", err)
	}

	return written, nil
}

func (s *FSPayloadStore) OpenRead(ctx context.Context, blobName string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.blobPath(blobName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open payload: %w", err)
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}

	return &payloadReader{dec: dec, file: f}, nil
}

func (s *FSPayloadStore) Delete(ctx context.Context, blobName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(s.blobPath(blobName))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete payload: %w", err)
	}
	return nil
}

// blobPath shards blobs by the first two bytes of the name's SHA-256, e.g.
// blobs/a3/f2/a3f29d4e8c....zst
func (s *FSPayloadStore) blobPath(blobName string) string {
	sum := sha256.Sum256([]byte(blobName))
	hexSum := hex.EncodeToString(sum[:])
	return filepath.Join(s.root, blobDirName, hexSum[:2], hexSum[2:4], hexSum+blobFileExt)
}

// payloadReader streams decompressed payload bytes and releases both the
// decoder and the underlying file on Close.
type payloadReader struct {
	dec  *zstd.Decoder
	file *os.File
}

func (p *payloadReader) Read(b []byte) (int, error) {
	return p.dec.Read(b)
}

func (p *payloadReader) Close() error {
	p.dec.Close()
	return p.file.Close()
}
