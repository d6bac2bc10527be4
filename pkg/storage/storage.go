package storage

import (
	"context"
	"io"
)

// FileStorage defines the contract for a media storage provider.
type FileStorage interface {
	// Upload stores the reader under folder/fileName and returns the public URL.
	// folder is an optional logical folder (e.g. "lessons").
	Upload(ctx context.Context, r io.Reader, folder, fileName string) (string, error)
	// Delete removes a previously uploaded file using its public URL.
	Delete(ctx context.Context, fileURL string) error
}
