package repository

import (
	"context"

	"github.com/iconidentify/mediashim/internal/domain"
)

// VideoStore persists received video bytes.
type VideoStore interface {
	// Save writes data to a new timestamped file and returns where it landed.
	Save(ctx context.Context, data []byte) (*domain.SavedVideo, error)

	// Dir returns the absolute videos directory.
	Dir() (string, error)

	// Check verifies the videos directory exists and accepts writes.
	Check(ctx context.Context) error

	// DiskUsage returns total and free bytes on the videos volume.
	// Both are 0 when the volume cannot be inspected.
	DiskUsage() (total, free int64)
}
