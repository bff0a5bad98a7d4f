package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/iconidentify/mediashim/internal/domain"
	"github.com/iconidentify/mediashim/internal/proxy"
	"github.com/iconidentify/mediashim/internal/repository"
)

// MediaService exposes the fetch-media and save-video operations.
// Calls are independent; the service holds no per-call state.
type MediaService struct {
	fetcher proxy.Fetcher
	store   repository.VideoStore
	logger  *slog.Logger
}

// NewMediaService creates a new media service.
func NewMediaService(fetcher proxy.Fetcher, store repository.VideoStore, logger *slog.Logger) *MediaService {
	return &MediaService{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
	}
}

// FetchMedia retrieves url once and returns the complete body.
func (s *MediaService) FetchMedia(ctx context.Context, url string) (*domain.FetchResult, error) {
	start := time.Now()

	result, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.logger.Warn("fetch media failed", "url", url, "error", err)
		return nil, err
	}

	s.logger.Info("media fetched",
		"url", url,
		"upstream_status", result.StatusCode,
		"content_type", result.ContentType,
		"size", humanize.IBytes(uint64(result.Size())),
		"duration", time.Since(start),
	)

	return result, nil
}

// SaveVideo persists data as a new video file and returns where it landed.
func (s *MediaService) SaveVideo(ctx context.Context, data []byte) (*domain.SavedVideo, error) {
	if _, free := s.store.DiskUsage(); free > 0 && free < int64(len(data)) {
		err := fmt.Errorf("%w: need %s, have %s", domain.ErrStorageFull,
			humanize.IBytes(uint64(len(data))), humanize.IBytes(uint64(free)))
		s.logger.Warn("save video refused", "error", err)
		return nil, err
	}

	saved, err := s.store.Save(ctx, data)
	if err != nil {
		s.logger.Error("save video failed", "size", len(data), "error", err)
		return nil, err
	}

	s.logger.Info("video saved",
		"path", saved.Path,
		"size", humanize.IBytes(uint64(saved.Size)),
	)

	return saved, nil
}

// FetchAndSave chains FetchMedia and SaveVideo for callers that want both.
func (s *MediaService) FetchAndSave(ctx context.Context, url string) (*domain.SavedVideo, error) {
	result, err := s.FetchMedia(ctx, url)
	if err != nil {
		return nil, err
	}
	return s.SaveVideo(ctx, result.Data)
}

// StorageDir returns the absolute directory videos are written to.
func (s *MediaService) StorageDir() (string, error) {
	return s.store.Dir()
}

// CheckStorage verifies that the videos directory accepts writes.
func (s *MediaService) CheckStorage(ctx context.Context) error {
	return s.store.Check(ctx)
}

// DiskUsage returns total and free bytes on the videos volume.
func (s *MediaService) DiskUsage() (total, free int64) {
	return s.store.DiskUsage()
}
