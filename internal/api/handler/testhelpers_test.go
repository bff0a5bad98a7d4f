package handler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/iconidentify/mediashim/internal/config"
	"github.com/iconidentify/mediashim/internal/domain"
	"github.com/iconidentify/mediashim/internal/proxy"
	"github.com/iconidentify/mediashim/internal/repository"
	"github.com/iconidentify/mediashim/internal/service"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService wires a real fetcher and a filesystem store rooted in a temp dir.
func newTestService(t *testing.T, proxyCfg config.ProxyConfig) (*service.MediaService, string) {
	t.Helper()
	tmpDir := t.TempDir()
	store, err := repository.NewFilesystemVideoStore(config.StorageConfig{
		BasePath:  tmpDir,
		VideosDir: "videos",
	})
	if err != nil {
		t.Fatalf("NewFilesystemVideoStore failed: %v", err)
	}
	store.SetClock(func() time.Time { return time.Unix(1700000000, 0) })

	fetcher := proxy.NewHTTPFetcher(proxyCfg)
	return service.NewMediaService(fetcher, store, testLogger()), tmpDir
}

// mockVideoStore is a test implementation of repository.VideoStore.
type mockVideoStore struct {
	saveErr  error
	checkErr error
	dir      string
	total    int64
	free     int64
}

func (m *mockVideoStore) Save(ctx context.Context, data []byte) (*domain.SavedVideo, error) {
	if m.saveErr != nil {
		return nil, m.saveErr
	}
	return &domain.SavedVideo{
		Path:     m.dir + "/video_1700000000.mp4",
		Filename: "video_1700000000.mp4",
		Size:     int64(len(data)),
	}, nil
}

func (m *mockVideoStore) Dir() (string, error) {
	return m.dir, nil
}

func (m *mockVideoStore) Check(ctx context.Context) error {
	return m.checkErr
}

func (m *mockVideoStore) DiskUsage() (int64, int64) {
	return m.total, m.free
}

// newMockService wires a real fetcher with a mock store.
func newMockService(store *mockVideoStore) *service.MediaService {
	fetcher := proxy.NewHTTPFetcher(config.ProxyConfig{})
	return service.NewMediaService(fetcher, store, testLogger())
}
