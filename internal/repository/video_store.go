package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/iconidentify/mediashim/internal/config"
	"github.com/iconidentify/mediashim/internal/domain"
)

var unixEpoch = time.Unix(0, 0)

// FilesystemVideoStore implements VideoStore under <base>/<videos dir>.
type FilesystemVideoStore struct {
	basePath  string
	videosDir string
	policy    domain.CollisionPolicy
	now       func() time.Time
}

// NewFilesystemVideoStore creates a new filesystem-based video store.
// The data directory is resolved on every save, not here.
func NewFilesystemVideoStore(cfg config.StorageConfig) (*FilesystemVideoStore, error) {
	policy, err := domain.ParseCollisionPolicy(cfg.CollisionPolicy)
	if err != nil {
		return nil, err
	}

	videosDir := cfg.VideosDir
	if videosDir == "" {
		videosDir = "videos"
	}

	return &FilesystemVideoStore{
		basePath:  cfg.BasePath,
		videosDir: videosDir,
		policy:    policy,
		now:       time.Now,
	}, nil
}

// SetClock replaces the wall clock used to name files.
func (s *FilesystemVideoStore) SetClock(now func() time.Time) {
	s.now = now
}

// Dir returns the absolute videos directory.
func (s *FilesystemVideoStore) Dir() (string, error) {
	if s.basePath == "" {
		return "", domain.NewMediaError("resolve app data dir", "", domain.ErrDataDirUnavailable)
	}

	base, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", domain.NewMediaError("resolve app data dir", s.basePath,
			fmt.Errorf("%w: %v", domain.ErrDataDirUnavailable, err))
	}

	return filepath.Join(base, s.videosDir), nil
}

// Save writes data to video_<unix-seconds>.mp4 and returns its absolute path.
//
// The bytes go to a hidden temp file in the same directory first and are
// renamed into place, so a failed save leaves no partial video behind.
func (s *FilesystemVideoStore) Save(ctx context.Context, data []byte) (*domain.SavedVideo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := s.Dir()
	if err != nil {
		return nil, err
	}
	if !utf8.ValidString(dir) {
		return nil, domain.NewMediaError("convert path", "", domain.ErrPathEncoding)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, domain.NewMediaError("create videos directory", dir,
			fmt.Errorf("%w: %v", domain.ErrCreateDirFailed, err))
	}

	savedAt := s.now()
	if savedAt.Before(unixEpoch) {
		return nil, domain.NewMediaError("read clock", "",
			fmt.Errorf("%w: clock reads %s, before unix epoch", domain.ErrClockBeforeEpoch, savedAt.UTC().Format(time.RFC3339)))
	}

	var token string
	if s.policy == domain.CollisionUnique {
		token = strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	filename := domain.VideoFilename(savedAt.Unix(), token)
	path := filepath.Join(dir, filename)

	if err := writeFileAtomic(dir, filename, data); err != nil {
		return nil, domain.NewMediaError("write video file", path,
			fmt.Errorf("%w: %v", domain.ErrWriteFailed, err))
	}

	return &domain.SavedVideo{
		Path:     path,
		Filename: filename,
		Size:     int64(len(data)),
		SavedAt:  savedAt,
	}, nil
}

// Check verifies the videos directory exists and accepts writes.
func (s *FilesystemVideoStore) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir, err := s.Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return domain.NewMediaError("create videos directory", dir,
			fmt.Errorf("%w: %v", domain.ErrCreateDirFailed, err))
	}

	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return domain.NewMediaError("probe videos directory", dir,
			fmt.Errorf("%w: %v", domain.ErrWriteFailed, err))
	}
	name := probe.Name()
	closeErr := probe.Close()
	if err := removeFile(name); err != nil {
		return domain.NewMediaError("remove probe file", name, err)
	}
	if closeErr != nil {
		return domain.NewMediaError("probe videos directory", dir,
			fmt.Errorf("%w: %v", domain.ErrWriteFailed, closeErr))
	}

	return nil
}

// DiskUsage returns total and free bytes on the videos volume.
func (s *FilesystemVideoStore) DiskUsage() (total, free int64) {
	dir, err := s.Dir()
	if err != nil {
		return 0, 0
	}
	// Fall back to the data dir before the first save creates videos/.
	if _, err := os.Stat(dir); err != nil {
		dir = filepath.Dir(dir)
	}
	return getDiskTotal(dir), getFreeDiskSpace(dir)
}

// removeFile is replaced in tests.
var removeFile = os.Remove

func writeFileAtomic(dir, name string, data []byte) error {
	tempFile := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", name, uuid.NewString()))

	f, err := os.OpenFile(tempFile, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	if err := os.Rename(tempFile, filepath.Join(dir, name)); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("move video to final location: %w", err)
	}

	return nil
}
