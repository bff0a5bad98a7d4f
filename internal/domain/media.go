package domain

import (
	"fmt"
	"time"
)

// FetchResult is the outcome of a single proxied GET.
// StatusCode is informational only; non-2xx bodies are still results.
type FetchResult struct {
	URL         string
	Data        []byte
	ContentType string
	StatusCode  int
}

// Size returns the number of fetched bytes.
func (r *FetchResult) Size() int64 {
	return int64(len(r.Data))
}

// SavedVideo describes a file written by the video store.
type SavedVideo struct {
	Path     string
	Filename string
	Size     int64
	SavedAt  time.Time
}

// CollisionPolicy controls what happens when two saves share a filename.
type CollisionPolicy string

const (
	// CollisionOverwrite lets a later save replace an earlier one in the same second.
	CollisionOverwrite CollisionPolicy = "overwrite"
	// CollisionUnique appends a random token so every save gets its own file.
	CollisionUnique CollisionPolicy = "unique"
)

// ParseCollisionPolicy maps a config value to a policy. Empty means overwrite.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch CollisionPolicy(s) {
	case "", CollisionOverwrite:
		return CollisionOverwrite, nil
	case CollisionUnique:
		return CollisionUnique, nil
	}
	return "", fmt.Errorf("unknown collision policy %q", s)
}

// VideoFilename returns the stored name for a video saved at unix second secs.
// A non-empty token is appended before the extension.
func VideoFilename(secs int64, token string) string {
	if token != "" {
		return fmt.Sprintf("video_%d_%s.mp4", secs, token)
	}
	return fmt.Sprintf("video_%d.mp4", secs)
}
