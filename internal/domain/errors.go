package domain

import "errors"

// Domain errors.
var (
	// ErrEmptyURL is returned when a fetch is requested without a URL.
	ErrEmptyURL = errors.New("media URL is empty")

	// ErrURLNotAllowed is returned when the URL is outside the configured allowlist.
	ErrURLNotAllowed = errors.New("media URL not allowed")

	// ErrFetchFailed is returned when the request cannot be built or sent.
	ErrFetchFailed = errors.New("failed to fetch media")

	// ErrReadBodyFailed is returned when the response body cannot be fully read.
	ErrReadBodyFailed = errors.New("failed to read media bytes")

	// ErrBodyTooLarge is returned when a payload exceeds the configured limit.
	ErrBodyTooLarge = errors.New("media exceeds size limit")

	// ErrDataDirUnavailable is returned when the application data directory cannot be resolved.
	ErrDataDirUnavailable = errors.New("failed to get app data dir")

	// ErrCreateDirFailed is returned when the videos directory cannot be created.
	ErrCreateDirFailed = errors.New("failed to create videos directory")

	// ErrWriteFailed is returned when the video file cannot be written.
	ErrWriteFailed = errors.New("failed to write video file")

	// ErrClockBeforeEpoch is returned when the system clock reads before 1970.
	ErrClockBeforeEpoch = errors.New("failed to get timestamp")

	// ErrPathEncoding is returned when the resulting path is not valid text.
	ErrPathEncoding = errors.New("failed to convert path to string")

	// ErrStorageFull is returned when there is insufficient storage space.
	ErrStorageFull = errors.New("insufficient storage space")
)

// MediaError wraps an error with the failing step and its target.
type MediaError struct {
	Op     string
	Target string
	Err    error
}

func (e *MediaError) Error() string {
	if e.Target != "" {
		return e.Op + " [" + e.Target + "]: " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *MediaError) Unwrap() error {
	return e.Err
}

// NewMediaError creates a new MediaError.
func NewMediaError(op, target string, err error) *MediaError {
	return &MediaError{
		Op:     op,
		Target: target,
		Err:    err,
	}
}
