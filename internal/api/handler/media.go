package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/iconidentify/mediashim/internal/domain"
	"github.com/iconidentify/mediashim/internal/service"
)

// MediaHandler exposes fetch-media and save-video over HTTP.
type MediaHandler struct {
	svc           *service.MediaService
	maxUploadSize int64
	logger        *slog.Logger
}

// NewMediaHandler creates a new media handler.
// maxUploadSize caps save-video request bodies; 0 disables the cap.
func NewMediaHandler(svc *service.MediaService, maxUploadSize int64, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{
		svc:           svc,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// maxFetchRequestSize caps the JSON body of a fetch request.
const maxFetchRequestSize = 64 << 10

// FetchRequest is the JSON request body for POST /api/v1/media/fetch.
type FetchRequest struct {
	URL string `json:"url"`
}

// SaveVideoRequest is the JSON form of a save-video call.
// VideoData accepts a base64 string or an array of byte values.
type SaveVideoRequest struct {
	VideoData []byte `json:"video_data"`
}

// SaveVideoResponse is returned after a video is written.
type SaveVideoResponse struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// Proxy handles GET /api/v1/media?url=...
func (h *MediaHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	h.fetch(w, r, r.URL.Query().Get("url"))
}

// Fetch handles POST /api/v1/media/fetch
func (h *MediaHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFetchRequestSize)

	var req FetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.fetch(w, r, req.URL)
}

func (h *MediaHandler) fetch(w http.ResponseWriter, r *http.Request, url string) {
	result, err := h.svc.FetchMedia(r.Context(), url)
	if err != nil {
		// A done request context means the client left or the timeout
		// middleware already answered.
		if r.Context().Err() != nil {
			return
		}
		h.writeError(w, fetchErrorStatus(err), err.Error())
		return
	}

	contentType := result.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Upstream-Status", strconv.Itoa(result.StatusCode))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Data)
}

func fetchErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyURL), errors.Is(err, domain.ErrURLNotAllowed):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadGateway
}

// SaveVideo handles POST /api/v1/videos
func (h *MediaHandler) SaveVideo(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}

	data, err := h.readVideoData(r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.writeError(w, http.StatusRequestEntityTooLarge, domain.ErrBodyTooLarge.Error())
			return
		}
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.svc.SaveVideo(r.Context(), data)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrStorageFull) {
			status = http.StatusInsufficientStorage
		}
		h.writeError(w, status, err.Error())
		return
	}

	h.writeJSON(w, http.StatusCreated, SaveVideoResponse{
		Path:     saved.Path,
		Filename: saved.Filename,
		Size:     saved.Size,
	})
}

func (h *MediaHandler) readVideoData(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req SaveVideoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, err
		}
		return req.VideoData, nil
	}
	return io.ReadAll(r.Body)
}

func (h *MediaHandler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *MediaHandler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
