package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/iconidentify/mediashim/internal/api/handler"
	"github.com/iconidentify/mediashim/internal/config"
	"github.com/iconidentify/mediashim/internal/proxy"
	"github.com/iconidentify/mediashim/internal/repository"
	"github.com/iconidentify/mediashim/internal/service"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newTestServerWithTimeout(t, 0)
}

func newTestServerWithTimeout(t *testing.T, requestTimeout time.Duration) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := repository.NewFilesystemVideoStore(config.StorageConfig{
		BasePath:  t.TempDir(),
		VideosDir: "videos",
	})
	if err != nil {
		t.Fatal(err)
	}
	store.SetClock(func() time.Time { return time.Unix(1700000000, 0) })

	svc := service.NewMediaService(proxy.NewHTTPFetcher(config.ProxyConfig{}), store, logger)
	router := NewRouter(
		handler.NewMediaHandler(svc, 1<<20, logger),
		handler.NewHealthHandler(svc),
		requestTimeout,
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func TestRouter_FetchThenSave(t *testing.T) {
	content := bytes.Repeat([]byte{0x01, 0x02, 0x03, 0x04}, 256)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/mp4")
		w.Write(content)
	}))
	defer upstream.Close()

	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/media?url=" + url.QueryEscape(upstream.URL+"/clip.bin"))
	if err != nil {
		t.Fatal(err)
	}
	fetched, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("fetch status = %d, want 200", resp.StatusCode)
	}
	if !bytes.Equal(fetched, content) {
		t.Fatalf("fetched %d bytes, want the 1024 upstream bytes", len(fetched))
	}

	resp, err = http.Post(srv.URL+"/api/v1/videos", "application/octet-stream", bytes.NewReader(fetched))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("save status = %d, want 201", resp.StatusCode)
	}

	var saved handler.SaveVideoResponse
	if err := json.NewDecoder(resp.Body).Decode(&saved); err != nil {
		t.Fatal(err)
	}
	if saved.Filename != "video_1700000000.mp4" {
		t.Errorf("filename = %q, want %q", saved.Filename, "video_1700000000.mp4")
	}

	got, err := os.ReadFile(saved.Path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1024 || !bytes.Equal(got, content) {
		t.Error("saved file does not match upstream bytes")
	}
}

func TestRouter_HealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/health", "/ready", "/api/v1/stats", "//health"} {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + path)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				t.Errorf("status = %d, want 200", resp.StatusCode)
			}
			if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
				t.Error("CORS header missing")
			}
		})
	}
}

func TestRouter_Preflight(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/videos", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/videos")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func slowUpstream(t *testing.T, delay time.Duration, body []byte) *httptest.Server {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
		w.Write(body)
	}))
	t.Cleanup(upstream.Close)
	return upstream
}

func TestRouter_SlowUpstreamWithoutTimeout(t *testing.T) {
	upstream := slowUpstream(t, 300*time.Millisecond, []byte("slow clip"))
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/media?url=" + url.QueryEscape(upstream.URL))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %q)", resp.StatusCode, body)
	}
	if string(body) != "slow clip" {
		t.Errorf("body = %q, want %q", body, "slow clip")
	}
}

func TestRouter_ConfiguredRequestTimeout(t *testing.T) {
	upstream := slowUpstream(t, 2*time.Second, []byte("too slow"))
	srv := newTestServerWithTimeout(t, 100*time.Millisecond)

	resp, err := http.Get(srv.URL + "/api/v1/media?url=" + url.QueryEscape(upstream.URL))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", resp.StatusCode)
	}
}
