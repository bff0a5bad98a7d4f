package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexflint/go-arg"
	"golang.org/x/term"

	"github.com/iconidentify/mediashim/internal/config"
	"github.com/iconidentify/mediashim/internal/proxy"
	"github.com/iconidentify/mediashim/internal/repository"
	"github.com/iconidentify/mediashim/internal/service"
)

var Version = "dev"

// FetchCmd downloads one URL through the media proxy.
type FetchCmd struct {
	URL    string `arg:"positional,required" help:"media URL to fetch"`
	Output string `arg:"-o,--output" help:"write bytes to FILE instead of stdout"`
}

// SaveCmd persists a local file as a new video.
type SaveCmd struct {
	File string `arg:"positional,required" help:"file to store, or - for stdin"`
}

// GrabCmd fetches a URL and saves the bytes as a video.
type GrabCmd struct {
	URL string `arg:"positional,required" help:"media URL to fetch and save"`
}

type args struct {
	Fetch   *FetchCmd `arg:"subcommand:fetch" help:"fetch remote media bytes"`
	Save    *SaveCmd  `arg:"subcommand:save" help:"save bytes to <storage>/videos/video_<unix-seconds>.mp4"`
	Grab    *GrabCmd  `arg:"subcommand:grab" help:"fetch then save"`
	Config  string    `arg:"-c,--config" help:"path to YAML config file"`
	Verbose bool      `arg:"-v,--verbose" help:"log progress to stderr"`
}

func (args) Version() string {
	return "mediashim " + Version
}

func (args) Description() string {
	return "Fetch remote media and persist videos to the application data directory.\n" +
		"Configuration is read from STORAGE_* and PROXY_* environment variables.\n"
}

func main() {
	var a args
	p := arg.MustParse(&a)
	if p.Subcommand() == nil {
		p.Fail("missing subcommand: fetch, save or grab")
	}

	level := slog.LevelWarn
	if a.Verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(a.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: load config: %v\n", err)
		os.Exit(1)
	}

	store, err := repository.NewFilesystemVideoStore(cfg.Storage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fetcher := proxy.NewHTTPFetcher(cfg.Proxy)

	app := &cli{
		svc:              service.NewMediaService(fetcher, store, logger),
		stdin:            os.Stdin,
		stdout:           os.Stdout,
		stderr:           os.Stderr,
		stdoutIsTerminal: term.IsTerminal(int(os.Stdout.Fd())),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.run(ctx, &a); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
