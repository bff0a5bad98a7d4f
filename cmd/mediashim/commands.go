package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/iconidentify/mediashim/internal/service"
)

var errTerminalOutput = errors.New("refusing to write binary media to a terminal; use -o FILE or redirect stdout")

type cli struct {
	svc              *service.MediaService
	stdin            io.Reader
	stdout           io.Writer
	stderr           io.Writer
	stdoutIsTerminal bool
}

func (c *cli) run(ctx context.Context, a *args) error {
	switch {
	case a.Fetch != nil:
		return c.fetch(ctx, a.Fetch)
	case a.Save != nil:
		return c.save(ctx, a.Save)
	case a.Grab != nil:
		return c.grab(ctx, a.Grab)
	}
	return errors.New("no subcommand given")
}

func (c *cli) fetch(ctx context.Context, cmd *FetchCmd) error {
	if cmd.Output == "" && c.stdoutIsTerminal {
		return errTerminalOutput
	}

	result, err := c.svc.FetchMedia(ctx, cmd.URL)
	if err != nil {
		return err
	}

	if cmd.Output != "" {
		if err := os.WriteFile(cmd.Output, result.Data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", cmd.Output, err)
		}
	} else if _, err := c.stdout.Write(result.Data); err != nil {
		return fmt.Errorf("write stdout: %w", err)
	}

	fmt.Fprintf(c.stderr, "fetched %s (upstream status %d)\n", humanize.IBytes(uint64(result.Size())), result.StatusCode)
	return nil
}

func (c *cli) save(ctx context.Context, cmd *SaveCmd) error {
	var (
		data []byte
		err  error
	)
	if cmd.File == "-" {
		data, err = io.ReadAll(c.stdin)
	} else {
		data, err = os.ReadFile(cmd.File)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	saved, err := c.svc.SaveVideo(ctx, data)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.stdout, saved.Path)
	return nil
}

func (c *cli) grab(ctx context.Context, cmd *GrabCmd) error {
	saved, err := c.svc.FetchAndSave(ctx, cmd.URL)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.stdout, saved.Path)
	fmt.Fprintf(c.stderr, "saved %s\n", humanize.IBytes(uint64(saved.Size)))
	return nil
}
