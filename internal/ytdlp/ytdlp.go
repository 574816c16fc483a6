// Package ytdlp wraps the yt-dlp command line tool: channel listing, batch
// metadata, channel lookup, search and descriptions.
package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var execCommandContext = exec.CommandContext

var (
	ErrInvalidURL     = errors.New("not a valid YouTube URL")
	ErrInvalidVideoID = errors.New("invalid video id")
	ErrEmptyQuery     = errors.New("search query cannot be empty")
)

const (
	searchTimeout      = 30 * time.Second
	descriptionTimeout = 15 * time.Second

	// Passed to every metadata call; skipping manifests avoids a request per video.
	skipManifests = "youtube:skip=dash,hls"
)

// CommandError is returned when yt-dlp exits unsuccessfully. Stderr is kept
// so callers can inspect it for rate-limit markers.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		return "yt-dlp failed: " + msg
	}
	return fmt.Sprintf("yt-dlp failed: %v", e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

type Options struct {
	// Path is the yt-dlp executable. Defaults to "yt-dlp" on PATH.
	Path string
	// Rate caps invocations per second. Zero means unlimited.
	Rate  float64
	Burst int
}

// Provider runs yt-dlp. It is safe for concurrent use.
type Provider struct {
	path    string
	limiter *rate.Limiter
}

func New(opts Options) *Provider {
	p := &Provider{path: opts.Path}
	if p.path == "" {
		p.path = "yt-dlp"
	}
	if opts.Rate > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(opts.Rate), max(opts.Burst, 1))
	}
	return p
}

// run executes yt-dlp and returns its stdout.
func (p *Provider) run(ctx context.Context, args ...string) ([]byte, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for yt-dlp slot: %w", err)
		}
	}

	var stdout, stderr bytes.Buffer
	cmd := execCommandContext(ctx, p.path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, &CommandError{Args: args, Stderr: stderr.String(), Err: err}
	}
	return stdout.Bytes(), nil
}

// lines splits output into its non-empty lines.
func lines(out []byte) []string {
	var result []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			result = append(result, line)
		}
	}
	return result
}
