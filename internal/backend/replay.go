// Package backend provides the chunk sources that answer translated
// requests.
//
// The built-in source replays recorded chunk streams from JSONL fixtures,
// one {"type": ..., "data": ...} envelope per line, so the relay can be run
// and tested end to end without network access to the model API.
package backend

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mercator-hq/relay/pkg/config"
	"mercator-hq/relay/pkg/gemini"
	"mercator-hq/relay/pkg/proxy"
	"mercator-hq/relay/pkg/stream"
)

// TypeReplay is the backend type that replays fixtures.
const TypeReplay = "replay"

const (
	fixtureExt = ".jsonl"

	// maxLineBytes bounds a single fixture line.
	maxLineBytes = 4 << 20
)

// Replay streams recorded chunks from <dir>/<model>.jsonl, falling back to
// the default fixture for models without their own file.
type Replay struct {
	dir            string
	defaultFixture string
	delay          time.Duration
	logger         *slog.Logger
}

// Option configures a Replay backend.
type Option func(*Replay)

// WithDelay paces replay by sleeping d before each chunk.
func WithDelay(d time.Duration) Option {
	return func(r *Replay) { r.delay = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Replay) { r.logger = l }
}

// New builds the backend selected by cfg.Type.
func New(cfg config.BackendConfig, opts ...Option) (*Replay, error) {
	switch cfg.Type {
	case TypeReplay, "":
		return NewReplay(cfg.FixturesDir, cfg.DefaultFixture, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported backend type %q", cfg.Type)
	}
}

// NewReplay creates a replay backend reading fixtures from dir.
// defaultFixture may be empty to disable the fallback.
func NewReplay(dir, defaultFixture string, opts ...Option) *Replay {
	r := &Replay{
		dir:            dir,
		defaultFixture: defaultFixture,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stream opens the fixture for model and replays it on the returned
// channel. The channel closes at end of file or when ctx is done. Lines that
// are blank or start with '#' are skipped; lines that fail to decode are
// logged and skipped.
func (r *Replay) Stream(ctx context.Context, model string, req *gemini.Request) (<-chan stream.Chunk, error) {
	path, err := r.resolve(model)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &proxy.BackendError{Kind: proxy.BackendUnavailable, Model: model, Err: err}
	}

	contents := 0
	if req != nil {
		contents = len(req.Contents)
	}
	r.logger.DebugContext(ctx, "replaying fixture", "model", model, "fixture", path, "contents", contents)

	out := make(chan stream.Chunk)
	go func() {
		defer close(out)
		defer f.Close()
		r.replay(ctx, f, path, out)
	}()
	return out, nil
}

func (r *Replay) replay(ctx context.Context, f *os.File, path string, out chan<- stream.Chunk) {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		chunk, err := stream.DecodeChunk([]byte(line))
		if err != nil {
			r.logger.WarnContext(ctx, "skipping invalid fixture line", "fixture", path, "line", lineNo, "error", err)
			continue
		}

		if r.delay > 0 {
			timer := time.NewTimer(r.delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}

		select {
		case out <- chunk:
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil {
		r.logger.ErrorContext(ctx, "fixture read failed", "fixture", path, "line", lineNo, "error", err)
	}
}

// resolve maps a model id to a fixture path.
func (r *Replay) resolve(model string) (string, error) {
	name := strings.TrimPrefix(model, "models/")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", &proxy.BackendError{
			Kind:  proxy.BackendModelNotFound,
			Model: model,
			Err:   fmt.Errorf("invalid model name %q", model),
		}
	}

	candidates := []string{filepath.Join(r.dir, name+fixtureExt)}
	if r.defaultFixture != "" {
		candidates = append(candidates, filepath.Join(r.dir, r.defaultFixture))
	}
	for _, path := range candidates {
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			return path, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", &proxy.BackendError{Kind: proxy.BackendUnavailable, Model: model, Err: err}
		}
	}
	return "", &proxy.BackendError{
		Kind:  proxy.BackendModelNotFound,
		Model: model,
		Err:   fmt.Errorf("no fixture for model in %s", r.dir),
	}
}

// Ping reports an error unless the fixtures directory is readable.
func (r *Replay) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("fixtures directory: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == fixtureExt {
			return nil
		}
	}
	return fmt.Errorf("fixtures directory %s has no %s files", r.dir, fixtureExt)
}

// Fixtures lists the model ids that have their own fixture.
func (r *Replay) Fixtures() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != fixtureExt || name == r.defaultFixture {
			continue
		}
		out = append(out, strings.TrimSuffix(name, fixtureExt))
	}
	return out, nil
}
