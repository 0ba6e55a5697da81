// Package engine drives frame production: render, encode, annotate, swap, send.
//
// The loop owns one grid and two byte buffers. Each frame is encoded into the current buffer,
// the buffers trade roles, and the freshly encoded one is handed to the sink while the next
// frame is computed into the other. Steady-state iterations perform no heap allocation.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/lixenwraith/halfshade/codec"
	"github.com/lixenwraith/halfshade/frame"
	"github.com/lixenwraith/halfshade/output"
	"github.com/lixenwraith/halfshade/scene"
	"github.com/lixenwraith/halfshade/terminal"
)

// fpsWindow is the number of frames after which the FPS baseline restarts
const fpsWindow = 120

// ErrInvalidConfig reports a loop configuration that cannot render
var ErrInvalidConfig = errors.New("engine: invalid config")

// KeyPoller reports pending keys without blocking
type KeyPoller interface {
	PollKey() (terminal.Key, bool)
}

// Config wires the loop's collaborators; dimensions are fixed for the loop's lifetime
type Config struct {
	Cols int // Terminal columns
	Rows int // Terminal rows, the last one carries the status line

	Scene    scene.Scene
	Renderer *scene.Renderer
	Sink     output.Sink

	Keys  KeyPoller // Optional, nil disables key exit
	Clock Clock     // Optional, defaults to the system clock

	MaxFrames uint64 // Zero renders until stopped
}

// Stats summarizes a finished run
type Stats struct {
	Frames  uint64
	Elapsed time.Duration
	AvgFPS  float64
}

// RenderLoop produces frames until an exit key, context cancellation, frame limit or send error
type RenderLoop struct {
	cfg      Config
	clock    Clock
	grid     *frame.Grid
	encoder  *codec.Encoder
	current  *codec.Buffer
	inflight *codec.Buffer

	start     time.Time
	frameNo   uint64
	fpsFrames uint64
	fpsStart  time.Time
}

// New validates cfg and allocates the grid and both frame buffers
func New(cfg Config) (*RenderLoop, error) {
	switch {
	case cfg.Cols <= 0 || cfg.Rows <= 0:
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidConfig, cfg.Cols, cfg.Rows)
	case cfg.Scene == nil:
		return nil, fmt.Errorf("%w: no scene", ErrInvalidConfig)
	case cfg.Renderer == nil:
		return nil, fmt.Errorf("%w: no renderer", ErrInvalidConfig)
	case cfg.Sink == nil:
		return nil, fmt.Errorf("%w: no sink", ErrInvalidConfig)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = NewTimeProvider()
	}

	capacity := codec.Capacity(cfg.Cols, cfg.Rows)
	slog.Debug("render loop configured",
		"cols", cfg.Cols,
		"rows", cfg.Rows,
		"scene", cfg.Scene.Name(),
		"buffer_bytes", capacity,
	)

	return &RenderLoop{
		cfg:      cfg,
		clock:    clock,
		grid:     frame.NewGrid(cfg.Cols, cfg.Rows),
		encoder:  codec.NewEncoder(),
		current:  codec.NewBuffer(capacity),
		inflight: codec.NewBuffer(capacity),
	}, nil
}

// Grid exposes the frame grid, valid between frames
func (l *RenderLoop) Grid() *frame.Grid {
	return l.grid
}

// Run renders frames until an exit condition; a sink error ends the run with that error
func (l *RenderLoop) Run(ctx context.Context) (Stats, error) {
	l.start = l.clock.Now()
	l.fpsStart = l.start

	for {
		if err := l.step(); err != nil {
			return l.stats(), err
		}
		if l.done(ctx) {
			return l.stats(), nil
		}
	}
}

// step produces and sends exactly one frame
func (l *RenderLoop) step() error {
	l.current.Reset()
	l.frameNo++
	l.fpsFrames++

	now := l.clock.Now()
	if l.fpsFrames > fpsWindow {
		l.fpsFrames = 0
		l.fpsStart = now
	}

	l.cfg.Renderer.Render(l.grid, l.cfg.Scene, now.Sub(l.start).Seconds())
	l.encoder.Encode(l.grid, l.current)
	l.encoder.Status(l.current, l.frameNo, l.fps(l.clock.Now()))

	// Role swap: the buffer just encoded goes out, the other becomes writable
	l.current, l.inflight = l.inflight, l.current

	if err := l.cfg.Sink.Send(l.inflight); err != nil {
		return fmt.Errorf("send frame %d: %w", l.frameNo, err)
	}
	return nil
}

// fps is frames in the current window over the window's duration, rounded
func (l *RenderLoop) fps(now time.Time) uint64 {
	secs := now.Sub(l.fpsStart).Seconds()
	if secs <= 0 {
		return 0
	}
	return uint64(math.Round(float64(l.fpsFrames) / secs))
}

// done polls every exit condition without blocking
func (l *RenderLoop) done(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
	}

	if l.cfg.MaxFrames > 0 && l.frameNo >= l.cfg.MaxFrames {
		return true
	}

	if l.cfg.Keys != nil {
		for {
			key, ok := l.cfg.Keys.PollKey()
			if !ok {
				break
			}
			if key.IsExit() {
				slog.Debug("exit key", "key", key)
				return true
			}
		}
	}
	return false
}

func (l *RenderLoop) stats() Stats {
	s := Stats{
		Frames:  l.frameNo,
		Elapsed: l.clock.Now().Sub(l.start),
	}
	if secs := s.Elapsed.Seconds(); secs > 0 {
		s.AvgFPS = float64(s.Frames) / secs
	}
	return s
}
