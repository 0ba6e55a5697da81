package engine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/halfshade/codec"
	"github.com/lixenwraith/halfshade/frame"
	"github.com/lixenwraith/halfshade/output"
	"github.com/lixenwraith/halfshade/scene"
	"github.com/lixenwraith/halfshade/terminal"
)

const prelude = "\x1b[?25l\x1b[H"

var (
	statusRe = regexp.MustCompile(`#(\d+), FPS:(\d+) {7}$`)
	cellRe   = regexp.MustCompile(`\x1b\[48;2;(\d+);(\d+);(\d+)m\x1b\[38;2;(\d+);(\d+);(\d+)m▀`)
)

type status struct {
	frame uint64
	fps   uint64
}

// splitFrames cuts a transcript at each prelude
func splitFrames(t *testing.T, out string) []string {
	t.Helper()
	parts := strings.Split(out, prelude)
	require.Empty(t, parts[0], "transcript starts with a prelude")
	return parts[1:]
}

func parseStatus(t *testing.T, f string) status {
	t.Helper()
	m := statusRe.FindStringSubmatch(xansi.Strip(f))
	require.NotNil(t, m, "status line in %q", xansi.Strip(f))
	n, _ := strconv.ParseUint(m[1], 10, 64)
	fps, _ := strconv.ParseUint(m[2], 10, 64)
	return status{frame: n, fps: fps}
}

func mockClock(step time.Duration) *MockTimeProvider {
	c := NewMockTimeProvider(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	c.SetStep(step)
	return c
}

// scriptedKeys returns one batch of keys per poll round; a round ends when PollKey reports false
type scriptedKeys struct {
	rounds [][]terminal.Key
	round  int
	idx    int
}

func (s *scriptedKeys) PollKey() (terminal.Key, bool) {
	if s.round >= len(s.rounds) {
		return terminal.KeyNone, false
	}
	r := s.rounds[s.round]
	if s.idx < len(r) {
		k := r[s.idx]
		s.idx++
		return k, true
	}
	s.round++
	s.idx = 0
	return terminal.KeyNone, false
}

// recordingSink keeps the buffer identity and a copy of every frame
type recordingSink struct {
	bufs   []*codec.Buffer
	frames [][]byte
	failAt int
	err    error
}

func (r *recordingSink) Send(buf *codec.Buffer) error {
	if r.failAt > 0 && len(r.bufs)+1 == r.failAt {
		return r.err
	}
	r.bufs = append(r.bufs, buf)
	r.frames = append(r.frames, bytes.Clone(buf.Bytes()))
	return nil
}

func (r *recordingSink) Close() error { return nil }

func TestNew_Validates(t *testing.T) {
	good := Config{
		Cols:     4,
		Rows:     3,
		Scene:    scene.NewSolid(frame.Red),
		Renderer: scene.NewRenderer(1),
		Sink:     output.NewDirect(io.Discard),
	}

	_, err := New(good)
	require.NoError(t, err)

	cases := map[string]func(c *Config){
		"zero cols":   func(c *Config) { c.Cols = 0 },
		"zero rows":   func(c *Config) { c.Rows = 0 },
		"no scene":    func(c *Config) { c.Scene = nil },
		"no renderer": func(c *Config) { c.Renderer = nil },
		"no sink":     func(c *Config) { c.Sink = nil },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := good
			mutate(&cfg)
			_, err := New(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestRun_FrameLimitAndStatus(t *testing.T) {
	var out bytes.Buffer
	sink := output.NewDirect(&out)
	loop, err := New(Config{
		Cols:      3,
		Rows:      2,
		Scene:     scene.NewSolid(frame.Red),
		Renderer:  scene.NewRenderer(1),
		Sink:      sink,
		Clock:     mockClock(10 * time.Millisecond),
		MaxFrames: 3,
	})
	require.NoError(t, err)

	stats, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), stats.Frames)
	assert.Equal(t, 70*time.Millisecond, stats.Elapsed)
	assert.InDelta(t, 3/0.07, stats.AvgFPS, 1e-9)
	assert.Equal(t, uint64(3), sink.Written())

	frames := splitFrames(t, out.String())
	require.Len(t, frames, 3)
	for i, f := range frames {
		assert.Equal(t, "▀▀▀#"+strconv.Itoa(i+1)+", FPS:50       ", xansi.Strip(f))
	}
}

// Constant scene: every emitted cell carries the color in both halves, last row skipped
func TestRun_SolidSceneFillsBothHalves(t *testing.T) {
	color := frame.RGB{R: 12, G: 200, B: 7}
	sink := &recordingSink{}
	loop, err := New(Config{
		Cols:      5,
		Rows:      4,
		Scene:     scene.NewSolid(color),
		Renderer:  scene.NewRenderer(3),
		Sink:      sink,
		MaxFrames: 1,
	})
	require.NoError(t, err)

	_, err = loop.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, sink.frames, 1)

	groups := cellRe.FindAllStringSubmatch(string(sink.frames[0]), -1)
	require.Len(t, groups, 5*3)
	for _, g := range groups {
		assert.Equal(t, []string{"12", "200", "7", "12", "200", "7"}, g[1:])
	}
}

func TestRun_RoleSwapAlternatesBuffers(t *testing.T) {
	sink := &recordingSink{}
	loop, err := New(Config{
		Cols:      2,
		Rows:      2,
		Scene:     scene.NewSolid(frame.Blue),
		Renderer:  scene.NewRenderer(1),
		Sink:      sink,
		MaxFrames: 4,
	})
	require.NoError(t, err)

	_, err = loop.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, sink.bufs, 4)

	assert.NotSame(t, sink.bufs[0], sink.bufs[1])
	assert.Same(t, sink.bufs[0], sink.bufs[2])
	assert.Same(t, sink.bufs[1], sink.bufs[3])
}

func TestRun_FPSWindowResetsAfter120(t *testing.T) {
	var out bytes.Buffer
	loop, err := New(Config{
		Cols:      1,
		Rows:      1,
		Scene:     scene.NewSolid(frame.White),
		Renderer:  scene.NewRenderer(1),
		Sink:      output.NewDirect(&out),
		Clock:     mockClock(time.Millisecond),
		MaxFrames: 123,
	})
	require.NoError(t, err)

	_, err = loop.Run(context.Background())
	require.NoError(t, err)

	frames := splitFrames(t, out.String())
	require.Len(t, frames, 123)

	// Frame n renders at 2n-1 ms and reports at 2n ms
	for n := 1; n <= 120; n++ {
		s := parseStatus(t, frames[n-1])
		assert.Equal(t, uint64(n), s.frame)
		assert.Equal(t, uint64(500), s.fps, "frame %d", n)
	}
	assert.Equal(t, uint64(0), parseStatus(t, frames[120]).fps)
	assert.Equal(t, uint64(333), parseStatus(t, frames[121]).fps)
	assert.Equal(t, uint64(400), parseStatus(t, frames[122]).fps)
}

func TestRun_ZeroDurationReportsZeroFPS(t *testing.T) {
	var out bytes.Buffer
	loop, err := New(Config{
		Cols:      2,
		Rows:      2,
		Scene:     scene.NewSolid(frame.White),
		Renderer:  scene.NewRenderer(1),
		Sink:      output.NewDirect(&out),
		Clock:     mockClock(0),
		MaxFrames: 2,
	})
	require.NoError(t, err)

	stats, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.AvgFPS)
	for _, f := range splitFrames(t, out.String()) {
		assert.Equal(t, uint64(0), parseStatus(t, f).fps)
	}
}

func TestRun_ExitKey(t *testing.T) {
	keys := &scriptedKeys{rounds: [][]terminal.Key{
		{},
		{terminal.KeyRune, terminal.KeyEnter},
		{terminal.KeyRune, terminal.KeyEscape},
	}}
	sink := &recordingSink{}
	loop, err := New(Config{
		Cols:     2,
		Rows:     2,
		Scene:    scene.NewSolid(frame.White),
		Renderer: scene.NewRenderer(1),
		Sink:     sink,
		Keys:     keys,
	})
	require.NoError(t, err)

	stats, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), stats.Frames)
	assert.Len(t, sink.frames, 3)
}

func TestRun_CtrlCExits(t *testing.T) {
	loop, err := New(Config{
		Cols:     2,
		Rows:     2,
		Scene:    scene.NewSolid(frame.White),
		Renderer: scene.NewRenderer(1),
		Sink:     &recordingSink{},
		Keys:     &scriptedKeys{rounds: [][]terminal.Key{{terminal.KeyCtrlC}}},
	})
	require.NoError(t, err)

	stats, err := loop.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.Frames)
}

func TestRun_CancelledContextStillRendersOneFrame(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &recordingSink{}
	loop, err := New(Config{
		Cols:     2,
		Rows:     2,
		Scene:    scene.NewSolid(frame.White),
		Renderer: scene.NewRenderer(1),
		Sink:     sink,
	})
	require.NoError(t, err)

	stats, err := loop.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.Frames)
}

func TestRun_SendErrorEndsRun(t *testing.T) {
	boom := errors.New("boom")
	sink := &recordingSink{failAt: 3, err: boom}
	loop, err := New(Config{
		Cols:     2,
		Rows:     2,
		Scene:    scene.NewSolid(frame.White),
		Renderer: scene.NewRenderer(1),
		Sink:     sink,
	})
	require.NoError(t, err)

	stats, err := loop.Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "send frame 3")
	assert.Equal(t, uint64(3), stats.Frames)
	assert.Len(t, sink.frames, 2)
}

// Asynchronous channel: frames arrive complete and in order
func TestRun_ThroughChannel(t *testing.T) {
	var out bytes.Buffer
	ch := output.NewChannel(&out, output.OverrunBlock)
	require.NoError(t, ch.Start())

	renderer := scene.NewRenderer(2)
	require.NoError(t, renderer.Start())
	defer renderer.Stop()

	loop, err := New(Config{
		Cols:      6,
		Rows:      3,
		Scene:     scene.NewApollo(),
		Renderer:  renderer,
		Sink:      ch,
		MaxFrames: 50,
	})
	require.NoError(t, err)

	_, err = loop.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, ch.Close())

	frames := splitFrames(t, out.String())
	require.Len(t, frames, 50)
	for i, f := range frames {
		assert.Len(t, cellRe.FindAllString(f, -1), 12)
		assert.Equal(t, uint64(i+1), parseStatus(t, f).frame)
	}
}

func TestStep_NoAllocations(t *testing.T) {
	renderer := scene.NewRenderer(4)
	require.NoError(t, renderer.Start())
	defer renderer.Stop()

	for name, sink := range map[string]output.Sink{
		"direct":  output.NewDirect(io.Discard),
		"channel": startedChannel(t),
	} {
		t.Run(name, func(t *testing.T) {
			loop, err := New(Config{
				Cols:     80,
				Rows:     24,
				Scene:    scene.NewApollo(),
				Renderer: renderer,
				Sink:     sink,
			})
			require.NoError(t, err)
			loop.start = loop.clock.Now()
			loop.fpsStart = loop.start

			require.NoError(t, loop.step())
			allocs := testing.AllocsPerRun(50, func() {
				if err := loop.step(); err != nil {
					t.Fatal(err)
				}
			})
			assert.Zero(t, allocs)
		})
	}
}

func startedChannel(t *testing.T) *output.Channel {
	t.Helper()
	ch := output.NewChannel(io.Discard, output.OverrunBlock)
	require.NoError(t, ch.Start())
	t.Cleanup(func() { ch.Close() })
	return ch
}
