package scene

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/lixenwraith/halfshade/core"
	"github.com/lixenwraith/halfshade/frame"
)

// ServiceName identifies the renderer in the service hub
const ServiceName = "scene"

// Renderer fills a grid from a scene using a fixed pool of column workers
// Workers are started once; each Render is one barrier-synchronized pass
type Renderer struct {
	workers int

	// Per-pass job, published before workers are woken
	grid  *frame.Grid
	scene Scene
	next  atomic.Int64

	wakeCh   chan struct{}
	stopCh   chan struct{}
	pass     sync.WaitGroup
	exited   sync.WaitGroup
	running  atomic.Bool
	stopOnce sync.Once

	// onPanic restores the terminal before the process dies
	onPanic func(r any)
}

// NewRenderer creates a renderer with the given worker count
// Zero or negative selects GOMAXPROCS; one worker renders on the caller
func NewRenderer(workers int) *Renderer {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Renderer{
		workers: workers,
		wakeCh:  make(chan struct{}, workers),
		stopCh:  make(chan struct{}),
		onPanic: core.HandleCrash,
	}
}

// Workers returns the pool size
func (r *Renderer) Workers() int {
	return r.workers
}

// Name implements service.Service
func (r *Renderer) Name() string {
	return ServiceName
}

// Dependencies implements service.Service
func (r *Renderer) Dependencies() []string {
	return nil
}

// Init implements service.Service
func (r *Renderer) Init(args ...any) error {
	return nil
}

// Start implements service.Service - launches the worker pool
func (r *Renderer) Start() error {
	if r.workers <= 1 || !r.running.CompareAndSwap(false, true) {
		return nil
	}
	r.exited.Add(r.workers)
	for i := 0; i < r.workers; i++ {
		core.Go(r.worker, r.onPanic)
	}
	slog.Debug("scene workers started", "workers", r.workers)
	return nil
}

// Stop implements service.Service - joins all workers
func (r *Renderer) Stop() error {
	r.stopOnce.Do(func() {
		if r.running.CompareAndSwap(true, false) {
			close(r.stopCh)
			r.exited.Wait()
		}
	})
	return nil
}

// Render sets the scene up for the grid's source size and shades every cell
// Returns after all columns are written; the grid is then safe to read
func (r *Renderer) Render(grid *frame.Grid, s Scene, t float64) {
	s.Setup(grid.Cols, grid.SourceHeight(), t)
	if grid.Cols == 0 || grid.Rows == 0 {
		return
	}

	if !r.running.Load() {
		for x := 0; x < grid.Cols; x++ {
			shadeColumn(grid, s, x)
		}
		return
	}

	r.grid = grid
	r.scene = s
	r.next.Store(0)

	r.pass.Add(r.workers)
	for i := 0; i < r.workers; i++ {
		r.wakeCh <- struct{}{}
	}
	r.pass.Wait()

	r.grid = nil
	r.scene = nil
}

func (r *Renderer) worker() {
	defer r.exited.Done()

	for {
		select {
		case <-r.stopCh:
			return
		case <-r.wakeCh:
			r.drain()
		}
	}
}

// drain claims columns until none remain, then signals the barrier
func (r *Renderer) drain() {
	defer r.pass.Done()

	grid, s := r.grid, r.scene
	cols := int64(grid.Cols)
	for {
		x := r.next.Add(1) - 1
		if x >= cols {
			return
		}
		shadeColumn(grid, s, int(x))
	}
}

// shadeColumn writes column x: upper sample to Fg, lower sample to Bg
func shadeColumn(grid *frame.Grid, s Scene, x int) {
	for row := 0; row < grid.Rows; row++ {
		c := &grid.Cells[x+grid.Cols*row]
		c.Fg = s.Shade(x, 2*row)
		c.Bg = s.Shade(x, 2*row+1)
	}
}
