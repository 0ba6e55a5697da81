package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/halfshade/engine"
	"github.com/lixenwraith/halfshade/output"
	"github.com/lixenwraith/halfshade/scene"
	"github.com/lixenwraith/halfshade/service"
	"github.com/lixenwraith/halfshade/terminal"
)

// options collects root command flags
type options struct {
	scene   string
	sync    bool
	strict  bool
	pulse   bool
	frames  uint64
	workers int
	logPath string
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "halfshade",
		Short: "Render procedural scenes in the terminal with half-block truecolor cells",
		Long: `Render a procedural scene full-screen using 24-bit ANSI colors.

Each terminal cell shows two vertically stacked samples through the upper half
block glyph. Press Escape or Ctrl+C to exit.

Examples:
  halfshade                  # Apollonian fractal until Escape
  halfshade -s box --sync    # Raymarched box, write frames on the render goroutine
  halfshade --frames 600     # Stop after 600 frames`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&opts.scene, "scene", "s", scene.DefaultName, "Scene to render (see 'halfshade scenes')")
	cmd.Flags().BoolVar(&opts.sync, "sync", false, "Write frames on the render goroutine instead of a dedicated writer")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Panic when a frame is sent before the previous one was written")
	cmd.Flags().BoolVar(&opts.pulse, "pulse", false, "Pulse the apollo scene brightness over time")
	cmd.Flags().Uint64Var(&opts.frames, "frames", 0, "Stop after N frames (0 = until Escape)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Shading workers (0 = GOMAXPROCS)")
	cmd.Flags().StringVar(&opts.logPath, "log", "", "Write debug log to this file")

	cmd.AddCommand(newScenesCmd())
	return cmd
}

func newScenesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "List available scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range scene.Names() {
				if name == scene.DefaultName {
					fmt.Fprintf(out, "%s (default)\n", name)
					continue
				}
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}

// run validates options, brings services up, renders until exit and tears everything down
func run(ctx context.Context, opts options, stdout io.Writer) (err error) {
	if opts.workers < 0 {
		return fmt.Errorf("invalid --workers %d", opts.workers)
	}
	s, err := scene.Lookup(opts.scene)
	if err != nil {
		return err
	}
	if a, ok := s.(*scene.Apollo); ok {
		a.Pulse = opts.pulse
	}

	logFile, err := setupLogging(opts.logPath)
	if err != nil {
		return err
	}
	if logFile != nil {
		defer logFile.Close()
	}

	term := terminal.NewService()
	renderer := scene.NewRenderer(opts.workers)

	hub := service.NewHub()
	if err := hub.Register(term); err != nil {
		return err
	}
	if err := hub.Register(renderer); err != nil {
		return err
	}

	var sink output.Sink
	if opts.sync {
		sink = output.NewDirect(stdout)
	} else {
		policy := output.OverrunBlock
		if opts.strict {
			policy = output.OverrunPanic
		}
		ch := output.NewChannel(stdout, policy)
		if err := hub.Register(ch); err != nil {
			return err
		}
		sink = ch
	}

	if err := hub.InitAll(); err != nil {
		return err
	}
	slog.Debug("services initialized", "order", hub.Order())
	// Output drains before the terminal resets, both on every exit path
	defer hub.StopAll()

	if err := hub.StartAll(); err != nil {
		return err
	}

	console := term.Console()
	cols, rows := console.Size()
	slog.Info("starting render",
		"scene", s.Name(),
		"cols", cols,
		"rows", rows,
		"workers", renderer.Workers(),
		"sync", opts.sync,
		"color_mode", console.ColorMode(),
	)

	loop, err := engine.New(engine.Config{
		Cols:      cols,
		Rows:      rows,
		Scene:     s,
		Renderer:  renderer,
		Sink:      sink,
		Keys:      console,
		MaxFrames: opts.frames,
	})
	if err != nil {
		return err
	}

	stats, runErr := loop.Run(ctx)
	closeErr := sink.Close()

	slog.Info("render stopped",
		"frames", stats.Frames,
		"elapsed", stats.Elapsed,
		"avg_fps", stats.AvgFPS,
	)

	if runErr != nil {
		return runErr
	}
	return closeErr
}
