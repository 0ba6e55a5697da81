package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/lixenwraith/halfshade/core"
	"github.com/lixenwraith/halfshade/terminal"
)

func main() {
	// Panic Recovery: Ensure terminal is reset even if rendering crashes
	core.SetCrashReset(func() { terminal.EmergencyReset(os.Stdout) })
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	ignoreBrokenPipe()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// ignoreBrokenPipe turns a closed stdout into an EPIPE write error instead of SIGPIPE termination
func ignoreBrokenPipe() {
	signal.Ignore(syscall.SIGPIPE)
}
