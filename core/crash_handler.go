// Package core holds process-wide helpers shared by every goroutine owner.
package core

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync/atomic"
)

// crashReset restores the terminal; registered by main to keep core free of terminal imports
var crashReset atomic.Pointer[func()]

// SetCrashReset registers the terminal restore run by HandleCrash
func SetCrashReset(fn func()) {
	if fn == nil {
		crashReset.Store(nil)
		return
	}
	crashReset.Store(&fn)
}

// HandleCrash is the unified panic handler that resets the terminal and prints the stack trace
func HandleCrash(r any) {
	if r == nil {
		return
	}

	// Restore terminal to sane state immediately
	if reset := crashReset.Load(); reset != nil {
		(*reset)()
	}
	os.Stdout.Sync()
	os.Stderr.Sync()

	fmt.Fprintf(os.Stderr, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())

	os.Stderr.Sync()
	os.Exit(1)
}

// Go runs fn in a new goroutine with panic recovery.
// onPanic receives the recovered value; nil selects HandleCrash.
// Use this instead of the 'go' keyword to ensure terminal cleanup on crash.
func Go(fn func(), onPanic func(r any)) {
	if onPanic == nil {
		onPanic = HandleCrash
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				onPanic(r)
			}
		}()
		fn()
	}()
}
