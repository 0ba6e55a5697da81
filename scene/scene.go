// Package scene holds the procedural images and the column-parallel renderer that samples them.
//
// A Scene is evaluated per source pixel. The source image is twice as tall as the terminal:
// each cell shows two vertically stacked samples through the upper half block glyph, the upper
// one as foreground and the lower one as background.
package scene

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lixenwraith/halfshade/frame"
)

// ErrUnknownScene is returned by Lookup for unregistered names
var ErrUnknownScene = errors.New("unknown scene")

// DefaultName is the scene selected when none is requested
const DefaultName = "apollo"

// Scene is a closed-form image evaluated per sample
type Scene interface {
	// Name returns the registry key
	Name() string

	// Setup captures per-frame state; height is the source height (twice the terminal rows)
	Setup(width, height int, t float64)

	// Shade returns the color of sample (x, y); called concurrently, must not mutate state
	Shade(x, y int) frame.RGB
}

var registry = map[string]func() Scene{
	"apollo": func() Scene { return NewApollo() },
	"box":    func() Scene { return NewBox() },
	"plasma": func() Scene { return NewPlasma() },
	"noise":  func() Scene { return NewNoise(0) },
	"solid":  func() Scene { return NewSolid(frame.RGB{R: 128, G: 128, B: 128}) },
}

// Lookup returns a fresh instance of the named scene
func Lookup(name string) (Scene, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	return ctor(), nil
}

// Names returns registered scene names in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
