package scene

import "github.com/lixenwraith/halfshade/frame"

// Solid fills every sample with one color
type Solid struct {
	Color frame.RGB
}

func NewSolid(c frame.RGB) *Solid {
	return &Solid{Color: c}
}

func (s *Solid) Name() string { return "solid" }

func (s *Solid) Setup(width, height int, t float64) {}

func (s *Solid) Shade(x, y int) frame.RGB { return s.Color }
