package scene

import (
	"github.com/ojrac/opensimplex-go"

	"github.com/lixenwraith/halfshade/frame"
)

const (
	noiseScale = 0.045
	noiseSpeed = 0.25
	noisePan   = 6.0 // samples per second
)

type band struct {
	top  float64
	from frame.RGB
	to   frame.RGB
}

// Elevation bands, lowest first; each blends from..to across its range
var noiseBands = [...]band{
	{0.38, frame.RGB{R: 8, G: 24, B: 72}, frame.RGB{R: 24, G: 80, B: 160}},
	{0.44, frame.RGB{R: 200, G: 190, B: 130}, frame.RGB{R: 220, G: 205, B: 150}},
	{0.62, frame.RGB{R: 40, G: 120, B: 40}, frame.RGB{R: 20, G: 80, B: 30}},
	{0.78, frame.RGB{R: 100, G: 90, B: 80}, frame.RGB{R: 140, G: 130, B: 120}},
	{1.00, frame.RGB{R: 220, G: 220, B: 230}, frame.RGB{R: 255, G: 255, B: 255}},
}

// Noise is scrolling simplex terrain colored by elevation
type Noise struct {
	noise opensimplex.Noise
	z     float64
	pan   float64
}

func NewNoise(seed int64) *Noise {
	return &Noise{noise: opensimplex.NewNormalized(seed)}
}

func (n *Noise) Name() string { return "noise" }

func (n *Noise) Setup(width, height int, t float64) {
	n.z = t * noiseSpeed
	n.pan = t * noisePan
}

func (n *Noise) Shade(x, y int) frame.RGB {
	fx := (float64(x) + n.pan) * noiseScale
	fy := float64(y) * noiseScale

	// Two octaves
	e := 0.75*n.noise.Eval3(fx, fy, n.z) + 0.25*n.noise.Eval3(2*fx, 2*fy, 2*n.z)
	return elevationColor(e)
}

func elevationColor(e float64) frame.RGB {
	lo := 0.0
	for _, b := range noiseBands {
		if e <= b.top {
			return frame.Lerp(b.from, b.to, (e-lo)/(b.top-lo))
		}
		lo = b.top
	}
	return noiseBands[len(noiseBands)-1].to
}
