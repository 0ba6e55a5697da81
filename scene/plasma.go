package scene

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/halfshade/frame"
)

const (
	plasmaChroma    = 0.6
	plasmaLuminance = 0.65
	plasmaDrift     = 40 // palette entries per second
)

// Plasma sums interfering sine fields and maps them through a perceptual hue wheel
type Plasma struct {
	palette [256]frame.RGB

	w, h   float64
	t      float64
	offset int
	sx, cy float64
}

// NewPlasma builds the HCL palette once; frames only index it
func NewPlasma() *Plasma {
	p := &Plasma{}
	for i := range p.palette {
		c := colorful.Hcl(360*float64(i)/float64(len(p.palette)), plasmaChroma, plasmaLuminance).Clamped()
		r, g, b := c.RGB255()
		p.palette[i] = frame.RGB{R: r, G: g, B: b}
	}
	return p
}

func (p *Plasma) Name() string { return "plasma" }

func (p *Plasma) Setup(width, height int, t float64) {
	p.w = math.Max(float64(width), 1)
	p.h = math.Max(float64(height), 1)
	p.t = t
	p.offset = int(t*plasmaDrift) & 0xff
	p.sx = math.Sin(t / 2)
	p.cy = math.Cos(t / 3)
}

func (p *Plasma) Shade(x, y int) frame.RGB {
	// Square samples: both axes scaled by height
	u := float64(x) / p.h
	v := float64(y) / p.h

	f := math.Sin(u*10 + p.t)
	f += math.Sin(10*(u*p.sx+v*p.cy) + p.t)
	cx := u - p.w/p.h/2 + .5*math.Sin(p.t/5)
	cv := v - .5 + .5*math.Cos(p.t/3)
	f += math.Sin(math.Sqrt(100*(cx*cx+cv*cv)+1) + p.t)

	// f in [-3,3]
	idx := int((f+3)/6*255) + p.offset
	return p.palette[idx&0xff]
}
