package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/lixenwraith/halfshade/frame"
)

const (
	apolloFolds     = 3
	apolloScale     = 1.41
	apolloEdge      = 5e-3
	apolloMinRadius = 1e-12
)

var apolloBase = mgl32.Vec3{2, 1, 0}

// Apollo is an Apollonian-style inversion fractal slowly tumbling through a lattice
type Apollo struct {
	// Pulse breathes the brightness with time instead of holding it at one half
	Pulse bool

	vp  viewport
	rot mgl32.Vec3
	sin float32
	fad float32
}

func NewApollo() *Apollo {
	return &Apollo{}
}

func (a *Apollo) Name() string { return "apollo" }

func (a *Apollo) Setup(width, height int, t float64) {
	tf := float32(t)
	a.vp = newViewport(width, height)
	a.rot = sinVec(splat(.2*tf + 123).Add(mgl32.Vec3{0, 1, 2})).Normalize()
	a.sin = float32(math.Sin(.123 * t))
	if a.Pulse {
		a.fad = float32(.25 + .25*math.Cos(t))
	} else {
		a.fad = .5
	}
}

func (a *Apollo) Shade(x, y int) frame.RGB {
	px, py := a.vp.project(x, y)
	p := rotate(mgl32.Vec3{px, py, .5 * a.sin}, a.rot)

	s := float32(1)
	for i := 0; i < apolloFolds; i++ {
		p = p.Sub(roundVec(p.Mul(.5)).Mul(2))
		r := p.Dot(p)
		if r < apolloMinRadius {
			r = apolloMinRadius
		}
		k := apolloScale / r
		p = p.Mul(k)
		s *= k
	}

	p = absVec(p).Mul(1 / s)
	k := min(p[2], mgl32.Vec2{p[0], p[1]}.Len())
	if k < apolloEdge {
		return frame.White
	}

	glow := sinVec(apolloBase.Add(splat(2 + float32(math.Log2(float64(k))))))
	return ToColor(vecOne.Add(glow).Mul(a.fad / (1 + k*k*5)))
}
