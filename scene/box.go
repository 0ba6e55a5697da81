package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/lixenwraith/halfshade/frame"
)

const (
	boxMaxSteps = 49
	boxFar      = 4
	boxHit      = 1e-3
	boxDistance = 3
)

var boxBase = mgl32.Vec3{-.7, -.2, .3}

// Box raymarches a rotating rounded cube, shaded by how many steps the ray needed
type Box struct {
	vp  viewport
	rot mgl32.Vec3
	fad float32
}

func NewBox() *Box {
	return &Box{}
}

func (b *Box) Name() string { return "box" }

func (b *Box) Setup(width, height int, t float64) {
	b.vp = newViewport(width, height)
	b.rot = sinVec(splat(float32(t)).Add(mgl32.Vec3{0, 1, 2})).Normalize()
	b.fad = .5
}

func (b *Box) Shade(x, y int) frame.RGB {
	px, py := b.vp.project(x, y)
	ray := mgl32.Vec3{px, py, 2}.Normalize()

	z, d := float32(0), float32(1)
	i := 0
	for ; i < boxMaxSteps && z < boxFar && d > boxHit; i++ {
		p := ray.Mul(z)
		p[2] -= boxDistance
		p = rotate(p, b.rot)
		p = mulVec(p, p)
		// L4 norm gives the superellipsoid
		d = float32(math.Sqrt(math.Sqrt(float64(p.Dot(p))))) - 1
		z += d
	}

	if z >= boxFar {
		return frame.Black
	}
	wave := sinVec(boxBase.Sub(splat(float32(i)/33 + 2*(px+py))))
	return ToColor(vecOne.Add(wave).Mul(b.fad))
}
