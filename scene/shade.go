package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/lixenwraith/halfshade/frame"
)

var (
	vecOne = mgl32.Vec3{1, 1, 1}
	vec27  = mgl32.Vec3{27, 27, 27}
)

// Smoothstep is Hermite interpolation of x between edge0 and edge1
func Smoothstep(edge0, edge1, x float32) float32 {
	t := mgl32.Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// ToColor maps a 0-1 color vector to RGB, clamping each component first
func ToColor(c mgl32.Vec3) frame.RGB {
	return frame.FromUnit(float64(c[0]), float64(c[1]), float64(c[2]))
}

// TanhApprox is a rational tanh approximation clamped to [-1,1]
func TanhApprox(x mgl32.Vec3) mgl32.Vec3 {
	x2 := mulVec(x, x)
	num := mulVec(x, vec27.Add(x2))
	den := vec27.Add(x2.Mul(9))
	return clampVec(divVec(num, den), -1, 1)
}

// splat fills all components with v
func splat(v float32) mgl32.Vec3 {
	return mgl32.Vec3{v, v, v}
}

func sinVec(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{sin32(v[0]), sin32(v[1]), sin32(v[2])}
}

func absVec(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{mgl32.Abs(v[0]), mgl32.Abs(v[1]), mgl32.Abs(v[2])}
}

// roundVec rounds half to even per component
func roundVec(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(math.RoundToEven(float64(v[0]))),
		float32(math.RoundToEven(float64(v[1]))),
		float32(math.RoundToEven(float64(v[2]))),
	}
}

func mulVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func divVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] / b[0], a[1] / b[1], a[2] / b[2]}
}

func clampVec(v mgl32.Vec3, lo, hi float32) mgl32.Vec3 {
	return mgl32.Vec3{mgl32.Clamp(v[0], lo, hi), mgl32.Clamp(v[1], lo, hi), mgl32.Clamp(v[2], lo, hi)}
}

// rotate applies the cheap axis rotation (P.r)r + P x r used by the raymarched scenes
func rotate(p, r mgl32.Vec3) mgl32.Vec3 {
	return r.Mul(p.Dot(r)).Add(p.Cross(r))
}

func sin32(v float32) float32 {
	return float32(math.Sin(float64(v)))
}

// viewport maps pixel coordinates to a centered space spanning [-1,1] vertically
type viewport struct {
	w, h float32
	inv  float32
}

func newViewport(width, height int) viewport {
	vp := viewport{w: float32(width), h: float32(height)}
	if height > 0 {
		vp.inv = 1 / vp.h
	}
	return vp
}

func (vp viewport) project(x, y int) (float32, float32) {
	return (float32(2*x) - vp.w) * vp.inv, (float32(2*y) - vp.h) * vp.inv
}
