package flight

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/openrange/backend/internal/physics"
)

// Ground answers where the playing surface is relative to the ball.
type Ground interface {
	// Contact returns the signed height of pos above the surface, measured
	// along the surface normal, and that unit normal.
	Contact(pos mgl64.Vec3) (height float64, normal mgl64.Vec3)
}

// FlatGround is a level surface at a fixed height.
type FlatGround struct {
	Height float64
}

func (g FlatGround) Contact(pos mgl64.Vec3) (float64, mgl64.Vec3) {
	return pos.Y() - g.Height, physics.Up
}

// PlaneGround is an inclined plane through Point.
type PlaneGround struct {
	Point  mgl64.Vec3
	Normal mgl64.Vec3
}

// NewPlaneGround normalises normal, falling back to a level plane when it
// has no direction or points downward.
func NewPlaneGround(point, normal mgl64.Vec3) PlaneGround {
	n := physics.SafeNormalize(normal)
	if n.Y() <= 0 {
		n = physics.Up
	}
	return PlaneGround{Point: point, Normal: n}
}

func (g PlaneGround) Contact(pos mgl64.Vec3) (float64, mgl64.Vec3) {
	return pos.Sub(g.Point).Dot(g.Normal), g.Normal
}
