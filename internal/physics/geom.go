package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Class identifies the shape of a geom.
type Class int

const (
	ClassPlane Class = iota
	ClassBox
)

func (c Class) String() string {
	switch c {
	case ClassPlane:
		return "plane"
	case ClassBox:
		return "box"
	}
	return "unknown"
}

// Geom is a collision shape living in a Space. Placeable geoms follow the
// body they are attached to; planes are static.
type Geom interface {
	Class() Class
	Body() *Body
	Space() *Space
	AABB() AABB
	detach()
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mgl64.Vec3
}

func (a AABB) Overlaps(b AABB) bool {
	for i := 0; i < 3; i++ {
		if a.Max[i] < b.Min[i] || b.Max[i] < a.Min[i] {
			return false
		}
	}
	return true
}

func infiniteAABB() AABB {
	inf := math.Inf(1)
	return AABB{Min: mgl64.Vec3{-inf, -inf, -inf}, Max: mgl64.Vec3{inf, inf, inf}}
}

// Plane is the static half-space n.p <= d, solid on the side opposite n.
type Plane struct {
	space  *Space
	normal mgl64.Vec3
	d      float64
}

// NewPlane creates the plane a*x+b*y+c*z = d in space. The parameters are
// normalized so that the normal has unit length.
func NewPlane(space *Space, normal mgl64.Vec3, d float64) *Plane {
	p := &Plane{}
	p.SetParams(normal, d)
	if space != nil {
		space.Add(p)
	}
	return p
}

// SetParams replaces the plane equation.
func (p *Plane) SetParams(normal mgl64.Vec3, d float64) {
	l := normal.Len()
	if l == 0 {
		normal, l = mgl64.Vec3{0, 0, 1}, 1
	}
	p.normal, p.d = normal.Mul(1/l), d/l
}

func (p *Plane) Params() (mgl64.Vec3, float64) { return p.normal, p.d }
func (p *Plane) Class() Class                  { return ClassPlane }
func (p *Plane) Body() *Body                   { return nil }
func (p *Plane) Space() *Space                 { return p.space }
func (p *Plane) AABB() AABB                    { return infiniteAABB() }
func (p *Plane) detach()                       { p.space = nil }

// PointDepth returns how far pt lies below the plane surface; negative
// values are above it.
func (p *Plane) PointDepth(pt mgl64.Vec3) float64 {
	return p.d - p.normal.Dot(pt)
}

// Box is a rectangular box collision shape.
type Box struct {
	space   *Space
	body    *Body
	lengths mgl64.Vec3

	pos mgl64.Vec3
	rot mgl64.Mat3
}

// NewBox creates a box with the given side lengths in space.
func NewBox(space *Space, lengths mgl64.Vec3) *Box {
	b := &Box{lengths: lengths, rot: mgl64.Ident3()}
	if space != nil {
		space.Add(b)
	}
	return b
}

func (b *Box) Class() Class        { return ClassBox }
func (b *Box) Body() *Body         { return b.body }
func (b *Box) Space() *Space       { return b.space }
func (b *Box) Lengths() mgl64.Vec3 { return b.lengths }
func (b *Box) detach()             { b.space = nil }

// SetBody attaches the box to body, or detaches it when body is nil. A
// detached box keeps the last pose of its body.
func (b *Box) SetBody(body *Body) {
	if body == nil && b.body != nil {
		b.pos, b.rot = b.body.Position(), b.body.Rotation()
	}
	b.body = body
}

func (b *Box) Position() mgl64.Vec3 {
	if b.body != nil {
		return b.body.Position()
	}
	return b.pos
}

func (b *Box) Rotation() mgl64.Mat3 {
	if b.body != nil {
		return b.body.Rotation()
	}
	return b.rot
}

// SetPosition moves a box that has no body.
func (b *Box) SetPosition(p mgl64.Vec3) {
	if b.body != nil {
		b.body.SetPosition(p)
		return
	}
	b.pos = p
}

func (b *Box) halfExtents() mgl64.Vec3 { return b.lengths.Mul(0.5) }

func (b *Box) AABB() AABB {
	c, r, h := b.Position(), b.Rotation(), b.halfExtents()
	var e mgl64.Vec3
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			e[i] += math.Abs(r.At(i, k)) * h[k]
		}
	}
	return AABB{Min: c.Sub(e), Max: c.Add(e)}
}

// Vertices returns the eight corners of the box in world coordinates.
func (b *Box) Vertices() [8]mgl64.Vec3 {
	var out [8]mgl64.Vec3
	c, r, h := b.Position(), b.Rotation(), b.halfExtents()
	for i := 0; i < 8; i++ {
		local := mgl64.Vec3{h[0], h[1], h[2]}
		if i&1 != 0 {
			local[0] = -local[0]
		}
		if i&2 != 0 {
			local[1] = -local[1]
		}
		if i&4 != 0 {
			local[2] = -local[2]
		}
		out[i] = c.Add(r.Mul3x1(local))
	}
	return out
}

// PointDepth returns the distance from pt to the nearest face for points
// inside the box and a negative value outside it.
func (b *Box) PointDepth(pt mgl64.Vec3) float64 {
	r, h := b.Rotation(), b.halfExtents()
	local := r.Transpose().Mul3x1(pt.Sub(b.Position()))
	depth := math.Inf(1)
	for i := 0; i < 3; i++ {
		depth = math.Min(depth, h[i]-math.Abs(local[i]))
	}
	return depth
}

// Destroy removes the box from its space.
func (b *Box) Destroy() {
	if b.space != nil {
		b.space.Remove(b)
	}
	b.body = nil
}
