package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mass holds the total mass of a body and its inertia tensor about the
// center of mass, expressed in the body frame.
type Mass struct {
	Total   float64
	Inertia mgl64.Mat3
}

// NewBoxMass returns the mass of a solid box of the given density and side lengths.
func NewBoxMass(density, lx, ly, lz float64) Mass {
	var m Mass
	m.SetBox(density, lx, ly, lz)
	return m
}

// SetBox sets the mass of a solid box of the given density and side lengths.
func (m *Mass) SetBox(density, lx, ly, lz float64) {
	m.SetBoxTotal(density*lx*ly*lz, lx, ly, lz)
}

// SetBoxTotal sets the mass of a solid box with total mass total.
func (m *Mass) SetBoxTotal(total, lx, ly, lz float64) {
	k := total / 12
	m.Total = total
	m.Inertia = mgl64.Diag3(mgl64.Vec3{
		k * (ly*ly + lz*lz),
		k * (lx*lx + lz*lz),
		k * (lx*lx + ly*ly),
	})
}

// SetSphere sets the mass of a solid sphere of the given density and radius.
func (m *Mass) SetSphere(density, radius float64) {
	total := density * 4.0 / 3.0 * math.Pi * radius * radius * radius
	i := 0.4 * total * radius * radius
	m.Total = total
	m.Inertia = mgl64.Diag3(mgl64.Vec3{i, i, i})
}

// Adjust rescales the mass so that its total becomes total.
func (m *Mass) Adjust(total float64) {
	if m.Total <= 0 {
		return
	}
	m.Inertia = m.Inertia.Mul(total / m.Total)
	m.Total = total
}

// Valid reports whether the mass can be assigned to a dynamic body.
func (m Mass) Valid() bool {
	if m.Total <= 0 {
		return false
	}
	return m.Inertia.At(0, 0) > 0 && m.Inertia.At(1, 1) > 0 && m.Inertia.At(2, 2) > 0
}
