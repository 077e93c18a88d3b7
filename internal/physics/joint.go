package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Surface describes the contact surface between two geoms.
type Surface struct {
	// Mu is the Coulomb friction coefficient; math.Inf(1) never slips.
	Mu float64
	// Bounce is the restitution in [0, 1].
	Bounce float64
	// BounceVel is the minimum approach speed needed to bounce.
	BounceVel float64
}

// Contact pairs a collision point with the surface used to resolve it.
type Contact struct {
	Geom    ContactGeom
	Surface Surface
}

// ContactJoint is a one-step constraint that keeps two bodies from
// interpenetrating at a contact point.
type ContactJoint struct {
	world   *World
	group   *JointGroup
	contact Contact
	b1, b2  *Body

	r1, r2   mgl64.Vec3
	normal   mgl64.Vec3
	tangents [2]mgl64.Vec3
	massN    float64
	massT    [2]float64
	target   float64
	lambdaN  float64
	lambdaT  [2]float64
}

// NewContactJoint creates a contact joint in w and registers it with group.
// The joint has no effect until Attach is called.
func (w *World) NewContactJoint(group *JointGroup, c Contact) *ContactJoint {
	j := &ContactJoint{world: w, group: group, contact: c}
	w.addJoint(j)
	if group != nil {
		group.joints = append(group.joints, j)
	}
	return j
}

// Attach binds the joint to two bodies. Either may be nil, which stands for
// the static environment.
func (j *ContactJoint) Attach(b1, b2 *Body) {
	j.b1, j.b2 = b1, b2
}

func (j *ContactJoint) Bodies() (*Body, *Body) { return j.b1, j.b2 }
func (j *ContactJoint) Contact() Contact       { return j.contact }

func (j *ContactJoint) destroy() {
	if j.world != nil {
		j.world.removeJoint(j)
		j.world = nil
	}
	j.b1, j.b2 = nil, nil
}

func (j *ContactJoint) prepare(w *World, dt float64) bool {
	if j.b1 == nil && j.b2 == nil {
		return false
	}
	g := j.contact.Geom
	j.normal = g.Normal
	if j.b1 != nil {
		j.r1 = g.Pos.Sub(j.b1.pos)
	}
	if j.b2 != nil {
		j.r2 = g.Pos.Sub(j.b2.pos)
	}
	j.tangents[0], j.tangents[1] = tangentBasis(j.normal)

	soft := w.cfm / dt
	j.massN = 1 / (j.effectiveMass(j.normal) + soft)
	for i, t := range j.tangents {
		j.massT[i] = 1 / (j.effectiveMass(t) + soft)
	}

	vn := j.relativeVel().Dot(j.normal)
	bias := w.erp / dt * math.Max(g.Depth-w.surfaceLayer, 0)
	bias = math.Min(bias, w.maxCorrectingVel)
	restitution := 0.0
	if s := j.contact.Surface; s.Bounce > 0 && -vn > s.BounceVel {
		restitution = -s.Bounce * vn
	}
	j.target = math.Max(bias, restitution)
	j.lambdaN = 0
	j.lambdaT = [2]float64{}
	return true
}

func (j *ContactJoint) effectiveMass(d mgl64.Vec3) float64 {
	k := 0.0
	if b := j.b1; b != nil {
		rd := j.r1.Cross(d)
		k += b.invMass + rd.Dot(b.iiw.Mul3x1(rd))
	}
	if b := j.b2; b != nil {
		rd := j.r2.Cross(d)
		k += b.invMass + rd.Dot(b.iiw.Mul3x1(rd))
	}
	return k
}

func (j *ContactJoint) relativeVel() mgl64.Vec3 {
	return j.b1.velocityAt(j.r1).Sub(j.b2.velocityAt(j.r2))
}

func (j *ContactJoint) apply(p mgl64.Vec3) {
	j.b1.applyImpulse(p, j.r1)
	j.b2.applyImpulse(p.Mul(-1), j.r2)
}

func (j *ContactJoint) solve() {
	mu := j.contact.Surface.Mu
	for i, t := range j.tangents {
		vt := j.relativeVel().Dot(t)
		d := -vt * j.massT[i]
		next := j.lambdaT[i] + d
		if !math.IsInf(mu, 1) {
			limit := mu * j.lambdaN
			next = math.Max(-limit, math.Min(limit, next))
		}
		d, j.lambdaT[i] = next-j.lambdaT[i], next
		j.apply(t.Mul(d))
	}

	vn := j.relativeVel().Dot(j.normal)
	d := (j.target - vn) * j.massN
	next := math.Max(j.lambdaN+d, 0)
	d, j.lambdaN = next-j.lambdaN, next
	j.apply(j.normal.Mul(d))
}

// tangentBasis returns two unit vectors orthogonal to n and to each other.
func tangentBasis(n mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	var t mgl64.Vec3
	if math.Abs(n[0]) > 0.57735 {
		t = mgl64.Vec3{n[1], -n[0], 0}
	} else {
		t = mgl64.Vec3{0, n[2], -n[1]}
	}
	t = t.Normalize()
	return t, n.Cross(t)
}

// JointGroup collects contact joints so they can be destroyed together.
type JointGroup struct {
	joints []*ContactJoint
}

func NewJointGroup() *JointGroup { return &JointGroup{} }

func (g *JointGroup) Len() int { return len(g.joints) }

// Empty destroys every joint in the group.
func (g *JointGroup) Empty() {
	for _, j := range g.joints {
		j.destroy()
	}
	g.joints = g.joints[:0]
}
