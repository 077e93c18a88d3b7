package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Body is a rigid body owned by a World. Bodies are created with
// World.NewBody and stay valid until Destroy is called.
type Body struct {
	world *World

	pos    mgl64.Vec3
	q      mgl64.Quat
	linVel mgl64.Vec3
	angVel mgl64.Vec3
	force  mgl64.Vec3
	torque mgl64.Vec3

	mass       Mass
	invMass    float64
	invInertia mgl64.Mat3
	iiw        mgl64.Mat3

	gravity bool
}

func newBody(w *World) *Body {
	b := &Body{world: w, q: mgl64.QuatIdent(), gravity: true}
	b.SetMass(NewBoxMass(1, 1, 1, 1))
	return b
}

func (b *Body) World() *World { return b.world }

func (b *Body) Position() mgl64.Vec3       { return b.pos }
func (b *Body) SetPosition(p mgl64.Vec3)   { b.pos = p }
func (b *Body) Quaternion() mgl64.Quat     { return b.q }
func (b *Body) LinearVel() mgl64.Vec3      { return b.linVel }
func (b *Body) SetLinearVel(v mgl64.Vec3)  { b.linVel = v }
func (b *Body) AngularVel() mgl64.Vec3     { return b.angVel }
func (b *Body) SetAngularVel(w mgl64.Vec3) { b.angVel = w }
func (b *Body) Force() mgl64.Vec3          { return b.force }
func (b *Body) Torque() mgl64.Vec3         { return b.torque }
func (b *Body) Mass() Mass                 { return b.mass }
func (b *Body) GravityMode() bool          { return b.gravity }
func (b *Body) SetGravityMode(on bool)     { b.gravity = on }

// SetQuaternion sets the body orientation from a unit quaternion.
func (b *Body) SetQuaternion(q mgl64.Quat) {
	b.q = q.Normalize()
	b.iiw = b.invInertiaWorld()
}

// Rotation returns the body orientation as a rotation matrix whose columns
// are the body axes in world coordinates.
func (b *Body) Rotation() mgl64.Mat3 {
	return b.q.Mat4().Mat3()
}

// SetRotation sets the body orientation from a rotation matrix.
func (b *Body) SetRotation(r mgl64.Mat3) {
	b.q = mgl64.Mat4ToQuat(r.Mat4()).Normalize()
	b.iiw = b.invInertiaWorld()
}

// SetMass assigns mass properties. Invalid masses are ignored.
func (b *Body) SetMass(m Mass) {
	if !m.Valid() {
		return
	}
	b.mass = m
	b.invMass = 1 / m.Total
	b.invInertia = m.Inertia.Inv()
	b.iiw = b.invInertiaWorld()
}

// AddForce accumulates a force through the center of mass, in world
// coordinates. Accumulators are cleared after each World.Step.
func (b *Body) AddForce(f mgl64.Vec3) { b.force = b.force.Add(f) }

// AddTorque accumulates a torque in world coordinates.
func (b *Body) AddTorque(t mgl64.Vec3) { b.torque = b.torque.Add(t) }

// AddForceAtPos accumulates a force applied at world point p.
func (b *Body) AddForceAtPos(f, p mgl64.Vec3) {
	b.force = b.force.Add(f)
	b.torque = b.torque.Add(p.Sub(b.pos).Cross(f))
}

// AddRelForce accumulates a force given in body coordinates.
func (b *Body) AddRelForce(f mgl64.Vec3) { b.AddForce(b.q.Rotate(f)) }

// RelPointPos converts a point in body coordinates to world coordinates.
func (b *Body) RelPointPos(p mgl64.Vec3) mgl64.Vec3 { return b.pos.Add(b.q.Rotate(p)) }

// PointVel returns the velocity of the world point p attached to the body.
func (b *Body) PointVel(p mgl64.Vec3) mgl64.Vec3 {
	return b.linVel.Add(b.angVel.Cross(p.Sub(b.pos)))
}

// KineticEnergy returns the translational plus rotational energy.
func (b *Body) KineticEnergy() float64 {
	r := b.Rotation()
	wl := r.Transpose().Mul3x1(b.angVel)
	return 0.5*b.mass.Total*b.linVel.Dot(b.linVel) + 0.5*wl.Dot(b.mass.Inertia.Mul3x1(wl))
}

// Destroy removes the body from its world. Joints attached to it are
// detached from the body.
func (b *Body) Destroy() {
	if b.world != nil {
		b.world.removeBody(b)
		b.world = nil
	}
}

func (b *Body) invInertiaWorld() mgl64.Mat3 {
	r := b.Rotation()
	return r.Mul3(b.invInertia).Mul3(r.Transpose())
}

func (b *Body) inertiaWorld() mgl64.Mat3 {
	r := b.Rotation()
	return r.Mul3(b.mass.Inertia).Mul3(r.Transpose())
}

func (b *Body) finite() bool {
	for _, v := range []mgl64.Vec3{b.pos, b.linVel, b.angVel, b.q.V} {
		for i := 0; i < 3; i++ {
			if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
				return false
			}
		}
	}
	return !math.IsNaN(b.q.W) && !math.IsInf(b.q.W, 0)
}

// applyImpulse changes the velocities of b by impulse j applied at offset r
// from the center of mass. A nil body is the static environment.
func (b *Body) applyImpulse(j, r mgl64.Vec3) {
	if b == nil {
		return
	}
	b.linVel = b.linVel.Add(j.Mul(b.invMass))
	b.angVel = b.angVel.Add(b.iiw.Mul3x1(r.Cross(j)))
}

func (b *Body) velocityAt(r mgl64.Vec3) mgl64.Vec3 {
	if b == nil {
		return mgl64.Vec3{}
	}
	return b.linVel.Add(b.angVel.Cross(r))
}
