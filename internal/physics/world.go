package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultERP        = 0.2
	DefaultCFM        = 1e-5
	DefaultIterations = 20
)

// World owns bodies and the joints that constrain them, and advances them
// in time. A World is not safe for concurrent use.
type World struct {
	gravity    mgl64.Vec3
	erp, cfm   float64
	iterations int

	maxCorrectingVel float64
	surfaceLayer     float64

	bodies []*Body
	joints []*ContactJoint
}

func NewWorld() *World {
	return &World{
		erp:              DefaultERP,
		cfm:              DefaultCFM,
		iterations:       DefaultIterations,
		maxCorrectingVel: math.Inf(1),
	}
}

func (w *World) Gravity() mgl64.Vec3     { return w.gravity }
func (w *World) SetGravity(g mgl64.Vec3) { w.gravity = g }
func (w *World) ERP() float64            { return w.erp }
func (w *World) SetERP(erp float64)      { w.erp = erp }
func (w *World) CFM() float64            { return w.cfm }
func (w *World) SetCFM(cfm float64)      { w.cfm = cfm }
func (w *World) Iterations() int         { return w.iterations }
func (w *World) Bodies() []*Body         { return w.bodies }
func (w *World) NumJoints() int          { return len(w.joints) }

// SetIterations sets the number of solver passes per step.
func (w *World) SetIterations(n int) {
	if n > 0 {
		w.iterations = n
	}
}

// SetContactMaxCorrectingVel caps the velocity used to push penetrating
// bodies apart.
func (w *World) SetContactMaxCorrectingVel(v float64) { w.maxCorrectingVel = v }

// SetContactSurfaceLayer sets the penetration depth tolerated before any
// correction is applied.
func (w *World) SetContactSurfaceLayer(d float64) { w.surfaceLayer = d }

// NewBody creates a body at the origin with unit box mass.
func (w *World) NewBody() *Body {
	b := newBody(w)
	w.bodies = append(w.bodies, b)
	return b
}

func (w *World) removeBody(b *Body) {
	for i, o := range w.bodies {
		if o == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	for _, j := range w.joints {
		if j.b1 == b {
			j.b1 = nil
		}
		if j.b2 == b {
			j.b2 = nil
		}
	}
}

func (w *World) addJoint(j *ContactJoint) { w.joints = append(w.joints, j) }

func (w *World) removeJoint(j *ContactJoint) {
	for i, o := range w.joints {
		if o == j {
			w.joints = append(w.joints[:i], w.joints[i+1:]...)
			return
		}
	}
}

// Step advances the world by dt: forces and gravity are integrated into
// velocities, contact joints are solved, poses are integrated and the force
// accumulators are cleared.
func (w *World) Step(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return ErrInvalidStep
	}

	for _, b := range w.bodies {
		b.iiw = b.invInertiaWorld()
		acc := b.force.Mul(b.invMass)
		if b.gravity {
			acc = acc.Add(w.gravity)
		}
		b.linVel = b.linVel.Add(acc.Mul(dt))
		gyro := b.angVel.Cross(b.inertiaWorld().Mul3x1(b.angVel))
		b.angVel = b.angVel.Add(b.iiw.Mul3x1(b.torque.Sub(gyro)).Mul(dt))
	}

	active := make([]*ContactJoint, 0, len(w.joints))
	for _, j := range w.joints {
		if j.prepare(w, dt) {
			active = append(active, j)
		}
	}
	for it := 0; it < w.iterations; it++ {
		for _, j := range active {
			j.solve()
		}
	}

	for i, b := range w.bodies {
		b.pos = b.pos.Add(b.linVel.Mul(dt))
		spin := mgl64.Quat{W: 0, V: b.angVel}.Mul(b.q).Scale(0.5 * dt)
		b.q = b.q.Add(spin).Normalize()
		b.force, b.torque = mgl64.Vec3{}, mgl64.Vec3{}
		if !b.finite() {
			return &StepError{Body: i, Wrapped: ErrUnstable}
		}
	}
	return nil
}
