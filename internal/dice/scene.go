package dice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dicesim/internal/config"
	"github.com/san-kum/dicesim/internal/physics"
)

// ErrStopped is returned by Run when the context is cancelled.
var ErrStopped = errors.New("dice: run stopped")

// Phase is the state of the drop cycle.
type Phase int

const (
	Dropping Phase = iota
	Scattering
)

func (p Phase) String() string {
	if p == Scattering {
		return "scattering"
	}
	return "dropping"
}

// Die is a render snapshot of one die.
type Die struct {
	Position mgl64.Vec3
	Rotation mgl64.Mat3
	Size     mgl64.Vec3
	Speed    float64
	Energy   float64
}

// Scene is the dice demo: a world with static planes and a growing list of
// box bodies, each paired with its collision geom.
type Scene struct {
	cfg *config.Config
	log *slog.Logger

	world    *physics.World
	space    *physics.Space
	contacts *physics.JointGroup
	planes   []*physics.Plane
	surface  physics.Surface

	bodies []*physics.Body
	geoms  []*physics.Box

	params  Params
	phase   Phase
	counter int
	dropped int
	frame   int
	dt      float64
}

func NewScene(cfg *config.Config, log *slog.Logger) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	w := physics.NewWorld()
	w.SetGravity(mgl64.Vec3(cfg.World.Gravity))
	w.SetERP(cfg.World.ERP)
	w.SetCFM(cfg.World.CFM)
	w.SetIterations(cfg.World.Iterations)

	s := &Scene{
		cfg:      cfg,
		log:      log,
		world:    w,
		space:    physics.NewSpace(),
		contacts: physics.NewJointGroup(),
		surface:  physics.Surface{Mu: cfg.Contact.Mu, Bounce: cfg.Contact.Bounce},
		params:   ParamsFrom(cfg.Drop),
		dt:       cfg.Dt(),
	}
	for _, p := range cfg.Planes {
		s.planes = append(s.planes, physics.NewPlane(s.space, mgl64.Vec3(p.Normal), p.Offset))
	}
	return s, nil
}

func (s *Scene) Config() *config.Config            { return s.cfg }
func (s *Scene) World() *physics.World             { return s.world }
func (s *Scene) Space() *physics.Space             { return s.space }
func (s *Scene) Params() Params                    { return s.params }
func (s *Scene) Phase() Phase                      { return s.phase }
func (s *Scene) Counter() int                      { return s.counter }
func (s *Scene) Dropped() int                      { return s.dropped }
func (s *Scene) FrameCount() int                   { return s.frame }
func (s *Scene) NumDice() int                      { return len(s.bodies) }
func (s *Scene) Dt() float64                       { return s.dt }
func (s *Scene) Planes() []*physics.Plane          { return s.planes }
func (s *Scene) ContactGroup() *physics.JointGroup { return s.contacts }

// SetParams replaces the drop parameters and restarts the sequence.
func (s *Scene) SetParams(p Params) {
	if p.FrameGap < 1 {
		p.FrameGap = 1
	}
	s.params = p
	s.Restart()
}

// Frame advances the scene by one frame: counter, phase logic, then the
// physics substeps.
func (s *Scene) Frame() error {
	s.frame++
	s.counter++

	switch s.phase {
	case Dropping:
		if s.dropped < s.cfg.Dice.Count && s.counter >= s.params.FrameGap {
			s.Drop()
		}
		if s.dropped == s.cfg.Dice.Count {
			s.counter = 0
			if s.cfg.Scatter.Enabled {
				s.phase = Scattering
				s.log.Info("all dice dropped", "dice", s.dropped, "frame", s.frame)
			}
		}
	case Scattering:
		sc := s.cfg.Scatter
		if s.counter == sc.ExplodeAt {
			s.Explode()
		}
		if s.counter > sc.PullAfter {
			s.Pull()
		}
		if s.counter == sc.RewindAt {
			s.counter = sc.RewindTo
		}
	}

	if err := s.simulate(); err != nil {
		s.log.Error("simulation failed", "frame", s.frame, "err", err)
		return fmt.Errorf("frame %d: %w", s.frame, err)
	}
	return nil
}

func (s *Scene) simulate() error {
	n := s.cfg.World.Substeps
	h := s.dt / float64(n)
	for i := 0; i < n; i++ {
		s.space.Collide(s.nearCallback)
		err := s.world.Step(h)
		s.contacts.Empty()
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Scene) nearCallback(g1, g2 physics.Geom) {
	for _, c := range physics.Collide(g1, g2, s.cfg.Contact.MaxContacts) {
		j := s.world.NewContactJoint(s.contacts, physics.Contact{Geom: c, Surface: s.surface})
		j.Attach(g1.Body(), g2.Body())
	}
}

// Drop adds one die at the drop origin, turned about the vertical axis by
// pi*Spin and pushed with the throw force.
func (s *Scene) Drop() {
	size := s.cfg.Dice.Size
	lengths := mgl64.Vec3{size, size, size}

	body := s.world.NewBody()
	body.SetMass(physics.NewBoxMass(s.cfg.Dice.Density, size, size, size))
	body.SetPosition(s.params.Origin())
	theta := math.Pi * s.params.Spin
	ct, st := math.Cos(theta), math.Sin(theta)
	body.SetRotation(mgl64.Mat3FromRows(
		mgl64.Vec3{ct, 0, -st},
		mgl64.Vec3{0, 1, 0},
		mgl64.Vec3{st, 0, ct},
	))
	body.AddForce(s.params.Throw())

	geom := physics.NewBox(s.space, lengths)
	geom.SetBody(body)

	s.bodies = append(s.bodies, body)
	s.geoms = append(s.geoms, geom)
	s.counter = 0
	s.dropped++

	p := s.params
	s.log.Info("die dropped", "n", s.dropped,
		"x", p.PosX, "y", p.PosY, "z", p.PosZ,
		"fx", p.ForceX, "fy", p.ForceY, "fz", p.ForceZ,
		"spin", p.Spin, "gap", p.FrameGap)
}

// Explode pushes every die away from the origin, harder the closer it is.
func (s *Scene) Explode() {
	sc := s.cfg.Scatter
	for _, b := range s.bodies {
		p := b.Position()
		d := p.Len()
		a := math.Max(0, sc.Strength*(1-sc.Falloff*d*d))
		dir := mgl64.Vec3{p.X() / 4, p.Y(), p.Z() / 4}
		if l := dir.Len(); l > 0 {
			b.AddForce(dir.Mul(a / l))
		}
	}
	s.log.Debug("explosion", "frame", s.frame, "dice", len(s.bodies))
}

// Pull draws every die back toward the origin, with a periodic upward
// thrust so they do not settle on the floor.
func (s *Scene) Pull() {
	sc := s.cfg.Scatter
	thrust := s.counter%sc.ThrustEvery == 0
	for _, b := range s.bodies {
		p := b.Position()
		if l := p.Len(); l > 0 {
			b.AddForce(p.Mul(-sc.Pull / l))
		}
		if thrust {
			b.AddForce(mgl64.Vec3{0, sc.Thrust, 0})
		}
	}
}

// Restart removes every die from the world and space and starts dropping
// again with the current parameters.
func (s *Scene) Restart() {
	s.contacts.Empty()
	for i := range s.bodies {
		s.geoms[i].Destroy()
		s.bodies[i].Destroy()
	}
	s.bodies = s.bodies[:0]
	s.geoms = s.geoms[:0]
	s.counter = 0
	s.dropped = 0
	s.phase = Dropping
	s.log.Info("restart", "frame", s.frame)
}

// Dice returns a snapshot of every die in drop order.
func (s *Scene) Dice() []Die {
	out := make([]Die, len(s.bodies))
	for i, b := range s.bodies {
		out[i] = Die{
			Position: b.Position(),
			Rotation: b.Rotation(),
			Size:     s.geoms[i].Lengths(),
			Speed:    b.LinearVel().Len(),
			Energy:   b.KineticEnergy(),
		}
	}
	return out
}

func (s *Scene) KineticEnergy() float64 {
	var e float64
	for _, b := range s.bodies {
		e += b.KineticEnergy()
	}
	return e
}

// Run advances the scene frames times, or forever when frames <= 0. A nil
// pacer runs as fast as possible. observe, when set, sees every frame.
func (s *Scene) Run(ctx context.Context, frames int, pacer *Pacer, observe func(frame int, dice []Die)) error {
	for i := 0; frames <= 0 || i < frames; i++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrStopped, ctx.Err())
		default:
		}
		if pacer != nil {
			pacer.Wait()
		}
		if err := s.Frame(); err != nil {
			return err
		}
		if observe != nil {
			observe(s.frame, s.Dice())
		}
		if pacer != nil {
			pacer.Mark()
		}
	}
	return nil
}
