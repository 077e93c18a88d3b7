package dice_test

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dicesim/internal/config"
	"github.com/san-kum/dicesim/internal/dice"
	"github.com/san-kum/dicesim/internal/logger"
)

func newScene(mutate func(*config.Config)) *dice.Scene {
	cfg := config.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	scene, err := dice.NewScene(cfg, logger.Discard())
	Expect(err).NotTo(HaveOccurred())
	return scene
}

func frames(s *dice.Scene, n int) {
	for i := 0; i < n; i++ {
		Expect(s.Frame()).To(Succeed())
	}
}

func expectVecNear(actual, want mgl64.Vec3) {
	for i := range want {
		ExpectWithOffset(1, actual[i]).To(BeNumerically("~", want[i], 1e-9), "component %d of %v", i, actual)
	}
}

func expectMatNear(actual, want mgl64.Mat3) {
	for i := range want {
		ExpectWithOffset(1, actual[i]).To(BeNumerically("~", want[i], 1e-9), "entry %d of %v", i, actual)
	}
}

func expectParallel(s *dice.Scene) {
	Expect(s.World().Bodies()).To(HaveLen(s.NumDice()))
	Expect(s.Space().Len()).To(Equal(s.NumDice() + len(s.Planes())))
	Expect(s.Dice()).To(HaveLen(s.NumDice()))
}

var _ = Describe("Scene", func() {
	It("starts empty with the static planes in place", func() {
		s := newScene(nil)
		Expect(s.NumDice()).To(BeZero())
		Expect(s.Planes()).To(HaveLen(3))
		Expect(s.Phase()).To(Equal(dice.Dropping))
		Expect(s.Params().HUD()).To(Equal([]string{
			"origin: 0.0 5.0 0.0 (az sx dc)",
			"throw: 1000 0 0 (fv gb hn)",
			"spin: 1.1 (jm)",
			"dice gap: 20 (k,)",
		}))
	})

	It("rejects an invalid config", func() {
		cfg := config.DefaultConfig()
		cfg.Dice.Count = 0
		_, err := dice.NewScene(cfg, nil)
		Expect(errors.Is(err, config.ErrInvalid)).To(BeTrue())
	})

	Describe("dropping", func() {
		It("drops the k-th die at frame k times the gap", func() {
			s := newScene(func(c *config.Config) { c.Drop.FrameGap = 5 })
			frames(s, 4)
			Expect(s.NumDice()).To(Equal(0))
			frames(s, 1)
			Expect(s.NumDice()).To(Equal(1))
			Expect(s.Counter()).To(Equal(0))
			frames(s, 10)
			Expect(s.NumDice()).To(Equal(3))
			expectParallel(s)
		})

		It("places a new die at the origin turned by pi times spin", func() {
			s := newScene(func(c *config.Config) { c.Drop.Spin = 0.5 })
			s.Drop()
			b := s.World().Bodies()[0]
			expectVecNear(b.Position(), mgl64.Vec3{0, 5, 0})
			expectVecNear(b.Force(), mgl64.Vec3{1000, 0, 0})
			want := mgl64.Mat3FromRows(mgl64.Vec3{0, 0, -1}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{1, 0, 0})
			expectMatNear(b.Rotation(), want)
			Expect(b.Mass().Total).To(BeNumerically("~", 8, 1e-9))
			Expect(s.Dice()[0].Size).To(Equal(mgl64.Vec3{0.2, 0.2, 0.2}))
		})

		It("stops at the configured count and holds the counter", func() {
			s := newScene(func(c *config.Config) {
				c.Dice.Count = 2
				c.Drop.FrameGap = 3
				c.Scatter.Enabled = false
			})
			frames(s, 30)
			Expect(s.NumDice()).To(Equal(2))
			Expect(s.Counter()).To(Equal(0))
			Expect(s.Phase()).To(Equal(dice.Dropping))
		})

		It("lets dice come to rest on the floor", func() {
			s := newScene(func(c *config.Config) {
				c.Dice.Count = 1
				c.Drop.Y = 1
				c.Drop.ForceX = 0
				c.Drop.Spin = 0
				c.Drop.FrameGap = 1
				c.Scatter.Enabled = false
			})
			frames(s, 180)
			d := s.Dice()[0]
			Expect(d.Position.Y()).To(BeNumerically("~", 0.1, 0.02))
			Expect(d.Speed).To(BeNumerically("<", 0.2))
		})
	})

	Describe("scattering", func() {
		var s *dice.Scene

		BeforeEach(func() {
			s = newScene(func(c *config.Config) {
				c.Dice.Count = 2
				c.Drop.FrameGap = 3
				c.Scatter.ExplodeAt = 5
				c.Scatter.PullAfter = 10
				c.Scatter.RewindAt = 15
				c.Scatter.RewindTo = 2
			})
		})

		It("switches phase after the last drop", func() {
			frames(s, 5)
			Expect(s.Phase()).To(Equal(dice.Dropping))
			frames(s, 1)
			Expect(s.Phase()).To(Equal(dice.Scattering))
			Expect(s.Counter()).To(Equal(0))
		})

		It("rewinds the counter", func() {
			frames(s, 6+14)
			Expect(s.Counter()).To(Equal(14))
			frames(s, 1)
			Expect(s.Counter()).To(Equal(2))
			expectParallel(s)
		})
	})

	Describe("phase machine", func() {
		var s *dice.Scene
		var h float64

		BeforeEach(func() {
			s = newScene(func(c *config.Config) {
				c.Dice.Count = 1
				c.Drop.Y = 1
				c.Drop.ForceX = 0
				c.Drop.Spin = 0
				c.Drop.FrameGap = 1
				c.World.Gravity = [3]float64{}
				c.World.Substeps = 1
				c.Scatter.ExplodeAt = 3
				c.Scatter.PullAfter = 6
				c.Scatter.ThrustEvery = 4
				c.Scatter.RewindAt = 100
			})
			h = s.Dt()
			frames(s, 1)
			Expect(s.Phase()).To(Equal(dice.Scattering))
			Expect(s.Counter()).To(BeZero())
		})

		vy := func() float64 { return s.World().Bodies()[0].LinearVel().Y() }

		It("explodes when the counter reaches the explosion frame", func() {
			frames(s, 2)
			Expect(s.Counter()).To(Equal(2))
			Expect(vy()).To(BeNumerically("~", 0, 1e-12))

			frames(s, 1)
			Expect(s.Counter()).To(Equal(3))
			// die at distance 1: 40000 * (1 - 0.2) upward on 8 kg
			Expect(vy()).To(BeNumerically("~", 32000.0/8*h, 1e-6))
		})

		It("pulls after the pull frame with a thrust every few frames", func() {
			frames(s, 6)
			Expect(s.Counter()).To(Equal(6))
			before := vy()
			Expect(s.World().Bodies()[0].Position().X()).To(BeNumerically("~", 0, 1e-12))

			frames(s, 1)
			Expect(s.Counter()).To(Equal(7))
			Expect(vy() - before).To(BeNumerically("~", -1000.0/8*h, 1e-6))

			before = vy()
			frames(s, 1)
			Expect(s.Counter()).To(Equal(8))
			Expect(vy() - before).To(BeNumerically("~", (10000.0-1000)/8*h, 1e-6))
		})

		It("does not pull before the pull frame", func() {
			frames(s, 5)
			before := vy()
			frames(s, 1)
			Expect(s.Counter()).To(Equal(6))
			Expect(vy()).To(BeNumerically("~", before, 1e-12))
		})
	})

	Describe("forces", func() {
		var s *dice.Scene

		BeforeEach(func() {
			s = newScene(func(c *config.Config) { c.Drop.Y = 1 })
			s.Drop()
		})

		It("explodes away from the origin", func() {
			s.Explode()
			f := s.World().Bodies()[0].Force()
			expectVecNear(f, mgl64.Vec3{1000, 32000, 0})
		})

		It("has no explosion force beyond the falloff radius", func() {
			s.SetParams(dice.Params{PosY: 5, FrameGap: 1})
			s.Drop()
			s.Explode()
			Expect(s.World().Bodies()[0].Force()).To(Equal(mgl64.Vec3{}))
		})

		It("pulls toward the origin with a periodic thrust", func() {
			s.Pull()
			f := s.World().Bodies()[0].Force()
			expectVecNear(f, mgl64.Vec3{1000, 9000, 0})
		})

		It("ignores a die sitting on the origin", func() {
			s.SetParams(dice.Params{FrameGap: 1})
			s.Drop()
			s.Explode()
			f := s.World().Bodies()[0].Force()
			Expect(math.IsNaN(f.X()) || math.IsNaN(f.Y())).To(BeFalse())
			Expect(f).To(Equal(mgl64.Vec3{}))
		})
	})

	Describe("keyboard", func() {
		var s *dice.Scene

		BeforeEach(func() {
			s = newScene(func(c *config.Config) { c.Drop.FrameGap = 2 })
			frames(s, 7)
			Expect(s.NumDice()).To(Equal(3))
		})

		DescribeTable("parameter keys adjust and restart",
			func(key string, check func(dice.Params) bool) {
				Expect(s.HandleKey(key)).To(Equal(dice.ActionRestart))
				Expect(check(s.Params())).To(BeTrue())
				Expect(s.NumDice()).To(BeZero())
				Expect(s.Dropped()).To(BeZero())
				Expect(s.Counter()).To(BeZero())
				expectParallel(s)
			},
			Entry("a", "a", func(p dice.Params) bool { return p.PosX == -0.5 }),
			Entry("z", "z", func(p dice.Params) bool { return p.PosX == 0.5 }),
			Entry("s", "s", func(p dice.Params) bool { return p.PosY == 4.5 }),
			Entry("x", "x", func(p dice.Params) bool { return p.PosY == 5.5 }),
			Entry("d", "d", func(p dice.Params) bool { return p.PosZ == -0.5 }),
			Entry("c", "c", func(p dice.Params) bool { return p.PosZ == 0.5 }),
			Entry("f", "f", func(p dice.Params) bool { return p.ForceX == 900 }),
			Entry("v", "v", func(p dice.Params) bool { return p.ForceX == 1100 }),
			Entry("g", "g", func(p dice.Params) bool { return p.ForceY == -100 }),
			Entry("b", "b", func(p dice.Params) bool { return p.ForceY == 100 }),
			Entry("h", "h", func(p dice.Params) bool { return p.ForceZ == -100 }),
			Entry("n", "n", func(p dice.Params) bool { return p.ForceZ == 100 }),
			Entry("j", "j", func(p dice.Params) bool { return math.Abs(p.Spin-1.0) < 1e-9 }),
			Entry("m", "m", func(p dice.Params) bool { return math.Abs(p.Spin-1.2) < 1e-9 }),
			Entry("k", "k", func(p dice.Params) bool { return p.FrameGap == 1 }),
			Entry(",", ",", func(p dice.Params) bool { return p.FrameGap == 3 }),
		)

		It("never lets the gap drop below one", func() {
			s.HandleKey("k")
			s.HandleKey("k")
			Expect(s.Params().FrameGap).To(Equal(1))
		})

		It("restarts on r without changing parameters", func() {
			before := s.Params()
			Expect(s.HandleKey("r")).To(Equal(dice.ActionRestart))
			Expect(s.Params()).To(Equal(before))
			Expect(s.NumDice()).To(BeZero())
		})

		It("quits on q and ignores unmapped keys", func() {
			Expect(s.HandleKey("q")).To(Equal(dice.ActionQuit))
			Expect(s.HandleKey("w")).To(Equal(dice.ActionNone))
			Expect(s.NumDice()).To(Equal(3))
			Expect(dice.IsParamKey(",")).To(BeTrue())
			Expect(dice.IsParamKey("r")).To(BeFalse())
		})

		It("drops again after a restart", func() {
			s.HandleKey("r")
			frames(s, 2)
			Expect(s.NumDice()).To(Equal(1))
			expectParallel(s)
		})

		It("returns to dropping from the scatter phase", func() {
			frames(s, 5)
			Expect(s.Phase()).To(Equal(dice.Scattering))
			s.HandleKey("v")
			Expect(s.Phase()).To(Equal(dice.Dropping))
			Expect(s.ContactGroup().Len()).To(BeZero())
		})
	})

	Describe("Run", func() {
		It("observes every frame", func() {
			s := newScene(nil)
			seen := 0
			Expect(s.Run(context.Background(), 25, nil, func(frame int, d []dice.Die) {
				seen++
				Expect(frame).To(Equal(seen))
			})).To(Succeed())
			Expect(seen).To(Equal(25))
			Expect(s.NumDice()).To(Equal(1))
		})

		It("stops on cancellation", func() {
			s := newScene(nil)
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			err := s.Run(ctx, 0, nil, nil)
			Expect(errors.Is(err, dice.ErrStopped)).To(BeTrue())
			Expect(s.FrameCount()).To(BeZero())
		})

		It("paces frames with the pacer", func() {
			s := newScene(nil)
			pacer := dice.NewPacer(1000)
			start := time.Now()
			Expect(s.Run(context.Background(), 20, pacer, nil)).To(Succeed())
			Expect(time.Since(start)).To(BeNumerically(">=", 15*time.Millisecond))
		})
	})
})
