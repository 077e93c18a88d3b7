package metrics

import "github.com/san-kum/dicesim/internal/dice"

// DefaultRestSpeed is the speed below which a die counts as resting.
const DefaultRestSpeed = 0.05

// Resting reports how many dice were at rest in the last observed frame.
type Resting struct {
	name      string
	threshold float64
	count     int
}

func NewResting(threshold float64) *Resting {
	return &Resting{name: "resting_dice", threshold: threshold}
}

func (r *Resting) Name() string { return r.name }

func (r *Resting) Observe(frame int, d []dice.Die) {
	r.count = 0
	for _, die := range d {
		if die.Speed < r.threshold {
			r.count++
		}
	}
}

func (r *Resting) Value() float64 { return float64(r.count) }
func (r *Resting) Reset()         { r.count = 0 }

// PeakHeight is the highest any die has reached, zero before the first
// die appears.
type PeakHeight struct {
	name string
	peak float64
	seen bool
}

func NewPeakHeight() *PeakHeight {
	return &PeakHeight{name: "peak_height"}
}

func (p *PeakHeight) Name() string { return p.name }

func (p *PeakHeight) Observe(frame int, d []dice.Die) {
	for _, die := range d {
		if y := die.Position.Y(); !p.seen || y > p.peak {
			p.peak = y
			p.seen = true
		}
	}
}

func (p *PeakHeight) Value() float64 { return p.peak }

func (p *PeakHeight) Reset() {
	p.peak = 0
	p.seen = false
}
