package dice

import "time"

// Pacer holds a loop to a fixed frame rate by sleeping out whatever is left
// of the frame budget since the last Mark.
type Pacer struct {
	dt    time.Duration
	last  time.Time
	now   func() time.Time
	sleep func(time.Duration)
}

func NewPacer(fps int) *Pacer {
	return &Pacer{
		dt:    time.Second / time.Duration(fps),
		last:  time.Now(),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

func (p *Pacer) Interval() time.Duration { return p.dt }

// Wait blocks until one frame interval has passed since the last Mark and
// returns how long it slept.
func (p *Pacer) Wait() time.Duration {
	left := p.dt - p.now().Sub(p.last)
	if left <= 0 {
		return 0
	}
	p.sleep(left)
	return left
}

// Mark records the end of a frame.
func (p *Pacer) Mark() { p.last = p.now() }
