package metrics

import (
	"math"

	"github.com/san-kum/dicesim/internal/dice"
)

func totalEnergy(d []dice.Die) float64 {
	var e float64
	for _, die := range d {
		e += die.Energy
	}
	return e
}

// MeanEnergy is the kinetic energy of all dice averaged over frames.
type MeanEnergy struct {
	name    string
	sum     float64
	samples int
}

func NewMeanEnergy() *MeanEnergy {
	return &MeanEnergy{name: "mean_kinetic_energy"}
}

func (e *MeanEnergy) Name() string { return e.name }

func (e *MeanEnergy) Observe(frame int, d []dice.Die) {
	e.sum += totalEnergy(d)
	e.samples++
}

func (e *MeanEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *MeanEnergy) Reset() {
	e.sum = 0
	e.samples = 0
}

type MaxEnergy struct {
	name string
	max  float64
}

func NewMaxEnergy() *MaxEnergy {
	return &MaxEnergy{name: "max_kinetic_energy"}
}

func (e *MaxEnergy) Name() string { return e.name }

func (e *MaxEnergy) Observe(frame int, d []dice.Die) {
	e.max = math.Max(e.max, totalEnergy(d))
}

func (e *MaxEnergy) Value() float64 { return e.max }
func (e *MaxEnergy) Reset()         { e.max = 0 }
