package metrics

import "github.com/san-kum/dicesim/internal/dice"

// Metric accumulates a single number over the frames of a run.
type Metric interface {
	Name() string
	Observe(frame int, dice []dice.Die)
	Value() float64
	Reset()
}

// Defaults returns the metrics recorded for every run.
func Defaults() []Metric {
	return []Metric{
		NewMeanEnergy(),
		NewMaxEnergy(),
		NewResting(DefaultRestSpeed),
		NewPeakHeight(),
	}
}

// Observer fans a frame out to every metric. It fits dice.Scene.Run.
func Observer(ms []Metric) func(int, []dice.Die) {
	return func(frame int, d []dice.Die) {
		for _, m := range ms {
			m.Observe(frame, d)
		}
	}
}

func Results(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
