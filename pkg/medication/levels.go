// Package medication estimates the amount of medication in the body over
// time from an injection history, using a three compartment model
// (absorption depot, central, peripheral).
package medication

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/raykavin/vitaltrend/pkg/core"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"
)

// Model holds the pharmacokinetic parameters and simulation settings
type Model struct {
	Clearance        float64 // apparent clearance, L/h
	CentralVolume    float64 // L
	PeripheralVolume float64 // L
	Intercompartment float64 // intercompartmental clearance, L/h
	Absorption       float64 // absorption rate constant, 1/h
	Bioavailability  float64 // fraction of the dose reaching the depot
	SteadyVolume     float64 // reported steady state volume, L

	Step float64       // integration step, hours
	Tail time.Duration // simulated time after the last dose
}

// Level is the estimated amount in mg at a point in time
type Level struct {
	Time  time.Time `json:"datetime"`
	Level float64   `json:"level"`
}

// naiveLayout is an ISO 8601 timestamp without offset, read as UTC
const naiveLayout = "2006-01-02T15:04:05"

// UnmarshalJSON accepts RFC 3339 timestamps and timestamps without offset
func (l *Level) UnmarshalJSON(data []byte) error {
	var raw struct {
		Time  string  `json:"datetime"`
		Level float64 `json:"level"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	t, err := time.Parse(time.RFC3339, raw.Time)
	if err != nil {
		if t, err = time.ParseInLocation(naiveLayout, raw.Time, time.UTC); err != nil {
			return fmt.Errorf("invalid level time %q: %w", raw.Time, err)
		}
	}

	*l = Level{Time: t, Level: raw.Level}
	return nil
}

// DefaultModel returns population parameters for a weekly injectable
func DefaultModel() Model {
	return Model{
		Clearance:        0.038,
		CentralVolume:    2.47,
		PeripheralVolume: 4.82,
		Intercompartment: 0.116,
		Absorption:       0.0373,
		Bioavailability:  0.62,
		SteadyVolume:     10.3,
		Step:             0.5,
		Tail:             14 * 24 * time.Hour,
	}
}

// Levels estimates levels for the dose events using the default model
func Levels(events []core.DoseEvent) []Level {
	return DefaultModel().Levels(events)
}

// rates returns the rate matrix of the linear system d/dt [depot, central, peripheral]
func (m Model) rates() *mat.Dense {
	ka := m.Absorption
	kc := (m.Clearance + m.Intercompartment) / m.CentralVolume
	kcp := m.Intercompartment / m.CentralVolume
	kpc := m.Intercompartment / m.PeripheralVolume

	return mat.NewDense(3, 3, []float64{
		-ka, 0, 0,
		ka, -kc, kpc,
		0, kcp, -kpc,
	})
}

// propagator advances the compartment amounts by one step exactly
func (m Model) propagator() *mat.Dense {
	var scaled, step mat.Dense
	scaled.Scale(m.Step, m.rates())
	step.Exp(&scaled)
	return &step
}

// Levels simulates the dose events from the earliest one until Tail after the
// latest, and returns one level per hour. Each dose enters the absorption
// depot at the first step within half a step of its time. The amount reported
// is the central concentration scaled to the steady state volume.
func (m Model) Levels(events []core.DoseEvent) []Level {
	if len(events) == 0 || m.Step <= 0 {
		return nil
	}

	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b core.DoseEvent) int {
		return a.Time.Compare(b.Time)
	})

	start := sorted[0].Time
	offsets := make([]float64, len(sorted))
	for i, event := range sorted {
		offsets[i] = event.Time.Sub(start).Hours()
	}

	end := offsets[len(offsets)-1] + m.Tail.Hours()
	steps := int(math.Ceil((end + m.Step) / m.Step))

	propagator := m.propagator()
	applied := make([]bool, len(sorted))
	state := mat.NewVecDense(3, nil)
	next := mat.NewVecDense(3, nil)

	levels := make([]Level, 0, steps/2+1)
	for i := 0; i < steps; i++ {
		at := float64(i) * m.Step

		for k, offset := range offsets {
			if !applied[k] && math.Abs(at-offset) <= m.Step/2 {
				state.SetVec(0, state.AtVec(0)+m.Bioavailability*sorted[k].Dose)
				applied[k] = true
			}
		}

		next.MulVec(propagator, state)
		state, next = next, state

		// every second sample, hourly with the default step
		if i%2 != 0 {
			continue
		}

		amount := state.AtVec(1) / m.CentralVolume * m.SteadyVolume
		levels = append(levels, Level{
			Time:  start.Add(time.Duration(at * float64(time.Hour))),
			Level: math.Round(amount*100) / 100,
		})
	}

	return levels
}

// Peak returns the highest level, or false when there are none
func Peak(levels []Level) (Level, bool) {
	if len(levels) == 0 {
		return Level{}, false
	}

	peak := levels[0]
	for _, level := range levels[1:] {
		if level.Level > peak.Level {
			peak = level
		}
	}
	return peak, true
}

// Between returns the levels within [from, to]
func Between(levels []Level, from, to time.Time) []Level {
	return lo.Filter(levels, func(level Level, _ int) bool {
		return !level.Time.Before(from) && !level.Time.After(to)
	})
}
