package engine

import (
	"fmt"
	"math"
)

// RawPrediction is what an engine hands back: a linear predictor, a survival
// matrix on a time grid (rows are observations, columns are times), or both.
type RawPrediction struct {
	LP    []float64
	Times []float64
	Surv  [][]float64
}

// Distribution is a predicted survival curve per observation.
type Distribution struct {
	Times []float64   `json:"times"`
	Surv  [][]float64 `json:"surv"`
}

// Prediction is the normalized prediction shape.
type Prediction struct {
	Crank []float64     `json:"crank"`
	LP    []float64     `json:"lp,omitempty"`
	Distr *Distribution `json:"distr,omitempty"`
}

// Len returns the number of observations.
func (p Prediction) Len() int {
	return len(p.Crank)
}

// Normalize reshapes raw engine output for engine d.
//
// lp and distr are kept only if the engine declares them. crank is lp when
// available, otherwise the row sums of 1 - S(t), which orders observations by
// expected mortality over the time grid. Output slices never alias raw.
func Normalize(d Descriptor, raw RawPrediction) (Prediction, error) {
	var out Prediction

	hasLP := len(raw.LP) > 0 && d.Supports(PredictLP)
	hasDistr := len(raw.Surv) > 0 && d.Supports(PredictDistr)

	if hasDistr {
		distr, err := newDistribution(raw.Times, raw.Surv)
		if err != nil {
			return Prediction{}, fmt.Errorf("engine %s: %w", d.ID, err)
		}
		out.Distr = distr
	}
	if hasLP {
		out.LP = append([]float64(nil), raw.LP...)
	}

	if hasLP && hasDistr && len(out.LP) != len(out.Distr.Surv) {
		return Prediction{}, fmt.Errorf("engine %s: %w: lp has %d rows, distr has %d",
			d.ID, ErrShape, len(out.LP), len(out.Distr.Surv))
	}

	switch {
	case hasLP:
		out.Crank = append([]float64(nil), out.LP...)
	case hasDistr:
		out.Crank = expectedMortality(out.Distr.Surv)
	default:
		return Prediction{}, fmt.Errorf("engine %s: %w: no lp or distr in engine output", d.ID, ErrShape)
	}

	return out, nil
}

func newDistribution(times []float64, surv [][]float64) (*Distribution, error) {
	if len(times) == 0 {
		return nil, fmt.Errorf("%w: survival matrix without time grid", ErrShape)
	}
	for j, t := range times {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("%w: time %v at index %d is not finite", ErrShape, t, j)
		}
		if j > 0 && t <= times[j-1] {
			return nil, fmt.Errorf("%w: times not strictly increasing at index %d", ErrShape, j)
		}
	}

	d := &Distribution{
		Times: append([]float64(nil), times...),
		Surv:  make([][]float64, len(surv)),
	}
	for i, row := range surv {
		if len(row) != len(times) {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrShape, i, len(row), len(times))
		}
		for j, s := range row {
			if math.IsNaN(s) || s < 0 || s > 1 {
				return nil, fmt.Errorf("%w: row %d survival %v outside [0,1]", ErrShape, i, s)
			}
			if j > 0 && s > row[j-1] {
				return nil, fmt.Errorf("%w: row %d survival increases at index %d", ErrShape, i, j)
			}
		}
		d.Surv[i] = append([]float64(nil), row...)
	}
	return d, nil
}

func expectedMortality(surv [][]float64) []float64 {
	out := make([]float64, len(surv))
	for i, row := range surv {
		var sum float64
		for _, s := range row {
			sum += 1 - s
		}
		out[i] = sum
	}
	return out
}
