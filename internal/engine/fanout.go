package engine

import (
	"context"
	"fmt"

	"survkit/internal/logging"
)

// PathPredictor re-predicts a fitted model at several values of a path
// hyperparameter in one call, e.g. glmnet's predict(fit, s = c(...)).
// arg is the engine argument name. The result must hold one RawPrediction per
// value, in order.
type PathPredictor interface {
	PredictPath(ctx context.Context, arg string, values []float64) ([]RawPrediction, error)
}

// PathPrediction is the normalized prediction for one path value.
type PathPrediction struct {
	Value      float64    `json:"value"`
	Prediction Prediction `json:"prediction"`
}

// FanOut predicts at every value of d's path parameter through exactly one
// PredictPath call instead of one refit per value. Results follow the order
// of values.
func FanOut(ctx context.Context, d Descriptor, values []float64, p PathPredictor) ([]PathPrediction, error) {
	if d.PathParam == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoPath, d.ID)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("engine %s: no %s values to predict", d.ID, d.PathParam)
	}
	seen := make(map[float64]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return nil, fmt.Errorf("engine %s: duplicate %s value %v", d.ID, d.PathParam, v)
		}
		seen[v] = true
	}

	arg, ok := d.ArgName(d.PathParam)
	if !ok {
		return nil, fmt.Errorf("%w: %s drops %s", ErrNoPath, d.ID, d.PathParam)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logging.EngineDebug("fanning %s over %d values of %s", d.ID, len(values), arg)
	raws, err := p.PredictPath(ctx, arg, append([]float64(nil), values...))
	if err != nil {
		return nil, fmt.Errorf("engine %s: path prediction failed: %w", d.ID, err)
	}
	if len(raws) != len(values) {
		return nil, fmt.Errorf("engine %s: %w: requested %d path values, got %d predictions",
			d.ID, ErrShape, len(values), len(raws))
	}

	out := make([]PathPrediction, len(values))
	for i, raw := range raws {
		pred, err := Normalize(d, raw)
		if err != nil {
			return nil, fmt.Errorf("%s=%v: %w", d.PathParam, values[i], err)
		}
		out[i] = PathPrediction{Value: values[i], Prediction: pred}
	}
	return out, nil
}
