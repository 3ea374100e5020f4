package engine

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"survkit/internal/formula"
	"survkit/internal/logging"
)

// Call is a fully translated engine invocation: the formula in the shape the
// engine accepts, strata variables when the engine takes them separately,
// and hyperparameters under the engine's argument names.
type Call struct {
	ID      string                 `json:"id"`
	Engine  string                 `json:"engine"`
	Package string                 `json:"package"`
	Formula formula.Formula        `json:"formula"`
	Strata  []string               `json:"strata,omitempty"`
	Args    map[string]interface{} `json:"args,omitempty"`
}

// Prepare translates a framework-level fit request for engine d.
//
// For StrataArgument engines the top-level strata() terms are removed and
// collected into Call.Strata; for StrataUnsupported engines the formula must
// contain no strata() at all. In both cases a strata() term left anywhere in
// the formula yields a *formula.ConfigurationError and no Call.
func Prepare(d Descriptor, f formula.Formula, params map[string]interface{}) (*Call, error) {
	if f.RHS == nil {
		f = f.WithRHS(formula.Intercept{})
	}

	call := &Call{
		ID:      uuid.NewString(),
		Engine:  d.ID,
		Package: d.Package,
	}
	log := logging.WithCall(logging.CategoryEngine, call.ID)
	defer logging.StartTimer(logging.CategoryEngine, "prepare "+d.ID).Stop()

	switch d.Strata {
	case StrataInFormula:
		call.Formula = f.WithRHS(f.RHS)
	case StrataArgument:
		rhs := formula.RemoveStrata(f.RHS)
		if err := formula.ValidateNoStrata(rhs); err != nil {
			log.Warnw("rejecting formula", "engine", d.ID, "formula", f.String(), "error", err)
			return nil, fmt.Errorf("engine %s: %w", d.ID, err)
		}
		call.Formula = f.WithRHS(rhs)
		call.Strata = formula.StrataVars(f.RHS)
	case StrataUnsupported:
		if err := formula.ValidateNoStrata(f.RHS); err != nil {
			log.Warnw("rejecting formula", "engine", d.ID, "formula", f.String(), "error", err)
			return nil, fmt.Errorf("engine %s does not support stratification: %w", d.ID, err)
		}
		call.Formula = f.WithRHS(f.RHS)
	default:
		return nil, fmt.Errorf("engine %s: unknown strata policy %v", d.ID, d.Strata)
	}

	if len(params) > 0 {
		args, err := translateParams(d, params, log)
		if err != nil {
			return nil, err
		}
		call.Args = args
	}

	log.Debugw("prepared call",
		"engine", d.ID,
		"formula", call.Formula.String(),
		"strata", call.Strata,
		"args", len(call.Args),
	)
	return call, nil
}

// translateParams renames params to d's argument names. Two framework names
// landing on the same argument is an error; names are visited in sorted order
// so the reported pair is stable.
func translateParams(d Descriptor, params map[string]interface{}, log *zap.SugaredLogger) (map[string]interface{}, error) {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	args := make(map[string]interface{}, len(params))
	from := make(map[string]string, len(params))
	for _, name := range names {
		arg, ok := d.ArgName(name)
		if !ok {
			log.Debugw("dropping parameter", "engine", d.ID, "param", name)
			continue
		}
		if prev, dup := from[arg]; dup {
			return nil, fmt.Errorf("engine %s: %w: parameters %q and %q both map to %q",
				d.ID, ErrParamConflict, prev, name, arg)
		}
		from[arg] = name
		args[arg] = params[name]
	}
	return args, nil
}
