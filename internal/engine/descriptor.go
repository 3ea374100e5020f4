// Package engine maps the uniform learner interface onto external survival
// engines: it decides how each engine receives strata, renames
// hyperparameters to the engine's argument names, and reshapes raw engine
// output into the standard crank/lp/distr prediction.
package engine

import (
	"fmt"
	"sort"

	"survkit/internal/config"
)

// StrataPolicy says how an engine consumes stratification.
type StrataPolicy int

const (
	// StrataUnsupported engines cannot stratify; any strata() term is an error.
	StrataUnsupported StrataPolicy = iota
	// StrataArgument engines take strata as a separate argument; strata()
	// terms are removed from the formula and passed alongside it.
	StrataArgument
	// StrataInFormula engines understand strata() natively.
	StrataInFormula
)

var strataPolicyNames = map[StrataPolicy]string{
	StrataUnsupported: "unsupported",
	StrataArgument:    "argument",
	StrataInFormula:   "formula",
}

func (p StrataPolicy) String() string {
	if s, ok := strataPolicyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("StrataPolicy(%d)", int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p StrataPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ParseStrataPolicy parses the config spelling of a policy.
// The empty string means StrataUnsupported.
func ParseStrataPolicy(s string) (StrataPolicy, error) {
	if s == "" {
		return StrataUnsupported, nil
	}
	for p, name := range strataPolicyNames {
		if name == s {
			return p, nil
		}
	}
	return StrataUnsupported, fmt.Errorf("unknown strata policy %q", s)
}

// PredictType is one of the standard prediction shapes.
type PredictType string

const (
	PredictCrank PredictType = "crank"
	PredictLP    PredictType = "lp"
	PredictDistr PredictType = "distr"
)

// Descriptor is the argument-mapping table for one engine.
type Descriptor struct {
	ID      string
	Package string
	Strata  StrataPolicy

	// ParamMap renames framework hyperparameters to engine arguments.
	// Names missing from the map pass through; names mapped to "" are dropped.
	ParamMap map[string]string

	Predicts []PredictType

	// PathParam is the framework name of the hyperparameter whose values can
	// all be predicted from a single fit. Empty when the engine has none.
	PathParam string
}

// Supports reports whether the engine produces prediction type t.
func (d Descriptor) Supports(t PredictType) bool {
	for _, p := range d.Predicts {
		if p == t {
			return true
		}
	}
	return false
}

// ArgName returns the engine argument name for a framework hyperparameter.
// ok is false when the parameter is dropped for this engine.
func (d Descriptor) ArgName(param string) (name string, ok bool) {
	mapped, exists := d.ParamMap[param]
	if !exists {
		return param, true
	}
	return mapped, mapped != ""
}

// clone returns a deep copy so registry entries cannot be mutated by callers.
func (d Descriptor) clone() Descriptor {
	out := d
	if d.ParamMap != nil {
		out.ParamMap = make(map[string]string, len(d.ParamMap))
		for k, v := range d.ParamMap {
			out.ParamMap[k] = v
		}
	}
	out.Predicts = append([]PredictType(nil), d.Predicts...)
	return out
}

// FromConfig builds a descriptor from a config entry.
func FromConfig(ec config.EngineConfig) (Descriptor, error) {
	policy, err := ParseStrataPolicy(ec.Strata)
	if err != nil {
		return Descriptor{}, fmt.Errorf("engine %s: %w", ec.ID, err)
	}
	d := Descriptor{
		ID:        ec.ID,
		Package:   ec.Package,
		Strata:    policy,
		ParamMap:  ec.Params,
		PathParam: ec.PathParam,
	}
	for _, p := range ec.Predicts {
		d.Predicts = append(d.Predicts, PredictType(p))
	}
	return d.clone(), nil
}

// ParamNames returns the mapped framework parameter names in sorted order.
func (d Descriptor) ParamNames() []string {
	names := make([]string, 0, len(d.ParamMap))
	for k := range d.ParamMap {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Builtins returns the descriptors of the engines survkit knows out of the box.
func Builtins() []Descriptor {
	return []Descriptor{
		{
			ID:       "coxph",
			Package:  "survival",
			Strata:   StrataInFormula,
			ParamMap: map[string]string{"ties": "ties", "iter.max": "iter.max"},
			Predicts: []PredictType{PredictCrank, PredictLP, PredictDistr},
		},
		{
			ID:        "coxnet",
			Package:   "glmnet",
			Strata:    StrataArgument,
			ParamMap:  map[string]string{"lambda": "s", "alpha": "alpha", "nlambda": "nlambda", "use_pred_offset": ""},
			Predicts:  []PredictType{PredictCrank, PredictLP, PredictDistr},
			PathParam: "lambda",
		},
		{
			ID:       "rfsrc",
			Package:  "randomForestSRC",
			Strata:   StrataUnsupported,
			ParamMap: map[string]string{"num.trees": "ntree", "mtry": "mtry", "min.node.size": "nodesize"},
			Predicts: []PredictType{PredictCrank, PredictDistr},
		},
		{
			ID:       "ranger",
			Package:  "ranger",
			Strata:   StrataUnsupported,
			ParamMap: map[string]string{"num.trees": "num.trees", "mtry": "mtry", "min.node.size": "min.node.size"},
			Predicts: []PredictType{PredictCrank, PredictDistr},
		},
		{
			ID:        "gbm",
			Package:   "gbm",
			Strata:    StrataUnsupported,
			ParamMap:  map[string]string{"n.trees": "n.trees", "shrinkage": "shrinkage", "interaction.depth": "interaction.depth"},
			Predicts:  []PredictType{PredictCrank, PredictLP},
			PathParam: "n.trees",
		},
		{
			ID:       "flexsurv",
			Package:  "flexsurv",
			Strata:   StrataUnsupported,
			ParamMap: map[string]string{"dist": "dist", "k": "k"},
			Predicts: []PredictType{PredictCrank, PredictLP, PredictDistr},
		},
		{
			ID:        "coxboost",
			Package:   "CoxBoost",
			Strata:    StrataUnsupported,
			ParamMap:  map[string]string{"stepno": "stepno", "penalty": "penalty"},
			Predicts:  []PredictType{PredictCrank, PredictLP, PredictDistr},
			PathParam: "stepno",
		},
	}
}
