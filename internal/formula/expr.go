// Package formula models survival-model formulas such as
// `Surv(time, status) ~ age + sex * trt + strata(site)` as an immutable
// expression tree, and provides the rewrites engines need before fitting:
// stripping top-level strata() terms and rejecting strata() placed where it
// cannot be extracted.
package formula

import "strings"

// Expr is a node of the right-hand side of a formula.
// The set of implementations is closed: Var, Strata, Add, Mul and Intercept.
type Expr interface {
	String() string
	expr()
}

// Var is a plain variable reference.
type Var struct {
	Name string
}

// Strata marks a variable whose levels define separate baseline hazards.
type Strata struct {
	Name string
}

// Add is the additive combination `Left + Right`.
type Add struct {
	Left, Right Expr
}

// MulOp distinguishes crossing (`a * b`, main effects plus interaction) from
// a pure interaction (`a:b`). Rewrites treat both alike; printing keeps them apart.
type MulOp int

const (
	Cross MulOp = iota
	Interact
)

// Mul is the multiplicative combination of Left and Right. The zero Op is Cross.
type Mul struct {
	Left, Right Expr
	Op          MulOp
}

// Intercept is the empty additive identity, printed as `1`.
// It is what remains after every term of a sum has been removed.
type Intercept struct{}

func (Var) expr()       {}
func (Strata) expr()    {}
func (Add) expr()       {}
func (Mul) expr()       {}
func (Intercept) expr() {}

func (v Var) String() string     { return v.Name }
func (s Strata) String() string  { return "strata(" + s.Name + ")" }
func (Intercept) String() string { return "1" }
func (a Add) String() string     { return a.Left.String() + " + " + a.Right.String() }

func (m Mul) String() string {
	if m.Op == Interact {
		return factorString(m.Left, Interact) + ":" + factorString(m.Right, Interact)
	}
	return factorString(m.Left, Cross) + " * " + factorString(m.Right, Cross)
}

// factorString parenthesises operands that bind looser than op: sums always,
// and crossings under `:`.
func factorString(e Expr, op MulOp) string {
	switch n := e.(type) {
	case Add:
		return "(" + e.String() + ")"
	case Mul:
		if op == Interact && n.Op == Cross {
			return "(" + e.String() + ")"
		}
	}
	return e.String()
}

// Response is the survival outcome `Surv(time, status)`.
type Response struct {
	Time   string
	Status string
}

func (r Response) String() string {
	return "Surv(" + r.Time + ", " + r.Status + ")"
}

// Formula is a full model formula. Response is nil for one-sided formulas.
type Formula struct {
	Response *Response
	RHS      Expr
}

func (f Formula) String() string {
	var sb strings.Builder
	if f.Response != nil {
		sb.WriteString(f.Response.String())
		sb.WriteString(" ~ ")
	}
	if f.RHS == nil {
		sb.WriteString(Intercept{}.String())
	} else {
		sb.WriteString(f.RHS.String())
	}
	return sb.String()
}

// MarshalText renders the formula in its textual form.
func (f Formula) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// WithRHS returns a copy of f with its right-hand side replaced.
func (f Formula) WithRHS(rhs Expr) Formula {
	out := Formula{RHS: rhs}
	if f.Response != nil {
		r := *f.Response
		out.Response = &r
	}
	return out
}

// Equal reports whether two expressions are structurally identical.
func Equal(a, b Expr) bool {
	switch x := a.(type) {
	case Var:
		y, ok := b.(Var)
		return ok && x.Name == y.Name
	case Strata:
		y, ok := b.(Strata)
		return ok && x.Name == y.Name
	case Intercept:
		_, ok := b.(Intercept)
		return ok
	case Add:
		y, ok := b.(Add)
		return ok && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case Mul:
		y, ok := b.(Mul)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case nil:
		return b == nil
	default:
		return false
	}
}

// Sum folds terms left to right into nested Add nodes.
// An empty list yields Intercept.
func Sum(terms ...Expr) Expr {
	if len(terms) == 0 {
		return Intercept{}
	}
	out := terms[0]
	for _, t := range terms[1:] {
		out = Add{Left: out, Right: t}
	}
	return out
}
