package formula

// RemoveStrata strips strata() terms from the additive top level of e.
//
// Sums are walked on both sides; a side reduced to nothing is dropped and the
// other side is returned as is, so `strata(s) + x` and `x + strata(s)` both give
// `x`. A bare strata() term becomes Intercept. Interactions, variables and
// intercepts are returned without being descended into, which leaves a
// strata() nested inside `*` in place for ValidateNoStrata to reject.
//
// The input is never modified. Subtrees without a top-level strata() term are
// shared with the result.
func RemoveStrata(e Expr) Expr {
	out, _ := removeStrata(e)
	if out == nil {
		return Intercept{}
	}
	return out
}

// removeStrata returns the rewritten node, or nil when nothing is left, and
// whether anything was removed.
func removeStrata(e Expr) (Expr, bool) {
	switch n := e.(type) {
	case Strata:
		return nil, true
	case Add:
		left, lchanged := removeStrata(n.Left)
		right, rchanged := removeStrata(n.Right)
		if !lchanged && !rchanged {
			return n, false
		}
		switch {
		case left == nil && right == nil:
			return nil, true
		case left == nil:
			return right, true
		case right == nil:
			return left, true
		}
		return Add{Left: left, Right: right}, true
	default:
		return e, false
	}
}

// StrataVars lists the variables of the strata() terms RemoveStrata would
// remove, in left-to-right order without duplicates.
func StrataVars(e Expr) []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case Strata:
			if !seen[n.Name] {
				seen[n.Name] = true
				out = append(out, n.Name)
			}
		case Add:
			walk(n.Left)
			walk(n.Right)
		}
	}
	walk(e)
	return out
}

// Vars lists every plain variable in e, including those inside interactions,
// in order of first appearance.
func Vars(e Expr) []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case Var:
			if !seen[n.Name] {
				seen[n.Name] = true
				out = append(out, n.Name)
			}
		case Add:
			walk(n.Left)
			walk(n.Right)
		case Mul:
			walk(n.Left)
			walk(n.Right)
		}
	}
	walk(e)
	return out
}
