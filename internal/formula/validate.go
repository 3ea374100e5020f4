package formula

// ValidateNoStrata fails with a *ConfigurationError if a strata() term is
// present anywhere in e, interactions included. It is run on the output of
// RemoveStrata, and on the raw formula for engines that cannot stratify.
func ValidateNoStrata(e Expr) error {
	if s, nested, ok := findStrata(e, false); ok {
		return &ConfigurationError{Var: s.Name, Nested: nested}
	}
	return nil
}

// findStrata returns the first strata() term in a depth-first, left-first walk.
func findStrata(e Expr, inMul bool) (Strata, bool, bool) {
	switch n := e.(type) {
	case Strata:
		return n, inMul, true
	case Add:
		if s, nested, ok := findStrata(n.Left, inMul); ok {
			return s, nested, true
		}
		return findStrata(n.Right, inMul)
	case Mul:
		if s, nested, ok := findStrata(n.Left, true); ok {
			return s, nested, true
		}
		return findStrata(n.Right, true)
	}
	return Strata{}, false, false
}
