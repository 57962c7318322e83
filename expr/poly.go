package expr

// ============================================================
// Polynomial utilities
// ============================================================
//
// The helpers below treat an expression as a polynomial in one atom. The
// atom may be a symbol or any other subtree, such as a Deriv node, so
// y'' + 3*x*y' can be read as a polynomial in y' with coefficient 3*x.

// atomDegree is the power of atom carried by a single factor: 1 for the atom
// itself, k for atom^k with integer k, 0 otherwise.
func atomDegree(f, atom Expr) int {
	if f.Equal(atom) {
		return 1
	}
	if p, ok := f.(*Pow); ok && p.base.Equal(atom) {
		if n, ok2 := p.exp.(*Num); ok2 && n.IsInteger() {
			return int(n.val.Num().Int64())
		}
	}
	return 0
}

// Degree returns the highest power of atom in the expanded form of e.
// Negative powers count as coefficients.
func Degree(e, atom Expr) int {
	maxDeg := 0
	for deg := range PolyCoeffs(e, atom) {
		if deg > maxDeg {
			maxDeg = deg
		}
	}
	return maxDeg
}

type PolyCoeffsResult map[int]Expr

// PolyCoeffs expands e and groups its terms by their power of atom.
func PolyCoeffs(e, atom Expr) PolyCoeffsResult {
	result := PolyCoeffsResult{}
	expanded := Expand(e)
	if add, ok := expanded.(*Add); ok {
		for _, t := range add.terms {
			extractCoeff(t, atom, result)
		}
	} else {
		extractCoeff(expanded, atom, result)
	}
	return result
}

// Coeff returns the coefficient of atom^n in e, or 0.
func Coeff(e, atom Expr, n int) Expr {
	if c, ok := PolyCoeffs(e, atom)[n]; ok {
		return c
	}
	return N(0)
}

func extractCoeff(term, atom Expr, out PolyCoeffsResult) {
	m, ok := term.(*Mul)
	if !ok {
		if d := atomDegree(term, atom); d > 0 {
			addCoeff(out, d, N(1))
		} else {
			addCoeff(out, 0, term)
		}
		return
	}
	deg := 0
	coeffFactors := []Expr{}
	for _, f := range m.factors {
		if d := atomDegree(f, atom); d > 0 {
			deg += d
		} else {
			coeffFactors = append(coeffFactors, f)
		}
	}
	addCoeff(out, deg, MulOf(coeffFactors...))
}

func addCoeff(out PolyCoeffsResult, deg int, val Expr) {
	if existing, ok := out[deg]; ok {
		out[deg] = AddOf(existing, val)
	} else {
		out[deg] = val.Simplify()
	}
}
