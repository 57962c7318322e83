package expr

// ============================================================
// Top-level helpers
// ============================================================

func Sub(e Expr, varName string, value Expr) Expr {
	return e.Sub(varName, value).Simplify()
}

func Diff(e Expr, varName string) Expr {
	return e.Diff(varName).Simplify()
}

func DiffN(e Expr, varName string, n int) Expr {
	result := e
	for i := 0; i < n; i++ {
		result = Diff(result, varName)
	}
	return result
}

// ============================================================
// Tree traversal
// ============================================================

func children(e Expr) []Expr {
	switch v := e.(type) {
	case *Add:
		return v.terms
	case *Mul:
		return v.factors
	case *Pow:
		return []Expr{v.base, v.exp}
	case *Func:
		return []Expr{v.arg}
	}
	return nil
}

// Any reports whether pred holds for e or any node below it, visiting
// parents before children.
func Any(e Expr, pred func(Expr) bool) bool {
	if pred(e) {
		return true
	}
	for _, c := range children(e) {
		if Any(c, pred) {
			return true
		}
	}
	return false
}

// Has reports whether target occurs as a subtree of e.
func Has(e, target Expr) bool {
	return Any(e, func(n Expr) bool { return n.Equal(target) })
}

// HasFunc reports whether e mentions the unknown function fn or any of its
// derivatives.
func HasFunc(e Expr, fn string) bool {
	return Any(e, func(n Expr) bool {
		d, ok := n.(*Deriv)
		return ok && d.fn == fn
	})
}

// Derivs returns the distinct derivative orders of fn that appear in e.
func Derivs(e Expr, fn string) map[int]*Deriv {
	out := map[int]*Deriv{}
	Any(e, func(n Expr) bool {
		if d, ok := n.(*Deriv); ok && d.fn == fn {
			out[d.order] = d
		}
		return false
	})
	return out
}

// SubstituteFunc replaces every derivative of fn in e with the matching
// derivative of value. fn(x) becomes value, fn' becomes d(value)/dx, and so on.
func SubstituteFunc(e Expr, fn string, value Expr) Expr {
	cache := map[int]Expr{}
	var walk func(Expr) Expr
	walk = func(e Expr) Expr {
		switch v := e.(type) {
		case *Deriv:
			if v.fn != fn {
				return v
			}
			if r, ok := cache[v.order]; ok {
				return r
			}
			r := DiffN(value, v.wrt, v.order)
			cache[v.order] = r
			return r
		case *Add:
			terms := make([]Expr, len(v.terms))
			for i, t := range v.terms {
				terms[i] = walk(t)
			}
			return AddOf(terms...)
		case *Mul:
			factors := make([]Expr, len(v.factors))
			for i, f := range v.factors {
				factors[i] = walk(f)
			}
			return MulOf(factors...)
		case *Pow:
			return PowOf(walk(v.base), walk(v.exp))
		case *Func:
			return funcOf(v.name, walk(v.arg)).Simplify()
		}
		return e
	}
	return walk(e)
}

// ============================================================
// Expansion
// ============================================================

func Expand(e Expr) Expr { return expandExpr(e).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		acc := Expr(N(1))
		for _, f := range v.factors {
			acc = distribute(acc, expandExpr(f))
		}
		return acc
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			terms[i] = expandExpr(t)
		}
		return AddOf(terms...)
	case *Pow:
		base := expandExpr(v.base)
		if n, ok := v.exp.(*Num); ok && n.IsInteger() {
			if _, isSum := base.(*Add); isSum {
				k := n.val.Num().Int64()
				if k >= 2 && k <= 10 {
					acc := Expr(N(1))
					for i := int64(0); i < k; i++ {
						acc = distribute(acc, base)
					}
					return acc
				}
			}
		}
		return PowOf(base, expandExpr(v.exp))
	case *Func:
		return funcOf(v.name, expandExpr(v.arg)).Simplify()
	}
	return e
}

// distribute multiplies two expanded expressions term by term.
func distribute(a, b Expr) Expr {
	at, bt := addends(a), addends(b)
	terms := make([]Expr, 0, len(at)*len(bt))
	for _, x := range at {
		for _, y := range bt {
			terms = append(terms, MulOf(x, y))
		}
	}
	return AddOf(terms...)
}

func addends(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// ============================================================
// Free Symbols
// ============================================================

// FreeSymbols returns the names of all plain symbols in e. Derivative nodes
// are not symbols and are not reported.
func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	Any(e, func(n Expr) bool {
		if s, ok := n.(*Sym); ok {
			result[s.name] = struct{}{}
		}
		return false
	})
	return result
}
