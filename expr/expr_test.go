package expr_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/njchilds90/diffeq/expr"
)

// ============================================================
// Num tests
// ============================================================

func TestNum_Integer(t *testing.T) {
	n := expr.N(42)
	if n.String() != "42" {
		t.Errorf("want 42, got %s", n.String())
	}
}

func TestNum_Rational(t *testing.T) {
	n := expr.F(1, 3)
	if n.String() != "1/3" {
		t.Errorf("want 1/3, got %s", n.String())
	}
}

func TestNum_FloatPrintsShortest(t *testing.T) {
	n := expr.NFloat(0.1)
	if n.String() != "0.1" {
		t.Errorf("want 0.1, got %s", n.String())
	}
}

func TestNum_Diff_IsZero(t *testing.T) {
	result := expr.N(5).Diff("x")
	if result.String() != "0" {
		t.Errorf("d/dx(5) should be 0, got %s", result)
	}
}

func TestNum_Eval(t *testing.T) {
	v, err := expr.N(7).Eval(nil)
	if err != nil || v != 7 {
		t.Errorf("Num.Eval() should return 7, got %v (%v)", v, err)
	}
}

// ============================================================
// Sym tests
// ============================================================

func TestSym_Sub_Match(t *testing.T) {
	result := expr.S("x").Sub("x", expr.N(3))
	if result.String() != "3" {
		t.Errorf("want 3, got %s", result)
	}
}

func TestSym_Sub_NoMatch(t *testing.T) {
	result := expr.S("x").Sub("y", expr.N(3))
	if result.String() != "x" {
		t.Errorf("want x, got %s", result)
	}
}

func TestSym_Diff(t *testing.T) {
	if got := expr.S("x").Diff("x").String(); got != "1" {
		t.Errorf("d/dx(x) should be 1, got %s", got)
	}
	if got := expr.S("z").Diff("x").String(); got != "0" {
		t.Errorf("d/dx(z) should be 0, got %s", got)
	}
}

func TestSym_Eval_Unbound(t *testing.T) {
	_, err := expr.S("z").Eval(expr.Env{"x": 1})
	if !errors.Is(err, expr.ErrUnbound) {
		t.Errorf("want ErrUnbound, got %v", err)
	}
}

// ============================================================
// Add tests
// ============================================================

func TestAdd_Simple(t *testing.T) {
	e := expr.AddOf(expr.S("x"), expr.N(3))
	if e.String() != "x + 3" {
		t.Errorf("want 'x + 3', got %s", e)
	}
}

func TestAdd_CollapseToZero(t *testing.T) {
	e := expr.AddOf(expr.N(1), expr.N(-1))
	if e.String() != "0" {
		t.Errorf("want 0, got %s", e)
	}
}

func TestAdd_LikeTerms(t *testing.T) {
	e := expr.AddOf(expr.S("x"), expr.S("x"))
	if e.String() != "2*x" {
		t.Errorf("want '2*x', got %s", e)
	}
}

func TestAdd_LikeTermsCancel(t *testing.T) {
	x := expr.S("x")
	e := expr.AddOf(expr.MulOf(expr.N(3), x), expr.MulOf(expr.N(-3), x))
	if e.String() != "0" {
		t.Errorf("3x - 3x should be 0, got %s", e)
	}
}

func TestAdd_NegativeTermsPrintWithMinus(t *testing.T) {
	e := expr.AddOf(expr.S("x"), expr.MulOf(expr.N(-3), expr.S("y")), expr.N(-1))
	if e.String() != "x - 3*y - 1" {
		t.Errorf("want 'x - 3*y - 1', got %s", e)
	}
}

func TestAdd_SingleTerm(t *testing.T) {
	e := expr.AddOf(expr.N(5))
	if e.String() != "5" {
		t.Errorf("single-term Add should unwrap, got %s", e)
	}
}

// ============================================================
// Mul tests
// ============================================================

func TestMul_Simple(t *testing.T) {
	e := expr.MulOf(expr.N(3), expr.S("x"))
	if e.String() != "3*x" {
		t.Errorf("want '3*x', got %s", e)
	}
}

func TestMul_ZeroCollapse(t *testing.T) {
	e := expr.MulOf(expr.N(0), expr.S("x"))
	if e.String() != "0" {
		t.Errorf("0*x should be 0, got %s", e)
	}
}

func TestMul_OneElide(t *testing.T) {
	e := expr.MulOf(expr.N(1), expr.S("x"))
	if e.String() != "x" {
		t.Errorf("1*x should be x, got %s", e)
	}
}

func TestMul_RepeatedFactorBecomesPower(t *testing.T) {
	x := expr.S("x")
	e := expr.MulOf(x, x)
	if e.String() != "x^2" {
		t.Errorf("x*x should be x^2, got %s", e)
	}
}

func TestMul_ReciprocalCancels(t *testing.T) {
	x := expr.S("x")
	e := expr.MulOf(x, expr.PowOf(x, expr.N(-1)))
	if e.String() != "1" {
		t.Errorf("x * x^-1 should be 1, got %s", e)
	}
}

func TestMul_NumberDistributesOverSum(t *testing.T) {
	x, y := expr.S("x"), expr.S("y")
	e := expr.MulOf(expr.N(-1), expr.AddOf(x, y))
	if e.String() != "-x - y" {
		t.Errorf("want '-x - y', got %s", e)
	}
	if got := expr.MulOf(x, expr.AddOf(x, y)).String(); got != "x*(x + y)" {
		t.Errorf("symbolic factors do not distribute, got %s", got)
	}
}

func TestMul_ProductRule(t *testing.T) {
	// d/dx(x * sin(x)) = cos(x)*x + sin(x)
	x := expr.S("x")
	d := expr.Diff(expr.MulOf(x, expr.SinOf(x)), "x")
	if d.String() != "cos(x)*x + sin(x)" {
		t.Errorf("want 'cos(x)*x + sin(x)', got %s", d)
	}
}

// ============================================================
// Pow tests
// ============================================================

func TestPow_Simple(t *testing.T) {
	e := expr.PowOf(expr.S("x"), expr.N(2))
	if e.String() != "x^2" {
		t.Errorf("want x^2, got %s", e)
	}
}

func TestPow_ZeroAndOneExp(t *testing.T) {
	if got := expr.PowOf(expr.S("x"), expr.N(0)).String(); got != "1" {
		t.Errorf("x^0 should be 1, got %s", got)
	}
	if got := expr.PowOf(expr.S("x"), expr.N(1)).String(); got != "x" {
		t.Errorf("x^1 should be x, got %s", got)
	}
}

func TestPow_NumericFold(t *testing.T) {
	e := expr.PowOf(expr.N(2), expr.N(3))
	if e.String() != "8" {
		t.Errorf("2^3 should be 8, got %s", e)
	}
}

func TestPow_IntegerExpDistributesOverProduct(t *testing.T) {
	e := expr.PowOf(expr.MulOf(expr.N(2), expr.S("x")), expr.N(2))
	if e.String() != "4*x^2" {
		t.Errorf("want 4*x^2, got %s", e)
	}
	e = expr.MustParse("1/(2*sqrt(x)) - (1/2)*x^(-1/2)")
	if e.String() != "0" {
		t.Errorf("want 0, got %s", e)
	}
}

func TestPow_FractionalExpKeepsProduct(t *testing.T) {
	e := expr.PowOf(expr.MulOf(expr.N(2), expr.S("x")), expr.MustParse("1/2"))
	if e.String() != "(2*x)^(1/2)" {
		t.Errorf("want (2*x)^(1/2), got %s", e)
	}
}

func TestPow_Diff_PowerRule(t *testing.T) {
	d := expr.Diff(expr.PowOf(expr.S("x"), expr.N(3)), "x")
	if d.String() != "3*x^2" {
		t.Errorf("d/dx(x^3) should be 3*x^2, got %s", d)
	}
}

func TestPow_ZeroToNegativeIsDomainError(t *testing.T) {
	e := expr.PowOf(expr.S("x"), expr.N(-1))
	_, err := e.Eval(expr.Env{"x": 0})
	if !errors.Is(err, expr.ErrDomain) {
		t.Errorf("want ErrDomain, got %v", err)
	}
}

// ============================================================
// Func tests
// ============================================================

func TestFunc_Sin_Diff(t *testing.T) {
	d := expr.Diff(expr.SinOf(expr.S("x")), "x")
	if d.String() != "cos(x)" {
		t.Errorf("d/dx(sin(x)) should be cos(x), got %s", d)
	}
}

func TestFunc_Cos_Diff(t *testing.T) {
	d := expr.Diff(expr.CosOf(expr.S("x")), "x")
	if d.String() != "-sin(x)" {
		t.Errorf("d/dx(cos(x)) should be -sin(x), got %s", d)
	}
}

func TestFunc_Exp_ChainRule(t *testing.T) {
	x := expr.S("x")
	d := expr.Diff(expr.ExpOf(expr.MulOf(expr.N(2), x)), "x")
	if d.String() != "2*exp(2*x)" {
		t.Errorf("d/dx(exp(2x)) should be 2*exp(2*x), got %s", d)
	}
}

func TestFunc_Ln_Diff(t *testing.T) {
	d := expr.Diff(expr.LnOf(expr.S("x")), "x")
	if d.String() != "x^(-1)" {
		t.Errorf("d/dx(ln(x)) should be x^(-1), got %s", d)
	}
}

func TestFunc_NumericFold(t *testing.T) {
	e := expr.SinOf(expr.N(0))
	if e.String() != "0" {
		t.Errorf("sin(0) should fold to 0, got %s", e)
	}
}

func TestFunc_NonFiniteFoldKept(t *testing.T) {
	e := expr.LnOf(expr.N(0))
	if e.String() != "ln(0)" {
		t.Errorf("ln(0) should stay symbolic, got %s", e)
	}
	if _, err := e.Eval(nil); !errors.Is(err, expr.ErrDomain) {
		t.Errorf("ln(0) should be a domain error, got %v", err)
	}
}

func TestFunc_LnExpInverse(t *testing.T) {
	x := expr.S("x")
	if got := expr.LnOf(expr.ExpOf(x)).String(); got != "x" {
		t.Errorf("ln(exp(x)) should be x, got %s", got)
	}
}

// ============================================================
// Deriv tests
// ============================================================

func TestDeriv_String(t *testing.T) {
	cases := map[int]string{0: "y(x)", 1: "y'", 2: "y''", 3: "y'''"}
	for order, want := range cases {
		if got := expr.D("y", "x", order).String(); got != want {
			t.Errorf("order %d: want %s, got %s", order, want, got)
		}
	}
}

func TestDeriv_DiffRaisesOrder(t *testing.T) {
	d := expr.D("y", "x", 1).Diff("x")
	if !d.Equal(expr.D("y", "x", 2)) {
		t.Errorf("d/dx(y') should be y'', got %s", d)
	}
	if got := expr.D("y", "x", 1).Diff("t").String(); got != "0" {
		t.Errorf("d/dt(y') should be 0, got %s", got)
	}
}

func TestDeriv_EvalIsUnbound(t *testing.T) {
	_, err := expr.D("y", "x", 0).Eval(expr.Env{"x": 1})
	if !errors.Is(err, expr.ErrUnbound) {
		t.Errorf("want ErrUnbound, got %v", err)
	}
}

func TestSubstituteFunc(t *testing.T) {
	// y'' + y with y = sin(x) is identically zero.
	x := expr.S("x")
	eq := expr.AddOf(expr.D("y", "x", 2), expr.D("y", "x", 0))
	got := expr.SubstituteFunc(eq, "y", expr.SinOf(x))
	if got.String() != "0" {
		t.Errorf("want 0, got %s", got)
	}
}

func TestSubstituteFunc_InsideFunction(t *testing.T) {
	x := expr.S("x")
	eq := expr.SinOf(expr.D("y", "x", 1))
	got := expr.SubstituteFunc(eq, "y", expr.PowOf(x, expr.N(2)))
	if got.String() != "sin(2*x)" {
		t.Errorf("want sin(2*x), got %s", got)
	}
}

// ============================================================
// Expand / polynomial tests
// ============================================================

func TestExpand_Square(t *testing.T) {
	x := expr.S("x")
	e := expr.Expand(expr.PowOf(expr.AddOf(x, expr.N(1)), expr.N(2)))
	if e.String() != "2*x + x^2 + 1" {
		t.Errorf("want '2*x + x^2 + 1', got %s", e)
	}
}

func TestExpand_Distribution(t *testing.T) {
	x, y := expr.S("x"), expr.S("y")
	e := expr.Expand(expr.MulOf(expr.AddOf(x, y), expr.AddOf(x, expr.MulOf(expr.N(-1), y))))
	if e.String() != "x^2 - y^2" {
		t.Errorf("(x+y)(x-y) should be x^2 - y^2, got %s", e)
	}
}

func TestPolyCoeffs_DerivAtom(t *testing.T) {
	// y'' + 3*x*y' + 2*y read as a polynomial in y'.
	x := expr.S("x")
	yp := expr.D("y", "x", 1)
	e := expr.AddOf(expr.D("y", "x", 2), expr.MulOf(expr.N(3), x, yp), expr.MulOf(expr.N(2), expr.D("y", "x", 0)))
	coeffs := expr.PolyCoeffs(e, yp)
	if got := coeffs[1].String(); got != "3*x" {
		t.Errorf("coefficient of y' should be 3*x, got %s", got)
	}
	if _, ok := coeffs[2]; ok {
		t.Errorf("no y'^2 term expected")
	}
}

func TestCoeff_Missing(t *testing.T) {
	if got := expr.Coeff(expr.S("x"), expr.S("z"), 1).String(); got != "0" {
		t.Errorf("want 0, got %s", got)
	}
}

func TestDegree(t *testing.T) {
	x := expr.S("x")
	yp := expr.D("y", "x", 1)
	if d := expr.Degree(expr.MulOf(x, expr.PowOf(yp, expr.N(2))), yp); d != 2 {
		t.Errorf("want degree 2, got %d", d)
	}
	if d := expr.Degree(expr.N(4), x); d != 0 {
		t.Errorf("want degree 0, got %d", d)
	}
}

func TestFreeSymbols(t *testing.T) {
	e := expr.AddOf(expr.S("x"), expr.MulOf(expr.S("C1"), expr.D("y", "x", 1)))
	syms := expr.FreeSymbols(e)
	if len(syms) != 2 {
		t.Fatalf("want 2 symbols, got %v", syms)
	}
	for _, name := range []string{"x", "C1"} {
		if _, ok := syms[name]; !ok {
			t.Errorf("missing symbol %s", name)
		}
	}
}

func TestHasFunc(t *testing.T) {
	if !expr.HasFunc(expr.SinOf(expr.D("y", "x", 2)), "y") {
		t.Errorf("sin(y'') mentions y")
	}
	if expr.HasFunc(expr.SinOf(expr.S("y")), "y") {
		t.Errorf("plain symbol y is not the unknown function")
	}
}

// ============================================================
// Evaluator tests
// ============================================================

func TestEvaluator(t *testing.T) {
	x := expr.S("x")
	f, err := expr.Evaluator(expr.AddOf(expr.PowOf(x, expr.N(2)), expr.N(1)), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := f(3)
	if err != nil || v != 10 {
		t.Errorf("want 10, got %v (%v)", v, err)
	}
}

func TestEvaluator_ExtraSymbol(t *testing.T) {
	_, err := expr.Evaluator(expr.AddOf(expr.S("x"), expr.S("C")), "x")
	if !errors.Is(err, expr.ErrUnbound) || !strings.Contains(err.Error(), "C") {
		t.Errorf("want ErrUnbound naming C, got %v", err)
	}
}

// ============================================================
// Equality / determinism
// ============================================================

func TestEqual_CrossType(t *testing.T) {
	if expr.N(1).Equal(expr.S("x")) {
		t.Errorf("Num should not equal Sym")
	}
	if !expr.N(2).Equal(expr.F(4, 2)) {
		t.Errorf("2 should equal 4/2")
	}
}

func TestDeterminism(t *testing.T) {
	x, y := expr.S("x"), expr.S("y")
	a := expr.AddOf(expr.MulOf(y, x), expr.SinOf(x), expr.N(2))
	b := expr.AddOf(expr.N(2), expr.SinOf(x), expr.MulOf(x, y))
	if a.String() != b.String() {
		t.Errorf("term order should not matter: %s vs %s", a, b)
	}
}
