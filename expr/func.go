package expr

import (
	"math"
	"sort"
	"strings"
)

// ============================================================
// Func: named function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
}

// builtin describes one elementary function: its float implementation and
// its derivative with respect to its own argument.
type builtin struct {
	eval  func(float64) float64
	outer func(arg Expr) Expr
}

var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"sin":  {math.Sin, func(u Expr) Expr { return CosOf(u) }},
		"cos":  {math.Cos, func(u Expr) Expr { return MulOf(N(-1), SinOf(u)) }},
		"tan":  {math.Tan, func(u Expr) Expr { return AddOf(N(1), PowOf(TanOf(u), N(2))) }},
		"exp":  {math.Exp, func(u Expr) Expr { return ExpOf(u) }},
		"ln":   {math.Log, func(u Expr) Expr { return PowOf(u, N(-1)) }},
		"abs":  {math.Abs, func(u Expr) Expr { return SignOf(u) }},
		"sign": {sign, func(Expr) Expr { return N(0) }},
		"asin": {math.Asin, func(u Expr) Expr {
			return PowOf(AddOf(N(1), MulOf(N(-1), PowOf(u, N(2)))), F(-1, 2))
		}},
		"acos": {math.Acos, func(u Expr) Expr {
			return MulOf(N(-1), PowOf(AddOf(N(1), MulOf(N(-1), PowOf(u, N(2)))), F(-1, 2)))
		}},
		"atan": {math.Atan, func(u Expr) Expr { return PowOf(AddOf(N(1), PowOf(u, N(2))), N(-1)) }},
		"sinh": {math.Sinh, func(u Expr) Expr { return CoshOf(u) }},
		"cosh": {math.Cosh, func(u Expr) Expr { return SinhOf(u) }},
		"tanh": {math.Tanh, func(u Expr) Expr { return AddOf(N(1), MulOf(N(-1), PowOf(TanhOf(u), N(2)))) }},
	}
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// IsBuiltin reports whether name is a function the kernel can apply.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// Builtins returns the names of all known functions in sorted order.
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr  { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr  { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr  { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr  { return funcOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr   { return funcOf("ln", arg).Simplify() }
func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }
func AbsOf(arg Expr) Expr  { return funcOf("abs", arg).Simplify() }
func SignOf(arg Expr) Expr { return funcOf("sign", arg).Simplify() }
func SinhOf(arg Expr) Expr { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr { return funcOf("tanh", arg).Simplify() }

// Apply builds name(arg) for any builtin name. ok is false for unknown names.
func Apply(name string, arg Expr) (Expr, bool) {
	if !IsBuiltin(name) {
		return nil, false
	}
	return funcOf(name, arg).Simplify(), true
}

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	keep := &Func{name: f.name, arg: arg}
	if n, ok := arg.(*Num); ok {
		if def, known := builtins[f.name]; known {
			return foldFloat(def.eval(n.Float64()), keep)
		}
	}
	switch f.name {
	case "ln":
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "exp":
		if inner, ok := arg.(*Func); ok && inner.name == "ln" {
			return inner.arg
		}
	case "abs":
		if m, ok := arg.(*Mul); ok {
			if coeff, ok2 := m.factors[0].(*Num); ok2 && coeff.IsNegOne() {
				return AbsOf(MulOf(m.factors[1:]...))
			}
		}
	}
	return keep
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

// Diff applies the chain rule through the function's outer derivative.
func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	if n, ok := du.(*Num); ok && n.IsZero() {
		return N(0)
	}
	return MulOf(builtins[f.name].outer(f.arg), du)
}

func (f *Func) Eval(env Env) (float64, error) {
	v, err := f.arg.Eval(env)
	if err != nil {
		return 0, err
	}
	return finite(builtins[f.name].eval(v), f)
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) exprType() string { return "func" }
func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }

// ============================================================
// Deriv: derivative of an unknown function
// ============================================================

// Deriv is the order-th derivative of the unknown function fn with respect
// to wrt. Order 0 is the function itself.
//
// A Deriv has no numeric value; it must be replaced (see SubstituteFunc)
// before the tree can be evaluated.
type Deriv struct {
	fn    string
	wrt   string
	order int
}

func D(fn, wrt string, order int) *Deriv {
	if order < 0 {
		panic("expr: negative derivative order")
	}
	return &Deriv{fn: fn, wrt: wrt, order: order}
}

func (d *Deriv) Simplify() Expr        { return d }
func (d *Deriv) Sub(string, Expr) Expr { return d }
func (d *Deriv) exprType() string      { return "deriv" }
func (d *Deriv) Fn() string            { return d.fn }
func (d *Deriv) Wrt() string           { return d.wrt }
func (d *Deriv) Order() int            { return d.order }

// String uses prime notation: y(x), y', y'', y'''. Order 0 keeps the
// argument so it never prints like a plain symbol.
func (d *Deriv) String() string {
	if d.order == 0 {
		return d.fn + "(" + d.wrt + ")"
	}
	return d.fn + strings.Repeat("'", d.order)
}

func (d *Deriv) Diff(varName string) Expr {
	if varName != d.wrt {
		return N(0)
	}
	return D(d.fn, d.wrt, d.order+1)
}

func (d *Deriv) Eval(Env) (float64, error) {
	return 0, unbound(d.String())
}

func (d *Deriv) Equal(other Expr) bool {
	o, ok := other.(*Deriv)
	return ok && d.fn == o.fn && d.wrt == o.wrt && d.order == o.order
}
