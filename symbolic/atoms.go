package symbolic

import (
	"fmt"
	"math"
	"math/big"
	"math/cmplx"
	"sort"
	"strings"
)

// atom is an indivisible factor of a monomial.
type atom interface {
	key() string
	latex() string
	subst(name string, value Expr) Expr
	conj() Expr
	deriv(name string) Expr
	eval(env map[string]complex128) (complex128, error)
	toJSON() map[string]interface{}
	symbols(out map[string]struct{})
}

// ============================================================
// Symbols
// ============================================================

type symbolAtom struct{ name string }

var greek = map[string]string{
	"alpha": `\alpha`, "beta": `\beta`, "gamma": `\gamma`, "delta": `\delta`,
	"theta": `\theta`, "phi": `\phi`, "psi": `\psi`, "omega": `\omega`,
	"hbar": `\hbar`, "pi": `\pi`,
}

func (s symbolAtom) key() string { return s.name }

func (s symbolAtom) latex() string {
	if g, ok := greek[s.name]; ok {
		return g
	}
	return s.name
}

func (s symbolAtom) subst(name string, value Expr) Expr {
	if s.name == name {
		return value
	}
	return atomExpr(s)
}

func (s symbolAtom) conj() Expr { return atomExpr(s) }

func (s symbolAtom) deriv(name string) Expr {
	if s.name == name {
		return N(1)
	}
	return Expr{}
}

func (s symbolAtom) eval(env map[string]complex128) (complex128, error) {
	if v, ok := env[s.name]; ok {
		return v, nil
	}
	if s.name == "pi" {
		return complex(math.Pi, 0), nil
	}
	return 0, fmt.Errorf("symbolic: unbound symbol %q", s.name)
}

func (s symbolAtom) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}

func (s symbolAtom) symbols(out map[string]struct{}) {
	if s.name != "pi" {
		out[s.name] = struct{}{}
	}
}

// ============================================================
// Half-angle trig atoms
// ============================================================

// trigAtom is cos(sym/2) or sin(sym/2).
type trigAtom struct {
	sym string
	sin bool
}

func (t trigAtom) fn() string {
	if t.sin {
		return "sin"
	}
	return "cos"
}

func (t trigAtom) key() string { return t.fn() + "(" + t.sym + "/2)" }

func (t trigAtom) latex() string {
	return fmt.Sprintf(`\%s{\left(\frac{%s}{2} \right)}`, t.fn(), symbolAtom{t.sym}.latex())
}

func (t trigAtom) half(value Expr) Expr { return value.Mul(F(1, 2)) }

func (t trigAtom) subst(name string, value Expr) Expr {
	if t.sym != name {
		return atomExpr(t)
	}
	if t.sin {
		return Sin(t.half(value))
	}
	return Cos(t.half(value))
}

func (t trigAtom) conj() Expr { return atomExpr(t) }

func (t trigAtom) deriv(name string) Expr {
	if t.sym != name {
		return Expr{}
	}
	if t.sin {
		return atomExpr(trigAtom{sym: t.sym}).Mul(F(1, 2))
	}
	return atomExpr(trigAtom{sym: t.sym, sin: true}).Mul(F(-1, 2))
}

func (t trigAtom) eval(env map[string]complex128) (complex128, error) {
	x, err := symbolAtom{t.sym}.eval(env)
	if err != nil {
		return 0, err
	}
	if t.sin {
		return cmplx.Sin(x / 2), nil
	}
	return cmplx.Cos(x / 2), nil
}

func (t trigAtom) toJSON() map[string]interface{} {
	arg := F(1, 2).Mul(S(t.sym))
	return map[string]interface{}{"type": "func", "name": t.fn(), "arg": toJSONValue(arg)}
}

func (t trigAtom) symbols(out map[string]struct{}) { out[t.sym] = struct{}{} }

// ============================================================
// Phases
// ============================================================

// phaseAtom is exp(I*sum(qs[i]*syms[i])) with syms sorted and every q non-zero.
type phaseAtom struct {
	syms []string
	qs   []*big.Rat
	k    string
}

func newPhase(form map[string]*big.Rat) (phaseAtom, bool) {
	var p phaseAtom
	for s, q := range form {
		if q.Sign() != 0 {
			p.syms = append(p.syms, s)
		}
	}
	if len(p.syms) == 0 {
		return phaseAtom{}, false
	}
	sort.Strings(p.syms)
	for _, s := range p.syms {
		p.qs = append(p.qs, new(big.Rat).Set(form[s]))
	}
	p.k = "exp(" + p.exponent().String() + ")"
	return p, true
}

// form returns sum(qs[i]*syms[i]).
func (p phaseAtom) form() Expr {
	terms := make([]Expr, len(p.syms))
	for i, s := range p.syms {
		terms[i] = S(s).Mul(Rat(p.qs[i]))
	}
	return AddOf(terms...)
}

func (p phaseAtom) exponent() Expr { return I().Mul(p.form()) }

func (p phaseAtom) negate() phaseAtom {
	form := map[string]*big.Rat{}
	for i, s := range p.syms {
		form[s] = new(big.Rat).Neg(p.qs[i])
	}
	n, _ := newPhase(form)
	return n
}

func (p phaseAtom) key() string { return p.k }

func (p phaseAtom) latex() string { return "e^{" + p.exponent().LaTeX() + "}" }

func (p phaseAtom) subst(name string, value Expr) Expr {
	found := false
	for _, s := range p.syms {
		if s == name {
			found = true
		}
	}
	if !found {
		return atomExpr(p)
	}
	return Exp(p.exponent().Subs(name, value))
}

func (p phaseAtom) conj() Expr { return atomExpr(p.negate()) }

func (p phaseAtom) deriv(name string) Expr {
	for i, s := range p.syms {
		if s == name {
			return I().Mul(Rat(p.qs[i])).Mul(atomExpr(p))
		}
	}
	return Expr{}
}

func (p phaseAtom) eval(env map[string]complex128) (complex128, error) {
	var arg complex128
	for i, s := range p.syms {
		x, err := symbolAtom{s}.eval(env)
		if err != nil {
			return 0, err
		}
		q, _ := p.qs[i].Float64()
		arg += complex(q, 0) * x
	}
	return cmplx.Exp(1i * arg), nil
}

func (p phaseAtom) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": "exp", "arg": toJSONValue(p.exponent())}
}

func (p phaseAtom) symbols(out map[string]struct{}) {
	for _, s := range p.syms {
		out[s] = struct{}{}
	}
}

// ============================================================
// Square roots
// ============================================================

type sqrtAtom struct {
	arg Expr
	k   string
}

func newSqrt(arg Expr) sqrtAtom { return sqrtAtom{arg: arg, k: "sqrt(" + arg.String() + ")"} }

func (s sqrtAtom) key() string { return s.k }

func (s sqrtAtom) latex() string { return `\sqrt{` + s.arg.LaTeX() + "}" }

func (s sqrtAtom) subst(name string, value Expr) Expr { return Sqrt(s.arg.Subs(name, value)) }

func (s sqrtAtom) conj() Expr { return Sqrt(s.arg.Conj()) }

func (s sqrtAtom) deriv(name string) Expr {
	d := s.arg.Diff(name)
	if d.IsZero() {
		return Expr{}
	}
	return d.Mul(F(1, 2)).Mul(atomPow(s, -1))
}

func (s sqrtAtom) eval(env map[string]complex128) (complex128, error) {
	x, err := s.arg.Eval(env)
	if err != nil {
		return 0, err
	}
	return cmplx.Sqrt(x), nil
}

func (s sqrtAtom) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": "sqrt", "arg": toJSONValue(s.arg)}
}

func (s sqrtAtom) symbols(out map[string]struct{}) {
	for k := range s.arg.FreeSymbols() {
		out[k] = struct{}{}
	}
}

// ============================================================
// Opaque functions
// ============================================================

type funcAtom struct {
	name string
	args []Expr
	k    string
}

func opaque(name string, args ...Expr) Expr {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return atomExpr(funcAtom{name: name, args: args, k: name + "(" + strings.Join(parts, ", ") + ")"})
}

// Func applies the named function. cos, sin, exp, sqrt and KroneckerDelta
// are evaluated where possible; other names stay unevaluated.
func Func(name string, args ...Expr) Expr {
	if len(args) == 1 {
		switch name {
		case "cos":
			return Cos(args[0])
		case "sin":
			return Sin(args[0])
		case "exp":
			return Exp(args[0])
		case "sqrt":
			return Sqrt(args[0])
		}
	}
	if name == "KroneckerDelta" && len(args) == 2 {
		return KroneckerDelta(args[0], args[1])
	}
	return opaque(name, args...)
}

// KroneckerDelta is 1 when a equals b, 0 when a-b is a non-zero number and
// unevaluated otherwise.
func KroneckerDelta(a, b Expr) Expr {
	d := a.Sub(b)
	if d.IsZero() {
		return N(1)
	}
	if d.IsNumber() {
		return Expr{}
	}
	if b.String() < a.String() {
		a, b = b, a
	}
	return opaque("KroneckerDelta", a, b)
}

func (f funcAtom) key() string { return f.k }

func (f funcAtom) latex() string {
	parts := make([]string, len(f.args))
	for i, a := range f.args {
		parts[i] = a.LaTeX()
	}
	inner := strings.Join(parts, ", ")
	switch f.name {
	case "cos", "sin", "exp":
		return `\` + f.name + `\left(` + inner + `\right)`
	case "KroneckerDelta":
		return `\delta_{` + inner + "}"
	}
	return `\operatorname{` + f.name + `}\left(` + inner + `\right)`
}

func (f funcAtom) mapArgs(fn func(Expr) Expr) []Expr {
	out := make([]Expr, len(f.args))
	for i, a := range f.args {
		out[i] = fn(a)
	}
	return out
}

func (f funcAtom) subst(name string, value Expr) Expr {
	args := f.mapArgs(func(a Expr) Expr { return a.Subs(name, value) })
	if f.name == "pow" && len(args) == 2 {
		if n, ok := args[1].AsRat(); ok && n.IsInt() {
			return args[0].Pow(int(n.Num().Int64()))
		}
	}
	return Func(f.name, args...)
}

func (f funcAtom) conj() Expr {
	switch f.name {
	case "cos", "sin", "exp", "KroneckerDelta", "pow":
		return Func(f.name, f.mapArgs(Expr.Conj)...)
	}
	return opaque("conjugate", atomExpr(f))
}

func (f funcAtom) deriv(name string) Expr {
	free := false
	for _, a := range f.args {
		if _, ok := a.FreeSymbols()[name]; ok {
			free = true
		}
	}
	if !free {
		return Expr{}
	}
	if len(f.args) == 1 {
		u := f.args[0]
		du := u.Diff(name)
		switch f.name {
		case "cos":
			return Sin(u).Neg().Mul(du)
		case "sin":
			return Cos(u).Mul(du)
		case "exp":
			return Exp(u).Mul(du)
		}
	}
	if f.name == "pow" && len(f.args) == 2 {
		if n, ok := f.args[1].AsRat(); ok {
			return f.args[1].Mul(opaque("pow", f.args[0], Rat(new(big.Rat).Sub(n, big.NewRat(1, 1))))).Mul(f.args[0].Diff(name))
		}
	}
	return opaque("Derivative", atomExpr(f), S(name))
}

func (f funcAtom) eval(env map[string]complex128) (complex128, error) {
	vals := make([]complex128, len(f.args))
	for i, a := range f.args {
		v, err := a.Eval(env)
		if err != nil {
			return 0, err
		}
		vals[i] = v
	}
	switch {
	case f.name == "cos" && len(vals) == 1:
		return cmplx.Cos(vals[0]), nil
	case f.name == "sin" && len(vals) == 1:
		return cmplx.Sin(vals[0]), nil
	case f.name == "exp" && len(vals) == 1:
		return cmplx.Exp(vals[0]), nil
	case f.name == "pow" && len(vals) == 2:
		return cmplx.Pow(vals[0], vals[1]), nil
	case f.name == "conjugate" && len(vals) == 1:
		return cmplx.Conj(vals[0]), nil
	case f.name == "KroneckerDelta" && len(vals) == 2:
		if cmplx.Abs(vals[0]-vals[1]) < 1e-12 {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("symbolic: cannot evaluate %s", f.k)
}

func (f funcAtom) toJSON() map[string]interface{} {
	if f.name == "pow" && len(f.args) == 2 {
		return map[string]interface{}{"type": "pow", "base": toJSONValue(f.args[0]), "exp": toJSONValue(f.args[1])}
	}
	if len(f.args) == 1 {
		return map[string]interface{}{"type": "func", "name": f.name, "arg": toJSONValue(f.args[0])}
	}
	args := make([]interface{}, len(f.args))
	for i, a := range f.args {
		args[i] = toJSONValue(a)
	}
	return map[string]interface{}{"type": "func", "name": f.name, "args": args}
}

func (f funcAtom) symbols(out map[string]struct{}) {
	for _, a := range f.args {
		for k := range a.FreeSymbols() {
			out[k] = struct{}{}
		}
	}
}
