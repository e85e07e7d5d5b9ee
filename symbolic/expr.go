// Package symbolic provides the exact expression kernel used by gospin.
//
// Design goals:
//   - Exact arithmetic: rationals, square roots and the imaginary unit (Num)
//   - Canonical normal form, so structural equality is value equality
//   - Half-angle trigonometry and phases folded into the normal form
//   - Stable String/LaTeX output and a JSON tree format for tool calls
package symbolic

import (
	"fmt"
	"math/big"
	"math/cmplx"
	"sort"
	"strconv"
	"strings"
)

// ============================================================
// Expr: canonical sum of terms
// ============================================================

// Expr is a finite sum of terms coeff*monomial kept in canonical order.
// The zero value is 0. Exprs are immutable.
type Expr struct{ terms []term }

type term struct {
	coeff Num
	mono  monomial
}

// monomial is a product of atoms raised to non-zero integer powers, sorted by
// atom key.
type monomial struct {
	factors []factor
	key     string
}

type factor struct {
	a   atom
	pow int
}

func newMonomial(fs []factor) monomial {
	sort.Slice(fs, func(i, j int) bool { return fs[i].a.key() < fs[j].a.key() })
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = f.a.key()
		if f.pow != 1 {
			parts[i] += "^" + strconv.Itoa(f.pow)
		}
	}
	return monomial{factors: fs, key: strings.Join(parts, "*")}
}

// ============================================================
// Constructors
// ============================================================

// N returns the integer n.
func N(n int64) Expr { return FromNum(NumInt(n)) }

// F returns p/q. It panics when q is zero.
func F(p, q int64) Expr { return FromNum(NumFrac(p, q)) }

// Rat returns the rational r.
func Rat(r *big.Rat) Expr { return FromNum(NumRat(r)) }

// I returns the imaginary unit.
func I() Expr { return FromNum(NumI()) }

// FromNum lifts an exact number into an expression.
func FromNum(n Num) Expr {
	if n.IsZero() {
		return Expr{}
	}
	return Expr{terms: []term{{coeff: n, mono: monomial{}}}}
}

// S returns the real symbol name. The name "pi" is the circle constant.
func S(name string) Expr { return atomExpr(symbolAtom{name: name}) }

// Pi returns the circle constant.
func Pi() Expr { return S("pi") }

func atomExpr(a atom) Expr { return atomPow(a, 1) }

func atomPow(a atom, pow int) Expr { return build(NumInt(1), []factor{{a: a, pow: pow}}) }

// ============================================================
// Accumulation
// ============================================================

type accum struct {
	idx   map[string]int
	terms []term
}

func newAccum() *accum { return &accum{idx: map[string]int{}} }

func (a *accum) add(t term) {
	if t.coeff.IsZero() {
		return
	}
	if i, ok := a.idx[t.mono.key]; ok {
		a.terms[i].coeff = a.terms[i].coeff.Add(t.coeff)
		return
	}
	a.idx[t.mono.key] = len(a.terms)
	a.terms = append(a.terms, t)
}

func (a *accum) expr() Expr {
	out := make([]term, 0, len(a.terms))
	for _, t := range a.terms {
		if !t.coeff.IsZero() {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return termLess(out[i], out[j]) })
	return Expr{terms: out}
}

// termLess orders terms by monomial key with the constant term last.
func termLess(x, y term) bool {
	xc, yc := len(x.mono.factors) == 0, len(y.mono.factors) == 0
	if xc != yc {
		return yc
	}
	return x.mono.key < y.mono.key
}

// ============================================================
// Canonicalisation of products
// ============================================================

// build canonicalises coeff * prod(factors). Phases merge into one atom,
// sin(x/2)^2 becomes 1 - cos(x/2)^2 and sqrt(E)^2 becomes E.
func build(c Num, fs []factor) Expr {
	if c.IsZero() {
		return Expr{}
	}
	type slot struct {
		a   atom
		pow int
	}
	merged := map[string]*slot{}
	order := []string{}
	phase := map[string]*big.Rat{}
	for _, f := range fs {
		if p, ok := f.a.(phaseAtom); ok {
			for i, s := range p.syms {
				q := new(big.Rat).Mul(p.qs[i], big.NewRat(int64(f.pow), 1))
				if prev, ok := phase[s]; ok {
					q.Add(q, prev)
				}
				phase[s] = q
			}
			continue
		}
		k := f.a.key()
		if s, ok := merged[k]; ok {
			s.pow += f.pow
			continue
		}
		merged[k] = &slot{a: f.a, pow: f.pow}
		order = append(order, k)
	}

	var out []factor
	var extras []Expr
	for _, k := range order {
		s := merged[k]
		switch a := s.a.(type) {
		case trigAtom:
			if a.sin && s.pow >= 2 {
				cos2 := atomPow(trigAtom{sym: a.sym}, 2)
				extras = append(extras, N(1).Sub(cos2).Pow(s.pow/2))
				s.pow %= 2
			}
		case sqrtAtom:
			if s.pow >= 2 {
				extras = append(extras, a.arg.Pow(s.pow/2))
				s.pow %= 2
			}
		}
		if s.pow != 0 {
			out = append(out, factor{a: s.a, pow: s.pow})
		}
	}
	if p, ok := newPhase(phase); ok {
		out = append(out, factor{a: p, pow: 1})
	}

	e := Expr{terms: []term{{coeff: c, mono: newMonomial(out)}}}
	for _, x := range extras {
		e = e.Mul(x)
	}
	return e
}

func mulTerm(x, y term) Expr {
	c := x.coeff.Mul(y.coeff)
	if c.IsZero() {
		return Expr{}
	}
	if len(x.mono.factors) == 0 {
		return Expr{terms: []term{{coeff: c, mono: y.mono}}}
	}
	if len(y.mono.factors) == 0 {
		return Expr{terms: []term{{coeff: c, mono: x.mono}}}
	}
	fs := make([]factor, 0, len(x.mono.factors)+len(y.mono.factors))
	fs = append(fs, x.mono.factors...)
	fs = append(fs, y.mono.factors...)
	return build(c, fs)
}

// ============================================================
// Arithmetic
// ============================================================

func (e Expr) Add(o Expr) Expr {
	if len(e.terms) == 0 {
		return o
	}
	if len(o.terms) == 0 {
		return e
	}
	acc := newAccum()
	for _, t := range e.terms {
		acc.add(t)
	}
	for _, t := range o.terms {
		acc.add(t)
	}
	return acc.expr()
}

func (e Expr) Neg() Expr { return e.Scale(NumInt(-1)) }

func (e Expr) Sub(o Expr) Expr { return e.Add(o.Neg()) }

// Scale multiplies every coefficient by n.
func (e Expr) Scale(n Num) Expr {
	if n.IsZero() {
		return Expr{}
	}
	out := make([]term, len(e.terms))
	for i, t := range e.terms {
		out[i] = term{coeff: t.coeff.Mul(n), mono: t.mono}
	}
	return Expr{terms: out}
}

func (e Expr) Mul(o Expr) Expr {
	if len(e.terms) == 0 || len(o.terms) == 0 {
		return Expr{}
	}
	if n, ok := o.AsNum(); ok {
		return e.Scale(n)
	}
	if n, ok := e.AsNum(); ok {
		return o.Scale(n)
	}
	acc := newAccum()
	for _, x := range e.terms {
		for _, y := range o.terms {
			for _, t := range mulTerm(x, y).terms {
				acc.add(t)
			}
		}
	}
	return acc.expr()
}

// Pow raises e to the integer power n. Negative powers need a single-term
// base with an invertible coefficient; otherwise an unevaluated pow(e, n)
// is returned.
func (e Expr) Pow(n int) Expr {
	if n < 0 {
		inv, err := e.Inv()
		if err != nil {
			return opaque("pow", e, N(int64(n)))
		}
		return inv.Pow(-n)
	}
	result, base := N(1), e
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		n >>= 1
		if n > 0 {
			base = base.Mul(base)
		}
	}
	return result
}

// Inv returns 1/e for single-term expressions.
func (e Expr) Inv() (Expr, error) {
	if len(e.terms) == 0 {
		return Expr{}, fmt.Errorf("symbolic: division by zero")
	}
	if len(e.terms) != 1 {
		return Expr{}, fmt.Errorf("symbolic: cannot invert sum %s", e)
	}
	t := e.terms[0]
	c, ok := t.coeff.Inv()
	if !ok {
		return Expr{}, fmt.Errorf("symbolic: cannot invert coefficient %s", t.coeff)
	}
	fs := make([]factor, len(t.mono.factors))
	for i, f := range t.mono.factors {
		if p, ok := f.a.(phaseAtom); ok {
			fs[i] = factor{a: p.negate(), pow: f.pow}
			continue
		}
		fs[i] = factor{a: f.a, pow: -f.pow}
	}
	return build(c, fs), nil
}

func (e Expr) Div(o Expr) (Expr, error) {
	inv, err := o.Inv()
	if err != nil {
		return Expr{}, err
	}
	return e.Mul(inv), nil
}

// AddOf sums its arguments.
func AddOf(xs ...Expr) Expr {
	acc := newAccum()
	for _, x := range xs {
		for _, t := range x.terms {
			acc.add(t)
		}
	}
	return acc.expr()
}

// MulOf multiplies its arguments.
func MulOf(xs ...Expr) Expr {
	out := N(1)
	for _, x := range xs {
		out = out.Mul(x)
	}
	return out
}

// ============================================================
// Queries
// ============================================================

func (e Expr) IsZero() bool { return len(e.terms) == 0 }

// IsNumber reports whether e has no symbolic part.
func (e Expr) IsNumber() bool {
	return len(e.terms) == 0 || (len(e.terms) == 1 && len(e.terms[0].mono.factors) == 0)
}

// AsNum returns the exact value of a numeric expression.
func (e Expr) AsNum() (Num, bool) {
	if !e.IsNumber() {
		return Num{}, false
	}
	if len(e.terms) == 0 {
		return Num{}, true
	}
	return e.terms[0].coeff, true
}

// AsRat returns the value of a rational expression.
func (e Expr) AsRat() (*big.Rat, bool) {
	n, ok := e.AsNum()
	if !ok {
		return nil, false
	}
	return n.Rat()
}

// Equal reports whether e and o are the same value. Phases are compared
// after expansion onto half-angle atoms, so exp(I*x) equals cos(x) + I*sin(x).
func (e Expr) Equal(o Expr) bool {
	if e.sameTerms(o) {
		return true
	}
	if !e.hasPhase() && !o.hasPhase() {
		return false
	}
	return e.trigForm().sameTerms(o.trigForm())
}

func (e Expr) sameTerms(o Expr) bool {
	if len(e.terms) != len(o.terms) {
		return false
	}
	for i := range e.terms {
		if e.terms[i].mono.key != o.terms[i].mono.key || !e.terms[i].coeff.Equal(o.terms[i].coeff) {
			return false
		}
	}
	return true
}

func (e Expr) hasPhase() bool {
	for _, t := range e.terms {
		for _, f := range t.mono.factors {
			if _, ok := f.a.(phaseAtom); ok {
				return true
			}
		}
	}
	return false
}

// trigForm rewrites every phase exp(I*f) as cos(f) + I*sin(f).
func (e Expr) trigForm() Expr {
	return e.rebuild(keepNum, func(a atom) Expr {
		if p, ok := a.(phaseAtom); ok {
			c, s := cosSin(p.form())
			return c.Add(I().Mul(s))
		}
		return atomExpr(a)
	})
}

// NumTerms returns the number of canonical terms.
func (e Expr) NumTerms() int { return len(e.terms) }

// FreeSymbols returns the names of symbols e depends on. pi is a constant.
func (e Expr) FreeSymbols() map[string]struct{} {
	out := map[string]struct{}{}
	for _, t := range e.terms {
		for _, f := range t.mono.factors {
			f.a.symbols(out)
		}
	}
	return out
}

// ============================================================
// Structural maps
// ============================================================

func (e Expr) rebuild(coeff func(Num) Num, at func(atom) Expr) Expr {
	acc := []Expr{}
	for _, t := range e.terms {
		p := FromNum(coeff(t.coeff))
		for _, f := range t.mono.factors {
			p = p.Mul(at(f.a).Pow(f.pow))
		}
		acc = append(acc, p)
	}
	return AddOf(acc...)
}

func keepNum(n Num) Num { return n }

// Subs substitutes value for the symbol name and re-canonicalises.
func (e Expr) Subs(name string, value Expr) Expr {
	return e.rebuild(keepNum, func(a atom) Expr { return a.subst(name, value) })
}

// Conj returns the complex conjugate, treating every symbol as real.
func (e Expr) Conj() Expr {
	return e.rebuild(Num.Conj, func(a atom) Expr { return a.conj() })
}

// Diff differentiates with respect to name.
func (e Expr) Diff(name string) Expr {
	acc := []Expr{}
	for _, t := range e.terms {
		for i, f := range t.mono.factors {
			d := f.a.deriv(name)
			if d.IsZero() {
				continue
			}
			rest := make([]factor, 0, len(t.mono.factors))
			for k, g := range t.mono.factors {
				if k != i {
					rest = append(rest, g)
				}
			}
			if f.pow != 1 {
				rest = append(rest, factor{a: f.a, pow: f.pow - 1})
			}
			acc = append(acc, build(t.coeff.Mul(NumInt(int64(f.pow))), rest).Mul(d))
		}
	}
	return AddOf(acc...)
}

// Eval evaluates e numerically. Every free symbol must be bound in env.
func (e Expr) Eval(env map[string]complex128) (complex128, error) {
	var z complex128
	for _, t := range e.terms {
		v := t.coeff.Complex128()
		for _, f := range t.mono.factors {
			x, err := f.a.eval(env)
			if err != nil {
				return 0, err
			}
			v *= cmplx.Pow(x, complex(float64(f.pow), 0))
		}
		z += v
	}
	return z, nil
}

// ============================================================
// Linear forms
// ============================================================

// linearForm is sum qs[i]*syms[i] + pi*Pi + c with rational coefficients.
type linearForm struct {
	syms []string
	qs   []*big.Rat
	pi   *big.Rat
	c    *big.Rat
}

func (e Expr) linear() (linearForm, bool) {
	lf := linearForm{pi: new(big.Rat), c: new(big.Rat)}
	for _, t := range e.terms {
		q, ok := t.coeff.Rat()
		if !ok {
			return linearForm{}, false
		}
		if len(t.mono.factors) == 0 {
			lf.c.Add(lf.c, q)
			continue
		}
		if len(t.mono.factors) != 1 || t.mono.factors[0].pow != 1 {
			return linearForm{}, false
		}
		s, ok := t.mono.factors[0].a.(symbolAtom)
		if !ok {
			return linearForm{}, false
		}
		if s.name == "pi" {
			lf.pi.Add(lf.pi, q)
			continue
		}
		lf.syms = append(lf.syms, s.name)
		lf.qs = append(lf.qs, q)
	}
	return lf, true
}

// rationalContent returns the positive g such that e/g has coprime integer
// coefficients.
func (e Expr) rationalContent() (*big.Rat, bool) {
	if len(e.terms) == 0 {
		return nil, false
	}
	num, den := new(big.Int), big.NewInt(1)
	for _, t := range e.terms {
		q, ok := t.coeff.Rat()
		if !ok {
			return nil, false
		}
		num.GCD(nil, nil, num, new(big.Int).Abs(q.Num()))
		g := new(big.Int).GCD(nil, nil, den, q.Denom())
		den.Mul(den, new(big.Int).Quo(q.Denom(), g))
	}
	return new(big.Rat).SetFrac(num, den), true
}
