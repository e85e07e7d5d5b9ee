package gospin

import (
	"fmt"
	"sort"
	"strings"

	"github.com/njchilds90/gospin/symbolic"
)

// Operator acts linearly on states. It is implemented by SpinOp, Rotation,
// TensorOp, Commutator and OpExpr.
type Operator interface {
	String() string
	LaTeX() string
	apply(s State) (State, error)
}

// Apply returns op|s>. A nil operator is the identity.
func Apply(op Operator, s State) (State, error) {
	if op == nil {
		return s, nil
	}
	return op.apply(s)
}

// applyWord applies the product w[0]*w[1]*...*w[n-1], rightmost first.
func applyWord(word []Operator, s State) (State, error) {
	var err error
	for i := len(word) - 1; i >= 0; i-- {
		if s, err = word[i].apply(s); err != nil {
			return State{}, err
		}
		if s.IsZero() {
			break
		}
	}
	return s, nil
}

// ============================================================
// Spin operators
// ============================================================

// SpinOp is one of the angular-momentum operators Jx, Jy, Jz, J+, J- and J^2.
type SpinOp int

const (
	Jx SpinOp = iota
	Jy
	Jz
	Jplus
	Jminus
	J2
)

var spinOpNames = [...]string{Jx: "Jx", Jy: "Jy", Jz: "Jz", Jplus: "J+", Jminus: "J-", J2: "J2"}

var spinOpLaTeX = [...]string{Jx: "J_x", Jy: "J_y", Jz: "J_z", Jplus: "J_+", Jminus: "J_-", J2: "J^2"}

func (o SpinOp) String() string {
	if o < 0 || int(o) >= len(spinOpNames) {
		return fmt.Sprintf("SpinOp(%d)", int(o))
	}
	return spinOpNames[o]
}

func (o SpinOp) LaTeX() string {
	if o < 0 || int(o) >= len(spinOpLaTeX) {
		return o.String()
	}
	return spinOpLaTeX[o]
}

// ParseSpinOp accepts Jx, Jy, Jz, J+ (Jplus), J- (Jminus) and J2, case-insensitive.
func ParseSpinOp(s string) (SpinOp, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "jx", "x":
		return Jx, nil
	case "jy", "y":
		return Jy, nil
	case "jz", "z":
		return Jz, nil
	case "j+", "jplus", "+":
		return Jplus, nil
	case "j-", "jminus", "-":
		return Jminus, nil
	case "j2", "j^2", "j**2":
		return J2, nil
	}
	return 0, fmt.Errorf("gospin: unknown spin operator %q", s)
}

// NaturalBasis is the basis in which o acts diagonally or, for the ladder
// operators and J2, the Jz basis.
func (o SpinOp) NaturalBasis() Basis {
	switch o {
	case Jx:
		return BasisX
	case Jy:
		return BasisY
	}
	return BasisZ
}

func (o SpinOp) apply(s State) (State, error) {
	if o < Jx || o > J2 {
		return State{}, fmt.Errorf("gospin: unknown spin operator %s", o)
	}
	return s.mapTerms(func(kets []Ket) (State, error) {
		if len(kets) == 1 {
			return o.applyKet(kets[0])
		}
		return o.applyProduct(kets)
	})
}

// applyProduct treats o as the total operator on a product space.
func (o SpinOp) applyProduct(kets []Ket) (State, error) {
	p := TensorProductOf(kets...)
	if o == J2 {
		zz, err := applyWord([]Operator{Jz, Jz}, p)
		if err != nil {
			return State{}, err
		}
		z, err := Jz.apply(p)
		if err != nil {
			return State{}, err
		}
		mp, err := applyWord([]Operator{Jminus, Jplus}, p)
		if err != nil {
			return State{}, err
		}
		return SumOfStates(zz, z.Scale(Hbar()), mp), nil
	}
	var parts []State
	for i, k := range kets {
		r, err := o.applyKet(k)
		if err != nil {
			return State{}, err
		}
		factors := make([]State, len(kets))
		for f, kf := range kets {
			factors[f] = kf.State()
		}
		factors[i] = r
		parts = append(parts, TensorProduct(factors...))
	}
	return SumOfStates(parts...), nil
}

func (o SpinOp) applyKet(k Ket) (State, error) {
	switch {
	case o == J2:
		return k.State().Scale(Hbar().Pow(2).Mul(k.j).Mul(k.j.Add(symbolic.N(1)))), nil
	case o <= Jz && k.basis == o.NaturalBasis():
		return k.State().Scale(Hbar().Mul(k.m)), nil
	case k.basis == BasisZ:
		switch o {
		case Jplus:
			return ladder(k, 1), nil
		case Jminus:
			return ladder(k, -1), nil
		case Jx:
			return SumOfStates(ladder(k, 1), ladder(k, -1)).Scale(symbolic.F(1, 2)), nil
		case Jy:
			return ladder(k, 1).Sub(ladder(k, -1)).Scale(symbolic.I().Mul(symbolic.F(-1, 2))), nil
		}
	}
	r, err := rewriteKet(k, o.NaturalBasis())
	if err != nil {
		return State{}, err
	}
	return r.mapTerms(func(kets []Ket) (State, error) { return o.applyKet(kets[0]) })
}

// ladder applies J+ (dir = 1) or J- (dir = -1) to a Jz ket:
// hbar sqrt(j^2 + j - m^2 - dir*m) |j, m+dir>.
func ladder(k Ket, dir int64) State {
	if j2, m2, numeric, err := checkJM(k.j, k.m); err == nil && numeric && m2 == dir*j2 {
		return State{}
	}
	j, m := k.j, k.m
	d := symbolic.N(dir)
	arg := j.Pow(2).Add(j).Sub(m.Pow(2)).Sub(d.Mul(m))
	coeff := Hbar().Mul(symbolic.Sqrt(arg))
	return k.withM(m.Add(d)).State().Scale(coeff)
}

// ============================================================
// Uncoupled operators
// ============================================================

// TensorOp acts factor by factor on product states. A nil factor is the
// identity on that space.
type TensorOp struct {
	ops []Operator
}

// NewTensorOp returns the uncoupled operator ops[0] x ops[1] x ...
func NewTensorOp(ops ...Operator) TensorOp {
	return TensorOp{ops: append([]Operator(nil), ops...)}
}

func (t TensorOp) String() string {
	parts := make([]string, len(t.ops))
	for i, op := range t.ops {
		if op == nil {
			parts[i] = "1"
			continue
		}
		parts[i] = op.String()
	}
	return "TensorProduct(" + strings.Join(parts, ", ") + ")"
}

func (t TensorOp) LaTeX() string {
	parts := make([]string, len(t.ops))
	for i, op := range t.ops {
		if op == nil {
			parts[i] = "1"
			continue
		}
		parts[i] = "{" + op.LaTeX() + "}"
	}
	return strings.Join(parts, `\otimes `)
}

func (t TensorOp) apply(s State) (State, error) {
	return s.mapTerms(func(kets []Ket) (State, error) {
		if len(kets) == 1 && len(kets[0].jn) == len(t.ops) && len(t.ops) > 1 {
			u, err := uncoupleKet(kets[0])
			if err != nil {
				return State{}, err
			}
			return t.apply(u)
		}
		if len(kets) != len(t.ops) {
			return State{}, fmt.Errorf("%w: %s acts on %d spaces, state has %d", ErrIncompatible, t, len(t.ops), len(kets))
		}
		factors := make([]State, len(kets))
		for i, k := range kets {
			f, err := Apply(t.ops[i], k.State())
			if err != nil {
				return State{}, err
			}
			factors[i] = f
		}
		return TensorProduct(factors...), nil
	})
}

// ============================================================
// Operator expressions
// ============================================================

type opTerm struct {
	coeff symbolic.Expr
	word  []Operator
}

// OpExpr is a linear combination of products of operators with like
// products merged and zero terms dropped.
type OpExpr struct {
	terms []opTerm
	keys  []string
}

func wordKey(word []Operator) string {
	if len(word) == 0 {
		return "1"
	}
	parts := make([]string, len(word))
	for i, op := range word {
		parts[i] = op.String()
	}
	return strings.Join(parts, "*")
}

func newOpExpr(ts []opTerm) OpExpr {
	idx := map[string]int{}
	var terms []opTerm
	var keys []string
	for _, t := range ts {
		k := wordKey(t.word)
		if i, ok := idx[k]; ok {
			terms[i].coeff = terms[i].coeff.Add(t.coeff)
			continue
		}
		idx[k] = len(terms)
		terms = append(terms, t)
		keys = append(keys, k)
	}
	order := make([]int, 0, len(terms))
	for i := range terms {
		if !terms[i].coeff.IsZero() {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(a, b int) bool { return keys[order[a]] < keys[order[b]] })
	out := OpExpr{terms: make([]opTerm, len(order)), keys: make([]string, len(order))}
	for i, o := range order {
		out.terms[i] = terms[o]
		out.keys[i] = keys[o]
	}
	return out
}

// OpOf lifts an operator into an expression. A nil operator is the identity.
func OpOf(op Operator) OpExpr {
	switch o := op.(type) {
	case OpExpr:
		return o
	case nil:
		return newOpExpr([]opTerm{{coeff: symbolic.N(1)}})
	}
	return newOpExpr([]opTerm{{coeff: symbolic.N(1), word: []Operator{op}}})
}

// ScaleOp returns c*op.
func ScaleOp(c symbolic.Expr, op Operator) OpExpr { return OpOf(op).Scale(c) }

// SumOf returns op1 + op2 + ...
func SumOf(ops ...Operator) OpExpr {
	var ts []opTerm
	for _, op := range ops {
		ts = append(ts, OpOf(op).terms...)
	}
	return newOpExpr(ts)
}

// ProductOf returns op1*op2*..., expanded over sums.
func ProductOf(ops ...Operator) OpExpr {
	acc := OpOf(nil)
	for _, op := range ops {
		acc = acc.Mul(OpOf(op))
	}
	return acc
}

func (e OpExpr) Add(o OpExpr) OpExpr { return SumOf(e, o) }
func (e OpExpr) Sub(o OpExpr) OpExpr { return SumOf(e, o.Neg()) }
func (e OpExpr) Neg() OpExpr         { return e.Scale(symbolic.N(-1)) }

// Scale multiplies every coefficient by c.
func (e OpExpr) Scale(c symbolic.Expr) OpExpr {
	ts := make([]opTerm, len(e.terms))
	for i, t := range e.terms {
		ts[i] = opTerm{coeff: c.Mul(t.coeff), word: t.word}
	}
	return newOpExpr(ts)
}

// Mul returns the operator product e*o.
func (e OpExpr) Mul(o OpExpr) OpExpr {
	ts := make([]opTerm, 0, len(e.terms)*len(o.terms))
	for _, a := range e.terms {
		for _, b := range o.terms {
			word := make([]Operator, 0, len(a.word)+len(b.word))
			word = append(append(word, a.word...), b.word...)
			ts = append(ts, opTerm{coeff: a.coeff.Mul(b.coeff), word: word})
		}
	}
	return newOpExpr(ts)
}

func (e OpExpr) IsZero() bool { return len(e.terms) == 0 }

// Equal reports whether two expressions have identical canonical forms.
func (e OpExpr) Equal(o OpExpr) bool {
	if len(e.terms) != len(o.terms) {
		return false
	}
	for i, t := range e.terms {
		if e.keys[i] != o.keys[i] || !t.coeff.Equal(o.terms[i].coeff) {
			return false
		}
	}
	return true
}

// Coefficient returns the coefficient of the product op1*op2*...
func (e OpExpr) Coefficient(ops ...Operator) symbolic.Expr {
	key := wordKey(ops)
	i := sort.SearchStrings(e.keys, key)
	if i < len(e.keys) && e.keys[i] == key {
		return e.terms[i].coeff
	}
	return symbolic.N(0)
}

// wordString prints a product, folding runs of one operator into powers.
func wordString(word []Operator, str func(Operator) string, pow func(string, int) string, sep string) string {
	var parts []string
	for i := 0; i < len(word); {
		n := 1
		for i+n < len(word) && word[i+n].String() == word[i].String() {
			n++
		}
		s := str(word[i])
		if n > 1 {
			s = pow(s, n)
		}
		parts = append(parts, s)
		i += n
	}
	return strings.Join(parts, sep)
}

func (e OpExpr) String() string {
	parts := make([]string, len(e.terms))
	for i, t := range e.terms {
		if len(t.word) == 0 {
			parts[i] = t.coeff.String()
			continue
		}
		body := wordString(t.word, Operator.String, func(s string, n int) string {
			return fmt.Sprintf("%s^%d", s, n)
		}, "*")
		parts[i] = scaledString(t.coeff, body)
	}
	return sumString(parts)
}

func (e OpExpr) LaTeX() string {
	if len(e.terms) == 0 {
		return "0"
	}
	parts := make([]string, len(e.terms))
	for i, t := range e.terms {
		body := wordString(t.word, Operator.LaTeX, func(s string, n int) string {
			return fmt.Sprintf("{%s}^{%d}", s, n)
		}, " ")
		switch {
		case len(t.word) == 0:
			parts[i] = t.coeff.LaTeX()
		case t.coeff.Equal(symbolic.N(1)):
			parts[i] = body
		case t.coeff.NumTerms() == 1:
			parts[i] = t.coeff.LaTeX() + " " + body
		default:
			parts[i] = `\left(` + t.coeff.LaTeX() + `\right) ` + body
		}
	}
	return strings.Join(parts, " + ")
}

func (e OpExpr) apply(s State) (State, error) {
	parts := make([]State, 0, len(e.terms))
	for _, t := range e.terms {
		r, err := applyWord(t.word, s)
		if err != nil {
			return State{}, err
		}
		parts = append(parts, r.Scale(t.coeff))
	}
	return SumOfStates(parts...), nil
}

// ============================================================
// Rewriting operators
// ============================================================

// OperatorForm selects the components RewriteOperator expresses spin
// operators in.
type OperatorForm int

const (
	// PlusMinus writes Jx, Jy and J2 through the ladder operators.
	PlusMinus OperatorForm = iota
	// XYZ writes J+, J- and J2 through the Cartesian components.
	XYZ
)

// RewriteOperator substitutes every spin operator of op by its expression
// in the chosen form.
func RewriteOperator(op Operator, form OperatorForm) OpExpr {
	e := OpOf(op)
	var ts []opTerm
	for _, t := range e.terms {
		acc := OpOf(nil).Scale(t.coeff)
		for _, letter := range t.word {
			acc = acc.Mul(rewriteLetter(letter, form))
		}
		ts = append(ts, acc.terms...)
	}
	return newOpExpr(ts)
}

func rewriteLetter(op Operator, form OperatorForm) OpExpr {
	s, ok := op.(SpinOp)
	if !ok {
		return OpOf(op)
	}
	halfI := symbolic.I().Mul(symbolic.F(1, 2))
	switch form {
	case PlusMinus:
		switch s {
		case Jx:
			return SumOf(Jplus, Jminus).Scale(symbolic.F(1, 2))
		case Jy:
			return SumOf(Jplus, ScaleOp(symbolic.N(-1), Jminus)).Scale(halfI.Neg())
		case J2:
			ladders := SumOf(ProductOf(Jplus, Jminus), ProductOf(Jminus, Jplus)).Scale(symbolic.F(1, 2))
			return ProductOf(Jz, Jz).Add(ladders)
		}
	case XYZ:
		switch s {
		case Jplus:
			return SumOf(Jx, ScaleOp(symbolic.I(), Jy))
		case Jminus:
			return SumOf(Jx, ScaleOp(symbolic.I().Neg(), Jy))
		case J2:
			return SumOf(ProductOf(Jx, Jx), ProductOf(Jy, Jy), ProductOf(Jz, Jz))
		}
	}
	return OpOf(s)
}

// ============================================================
// Commutators
// ============================================================

// Commutator is the unevaluated [A, B] = AB - BA.
type Commutator struct {
	A, B Operator
}

// CommutatorOf returns [a, b].
func CommutatorOf(a, b Operator) Commutator { return Commutator{A: a, B: b} }

func (c Commutator) String() string { return "[" + c.A.String() + "," + c.B.String() + "]" }

func (c Commutator) LaTeX() string {
	return `\left[` + c.A.LaTeX() + "," + c.B.LaTeX() + `\right]`
}

func (c Commutator) apply(s State) (State, error) {
	return SumOf(ProductOf(c.A, c.B), ScaleOp(symbolic.N(-1), ProductOf(c.B, c.A))).apply(s)
}

// Doit evaluates the commutator. Pairs of spin operators use the
// angular-momentum algebra; anything else expands to AB - BA.
func (c Commutator) Doit() OpExpr {
	a, b := OpOf(c.A), OpOf(c.B)
	var ts []opTerm
	for _, ta := range a.terms {
		for _, tb := range b.terms {
			coeff := ta.coeff.Mul(tb.coeff)
			var r OpExpr
			if sa, sb, ok := spinPair(ta.word, tb.word); ok {
				r = commuteSpin(sa, sb)
			} else {
				x := newOpExpr([]opTerm{{coeff: symbolic.N(1), word: ta.word}})
				y := newOpExpr([]opTerm{{coeff: symbolic.N(1), word: tb.word}})
				r = x.Mul(y).Sub(y.Mul(x))
			}
			ts = append(ts, r.Scale(coeff).terms...)
		}
	}
	return newOpExpr(ts)
}

func spinPair(a, b []Operator) (SpinOp, SpinOp, bool) {
	if len(a) != 1 || len(b) != 1 {
		return 0, 0, false
	}
	sa, okA := a[0].(SpinOp)
	sb, okB := b[0].(SpinOp)
	return sa, sb, okA && okB
}

// commuteSpin returns [a, b] for two spin operators.
func commuteSpin(a, b SpinOp) OpExpr {
	ih := symbolic.I().Mul(Hbar())
	switch {
	case a == b, a == J2, b == J2:
		return OpExpr{}
	case a > b:
		return commuteSpin(b, a).Neg()
	}
	switch [2]SpinOp{a, b} {
	case [2]SpinOp{Jx, Jy}:
		return ScaleOp(ih, Jz)
	case [2]SpinOp{Jy, Jz}:
		return ScaleOp(ih, Jx)
	case [2]SpinOp{Jx, Jz}:
		return ScaleOp(ih.Neg(), Jy)
	case [2]SpinOp{Jz, Jplus}:
		return ScaleOp(Hbar(), Jplus)
	case [2]SpinOp{Jz, Jminus}:
		return ScaleOp(Hbar().Neg(), Jminus)
	case [2]SpinOp{Jplus, Jminus}:
		return ScaleOp(symbolic.N(2).Mul(Hbar()), Jz)
	}
	// Jx or Jy against a ladder operator.
	return Commutator{A: a, B: RewriteOperator(b, XYZ)}.Doit()
}

// ============================================================
// Matrix elements
// ============================================================

// MatrixElement returns <z; j, m|op|z; jp, mp>. Symbolic labels are allowed
// for operators that act on Jz kets without a basis change.
func MatrixElement(op Operator, j, m, jp, mp symbolic.Expr) (symbolic.Expr, error) {
	bra, err := NewKet(BasisZ, j, m)
	if err != nil {
		return symbolic.Expr{}, err
	}
	ket, err := NewKet(BasisZ, jp, mp)
	if err != nil {
		return symbolic.Expr{}, err
	}
	r, err := Apply(op, ket.State())
	if err != nil {
		return symbolic.Expr{}, err
	}
	return Overlap(bra.State(), r)
}
