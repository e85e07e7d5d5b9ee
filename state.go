package gospin

import (
	"sort"
	"strings"

	"github.com/njchilds90/gospin/symbolic"
)

// StateTerm is one term coeff * k1 x k2 x ... of a state.
type StateTerm struct {
	Coeff symbolic.Expr
	Kets  []Ket
}

// State is a finite linear combination of tensor products of kets, kept in a
// canonical order with like terms merged and zero terms dropped.
type State struct {
	terms []StateTerm
	keys  []string
}

func productKey(kets []Ket) string {
	parts := make([]string, len(kets))
	for i, k := range kets {
		parts[i] = k.String()
	}
	return strings.Join(parts, " x ")
}

func newState(ts []StateTerm) State {
	idx := map[string]int{}
	var terms []StateTerm
	var keys []string
	for _, t := range ts {
		k := productKey(t.Kets)
		if i, ok := idx[k]; ok {
			terms[i].Coeff = terms[i].Coeff.Add(t.Coeff)
			continue
		}
		idx[k] = len(terms)
		terms = append(terms, StateTerm{Coeff: t.Coeff, Kets: t.Kets})
		keys = append(keys, k)
	}
	order := make([]int, 0, len(terms))
	for i := range terms {
		if !terms[i].Coeff.IsZero() {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(a, b int) bool { return keys[order[a]] < keys[order[b]] })
	s := State{terms: make([]StateTerm, len(order)), keys: make([]string, len(order))}
	for i, o := range order {
		s.terms[i] = terms[o]
		s.keys[i] = keys[o]
	}
	return s
}

// TensorProductOf returns the product state k1 x k2 x ... with coefficient 1.
func TensorProductOf(kets ...Ket) State {
	return newState([]StateTerm{{Coeff: symbolic.N(1), Kets: append([]Ket(nil), kets...)}})
}

// TensorProduct distributes the tensor product over the terms of each state.
func TensorProduct(states ...State) State {
	acc := []StateTerm{{Coeff: symbolic.N(1)}}
	for _, s := range states {
		next := make([]StateTerm, 0, len(acc)*len(s.terms))
		for _, a := range acc {
			for _, t := range s.terms {
				kets := make([]Ket, 0, len(a.Kets)+len(t.Kets))
				kets = append(append(kets, a.Kets...), t.Kets...)
				next = append(next, StateTerm{Coeff: a.Coeff.Mul(t.Coeff), Kets: kets})
			}
		}
		acc = next
	}
	return newState(acc)
}

// SumOfStates adds states together.
func SumOfStates(states ...State) State {
	var ts []StateTerm
	for _, s := range states {
		ts = append(ts, s.terms...)
	}
	return newState(ts)
}

func (s State) Add(o State) State { return SumOfStates(s, o) }
func (s State) Sub(o State) State { return SumOfStates(s, o.Neg()) }
func (s State) Neg() State        { return s.Scale(symbolic.N(-1)) }

// Scale multiplies every coefficient by c.
func (s State) Scale(c symbolic.Expr) State {
	return s.mapCoeffs(func(e symbolic.Expr) symbolic.Expr { return c.Mul(e) })
}

// Subs substitutes value for a symbol in every coefficient and label.
func (s State) Subs(name string, value symbolic.Expr) State {
	ts := make([]StateTerm, len(s.terms))
	for i, t := range s.terms {
		kets := make([]Ket, len(t.Kets))
		for k, ket := range t.Kets {
			kets[k] = ket.subs(name, value)
		}
		ts[i] = StateTerm{Coeff: t.Coeff.Subs(name, value), Kets: kets}
	}
	return newState(ts)
}

func (k Ket) subs(name string, value symbolic.Expr) Ket {
	k.j = k.j.Subs(name, value)
	k.m = k.m.Subs(name, value)
	if k.IsCoupled() {
		jn := make([]symbolic.Expr, len(k.jn))
		for i, ji := range k.jn {
			jn[i] = ji.Subs(name, value)
		}
		steps := make([]CouplingStep, len(k.coupling))
		for i, c := range k.coupling {
			steps[i] = CouplingStep{N1: c.N1, N2: c.N2, J: c.J.Subs(name, value)}
		}
		k.jn, k.coupling = jn, steps
	}
	return k
}

func (s State) mapCoeffs(f func(symbolic.Expr) symbolic.Expr) State {
	ts := make([]StateTerm, len(s.terms))
	for i, t := range s.terms {
		ts[i] = StateTerm{Coeff: f(t.Coeff), Kets: t.Kets}
	}
	return newState(ts)
}

func (s State) IsZero() bool { return len(s.terms) == 0 }
func (s State) Len() int     { return len(s.terms) }

// Equal reports whether two states have identical canonical forms.
func (s State) Equal(o State) bool {
	if len(s.terms) != len(o.terms) {
		return false
	}
	for i, t := range s.terms {
		if s.keys[i] != o.keys[i] || !t.Coeff.Equal(o.terms[i].Coeff) {
			return false
		}
	}
	return true
}

// Terms returns a copy of the terms in canonical order.
func (s State) Terms() []StateTerm {
	out := make([]StateTerm, len(s.terms))
	for i, t := range s.terms {
		out[i] = StateTerm{Coeff: t.Coeff, Kets: append([]Ket(nil), t.Kets...)}
	}
	return out
}

// Coefficient returns the coefficient of the product k1 x k2 x ..., zero if
// it does not occur.
func (s State) Coefficient(kets ...Ket) symbolic.Expr {
	key := productKey(kets)
	i := sort.SearchStrings(s.keys, key)
	if i < len(s.keys) && s.keys[i] == key {
		return s.terms[i].Coeff
	}
	return symbolic.N(0)
}

// mapTerms replaces every term by coeff * f(term kets) and sums the results.
func (s State) mapTerms(f func(kets []Ket) (State, error)) (State, error) {
	var ts []StateTerm
	for _, t := range s.terms {
		r, err := f(t.Kets)
		if err != nil {
			return State{}, err
		}
		for _, rt := range r.terms {
			ts = append(ts, StateTerm{Coeff: t.Coeff.Mul(rt.Coeff), Kets: rt.Kets})
		}
	}
	return newState(ts), nil
}

func productString(kets []Ket) string {
	if len(kets) == 1 {
		return kets[0].String()
	}
	return "TensorProduct(" + strings.Replace(productKey(kets), " x ", ", ", -1) + ")"
}

func (t StateTerm) String() string { return scaledString(t.Coeff, productString(t.Kets)) }

// scaledString renders c*body, bracketing c when it is a sum.
func scaledString(c symbolic.Expr, body string) string {
	switch {
	case c.Equal(symbolic.N(1)):
		return body
	case c.Equal(symbolic.N(-1)):
		return "-" + body
	case c.NumTerms() == 1:
		return c.String() + "*" + body
	}
	return "(" + c.String() + ")*" + body
}

// sumString joins rendered terms, folding a leading minus into the operator.
func sumString(parts []string) string {
	if len(parts) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, str := range parts {
		switch {
		case i == 0:
			sb.WriteString(str)
		case strings.HasPrefix(str, "-"):
			sb.WriteString(" - " + str[1:])
		default:
			sb.WriteString(" + " + str)
		}
	}
	return sb.String()
}

// String renders the state as a sum such as sqrt(2)/2*JzKet(1, 0) + JzKet(1, 1).
func (s State) String() string {
	parts := make([]string, len(s.terms))
	for i, t := range s.terms {
		parts[i] = t.String()
	}
	return sumString(parts)
}

// LaTeX renders the state with Dirac kets joined by \otimes.
func (s State) LaTeX() string {
	if len(s.terms) == 0 {
		return "0"
	}
	parts := make([]string, len(s.terms))
	for i, t := range s.terms {
		kets := make([]string, len(t.Kets))
		for k, ket := range t.Kets {
			kets[k] = ket.LaTeX()
		}
		product := strings.Join(kets, ` \otimes `)
		c := t.Coeff
		switch {
		case c.Equal(symbolic.N(1)):
			parts[i] = product
		case c.NumTerms() == 1:
			parts[i] = c.LaTeX() + " " + product
		default:
			parts[i] = `\left(` + c.LaTeX() + `\right) ` + product
		}
	}
	return strings.Join(parts, " + ")
}
