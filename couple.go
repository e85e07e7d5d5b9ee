package gospin

import (
	"fmt"

	"github.com/njchilds90/gospin/symbolic"
)

// ============================================================
// Coupling
// ============================================================

// Couple rewrites every product term of s as a sum of coupled kets. scheme
// lists the 1-based space pairs joined at each step; the default joins
// (1,2), (1,3), ..., (1,n). Products mixing bases are rewritten to Jz first.
// Single kets are left as they are.
func Couple(s State, scheme ...[2]int) (State, error) {
	return s.mapTerms(func(kets []Ket) (State, error) { return coupleProduct(kets, scheme) })
}

func coupleProduct(kets []Ket, scheme [][2]int) (State, error) {
	if len(kets) == 1 {
		return TensorProductOf(kets...), nil
	}
	for _, k := range kets {
		if k.IsCoupled() {
			u, err := Uncouple(TensorProductOf(kets...))
			if err != nil {
				return State{}, err
			}
			return Couple(u, scheme...)
		}
	}
	b := kets[0].basis
	for _, k := range kets[1:] {
		if k.basis != b {
			z, err := Rewrite(TensorProductOf(kets...), BasisZ)
			if err != nil {
				return State{}, err
			}
			return Couple(z, scheme...)
		}
	}

	n := len(kets)
	if len(scheme) == 0 {
		for i := 2; i <= n; i++ {
			scheme = append(scheme, [2]int{1, i})
		}
	}
	steps := make([]CouplingStep, len(scheme))
	for i, p := range scheme {
		steps[i] = CouplingStep{N1: p[0], N2: p[1]}
	}
	nodes, err := couplingTree(n, steps)
	if err != nil {
		return State{}, err
	}

	type partial struct {
		coeff symbolic.Expr
		j, m  []int64
	}
	start := partial{coeff: symbolic.N(1), j: make([]int64, n+len(nodes)), m: make([]int64, n+len(nodes))}
	jn := make([]symbolic.Expr, n)
	for i, k := range kets {
		j2, m2, err := k.labels()
		if err != nil {
			return State{}, err
		}
		start.j[i], start.m[i] = j2, m2
		jn[i] = k.j
	}
	parts := []partial{start}
	for i, nd := range nodes {
		var next []partial
		for _, p := range parts {
			jl, ml, jr, mr := p.j[nd.left], p.m[nd.left], p.j[nd.right], p.m[nd.right]
			m := ml + mr
			for J := abs64(jl - jr); J <= jl+jr; J += 2 {
				if abs64(m) > J {
					continue
				}
				c, err := cg(jl, ml, jr, mr, J, m)
				if err != nil {
					return State{}, err
				}
				if c.IsZero() {
					continue
				}
				q := partial{coeff: p.coeff.Mul(c), j: append([]int64(nil), p.j...), m: append([]int64(nil), p.m...)}
				q.j[n+i], q.m[n+i] = J, m
				next = append(next, q)
			}
		}
		parts = next
	}

	root := n + len(nodes) - 1
	ts := make([]StateTerm, 0, len(parts))
	for _, p := range parts {
		coupling := make([]CouplingStep, len(nodes))
		for i := range nodes {
			coupling[i] = CouplingStep{N1: scheme[i][0], N2: scheme[i][1], J: half(p.j[n+i])}
		}
		k := Ket{basis: b, j: half(p.j[root]), m: half(p.m[root]), jn: jn, coupling: coupling}
		ts = append(ts, StateTerm{Coeff: p.coeff, Kets: []Ket{k}})
	}
	return newState(ts), nil
}

// ============================================================
// Uncoupling
// ============================================================

// Uncouple expands every coupled ket of s over product kets of the same
// basis, following its coupling tree.
func Uncouple(s State) (State, error) {
	return s.mapTerms(func(kets []Ket) (State, error) {
		factors := make([]State, len(kets))
		for i, k := range kets {
			u, err := uncoupleKet(k)
			if err != nil {
				return State{}, err
			}
			factors[i] = u
		}
		return TensorProduct(factors...), nil
	})
}

func uncoupleKet(k Ket) (State, error) {
	if !k.IsCoupled() {
		return k.State(), nil
	}
	n := len(k.jn)
	nodes, err := couplingTree(n, k.coupling)
	if err != nil {
		return State{}, err
	}
	js := make([]int64, n+len(nodes))
	for id := range js {
		j := k.nodeJ(id)
		j2, ok := twice(j)
		if !ok {
			return State{}, fmt.Errorf("%w: uncoupling %s", ErrSymbolic, k)
		}
		js[id] = j2
	}
	_, m2, err := k.labels()
	if err != nil {
		return State{}, err
	}

	type branch struct {
		coeff symbolic.Expr
		ms    []int64
	}
	var expandErr error
	var expand func(id int, m2 int64) []branch
	expand = func(id int, m2 int64) []branch {
		if id < n {
			ms := make([]int64, n)
			ms[id] = m2
			return []branch{{coeff: symbolic.N(1), ms: ms}}
		}
		nd := nodes[id-n]
		jl, jr := js[nd.left], js[nd.right]
		var out []branch
		for _, ml := range mValues(jl) {
			mr := m2 - ml
			if !validPair(jr, mr) {
				continue
			}
			c, err := cg(jl, ml, jr, mr, js[id], m2)
			if err != nil {
				expandErr = err
				return nil
			}
			if c.IsZero() {
				continue
			}
			for _, a := range expand(nd.left, ml) {
				for _, b := range expand(nd.right, mr) {
					ms := make([]int64, n)
					for i := range ms {
						ms[i] = a.ms[i] + b.ms[i]
					}
					out = append(out, branch{coeff: c.Mul(a.coeff).Mul(b.coeff), ms: ms})
				}
			}
		}
		return out
	}

	branches := expand(n+len(nodes)-1, m2)
	if expandErr != nil {
		return State{}, expandErr
	}
	ts := make([]StateTerm, 0)
	for _, br := range branches {
		kets := make([]Ket, n)
		for i := range kets {
			kets[i] = Ket{basis: k.basis, j: k.jn[i], m: half(br.ms[i])}
		}
		ts = append(ts, StateTerm{Coeff: br.coeff, Kets: kets})
	}
	return newState(ts), nil
}
