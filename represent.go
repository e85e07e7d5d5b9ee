package gospin

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/gospin/symbolic"
)

// ============================================================
// Uncoupled representation
// ============================================================

// Represent returns the column vector of s over the uncoupled product basis
// of b. Factors are ordered as in s, m runs from j down to -j within each
// factor and the product index follows the Kronecker order. Coupled kets
// are uncoupled first.
func Represent(s State, b Basis) (*symbolic.Matrix, error) {
	u, err := Uncouple(s)
	if err != nil {
		return nil, err
	}
	if u.IsZero() {
		return nil, fmt.Errorf("%w: cannot infer the space of the zero state", ErrIncompatible)
	}
	js := make([]int64, len(u.terms[0].Kets))
	for i, k := range u.terms[0].Kets {
		j2, _, err := k.labels()
		if err != nil {
			return nil, err
		}
		js[i] = j2
	}
	vec, err := vectorOf(u, b, js)
	if err != nil {
		return nil, err
	}
	return symbolic.ColumnVector(vec...), nil
}

// vectorOf returns the components of s over the product basis of b with
// factor spins js (doubled).
func vectorOf(s State, b Basis, js []int64) ([]symbolic.Expr, error) {
	u, err := RewriteUncoupled(s, b)
	if err != nil {
		return nil, err
	}
	dim := 1
	for _, j2 := range js {
		dim *= int(j2 + 1)
	}
	acc := make([][]symbolic.Expr, dim)
	for _, t := range u.terms {
		if len(t.Kets) != len(js) {
			return nil, fmt.Errorf("%w: term %s does not live on %s", ErrIncompatible, t, describeSpaces(js))
		}
		idx := 0
		for i, k := range t.Kets {
			j2, m2, err := k.labels()
			if err != nil {
				return nil, err
			}
			if j2 != js[i] {
				return nil, fmt.Errorf("%w: factor %d of %s has j = %s, want %s", ErrIncompatible, i+1, t, k.j, halfString(js[i]))
			}
			idx = idx*int(j2+1) + mIndex(j2, m2)
		}
		acc[idx] = append(acc[idx], t.Coeff)
	}
	out := make([]symbolic.Expr, dim)
	for i, cs := range acc {
		out[i] = symbolic.AddOf(cs...)
	}
	return out, nil
}

// ============================================================
// Coupled representation
// ============================================================

// RepresentCoupled returns the column vector of s over the coupled basis of
// b. Product terms are coupled with the default scheme. Basis states are
// ordered by their coupled J values, last coupling step first, ascending,
// then by m from J down to -J: |0 0>, |1 1>, |1 0>, |1 -1> for two spin-1/2.
func RepresentCoupled(s State, b Basis) (*symbolic.Matrix, error) {
	c, err := RewriteCoupled(s, b)
	if err != nil {
		return nil, err
	}
	if c.IsZero() {
		return nil, fmt.Errorf("%w: cannot infer the space of the zero state", ErrIncompatible)
	}
	first := c.terms[0].Kets[0]
	if len(c.terms[0].Kets) != 1 || !first.IsCoupled() {
		return Represent(c, b)
	}
	basis, err := coupledBasis(first)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(basis))
	for i, k := range basis {
		index[k.String()] = i
	}
	acc := make([][]symbolic.Expr, len(basis))
	for _, t := range c.terms {
		if len(t.Kets) != 1 {
			return nil, fmt.Errorf("%w: %s is not a coupled ket", ErrIncompatible, productString(t.Kets))
		}
		i, ok := index[t.Kets[0].String()]
		if !ok {
			return nil, fmt.Errorf("%w: %s is outside the coupled space of %s", ErrIncompatible, t.Kets[0], first)
		}
		acc[i] = append(acc[i], t.Coeff)
	}
	out := make([]symbolic.Expr, len(basis))
	for i, cs := range acc {
		out[i] = symbolic.AddOf(cs...)
	}
	return symbolic.ColumnVector(out...), nil
}

// coupledBasis lists the coupled kets sharing the basis, jn and coupling
// tree of k, in representation order.
func coupledBasis(k Ket) ([]Ket, error) {
	n := len(k.jn)
	nodes, err := couplingTree(n, k.coupling)
	if err != nil {
		return nil, err
	}
	leaves := make([]int64, n)
	for i, ji := range k.jn {
		j2, ok := twice(ji)
		if !ok {
			return nil, fmt.Errorf("%w: coupled basis of %s", ErrSymbolic, k)
		}
		leaves[i] = j2
	}

	// Enumerate every assignment of J to the coupling steps.
	assignments := [][]int64{make([]int64, 0, len(nodes))}
	for _, nd := range nodes {
		var next [][]int64
		for _, a := range assignments {
			jOf := func(id int) int64 {
				if id < n {
					return leaves[id]
				}
				return a[id-n]
			}
			jl, jr := jOf(nd.left), jOf(nd.right)
			for J := abs64(jl - jr); J <= jl+jr; J += 2 {
				next = append(next, append(append([]int64(nil), a...), J))
			}
		}
		assignments = next
	}
	sort.SliceStable(assignments, func(x, y int) bool {
		a, b := assignments[x], assignments[y]
		for i := len(a) - 1; i >= 0; i-- {
			if a[i] != b[i] {
				return a[i] < b[i]
			}
		}
		return false
	})

	var out []Ket
	for _, a := range assignments {
		steps := make([]CouplingStep, len(nodes))
		for i, c := range k.coupling {
			steps[i] = CouplingStep{N1: c.N1, N2: c.N2, J: half(a[i])}
		}
		root := a[len(a)-1]
		for _, m2 := range mValues(root) {
			out = append(out, Ket{basis: k.basis, j: half(root), m: half(m2), jn: k.jn, coupling: steps})
		}
	}
	return out, nil
}

// ============================================================
// Operator representation
// ============================================================

// RepresentOperator returns the matrix <b; m|op|b; m'> over the uncoupled
// product basis of b with factor spins jn, j = 1/2 when jn is empty.
// Columns are computed concurrently.
func RepresentOperator(ctx context.Context, op Operator, b Basis, jn ...symbolic.Expr) (*symbolic.Matrix, error) {
	if len(jn) == 0 {
		jn = []symbolic.Expr{symbolic.F(1, 2)}
	}
	js := make([]int64, len(jn))
	for i, j := range jn {
		j2, ok, err := checkJ(j)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: representing %s for j = %s", ErrSymbolic, op, j)
		}
		js[i] = j2
	}
	kets := productBasis(b, js)
	out := symbolic.NewMatrix(len(kets), len(kets))
	g, ctx := errgroup.WithContext(ctx)
	for col, kp := range kets {
		col, kp := col, kp
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := Apply(op, TensorProductOf(kp...))
			if err != nil {
				return err
			}
			vec, err := vectorOf(r, b, js)
			if err != nil {
				return err
			}
			for row, v := range vec {
				out.Set(row, col, v)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// productBasis lists the product kets of b in Kronecker order.
func productBasis(b Basis, js []int64) [][]Ket {
	out := [][]Ket{nil}
	for _, j2 := range js {
		var next [][]Ket
		for _, p := range out {
			for _, m2 := range mValues(j2) {
				k := Ket{basis: b, j: half(j2), m: half(m2)}
				next = append(next, append(append([]Ket(nil), p...), k))
			}
		}
		out = next
	}
	return out
}

// describeSpaces renders doubled spins as "1/2 x 1" for messages.
func describeSpaces(js []int64) string {
	parts := make([]string, len(js))
	for i, j2 := range js {
		parts[i] = halfString(j2)
	}
	return strings.Join(parts, " x ")
}
