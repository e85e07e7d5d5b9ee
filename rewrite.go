package gospin

import (
	"context"

	"github.com/njchilds90/gospin/symbolic"
)

// changeMatrix returns T with T[m', m] = <to; j m'|from; j m>, the
// D-matrix of changeRotation(from, to).
func changeMatrix(from, to Basis, j2 int64) (*symbolic.Matrix, error) {
	key := "change:" + from.String() + ":" + to.String() + ":" + halfString(j2)
	out, err := coefficients.GetOrCompute(key, func() (any, error) {
		return changeRotation(from, to).Matrix(context.Background(), half(j2))
	})
	if err != nil {
		return nil, err
	}
	return out.(*symbolic.Matrix), nil
}

// rewriteKet expresses k in basis b. Coupled kets transform as spin J and
// keep their coupling data.
func rewriteKet(k Ket, b Basis) (State, error) {
	if k.basis == b {
		return k.State(), nil
	}
	j2, m2, err := k.labels()
	if err != nil {
		return State{}, err
	}
	t, err := changeMatrix(k.basis, b, j2)
	if err != nil {
		return State{}, err
	}
	col := mIndex(j2, m2)
	target := k.withBasis(b)
	var ts []StateTerm
	for row, mp2 := range mValues(j2) {
		ts = append(ts, StateTerm{Coeff: t.Get(row, col), Kets: []Ket{target.withM(half(mp2))}})
	}
	return newState(ts), nil
}

// Rewrite expresses every ket of s in basis b. Product terms are rewritten
// factor by factor; coupled kets are rewritten as a whole.
func Rewrite(s State, b Basis) (State, error) {
	return s.mapTerms(func(kets []Ket) (State, error) {
		factors := make([]State, len(kets))
		for i, k := range kets {
			r, err := rewriteKet(k, b)
			if err != nil {
				return State{}, err
			}
			factors[i] = r
		}
		return TensorProduct(factors...), nil
	})
}

// RewriteCoupled rewrites s into basis b and couples its product terms.
func RewriteCoupled(s State, b Basis, scheme ...[2]int) (State, error) {
	r, err := Rewrite(s, b)
	if err != nil {
		return State{}, err
	}
	return Couple(r, scheme...)
}

// RewriteUncoupled uncouples the coupled kets of s and rewrites every factor
// into basis b.
func RewriteUncoupled(s State, b Basis) (State, error) {
	u, err := Uncouple(s)
	if err != nil {
		return State{}, err
	}
	return Rewrite(u, b)
}
