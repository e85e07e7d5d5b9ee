package gospin

import (
	"fmt"

	"github.com/njchilds90/gospin/symbolic"
)

// InnerProduct returns <bra|ket>. Kets of one basis give products of
// KroneckerDelta values of their labels; kets of different bases are
// compared after rewriting the ket into the bra's basis.
func InnerProduct(bra Bra, ket Ket) (symbolic.Expr, error) {
	b := bra.ket
	if b.IsCoupled() != ket.IsCoupled() {
		return Overlap(b.State(), ket.State())
	}
	if b.IsCoupled() {
		return coupledInner(b, ket)
	}
	if b.basis == ket.basis {
		return symbolic.KroneckerDelta(b.j, ket.j).Mul(symbolic.KroneckerDelta(b.m, ket.m)), nil
	}
	return crossInner(b, ket)
}

// crossInner handles kets of different bases with identical coupling data.
func crossInner(b, ket Ket) (symbolic.Expr, error) {
	if _, _, err := b.labels(); err != nil {
		return symbolic.Expr{}, err
	}
	if _, _, err := ket.labels(); err != nil {
		return symbolic.Expr{}, err
	}
	if !b.sameSpace(ket) {
		return symbolic.Expr{}, nil
	}
	r, err := rewriteKet(ket, b.basis)
	if err != nil {
		return symbolic.Expr{}, err
	}
	return r.Coefficient(b), nil
}

func coupledInner(b, ket Ket) (symbolic.Expr, error) {
	if len(b.jn) != len(ket.jn) {
		return symbolic.Expr{}, fmt.Errorf("%w: %s and %s couple different numbers of spaces", ErrIncompatible, b, ket)
	}
	for i := range b.jn {
		if d := b.jn[i].Sub(ket.jn[i]); !d.IsZero() && d.IsNumber() {
			return symbolic.Expr{}, fmt.Errorf("%w: %s and %s couple different spaces", ErrIncompatible, b, ket)
		}
	}
	sameTree := true
	for i, c := range b.coupling {
		if c.N1 != ket.coupling[i].N1 || c.N2 != ket.coupling[i].N2 {
			sameTree = false
			break
		}
	}
	if !sameTree {
		ub, err := uncoupleKet(b)
		if err != nil {
			return symbolic.Expr{}, err
		}
		uk, err := uncoupleKet(ket)
		if err != nil {
			return symbolic.Expr{}, err
		}
		return Overlap(ub, uk)
	}
	if b.basis != ket.basis {
		return crossInner(b, ket)
	}
	out := symbolic.KroneckerDelta(b.m, ket.m)
	for i := range b.jn {
		out = out.Mul(symbolic.KroneckerDelta(b.jn[i], ket.jn[i]))
	}
	for i, c := range b.coupling {
		out = out.Mul(symbolic.KroneckerDelta(c.J, ket.coupling[i].J))
	}
	return out, nil
}

// Overlap returns <a|b>, antilinear in a.
func Overlap(a, b State) (symbolic.Expr, error) {
	var terms []symbolic.Expr
	for _, ta := range a.terms {
		for _, tb := range b.terms {
			ip, err := productInner(ta.Kets, tb.Kets)
			if err != nil {
				return symbolic.Expr{}, err
			}
			if ip.IsZero() {
				continue
			}
			terms = append(terms, ta.Coeff.Conj().Mul(tb.Coeff).Mul(ip))
		}
	}
	return symbolic.AddOf(terms...), nil
}

func productInner(as, bs []Ket) (symbolic.Expr, error) {
	if len(as) == 1 && len(bs) == 1 && as[0].IsCoupled() == bs[0].IsCoupled() {
		return InnerProduct(as[0].Dual(), bs[0])
	}
	if !anyCoupled(as) && !anyCoupled(bs) {
		if len(as) != len(bs) {
			return symbolic.Expr{}, fmt.Errorf("%w: products of %d and %d spaces", ErrIncompatible, len(as), len(bs))
		}
		out := symbolic.N(1)
		for i := range as {
			ip, err := InnerProduct(as[i].Dual(), bs[i])
			if err != nil {
				return symbolic.Expr{}, err
			}
			if ip.IsZero() {
				return ip, nil
			}
			out = out.Mul(ip)
		}
		return out, nil
	}
	ua, err := Uncouple(TensorProductOf(as...))
	if err != nil {
		return symbolic.Expr{}, err
	}
	ub, err := Uncouple(TensorProductOf(bs...))
	if err != nil {
		return symbolic.Expr{}, err
	}
	return Overlap(ua, ub)
}

func anyCoupled(kets []Ket) bool {
	for _, k := range kets {
		if k.IsCoupled() {
			return true
		}
	}
	return false
}
