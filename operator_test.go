package gospin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gospin"
	"github.com/njchilds90/gospin/symbolic"
)

func apply(t *testing.T, op gospin.Operator, s gospin.State) gospin.State {
	t.Helper()
	out, err := gospin.Apply(op, s)
	require.NoError(t, err, "%s on %s", op, s)
	return out
}

func TestParseSpinOp(t *testing.T) {
	cases := map[string]gospin.SpinOp{
		"Jx": gospin.Jx, "y": gospin.Jy, "JZ": gospin.Jz,
		"J+": gospin.Jplus, "jplus": gospin.Jplus, "J-": gospin.Jminus,
		"Jminus": gospin.Jminus, "J2": gospin.J2, "J^2": gospin.J2, "j**2": gospin.J2,
	}
	for in, want := range cases {
		got, err := gospin.ParseSpinOp(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := gospin.ParseSpinOp("Jw")
	assert.Error(t, err)

	assert.Equal(t, "J+", gospin.Jplus.String())
	assert.Equal(t, "J^2", gospin.J2.LaTeX())
	assert.Equal(t, gospin.BasisY, gospin.Jy.NaturalBasis())
	assert.Equal(t, gospin.BasisZ, gospin.Jminus.NaturalBasis())
}

func TestJplus(t *testing.T) {
	assert.True(t, gospin.CommutatorOf(gospin.Jplus, gospin.Jminus).Doit().Equal(gospin.ScaleOp(n(2).Mul(hbar), gospin.Jz)))
	assert.True(t, apply(t, gospin.Jplus, gospin.JzKet(n(1), n(1)).State()).IsZero())

	got, err := gospin.MatrixElement(gospin.Jplus, n(1), n(1), n(1), n(1))
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	want := gospin.SumOf(gospin.Jx, gospin.ScaleOp(symbolic.I(), gospin.Jy))
	assert.True(t, gospin.RewriteOperator(gospin.Jplus, gospin.XYZ).Equal(want))

	assertState(t, sum(ex(t, "sqrt(2)*hbar"), gospin.JzKet(n(1), n(1))), apply(t, gospin.Jplus, gospin.JzKet(n(1), n(0)).State()))
}

func TestJminus(t *testing.T) {
	assert.True(t, apply(t, gospin.Jminus, gospin.JzKet(n(1), n(-1)).State()).IsZero())

	got, err := gospin.MatrixElement(gospin.Jminus, n(1), n(0), n(1), n(1))
	require.NoError(t, err)
	assertExpr(t, ex(t, "sqrt(2)*hbar"), got)

	want := gospin.SumOf(gospin.Jx, gospin.ScaleOp(symbolic.I().Neg(), gospin.Jy))
	assert.True(t, gospin.RewriteOperator(gospin.Jminus, gospin.XYZ).Equal(want))

	j, m := symbolic.S("j"), symbolic.S("m")
	got2 := apply(t, gospin.Jminus, gospin.JzKet(j, m).State())
	coeff := hbar.Mul(symbolic.Sqrt(ex(t, "j^2 + j - m^2 + m")))
	assertState(t, sum(coeff, gospin.JzKet(j, m.Sub(n(1)))), got2)
}

func TestJ2(t *testing.T) {
	j, m := symbolic.S("j"), symbolic.S("m")
	assert.True(t, gospin.CommutatorOf(gospin.J2, gospin.Jz).Doit().IsZero())

	assertState(t, sum(ex(t, "2*hbar^2"), gospin.JzKet(n(1), n(1))), apply(t, gospin.J2, gospin.JzKet(n(1), n(1)).State()))
	assertState(t, sum(ex(t, "j^2*hbar^2 + j*hbar^2"), gospin.JzKet(j, m)), apply(t, gospin.J2, gospin.JzKet(j, m).State()))

	got, err := gospin.MatrixElement(gospin.J2, n(1), n(1), n(1), n(1))
	require.NoError(t, err)
	assertExpr(t, ex(t, "2*hbar^2"), got)

	// J2 acts as hbar^2 j(j+1) in every basis
	assertState(t, sum(ex(t, "3*hbar^2/4"), gospin.JxKet(half, half)), apply(t, gospin.J2, gospin.JxKet(half, half).State()))
}

func TestJ2_OnProducts(t *testing.T) {
	u, d := gospin.JzKet(half, half), gospin.JzKet(half, mhalf)
	h2 := hbar.Pow(2)

	assertState(t, sum(n(2).Mul(h2), tp(u, u)), apply(t, gospin.J2, tp(u, u)))
	assertState(t, sum(h2, tp(u, d), h2, tp(d, u)), apply(t, gospin.J2, tp(u, d)))

	// the singlet has total spin zero, the triplet total spin one
	singlet := sum(n(1), tp(u, d), n(-1), tp(d, u))
	assert.True(t, apply(t, gospin.J2, singlet).IsZero())
	triplet := sum(n(1), tp(u, d), n(1), tp(d, u))
	assertState(t, triplet.Scale(n(2).Mul(h2)), apply(t, gospin.J2, triplet))
}

func TestJx(t *testing.T) {
	x := func(m int64) gospin.Ket { return gospin.JxKet(n(1), n(m)) }
	z := func(m int64) gospin.Ket { return gospin.JzKet(n(1), n(m)) }

	assert.True(t, gospin.CommutatorOf(gospin.Jx, gospin.Jz).Doit().Equal(gospin.ScaleOp(symbolic.I().Neg().Mul(hbar), gospin.Jy)))
	assert.True(t, gospin.RewriteOperator(gospin.Jx, gospin.PlusMinus).Equal(gospin.SumOf(gospin.Jminus, gospin.Jplus).Scale(half)))

	assertState(t, sum(hbar, x(1)), apply(t, gospin.Jx, x(1).State()))
	assertState(t, sum(ex(t, "sqrt(2)*hbar/2"), z(0)), apply(t, gospin.Jx, z(1).State()))
	assertState(t, sum(n(2).Mul(hbar), tp(x(1), x(1))), apply(t, gospin.Jx, tp(x(1), x(1))))
	assertState(t,
		sum(ex(t, "sqrt(2)*hbar/2"), tp(z(1), z(0)), ex(t, "sqrt(2)*hbar/2"), tp(z(0), z(1))),
		apply(t, gospin.Jx, tp(z(1), z(1))))
	assert.True(t, apply(t, gospin.Jx, tp(x(1), x(-1))).IsZero())

	j, m := symbolic.S("j"), symbolic.S("m")
	assertState(t, sum(hbar.Mul(m), gospin.JxKet(j, m)), apply(t, gospin.Jx, gospin.JxKet(j, m).State()))

	j1, j2, m1, m2 := symbolic.S("j1"), symbolic.S("j2"), symbolic.S("m1"), symbolic.S("m2")
	xx := tp(gospin.JxKet(j1, m1), gospin.JxKet(j2, m2))
	assertState(t, xx.Scale(hbar.Mul(m1.Add(m2))), apply(t, gospin.Jx, xx))

	zz := tp(gospin.JzKet(j1, m1), gospin.JzKet(j2, m2))
	hh := hbar.Mul(half)
	want := sum(
		hh.Mul(symbolic.Sqrt(ex(t, "j1^2 + j1 - m1^2 - m1"))), tp(gospin.JzKet(j1, m1.Add(n(1))), gospin.JzKet(j2, m2)),
		hh.Mul(symbolic.Sqrt(ex(t, "j1^2 + j1 - m1^2 + m1"))), tp(gospin.JzKet(j1, m1.Sub(n(1))), gospin.JzKet(j2, m2)),
		hh.Mul(symbolic.Sqrt(ex(t, "j2^2 + j2 - m2^2 - m2"))), tp(gospin.JzKet(j1, m1), gospin.JzKet(j2, m2.Add(n(1)))),
		hh.Mul(symbolic.Sqrt(ex(t, "j2^2 + j2 - m2^2 + m2"))), tp(gospin.JzKet(j1, m1), gospin.JzKet(j2, m2.Sub(n(1)))),
	)
	assertState(t, want, apply(t, gospin.Jx, zz))
}

func TestJy(t *testing.T) {
	y := func(m int64) gospin.Ket { return gospin.JyKet(n(1), n(m)) }
	z := func(m int64) gospin.Ket { return gospin.JzKet(n(1), n(m)) }
	ih := symbolic.I().Mul(hbar)

	assert.True(t, gospin.CommutatorOf(gospin.Jy, gospin.Jz).Doit().Equal(gospin.ScaleOp(ih, gospin.Jx)))
	want := gospin.SumOf(gospin.Jplus, gospin.ScaleOp(n(-1), gospin.Jminus)).Scale(ex(t, "-I/2"))
	assert.True(t, gospin.RewriteOperator(gospin.Jy, gospin.PlusMinus).Equal(want))

	assertState(t, sum(hbar, y(1)), apply(t, gospin.Jy, y(1).State()))
	assertState(t, sum(ex(t, "sqrt(2)*I*hbar/2"), z(0)), apply(t, gospin.Jy, z(1).State()))
	assertState(t, sum(n(2).Mul(hbar), tp(y(1), y(1))), apply(t, gospin.Jy, tp(y(1), y(1))))
	assertState(t,
		sum(ex(t, "sqrt(2)*I*hbar/2"), tp(z(1), z(0)), ex(t, "sqrt(2)*I*hbar/2"), tp(z(0), z(1))),
		apply(t, gospin.Jy, tp(z(1), z(1))))
	assert.True(t, apply(t, gospin.Jy, tp(y(1), y(-1))).IsZero())

	j, m := symbolic.S("j"), symbolic.S("m")
	assertState(t, sum(hbar.Mul(m), gospin.JyKet(j, m)), apply(t, gospin.Jy, gospin.JyKet(j, m).State()))
	hh := ih.Mul(half)
	assertState(t,
		sum(
			hh.Neg().Mul(symbolic.Sqrt(ex(t, "j^2 + j - m^2 - m"))), gospin.JzKet(j, m.Add(n(1))),
			hh.Mul(symbolic.Sqrt(ex(t, "j^2 + j - m^2 + m"))), gospin.JzKet(j, m.Sub(n(1))),
		),
		apply(t, gospin.Jy, gospin.JzKet(j, m).State()))
}

func TestJz(t *testing.T) {
	x := func(m int64) gospin.Ket { return gospin.JxKet(n(1), n(m)) }
	y := func(m int64) gospin.Ket { return gospin.JyKet(n(1), n(m)) }
	z := func(m int64) gospin.Ket { return gospin.JzKet(n(1), n(m)) }
	hh := hbar.Mul(half)

	assert.True(t, gospin.CommutatorOf(gospin.Jz, gospin.Jminus).Doit().Equal(gospin.ScaleOp(hbar.Neg(), gospin.Jminus)))

	assertState(t, sum(hh, z(1), hh.Neg(), z(-1)), apply(t, gospin.Jz, x(1).State()))
	assertState(t, sum(hh, z(1), hh, z(-1)), apply(t, gospin.Jz, y(1).State()))
	assertState(t, sum(hbar, gospin.JzKet(n(2), n(1))), apply(t, gospin.Jz, gospin.JzKet(n(2), n(1)).State()))
	assertState(t,
		sum(hh, tp(x(1), z(1)), hh.Neg(), tp(x(1), z(-1)), hh, tp(z(1), x(1)), hh.Neg(), tp(z(-1), x(1))),
		apply(t, gospin.Jz, tp(x(1), x(1))))
	assertState(t,
		sum(hh, tp(y(1), z(1)), hh, tp(y(1), z(-1)), hh, tp(z(1), y(1)), hh, tp(z(-1), y(1))),
		apply(t, gospin.Jz, tp(y(1), y(1))))
	assertState(t, sum(n(2).Mul(hbar), tp(z(1), z(1))), apply(t, gospin.Jz, tp(z(1), z(1))))
	assert.True(t, apply(t, gospin.Jz, tp(z(1), z(-1))).IsZero())

	j1, j2, m1, m2 := symbolic.S("j1"), symbolic.S("j2"), symbolic.S("m1"), symbolic.S("m2")
	zz := tp(gospin.JzKet(j1, m1), gospin.JzKet(j2, m2))
	assertState(t, zz.Scale(hbar.Mul(m1).Add(hbar.Mul(m2))), apply(t, gospin.Jz, zz))
}

func TestUncoupledOperators(t *testing.T) {
	x := func(m int64) gospin.Ket { return gospin.JxKet(n(1), n(m)) }
	y := func(m int64) gospin.Ket { return gospin.JyKet(n(1), n(m)) }
	z := func(m int64) gospin.Ket { return gospin.JzKet(n(1), n(m)) }
	hh := hbar.Mul(half)
	r2h := ex(t, "sqrt(2)*hbar/2")
	r2ih := ex(t, "sqrt(2)*I*hbar/2")
	ih := symbolic.I().Mul(hbar)

	left := func(op gospin.Operator) gospin.Operator { return gospin.NewTensorOp(op, nil) }
	right := func(op gospin.Operator) gospin.Operator { return gospin.NewTensorOp(nil, op) }

	cases := []struct {
		op   gospin.Operator
		in   gospin.State
		want gospin.State
	}{
		{left(gospin.Jx), tp(x(1), x(-1)), sum(hbar, tp(x(1), x(-1)))},
		{right(gospin.Jx), tp(x(1), x(-1)), sum(hbar.Neg(), tp(x(1), x(-1)))},
		{left(gospin.Jx), tp(z(1), z(-1)), sum(r2h, tp(z(0), z(-1)))},
		{right(gospin.Jx), tp(z(1), z(-1)), sum(r2h, tp(z(1), z(0)))},
		{left(gospin.Jy), tp(y(1), y(-1)), sum(hbar, tp(y(1), y(-1)))},
		{right(gospin.Jy), tp(y(1), y(-1)), sum(hbar.Neg(), tp(y(1), y(-1)))},
		{left(gospin.Jy), tp(z(1), z(-1)), sum(r2ih, tp(z(0), z(-1)))},
		{right(gospin.Jy), tp(z(1), z(-1)), sum(r2ih.Neg(), tp(z(1), z(0)))},
		{left(gospin.Jz), tp(x(1), x(-1)), sum(hh, tp(z(1), x(-1)), hh.Neg(), tp(z(-1), x(-1)))},
		{right(gospin.Jz), tp(x(1), x(-1)), sum(hh, tp(x(1), z(1)), hh.Neg(), tp(x(1), z(-1)))},
		{left(gospin.Jz), tp(y(1), y(-1)), sum(hh, tp(z(1), y(-1)), hh, tp(z(-1), y(-1)))},
		{right(gospin.Jz), tp(y(1), y(-1)), sum(hh.Neg(), tp(y(1), z(-1)), hh.Neg(), tp(y(1), z(1)))},
		{left(gospin.Jz), tp(z(1), z(-1)), sum(hbar, tp(z(1), z(-1)))},
		{right(gospin.Jz), tp(z(1), z(-1)), sum(hbar.Neg(), tp(z(1), z(-1)))},
		{left(gospin.Jx), tp(y(1), y(-1)), sum(ih.Neg(), tp(x(1), y(-1)))},
		{right(gospin.Jx), tp(y(1), y(-1)), sum(ih.Neg(), tp(y(1), x(-1)))},
		{left(gospin.Jy), tp(x(1), x(-1)), sum(ih, tp(y(1), x(-1)))},
		{right(gospin.Jy), tp(x(1), x(-1)), sum(ih, tp(x(1), y(-1)))},
	}
	for _, c := range cases {
		assertState(t, c.want, apply(t, c.op, c.in))
	}

	j1, j2, m1, m2 := symbolic.S("j1"), symbolic.S("j2"), symbolic.S("m1"), symbolic.S("m2")
	xx := tp(gospin.JxKet(j1, m1), gospin.JxKet(j2, m2))
	assertState(t, xx.Scale(hbar.Mul(m1)), apply(t, left(gospin.Jx), xx))
	assertState(t, xx.Scale(hbar.Mul(m2)), apply(t, right(gospin.Jx), xx))
	yy := tp(gospin.JyKet(j1, m1), gospin.JyKet(j2, m2))
	assertState(t, yy.Scale(hbar.Mul(m2)), apply(t, right(gospin.Jy), yy))
	zz := tp(gospin.JzKet(j1, m1), gospin.JzKet(j2, m2))
	assertState(t, zz.Scale(hbar.Mul(m1)), apply(t, left(gospin.Jz), zz))

	ihh := symbolic.I().Mul(hh)
	assertState(t,
		sum(
			ihh.Neg().Mul(symbolic.Sqrt(ex(t, "j2^2 + j2 - m2^2 - m2"))), tp(gospin.JzKet(j1, m1), gospin.JzKet(j2, m2.Add(n(1)))),
			ihh.Mul(symbolic.Sqrt(ex(t, "j2^2 + j2 - m2^2 + m2"))), tp(gospin.JzKet(j1, m1), gospin.JzKet(j2, m2.Sub(n(1)))),
		),
		apply(t, right(gospin.Jy), zz))
}

func TestApply_OtherBasis(t *testing.T) {
	x := func(m int64) gospin.Ket { return gospin.JxKet(n(1), n(m)) }
	y := func(m int64) gospin.Ket { return gospin.JyKet(n(1), n(m)) }
	ih := symbolic.I().Mul(hbar)

	assertState(t, sum(ih.Neg(), x(1)), apply(t, gospin.Jx, y(1).State()))
	assertState(t, sum(ih, y(1)), apply(t, gospin.Jy, x(1).State()))
	assert.True(t, apply(t, gospin.Jx, y(0).State()).IsZero())
	assertState(t,
		sum(ih.Neg(), tp(x(1), y(1)), ih.Neg(), tp(y(1), x(1))),
		apply(t, gospin.Jx, tp(y(1), y(1))))
	assertState(t,
		sum(ih, tp(x(1), y(1)), ih, tp(y(1), x(1))),
		apply(t, gospin.Jy, tp(x(1), x(1))))
	assert.True(t, apply(t, gospin.Jy, tp(y(1), y(-1))).IsZero())
}

func TestTensorOp_CoupledAndMismatch(t *testing.T) {
	hh := []symbolic.Expr{half, half}
	u, d := gospin.JzKet(half, half), gospin.JzKet(half, mhalf)

	// coupled kets are uncoupled before acting factor by factor
	got := apply(t, gospin.NewTensorOp(gospin.Jz, nil), gospin.JzKetCoupled(n(0), n(0), hh).State())
	h := hbar.Mul(ex(t, "sqrt(2)/4"))
	assertState(t, sum(h, tp(u, d), h, tp(d, u)), got)

	_, err := gospin.Apply(gospin.NewTensorOp(gospin.Jz, nil, nil), tp(u, d))
	assert.ErrorIs(t, err, gospin.ErrIncompatible)

	assert.Equal(t, "TensorProduct(Jx, 1)", gospin.NewTensorOp(gospin.Jx, nil).String())
}

func TestApply_Identity(t *testing.T) {
	s := sum(n(3), gospin.JzKet(n(1), n(0)))
	assertState(t, s, apply(t, nil, s))
	assertState(t, s, apply(t, gospin.OpOf(nil), s))
}

func TestOpExpr(t *testing.T) {
	sq := gospin.ProductOf(gospin.Jz, gospin.Jz)
	assert.Equal(t, "Jz^2", sq.String())
	assert.Equal(t, "1/2*J+ + 1/2*J-", gospin.SumOf(gospin.Jplus, gospin.Jminus).Scale(half).String())

	e := gospin.SumOf(gospin.Jx, gospin.Jy).Sub(gospin.OpOf(gospin.Jy))
	assert.True(t, e.Equal(gospin.OpOf(gospin.Jx)))
	assert.True(t, gospin.OpOf(gospin.Jx).Sub(gospin.OpOf(gospin.Jx)).IsZero())
	assertExpr(t, n(1), sq.Coefficient(gospin.Jz, gospin.Jz))
	assert.True(t, sq.Coefficient(gospin.Jz).IsZero())

	// (Jx + Jy)(Jx - Jy) does not commute away the cross terms
	p := gospin.SumOf(gospin.Jx, gospin.Jy).Mul(gospin.SumOf(gospin.Jx, gospin.ScaleOp(n(-1), gospin.Jy)))
	assertExpr(t, n(-1), p.Coefficient(gospin.Jx, gospin.Jy))
	assertExpr(t, n(1), p.Coefficient(gospin.Jy, gospin.Jx))

	// a polynomial acts term by term
	k := gospin.JzKet(n(1), n(1))
	got := apply(t, gospin.SumOf(sq, gospin.ScaleOp(hbar, gospin.Jz)), k.State())
	assertState(t, sum(n(2).Mul(hbar.Pow(2)), k), got)
}

func TestRewriteOperator(t *testing.T) {
	// J2 in ladder form agrees with J2 on every state of a spin-1 multiplet
	ladder := gospin.RewriteOperator(gospin.J2, gospin.PlusMinus)
	cartesian := gospin.RewriteOperator(gospin.J2, gospin.XYZ)
	for _, m := range []int64{1, 0, -1} {
		k := gospin.JzKet(n(1), n(m)).State()
		want := apply(t, gospin.J2, k)
		assertState(t, want, apply(t, ladder, k))
		assertState(t, want, apply(t, cartesian, k))
	}

	// rewriting to XYZ and back to ladder operators is the identity
	back := gospin.RewriteOperator(gospin.RewriteOperator(gospin.Jplus, gospin.XYZ), gospin.PlusMinus)
	assert.True(t, back.Equal(gospin.OpOf(gospin.Jplus)), "got %s", back)

	// non-spin operators pass through
	r := gospin.NewRotation(n(0), symbolic.Pi(), n(0))
	assert.True(t, gospin.RewriteOperator(r, gospin.XYZ).Equal(gospin.OpOf(r)))
}

func TestCommutator(t *testing.T) {
	ih := symbolic.I().Mul(hbar)
	cases := []struct {
		a, b gospin.Operator
		want gospin.OpExpr
	}{
		{gospin.Jx, gospin.Jy, gospin.ScaleOp(ih, gospin.Jz)},
		{gospin.Jy, gospin.Jx, gospin.ScaleOp(ih.Neg(), gospin.Jz)},
		{gospin.Jz, gospin.Jx, gospin.ScaleOp(ih, gospin.Jy)},
		{gospin.Jz, gospin.Jplus, gospin.ScaleOp(hbar, gospin.Jplus)},
		{gospin.Jminus, gospin.Jplus, gospin.ScaleOp(n(-2).Mul(hbar), gospin.Jz)},
		{gospin.Jx, gospin.Jplus, gospin.ScaleOp(hbar.Neg(), gospin.Jz)},
		{gospin.Jy, gospin.Jplus, gospin.ScaleOp(ih.Neg(), gospin.Jz)},
		{gospin.Jy, gospin.Jminus, gospin.ScaleOp(ih.Neg(), gospin.Jz)},
		{gospin.Jx, gospin.Jminus, gospin.ScaleOp(hbar, gospin.Jz)},
		{gospin.J2, gospin.Jx, gospin.OpExpr{}},
		{gospin.Jz, gospin.Jz, gospin.OpExpr{}},
	}
	for _, c := range cases {
		got := gospin.CommutatorOf(c.a, c.b).Doit()
		assert.True(t, got.Equal(c.want), "[%s,%s]: want %s, got %s", c.a, c.b, c.want, got)
	}

	// bilinear over sums
	got := gospin.CommutatorOf(gospin.SumOf(gospin.Jx, gospin.Jy), gospin.OpOf(gospin.Jz)).Doit()
	want := gospin.SumOf(gospin.ScaleOp(ih.Neg(), gospin.Jy), gospin.ScaleOp(ih, gospin.Jx))
	assert.True(t, got.Equal(want), "got %s", got)

	// the unevaluated commutator acts as AB - BA
	k := gospin.JzKet(n(1), n(1)).State()
	c := gospin.CommutatorOf(gospin.Jx, gospin.Jy)
	assertState(t, apply(t, gospin.ScaleOp(ih, gospin.Jz), k), apply(t, c, k))
	assert.Equal(t, "[Jx,Jy]", c.String())
}

func TestMatrixElement_Symbolic(t *testing.T) {
	j, m := symbolic.S("j"), symbolic.S("m")
	got, err := gospin.MatrixElement(gospin.Jz, j, m, j, m)
	require.NoError(t, err)
	assertExpr(t, hbar.Mul(m), got)

	_, err = gospin.MatrixElement(gospin.Jz, n(1), n(2), n(1), n(1))
	assert.ErrorIs(t, err, gospin.ErrInvalidQuantumNumber)
}
