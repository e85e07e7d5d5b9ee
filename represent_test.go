package gospin_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/njchilds90/gospin"
	"github.com/njchilds90/gospin/symbolic"
)

// square builds an n x n matrix from row-major sources scaled by c.
func square(t *testing.T, c symbolic.Expr, srcs ...string) *symbolic.Matrix {
	t.Helper()
	size := 1
	for size*size < len(srcs) {
		size++
	}
	require.Equal(t, size*size, len(srcs))
	entries := make([]symbolic.Expr, len(srcs))
	for i, s := range srcs {
		entries[i] = ex(t, s).Mul(c)
	}
	return symbolic.MatrixFromSlice(size, size, entries)
}

func TestRepresentOperator(t *testing.T) {
	ctx := context.Background()
	ih := symbolic.I().Mul(hbar)
	cases := []struct {
		name string
		op   gospin.Operator
		j    symbolic.Expr
		want *symbolic.Matrix
	}{
		{"Jx half", gospin.Jx, half, square(t, hbar.Mul(half), "0", "1", "1", "0")},
		{"Jx one", gospin.Jx, n(1), square(t, hbar.Mul(ex(t, "sqrt(2)/2")),
			"0", "1", "0",
			"1", "0", "1",
			"0", "1", "0")},
		{"Jy half", gospin.Jy, half, square(t, ih.Mul(half), "0", "-1", "1", "0")},
		{"Jy one", gospin.Jy, n(1), square(t, ih.Mul(ex(t, "sqrt(2)/2")),
			"0", "-1", "0",
			"1", "0", "-1",
			"0", "1", "0")},
		{"Jz half", gospin.Jz, half, square(t, hbar.Mul(half), "1", "0", "0", "-1")},
		{"Jz one", gospin.Jz, n(1), square(t, hbar,
			"1", "0", "0",
			"0", "0", "0",
			"0", "0", "-1")},
		{"J+ half", gospin.Jplus, half, square(t, hbar, "0", "1", "0", "0")},
		{"J- half", gospin.Jminus, half, square(t, hbar, "0", "0", "1", "0")},
		{"J2 one", gospin.J2, n(1), square(t, hbar.Pow(2),
			"2", "0", "0",
			"0", "2", "0",
			"0", "0", "2")},
	}
	for _, c := range cases {
		got, err := gospin.RepresentOperator(ctx, c.op, gospin.BasisZ, c.j)
		require.NoError(t, err, c.name)
		assertMatrix(t, c.want, got)
	}
}

func TestRepresentOperator_LadderSum(t *testing.T) {
	ctx := context.Background()
	for _, j := range []symbolic.Expr{half, n(1), symbolic.F(3, 2)} {
		jx, err := gospin.RepresentOperator(ctx, gospin.Jx, gospin.BasisZ, j)
		require.NoError(t, err)
		jp, err := gospin.RepresentOperator(ctx, gospin.Jplus, gospin.BasisZ, j)
		require.NoError(t, err)
		jm, err := gospin.RepresentOperator(ctx, gospin.Jminus, gospin.BasisZ, j)
		require.NoError(t, err)
		assertMatrix(t, jx, jp.MatAdd(jm).Scale(half))
	}
}

func TestRepresentOperator_DefaultsToSpinHalf(t *testing.T) {
	got, err := gospin.RepresentOperator(context.Background(), gospin.Jz, gospin.BasisZ)
	require.NoError(t, err)
	assertMatrix(t, square(t, hbar.Mul(half), "1", "0", "0", "-1"), got)
}

func TestRepresentOperator_Products(t *testing.T) {
	ctx := context.Background()
	got, err := gospin.RepresentOperator(ctx, gospin.J2, gospin.BasisZ, half, half)
	require.NoError(t, err)
	assertMatrix(t, square(t, hbar.Pow(2),
		"2", "0", "0", "0",
		"0", "1", "1", "0",
		"0", "1", "1", "0",
		"0", "0", "0", "2"), got)

	got, err = gospin.RepresentOperator(ctx, gospin.NewTensorOp(gospin.Jz, nil), gospin.BasisZ, half, half)
	require.NoError(t, err)
	assertMatrix(t, square(t, hbar.Mul(half),
		"1", "0", "0", "0",
		"0", "1", "0", "0",
		"0", "0", "-1", "0",
		"0", "0", "0", "-1"), got)
}

func TestRepresentOperator_Rotation(t *testing.T) {
	r := gospin.NewRotation(n(0), symbolic.Pi().Mul(half), n(0))
	got, err := gospin.RepresentOperator(context.Background(), r, gospin.BasisZ, half)
	require.NoError(t, err)
	assertMatrix(t, square(t, ex(t, "sqrt(2)/2"), "1", "-1", "1", "1"), got)
}

func TestRepresentOperator_Errors(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	_, err := gospin.RepresentOperator(context.Background(), gospin.Jz, gospin.BasisZ, symbolic.S("j"))
	assert.ErrorIs(t, err, gospin.ErrSymbolic)

	_, err = gospin.RepresentOperator(context.Background(), gospin.Jz, gospin.BasisZ, n(-1))
	assert.ErrorIs(t, err, gospin.ErrInvalidQuantumNumber)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = gospin.RepresentOperator(ctx, gospin.Jz, gospin.BasisZ, n(1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRepresent_SingleKets(t *testing.T) {
	x := func(j, m symbolic.Expr) gospin.Ket { return gospin.JxKet(j, m) }
	y := func(j, m symbolic.Expr) gospin.Ket { return gospin.JyKet(j, m) }
	z := func(j, m symbolic.Expr) gospin.Ket { return gospin.JzKet(j, m) }
	cases := []struct {
		ket  gospin.Ket
		b    gospin.Basis
		want []string
	}{
		// Jz basis
		{x(half, half), gospin.BasisZ, []string{"sqrt(2)/2", "sqrt(2)/2"}},
		{x(half, mhalf), gospin.BasisZ, []string{"-sqrt(2)/2", "sqrt(2)/2"}},
		{x(n(1), n(1)), gospin.BasisZ, []string{"1/2", "sqrt(2)/2", "1/2"}},
		{x(n(1), n(0)), gospin.BasisZ, []string{"-sqrt(2)/2", "0", "sqrt(2)/2"}},
		{x(n(1), n(-1)), gospin.BasisZ, []string{"1/2", "-sqrt(2)/2", "1/2"}},
		{y(half, half), gospin.BasisZ, []string{"-sqrt(2)/2", "-sqrt(2)*I/2"}},
		{y(half, mhalf), gospin.BasisZ, []string{"-sqrt(2)*I/2", "-sqrt(2)/2"}},
		{y(n(1), n(1)), gospin.BasisZ, []string{"1/2", "sqrt(2)*I/2", "-1/2"}},
		{y(n(1), n(0)), gospin.BasisZ, []string{"sqrt(2)*I/2", "0", "sqrt(2)*I/2"}},
		{y(n(1), n(-1)), gospin.BasisZ, []string{"-1/2", "sqrt(2)*I/2", "1/2"}},
		{z(half, half), gospin.BasisZ, []string{"1", "0"}},
		{z(half, mhalf), gospin.BasisZ, []string{"0", "1"}},
		{z(n(1), n(1)), gospin.BasisZ, []string{"1", "0", "0"}},
		{z(n(1), n(0)), gospin.BasisZ, []string{"0", "1", "0"}},
		{z(n(1), n(-1)), gospin.BasisZ, []string{"0", "0", "1"}},
		// Jx basis
		{x(half, half), gospin.BasisX, []string{"1", "0"}},
		{x(half, mhalf), gospin.BasisX, []string{"0", "1"}},
		{x(n(1), n(1)), gospin.BasisX, []string{"1", "0", "0"}},
		{x(n(1), n(0)), gospin.BasisX, []string{"0", "1", "0"}},
		{x(n(1), n(-1)), gospin.BasisX, []string{"0", "0", "1"}},
		{y(half, half), gospin.BasisX, []string{"sqrt(2)/2 - sqrt(2)*I/2", "0"}},
		{y(half, mhalf), gospin.BasisX, []string{"0", "sqrt(2)/2 + sqrt(2)*I/2"}},
		{y(n(1), n(1)), gospin.BasisX, []string{"-I", "0", "0"}},
		{y(n(1), n(0)), gospin.BasisX, []string{"0", "1", "0"}},
		{y(n(1), n(-1)), gospin.BasisX, []string{"0", "0", "I"}},
		{z(half, half), gospin.BasisX, []string{"-sqrt(2)/2", "sqrt(2)/2"}},
		{z(half, mhalf), gospin.BasisX, []string{"-sqrt(2)/2", "-sqrt(2)/2"}},
		{z(n(1), n(1)), gospin.BasisX, []string{"1/2", "-sqrt(2)/2", "1/2"}},
		{z(n(1), n(0)), gospin.BasisX, []string{"sqrt(2)/2", "0", "-sqrt(2)/2"}},
		{z(n(1), n(-1)), gospin.BasisX, []string{"1/2", "sqrt(2)/2", "1/2"}},
		// Jy basis
		{x(half, half), gospin.BasisY, []string{"-sqrt(2)/2 - sqrt(2)*I/2", "0"}},
		{x(half, mhalf), gospin.BasisY, []string{"0", "-sqrt(2)/2 + sqrt(2)*I/2"}},
		{x(n(1), n(1)), gospin.BasisY, []string{"I", "0", "0"}},
		{x(n(1), n(0)), gospin.BasisY, []string{"0", "1", "0"}},
		{x(n(1), n(-1)), gospin.BasisY, []string{"0", "0", "-I"}},
		{y(half, half), gospin.BasisY, []string{"1", "0"}},
		{y(half, mhalf), gospin.BasisY, []string{"0", "1"}},
		{y(n(1), n(1)), gospin.BasisY, []string{"1", "0", "0"}},
		{y(n(1), n(0)), gospin.BasisY, []string{"0", "1", "0"}},
		{y(n(1), n(-1)), gospin.BasisY, []string{"0", "0", "1"}},
		{z(half, half), gospin.BasisY, []string{"-sqrt(2)/2", "sqrt(2)*I/2"}},
		{z(half, mhalf), gospin.BasisY, []string{"sqrt(2)*I/2", "-sqrt(2)/2"}},
		{z(n(1), n(1)), gospin.BasisY, []string{"1/2", "-sqrt(2)*I/2", "-1/2"}},
		{z(n(1), n(0)), gospin.BasisY, []string{"-sqrt(2)*I/2", "0", "-sqrt(2)*I/2"}},
		{z(n(1), n(-1)), gospin.BasisY, []string{"-1/2", "-sqrt(2)*I/2", "1/2"}},
	}
	for _, c := range cases {
		got, err := gospin.Represent(c.ket.State(), c.b)
		require.NoError(t, err, "%s in %s", c.ket, c.b)
		assertMatrix(t, column(t, c.want...), got)
	}
}

func TestRepresent_Products(t *testing.T) {
	zu, zd := gospin.JzKet(half, half), gospin.JzKet(half, mhalf)
	xu, xd := gospin.JxKet(half, half), gospin.JxKet(half, mhalf)
	yu, yd := gospin.JyKet(half, half), gospin.JyKet(half, mhalf)
	cases := []struct {
		in   gospin.State
		b    gospin.Basis
		want []string
	}{
		{tp(zu, zu), gospin.BasisZ, []string{"1", "0", "0", "0"}},
		{tp(zu, zd), gospin.BasisZ, []string{"0", "1", "0", "0"}},
		{tp(zd, zu), gospin.BasisZ, []string{"0", "0", "1", "0"}},
		{tp(zd, zd), gospin.BasisZ, []string{"0", "0", "0", "1"}},
		{tp(zu, zu), gospin.BasisY, []string{"1/2", "-I/2", "-I/2", "-1/2"}},
		{tp(zu, zu), gospin.BasisX, []string{"1/2", "-1/2", "-1/2", "1/2"}},
		{tp(zu, zd), gospin.BasisX, []string{"1/2", "1/2", "-1/2", "-1/2"}},
		{tp(zd, zu), gospin.BasisX, []string{"1/2", "-1/2", "1/2", "-1/2"}},
		{tp(zd, zd), gospin.BasisX, []string{"1/2", "1/2", "1/2", "1/2"}},
		{tp(zu, zd), gospin.BasisY, []string{"-I/2", "1/2", "-1/2", "-I/2"}},
		{tp(zd, zu), gospin.BasisY, []string{"-I/2", "-1/2", "1/2", "-I/2"}},
		{tp(zd, zd), gospin.BasisY, []string{"-1/2", "-I/2", "-I/2", "1/2"}},
		{tp(yu, yu), gospin.BasisX, []string{"-I", "0", "0", "0"}},
		{tp(yu, yd), gospin.BasisX, []string{"0", "1", "0", "0"}},
		{tp(yd, yu), gospin.BasisX, []string{"0", "0", "1", "0"}},
		{tp(yd, yd), gospin.BasisX, []string{"0", "0", "0", "I"}},
		{tp(xu, xu), gospin.BasisY, []string{"I", "0", "0", "0"}},
		{tp(xd, xd), gospin.BasisY, []string{"0", "0", "0", "-I"}},
		{tp(yu, yu), gospin.BasisY, []string{"1", "0", "0", "0"}},
		{tp(gospin.JzKet(n(1), n(0)), zu), gospin.BasisZ, []string{"0", "0", "1", "0", "0", "0"}},
	}
	for _, c := range cases {
		got, err := gospin.Represent(c.in, c.b)
		require.NoError(t, err, "%s in %s", c.in, c.b)
		assertMatrix(t, column(t, c.want...), got)
	}
}

func TestRepresent_CoupledToUncoupled(t *testing.T) {
	hh := []symbolic.Expr{half, half}
	cases := []struct {
		ket  gospin.Ket
		want []string
	}{
		{gospin.JxKetCoupled(n(0), n(0), hh), []string{"0", "sqrt(2)/2", "-sqrt(2)/2", "0"}},
		{gospin.JxKetCoupled(n(1), n(1), hh), []string{"1/2", "1/2", "1/2", "1/2"}},
		{gospin.JxKetCoupled(n(1), n(0), hh), []string{"-sqrt(2)/2", "0", "0", "sqrt(2)/2"}},
		{gospin.JxKetCoupled(n(1), n(-1), hh), []string{"1/2", "-1/2", "-1/2", "1/2"}},
		{gospin.JyKetCoupled(n(0), n(0), hh), []string{"0", "sqrt(2)/2", "-sqrt(2)/2", "0"}},
		{gospin.JyKetCoupled(n(1), n(1), hh), []string{"1/2", "I/2", "I/2", "-1/2"}},
		{gospin.JyKetCoupled(n(1), n(0), hh), []string{"sqrt(2)*I/2", "0", "0", "sqrt(2)*I/2"}},
		{gospin.JyKetCoupled(n(1), n(-1), hh), []string{"-1/2", "I/2", "I/2", "1/2"}},
		{gospin.JzKetCoupled(n(0), n(0), hh), []string{"0", "sqrt(2)/2", "-sqrt(2)/2", "0"}},
		{gospin.JzKetCoupled(n(1), n(1), hh), []string{"1", "0", "0", "0"}},
		{gospin.JzKetCoupled(n(1), n(0), hh), []string{"0", "sqrt(2)/2", "sqrt(2)/2", "0"}},
		{gospin.JzKetCoupled(n(1), n(-1), hh), []string{"0", "0", "0", "1"}},
	}
	for _, c := range cases {
		got, err := gospin.Represent(c.ket.State(), gospin.BasisZ)
		require.NoError(t, err, "%s", c.ket)
		assertMatrix(t, column(t, c.want...), got)
	}
}

func TestRepresentCoupled(t *testing.T) {
	xu, xd := gospin.JxKet(half, half), gospin.JxKet(half, mhalf)
	yu, yd := gospin.JyKet(half, half), gospin.JyKet(half, mhalf)
	zu, zd := gospin.JzKet(half, half), gospin.JzKet(half, mhalf)
	cases := []struct {
		in   gospin.State
		want []string
	}{
		{tp(xu, xu), []string{"0", "1/2", "sqrt(2)/2", "1/2"}},
		{tp(xu, xd), []string{"sqrt(2)/2", "-1/2", "0", "1/2"}},
		{tp(xd, xu), []string{"-sqrt(2)/2", "-1/2", "0", "1/2"}},
		{tp(xd, xd), []string{"0", "1/2", "-sqrt(2)/2", "1/2"}},
		{tp(yu, yu), []string{"0", "1/2", "sqrt(2)*I/2", "-1/2"}},
		{tp(yu, yd), []string{"sqrt(2)/2", "I/2", "0", "I/2"}},
		{tp(yd, yu), []string{"-sqrt(2)/2", "I/2", "0", "I/2"}},
		{tp(yd, yd), []string{"0", "-1/2", "sqrt(2)*I/2", "1/2"}},
		{tp(zu, zu), []string{"0", "1", "0", "0"}},
		{tp(zu, zd), []string{"sqrt(2)/2", "0", "sqrt(2)/2", "0"}},
		{tp(zd, zu), []string{"-sqrt(2)/2", "0", "sqrt(2)/2", "0"}},
		{tp(zd, zd), []string{"0", "0", "0", "1"}},
	}
	for _, c := range cases {
		got, err := gospin.RepresentCoupled(c.in, gospin.BasisZ)
		require.NoError(t, err, "%s", c.in)
		assertMatrix(t, column(t, c.want...), got)
	}

	// a coupled ket is its own basis vector
	got, err := gospin.RepresentCoupled(gospin.JzKetCoupled(n(1), n(0), []symbolic.Expr{half, half}).State(), gospin.BasisZ)
	require.NoError(t, err)
	assertMatrix(t, column(t, "0", "0", "1", "0"), got)
}

func TestRepresent_Errors(t *testing.T) {
	_, err := gospin.Represent(gospin.State{}, gospin.BasisZ)
	assert.ErrorIs(t, err, gospin.ErrIncompatible)

	_, err = gospin.RepresentCoupled(gospin.State{}, gospin.BasisZ)
	assert.ErrorIs(t, err, gospin.ErrIncompatible)

	_, err = gospin.Represent(gospin.JzKet(symbolic.S("j"), symbolic.S("m")).State(), gospin.BasisZ)
	assert.ErrorIs(t, err, gospin.ErrSymbolic)

	mixed := sum(n(1), gospin.JzKet(half, half), n(1), gospin.JzKet(n(1), n(0)))
	_, err = gospin.Represent(mixed, gospin.BasisZ)
	assert.ErrorIs(t, err, gospin.ErrIncompatible)
}
