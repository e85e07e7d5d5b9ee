package gospin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gospin"
	"github.com/njchilds90/gospin/symbolic"
)

var (
	half  = symbolic.F(1, 2)
	mhalf = symbolic.F(-1, 2)
	hbar  = gospin.Hbar()
)

func n(v int64) symbolic.Expr { return symbolic.N(v) }

func ex(t *testing.T, src string) symbolic.Expr {
	t.Helper()
	e, err := symbolic.Parse(src)
	require.NoError(t, err, "parse %q", src)
	return e
}

func assertExpr(t *testing.T, want, got symbolic.Expr, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, want.Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

func assertState(t *testing.T, want, got gospin.State) {
	t.Helper()
	assert.Truef(t, want.Equal(got), "want %s\n got %s", want, got)
}

// sum builds c1*s1 + c2*s2 + ... from alternating coefficients and states.
func sum(terms ...interface{}) gospin.State {
	var parts []gospin.State
	for i := 0; i < len(terms); i += 2 {
		c := terms[i].(symbolic.Expr)
		var s gospin.State
		switch v := terms[i+1].(type) {
		case gospin.Ket:
			s = v.State()
		case gospin.State:
			s = v
		}
		parts = append(parts, s.Scale(c))
	}
	return gospin.SumOfStates(parts...)
}

func tp(kets ...gospin.Ket) gospin.State { return gospin.TensorProductOf(kets...) }

func column(t *testing.T, srcs ...string) *symbolic.Matrix {
	t.Helper()
	entries := make([]symbolic.Expr, len(srcs))
	for i, s := range srcs {
		entries[i] = ex(t, s)
	}
	return symbolic.ColumnVector(entries...)
}

func assertMatrix(t *testing.T, want, got *symbolic.Matrix) {
	t.Helper()
	require.NotNil(t, got)
	assert.Truef(t, want.Equal(got), "want %s\n got %s", want, got)
}
