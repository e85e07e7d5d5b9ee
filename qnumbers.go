package gospin

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/njchilds90/gospin/symbolic"
)

// Hbar returns the reduced Planck constant symbol.
func Hbar() symbolic.Expr { return symbolic.S("hbar") }

// twice returns 2x when x is a rational number with an integral double.
func twice(x symbolic.Expr) (int64, bool) {
	r, ok := x.AsRat()
	if !ok {
		return 0, false
	}
	d := new(big.Rat).Mul(r, big.NewRat(2, 1))
	if !d.IsInt() || !d.Num().IsInt64() {
		return 0, false
	}
	return d.Num().Int64(), true
}

// half returns n/2 as an expression.
func half(n2 int64) symbolic.Expr { return symbolic.F(n2, 2) }

// halfString renders n/2 as a plain number for cache keys.
func halfString(n2 int64) string {
	if n2%2 == 0 {
		return strconv.FormatInt(n2/2, 10)
	}
	return strconv.FormatInt(n2, 10) + "/2"
}

// checkJ validates a total angular momentum label. Non-numeric labels pass.
func checkJ(j symbolic.Expr) (int64, bool, error) {
	if !j.IsNumber() {
		return 0, false, nil
	}
	j2, ok := twice(j)
	if !ok || j2 < 0 {
		return 0, false, fmt.Errorf("%w: j = %s must be a non-negative integer or half-integer", ErrInvalidQuantumNumber, j)
	}
	return j2, true, nil
}

// checkJM validates a (j, m) pair. numeric is true when both are numbers.
func checkJM(j, m symbolic.Expr) (j2, m2 int64, numeric bool, err error) {
	j2, jok, err := checkJ(j)
	if err != nil {
		return 0, 0, false, err
	}
	if m.IsNumber() {
		var ok bool
		if m2, ok = twice(m); !ok {
			return 0, 0, false, fmt.Errorf("%w: m = %s must be an integer or half-integer", ErrInvalidQuantumNumber, m)
		}
		if jok {
			if abs64(m2) > j2 || (j2-m2)%2 != 0 {
				return 0, 0, false, fmt.Errorf("%w: m = %s not allowed for j = %s", ErrInvalidQuantumNumber, m, j)
			}
			return j2, m2, true, nil
		}
	}
	return j2, m2, false, nil
}

// mValues lists 2m for m = j, j-1, ..., -j.
func mValues(j2 int64) []int64 {
	out := make([]int64, 0, j2+1)
	for m2 := j2; m2 >= -j2; m2 -= 2 {
		out = append(out, m2)
	}
	return out
}

// mIndex is the position of 2m in mValues(j2).
func mIndex(j2, m2 int64) int { return int((j2 - m2) / 2) }

// triangle reports whether a, b and c (all doubled) satisfy the triangle
// condition with an integral sum.
func triangle(a2, b2, c2 int64) bool {
	if a2 < 0 || b2 < 0 || c2 < 0 {
		return false
	}
	if (a2+b2+c2)%2 != 0 {
		return false
	}
	return c2 >= abs64(a2-b2) && c2 <= a2+b2
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// factorial returns n! as a big integer. n must be non-negative.
func factorial(n int64) *big.Int {
	return new(big.Int).MulRange(1, n)
}
