package gospin

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/njchilds90/gospin/internal/memo"
	"github.com/njchilds90/gospin/symbolic"
)

// coefficients memoises Clebsch-Gordan, 3j and 6j values and basis-change
// matrices.
var coefficients = memo.New(memo.DefaultOptions())

// CacheStats is a snapshot of the coefficient cache.
type CacheStats = memo.Stats

// SetCacheCapacity bounds the number of memoised coefficients. n must be
// positive.
func SetCacheCapacity(n int) error {
	if n <= 0 {
		return fmt.Errorf("gospin: cache capacity must be positive, got %d", n)
	}
	coefficients.Resize(n)
	return nil
}

// CoefficientCacheStats reports hit and miss counts of the coefficient cache.
func CoefficientCacheStats() CacheStats { return coefficients.Stats() }

// doubled converts labels to 2x. ok is false when any label is symbolic.
func doubled(xs ...symbolic.Expr) ([]int64, bool, error) {
	out := make([]int64, len(xs))
	numeric := true
	for i, x := range xs {
		if !x.IsNumber() {
			numeric = false
			continue
		}
		v, ok := twice(x)
		if !ok {
			return nil, false, fmt.Errorf("%w: %s is not an integer or half-integer", ErrInvalidQuantumNumber, x)
		}
		out[i] = v
	}
	return out, numeric, nil
}

func cacheKey(prefix string, vals []int64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = halfString(v)
	}
	return prefix + ":" + strings.Join(parts, ",")
}

// validPair reports whether (j, m) (doubled) is an allowed label pair.
func validPair(j2, m2 int64) bool {
	return j2 >= 0 && abs64(m2) <= j2 && (j2-m2)%2 == 0
}

// ============================================================
// Clebsch-Gordan
// ============================================================

// ClebschGordan returns <j1 m1; j2 m2 | j3 m3> in the Condon-Shortley phase
// convention. Selection-rule violations give zero; symbolic labels give the
// unevaluated CG(j1, m1, j2, m2, j3, m3).
func ClebschGordan(j1, m1, j2, m2, j3, m3 symbolic.Expr) (symbolic.Expr, error) {
	v, numeric, err := doubled(j1, m1, j2, m2, j3, m3)
	if err != nil {
		return symbolic.Expr{}, err
	}
	if !numeric {
		return symbolic.Func("CG", j1, m1, j2, m2, j3, m3), nil
	}
	for _, j := range []int64{v[0], v[2], v[4]} {
		if j < 0 {
			return symbolic.Expr{}, fmt.Errorf("%w: negative j", ErrInvalidQuantumNumber)
		}
	}
	return cg(v[0], v[1], v[2], v[3], v[4], v[5])
}

// cg is ClebschGordan for doubled numeric labels.
func cg(j1, m1, j2, m2, j3, m3 int64) (symbolic.Expr, error) {
	v := []int64{j1, m1, j2, m2, j3, m3}
	out, err := coefficients.GetOrCompute(cacheKey("cg", v), func() (any, error) {
		return clebschGordan(j1, m1, j2, m2, j3, m3), nil
	})
	if err != nil {
		return symbolic.Expr{}, err
	}
	c, ok := out.(symbolic.Expr)
	if !ok {
		return symbolic.Expr{}, fmt.Errorf("gospin: cached %s is %T, not an expression", cacheKey("cg", v), out)
	}
	return c, nil
}

// clebschGordan evaluates Racah's formula on doubled labels.
func clebschGordan(j1, m1, j2, m2, j3, m3 int64) symbolic.Expr {
	if m1+m2 != m3 || !validPair(j1, m1) || !validPair(j2, m2) || !validPair(j3, m3) || !triangle(j1, j2, j3) {
		return symbolic.Expr{}
	}
	f := func(n2 int64) *big.Int { return factorial(n2 / 2) }

	a := new(big.Rat).SetInt(big.NewInt(j3 + 1))
	a.Mul(a, new(big.Rat).SetInt(f(j1+j2-j3)))
	a.Mul(a, new(big.Rat).SetInt(f(j1-j2+j3)))
	a.Mul(a, new(big.Rat).SetInt(f(-j1+j2+j3)))
	a.Quo(a, new(big.Rat).SetInt(f(j1+j2+j3+2)))
	for _, n := range []int64{j1 + m1, j1 - m1, j2 + m2, j2 - m2, j3 + m3, j3 - m3} {
		a.Mul(a, new(big.Rat).SetInt(f(n)))
	}

	kmin := maxInt64(0, -(j3-j2+m1)/2, -(j3-j1-m2)/2)
	kmax := minInt64((j1+j2-j3)/2, (j1-m1)/2, (j2+m2)/2)
	sum := new(big.Rat)
	for k := kmin; k <= kmax; k++ {
		den := factorial(k)
		for _, n := range []int64{(j1+j2-j3)/2 - k, (j1-m1)/2 - k, (j2+m2)/2 - k, (j3-j2+m1)/2 + k, (j3-j1-m2)/2 + k} {
			den.Mul(den, factorial(n))
		}
		t := new(big.Rat).SetFrac(big.NewInt(1), den)
		if k%2 != 0 {
			t.Neg(t)
		}
		sum.Add(sum, t)
	}
	return symbolic.FromNum(symbolic.SqrtRat(a)).Mul(symbolic.Rat(sum))
}

// ============================================================
// Wigner 3j and 6j
// ============================================================

// Wigner3j returns the 3j symbol (j1 j2 j3; m1 m2 m3).
func Wigner3j(j1, j2, j3, m1, m2, m3 symbolic.Expr) (symbolic.Expr, error) {
	v, numeric, err := doubled(j1, j2, j3, m1, m2, m3)
	if err != nil {
		return symbolic.Expr{}, err
	}
	if !numeric {
		return symbolic.Func("Wigner3j", j1, j2, j3, m1, m2, m3), nil
	}
	out, err := coefficients.GetOrCompute(cacheKey("3j", v), func() (any, error) {
		c := clebschGordan(v[0], v[3], v[1], v[4], v[2], -v[5])
		if c.IsZero() {
			return c, nil
		}
		e := (v[0] - v[1] - v[5]) / 2
		if e%2 != 0 {
			c = c.Neg()
		}
		norm := symbolic.FromNum(symbolic.SqrtRat(big.NewRat(1, v[2]+1)))
		return c.Mul(norm), nil
	})
	if err != nil {
		return symbolic.Expr{}, err
	}
	return out.(symbolic.Expr), nil
}

// Wigner6j returns the 6j symbol {j1 j2 j3; j4 j5 j6} by the Racah sum.
func Wigner6j(j1, j2, j3, j4, j5, j6 symbolic.Expr) (symbolic.Expr, error) {
	v, numeric, err := doubled(j1, j2, j3, j4, j5, j6)
	if err != nil {
		return symbolic.Expr{}, err
	}
	if !numeric {
		return symbolic.Func("Wigner6j", j1, j2, j3, j4, j5, j6), nil
	}
	for _, j := range v {
		if j < 0 {
			return symbolic.Expr{}, fmt.Errorf("%w: negative j in 6j symbol", ErrInvalidQuantumNumber)
		}
	}
	out, err := coefficients.GetOrCompute(cacheKey("6j", v), func() (any, error) {
		return wigner6j(v[0], v[1], v[2], v[3], v[4], v[5]), nil
	})
	if err != nil {
		return symbolic.Expr{}, err
	}
	return out.(symbolic.Expr), nil
}

func wigner6j(j1, j2, j3, j4, j5, j6 int64) symbolic.Expr {
	triads := [][3]int64{{j1, j2, j3}, {j1, j5, j6}, {j4, j2, j6}, {j4, j5, j3}}
	p := big.NewRat(1, 1)
	for _, t := range triads {
		if !triangle(t[0], t[1], t[2]) {
			return symbolic.Expr{}
		}
		p.Mul(p, delta(t[0], t[1], t[2]))
	}
	a := []int64{(j1 + j2 + j3) / 2, (j1 + j5 + j6) / 2, (j4 + j2 + j6) / 2, (j4 + j5 + j3) / 2}
	b := []int64{(j1 + j2 + j4 + j5) / 2, (j2 + j3 + j5 + j6) / 2, (j3 + j1 + j6 + j4) / 2}
	sum := new(big.Rat)
	for t := maxInt64(a...); t <= minInt64(b...); t++ {
		den := big.NewInt(1)
		for _, x := range a {
			den.Mul(den, factorial(t-x))
		}
		for _, y := range b {
			den.Mul(den, factorial(y-t))
		}
		term := new(big.Rat).SetFrac(factorial(t+1), den)
		if t%2 != 0 {
			term.Neg(term)
		}
		sum.Add(sum, term)
	}
	return symbolic.FromNum(symbolic.SqrtRat(p)).Mul(symbolic.Rat(sum))
}

// delta is the squared triangle coefficient (a+b-c)!(a-b+c)!(-a+b+c)!/(a+b+c+1)!.
func delta(a2, b2, c2 int64) *big.Rat {
	num := new(big.Int).Mul(factorial((a2+b2-c2)/2), factorial((a2-b2+c2)/2))
	num.Mul(num, factorial((-a2+b2+c2)/2))
	return new(big.Rat).SetFrac(num, factorial((a2+b2+c2)/2+1))
}

func maxInt64(xs ...int64) int64 {
	out := xs[0]
	for _, x := range xs[1:] {
		if x > out {
			out = x
		}
	}
	return out
}

func minInt64(xs ...int64) int64 {
	out := xs[0]
	for _, x := range xs[1:] {
		if x < out {
			out = x
		}
	}
	return out
}
