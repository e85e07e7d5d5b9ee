package symbolic

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Num: exact algebraic number
// ============================================================

// Num is an exact number of the form sum_n (re_n + im_n*I)*sqrt(n) where every
// radicand n is a squarefree positive integer. The zero value is 0.
//
// Parts are kept sorted by radicand with zero parts dropped, so two Nums are
// equal exactly when their part lists are equal.
type Num struct{ parts []surd }

type surd struct {
	rad    *big.Int // squarefree, >= 1
	re, im *big.Rat
}

var bigOne = big.NewInt(1)

func (s surd) zero() bool { return s.re.Sign() == 0 && s.im.Sign() == 0 }

// NumInt returns the integer n.
func NumInt(n int64) Num { return NumRat(new(big.Rat).SetInt64(n)) }

// NumFrac returns p/q. It panics when q is zero.
func NumFrac(p, q int64) Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return NumRat(new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q)))
}

// NumRat returns the rational r. r is copied.
func NumRat(r *big.Rat) Num {
	if r.Sign() == 0 {
		return Num{}
	}
	return Num{parts: []surd{{rad: bigOne, re: new(big.Rat).Set(r), im: new(big.Rat)}}}
}

// NumI returns the imaginary unit.
func NumI() Num {
	return Num{parts: []surd{{rad: bigOne, re: new(big.Rat), im: big.NewRat(1, 1)}}}
}

func (a Num) IsZero() bool { return len(a.parts) == 0 }

func (a Num) IsOne() bool {
	r, ok := a.Rat()
	return ok && r.Cmp(big.NewRat(1, 1)) == 0
}

// Rat returns the value as a rational when it is one.
func (a Num) Rat() (*big.Rat, bool) {
	if len(a.parts) == 0 {
		return new(big.Rat), true
	}
	if len(a.parts) != 1 {
		return nil, false
	}
	p := a.parts[0]
	if p.rad.Cmp(bigOne) != 0 || p.im.Sign() != 0 {
		return nil, false
	}
	return new(big.Rat).Set(p.re), true
}

func (a Num) IsRational() bool { _, ok := a.Rat(); return ok }

func (a Num) IsReal() bool {
	for _, p := range a.parts {
		if p.im.Sign() != 0 {
			return false
		}
	}
	return true
}

func (a Num) Equal(b Num) bool {
	if len(a.parts) != len(b.parts) {
		return false
	}
	for i := range a.parts {
		x, y := a.parts[i], b.parts[i]
		if x.rad.Cmp(y.rad) != 0 || x.re.Cmp(y.re) != 0 || x.im.Cmp(y.im) != 0 {
			return false
		}
	}
	return true
}

func (a Num) Add(b Num) Num {
	out := make([]surd, 0, len(a.parts)+len(b.parts))
	i, k := 0, 0
	for i < len(a.parts) || k < len(b.parts) {
		switch {
		case k == len(b.parts) || (i < len(a.parts) && a.parts[i].rad.Cmp(b.parts[k].rad) < 0):
			out = append(out, a.parts[i])
			i++
		case i == len(a.parts) || a.parts[i].rad.Cmp(b.parts[k].rad) > 0:
			out = append(out, b.parts[k])
			k++
		default:
			s := surd{
				rad: a.parts[i].rad,
				re:  new(big.Rat).Add(a.parts[i].re, b.parts[k].re),
				im:  new(big.Rat).Add(a.parts[i].im, b.parts[k].im),
			}
			if !s.zero() {
				out = append(out, s)
			}
			i++
			k++
		}
	}
	return Num{parts: out}
}

func (a Num) Neg() Num {
	out := make([]surd, len(a.parts))
	for i, p := range a.parts {
		out[i] = surd{rad: p.rad, re: new(big.Rat).Neg(p.re), im: new(big.Rat).Neg(p.im)}
	}
	return Num{parts: out}
}

func (a Num) Sub(b Num) Num { return a.Add(b.Neg()) }

func (a Num) Conj() Num {
	out := make([]surd, len(a.parts))
	for i, p := range a.parts {
		out[i] = surd{rad: p.rad, re: p.re, im: new(big.Rat).Neg(p.im)}
	}
	return Num{parts: out}
}

// Mul uses sqrt(a)*sqrt(b) = g*sqrt(ab/g^2) with g = gcd(a, b), which keeps
// radicands squarefree.
func (a Num) Mul(b Num) Num {
	if a.IsZero() || b.IsZero() {
		return Num{}
	}
	acc := map[string]surd{}
	for _, x := range a.parts {
		for _, y := range b.parts {
			g := new(big.Int).GCD(nil, nil, x.rad, y.rad)
			rad := new(big.Int).Quo(x.rad, g)
			rad.Mul(rad, new(big.Int).Quo(y.rad, g))
			gr := new(big.Rat).SetInt(g)

			re := new(big.Rat).Mul(x.re, y.re)
			re.Sub(re, new(big.Rat).Mul(x.im, y.im))
			re.Mul(re, gr)
			im := new(big.Rat).Mul(x.re, y.im)
			im.Add(im, new(big.Rat).Mul(x.im, y.re))
			im.Mul(im, gr)

			k := rad.String()
			if prev, ok := acc[k]; ok {
				re.Add(re, prev.re)
				im.Add(im, prev.im)
			}
			acc[k] = surd{rad: rad, re: re, im: im}
		}
	}
	return collectSurds(acc)
}

func collectSurds(acc map[string]surd) Num {
	out := make([]surd, 0, len(acc))
	for _, s := range acc {
		if !s.zero() {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].rad.Cmp(out[j].rad) < 0 })
	return Num{parts: out}
}

// Inv inverts single-radicand numbers. Sums of distinct radicands report
// false.
func (a Num) Inv() (Num, bool) {
	if len(a.parts) != 1 {
		return Num{}, false
	}
	p := a.parts[0]
	// 1/(c*sqrt(n)) = conj(c)*sqrt(n) / (|c|^2 * n)
	norm := new(big.Rat).Mul(p.re, p.re)
	norm.Add(norm, new(big.Rat).Mul(p.im, p.im))
	norm.Mul(norm, new(big.Rat).SetInt(p.rad))
	inv := new(big.Rat).Inv(norm)
	return Num{parts: []surd{{
		rad: p.rad,
		re:  new(big.Rat).Mul(p.re, inv),
		im:  new(big.Rat).Neg(new(big.Rat).Mul(p.im, inv)),
	}}}, true
}

// Div returns a/b when b is invertible.
func (a Num) Div(b Num) (Num, bool) {
	inv, ok := b.Inv()
	if !ok {
		return Num{}, false
	}
	return a.Mul(inv), true
}

// SqrtRat returns the principal square root of r; negative r gives I*sqrt(-r).
func SqrtRat(r *big.Rat) Num {
	if r.Sign() == 0 {
		return Num{}
	}
	neg := r.Sign() < 0
	abs := new(big.Rat).Abs(r)
	// sqrt(p/q) = sqrt(p*q)/q
	pq := new(big.Int).Mul(abs.Num(), abs.Denom())
	sq, free := squarefree(pq)
	coeff := new(big.Rat).SetFrac(sq, abs.Denom())
	s := surd{rad: free, re: coeff, im: new(big.Rat)}
	if neg {
		s.re, s.im = new(big.Rat), coeff
	}
	return Num{parts: []surd{s}}
}

// Sqrt returns the principal root of rational values.
func (a Num) Sqrt() (Num, bool) {
	r, ok := a.Rat()
	if !ok {
		return Num{}, false
	}
	return SqrtRat(r), true
}

// squarefreeTrialLimit bounds trial division. Cofactors left above it are
// treated as squarefree unless they are perfect squares.
const squarefreeTrialLimit = 1 << 16

// squarefree splits n > 0 as sq^2 * free with free squarefree.
func squarefree(n *big.Int) (sq, free *big.Int) {
	sq, free = big.NewInt(1), big.NewInt(1)
	rem := new(big.Int).Set(n)
	d := new(big.Int)
	q, r := new(big.Int), new(big.Int)
	for i := int64(2); i <= squarefreeTrialLimit; i++ {
		d.SetInt64(i)
		if new(big.Int).Mul(d, d).Cmp(rem) > 0 {
			break
		}
		count := 0
		for {
			q.QuoRem(rem, d, r)
			if r.Sign() != 0 {
				break
			}
			rem.Set(q)
			count++
		}
		for c := 0; c < count/2; c++ {
			sq.Mul(sq, d)
		}
		if count%2 == 1 {
			free.Mul(free, d)
		}
	}
	if rem.Cmp(bigOne) > 0 {
		root := new(big.Int).Sqrt(rem)
		if new(big.Int).Mul(root, root).Cmp(rem) == 0 {
			sq.Mul(sq, root)
		} else {
			free.Mul(free, rem)
		}
	}
	return sq, free
}

func (a Num) Complex128() complex128 {
	var z complex128
	for _, p := range a.parts {
		re, _ := p.re.Float64()
		im, _ := p.im.Float64()
		rf, _ := new(big.Float).SetInt(p.rad).Float64()
		z += complex(re, im) * complex(math.Sqrt(rf), 0)
	}
	return z
}

// ============================================================
// Printing
// ============================================================

// unit is one printed summand of a Num: ±(p/q)*sqrt(rad)[*I].
type unit struct {
	neg  bool
	p, q *big.Int
	rad  *big.Int
	imag bool
}

func (a Num) units() []unit {
	var out []unit
	for _, p := range a.parts {
		for _, part := range []struct {
			v    *big.Rat
			imag bool
		}{{p.re, false}, {p.im, true}} {
			if part.v.Sign() == 0 {
				continue
			}
			abs := new(big.Rat).Abs(part.v)
			out = append(out, unit{
				neg:  part.v.Sign() < 0,
				p:    abs.Num(),
				q:    abs.Denom(),
				rad:  p.rad,
				imag: part.imag,
			})
		}
	}
	return out
}

// numerator lists the multiplicative pieces above the fraction bar.
func (u unit) numerator(sqrtFmt func(*big.Int) string, imagStr string) []string {
	var pieces []string
	if u.p.Cmp(bigOne) != 0 {
		pieces = append(pieces, u.p.String())
	}
	if u.rad.Cmp(bigOne) != 0 {
		pieces = append(pieces, sqrtFmt(u.rad))
	}
	if u.imag {
		pieces = append(pieces, imagStr)
	}
	return pieces
}

func plainSqrt(n *big.Int) string { return "sqrt(" + n.String() + ")" }

func (u unit) String() string {
	num := u.numerator(plainSqrt, "I")
	s := "1"
	if len(num) > 0 {
		s = strings.Join(num, "*")
	}
	if u.q.Cmp(bigOne) != 0 {
		s += "/" + u.q.String()
	}
	return s
}

func (a Num) String() string {
	us := a.units()
	if len(us) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, u := range us {
		switch {
		case i == 0 && u.neg:
			sb.WriteString("-")
		case i > 0 && u.neg:
			sb.WriteString(" - ")
		case i > 0:
			sb.WriteString(" + ")
		}
		sb.WriteString(u.String())
	}
	return sb.String()
}

func latexSqrt(n *big.Int) string { return "\\sqrt{" + n.String() + "}" }

func (u unit) LaTeX() string {
	num := u.numerator(latexSqrt, "i")
	s := "1"
	if len(num) > 0 {
		s = strings.Join(num, " ")
	}
	if u.q.Cmp(bigOne) != 0 {
		return fmt.Sprintf("\\frac{%s}{%s}", s, u.q.String())
	}
	return s
}

func (a Num) LaTeX() string {
	us := a.units()
	if len(us) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, u := range us {
		switch {
		case i == 0 && u.neg:
			sb.WriteString("- ")
		case i > 0 && u.neg:
			sb.WriteString(" - ")
		case i > 0:
			sb.WriteString(" + ")
		}
		sb.WriteString(u.LaTeX())
	}
	return sb.String()
}
