package symbolic

import (
	"math/big"
)

// maxChebyshev bounds the multiple of a half angle expanded into powers of
// cos(x/2) and sin(x/2).
const maxChebyshev = 64

// Cos returns cos(x). Rational multiples of pi with denominators dividing 12
// are exact, and linear combinations of symbols expand onto half-angle atoms.
func Cos(x Expr) Expr {
	c, _ := cosSin(x)
	return c
}

// Sin returns sin(x). See Cos.
func Sin(x Expr) Expr {
	_, s := cosSin(x)
	return s
}

func cosSin(x Expr) (Expr, Expr) {
	if x.IsZero() {
		return N(1), Expr{}
	}
	lf, ok := x.linear()
	if !ok || lf.c.Sign() != 0 {
		return opaque("cos", x), opaque("sin", x)
	}
	c, s := N(1), Expr{}
	if lf.pi.Sign() != 0 {
		c, s = piCosSin(lf.pi)
	}
	for i, name := range lf.syms {
		ac, as := symCosSin(name, lf.qs[i])
		c, s = c.Mul(ac).Sub(s.Mul(as)), s.Mul(ac).Add(c.Mul(as))
	}
	return c, s
}

// piCosSin returns cos(q*pi) and sin(q*pi).
func piCosSin(q *big.Rat) (Expr, Expr) {
	t := new(big.Rat).Mul(q, big.NewRat(12, 1))
	if !t.IsInt() {
		arg := Pi().Mul(Rat(q))
		return opaque("cos", arg), opaque("sin", arg)
	}
	n := new(big.Int).Mod(t.Num(), big.NewInt(24)).Int64()
	return FromNum(cos15(int(n))), FromNum(sin15(int(n)))
}

// cos15 returns cos(t*15 degrees) exactly.
func cos15(t int) Num {
	t = ((t % 24) + 24) % 24
	if t > 12 {
		t = 24 - t
	}
	if t > 6 {
		return cos15(12 - t).Neg()
	}
	switch t {
	case 0:
		return NumInt(1)
	case 1:
		return SqrtRat(big.NewRat(6, 1)).Add(SqrtRat(big.NewRat(2, 1))).Mul(NumFrac(1, 4))
	case 2:
		return SqrtRat(big.NewRat(3, 1)).Mul(NumFrac(1, 2))
	case 3:
		return SqrtRat(big.NewRat(2, 1)).Mul(NumFrac(1, 2))
	case 4:
		return NumFrac(1, 2)
	case 5:
		return SqrtRat(big.NewRat(6, 1)).Sub(SqrtRat(big.NewRat(2, 1))).Mul(NumFrac(1, 4))
	}
	return Num{}
}

func sin15(t int) Num { return cos15(6 - t) }

// symCosSin returns cos(q*x) and sin(q*x) for the symbol x.
func symCosSin(name string, q *big.Rat) (Expr, Expr) {
	k := new(big.Rat).Mul(q, big.NewRat(2, 1))
	if !k.IsInt() || !k.Num().IsInt64() || abs64(k.Num().Int64()) > maxChebyshev {
		arg := S(name).Mul(Rat(q))
		return opaque("cos", arg), opaque("sin", arg)
	}
	return chebyshev(name, k.Num().Int64())
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// chebyshev expands cos(k*x/2) and sin(k*x/2) through (c + I*s)^k with
// c = cos(x/2) and s = sin(x/2).
func chebyshev(name string, k int64) (Expr, Expr) {
	neg := k < 0
	if neg {
		k = -k
	}
	c := atomExpr(trigAtom{sym: name})
	s := atomExpr(trigAtom{sym: name, sin: true})
	var cosTerms, sinTerms []Expr
	for r := int64(0); r <= k; r++ {
		b := new(big.Int).Binomial(k, r)
		t := Rat(new(big.Rat).SetInt(b)).Mul(c.Pow(int(k - r))).Mul(s.Pow(int(r)))
		if r%2 == 0 {
			if (r/2)%2 == 1 {
				t = t.Neg()
			}
			cosTerms = append(cosTerms, t)
			continue
		}
		if ((r-1)/2)%2 == 1 {
			t = t.Neg()
		}
		sinTerms = append(sinTerms, t)
	}
	cos, sin := AddOf(cosTerms...), AddOf(sinTerms...)
	if neg {
		sin = sin.Neg()
	}
	return cos, sin
}

// Exp returns exp(x). Purely imaginary linear arguments become phase atoms
// times exact values of the pi part.
func Exp(x Expr) Expr {
	if x.IsZero() {
		return N(1)
	}
	lf, ok := x.Mul(I().Neg()).linear()
	if !ok || lf.c.Sign() != 0 {
		return opaque("exp", x)
	}
	out := N(1)
	if lf.pi.Sign() != 0 {
		c, s := piCosSin(lf.pi)
		out = c.Add(I().Mul(s))
	}
	form := map[string]*big.Rat{}
	for i, name := range lf.syms {
		form[name] = lf.qs[i]
	}
	if p, ok := newPhase(form); ok {
		out = out.Mul(atomExpr(p))
	}
	return out
}

// Sqrt returns the principal square root. Rational content and even powers
// of symbols are pulled out; symbols are treated as positive.
func Sqrt(x Expr) Expr {
	if x.IsZero() {
		return x
	}
	if n, ok := x.AsNum(); ok {
		if r, ok := n.Rat(); ok {
			return FromNum(SqrtRat(r))
		}
		if root, ok := n.Sqrt(); ok {
			return FromNum(root)
		}
		return atomExpr(newSqrt(x))
	}
	if len(x.terms) == 1 {
		t := x.terms[0]
		r, ok := t.coeff.Rat()
		if !ok {
			return atomExpr(newSqrt(x))
		}
		out := FromNum(SqrtRat(r))
		var rest []factor
		for _, f := range t.mono.factors {
			if _, sym := f.a.(symbolAtom); sym && f.pow%2 == 0 {
				out = out.Mul(atomPow(f.a, f.pow/2))
				continue
			}
			rest = append(rest, f)
		}
		if len(rest) > 0 {
			out = out.Mul(atomExpr(newSqrt(build(NumInt(1), rest))))
		}
		return out
	}
	g, ok := x.rationalContent()
	if !ok {
		return atomExpr(newSqrt(x))
	}
	prim := x.Scale(NumRat(new(big.Rat).Inv(g)))
	return FromNum(SqrtRat(g)).Mul(atomExpr(newSqrt(prim)))
}
