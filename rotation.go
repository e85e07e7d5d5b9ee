package gospin

import (
	"context"
	"fmt"
	"math/big"

	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/gospin/symbolic"
)

// ============================================================
// Wigner d and D
// ============================================================

// WignerSmallD returns d^j_{m,mp}(beta). Symbolic labels give the
// unevaluated WignerD(j, m, mp, 0, beta, 0).
func WignerSmallD(j, m, mp, beta symbolic.Expr) (symbolic.Expr, error) {
	return WignerD(j, m, mp, symbolic.N(0), beta, symbolic.N(0))
}

// WignerD returns D^j_{m,mp}(alpha, beta, gamma) =
// exp(-I*m*alpha) d^j_{m,mp}(beta) exp(-I*mp*gamma). Symbolic labels give the
// unevaluated WignerD(j, m, mp, alpha, beta, gamma).
func WignerD(j, m, mp, alpha, beta, gamma symbolic.Expr) (symbolic.Expr, error) {
	j2, m2, numeric, err := checkJM(j, m)
	if err != nil {
		return symbolic.Expr{}, err
	}
	_, mp2, numericP, err := checkJM(j, mp)
	if err != nil {
		return symbolic.Expr{}, err
	}
	if !numeric || !numericP {
		return symbolic.Func("WignerD", j, m, mp, alpha, beta, gamma), nil
	}
	d := smallD(j2, m2, mp2, beta)
	phase := symbolic.Exp(symbolic.I().Neg().Mul(half(m2).Mul(alpha).Add(half(mp2).Mul(gamma))))
	return phase.Mul(d), nil
}

// smallD evaluates the explicit sum over k of
// (-1)^(m-mp+k) sqrt((j+m)!(j-m)!(j+mp)!(j-mp)!) /
// ((j+mp-k)! k! (m-mp+k)! (j-m-k)!) cos(beta/2)^(2j+mp-m-2k) sin(beta/2)^(m-mp+2k).
func smallD(j2, m2, mp2 int64, beta symbolic.Expr) symbolic.Expr {
	halfBeta := beta.Mul(symbolic.F(1, 2))
	c, s := symbolic.Cos(halfBeta), symbolic.Sin(halfBeta)
	jm, jmm := (j2+m2)/2, (j2-m2)/2
	jmp, jmmp := (j2+mp2)/2, (j2-mp2)/2
	dm := (m2 - mp2) / 2

	num := new(big.Int).Mul(factorial(jm), factorial(jmm))
	num.Mul(num, factorial(jmp))
	num.Mul(num, factorial(jmmp))
	root := symbolic.FromNum(symbolic.SqrtRat(new(big.Rat).SetInt(num)))

	lo := int64(0)
	if -dm > lo {
		lo = -dm
	}
	hi := jmp
	if jmm < hi {
		hi = jmm
	}
	terms := make([]symbolic.Expr, 0, hi-lo+1)
	for k := lo; k <= hi; k++ {
		den := new(big.Int).Mul(factorial(jmp-k), factorial(k))
		den.Mul(den, factorial(dm+k))
		den.Mul(den, factorial(jmm-k))
		coef := new(big.Rat).SetFrac(big.NewInt(1), den)
		if (dm+k)%2 != 0 {
			coef.Neg(coef)
		}
		t := symbolic.Rat(coef).Mul(c.Pow(int(j2 - dm - 2*k))).Mul(s.Pow(int(dm + 2*k)))
		terms = append(terms, t)
	}
	return root.Mul(symbolic.AddOf(terms...))
}

// ============================================================
// Rotation
// ============================================================

// Rotation is the active rotation R(alpha, beta, gamma) in the z-y-z Euler
// convention, R = exp(-I alpha Jz) exp(-I beta Jy) exp(-I gamma Jz).
type Rotation struct {
	Alpha, Beta, Gamma symbolic.Expr
}

// NewRotation returns R(alpha, beta, gamma).
func NewRotation(alpha, beta, gamma symbolic.Expr) Rotation {
	return Rotation{Alpha: alpha, Beta: beta, Gamma: gamma}
}

// Inverse returns R(-gamma, -beta, -alpha).
func (r Rotation) Inverse() Rotation {
	return Rotation{Alpha: r.Gamma.Neg(), Beta: r.Beta.Neg(), Gamma: r.Alpha.Neg()}
}

// D returns the matrix element <j, m|R|j, mp>.
func (r Rotation) D(j, m, mp symbolic.Expr) (symbolic.Expr, error) {
	return WignerD(j, m, mp, r.Alpha, r.Beta, r.Gamma)
}

// SmallD returns d^j_{m,mp}(Beta), ignoring Alpha and Gamma.
func (r Rotation) SmallD(j, m, mp symbolic.Expr) (symbolic.Expr, error) {
	return WignerSmallD(j, m, mp, r.Beta)
}

// Matrix returns the (2j+1)x(2j+1) matrix D[m', m] with m and m' running
// from j down to -j. Rows are computed concurrently.
func (r Rotation) Matrix(ctx context.Context, j symbolic.Expr) (*symbolic.Matrix, error) {
	j2, ok, err := checkJ(j)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: rotation matrix for j = %s", ErrSymbolic, j)
	}
	ms := mValues(j2)
	out := symbolic.NewMatrix(len(ms), len(ms))
	g, ctx := errgroup.WithContext(ctx)
	for row, mp2 := range ms {
		row, mp2 := row, mp2
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for col, m2 := range ms {
				out.Set(row, col, r.element(j2, mp2, m2))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// element is D^j_{m1,m2} for validated doubled labels.
func (r Rotation) element(j2, m12, m22 int64) symbolic.Expr {
	d := smallD(j2, m12, m22, r.Beta)
	phase := symbolic.Exp(symbolic.I().Neg().Mul(half(m12).Mul(r.Alpha).Add(half(m22).Mul(r.Gamma))))
	return phase.Mul(d)
}

func (r Rotation) String() string {
	return fmt.Sprintf("R(%s, %s, %s)", r.Alpha, r.Beta, r.Gamma)
}

// LaTeX renders the rotation as \mathcal{R}(alpha, beta, gamma).
func (r Rotation) LaTeX() string {
	return `\mathcal{R}\left(` + r.Alpha.LaTeX() + "," + r.Beta.LaTeX() + "," + r.Gamma.LaTeX() + `\right)`
}

// apply rotates every factor of every product: R|j m> = sum_m' D_{m'm} |j m'>.
// Kets outside the Jz basis are rewritten to Jz first.
func (r Rotation) apply(s State) (State, error) {
	return s.mapTerms(func(kets []Ket) (State, error) {
		factors := make([]State, len(kets))
		for i, k := range kets {
			rotated, err := r.rotateKet(k)
			if err != nil {
				return State{}, err
			}
			factors[i] = rotated
		}
		return TensorProduct(factors...), nil
	})
}

func (r Rotation) rotateKet(k Ket) (State, error) {
	if k.basis != BasisZ {
		z, err := rewriteKet(k, BasisZ)
		if err != nil {
			return State{}, err
		}
		return z.mapTerms(func(kets []Ket) (State, error) { return r.rotateKet(kets[0]) })
	}
	j2, m2, err := k.labels()
	if err != nil {
		return State{}, err
	}
	var ts []StateTerm
	for _, mp2 := range mValues(j2) {
		ts = append(ts, StateTerm{Coeff: r.element(j2, mp2, m2), Kets: []Ket{k.withM(half(mp2))}})
	}
	return newState(ts), nil
}
