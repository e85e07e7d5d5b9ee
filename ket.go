package gospin

import (
	"fmt"
	"strings"

	"github.com/njchilds90/gospin/symbolic"
)

// ============================================================
// Kets
// ============================================================

// CouplingStep joins the subspace containing space N1 with the subspace
// containing space N2 (1-based) into total angular momentum J.
type CouplingStep struct {
	N1, N2 int
	J      symbolic.Expr
}

func (c CouplingStep) String() string { return fmt.Sprintf("(%d, %d, %s)", c.N1, c.N2, c.J) }

// Ket is an angular-momentum eigenstate |j, m> of a basis. A coupled ket
// also carries the uncoupled j values and the scheme that coupled them.
type Ket struct {
	basis    Basis
	j, m     symbolic.Expr
	jn       []symbolic.Expr
	coupling []CouplingStep
}

// NewKet returns |b; j, m>. Numeric labels are validated.
func NewKet(b Basis, j, m symbolic.Expr) (Ket, error) {
	if _, _, _, err := checkJM(j, m); err != nil {
		return Ket{}, err
	}
	return Ket{basis: b, j: j, m: m}, nil
}

// NewCoupledKet returns the coupled eigenstate |b; j, m; jn> built by the
// given coupling scheme. Two spaces default to the scheme ((1, 2, j)).
func NewCoupledKet(b Basis, j, m symbolic.Expr, jn []symbolic.Expr, coupling ...CouplingStep) (Ket, error) {
	if _, _, _, err := checkJM(j, m); err != nil {
		return Ket{}, err
	}
	if len(jn) < 2 {
		return Ket{}, fmt.Errorf("%w: a coupled ket needs at least two spaces, got %d", ErrInvalidQuantumNumber, len(jn))
	}
	for _, ji := range jn {
		if _, _, err := checkJ(ji); err != nil {
			return Ket{}, err
		}
	}
	if len(coupling) == 0 {
		if len(jn) != 2 {
			return Ket{}, fmt.Errorf("%w: %d spaces need an explicit coupling scheme", ErrInvalidQuantumNumber, len(jn))
		}
		coupling = []CouplingStep{{N1: 1, N2: 2, J: j}}
	}
	k := Ket{
		basis:    b,
		j:        j,
		m:        m,
		jn:       append([]symbolic.Expr(nil), jn...),
		coupling: append([]CouplingStep(nil), coupling...),
	}
	nodes, err := couplingTree(len(jn), k.coupling)
	if err != nil {
		return Ket{}, err
	}
	if !k.coupling[len(k.coupling)-1].J.Equal(j) {
		return Ket{}, fmt.Errorf("%w: last coupling step gives %s, ket has j = %s", ErrInvalidQuantumNumber, k.coupling[len(k.coupling)-1].J, j)
	}
	for i, nd := range nodes {
		jl, okl := twice(k.nodeJ(nd.left))
		jr, okr := twice(k.nodeJ(nd.right))
		jc, err := checkStepJ(k.coupling[i].J)
		if err != nil {
			return Ket{}, err
		}
		if okl && okr && jc >= 0 && !triangle(jl, jr, jc) {
			return Ket{}, fmt.Errorf("%w: step %s cannot couple %s and %s", ErrInvalidQuantumNumber, k.coupling[i], k.nodeJ(nd.left), k.nodeJ(nd.right))
		}
	}
	return k, nil
}

func checkStepJ(j symbolic.Expr) (int64, error) {
	j2, ok, err := checkJ(j)
	if err != nil {
		return 0, err
	}
	if !ok {
		return -1, nil
	}
	return j2, nil
}

func mustKet(k Ket, err error) Ket {
	if err != nil {
		panic(err)
	}
	return k
}

// JxKet returns |x; j, m>. It panics on invalid numeric labels.
func JxKet(j, m symbolic.Expr) Ket { return mustKet(NewKet(BasisX, j, m)) }

// JyKet returns |y; j, m>. It panics on invalid numeric labels.
func JyKet(j, m symbolic.Expr) Ket { return mustKet(NewKet(BasisY, j, m)) }

// JzKet returns |z; j, m>. It panics on invalid numeric labels.
func JzKet(j, m symbolic.Expr) Ket { return mustKet(NewKet(BasisZ, j, m)) }

// JxKetCoupled is NewCoupledKet in the Jx basis. It panics on invalid input.
func JxKetCoupled(j, m symbolic.Expr, jn []symbolic.Expr, coupling ...CouplingStep) Ket {
	return mustKet(NewCoupledKet(BasisX, j, m, jn, coupling...))
}

// JyKetCoupled is NewCoupledKet in the Jy basis. It panics on invalid input.
func JyKetCoupled(j, m symbolic.Expr, jn []symbolic.Expr, coupling ...CouplingStep) Ket {
	return mustKet(NewCoupledKet(BasisY, j, m, jn, coupling...))
}

// JzKetCoupled is NewCoupledKet in the Jz basis. It panics on invalid input.
func JzKetCoupled(j, m symbolic.Expr, jn []symbolic.Expr, coupling ...CouplingStep) Ket {
	return mustKet(NewCoupledKet(BasisZ, j, m, jn, coupling...))
}

func (k Ket) Basis() Basis     { return k.basis }
func (k Ket) J() symbolic.Expr { return k.j }
func (k Ket) M() symbolic.Expr { return k.m }
func (k Ket) IsCoupled() bool  { return len(k.jn) > 0 }

// Jn returns the uncoupled j values of a coupled ket.
func (k Ket) Jn() []symbolic.Expr { return append([]symbolic.Expr(nil), k.jn...) }

// Coupling returns the coupling scheme of a coupled ket.
func (k Ket) Coupling() []CouplingStep { return append([]CouplingStep(nil), k.coupling...) }

// State returns the ket as a one-term state.
func (k Ket) State() State { return TensorProductOf(k) }

// Dual returns the bra <k|.
func (k Ket) Dual() Bra { return Bra{ket: k} }

func (k Ket) withM(m symbolic.Expr) Ket {
	k.m = m
	return k
}

func (k Ket) withBasis(b Basis) Ket {
	k.basis = b
	return k
}

// labels returns 2j and 2m, failing with ErrSymbolic for symbolic labels.
func (k Ket) labels() (j2, m2 int64, err error) {
	j2, m2, numeric, err := checkJM(k.j, k.m)
	if err != nil {
		return 0, 0, err
	}
	if !numeric {
		return 0, 0, fmt.Errorf("%w: %s", ErrSymbolic, k)
	}
	return j2, m2, nil
}

// sameSpace reports whether two kets carry the same j and coupling data.
func (k Ket) sameSpace(o Ket) bool {
	if !k.j.Equal(o.j) || len(k.jn) != len(o.jn) || len(k.coupling) != len(o.coupling) {
		return false
	}
	for i := range k.jn {
		if !k.jn[i].Equal(o.jn[i]) {
			return false
		}
	}
	for i, c := range k.coupling {
		oc := o.coupling[i]
		if c.N1 != oc.N1 || c.N2 != oc.N2 || !c.J.Equal(oc.J) {
			return false
		}
	}
	return true
}

func (k Ket) args() string {
	parts := []string{k.j.String(), k.m.String()}
	if k.IsCoupled() {
		jn := make([]string, len(k.jn))
		for i, ji := range k.jn {
			jn[i] = ji.String()
		}
		parts = append(parts, "("+strings.Join(jn, ", ")+")")
		if !k.defaultCoupling() {
			steps := make([]string, len(k.coupling))
			for i, c := range k.coupling {
				steps[i] = c.String()
			}
			parts = append(parts, "("+strings.Join(steps, ", ")+")")
		}
	}
	return strings.Join(parts, ", ")
}

func (k Ket) defaultCoupling() bool {
	return len(k.jn) == 2 && k.coupling[0].N1 == 1 && k.coupling[0].N2 == 2
}

// String renders the ket as JzKet(1, 1) or JzKetCoupled(1, 1, (1/2, 1/2)).
func (k Ket) String() string {
	name := k.basis.String() + "Ket"
	if k.IsCoupled() {
		name += "Coupled"
	}
	return name + "(" + k.args() + ")"
}

func (k Ket) latexLabel() string {
	parts := []string{k.j.LaTeX(), k.m.LaTeX()}
	for i, ji := range k.jn {
		parts = append(parts, fmt.Sprintf("j_{%d}=%s", i+1, ji.LaTeX()))
	}
	return strings.Join(parts, ",")
}

// LaTeX renders the ket in Dirac notation.
func (k Ket) LaTeX() string { return `{\left|` + k.latexLabel() + `\right\rangle }` }

// ============================================================
// Coupling trees
// ============================================================

// couplingNode records which subspaces a coupling step joined. Node ids
// below n are single spaces; step i has id n+i.
type couplingNode struct {
	left, right int
}

func couplingTree(n int, steps []CouplingStep) ([]couplingNode, error) {
	if len(steps) != n-1 {
		return nil, fmt.Errorf("%w: %d spaces need %d coupling steps, got %d", ErrInvalidQuantumNumber, n, n-1, len(steps))
	}
	group := make([]int, n)
	for s := range group {
		group[s] = s
	}
	nodes := make([]couplingNode, 0, len(steps))
	for i, st := range steps {
		if st.N1 < 1 || st.N1 > n || st.N2 < 1 || st.N2 > n {
			return nil, fmt.Errorf("%w: coupling step %s out of range for %d spaces", ErrInvalidQuantumNumber, st, n)
		}
		a, b := group[st.N1-1], group[st.N2-1]
		if a == b {
			return nil, fmt.Errorf("%w: coupling step %s joins spaces already coupled", ErrInvalidQuantumNumber, st)
		}
		id := n + i
		for s, g := range group {
			if g == a || g == b {
				group[s] = id
			}
		}
		nodes = append(nodes, couplingNode{left: a, right: b})
	}
	return nodes, nil
}

// nodeJ returns the angular momentum of a coupling-tree node.
func (k Ket) nodeJ(id int) symbolic.Expr {
	if id < len(k.jn) {
		return k.jn[id]
	}
	return k.coupling[id-len(k.jn)].J
}

// ============================================================
// Bras
// ============================================================

// Bra is the dual <j, m| of a ket.
type Bra struct {
	ket Ket
}

// JxBra returns <x; j, m|. It panics on invalid numeric labels.
func JxBra(j, m symbolic.Expr) Bra { return JxKet(j, m).Dual() }

// JyBra returns <y; j, m|. It panics on invalid numeric labels.
func JyBra(j, m symbolic.Expr) Bra { return JyKet(j, m).Dual() }

// JzBra returns <z; j, m|. It panics on invalid numeric labels.
func JzBra(j, m symbolic.Expr) Bra { return JzKet(j, m).Dual() }

// Dual returns the ket |b>.
func (b Bra) Dual() Ket { return b.ket }

func (b Bra) String() string {
	name := b.ket.basis.String() + "Bra"
	if b.ket.IsCoupled() {
		name += "Coupled"
	}
	return name + "(" + b.ket.args() + ")"
}

// LaTeX renders the bra in Dirac notation.
func (b Bra) LaTeX() string { return `{\left\langle ` + b.ket.latexLabel() + `\right|}` }
