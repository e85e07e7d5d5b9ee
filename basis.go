package gospin

import (
	"fmt"
	"strings"

	"github.com/njchilds90/gospin/symbolic"
)

// Basis names the angular-momentum component whose eigenstates label a ket.
type Basis int

const (
	BasisZ Basis = iota
	BasisX
	BasisY
)

// Bases lists every basis in a fixed order.
var Bases = []Basis{BasisX, BasisY, BasisZ}

func (b Basis) String() string {
	switch b {
	case BasisX:
		return "Jx"
	case BasisY:
		return "Jy"
	case BasisZ:
		return "Jz"
	}
	return fmt.Sprintf("Basis(%d)", int(b))
}

// ParseBasis accepts "x", "Jx", "jx" and the same for y and z.
func ParseBasis(s string) (Basis, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "j") {
	case "x":
		return BasisX, nil
	case "y":
		return BasisY, nil
	case "z":
		return BasisZ, nil
	}
	return 0, fmt.Errorf("gospin: unknown basis %q (want Jx, Jy or Jz)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (b Basis) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Basis) UnmarshalText(text []byte) error {
	v, err := ParseBasis(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// changeRotation returns the fixed rotation whose D-matrix rewrites kets of
// basis from in basis to: |from; j m> = sum_m' D^j_{m'm} |to; j m'>.
// The six pairs are independent, so a round trip through another basis
// can pick up the factor (-1)^(2j).
func changeRotation(from, to Basis) Rotation {
	zero := symbolic.N(0)
	right := symbolic.Pi().Mul(symbolic.F(1, 2))
	three := symbolic.Pi().Mul(symbolic.F(3, 2))
	switch [2]Basis{from, to} {
	case [2]Basis{BasisX, BasisY}:
		return Rotation{Alpha: three, Beta: zero, Gamma: zero}
	case [2]Basis{BasisX, BasisZ}:
		return Rotation{Alpha: zero, Beta: right, Gamma: zero}
	case [2]Basis{BasisY, BasisX}:
		return Rotation{Alpha: zero, Beta: zero, Gamma: right}
	case [2]Basis{BasisY, BasisZ}:
		return Rotation{Alpha: three, Beta: right.Neg(), Gamma: right}
	case [2]Basis{BasisZ, BasisX}:
		return Rotation{Alpha: zero, Beta: three, Gamma: zero}
	case [2]Basis{BasisZ, BasisY}:
		return Rotation{Alpha: three, Beta: right, Gamma: right}
	}
	return Rotation{Alpha: zero, Beta: zero, Gamma: zero}
}
