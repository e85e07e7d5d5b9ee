package gospin

import "errors"

var (
	// ErrInvalidQuantumNumber reports numeric labels that break the
	// angular-momentum rules (2j >= 0 integral, |m| <= j, j-m integral) or an
	// inconsistent coupling scheme.
	ErrInvalidQuantumNumber = errors.New("gospin: invalid quantum number")
	// ErrSymbolic reports an operation that needs numeric j and m values.
	ErrSymbolic = errors.New("gospin: operation needs numeric quantum numbers")
	// ErrIncompatible reports states or operators that live on different spaces.
	ErrIncompatible = errors.New("gospin: incompatible spaces")
)
