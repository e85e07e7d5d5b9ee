// Package gospin provides exact quantum angular-momentum algebra for Go.
//
// Design goals:
//   - Exact values: rationals, square roots and half-angle trig atoms
//     kept in a canonical form (package symbolic)
//   - Jx, Jy and Jz eigenkets, their tensor products and coupled states
//   - Wigner d/D functions, Clebsch-Gordan, 3j and 6j coefficients
//   - Spin operators, commutators and matrix representations
//   - AI/LLM friendly: JSON, LaTeX and MCP-ready tool calls
//
// A ket changes basis through a fixed rotation per basis pair:
//
//	|from; j m> = sum_m' D^j_{m'm}(alpha, beta, gamma) |to; j m'>
//
//	x->y  (3pi/2, 0, 0)
//	x->z  (0, pi/2, 0)
//	y->x  (0, 0, pi/2)
//	y->z  (3pi/2, -pi/2, pi/2)
//	z->x  (0, 3pi/2, 0)
//	z->y  (3pi/2, pi/2, pi/2)
package gospin
