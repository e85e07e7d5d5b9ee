package symbolic

import (
	"fmt"
	"strings"
)

// ============================================================
// Matrix: dense matrix of canonical expressions
// ============================================================

type Matrix struct {
	rows, cols int
	data       [][]Expr
}

// NewMatrix returns a rows x cols zero matrix.
func NewMatrix(rows, cols int) *Matrix {
	data := make([][]Expr, rows)
	for i := range data {
		data[i] = make([]Expr, cols)
	}
	return &Matrix{rows: rows, cols: cols, data: data}
}

func MatrixFromSlice(rows, cols int, entries []Expr) *Matrix {
	if len(entries) != rows*cols {
		panic(fmt.Sprintf("symbolic: MatrixFromSlice needs %d entries, got %d", rows*cols, len(entries)))
	}
	m := NewMatrix(rows, cols)
	for i := 0; i < rows; i++ {
		copy(m.data[i], entries[i*cols:(i+1)*cols])
	}
	return m
}

// ColumnVector returns an n x 1 matrix.
func ColumnVector(entries ...Expr) *Matrix { return MatrixFromSlice(len(entries), 1, entries) }

func Identity(n int) *Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m.data[i][i] = N(1)
	}
	return m
}

func (m *Matrix) checkBounds(row, col int) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Sprintf("symbolic: matrix index out of range [%d,%d] for %dx%d", row, col, m.rows, m.cols))
	}
}

func (m *Matrix) Get(row, col int) Expr {
	m.checkBounds(row, col)
	return m.data[row][col]
}

func (m *Matrix) Set(row, col int, val Expr) {
	m.checkBounds(row, col)
	m.data[row][col] = val
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

// Row returns a copy of row i.
func (m *Matrix) Row(i int) []Expr {
	m.checkBounds(i, 0)
	return append([]Expr(nil), m.data[i]...)
}

func (m *Matrix) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("[")
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(m.data[i][j].String())
		}
		sb.WriteString("]")
	}
	sb.WriteString("]")
	return sb.String()
}

func (m *Matrix) LaTeX() string {
	var sb strings.Builder
	sb.WriteString(`\begin{pmatrix}`)
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString(` \\ `)
		}
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(" & ")
			}
			sb.WriteString(m.data[i][j].LaTeX())
		}
	}
	sb.WriteString(`\end{pmatrix}`)
	return sb.String()
}

func (m *Matrix) mapEntries(f func(Expr) Expr) *Matrix {
	result := NewMatrix(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			result.data[i][j] = f(m.data[i][j])
		}
	}
	return result
}

func (m *Matrix) MatAdd(other *Matrix) *Matrix {
	if m.rows != other.rows || m.cols != other.cols {
		panic("symbolic: matrix dimension mismatch in MatAdd")
	}
	result := NewMatrix(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			result.data[i][j] = m.data[i][j].Add(other.data[i][j])
		}
	}
	return result
}

func (m *Matrix) MatSub(other *Matrix) *Matrix {
	if m.rows != other.rows || m.cols != other.cols {
		panic("symbolic: matrix dimension mismatch in MatSub")
	}
	result := NewMatrix(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			result.data[i][j] = m.data[i][j].Sub(other.data[i][j])
		}
	}
	return result
}

func (m *Matrix) MatMul(other *Matrix) *Matrix {
	if m.cols != other.rows {
		panic("symbolic: matrix dimension mismatch in MatMul")
	}
	result := NewMatrix(m.rows, other.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < other.cols; j++ {
			terms := make([]Expr, m.cols)
			for k := 0; k < m.cols; k++ {
				terms[k] = m.data[i][k].Mul(other.data[k][j])
			}
			result.data[i][j] = AddOf(terms...)
		}
	}
	return result
}

func (m *Matrix) Scale(scalar Expr) *Matrix {
	return m.mapEntries(func(e Expr) Expr { return scalar.Mul(e) })
}

func (m *Matrix) Transpose() *Matrix {
	result := NewMatrix(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			result.data[j][i] = m.data[i][j]
		}
	}
	return result
}

// Adjoint returns the conjugate transpose.
func (m *Matrix) Adjoint() *Matrix { return m.Transpose().mapEntries(Expr.Conj) }

// Kronecker returns the tensor product m ⊗ other.
func (m *Matrix) Kronecker(other *Matrix) *Matrix {
	result := NewMatrix(m.rows*other.rows, m.cols*other.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			a := m.data[i][j]
			if a.IsZero() {
				continue
			}
			for k := 0; k < other.rows; k++ {
				for l := 0; l < other.cols; l++ {
					result.data[i*other.rows+k][j*other.cols+l] = a.Mul(other.data[k][l])
				}
			}
		}
	}
	return result
}

func (m *Matrix) Equal(other *Matrix) bool {
	if m.rows != other.rows || m.cols != other.cols {
		return false
	}
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			if !m.data[i][j].Equal(other.data[i][j]) {
				return false
			}
		}
	}
	return true
}

func (m *Matrix) Trace() Expr {
	if m.rows != m.cols {
		panic("symbolic: Trace requires a square matrix")
	}
	terms := make([]Expr, m.rows)
	for i := 0; i < m.rows; i++ {
		terms[i] = m.data[i][i]
	}
	return AddOf(terms...)
}

func (m *Matrix) Det() Expr {
	if m.rows != m.cols {
		panic("symbolic: Det requires a square matrix")
	}
	return matDet(m.data, m.rows)
}

func matDet(data [][]Expr, n int) Expr {
	switch n {
	case 0:
		return N(1)
	case 1:
		return data[0][0]
	case 2:
		return data[0][0].Mul(data[1][1]).Sub(data[0][1].Mul(data[1][0]))
	}
	terms := make([]Expr, 0, n)
	for j := 0; j < n; j++ {
		if data[0][j].IsZero() {
			continue
		}
		t := data[0][j].Mul(matDet(makeMinor(data, n, 0, j), n-1))
		if j%2 == 1 {
			t = t.Neg()
		}
		terms = append(terms, t)
	}
	return AddOf(terms...)
}

func makeMinor(data [][]Expr, n, skipRow, skipCol int) [][]Expr {
	minor := make([][]Expr, 0, n-1)
	for i := 0; i < n; i++ {
		if i == skipRow {
			continue
		}
		row := make([]Expr, 0, n-1)
		for j := 0; j < n; j++ {
			if j != skipCol {
				row = append(row, data[i][j])
			}
		}
		minor = append(minor, row)
	}
	return minor
}

func (m *Matrix) ApplySub(varName string, value Expr) *Matrix {
	return m.mapEntries(func(e Expr) Expr { return e.Subs(varName, value) })
}

func (m *Matrix) ApplyDiff(varName string) *Matrix {
	return m.mapEntries(func(e Expr) Expr { return e.Diff(varName) })
}
