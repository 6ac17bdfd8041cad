package circuit

import (
	"fmt"
	"strings"

	"github.com/fidesinnova/zkiot/internal/zkiot/core"
)

// Matrix is a dense square matrix over a prime field, stored row-major.
type Matrix struct {
	size  int
	data  []uint64
	field *core.Field
}

// NewMatrix creates a zero matrix of the given side length.
func NewMatrix(field *core.Field, size int) *Matrix {
	return &Matrix{size: size, data: make([]uint64, size*size), field: field}
}

// Size returns the side length.
func (m *Matrix) Size() int {
	return m.size
}

// At returns the entry at row i, column j.
func (m *Matrix) At(i, j int) uint64 {
	return m.data[i*m.size+j]
}

// Set stores a reduced value at row i, column j.
func (m *Matrix) Set(i, j int, v uint64) {
	m.data[i*m.size+j] = m.field.Reduce(v)
}

// NonzeroCount returns the number of non-zero entries.
func (m *Matrix) NonzeroCount() int {
	count := 0
	for _, v := range m.data {
		if v != 0 {
			count++
		}
	}
	return count
}

// MulVec computes the matrix-vector product m * z.
func (m *Matrix) MulVec(z []uint64) ([]uint64, error) {
	if len(z) != m.size {
		return nil, fmt.Errorf("vector length %d does not match matrix size %d", len(z), m.size)
	}
	out := make([]uint64, m.size)
	for i := 0; i < m.size; i++ {
		acc := uint64(0)
		for j, v := range m.data[i*m.size : (i+1)*m.size] {
			if v != 0 {
				acc = m.field.Add(acc, m.field.Mul(v, z[j]))
			}
		}
		out[i] = acc
	}
	return out, nil
}

// Cell is a non-zero matrix entry in coordinate form.
type Cell struct {
	Row int    `json:"row"`
	Col int    `json:"col"`
	Val uint64 `json:"val"`
}

// Cells returns the non-zero entries in row-major scan order. The AHP
// encoder relies on this ordering to assign entries to domain indices.
func (m *Matrix) Cells() []Cell {
	var cells []Cell
	for i := 0; i < m.size; i++ {
		for j := 0; j < m.size; j++ {
			if v := m.At(i, j); v != 0 {
				cells = append(cells, Cell{Row: i, Col: j, Val: v})
			}
		}
	}
	return cells
}

// ColumnIndices returns the compact encoding of a 0/1 matrix: the column
// index of each one-entry in row-major order. Matrices holding values other
// than 0 and 1 cannot use this encoding.
func (m *Matrix) ColumnIndices() ([]uint64, error) {
	var cols []uint64
	for i := 0; i < m.size; i++ {
		for j := 0; j < m.size; j++ {
			switch m.At(i, j) {
			case 0:
			case 1:
				cols = append(cols, uint64(j))
			default:
				return nil, fmt.Errorf("entry (%d,%d) = %d is not binary", i, j, m.At(i, j))
			}
		}
	}
	return cols, nil
}

func (m *Matrix) String() string {
	var b strings.Builder
	for i := 0; i < m.size; i++ {
		for j := 0; j < m.size; j++ {
			if j > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%d", m.At(i, j))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
