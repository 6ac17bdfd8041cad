package circuit

import (
	"errors"
	"fmt"

	"github.com/fidesinnova/zkiot/internal/zkiot/core"
	"github.com/fidesinnova/zkiot/internal/zkiot/utils"
)

// ErrTooManyGates is returned when a program needs more constraint rows than
// the device class provides.
var ErrTooManyGates = errors.New("program exceeds class gate budget")

// Matrices bundles the three constraint matrices of a compiled program.
type Matrices struct {
	A *Matrix
	B *Matrix
	C *Matrix
}

// Size returns the common side length of the matrices.
func (m *Matrices) Size() int {
	return m.A.Size()
}

// MaxNonzero returns the largest per-matrix non-zero count, which bounds the
// index-domain size the AHP encoding needs.
func (m *Matrices) MaxNonzero() int {
	count := m.A.NonzeroCount()
	if c := m.B.NonzeroCount(); c > count {
		count = c
	}
	if c := m.C.NonzeroCount(); c > count {
		count = c
	}
	return count
}

// operandRef locates one gate operand inside the witness vector: literal
// operands live at the constant column 0 with the literal as coefficient,
// register operands at the register's most recent assignment row, or at its
// input slot when never assigned.
func operandRef(field *core.Field, lastAssign map[uint8]int, reg uint8, lit *uint64) (int, uint64) {
	if lit != nil {
		return 0, field.Reduce(*lit)
	}
	if row, ok := lastAssign[reg]; ok {
		return row, 1
	}
	return int(reg) + 1, 1
}

// CompileMatrices lowers a straight-line program into the A, B, C matrices.
// Arithmetic gate i occupies row t+i where t is the public input length; its
// destination register subsequently resolves to that row. Division gates are
// rejected. Load gates carry initial register values and produce no rows.
func CompileMatrices(field *core.Field, params utils.ClassParams, gates []Gate) (*Matrices, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	size := params.MatrixSize()
	t := params.InputLen()

	matrices := &Matrices{
		A: NewMatrix(field, size),
		B: NewMatrix(field, size),
		C: NewMatrix(field, size),
	}

	lastAssign := make(map[uint8]int)
	counter := 0
	for _, g := range gates {
		if g.Instr == InstrLoad {
			if int(g.Dest)+1 >= t {
				return nil, fmt.Errorf("register x%d outside the class input range: %w", g.Dest, utils.ErrInvalidParams)
			}
			continue
		}
		if !g.Instr.IsArithmetic() {
			return nil, fmt.Errorf("gate %q: %w", g.String(), ErrUnsupportedGate)
		}
		if g.Instr == InstrDiv {
			return nil, fmt.Errorf("gate %q: division must be lowered before compilation: %w", g.String(), ErrUnsupportedGate)
		}
		if counter >= int(params.NG) {
			return nil, fmt.Errorf("gate %d of class budget %d: %w", counter+1, params.NG, ErrTooManyGates)
		}

		row := t + counter
		leftCol, leftVal := operandRef(field, lastAssign, g.Left, g.ValLeft)
		rightCol, rightVal := operandRef(field, lastAssign, g.Right, g.ValRight)

		switch g.Instr {
		case InstrAdd, InstrAddi:
			matrices.A.Set(row, 0, 1)
			matrices.B.Set(row, leftCol, leftVal)
			matrices.B.Set(row, rightCol, rightVal)
		case InstrMul:
			matrices.A.Set(row, leftCol, leftVal)
			matrices.B.Set(row, rightCol, rightVal)
		}
		matrices.C.Set(row, row, 1)

		lastAssign[g.Dest] = row
		counter++
	}

	if max := matrices.MaxNonzero(); max > int(params.M) {
		return nil, fmt.Errorf("densest matrix has %d entries, class allows %d: %w", max, params.M, utils.ErrInvalidParams)
	}
	return matrices, nil
}

// IdentityC regenerates the C matrix of any compiled program of the class:
// ones on the diagonal over the gate rows.
func IdentityC(field *core.Field, params utils.ClassParams) *Matrix {
	size := params.MatrixSize()
	c := NewMatrix(field, size)
	for i := params.InputLen(); i < size; i++ {
		c.Set(i, i, 1)
	}
	return c
}

// RebuildMatrices reconstructs the constraint matrices from their sparse
// program-parameter encodings: A as per-gate-row column indices (entries are
// implicitly 1, row i of the encoding is constraint row t+i), B in coordinate
// form, and C regenerated from the class alone.
func RebuildMatrices(field *core.Field, params utils.ClassParams, aCols []uint64, bCells []Cell) (*Matrices, error) {
	size := params.MatrixSize()
	t := params.InputLen()

	a := NewMatrix(field, size)
	for i, col := range aCols {
		if t+i >= size || int(col) >= size {
			return nil, fmt.Errorf("sparse A entry %d out of range: %w", i, utils.ErrInvalidParams)
		}
		a.Set(t+i, int(col), 1)
	}

	b := NewMatrix(field, size)
	for _, cell := range bCells {
		if cell.Row < 0 || cell.Row >= size || cell.Col < 0 || cell.Col >= size {
			return nil, fmt.Errorf("sparse B entry (%d,%d) out of range: %w", cell.Row, cell.Col, utils.ErrInvalidParams)
		}
		b.Set(cell.Row, cell.Col, cell.Val)
	}

	return &Matrices{A: a, B: b, C: IdentityC(field, params)}, nil
}
