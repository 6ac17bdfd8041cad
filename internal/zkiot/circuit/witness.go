package circuit

import (
	"errors"
	"fmt"

	"github.com/fidesinnova/zkiot/internal/zkiot/core"
	"github.com/fidesinnova/zkiot/internal/zkiot/utils"
)

// ErrUnsatisfiedConstraints is returned when a witness fails the quadratic
// constraint system.
var ErrUnsatisfiedConstraints = errors.New("witness does not satisfy constraints")

// BuildWitness executes the program and lays out the witness vector Z:
// the constant one at index 0, initial register values in the input slots
// 1..t-1, and one gate output per constraint row t+i. The prefix Z[:t] is the
// public input.
func BuildWitness(field *core.Field, params utils.ClassParams, gates []Gate) ([]uint64, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	size := params.MatrixSize()
	t := params.InputLen()

	z := make([]uint64, size)
	z[0] = 1

	regVal := make(map[uint8]uint64)
	assigned := make(map[uint8]bool)
	counter := 0
	for _, g := range gates {
		switch g.Instr {
		case InstrLoad:
			if int(g.Dest)+1 >= t {
				return nil, fmt.Errorf("register x%d outside the class input range: %w", g.Dest, utils.ErrInvalidParams)
			}
			if assigned[g.Dest] {
				return nil, fmt.Errorf("load into x%d after it was written by a gate: %w", g.Dest, ErrUnsupportedGate)
			}
			v := uint64(0)
			if g.ValRight != nil {
				v = field.Reduce(*g.ValRight)
			} else if g.ValLeft != nil {
				v = field.Reduce(*g.ValLeft)
			}
			regVal[g.Dest] = v
			z[int(g.Dest)+1] = v

		case InstrAdd, InstrAddi, InstrMul:
			if counter >= int(params.NG) {
				return nil, fmt.Errorf("gate %d of class budget %d: %w", counter+1, params.NG, ErrTooManyGates)
			}
			left := operandValue(field, regVal, g.Left, g.ValLeft)
			right := operandValue(field, regVal, g.Right, g.ValRight)

			var out uint64
			switch g.Instr {
			case InstrMul:
				out = field.Mul(left, right)
			default:
				out = field.Add(left, right)
			}

			z[t+counter] = out
			regVal[g.Dest] = out
			assigned[g.Dest] = true
			counter++

		default:
			return nil, fmt.Errorf("gate %q: %w", g.String(), ErrUnsupportedGate)
		}
	}
	return z, nil
}

func operandValue(field *core.Field, regVal map[uint8]uint64, reg uint8, lit *uint64) uint64 {
	if lit != nil {
		return field.Reduce(*lit)
	}
	return regVal[reg]
}

// CheckConstraints verifies (A*Z) ∘ (B*Z) = C*Z entry-wise.
func CheckConstraints(field *core.Field, matrices *Matrices, z []uint64) error {
	az, err := matrices.A.MulVec(z)
	if err != nil {
		return err
	}
	bz, err := matrices.B.MulVec(z)
	if err != nil {
		return err
	}
	cz, err := matrices.C.MulVec(z)
	if err != nil {
		return err
	}
	for i := range az {
		if field.Mul(az[i], bz[i]) != cz[i] {
			return fmt.Errorf("row %d: %w", i, ErrUnsatisfiedConstraints)
		}
	}
	return nil
}
