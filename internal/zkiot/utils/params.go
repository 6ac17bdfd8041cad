package utils

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidParams is returned when device class parameters are rejected.
var ErrInvalidParams = errors.New("invalid class parameters")

// ClassParams fixes the circuit geometry for a device class: the number of
// constraint rows n_g, the number of input registers n_i, the sizes of the
// two evaluation domains, and the field.
type ClassParams struct {
	NG uint64 `json:"n_g"` // number of gate constraint rows
	NI uint64 `json:"n_i"` // number of input registers
	N  uint64 `json:"n"`   // |H|, must equal n_g + n_i + 1
	M  uint64 `json:"m"`   // |K|, at least the densest matrix's non-zero count
	P  uint64 `json:"p"`   // field modulus
	G  uint64 `json:"g"`   // group generator
}

// DefaultClass returns the reference device class used across the test
// fixtures: 4 gates over 32 registers in GF(1678321).
func DefaultClass() ClassParams {
	return ClassParams{NG: 4, NI: 32, N: 37, M: 8, P: 1678321, G: 11}
}

// MatrixSize returns the side length of the square constraint matrices,
// equal to |H|.
func (c ClassParams) MatrixSize() int {
	return int(c.NG + c.NI + 1)
}

// InputLen returns t, the length of the public input prefix of the witness
// vector: the constant one plus one slot per input register.
func (c ClassParams) InputLen() int {
	return int(c.NI + 1)
}

// Validate checks the internal consistency of the parameters. Both domain
// sizes must divide p-1 so the evaluation domains exist.
func (c ClassParams) Validate() error {
	if c.NG == 0 {
		return fmt.Errorf("n_g must be positive: %w", ErrInvalidParams)
	}
	if c.NI == 0 {
		return fmt.Errorf("n_i must be positive: %w", ErrInvalidParams)
	}
	if c.N != c.NG+c.NI+1 {
		return fmt.Errorf("n = %d, must equal n_g + n_i + 1 = %d: %w", c.N, c.NG+c.NI+1, ErrInvalidParams)
	}
	if c.M < 2 {
		return fmt.Errorf("m = %d, must be at least 2: %w", c.M, ErrInvalidParams)
	}
	if c.P <= 2 || c.P%2 == 0 {
		return fmt.Errorf("p = %d is not an odd prime candidate: %w", c.P, ErrInvalidParams)
	}
	if c.G <= 1 || c.G >= c.P {
		return fmt.Errorf("g = %d out of range (1, p): %w", c.G, ErrInvalidParams)
	}
	if (c.P-1)%c.N != 0 {
		return fmt.Errorf("n = %d does not divide p-1 = %d: %w", c.N, c.P-1, ErrInvalidParams)
	}
	if (c.P-1)%c.M != 0 {
		return fmt.Errorf("m = %d does not divide p-1 = %d: %w", c.M, c.P-1, ErrInvalidParams)
	}
	return nil
}

// ParseClasses decodes a registry of device classes keyed by class number,
// validating every entry.
func ParseClasses(data []byte) (map[string]ClassParams, error) {
	classes := make(map[string]ClassParams)
	if err := json.Unmarshal(data, &classes); err != nil {
		return nil, fmt.Errorf("decoding class registry: %w", err)
	}
	for id, c := range classes {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("class %s: %w", id, err)
		}
	}
	return classes, nil
}
