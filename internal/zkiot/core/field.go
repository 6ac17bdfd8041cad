package core

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"math/bits"
)

// ErrDivisionByZero is returned when inverting or dividing by zero.
var ErrDivisionByZero = errors.New("division by zero")

// Field represents a prime field GF(p) with a runtime-chosen 64-bit modulus.
// Elements are plain uint64 values; all methods reduce their operands, so
// callers may pass unreduced values.
type Field struct {
	modulus uint64
}

// NewField creates a new prime field with the given modulus.
// The modulus must be an odd prime greater than 2; primality is the caller's
// responsibility, but trivially invalid moduli are rejected here.
func NewField(modulus uint64) (*Field, error) {
	if modulus <= 2 {
		return nil, fmt.Errorf("field modulus must be greater than 2, got %d", modulus)
	}
	if modulus%2 == 0 {
		return nil, fmt.Errorf("field modulus must be odd, got %d", modulus)
	}
	return &Field{modulus: modulus}, nil
}

// Modulus returns the field modulus.
func (f *Field) Modulus() uint64 {
	return f.modulus
}

// Reduce maps a value into the canonical range [0, p).
func (f *Field) Reduce(a uint64) uint64 {
	return a % f.modulus
}

// Add returns a + b mod p.
func (f *Field) Add(a, b uint64) uint64 {
	s, carry := bits.Add64(a%f.modulus, b%f.modulus, 0)
	if carry != 0 || s >= f.modulus {
		s -= f.modulus
	}
	return s
}

// Sub returns a - b mod p.
func (f *Field) Sub(a, b uint64) uint64 {
	a, b = a%f.modulus, b%f.modulus
	if a >= b {
		return a - b
	}
	return a + (f.modulus - b)
}

// Neg returns -a mod p.
func (f *Field) Neg(a uint64) uint64 {
	a %= f.modulus
	if a == 0 {
		return 0
	}
	return f.modulus - a
}

// Mul returns a * b mod p. The product is widened to 128 bits before
// reduction, so any pair of canonical operands is safe.
func (f *Field) Mul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a%f.modulus, b%f.modulus)
	_, rem := bits.Div64(hi, lo, f.modulus)
	return rem
}

// Exp returns base^exp mod p by square-and-multiply. The exponent is taken
// as-is; callers reduce it modulo p-1 when that is the intended semantics.
func (f *Field) Exp(base, exp uint64) uint64 {
	result := uint64(1)
	base %= f.modulus
	for exp > 0 {
		if exp&1 == 1 {
			result = f.Mul(result, base)
		}
		base = f.Mul(base, base)
		exp >>= 1
	}
	return result
}

// Inv returns the multiplicative inverse a^(p-2) mod p.
func (f *Field) Inv(a uint64) (uint64, error) {
	if a%f.modulus == 0 {
		return 0, fmt.Errorf("cannot invert zero in GF(%d): %w", f.modulus, ErrDivisionByZero)
	}
	return f.Exp(a, f.modulus-2), nil
}

// Div returns a / b mod p.
func (f *Field) Div(a, b uint64) (uint64, error) {
	inv, err := f.Inv(b)
	if err != nil {
		return 0, err
	}
	return f.Mul(a, inv), nil
}

// Random draws a uniformly random field element from crypto/rand.
func (f *Field) Random() (uint64, error) {
	v, err := rand.Int(rand.Reader, new(big.Int).SetUint64(f.modulus))
	if err != nil {
		return 0, fmt.Errorf("drawing random field element: %w", err)
	}
	return v.Uint64(), nil
}

// RandomNonZero draws a uniformly random element of GF(p) \ {0}.
func (f *Field) RandomNonZero() (uint64, error) {
	v, err := rand.Int(rand.Reader, new(big.Int).SetUint64(f.modulus-1))
	if err != nil {
		return 0, fmt.Errorf("drawing random field element: %w", err)
	}
	return v.Uint64() + 1, nil
}

// Equal reports whether two fields have the same modulus.
func (f *Field) Equal(other *Field) bool {
	return other != nil && f.modulus == other.modulus
}
