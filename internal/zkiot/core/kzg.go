package core

import (
	"errors"
	"fmt"
)

// ErrKeyTooShort is returned when a commitment key cannot cover the degree
// of the polynomial being committed.
var ErrKeyTooShort = errors.New("commitment key too short")

// CommitmentKey is the structured reference string of the KZG-style scheme:
// ck[i] = g * tau^i, with the group modeled inside the field itself. The
// verifying key is ck[1] = g * tau.
type CommitmentKey []uint64

// KZGSetup derives a commitment key of the given length from the trapdoor
// tau. The trapdoor is reduced modulo p-1 so that repeated multiplication
// stays consistent with exponent arithmetic; callers must discard tau after
// setup.
func KZGSetup(field *Field, length int, g, tau uint64) CommitmentKey {
	tau %= field.Modulus() - 1
	ck := make(CommitmentKey, length)
	if length == 0 {
		return ck
	}
	ck[0] = field.Reduce(g)
	for i := 1; i < length; i++ {
		ck[i] = field.Mul(ck[i-1], tau)
	}
	return ck
}

// VerifyingKey returns ck[1], the degree-one element of the key.
func (ck CommitmentKey) VerifyingKey() (uint64, error) {
	if len(ck) < 2 {
		return 0, fmt.Errorf("commitment key has %d elements, need at least 2: %w", len(ck), ErrKeyTooShort)
	}
	return ck[1], nil
}

// KZGCommit commits to a polynomial as sum_i coeff_i * ck[i]. The key must
// cover every coefficient of the polynomial.
func KZGCommit(field *Field, poly *Polynomial, ck CommitmentKey) (uint64, error) {
	if poly.Degree()+1 > len(ck) {
		return 0, fmt.Errorf("polynomial degree %d exceeds key length %d: %w", poly.Degree(), len(ck), ErrKeyTooShort)
	}
	commit := uint64(0)
	for i := 0; i <= poly.Degree(); i++ {
		commit = field.Add(commit, field.Mul(poly.Coefficient(i), ck[i]))
	}
	return commit, nil
}

// EFunc is the bilinear-map stand-in used by the opening check: both inputs
// are stripped of the generator factor and combined multiplicatively, scaled
// by a fixed constant. It is NOT a cryptographic pairing; it preserves the
// algebraic identity e(a*g, b*g) = e(g, g)^(a*b) only because the group is
// modeled in-field.
func EFunc(field *Field, a, b, g uint64) (uint64, error) {
	ar, err := field.Div(a, g)
	if err != nil {
		return 0, fmt.Errorf("pairing stand-in: %w", err)
	}
	br, err := field.Div(b, g)
	if err != nil {
		return 0, fmt.Errorf("pairing stand-in: %w", err)
	}
	return field.Mul(3, field.Mul(ar, br)), nil
}
