// Package ahp implements the algebraic holographic proof behind the device
// attestation flow: a one-time encoding of the constraint matrices, a prover
// producing three sumcheck arguments plus one KZG opening, and the matching
// verifier.
package ahp

import (
	"fmt"

	"github.com/fidesinnova/zkiot/internal/zkiot/core"
	"github.com/fidesinnova/zkiot/internal/zkiot/logger"
	"github.com/fidesinnova/zkiot/internal/zkiot/utils"
)

// SRS holds the public output of the trusted setup: the commitment key, its
// verifying element, and the group generator.
type SRS struct {
	Ck core.CommitmentKey
	Vk uint64
	G  uint64
}

// KeyLength returns the commitment-key length needed to cover every
// polynomial the prover commits to for the given class: the masking
// polynomial of degree 2n+1 dominates on the H side, the third sumcheck's
// quotient on the K side.
func KeyLength(params utils.ClassParams) int {
	n := int(params.N)
	m := int(params.M)
	h := 2*n + 2
	k := 6 * m
	if h > k {
		return h
	}
	return k
}

// Setup runs the trusted setup for a device class, drawing the trapdoor from
// crypto/rand and discarding it. Only the resulting key material leaves this
// function.
func Setup(field *core.Field, params utils.ClassParams) (*SRS, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	tau, err := field.RandomNonZero()
	if err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	return SetupWithTrapdoor(field, params, tau)
}

// SetupWithTrapdoor derives the SRS from an explicit trapdoor. Exposed for
// tests and for ceremonies that source tau externally; production callers
// use Setup.
func SetupWithTrapdoor(field *core.Field, params utils.ClassParams, tau uint64) (*SRS, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	length := KeyLength(params)
	ck := core.KZGSetup(field, length, params.G, tau)
	vk, err := ck.VerifyingKey()
	if err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}

	logger.Logger().Debug().
		Int("key_length", length).
		Uint64("p", field.Modulus()).
		Msg("commitment key generated")

	return &SRS{Ck: ck, Vk: vk, G: params.G}, nil
}
