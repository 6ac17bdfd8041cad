package utils

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"strconv"

	"golang.org/x/crypto/sha3"

	"github.com/fidesinnova/zkiot/internal/zkiot/core"
)

// Transcript derives verifier challenges from prover polynomial evaluations.
// Each challenge is the hash of the decimal rendering of one evaluation,
// folded to 32 bits and reduced into the field. Prover and verifier must use
// identical hash settings to agree on the challenges.
//
// The derivation binds each challenge to a single masking-polynomial
// evaluation rather than to the whole transcript; it reproduces the device
// ecosystem's wire behavior and is not a full Fiat-Shamir transform.
type Transcript struct {
	field    *core.Field
	hashFunc string
}

// NewTranscript creates a transcript over the given field. Supported hash
// functions are "sha256" (the default when empty) and "sha3".
func NewTranscript(field *core.Field, hashFunc string) (*Transcript, error) {
	if hashFunc == "" {
		hashFunc = "sha256"
	}
	switch hashFunc {
	case "sha256", "sha3":
	default:
		return nil, fmt.Errorf("unsupported transcript hash %q", hashFunc)
	}
	return &Transcript{field: field, hashFunc: hashFunc}, nil
}

// Squeeze derives a field element from a single evaluation value.
func (t *Transcript) Squeeze(v uint64) uint64 {
	digest := t.hash([]byte(strconv.FormatUint(v, 10)))
	// Fold to the final four digest bytes.
	folded := binary.BigEndian.Uint32(digest[28:32])
	return t.field.Reduce(uint64(folded))
}

// SqueezeExcluding derives a field element and steps it forward by one until
// it leaves the excluded set. Used for challenges that must land outside an
// evaluation domain.
func (t *Transcript) SqueezeExcluding(v uint64, excluded func(uint64) bool) uint64 {
	c := t.Squeeze(v)
	for excluded(c) {
		c = t.field.Add(c, 1)
	}
	return c
}

func (t *Transcript) hash(data []byte) []byte {
	switch t.hashFunc {
	case "sha3":
		h := sha3.Sum256(data)
		return h[:]
	default:
		h := sha256.Sum256(data)
		return h[:]
	}
}
