package ahp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fidesinnova/zkiot/internal/zkiot/circuit"
	"github.com/fidesinnova/zkiot/internal/zkiot/core"
	"github.com/fidesinnova/zkiot/internal/zkiot/utils"
)

func provePipeline(t *testing.T, opts ...ProverOption) (*core.Field, *SRS, *Commitment, *Proof) {
	t.Helper()
	field, params, matrices, srs, com := setupCommitment(t)

	z, err := circuit.BuildWitness(field, params, referenceProgram())
	require.NoError(t, err)

	proof, err := GenerateProof(field, srs, com, matrices, z, opts...)
	require.NoError(t, err)
	return field, srs, com, proof
}

func TestProveAndVerify(t *testing.T) {
	field, srs, com, proof := provePipeline(t)

	ok, err := Verify(field, srs, com, proof)
	require.NoError(t, err)
	require.True(t, ok, "honest proof must verify")
}

func TestProveAndVerifyFixedMask(t *testing.T) {
	mask := make([]uint64, 2*37+2)
	for i := range mask {
		mask[i] = uint64(i*i + 3)
	}
	field, srs, com, proof := provePipeline(t, WithMask(mask))

	ok, err := Verify(field, srs, com, proof, WithBeta3(777))
	require.NoError(t, err)
	require.True(t, ok)

	// The sumcheck sums depend only on the witness and the mask, not on the
	// random interpolation padding, so they are reproducible.
	_, _, _, proof2 := provePipeline(t, WithMask(mask))
	require.Equal(t, proof.Sigmas, proof2.Sigmas)
}

func TestProveAndVerifySha3(t *testing.T) {
	field, srs, com, proof := provePipeline(t, WithTranscriptHash("sha3"))

	ok, err := Verify(field, srs, com, proof, WithVerifierHash("sha3"))
	require.NoError(t, err)
	require.True(t, ok)

	// A verifier on the wrong hash derives different challenges and rejects.
	ok, err = Verify(field, srs, com, proof)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyRejectsTampering(t *testing.T) {
	field, srs, com, proof := provePipeline(t)

	tests := []struct {
		name   string
		mutate func(p *Proof)
	}{
		{"sigma1", func(p *Proof) { p.Sigmas[0] = field.Add(p.Sigmas[0], 1) }},
		{"sigma3", func(p *Proof) { p.Sigmas[2] = field.Add(p.Sigmas[2], 1) }},
		{"y_prime", func(p *Proof) { p.YPrime = field.Add(p.YPrime, 1) }},
		{"commit_q", func(p *Proof) { p.CommitQ = field.Add(p.CommitQ, 1) }},
		{"public input", func(p *Proof) { p.XVec[2] = field.Add(p.XVec[2], 1) }},
		{"witness polynomial", func(p *Proof) {
			coeffs := p.Polys[0].Coefficients()
			coeffs[0] = field.Add(coeffs[0], 1)
			p.Polys[0] = core.NewPolynomial(field, coeffs)
		}},
		{"quotient polynomial", func(p *Proof) {
			coeffs := p.Polys[11].Coefficients()
			coeffs[0] = field.Add(coeffs[0], 1)
			p.Polys[11] = core.NewPolynomial(field, coeffs)
		}},
		{"commitment", func(p *Proof) { p.Commits[4] = field.Add(p.Commits[4], 1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tampered := *proof
			tampered.XVec = append([]uint64(nil), proof.XVec...)
			tt.mutate(&tampered)

			ok, err := Verify(field, srs, com, &tampered)
			require.NoError(t, err)
			require.False(t, ok, "tampered proof must be rejected")
		})
	}
}

func TestGenerateProofRejectsBadWitness(t *testing.T) {
	field, params, matrices, srs, com := setupCommitment(t)

	z, err := circuit.BuildWitness(field, params, referenceProgram())
	require.NoError(t, err)
	z[34] = field.Add(z[34], 1)

	_, err = GenerateProof(field, srs, com, matrices, z)
	require.ErrorIs(t, err, circuit.ErrUnsatisfiedConstraints)
}

func TestGenerateProofRejectsWrongWitnessLength(t *testing.T) {
	field, _, matrices, srs, com := setupCommitment(t)

	_, err := GenerateProof(field, srs, com, matrices, make([]uint64, 5))
	require.ErrorIs(t, err, utils.ErrInvalidParams)
}

func TestVerifyRejectsWrongPublicInput(t *testing.T) {
	field, srs, com, proof := provePipeline(t)

	short := *proof
	short.XVec = proof.XVec[:5]
	_, err := Verify(field, srs, com, &short)
	require.ErrorIs(t, err, utils.ErrInvalidParams)

	noConstant := *proof
	noConstant.XVec = append([]uint64(nil), proof.XVec...)
	noConstant.XVec[0] = 2
	ok, err := Verify(field, srs, com, &noConstant)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestKeyLengthCoversProof(t *testing.T) {
	_, srs, com, proof := provePipeline(t)

	bound := KeyLength(com.Params)
	require.Equal(t, bound, len(srs.Ck))
	for i, poly := range proof.Polys {
		require.Less(t, poly.Degree(), bound, "polynomial %d exceeds the key", i)
	}
}
