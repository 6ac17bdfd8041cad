package ahp

import (
	"fmt"

	"github.com/fidesinnova/zkiot/internal/zkiot/core"
	"github.com/fidesinnova/zkiot/internal/zkiot/logger"
	"github.com/fidesinnova/zkiot/internal/zkiot/utils"
)

// VerifierOption adjusts proof verification.
type VerifierOption func(*verifierConfig)

type verifierConfig struct {
	hashFunc string
	beta3    *uint64
}

// WithVerifierHash selects the challenge hash; it must match the prover's.
func WithVerifierHash(name string) VerifierOption {
	return func(c *verifierConfig) {
		c.hashFunc = name
	}
}

// WithBeta3 fixes the verifier's spot-check point instead of drawing it at
// random. Tests only.
func WithBeta3(v uint64) VerifierOption {
	return func(c *verifierConfig) {
		c.beta3 = &v
	}
}

// Verify checks an execution proof against a published matrix commitment.
// It re-derives every challenge from the proof's masking polynomial, then
// evaluates the three sumcheck identities, the row-wise product identity,
// and the batched KZG opening. The verdict is the boolean; the error channel
// reports malformed inputs only.
func Verify(field *core.Field, srs *SRS, com *Commitment, proof *Proof, opts ...VerifierOption) (bool, error) {
	cfg := verifierConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	params := com.Params
	n := int(params.N)
	t := params.InputLen()
	log := logger.Logger().With().Str("phase", "verify").Logger()

	if len(proof.XVec) != t {
		return false, fmt.Errorf("public input length %d, class expects %d: %w", len(proof.XVec), t, utils.ErrInvalidParams)
	}
	if proof.XVec[0] != 1 {
		log.Debug().Msg("public input does not start with the constant one")
		return false, nil
	}
	for i := range proof.Polys {
		if proof.Polys[i] == nil {
			return false, fmt.Errorf("proof polynomial %d missing: %w", i, utils.ErrInvalidParams)
		}
	}

	h, k := com.H, com.K

	// Every commitment must match its carried polynomial.
	for i, poly := range proof.Polys {
		c, err := core.KZGCommit(field, poly, srs.Ck)
		if err != nil {
			return false, fmt.Errorf("recommitting proof polynomial %d: %w", i, err)
		}
		if c != proof.Commits[i] {
			log.Debug().Int("poly", i).Msg("commitment mismatch")
			return false, nil
		}
	}

	// Re-derive the challenges from the masking polynomial.
	s := proof.Polys[5]
	tr, err := utils.NewTranscript(field, cfg.hashFunc)
	if err != nil {
		return false, err
	}
	alpha := tr.Squeeze(s.Evaluate(0))
	etas := [3]uint64{
		tr.Squeeze(s.Evaluate(1)),
		tr.Squeeze(s.Evaluate(2)),
		tr.Squeeze(s.Evaluate(3)),
	}
	beta1 := tr.SqueezeExcluding(s.Evaluate(8), h.Contains)
	beta2 := tr.SqueezeExcluding(s.Evaluate(9), h.Contains)

	var beta3 uint64
	if cfg.beta3 != nil {
		beta3 = field.Reduce(*cfg.beta3)
	} else if beta3, err = field.RandomNonZero(); err != nil {
		return false, err
	}

	wHat, zaHat, zbHat, zcHat := proof.Polys[0], proof.Polys[1], proof.Polys[2], proof.Polys[3]
	h0, g1, h1 := proof.Polys[4], proof.Polys[6], proof.Polys[7]
	g2, h2, g3, h3 := proof.Polys[8], proof.Polys[9], proof.Polys[10], proof.Polys[11]
	sigma1, sigma2, sigma3 := proof.Sigmas[0], proof.Sigmas[1], proof.Sigmas[2]

	mInv := func(sum uint64, size int) (uint64, error) {
		return field.Div(sum, uint64(size))
	}

	// Check 1: the rationalized third sumcheck at the spot-check point.
	encs := [3]*MatrixEncoding{&com.A, &com.B, &com.C}
	a, b := rationalizedPair(field, h, encs, etas, beta1, beta2)
	avg3, err := mInv(sigma3, k.Size())
	if err != nil {
		return false, err
	}
	f3AtBeta3 := field.Add(field.Mul(beta3, g3.Evaluate(beta3)), avg3)
	lhs1 := field.Mul(h3.Evaluate(beta3), k.EvalVanishing(beta3))
	rhs1 := field.Sub(a.Evaluate(beta3), field.Mul(b.Evaluate(beta3), f3AtBeta3))
	if lhs1 != rhs1 {
		log.Debug().Msg("third sumcheck identity fails")
		return false, nil
	}

	// Check 2: the second sumcheck at beta2.
	avg2, err := mInv(sigma2, n)
	if err != nil {
		return false, err
	}
	lhs2 := field.Mul(core.FuncUEval(field, alpha, beta2, n), sigma3)
	rhs2 := field.Add(
		field.Add(
			field.Mul(h2.Evaluate(beta2), h.EvalVanishing(beta2)),
			field.Mul(beta2, g2.Evaluate(beta2)),
		),
		avg2,
	)
	if lhs2 != rhs2 {
		log.Debug().Msg("second sumcheck identity fails")
		return false, nil
	}

	// Check 3: the masked lincheck at beta1, with the full witness
	// reassembled from the public input and the shifted witness.
	h1Elems := h.Elements()[:t]
	xHat, err := interpolateVector(field, h1Elems, proof.XVec)
	if err != nil {
		return false, fmt.Errorf("interpolating public input: %w", err)
	}
	vh1 := core.VanishingPolynomial(field, h1Elems)
	zAtBeta1 := field.Add(
		field.Mul(wHat.Evaluate(beta1), vh1.Evaluate(beta1)),
		xHat.Evaluate(beta1),
	)

	avg1, err := mInv(sigma1, n)
	if err != nil {
		return false, err
	}
	etaZAtBeta1 := field.Add(
		field.Add(
			field.Mul(etas[0], zaHat.Evaluate(beta1)),
			field.Mul(etas[1], zbHat.Evaluate(beta1)),
		),
		field.Mul(etas[2], zcHat.Evaluate(beta1)),
	)
	lhs3 := field.Sub(
		field.Add(
			s.Evaluate(beta1),
			field.Mul(core.FuncUEval(field, alpha, beta1, n), etaZAtBeta1),
		),
		field.Mul(sigma2, zAtBeta1),
	)
	rhs3 := field.Add(
		field.Add(
			field.Mul(h1.Evaluate(beta1), h.EvalVanishing(beta1)),
			field.Mul(beta1, g1.Evaluate(beta1)),
		),
		avg1,
	)
	if lhs3 != rhs3 {
		log.Debug().Msg("first sumcheck identity fails")
		return false, nil
	}

	// Check 4: the row-wise product identity at beta1.
	lhs4 := field.Sub(
		field.Mul(zaHat.Evaluate(beta1), zbHat.Evaluate(beta1)),
		zcHat.Evaluate(beta1),
	)
	rhs4 := field.Mul(h0.Evaluate(beta1), h.EvalVanishing(beta1))
	if lhs4 != rhs4 {
		log.Debug().Msg("product identity fails")
		return false, nil
	}

	// Check 5: the batched KZG opening.
	var weights [ProofPolyCount]uint64
	for i := range weights {
		weights[i] = tr.Squeeze(s.Evaluate(uint64(10 + i)))
	}
	zChal := tr.Squeeze(s.Evaluate(22))

	px := core.NewPolynomial(field, nil)
	commitPx := uint64(0)
	for i, poly := range proof.Polys {
		px = px.Add(poly.MulScalar(weights[i]))
		commitPx = field.Add(commitPx, field.Mul(weights[i], proof.Commits[i]))
	}
	if px.Evaluate(zChal) != proof.YPrime {
		log.Debug().Msg("opening value mismatch")
		return false, nil
	}
	q, r, err := px.Sub(core.NewConstant(field, proof.YPrime)).
		Div(core.NewPolynomial(field, []uint64{field.Neg(zChal), 1}))
	if err != nil {
		return false, err
	}
	if !r.IsZero() {
		log.Debug().Msg("opening witness division not exact")
		return false, nil
	}
	commitQ, err := core.KZGCommit(field, q, srs.Ck)
	if err != nil {
		return false, fmt.Errorf("recommitting opening witness: %w", err)
	}
	if commitQ != proof.CommitQ {
		log.Debug().Msg("opening witness commitment mismatch")
		return false, nil
	}

	left, err := core.EFunc(field, field.Sub(commitPx, field.Mul(srs.G, proof.YPrime)), srs.G, srs.G)
	if err != nil {
		return false, err
	}
	right, err := core.EFunc(field, commitQ, field.Sub(srs.Vk, field.Mul(srs.G, zChal)), srs.G)
	if err != nil {
		return false, err
	}
	if left != right {
		log.Debug().Msg("pairing identity fails")
		return false, nil
	}

	log.Debug().Msg("proof accepted")
	return true, nil
}
