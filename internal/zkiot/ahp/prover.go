package ahp

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/fidesinnova/zkiot/internal/zkiot/circuit"
	"github.com/fidesinnova/zkiot/internal/zkiot/core"
	"github.com/fidesinnova/zkiot/internal/zkiot/logger"
	"github.com/fidesinnova/zkiot/internal/zkiot/utils"
)

// ProofPolyCount is the number of polynomials a proof carries, in the fixed
// order: w-hat, zA, zB, zC, h0, s, g1, h1, g2, h2, g3, h3.
const ProofPolyCount = 12

// SigmaCount is the number of claimed sumcheck sums in a proof.
const SigmaCount = 3

// Proof is a complete execution proof: the twelve proof polynomials with
// their commitments, the three sumcheck sums, the combined opening value and
// witness commitment, and the public input vector.
type Proof struct {
	Commits [ProofPolyCount]uint64
	Polys   [ProofPolyCount]*core.Polynomial
	Sigmas  [SigmaCount]uint64
	YPrime  uint64
	CommitQ uint64
	XVec    []uint64
}

type proverConfig struct {
	mask     []uint64
	hashFunc string
}

// ProverOption adjusts proof generation.
type ProverOption func(*proverConfig)

// WithMask fixes the masking polynomial's ascending coefficients instead of
// drawing them at random. Deterministic proofs lose zero-knowledge; tests
// only.
func WithMask(coefficients []uint64) ProverOption {
	return func(c *proverConfig) {
		c.mask = append([]uint64(nil), coefficients...)
	}
}

// WithTranscriptHash selects the challenge hash ("sha256" or "sha3"). The
// verifier must be configured identically.
func WithTranscriptHash(name string) ProverOption {
	return func(c *proverConfig) {
		c.hashFunc = name
	}
}

// padPoints returns two fixed x-coordinates outside H, used to extend the
// witness interpolations past the domain.
func padPoints(field *core.Field, h *core.Domain) (uint64, uint64) {
	x1 := field.Reduce(150)
	for h.Contains(x1) {
		x1 = field.Add(x1, 1)
	}
	x2 := field.Reduce(80)
	for h.Contains(x2) || x2 == x1 {
		x2 = field.Add(x2, 1)
	}
	return x1, x2
}

// GenerateProof produces an execution proof for a witness against the
// published commitment. The witness must satisfy the constraint system; the
// caller obtains it from circuit.BuildWitness.
func GenerateProof(field *core.Field, srs *SRS, com *Commitment, matrices *circuit.Matrices, z []uint64, opts ...ProverOption) (*Proof, error) {
	cfg := proverConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	params := com.Params
	n := int(params.N)
	t := params.InputLen()
	if len(z) != params.MatrixSize() {
		return nil, fmt.Errorf("witness length %d does not match class size %d: %w", len(z), params.MatrixSize(), utils.ErrInvalidParams)
	}
	if err := circuit.CheckConstraints(field, matrices, z); err != nil {
		return nil, err
	}

	log := logger.Logger().With().Str("phase", "prove").Logger()
	h, k := com.H, com.K

	// H splits into the public prefix H1 and the private remainder H2.
	h1Elems := h.Elements()[:t]

	az, err := matrices.A.MulVec(z)
	if err != nil {
		return nil, err
	}
	bz, err := matrices.B.MulVec(z)
	if err != nil {
		return nil, err
	}
	cz, err := matrices.C.MulVec(z)
	if err != nil {
		return nil, err
	}

	xHat, err := interpolateVector(field, h1Elems, z[:t])
	if err != nil {
		return nil, fmt.Errorf("interpolating public input: %w", err)
	}

	padX1, padX2 := padPoints(field, h)
	pad := func(points []core.Point) ([]core.Point, error) {
		y1, err := field.Random()
		if err != nil {
			return nil, err
		}
		y2, err := field.Random()
		if err != nil {
			return nil, err
		}
		return append(points, core.Point{X: padX1, Y: y1}, core.Point{X: padX2, Y: y2}), nil
	}

	interpolatePadded := func(xs, ys []uint64) (*core.Polynomial, error) {
		points := make([]core.Point, len(xs))
		for i := range xs {
			points[i] = core.Point{X: xs[i], Y: ys[i]}
		}
		points, err := pad(points)
		if err != nil {
			return nil, err
		}
		return core.Interpolate(field, points)
	}

	zaHat, err := interpolatePadded(h.Elements(), az)
	if err != nil {
		return nil, fmt.Errorf("interpolating A*z: %w", err)
	}
	zbHat, err := interpolatePadded(h.Elements(), bz)
	if err != nil {
		return nil, fmt.Errorf("interpolating B*z: %w", err)
	}
	zcHat, err := interpolatePadded(h.Elements(), cz)
	if err != nil {
		return nil, fmt.Errorf("interpolating C*z: %w", err)
	}

	// The shifted witness w-bar divides out the public part on H2.
	vh1 := core.VanishingPolynomial(field, h1Elems)
	wPoints := make([]core.Point, 0, n-t+2)
	for i := t; i < n; i++ {
		x := h.Element(i)
		y, err := field.Div(field.Sub(cz[i], xHat.Evaluate(x)), vh1.Evaluate(x))
		if err != nil {
			return nil, fmt.Errorf("shifting witness at row %d: %w", i, err)
		}
		wPoints = append(wPoints, core.Point{X: x, Y: y})
	}
	wPoints, err = pad(wPoints)
	if err != nil {
		return nil, err
	}
	wHat, err := core.Interpolate(field, wPoints)
	if err != nil {
		return nil, fmt.Errorf("interpolating shifted witness: %w", err)
	}

	// Row-wise product argument.
	h0, err := divideExact(zaHat.Mul(zbHat).Sub(zcHat), h.Vanishing(), "h0")
	if err != nil {
		return nil, err
	}

	// Masking polynomial of degree 2n+1.
	mask := cfg.mask
	if mask == nil {
		mask = make([]uint64, 2*n+2)
		for i := range mask {
			if mask[i], err = field.Random(); err != nil {
				return nil, err
			}
		}
	}
	s := core.NewPolynomial(field, mask)

	tr, err := utils.NewTranscript(field, cfg.hashFunc)
	if err != nil {
		return nil, err
	}
	alpha := tr.Squeeze(s.Evaluate(0))
	etas := [3]uint64{
		tr.Squeeze(s.Evaluate(1)),
		tr.Squeeze(s.Evaluate(2)),
		tr.Squeeze(s.Evaluate(3)),
	}
	beta1 := tr.SqueezeExcluding(s.Evaluate(8), h.Contains)
	beta2 := tr.SqueezeExcluding(s.Evaluate(9), h.Contains)
	log.Debug().Uint64("alpha", alpha).Uint64("beta1", beta1).Uint64("beta2", beta2).Msg("challenges derived")

	zHat := wHat.Mul(vh1).Add(xHat)

	// First sumcheck: the masked lincheck polynomial.
	oracles := [3]matrixOracle{
		pointOracle(&com.A),
		pointOracle(&com.B),
		pointOracle(&com.C),
	}
	rAlpha := core.FuncUPoly(field, alpha, n)
	etaZ := zaHat.MulScalar(etas[0]).
		Add(zbHat.MulScalar(etas[1])).
		Add(zcHat.MulScalar(etas[2]))
	contraction := core.NewPolynomial(field, nil)
	for i, oracle := range oracles {
		contraction = contraction.Add(rowContraction(field, h, oracle, alpha).MulScalar(etas[i]))
	}
	scp := s.Add(rAlpha.Mul(etaZ)).Sub(contraction.Mul(zHat))

	hPoly1, rem1, err := scp.Div(h.Vanishing())
	if err != nil {
		return nil, err
	}
	sigma1 := sumOverDomain(field, scp, h)
	avg1, err := field.Div(sigma1, uint64(n))
	if err != nil {
		return nil, err
	}
	g1, err := stripConstantAndDivideByX(field, rem1, avg1)
	if err != nil {
		return nil, fmt.Errorf("first sumcheck: %w", err)
	}

	// Second sumcheck: the row side of the matrix encodings at beta1.
	colEval := core.NewPolynomial(field, nil)
	for i, oracle := range oracles {
		colEval = colEval.Add(colEvaluation(field, h, oracle, beta1).MulScalar(etas[i]))
	}
	poly2 := rAlpha.Mul(colEval)
	hPoly2, rem2, err := poly2.Div(h.Vanishing())
	if err != nil {
		return nil, err
	}
	sigma2 := sumOverDomain(field, poly2, h)
	avg2, err := field.Div(sigma2, uint64(n))
	if err != nil {
		return nil, err
	}
	g2, err := stripConstantAndDivideByX(field, rem2, avg2)
	if err != nil {
		return nil, fmt.Errorf("second sumcheck: %w", err)
	}

	// Third sumcheck: the rational encoding sum over K.
	f3Values, err := thirdSumcheckValues(field, h, oracles, etas, beta1, beta2)
	if err != nil {
		return nil, err
	}
	f3, err := interpolateVector(field, k.Elements(), f3Values)
	if err != nil {
		return nil, fmt.Errorf("interpolating third sumcheck: %w", err)
	}
	sigma3 := uint64(0)
	for _, v := range f3Values {
		sigma3 = field.Add(sigma3, v)
	}
	avg3, err := field.Div(sigma3, uint64(k.Size()))
	if err != nil {
		return nil, err
	}
	g3, err := stripConstantAndDivideByX(field, f3, avg3)
	if err != nil {
		return nil, fmt.Errorf("third sumcheck: %w", err)
	}
	a, b := rationalizedPair(field, h, [3]*MatrixEncoding{&com.A, &com.B, &com.C}, etas, beta1, beta2)
	h3, err := divideExact(a.Sub(b.Mul(f3)), k.Vanishing(), "third sumcheck quotient")
	if err != nil {
		return nil, err
	}

	proof := &Proof{
		Polys: [ProofPolyCount]*core.Polynomial{
			wHat, zaHat, zbHat, zcHat, h0, s,
			g1, hPoly1, g2, hPoly2, g3, h3,
		},
		Sigmas: [SigmaCount]uint64{sigma1, sigma2, sigma3},
		XVec:   append([]uint64(nil), z[:t]...),
	}

	var group errgroup.Group
	for i := range proof.Polys {
		i := i
		group.Go(func() error {
			c, err := core.KZGCommit(field, proof.Polys[i], srs.Ck)
			if err != nil {
				return err
			}
			proof.Commits[i] = c
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("committing proof polynomials: %w", err)
	}

	// Batched KZG opening at the combination challenge.
	var weights [ProofPolyCount]uint64
	for i := range weights {
		weights[i] = tr.Squeeze(s.Evaluate(uint64(10 + i)))
	}
	zChal := tr.Squeeze(s.Evaluate(22))

	px := core.NewPolynomial(field, nil)
	for i, poly := range proof.Polys {
		px = px.Add(poly.MulScalar(weights[i]))
	}
	proof.YPrime = px.Evaluate(zChal)

	q, err := divideExact(
		px.Sub(core.NewConstant(field, proof.YPrime)),
		core.NewPolynomial(field, []uint64{field.Neg(zChal), 1}),
		"opening witness",
	)
	if err != nil {
		return nil, err
	}
	if proof.CommitQ, err = core.KZGCommit(field, q, srs.Ck); err != nil {
		return nil, fmt.Errorf("committing opening witness: %w", err)
	}

	log.Debug().
		Uint64("sigma1", sigma1).
		Uint64("sigma2", sigma2).
		Uint64("sigma3", sigma3).
		Msg("proof generated")

	return proof, nil
}

func interpolateVector(field *core.Field, xs, ys []uint64) (*core.Polynomial, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("interpolation: %d x-coordinates for %d values", len(xs), len(ys))
	}
	points := make([]core.Point, len(xs))
	for i := range xs {
		points[i] = core.Point{X: xs[i], Y: ys[i]}
	}
	return core.Interpolate(field, points)
}
