package ahp

import (
	"errors"
	"fmt"

	"github.com/fidesinnova/zkiot/internal/zkiot/core"
)

// ErrInexactDivision is returned when a polynomial that must vanish on an
// evaluation domain leaves a non-zero remainder. It signals an internal
// inconsistency between witness and matrices rather than bad input.
var ErrInexactDivision = errors.New("inexact polynomial division")

// matrixOracle exposes one matrix encoding as indexed row/col/val lookups
// over K. The prover reads the stored point maps; the verifier, which only
// holds the interpolations, evaluates them at the K elements.
type matrixOracle struct {
	row func(i int) uint64
	col func(i int) uint64
	val func(i int) uint64
	m   int
}

func pointOracle(enc *MatrixEncoding) matrixOracle {
	return matrixOracle{
		row: func(i int) uint64 { return enc.RowPoints[i].Y },
		col: func(i int) uint64 { return enc.ColPoints[i].Y },
		val: func(i int) uint64 { return enc.ValPoints[i].Y },
		m:   len(enc.RowPoints),
	}
}

func polyOracle(k *core.Domain, enc *MatrixEncoding) matrixOracle {
	return matrixOracle{
		row: func(i int) uint64 { return enc.Row.Evaluate(k.Element(i)) },
		col: func(i int) uint64 { return enc.Col.Evaluate(k.Element(i)) },
		val: func(i int) uint64 { return enc.Val.Evaluate(k.Element(i)) },
		m:   k.Size(),
	}
}

// rowContraction computes r_M(alpha, x) = sum_h u(alpha, h) M(h, x) as a
// polynomial in x. On H the bivariate kernel u collapses to the diagonal, so
// the sum reduces to one term per non-zero entry:
// sum_k val(k) * u(alpha, row(k)) * u(row(k), row(k)) * u(x, col(k)).
func rowContraction(field *core.Field, h *core.Domain, oracle matrixOracle, alpha uint64) *core.Polynomial {
	n := h.Size()
	result := core.NewPolynomial(field, nil)
	for i := 0; i < oracle.m; i++ {
		val := oracle.val(i)
		if val == 0 {
			continue
		}
		row := oracle.row(i)
		weight := field.Mul(val, field.Mul(
			core.FuncUEval(field, alpha, row, n),
			core.FuncUEval(field, row, row, n),
		))
		result = result.Add(core.FuncUPoly(field, oracle.col(i), n).MulScalar(weight))
	}
	return result
}

// colEvaluation computes M(x, beta1) as a polynomial in the row variable x:
// sum_k val(k) * u(x, row(k)) * u(beta1, col(k)).
func colEvaluation(field *core.Field, h *core.Domain, oracle matrixOracle, beta1 uint64) *core.Polynomial {
	n := h.Size()
	result := core.NewPolynomial(field, nil)
	for i := 0; i < oracle.m; i++ {
		val := oracle.val(i)
		if val == 0 {
			continue
		}
		weight := field.Mul(val, core.FuncUEval(field, beta1, oracle.col(i), n))
		result = result.Add(core.FuncUPoly(field, oracle.row(i), n).MulScalar(weight))
	}
	return result
}

// thirdSumcheckValues evaluates, for every index k in K, the rational
// summand of the third sumcheck:
// sum_M eta_M * vH(beta2) * vH(beta1) * val_M(k) / ((beta2-row_M(k)) * (beta1-col_M(k))).
// Both betas are sampled outside H, so the denominators are non-zero.
func thirdSumcheckValues(field *core.Field, h *core.Domain, oracles [3]matrixOracle, etas [3]uint64, beta1, beta2 uint64) ([]uint64, error) {
	vh := field.Mul(h.EvalVanishing(beta2), h.EvalVanishing(beta1))
	m := oracles[0].m
	values := make([]uint64, m)
	for i := 0; i < m; i++ {
		acc := uint64(0)
		for j, oracle := range oracles {
			den := field.Mul(
				field.Sub(beta2, oracle.row(i)),
				field.Sub(beta1, oracle.col(i)),
			)
			term, err := field.Div(field.Mul(vh, oracle.val(i)), den)
			if err != nil {
				return nil, fmt.Errorf("third sumcheck index %d: challenge hit the row/col support: %w", i, err)
			}
			acc = field.Add(acc, field.Mul(etas[j], term))
		}
		values[i] = acc
	}
	return values, nil
}

// rationalizedPair builds the polynomials a(x) and b(x) that clear the
// denominators of the third sumcheck over K:
// b = prod_M pi_M with pi_M = (beta2 - row_M)(beta1 - col_M), and
// a = sum_M eta_M * vH(beta2) * vH(beta1) * val_M * prod_{N != M} pi_N.
func rationalizedPair(field *core.Field, h *core.Domain, encs [3]*MatrixEncoding, etas [3]uint64, beta1, beta2 uint64) (a, b *core.Polynomial) {
	vh := field.Mul(h.EvalVanishing(beta2), h.EvalVanishing(beta1))

	var pi [3]*core.Polynomial
	for i, enc := range encs {
		rowSide := core.NewConstant(field, beta2).Sub(enc.Row)
		colSide := core.NewConstant(field, beta1).Sub(enc.Col)
		pi[i] = rowSide.Mul(colSide)
	}

	b = pi[0].Mul(pi[1]).Mul(pi[2])
	a = core.NewPolynomial(field, nil)
	for i, enc := range encs {
		term := enc.Val.MulScalar(field.Mul(etas[i], vh))
		for j := range pi {
			if j != i {
				term = term.Mul(pi[j])
			}
		}
		a = a.Add(term)
	}
	return a, b
}

// sumOverDomain evaluates the polynomial on every domain element and sums.
func sumOverDomain(field *core.Field, poly *core.Polynomial, d *core.Domain) uint64 {
	sum := uint64(0)
	for i := 0; i < d.Size(); i++ {
		sum = field.Add(sum, poly.Evaluate(d.Element(i)))
	}
	return sum
}

// stripConstantAndDivideByX asserts that the polynomial's constant term is
// the claimed average and returns (p - c) / x, which must divide exactly.
func stripConstantAndDivideByX(field *core.Field, poly *core.Polynomial, c uint64) (*core.Polynomial, error) {
	shifted := poly.Sub(core.NewConstant(field, c))
	q, r, err := shifted.Div(core.NewMonomial(field, 1, 1))
	if err != nil {
		return nil, err
	}
	if !r.IsZero() {
		return nil, fmt.Errorf("claimed sum does not match the constant coefficient: %w", ErrInexactDivision)
	}
	return q, nil
}

// divideExact divides and rejects any remainder.
func divideExact(num, den *core.Polynomial, what string) (*core.Polynomial, error) {
	q, r, err := num.Div(den)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	if !r.IsZero() {
		return nil, fmt.Errorf("%s: %w", what, ErrInexactDivision)
	}
	return q, nil
}
