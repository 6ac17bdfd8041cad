package ahp

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/fidesinnova/zkiot/internal/zkiot/circuit"
	"github.com/fidesinnova/zkiot/internal/zkiot/core"
	"github.com/fidesinnova/zkiot/internal/zkiot/logger"
	"github.com/fidesinnova/zkiot/internal/zkiot/utils"
)

// MatrixEncoding is the holographic encoding of one constraint matrix: three
// point maps over the index domain K (row, column, and normalized value of
// each non-zero entry), their interpolations, and the KZG commitments of the
// interpolations.
type MatrixEncoding struct {
	RowPoints []core.Point
	ColPoints []core.Point
	ValPoints []core.Point

	Row *core.Polynomial
	Col *core.Polynomial
	Val *core.Polynomial

	RowCommit uint64
	ColCommit uint64
	ValCommit uint64
}

// Commitment is the one-time, program-specific output of the commitment
// phase. It is produced once per firmware image and published; every proof
// for that firmware verifies against it.
type Commitment struct {
	Params utils.ClassParams
	H      *core.Domain
	K      *core.Domain
	A      MatrixEncoding
	B      MatrixEncoding
	C      MatrixEncoding
}

// Encodings returns the three matrix encodings in A, B, C order.
func (c *Commitment) Encodings() [3]*MatrixEncoding {
	return [3]*MatrixEncoding{&c.A, &c.B, &c.C}
}

// Commits returns the nine commitment values in row/col/val per-matrix order.
func (c *Commitment) Commits() [9]uint64 {
	return [9]uint64{
		c.A.RowCommit, c.A.ColCommit, c.A.ValCommit,
		c.B.RowCommit, c.B.ColCommit, c.B.ValCommit,
		c.C.RowCommit, c.C.ColCommit, c.C.ValCommit,
	}
}

// ID derives the 64-bit identifier tying proofs to this commitment: a hash
// over the class parameters and the nine commitment values.
func (c *Commitment) ID() uint64 {
	h := sha256.New()
	buf := make([]byte, 8)
	for _, v := range []uint64{c.Params.NG, c.Params.NI, c.Params.N, c.Params.M, c.Params.P, c.Params.G} {
		binary.BigEndian.PutUint64(buf, v)
		h.Write(buf)
	}
	for _, v := range c.Commits() {
		binary.BigEndian.PutUint64(buf, v)
		h.Write(buf)
	}
	return binary.BigEndian.Uint64(h.Sum(nil)[:8])
}

// EncodeCommitment runs the commitment phase over compiled constraint
// matrices. Non-zero cells are scanned row-major and assigned to successive
// elements of K; the row and column maps are padded cyclically through H,
// and each value is normalized by u(row)*u(col) with u(x) = n*x^(n-1) so
// that the bivariate matrix encoding interpolates the matrix exactly on HxH.
func EncodeCommitment(field *core.Field, params utils.ClassParams, matrices *circuit.Matrices, ck core.CommitmentKey) (*Commitment, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if matrices.Size() != params.MatrixSize() {
		return nil, fmt.Errorf("matrix size %d does not match class size %d: %w", matrices.Size(), params.MatrixSize(), utils.ErrInvalidParams)
	}

	h, err := core.NewDomain(field, int(params.N), params.G)
	if err != nil {
		return nil, fmt.Errorf("building domain H: %w", err)
	}
	k, err := core.NewDomain(field, int(params.M), params.G)
	if err != nil {
		return nil, fmt.Errorf("building domain K: %w", err)
	}

	com := &Commitment{Params: params, H: h, K: k}
	for i, matrix := range []*circuit.Matrix{matrices.A, matrices.B, matrices.C} {
		enc, err := encodeMatrix(field, h, k, matrix)
		if err != nil {
			return nil, fmt.Errorf("encoding matrix %c: %w", 'A'+i, err)
		}
		*com.Encodings()[i] = *enc
	}

	// The nine interpolations are independent.
	var g errgroup.Group
	for _, enc := range com.Encodings() {
		g.Go(interpolateInto(field, enc.RowPoints, &enc.Row))
		g.Go(interpolateInto(field, enc.ColPoints, &enc.Col))
		g.Go(interpolateInto(field, enc.ValPoints, &enc.Val))
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("interpolating matrix encodings: %w", err)
	}

	for _, enc := range com.Encodings() {
		if enc.RowCommit, err = core.KZGCommit(field, enc.Row, ck); err != nil {
			return nil, fmt.Errorf("committing row encoding: %w", err)
		}
		if enc.ColCommit, err = core.KZGCommit(field, enc.Col, ck); err != nil {
			return nil, fmt.Errorf("committing column encoding: %w", err)
		}
		if enc.ValCommit, err = core.KZGCommit(field, enc.Val, ck); err != nil {
			return nil, fmt.Errorf("committing value encoding: %w", err)
		}
	}

	logger.Logger().Debug().
		Uint64("commitment_id", com.ID()).
		Int("h_size", h.Size()).
		Int("k_size", k.Size()).
		Msg("matrix commitment generated")

	return com, nil
}

func interpolateInto(field *core.Field, points []core.Point, dst **core.Polynomial) func() error {
	return func() error {
		poly, err := core.Interpolate(field, points)
		if err != nil {
			return err
		}
		*dst = poly
		return nil
	}
}

func encodeMatrix(field *core.Field, h, k *core.Domain, matrix *circuit.Matrix) (*MatrixEncoding, error) {
	cells := matrix.Cells()
	m := k.Size()
	n := h.Size()
	if len(cells) > m {
		return nil, fmt.Errorf("matrix has %d non-zero cells, index domain holds %d: %w", len(cells), m, utils.ErrInvalidParams)
	}

	enc := &MatrixEncoding{
		RowPoints: make([]core.Point, m),
		ColPoints: make([]core.Point, m),
		ValPoints: make([]core.Point, m),
	}
	for i := 0; i < m; i++ {
		x := k.Element(i)
		if i < len(cells) {
			rowElem := h.Element(cells[i].Row)
			colElem := h.Element(cells[i].Col)
			norm := field.Mul(
				core.FuncUEval(field, rowElem, rowElem, n),
				core.FuncUEval(field, colElem, colElem, n),
			)
			val, err := field.Div(cells[i].Val, norm)
			if err != nil {
				return nil, fmt.Errorf("normalizing cell %d: %w", i, err)
			}
			enc.RowPoints[i] = core.Point{X: x, Y: rowElem}
			enc.ColPoints[i] = core.Point{X: x, Y: colElem}
			enc.ValPoints[i] = core.Point{X: x, Y: val}
			continue
		}
		// Unused index slots keep the row and column maps inside H and
		// carry a zero value, so they contribute nothing to the encoding.
		enc.RowPoints[i] = core.Point{X: x, Y: h.Element(i % n)}
		enc.ColPoints[i] = core.Point{X: x, Y: h.Element(i % n)}
		enc.ValPoints[i] = core.Point{X: x, Y: 0}
	}
	return enc, nil
}
