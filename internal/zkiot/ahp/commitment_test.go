package ahp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fidesinnova/zkiot/internal/zkiot/circuit"
	"github.com/fidesinnova/zkiot/internal/zkiot/core"
	"github.com/fidesinnova/zkiot/internal/zkiot/utils"
)

// The reference program from the circuit package tests:
//
//	load ra, 4
//	addi t0, zero, 5
//	mul  t1, ra, 2
//	addi t2, t1, 10
//	mul  t3, t0, 7
func referenceProgram() []circuit.Gate {
	return []circuit.Gate{
		{Instr: circuit.InstrLoad, Dest: 1, ValRight: circuit.Lit(4)},
		{Instr: circuit.InstrAddi, Dest: 5, Left: 0, ValRight: circuit.Lit(5)},
		{Instr: circuit.InstrMul, Dest: 6, Left: 1, ValRight: circuit.Lit(2)},
		{Instr: circuit.InstrAddi, Dest: 7, Left: 6, ValRight: circuit.Lit(10)},
		{Instr: circuit.InstrMul, Dest: 28, Left: 5, ValRight: circuit.Lit(7)},
	}
}

func setupCommitment(t *testing.T) (*core.Field, utils.ClassParams, *circuit.Matrices, *SRS, *Commitment) {
	t.Helper()
	params := utils.DefaultClass()
	field, err := core.NewField(params.P)
	require.NoError(t, err)

	matrices, err := circuit.CompileMatrices(field, params, referenceProgram())
	require.NoError(t, err)

	srs, err := SetupWithTrapdoor(field, params, 987654)
	require.NoError(t, err)

	com, err := EncodeCommitment(field, params, matrices, srs.Ck)
	require.NoError(t, err)

	return field, params, matrices, srs, com
}

func TestEncodeCommitmentMaps(t *testing.T) {
	field, _, matrices, _, com := setupCommitment(t)

	h, k := com.H, com.K
	n := h.Size()

	for name, pair := range map[string]struct {
		matrix *circuit.Matrix
		enc    *MatrixEncoding
	}{
		"A": {matrices.A, &com.A},
		"B": {matrices.B, &com.B},
		"C": {matrices.C, &com.C},
	} {
		cells := pair.matrix.Cells()
		require.LessOrEqual(t, len(cells), k.Size(), name)

		for i := 0; i < k.Size(); i++ {
			x := k.Element(i)
			gotRow := pair.enc.Row.Evaluate(x)
			gotCol := pair.enc.Col.Evaluate(x)
			gotVal := pair.enc.Val.Evaluate(x)

			if i < len(cells) {
				wantRow := h.Element(cells[i].Row)
				wantCol := h.Element(cells[i].Col)
				norm := field.Mul(
					core.FuncUEval(field, wantRow, wantRow, n),
					core.FuncUEval(field, wantCol, wantCol, n),
				)
				wantVal, err := field.Div(cells[i].Val, norm)
				require.NoError(t, err)

				require.Equal(t, wantRow, gotRow, "%s row map at index %d", name, i)
				require.Equal(t, wantCol, gotCol, "%s col map at index %d", name, i)
				require.Equal(t, wantVal, gotVal, "%s val map at index %d", name, i)
			} else {
				require.True(t, h.Contains(gotRow), "%s padded row at index %d stays in H", name, i)
				require.True(t, h.Contains(gotCol), "%s padded col at index %d stays in H", name, i)
				require.Zero(t, gotVal, "%s padded val at index %d", name, i)
			}
		}
	}
}

// The bivariate encoding must interpolate the matrix on H x H: summing
// val(k)*u(r,row(k))*u(c,col(k)) over K recovers the matrix entry at (r, c).
func TestEncodingInterpolatesMatrix(t *testing.T) {
	field, _, matrices, _, com := setupCommitment(t)

	h, k := com.H, com.K
	n := h.Size()

	bivariate := func(enc *MatrixEncoding, r, c uint64) uint64 {
		acc := uint64(0)
		for i := 0; i < k.Size(); i++ {
			term := field.Mul(enc.ValPoints[i].Y, field.Mul(
				core.FuncUEval(field, r, enc.RowPoints[i].Y, n),
				core.FuncUEval(field, c, enc.ColPoints[i].Y, n),
			))
			acc = field.Add(acc, term)
		}
		return acc
	}

	// Every non-zero cell of B, plus a sample of zero cells.
	for _, cell := range matrices.B.Cells() {
		got := bivariate(&com.B, h.Element(cell.Row), h.Element(cell.Col))
		require.Equal(t, cell.Val, got, "B[%d,%d]", cell.Row, cell.Col)
	}
	for _, probe := range [][2]int{{0, 0}, {5, 7}, {33, 2}} {
		want := matrices.B.At(probe[0], probe[1])
		got := bivariate(&com.B, h.Element(probe[0]), h.Element(probe[1]))
		require.Equal(t, want, got, "B[%d,%d]", probe[0], probe[1])
	}
}

func TestCommitmentID(t *testing.T) {
	_, _, _, _, com := setupCommitment(t)

	require.NotZero(t, com.ID())
	require.Equal(t, com.ID(), com.ID(), "id must be deterministic")

	// A different trapdoor changes the commitments and therefore the id.
	params := com.Params
	field, err := core.NewField(params.P)
	require.NoError(t, err)
	matrices, err := circuit.CompileMatrices(field, params, referenceProgram())
	require.NoError(t, err)
	srs2, err := SetupWithTrapdoor(field, params, 13579)
	require.NoError(t, err)
	com2, err := EncodeCommitment(field, params, matrices, srs2.Ck)
	require.NoError(t, err)
	require.NotEqual(t, com.ID(), com2.ID())
}

func TestEncodeCommitmentRejectsOversizedMatrix(t *testing.T) {
	params := utils.DefaultClass()
	field, err := core.NewField(params.P)
	require.NoError(t, err)
	srs, err := SetupWithTrapdoor(field, params, 42)
	require.NoError(t, err)

	// Build matrices by hand with more non-zero cells than K can index.
	matrices := &circuit.Matrices{
		A: circuit.NewMatrix(field, params.MatrixSize()),
		B: circuit.NewMatrix(field, params.MatrixSize()),
		C: circuit.NewMatrix(field, params.MatrixSize()),
	}
	for j := 0; j < int(params.M)+1; j++ {
		matrices.A.Set(33, j, 1)
	}
	_, err = EncodeCommitment(field, params, matrices, srs.Ck)
	require.ErrorIs(t, err, utils.ErrInvalidParams)
}
