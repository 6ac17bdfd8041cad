package circuit

import (
	"errors"
	"testing"

	"github.com/fidesinnova/zkiot/internal/zkiot/core"
	"github.com/fidesinnova/zkiot/internal/zkiot/utils"
)

func testSetup(t *testing.T) (*core.Field, utils.ClassParams) {
	t.Helper()
	params := utils.DefaultClass()
	field, err := core.NewField(params.P)
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	return field, params
}

// testProgram is the reference four-gate program used throughout the tests:
//
//	load ra, 4
//	addi t0, zero, 5
//	mul  t1, ra, 2
//	addi t2, t1, 10
//	mul  t3, t0, 7
func testProgram() []Gate {
	return []Gate{
		{Instr: InstrLoad, Dest: 1, ValRight: Lit(4)},
		{Instr: InstrAddi, Dest: 5, Left: 0, ValRight: Lit(5)},
		{Instr: InstrMul, Dest: 6, Left: 1, ValRight: Lit(2)},
		{Instr: InstrAddi, Dest: 7, Left: 6, ValRight: Lit(10)},
		{Instr: InstrMul, Dest: 28, Left: 5, ValRight: Lit(7)},
	}
}

func TestCompileMatrices(t *testing.T) {
	field, params := testSetup(t)

	matrices, err := CompileMatrices(field, params, testProgram())
	if err != nil {
		t.Fatalf("CompileMatrices: %v", err)
	}

	if matrices.Size() != 37 {
		t.Fatalf("size = %d, want 37", matrices.Size())
	}

	// Gate rows start after the public input prefix of length 33.
	wantA := []Cell{
		{Row: 33, Col: 0, Val: 1},
		{Row: 34, Col: 2, Val: 1},
		{Row: 35, Col: 0, Val: 1},
		{Row: 36, Col: 33, Val: 1},
	}
	wantB := []Cell{
		{Row: 33, Col: 0, Val: 5},
		{Row: 33, Col: 1, Val: 1},
		{Row: 34, Col: 0, Val: 2},
		{Row: 35, Col: 0, Val: 10},
		{Row: 35, Col: 34, Val: 1},
		{Row: 36, Col: 0, Val: 7},
	}

	assertCells(t, "A", matrices.A, wantA)
	assertCells(t, "B", matrices.B, wantB)

	for row := 33; row <= 36; row++ {
		if matrices.C.At(row, row) != 1 {
			t.Errorf("C[%d,%d] = %d, want 1", row, row, matrices.C.At(row, row))
		}
	}
	if matrices.C.NonzeroCount() != 4 {
		t.Errorf("C has %d entries, want 4", matrices.C.NonzeroCount())
	}
	if matrices.MaxNonzero() != 6 {
		t.Errorf("MaxNonzero = %d, want 6", matrices.MaxNonzero())
	}
}

func assertCells(t *testing.T, name string, m *Matrix, want []Cell) {
	t.Helper()
	got := m.Cells()
	if len(got) != len(want) {
		t.Fatalf("%s has %d non-zero cells, want %d: %v", name, len(got), len(want), got)
	}
	for i, cell := range want {
		if got[i] != cell {
			t.Errorf("%s cell %d = %+v, want %+v", name, i, got[i], cell)
		}
	}
}

func TestCompileMatricesRejectsDiv(t *testing.T) {
	field, params := testSetup(t)

	gates := []Gate{{Instr: InstrDiv, Dest: 5, Left: 1, Right: 2}}
	if _, err := CompileMatrices(field, params, gates); !errors.Is(err, ErrUnsupportedGate) {
		t.Errorf("err = %v, want ErrUnsupportedGate", err)
	}
}

func TestCompileMatricesGateBudget(t *testing.T) {
	field, params := testSetup(t)

	gates := make([]Gate, params.NG+1)
	for i := range gates {
		gates[i] = Gate{Instr: InstrAddi, Dest: 5, Left: 0, ValRight: Lit(1)}
	}
	if _, err := CompileMatrices(field, params, gates); !errors.Is(err, ErrTooManyGates) {
		t.Errorf("err = %v, want ErrTooManyGates", err)
	}
}

func TestSparseRoundTrip(t *testing.T) {
	field, params := testSetup(t)

	matrices, err := CompileMatrices(field, params, testProgram())
	if err != nil {
		t.Fatalf("CompileMatrices: %v", err)
	}

	aCols, err := matrices.A.ColumnIndices()
	if err != nil {
		t.Fatalf("ColumnIndices: %v", err)
	}
	if want := []uint64{0, 2, 0, 33}; len(aCols) != len(want) {
		t.Fatalf("aCols = %v, want %v", aCols, want)
	} else {
		for i := range want {
			if aCols[i] != want[i] {
				t.Fatalf("aCols = %v, want %v", aCols, want)
			}
		}
	}

	rebuilt, err := RebuildMatrices(field, params, aCols, matrices.B.Cells())
	if err != nil {
		t.Fatalf("RebuildMatrices: %v", err)
	}

	for i := 0; i < matrices.Size(); i++ {
		for j := 0; j < matrices.Size(); j++ {
			if rebuilt.A.At(i, j) != matrices.A.At(i, j) {
				t.Fatalf("rebuilt A differs at (%d,%d)", i, j)
			}
			if rebuilt.B.At(i, j) != matrices.B.At(i, j) {
				t.Fatalf("rebuilt B differs at (%d,%d)", i, j)
			}
			if rebuilt.C.At(i, j) != matrices.C.At(i, j) {
				t.Fatalf("rebuilt C differs at (%d,%d)", i, j)
			}
		}
	}
}

func TestColumnIndicesRejectsNonBinary(t *testing.T) {
	field, _ := testSetup(t)

	m := NewMatrix(field, 4)
	m.Set(1, 2, 3)
	if _, err := m.ColumnIndices(); err == nil {
		t.Error("expected error for non-binary matrix")
	}
}
