package circuit

import (
	"errors"
	"testing"
)

func TestBuildWitness(t *testing.T) {
	field, params := testSetup(t)

	z, err := BuildWitness(field, params, testProgram())
	if err != nil {
		t.Fatalf("BuildWitness: %v", err)
	}
	if len(z) != params.MatrixSize() {
		t.Fatalf("witness length = %d, want %d", len(z), params.MatrixSize())
	}

	if z[0] != 1 {
		t.Errorf("z[0] = %d, want the constant 1", z[0])
	}
	if z[2] != 4 {
		t.Errorf("z[2] = %d, want the loaded value 4", z[2])
	}

	// Gate outputs: 0+5, 4*2, 8+10, 5*7.
	wantOutputs := []uint64{5, 8, 18, 35}
	for i, want := range wantOutputs {
		if got := z[33+i]; got != want {
			t.Errorf("z[%d] = %d, want %d", 33+i, got, want)
		}
	}
}

func TestWitnessSatisfiesConstraints(t *testing.T) {
	field, params := testSetup(t)

	matrices, err := CompileMatrices(field, params, testProgram())
	if err != nil {
		t.Fatalf("CompileMatrices: %v", err)
	}
	z, err := BuildWitness(field, params, testProgram())
	if err != nil {
		t.Fatalf("BuildWitness: %v", err)
	}

	if err := CheckConstraints(field, matrices, z); err != nil {
		t.Fatalf("CheckConstraints: %v", err)
	}

	// Corrupting any single gate output must break its row.
	z[34] = field.Add(z[34], 1)
	if err := CheckConstraints(field, matrices, z); !errors.Is(err, ErrUnsatisfiedConstraints) {
		t.Errorf("err = %v, want ErrUnsatisfiedConstraints", err)
	}
}

func TestBuildWitnessRejectsLateLoad(t *testing.T) {
	field, params := testSetup(t)

	gates := []Gate{
		{Instr: InstrAddi, Dest: 5, Left: 0, ValRight: Lit(5)},
		{Instr: InstrLoad, Dest: 5, ValRight: Lit(9)},
	}
	if _, err := BuildWitness(field, params, gates); !errors.Is(err, ErrUnsupportedGate) {
		t.Errorf("err = %v, want ErrUnsupportedGate", err)
	}
}

func TestBuildWitnessRejectsDiv(t *testing.T) {
	field, params := testSetup(t)

	gates := []Gate{{Instr: InstrDiv, Dest: 5, Left: 1, Right: 2}}
	if _, err := BuildWitness(field, params, gates); !errors.Is(err, ErrUnsupportedGate) {
		t.Errorf("err = %v, want ErrUnsupportedGate", err)
	}
}
