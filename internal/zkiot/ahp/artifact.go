package ahp

import (
	"errors"
	"fmt"

	"github.com/fidesinnova/zkiot/internal/zkiot/circuit"
	"github.com/fidesinnova/zkiot/internal/zkiot/core"
	"github.com/fidesinnova/zkiot/internal/zkiot/utils"
)

// ErrMalformedArtifact is returned when a persisted artifact fails
// validation before any arithmetic touches it.
var ErrMalformedArtifact = errors.New("malformed artifact")

// Artifact constants fixed by the device ecosystem.
const (
	CurveName        = "bn128"
	CommitmentScheme = "KZG"
)

// DeviceInfo identifies the attested device in the commitment artifact.
type DeviceInfo struct {
	ManufacturerName string `json:"iot_manufacturer_name"`
	DeviceName       string `json:"iot_device_name"`
	HardwareVersion  string `json:"device_hardware_version"`
	FirmwareVersion  string `json:"firmware_version"`
}

// CommitmentArtifact is the on-disk form of a matrix commitment. Polynomial
// coefficient arrays are stored in descending-degree order, matching the
// device ecosystem's wire format.
type CommitmentArtifact struct {
	CommitmentID uint64     `json:"commitment_id"`
	Class        uint8      `json:"class"`
	Device       DeviceInfo `json:"device"`

	Curve                string `json:"curve"`
	PolynomialCommitment string `json:"polynomial_commitment"`

	M uint64 `json:"m"`
	N uint64 `json:"n"`
	P uint64 `json:"p"`
	G uint64 `json:"g"`

	RowA []uint64 `json:"row_a"`
	ColA []uint64 `json:"col_a"`
	ValA []uint64 `json:"val_a"`
	RowB []uint64 `json:"row_b"`
	ColB []uint64 `json:"col_b"`
	ValB []uint64 `json:"val_b"`
	RowC []uint64 `json:"row_c"`
	ColC []uint64 `json:"col_c"`
	ValC []uint64 `json:"val_c"`
}

func descendingCoefficients(p *core.Polynomial) []uint64 {
	asc := p.Coefficients()
	desc := make([]uint64, len(asc))
	for i, c := range asc {
		desc[len(asc)-1-i] = c
	}
	return desc
}

func polynomialFromDescending(field *core.Field, desc []uint64) *core.Polynomial {
	asc := make([]uint64, len(desc))
	for i, c := range desc {
		asc[len(desc)-1-i] = c
	}
	return core.NewPolynomial(field, asc)
}

// NewCommitmentArtifact serializes a commitment for publication.
func NewCommitmentArtifact(com *Commitment, class uint8, device DeviceInfo) *CommitmentArtifact {
	return &CommitmentArtifact{
		CommitmentID:         com.ID(),
		Class:                class,
		Device:               device,
		Curve:                CurveName,
		PolynomialCommitment: CommitmentScheme,
		M:                    com.Params.M,
		N:                    com.Params.N,
		P:                    com.Params.P,
		G:                    com.Params.G,
		RowA:                 descendingCoefficients(com.A.Row),
		ColA:                 descendingCoefficients(com.A.Col),
		ValA:                 descendingCoefficients(com.A.Val),
		RowB:                 descendingCoefficients(com.B.Row),
		ColB:                 descendingCoefficients(com.B.Col),
		ValB:                 descendingCoefficients(com.B.Val),
		RowC:                 descendingCoefficients(com.C.Row),
		ColC:                 descendingCoefficients(com.C.Col),
		ValC:                 descendingCoefficients(com.C.Val),
	}
}

// Validate rejects an artifact whose shape or ranges are wrong, before any
// field arithmetic consumes it.
func (a *CommitmentArtifact) Validate() error {
	if a.Curve != CurveName {
		return fmt.Errorf("unexpected curve %q: %w", a.Curve, ErrMalformedArtifact)
	}
	if a.PolynomialCommitment != CommitmentScheme {
		return fmt.Errorf("unexpected commitment scheme %q: %w", a.PolynomialCommitment, ErrMalformedArtifact)
	}
	if a.P <= 2 {
		return fmt.Errorf("modulus %d: %w", a.P, ErrMalformedArtifact)
	}
	arrays := map[string][]uint64{
		"row_a": a.RowA, "col_a": a.ColA, "val_a": a.ValA,
		"row_b": a.RowB, "col_b": a.ColB, "val_b": a.ValB,
		"row_c": a.RowC, "col_c": a.ColC, "val_c": a.ValC,
	}
	for name, arr := range arrays {
		if uint64(len(arr)) > a.M {
			return fmt.Errorf("%s has %d coefficients, index domain holds %d: %w", name, len(arr), a.M, ErrMalformedArtifact)
		}
		for i, v := range arr {
			if v >= a.P {
				return fmt.Errorf("%s[%d] = %d outside GF(%d): %w", name, i, v, a.P, ErrMalformedArtifact)
			}
		}
	}
	return nil
}

// ToCommitment reconstructs the in-memory commitment. The class parameters
// come from the class registry and must agree with the artifact's embedded
// sizes; the commitment key recomputes the nine commitment values.
func (a *CommitmentArtifact) ToCommitment(field *core.Field, params utils.ClassParams, ck core.CommitmentKey) (*Commitment, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if a.M != params.M || a.N != params.N || a.P != params.P || a.G != params.G {
		return nil, fmt.Errorf("artifact sizes (m=%d n=%d p=%d g=%d) do not match class: %w", a.M, a.N, a.P, a.G, ErrMalformedArtifact)
	}

	h, err := core.NewDomain(field, int(params.N), params.G)
	if err != nil {
		return nil, err
	}
	k, err := core.NewDomain(field, int(params.M), params.G)
	if err != nil {
		return nil, err
	}

	com := &Commitment{Params: params, H: h, K: k}
	arrays := [9][]uint64{a.RowA, a.ColA, a.ValA, a.RowB, a.ColB, a.ValB, a.RowC, a.ColC, a.ValC}
	for i, enc := range com.Encodings() {
		enc.Row = polynomialFromDescending(field, arrays[3*i])
		enc.Col = polynomialFromDescending(field, arrays[3*i+1])
		enc.Val = polynomialFromDescending(field, arrays[3*i+2])

		// Rebuild the point maps so the commitment can also drive a prover.
		enc.RowPoints = make([]core.Point, k.Size())
		enc.ColPoints = make([]core.Point, k.Size())
		enc.ValPoints = make([]core.Point, k.Size())
		for j := 0; j < k.Size(); j++ {
			x := k.Element(j)
			enc.RowPoints[j] = core.Point{X: x, Y: enc.Row.Evaluate(x)}
			enc.ColPoints[j] = core.Point{X: x, Y: enc.Col.Evaluate(x)}
			enc.ValPoints[j] = core.Point{X: x, Y: enc.Val.Evaluate(x)}
		}

		if enc.RowCommit, err = core.KZGCommit(field, enc.Row, ck); err != nil {
			return nil, err
		}
		if enc.ColCommit, err = core.KZGCommit(field, enc.Col, ck); err != nil {
			return nil, err
		}
		if enc.ValCommit, err = core.KZGCommit(field, enc.Val, ck); err != nil {
			return nil, err
		}
	}

	if a.CommitmentID != 0 && a.CommitmentID != com.ID() {
		return nil, fmt.Errorf("commitment id %d does not match recomputed %d: %w", a.CommitmentID, com.ID(), ErrMalformedArtifact)
	}
	return com, nil
}

// ProofArtifact is the on-disk form of an execution proof.
type ProofArtifact struct {
	CommitmentID uint64 `json:"commitment_id"`
	Class        uint8  `json:"class"`

	Commits []uint64   `json:"commits"`
	Polys   [][]uint64 `json:"polys"` // descending-degree coefficients
	Sigmas  []uint64   `json:"sigmas"`
	YPrime  uint64     `json:"y_prime"`
	CommitQ uint64     `json:"commit_q"`
	XVec    []uint64   `json:"x_vec"`
}

// NewProofArtifact serializes a proof, tagged with the commitment it was
// produced against.
func NewProofArtifact(proof *Proof, commitmentID uint64, class uint8) *ProofArtifact {
	art := &ProofArtifact{
		CommitmentID: commitmentID,
		Class:        class,
		Commits:      append([]uint64(nil), proof.Commits[:]...),
		Sigmas:       append([]uint64(nil), proof.Sigmas[:]...),
		YPrime:       proof.YPrime,
		CommitQ:      proof.CommitQ,
		XVec:         append([]uint64(nil), proof.XVec...),
	}
	art.Polys = make([][]uint64, ProofPolyCount)
	for i, poly := range proof.Polys {
		art.Polys[i] = descendingCoefficients(poly)
	}
	return art
}

// Validate checks the artifact's shape against the class parameters.
func (a *ProofArtifact) Validate(params utils.ClassParams) error {
	if len(a.Commits) != ProofPolyCount {
		return fmt.Errorf("%d commitments, want %d: %w", len(a.Commits), ProofPolyCount, ErrMalformedArtifact)
	}
	if len(a.Polys) != ProofPolyCount {
		return fmt.Errorf("%d polynomials, want %d: %w", len(a.Polys), ProofPolyCount, ErrMalformedArtifact)
	}
	if len(a.Sigmas) != SigmaCount {
		return fmt.Errorf("%d sumcheck sums, want %d: %w", len(a.Sigmas), SigmaCount, ErrMalformedArtifact)
	}
	if len(a.XVec) != params.InputLen() {
		return fmt.Errorf("public input length %d, class expects %d: %w", len(a.XVec), params.InputLen(), ErrMalformedArtifact)
	}
	bound := KeyLength(params)
	for i, coeffs := range a.Polys {
		if len(coeffs) > bound {
			return fmt.Errorf("polynomial %d has %d coefficients, key covers %d: %w", i, len(coeffs), bound, ErrMalformedArtifact)
		}
		for j, v := range coeffs {
			if v >= params.P {
				return fmt.Errorf("polynomial %d coefficient %d outside GF(%d): %w", i, j, params.P, ErrMalformedArtifact)
			}
		}
	}
	for i, v := range a.XVec {
		if v >= params.P {
			return fmt.Errorf("x_vec[%d] outside GF(%d): %w", i, params.P, ErrMalformedArtifact)
		}
	}
	for _, group := range [][]uint64{a.Commits, a.Sigmas, {a.YPrime, a.CommitQ}} {
		for _, v := range group {
			if v >= params.P {
				return fmt.Errorf("value %d outside GF(%d): %w", v, params.P, ErrMalformedArtifact)
			}
		}
	}
	return nil
}

// ToProof reconstructs the in-memory proof.
func (a *ProofArtifact) ToProof(field *core.Field, params utils.ClassParams) (*Proof, error) {
	if err := a.Validate(params); err != nil {
		return nil, err
	}
	proof := &Proof{
		YPrime:  a.YPrime,
		CommitQ: a.CommitQ,
		XVec:    append([]uint64(nil), a.XVec...),
	}
	copy(proof.Commits[:], a.Commits)
	copy(proof.Sigmas[:], a.Sigmas)
	for i, coeffs := range a.Polys {
		proof.Polys[i] = polynomialFromDescending(field, coeffs)
	}
	return proof, nil
}

// SetupArtifact is the on-disk form of the SRS.
type SetupArtifact struct {
	Class uint8    `json:"class"`
	Ck    []uint64 `json:"ck"`
	Vk    uint64   `json:"vk"`
	G     uint64   `json:"g"`
}

// NewSetupArtifact serializes an SRS.
func NewSetupArtifact(srs *SRS, class uint8) *SetupArtifact {
	return &SetupArtifact{
		Class: class,
		Ck:    append([]uint64(nil), srs.Ck...),
		Vk:    srs.Vk,
		G:     srs.G,
	}
}

// ToSRS reconstructs the SRS, checking it against the class parameters.
func (a *SetupArtifact) ToSRS(params utils.ClassParams) (*SRS, error) {
	if len(a.Ck) < KeyLength(params) {
		return nil, fmt.Errorf("commitment key has %d elements, class needs %d: %w", len(a.Ck), KeyLength(params), ErrMalformedArtifact)
	}
	for i, v := range a.Ck {
		if v >= params.P {
			return nil, fmt.Errorf("ck[%d] outside GF(%d): %w", i, params.P, ErrMalformedArtifact)
		}
	}
	if a.G != params.G {
		return nil, fmt.Errorf("generator %d does not match class generator %d: %w", a.G, params.G, ErrMalformedArtifact)
	}
	if len(a.Ck) >= 2 && a.Vk != a.Ck[1] {
		return nil, fmt.Errorf("vk does not match ck[1]: %w", ErrMalformedArtifact)
	}
	return &SRS{Ck: core.CommitmentKey(append([]uint64(nil), a.Ck...)), Vk: a.Vk, G: a.G}, nil
}

// ProgramParamsArtifact is the sparse program description the prover uses to
// rebuild the constraint matrices without re-parsing the firmware: A as
// per-gate-row column indices, B in coordinate form. C is regenerated from
// the class alone.
type ProgramParamsArtifact struct {
	A []uint64       `json:"A"`
	B []circuit.Cell `json:"B"`
}

// NewProgramParamsArtifact extracts the sparse encodings from compiled
// matrices.
func NewProgramParamsArtifact(matrices *circuit.Matrices) (*ProgramParamsArtifact, error) {
	aCols, err := matrices.A.ColumnIndices()
	if err != nil {
		return nil, fmt.Errorf("encoding matrix A: %w", err)
	}
	return &ProgramParamsArtifact{A: aCols, B: matrices.B.Cells()}, nil
}

// ToMatrices rebuilds the constraint matrices.
func (a *ProgramParamsArtifact) ToMatrices(field *core.Field, params utils.ClassParams) (*circuit.Matrices, error) {
	return circuit.RebuildMatrices(field, params, a.A, a.B)
}
