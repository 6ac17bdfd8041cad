package zkiot

import (
	"github.com/fidesinnova/zkiot/internal/zkiot/ahp"
	"github.com/fidesinnova/zkiot/internal/zkiot/circuit"
	"github.com/fidesinnova/zkiot/internal/zkiot/utils"
)

// ClassParams fixes the circuit geometry and field for a device class
type ClassParams = utils.ClassParams

// Gate is one already-parsed program instruction
type Gate = circuit.Gate

// Instr identifies a gate operation
type Instr = circuit.Instr

// Gate instruction kinds
const (
	InstrAdd  = circuit.InstrAdd
	InstrAddi = circuit.InstrAddi
	InstrMul  = circuit.InstrMul
	InstrDiv  = circuit.InstrDiv
	InstrLoad = circuit.InstrLoad
)

// Lit builds a literal gate operand
var Lit = circuit.Lit

// ParseRegister resolves a RISC-V register name to its index
var ParseRegister = circuit.ParseRegister

// DeviceInfo identifies the attested device
type DeviceInfo = ahp.DeviceInfo

// SetupArtifact is the serialized SRS of a device class
type SetupArtifact = ahp.SetupArtifact

// CommitmentArtifact is the serialized matrix commitment of a firmware image
type CommitmentArtifact = ahp.CommitmentArtifact

// ProgramParamsArtifact is the sparse program description used by provers
type ProgramParamsArtifact = ahp.ProgramParamsArtifact

// ProofArtifact is a serialized execution proof
type ProofArtifact = ahp.ProofArtifact

// ProverOption adjusts proof generation
type ProverOption = ahp.ProverOption

// VerifierOption adjusts proof verification
type VerifierOption = ahp.VerifierOption

// Prover and verifier options
var (
	WithMask           = ahp.WithMask
	WithTranscriptHash = ahp.WithTranscriptHash
	WithVerifierHash   = ahp.WithVerifierHash
)

// DefaultClass returns the reference device class
var DefaultClass = utils.DefaultClass

// ParseClasses decodes a class registry keyed by class number
var ParseClasses = utils.ParseClasses
