package zkiot

import (
	"github.com/fidesinnova/zkiot/internal/zkiot/ahp"
	"github.com/fidesinnova/zkiot/internal/zkiot/circuit"
	"github.com/fidesinnova/zkiot/internal/zkiot/core"
)

// Setup runs the trusted setup for a device class and returns the
// serialized SRS. The trapdoor is drawn from crypto/rand and discarded.
func Setup(class uint8, params ClassParams) (*SetupArtifact, error) {
	field, err := newField(params)
	if err != nil {
		return nil, err
	}
	srs, err := ahp.Setup(field, params)
	if err != nil {
		return nil, wrapError(ErrInvalidConfig, "setup failed", err)
	}
	return ahp.NewSetupArtifact(srs, class), nil
}

// Commit compiles a firmware program and produces its published commitment
// artifact together with the sparse program parameters provers need.
func Commit(class uint8, params ClassParams, gates []Gate, setup *SetupArtifact, device DeviceInfo) (*CommitmentArtifact, *ProgramParamsArtifact, error) {
	field, err := newField(params)
	if err != nil {
		return nil, nil, err
	}
	srs, err := setup.ToSRS(params)
	if err != nil {
		return nil, nil, wrapError(ErrInvalidConfig, "invalid setup artifact", err)
	}

	matrices, err := circuit.CompileMatrices(field, params, gates)
	if err != nil {
		return nil, nil, wrapError(ErrCompilation, "compiling program", err)
	}
	com, err := ahp.EncodeCommitment(field, params, matrices, srs.Ck)
	if err != nil {
		return nil, nil, wrapError(ErrCommitment, "encoding commitment", err)
	}
	programParams, err := ahp.NewProgramParamsArtifact(matrices)
	if err != nil {
		return nil, nil, wrapError(ErrCommitment, "encoding program parameters", err)
	}
	return ahp.NewCommitmentArtifact(com, class, device), programParams, nil
}

// Prove executes the program, builds the witness, and generates an execution
// proof against the published commitment.
func Prove(class uint8, params ClassParams, gates []Gate, commitment *CommitmentArtifact, setup *SetupArtifact, opts ...ahp.ProverOption) (*ProofArtifact, error) {
	field, err := newField(params)
	if err != nil {
		return nil, err
	}
	srs, err := setup.ToSRS(params)
	if err != nil {
		return nil, wrapError(ErrInvalidConfig, "invalid setup artifact", err)
	}
	com, err := commitment.ToCommitment(field, params, srs.Ck)
	if err != nil {
		return nil, wrapError(ErrInvalidInput, "invalid commitment artifact", err)
	}

	matrices, err := circuit.CompileMatrices(field, params, gates)
	if err != nil {
		return nil, wrapError(ErrCompilation, "compiling program", err)
	}
	witness, err := circuit.BuildWitness(field, params, gates)
	if err != nil {
		return nil, wrapError(ErrCompilation, "building witness", err)
	}

	proof, err := ahp.GenerateProof(field, srs, com, matrices, witness, opts...)
	if err != nil {
		return nil, wrapError(ErrProofGeneration, "generating proof", err)
	}
	return ahp.NewProofArtifact(proof, com.ID(), class), nil
}

// Verify checks a serialized proof against a published commitment. The
// boolean is the verdict; errors report malformed artifacts.
func Verify(params ClassParams, proofArt *ProofArtifact, commitment *CommitmentArtifact, setup *SetupArtifact, opts ...ahp.VerifierOption) (bool, error) {
	field, err := newField(params)
	if err != nil {
		return false, err
	}
	srs, err := setup.ToSRS(params)
	if err != nil {
		return false, wrapError(ErrInvalidConfig, "invalid setup artifact", err)
	}
	com, err := commitment.ToCommitment(field, params, srs.Ck)
	if err != nil {
		return false, wrapError(ErrInvalidInput, "invalid commitment artifact", err)
	}
	if proofArt.CommitmentID != com.ID() {
		return false, wrapError(ErrInvalidInput, "proof was generated against a different commitment", nil)
	}
	proof, err := proofArt.ToProof(field, params)
	if err != nil {
		return false, wrapError(ErrInvalidInput, "invalid proof artifact", err)
	}

	ok, err := ahp.Verify(field, srs, com, proof, opts...)
	if err != nil {
		return false, wrapError(ErrProofVerification, "verifying proof", err)
	}
	return ok, nil
}

func newField(params ClassParams) (*core.Field, error) {
	if err := params.Validate(); err != nil {
		return nil, wrapError(ErrInvalidConfig, "invalid class parameters", err)
	}
	field, err := core.NewField(params.P)
	if err != nil {
		return nil, wrapError(ErrInvalidConfig, "creating field", err)
	}
	return field, nil
}
