// Command zkiot drives the attestation flow from the command line: trusted
// setup for a device class, firmware commitment, proof generation, and
// verification, with every artifact persisted as JSON.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fidesinnova/zkiot/internal/zkiot/logger"
	"github.com/fidesinnova/zkiot/pkg/zkiot"
)

var (
	flagClass       uint8
	flagClassesFile string
)

func main() {
	root := &cobra.Command{
		Use:          "zkiot",
		Short:        "Succinct execution attestation for IoT firmware",
		SilenceUsage: true,
	}
	root.PersistentFlags().Uint8Var(&flagClass, "class", 1, "device class number")
	root.PersistentFlags().StringVar(&flagClassesFile, "classes", "", "JSON registry of device classes (defaults to the built-in class)")

	root.AddCommand(setupCmd(), commitCmd(), proveCmd(), verifyCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func classParams() (zkiot.ClassParams, error) {
	if flagClassesFile == "" {
		return zkiot.DefaultClass(), nil
	}
	data, err := os.ReadFile(flagClassesFile)
	if err != nil {
		return zkiot.ClassParams{}, fmt.Errorf("reading class registry: %w", err)
	}
	classes, err := zkiot.ParseClasses(data)
	if err != nil {
		return zkiot.ClassParams{}, err
	}
	params, ok := classes[fmt.Sprintf("%d", flagClass)]
	if !ok {
		return zkiot.ClassParams{}, fmt.Errorf("class %d not found in %s", flagClass, flagClassesFile)
	}
	return params, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// gateJSON is the on-disk form of one parsed instruction. Registers are
// referenced by their RISC-V names.
type gateJSON struct {
	Instr    string  `json:"instr"`
	Dest     string  `json:"dest"`
	Left     string  `json:"left,omitempty"`
	Right    string  `json:"right,omitempty"`
	ValLeft  *uint64 `json:"val_left,omitempty"`
	ValRight *uint64 `json:"val_right,omitempty"`
}

func readProgram(path string) ([]zkiot.Gate, error) {
	var raw []gateJSON
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}

	gates := make([]zkiot.Gate, 0, len(raw))
	for i, g := range raw {
		var instr zkiot.Instr
		switch g.Instr {
		case "add":
			instr = zkiot.InstrAdd
		case "addi":
			instr = zkiot.InstrAddi
		case "mul":
			instr = zkiot.InstrMul
		case "div":
			instr = zkiot.InstrDiv
		case "load", "li":
			instr = zkiot.InstrLoad
		default:
			return nil, fmt.Errorf("gate %d: unknown instruction %q", i, g.Instr)
		}

		gate := zkiot.Gate{Instr: instr, ValLeft: g.ValLeft, ValRight: g.ValRight}
		var err error
		if gate.Dest, err = zkiot.ParseRegister(g.Dest); err != nil {
			return nil, fmt.Errorf("gate %d: %w", i, err)
		}
		if g.Left != "" {
			if gate.Left, err = zkiot.ParseRegister(g.Left); err != nil {
				return nil, fmt.Errorf("gate %d: %w", i, err)
			}
		}
		if g.Right != "" {
			if gate.Right, err = zkiot.ParseRegister(g.Right); err != nil {
				return nil, fmt.Errorf("gate %d: %w", i, err)
			}
		}
		gates = append(gates, gate)
	}
	return gates, nil
}

func setupCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Run the trusted setup for a device class",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := classParams()
			if err != nil {
				return err
			}
			artifact, err := zkiot.Setup(flagClass, params)
			if err != nil {
				return err
			}
			if err := writeJSON(out, artifact); err != nil {
				return err
			}
			logger.Logger().Info().
				Uint8("class", flagClass).
				Int("key_length", len(artifact.Ck)).
				Str("out", out).
				Msg("setup complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "setup.json", "output path for the setup artifact")
	return cmd
}

func commitCmd() *cobra.Command {
	var program, setupPath, out, paramsOut string
	var device zkiot.DeviceInfo
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Compile a firmware program and publish its commitment",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := classParams()
			if err != nil {
				return err
			}
			gates, err := readProgram(program)
			if err != nil {
				return err
			}
			var setup zkiot.SetupArtifact
			if err := readJSON(setupPath, &setup); err != nil {
				return err
			}

			commitment, programParams, err := zkiot.Commit(flagClass, params, gates, &setup, device)
			if err != nil {
				return err
			}
			if err := writeJSON(out, commitment); err != nil {
				return err
			}
			if err := writeJSON(paramsOut, programParams); err != nil {
				return err
			}
			logger.Logger().Info().
				Uint64("commitment_id", commitment.CommitmentID).
				Str("out", out).
				Msg("commitment published")
			return nil
		},
	}
	cmd.Flags().StringVar(&program, "program", "program.json", "parsed firmware program")
	cmd.Flags().StringVar(&setupPath, "setup", "setup.json", "setup artifact")
	cmd.Flags().StringVar(&out, "out", "commitment.json", "output path for the commitment artifact")
	cmd.Flags().StringVar(&paramsOut, "program-params", "program_params.json", "output path for the sparse program parameters")
	cmd.Flags().StringVar(&device.ManufacturerName, "manufacturer", "", "device manufacturer name")
	cmd.Flags().StringVar(&device.DeviceName, "device", "", "device name")
	cmd.Flags().StringVar(&device.HardwareVersion, "hardware-version", "", "device hardware version")
	cmd.Flags().StringVar(&device.FirmwareVersion, "firmware-version", "", "firmware version")
	return cmd
}

func proveCmd() *cobra.Command {
	var program, commitmentPath, setupPath, out, hash string
	cmd := &cobra.Command{
		Use:   "prove",
		Short: "Generate an execution proof for a firmware program",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := classParams()
			if err != nil {
				return err
			}
			gates, err := readProgram(program)
			if err != nil {
				return err
			}
			var setup zkiot.SetupArtifact
			if err := readJSON(setupPath, &setup); err != nil {
				return err
			}
			var commitment zkiot.CommitmentArtifact
			if err := readJSON(commitmentPath, &commitment); err != nil {
				return err
			}

			proof, err := zkiot.Prove(flagClass, params, gates, &commitment, &setup,
				zkiot.WithTranscriptHash(hash))
			if err != nil {
				return err
			}
			if err := writeJSON(out, proof); err != nil {
				return err
			}
			logger.Logger().Info().
				Uint64("commitment_id", proof.CommitmentID).
				Str("out", out).
				Msg("proof generated")
			return nil
		},
	}
	cmd.Flags().StringVar(&program, "program", "program.json", "parsed firmware program")
	cmd.Flags().StringVar(&commitmentPath, "commitment", "commitment.json", "commitment artifact")
	cmd.Flags().StringVar(&setupPath, "setup", "setup.json", "setup artifact")
	cmd.Flags().StringVar(&out, "out", "proof.json", "output path for the proof artifact")
	cmd.Flags().StringVar(&hash, "hash", "sha256", "transcript hash (sha256 or sha3)")
	return cmd
}

func verifyCmd() *cobra.Command {
	var proofPath, commitmentPath, setupPath, hash string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify an execution proof",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := classParams()
			if err != nil {
				return err
			}
			var setup zkiot.SetupArtifact
			if err := readJSON(setupPath, &setup); err != nil {
				return err
			}
			var commitment zkiot.CommitmentArtifact
			if err := readJSON(commitmentPath, &commitment); err != nil {
				return err
			}
			var proof zkiot.ProofArtifact
			if err := readJSON(proofPath, &proof); err != nil {
				return err
			}

			ok, err := zkiot.Verify(params, &proof, &commitment, &setup,
				zkiot.WithVerifierHash(hash))
			if err != nil {
				return err
			}
			if !ok {
				logger.Logger().Error().Msg("proof rejected")
				return fmt.Errorf("proof rejected")
			}
			logger.Logger().Info().
				Uint64("commitment_id", proof.CommitmentID).
				Msg("proof verified")
			return nil
		},
	}
	cmd.Flags().StringVar(&proofPath, "proof", "proof.json", "proof artifact")
	cmd.Flags().StringVar(&commitmentPath, "commitment", "commitment.json", "commitment artifact")
	cmd.Flags().StringVar(&setupPath, "setup", "setup.json", "setup artifact")
	cmd.Flags().StringVar(&hash, "hash", "sha256", "transcript hash (sha256 or sha3)")
	return cmd
}
