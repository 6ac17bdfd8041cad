// Package zkiot provides succinct execution attestation for IoT firmware.
//
// A device class fixes a prime field and two evaluation domains; a firmware
// image compiles into three square constraint matrices committed once with a
// KZG-style polynomial commitment. Each execution then yields a short proof
// that the reported inputs and outputs came from running exactly the
// committed program, verified without re-executing it.
//
// # Quick Start
//
// Running the full flow for a device class:
//
//	params := zkiot.DefaultClass()
//	setup, err := zkiot.Setup(1, params)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Program: load ra, 4; addi t0, zero, 5; mul t1, ra, 2
//	gates := []zkiot.Gate{
//		{Instr: zkiot.InstrLoad, Dest: 1, ValRight: zkiot.Lit(4)},
//		{Instr: zkiot.InstrAddi, Dest: 5, Left: 0, ValRight: zkiot.Lit(5)},
//		{Instr: zkiot.InstrMul, Dest: 6, Left: 1, ValRight: zkiot.Lit(2)},
//	}
//
//	commitment, programParams, err := zkiot.Commit(1, params, gates, setup, device)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	proof, err := zkiot.Prove(1, params, gates, commitment, setup)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ok, err := zkiot.Verify(params, proof, commitment, setup)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if ok {
//		fmt.Println("Execution attested!")
//	}
//
// All four artifacts marshal to JSON for distribution between the setup
// authority, the device vendor, the device, and verifiers.
//
// # Architecture
//
// - pkg/zkiot/: Public API (this package)
// - internal/zkiot/: Private implementation (not importable)
//
// The implementation splits into core field/polynomial/commitment
// arithmetic, the program-to-matrix compiler, and the holographic proof
// protocol itself.
//
// # Security model
//
// The pairing operation is modeled inside the base field and the challenge
// derivation binds to the prover's masking polynomial only. The scheme
// mirrors the deployed device ecosystem and is NOT a drop-in replacement
// for a production SNARK over an elliptic-curve pairing.
package zkiot
