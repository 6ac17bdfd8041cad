// Package circuit turns a straight-line register program into the three
// square constraint matrices A, B, C and the witness vector satisfying
// (A*Z) ∘ (B*Z) = C*Z.
package circuit

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupportedGate is returned when a program contains an instruction the
// constraint compiler cannot encode.
var ErrUnsupportedGate = errors.New("unsupported gate")

// Instr identifies the operation a gate performs.
type Instr int

const (
	// InstrAdd adds two register operands.
	InstrAdd Instr = iota
	// InstrAddi adds a register operand and an immediate.
	InstrAddi
	// InstrMul multiplies two operands.
	InstrMul
	// InstrDiv divides two operands. Division gates are rejected by the
	// compiler; front-ends must lower them to multiplications first.
	InstrDiv
	// InstrLoad sets the initial value of a register and produces no
	// constraint row.
	InstrLoad
)

// String returns the assembly mnemonic of the instruction.
func (i Instr) String() string {
	switch i {
	case InstrAdd:
		return "add"
	case InstrAddi:
		return "addi"
	case InstrMul:
		return "mul"
	case InstrDiv:
		return "div"
	case InstrLoad:
		return "load"
	default:
		return fmt.Sprintf("instr(%d)", int(i))
	}
}

// IsArithmetic reports whether the instruction occupies a constraint row.
func (i Instr) IsArithmetic() bool {
	switch i {
	case InstrAdd, InstrAddi, InstrMul, InstrDiv:
		return true
	default:
		return false
	}
}

// Gate is one already-parsed program instruction. Operands reference
// registers unless the corresponding literal value is set, in which case the
// literal replaces the register read.
type Gate struct {
	Instr    Instr
	Dest     uint8
	Left     uint8
	Right    uint8
	ValLeft  *uint64
	ValRight *uint64
}

// Lit is a convenience constructor for literal operands.
func Lit(v uint64) *uint64 {
	return &v
}

func (g Gate) String() string {
	operand := func(reg uint8, val *uint64) string {
		if val != nil {
			return strconv.FormatUint(*val, 10)
		}
		return fmt.Sprintf("x%d", reg)
	}
	return fmt.Sprintf("%s x%d, %s, %s", g.Instr, g.Dest,
		operand(g.Left, g.ValLeft), operand(g.Right, g.ValRight))
}

// abiRegisters maps RISC-V ABI register names to their indices.
var abiRegisters = map[string]uint8{
	"zero": 0, "ra": 1, "sp": 2, "gp": 3, "tp": 4,
	"t0": 5, "t1": 6, "t2": 7,
	"s0": 8, "fp": 8, "s1": 9,
	"a0": 10, "a1": 11, "a2": 12, "a3": 13,
	"a4": 14, "a5": 15, "a6": 16, "a7": 17,
	"s2": 18, "s3": 19, "s4": 20, "s5": 21, "s6": 22, "s7": 23,
	"s8": 24, "s9": 25, "s10": 26, "s11": 27,
	"t3": 28, "t4": 29, "t5": 30, "t6": 31,
}

// ParseRegister resolves a RISC-V register name, either an ABI name such as
// "a0" or a raw "x7" form, to its index.
func ParseRegister(name string) (uint8, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if idx, ok := abiRegisters[name]; ok {
		return idx, nil
	}
	if rest, ok := strings.CutPrefix(name, "x"); ok {
		v, err := strconv.ParseUint(rest, 10, 8)
		if err == nil && v < 32 {
			return uint8(v), nil
		}
	}
	return 0, fmt.Errorf("unknown register %q", name)
}
