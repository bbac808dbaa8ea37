package cpu

import (
	"fmt"
)

// Word is the unit of register, memory and ALU exchange.
type Word int32

// CodeOp is the 6-bit opcode field of an instruction.
type CodeOp uint8

const (
	OP_R   = CodeOp(0)  // Register-register ALU operation, selected by funct.
	OP_J   = CodeOp(2)  // Jump.
	OP_BEQ = CodeOp(4)  // Branch if equal.
	OP_BNE = CodeOp(5)  // Branch if not equal.
	OP_LW  = CodeOp(34) // Load word.
	OP_SW  = CodeOp(43) // Store word.
)

// CodeFunct is the 6-bit function code field of an R-type instruction.
// It is also the ALU control value.
type CodeFunct uint8

const (
	FUNCT_PRINT = CodeFunct(0)  // Print register, only with OP_R.
	FUNCT_ADD   = CodeFunct(32) // Wrapping add.
	FUNCT_SUB   = CodeFunct(34) // Wrapping subtract.
	FUNCT_AND   = CodeFunct(36) // Bitwise and.
	FUNCT_OR    = CodeFunct(37) // Bitwise or.
	FUNCT_NOR   = CodeFunct(39) // Bitwise nor.
	FUNCT_SLT   = CodeFunct(42) // Set on signed less-than.
)

var opName = map[CodeOp]string{
	OP_R:   "r",
	OP_J:   "j",
	OP_BEQ: "beq",
	OP_BNE: "bne",
	OP_LW:  "lw",
	OP_SW:  "sw",
}

var functName = map[CodeFunct]string{
	FUNCT_PRINT: "print",
	FUNCT_ADD:   "add",
	FUNCT_SUB:   "sub",
	FUNCT_AND:   "and",
	FUNCT_OR:    "or",
	FUNCT_NOR:   "nor",
	FUNCT_SLT:   "slt",
}

func (op CodeOp) String() string {
	name, ok := opName[op]
	if !ok {
		return fmt.Sprintf("CodeOp(%d)", uint8(op))
	}
	return name
}

func (fn CodeFunct) String() string {
	name, ok := functName[fn]
	if !ok {
		return fmt.Sprintf("CodeFunct(%d)", uint8(fn))
	}
	return name
}

// Alu returns true if the function code is an ALU operation.
func (fn CodeFunct) Alu() bool {
	_, ok := functName[fn]
	return ok && fn != FUNCT_PRINT
}

// Code is a single 32-bit instruction word.
//
//	R-type: op[31:26] rs[25:21] rt[20:16] rd[15:11] funct[5:0]
//	I-type: op[31:26] rs[25:21] rt[20:16] imm[7:0]
//	J-type: op[31:26] target[25:0]
type Code uint32

const (
	TARGET_MASK = uint32(0x3ff_ffff) // Jump target field.
	IMM_MASK    = uint32(0xff)       // Immediate field.
	REG_MASK    = uint32(0x1f)       // Register fields.
)

// MakeCodeR creates a register-register ALU instruction.
func MakeCodeR(funct CodeFunct, rd, rs, rt int) Code {
	return Code((uint32(OP_R) << 26) |
		((uint32(rs) & REG_MASK) << 21) |
		((uint32(rt) & REG_MASK) << 16) |
		((uint32(rd) & REG_MASK) << 11) |
		(uint32(funct) & 0x3f))
}

// MakeCodePrint creates the print register pseudo-instruction.
func MakeCodePrint(rs int) Code {
	return MakeCodeR(FUNCT_PRINT, 0, rs, 0)
}

// MakeCodeI creates a load, store or branch instruction.
func MakeCodeI(op CodeOp, rt, rs int, imm uint8) Code {
	return Code((uint32(op&0x3f) << 26) |
		((uint32(rs) & REG_MASK) << 21) |
		((uint32(rt) & REG_MASK) << 16) |
		uint32(imm))
}

// MakeCodeJ creates a jump to a word aligned byte address.
func MakeCodeJ(address uint32) Code {
	return Code((uint32(OP_J) << 26) | ((address >> 2) & TARGET_MASK))
}

// Op returns the opcode field.
func (code Code) Op() CodeOp {
	return CodeOp((code >> 26) & 0x3f)
}

// Funct returns the function code field.
func (code Code) Funct() CodeFunct {
	return CodeFunct(code & 0x3f)
}

// Rs returns the source register field.
func (code Code) Rs() int {
	return int((uint32(code) >> 21) & REG_MASK)
}

// Rt returns the target register field.
func (code Code) Rt() int {
	return int((uint32(code) >> 16) & REG_MASK)
}

// Rd returns the destination register field.
func (code Code) Rd() int {
	return int((uint32(code) >> 11) & REG_MASK)
}

// Imm returns the zero-extended 8-bit immediate.
func (code Code) Imm() Word {
	return Word(uint32(code) & IMM_MASK)
}

// Target returns the 26-bit jump target field.
func (code Code) Target() uint32 {
	return uint32(code) & TARGET_MASK
}

// IsPrint returns true for the print register pseudo-instruction.
func (code Code) IsPrint() bool {
	return code.Op() == OP_R && code.Funct() == FUNCT_PRINT
}

// String returns the assembly language representation of this instruction.
func (code Code) String() (out string) {
	op := code.Op()
	switch op {
	case OP_R:
		funct := code.Funct()
		switch {
		case funct == FUNCT_PRINT:
			out = fmt.Sprintf("print r%d", code.Rs())
		case funct.Alu():
			out = fmt.Sprintf("%v r%d, r%d, r%d", funct, code.Rd(), code.Rs(), code.Rt())
		default:
			out = fmt.Sprintf(".word 0x%08x", uint32(code))
		}
	case OP_LW, OP_SW:
		out = fmt.Sprintf("%v r%d, %d(r%d)", op, code.Rt(), code.Imm(), code.Rs())
	case OP_BEQ, OP_BNE:
		out = fmt.Sprintf("%v r%d, r%d, %d", op, code.Rs(), code.Rt(), code.Imm())
	case OP_J:
		out = fmt.Sprintf("j 0x%x", code.Target()<<2)
	default:
		out = fmt.Sprintf(".word 0x%08x", uint32(code))
	}

	return
}
