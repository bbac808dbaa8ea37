package cpu

import (
	"errors"
	"fmt"
)

// State is a control FSM state.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_FETCH                 = State(0) // fetch
	STATE_DECODE                = State(1) // decode
	STATE_RTYPE_EXECUTE         = State(2) // rtype.execute
	STATE_RTYPE_WRITEBACK       = State(3) // rtype.writeback
	STATE_JTYPE                 = State(4) // jtype
	STATE_ITYPE_ADDRESS_COMPUTE = State(5) // itype.address
	STATE_ITYPE_MEMORY_READ     = State(6) // itype.read
	STATE_ITYPE_MEMORY_WRITE    = State(7) // itype.write
	STATE_ITYPE_READ_WRITEBACK  = State(8) // itype.writeback
	STATE_BRANCH                = State(9) // branch
)

// AluSrcB selects the right hand ALU operand.
type AluSrcB int

//go:generate go tool stringer -linecomment -type=AluSrcB
const (
	ALU_SRC_B_REG         = AluSrcB(0) // reg
	ALU_SRC_B_FOUR        = AluSrcB(1) // four
	ALU_SRC_B_IMM         = AluSrcB(2) // imm
	ALU_SRC_B_IMM_SHIFTED = AluSrcB(3) // imm<<2
)

// PcSource selects the next PC value, when the PC is written.
type PcSource int

//go:generate go tool stringer -linecomment -type=PcSource
const (
	PC_SOURCE_ALU_RESULT = PcSource(0) // result
	PC_SOURCE_ALU_OUT    = PcSource(1) // aluout
	PC_SOURCE_JUMP       = PcSource(2) // jump
)

// Decision is the set of datapath control signals for a single cycle.
type Decision struct {
	IorD       bool      // Access data memory at the ALU output, instead of the instruction stream at PC.
	MemWrite   bool      // Write operand B to data memory.
	IrWrite    bool      // Latch the instruction read this cycle.
	PcWrite    bool      // Unconditionally write the PC.
	Branch     bool      // Write the PC if the zero test passes.
	PcSource   PcSource  // Source of a PC write.
	AluControl CodeFunct // ALU operation.
	AluSrcAReg bool      // Left ALU operand is operand A, instead of the PC.
	AluSrcB    AluSrcB   // Right ALU operand.
	RegWrite   bool      // Write back to a register.
	MemToReg   bool      // Write back the memory data, instead of the ALU output.
	RegDst     bool      // Write back to rd, instead of rt.
	NegateZero bool      // Branch on a non-zero ALU result.
}

// String returns the asserted signals.
func (dec Decision) String() (text string) {
	flag := func(name string, on bool) {
		if on {
			text += " " + name
		}
	}

	srcA := "pc"
	if dec.AluSrcAReg {
		srcA = "reg"
	}

	text = fmt.Sprintf("alu:%v a:%v b:%v", dec.AluControl, srcA, dec.AluSrcB)
	flag("iord", dec.IorD)
	flag("memwrite", dec.MemWrite)
	flag("irwrite", dec.IrWrite)
	flag("pcwrite", dec.PcWrite)
	flag("branch", dec.Branch)
	flag("negate", dec.NegateZero)
	if dec.PcWrite || dec.Branch {
		text += " pc:" + dec.PcSource.String()
	}
	flag("regwrite", dec.RegWrite)
	flag("memtoreg", dec.MemToReg)
	flag("regdst", dec.RegDst)

	return
}

// Fsm is the control finite state machine of the datapath.
// The zero value is ready to fetch.
type Fsm struct {
	state  State
	opcode CodeOp
	funct  CodeFunct
}

// State returns the state that the next Decide will act on.
func (fsm *Fsm) State() State {
	return fsm.state
}

// SetInstruction latches the opcode and function code of a fetched instruction.
func (fsm *Fsm) SetInstruction(opcode CodeOp, funct CodeFunct) {
	fsm.opcode = opcode
	fsm.funct = funct
}

// Reset returns the FSM to the fetch state.
func (fsm *Fsm) Reset() {
	fsm.state = STATE_FETCH
	fsm.opcode = 0
	fsm.funct = 0
}

// IsPrint returns true if the latched instruction is the print pseudo-instruction.
func (fsm *Fsm) IsPrint() bool {
	return fsm.opcode == OP_R && fsm.funct == FUNCT_PRINT
}

// decode selects the state following STATE_DECODE.
func (fsm *Fsm) decode() (next State, err error) {
	switch fsm.opcode {
	case OP_R:
		if !fsm.funct.Alu() {
			err = errors.Join(ErrAluFunct, ErrFunct(fsm.funct))
			return
		}
		next = STATE_RTYPE_EXECUTE
	case OP_J:
		next = STATE_JTYPE
	case OP_BEQ, OP_BNE:
		next = STATE_BRANCH
	case OP_LW, OP_SW:
		next = STATE_ITYPE_ADDRESS_COMPUTE
	default:
		err = errors.Join(ErrOpcodeInvalid, ErrOpcode(fsm.opcode))
	}

	return
}

// Decide returns the control signals for this cycle, and advances to the
// next state. On error the state is unchanged.
func (fsm *Fsm) Decide() (dec Decision, err error) {
	next := STATE_FETCH

	switch fsm.state {
	case STATE_FETCH:
		next = STATE_DECODE
		dec = Decision{
			IrWrite:    true,
			PcWrite:    true,
			PcSource:   PC_SOURCE_ALU_RESULT,
			AluControl: FUNCT_ADD,
			AluSrcB:    ALU_SRC_B_FOUR,
		}
	case STATE_DECODE:
		next, err = fsm.decode()
		if err != nil {
			return
		}
		// Speculative branch target.
		dec = Decision{
			AluControl: FUNCT_ADD,
			AluSrcB:    ALU_SRC_B_IMM_SHIFTED,
		}
	case STATE_ITYPE_ADDRESS_COMPUTE:
		if fsm.opcode == OP_LW {
			next = STATE_ITYPE_MEMORY_READ
		} else {
			next = STATE_ITYPE_MEMORY_WRITE
		}
		dec = Decision{
			AluControl: FUNCT_ADD,
			AluSrcAReg: true,
			AluSrcB:    ALU_SRC_B_IMM,
		}
	case STATE_ITYPE_MEMORY_READ:
		next = STATE_ITYPE_READ_WRITEBACK
		dec = Decision{
			IorD:       true,
			AluControl: FUNCT_ADD,
			AluSrcAReg: true,
			AluSrcB:    ALU_SRC_B_IMM,
		}
	case STATE_ITYPE_READ_WRITEBACK:
		dec = Decision{
			IorD:       true,
			AluControl: FUNCT_ADD,
			AluSrcAReg: true,
			AluSrcB:    ALU_SRC_B_IMM,
			RegWrite:   true,
			MemToReg:   true,
		}
	case STATE_ITYPE_MEMORY_WRITE:
		dec = Decision{
			IorD:       true,
			MemWrite:   true,
			AluControl: FUNCT_ADD,
			AluSrcAReg: true,
			AluSrcB:    ALU_SRC_B_IMM,
		}
	case STATE_RTYPE_EXECUTE:
		next = STATE_RTYPE_WRITEBACK
		dec = Decision{
			AluControl: fsm.funct,
			AluSrcAReg: true,
			AluSrcB:    ALU_SRC_B_REG,
		}
	case STATE_RTYPE_WRITEBACK:
		dec = Decision{
			AluControl: fsm.funct,
			AluSrcAReg: true,
			AluSrcB:    ALU_SRC_B_REG,
			RegWrite:   true,
			RegDst:     true,
		}
	case STATE_BRANCH:
		dec = Decision{
			Branch:     true,
			PcSource:   PC_SOURCE_ALU_OUT,
			AluControl: FUNCT_SUB,
			AluSrcAReg: true,
			AluSrcB:    ALU_SRC_B_REG,
			NegateZero: fsm.opcode == OP_BNE,
		}
	case STATE_JTYPE:
		dec = Decision{
			PcWrite:    true,
			PcSource:   PC_SOURCE_JUMP,
			AluControl: FUNCT_ADD,
			AluSrcB:    ALU_SRC_B_FOUR,
		}
	default:
		panic(fmt.Sprintf("unknown fsm state %v", fsm.state))
	}

	fsm.state = next

	return
}
