package cpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"os"
	"slices"
	"strings"
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE":    fmt.Sprintf("%d", MEMORY_SIZE),
	"WORD_SIZE":      fmt.Sprintf("%d", WORD_SIZE),
	"REGISTER_COUNT": fmt.Sprintf("%d", REGISTER_COUNT),
	"OP_R":           fmt.Sprintf("%d", OP_R),
	"OP_J":           fmt.Sprintf("%d", OP_J),
	"OP_BEQ":         fmt.Sprintf("%d", OP_BEQ),
	"OP_BNE":         fmt.Sprintf("%d", OP_BNE),
	"OP_LW":          fmt.Sprintf("%d", OP_LW),
	"OP_SW":          fmt.Sprintf("%d", OP_SW),
	"FUNCT_PRINT":    fmt.Sprintf("%d", FUNCT_PRINT),
	"FUNCT_ADD":      fmt.Sprintf("%d", FUNCT_ADD),
	"FUNCT_SUB":      fmt.Sprintf("%d", FUNCT_SUB),
	"FUNCT_AND":      fmt.Sprintf("%d", FUNCT_AND),
	"FUNCT_OR":       fmt.Sprintf("%d", FUNCT_OR),
	"FUNCT_NOR":      fmt.Sprintf("%d", FUNCT_NOR),
	"FUNCT_SLT":      fmt.Sprintf("%d", FUNCT_SLT),
}

// Cpu is the simulation context for the multi-cycle datapath.
// It is not safe for concurrent use.
type Cpu struct {
	Verbose bool      // Set to enable verbose logging.
	Output  io.Writer // Sink for the print pseudo-instruction.

	Text     []byte       // Instruction stream, read only.
	Pc       int          // Byte offset of the next fetch in Text.
	Memory   *Memory      // Data memory.
	Register RegisterFile // Register bank.
	Alu      Alu          // ALU and zero flag.
	Fsm      Fsm          // Control state machine.

	Instruction   Code // Instruction register.
	InstructionPc int  // PC the instruction register was fetched from.
	AluOut        Word // ALU result of the prior cycle.
	Data          Word // Memory read of the prior cycle.
	OperandA      Word // Register rs, read at instruction latch.
	OperandB      Word // Register rt, read at instruction latch.

	Cycles       int // Clock cycle counter.
	Instructions int // Instruction fetch counter.

	fault error // First error, halts the datapath.
}

// NewCpu creates a datapath for an instruction stream and initial data memory.
func NewCpu(text []byte, memory []byte) (cpu *Cpu) {
	cpu = &Cpu{
		Output: os.Stdout,
		Text:   slices.Clone(text),
		Memory: NewMemory(memory),
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Sets PC to zero.
// - Restores the data memory to its initial contents.
// - Clears the registers, zero flag, and latches.
// - Returns the FSM to fetch.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Pc = 0
	cpu.Memory.Reset()
	cpu.Register.Reset()
	cpu.Alu.Reset()
	cpu.Fsm.Reset()

	cpu.Instruction = 0
	cpu.InstructionPc = 0
	cpu.AluOut = 0
	cpu.Data = 0
	cpu.OperandA = 0
	cpu.OperandB = 0

	cpu.Cycles = 0
	cpu.Instructions = 0
	cpu.fault = nil
}

// Done returns true once the PC has left the instruction stream
// and the last instruction has completed.
func (cpu *Cpu) Done() bool {
	return cpu.Pc >= len(cpu.Text) && cpu.Fsm.State() == STATE_FETCH
}

// Fault returns the error that halted the datapath, if any.
func (cpu *Cpu) Fault() error {
	return cpu.fault
}

// String returns the current datapath state as a string.
func (cpu *Cpu) String() (text string) {
	word := func(val Word) string {
		return fmt.Sprintf("%04X_%04X", uint32(val)>>16, uint32(val)&0xffff)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "% 6s: %08x\n", "pc", cpu.Pc)
	fmt.Fprintf(&sb, "% 6s: %v\n", "state", cpu.Fsm.State())
	fmt.Fprintf(&sb, "% 6s: %v (%v)\n", "ir", word(Word(cpu.Instruction)), cpu.Instruction)
	fmt.Fprintf(&sb, "% 6s: %v\n", "aluout", word(cpu.AluOut))
	fmt.Fprintf(&sb, "% 6s: %v\n", "data", word(cpu.Data))
	fmt.Fprintf(&sb, "% 6s: %v\n", "a", word(cpu.OperandA))
	fmt.Fprintf(&sb, "% 6s: %v\n", "b", word(cpu.OperandB))
	fmt.Fprintf(&sb, "% 6s: %v\n", "zero", cpu.Alu.Zero)
	sb.WriteString(cpu.Register.String())

	return sb.String()
}

// fetch reads the instruction stream word at addr.
// Bytes past the end of the stream read as zero.
func (cpu *Cpu) fetch(addr int) (value Word) {
	if addr < 0 || addr >= len(cpu.Text) {
		return
	}

	var buff [WORD_SIZE]byte
	copy(buff[:], cpu.Text[addr:])
	value = Word(binary.BigEndian.Uint32(buff[:]))

	return
}

// latch loads the instruction register and the register operands.
func (cpu *Cpu) latch(code Code) (err error) {
	cpu.Instruction = code
	cpu.Instructions++
	cpu.Fsm.SetInstruction(code.Op(), code.Funct())
	cpu.OperandA = cpu.Register.Get(code.Rs())
	cpu.OperandB = cpu.Register.Get(code.Rt())

	if cpu.Fsm.IsPrint() {
		_, err = fmt.Fprintf(cpu.Output, "%d\n", cpu.OperandA)
		if err != nil {
			err = errors.Join(ErrOutput, err)
			return
		}
		cpu.Fsm.Reset()
	}

	return
}

// aluSrcB returns the right hand ALU operand.
func (cpu *Cpu) aluSrcB(src AluSrcB) (value Word, err error) {
	switch src {
	case ALU_SRC_B_REG:
		value = cpu.OperandB
	case ALU_SRC_B_FOUR:
		value = WORD_SIZE
	case ALU_SRC_B_IMM:
		value = cpu.Instruction.Imm()
	case ALU_SRC_B_IMM_SHIFTED:
		value = cpu.Instruction.Imm() << 2
	default:
		err = ErrAluSource
	}

	return
}

// nextPc returns the PC selected by src.
func (cpu *Cpu) nextPc(src PcSource, result Word) (pc int, err error) {
	switch src {
	case PC_SOURCE_ALU_RESULT:
		pc = int(result)
	case PC_SOURCE_ALU_OUT:
		pc = int(cpu.AluOut)
	case PC_SOURCE_JUMP:
		pc = int((uint32(cpu.Pc) & 0xf000_0000) | (cpu.Instruction.Target() << 2))
	default:
		err = ErrPcSource
	}

	return
}

// Clock executes a single FSM cycle of the datapath.
// It returns false once the program has finished. Any error halts the
// datapath, and is returned again by later calls until Reset.
func (cpu *Cpu) Clock() (running bool, err error) {
	if cpu.fault != nil {
		err = cpu.fault
		return
	}

	if cpu.Done() {
		return
	}

	defer func() {
		if err != nil {
			err = errors.Join(ErrCode(cpu.Instruction), err)
			cpu.fault = err
			running = false
		}
	}()

	state := cpu.Fsm.State()
	dec, err := cpu.Fsm.Decide()
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: %08x %v: %v", cpu.Pc, state, dec)
	}

	var read Word
	if dec.IorD {
		addr := int(cpu.AluOut)
		if dec.MemWrite {
			err = cpu.Memory.WriteWord(addr, cpu.OperandB)
			if err != nil {
				return
			}
		}
		read, err = cpu.Memory.ReadWord(addr)
		if err != nil {
			return
		}
	} else {
		// Writes to the instruction stream are dropped.
		read = cpu.fetch(cpu.Pc)
	}

	if dec.IrWrite {
		cpu.InstructionPc = cpu.Pc
		err = cpu.latch(Code(uint32(read)))
		if err != nil {
			return
		}
	}

	lhs := Word(cpu.Pc)
	if dec.AluSrcAReg {
		lhs = cpu.OperandA
	}

	rhs, err := cpu.aluSrcB(dec.AluSrcB)
	if err != nil {
		return
	}

	result, err := cpu.Alu.Operate(lhs, rhs, dec.AluControl)
	if err != nil {
		return
	}

	if (dec.Branch && (cpu.Alu.Zero != dec.NegateZero)) || dec.PcWrite {
		cpu.Pc, err = cpu.nextPc(dec.PcSource, result)
		if err != nil {
			return
		}
	}

	if dec.RegWrite {
		value := cpu.AluOut
		if dec.MemToReg {
			value = cpu.Data
		}
		reg := cpu.Instruction.Rt()
		if dec.RegDst {
			reg = cpu.Instruction.Rd()
		}
		err = cpu.Register.Set(reg, value)
		if err != nil {
			return
		}
	}

	cpu.AluOut = result
	cpu.Data = read
	cpu.Cycles++

	running = !cpu.Done()

	return
}
