// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/mcdp/cpu"
	"github.com/ezrec/mcdp/internal"
)

const (
	CYCLE_LIMIT = 10_000_000 // Default cycle limit of Run.
)

var _emulator_defines = map[string]string{
	"CYCLE_LIMIT": fmt.Sprintf("%v", CYCLE_LIMIT),
}

// Emulator state. Datapath plus the listing of the loaded program.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the datapath simulation.
	Program  *cpu.Program // Reference to the currently running program listing.
}

// NewEmulator creates a new emulator for an instruction stream and initial data memory.
func NewEmulator(code []byte, memory []byte) (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(code, memory),
		Program: &cpu.Program{},
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.Concat2(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Assemble parses an assembly source, with the emulator defines as
// predefined equates, and loads the resulting program.
func (emu *Emulator) Assemble(input io.Reader) (prog *cpu.Program, err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err = asm.Parse(input)
	if err != nil {
		return
	}

	emu.Load(prog)

	return
}

// Load replaces the datapath with one running prog.
// The print output sink is kept.
func (emu *Emulator) Load(prog *cpu.Program) {
	emu.LoadImage(prog.Binary(), prog.Data)
	emu.Program = prog
}

// LoadImage replaces the datapath with one running a binary image, and
// clears the program listing. The print output sink is kept.
func (emu *Emulator) LoadImage(code []byte, memory []byte) {
	output := emu.Cpu.Output

	emu.Cpu = cpu.NewCpu(code, memory)
	emu.Cpu.Output = output
	emu.Program = &cpu.Program{}

	emu.Reset()
}

// Reset the emulator state
func (emu *Emulator) Reset() {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
}

// Here returns the PC of the instruction the next tick acts on.
func (emu *Emulator) Here() int {
	if emu.Cpu.Fsm.State() == cpu.STATE_FETCH {
		return emu.Cpu.Pc
	}

	return emu.Cpu.InstructionPc
}

// Code returns the current instruction code.
func (emu *Emulator) Code() cpu.Code {
	here := emu.Here()
	for pc, code := range emu.Program.Codes() {
		if pc == here {
			return code
		}
	}

	return emu.Cpu.Instruction
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	op := emu.Program.Debug(emu.Here())
	if op == nil {
		return 0
	}

	return op.LineNo
}

// Tick performs a single clock cycle of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Here()
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		}
	}()

	running, err := emu.Cpu.Clock()
	if err != nil {
		return
	}

	done = !running

	return
}

// Run clocks the emulator until the program finishes, fails, or runs
// for maxCycles cycles. A maxCycles of zero or less is unlimited.
func (emu *Emulator) Run(maxCycles int) (err error) {
	for cycle := 0; maxCycles <= 0 || cycle < maxCycles; cycle++ {
		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}

	if emu.Verbose {
		log.Printf("emulator: halted after %v cycles", maxCycles)
	}

	err = errors.Join(ErrCycleLimit, &ErrRuntime{Pc: emu.Here(), LineNo: emu.LineNo(), Err: ErrCycles(maxCycles)})

	return
}
