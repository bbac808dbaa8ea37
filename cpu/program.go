package cpu

import (
	"encoding/binary"
	"fmt"
	"io"
	"iter"
)

// Opcode represents a line of assembled code with its source location and generated instruction.
type Opcode struct {
	LineNo    int
	Pc        int
	Words     []string
	Code      Code
	LinkLabel string
}

// Program is an assembled instruction stream and its initial data memory.
type Program struct {
	Opcodes []Opcode
	Data    []byte
}

// Debug returns the opcode at pc, or nil if there is none.
func (prog *Program) Debug(pc int) (op *Opcode) {
	// Assembled programs are dense, with opcode n at pc n*WORD_SIZE.
	if n := pc / WORD_SIZE; pc >= 0 && n < len(prog.Opcodes) && prog.Opcodes[n].Pc == pc {
		op = &prog.Opcodes[n]
		return
	}

	for n := range prog.Opcodes {
		if prog.Opcodes[n].Pc == pc {
			op = &prog.Opcodes[n]
			break
		}
	}

	return
}

// Binary returns the big-endian instruction stream.
func (prog *Program) Binary() (text []byte) {
	text = make([]byte, 0, len(prog.Opcodes)*WORD_SIZE)
	for _, code := range prog.Codes() {
		text = binary.BigEndian.AppendUint32(text, uint32(code))
	}

	return
}

// Codes iterates over the instructions by PC.
func (prog *Program) Codes() iter.Seq2[int, Code] {
	return func(yield func(pc int, code Code) bool) {
		for _, op := range prog.Opcodes {
			if !yield(op.Pc, op.Code) {
				return
			}
		}
	}
}

// Listing writes a disassembly of the program.
func (prog *Program) Listing(w io.Writer) (err error) {
	for _, op := range prog.Opcodes {
		_, err = fmt.Fprintf(w, "%04x: %08x  %-24v ; %d\n", op.Pc, uint32(op.Code), op.Code, op.LineNo)
		if err != nil {
			return
		}
	}

	return
}
