package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/ezrec/mcdp/cpu"
	"github.com/ezrec/mcdp/emulator"
	"github.com/ezrec/mcdp/translate"
)

var errNotTerminal = errors.New(translate.From("-step requires a terminal on stdin"))

// rawWriter restores carriage returns, which raw mode no longer adds.
type rawWriter struct {
	io.Writer
}

func (rw rawWriter) Write(p []byte) (n int, err error) {
	_, err = rw.Writer.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n")))
	if err != nil {
		return
	}

	n = len(p)

	return
}

// step single steps the datapath from the keyboard.
//
//	space, enter: one clock cycle
//	c: run to the end of the current instruction
//	r: show the datapath registers
//	q: quit
func step(emu *emulator.Emulator, maxCycles int) (err error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		err = errNotTerminal
		return
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return
	}
	defer term.Restore(fd, state)

	out := rawWriter{Writer: os.Stdout}
	emu.Cpu.Output = out

	keys := bufio.NewReader(os.Stdin)

	show := func() {
		fmt.Fprintf(out, "%04x %-16v line %-4d %v\n", emu.Here(), emu.Cpu.Fsm.State(), emu.LineNo(), emu.Code())
	}

	show()
	for !emu.Cpu.Done() {
		if maxCycles > 0 && emu.Cpu.Cycles >= maxCycles {
			err = errors.Join(emulator.ErrCycleLimit, emulator.ErrCycles(maxCycles))
			return
		}

		var key byte
		key, err = keys.ReadByte()
		if err != nil {
			return
		}

		switch key {
		case ' ', '\r', '\n':
			_, err = emu.Tick()
		case 'c':
			_, err = emu.Tick()
			for err == nil && !emu.Cpu.Done() && emu.Cpu.Fsm.State() != cpu.STATE_FETCH {
				_, err = emu.Tick()
			}
		case 'r':
			fmt.Fprint(out, emu.Cpu.String())
			continue
		case 'q':
			return
		default:
			continue
		}

		if err != nil {
			return
		}

		show()
	}

	return
}
