package cpu

import (
	"errors"
	"fmt"
	"strings"
)

const (
	REGISTER_COUNT = 32 // Number of general purpose registers.
	REGISTER_ZERO  = 0  // Hardwired zero register.
)

// RegisterFile is the general purpose register bank.
type RegisterFile struct {
	data [REGISTER_COUNT]Word
}

// Get returns the value of register id.
func (rf *RegisterFile) Get(id int) Word {
	return rf.data[id]
}

// Set writes value to register id. Writing r0 is refused.
func (rf *RegisterFile) Set(id int, value Word) (err error) {
	switch {
	case id == REGISTER_ZERO:
		err = errors.Join(ErrRegisterZero, ErrRegister(id))
	case id < 0 || id >= REGISTER_COUNT:
		err = errors.Join(ErrRegisterInvalid, ErrRegister(id))
	default:
		rf.data[id] = value
	}

	return
}

// Reset zeroes all registers.
func (rf *RegisterFile) Reset() {
	clear(rf.data[:])
}

// String returns the register bank, four registers to a line.
func (rf *RegisterFile) String() string {
	var sb strings.Builder
	for n, val := range rf.data {
		fmt.Fprintf(&sb, "% 4s: %04X_%04X", fmt.Sprintf("r%d", n), uint32(val)>>16, uint32(val)&0xffff)
		if n%4 == 3 {
			sb.WriteString("\n")
		} else {
			sb.WriteString("  ")
		}
	}
	return sb.String()
}
