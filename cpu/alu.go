package cpu

import (
	"errors"
)

// Alu is the arithmetic and logic unit. It is combinational, except for
// the zero flag of the last operation.
type Alu struct {
	Zero bool // Set if the last result was zero.
}

// Reset clears the zero flag.
func (alu *Alu) Reset() {
	alu.Zero = false
}

// Operate performs the requested ALU action, and returns the output value.
// Arithmetic wraps on overflow.
func (alu *Alu) Operate(lhs, rhs Word, funct CodeFunct) (result Word, err error) {
	switch funct {
	case FUNCT_ADD:
		result = lhs + rhs
	case FUNCT_SUB:
		result = lhs - rhs
	case FUNCT_AND:
		result = lhs & rhs
	case FUNCT_OR:
		result = lhs | rhs
	case FUNCT_NOR:
		result = ^(lhs | rhs)
	case FUNCT_SLT:
		if lhs < rhs {
			result = 1
		}
	default:
		err = errors.Join(ErrAluFunct, ErrFunct(funct))
		return
	}

	alu.Zero = result == 0

	return
}
