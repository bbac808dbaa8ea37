package emulator

import (
	"errors"

	"github.com/ezrec/mcdp/translate"
)

var f = translate.From

var (
	ErrCycleLimit = errors.New(f("cycle limit exceeded"))
)

// ErrCycles is the cycle limit that was exceeded.
type ErrCycles int

func (err ErrCycles) Error() string {
	return f("%d cycles", int(err))
}

// ErrRuntime indicates the location of a runtime error.
type ErrRuntime struct {
	Pc     int
	LineNo int
	Err    error
}

func (err *ErrRuntime) Error() string {
	return f("line %d pc 0x%x %v", err.LineNo, err.Pc, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}
