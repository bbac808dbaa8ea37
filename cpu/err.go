package cpu

import (
	"errors"

	"github.com/ezrec/mcdp/translate"
)

var f = translate.From

var (
	// Datapath errors
	ErrRegisterZero    = errors.New(f("register r0 is read only"))
	ErrRegisterInvalid = errors.New(f("register invalid"))
	ErrMemoryAddress   = errors.New(f("memory address out of range"))
	ErrAluFunct        = errors.New(f("alu function invalid"))
	ErrAluSource       = errors.New(f("alu source invalid"))
	ErrPcSource        = errors.New(f("pc source invalid"))
	ErrOpcodeInvalid   = errors.New(f("opcode invalid"))
	ErrOutput          = errors.New(f("print output failed"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrSectionInvalid     = errors.New(f("not allowed in this section"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeMissing      = errors.New(f("arguments missing"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrImmediateRange     = errors.New(f("immediate out of range"))
	ErrTargetRange        = errors.New(f("target out of range"))
	ErrTargetAlign        = errors.New(f("target not word aligned"))
	ErrOperandSyntax      = errors.New(f("memory operand is not imm(rs)"))
	ErrDataRange          = errors.New(f(".data exceeds memory"))
)

// ErrRegister is the index of an offending register.
type ErrRegister int

func (er ErrRegister) Error() string {
	return f("register r%d", int(er))
}

// ErrAddress is the offending data memory address.
type ErrAddress int

func (ea ErrAddress) Error() string {
	return f("address 0x%x", int(ea))
}

// ErrOpcode is an offending opcode field.
type ErrOpcode CodeOp

func (eo ErrOpcode) Error() string {
	return f("opcode %d", int(eo))
}

// ErrFunct is an offending function code field.
type ErrFunct CodeFunct

func (ef ErrFunct) Error() string {
	return f("funct %d", int(ef))
}

// ErrCode is the instruction latched when a fault occurred.
type ErrCode Code

func (ec ErrCode) Error() string {
	return f("bad instruction 0x%08x %v", uint32(ec), Code(ec).String())
}

func (ec ErrCode) Is(err error) (ok bool) {
	_, ok = err.(ErrCode)
	return
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseRegister string

func (err ErrParseRegister) Error() string {
	return f("'%v' is not a register", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
