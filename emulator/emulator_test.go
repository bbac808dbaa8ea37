package emulator

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/mcdp/cpu"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(nil, nil)

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.NotNil(emu.Program)
	assert.True(emu.Cpu.Done())

	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)
}

func doAssemble(emu *Emulator, program []string, t *testing.T) (output *bytes.Buffer) {
	assert := assert.New(t)

	output = &bytes.Buffer{}
	emu.Cpu.Output = output

	_, err := emu.Assemble(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	return
}

func TestEmulatorSubtract(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(nil, nil)
	program := []string{
		".data",
		"a: .word 5",
		"b: .word 3",
		".equ RESULT 100",
		".text",
		"lw r1, a(r0)",
		"lw r2, b(r0)",
		"sub r3, r1, r2",
		"sw r3, RESULT(r0)",
	}

	doAssemble(emu, program, t)

	err := emu.Run(0)
	assert.NoError(err)

	value, err := emu.Cpu.Memory.ReadWord(100)
	assert.NoError(err)
	assert.Equal(cpu.Word(2), value)
	assert.Equal(18, emu.Cpu.Cycles)
}

func TestEmulatorCountdown(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(nil, nil)
	program := []string{
		".data",
		"count: .word 3",
		"one: .word 1",
		".text",
		"lw r1, count(r0)",
		"lw r2, one(r0)",
		"loop:",
		"print r1",
		"sub r1, r1, r2",
		"beq r1, zero, done",
		"j loop",
		"done:",
	}

	output := doAssemble(emu, program, t)

	err := emu.Run(1000)
	assert.NoError(err)
	assert.Equal("3\n2\n1\n", output.String())
	assert.Equal(24, emu.Cpu.Pc)

	// Replay is identical.
	output.Reset()
	emu.Reset()
	err = emu.Run(1000)
	assert.NoError(err)
	assert.Equal("3\n2\n1\n", output.String())
}

func TestEmulatorLineNo(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(nil, nil)
	program := []string{
		"; comment",
		"print r0",
		"add r1, r0, r0",
	}

	output := doAssemble(emu, program, t)

	assert.Equal(2, emu.LineNo())
	assert.Equal(cpu.MakeCodePrint(0), emu.Code())

	done, err := emu.Tick()
	assert.NoError(err)
	assert.False(done)
	assert.Equal("0\n", output.String())

	for range 4 {
		assert.Equal(3, emu.LineNo())
		assert.Equal(4, emu.Here())
		done, err = emu.Tick()
		assert.NoError(err)
	}
	assert.True(done)
	assert.Equal(0, emu.LineNo())
}

func TestEmulatorRuntimeError(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(nil, nil)
	program := []string{
		"nop",
		"add r0, r1, r2",
		"print r1",
	}

	output := doAssemble(emu, program, t)

	err := emu.Run(100)
	assert.ErrorIs(err, cpu.ErrRegisterZero)

	var runtime *ErrRuntime
	if assert.True(errors.As(err, &runtime)) {
		assert.Equal(2, runtime.LineNo)
		assert.Equal(4, runtime.Pc)
	}

	// The fault is sticky.
	_, again := emu.Tick()
	assert.ErrorIs(again, cpu.ErrRegisterZero)
	assert.Equal("", output.String())
}

func TestEmulatorCycleLimit(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(nil, nil)
	program := []string{
		"loop: j loop",
	}

	doAssemble(emu, program, t)

	err := emu.Run(100)
	assert.ErrorIs(err, ErrCycleLimit)
	assert.ErrorIs(err, ErrCycles(100))
	assert.Equal(100, emu.Cpu.Cycles)
}

func TestEmulatorDefines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(nil, nil)

	defines := map[string]string{}
	for key, value := range emu.Defines() {
		defines[key] = value
	}

	assert.Equal("10000000", defines["CYCLE_LIMIT"])
	assert.Equal("1048576", defines["MEMORY_SIZE"])
	assert.Equal("4", defines["WORD_SIZE"])

	program := []string{
		".data",
		".space $(WORD_SIZE * 2)",
		".word 42",
		".text",
		"lw r1, $(WORD_SIZE * 2)(r0)",
		"print r1",
	}

	output := doAssemble(emu, program, t)

	err := emu.Run(0)
	assert.NoError(err)
	assert.Equal("42\n", output.String())
}

func TestEmulatorLoad(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(nil, nil)
	var output bytes.Buffer
	emu.Cpu.Output = &output

	prog := &cpu.Program{
		Opcodes: []cpu.Opcode{
			{LineNo: 1, Pc: 0, Code: cpu.MakeCodeI(cpu.OP_LW, 1, 0, 0)},
			{LineNo: 2, Pc: 4, Code: cpu.MakeCodePrint(1)},
		},
		Data: []byte{0, 0, 0, 9},
	}

	emu.Load(prog)
	assert.Equal(prog, emu.Program)

	err := emu.Run(0)
	assert.NoError(err)
	assert.Equal("9\n", output.String())
}

func TestEmulatorLoadImage(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(nil, nil)
	var output bytes.Buffer
	emu.Cpu.Output = &output

	code := []byte{
		0x88, 0x01, 0x00, 0x00, // lw r1, 0(r0)
		0x00, 0x20, 0x00, 0x00, // print r1
	}
	emu.LoadImage(code, []byte{0xff, 0xff, 0xff, 0xff})
	assert.Equal(0, len(emu.Program.Opcodes))
	assert.Equal(0, emu.LineNo())

	err := emu.Run(0)
	assert.NoError(err)
	assert.Equal("-1\n", output.String())
}
