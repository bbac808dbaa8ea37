package cpu

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// codeBytes encodes an instruction stream.
func codeBytes(codes ...Code) (text []byte) {
	for _, code := range codes {
		text = binary.BigEndian.AppendUint32(text, uint32(code))
	}
	return
}

// runCpu clocks the datapath until it finishes, faults, or reaches limit cycles.
func runCpu(cpu *Cpu, limit int) (err error) {
	for range limit {
		var running bool
		running, err = cpu.Clock()
		if err != nil || !running {
			return
		}
	}
	return
}

func subtractAndStore() *Cpu {
	return NewCpu(codeBytes(
		MakeCodeI(OP_LW, 1, 0, 0),
		MakeCodeI(OP_LW, 2, 0, 4),
		MakeCodeR(FUNCT_SUB, 3, 1, 2),
		MakeCodeI(OP_SW, 3, 0, 100),
	), []byte{0, 0, 0, 5, 0, 0, 0, 3})
}

func countdown(output *bytes.Buffer) (cpu *Cpu) {
	cpu = NewCpu(codeBytes(
		MakeCodeI(OP_LW, 1, 0, 0),     // 0: lw r1, 0(r0)
		MakeCodeI(OP_LW, 2, 0, 4),     // 4: lw r2, 4(r0)
		MakeCodePrint(1),              // 8: print r1
		MakeCodeR(FUNCT_SUB, 1, 1, 2), // 12: sub r1, r1, r2
		MakeCodeI(OP_BEQ, 0, 1, 1),    // 16: beq r1, r0, 1
		MakeCodeJ(8),                  // 20: j 8
	), []byte{0, 0, 0, 3, 0, 0, 0, 1})
	cpu.Output = output
	return
}

func TestCpuSubtractAndStore(t *testing.T) {
	assert := assert.New(t)

	cpu := subtractAndStore()

	err := runCpu(cpu, 100)
	assert.NoError(err)
	assert.True(cpu.Done())

	value, err := cpu.Memory.ReadWord(100)
	assert.NoError(err)
	assert.Equal(Word(2), value)

	assert.Equal(Word(5), cpu.Register.Get(1))
	assert.Equal(Word(3), cpu.Register.Get(2))
	assert.Equal(Word(2), cpu.Register.Get(3))
	assert.Equal(16, cpu.Pc)
	assert.Equal(18, cpu.Cycles)
	assert.Equal(4, cpu.Instructions)
}

func TestCpuLoadCycles(t *testing.T) {
	assert := assert.New(t)

	cpu := subtractAndStore()

	expected := []State{
		STATE_FETCH,
		STATE_DECODE,
		STATE_ITYPE_ADDRESS_COMPUTE,
		STATE_ITYPE_MEMORY_READ,
		STATE_ITYPE_READ_WRITEBACK,
	}

	for n, state := range expected {
		assert.Equal(state, cpu.Fsm.State(), n)
		running, err := cpu.Clock()
		assert.NoError(err)
		assert.True(running)
	}

	assert.Equal(Word(5), cpu.Register.Get(1))
	assert.Equal(STATE_FETCH, cpu.Fsm.State())
	assert.Equal(4, cpu.Pc)
}

func TestCpuCountdown(t *testing.T) {
	assert := assert.New(t)

	var output bytes.Buffer
	cpu := countdown(&output)

	err := runCpu(cpu, 1000)
	assert.NoError(err)
	assert.True(cpu.Done())
	assert.Equal("3\n2\n1\n", output.String())
	assert.Equal(24, cpu.Pc)
	assert.Equal(Word(0), cpu.Register.Get(1))
	assert.Equal(40, cpu.Cycles)
	assert.Equal(13, cpu.Instructions)
}

func TestCpuReset(t *testing.T) {
	assert := assert.New(t)

	var output bytes.Buffer
	cpu := countdown(&output)

	err := runCpu(cpu, 1000)
	assert.NoError(err)
	first := cpu.String()
	cycles := cpu.Cycles

	cpu.Reset()
	assert.Equal(0, cpu.Pc)
	assert.Equal(0, cpu.Cycles)
	assert.Equal(STATE_FETCH, cpu.Fsm.State())
	assert.Equal(Word(0), cpu.Register.Get(1))
	reset := cpu.String()

	cpu.Reset()
	assert.Equal(reset, cpu.String())

	output.Reset()
	err = runCpu(cpu, 1000)
	assert.NoError(err)
	assert.Equal("3\n2\n1\n", output.String())
	assert.Equal(first, cpu.String())
	assert.Equal(cycles, cpu.Cycles)
}

func TestCpuFinished(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(nil, nil)
	assert.True(cpu.Done())

	running, err := cpu.Clock()
	assert.NoError(err)
	assert.False(running)
	assert.Equal(0, cpu.Cycles)

	cpu = subtractAndStore()
	err = runCpu(cpu, 100)
	assert.NoError(err)

	running, err = cpu.Clock()
	assert.NoError(err)
	assert.False(running)
	assert.Equal(18, cpu.Cycles)
}

func TestCpuFault(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		text   []Code
		memory []byte
		err    error
		cycles int
	}){
		{"register_zero", []Code{MakeCodeR(FUNCT_ADD, 0, 1, 2)}, nil, ErrRegisterZero, 3},
		{"opcode", []Code{Code(0xfc00_0000)}, nil, ErrOpcodeInvalid, 1},
		{"funct", []Code{Code(0x0000_0001)}, nil, ErrAluFunct, 1},
		{"address", []Code{MakeCodeI(OP_LW, 1, 0, 0), MakeCodeI(OP_LW, 2, 1, 0)},
			[]byte{0x7f, 0xff, 0xff, 0xff}, ErrMemoryAddress, 8},
	}

	for _, entry := range table {
		cpu := NewCpu(codeBytes(entry.text...), entry.memory)

		err := runCpu(cpu, 100)
		assert.ErrorIs(err, entry.err, entry.name)
		assert.ErrorIs(err, ErrCode(0), entry.name)
		assert.Equal(entry.cycles, cpu.Cycles, entry.name)
		assert.Equal(err, cpu.Fault(), entry.name)

		// Sticky until reset.
		running, again := cpu.Clock()
		assert.False(running, entry.name)
		assert.Equal(err, again, entry.name)
		assert.Equal(entry.cycles, cpu.Cycles, entry.name)

		cpu.Reset()
		assert.NoError(cpu.Fault(), entry.name)
		err = runCpu(cpu, 100)
		assert.ErrorIs(err, entry.err, entry.name)
	}
}

type failWriter struct{}

var errFailWriter = errors.New("write failed")

func (failWriter) Write(p []byte) (int, error) {
	return 0, errFailWriter
}

func TestCpuPrint(t *testing.T) {
	assert := assert.New(t)

	var output bytes.Buffer
	cpu := NewCpu(codeBytes(MakeCodeI(OP_LW, 7, 0, 0), MakeCodePrint(7)), []byte{0xff, 0xff, 0xff, 0xfe})
	cpu.Output = &output

	err := runCpu(cpu, 100)
	assert.NoError(err)
	assert.Equal("-2\n", output.String())
	assert.Equal(6, cpu.Cycles)

	cpu.Reset()
	cpu.Output = failWriter{}
	err = runCpu(cpu, 100)
	assert.ErrorIs(err, ErrOutput)
	assert.ErrorIs(err, errFailWriter)
}

func TestCpuDefines(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(nil, nil)

	defines := map[string]string{}
	for key, value := range cpu.Defines() {
		defines[key] = value
	}

	assert.Equal("1048576", defines["MEMORY_SIZE"])
	assert.Equal("32", defines["REGISTER_COUNT"])
	assert.Equal("34", defines["OP_LW"])
	assert.Equal("42", defines["FUNCT_SLT"])
}
