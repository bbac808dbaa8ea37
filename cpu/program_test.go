package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testProgram() *Program {
	return &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Pc: 0, Words: []string{"lw", "r1", "0(r0)"}, Code: MakeCodeI(OP_LW, 1, 0, 0)},
			{LineNo: 3, Pc: 4, Words: []string{"print", "r1"}, Code: MakeCodePrint(1)},
			{LineNo: 4, Pc: 8, Words: []string{"j", "done"}, Code: MakeCodeJ(12), LinkLabel: "done"},
		},
		Data: []byte{0, 0, 0, 7},
	}
}

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	op := prog.Debug(0)
	assert.NotNil(op)
	assert.Equal(1, op.LineNo)

	op = prog.Debug(4)
	assert.NotNil(op)
	assert.Equal(3, op.LineNo)

	op = prog.Debug(8)
	assert.NotNil(op)
	assert.Equal(4, op.LineNo)
	assert.Equal("done", op.LinkLabel)
}

func TestProgram_Debug_NotFound(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	assert.Nil(prog.Debug(2))
	assert.Nil(prog.Debug(12))
	assert.Nil(prog.Debug(-4))
}

func TestProgram_Debug_Sparse(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 2, Pc: 8, Code: MakeCodePrint(1)},
			{LineNo: 5, Pc: 0, Code: MakeCodePrint(2)},
		},
	}

	op := prog.Debug(0)
	if assert.NotNil(op) {
		assert.Equal(5, op.LineNo)
	}

	op = prog.Debug(8)
	if assert.NotNil(op) {
		assert.Equal(2, op.LineNo)
	}

	assert.Nil(prog.Debug(4))
}

func TestProgram_Debug_Assembled(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	lines := make([]string, 1000)
	for n := range lines {
		lines[n] = "print r1"
	}
	prog, err := asm.Parse(strings.NewReader(strings.Join(lines, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	for _, pc := range []int{0, 4, 3996} {
		op := prog.Debug(pc)
		if assert.NotNil(op, "%d", pc) {
			assert.Equal(pc, op.Pc)
			assert.Equal(pc/WORD_SIZE+1, op.LineNo)
		}
	}
	assert.Nil(prog.Debug(4000))
	assert.Nil(prog.Debug(5))
}

func TestProgram_Binary(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	assert.Equal([]byte{
		0x88, 0x01, 0x00, 0x00,
		0x00, 0x20, 0x00, 0x00,
		0x08, 0x00, 0x00, 0x03,
	}, prog.Binary())

	empty := &Program{}
	assert.Equal(0, len(empty.Binary()))
}

func TestProgram_Codes(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	var pcs []int
	for pc := range prog.Codes() {
		pcs = append(pcs, pc)
		if pc == 4 {
			break
		}
	}

	assert.Equal([]int{0, 4}, pcs)
}

func TestProgram_Listing(t *testing.T) {
	assert := assert.New(t)

	prog := testProgram()

	var sb strings.Builder
	err := prog.Listing(&sb)
	assert.NoError(err)

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	assert.Equal(3, len(lines))
	assert.True(strings.HasPrefix(lines[0], "0000: 88010000  lw r1, 0(r0)"), lines[0])
	assert.True(strings.HasSuffix(lines[0], "; 1"), lines[0])
	assert.True(strings.HasPrefix(lines[2], "0008: 08000003  j 0xc"), lines[2])
}
