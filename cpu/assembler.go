// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
}

// haltLabel links to the end of the instruction stream.
const haltLabel = ".end"

// Assembler is a single pass macro assembler for the datapath instruction set.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.
	Data    []byte   // Initial data memory, from the .data section.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of jump labels to PC values.
	Equate    map[string]string   // Map of equates. Data labels are equates of their offset.
	Macro     map[string](*Macro) // Map of macros.

	data       bool // Assembling into the .data section.
	expansions int  // Count of macro expansions, for unique @ labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// functMap maps R-type ALU mnemonics.
var functMap = map[string]CodeFunct{
	"add": FUNCT_ADD,
	"sub": FUNCT_SUB,
	"and": FUNCT_AND,
	"or":  FUNCT_OR,
	"nor": FUNCT_NOR,
	"slt": FUNCT_SLT,
}

// memoryMap maps load and store mnemonics.
var memoryMap = map[string]CodeOp{
	"lw": OP_LW,
	"sw": OP_SW,
}

// branchMap maps conditional branch mnemonics.
var branchMap = map[string]CodeOp{
	"beq": OP_BEQ,
	"bne": OP_BNE,
}

// resolve returns the equate value of a word, or the word itself.
func (asm *Assembler) resolve(word string) string {
	equate, ok := asm.Equate[word]
	if ok {
		return equate
	}
	return word
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if len(word) > 1 && word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(word[1 : len(word)-1])
		return
	}
	v64, err := strconv.ParseInt(word, 0, 33)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 > 0xffffffff || v64 < -int64(0x80000000) {
		err = ErrParseNumber(word)
		return
	}

	value = uint32(v64)

	if invert {
		value = ^value
	}

	return
}

// register returns the index of a register name.
func (asm *Assembler) register(word string) (reg int, err error) {
	word = asm.resolve(word)
	if word == "zero" {
		return
	}

	if !strings.HasPrefix(word, "r") {
		err = ErrParseRegister(word)
		return
	}

	reg, err = strconv.Atoi(word[1:])
	if err != nil || reg < 0 || reg >= REGISTER_COUNT {
		reg = 0
		err = ErrParseRegister(word)
		return
	}

	return
}

// immediate returns the value of an 8-bit immediate.
func (asm *Assembler) immediate(word string) (imm uint8, err error) {
	value, err := asm.valueOf(asm.resolve(word))
	if err != nil {
		return
	}

	if value > IMM_MASK {
		err = ErrImmediateRange
		return
	}

	imm = uint8(value)

	return
}

var reMemory = regexp.MustCompile(`^([^()]*)\(([^()]+)\)$`)

// memory parses an imm(rs) memory operand.
func (asm *Assembler) memory(word string) (rs int, imm uint8, err error) {
	match := reMemory.FindStringSubmatch(word)
	if match == nil {
		err = ErrOperandSyntax
		return
	}

	if len(match[1]) > 0 {
		imm, err = asm.immediate(match[1])
		if err != nil {
			return
		}
	}

	rs, err = asm.register(match[2])

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt(int(value32))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

// fields splits a line on blanks and commas.
func fields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}

var reCharacter = regexp.MustCompile(`'\\?[^']'`)
var reParen = regexp.MustCompile(`\$\(([^()]|\([^()]*\))*\)`)

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	words = fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		err = asm.defineLabel(label)
		if err != nil {
			return
		}
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansions++
		local := fmt.Sprintf("%v_%v_", name, asm.expansions)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// defineLabel binds a label to the current PC, or in the .data section
// to the current data offset.
func (asm *Assembler) defineLabel(label string) (err error) {
	_, ok := asm.Label[label]
	if ok {
		err = ErrLabelDuplicate
		return
	}

	if asm.data {
		_, ok = asm.Equate[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Equate[label] = fmt.Sprintf("%d", len(asm.Data))
		return
	}

	if asm.Label == nil {
		asm.Label = make(map[string]int, 16)
	}
	asm.Label[label] = asm.currentPc()

	return
}

// currentPc gets the current PC
func (asm *Assembler) currentPc() int {
	return len(asm.Opcode) * WORD_SIZE
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.Data = nil
	asm.data = false
	asm.expansions = 0
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("asm: %v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of jump and branch labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}

		lineno = op.LineNo
		line = strings.Join(op.Words, " ")

		label := op.LinkLabel
		pc, ok := asm.Label[label]
		if label == haltLabel {
			pc, ok = asm.currentPc(), true
		}
		if !ok {
			err = ErrLabelMissing(label)
			return
		}

		switch op.Code.Op() {
		case OP_J:
			op.Code |= MakeCodeJ(uint32(pc))
		case OP_BEQ, OP_BNE:
			offset := (pc - (op.Pc + WORD_SIZE)) / WORD_SIZE
			if offset < 0 || offset > int(IMM_MASK) {
				err = ErrTargetRange
				return
			}
			op.Code |= Code(offset)
		default:
			log.Fatalf("Unable to link label '%s' to line %d: %v", label, op.LineNo, op.Words)
		}
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
		Data:    slices.Clone(asm.Data),
	}

	return
}

// argCount verifies the number of arguments to a mnemonic.
func argCount(words []string, count int) (err error) {
	switch {
	case len(words) < count+1:
		err = ErrOpcodeMissing
	case len(words) > count+1:
		err = ErrOpcodeExtraArgs
	}

	return
}

// parseData evaluates a line of the .data section.
func (asm *Assembler) parseData(words []string) (err error) {
	switch words[0] {
	case ".word":
		if len(words) < 2 {
			err = ErrOpcodeMissing
			return
		}
		for _, word := range words[1:] {
			var value uint32
			value, err = asm.valueOf(word)
			if err != nil {
				return
			}
			asm.Data = binary.BigEndian.AppendUint32(asm.Data, value)
		}
	case ".space":
		err = argCount(words, 1)
		if err != nil {
			return
		}
		var size uint32
		size, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		if int64(len(asm.Data))+int64(size) > MEMORY_SIZE {
			err = ErrDataRange
			return
		}
		asm.Data = append(asm.Data, make([]byte, size)...)
	default:
		err = ErrSectionInvalid
		return
	}

	if len(asm.Data) > MEMORY_SIZE {
		err = ErrDataRange
		return
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var code Code
	var emit bool
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	switch words[0] {
	case ".text":
		err = argCount(words, 0)
		asm.data = false
		return
	case ".data":
		err = argCount(words, 0)
		asm.data = true
		return
	}

	if asm.data {
		err = asm.parseData(words)
		return
	}

	initial_words := slices.Clone(words)

	defer func() {
		if err != nil || !emit {
			return
		}
		opcode := Opcode{LineNo: lineno, Pc: asm.currentPc(), Words: initial_words, Code: code, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	// Alternate syntax substitutions
	switch {
	case len(words) == 1 && words[0] == "nop":
		// nop => beq r0 r0 0
		words = []string{"beq", "r0", "r0", "0"}
	case len(words) == 1 && words[0] == "halt":
		// halt => j <end of program>
		words = []string{"j", haltLabel}
	default:
		// unchanged
	}

	if funct, ok := functMap[words[0]]; ok {
		err = argCount(words, 3)
		if err != nil {
			return
		}
		var regs [3]int
		for n := range regs {
			regs[n], err = asm.register(words[1+n])
			if err != nil {
				return
			}
		}
		code = MakeCodeR(funct, regs[0], regs[1], regs[2])
		emit = true
		return
	}

	if op, ok := memoryMap[words[0]]; ok {
		err = argCount(words, 2)
		if err != nil {
			return
		}
		var rt, rs int
		var imm uint8
		rt, err = asm.register(words[1])
		if err != nil {
			return
		}
		rs, imm, err = asm.memory(words[2])
		if err != nil {
			return
		}
		code = MakeCodeI(op, rt, rs, imm)
		emit = true
		return
	}

	if op, ok := branchMap[words[0]]; ok {
		err = argCount(words, 3)
		if err != nil {
			return
		}
		var rs, rt int
		var imm uint8
		rs, err = asm.register(words[1])
		if err != nil {
			return
		}
		rt, err = asm.register(words[2])
		if err != nil {
			return
		}
		target := asm.resolve(words[3])
		if _, nerr := asm.valueOf(target); nerr != nil {
			label = target
		} else {
			imm, err = asm.immediate(target)
			if err != nil {
				return
			}
		}
		code = MakeCodeI(op, rt, rs, imm)
		emit = true
		return
	}

	switch words[0] {
	case "j":
		err = argCount(words, 1)
		if err != nil {
			return
		}
		target := asm.resolve(words[1])
		address, nerr := asm.valueOf(target)
		switch {
		case nerr != nil:
			label = target
			code = MakeCodeJ(0)
		case address%WORD_SIZE != 0:
			err = ErrTargetAlign
			return
		case address>>2 > TARGET_MASK:
			err = ErrTargetRange
			return
		default:
			code = MakeCodeJ(address)
		}
	case "print":
		err = argCount(words, 1)
		if err != nil {
			return
		}
		var rs int
		rs, err = asm.register(words[1])
		if err != nil {
			return
		}
		code = MakeCodePrint(rs)
	case ".word":
		err = argCount(words, 1)
		if err != nil {
			return
		}
		var value uint32
		value, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		code = Code(value)
	case ".space":
		err = ErrSectionInvalid
		return
	default:
		err = ErrInstructionInvalid
		return
	}

	emit = true

	return
}
