package image

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/ezrec/mcdp/cpu"
)

// TEXT_EXT selects the text word list format.
const TEXT_EXT = ".mem"

// Image is a program image.
type Image struct {
	Code   []byte // Big-endian instruction stream.
	Memory []byte // Initial data memory, zero filled past the end.
}

// FromProgram creates an image from an assembled program.
func FromProgram(prog *cpu.Program) (img *Image) {
	img = &Image{
		Code:   prog.Binary(),
		Memory: prog.Data,
	}

	return
}

// readFile reads a binary or text image file.
func readFile(fsys fs.FS, name string) (data []byte, err error) {
	defer func() {
		if err != nil {
			err = &ErrFile{Name: name, Err: err}
		}
	}()

	if path.Ext(name) == TEXT_EXT {
		var file fs.File
		file, err = fsys.Open(name)
		if err != nil {
			return
		}
		defer file.Close()

		data, err = ParseWords(file)
		return
	}

	data, err = fs.ReadFile(fsys, name)

	return
}

// Load reads the code image, and the optional memory image, from a file system.
func Load(fsys fs.FS, code string, memory string) (img *Image, err error) {
	img = &Image{}

	img.Code, err = readFile(fsys, code)
	if err != nil {
		img = nil
		return
	}

	if len(img.Code)%cpu.WORD_SIZE != 0 {
		err = &ErrFile{Name: code, Err: ErrCodeAlign}
		img = nil
		return
	}

	if len(memory) == 0 {
		return
	}

	img.Memory, err = readFile(fsys, memory)
	if err != nil {
		img = nil
		return
	}

	if len(img.Memory) > cpu.MEMORY_SIZE {
		err = &ErrFile{Name: memory, Err: ErrMemorySize}
		img = nil
		return
	}

	return
}

// ParseWords reads a text word list. Words are decimal, or prefixed
// hexadecimal, octal or binary, and may be negative.
func ParseWords(input io.Reader) (data []byte, err error) {
	scanner := bufio.NewScanner(input)

	lineno := 0
	for scanner.Scan() {
		lineno++

		line, _, _ := strings.Cut(scanner.Text(), ";")
		line, _, _ = strings.Cut(line, "#")

		for _, word := range strings.Fields(line) {
			var value int64
			value, err = strconv.ParseInt(strings.ReplaceAll(word, "_", ""), 0, 64)
			if err != nil || value > 0xffffffff || value < -0x80000000 {
				err = &ErrParseWord{LineNo: lineno, Word: word}
				return
			}
			data = binary.BigEndian.AppendUint32(data, uint32(value))
		}
	}

	err = scanner.Err()

	return
}

// WriteCode writes the binary instruction stream.
func (img *Image) WriteCode(w io.Writer) (err error) {
	_, err = w.Write(img.Code)

	return
}

// WriteMemory writes the binary initial data memory.
func (img *Image) WriteMemory(w io.Writer) (err error) {
	_, err = w.Write(img.Memory)

	return
}

// WriteWords writes data as a text word list, one word to a line.
// A trailing partial word is zero filled.
func WriteWords(w io.Writer, data []byte) (err error) {
	bw := bufio.NewWriter(w)
	for n := 0; n < len(data); n += cpu.WORD_SIZE {
		var word [cpu.WORD_SIZE]byte
		copy(word[:], data[n:])
		_, err = fmt.Fprintf(bw, "0x%08x\n", binary.BigEndian.Uint32(word[:]))
		if err != nil {
			return
		}
	}

	err = bw.Flush()

	return
}

// Save writes the code image, and the memory image if memory is not
// empty, to a file system.
func (img *Image) Save(fsys CreateFS, code string, memory string) (err error) {
	err = save(fsys, code, img.Code)
	if err != nil {
		return
	}

	if len(memory) == 0 {
		return
	}

	err = save(fsys, memory, img.Memory)

	return
}

func save(fsys CreateFS, name string, data []byte) (err error) {
	defer func() {
		if err != nil {
			err = &ErrFile{Name: name, Err: err}
		}
	}()

	file, err := fsys.Create(name)
	if err != nil {
		return
	}

	if path.Ext(name) == TEXT_EXT {
		err = WriteWords(file, data)
	} else {
		_, err = file.Write(data)
	}
	if err != nil {
		file.Close()
		return
	}

	err = file.Close()

	return
}
