package cpu

import (
	"encoding/binary"
	"errors"
)

const (
	MEMORY_SIZE = 1 << 20 // Data memory capacity in bytes.
	WORD_SIZE   = 4       // Bytes per word.
)

// Memory is the byte addressed data memory.
// Words are big-endian, and may start at any byte offset.
type Memory struct {
	data    []byte
	initial []byte
}

// NewMemory creates a data memory holding a copy of initial, zero filled
// to capacity. Bytes of initial past the capacity are dropped.
func NewMemory(initial []byte) (mem *Memory) {
	mem = &Memory{
		data:    make([]byte, MEMORY_SIZE),
		initial: make([]byte, MEMORY_SIZE),
	}

	copy(mem.initial, initial)
	copy(mem.data, mem.initial)

	return
}

// Reset restores the memory to the contents it was created with.
func (mem *Memory) Reset() {
	copy(mem.data, mem.initial)
}

// Size returns the capacity in bytes.
func (mem *Memory) Size() int {
	return len(mem.data)
}

// Bytes returns the working contents. The slice aliases the memory.
func (mem *Memory) Bytes() []byte {
	return mem.data
}

func (mem *Memory) check(addr int) (err error) {
	if addr < 0 || addr > len(mem.data)-WORD_SIZE {
		err = errors.Join(ErrMemoryAddress, ErrAddress(addr))
	}
	return
}

// ReadWord reads the word at [addr, addr+4).
func (mem *Memory) ReadWord(addr int) (value Word, err error) {
	err = mem.check(addr)
	if err != nil {
		return
	}

	value = Word(binary.BigEndian.Uint32(mem.data[addr:]))
	return
}

// WriteWord writes value to [addr, addr+4).
func (mem *Memory) WriteWord(addr int, value Word) (err error) {
	err = mem.check(addr)
	if err != nil {
		return
	}

	binary.BigEndian.PutUint32(mem.data[addr:], uint32(value))
	return
}
