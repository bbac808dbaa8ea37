// Package cpu implements the multi-cycle datapath and assembler for the mcdp system.
//
// The datapath consists of a program counter (PC), thirty-two 32-bit registers
// (r0 is hardwired to zero), an ALU with a zero flag, a 1MiB byte addressed data
// memory, and a control FSM that asserts the datapath signals for one micro-step
// per clock. Instructions are fetched from a separate read-only instruction stream.
//
// The assembler provides a small assembly language for the instruction set,
// supporting macros, labels, equates, data words, and compile-time expression
// evaluation.
package cpu
