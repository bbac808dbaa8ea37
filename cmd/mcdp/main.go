// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ezrec/mcdp/emulator"
	"github.com/ezrec/mcdp/image"
	"github.com/ezrec/mcdp/internal"
	"github.com/ezrec/mcdp/translate"
)

var (
	errCompileCode   = errors.New(translate.From("-c and -code are exclusive"))
	errNoProgram     = errors.New(translate.From("one of -c or -code is required"))
	errCompileMemory = errors.New(translate.From("-mem requires -code, -c takes memory from .data"))
	errOutputMemory  = errors.New(translate.From("-om requires -o"))
)

// hostPath maps a host file name into the root file system.
func hostPath(name string) (fsys fs.FS, path string) {
	abs, err := filepath.Abs(name)
	if err != nil {
		log.Fatalf("%v: %v", name, err)
	}

	fsys = os.DirFS("/")
	path = strings.TrimPrefix(filepath.ToSlash(abs), "/")

	return
}

func main() {
	var compile string
	var code string
	var memory string
	var output string
	var outputMemory string
	var save bool
	var cycles int
	var verbose bool
	var single bool
	var listing bool
	var defines bool

	flag.StringVar(&compile, "c", "", ".s file to assemble")
	flag.StringVar(&code, "code", "", "Code image to load")
	flag.StringVar(&memory, "mem", "", "Memory image to load")
	flag.StringVar(&output, "o", "", "Write the code image to this file")
	flag.StringVar(&outputMemory, "om", "", "Write the memory image to this file")
	flag.BoolVar(&save, "s", false, "Save images only, do not execute")
	flag.IntVar(&cycles, "n", emulator.CYCLE_LIMIT, "Cycle limit, 0 for unlimited")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&single, "step", false, "Single step the datapath from the terminal")
	flag.BoolVar(&listing, "l", false, "Print the program listing")
	flag.BoolVar(&defines, "defines", false, "Print the assembler predefines")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	emu := emulator.NewEmulator(nil, nil)
	emu.Verbose = verbose

	if verbose {
		log.Printf("mcdp: messages in %v", translate.Language())
	}

	if defines {
		for key, value := range internal.Sorted2(emu.Defines()) {
			fmt.Printf(".equ %v %v\n", key, value)
		}
		return
	}

	err := checkFlags(compile, code, memory, output, outputMemory)
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	var img *image.Image

	switch {
	case len(compile) != 0:
		// Assemble a new instruction stream.
		inf, err := os.Open(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		prog, err := emu.Assemble(inf)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		img = image.FromProgram(prog)
	case len(code) != 0:
		fsys, name := hostPath(code)
		var mem string
		if len(memory) != 0 {
			_, mem = hostPath(memory)
		}

		img, err = image.Load(fsys, name, mem)
		if err != nil {
			log.Fatal(err)
		}
		emu.LoadImage(img.Code, img.Memory)
	}

	if listing {
		err = emu.Program.Listing(os.Stdout)
		if err != nil {
			log.Fatal(err)
		}
	}

	if len(output) != 0 {
		_, name := hostPath(output)
		var mem string
		if len(outputMemory) != 0 {
			_, mem = hostPath(outputMemory)
		}
		err = img.Save(image.DirFS("/"), name, mem)
		if err != nil {
			log.Fatal(err)
		}
	}

	if save {
		return
	}

	if single {
		err = step(emu, cycles)
	} else {
		err = emu.Run(cycles)
	}

	if verbose {
		log.Printf("mcdp: %v", stats(emu))
	}

	if err != nil {
		log.Fatal(err)
	}
}

// checkFlags rejects image flag combinations that would be ignored.
func checkFlags(compile, code, memory, output, outputMemory string) (err error) {
	switch {
	case len(compile) != 0 && len(code) != 0:
		err = errCompileCode
	case len(compile) == 0 && len(code) == 0:
		err = errNoProgram
	case len(compile) != 0 && len(memory) != 0:
		err = errCompileMemory
	case len(outputMemory) != 0 && len(output) == 0:
		err = errOutputMemory
	}

	return
}

// stats summarizes the cycle counts of a run.
func stats(emu *emulator.Emulator) string {
	cpi := 0.0
	if emu.Cpu.Instructions > 0 {
		cpi = float64(emu.Cpu.Cycles) / float64(emu.Cpu.Instructions)
	}

	return fmt.Sprintf("%d cycles, %d instructions, %.2f CPI", emu.Cpu.Cycles, emu.Cpu.Instructions, cpi)
}
