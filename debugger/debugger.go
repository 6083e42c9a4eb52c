// This file is part of Ronald.
//
// Ronald is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Ronald is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Ronald.  If not, see <https://www.gnu.org/licenses/>.

// Package debugger implements typed breakpoints over the debug event log
// and an interactive command shell. The evaluator hooks into the emulation
// loop between CPU instructions: peripherals have pushed their events into
// the log by then, so a breakpoint on a CRTC counter is as natural as one
// on the program counter.
package debugger

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bradleyjkemp/memviz"
	"github.com/davecgh/go-spew/spew"
	"github.com/mdm/ronald/curated"
	"github.com/mdm/ronald/disassembly"
	"github.com/mdm/ronald/hardware"
	"github.com/mdm/ronald/logger"
)

// Error patterns for the debugger package.
const (
	UnknownCommand = "debugger: unknown command: %s"
	BadArgument    = "debugger: bad argument: %s"
)

// Terminal is the debugger's user interface. The colorterm sub-package
// provides the ANSI implementation; tests substitute a scripted one.
type Terminal interface {
	ReadLine(prompt string) (string, error)
	io.Writer
}

// Debugger evaluates breakpoints between CPU instructions and runs the
// command shell when one fires.
type Debugger struct {
	breakpoints *breakpoints
	terminal    Terminal

	active bool

	// number of instructions left to run before the shell is re-entered.
	// negative means free running
	stepCountdown int
}

// NewDebugger is the preferred method of initialisation for the Debugger
// type.
func NewDebugger(terminal Terminal) *Debugger {
	return &Debugger{
		terminal:      terminal,
		stepCountdown: -1,
	}
}

// Activate switches the debugger on. The event subscription begins at
// activation; the next instruction boundary enters the shell.
func (dbg *Debugger) Activate() {
	if dbg.active {
		return
	}
	dbg.active = true
	dbg.breakpoints = newBreakpoints()
	dbg.stepCountdown = 0
	logger.Log("debugger", "activated")
}

// Deactivate switches the debugger off and releases its event
// subscription.
func (dbg *Debugger) Deactivate() {
	if !dbg.active {
		return
	}
	dbg.active = false
	dbg.breakpoints.close()
	dbg.breakpoints = nil
}

// Active returns true while the debugger is attached.
func (dbg *Debugger) Active() bool {
	return dbg.active
}

// PostInstruction is the evaluator hook, called by the driver after every
// CPU instruction while the debugger is attached. It drains the event
// subscription and, on any trigger, halts the loop in the command shell.
func (dbg *Debugger) PostInstruction(sys *hardware.System) {
	if !dbg.active {
		return
	}

	dbg.breakpoints.prepare()
	dbg.breakpoints.evaluate()

	halt := dbg.breakpoints.anyTriggered()

	if dbg.stepCountdown > 0 {
		dbg.stepCountdown--
	}
	if dbg.stepCountdown == 0 {
		halt = true
	}

	if halt {
		dbg.shell(sys)
	}
}

// shell is the blocking command loop.
func (dbg *Debugger) shell(sys *hardware.System) {
	dbg.stepCountdown = -1

	// show where we are
	entries := disassembly.Disassemble(sys.Mem, sys.CPU.Registers.State().PC, 1)
	if len(entries) > 0 {
		fmt.Fprintf(dbg.terminal, "%04x: %s\n", entries[0].Address, entries[0].Mnemonic)
	}

	for {
		input, err := dbg.terminal.ReadLine("> ")
		if err != nil {
			// terminal gone; resume the emulation
			return
		}

		done, err := dbg.command(sys, input)
		if err != nil {
			fmt.Fprintf(dbg.terminal, "%v\n", err)
			continue
		}
		if done {
			return
		}
	}
}

// command parses and executes one shell command. Returns true when the
// emulation should resume.
func (dbg *Debugger) command(sys *hardware.System, input string) (bool, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "run", "continue", "c":
		return true, nil

	case "step", "s":
		count := 1
		if len(fields) > 1 {
			n, err := parseNumber(fields[1])
			if err != nil {
				return false, err
			}
			count = n
		}
		dbg.stepCountdown = count
		return true, nil

	case "break", "b":
		return false, dbg.addBreakpoint(fields[1:])

	case "clear":
		if len(fields) > 1 {
			id, err := parseNumber(fields[1])
			if err != nil {
				return false, err
			}
			if !dbg.breakpoints.remove(id) {
				return false, curated.Errorf(BadArgument, fields[1])
			}
			return false, nil
		}
		dbg.breakpoints.clear()
		return false, nil

	case "list", "l":
		io.WriteString(dbg.terminal, dbg.breakpoints.list())
		return false, nil

	case "registers", "reg", "r":
		fmt.Fprintf(dbg.terminal, "%v\n", sys.CPU)
		return false, nil

	case "state":
		return false, dbg.state(sys, fields[1:])

	case "disasm", "dis", "d":
		count := 10
		if len(fields) > 1 {
			n, err := parseNumber(fields[1])
			if err != nil {
				return false, err
			}
			count = n
		}
		for _, entry := range disassembly.Disassemble(sys.Mem, sys.CPU.Registers.State().PC, count) {
			fmt.Fprintf(dbg.terminal, "%04x: %s\n", entry.Address, entry.Mnemonic)
		}
		return false, nil

	case "log":
		logger.Tail(dbg.terminal, 20)
		return false, nil

	case "viz":
		if len(fields) < 2 {
			return false, curated.Errorf(BadArgument, "viz needs a filename")
		}
		return false, dbg.visualise(sys, fields[1])

	case "quit", "q":
		dbg.Deactivate()
		return true, nil
	}

	return false, curated.Errorf(UnknownCommand, fields[0])
}

// addBreakpoint parses the BREAK command forms:
//
//	break pc <addr>
//	break reg <name> [value]
//	break mem <addr> [r|w|rw] [value]
//	break crtc <register>
//	break counter <hc|sl|row> <value>
//	break hsync|vsync [start|end]
//	break mode [n]
//	break pen [n]
//	break interrupt
func (dbg *Debugger) addBreakpoint(fields []string) error {
	if len(fields) == 0 {
		return curated.Errorf(BadArgument, "break needs a target")
	}

	switch fields[0] {
	case "pc":
		if len(fields) < 2 {
			return curated.Errorf(BadArgument, "break pc needs an address")
		}
		addr, err := parseNumber(fields[1])
		if err != nil {
			return err
		}
		dbg.breakpoints.add(&register16Breakpoint{common: newCommon(), register: "PC", value: addr})

	case "reg":
		if len(fields) < 2 {
			return curated.Errorf(BadArgument, "break reg needs a register")
		}
		name := strings.ToUpper(fields[1])
		value := -1
		if len(fields) > 2 {
			n, err := parseNumber(fields[2])
			if err != nil {
				return err
			}
			value = n
		}
		if len(name) > 1 && name != "IXH" && name != "IXL" && name != "IYH" && name != "IYL" {
			dbg.breakpoints.add(&register16Breakpoint{common: newCommon(), register: name, value: value})
		} else {
			dbg.breakpoints.add(&register8Breakpoint{common: newCommon(), register: name, value: value})
		}

	case "mem":
		if len(fields) < 2 {
			return curated.Errorf(BadArgument, "break mem needs an address")
		}
		addr, err := parseNumber(fields[1])
		if err != nil {
			return err
		}
		bk := &memoryBreakpoint{common: newCommon(), address: uint16(addr), onRead: true, onWrite: true, value: -1}
		rest := fields[2:]
		if len(rest) > 0 {
			switch rest[0] {
			case "r":
				bk.onWrite = false
				rest = rest[1:]
			case "w":
				bk.onRead = false
				rest = rest[1:]
			case "rw":
				rest = rest[1:]
			}
		}
		if len(rest) > 0 {
			value, err := parseNumber(rest[0])
			if err != nil {
				return err
			}
			bk.value = value
		}
		dbg.breakpoints.add(bk)

	case "crtc":
		if len(fields) < 2 {
			return curated.Errorf(BadArgument, "break crtc needs a register number")
		}
		register, err := parseNumber(strings.TrimPrefix(fields[1], "r"))
		if err != nil {
			return err
		}
		dbg.breakpoints.add(&crtcRegisterBreakpoint{common: newCommon(), register: register})

	case "counter":
		if len(fields) < 3 {
			return curated.Errorf(BadArgument, "break counter needs a counter and a value")
		}
		value, err := parseNumber(fields[2])
		if err != nil {
			return err
		}
		dbg.breakpoints.add(&crtcCounterBreakpoint{common: newCommon(), counter: fields[1], value: uint8(value)})

	case "hsync", "vsync":
		bk := &syncEdgeBreakpoint{common: newCommon(), vertical: fields[0] == "vsync", rising: true}
		if len(fields) > 1 && fields[1] == "end" {
			bk.rising = false
		}
		dbg.breakpoints.add(bk)

	case "mode":
		mode := -1
		if len(fields) > 1 {
			n, err := parseNumber(fields[1])
			if err != nil {
				return err
			}
			mode = n
		}
		dbg.breakpoints.add(&screenModeBreakpoint{common: newCommon(), mode: mode})

	case "pen":
		pen := -1
		if len(fields) > 1 {
			n, err := parseNumber(fields[1])
			if err != nil {
				return err
			}
			pen = n
		}
		dbg.breakpoints.add(&penColourBreakpoint{common: newCommon(), pen: pen})

	case "interrupt":
		dbg.breakpoints.add(&interruptBreakpoint{common: newCommon()})

	default:
		return curated.Errorf(BadArgument, fields[0])
	}

	return nil
}

// state dumps a chip's state with spew.
func (dbg *Debugger) state(sys *hardware.System, fields []string) error {
	if len(fields) == 0 {
		return curated.Errorf(BadArgument, "state needs a chip: cpu, crtc, ga, psg, ppi, fdc, keyboard")
	}

	var v interface{}
	switch fields[0] {
	case "cpu":
		v = sys.CPU.State()
	case "crtc":
		v = sys.Bus.CRTC.State()
	case "ga":
		v = sys.Bus.GateArray.State()
	case "psg":
		v = sys.Bus.PSG.State()
	case "ppi":
		v = sys.Bus.PPI.State()
	case "fdc":
		v = sys.Bus.FDC.State()
	case "keyboard":
		v = sys.Bus.Keyboard.State()
	default:
		return curated.Errorf(BadArgument, fields[0])
	}

	io.WriteString(dbg.terminal, spew.Sdump(v))
	return nil
}

// visualise writes a graphviz dot rendering of the machine struct graph.
func (dbg *Debugger) visualise(sys *hardware.System, filename string) error {
	buffer := &strings.Builder{}
	memviz.Map(buffer, sys)

	if err := writeFile(filename, buffer.String()); err != nil {
		return curated.Errorf("debugger: viz: %v", err)
	}
	fmt.Fprintf(dbg.terminal, "written %s\n", filename)
	return nil
}

// parseNumber accepts decimal or hexadecimal (0x prefixed) numbers.
func parseNumber(s string) (int, error) {
	base := 10
	if strings.HasPrefix(s, "0x") {
		s = s[2:]
		base = 16
	}
	n, err := strconv.ParseInt(s, base, 32)
	if err != nil {
		return 0, curated.Errorf(BadArgument, s)
	}
	return int(n), nil
}
