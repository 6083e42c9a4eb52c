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

package debugger_test

import (
	"io"
	"strings"
	"testing"

	"github.com/mdm/ronald/debugger"
	"github.com/mdm/ronald/hardware"
	"github.com/mdm/ronald/hardware/cpu/registers"
	"github.com/mdm/ronald/hardware/model"
	"github.com/mdm/ronald/test"
)

// scriptedTerminal feeds a fixed sequence of commands to the shell and
// captures the output.
type scriptedTerminal struct {
	script []string
	output strings.Builder
}

func (term *scriptedTerminal) ReadLine(prompt string) (string, error) {
	if len(term.script) == 0 {
		return "", io.EOF
	}
	input := term.script[0]
	term.script = term.script[1:]
	return input, nil
}

func (term *scriptedTerminal) Write(p []byte) (int, error) {
	return term.output.Write(p)
}

// run steps the system with the debugger hook, the way the driver does.
func run(sys *hardware.System, dbg *debugger.Debugger, instructions int) {
	for i := 0; i < instructions; i++ {
		sys.Step(nil, nil)
		dbg.PostInstruction(sys)
	}
}

func TestBreakOnProgramCounter(t *testing.T) {
	sys := hardware.NewSystem(model.CPC464)

	// a run of nops and a jump back to the start
	sys.Mem.WriteByte(0x0010, 0xc3) // jp 0x0000
	sys.Mem.WriteWord(0x0011, 0x0000)

	term := &scriptedTerminal{script: []string{"break pc 0x0010", "run", "list", "run"}}
	dbg := debugger.NewDebugger(term)
	dbg.Activate()

	// the first PostInstruction enters the shell: the breakpoint is set
	// and the emulation resumed. the second entry must be at 0x0010
	run(sys, dbg, 20)

	test.ExpectSuccess(t, strings.Contains(term.output.String(), "PC = 0010"))
	test.ExpectSuccess(t, strings.Contains(term.output.String(), "jp #0000"))
}

func TestSingleStep(t *testing.T) {
	sys := hardware.NewSystem(model.CPC464)

	term := &scriptedTerminal{script: []string{"step", "step", "registers", "run"}}
	dbg := debugger.NewDebugger(term)
	dbg.Activate()

	run(sys, dbg, 10)

	// the shell was entered for the activation stop and after each step
	test.ExpectSuccess(t, strings.Contains(term.output.String(), "PC="))
}

func TestBreakOnMemoryWrite(t *testing.T) {
	sys := hardware.NewSystem(model.CPC464)

	// ld a,#42 / ld (#c000),a, then nops
	sys.Mem.WriteByte(0x0000, 0x3e)
	sys.Mem.WriteByte(0x0001, 0x42)
	sys.Mem.WriteByte(0x0002, 0x32)
	sys.Mem.WriteWord(0x0003, 0xc000)

	term := &scriptedTerminal{script: []string{"break mem 0xc000 w", "run", "registers", "run"}}
	dbg := debugger.NewDebugger(term)
	dbg.Activate()

	run(sys, dbg, 5)

	// at the halt the accumulator has been stored
	test.ExpectEquality(t, sys.Mem.ReadByte(0xc000), uint8(0x42))
	test.ExpectSuccess(t, strings.Contains(term.output.String(), "AF=42"))
}

func TestUnknownCommandReported(t *testing.T) {
	sys := hardware.NewSystem(model.CPC464)

	term := &scriptedTerminal{script: []string{"frobnicate", "run"}}
	dbg := debugger.NewDebugger(term)
	dbg.Activate()

	run(sys, dbg, 2)

	test.ExpectSuccess(t, strings.Contains(term.output.String(), "unknown command"))
}

func TestQuitDeactivates(t *testing.T) {
	sys := hardware.NewSystem(model.CPC464)

	term := &scriptedTerminal{script: []string{"quit"}}
	dbg := debugger.NewDebugger(term)
	dbg.Activate()
	test.ExpectSuccess(t, dbg.Active())

	run(sys, dbg, 2)
	test.ExpectFailure(t, dbg.Active())
}

func TestRegisterBreakpoint(t *testing.T) {
	sys := hardware.NewSystem(model.CPC464)

	// inc b repeated
	for addr := uint16(0); addr < 0x20; addr++ {
		sys.Mem.WriteByte(addr, 0x04)
	}

	term := &scriptedTerminal{script: []string{"break reg b 3", "run", "run"}}
	dbg := debugger.NewDebugger(term)
	dbg.Activate()

	run(sys, dbg, 10)

	test.ExpectEquality(t, sys.CPU.Registers.Read8(registers.B) >= 3, true)
}
