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

// Package emulation is the public façade over the hardware package. The
// Driver converts a caller-supplied time budget into whole emulated
// frames, injects input into the keyboard matrix, loads media and attaches
// the debugger.
package emulation

import (
	"io"

	"github.com/mdm/ronald/debugger"
	"github.com/mdm/ronald/disassembly"
	"github.com/mdm/ronald/hardware"
	"github.com/mdm/ronald/hardware/cpu/registers"
	"github.com/mdm/ronald/hardware/model"
	"github.com/mdm/ronald/hardware/screen"
)

// one frame is 20ms of emulated time: 5000 NOP units of 16 master clock
// ticks each.
const (
	FrameMicroseconds = 20_000
	frameNops         = 5000
)

// Driver is the emulation façade.
type Driver struct {
	system *hardware.System
	dbg    *debugger.Debugger

	// unspent microseconds carried between calls to Step
	budget int64
}

// NewDriver is the preferred method of initialisation for the Driver type.
// The terminal may be nil if the debugger is never activated.
func NewDriver(m model.Model, terminal debugger.Terminal) *Driver {
	return &Driver{
		system: hardware.NewSystem(m),
		dbg:    debugger.NewDebugger(terminal),
	}
}

// System exposes the assembled machine. Front-ends use it for direct
// access to chip state; the emulation loop itself should be driven only
// through Step.
func (drv *Driver) System() *hardware.System {
	return drv.system
}

// Step adds to the time budget and runs whole 20ms frames while the budget
// allows. The minimum unit of progress is one CPU instruction: the
// instruction that starts inside the budget completes, and its actual cost
// is counted.
func (drv *Driver) Step(microseconds int64, video screen.VideoSink, audio screen.AudioSink) {
	drv.budget += microseconds

	for drv.budget >= FrameMicroseconds {
		nops := 0
		for nops < frameNops {
			nops += drv.system.Step(video, audio)
			drv.dbg.PostInstruction(drv.system)
		}
		drv.budget -= FrameMicroseconds
	}
}

// PressKey marks a key of the matrix down. Line 9 carries the first
// joystick.
func (drv *Driver) PressKey(line int, bit uint8) {
	drv.system.Bus.Keyboard.Press(line, bit)
}

// ReleaseKey marks a key of the matrix up.
func (drv *Driver) ReleaseKey(line int, bit uint8) {
	drv.system.Bus.Keyboard.Release(line, bit)
}

// LoadDisk parses a DSK image into a drive. On error the drive remains
// empty.
func (drv *Driver) LoadDisk(drive int, data []uint8, name string) error {
	return drv.system.Bus.FDC.LoadDisk(drive, data, name)
}

// LoadLowerRom installs the operating-system ROM.
func (drv *Driver) LoadLowerRom(data []uint8) {
	drv.system.Mem.LoadLowerRom(data)
}

// LoadUpperRom installs an upper ROM in the numbered slot.
func (drv *Driver) LoadUpperRom(slot uint8, data []uint8) {
	drv.system.Mem.LoadUpperRom(slot, data)
}

// ActivateDebugger attaches the debugger. The shell is entered at the next
// instruction boundary.
func (drv *Driver) ActivateDebugger() {
	drv.dbg.Activate()
}

// Disassemble returns count instructions from the current program counter.
func (drv *Driver) Disassemble(count int) []disassembly.Entry {
	pc := drv.system.CPU.Registers.Read16(registers.PC)
	return disassembly.Disassemble(drv.system.Mem, pc, count)
}

// Snapshot writes a version-tagged dump of the machine state. The format
// is not stable across versions.
func (drv *Driver) Snapshot(w io.Writer) error {
	return drv.system.Snapshot(w)
}

// Restore reloads a machine state written by Snapshot.
func (drv *Driver) Restore(r io.Reader) error {
	return drv.system.Restore(r)
}
