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

package debug

import "fmt"

// Register8Written is emitted for every write to an 8-bit CPU register. The
// register is named by its conventional Z80 mnemonic ("A", "IXH", etc).
type Register8Written struct {
	Register string
	Is       uint8
	Was      uint8
}

func (ev Register8Written) String() string {
	return fmt.Sprintf("%s <- %02x (was %02x)", ev.Register, ev.Is, ev.Was)
}

// Register16Written is emitted for every write to a 16-bit CPU register or
// register pair. A write to an 8-bit half also emits this event for the
// synthesized pair.
type Register16Written struct {
	Register string
	Is       uint16
	Was      uint16
}

func (ev Register16Written) String() string {
	return fmt.Sprintf("%s <- %04x (was %04x)", ev.Register, ev.Is, ev.Was)
}

// InstructionDecoded is emitted once per fetch/execute cycle, before the
// instruction is executed.
type InstructionDecoded struct {
	Address  uint16
	Mnemonic string
}

func (ev InstructionDecoded) String() string {
	return fmt.Sprintf("%04x: %s", ev.Address, ev.Mnemonic)
}

// MemoryRead is emitted for every CPU read of the address space.
type MemoryRead struct {
	Address uint16
	Value   uint8
}

func (ev MemoryRead) String() string {
	return fmt.Sprintf("read %04x -> %02x", ev.Address, ev.Value)
}

// MemoryWritten is emitted for every CPU write to the address space. Writes
// always land in RAM regardless of ROM banking.
type MemoryWritten struct {
	Address uint16
	Is      uint8
	Was     uint8
}

func (ev MemoryWritten) String() string {
	return fmt.Sprintf("write %04x <- %02x (was %02x)", ev.Address, ev.Is, ev.Was)
}

// CRTCRegisterSelected is emitted when the CRTC register-select port is
// written.
type CRTCRegisterSelected struct {
	Register int
}

func (ev CRTCRegisterSelected) String() string {
	return fmt.Sprintf("R%d selected", ev.Register)
}

// CRTCRegisterWritten is emitted when the selected CRTC register is written.
type CRTCRegisterWritten struct {
	Register int
	Is       uint8
	Was      uint8
}

func (ev CRTCRegisterWritten) String() string {
	return fmt.Sprintf("R%d <- %02x (was %02x)", ev.Register, ev.Is, ev.Was)
}

// ScanlineStart is emitted when the CRTC horizontal counter wraps to zero.
type ScanlineStart struct {
	Scanline     uint8
	CharacterRow uint8
}

func (ev ScanlineStart) String() string {
	return fmt.Sprintf("scanline %d of row %d", ev.Scanline, ev.CharacterRow)
}

// CharacterRowStart is emitted at the first character tick of a character
// row.
type CharacterRowStart struct {
	Row uint8
}

func (ev CharacterRowStart) String() string {
	return fmt.Sprintf("character row %d", ev.Row)
}

// FrameStart is emitted at the first character tick of a frame.
type FrameStart struct{}

func (ev FrameStart) String() string {
	return "frame start"
}

// HSyncChanged is emitted on either edge of the CRTC HSYNC output.
type HSyncChanged struct {
	Active       bool
	Horizontal   uint8
	CharacterRow uint8
	Scanline     uint8
}

func (ev HSyncChanged) String() string {
	if ev.Active {
		return fmt.Sprintf("hsync start at hc=%d row=%d sl=%d", ev.Horizontal, ev.CharacterRow, ev.Scanline)
	}
	return fmt.Sprintf("hsync end at hc=%d row=%d sl=%d", ev.Horizontal, ev.CharacterRow, ev.Scanline)
}

// VSyncChanged is emitted on either edge of the CRTC VSYNC output.
type VSyncChanged struct {
	Active       bool
	CharacterRow uint8
}

func (ev VSyncChanged) String() string {
	if ev.Active {
		return fmt.Sprintf("vsync start at row %d", ev.CharacterRow)
	}
	return fmt.Sprintf("vsync end at row %d", ev.CharacterRow)
}

// DisplayEnableChanged is emitted on either edge of the CRTC display-enable
// output.
type DisplayEnableChanged struct {
	Enabled      bool
	Horizontal   uint8
	CharacterRow uint8
}

func (ev DisplayEnableChanged) String() string {
	return fmt.Sprintf("display enable %v at hc=%d row=%d", ev.Enabled, ev.Horizontal, ev.CharacterRow)
}

// CRTCCounters is emitted once per character tick while a counter breakpoint
// subscription is live. It carries the raw counter values.
type CRTCCounters struct {
	Horizontal   uint8
	Scanline     uint8
	CharacterRow uint8
}

func (ev CRTCCounters) String() string {
	return fmt.Sprintf("hc=%d sl=%d row=%d", ev.Horizontal, ev.Scanline, ev.CharacterRow)
}

// ScreenModeChanged is emitted when the gate array latches a new screen mode
// at HSYNC.
type ScreenModeChanged struct {
	Is  uint8
	Was uint8
}

func (ev ScreenModeChanged) String() string {
	return fmt.Sprintf("screen mode %d (was %d)", ev.Is, ev.Was)
}

// PenColourWritten is emitted when a hardware colour is assigned to a pen.
// Pen 16 is the border.
type PenColourWritten struct {
	Pen    int
	Colour uint8
}

func (ev PenColourWritten) String() string {
	if ev.Pen == 16 {
		return fmt.Sprintf("border <- colour %02x", ev.Colour)
	}
	return fmt.Sprintf("pen %d <- colour %02x", ev.Pen, ev.Colour)
}

// InterruptRaised is emitted when the gate array raises the periodic
// interrupt.
type InterruptRaised struct {
	Counter uint8
}

func (ev InterruptRaised) String() string {
	return fmt.Sprintf("interrupt raised (counter %d)", ev.Counter)
}

// InterruptAcknowledged is emitted when the CPU acknowledges the gate array
// interrupt.
type InterruptAcknowledged struct{}

func (ev InterruptAcknowledged) String() string {
	return "interrupt acknowledged"
}

// FDCCommand is emitted when the floppy disc controller begins executing a
// fully parameterised command.
type FDCCommand struct {
	Command    string
	Parameters []uint8
}

func (ev FDCCommand) String() string {
	return fmt.Sprintf("%s %v", ev.Command, ev.Parameters)
}

// FDCUnsupportedCommand is emitted when a decoded but unimplemented command
// is issued to the floppy disc controller.
type FDCUnsupportedCommand struct {
	Command string
}

func (ev FDCUnsupportedCommand) String() string {
	return fmt.Sprintf("unsupported command %s", ev.Command)
}

// PSGRegisterWritten is emitted for every PSG register write.
type PSGRegisterWritten struct {
	Register int
	Value    uint8
}

func (ev PSGRegisterWritten) String() string {
	return fmt.Sprintf("R%d <- %02x", ev.Register, ev.Value)
}

// IllegalPortAccess is emitted for reads and writes of unmapped I/O ports.
type IllegalPortAccess struct {
	Port  uint16
	Write bool
	Value uint8
}

func (ev IllegalPortAccess) String() string {
	if ev.Write {
		return fmt.Sprintf("write to unmapped port %04x <- %02x", ev.Port, ev.Value)
	}
	return fmt.Sprintf("read from unmapped port %04x", ev.Port)
}
