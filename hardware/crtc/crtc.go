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

// Package crtc implements the HD6845S cathode-ray-tube controller. The
// controller is a set of raster counters advanced once per character column
// (sixteen master clock ticks); its outputs are the HSYNC, VSYNC and
// display-enable signals sampled by the gate array, and the refresh address
// from which pixels are fetched.
//
// The vertical-total-adjust register (R5) is not modelled: the character
// row counter wraps directly after R4.
package crtc

import (
	"fmt"

	"github.com/mdm/ronald/debug"
	"github.com/mdm/ronald/logger"
)

// The CRTC register names, following the HD6845 datasheet.
const (
	HorizontalTotal = iota
	HorizontalDisplayed
	HorizontalSyncPosition
	SyncWidths
	VerticalTotal
	VerticalTotalAdjust
	VerticalDisplayed
	VerticalSyncPosition
	InterlaceAndSkew
	MaximumRasterAddress
	CursorStartRaster
	CursorEndRaster
	DisplayStartAddressHigh
	DisplayStartAddressLow
	CursorAddressHigh
	CursorAddressLow
	LightPenAddressHigh
	LightPenAddressLow

	NumRegisters
)

// RegisterName returns a descriptive name for a CRTC register.
func RegisterName(register int) string {
	names := [...]string{
		"Horizontal Total", "Horizontal Displayed", "H. Sync Position",
		"H/V Sync Widths", "Vertical Total", "V. Total Adjust",
		"Vertical Displayed", "V. Sync Position", "Interlace/Skew",
		"Max Raster Address", "Cursor Start", "Cursor End",
		"Display Start High", "Display Start Low", "Cursor Address High",
		"Cursor Address Low", "Light Pen High", "Light Pen Low",
	}
	if register < 0 || register >= NumRegisters {
		return "invalid register"
	}
	return fmt.Sprintf("R%d (%s)", register, names[register])
}

// CRTC implements the raster-counter state machine.
type CRTC struct {
	registers        [NumRegisters]uint8
	selectedRegister int

	horizontal   uint8
	scanline     uint8
	characterRow uint8

	// latched at the top-left of the frame from R12/R13
	displayStart uint16

	// edge-detection shadows
	previousHSync   bool
	previousVSync   bool
	previousDisplay bool
}

// NewCRTC is the preferred method of initialisation for the CRTC type.
func NewCRTC() *CRTC {
	return &CRTC{}
}

// Write dispatches a write to one of the CRTC ports. The two low bits of
// the upper port byte select the function: 0 selects a register, 1 writes
// the selected register.
func (crt *CRTC) Write(port uint16, value uint8) {
	switch (port >> 8) & 0x03 {
	case 0:
		crt.selectRegister(int(value))
	case 1:
		crt.writeRegister(value)
	default:
		logger.Logf("crtc", "write to read-only function of port %04x", port)
	}
}

// Read dispatches a read of one of the CRTC ports. Only function 3 reads
// the selected register; the status register of function 2 is not
// implemented on the type 0 CRTC and reads as zero.
func (crt *CRTC) Read(port uint16) uint8 {
	switch (port >> 8) & 0x03 {
	case 2:
		return 0x00
	case 3:
		// only R14 to R17 are readable
		if crt.selectedRegister >= CursorAddressHigh && crt.selectedRegister < NumRegisters {
			return crt.registers[crt.selectedRegister]
		}
		return 0x00
	}

	logger.Logf("crtc", "read from write-only function of port %04x", port)
	return 0x00
}

func (crt *CRTC) selectRegister(register int) {
	crt.selectedRegister = register

	if debug.Active() {
		debug.Emit(debug.SourceCRTC, debug.CRTCRegisterSelected{Register: register})
	}
}

func (crt *CRTC) writeRegister(value uint8) {
	if crt.selectedRegister >= NumRegisters {
		logger.Logf("crtc", "write to nonexistent register %d", crt.selectedRegister)
		return
	}

	was := crt.registers[crt.selectedRegister]
	crt.registers[crt.selectedRegister] = value

	if debug.Active() {
		debug.Emit(debug.SourceCRTC, debug.CRTCRegisterWritten{
			Register: crt.selectedRegister,
			Is:       value,
			Was:      was,
		})
	}
}

// Register returns the current value of a CRTC register. Used by the
// debugger.
func (crt *CRTC) Register(register int) uint8 {
	return crt.registers[register]
}

// Step advances the counters by one character column and recomputes the
// sync and display outputs.
func (crt *CRTC) Step() {
	if debug.Active() {
		crt.emitCounterEvents()
	}

	crt.horizontal++
	if crt.horizontal > crt.registers[HorizontalTotal] {
		crt.horizontal = 0
		crt.scanline++
	}

	if crt.scanline > crt.registers[MaximumRasterAddress] {
		crt.scanline = 0
		crt.characterRow++
	}

	if crt.characterRow > crt.registers[VerticalTotal] {
		crt.characterRow = 0
	}

	if crt.horizontal == 0 && crt.characterRow == 0 {
		crt.displayStart = uint16(crt.registers[DisplayStartAddressHigh])<<8 |
			uint16(crt.registers[DisplayStartAddressLow])
	}

	if debug.Active() {
		crt.emitEdgeEvents()
	}
	crt.previousHSync = crt.HSync()
	crt.previousVSync = crt.VSync()
	crt.previousDisplay = crt.DisplayEnabled()
}

func (crt *CRTC) emitCounterEvents() {
	if crt.horizontal == 0 {
		debug.Emit(debug.SourceCRTC, debug.ScanlineStart{
			Scanline:     crt.scanline,
			CharacterRow: crt.characterRow,
		})
		if crt.scanline == 0 {
			debug.Emit(debug.SourceCRTC, debug.CharacterRowStart{Row: crt.characterRow})
			if crt.characterRow == 0 {
				debug.Emit(debug.SourceCRTC, debug.FrameStart{})
			}
		}
	}

	debug.Emit(debug.SourceCRTC, debug.CRTCCounters{
		Horizontal:   crt.horizontal,
		Scanline:     crt.scanline,
		CharacterRow: crt.characterRow,
	})
}

func (crt *CRTC) emitEdgeEvents() {
	if hsync := crt.HSync(); hsync != crt.previousHSync {
		debug.Emit(debug.SourceCRTC, debug.HSyncChanged{
			Active:       hsync,
			Horizontal:   crt.horizontal,
			CharacterRow: crt.characterRow,
			Scanline:     crt.scanline,
		})
	}

	if vsync := crt.VSync(); vsync != crt.previousVSync {
		debug.Emit(debug.SourceCRTC, debug.VSyncChanged{
			Active:       vsync,
			CharacterRow: crt.characterRow,
		})
	}

	if de := crt.DisplayEnabled(); de != crt.previousDisplay {
		debug.Emit(debug.SourceCRTC, debug.DisplayEnableChanged{
			Enabled:      de,
			Horizontal:   crt.horizontal,
			CharacterRow: crt.characterRow,
		})
	}
}

// HSync returns the state of the horizontal sync output. A programmed sync
// width of zero produces no sync at all.
func (crt *CRTC) HSync() bool {
	start := crt.registers[HorizontalSyncPosition]
	end := start + crt.registers[SyncWidths]&0x0f
	return crt.horizontal >= start && crt.horizontal < end
}

// VSync returns the state of the vertical sync output: a sixteen-scanline
// window opening when the character row counter reaches R7.
func (crt *CRTC) VSync() bool {
	rows := int(crt.characterRow) - int(crt.registers[VerticalSyncPosition])
	scanlines := (int(crt.registers[MaximumRasterAddress])+1)*rows + int(crt.scanline)
	return scanlines >= 0 && scanlines < 16
}

// DisplayEnabled returns the state of the display-enable output.
func (crt *CRTC) DisplayEnabled() bool {
	return crt.horizontal < crt.registers[HorizontalDisplayed] &&
		crt.characterRow < crt.registers[VerticalDisplayed]
}

// RefreshAddress composes the 14-bit video memory address for the current
// character column, producing the interleaved CPC video layout: the
// scanline counter supplies bits 11 to 13 and the base address is doubled
// for the two-byte fetch.
func (crt *CRTC) RefreshAddress() uint16 {
	base := crt.displayStart +
		uint16(crt.registers[HorizontalDisplayed])*uint16(crt.characterRow) +
		uint16(crt.horizontal)

	bits14and15 := (base & (0x03 << 12)) << 2
	bits11to13 := uint16(crt.scanline&0x07) << 11
	bits0to10 := (base & 0x03ff) << 1

	return bits14and15 | bits11to13 | bits0to10
}

// Counters returns the raw counter values. Used by the debugger.
func (crt *CRTC) Counters() (horizontal, scanline, characterRow uint8) {
	return crt.horizontal, crt.scanline, crt.characterRow
}

// State is a plain copy of the CRTC state, suitable for snapshotting.
type State struct {
	Registers        [NumRegisters]uint8
	SelectedRegister int
	Horizontal       uint8
	Scanline         uint8
	CharacterRow     uint8
	DisplayStart     uint16
	PreviousHSync    bool
	PreviousVSync    bool
	PreviousDisplay  bool
}

// State returns a copy of the CRTC state.
func (crt *CRTC) State() State {
	return State{
		Registers:        crt.registers,
		SelectedRegister: crt.selectedRegister,
		Horizontal:       crt.horizontal,
		Scanline:         crt.scanline,
		CharacterRow:     crt.characterRow,
		DisplayStart:     crt.displayStart,
		PreviousHSync:    crt.previousHSync,
		PreviousVSync:    crt.previousVSync,
		PreviousDisplay:  crt.previousDisplay,
	}
}

// SetState restores the CRTC from a copy taken with State().
func (crt *CRTC) SetState(state State) {
	crt.registers = state.Registers
	crt.selectedRegister = state.SelectedRegister
	crt.horizontal = state.Horizontal
	crt.scanline = state.Scanline
	crt.characterRow = state.CharacterRow
	crt.displayStart = state.DisplayStart
	crt.previousHSync = state.PreviousHSync
	crt.previousVSync = state.PreviousVSync
	crt.previousDisplay = state.PreviousDisplay
}
