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

// Package gatearray implements the 40007/40010 gate array: screen-mode
// decoding, the pen palette, ROM enables and the periodic interrupt
// counter.
//
// A port write is dispatched on the top two bits of the data byte: pen
// select, pen colour, mode/ROM/interrupt control, and RAM banking (6128
// only). The interrupt counter raises an interrupt every 52 HSYNCs and is
// resynchronised to the frame two HSYNCs after VSYNC.
package gatearray

import (
	"github.com/mdm/ronald/debug"
	"github.com/mdm/ronald/hardware/crtc"
	"github.com/mdm/ronald/hardware/memory"
	"github.com/mdm/ronald/hardware/screen"
	"github.com/mdm/ronald/logger"
)

const numPens = 17 // 16 ink pens plus the border

const borderPen = 0x10

// GateArray composites pixels and generates the periodic interrupt.
type GateArray struct {
	currentMode   uint8
	requestedMode uint8

	// shadows of the CRTC sync outputs from the previous character tick,
	// for edge detection
	hsyncActive bool
	vsyncActive bool

	hsyncsSinceVSync uint8
	interruptCounter uint8
	holdInterrupt    bool

	selectedPen int
	penColours  [numPens]uint8
}

// NewGateArray is the preferred method of initialisation for the GateArray
// type.
func NewGateArray() *GateArray {
	return &GateArray{}
}

// Write dispatches a gate-array port write on the top two bits of the data
// byte.
func (ga *GateArray) Write(mem *memory.Memory, value uint8) {
	switch (value >> 6) & 0x03 {
	case 0:
		if value&0x10 == 0 {
			ga.selectedPen = int(value & 0x0f)
		} else {
			ga.selectedPen = borderPen
		}

	case 1:
		ga.penColours[ga.selectedPen] = value & 0x1f
		if debug.Active() {
			debug.Emit(debug.SourceGateArray, debug.PenColourWritten{
				Pen:    ga.selectedPen,
				Colour: value & 0x1f,
			})
		}

	case 2:
		ga.requestedMode = value & 0x03
		mem.EnableLowerRom(value&0x04 == 0)
		mem.EnableUpperRom(value&0x08 == 0)
		if value&0x10 != 0 {
			ga.interruptCounter = 0
		}

	case 3:
		// RAM banking. only the 6128 has the expansion gate array
		if err := mem.SelectRAMConfig(value & 0x07); err != nil {
			logger.Logf("gate array", "ram banking rejected: %v", err)
		}
	}
}

// AcknowledgeInterrupt is the CPU's interrupt acknowledge: the top bit of
// the six-bit counter is cleared, folding the count back into 0 to 31.
func (ga *GateArray) AcknowledgeInterrupt() {
	ga.interruptCounter &= 0x1f
	if debug.Active() {
		debug.Emit(debug.SourceGateArray, debug.InterruptAcknowledged{})
	}
}

// Step samples the CRTC outputs for one character tick: the interrupt
// counter advances on HSYNC edges, the screen mode latches, and pixels are
// emitted. Returns true when the periodic interrupt fires.
func (ga *GateArray) Step(crt *crtc.CRTC, mem *memory.Memory, scr *screen.Screen, video screen.VideoSink) bool {
	interrupt := ga.updateInterruptCounter(crt)
	ga.updateScreenMode(crt)
	ga.writePixels(crt, mem, scr, video)

	ga.hsyncActive = crt.HSync()
	ga.vsyncActive = crt.VSync()

	return interrupt
}

func (ga *GateArray) updateInterruptCounter(crt *crtc.CRTC) bool {
	interrupt := false

	// hsync falling edge
	if ga.hsyncActive && !crt.HSync() {
		ga.interruptCounter++
		ga.hsyncsSinceVSync++

		if ga.interruptCounter == 52 {
			ga.interruptCounter = 0
			interrupt = true
		}
	}

	// vsync rising edge
	if !ga.vsyncActive && crt.VSync() {
		ga.hsyncsSinceVSync = 0
		ga.holdInterrupt = true
	}

	// two hsyncs after vsync the counter phase is resolved to the frame
	if ga.holdInterrupt && ga.hsyncsSinceVSync == 2 {
		interrupt = ga.interruptCounter&0x20 == 0
		ga.interruptCounter = 0
		ga.holdInterrupt = false
	}

	if interrupt && debug.Active() {
		debug.Emit(debug.SourceGateArray, debug.InterruptRaised{Counter: ga.interruptCounter})
	}

	return interrupt
}

func (ga *GateArray) updateScreenMode(crt *crtc.CRTC) {
	// the requested mode becomes current at the hsync rising edge
	if !ga.hsyncActive && crt.HSync() {
		if ga.currentMode != ga.requestedMode && debug.Active() {
			debug.Emit(debug.SourceGateArray, debug.ScreenModeChanged{
				Is:  ga.requestedMode,
				Was: ga.currentMode,
			})
		}
		ga.currentMode = ga.requestedMode
	}
}

func (ga *GateArray) writePixels(crt *crtc.CRTC, mem *memory.Memory, scr *screen.Screen, video screen.VideoSink) {
	if !ga.vsyncActive && crt.VSync() {
		scr.TriggerVSync(video)
	}

	if crt.HSync() || crt.VSync() {
		for i := 0; i < 16; i++ {
			scr.Write(video, ga.penColours[borderPen])
		}
		return
	}

	if !crt.DisplayEnabled() {
		for i := 0; i < 16; i++ {
			scr.Write(video, ga.penColours[borderPen])
		}
		return
	}

	// two bytes per character column
	for offset := uint16(0); offset < 2; offset++ {
		packed := mem.ReadVideo(crt.RefreshAddress() + offset)

		switch ga.currentMode {
		case 1:
			// 4 pixels per byte, 4 colours
			pixels := [4]uint8{
				(packed&0x80)>>7 | (packed&0x08)>>2,
				(packed&0x40)>>6 | (packed&0x04)>>1,
				(packed&0x20)>>5 | packed&0x02,
				(packed&0x10)>>4 | (packed&0x01)<<1,
			}
			for _, pixel := range pixels {
				colour := ga.penColours[pixel]
				scr.Write(video, colour)
				scr.Write(video, colour)
			}

		case 2:
			// 8 pixels per byte, 2 colours
			for bit := 7; bit >= 0; bit-- {
				scr.Write(video, ga.penColours[(packed>>bit)&0x01])
			}

		default:
			// 2 pixels per byte, 16 colours. mode 3 behaves as mode 0
			pixels := [2]uint8{
				(packed&0x80)>>7 | (packed&0x08)>>2 | (packed&0x20)>>3 | (packed&0x02)<<2,
				(packed&0x40)>>6 | (packed&0x04)>>1 | (packed&0x10)>>2 | (packed&0x01)<<3,
			}
			for _, pixel := range pixels {
				colour := ga.penColours[pixel]
				for i := 0; i < 4; i++ {
					scr.Write(video, colour)
				}
			}
		}
	}
}

// CurrentMode returns the screen mode in effect.
func (ga *GateArray) CurrentMode() uint8 {
	return ga.currentMode
}

// PenColour returns the hardware colour assigned to a pen. Pen 16 is the
// border.
func (ga *GateArray) PenColour(pen int) uint8 {
	return ga.penColours[pen]
}

// InterruptCounter returns the current value of the six-bit interrupt
// counter. Used by the debugger.
func (ga *GateArray) InterruptCounter() uint8 {
	return ga.interruptCounter
}

// State is a plain copy of the gate-array state, suitable for
// snapshotting.
type State struct {
	CurrentMode      uint8
	RequestedMode    uint8
	HSyncActive      bool
	VSyncActive      bool
	HSyncsSinceVSync uint8
	InterruptCounter uint8
	HoldInterrupt    bool
	SelectedPen      int
	PenColours       [numPens]uint8
}

// State returns a copy of the gate-array state.
func (ga *GateArray) State() State {
	return State{
		CurrentMode:      ga.currentMode,
		RequestedMode:    ga.requestedMode,
		HSyncActive:      ga.hsyncActive,
		VSyncActive:      ga.vsyncActive,
		HSyncsSinceVSync: ga.hsyncsSinceVSync,
		InterruptCounter: ga.interruptCounter,
		HoldInterrupt:    ga.holdInterrupt,
		SelectedPen:      ga.selectedPen,
		PenColours:       ga.penColours,
	}
}

// SetState restores the gate array from a copy taken with State().
func (ga *GateArray) SetState(state State) {
	ga.currentMode = state.CurrentMode
	ga.requestedMode = state.RequestedMode
	ga.hsyncActive = state.HSyncActive
	ga.vsyncActive = state.VSyncActive
	ga.hsyncsSinceVSync = state.HSyncsSinceVSync
	ga.interruptCounter = state.InterruptCounter
	ga.holdInterrupt = state.HoldInterrupt
	ga.selectedPen = state.SelectedPen
	ga.penColours = state.PenColours
}
