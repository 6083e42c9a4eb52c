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

// Package bus routes I/O port traffic to the peripherals and dispatches
// the master-clock tick.
//
// CPC port decoding is active low: a peripheral is addressed when its
// assigned address bit is clear, so a single OUT can reach several chips
// at once. The gate array listens on bit 15, the CRTC on bit 14, the
// ROM-select port on bit 13, the printer on bit 12, the PPI on bit 11 and
// the expansion peripherals (the disc controller among them) on bit 10.
//
// One Step() is one character column: sixteen master clock ticks. The CRTC
// advances first, then the gate array samples its outputs, then the PSG.
package bus

import (
	"github.com/mdm/ronald/debug"
	"github.com/mdm/ronald/hardware/crtc"
	"github.com/mdm/ronald/hardware/fdc"
	"github.com/mdm/ronald/hardware/gatearray"
	"github.com/mdm/ronald/hardware/keyboard"
	"github.com/mdm/ronald/hardware/memory"
	"github.com/mdm/ronald/hardware/ppi"
	"github.com/mdm/ronald/hardware/psg"
	"github.com/mdm/ronald/hardware/screen"
	"github.com/mdm/ronald/logger"
)

// TicksPerStep is the number of master clock ticks in one character
// column.
const TicksPerStep = 16

// Bus owns the peripherals and routes port traffic to them.
type Bus struct {
	CRTC      *crtc.CRTC
	GateArray *gatearray.GateArray
	PSG       *psg.PSG
	PPI       *ppi.PPI
	FDC       *fdc.FDC
	Keyboard  *keyboard.Keyboard
	Screen    *screen.Screen

	mem *memory.Memory
}

// NewBus is the preferred method of initialisation for the Bus type. The
// memory reference is needed for gate-array writes (ROM enables, RAM
// banking) and the pixel fetch.
func NewBus(mem *memory.Memory) *Bus {
	return &Bus{
		CRTC:      crtc.NewCRTC(),
		GateArray: gatearray.NewGateArray(),
		PSG:       psg.NewPSG(),
		PPI:       ppi.NewPPI(),
		FDC:       fdc.NewFDC(),
		Keyboard:  keyboard.NewKeyboard(),
		Screen:    screen.NewScreen(),
		mem:       mem,
	}
}

// fdcSelected returns true when the port addresses the disc controller
// group.
func fdcSelected(port uint16) bool {
	return port&0x0400 == 0 && port&0x0080 == 0
}

// WritePort routes an OUT instruction. Several peripherals can be
// addressed by one write.
func (bus *Bus) WritePort(port uint16, value uint8) {
	handled := false

	if port&0x8000 == 0 {
		bus.GateArray.Write(bus.mem, value)
		handled = true
	}

	if port&0x4000 == 0 {
		bus.CRTC.Write(port, value)
		handled = true
	}

	if port&0x2000 == 0 {
		bus.mem.SelectUpperRom(value)
		handled = true
	}

	if port&0x1000 == 0 {
		// printer port. there is no printer
		logger.Logf("bus", "printer write: %02x", value)
		handled = true
	}

	if port&0x0800 == 0 {
		bus.PPI.Write(bus.PSG, bus.Keyboard, port, value)
		handled = true
	}

	if fdcSelected(port) {
		if port&0x0100 == 0 {
			bus.FDC.Motor(value&0x01 != 0)
		} else if port&0x0001 != 0 {
			bus.FDC.WriteData(value)
		}
		handled = true
	}

	if !handled {
		logger.Logf("bus", "write to unmapped port %04x: %02x", port, value)
		if debug.Active() {
			debug.Emit(debug.SourceBus, debug.IllegalPortAccess{Port: port, Write: true, Value: value})
		}
	}
}

// ReadPort routes an IN instruction. Unmapped ports read as 0xff.
func (bus *Bus) ReadPort(port uint16) uint8 {
	if port&0x4000 == 0 {
		return bus.CRTC.Read(port)
	}

	if port&0x0800 == 0 {
		return bus.PPI.Read(bus.PSG, port, bus.CRTC.VSync())
	}

	if fdcSelected(port) && port&0x0100 != 0 {
		if port&0x0001 == 0 {
			return bus.FDC.ReadStatus()
		}
		return bus.FDC.ReadData()
	}

	logger.Logf("bus", "read from unmapped port %04x", port)
	if debug.Active() {
		debug.Emit(debug.SourceBus, debug.IllegalPortAccess{Port: port, Write: false})
	}
	return 0xff
}

// Step advances the peripherals by one character column and returns true
// when the gate array raises the periodic interrupt.
func (bus *Bus) Step(video screen.VideoSink, audio screen.AudioSink) bool {
	debug.AdvanceClock(TicksPerStep)

	bus.CRTC.Step()
	interrupt := bus.GateArray.Step(bus.CRTC, bus.mem, bus.Screen, video)
	bus.PSG.Step(audio)

	return interrupt
}

// AcknowledgeInterrupt forwards the CPU's interrupt acknowledge to the
// gate array.
func (bus *Bus) AcknowledgeInterrupt() {
	bus.GateArray.AcknowledgeInterrupt()
}
