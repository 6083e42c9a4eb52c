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

// Package ppi implements the 8255 parallel peripheral interface as wired in
// the CPC: port A is the data path to the PSG, port B carries machine
// status (VSYNC, manufacturer id, the 50Hz refresh strap), and port C
// selects the keyboard line and drives the PSG function code. The tape
// motor and cassette write bits of port C are stored but drive nothing.
package ppi

import (
	"github.com/mdm/ronald/hardware/keyboard"
	"github.com/mdm/ronald/hardware/psg"
	"github.com/mdm/ronald/logger"
)

// PPI is the 8255 glue between the bus, the PSG and the keyboard.
type PPI struct {
	portA   uint8
	portC   uint8
	control uint8

	// port A direction: true when the CPU reads from the PSG
	portAInput bool
}

// NewPPI is the preferred method of initialisation for the PPI type.
func NewPPI() *PPI {
	return &PPI{}
}

// Read dispatches a read of one of the PPI ports. The vsync argument is
// folded into port B bit 0.
func (pp *PPI) Read(ay *psg.PSG, port uint16, vsync bool) uint8 {
	switch (port >> 8) & 0x03 {
	case 0:
		if pp.portAInput {
			return ay.ReadByte()
		}
		return pp.portA

	case 1:
		// bit 0: vsync. bits 1 to 3: manufacturer id (7, Amstrad).
		// bit 4: 50Hz refresh strap. bits 5 to 7: expansion, printer
		// busy and tape read, all idle
		value := uint8(7)<<1 | 1<<4
		if vsync {
			value |= 0x01
		}
		return value

	case 2:
		return pp.portC
	}

	logger.Logf("ppi", "read from control port")
	return 0xff
}

// Write dispatches a write to one of the PPI ports.
func (pp *PPI) Write(ay *psg.PSG, kb *keyboard.Keyboard, port uint16, value uint8) {
	switch (port >> 8) & 0x03 {
	case 0:
		pp.portA = value
		ay.WriteByte(value)

	case 1:
		// port B is input on the CPC; a write has no effect
		logger.Logf("ppi", "write to input port B: %02x", value)

	case 2:
		pp.writePortC(ay, kb, value)

	case 3:
		pp.writeControl(ay, kb, value)
	}
}

func (pp *PPI) writePortC(ay *psg.PSG, kb *keyboard.Keyboard, value uint8) {
	pp.portC = value

	// bits 0 to 3 select the keyboard matrix line
	kb.SelectLine(int(value & 0x0f))

	// bits 6 and 7 form the PSG function code (BC1 and BDIR)
	function := value >> 6
	pp.portAInput = function == psg.FuncRead
	ay.PerformFunction(kb, function)
}

func (pp *PPI) writeControl(ay *psg.PSG, kb *keyboard.Keyboard, value uint8) {
	if value&0x80 != 0 {
		// mode set. the CPC firmware only ever programs mode 0
		pp.control = value
		return
	}

	// bit set/reset of a single port C bit
	bit := (value >> 1) & 0x07
	if value&0x01 != 0 {
		pp.writePortC(ay, kb, pp.portC|1<<bit)
	} else {
		pp.writePortC(ay, kb, pp.portC&^(1<<bit))
	}
}

// State is a plain copy of the PPI state, suitable for snapshotting.
type State struct {
	PortA      uint8
	PortC      uint8
	Control    uint8
	PortAInput bool
}

// State returns a copy of the PPI state.
func (pp *PPI) State() State {
	return State{
		PortA:      pp.portA,
		PortC:      pp.portC,
		Control:    pp.control,
		PortAInput: pp.portAInput,
	}
}

// SetState restores the PPI from a copy taken with State().
func (pp *PPI) SetState(state State) {
	pp.portA = state.PortA
	pp.portC = state.PortC
	pp.control = state.Control
	pp.portAInput = state.PortAInput
}
