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

package ppi_test

import (
	"testing"

	"github.com/mdm/ronald/hardware/keyboard"
	"github.com/mdm/ronald/hardware/ppi"
	"github.com/mdm/ronald/hardware/psg"
	"github.com/mdm/ronald/test"
)

// the firmware's keyboard scan: select a PSG register through port A and
// port C, then read the matrix line back through port A.
func TestKeyboardScanSequence(t *testing.T) {
	pp := ppi.NewPPI()
	ay := psg.NewPSG()
	kb := keyboard.NewKeyboard()

	kb.Press(8, 3) // Q

	// select PSG register 14: latch 14 on port A, pulse the select
	// function on port C
	pp.Write(ay, kb, 0xf400, 14)
	pp.Write(ay, kb, 0xf600, 0xc0)
	pp.Write(ay, kb, 0xf600, 0x00)

	// select matrix line 8 and the read function
	pp.Write(ay, kb, 0xf600, 0x48)

	test.ExpectEquality(t, pp.Read(ay, 0xf400, false), uint8(0xf7))
}

func TestPortBStatus(t *testing.T) {
	pp := ppi.NewPPI()
	ay := psg.NewPSG()

	// manufacturer id 7 and the 50Hz strap are always present
	test.ExpectEquality(t, pp.Read(ay, 0xf500, false), uint8(0x1e))
	test.ExpectEquality(t, pp.Read(ay, 0xf500, true), uint8(0x1f))
}

func TestControlBitSetReset(t *testing.T) {
	pp := ppi.NewPPI()
	ay := psg.NewPSG()
	kb := keyboard.NewKeyboard()

	// set bit 3 of port C through the control port, then clear it
	pp.Write(ay, kb, 0xf700, 0x07)
	test.ExpectEquality(t, pp.Read(ay, 0xf600, false)&0x08, uint8(0x08))

	pp.Write(ay, kb, 0xf700, 0x06)
	test.ExpectEquality(t, pp.Read(ay, 0xf600, false)&0x08, uint8(0x00))
}
