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

package registers_test

import (
	"testing"

	"github.com/mdm/ronald/debug"
	"github.com/mdm/ronald/hardware/cpu/registers"
	"github.com/mdm/ronald/test"
)

func TestPairAliasing(t *testing.T) {
	rf := registers.NewFile()

	rf.Write8(registers.H, 0x12)
	rf.Write8(registers.L, 0x34)
	test.ExpectEquality(t, rf.Read16(registers.HL), uint16(0x1234))

	rf.Write16(registers.BC, 0xabcd)
	test.ExpectEquality(t, rf.Read8(registers.B), uint8(0xab))
	test.ExpectEquality(t, rf.Read8(registers.C), uint8(0xcd))

	rf.Write16(registers.IX, 0x55aa)
	test.ExpectEquality(t, rf.Read8(registers.IXH), uint8(0x55))
	test.ExpectEquality(t, rf.Read8(registers.IXL), uint8(0xaa))
}

func TestFlags(t *testing.T) {
	rf := registers.NewFile()

	rf.SetFlag(registers.FlagC, true)
	rf.SetFlag(registers.FlagZ, true)
	test.ExpectEquality(t, rf.Read8(registers.F), uint8(0x41))

	rf.SetFlag(registers.FlagC, false)
	test.ExpectSuccess(t, rf.Flag(registers.FlagZ))
	test.ExpectFailure(t, rf.Flag(registers.FlagC))
}

func TestRefreshPreservesBit7(t *testing.T) {
	rf := registers.NewFile()

	rf.Write8(registers.R, 0xff)
	rf.IncrementR()
	test.ExpectEquality(t, rf.Read8(registers.R), uint8(0x80))

	rf.Write8(registers.R, 0x7f)
	rf.IncrementR()
	test.ExpectEquality(t, rf.Read8(registers.R), uint8(0x00))
}

func TestWriteEvents(t *testing.T) {
	sub := debug.NewSubscription(debug.SourceCPU)
	defer sub.Close()

	rf := registers.NewFile()
	rf.Write8(registers.A, 0x42)

	// a write to an 8-bit half names both the half and the synthesized
	// pair
	records := sub.Poll()
	test.ExpectEquality(t, len(records), 2)

	ev8, ok := records[0].Event.(debug.Register8Written)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, ev8.Register, "A")
	test.ExpectEquality(t, ev8.Is, uint8(0x42))

	ev16, ok := records[1].Event.(debug.Register16Written)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, ev16.Register, "AF")
	test.ExpectEquality(t, ev16.Is, uint16(0x4200))
}

func TestStateRoundTrip(t *testing.T) {
	rf := registers.NewFile()
	rf.Write16(registers.HL, 0x1234)
	rf.Write16(registers.SP, 0xc000)
	rf.ExchangeAF()
	rf.Write8(registers.A, 0x99)

	state := rf.State()

	other := registers.NewFile()
	other.SetState(state)
	test.ExpectEquality(t, other.Read16(registers.HL), uint16(0x1234))
	test.ExpectEquality(t, other.Read16(registers.SP), uint16(0xc000))
	test.ExpectEquality(t, other.Read8(registers.A), uint8(0x99))
}
