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

package disassembly_test

import (
	"testing"

	"github.com/mdm/ronald/disassembly"
	"github.com/mdm/ronald/test"
)

type flatMem []uint8

func (mem flatMem) ReadByte(address uint16) uint8 {
	return mem[address]
}

func (mem flatMem) ReadWord(address uint16) uint16 {
	return uint16(mem[address]) | uint16(mem[address+1])<<8
}

func (mem flatMem) WriteByte(address uint16, value uint8)  {}
func (mem flatMem) WriteWord(address uint16, value uint16) {}

func TestDisassemble(t *testing.T) {
	mem := make(flatMem, 0x10000)
	copy(mem, []uint8{
		0x00,             // nop
		0x21, 0x00, 0xc0, // ld hl,#c000
		0x3e, 0x2a, // ld a,#2a
		0x77,       // ld (hl),a
		0x18, 0xfe, // jr (to itself)
		0xdd, 0x7e, 0x05, // ld a,(ix+#05)
		0xcb, 0xc7, // set 0,a
		0xed, 0xb0, // ldir
	})

	entries := disassembly.Disassemble(mem, 0x0000, 8)
	test.ExpectEquality(t, len(entries), 8)

	expected := []string{
		"nop",
		"ld hl,#c000",
		"ld a,#2a",
		"ld (hl),a",
		"jr #0007",
		"ld a,(ix+#05)",
		"set 0,a",
		"ldir",
	}
	for i, entry := range entries {
		test.ExpectEquality(t, entry.Mnemonic, expected[i])
	}

	// addresses advance by instruction length
	test.ExpectEquality(t, entries[1].Address, uint16(0x0001))
	test.ExpectEquality(t, entries[4].Address, uint16(0x0007))
}

func TestDisassembleInvalidBytes(t *testing.T) {
	mem := make(flatMem, 0x10000)

	// a lone DD prefix before an instruction with no HL reference
	copy(mem, []uint8{0xdd, 0x04})

	entries := disassembly.Disassemble(mem, 0x0000, 2)
	test.ExpectEquality(t, entries[0].Mnemonic, "defb #dd")
	test.ExpectEquality(t, entries[1].Mnemonic, "inc b")
}
