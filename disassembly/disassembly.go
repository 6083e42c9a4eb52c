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

// Package disassembly renders memory as Z80 assembly, by way of the CPU
// package's decoder. Disassembly reads memory through the same banked view
// as the CPU, so the listing reflects the current ROM arrangement.
package disassembly

import (
	"github.com/mdm/ronald/hardware/cpu"
)

// Entry is one disassembled instruction.
type Entry struct {
	Address  uint16
	Mnemonic string
}

// Disassemble decodes count instructions starting at the given address.
//
// Note that decoding reads memory, and those reads appear in the debug
// event log like any other. A caller holding memory breakpoints should
// evaluate them before disassembling.
func Disassemble(mem cpu.Memory, address uint16, count int) []Entry {
	entries := make([]Entry, 0, count)

	for i := 0; i < count; i++ {
		ins, next := cpu.Decode(mem, address)
		entries = append(entries, Entry{
			Address:  address,
			Mnemonic: ins.String(),
		})
		if next <= address {
			// address space wrapped
			break
		}
		address = next
	}

	return entries
}
