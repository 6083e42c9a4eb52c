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

// Package cpu emulates the Zilog Z80 found in the Amstrad CPC.
//
// The package separates decoding from execution. Decode() is a free
// function that turns bytes into an instructions.Instruction; the CPU type
// executes instructions one at a time through FetchAndExecute(), which
// reports its timing in NOP units of four CPU cycles. The separation allows
// the disassembly package to reuse the decoder without a CPU instance.
//
// Instruction timing is rounded to whole NOP units, as imposed on the real
// machine by the gate array. Sub-instruction memory contention is not
// modelled.
package cpu
