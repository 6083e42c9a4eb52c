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

// Package zex runs the ZEXDOC and ZEXALL instruction exercisers against the
// CPU. The exercisers are CP/M programs; the harness intercepts the BDOS
// entry point at 0x0005 and renders the console output to an io.Writer.
package zex

import (
	"io"

	"github.com/mdm/ronald/curated"
	"github.com/mdm/ronald/hardware/cpu"
	"github.com/mdm/ronald/hardware/cpu/registers"
)

// Error patterns for the zex package.
const (
	NotACpmProgram = "zex: program too large for the transient program area"
)

// flat 64K of RAM. the exercisers never touch ROM or I/O
type flatMemory []uint8

func (mem flatMemory) ReadByte(address uint16) uint8 {
	return mem[address]
}

func (mem flatMemory) ReadWord(address uint16) uint16 {
	return uint16(mem[address]) | uint16(mem[address+1])<<8
}

func (mem flatMemory) WriteByte(address uint16, value uint8) {
	mem[address] = value
}

func (mem flatMemory) WriteWord(address uint16, value uint16) {
	mem[address] = uint8(value)
	mem[address+1] = uint8(value >> 8)
}

type nullIO struct{}

func (n nullIO) ReadPort(port uint16) uint8         { return 0xff }
func (n nullIO) WritePort(port uint16, value uint8) {}

// Harness is a minimal CP/M machine: the program is loaded at 0x0100 and
// runs until control returns to 0x0000.
type Harness struct {
	mc  *cpu.CPU
	mem flatMemory
}

// NewHarness loads a CP/M COM program into the transient program area.
func NewHarness(program []uint8) (*Harness, error) {
	if len(program) > 0x10000-0x0100 {
		return nil, curated.Errorf(NotACpmProgram)
	}

	hn := &Harness{
		mc:  cpu.NewCPU(),
		mem: make(flatMemory, 0x10000),
	}

	copy(hn.mem[0x0100:], program)

	// patch the BDOS entry point with RET and point the stack somewhere
	// harmless
	hn.mem.WriteByte(0x0005, 0xc9)
	hn.mem.WriteWord(0x0006, 0xe400)

	hn.mc.Registers.Write16(registers.PC, 0x0100)
	hn.mc.Registers.Write16(registers.SP, 0xe400)

	return hn, nil
}

// Run the program to completion, writing console output to the supplied
// io.Writer. Returns the number of NOP units consumed.
func (hn *Harness) Run(output io.Writer) int {
	total := 0

	for {
		switch hn.mc.Registers.Read16(registers.PC) {
		case 0x0000:
			return total

		case 0x0005:
			// BDOS console functions: 2 prints the character in E, 9
			// prints the $-terminated string at DE
			switch hn.mc.Registers.Read8(registers.C) {
			case 2:
				output.Write([]byte{hn.mc.Registers.Read8(registers.E)})
			case 9:
				address := hn.mc.Registers.Read16(registers.DE)
				for {
					ch := hn.mem.ReadByte(address)
					if ch == '$' {
						break
					}
					output.Write([]byte{ch})
					address++
				}
			}
		}

		timing, _ := hn.mc.FetchAndExecute(hn.mem, nullIO{})
		total += timing
	}
}
