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

package cpu_test

import (
	"testing"

	"github.com/mdm/ronald/hardware/cpu"
	"github.com/mdm/ronald/hardware/cpu/registers"
	"github.com/mdm/ronald/test"
)

// step executes one instruction and returns its timing.
func step(t *testing.T, mc *cpu.CPU, mem *mockMem, io *mockIO) int {
	t.Helper()
	timing, _ := mc.FetchAndExecute(mem, io)
	return timing
}

func TestAddFlags(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	// ADD A,#40 twice: second addition overflows into the sign bit
	mem.putInstructions(0x0000, 0xc6, 0x40, 0xc6, 0x40)

	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read8(registers.A), uint8(0x40))
	test.ExpectFailure(t, mc.Registers.Flag(registers.FlagS))
	test.ExpectFailure(t, mc.Registers.Flag(registers.FlagZ))
	test.ExpectFailure(t, mc.Registers.Flag(registers.FlagP))

	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read8(registers.A), uint8(0x80))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagS))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagP))
	test.ExpectFailure(t, mc.Registers.Flag(registers.FlagC))
	test.ExpectFailure(t, mc.Registers.Flag(registers.FlagN))
}

func TestAddCarryAndHalfCarry(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	// LD A,#0f; ADD A,#01 -> half carry
	// LD A,#ff; ADD A,#01 -> carry and zero
	mem.putInstructions(0x0000, 0x3e, 0x0f, 0xc6, 0x01, 0x3e, 0xff, 0xc6, 0x01)

	step(t, mc, mem, io)
	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read8(registers.A), uint8(0x10))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagH))
	test.ExpectFailure(t, mc.Registers.Flag(registers.FlagC))

	step(t, mc, mem, io)
	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read8(registers.A), uint8(0x00))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagZ))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagC))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagH))
}

func TestSubBorrow(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	// LD A,#00; SUB #01
	mem.putInstructions(0x0000, 0x3e, 0x00, 0xd6, 0x01)

	step(t, mc, mem, io)
	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read8(registers.A), uint8(0xff))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagS))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagC))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagH))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagN))
	test.ExpectFailure(t, mc.Registers.Flag(registers.FlagP))
}

func TestLogicFlags(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	// LD A,#0f; AND #f0 -> zero with half-carry set
	mem.putInstructions(0x0000, 0x3e, 0x0f, 0xe6, 0xf0)
	step(t, mc, mem, io)
	step(t, mc, mem, io)
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagZ))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagH))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagP))
	test.ExpectFailure(t, mc.Registers.Flag(registers.FlagC))

	// XOR A -> always zero, even parity
	mem.putInstructions(0x0004, 0xaf)
	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read8(registers.A), uint8(0x00))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagZ))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagP))
	test.ExpectFailure(t, mc.Registers.Flag(registers.FlagH))
}

func TestIncDecLeaveCarry(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	// SCF; INC A; DEC A. the carry flag must survive
	mem.putInstructions(0x0000, 0x37, 0x3c, 0x3d)
	step(t, mc, mem, io)
	step(t, mc, mem, io)
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagC))
	step(t, mc, mem, io)
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagC))

	// INC of 0x7f sets overflow
	mc.Registers.Write8(registers.A, 0x7f)
	mem.putInstructions(0x0003, 0x3c)
	step(t, mc, mem, io)
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagP))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagS))

	// DEC of 0x80 sets overflow
	mc.Registers.Write8(registers.A, 0x80)
	mem.putInstructions(0x0004, 0x3d)
	step(t, mc, mem, io)
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagP))
}

func TestDaa(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	// LD A,#15; ADD A,#27; DAA -> BCD 42
	mem.putInstructions(0x0000, 0x3e, 0x15, 0xc6, 0x27, 0x27)
	step(t, mc, mem, io)
	step(t, mc, mem, io)
	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read8(registers.A), uint8(0x42))
	test.ExpectFailure(t, mc.Registers.Flag(registers.FlagC))

	// LD A,#91; ADD A,#10; DAA -> BCD 01 with carry
	mem.putInstructions(0x0005, 0x3e, 0x91, 0xc6, 0x10, 0x27)
	step(t, mc, mem, io)
	step(t, mc, mem, io)
	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read8(registers.A), uint8(0x01))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagC))
}

func Test16BitArithmetic(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	// LD HL,#0fff; LD BC,#0001; ADD HL,BC -> half carry from bit 12
	mem.putInstructions(0x0000, 0x21, 0xff, 0x0f, 0x01, 0x01, 0x00, 0x09)
	step(t, mc, mem, io)
	step(t, mc, mem, io)

	// set sign and zero beforehand; ADD HL must not touch them
	mc.Registers.SetFlag(registers.FlagS, true)
	mc.Registers.SetFlag(registers.FlagZ, true)

	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read16(registers.HL), uint16(0x1000))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagH))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagS))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagZ))

	// SBC HL,BC affects all flags
	mem.putInstructions(0x0007, 0xed, 0x42)
	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read16(registers.HL), uint16(0x0fff))
	test.ExpectFailure(t, mc.Registers.Flag(registers.FlagZ))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagN))
}

func TestRotates(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	// LD A,#81; RLCA -> 0x03 with carry
	mem.putInstructions(0x0000, 0x3e, 0x81, 0x07)
	step(t, mc, mem, io)

	// RLCA must leave sign, zero and parity untouched
	mc.Registers.SetFlag(registers.FlagZ, true)

	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read8(registers.A), uint8(0x03))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagC))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagZ))

	// CB-prefixed RLC B affects sign, zero and parity
	mc.Registers.Write8(registers.B, 0x80)
	mem.putInstructions(0x0003, 0xcb, 0x00)
	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read8(registers.B), uint8(0x01))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagC))
	test.ExpectFailure(t, mc.Registers.Flag(registers.FlagZ))

	// SRA preserves the sign bit
	mc.Registers.Write8(registers.C, 0x82)
	mem.putInstructions(0x0005, 0xcb, 0x29)
	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read8(registers.C), uint8(0xc1))
	test.ExpectFailure(t, mc.Registers.Flag(registers.FlagC))
}

func TestBitSetRes(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	mc.Registers.Write8(registers.D, 0x08)

	// BIT 3,D -> not zero; BIT 4,D -> zero
	mem.putInstructions(0x0000, 0xcb, 0x5a, 0xcb, 0x62)
	step(t, mc, mem, io)
	test.ExpectFailure(t, mc.Registers.Flag(registers.FlagZ))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagH))
	step(t, mc, mem, io)
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagZ))

	// SET 0,D; RES 3,D
	mem.putInstructions(0x0004, 0xcb, 0xc2, 0xcb, 0x9a)
	step(t, mc, mem, io)
	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read8(registers.D), uint8(0x01))
}

func TestIndexedBitCopiesToRegister(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	mc.Registers.Write16(registers.IX, 0x4000)
	mem.putInstructions(0x4005, 0xff)

	// RES 0,(IX+5) with the undocumented register copy to B
	mem.putInstructions(0x0000, 0xdd, 0xcb, 0x05, 0x80)
	step(t, mc, mem, io)
	test.ExpectEquality(t, mem.ReadByte(0x4005), uint8(0xfe))
	test.ExpectEquality(t, mc.Registers.Read8(registers.B), uint8(0xfe))
}

func TestPrefixFallbackToDefb(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	// DD followed by an instruction with no HL reference. the prefix is
	// executed as DEFB and the PC rewinds to just past the prefix
	mem.putInstructions(0x0000, 0xdd, 0x04) // DD; INC B
	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read16(registers.PC), uint16(0x0001))
	test.ExpectEquality(t, mc.Registers.Read8(registers.B), uint8(0x00))

	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read8(registers.B), uint8(0x01))
}

func TestIndexedLoads(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	mc.Registers.Write16(registers.IY, 0x8000)
	mem.putInstructions(0x7ffe, 0x99)

	// LD A,(IY-2)
	mem.putInstructions(0x0000, 0xfd, 0x7e, 0xfe)
	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read8(registers.A), uint8(0x99))

	// LD (IY+1),A
	mem.putInstructions(0x0003, 0xfd, 0x77, 0x01)
	step(t, mc, mem, io)
	test.ExpectEquality(t, mem.ReadByte(0x8001), uint8(0x99))
}

func TestStackAndCalls(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	mc.Registers.Write16(registers.SP, 0xc000)

	// CALL #4000 ... at 0x4000: RET
	mem.putInstructions(0x0000, 0xcd, 0x00, 0x40)
	mem.putInstructions(0x4000, 0xc9)

	timing := step(t, mc, mem, io)
	test.ExpectEquality(t, timing, 5)
	test.ExpectEquality(t, mc.Registers.Read16(registers.PC), uint16(0x4000))
	test.ExpectEquality(t, mc.Registers.Read16(registers.SP), uint16(0xbffe))
	test.ExpectEquality(t, mem.ReadWord(0xbffe), uint16(0x0003))

	timing = step(t, mc, mem, io)
	test.ExpectEquality(t, timing, 3)
	test.ExpectEquality(t, mc.Registers.Read16(registers.PC), uint16(0x0003))
	test.ExpectEquality(t, mc.Registers.Read16(registers.SP), uint16(0xc000))
}

func TestConditionalTiming(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	// JR NZ with the zero flag set: not taken, two NOP units
	mc.Registers.SetFlag(registers.FlagZ, true)
	mem.putInstructions(0x0000, 0x20, 0x10)
	test.ExpectEquality(t, step(t, mc, mem, io), 2)
	test.ExpectEquality(t, mc.Registers.Read16(registers.PC), uint16(0x0002))

	// JR NZ with the zero flag clear: taken, three NOP units
	mc.Registers.SetFlag(registers.FlagZ, false)
	mem.putInstructions(0x0002, 0x20, 0x10)
	test.ExpectEquality(t, step(t, mc, mem, io), 3)
	test.ExpectEquality(t, mc.Registers.Read16(registers.PC), uint16(0x0014))
}

func TestDjnz(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	mc.Registers.Write8(registers.B, 2)

	// DJNZ -2 (loops to itself)
	mem.putInstructions(0x0000, 0x10, 0xfe)
	test.ExpectEquality(t, step(t, mc, mem, io), 4)
	test.ExpectEquality(t, mc.Registers.Read16(registers.PC), uint16(0x0000))
	test.ExpectEquality(t, step(t, mc, mem, io), 3)
	test.ExpectEquality(t, mc.Registers.Read16(registers.PC), uint16(0x0002))
}

func TestBlockTransfer(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	mem.putInstructions(0x4000, 0x11, 0x22, 0x33)
	mc.Registers.Write16(registers.HL, 0x4000)
	mc.Registers.Write16(registers.DE, 0x5000)
	mc.Registers.Write16(registers.BC, 0x0003)

	// LDIR
	mem.putInstructions(0x0000, 0xed, 0xb0)
	test.ExpectEquality(t, step(t, mc, mem, io), 6)
	test.ExpectEquality(t, step(t, mc, mem, io), 6)
	test.ExpectEquality(t, step(t, mc, mem, io), 5)

	test.ExpectEquality(t, mem.ReadByte(0x5000), uint8(0x11))
	test.ExpectEquality(t, mem.ReadByte(0x5001), uint8(0x22))
	test.ExpectEquality(t, mem.ReadByte(0x5002), uint8(0x33))
	test.ExpectEquality(t, mc.Registers.Read16(registers.BC), uint16(0x0000))
	test.ExpectEquality(t, mc.Registers.Read16(registers.PC), uint16(0x0002))
	test.ExpectFailure(t, mc.Registers.Flag(registers.FlagP))
}

func TestExchange(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	mc.Registers.Write16(registers.DE, 0x1234)
	mc.Registers.Write16(registers.HL, 0x5678)

	// EX DE,HL
	mem.putInstructions(0x0000, 0xeb)
	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read16(registers.DE), uint16(0x5678))
	test.ExpectEquality(t, mc.Registers.Read16(registers.HL), uint16(0x1234))

	// EXX swaps in the shadow set
	mem.putInstructions(0x0001, 0xd9)
	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read16(registers.HL), uint16(0x0000))

	// EXX again restores
	mem.putInstructions(0x0002, 0xd9)
	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read16(registers.HL), uint16(0x1234))
}

func TestInOut(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	// LD BC,#7f00; OUT (C),A. the full 16-bit port address matters on
	// the CPC
	mc.Registers.Write8(registers.A, 0x8c)
	mem.putInstructions(0x0000, 0x01, 0x00, 0x7f, 0xed, 0x79)
	step(t, mc, mem, io)
	step(t, mc, mem, io)
	test.ExpectEquality(t, io.lastPort, uint16(0x7f00))
	test.ExpectEquality(t, io.lastValue, uint8(0x8c))

	// IN A,(n) places A on the upper half of the port
	io.input = 0x55
	mem.putInstructions(0x0005, 0xdb, 0x34)
	step(t, mc, mem, io)
	test.ExpectEquality(t, io.lastPort, uint16(0x8c34))
	test.ExpectEquality(t, mc.Registers.Read8(registers.A), uint8(0x55))
}

func TestHaltAndInterrupt(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	mc.Registers.Write16(registers.SP, 0xc000)

	// EI; HALT
	mem.putInstructions(0x0000, 0xfb, 0x76)
	step(t, mc, mem, io)
	step(t, mc, mem, io)
	test.ExpectSuccess(t, mc.Halted)

	// while halted with no interrupt pending the CPU idles one NOP unit
	// at a time
	timing, acked := mc.FetchAndExecute(mem, io)
	test.ExpectEquality(t, timing, 1)
	test.ExpectFailure(t, acked)

	// a pending interrupt wakes the CPU and vectors through 0x0038
	mc.RequestInterrupt()
	timing, acked = mc.FetchAndExecute(mem, io)
	test.ExpectEquality(t, timing, 4)
	test.ExpectSuccess(t, acked)
	test.ExpectFailure(t, mc.Halted)
	test.ExpectEquality(t, mc.Registers.Read16(registers.PC), uint16(0x0038))
	test.ExpectEquality(t, mem.ReadWord(0xbffe), uint16(0x0002))
}

func TestEiDefersInterrupt(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	mc.Registers.Write16(registers.SP, 0xc000)

	// the interrupt requested before EI must not be accepted until one
	// instruction after EI
	mc.RequestInterrupt()
	mem.putInstructions(0x0000, 0xfb, 0x00, 0x00) // EI; NOP; NOP

	_, acked := mc.FetchAndExecute(mem, io) // EI
	test.ExpectFailure(t, acked)

	_, acked = mc.FetchAndExecute(mem, io) // NOP, interrupt accepted after
	test.ExpectSuccess(t, acked)
	test.ExpectEquality(t, mc.Registers.Read16(registers.PC), uint16(0x0038))
}

func TestDefbSuppressesInterrupt(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	mc.IFF1 = true
	mc.Registers.Write16(registers.SP, 0xc000)
	mc.RequestInterrupt()

	// DD prefix with no consumable instruction: DEFB placeholder. the
	// interrupt is held off for this instruction
	mem.putInstructions(0x0000, 0xdd, 0x04)
	_, acked := mc.FetchAndExecute(mem, io)
	test.ExpectFailure(t, acked)
	test.ExpectEquality(t, mc.Registers.Read16(registers.PC), uint16(0x0001))

	// the following instruction accepts it
	_, acked = mc.FetchAndExecute(mem, io)
	test.ExpectSuccess(t, acked)
}

func TestNeg(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	mc.Registers.Write8(registers.A, 0x01)
	mem.putInstructions(0x0000, 0xed, 0x44)
	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read8(registers.A), uint8(0xff))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagC))
	test.ExpectSuccess(t, mc.Registers.Flag(registers.FlagN))
}

func TestRldRrd(t *testing.T) {
	mc := cpu.NewCPU()
	mem := newMockMem()
	io := &mockIO{}

	mc.Registers.Write8(registers.A, 0x12)
	mc.Registers.Write16(registers.HL, 0x4000)
	mem.putInstructions(0x4000, 0x34)

	// RLD: A=0x13, (HL)=0x42
	mem.putInstructions(0x0000, 0xed, 0x6f)
	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read8(registers.A), uint8(0x13))
	test.ExpectEquality(t, mem.ReadByte(0x4000), uint8(0x42))

	// RRD: A=0x12, (HL)=0x34
	mem.putInstructions(0x0002, 0xed, 0x67)
	step(t, mc, mem, io)
	test.ExpectEquality(t, mc.Registers.Read8(registers.A), uint8(0x12))
	test.ExpectEquality(t, mem.ReadByte(0x4000), uint8(0x34))
}
