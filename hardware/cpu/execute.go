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

package cpu

import (
	"github.com/mdm/ronald/hardware/cpu/instructions"
	"github.com/mdm/ronald/hardware/cpu/registers"
)

// execute runs a single decoded instruction. The program counter has
// already been advanced past the instruction. It returns the duration in
// NOP units and whether interrupt acceptance is suppressed at the
// instruction boundary.
func (mc *CPU) execute(mem Memory, io IO, ins instructions.Instruction) (int, bool) {
	timing := ins.Timing()

	switch ins.Op {
	case instructions.Nop:
		// scheduled idleness

	case instructions.Ld:
		if ins.Dst.Kind == instructions.KindReg16 || ins.Src.Kind == instructions.KindReg16 {
			mc.storeWord(mem, ins.Dst, mc.loadWord(mem, ins.Src))
			break
		}

		value := mc.loadByte(mem, ins.Src)
		mc.storeByte(mem, ins.Dst, value)

		// LD A,I and LD A,R copy IFF2 into the parity flag
		if ins.Dst.IsReg8(registers.A) && (ins.Src.IsReg8(registers.I) || ins.Src.IsReg8(registers.R)) {
			mc.setSZ(value)
			mc.Registers.SetFlag(registers.FlagH, false)
			mc.Registers.SetFlag(registers.FlagN, false)
			mc.Registers.SetFlag(registers.FlagP, mc.IFF2)
		}

	case instructions.Add:
		if ins.Dst.Kind == instructions.KindReg16 {
			left := mc.loadWord(mem, ins.Dst)
			right := mc.loadWord(mem, ins.Src)
			mc.storeWord(mem, ins.Dst, mc.add16(left, right))
			break
		}
		a := mc.Registers.Read8(registers.A)
		mc.Registers.Write8(registers.A, mc.add8(a, mc.loadByte(mem, ins.Src), 0))

	case instructions.Adc:
		if ins.Dst.Kind == instructions.KindReg16 {
			left := mc.loadWord(mem, ins.Dst)
			right := mc.loadWord(mem, ins.Src)
			mc.storeWord(mem, ins.Dst, mc.adc16(left, right, mc.carryIn()))
			break
		}
		a := mc.Registers.Read8(registers.A)
		mc.Registers.Write8(registers.A, mc.add8(a, mc.loadByte(mem, ins.Src), mc.carryIn()))

	case instructions.Sub:
		a := mc.Registers.Read8(registers.A)
		mc.Registers.Write8(registers.A, mc.sub8(a, mc.loadByte(mem, ins.Src), 0))

	case instructions.Sbc:
		if ins.Dst.Kind == instructions.KindReg16 {
			left := mc.loadWord(mem, ins.Dst)
			right := mc.loadWord(mem, ins.Src)
			mc.storeWord(mem, ins.Dst, mc.sbc16(left, right, mc.carryIn()))
			break
		}
		a := mc.Registers.Read8(registers.A)
		mc.Registers.Write8(registers.A, mc.sub8(a, mc.loadByte(mem, ins.Src), mc.carryIn()))

	case instructions.And:
		result := mc.Registers.Read8(registers.A) & mc.loadByte(mem, ins.Src)
		mc.Registers.Write8(registers.A, result)
		mc.logicFlags(result, true)

	case instructions.Xor:
		result := mc.Registers.Read8(registers.A) ^ mc.loadByte(mem, ins.Src)
		mc.Registers.Write8(registers.A, result)
		mc.logicFlags(result, false)

	case instructions.Or:
		result := mc.Registers.Read8(registers.A) | mc.loadByte(mem, ins.Src)
		mc.Registers.Write8(registers.A, result)
		mc.logicFlags(result, false)

	case instructions.Cp:
		mc.sub8(mc.Registers.Read8(registers.A), mc.loadByte(mem, ins.Src), 0)

	case instructions.Inc:
		if ins.Dst.Kind == instructions.KindReg16 {
			mc.storeWord(mem, ins.Dst, mc.loadWord(mem, ins.Dst)+1)
			break
		}
		mc.storeByte(mem, ins.Dst, mc.inc8(mc.loadByte(mem, ins.Dst)))

	case instructions.Dec:
		if ins.Dst.Kind == instructions.KindReg16 {
			mc.storeWord(mem, ins.Dst, mc.loadWord(mem, ins.Dst)-1)
			break
		}
		mc.storeByte(mem, ins.Dst, mc.dec8(mc.loadByte(mem, ins.Dst)))

	case instructions.Push:
		mc.push(mem, mc.loadWord(mem, ins.Src))

	case instructions.Pop:
		mc.storeWord(mem, ins.Dst, mc.pop(mem))

	case instructions.Ex:
		switch {
		case ins.Dst.IsReg16(registers.AF):
			mc.Registers.ExchangeAF()
		case ins.Dst.Kind == instructions.KindRegIndirect:
			// EX (SP),HL and EX (SP),IX/IY
			stacked := mc.loadWord(mem, ins.Dst)
			mc.storeWord(mem, ins.Dst, mc.Registers.Read16(ins.Src.Reg16))
			mc.Registers.Write16(ins.Src.Reg16, stacked)
		default:
			de := mc.Registers.Read16(registers.DE)
			hl := mc.Registers.Read16(registers.HL)
			mc.Registers.Write16(registers.DE, hl)
			mc.Registers.Write16(registers.HL, de)
		}

	case instructions.Exx:
		mc.Registers.Exchange()

	case instructions.Jp:
		if ins.Dst.Kind == instructions.KindRegIndirect {
			// JP (HL) loads the program counter with the register itself
			mc.Registers.Write16(registers.PC, mc.Registers.Read16(ins.Dst.Reg16))
			break
		}
		if mc.condition(ins.Cond) {
			mc.Registers.Write16(registers.PC, ins.Dst.Value)
		}

	case instructions.Jr:
		if mc.condition(ins.Cond) {
			mc.Registers.Write16(registers.PC, ins.Dst.Value)
			timing = 3
		}

	case instructions.Djnz:
		b := mc.Registers.Read8(registers.B) - 1
		mc.Registers.Write8(registers.B, b)
		if b != 0 {
			mc.Registers.Write16(registers.PC, ins.Dst.Value)
			timing = 4
		}

	case instructions.Call:
		if mc.condition(ins.Cond) {
			mc.push(mem, mc.Registers.Read16(registers.PC))
			mc.Registers.Write16(registers.PC, ins.Dst.Value)
			timing = 5
		}

	case instructions.Ret:
		if mc.condition(ins.Cond) {
			mc.Registers.Write16(registers.PC, mc.pop(mem))
			if ins.Cond != instructions.CondNone {
				timing = 4
			}
		}

	case instructions.Reti, instructions.Retn:
		mc.Registers.Write16(registers.PC, mc.pop(mem))
		mc.IFF1 = mc.IFF2

	case instructions.Rst:
		mc.push(mem, mc.Registers.Read16(registers.PC))
		mc.Registers.Write16(registers.PC, uint16(ins.Bit))

	case instructions.Rlca:
		mc.Registers.Write8(registers.A, mc.rlc(mc.Registers.Read8(registers.A)))
		mc.Registers.SetFlag(registers.FlagH, false)
		mc.Registers.SetFlag(registers.FlagN, false)

	case instructions.Rrca:
		mc.Registers.Write8(registers.A, mc.rrc(mc.Registers.Read8(registers.A)))
		mc.Registers.SetFlag(registers.FlagH, false)
		mc.Registers.SetFlag(registers.FlagN, false)

	case instructions.Rla:
		mc.Registers.Write8(registers.A, mc.rl(mc.Registers.Read8(registers.A)))
		mc.Registers.SetFlag(registers.FlagH, false)
		mc.Registers.SetFlag(registers.FlagN, false)

	case instructions.Rra:
		mc.Registers.Write8(registers.A, mc.rr(mc.Registers.Read8(registers.A)))
		mc.Registers.SetFlag(registers.FlagH, false)
		mc.Registers.SetFlag(registers.FlagN, false)

	case instructions.Rlc, instructions.Rrc, instructions.Rl, instructions.Rr,
		instructions.Sla, instructions.Sra, instructions.Sll, instructions.Srl:
		value := mc.loadByte(mem, ins.Src)

		var result uint8
		switch ins.Op {
		case instructions.Rlc:
			result = mc.rlc(value)
		case instructions.Rrc:
			result = mc.rrc(value)
		case instructions.Rl:
			result = mc.rl(value)
		case instructions.Rr:
			result = mc.rr(value)
		case instructions.Sla:
			result = mc.sla(value)
		case instructions.Sra:
			result = mc.sra(value)
		case instructions.Sll:
			result = mc.sll(value)
		case instructions.Srl:
			result = mc.srl(value)
		}

		mc.storeByte(mem, ins.Dst, result)
		if ins.Copy.Kind != instructions.KindNone {
			mc.storeByte(mem, ins.Copy, result)
		}
		mc.setSZP(result)
		mc.Registers.SetFlag(registers.FlagH, false)
		mc.Registers.SetFlag(registers.FlagN, false)

	case instructions.Bit:
		value := mc.loadByte(mem, ins.Src)
		set := value&(1<<ins.Bit) != 0
		mc.Registers.SetFlag(registers.FlagZ, !set)
		mc.Registers.SetFlag(registers.FlagP, !set)
		mc.Registers.SetFlag(registers.FlagS, ins.Bit == 7 && set)
		mc.Registers.SetFlag(registers.FlagH, true)
		mc.Registers.SetFlag(registers.FlagN, false)

	case instructions.Res:
		result := mc.loadByte(mem, ins.Src) &^ (1 << ins.Bit)
		mc.storeByte(mem, ins.Dst, result)
		if ins.Copy.Kind != instructions.KindNone {
			mc.storeByte(mem, ins.Copy, result)
		}

	case instructions.Set:
		result := mc.loadByte(mem, ins.Src) | 1<<ins.Bit
		mc.storeByte(mem, ins.Dst, result)
		if ins.Copy.Kind != instructions.KindNone {
			mc.storeByte(mem, ins.Copy, result)
		}

	case instructions.Daa:
		mc.daa()

	case instructions.Cpl:
		mc.Registers.Write8(registers.A, ^mc.Registers.Read8(registers.A))
		mc.Registers.SetFlag(registers.FlagH, true)
		mc.Registers.SetFlag(registers.FlagN, true)

	case instructions.Neg:
		mc.Registers.Write8(registers.A, mc.sub8(0, mc.Registers.Read8(registers.A), 0))

	case instructions.Ccf:
		carry := mc.Registers.Flag(registers.FlagC)
		mc.Registers.SetFlag(registers.FlagH, carry)
		mc.Registers.SetFlag(registers.FlagC, !carry)
		mc.Registers.SetFlag(registers.FlagN, false)

	case instructions.Scf:
		mc.Registers.SetFlag(registers.FlagC, true)
		mc.Registers.SetFlag(registers.FlagH, false)
		mc.Registers.SetFlag(registers.FlagN, false)

	case instructions.Halt:
		mc.Halted = true

	case instructions.Di:
		mc.IFF1 = false
		mc.IFF2 = false

	case instructions.Ei:
		// interrupts are accepted only after the instruction following EI
		mc.enableInterrupt = true

	case instructions.Im:
		mc.Mode = ins.Mode

	case instructions.In:
		if ins.Src.Kind == instructions.KindImm8 {
			// IN A,(n): the accumulator supplies the upper half of the port
			port := uint16(mc.Registers.Read8(registers.A))<<8 | ins.Src.Value
			mc.Registers.Write8(registers.A, io.ReadPort(port))
			break
		}

		value := io.ReadPort(mc.Registers.Read16(registers.BC))
		if ins.Dst.Kind != instructions.KindNone {
			mc.Registers.Write8(ins.Dst.Reg8, value)
		}
		mc.setSZP(value)
		mc.Registers.SetFlag(registers.FlagH, false)
		mc.Registers.SetFlag(registers.FlagN, false)

	case instructions.Out:
		if ins.Dst.Kind == instructions.KindImm8 {
			port := uint16(mc.Registers.Read8(registers.A))<<8 | ins.Dst.Value
			io.WritePort(port, mc.Registers.Read8(registers.A))
			break
		}

		// OUT (C),0 for the encoding with no source register
		var value uint8
		if ins.Src.Kind != instructions.KindNone {
			value = mc.Registers.Read8(ins.Src.Reg8)
		}
		io.WritePort(mc.Registers.Read16(registers.BC), value)

	case instructions.Ldi, instructions.Ldd, instructions.Ldir, instructions.Lddr:
		timing = mc.blockTransfer(mem, ins.Op)

	case instructions.Cpi, instructions.Cpd, instructions.Cpir, instructions.Cpdr:
		timing = mc.blockCompare(mem, ins.Op)

	case instructions.Ini, instructions.Ind, instructions.Inir, instructions.Indr:
		timing = mc.blockInput(mem, io, ins.Op)

	case instructions.Outi, instructions.Outd, instructions.Otir, instructions.Otdr:
		timing = mc.blockOutput(mem, io, ins.Op)

	case instructions.Rld:
		addr := mc.Registers.Read16(registers.HL)
		a := mc.Registers.Read8(registers.A)
		m := mem.ReadByte(addr)
		mem.WriteByte(addr, m<<4|a&0x0f)
		a = a&0xf0 | m>>4
		mc.Registers.Write8(registers.A, a)
		mc.setSZP(a)
		mc.Registers.SetFlag(registers.FlagH, false)
		mc.Registers.SetFlag(registers.FlagN, false)

	case instructions.Rrd:
		addr := mc.Registers.Read16(registers.HL)
		a := mc.Registers.Read8(registers.A)
		m := mem.ReadByte(addr)
		mem.WriteByte(addr, a<<4|m>>4)
		a = a&0xf0 | m&0x0f
		mc.Registers.Write8(registers.A, a)
		mc.setSZP(a)
		mc.Registers.SetFlag(registers.FlagH, false)
		mc.Registers.SetFlag(registers.FlagN, false)

	case instructions.Defb:
		// an undecodable byte. execution continues at the following byte
		// and interrupt acceptance is suppressed so that the placeholder
		// can be observed in the event log
		return timing, true

	case instructions.Defw:
		// an undefined ED sequence behaves as a two-byte NOP
	}

	return timing, false
}

// blockTransfer implements LDI, LDD, LDIR and LDDR.
func (mc *CPU) blockTransfer(mem Memory, op instructions.Operation) int {
	hl := mc.Registers.Read16(registers.HL)
	de := mc.Registers.Read16(registers.DE)

	mem.WriteByte(de, mem.ReadByte(hl))

	if op == instructions.Ldi || op == instructions.Ldir {
		hl++
		de++
	} else {
		hl--
		de--
	}

	bc := mc.Registers.Read16(registers.BC) - 1
	mc.Registers.Write16(registers.HL, hl)
	mc.Registers.Write16(registers.DE, de)
	mc.Registers.Write16(registers.BC, bc)

	mc.Registers.SetFlag(registers.FlagH, false)
	mc.Registers.SetFlag(registers.FlagN, false)
	mc.Registers.SetFlag(registers.FlagP, bc != 0)

	if (op == instructions.Ldir || op == instructions.Lddr) && bc != 0 {
		// rewind the program counter so the instruction repeats
		mc.Registers.Write16(registers.PC, mc.Registers.Read16(registers.PC)-2)
		return 6
	}
	return 5
}

// blockCompare implements CPI, CPD, CPIR and CPDR.
func (mc *CPU) blockCompare(mem Memory, op instructions.Operation) int {
	hl := mc.Registers.Read16(registers.HL)

	carry := mc.Registers.Flag(registers.FlagC)
	mc.sub8(mc.Registers.Read8(registers.A), mem.ReadByte(hl), 0)
	mc.Registers.SetFlag(registers.FlagC, carry)

	if op == instructions.Cpi || op == instructions.Cpir {
		hl++
	} else {
		hl--
	}

	bc := mc.Registers.Read16(registers.BC) - 1
	mc.Registers.Write16(registers.HL, hl)
	mc.Registers.Write16(registers.BC, bc)
	mc.Registers.SetFlag(registers.FlagP, bc != 0)

	if (op == instructions.Cpir || op == instructions.Cpdr) && bc != 0 && !mc.Registers.Flag(registers.FlagZ) {
		mc.Registers.Write16(registers.PC, mc.Registers.Read16(registers.PC)-2)
		return 6
	}
	return 5
}

// blockInput implements INI, IND, INIR and INDR.
func (mc *CPU) blockInput(mem Memory, io IO, op instructions.Operation) int {
	hl := mc.Registers.Read16(registers.HL)

	mem.WriteByte(hl, io.ReadPort(mc.Registers.Read16(registers.BC)))

	if op == instructions.Ini || op == instructions.Inir {
		hl++
	} else {
		hl--
	}

	b := mc.Registers.Read8(registers.B) - 1
	mc.Registers.Write16(registers.HL, hl)
	mc.Registers.Write8(registers.B, b)
	mc.Registers.SetFlag(registers.FlagZ, b == 0)
	mc.Registers.SetFlag(registers.FlagN, true)

	if (op == instructions.Inir || op == instructions.Indr) && b != 0 {
		mc.Registers.Write16(registers.PC, mc.Registers.Read16(registers.PC)-2)
		return 6
	}
	return 5
}

// blockOutput implements OUTI, OUTD, OTIR and OTDR.
func (mc *CPU) blockOutput(mem Memory, io IO, op instructions.Operation) int {
	hl := mc.Registers.Read16(registers.HL)
	value := mem.ReadByte(hl)

	// B is decremented before it appears on the port address
	b := mc.Registers.Read8(registers.B) - 1
	mc.Registers.Write8(registers.B, b)
	io.WritePort(mc.Registers.Read16(registers.BC), value)

	if op == instructions.Outi || op == instructions.Otir {
		hl++
	} else {
		hl--
	}

	mc.Registers.Write16(registers.HL, hl)
	mc.Registers.SetFlag(registers.FlagZ, b == 0)
	mc.Registers.SetFlag(registers.FlagN, true)

	if (op == instructions.Otir || op == instructions.Otdr) && b != 0 {
		mc.Registers.Write16(registers.PC, mc.Registers.Read16(registers.PC)-2)
		return 6
	}
	return 5
}
