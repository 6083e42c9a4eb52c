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

package instructions

import "github.com/mdm/ronald/hardware/cpu/registers"

// Timing returns the duration of the instruction in NOP units (one NOP unit
// is four CPU cycles or sixteen master clock ticks). On the CPC every
// instruction is stretched to a whole number of NOP units by the gate array.
//
// For conditional jumps, calls and returns and for the repeating block
// instructions the value is the not-taken (not-repeating) duration; the
// executor accounts for the longer path when it is taken.
func (ins Instruction) Timing() int {
	switch ins.Op {
	case Nop, Daa, Cpl, Ccf, Scf, Halt, Di, Ei, Rlca, Rrca, Rla, Rra, Exx, Defb:
		return 1

	case Neg, Defw:
		return 2

	case Im:
		return 2

	case Ld:
		return ldTiming(ins.Dst, ins.Src)

	case Add, Adc, Sub, Sbc, And, Xor, Or, Cp:
		if ins.Dst.Kind == KindReg16 || (ins.Op == Add && ins.Dst.Kind == KindNone && ins.Src.Kind == KindReg16) {
			// 16-bit arithmetic
			if ins.Op == Add {
				if ins.Dst.indexed() {
					return 4
				}
				return 3
			}
			return 4
		}
		return aluTiming(ins.Src)

	case Inc, Dec:
		switch ins.Dst.Kind {
		case KindReg8:
			if ins.Dst.indexed() {
				return 2
			}
			return 1
		case KindReg16:
			if ins.Dst.indexed() {
				return 3
			}
			return 2
		case KindRegIndirect:
			return 3
		case KindIndexed:
			return 6
		}

	case Push:
		if ins.Src.indexed() {
			return 5
		}
		return 4

	case Pop:
		if ins.Dst.indexed() {
			return 4
		}
		return 3

	case Ex:
		if ins.Dst.Kind == KindRegIndirect {
			// EX (SP),HL and EX (SP),IX
			if ins.Src.indexed() {
				return 7
			}
			return 6
		}
		return 1

	case Jp:
		if ins.Dst.Kind == KindRegIndirect {
			// JP (HL), JP (IX), JP (IY)
			if ins.Dst.indexed() {
				return 2
			}
			return 1
		}
		return 3

	case Jr:
		if ins.Cond == CondNone {
			return 3
		}
		return 2

	case Djnz:
		return 3

	case Call:
		if ins.Cond == CondNone {
			return 5
		}
		return 3

	case Ret:
		if ins.Cond == CondNone {
			return 3
		}
		return 2

	case Reti, Retn:
		return 4

	case Rst:
		return 4

	case Rlc, Rrc, Rl, Rr, Sla, Sra, Sll, Srl, Res, Set:
		switch ins.Src.Kind {
		case KindRegIndirect:
			return 4
		case KindIndexed:
			return 7
		}
		return 2

	case Bit:
		switch ins.Src.Kind {
		case KindRegIndirect:
			return 3
		case KindIndexed:
			return 6
		}
		return 2

	case Rld, Rrd:
		return 5

	case In:
		if ins.Src.Kind == KindImm8 {
			// IN A,(n)
			return 3
		}
		return 4

	case Out:
		if ins.Dst.Kind == KindImm8 {
			// OUT (n),A
			return 3
		}
		return 4

	case Ldi, Ldd, Cpi, Cpd, Ini, Ind, Outi, Outd:
		return 5

	case Ldir, Lddr, Cpir, Cpdr, Inir, Indr, Otir, Otdr:
		// the repeating duration is one NOP longer; the executor adds it
		return 5
	}

	return 1
}

func ldTiming(dst, src Operand) int {
	prefix := 0
	if dst.indexed() || src.indexed() {
		prefix = 1
	}

	switch dst.Kind {
	case KindReg8:
		if dst.Reg8 == registers.I || dst.Reg8 == registers.R {
			// LD I,A and LD R,A
			return 3
		}
		switch src.Kind {
		case KindReg8:
			if src.Reg8 == registers.I || src.Reg8 == registers.R {
				// LD A,I and LD A,R
				return 3
			}
			return 1 + prefix
		case KindImm8:
			return 2 + prefix
		case KindRegIndirect:
			return 2
		case KindIndexed:
			return 5
		case KindDirect:
			// LD A,(nn)
			return 4
		}
	case KindReg16:
		switch src.Kind {
		case KindImm16:
			return 3 + prefix
		case KindDirect:
			if dst.Reg16 == registers.HL {
				return 5
			}
			return 6
		case KindReg16:
			// LD SP,HL and LD SP,IX
			return 2 + prefix
		}
	case KindRegIndirect:
		switch src.Kind {
		case KindReg8:
			return 2
		case KindImm8:
			return 3
		}
	case KindIndexed:
		switch src.Kind {
		case KindReg8:
			return 5
		case KindImm8:
			return 6
		}
	case KindDirect:
		switch src.Kind {
		case KindReg8:
			// LD (nn),A
			return 4
		case KindReg16:
			if src.Reg16 == registers.HL {
				return 5
			}
			return 6
		}
	}

	return 1
}

func aluTiming(src Operand) int {
	switch src.Kind {
	case KindImm8:
		return 2
	case KindRegIndirect:
		return 2
	case KindIndexed:
		return 5
	}
	if src.indexed() {
		return 2
	}
	return 1
}
