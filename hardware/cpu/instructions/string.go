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

import (
	"fmt"

	"github.com/mdm/ronald/hardware/cpu/registers"
)

var mnemonics = map[Operation]string{
	Nop: "nop", Ld: "ld", Add: "add", Adc: "adc", Sub: "sub", Sbc: "sbc",
	And: "and", Xor: "xor", Or: "or", Cp: "cp", Inc: "inc", Dec: "dec",
	Push: "push", Pop: "pop", Ex: "ex", Exx: "exx", Jp: "jp", Jr: "jr",
	Djnz: "djnz", Call: "call", Ret: "ret", Reti: "reti", Retn: "retn",
	Rst: "rst", Rlca: "rlca", Rrca: "rrca", Rla: "rla", Rra: "rra",
	Rlc: "rlc", Rrc: "rrc", Rl: "rl", Rr: "rr", Sla: "sla", Sra: "sra",
	Sll: "sll", Srl: "srl", Bit: "bit", Res: "res", Set: "set",
	Daa: "daa", Cpl: "cpl", Neg: "neg", Ccf: "ccf", Scf: "scf",
	Halt: "halt", Di: "di", Ei: "ei", Im: "im", In: "in", Out: "out",
	Ldi: "ldi", Ldd: "ldd", Ldir: "ldir", Lddr: "lddr",
	Cpi: "cpi", Cpd: "cpd", Cpir: "cpir", Cpdr: "cpdr",
	Ini: "ini", Ind: "ind", Inir: "inir", Indr: "indr",
	Outi: "outi", Outd: "outd", Otir: "otir", Otdr: "otdr",
	Rld: "rld", Rrd: "rrd", Defb: "defb", Defw: "defw",
}

// String returns the instruction in conventional Z80 assembly notation.
// Operands use the hash prefix for hexadecimal values, in the Amstrad
// idiom.
func (ins Instruction) String() string {
	m := mnemonics[ins.Op]

	switch ins.Op {
	case Nop, Exx, Daa, Cpl, Neg, Ccf, Scf, Halt, Di, Ei,
		Rlca, Rrca, Rla, Rra, Reti, Retn, Rld, Rrd,
		Ldi, Ldd, Ldir, Lddr, Cpi, Cpd, Cpir, Cpdr,
		Ini, Ind, Inir, Indr, Outi, Outd, Otir, Otdr:
		return m

	case Ld, Add, Adc, Sbc:
		return fmt.Sprintf("%s %s,%s", m, ins.Dst, ins.Src)

	case Sub, And, Xor, Or, Cp, Push, Defb, Defw:
		return fmt.Sprintf("%s %s", m, ins.Src)

	case Inc, Dec, Pop:
		return fmt.Sprintf("%s %s", m, ins.Dst)

	case Ex:
		// EX AF,AF' has both operands set to AF
		if ins.Dst.IsReg16(registers.AF) && ins.Src.IsReg16(registers.AF) {
			return "ex af,af'"
		}
		return fmt.Sprintf("%s %s,%s", m, ins.Dst, ins.Src)

	case Jp, Jr:
		if ins.Cond == CondNone {
			return fmt.Sprintf("%s %s", m, ins.Dst)
		}
		return fmt.Sprintf("%s %s,%s", m, ins.Cond, ins.Dst)

	case Djnz:
		return fmt.Sprintf("%s %s", m, ins.Dst)

	case Call:
		if ins.Cond == CondNone {
			return fmt.Sprintf("%s %s", m, ins.Dst)
		}
		return fmt.Sprintf("%s %s,%s", m, ins.Cond, ins.Dst)

	case Ret:
		if ins.Cond == CondNone {
			return m
		}
		return fmt.Sprintf("%s %s", m, ins.Cond)

	case Rst:
		return fmt.Sprintf("%s #%02x", m, ins.Bit)

	case Im:
		return fmt.Sprintf("%s %d", m, int(ins.Mode))

	case Bit:
		return fmt.Sprintf("%s %d,%s", m, ins.Bit, ins.Src)

	case Res, Set:
		if ins.Copy.Kind != KindNone {
			return fmt.Sprintf("%s %d,%s->%s", m, ins.Bit, ins.Src, ins.Copy)
		}
		return fmt.Sprintf("%s %d,%s", m, ins.Bit, ins.Src)

	case Rlc, Rrc, Rl, Rr, Sla, Sra, Sll, Srl:
		if ins.Copy.Kind != KindNone {
			return fmt.Sprintf("%s %s->%s", m, ins.Src, ins.Copy)
		}
		return fmt.Sprintf("%s %s", m, ins.Src)

	case In:
		// IN (C) discards the input and has no destination operand
		if ins.Dst.Kind == KindNone {
			return fmt.Sprintf("%s (c)", m)
		}
		if ins.Src.Kind == KindImm8 {
			return fmt.Sprintf("%s %s,(%s)", m, ins.Dst, ins.Src)
		}
		return fmt.Sprintf("%s %s,(c)", m, ins.Dst)

	case Out:
		// OUT (C),0 for the encoding with no source register
		if ins.Dst.Kind == KindImm8 {
			return fmt.Sprintf("%s (%s),%s", m, ins.Dst, ins.Src)
		}
		if ins.Src.Kind == KindNone {
			return fmt.Sprintf("%s (c),0", m)
		}
		return fmt.Sprintf("%s (c),%s", m, ins.Src)
	}

	return m
}
