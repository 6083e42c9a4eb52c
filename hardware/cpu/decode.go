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

// the decoder splits each opcode byte into the x/y/z/p/q fields of the
// published opcode matrix (see http://z80.info/decoding.htm) and walks the
// matrix. the DD and FD prefixes re-enter the base table in a "patch" mode
// that substitutes IX or IY for HL; if the re-entered decode never performs
// a substitution the prefix byte is returned as a DEFB placeholder and the
// program counter rewinds to just past the prefix.

import (
	"github.com/mdm/ronald/hardware/cpu/instructions"
	"github.com/mdm/ronald/hardware/cpu/registers"
)

// Decode decodes one instruction starting at address pc. It returns the
// instruction and the address of the following instruction. Decoding never
// fails: bytes that do not form a valid instruction decode to DEFB or DEFW
// placeholders.
func Decode(mem Memory, pc uint16) (instructions.Instruction, uint16) {
	dec := decoder{mem: mem, next: pc}

	opcode := dec.byte()

	var ins instructions.Instruction
	switch opcode {
	case 0xcb:
		ins = dec.decodeCB()
	case 0xed:
		ins = dec.decodeED()
	case 0xdd:
		ins = dec.decodePrefixed(patchIX)
	case 0xfd:
		ins = dec.decodePrefixed(patchIY)
	default:
		ins = dec.decodeBase(opcode)
	}

	return ins, dec.next
}

// patch mode selects the index register substituted for HL under a DD or FD
// prefix.
type patchMode int

const (
	patchNone patchMode = iota
	patchIX
	patchIY
)

func (m patchMode) index() registers.Reg16 {
	if m == patchIY {
		return registers.IY
	}
	return registers.IX
}

func (m patchMode) indexHi() registers.Reg8 {
	if m == patchIY {
		return registers.IYH
	}
	return registers.IXH
}

func (m patchMode) indexLo() registers.Reg8 {
	if m == patchIY {
		return registers.IYL
	}
	return registers.IXL
}

func (m patchMode) prefix() uint8 {
	if m == patchIY {
		return 0xfd
	}
	return 0xdd
}

type decoder struct {
	mem  Memory
	next uint16
	mode patchMode

	// whether the current patch mode has substituted an operand. an
	// unconsumed prefix decodes to DEFB
	patched bool
}

func (dec *decoder) byte() uint8 {
	v := dec.mem.ReadByte(dec.next)
	dec.next++
	return v
}

func (dec *decoder) word() uint16 {
	v := dec.mem.ReadWord(dec.next)
	dec.next += 2
	return v
}

// defb returns the DEFB placeholder for the current patch-mode prefix.
func (dec *decoder) defb() instructions.Instruction {
	return instructions.Instruction{
		Op:  instructions.Defb,
		Src: instructions.Imm8(dec.mode.prefix()),
	}
}

func (dec *decoder) decodePrefixed(mode patchMode) instructions.Instruction {
	dec.mode = mode
	defer func() { dec.mode = patchNone }()

	opcode := dec.mem.ReadByte(dec.next)

	switch opcode {
	case 0xcb:
		dec.next++
		return dec.decodeCB()
	case 0xed, 0xdd, 0xfd:
		// a run of prefixes: this one is a no-op byte. the next is decoded
		// afresh on the following fetch
		return dec.defb()
	default:
		dec.patched = false
		start := dec.next
		dec.next++
		ins := dec.decodeBase(opcode)
		if !dec.patched {
			dec.next = start
			return dec.defb()
		}
		return ins
	}
}

// register decodes the three-bit register field. Under a patch mode the H,
// L and (HL) encodings substitute the index register.
func (dec *decoder) register(encoded uint8) instructions.Operand {
	switch encoded & 0x07 {
	case 0:
		return instructions.Reg8(registers.B)
	case 1:
		return instructions.Reg8(registers.C)
	case 2:
		return instructions.Reg8(registers.D)
	case 3:
		return instructions.Reg8(registers.E)
	case 4:
		if dec.mode != patchNone {
			dec.patched = true
			return instructions.Reg8(dec.mode.indexHi())
		}
		return instructions.Reg8(registers.H)
	case 5:
		if dec.mode != patchNone {
			dec.patched = true
			return instructions.Reg8(dec.mode.indexLo())
		}
		return instructions.Reg8(registers.L)
	case 6:
		if dec.mode != patchNone {
			dec.patched = true
			disp := int8(dec.byte())
			return instructions.Indexed(dec.mode.index(), disp)
		}
		return instructions.Indirect(registers.HL)
	}
	return instructions.Reg8(registers.A)
}

// registerNoPatch decodes the register field with patching suspended. Used
// for the non-(HL) operand of LD (IX+d),r and friends, which always names
// the plain register.
func (dec *decoder) registerNoPatch(encoded uint8) instructions.Operand {
	mode := dec.mode
	dec.mode = patchNone
	op := dec.register(encoded)
	dec.mode = mode
	return op
}

// registerPair decodes the two-bit register-pair field. The alternate table
// replaces SP with AF (used by PUSH and POP).
func (dec *decoder) registerPair(encoded uint8, alternate bool) instructions.Operand {
	switch encoded & 0x03 {
	case 0:
		return instructions.Reg16(registers.BC)
	case 1:
		return instructions.Reg16(registers.DE)
	case 2:
		if dec.mode != patchNone {
			dec.patched = true
			return instructions.Reg16(dec.mode.index())
		}
		return instructions.Reg16(registers.HL)
	}
	if alternate {
		return instructions.Reg16(registers.AF)
	}
	return instructions.Reg16(registers.SP)
}

// hlOrIndex returns the HL operand, or the index register under a patch
// mode. For the opcodes where the Z80 genuinely substitutes (ADD HL, JP
// (HL), LD SP,HL, EX (SP),HL, ...).
func (dec *decoder) hlOrIndex() instructions.Operand {
	if dec.mode != patchNone {
		dec.patched = true
		return instructions.Reg16(dec.mode.index())
	}
	return instructions.Reg16(registers.HL)
}

func (dec *decoder) alu(encoded uint8, operand instructions.Operand) instructions.Instruction {
	switch encoded & 0x07 {
	case 0:
		return instructions.Instruction{Op: instructions.Add, Dst: instructions.Reg8(registers.A), Src: operand}
	case 1:
		return instructions.Instruction{Op: instructions.Adc, Dst: instructions.Reg8(registers.A), Src: operand}
	case 2:
		return instructions.Instruction{Op: instructions.Sub, Src: operand}
	case 3:
		return instructions.Instruction{Op: instructions.Sbc, Dst: instructions.Reg8(registers.A), Src: operand}
	case 4:
		return instructions.Instruction{Op: instructions.And, Src: operand}
	case 5:
		return instructions.Instruction{Op: instructions.Xor, Src: operand}
	case 6:
		return instructions.Instruction{Op: instructions.Or, Src: operand}
	}
	return instructions.Instruction{Op: instructions.Cp, Src: operand}
}

var rotations = [...]instructions.Operation{
	instructions.Rlc, instructions.Rrc, instructions.Rl, instructions.Rr,
	instructions.Sla, instructions.Sra, instructions.Sll, instructions.Srl,
}

func (dec *decoder) decodeBase(opcode uint8) instructions.Instruction {
	x := opcode >> 6
	y := (opcode >> 3) & 0x07
	z := opcode & 0x07
	p := y >> 1
	q := y & 0x01

	switch x {
	case 0:
		switch z {
		case 0:
			switch y {
			case 0:
				return instructions.Instruction{Op: instructions.Nop}
			case 1:
				// EX AF,AF'. both operands set to AF uniquely identifies the
				// exchange with the shadow pair
				return instructions.Instruction{
					Op:  instructions.Ex,
					Dst: instructions.Reg16(registers.AF),
					Src: instructions.Reg16(registers.AF),
				}
			case 2:
				disp := int8(dec.byte())
				return instructions.Instruction{
					Op:  instructions.Djnz,
					Dst: instructions.Imm16(dec.next + uint16(int16(disp))),
				}
			case 3:
				disp := int8(dec.byte())
				return instructions.Instruction{
					Op:  instructions.Jr,
					Dst: instructions.Imm16(dec.next + uint16(int16(disp))),
				}
			default:
				cond := instructions.DecodeCondition(y - 4)
				disp := int8(dec.byte())
				return instructions.Instruction{
					Op:   instructions.Jr,
					Cond: cond,
					Dst:  instructions.Imm16(dec.next + uint16(int16(disp))),
				}
			}

		case 1:
			if q == 0 {
				rr := dec.registerPair(p, false)
				return instructions.Instruction{Op: instructions.Ld, Dst: rr, Src: instructions.Imm16(dec.word())}
			}
			return instructions.Instruction{Op: instructions.Add, Dst: dec.hlOrIndex(), Src: dec.registerPair(p, false)}

		case 2:
			var addr instructions.Operand
			switch p {
			case 0:
				addr = instructions.Indirect(registers.BC)
			case 1:
				addr = instructions.Indirect(registers.DE)
			default:
				addr = instructions.Direct(dec.word())
			}

			var reg instructions.Operand
			if p == 2 {
				reg = dec.hlOrIndex()
			} else {
				reg = instructions.Reg8(registers.A)
			}

			if q == 0 {
				return instructions.Instruction{Op: instructions.Ld, Dst: addr, Src: reg}
			}
			return instructions.Instruction{Op: instructions.Ld, Dst: reg, Src: addr}

		case 3:
			rr := dec.registerPair(p, false)
			if q == 0 {
				return instructions.Instruction{Op: instructions.Inc, Dst: rr}
			}
			return instructions.Instruction{Op: instructions.Dec, Dst: rr}

		case 4:
			return instructions.Instruction{Op: instructions.Inc, Dst: dec.register(y)}

		case 5:
			return instructions.Instruction{Op: instructions.Dec, Dst: dec.register(y)}

		case 6:
			reg := dec.register(y)
			return instructions.Instruction{Op: instructions.Ld, Dst: reg, Src: instructions.Imm8(dec.byte())}

		case 7:
			ops := [...]instructions.Operation{
				instructions.Rlca, instructions.Rrca, instructions.Rla, instructions.Rra,
				instructions.Daa, instructions.Cpl, instructions.Scf, instructions.Ccf,
			}
			return instructions.Instruction{Op: ops[y]}
		}

	case 1:
		if y == 6 && z == 6 {
			return instructions.Instruction{Op: instructions.Halt}
		}
		// when one side of the load is (HL)/(IX+d) the other side always
		// names the plain register
		if y == 6 {
			dst := dec.register(y)
			src := dec.registerNoPatch(z)
			return instructions.Instruction{Op: instructions.Ld, Dst: dst, Src: src}
		}
		if z == 6 {
			dst := dec.registerNoPatch(y)
			src := dec.register(z)
			return instructions.Instruction{Op: instructions.Ld, Dst: dst, Src: src}
		}
		return instructions.Instruction{Op: instructions.Ld, Dst: dec.register(y), Src: dec.register(z)}

	case 2:
		return dec.alu(y, dec.register(z))

	case 3:
		switch z {
		case 0:
			return instructions.Instruction{Op: instructions.Ret, Cond: instructions.DecodeCondition(y)}

		case 1:
			if q == 0 {
				return instructions.Instruction{Op: instructions.Pop, Dst: dec.registerPair(p, true)}
			}
			switch p {
			case 0:
				return instructions.Instruction{Op: instructions.Ret}
			case 1:
				return instructions.Instruction{Op: instructions.Exx}
			case 2:
				target := dec.hlOrIndex()
				return instructions.Instruction{
					Op:  instructions.Jp,
					Dst: instructions.Operand{Kind: instructions.KindRegIndirect, Reg16: target.Reg16},
				}
			default:
				return instructions.Instruction{Op: instructions.Ld, Dst: instructions.Reg16(registers.SP), Src: dec.hlOrIndex()}
			}

		case 2:
			cond := instructions.DecodeCondition(y)
			return instructions.Instruction{Op: instructions.Jp, Cond: cond, Dst: instructions.Imm16(dec.word())}

		case 3:
			switch y {
			case 0:
				return instructions.Instruction{Op: instructions.Jp, Dst: instructions.Imm16(dec.word())}
			case 2:
				return instructions.Instruction{Op: instructions.Out, Dst: instructions.Imm8(dec.byte()), Src: instructions.Reg8(registers.A)}
			case 3:
				return instructions.Instruction{Op: instructions.In, Dst: instructions.Reg8(registers.A), Src: instructions.Imm8(dec.byte())}
			case 4:
				return instructions.Instruction{Op: instructions.Ex, Dst: instructions.Indirect(registers.SP), Src: dec.hlOrIndex()}
			case 5:
				return instructions.Instruction{Op: instructions.Ex, Dst: instructions.Reg16(registers.DE), Src: instructions.Reg16(registers.HL)}
			case 6:
				return instructions.Instruction{Op: instructions.Di}
			case 7:
				return instructions.Instruction{Op: instructions.Ei}
			}
			// y == 1 is the CB prefix and is handled before decodeBase
			return instructions.Instruction{Op: instructions.Defb, Src: instructions.Imm8(opcode)}

		case 4:
			cond := instructions.DecodeCondition(y)
			return instructions.Instruction{Op: instructions.Call, Cond: cond, Dst: instructions.Imm16(dec.word())}

		case 5:
			if q == 0 {
				return instructions.Instruction{Op: instructions.Push, Src: dec.registerPair(p, true)}
			}
			if p == 0 {
				return instructions.Instruction{Op: instructions.Call, Dst: instructions.Imm16(dec.word())}
			}
			// DD, ED and FD prefixes are handled before decodeBase
			return instructions.Instruction{Op: instructions.Defb, Src: instructions.Imm8(opcode)}

		case 6:
			return dec.alu(y, instructions.Imm8(dec.byte()))

		case 7:
			return instructions.Instruction{Op: instructions.Rst, Bit: y * 8}
		}
	}

	return instructions.Instruction{Op: instructions.Defb, Src: instructions.Imm8(opcode)}
}

func (dec *decoder) decodeCB() instructions.Instruction {
	if dec.mode != patchNone {
		return dec.decodeIndexedCB()
	}

	opcode := dec.byte()
	x := opcode >> 6
	y := (opcode >> 3) & 0x07
	z := opcode & 0x07

	operand := dec.register(z)

	switch x {
	case 0:
		return instructions.Instruction{Op: rotations[y], Dst: operand, Src: operand}
	case 1:
		return instructions.Instruction{Op: instructions.Bit, Bit: y, Src: operand}
	case 2:
		return instructions.Instruction{Op: instructions.Res, Bit: y, Dst: operand, Src: operand}
	}
	return instructions.Instruction{Op: instructions.Set, Bit: y, Dst: operand, Src: operand}
}

// decodeIndexedCB decodes the DDCB and FDCB groups. The signed displacement
// byte precedes the final opcode byte. For the encodings where the register
// field is not (HL) the register receives a copy of the value written to
// (IX+d); this undocumented behaviour is relied upon by real software and is
// preserved.
func (dec *decoder) decodeIndexedCB() instructions.Instruction {
	// the indexed CB group always consumes the prefix
	dec.patched = true

	disp := int8(dec.byte())
	opcode := dec.byte()

	x := opcode >> 6
	y := (opcode >> 3) & 0x07
	z := opcode & 0x07

	operand := instructions.Indexed(dec.mode.index(), disp)

	var copyTo instructions.Operand
	if z != 6 {
		copyTo = dec.registerNoPatch(z)
	}

	switch x {
	case 0:
		return instructions.Instruction{Op: rotations[y], Dst: operand, Src: operand, Copy: copyTo}
	case 1:
		// BIT only reads; there is nothing to copy
		return instructions.Instruction{Op: instructions.Bit, Bit: y, Src: operand}
	case 2:
		return instructions.Instruction{Op: instructions.Res, Bit: y, Dst: operand, Src: operand, Copy: copyTo}
	}
	return instructions.Instruction{Op: instructions.Set, Bit: y, Dst: operand, Src: operand, Copy: copyTo}
}

func (dec *decoder) decodeED() instructions.Instruction {
	opcode := dec.byte()
	x := opcode >> 6
	y := (opcode >> 3) & 0x07
	z := opcode & 0x07
	p := y >> 1
	q := y & 0x01

	// the undefined ED opcodes decode to a two-byte placeholder
	defw := instructions.Instruction{
		Op:  instructions.Defw,
		Src: instructions.Imm16(uint16(opcode)<<8 | 0x00ed),
	}

	switch x {
	case 1:
		switch z {
		case 0:
			if y == 6 {
				// IN (C): input without storing, only the flags change
				return instructions.Instruction{Op: instructions.In, Src: instructions.Indirect(registers.BC)}
			}
			return instructions.Instruction{Op: instructions.In, Dst: dec.register(y), Src: instructions.Indirect(registers.BC)}

		case 1:
			if y == 6 {
				// OUT (C),0
				return instructions.Instruction{Op: instructions.Out, Dst: instructions.Indirect(registers.BC)}
			}
			return instructions.Instruction{Op: instructions.Out, Dst: instructions.Indirect(registers.BC), Src: dec.register(y)}

		case 2:
			rr := dec.registerPair(p, false)
			if q == 0 {
				return instructions.Instruction{Op: instructions.Sbc, Dst: instructions.Reg16(registers.HL), Src: rr}
			}
			return instructions.Instruction{Op: instructions.Adc, Dst: instructions.Reg16(registers.HL), Src: rr}

		case 3:
			addr := instructions.Direct(dec.word())
			rr := dec.registerPair(p, false)
			if q == 0 {
				return instructions.Instruction{Op: instructions.Ld, Dst: addr, Src: rr}
			}
			return instructions.Instruction{Op: instructions.Ld, Dst: rr, Src: addr}

		case 4:
			return instructions.Instruction{Op: instructions.Neg}

		case 5:
			if y == 1 {
				return instructions.Instruction{Op: instructions.Reti}
			}
			return instructions.Instruction{Op: instructions.Retn}

		case 6:
			modes := [...]instructions.InterruptMode{
				instructions.Mode0, instructions.Mode0, instructions.Mode1, instructions.Mode2,
				instructions.Mode0, instructions.Mode0, instructions.Mode1, instructions.Mode2,
			}
			return instructions.Instruction{Op: instructions.Im, Mode: modes[y]}

		case 7:
			switch y {
			case 0:
				return instructions.Instruction{Op: instructions.Ld, Dst: instructions.Reg8(registers.I), Src: instructions.Reg8(registers.A)}
			case 1:
				return instructions.Instruction{Op: instructions.Ld, Dst: instructions.Reg8(registers.R), Src: instructions.Reg8(registers.A)}
			case 2:
				return instructions.Instruction{Op: instructions.Ld, Dst: instructions.Reg8(registers.A), Src: instructions.Reg8(registers.I)}
			case 3:
				return instructions.Instruction{Op: instructions.Ld, Dst: instructions.Reg8(registers.A), Src: instructions.Reg8(registers.R)}
			case 4:
				return instructions.Instruction{Op: instructions.Rrd}
			case 5:
				return instructions.Instruction{Op: instructions.Rld}
			default:
				return instructions.Instruction{Op: instructions.Nop}
			}
		}

	case 2:
		block := map[[2]uint8]instructions.Operation{
			{0, 4}: instructions.Ldi, {0, 5}: instructions.Ldd, {0, 6}: instructions.Ldir, {0, 7}: instructions.Lddr,
			{1, 4}: instructions.Cpi, {1, 5}: instructions.Cpd, {1, 6}: instructions.Cpir, {1, 7}: instructions.Cpdr,
			{2, 4}: instructions.Ini, {2, 5}: instructions.Ind, {2, 6}: instructions.Inir, {2, 7}: instructions.Indr,
			{3, 4}: instructions.Outi, {3, 5}: instructions.Outd, {3, 6}: instructions.Otir, {3, 7}: instructions.Otdr,
		}
		if op, ok := block[[2]uint8{z, y}]; ok {
			return instructions.Instruction{Op: op}
		}
	}

	return defw
}
