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

// Package registers implements the Z80 register file. The 8-bit registers
// are the backing store; the 16-bit pairs are synthesized on access. Every
// write emits a typed event; a write to a half of a pair names both the
// 8-bit half and the synthesized pair.
package registers

import (
	"fmt"

	"github.com/mdm/ronald/debug"
)

// Reg8 identifies one of the 8-bit registers.
type Reg8 int

// List of valid Reg8 values.
const (
	A Reg8 = iota
	F
	B
	C
	D
	E
	H
	L
	IXH
	IXL
	IYH
	IYL
	I
	R
)

func (r Reg8) String() string {
	return [...]string{"A", "F", "B", "C", "D", "E", "H", "L", "IXH", "IXL", "IYH", "IYL", "I", "R"}[r]
}

// Reg16 identifies one of the 16-bit registers or register pairs.
type Reg16 int

// List of valid Reg16 values.
const (
	AF Reg16 = iota
	BC
	DE
	HL
	IX
	IY
	SP
	PC
)

func (r Reg16) String() string {
	return [...]string{"AF", "BC", "DE", "HL", "IX", "IY", "SP", "PC"}[r]
}

// Flag bit positions within the F register. Bits 3 and 5 are undocumented
// and not modelled.
const (
	FlagC uint8 = 1 << 0
	FlagN uint8 = 1 << 1
	FlagP uint8 = 1 << 2
	FlagH uint8 = 1 << 4
	FlagZ uint8 = 1 << 6
	FlagS uint8 = 1 << 7
)

// File is the Z80 register file, including the shadow registers and the
// index, stack and program-counter registers.
type File struct {
	a, f, b, c, d, e, h, l uint8

	// shadow registers, swapped in by EX AF,AF' and EXX
	a2, f2, b2, c2, d2, e2, h2, l2 uint8

	ixh, ixl, iyh, iyl uint8
	i, r               uint8

	sp, pc uint16
}

// NewFile is the preferred method of initialisation for the File type.
func NewFile() *File {
	return &File{}
}

// pair returns the two Reg8 halves of a register pair. SP and PC have no
// 8-bit halves.
func pair(r Reg16) (Reg8, Reg8, bool) {
	switch r {
	case AF:
		return A, F, true
	case BC:
		return B, C, true
	case DE:
		return D, E, true
	case HL:
		return H, L, true
	case IX:
		return IXH, IXL, true
	case IY:
		return IYH, IYL, true
	}
	return 0, 0, false
}

// pairOf returns the register pair an 8-bit register is half of.
func pairOf(r Reg8) (Reg16, bool) {
	switch r {
	case A, F:
		return AF, true
	case B, C:
		return BC, true
	case D, E:
		return DE, true
	case H, L:
		return HL, true
	case IXH, IXL:
		return IX, true
	case IYH, IYL:
		return IY, true
	}
	return 0, false
}

func (rf *File) ptr8(r Reg8) *uint8 {
	switch r {
	case A:
		return &rf.a
	case F:
		return &rf.f
	case B:
		return &rf.b
	case C:
		return &rf.c
	case D:
		return &rf.d
	case E:
		return &rf.e
	case H:
		return &rf.h
	case L:
		return &rf.l
	case IXH:
		return &rf.ixh
	case IXL:
		return &rf.ixl
	case IYH:
		return &rf.iyh
	case IYL:
		return &rf.iyl
	case I:
		return &rf.i
	case R:
		return &rf.r
	}
	panic(fmt.Sprintf("registers: no such 8-bit register (%d)", int(r)))
}

// Read8 returns the value of an 8-bit register.
func (rf *File) Read8(r Reg8) uint8 {
	return *rf.ptr8(r)
}

// Write8 sets the value of an 8-bit register. A write to a half of a
// register pair is reported as two events: one for the 8-bit half and one
// for the 16-bit pair it aliases. I and R report the 8-bit event only.
func (rf *File) Write8(r Reg8, value uint8) {
	p := rf.ptr8(r)
	was := *p

	var pr Reg16
	var was16 uint16
	pr, aliased := pairOf(r)
	if aliased && debug.Active() {
		was16 = rf.Read16(pr)
	}

	*p = value

	if debug.Active() {
		debug.Emit(debug.SourceCPU, debug.Register8Written{
			Register: r.String(),
			Is:       value,
			Was:      was,
		})
		if aliased {
			debug.Emit(debug.SourceCPU, debug.Register16Written{
				Register: pr.String(),
				Is:       rf.Read16(pr),
				Was:      was16,
			})
		}
	}
}

// Read16 returns the value of a 16-bit register or register pair.
func (rf *File) Read16(r Reg16) uint16 {
	switch r {
	case SP:
		return rf.sp
	case PC:
		return rf.pc
	}
	hi, lo, _ := pair(r)
	return uint16(*rf.ptr8(hi))<<8 | uint16(*rf.ptr8(lo))
}

// Write16 sets the value of a 16-bit register or register pair.
func (rf *File) Write16(r Reg16, value uint16) {
	var was uint16

	switch r {
	case SP:
		was = rf.sp
		rf.sp = value
	case PC:
		was = rf.pc
		rf.pc = value
	default:
		hi, lo, _ := pair(r)
		was = rf.Read16(r)
		*rf.ptr8(hi) = uint8(value >> 8)
		*rf.ptr8(lo) = uint8(value)
	}

	if debug.Active() {
		debug.Emit(debug.SourceCPU, debug.Register16Written{
			Register: r.String(),
			Is:       value,
			Was:      was,
		})
	}
}

// Flag returns the state of a single flag in the F register.
func (rf *File) Flag(mask uint8) bool {
	return rf.f&mask != 0
}

// SetFlag sets or clears a single flag in the F register. Flag updates do
// not emit register-write events.
func (rf *File) SetFlag(mask uint8, set bool) {
	if set {
		rf.f |= mask
	} else {
		rf.f &^= mask
	}
}

// ExchangeAF swaps AF with its shadow copy.
func (rf *File) ExchangeAF() {
	rf.a, rf.a2 = rf.a2, rf.a
	rf.f, rf.f2 = rf.f2, rf.f
	if debug.Active() {
		debug.Emit(debug.SourceCPU, debug.Register16Written{
			Register: AF.String(),
			Is:       rf.Read16(AF),
			Was:      uint16(rf.a2)<<8 | uint16(rf.f2),
		})
	}
}

// Exchange swaps BC, DE and HL with their shadow copies. The EXX
// instruction.
func (rf *File) Exchange() {
	rf.b, rf.b2 = rf.b2, rf.b
	rf.c, rf.c2 = rf.c2, rf.c
	rf.d, rf.d2 = rf.d2, rf.d
	rf.e, rf.e2 = rf.e2, rf.e
	rf.h, rf.h2 = rf.h2, rf.h
	rf.l, rf.l2 = rf.l2, rf.l
	if debug.Active() {
		for _, r := range []Reg16{BC, DE, HL} {
			debug.Emit(debug.SourceCPU, debug.Register16Written{
				Register: r.String(),
				Is:       rf.Read16(r),
			})
		}
	}
}

// IncrementR advances the memory-refresh register. Bit 7 is preserved, as
// on the real CPU.
func (rf *File) IncrementR() {
	rf.r = (rf.r & 0x80) | ((rf.r + 1) & 0x7f)
}

// State is a plain copy of the register file, suitable for snapshotting.
type State struct {
	A, F, B, C, D, E, H, L         uint8
	A2, F2, B2, C2, D2, E2, H2, L2 uint8
	IXH, IXL, IYH, IYL             uint8
	I, R                           uint8
	SP, PC                         uint16
}

// State returns a copy of the register file.
func (rf *File) State() State {
	return State{
		A: rf.a, F: rf.f, B: rf.b, C: rf.c, D: rf.d, E: rf.e, H: rf.h, L: rf.l,
		A2: rf.a2, F2: rf.f2, B2: rf.b2, C2: rf.c2, D2: rf.d2, E2: rf.e2, H2: rf.h2, L2: rf.l2,
		IXH: rf.ixh, IXL: rf.ixl, IYH: rf.iyh, IYL: rf.iyl,
		I: rf.i, R: rf.r,
		SP: rf.sp, PC: rf.pc,
	}
}

// SetState restores the register file from a copy taken with State().
func (rf *File) SetState(state State) {
	rf.a, rf.f, rf.b, rf.c, rf.d, rf.e, rf.h, rf.l = state.A, state.F, state.B, state.C, state.D, state.E, state.H, state.L
	rf.a2, rf.f2, rf.b2, rf.c2, rf.d2, rf.e2, rf.h2, rf.l2 = state.A2, state.F2, state.B2, state.C2, state.D2, state.E2, state.H2, state.L2
	rf.ixh, rf.ixl, rf.iyh, rf.iyl = state.IXH, state.IXL, state.IYH, state.IYL
	rf.i, rf.r = state.I, state.R
	rf.sp, rf.pc = state.SP, state.PC
}

func (rf *File) String() string {
	return fmt.Sprintf("AF=%04x BC=%04x DE=%04x HL=%04x IX=%04x IY=%04x SP=%04x PC=%04x",
		rf.Read16(AF), rf.Read16(BC), rf.Read16(DE), rf.Read16(HL),
		rf.Read16(IX), rf.Read16(IY), rf.sp, rf.pc)
}
