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
	"github.com/mdm/ronald/hardware/cpu/registers"
)

// parity holds true for every byte value with an even number of set bits.
var parity [256]bool

func init() {
	for i := 0; i < 256; i++ {
		p := true
		for b := 0; b < 8; b++ {
			if i&(1<<b) != 0 {
				p = !p
			}
		}
		parity[i] = p
	}
}

// setSZ sets the sign and zero flags from an 8-bit result.
func (mc *CPU) setSZ(result uint8) {
	mc.Registers.SetFlag(registers.FlagS, result&0x80 != 0)
	mc.Registers.SetFlag(registers.FlagZ, result == 0)
}

// setSZP sets the sign, zero and parity flags from an 8-bit result.
func (mc *CPU) setSZP(result uint8) {
	mc.setSZ(result)
	mc.Registers.SetFlag(registers.FlagP, parity[result])
}

// carryIn returns the carry flag as an integer for folding into additions.
func (mc *CPU) carryIn() uint8 {
	if mc.Registers.Flag(registers.FlagC) {
		return 1
	}
	return 0
}

// add8 performs an 8-bit addition with optional carry-in and sets all six
// flags.
func (mc *CPU) add8(left, right, carry uint8) uint8 {
	result16 := uint16(left) + uint16(right) + uint16(carry)
	result := uint8(result16)

	mc.setSZ(result)
	mc.Registers.SetFlag(registers.FlagH, (left&0x0f)+(right&0x0f)+carry > 0x0f)
	mc.Registers.SetFlag(registers.FlagP, (left&0x80) == (right&0x80) && (left&0x80) != (result&0x80))
	mc.Registers.SetFlag(registers.FlagN, false)
	mc.Registers.SetFlag(registers.FlagC, result16 > 0xff)

	return result
}

// sub8 performs an 8-bit subtraction with optional borrow-in and sets all
// six flags. Used by SUB, SBC, CP and NEG.
func (mc *CPU) sub8(left, right, carry uint8) uint8 {
	result16 := uint16(left) - uint16(right) - uint16(carry)
	result := uint8(result16)

	mc.setSZ(result)
	mc.Registers.SetFlag(registers.FlagH, (left&0x0f) < (right&0x0f)+carry)
	mc.Registers.SetFlag(registers.FlagP, (left&0x80) != (right&0x80) && (right&0x80) == (result&0x80))
	mc.Registers.SetFlag(registers.FlagN, true)
	mc.Registers.SetFlag(registers.FlagC, result16 > 0xff)

	return result
}

// logicFlags sets the flags common to AND, OR and XOR. Only the half-carry
// flag differs between them.
func (mc *CPU) logicFlags(result uint8, halfCarry bool) {
	mc.setSZP(result)
	mc.Registers.SetFlag(registers.FlagH, halfCarry)
	mc.Registers.SetFlag(registers.FlagN, false)
	mc.Registers.SetFlag(registers.FlagC, false)
}

// inc8 increments an 8-bit value. The carry flag is not affected.
func (mc *CPU) inc8(value uint8) uint8 {
	result := value + 1
	mc.setSZ(result)
	mc.Registers.SetFlag(registers.FlagH, value&0x0f == 0x0f)
	mc.Registers.SetFlag(registers.FlagP, value == 0x7f)
	mc.Registers.SetFlag(registers.FlagN, false)
	return result
}

// dec8 decrements an 8-bit value. The carry flag is not affected.
func (mc *CPU) dec8(value uint8) uint8 {
	result := value - 1
	mc.setSZ(result)
	mc.Registers.SetFlag(registers.FlagH, value&0x0f == 0x00)
	mc.Registers.SetFlag(registers.FlagP, value == 0x80)
	mc.Registers.SetFlag(registers.FlagN, true)
	return result
}

// add16 performs the plain 16-bit addition of ADD HL,rr. Sign, zero and
// parity are not affected.
func (mc *CPU) add16(left, right uint16) uint16 {
	result32 := uint32(left) + uint32(right)
	result := uint16(result32)

	mc.Registers.SetFlag(registers.FlagH, (left&0x0fff)+(right&0x0fff) > 0x0fff)
	mc.Registers.SetFlag(registers.FlagN, false)
	mc.Registers.SetFlag(registers.FlagC, result32 > 0xffff)

	return result
}

// adc16 performs the 16-bit addition of ADC HL,rr and sets all six flags.
func (mc *CPU) adc16(left, right uint16, carry uint8) uint16 {
	result32 := uint32(left) + uint32(right) + uint32(carry)
	result := uint16(result32)

	mc.Registers.SetFlag(registers.FlagS, result&0x8000 != 0)
	mc.Registers.SetFlag(registers.FlagZ, result == 0)
	mc.Registers.SetFlag(registers.FlagH, (left&0x0fff)+(right&0x0fff)+uint16(carry) > 0x0fff)
	mc.Registers.SetFlag(registers.FlagP, (left&0x8000) == (right&0x8000) && (left&0x8000) != (result&0x8000))
	mc.Registers.SetFlag(registers.FlagN, false)
	mc.Registers.SetFlag(registers.FlagC, result32 > 0xffff)

	return result
}

// sbc16 performs the 16-bit subtraction of SBC HL,rr and sets all six
// flags.
func (mc *CPU) sbc16(left, right uint16, carry uint8) uint16 {
	result32 := uint32(left) - uint32(right) - uint32(carry)
	result := uint16(result32)

	mc.Registers.SetFlag(registers.FlagS, result&0x8000 != 0)
	mc.Registers.SetFlag(registers.FlagZ, result == 0)
	mc.Registers.SetFlag(registers.FlagH, (left&0x0fff) < (right&0x0fff)+uint16(carry))
	mc.Registers.SetFlag(registers.FlagP, (left&0x8000) != (right&0x8000) && (right&0x8000) == (result&0x8000))
	mc.Registers.SetFlag(registers.FlagN, true)
	mc.Registers.SetFlag(registers.FlagC, result32 > 0xffff)

	return result
}

// daa applies the decimal-adjust correction to the accumulator using the
// current N, H and C flags.
func (mc *CPU) daa() {
	a := mc.Registers.Read8(registers.A)

	var correction uint8
	carry := mc.Registers.Flag(registers.FlagC)

	if a&0x0f > 0x09 || mc.Registers.Flag(registers.FlagH) {
		correction |= 0x06
	}
	if a > 0x99 || carry {
		correction |= 0x60
		carry = true
	}

	var result uint8
	if mc.Registers.Flag(registers.FlagN) {
		result = a - correction
		mc.Registers.SetFlag(registers.FlagH, a&0x0f < correction&0x0f)
	} else {
		result = a + correction
		mc.Registers.SetFlag(registers.FlagH, a&0x0f+correction&0x0f > 0x0f)
	}

	mc.setSZP(result)
	mc.Registers.SetFlag(registers.FlagC, carry)
	mc.Registers.Write8(registers.A, result)
}

// rotate and shift primitives. each returns the result and sets the carry
// flag to the bit shifted out. the remaining flags are the caller's
// business because the A-suffixed forms and the CB-prefixed forms differ.

func (mc *CPU) rlc(value uint8) uint8 {
	carry := value >> 7
	result := value<<1 | carry
	mc.Registers.SetFlag(registers.FlagC, carry != 0)
	return result
}

func (mc *CPU) rrc(value uint8) uint8 {
	carry := value & 0x01
	result := value>>1 | carry<<7
	mc.Registers.SetFlag(registers.FlagC, carry != 0)
	return result
}

func (mc *CPU) rl(value uint8) uint8 {
	result := value<<1 | mc.carryIn()
	mc.Registers.SetFlag(registers.FlagC, value&0x80 != 0)
	return result
}

func (mc *CPU) rr(value uint8) uint8 {
	result := value>>1 | mc.carryIn()<<7
	mc.Registers.SetFlag(registers.FlagC, value&0x01 != 0)
	return result
}

func (mc *CPU) sla(value uint8) uint8 {
	mc.Registers.SetFlag(registers.FlagC, value&0x80 != 0)
	return value << 1
}

func (mc *CPU) sra(value uint8) uint8 {
	mc.Registers.SetFlag(registers.FlagC, value&0x01 != 0)
	return value>>1 | value&0x80
}

// sll is the undocumented shift that sets bit 0.
func (mc *CPU) sll(value uint8) uint8 {
	mc.Registers.SetFlag(registers.FlagC, value&0x80 != 0)
	return value<<1 | 0x01
}

func (mc *CPU) srl(value uint8) uint8 {
	mc.Registers.SetFlag(registers.FlagC, value&0x01 != 0)
	return value >> 1
}
