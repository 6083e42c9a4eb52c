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
	"fmt"

	"github.com/mdm/ronald/debug"
	"github.com/mdm/ronald/hardware/cpu/instructions"
	"github.com/mdm/ronald/hardware/cpu/registers"
)

// Memory is the view of the address space required by the CPU.
type Memory interface {
	ReadByte(address uint16) uint8
	ReadWord(address uint16) uint16
	WriteByte(address uint16, value uint8)
	WriteWord(address uint16, value uint16)
}

// IO is the view of the I/O port space required by the CPU. The full 16-bit
// port address is significant on the CPC.
type IO interface {
	ReadPort(port uint16) uint8
	WritePort(port uint16, value uint8)
}

// CPU implements the Zilog Z80. Register logic is implemented by the File
// type in the registers sub-package; instruction decoding by the free
// Decode() function.
type CPU struct {
	Registers *registers.File

	// interrupt flip-flops. IFF2 preserves IFF1 across a non-maskable
	// interrupt and is read by LD A,I and LD A,R
	IFF1 bool
	IFF2 bool

	// the CPU sits on NOPs while halted, waking on an interrupt
	Halted bool

	Mode instructions.InterruptMode

	// EI enables interrupts after the instruction that follows it. this
	// latch carries the enable across the one-instruction gap
	enableInterrupt bool

	// an interrupt has been requested and not yet serviced
	irq bool
}

// NewCPU is the preferred method of initialisation for the CPU type.
func NewCPU() *CPU {
	return &CPU{
		Registers: registers.NewFile(),
		Mode:      instructions.Mode1,
	}
}

func (mc *CPU) String() string {
	return mc.Registers.String()
}

// Reset the CPU to its power-on state. Registers are not cleared; the
// program counter restarts at zero with interrupts disabled.
func (mc *CPU) Reset() {
	mc.Registers.Write16(registers.PC, 0x0000)
	mc.IFF1 = false
	mc.IFF2 = false
	mc.Halted = false
	mc.Mode = instructions.Mode1
	mc.enableInterrupt = false
	mc.irq = false
}

// RequestInterrupt latches a maskable interrupt request. The request is held
// until the CPU services it.
func (mc *CPU) RequestInterrupt() {
	mc.irq = true
}

// handleInterrupt services a pending interrupt if the interrupt flip-flop
// allows it, returning true when the interrupt was taken. Only mode 1 is
// used on the CPC; modes 0 and 2 are treated as mode 1.
func (mc *CPU) handleInterrupt(mem Memory) bool {
	if !mc.irq || !mc.IFF1 {
		return false
	}

	mc.Halted = false
	mc.irq = false

	// the program counter already addresses the next instruction
	pc := mc.Registers.Read16(registers.PC)
	sp := mc.Registers.Read16(registers.SP) - 2
	mc.Registers.Write16(registers.SP, sp)
	mem.WriteWord(sp, pc)
	mc.Registers.Write16(registers.PC, 0x0038)

	return true
}

// FetchAndExecute runs one instruction. It returns the duration of the
// instruction in NOP units and whether a pending interrupt was acknowledged
// at the instruction boundary.
func (mc *CPU) FetchAndExecute(mem Memory, io IO) (int, bool) {
	if mc.Halted {
		if mc.handleInterrupt(mem) {
			return 4, true
		}
		// a halted CPU executes NOPs
		return 1, false
	}

	if mc.enableInterrupt {
		mc.IFF1 = true
		mc.IFF2 = true
		mc.enableInterrupt = false
	}

	pc := mc.Registers.Read16(registers.PC)
	ins, next := Decode(mem, pc)

	mc.refresh(ins)

	if debug.Active() {
		debug.Emit(debug.SourceCPU, debug.InstructionDecoded{
			Address:  pc,
			Mnemonic: ins.String(),
		})
	}

	mc.Registers.Write16(registers.PC, next)

	timing, preventInterrupt := mc.execute(mem, io, ins)

	if !preventInterrupt && mc.handleInterrupt(mem) {
		return timing, true
	}

	return timing, false
}

// refresh advances the R register once per fetched opcode byte. Prefixed
// instructions refresh twice.
func (mc *CPU) refresh(ins instructions.Instruction) {
	mc.Registers.IncrementR()
	for i := 0; i < prefixCount(ins); i++ {
		mc.Registers.IncrementR()
	}
}

// prefixCount returns the number of prefix bytes implied by a decoded
// instruction.
func prefixCount(ins instructions.Instruction) int {
	n := 0

	indexed := func(op instructions.Operand) bool {
		switch op.Kind {
		case instructions.KindReg8:
			switch op.Reg8 {
			case registers.IXH, registers.IXL, registers.IYH, registers.IYL:
				return true
			}
		case instructions.KindReg16, instructions.KindRegIndirect, instructions.KindIndexed:
			return op.Reg16 == registers.IX || op.Reg16 == registers.IY
		}
		return false
	}
	if indexed(ins.Dst) || indexed(ins.Src) {
		n++
	}

	switch ins.Op {
	case instructions.Rlc, instructions.Rrc, instructions.Rl, instructions.Rr,
		instructions.Sla, instructions.Sra, instructions.Sll, instructions.Srl,
		instructions.Bit, instructions.Res, instructions.Set:
		n++
	case instructions.Neg, instructions.Reti, instructions.Retn, instructions.Im,
		instructions.Rld, instructions.Rrd,
		instructions.Ldi, instructions.Ldd, instructions.Ldir, instructions.Lddr,
		instructions.Cpi, instructions.Cpd, instructions.Cpir, instructions.Cpdr,
		instructions.Ini, instructions.Ind, instructions.Inir, instructions.Indr,
		instructions.Outi, instructions.Outd, instructions.Otir, instructions.Otdr:
		n++
	}

	// the displacement and final opcode of a DDCB or FDCB instruction are
	// not opcode fetches: it refreshes twice, like the other prefixed forms
	if n > 1 {
		n = 1
	}

	return n
}

// operand loading and storing. the address calculations for the indexed
// operands wrap at the 64K boundary as on the real CPU.

func (mc *CPU) loadByte(mem Memory, op instructions.Operand) uint8 {
	switch op.Kind {
	case instructions.KindImm8:
		return uint8(op.Value)
	case instructions.KindReg8:
		return mc.Registers.Read8(op.Reg8)
	case instructions.KindDirect:
		return mem.ReadByte(op.Value)
	case instructions.KindRegIndirect:
		return mem.ReadByte(mc.Registers.Read16(op.Reg16))
	case instructions.KindIndexed:
		return mem.ReadByte(mc.indexedAddress(op))
	}
	panic(fmt.Sprintf("cpu: cannot load byte from operand kind %d", op.Kind))
}

func (mc *CPU) storeByte(mem Memory, op instructions.Operand, value uint8) {
	switch op.Kind {
	case instructions.KindReg8:
		mc.Registers.Write8(op.Reg8, value)
	case instructions.KindDirect:
		mem.WriteByte(op.Value, value)
	case instructions.KindRegIndirect:
		mem.WriteByte(mc.Registers.Read16(op.Reg16), value)
	case instructions.KindIndexed:
		mem.WriteByte(mc.indexedAddress(op), value)
	default:
		panic(fmt.Sprintf("cpu: cannot store byte to operand kind %d", op.Kind))
	}
}

func (mc *CPU) loadWord(mem Memory, op instructions.Operand) uint16 {
	switch op.Kind {
	case instructions.KindImm16:
		return op.Value
	case instructions.KindReg16:
		return mc.Registers.Read16(op.Reg16)
	case instructions.KindDirect:
		return mem.ReadWord(op.Value)
	case instructions.KindRegIndirect:
		return mem.ReadWord(mc.Registers.Read16(op.Reg16))
	}
	panic(fmt.Sprintf("cpu: cannot load word from operand kind %d", op.Kind))
}

func (mc *CPU) storeWord(mem Memory, op instructions.Operand, value uint16) {
	switch op.Kind {
	case instructions.KindReg16:
		mc.Registers.Write16(op.Reg16, value)
	case instructions.KindDirect:
		mem.WriteWord(op.Value, value)
	case instructions.KindRegIndirect:
		mem.WriteWord(mc.Registers.Read16(op.Reg16), value)
	default:
		panic(fmt.Sprintf("cpu: cannot store word to operand kind %d", op.Kind))
	}
}

func (mc *CPU) indexedAddress(op instructions.Operand) uint16 {
	return mc.Registers.Read16(op.Reg16) + uint16(int16(op.Disp))
}

// condition evaluates the jump test of a conditional instruction.
func (mc *CPU) condition(cond instructions.Condition) bool {
	switch cond {
	case instructions.CondNone:
		return true
	case instructions.CondNZ:
		return !mc.Registers.Flag(registers.FlagZ)
	case instructions.CondZ:
		return mc.Registers.Flag(registers.FlagZ)
	case instructions.CondNC:
		return !mc.Registers.Flag(registers.FlagC)
	case instructions.CondC:
		return mc.Registers.Flag(registers.FlagC)
	case instructions.CondPO:
		return !mc.Registers.Flag(registers.FlagP)
	case instructions.CondPE:
		return mc.Registers.Flag(registers.FlagP)
	case instructions.CondP:
		return !mc.Registers.Flag(registers.FlagS)
	case instructions.CondM:
		return mc.Registers.Flag(registers.FlagS)
	}
	return false
}

// push a word onto the stack.
func (mc *CPU) push(mem Memory, value uint16) {
	sp := mc.Registers.Read16(registers.SP) - 2
	mc.Registers.Write16(registers.SP, sp)
	mem.WriteWord(sp, value)
}

// pop a word off the stack.
func (mc *CPU) pop(mem Memory) uint16 {
	sp := mc.Registers.Read16(registers.SP)
	value := mem.ReadWord(sp)
	mc.Registers.Write16(registers.SP, sp+2)
	return value
}

// State is a plain copy of the CPU state, suitable for snapshotting.
type State struct {
	Registers       registers.State
	IFF1, IFF2      bool
	Halted          bool
	Mode            int
	EnableInterrupt bool
	IRQ             bool
}

// State returns a copy of the CPU state.
func (mc *CPU) State() State {
	return State{
		Registers:       mc.Registers.State(),
		IFF1:            mc.IFF1,
		IFF2:            mc.IFF2,
		Halted:          mc.Halted,
		Mode:            int(mc.Mode),
		EnableInterrupt: mc.enableInterrupt,
		IRQ:             mc.irq,
	}
}

// SetState restores the CPU from a copy taken with State().
func (mc *CPU) SetState(state State) {
	mc.Registers.SetState(state.Registers)
	mc.IFF1 = state.IFF1
	mc.IFF2 = state.IFF2
	mc.Halted = state.Halted
	mc.Mode = instructions.InterruptMode(state.Mode)
	mc.enableInterrupt = state.EnableInterrupt
	mc.irq = state.IRQ
}
