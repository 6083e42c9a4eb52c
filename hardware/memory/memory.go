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

// Package memory implements the banked address space of the CPC: 64K of RAM
// (128K on the 6128), a lower ROM overlaying 0x0000 to 0x3fff and a
// selectable upper ROM overlaying 0xc000 to 0xffff.
//
// Writes always land in RAM. Reads resolve in a fixed order: the forced-RAM
// flag first, then the lower ROM, then the upper ROM. An upper ROM slot
// that is not populated falls through to RAM; that is not an error.
package memory

import (
	"github.com/mdm/ronald/curated"
	"github.com/mdm/ronald/debug"
	"github.com/mdm/ronald/hardware/model"
	"github.com/mdm/ronald/logger"
)

// Error patterns for the memory package.
const (
	NoSecondBank = "memory: ram banking requires a cpc 6128"
)

const (
	romSize  = 0x4000
	ramSize  = 0x10000
	slotSize = 0x4000

	lowerRomTop    = 0x4000
	upperRomBottom = 0xc000
)

// the eight standard RAM configurations of the 6128 expansion gate array.
// each entry maps the four 16K slots of the address space to one of eight
// physical banks; banks 0 to 3 are the base 64K, banks 4 to 7 the
// expansion.
var ramConfigurations = [8][4]int{
	{0, 1, 2, 3},
	{0, 1, 2, 7},
	{4, 5, 6, 7},
	{0, 3, 2, 7},
	{0, 4, 2, 3},
	{0, 5, 2, 3},
	{0, 6, 2, 3},
	{0, 7, 2, 3},
}

// Memory is the banked address space. The model tag decides whether the
// expansion bank and RAM configurations are available.
type Memory struct {
	model model.Model

	base      []uint8
	expansion []uint8

	lowerRom  []uint8
	upperRoms map[uint8][]uint8

	lowerRomEnabled  bool
	upperRomEnabled  bool
	selectedUpperRom uint8
	ramReadForced    bool

	// current RAM configuration. always zero on the 64K models
	ramConfig uint8
}

// NewMemory is the preferred method of initialisation for the Memory type.
// ROMs are loaded separately with LoadLowerRom() and LoadUpperRom().
func NewMemory(m model.Model) *Memory {
	mem := &Memory{
		model:           m,
		base:            make([]uint8, ramSize),
		upperRoms:       make(map[uint8][]uint8),
		lowerRomEnabled: true,
		upperRomEnabled: true,
	}

	if m.SecondBank() {
		mem.expansion = make([]uint8, ramSize)
	}

	return mem
}

// LoadLowerRom installs the operating-system ROM. Data shorter than 16K is
// padded; longer data is truncated.
func (mem *Memory) LoadLowerRom(data []uint8) {
	mem.lowerRom = clampRom(data)
	logger.Logf("memory", "lower rom loaded (%d bytes)", len(data))
}

// LoadUpperRom installs an upper ROM in the numbered slot. Slot 0 is
// conventionally BASIC and slot 7 AMSDOS.
func (mem *Memory) LoadUpperRom(slot uint8, data []uint8) {
	mem.upperRoms[slot] = clampRom(data)
	logger.Logf("memory", "upper rom %d loaded (%d bytes)", slot, len(data))
}

func clampRom(data []uint8) []uint8 {
	rom := make([]uint8, romSize)
	copy(rom, data)
	return rom
}

// ram returns the physical bank backing an address under the current RAM
// configuration.
func (mem *Memory) ram(address uint16) *uint8 {
	if mem.ramConfig == 0 {
		return &mem.base[address]
	}

	bank := ramConfigurations[mem.ramConfig][address>>14]
	offset := uint32(bank&0x03)<<14 | uint32(address&0x3fff)
	if bank < 4 {
		return &mem.base[offset]
	}
	return &mem.expansion[offset]
}

// ReadByte resolves a read of the address space.
func (mem *Memory) ReadByte(address uint16) uint8 {
	value := mem.resolveRead(address)

	if debug.Active() {
		debug.Emit(debug.SourceMemory, debug.MemoryRead{
			Address: address,
			Value:   value,
		})
	}

	return value
}

func (mem *Memory) resolveRead(address uint16) uint8 {
	if mem.ramReadForced {
		return *mem.ram(address)
	}

	if mem.lowerRomEnabled && address < lowerRomTop && mem.lowerRom != nil {
		return mem.lowerRom[address]
	}

	if mem.upperRomEnabled && address >= upperRomBottom {
		if rom, ok := mem.upperRoms[mem.selectedUpperRom]; ok {
			return rom[address-upperRomBottom]
		}
		// an unpopulated slot falls through to RAM
	}

	return *mem.ram(address)
}

// ReadWord reads two bytes in little-endian order.
func (mem *Memory) ReadWord(address uint16) uint16 {
	lo := mem.ReadByte(address)
	hi := mem.ReadByte(address + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// WriteByte writes to RAM. ROM contents are never modified.
func (mem *Memory) WriteByte(address uint16, value uint8) {
	p := mem.ram(address)

	if debug.Active() {
		debug.Emit(debug.SourceMemory, debug.MemoryWritten{
			Address: address,
			Is:      value,
			Was:     *p,
		})
	}

	*p = value
}

// WriteWord writes two bytes in little-endian order.
func (mem *Memory) WriteWord(address uint16, value uint16) {
	mem.WriteByte(address, uint8(value))
	mem.WriteByte(address+1, uint8(value>>8))
}

// ReadVideo reads the base RAM bank directly. The gate array fetches pixels
// from physical RAM regardless of ROM overlays and RAM configuration, and
// the fetch does not appear in the event log.
func (mem *Memory) ReadVideo(address uint16) uint8 {
	return mem.base[address]
}

// EnableLowerRom controls the ROM overlay at 0x0000 to 0x3fff.
func (mem *Memory) EnableLowerRom(enable bool) {
	mem.lowerRomEnabled = enable
}

// EnableUpperRom controls the ROM overlay at 0xc000 to 0xffff.
func (mem *Memory) EnableUpperRom(enable bool) {
	mem.upperRomEnabled = enable
}

// SelectUpperRom selects which upper ROM the overlay presents.
func (mem *Memory) SelectUpperRom(slot uint8) {
	mem.selectedUpperRom = slot
}

// ForceRAMRead makes every read resolve to RAM regardless of the ROM
// enables.
func (mem *Memory) ForceRAMRead(force bool) {
	mem.ramReadForced = force
}

// SelectRAMConfig switches to one of the eight standard RAM configurations.
// Only the 6128 accepts the call; the 64K models return an error which the
// gate array logs and otherwise ignores.
func (mem *Memory) SelectRAMConfig(config uint8) error {
	if !mem.model.SecondBank() {
		return curated.Errorf(NoSecondBank)
	}
	mem.ramConfig = config & 0x07
	return nil
}

// State is a plain copy of the memory state, suitable for snapshotting. ROM
// contents are not part of the state; they are reloaded from their files.
type State struct {
	Base             []uint8
	Expansion        []uint8
	LowerRomEnabled  bool
	UpperRomEnabled  bool
	SelectedUpperRom uint8
	RAMReadForced    bool
	RAMConfig        uint8
}

// State returns a copy of the memory state.
func (mem *Memory) State() State {
	state := State{
		Base:             append([]uint8(nil), mem.base...),
		LowerRomEnabled:  mem.lowerRomEnabled,
		UpperRomEnabled:  mem.upperRomEnabled,
		SelectedUpperRom: mem.selectedUpperRom,
		RAMReadForced:    mem.ramReadForced,
		RAMConfig:        mem.ramConfig,
	}
	if mem.expansion != nil {
		state.Expansion = append([]uint8(nil), mem.expansion...)
	}
	return state
}

// SetState restores the memory from a copy taken with State().
func (mem *Memory) SetState(state State) {
	copy(mem.base, state.Base)
	if mem.expansion != nil && state.Expansion != nil {
		copy(mem.expansion, state.Expansion)
	}
	mem.lowerRomEnabled = state.LowerRomEnabled
	mem.upperRomEnabled = state.UpperRomEnabled
	mem.selectedUpperRom = state.SelectedUpperRom
	mem.ramReadForced = state.RAMReadForced
	mem.ramConfig = state.RAMConfig
}
