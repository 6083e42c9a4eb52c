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

package gatearray_test

import (
	"testing"

	"github.com/mdm/ronald/hardware/crtc"
	"github.com/mdm/ronald/hardware/gatearray"
	"github.com/mdm/ronald/hardware/memory"
	"github.com/mdm/ronald/hardware/model"
	"github.com/mdm/ronald/hardware/screen"
	"github.com/mdm/ronald/test"
)

// rig is a CRTC/gate array pair with the standard CPC register program.
type rig struct {
	crt *crtc.CRTC
	ga  *gatearray.GateArray
	mem *memory.Memory
	scr *screen.Screen
}

func newRig() *rig {
	r := &rig{
		crt: crtc.NewCRTC(),
		ga:  gatearray.NewGateArray(),
		mem: memory.NewMemory(model.CPC464),
		scr: screen.NewScreen(),
	}

	values := map[int]uint8{
		crtc.HorizontalTotal:        63,
		crtc.HorizontalDisplayed:    40,
		crtc.HorizontalSyncPosition: 46,
		crtc.SyncWidths:             0x8e,
		crtc.VerticalTotal:          38,
		crtc.VerticalDisplayed:      25,
		crtc.VerticalSyncPosition:   30,
		crtc.MaximumRasterAddress:   7,
	}
	for register, value := range values {
		r.crt.Write(0xbc00, uint8(register))
		r.crt.Write(0xbd00, value)
	}

	return r
}

// tick advances the pair one character tick, returning whether the
// interrupt fired.
func (r *rig) tick() bool {
	r.crt.Step()
	return r.ga.Step(r.crt, r.mem, r.scr, nil)
}

const frameTicks = 64 * 8 * 39

func TestInterruptCadence(t *testing.T) {
	r := newRig()

	// run one frame to settle the counter phase against vsync, then count
	// interrupts over five frames: exactly six per frame with the default
	// register program
	for i := 0; i < frameTicks; i++ {
		if r.tick() {
			r.ga.AcknowledgeInterrupt()
		}
	}

	interrupts := 0
	for i := 0; i < 5*frameTicks; i++ {
		if r.tick() {
			interrupts++
			r.ga.AcknowledgeInterrupt()
		}
	}
	test.ExpectEquality(t, interrupts, 5*6)
}

func TestInterruptEvery52HSyncs(t *testing.T) {
	r := newRig()

	// between two consecutive interrupts there are 52 hsync falling edges
	// (except across the vsync resynchronisation)
	for !r.tick() {
	}
	r.ga.AcknowledgeInterrupt()

	falling := 0
	previous := r.crt.HSync()
	for {
		r.crt.Step()
		interrupt := r.ga.Step(r.crt, r.mem, r.scr, r.scr2())
		if previous && !r.crt.HSync() {
			falling++
		}
		previous = r.crt.HSync()
		if interrupt {
			break
		}
	}

	test.ExpectEquality(t, falling, 52)
}

// scr2 avoids a nil VideoSink being a special case in the test above.
func (r *rig) scr2() screen.VideoSink {
	return nil
}

func TestModeLatchedAtHSync(t *testing.T) {
	r := newRig()

	// request mode 2. the current mode must not change until the next
	// hsync rising edge
	r.ga.Write(r.mem, 0x80)
	r.ga.Write(r.mem, 0x82)
	test.ExpectEquality(t, r.ga.CurrentMode(), uint8(0))

	for !r.crt.HSync() {
		test.ExpectEquality(t, r.ga.CurrentMode(), uint8(0))
		r.tick()
	}
	// the step that raised hsync latched the mode; it holds on the next step
	r.tick()
	test.ExpectEquality(t, r.ga.CurrentMode(), uint8(2))
}

func TestPenAndBorderSelect(t *testing.T) {
	r := newRig()

	// select pen 3, set colour 0x14 (hardware black)
	r.ga.Write(r.mem, 0x03)
	r.ga.Write(r.mem, 0x54)
	test.ExpectEquality(t, r.ga.PenColour(3), uint8(0x14))

	// select the border, set colour 0x4b (bright white)
	r.ga.Write(r.mem, 0x10)
	r.ga.Write(r.mem, 0x4b)
	test.ExpectEquality(t, r.ga.PenColour(16), uint8(0x0b))
}

func TestRomEnables(t *testing.T) {
	r := newRig()

	rom := make([]uint8, 0x4000)
	rom[0x100] = 0xaa
	r.mem.LoadLowerRom(rom)
	r.mem.WriteByte(0x0100, 0x55)

	// function 2 with bit 2 set disables the lower ROM
	r.ga.Write(r.mem, 0x84)
	test.ExpectEquality(t, r.mem.ReadByte(0x0100), uint8(0x55))

	// bit 2 clear enables it again
	r.ga.Write(r.mem, 0x80)
	test.ExpectEquality(t, r.mem.ReadByte(0x0100), uint8(0xaa))
}

func TestInterruptCounterResetBit(t *testing.T) {
	r := newRig()

	// run the counter up to 40 hsync falling edges, then reset it through
	// function 2 bit 4
	for i := 0; i < 40; i++ {
		for p := r.crt.HSync(); ; {
			r.tick()
			if p && !r.crt.HSync() {
				break
			}
			p = r.crt.HSync()
		}
	}

	r.ga.Write(r.mem, 0x90)
	test.ExpectEquality(t, r.ga.InterruptCounter(), uint8(0))
}

func TestAcknowledgeClearsBit5(t *testing.T) {
	r := newRig()

	// run the counter up to 33 hsync falling edges
	count := 0
	previous := r.crt.HSync()
	for count < 33 {
		r.tick()
		if previous && !r.crt.HSync() {
			count++
		}
		previous = r.crt.HSync()
	}

	test.ExpectEquality(t, r.ga.InterruptCounter(), uint8(33))
	r.ga.AcknowledgeInterrupt()
	test.ExpectEquality(t, r.ga.InterruptCounter(), uint8(1))
}
