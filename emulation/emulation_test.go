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

package emulation_test

import (
	"testing"

	"github.com/mdm/ronald/emulation"
	"github.com/mdm/ronald/hardware/model"
	"github.com/mdm/ronald/test"
)

// countingSink counts frames and pixels.
type countingSink struct {
	frames int
	pixels int
}

func (snk *countingSink) SetPixel(x, y int, red, green, blue uint8) {
	snk.pixels++
}

func (snk *countingSink) SubmitFrame() {
	snk.frames++
}

// program the standard CPC frame through the I/O ports.
func program(drv *emulation.Driver) {
	values := map[uint8]uint8{0: 63, 1: 40, 2: 46, 3: 0x8e, 4: 38, 6: 25, 7: 30, 9: 7}
	for register, value := range values {
		drv.System().Bus.WritePort(0xbc00, register)
		drv.System().Bus.WritePort(0xbd00, value)
	}
}

func TestBudgetAccumulation(t *testing.T) {
	drv := emulation.NewDriver(model.CPC464, nil)
	program(drv)

	// less than one frame of budget runs nothing
	snk := &countingSink{}
	drv.Step(10_000, snk, nil)
	test.ExpectEquality(t, drv.System().MasterClock, uint64(0))

	// the carried-over budget tops up to one frame
	drv.Step(10_000, snk, nil)
	test.ExpectEquality(t, drv.System().MasterClock, uint64(5000*16))
}

func TestFrameRate(t *testing.T) {
	drv := emulation.NewDriver(model.CPC464, nil)
	program(drv)

	// half a second of emulated time at 50Hz: roughly 25 frame
	// submissions. the first frame of the run settles the vsync phase
	snk := &countingSink{}
	drv.Step(500_000, snk, nil)
	test.ExpectApproximate(t, snk.frames, 25, 0.1)
	test.ExpectSuccess(t, snk.pixels > 0)
}

func TestDisassembleFromCurrentPC(t *testing.T) {
	drv := emulation.NewDriver(model.CPC464, nil)

	// an empty machine disassembles as nops
	entries := drv.Disassemble(4)
	test.ExpectEquality(t, len(entries), 4)
	for _, entry := range entries {
		test.ExpectEquality(t, entry.Mnemonic, "nop")
	}
}

func TestLoadDiskRejectsGarbage(t *testing.T) {
	drv := emulation.NewDriver(model.CPC6128, nil)

	err := drv.LoadDisk(0, []uint8("not a dsk image, nowhere near long enough to matter........."), "bad.dsk")
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, drv.System().Bus.FDC.Disk(0) == nil, true)
}
