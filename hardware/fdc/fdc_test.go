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

package fdc_test

import (
	"testing"

	"github.com/mdm/ronald/hardware/fdc"
	"github.com/mdm/ronald/test"
)

// buildImage constructs a minimal single-track standard image with one
// 512-byte sector, id 0xc1, filled with an incrementing pattern.
func buildImage() []uint8 {
	trackSize := 0x100 + 512

	image := make([]uint8, 0x100+trackSize)
	copy(image, "MV - CPCEMU Disk-File\r\nDisk-Info\r\n")
	image[0x30] = 1
	image[0x31] = 1
	image[0x32] = uint8(trackSize)
	image[0x33] = uint8(trackSize >> 8)

	offset := 0x100
	copy(image[offset:], "Track-Info\r\n")
	image[offset+0x14] = 2
	image[offset+0x15] = 1
	image[offset+0x18+2] = 0xc1
	image[offset+0x18+3] = 2

	for i := 0; i < 512; i++ {
		image[offset+0x100+i] = uint8(i)
	}

	return image
}

// statusBits decodes the main status register for readability.
func statusBits(value uint8) (rqm, dio, exm, cb bool) {
	return value&0x80 != 0, value&0x40 != 0, value&0x20 != 0, value&0x10 != 0
}

func TestReadSectorPhaseWalk(t *testing.T) {
	controller := fdc.NewFDC()
	test.ExpectSuccess(t, controller.LoadDisk(0, buildImage(), "test.dsk"))

	// idle: request-for-master set, nothing else
	rqm, dio, exm, cb := statusBits(controller.ReadStatus())
	test.ExpectSuccess(t, rqm)
	test.ExpectFailure(t, dio)
	test.ExpectFailure(t, exm)
	test.ExpectFailure(t, cb)

	// read sector: command byte then eight operands
	controller.WriteData(0x06)
	_, _, _, cb = statusBits(controller.ReadStatus())
	test.ExpectSuccess(t, cb)

	for _, operand := range []uint8{0, 0, 0, 0xc1, 2, 0xc1, 0, 0xff} {
		controller.WriteData(operand)
	}

	// execution phase: data flows controller to host
	_, dio, exm, _ = statusBits(controller.ReadStatus())
	test.ExpectSuccess(t, dio)
	test.ExpectSuccess(t, exm)

	// drain the sector
	for i := 0; i < 512; i++ {
		test.ExpectEquality(t, controller.ReadData(), uint8(i))
	}

	// result phase: seven bytes, ST0 carries end-of-track and the unit
	_, _, exm, _ = statusBits(controller.ReadStatus())
	test.ExpectFailure(t, exm)

	st0 := controller.ReadData()
	test.ExpectEquality(t, st0&0x40, uint8(0x40))
	test.ExpectEquality(t, st0&0x03, uint8(0x00))

	controller.ReadData() // ST1
	controller.ReadData() // ST2
	test.ExpectEquality(t, controller.ReadData(), uint8(0))    // C
	test.ExpectEquality(t, controller.ReadData(), uint8(0))    // H
	test.ExpectEquality(t, controller.ReadData(), uint8(0xc1)) // R
	test.ExpectEquality(t, controller.ReadData(), uint8(2))    // N

	// back to command phase with the busy flag down
	_, _, _, cb = statusBits(controller.ReadStatus())
	test.ExpectFailure(t, cb)
}

func TestSenseInterruptStatus(t *testing.T) {
	controller := fdc.NewFDC()
	test.ExpectSuccess(t, controller.LoadDisk(0, buildImage(), "test.dsk"))

	// seek to track 0 then sense
	controller.WriteData(0x0f)
	controller.WriteData(0x00)
	controller.WriteData(0x00)

	controller.WriteData(0x08)
	st0 := controller.ReadData()
	test.ExpectEquality(t, st0&0x20, uint8(0x20)) // seek end
	test.ExpectEquality(t, controller.ReadData(), uint8(0))
}

func TestReadSectorWithoutDisk(t *testing.T) {
	controller := fdc.NewFDC()

	controller.WriteData(0x06)
	for _, operand := range []uint8{0, 0, 0, 0xc1, 2, 0xc1, 0, 0xff} {
		controller.WriteData(operand)
	}

	// the controller parks in the result phase with drive-not-ready
	st0 := controller.ReadData()
	test.ExpectEquality(t, st0&0x08, uint8(0x08))
}

func TestUnsupportedCommandParks(t *testing.T) {
	controller := fdc.NewFDC()
	test.ExpectSuccess(t, controller.LoadDisk(0, buildImage(), "test.dsk"))

	// format track is decoded but stubbed
	controller.WriteData(0x0d)
	for _, operand := range []uint8{0, 2, 9, 0x4e, 0xe5} {
		controller.WriteData(operand)
	}

	st0 := controller.ReadData()
	test.ExpectEquality(t, st0&0x08, uint8(0x08))

	// controller recovers to the command phase
	_, _, _, cb := statusBits(controller.ReadStatus())
	test.ExpectFailure(t, cb)
}

func TestWriteSectorMutatesImage(t *testing.T) {
	controller := fdc.NewFDC()
	test.ExpectSuccess(t, controller.LoadDisk(0, buildImage(), "test.dsk"))

	controller.WriteData(0x05)
	for _, operand := range []uint8{0, 0, 0, 0xc1, 2, 0xc1, 0, 0xff} {
		controller.WriteData(operand)
	}

	// the host supplies the new sector contents
	for i := 0; i < 512; i++ {
		controller.WriteData(0xaa)
	}

	// drain the result and check the image
	for i := 0; i < 7; i++ {
		controller.ReadData()
	}

	disk := controller.Disk(0)
	test.ExpectEquality(t, disk.Tracks[0].Sectors[0][0], uint8(0xaa))
	test.ExpectEquality(t, disk.Tracks[0].Sectors[0][511], uint8(0xaa))
}

func TestRecalibrate(t *testing.T) {
	controller := fdc.NewFDC()
	test.ExpectSuccess(t, controller.LoadDisk(0, buildImage(), "test.dsk"))

	// seek to a track then recalibrate back to zero
	controller.WriteData(0x0f)
	controller.WriteData(0x00)
	controller.WriteData(0x00)

	controller.WriteData(0x07)
	controller.WriteData(0x00)

	controller.WriteData(0x08)
	st0 := controller.ReadData()
	test.ExpectEquality(t, st0&0x20, uint8(0x20))
	test.ExpectEquality(t, controller.ReadData(), uint8(0))
}
