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

// Package fdc implements the NEC µPD765 floppy disc controller as a
// three-phase state machine. In the command phase the host writes the
// command and its operands; execution transfers sector data through the
// data FIFO; the result phase hands back the status bytes.
//
// Commands finish instantly in emulated terms: there is no rotational or
// seek latency. Commands that are decoded but not implemented park the
// controller in the result phase with drive-not-ready set, which the CPC
// firmware treats gracefully.
package fdc

import (
	"github.com/mdm/ronald/curated"
	"github.com/mdm/ronald/debug"
	"github.com/mdm/ronald/hardware/fdc/dsk"
	"github.com/mdm/ronald/logger"
)

// phase is the controller phase.
type phase int

const (
	phaseCommand phase = iota
	phaseExecution
	phaseResult
)

// drive is one of the two drive slots.
type drive struct {
	currentTrack  int
	currentSector int
	disk          *dsk.Disk
}

// FDC is the floppy disc controller state machine.
type FDC struct {
	drives [2]drive

	phase   phase
	command command

	// true when a command byte has been received and operands are being
	// collected
	commandPending bool

	parameters []uint8
	data       []uint8
	results    []uint8

	motorsOn bool

	// main status register components
	requestForMaster bool
	dataToHost       bool // DIO: false host->fdc, true fdc->host
	executionMode    bool
	controllerBusy   bool
	driveBusy        [2]bool

	// ST0 components for the current operation
	endOfTrack    bool
	seekEnd       bool
	driveNotReady bool
	selectedDrive int

	// ST1/ST2 from the sector info of the last read
	status1 uint8
	status2 uint8

	// a write-sector operation collects this many data bytes before
	// committing to the image
	writePending int
}

// NewFDC is the preferred method of initialisation for the FDC type.
func NewFDC() *FDC {
	return &FDC{
		requestForMaster: true,
	}
}

// LoadDisk parses a DSK image into a drive. On error the drive is left
// empty and the error returned to the caller.
func (fdc *FDC) LoadDisk(driveNum int, data []uint8, name string) error {
	if driveNum < 0 || driveNum > 1 {
		return curated.Errorf("fdc: no such drive (%d)", driveNum)
	}

	disk, err := dsk.Load(data, name)
	if err != nil {
		fdc.drives[driveNum].disk = nil
		return err
	}

	fdc.drives[driveNum].disk = disk
	fdc.drives[driveNum].currentTrack = 0
	fdc.drives[driveNum].currentSector = 0
	logger.Logf("fdc", "drive %d: %s loaded", driveNum, name)

	return nil
}

// Disk returns the image in a drive, or nil. The emulation mutates the
// image in place on write-sector commands; the caller serialises it to
// persist changes.
func (fdc *FDC) Disk(driveNum int) *dsk.Disk {
	return fdc.drives[driveNum].disk
}

// Motor switches the drive motors. Port 0xfa7e.
func (fdc *FDC) Motor(on bool) {
	fdc.motorsOn = on
}

// ReadStatus reads the main status register. Port 0xfb7e.
func (fdc *FDC) ReadStatus() uint8 {
	var value uint8

	if fdc.requestForMaster {
		value |= 1 << 7
	}
	if fdc.dataToHost {
		value |= 1 << 6
	}
	if fdc.executionMode {
		value |= 1 << 5
	}
	if fdc.controllerBusy {
		value |= 1 << 4
	}
	if fdc.driveBusy[1] {
		value |= 1 << 1
	}
	if fdc.driveBusy[0] {
		value |= 1 << 0
	}

	return value
}

// ReadData reads the data register. Port 0xfb7f. In the execution phase
// the data FIFO drains; in the result phase the result FIFO.
func (fdc *FDC) ReadData() uint8 {
	switch fdc.phase {
	case phaseExecution:
		if len(fdc.data) == 0 {
			logger.Log("fdc", "data read with empty fifo")
			return 0xff
		}

		value := fdc.data[0]
		fdc.data = fdc.data[1:]

		if len(fdc.data) == 0 {
			fdc.executionMode = false
			fdc.phase = phaseResult
		}
		return value

	case phaseResult:
		if len(fdc.results) == 0 {
			// the firmware polls here when a command failed without
			// producing results
			logger.Log("fdc", "result read with empty fifo")
			fdc.dataToHost = false
			fdc.controllerBusy = false
			fdc.phase = phaseCommand
			return 0xff
		}

		value := fdc.results[0]
		fdc.results = fdc.results[1:]

		if len(fdc.results) == 0 {
			fdc.dataToHost = false
			fdc.controllerBusy = false
			fdc.phase = phaseCommand
		}
		return value
	}

	logger.Log("fdc", "data read in command phase")
	return 0xff
}

// WriteData writes the data register. Port 0xfb7f. In the command phase
// bytes accumulate the command and its operands; in the execution phase of
// a write-sector command they fill the data FIFO.
func (fdc *FDC) WriteData(value uint8) {
	switch fdc.phase {
	case phaseCommand:
		if !fdc.commandPending {
			fdc.command = decodeCommand(value)
			fdc.commandPending = true
			fdc.parameters = fdc.parameters[:0]
			fdc.controllerBusy = true

			// sense-interrupt-status reports the outcome of the seek
			// commands; the flags survive until it has done so
			if fdc.command != cmdSenseInterruptStatus {
				fdc.endOfTrack = false
				fdc.seekEnd = false
				fdc.driveNotReady = false
			}

			if fdc.command.parameterBytes() == 0 {
				fdc.execute()
			}
			return
		}

		if len(fdc.parameters) < fdc.command.parameterBytes() {
			fdc.parameters = append(fdc.parameters, value)
		}
		if len(fdc.parameters) == fdc.command.parameterBytes() {
			fdc.execute()
		}

	case phaseExecution:
		if fdc.writePending > 0 {
			fdc.data = append(fdc.data, value)
			fdc.writePending--
			if fdc.writePending == 0 {
				fdc.commitWrite()
			}
			return
		}
		logger.Logf("fdc", "unexpected data write in execution phase: %02x", value)

	default:
		logger.Logf("fdc", "data write in result phase: %02x", value)
	}
}

// execute dispatches a fully parameterised command.
func (fdc *FDC) execute() {
	fdc.commandPending = false

	if debug.Active() {
		debug.Emit(debug.SourceFDC, debug.FDCCommand{
			Command:    fdc.command.String(),
			Parameters: append([]uint8(nil), fdc.parameters...),
		})
	}

	switch fdc.command {
	case cmdSpecify:
		// step rate and head timings have no meaning here
		fdc.controllerBusy = false
		fdc.phase = phaseCommand

	case cmdSenseInterruptStatus:
		fdc.results = append(fdc.results[:0], fdc.statusRegister0(), uint8(fdc.drives[fdc.selectedDrive].currentTrack))
		fdc.seekEnd = false
		fdc.dataToHost = true
		fdc.phase = phaseResult

	case cmdRecalibrate:
		fdc.selectDrive(fdc.parameters[0])
		if fdc.drives[fdc.selectedDrive].disk != nil {
			fdc.drives[fdc.selectedDrive].currentTrack = 0
			fdc.seekEnd = true
		} else {
			fdc.driveNotReady = true
		}
		fdc.controllerBusy = false
		fdc.phase = phaseCommand

	case cmdSeek:
		fdc.selectDrive(fdc.parameters[0])
		if fdc.drives[fdc.selectedDrive].disk != nil {
			fdc.drives[fdc.selectedDrive].currentTrack = int(fdc.parameters[1])
			fdc.seekEnd = true
		} else {
			fdc.driveNotReady = true
		}
		fdc.controllerBusy = false
		fdc.phase = phaseCommand

	case cmdReadSectorID:
		fdc.selectDrive(fdc.parameters[0])
		if fdc.drives[fdc.selectedDrive].disk != nil {
			fdc.writeStandardResult()
		} else {
			fdc.driveNotReady = true
		}
		fdc.dataToHost = true
		fdc.phase = phaseResult

	case cmdReadSector:
		fdc.readSector()

	case cmdWriteSector:
		fdc.writeSector()

	default:
		// decoded but not implemented. park in the result phase with
		// drive-not-ready so the firmware can recover
		logger.Logf("fdc", "unsupported command: %s", fdc.command)
		if debug.Active() {
			debug.Emit(debug.SourceFDC, debug.FDCUnsupportedCommand{Command: fdc.command.String()})
		}
		fdc.driveNotReady = true
		fdc.results = append(fdc.results[:0], fdc.statusRegister0())
		fdc.dataToHost = true
		fdc.phase = phaseResult
	}

	fdc.parameters = fdc.parameters[:0]
}

// readSector locates the addressed sector and fills the data FIFO with its
// contents.
func (fdc *FDC) readSector() {
	fdc.selectDrive(fdc.parameters[0])
	drv := &fdc.drives[fdc.selectedDrive]

	if drv.disk == nil {
		fdc.driveNotReady = true
		fdc.results = append(fdc.results[:0], fdc.statusRegister0())
		fdc.dataToHost = true
		fdc.phase = phaseResult
		return
	}

	if !fdc.locate(drv, fdc.parameters[1], fdc.parameters[2], fdc.parameters[3]) {
		return
	}

	track := &drv.disk.Tracks[drv.currentTrack]
	info := track.SectorInfos[drv.currentSector]

	fdc.data = append(fdc.data[:0], track.Sectors[drv.currentSector]...)
	fdc.status1 = info.FDCStatus1
	fdc.status2 = info.FDCStatus2
	fdc.endOfTrack = true
	fdc.executionMode = true
	fdc.dataToHost = true
	fdc.writeStandardResult()
	fdc.phase = phaseExecution
}

// writeSector locates the addressed sector and waits for the host to
// supply its new contents through the data FIFO.
func (fdc *FDC) writeSector() {
	fdc.selectDrive(fdc.parameters[0])
	drv := &fdc.drives[fdc.selectedDrive]

	if drv.disk == nil {
		fdc.driveNotReady = true
		fdc.results = append(fdc.results[:0], fdc.statusRegister0())
		fdc.dataToHost = true
		fdc.phase = phaseResult
		return
	}

	if !fdc.locate(drv, fdc.parameters[1], fdc.parameters[2], fdc.parameters[3]) {
		return
	}

	track := &drv.disk.Tracks[drv.currentTrack]
	fdc.writePending = len(track.Sectors[drv.currentSector])
	fdc.data = fdc.data[:0]
	fdc.executionMode = true
	fdc.dataToHost = false
	fdc.phase = phaseExecution
}

// commitWrite copies the collected data FIFO into the in-memory image and
// moves to the result phase.
func (fdc *FDC) commitWrite() {
	drv := &fdc.drives[fdc.selectedDrive]
	track := &drv.disk.Tracks[drv.currentTrack]
	copy(track.Sectors[drv.currentSector], fdc.data)

	fdc.data = fdc.data[:0]
	fdc.endOfTrack = true
	fdc.executionMode = false
	fdc.dataToHost = true
	fdc.writeStandardResult()
	fdc.phase = phaseResult
}

// locate seeks the drive to the addressed track and sector. On failure the
// controller is parked in the result phase.
func (fdc *FDC) locate(drv *drive, cylinder, head, sectorID uint8) bool {
	trackIndex, err := drv.disk.FindTrack(cylinder, head)
	if err != nil {
		logger.Logf("fdc", "%v", err)
		fdc.driveNotReady = true
		fdc.results = append(fdc.results[:0], fdc.statusRegister0())
		fdc.dataToHost = true
		fdc.phase = phaseResult
		return false
	}
	drv.currentTrack = trackIndex

	sectorIndex, err := drv.disk.Tracks[trackIndex].FindSector(sectorID)
	if err != nil {
		logger.Logf("fdc", "%v", err)
		// no address mark: report through ST1 bit 2
		fdc.status1 = 1 << 2
		fdc.results = append(fdc.results[:0], fdc.statusRegister0())
		fdc.dataToHost = true
		fdc.phase = phaseResult
		return false
	}
	drv.currentSector = sectorIndex

	return true
}

func (fdc *FDC) selectDrive(operand uint8) {
	fdc.selectedDrive = int(operand & 0x01)
}

// statusRegister0 composes ST0: end-of-track in bit 6, seek-end in bit 5,
// drive-not-ready in bit 3 and the unit select in the low bits. The head
// bit 2 is always clear.
func (fdc *FDC) statusRegister0() uint8 {
	var value uint8

	if fdc.endOfTrack {
		value |= 1 << 6
	}
	if fdc.seekEnd {
		value |= 1 << 5
	}
	if fdc.driveNotReady {
		value |= 1 << 3
	}
	value |= uint8(fdc.selectedDrive)

	return value
}

func (fdc *FDC) statusRegister1() uint8 {
	value := fdc.status1
	if fdc.endOfTrack {
		value |= 1 << 7
	}
	return value
}

func (fdc *FDC) statusRegister2() uint8 {
	return fdc.status2
}

// writeStandardResult queues the seven-byte result common to the sector
// commands: ST0, ST1, ST2, C, H, R, N.
func (fdc *FDC) writeStandardResult() {
	drv := &fdc.drives[fdc.selectedDrive]
	info := drv.disk.Tracks[drv.currentTrack].SectorInfos[drv.currentSector]

	fdc.results = append(fdc.results[:0],
		fdc.statusRegister0(),
		fdc.statusRegister1(),
		fdc.statusRegister2(),
		info.Cylinder,
		info.Head,
		info.SectorID,
		info.SizeCode,
	)
}

// State is a plain copy of the FDC state, suitable for snapshotting. Disk
// contents are not part of the state.
type State struct {
	Phase          int
	Command        int
	CommandPending bool
	Parameters     []uint8
	Data           []uint8
	Results        []uint8
	MotorsOn       bool
	DataToHost     bool
	ExecutionMode  bool
	ControllerBusy bool
	EndOfTrack     bool
	SeekEnd        bool
	DriveNotReady  bool
	SelectedDrive  int
	Status1        uint8
	Status2        uint8
	WritePending   int
	CurrentTracks  [2]int
	CurrentSectors [2]int
}

// State returns a copy of the FDC state.
func (fdc *FDC) State() State {
	return State{
		Phase:          int(fdc.phase),
		Command:        int(fdc.command),
		CommandPending: fdc.commandPending,
		Parameters:     append([]uint8(nil), fdc.parameters...),
		Data:           append([]uint8(nil), fdc.data...),
		Results:        append([]uint8(nil), fdc.results...),
		MotorsOn:       fdc.motorsOn,
		DataToHost:     fdc.dataToHost,
		ExecutionMode:  fdc.executionMode,
		ControllerBusy: fdc.controllerBusy,
		EndOfTrack:     fdc.endOfTrack,
		SeekEnd:        fdc.seekEnd,
		DriveNotReady:  fdc.driveNotReady,
		SelectedDrive:  fdc.selectedDrive,
		Status1:        fdc.status1,
		Status2:        fdc.status2,
		WritePending:   fdc.writePending,
		CurrentTracks:  [2]int{fdc.drives[0].currentTrack, fdc.drives[1].currentTrack},
		CurrentSectors: [2]int{fdc.drives[0].currentSector, fdc.drives[1].currentSector},
	}
}

// SetState restores the FDC from a copy taken with State().
func (fdc *FDC) SetState(state State) {
	fdc.phase = phase(state.Phase)
	fdc.command = command(state.Command)
	fdc.commandPending = state.CommandPending
	fdc.parameters = append(fdc.parameters[:0], state.Parameters...)
	fdc.data = append(fdc.data[:0], state.Data...)
	fdc.results = append(fdc.results[:0], state.Results...)
	fdc.motorsOn = state.MotorsOn
	fdc.dataToHost = state.DataToHost
	fdc.executionMode = state.ExecutionMode
	fdc.controllerBusy = state.ControllerBusy
	fdc.endOfTrack = state.EndOfTrack
	fdc.seekEnd = state.SeekEnd
	fdc.driveNotReady = state.DriveNotReady
	fdc.selectedDrive = state.SelectedDrive
	fdc.status1 = state.Status1
	fdc.status2 = state.Status2
	fdc.writePending = state.WritePending
	fdc.drives[0].currentTrack = state.CurrentTracks[0]
	fdc.drives[1].currentTrack = state.CurrentTracks[1]
	fdc.drives[0].currentSector = state.CurrentSectors[0]
	fdc.drives[1].currentSector = state.CurrentSectors[1]
}
