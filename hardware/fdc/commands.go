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

package fdc

// command is one of the µPD765 commands. Names and parameter counts follow
// the NEC manual.
type command int

const (
	cmdInvalid command = iota
	cmdReadTrack
	cmdSpecify
	cmdSenseDriveStatus
	cmdWriteSector
	cmdReadSector
	cmdRecalibrate
	cmdSenseInterruptStatus
	cmdWriteDeletedSector
	cmdReadSectorID
	cmdReadDeletedSector
	cmdFormatTrack
	cmdSeek
	cmdScanEqual
	cmdScanLowOrEqual
	cmdScanHighOrEqual
)

// decodeCommand decodes the command byte. The upper bits carry the
// multitrack, MFM and skip options, which this implementation ignores.
func decodeCommand(value uint8) command {
	switch value & 0x1f {
	case 0x02:
		return cmdReadTrack
	case 0x03:
		return cmdSpecify
	case 0x04:
		return cmdSenseDriveStatus
	case 0x05:
		return cmdWriteSector
	case 0x06:
		return cmdReadSector
	case 0x07:
		return cmdRecalibrate
	case 0x08:
		return cmdSenseInterruptStatus
	case 0x09:
		return cmdWriteDeletedSector
	case 0x0a:
		return cmdReadSectorID
	case 0x0c:
		return cmdReadDeletedSector
	case 0x0d:
		return cmdFormatTrack
	case 0x0f:
		return cmdSeek
	case 0x11:
		return cmdScanEqual
	case 0x19:
		return cmdScanLowOrEqual
	case 0x1d:
		return cmdScanHighOrEqual
	}
	return cmdInvalid
}

// parameterBytes returns the number of operand bytes the host writes after
// the command byte.
func (cmd command) parameterBytes() int {
	switch cmd {
	case cmdReadTrack, cmdWriteSector, cmdReadSector, cmdWriteDeletedSector,
		cmdReadDeletedSector, cmdScanEqual, cmdScanLowOrEqual, cmdScanHighOrEqual:
		return 8
	case cmdSpecify, cmdSeek:
		return 2
	case cmdSenseDriveStatus, cmdRecalibrate, cmdReadSectorID:
		return 1
	case cmdFormatTrack:
		return 5
	}
	return 0
}

func (cmd command) String() string {
	switch cmd {
	case cmdReadTrack:
		return "read track"
	case cmdSpecify:
		return "specify"
	case cmdSenseDriveStatus:
		return "sense drive status"
	case cmdWriteSector:
		return "write sector"
	case cmdReadSector:
		return "read sector"
	case cmdRecalibrate:
		return "recalibrate"
	case cmdSenseInterruptStatus:
		return "sense interrupt status"
	case cmdWriteDeletedSector:
		return "write deleted sector"
	case cmdReadSectorID:
		return "read sector id"
	case cmdReadDeletedSector:
		return "read deleted sector"
	case cmdFormatTrack:
		return "format track"
	case cmdSeek:
		return "seek"
	case cmdScanEqual:
		return "scan equal"
	case cmdScanLowOrEqual:
		return "scan low or equal"
	case cmdScanHighOrEqual:
		return "scan high or equal"
	}
	return "invalid"
}
