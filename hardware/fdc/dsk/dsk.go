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

// Package dsk parses the CPC-community DSK container in both its standard
// and extended variants. Sector data survives a parse/serialise round trip
// byte for byte; the metadata preserved is the set of fields the floppy
// disc controller reports to the host.
package dsk

import (
	"bytes"
	"encoding/binary"

	"github.com/mdm/ronald/curated"
	"github.com/mdm/ronald/logger"
)

// Error patterns for the dsk package.
const (
	NotADiskImage     = "dsk: %v: could not find the expected file header"
	NoTrackHeader     = "dsk: %v: could not find the expected track header"
	TruncatedImage    = "dsk: %v: image data is truncated"
	NoSuchTrack       = "dsk: no track %d for head %d"
	NoSuchSector      = "dsk: no sector with id %02x"
)

// the file headers. standard images in the wild vary after the first eight
// bytes so only those are compared; extended images are compared in full.
var standardMagic = []byte("MV - CPCEMU Disk-File\r\nDisk-Info\r\n")
var extendedMagic = []byte("EXTENDED CPC DSK File\r\nDisk-Info\r\n")

var trackMagic = []byte("Track-Info\r\n")

// layout constants of the container format.
const (
	headerLen      = 0x100
	creatorOffset  = 0x22
	cylinderCount  = 0x30
	headCount      = 0x31
	trackSizeWord  = 0x32
	trackSizeTable = 0x34

	trackHeaderLen  = 0x100
	trackCylinder   = 0x10
	trackHead       = 0x11
	trackSizeCode   = 0x14
	trackNumSectors = 0x15
	trackGap3       = 0x16
	trackFiller     = 0x17
	sectorInfoStart = 0x18
	sectorInfoLen   = 8
)

// SectorInfo is the identity record of a single sector, as the FDC reports
// it.
type SectorInfo struct {
	Cylinder  uint8
	Head      uint8
	SectorID  uint8
	SizeCode  uint8
	FDCStatus1 uint8
	FDCStatus2 uint8

	// extended images declare the stored length explicitly; standard
	// images derive it from the size code
	ActualLength uint16
}

// Track is one side of one cylinder.
type Track struct {
	Cylinder   uint8
	Head       uint8
	SizeCode   uint8
	Gap3Length uint8
	Filler     uint8

	SectorInfos []SectorInfo
	Sectors     [][]uint8
}

// FindSector returns the index of the first sector with the given id.
func (trk *Track) FindSector(sectorID uint8) (int, error) {
	for i, info := range trk.SectorInfos {
		if info.SectorID == sectorID {
			return i, nil
		}
	}
	return 0, curated.Errorf(NoSuchSector, sectorID)
}

// Disk is a parsed DSK image.
type Disk struct {
	Name     string
	Extended bool
	Creator  string

	NumCylinders uint8
	NumHeads     uint8

	// uniform track size of the standard format, including the track
	// header
	TrackSize uint16

	Tracks []Track
}

// Load parses a DSK image. The name is only used in error messages and the
// log.
func Load(data []uint8, name string) (*Disk, error) {
	if len(data) < headerLen {
		return nil, curated.Errorf(TruncatedImage, name)
	}

	dsk := &Disk{Name: name}

	switch {
	case bytes.Equal(data[:0x08], standardMagic[:0x08]):
		dsk.Extended = false
	case len(data) >= len(extendedMagic) && bytes.Equal(data[:len(extendedMagic)], extendedMagic):
		dsk.Extended = true
	default:
		return nil, curated.Errorf(NotADiskImage, name)
	}

	dsk.Creator = string(bytes.TrimRight(data[creatorOffset:cylinderCount], "\x00 "))
	dsk.NumCylinders = data[cylinderCount]
	dsk.NumHeads = data[headCount]
	dsk.TrackSize = binary.LittleEndian.Uint16(data[trackSizeWord : trackSizeWord+2])

	numTracks := int(dsk.NumCylinders) * int(dsk.NumHeads)

	offset := headerLen
	for i := 0; i < numTracks; i++ {
		if dsk.Extended {
			// the per-track size table gives the block length in units of
			// 256 bytes
			if trackSizeTable+i >= headerLen {
				return nil, curated.Errorf(TruncatedImage, name)
			}
			blockLen := int(data[trackSizeTable+i]) << 8

			trk, err := parseTrack(data, offset, name, dsk.Extended)
			if err != nil {
				return nil, err
			}
			dsk.Tracks = append(dsk.Tracks, trk)
			offset += blockLen
		} else {
			trk, err := parseTrack(data, offset, name, dsk.Extended)
			if err != nil {
				return nil, err
			}
			dsk.Tracks = append(dsk.Tracks, trk)
			offset += int(dsk.TrackSize)
		}
	}

	logger.Logf("dsk", "%s: %d cylinders, %d heads, %s format",
		name, dsk.NumCylinders, dsk.NumHeads, formatName(dsk.Extended))

	return dsk, nil
}

func formatName(extended bool) string {
	if extended {
		return "extended"
	}
	return "standard"
}

func parseTrack(data []uint8, offset int, name string, extended bool) (Track, error) {
	if offset+trackHeaderLen > len(data) {
		return Track{}, curated.Errorf(TruncatedImage, name)
	}

	if !bytes.Equal(data[offset:offset+len(trackMagic)], trackMagic) {
		return Track{}, curated.Errorf(NoTrackHeader, name)
	}

	trk := Track{
		Cylinder:   data[offset+trackCylinder],
		Head:       data[offset+trackHead],
		SizeCode:   data[offset+trackSizeCode],
		Gap3Length: data[offset+trackGap3],
		Filler:     data[offset+trackFiller],
	}

	numSectors := int(data[offset+trackNumSectors])
	if offset+sectorInfoStart+numSectors*sectorInfoLen > len(data) {
		return Track{}, curated.Errorf(TruncatedImage, name)
	}

	dataOffset := offset + trackHeaderLen
	for s := 0; s < numSectors; s++ {
		infoOffset := offset + sectorInfoStart + s*sectorInfoLen

		info := SectorInfo{
			Cylinder:   data[infoOffset],
			Head:       data[infoOffset+1],
			SectorID:   data[infoOffset+2],
			SizeCode:   data[infoOffset+3],
			FDCStatus1: data[infoOffset+4],
			FDCStatus2: data[infoOffset+5],
		}

		length := int(0x80) << info.SizeCode
		if extended {
			info.ActualLength = binary.LittleEndian.Uint16(data[infoOffset+6 : infoOffset+8])
			if info.ActualLength > 0 {
				length = int(info.ActualLength)
			}
		} else {
			info.ActualLength = uint16(length)
		}

		if dataOffset+length > len(data) {
			return Track{}, curated.Errorf(TruncatedImage, name)
		}

		trk.SectorInfos = append(trk.SectorInfos, info)
		trk.Sectors = append(trk.Sectors, append([]uint8(nil), data[dataOffset:dataOffset+length]...))
		dataOffset += length
	}

	return trk, nil
}

// FindTrack returns the index of the track for a cylinder and head.
func (dsk *Disk) FindTrack(cylinder, head uint8) (int, error) {
	index := int(cylinder)*int(dsk.NumHeads) + int(head)
	if cylinder >= dsk.NumCylinders || head >= dsk.NumHeads || index >= len(dsk.Tracks) {
		return 0, curated.Errorf(NoSuchTrack, cylinder, head)
	}
	return index, nil
}

// Serialise rebuilds the container from the parsed form. For images parsed
// from a canonical file the sector data bytes round trip exactly.
func (dsk *Disk) Serialise() []uint8 {
	buffer := &bytes.Buffer{}

	header := make([]uint8, headerLen)
	if dsk.Extended {
		copy(header, extendedMagic)
	} else {
		copy(header, standardMagic)
	}
	copy(header[creatorOffset:cylinderCount], dsk.Creator)
	header[cylinderCount] = dsk.NumCylinders
	header[headCount] = dsk.NumHeads
	binary.LittleEndian.PutUint16(header[trackSizeWord:trackSizeWord+2], dsk.TrackSize)

	trackBlocks := make([][]uint8, len(dsk.Tracks))
	for i, trk := range dsk.Tracks {
		trackBlocks[i] = serialiseTrack(trk, dsk.Extended, int(dsk.TrackSize))
		if dsk.Extended {
			header[trackSizeTable+i] = uint8(len(trackBlocks[i]) >> 8)
		}
	}

	buffer.Write(header)
	for _, block := range trackBlocks {
		buffer.Write(block)
	}

	return buffer.Bytes()
}

func serialiseTrack(trk Track, extended bool, uniformSize int) []uint8 {
	block := &bytes.Buffer{}

	header := make([]uint8, trackHeaderLen)
	copy(header, trackMagic)
	header[trackCylinder] = trk.Cylinder
	header[trackHead] = trk.Head
	header[trackSizeCode] = trk.SizeCode
	header[trackNumSectors] = uint8(len(trk.SectorInfos))
	header[trackGap3] = trk.Gap3Length
	header[trackFiller] = trk.Filler

	for s, info := range trk.SectorInfos {
		infoOffset := sectorInfoStart + s*sectorInfoLen
		header[infoOffset] = info.Cylinder
		header[infoOffset+1] = info.Head
		header[infoOffset+2] = info.SectorID
		header[infoOffset+3] = info.SizeCode
		header[infoOffset+4] = info.FDCStatus1
		header[infoOffset+5] = info.FDCStatus2
		if extended {
			binary.LittleEndian.PutUint16(header[infoOffset+6:infoOffset+8], uint16(len(trk.Sectors[s])))
		}
	}

	block.Write(header)
	for _, sector := range trk.Sectors {
		block.Write(sector)
	}

	if !extended {
		// the standard format pads every track block to the uniform size
		for block.Len() < uniformSize {
			block.WriteByte(0)
		}
	} else {
		// extended track blocks are padded to a 256-byte boundary
		for block.Len()%0x100 != 0 {
			block.WriteByte(0)
		}
	}

	return block.Bytes()
}
