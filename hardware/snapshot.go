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

package hardware

import (
	"encoding/gob"
	"io"

	"github.com/mdm/ronald/curated"
	"github.com/mdm/ronald/hardware/crtc"
	"github.com/mdm/ronald/hardware/cpu"
	"github.com/mdm/ronald/hardware/fdc"
	"github.com/mdm/ronald/hardware/gatearray"
	"github.com/mdm/ronald/hardware/keyboard"
	"github.com/mdm/ronald/hardware/memory"
	"github.com/mdm/ronald/hardware/ppi"
	"github.com/mdm/ronald/hardware/psg"
)

// Error patterns for snapshot handling.
const (
	SnapshotVersionMismatch = "snapshot: version %s not supported"
	SnapshotModelMismatch   = "snapshot: taken on a %v, not a %v"
)

// snapshotVersion tags the structural dump. There is no stability promise
// across versions; a mismatch is an error.
const snapshotVersion = "1"

// Snapshot is the structural dump of the machine state.
type Snapshot struct {
	Version string
	Model   int

	MasterClock uint64

	CPU       cpu.State
	Memory    memory.State
	CRTC      crtc.State
	GateArray gatearray.State
	PSG       psg.State
	PPI       ppi.State
	FDC       fdc.State
	Keyboard  keyboard.State
}

// Snapshot dumps the machine state to the writer.
func (sys *System) Snapshot(w io.Writer) error {
	snap := Snapshot{
		Version:     snapshotVersion,
		Model:       int(sys.Model),
		MasterClock: sys.MasterClock,
		CPU:         sys.CPU.State(),
		Memory:      sys.Mem.State(),
		CRTC:        sys.Bus.CRTC.State(),
		GateArray:   sys.Bus.GateArray.State(),
		PSG:         sys.Bus.PSG.State(),
		PPI:         sys.Bus.PPI.State(),
		FDC:         sys.Bus.FDC.State(),
		Keyboard:    sys.Bus.Keyboard.State(),
	}

	if err := gob.NewEncoder(w).Encode(snap); err != nil {
		return curated.Errorf("snapshot: %v", err)
	}
	return nil
}

// Restore loads a machine state previously written with Snapshot(). The
// snapshot must come from the same version and model.
func (sys *System) Restore(r io.Reader) error {
	var snap Snapshot
	if err := gob.NewDecoder(r).Decode(&snap); err != nil {
		return curated.Errorf("snapshot: %v", err)
	}

	if snap.Version != snapshotVersion {
		return curated.Errorf(SnapshotVersionMismatch, snap.Version)
	}
	if snap.Model != int(sys.Model) {
		return curated.Errorf(SnapshotModelMismatch, snap.Model, sys.Model)
	}

	sys.MasterClock = snap.MasterClock
	sys.CPU.SetState(snap.CPU)
	sys.Mem.SetState(snap.Memory)
	sys.Bus.CRTC.SetState(snap.CRTC)
	sys.Bus.GateArray.SetState(snap.GateArray)
	sys.Bus.PSG.SetState(snap.PSG)
	sys.Bus.PPI.SetState(snap.PPI)
	sys.Bus.FDC.SetState(snap.FDC)
	sys.Bus.Keyboard.SetState(snap.Keyboard)

	return nil
}
