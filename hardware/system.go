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

// Package hardware ties the CPU, memory and bus into one machine driven by
// a 16MHz master clock: one CPU NOP unit is four CPU cycles is sixteen
// master clock ticks is one bus step.
package hardware

import (
	"github.com/mdm/ronald/hardware/bus"
	"github.com/mdm/ronald/hardware/cpu"
	"github.com/mdm/ronald/hardware/memory"
	"github.com/mdm/ronald/hardware/model"
	"github.com/mdm/ronald/hardware/screen"
)

// System is the assembled machine. All components are wholly owned; there
// is no sharing because there is no parallel access.
type System struct {
	Model model.Model

	CPU *cpu.CPU
	Mem *memory.Memory
	Bus *bus.Bus

	// ticks of the 16MHz reference since power on
	MasterClock uint64
}

// NewSystem is the preferred method of initialisation for the System type.
func NewSystem(m model.Model) *System {
	mem := memory.NewMemory(m)

	return &System{
		Model: m,
		CPU:   cpu.NewCPU(),
		Mem:   mem,
		Bus:   bus.NewBus(mem),
	}
}

// Step runs one CPU instruction and the peripheral ticks it pays for. For
// each NOP unit of the instruction's duration the bus advances one
// character column. Returns the instruction's duration in NOP units.
func (sys *System) Step(video screen.VideoSink, audio screen.AudioSink) int {
	nops, acknowledged := sys.CPU.FetchAndExecute(sys.Mem, sys.Bus)

	for i := 0; i < nops; i++ {
		sys.MasterClock += bus.TicksPerStep
		if sys.Bus.Step(video, audio) {
			sys.CPU.RequestInterrupt()
		}
	}

	if acknowledged {
		sys.Bus.AcknowledgeInterrupt()
	}

	return nops
}
