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

// Package psg implements the AY-3-8912 programmable sound generator: three
// square-wave tone channels, a noise generator, the envelope generator and
// the I/O port through which the keyboard matrix is scanned.
//
// The chip is clocked at 1MHz, one tick per character column. Samples are
// pushed to the AudioSink at the rate the sink declares.
package psg

import (
	"github.com/mdm/ronald/debug"
	"github.com/mdm/ronald/hardware/keyboard"
	"github.com/mdm/ronald/hardware/screen"
	"github.com/mdm/ronald/logger"
)

// The BDIR/BC1 function codes presented through PPI port C.
const (
	FuncInactive = iota
	FuncRead
	FuncWrite
	FuncSelect
)

const numRegisters = 16

// register width masks. writes are truncated to the documented widths
var registerMasks = [numRegisters]uint8{
	0xff, 0x0f, 0xff, 0x0f, 0xff, 0x0f, 0x1f, 0xff,
	0x1f, 0x1f, 0x1f, 0xff, 0xff, 0x0f, 0xff, 0xff,
}

// the measured logarithmic volume steps of the AY output DAC.
var volumes = [16]float32{
	0.0, 0.00999466, 0.014450294, 0.021057451,
	0.030701153, 0.045548182, 0.064499885, 0.10736248,
	0.12658885, 0.2049897, 0.29221028, 0.37283894,
	0.4925307, 0.63532466, 0.8055848, 1.0,
}

// PSG is the sound generator state.
type PSG struct {
	registers        [numRegisters]uint8
	selectedRegister int

	// the data latch between the PPI and the chip
	buffer uint8

	// tone generator state: a counter per channel and the current output
	// bit
	toneCounter [3]int
	toneBit     [3]bool

	// noise generator: a 17-bit linear feedback shift register
	noiseCounter int
	noiseLFSR    uint32

	// envelope generator
	envelopeCounter int
	envelopeStep    int
	envelopeHolding bool

	// sample pump
	chipClock   int
	nextSample  float64
	sampleEvery float64
}

// NewPSG is the preferred method of initialisation for the PSG type.
func NewPSG() *PSG {
	return &PSG{
		noiseLFSR: 1,
	}
}

// PerformFunction drives the BDIR/BC1 interface: 0 inactive, 1 read
// register, 2 write register, 3 select register. Reads of register 14 scan
// the selected keyboard matrix line.
func (ay *PSG) PerformFunction(kb *keyboard.Keyboard, function uint8) {
	switch function {
	case FuncInactive:

	case FuncRead:
		if ay.selectedRegister == 14 {
			ay.buffer = kb.Scan()
			return
		}
		if ay.selectedRegister < numRegisters {
			ay.buffer = ay.registers[ay.selectedRegister]
		}

	case FuncWrite:
		if ay.selectedRegister >= numRegisters {
			logger.Logf("psg", "write to nonexistent register %d", ay.selectedRegister)
			return
		}
		ay.writeRegister(ay.selectedRegister, ay.buffer)

	case FuncSelect:
		ay.selectedRegister = int(ay.buffer)
	}
}

func (ay *PSG) writeRegister(register int, value uint8) {
	value &= registerMasks[register]
	ay.registers[register] = value

	if register == 13 {
		// a write to the shape register restarts the envelope
		ay.envelopeStep = 0
		ay.envelopeCounter = 0
		ay.envelopeHolding = false
	}

	if debug.Active() {
		debug.Emit(debug.SourcePSG, debug.PSGRegisterWritten{
			Register: register,
			Value:    value,
		})
	}
}

// ReadByte returns the data latch. Driven from PPI port A reads.
func (ay *PSG) ReadByte() uint8 {
	return ay.buffer
}

// WriteByte sets the data latch. Driven from PPI port A writes.
func (ay *PSG) WriteByte(value uint8) {
	ay.buffer = value
}

// tonePeriod returns the 12-bit tone period for a channel. A programmed
// period of zero counts as one.
func (ay *PSG) tonePeriod(channel int) int {
	period := int(ay.registers[2*channel+1]&0x0f)<<8 | int(ay.registers[2*channel])
	if period == 0 {
		period = 1
	}
	return period
}

// Step advances the chip one microsecond and pushes a sample to the
// AudioSink when its sample period has elapsed.
func (ay *PSG) Step(audio screen.AudioSink) {
	// tone generators toggle every eight chip cycles times the period
	for channel := 0; channel < 3; channel++ {
		ay.toneCounter[channel]++
		if ay.toneCounter[channel] >= 8*ay.tonePeriod(channel) {
			ay.toneCounter[channel] = 0
			ay.toneBit[channel] = !ay.toneBit[channel]
		}
	}

	// noise generator
	noisePeriod := int(ay.registers[6])
	if noisePeriod == 0 {
		noisePeriod = 1
	}
	ay.noiseCounter++
	if ay.noiseCounter >= 8*noisePeriod {
		ay.noiseCounter = 0
		feedback := (ay.noiseLFSR ^ ay.noiseLFSR>>3) & 0x01
		ay.noiseLFSR = ay.noiseLFSR>>1 | feedback<<16
	}

	ay.stepEnvelope()

	if audio == nil {
		return
	}

	rate := audio.SampleRate()
	if rate <= 0 {
		return
	}
	ay.sampleEvery = 1_000_000.0 / float64(rate)

	ay.chipClock++
	if float64(ay.chipClock) >= ay.nextSample {
		ay.nextSample += ay.sampleEvery
		if ay.nextSample > 1_000_000 {
			// keep the accumulators small
			ay.nextSample -= float64(ay.chipClock)
			ay.chipClock = 0
		}
		audio.SubmitSample(ay.mix())
	}
}

func (ay *PSG) stepEnvelope() {
	if ay.envelopeHolding {
		return
	}

	period := int(ay.registers[12])<<8 | int(ay.registers[11])
	if period == 0 {
		period = 1
	}

	// sixteen envelope steps per period
	ay.envelopeCounter++
	if ay.envelopeCounter < period {
		return
	}
	ay.envelopeCounter = 0

	ay.envelopeStep++
	if ay.envelopeStep < 16 {
		return
	}

	shape := ay.registers[13]
	cont := shape&0x08 != 0
	alternate := shape&0x02 != 0
	hold := shape&0x01 != 0

	if !cont || hold {
		ay.envelopeHolding = true
		ay.envelopeStep = 15
		return
	}
	ay.envelopeStep = 0
	if alternate {
		// flip direction by inverting the attack bit
		ay.registers[13] ^= 0x04
	}
}

// envelopeLevel returns the current envelope amplitude step, 0 to 15.
func (ay *PSG) envelopeLevel() int {
	attack := ay.registers[13]&0x04 != 0

	step := ay.envelopeStep
	if step > 15 {
		step = 15
	}
	if attack {
		return step
	}
	return 15 - step
}

// mix produces one output sample from the current generator states.
func (ay *PSG) mix() float32 {
	mixer := ay.registers[7]
	noiseBit := ay.noiseLFSR&0x01 != 0

	var sample float32
	for channel := 0; channel < 3; channel++ {
		toneEnabled := mixer&(1<<channel) == 0
		noiseEnabled := mixer&(8<<channel) == 0

		// a disabled tone or noise input holds the channel gate open
		tone := ay.toneBit[channel] || !toneEnabled
		noise := noiseBit || !noiseEnabled
		if !(tone && noise) || (!toneEnabled && !noiseEnabled) {
			continue
		}

		level := int(ay.registers[8+channel] & 0x1f)
		if level >= 0x10 {
			level = ay.envelopeLevel()
		}
		sample += volumes[level]
	}

	return sample / 3
}

// Register returns the current value of a PSG register. Used by the
// debugger.
func (ay *PSG) Register(register int) uint8 {
	return ay.registers[register]
}

// State is a plain copy of the PSG state, suitable for snapshotting.
type State struct {
	Registers        [numRegisters]uint8
	SelectedRegister int
	Buffer           uint8
	NoiseLFSR        uint32
	EnvelopeStep     int
	EnvelopeHolding  bool
}

// State returns a copy of the PSG state.
func (ay *PSG) State() State {
	return State{
		Registers:        ay.registers,
		SelectedRegister: ay.selectedRegister,
		Buffer:           ay.buffer,
		NoiseLFSR:        ay.noiseLFSR,
		EnvelopeStep:     ay.envelopeStep,
		EnvelopeHolding:  ay.envelopeHolding,
	}
}

// SetState restores the PSG from a copy taken with State().
func (ay *PSG) SetState(state State) {
	ay.registers = state.Registers
	ay.selectedRegister = state.SelectedRegister
	ay.buffer = state.Buffer
	ay.noiseLFSR = state.NoiseLFSR
	ay.envelopeStep = state.EnvelopeStep
	ay.envelopeHolding = state.EnvelopeHolding
}
