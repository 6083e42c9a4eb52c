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

// Package sdlaudio implements the screen.AudioSink interface with the SDL
// queued-audio API.
package sdlaudio

import (
	"encoding/binary"
	"math"

	"github.com/mdm/ronald/curated"
	"github.com/mdm/ronald/logger"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	sampleRate = 44100
	chunkLen   = 1024

	// if the device queue grows beyond this many bytes, incoming samples
	// are dropped. the emulation is producing faster than real time and
	// the pacing loop will settle it
	maxQueuedBytes = 4 * sampleRate / 2
)

// Audio outputs sound using SDL.
type Audio struct {
	id   sdl.AudioDeviceID
	spec sdl.AudioSpec

	chunk []byte
}

// NewAudio is the preferred method of initialisation for the Audio type.
func NewAudio() (*Audio, error) {
	aud := &Audio{
		chunk: make([]byte, 0, chunkLen*4),
	}

	request := sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_F32SYS,
		Channels: 1,
		Samples:  chunkLen,
	}

	var err error
	aud.id, err = sdl.OpenAudioDevice("", false, &request, &aud.spec, 0)
	if err != nil {
		return nil, curated.Errorf("sdlaudio: %v", err)
	}

	sdl.PauseAudioDevice(aud.id, false)

	logger.Logf("sdlaudio", "device %d at %dHz", aud.id, aud.spec.Freq)

	return aud, nil
}

// EndMixing closes the audio device.
func (aud *Audio) EndMixing() {
	if aud.id != 0 {
		sdl.CloseAudioDevice(aud.id)
	}
}

// SubmitSample implements the screen.AudioSink interface. Samples are
// queued in chunks; an overfull device queue drops samples silently.
func (aud *Audio) SubmitSample(sample float32) {
	var raw [4]byte
	binary.LittleEndian.PutUint32(raw[:], math.Float32bits(sample))
	aud.chunk = append(aud.chunk, raw[:]...)

	if len(aud.chunk) < chunkLen*4 {
		return
	}

	if sdl.GetQueuedAudioSize(aud.id) < maxQueuedBytes {
		if err := sdl.QueueAudio(aud.id, aud.chunk); err != nil {
			logger.Logf("sdlaudio", "queue failed: %v", err)
		}
	}
	aud.chunk = aud.chunk[:0]
}

// SampleRate implements the screen.AudioSink interface.
func (aud *Audio) SampleRate() int {
	return int(aud.spec.Freq)
}
