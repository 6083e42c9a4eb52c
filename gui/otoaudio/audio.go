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

// Package otoaudio implements the screen.AudioSink interface on the oto
// library. It is the audio path for builds and machines without SDL; the
// player pulls from a bounded ring which drops the oldest samples on
// overflow.
package otoaudio

import (
	"encoding/binary"
	"io"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/mdm/ronald/curated"
	"github.com/mdm/ronald/logger"
)

const (
	sampleRate = 44100

	// half a second of f32 samples
	ringLen = sampleRate / 2
)

// Audio outputs sound through oto.
type Audio struct {
	context *oto.Context
	player  *oto.Player

	mu   sync.Mutex
	ring []float32
}

// NewAudio is the preferred method of initialisation for the Audio type.
// Blocks until the audio context is ready.
func NewAudio() (*Audio, error) {
	options := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	context, ready, err := oto.NewContext(options)
	if err != nil {
		return nil, curated.Errorf("otoaudio: %v", err)
	}
	<-ready

	aud := &Audio{
		context: context,
		ring:    make([]float32, 0, ringLen),
	}

	aud.player = context.NewPlayer(aud)
	aud.player.Play()

	logger.Logf("otoaudio", "playing at %dHz", sampleRate)

	return aud, nil
}

// SubmitSample implements the screen.AudioSink interface. When the ring is
// full the oldest samples are dropped.
func (aud *Audio) SubmitSample(sample float32) {
	aud.mu.Lock()
	defer aud.mu.Unlock()

	if len(aud.ring) >= ringLen {
		aud.ring = aud.ring[1:]
	}
	aud.ring = append(aud.ring, sample)
}

// SampleRate implements the screen.AudioSink interface.
func (aud *Audio) SampleRate() int {
	return sampleRate
}

// Read implements the io.Reader interface consumed by the oto player. An
// empty ring yields silence rather than blocking the audio thread.
func (aud *Audio) Read(p []byte) (int, error) {
	aud.mu.Lock()
	defer aud.mu.Unlock()

	n := 0
	for n+4 <= len(p) {
		var sample float32
		if len(aud.ring) > 0 {
			sample = aud.ring[0]
			aud.ring = aud.ring[1:]
		}
		binary.LittleEndian.PutUint32(p[n:], math.Float32bits(sample))
		n += 4

		if len(aud.ring) == 0 {
			break
		}
	}

	if n == 0 {
		// silence keeps the player fed
		for i := 0; i < 4 && i < len(p); i++ {
			p[i] = 0
		}
		n = 4
	}

	return n, nil
}

// End stops playback.
func (aud *Audio) End() error {
	if err := aud.player.Close(); err != nil {
		return curated.Errorf("otoaudio: %v", err)
	}
	return nil
}

var _ io.Reader = (*Audio)(nil)
