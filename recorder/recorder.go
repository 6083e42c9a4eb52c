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

// Package recorder captures the PSG output to a WAV file. It implements
// the screen.AudioSink interface and can be placed in front of another
// sink as a tee, so a session can be heard and recorded at once.
package recorder

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mdm/ronald/curated"
	"github.com/mdm/ronald/hardware/screen"
	"github.com/mdm/ronald/logger"
)

// Recorder writes the sample stream to a 16-bit mono WAV file.
type Recorder struct {
	file    *os.File
	encoder *wav.Encoder
	rate    int

	// samples are buffered and flushed in chunks
	buffer *audio.IntBuffer

	// the sink the recorder forwards to. may be nil
	tee screen.AudioSink
}

const chunkSize = 4096

// NewRecorder is the preferred method of initialisation for the Recorder
// type. The sample rate is taken from the tee when one is given.
func NewRecorder(filename string, rate int, tee screen.AudioSink) (*Recorder, error) {
	if tee != nil {
		rate = tee.SampleRate()
	}

	f, err := os.Create(filename)
	if err != nil {
		return nil, curated.Errorf("recorder: %v", err)
	}

	rec := &Recorder{
		file:    f,
		encoder: wav.NewEncoder(f, rate, 16, 1, 1),
		rate:    rate,
		tee:     tee,
		buffer: &audio.IntBuffer{
			Format: &audio.Format{NumChannels: 1, SampleRate: rate},
			Data:   make([]int, 0, chunkSize),
		},
	}

	logger.Logf("recorder", "recording to %s at %dHz", filename, rate)
	return rec, nil
}

// SubmitSample implements the screen.AudioSink interface.
func (rec *Recorder) SubmitSample(sample float32) {
	if rec.tee != nil {
		rec.tee.SubmitSample(sample)
	}

	if sample > 1.0 {
		sample = 1.0
	} else if sample < -1.0 {
		sample = -1.0
	}
	rec.buffer.Data = append(rec.buffer.Data, int(sample*32767))

	if len(rec.buffer.Data) >= chunkSize {
		rec.flush()
	}
}

// SampleRate implements the screen.AudioSink interface.
func (rec *Recorder) SampleRate() int {
	return rec.rate
}

func (rec *Recorder) flush() {
	if err := rec.encoder.Write(rec.buffer); err != nil {
		logger.Logf("recorder", "write failed: %v", err)
	}
	rec.buffer.Data = rec.buffer.Data[:0]
}

// End flushes the remaining samples and finalises the WAV header.
func (rec *Recorder) End() error {
	rec.flush()
	if err := rec.encoder.Close(); err != nil {
		return curated.Errorf("recorder: %v", err)
	}
	return rec.file.Close()
}
