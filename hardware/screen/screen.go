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

// Package screen defines the two sink interfaces through which the
// emulation core communicates with the outside world, and the beam
// position accounting that turns the gate array's pixel stream into (x, y)
// coordinates for the VideoSink.
package screen

// Screen buffer dimensions: 48 characters of 16 pixels across, 35
// character rows of 16 scanlines down. Enough to cover the visible area
// including the border.
const (
	Width  = 48 * 16
	Height = 35 * 16
)

// VideoSink receives the pixel stream and frame boundaries. Implementations
// are front-end concerns; the core never blocks on a sink.
type VideoSink interface {
	SetPixel(x, y int, red, green, blue uint8)
	SubmitFrame()
}

// AudioSink receives the mono sample stream at the rate it declares.
// Backpressure is the sink's concern: a sink that cannot keep up drops
// samples silently.
type AudioSink interface {
	SubmitSample(sample float32)
	SampleRate() int
}

// Screen tracks the beam position. The gate array writes hardware colour
// indices; the screen resolves them to RGB through the firmware palette and
// forwards them to the VideoSink.
type Screen struct {
	x int
	y int
}

// NewScreen is the preferred method of initialisation for the Screen type.
func NewScreen() *Screen {
	return &Screen{}
}

// Write emits one pixel of the given hardware colour at the current beam
// position. Pixels outside the buffer bounds are dropped; the beam wraps at
// the right-hand edge.
func (scr *Screen) Write(video VideoSink, hardwareColour uint8) {
	if scr.y < Height && scr.x < Width && video != nil {
		rgb := FirmwareColours[HardwareToFirmware[hardwareColour&0x1f]]
		video.SetPixel(scr.x, scr.y, rgb[0], rgb[1], rgb[2])
	}

	scr.x++
	if scr.x >= Width {
		scr.x = 0
		scr.y++
	}
}

// NewScanline moves the beam to the start of the next scanline. The gate
// array does not call it; its pixel stream moves the beam down only by
// wrapping at the right-hand edge.
func (scr *Screen) NewScanline() {
	if scr.x != 0 {
		scr.x = 0
		scr.y++
	}
}

// TriggerVSync submits the finished frame to the VideoSink and returns the
// beam to the top of the screen.
func (scr *Screen) TriggerVSync(video VideoSink) {
	if video != nil {
		video.SubmitFrame()
	}
	scr.x = 0
	scr.y = 0
}
