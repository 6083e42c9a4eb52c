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

// Package digest implements the screen.VideoSink interface and produces a
// SHA-1 fingerprint of every frame. Used for regression testing: a change
// to the video pipeline shows up as a changed digest without any display
// hardware involved.
package digest

import (
	"crypto/sha1"
	"fmt"

	"github.com/mdm/ronald/hardware/screen"
)

const pixelDepth = 3

// Video is a VideoSink that fingerprints frames. The digest of each frame
// is chained with the previous digest, so a single value summarises a
// whole run.
//
// Note that the use of SHA-1 is fine for this application because this is
// not a cryptographic task.
type Video struct {
	digest [sha1.Size]byte

	// frame pixels, prefixed with room for the chained digest
	pixels []byte

	frames int
}

// NewVideo is the preferred method of initialisation for the Video type.
func NewVideo() *Video {
	return &Video{
		pixels: make([]byte, sha1.Size+screen.Width*screen.Height*pixelDepth),
	}
}

// SetPixel implements the screen.VideoSink interface.
func (dig *Video) SetPixel(x, y int, red, green, blue uint8) {
	offset := sha1.Size + (y*screen.Width+x)*pixelDepth
	if offset+pixelDepth > len(dig.pixels) {
		return
	}
	dig.pixels[offset] = red
	dig.pixels[offset+1] = green
	dig.pixels[offset+2] = blue
}

// SubmitFrame implements the screen.VideoSink interface.
func (dig *Video) SubmitFrame() {
	// chain fingerprints by copying the previous digest to the head of
	// the frame data
	copy(dig.pixels, dig.digest[:])
	dig.digest = sha1.Sum(dig.pixels)
	dig.frames++
}

// Hash returns the chained digest as a hex string.
func (dig *Video) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// Frames returns the number of frames submitted.
func (dig *Video) Frames() int {
	return dig.frames
}

// Pixel returns the last submitted colour at a coordinate.
func (dig *Video) Pixel(x, y int) (red, green, blue uint8) {
	offset := sha1.Size + (y*screen.Width+x)*pixelDepth
	return dig.pixels[offset], dig.pixels[offset+1], dig.pixels[offset+2]
}
