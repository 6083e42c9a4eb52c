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

// Package sdlplay is the SDL window front-end: a VideoSink rendering into
// a streaming texture and an event pump feeding the keyboard matrix.
package sdlplay

import (
	"github.com/mdm/ronald/curated"
	"github.com/mdm/ronald/hardware/screen"
	"github.com/veandco/go-sdl2/sdl"
)

const pixelDepth = 3

// Input is where the event pump delivers matrix presses. The emulation
// Driver satisfies it.
type Input interface {
	PressKey(line int, bit uint8)
	ReleaseKey(line int, bit uint8)
}

// SdlPlay is the playback window.
type SdlPlay struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	pixels []byte

	// set by the event pump when the user closes the window
	quit bool
}

// NewSdlPlay is the preferred method of initialisation for the SdlPlay
// type.
func NewSdlPlay(scale int) (*SdlPlay, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return nil, curated.Errorf("sdlplay: %v", err)
	}

	scr := &SdlPlay{
		pixels: make([]byte, screen.Width*screen.Height*pixelDepth),
	}

	var err error

	scr.window, err = sdl.CreateWindow("Ronald",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(screen.Width*scale), int32(screen.Height*scale),
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		return nil, curated.Errorf("sdlplay: %v", err)
	}

	scr.renderer, err = sdl.CreateRenderer(scr.window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		return nil, curated.Errorf("sdlplay: %v", err)
	}
	scr.renderer.SetLogicalSize(int32(screen.Width), int32(screen.Height))

	scr.texture, err = scr.renderer.CreateTexture(sdl.PIXELFORMAT_RGB24,
		sdl.TEXTUREACCESS_STREAMING, int32(screen.Width), int32(screen.Height))
	if err != nil {
		return nil, curated.Errorf("sdlplay: %v", err)
	}

	return scr, nil
}

// Destroy releases the SDL resources.
func (scr *SdlPlay) Destroy() {
	scr.texture.Destroy()
	scr.renderer.Destroy()
	scr.window.Destroy()
	sdl.Quit()
}

// SetPixel implements the screen.VideoSink interface.
func (scr *SdlPlay) SetPixel(x, y int, red, green, blue uint8) {
	offset := (y*screen.Width + x) * pixelDepth
	scr.pixels[offset] = red
	scr.pixels[offset+1] = green
	scr.pixels[offset+2] = blue
}

// SubmitFrame implements the screen.VideoSink interface.
func (scr *SdlPlay) SubmitFrame() {
	scr.texture.Update(nil, scr.pixels, screen.Width*pixelDepth)
	scr.renderer.Copy(scr.texture, nil, nil)
	scr.renderer.Present()
}

// Service pumps SDL events into the keyboard matrix. Returns false when
// the user has asked to quit.
func (scr *SdlPlay) Service(input Input) bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch event := event.(type) {
		case *sdl.QuitEvent:
			scr.quit = true

		case *sdl.KeyboardEvent:
			key, ok := matrixKeys[event.Keysym.Scancode]
			if !ok {
				continue
			}
			if event.Type == sdl.KEYDOWN {
				input.PressKey(key.line, key.bit)
			} else {
				input.ReleaseKey(key.line, key.bit)
			}
		}
	}

	return !scr.quit
}
