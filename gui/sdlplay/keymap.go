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

package sdlplay

import "github.com/veandco/go-sdl2/sdl"

// matrixKey is a position in the CPC keyboard matrix.
type matrixKey struct {
	line int
	bit  uint8
}

// matrixKeys maps SDL scancodes onto the CPC matrix. The layout follows
// the physical CPC keyboard; host-specific remapping is a front-end
// concern and lives here, not in the core.
var matrixKeys = map[sdl.Scancode]matrixKey{
	sdl.SCANCODE_ESCAPE: {8, 2},
	sdl.SCANCODE_1:      {8, 0},
	sdl.SCANCODE_2:      {8, 1},
	sdl.SCANCODE_3:      {7, 1},
	sdl.SCANCODE_4:      {7, 0},
	sdl.SCANCODE_5:      {6, 1},
	sdl.SCANCODE_6:      {6, 0},
	sdl.SCANCODE_7:      {5, 1},
	sdl.SCANCODE_8:      {5, 0},
	sdl.SCANCODE_9:      {4, 1},
	sdl.SCANCODE_0:      {4, 0},
	sdl.SCANCODE_MINUS:  {3, 1},
	sdl.SCANCODE_EQUALS: {3, 0}, // caret on the CPC

	sdl.SCANCODE_TAB: {8, 4},
	sdl.SCANCODE_Q:   {8, 3},
	sdl.SCANCODE_W:   {7, 3},
	sdl.SCANCODE_E:   {7, 2},
	sdl.SCANCODE_R:   {6, 2},
	sdl.SCANCODE_T:   {6, 3},
	sdl.SCANCODE_Y:   {5, 3},
	sdl.SCANCODE_U:   {5, 2},
	sdl.SCANCODE_I:   {4, 3},
	sdl.SCANCODE_O:   {4, 2},
	sdl.SCANCODE_P:   {3, 3},

	sdl.SCANCODE_LEFTBRACKET:  {3, 2}, // the @ key
	sdl.SCANCODE_RIGHTBRACKET: {2, 1}, // the [ key
	sdl.SCANCODE_RETURN:       {2, 2},
	sdl.SCANCODE_CAPSLOCK:     {8, 6},

	sdl.SCANCODE_A: {8, 5},
	sdl.SCANCODE_S: {7, 4},
	sdl.SCANCODE_D: {7, 5},
	sdl.SCANCODE_F: {6, 5},
	sdl.SCANCODE_G: {6, 4},
	sdl.SCANCODE_H: {5, 4},
	sdl.SCANCODE_J: {5, 5},
	sdl.SCANCODE_K: {4, 5},
	sdl.SCANCODE_L: {4, 4},

	sdl.SCANCODE_SEMICOLON:  {3, 4}, // semicolon
	sdl.SCANCODE_APOSTROPHE: {3, 5}, // colon on the CPC

	sdl.SCANCODE_LSHIFT: {2, 5},
	sdl.SCANCODE_RSHIFT: {2, 5},

	sdl.SCANCODE_Z: {8, 7},
	sdl.SCANCODE_X: {7, 7},
	sdl.SCANCODE_C: {7, 6},
	sdl.SCANCODE_V: {6, 7},
	sdl.SCANCODE_B: {6, 6},
	sdl.SCANCODE_N: {5, 6},
	sdl.SCANCODE_M: {4, 6},

	sdl.SCANCODE_COMMA:     {4, 7},
	sdl.SCANCODE_PERIOD:    {3, 7},
	sdl.SCANCODE_SLASH:     {3, 6},
	sdl.SCANCODE_BACKSLASH: {2, 6},

	sdl.SCANCODE_SPACE: {5, 7},
	sdl.SCANCODE_LCTRL: {2, 7},
	sdl.SCANCODE_RCTRL: {2, 7},

	sdl.SCANCODE_UP:        {0, 0},
	sdl.SCANCODE_DOWN:      {0, 2},
	sdl.SCANCODE_LEFT:      {1, 0},
	sdl.SCANCODE_RIGHT:     {0, 1},
	sdl.SCANCODE_BACKSPACE: {9, 7}, // delete
	sdl.SCANCODE_DELETE:    {2, 0}, // clear
	sdl.SCANCODE_END:       {1, 1}, // copy

	sdl.SCANCODE_KP_7:      {1, 2},
	sdl.SCANCODE_KP_8:      {1, 3},
	sdl.SCANCODE_KP_9:      {0, 3},
	sdl.SCANCODE_KP_4:      {2, 4},
	sdl.SCANCODE_KP_5:      {1, 4},
	sdl.SCANCODE_KP_6:      {0, 4},
	sdl.SCANCODE_KP_1:      {1, 5},
	sdl.SCANCODE_KP_2:      {1, 6},
	sdl.SCANCODE_KP_3:      {0, 5},
	sdl.SCANCODE_KP_0:      {1, 7},
	sdl.SCANCODE_KP_PERIOD: {0, 7},
	sdl.SCANCODE_KP_ENTER:  {0, 6},
}
