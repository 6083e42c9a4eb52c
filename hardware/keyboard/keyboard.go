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

// Package keyboard implements the CPC keyboard matrix: ten lines of eight
// keys, scanned one line at a time through the PSG's I/O port. The
// joysticks appear as lines of the same matrix, line 9 for the first
// joystick.
package keyboard

// NumLines is the number of scan lines in the matrix.
const NumLines = 10

// Keyboard is the press state of the matrix. A set bit means the key is
// down; the electrical active-low convention is applied at scan time.
type Keyboard struct {
	lines        [NumLines]uint8
	selectedLine int
}

// NewKeyboard is the preferred method of initialisation for the Keyboard
// type.
func NewKeyboard() *Keyboard {
	return &Keyboard{}
}

// Press marks a key down. Out-of-range coordinates are ignored.
func (kb *Keyboard) Press(line int, bit uint8) {
	if line < 0 || line >= NumLines || bit > 7 {
		return
	}
	kb.lines[line] |= 1 << bit
}

// Release marks a key up.
func (kb *Keyboard) Release(line int, bit uint8) {
	if line < 0 || line >= NumLines || bit > 7 {
		return
	}
	kb.lines[line] &^= 1 << bit
}

// SelectLine sets the matrix line presented at the next scan. Driven by the
// low bits of PPI port C.
func (kb *Keyboard) SelectLine(line int) {
	kb.selectedLine = line
}

// Scan returns the selected matrix line. Pressed keys read as zero bits. A
// selected line beyond the matrix reads as all ones.
func (kb *Keyboard) Scan() uint8 {
	if kb.selectedLine < 0 || kb.selectedLine >= NumLines {
		return 0xff
	}
	return ^kb.lines[kb.selectedLine]
}

// State is a plain copy of the keyboard state, suitable for snapshotting.
type State struct {
	Lines        [NumLines]uint8
	SelectedLine int
}

// State returns a copy of the keyboard state.
func (kb *Keyboard) State() State {
	return State{Lines: kb.lines, SelectedLine: kb.selectedLine}
}

// SetState restores the keyboard from a copy taken with State().
func (kb *Keyboard) SetState(state State) {
	kb.lines = state.Lines
	kb.selectedLine = state.SelectedLine
}
