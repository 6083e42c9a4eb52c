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

package keyboard_test

import (
	"testing"

	"github.com/mdm/ronald/hardware/keyboard"
	"github.com/mdm/ronald/test"
)

func TestMatrixScan(t *testing.T) {
	kb := keyboard.NewKeyboard()

	// nothing pressed: every line scans as all ones
	for line := 0; line < keyboard.NumLines; line++ {
		kb.SelectLine(line)
		test.ExpectEquality(t, kb.Scan(), uint8(0xff))
	}

	// the space key is line 5 bit 7; pressed keys read as zero bits
	kb.Press(5, 7)
	kb.SelectLine(5)
	test.ExpectEquality(t, kb.Scan(), uint8(0x7f))

	// other lines are unaffected
	kb.SelectLine(4)
	test.ExpectEquality(t, kb.Scan(), uint8(0xff))

	kb.Release(5, 7)
	kb.SelectLine(5)
	test.ExpectEquality(t, kb.Scan(), uint8(0xff))
}

func TestMultipleKeysOnOneLine(t *testing.T) {
	kb := keyboard.NewKeyboard()

	kb.Press(8, 0) // the 1 key
	kb.Press(8, 3) // Q
	kb.SelectLine(8)
	test.ExpectEquality(t, kb.Scan(), uint8(0xf6))
}

func TestOutOfRangeIsIgnored(t *testing.T) {
	kb := keyboard.NewKeyboard()

	kb.Press(12, 0)
	kb.Press(0, 9)

	kb.SelectLine(12)
	test.ExpectEquality(t, kb.Scan(), uint8(0xff))

	kb.SelectLine(0)
	test.ExpectEquality(t, kb.Scan(), uint8(0xff))
}
