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

package test

import "strings"

// Writer implements the io.Writer interface. It should be used to capture
// output that would otherwise be written to the terminal, so that it can be
// compared against the expected output.
type Writer struct {
	buffer strings.Builder
}

// Write implements the io.Writer interface.
func (tw *Writer) Write(p []byte) (n int, err error) {
	return tw.buffer.Write(p)
}

// Clear the buffer of all previously written content.
func (tw *Writer) Clear() {
	tw.buffer.Reset()
}

// Compare buffered output with the expected string.
func (tw *Writer) Compare(expected string) bool {
	return tw.buffer.String() == expected
}

// String implements the fmt.Stringer interface.
func (tw *Writer) String() string {
	return tw.buffer.String()
}
