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

// Package model enumerates the members of the CPC family. The model selects
// the memory arrangement and which gate-array functions are available;
// component selection is by a switch on the model value rather than dynamic
// dispatch, keeping the inner loop free of interface calls.
package model

// Model identifies a member of the Amstrad CPC family.
type Model int

// List of valid Model values.
const (
	CPC464 Model = iota
	CPC664
	CPC6128
)

// ParseModel converts the conventional model number to a Model value.
func ParseModel(s string) (Model, bool) {
	switch s {
	case "464":
		return CPC464, true
	case "664":
		return CPC664, true
	case "6128":
		return CPC6128, true
	}
	return CPC464, false
}

func (m Model) String() string {
	switch m {
	case CPC464:
		return "Amstrad CPC 464"
	case CPC664:
		return "Amstrad CPC 664"
	case CPC6128:
		return "Amstrad CPC 6128"
	}
	return "unknown model"
}

// SecondBank returns true for the models with 128K of RAM.
func (m Model) SecondBank() bool {
	return m == CPC6128
}

// HasDiskDrive returns true for the models with a built-in disc drive.
func (m Model) HasDiskDrive() bool {
	return m != CPC464
}
