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

package screen

// FirmwareColours is the CPC palette: 27 RGB triples addressed by firmware
// colour number.
var FirmwareColours = [27][3]uint8{
	{0x00, 0x00, 0x00}, // 0 black
	{0x00, 0x00, 0x80}, // 1 blue
	{0x00, 0x00, 0xff}, // 2 bright blue
	{0x80, 0x00, 0x00}, // 3 red
	{0x80, 0x00, 0x80}, // 4 magenta
	{0x80, 0x00, 0xff}, // 5 mauve
	{0xff, 0x00, 0x00}, // 6 bright red
	{0xff, 0x00, 0x80}, // 7 purple
	{0xff, 0x00, 0xff}, // 8 bright magenta
	{0x00, 0x80, 0x00}, // 9 green
	{0x00, 0x80, 0x80}, // 10 cyan
	{0x00, 0x80, 0xff}, // 11 sky blue
	{0x80, 0x80, 0x00}, // 12 yellow
	{0x80, 0x80, 0x80}, // 13 white
	{0x80, 0x80, 0xff}, // 14 pastel blue
	{0xff, 0x80, 0x00}, // 15 orange
	{0xff, 0x80, 0x80}, // 16 pink
	{0xff, 0x80, 0xff}, // 17 pastel magenta
	{0x00, 0xff, 0x00}, // 18 bright green
	{0x00, 0xff, 0x80}, // 19 sea green
	{0x00, 0xff, 0xff}, // 20 bright cyan
	{0x80, 0xff, 0x00}, // 21 lime
	{0x80, 0xff, 0x80}, // 22 pastel green
	{0x80, 0xff, 0xff}, // 23 pastel cyan
	{0xff, 0xff, 0x00}, // 24 bright yellow
	{0xff, 0xff, 0x80}, // 25 pastel yellow
	{0xff, 0xff, 0xff}, // 26 bright white
}

// HardwareToFirmware maps the 32 hardware colour indices written to the
// gate array onto firmware colour numbers.
var HardwareToFirmware = [32]uint8{
	13, 13, 19, 25, 1, 7, 10, 16,
	7, 25, 24, 26, 6, 8, 15, 17,
	1, 19, 18, 20, 0, 2, 9, 11,
	4, 22, 21, 23, 3, 5, 12, 14,
}
