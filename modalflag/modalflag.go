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

// Package modalflag layers sub-modes on top of the flag package from the
// standard library: the first non-flag argument can select a mode, each
// mode carrying its own flags. The main function walks the mode tree with
// NewMode(), adding flags and parsing at every level.
package modalflag

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// ParseResult is the outcome of a Parse().
type ParseResult int

// List of valid ParseResult values.
const (
	ParseContinue ParseResult = iota
	ParseHelp
	ParseError
)

// Modes is the flag parser. Instances must call NewArgs() before the first
// Parse().
type Modes struct {
	// where help text is written
	Output io.Writer

	args      []string
	flags     *flag.FlagSet
	submodes  []string
	path      []string
	mode      string
	remaining []string
}

// NewArgs initialises the parser with the program arguments (without the
// program name).
func (md *Modes) NewArgs(args []string) {
	md.args = args
	md.newFlagSet()
}

// NewMode descends into the sub-mode selected by the previous Parse(). The
// remaining arguments carry over; flags and sub-modes start empty.
func (md *Modes) NewMode() {
	md.path = append(md.path, md.mode)
	md.mode = ""
	md.args = md.remaining
	md.remaining = nil
	md.submodes = nil
	md.newFlagSet()
}

func (md *Modes) newFlagSet() {
	md.flags = flag.NewFlagSet("", flag.ContinueOnError)
	md.flags.SetOutput(io.Discard)
	md.flags.Usage = func() {}
}

// AddBool adds a boolean flag to the current mode.
func (md *Modes) AddBool(name string, value bool, usage string) *bool {
	return md.flags.Bool(name, value, usage)
}

// AddString adds a string flag to the current mode.
func (md *Modes) AddString(name string, value string, usage string) *string {
	return md.flags.String(name, value, usage)
}

// AddInt adds an integer flag to the current mode.
func (md *Modes) AddInt(name string, value int, usage string) *int {
	return md.flags.Int(name, value, usage)
}

// AddSubModes declares the sub-modes available below the current mode. The
// first is the default.
func (md *Modes) AddSubModes(modes ...string) {
	md.submodes = append(md.submodes, modes...)
}

// Parse the arguments of the current mode.
func (md *Modes) Parse() (ParseResult, error) {
	err := md.flags.Parse(md.args)
	if err != nil {
		if err == flag.ErrHelp {
			md.help()
			return ParseHelp, nil
		}
		return ParseError, err
	}

	md.remaining = md.flags.Args()

	if len(md.submodes) > 0 {
		md.mode = md.submodes[0]
		if len(md.remaining) > 0 {
			candidate := strings.ToUpper(md.remaining[0])
			for _, mode := range md.submodes {
				if strings.ToUpper(mode) == candidate {
					md.mode = mode
					md.remaining = md.remaining[1:]
					break
				}
			}
		}
	}

	return ParseContinue, nil
}

func (md *Modes) help() {
	numFlags := 0
	md.flags.VisitAll(func(*flag.Flag) { numFlags++ })

	if numFlags == 0 && len(md.submodes) == 0 {
		fmt.Fprintln(md.Output, "No help available")
		return
	}

	fmt.Fprintln(md.Output, "Usage:")

	if numFlags > 0 {
		md.flags.SetOutput(md.Output)
		md.flags.PrintDefaults()
		md.flags.SetOutput(io.Discard)
	}

	if len(md.submodes) > 0 {
		if numFlags > 0 {
			fmt.Fprintln(md.Output)
		}
		fmt.Fprintf(md.Output, "  available sub-modes: %s\n", strings.Join(md.submodes, ", "))
		fmt.Fprintf(md.Output, "    default: %s\n", md.submodes[0])
	}
}

// Mode returns the sub-mode selected by the last Parse(). The empty string
// means the current mode has no sub-modes.
func (md *Modes) Mode() string {
	return md.mode
}

// Path returns the modes already descended through, separated by spaces.
func (md *Modes) Path() string {
	return strings.TrimSpace(strings.Join(md.path, " "))
}

// RemainingArgs returns the arguments left over after flag parsing and
// mode selection.
func (md *Modes) RemainingArgs() []string {
	return md.remaining
}
