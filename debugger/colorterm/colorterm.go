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

// Package colorterm implements the debugger terminal with ANSI colour and
// a minimal raw-mode line editor.
package colorterm

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/term"
)

// ANSI pens used by the terminal.
const (
	penPrompt = "\033[33m" // yellow
	penReset  = "\033[0m"
)

// ColorTerm implements the debugger.Terminal interface on the process tty.
type ColorTerm struct {
	tty *term.Term

	history []string
}

// NewColorTerm is the preferred method of initialisation for the ColorTerm
// type. Falls back to nil tty (and cooked line input) when the process has
// no terminal.
func NewColorTerm() *ColorTerm {
	tty, err := term.Open("/dev/tty")
	if err != nil {
		return &ColorTerm{}
	}
	return &ColorTerm{tty: tty}
}

// Close restores the terminal attributes.
func (ct *ColorTerm) Close() {
	if ct.tty != nil {
		ct.tty.Restore()
		ct.tty.Close()
	}
}

// Write implements the io.Writer interface.
func (ct *ColorTerm) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

// ReadLine presents the prompt and reads one line of input, with backspace
// and a last-command history on the up arrow.
func (ct *ColorTerm) ReadLine(prompt string) (string, error) {
	fmt.Printf("%s%s%s", penPrompt, prompt, penReset)

	if ct.tty == nil {
		return ct.cookedReadLine()
	}

	if err := ct.tty.SetRaw(); err != nil {
		return ct.cookedReadLine()
	}
	defer ct.tty.Restore()

	line := []byte{}
	escape := 0

	for {
		buffer := make([]byte, 1)
		if _, err := ct.tty.Read(buffer); err != nil {
			return "", err
		}
		ch := buffer[0]

		// a small escape-sequence state machine for the arrow keys
		switch escape {
		case 1:
			if ch == '[' {
				escape = 2
			} else {
				escape = 0
			}
			continue
		case 2:
			escape = 0
			if ch == 'A' && len(ct.history) > 0 {
				// up arrow recalls the last command
				for range line {
					fmt.Print("\b \b")
				}
				line = []byte(ct.history[len(ct.history)-1])
				fmt.Print(string(line))
			}
			continue
		}

		switch ch {
		case 0x1b:
			escape = 1

		case '\r', '\n':
			fmt.Println()
			s := string(line)
			if s != "" {
				ct.history = append(ct.history, s)
			}
			return s, nil

		case 0x7f, 0x08:
			if len(line) > 0 {
				line = line[:len(line)-1]
				fmt.Print("\b \b")
			}

		case 0x03, 0x04:
			// ctrl-c / ctrl-d abandon the debugger session
			fmt.Println()
			return "", io.EOF

		default:
			if ch >= 0x20 && ch < 0x7f {
				line = append(line, ch)
				fmt.Print(string(ch))
			}
		}
	}
}

func (ct *ColorTerm) cookedReadLine() (string, error) {
	line := []byte{}
	buffer := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buffer)
		if err != nil {
			return "", err
		}
		if n == 0 {
			continue
		}
		if buffer[0] == '\n' {
			return string(line), nil
		}
		line = append(line, buffer[0])
	}
}
