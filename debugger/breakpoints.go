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

package debugger

import (
	"fmt"
	"strings"

	"github.com/mdm/ronald/debug"
)

// breakpoint is the condition interface. Conditions match typed records
// from the debug event log.
type breakpoint interface {
	shouldBreak(rec debug.Record) bool
	flagBlock() *common
	String() string
}

// common carries the flags every breakpoint has.
type common struct {
	enabled   bool
	oneShot   bool
	triggered bool
}

func newCommon() common {
	return common{enabled: true}
}

// flagBlock is promoted into every breakpoint type that embeds common.
func (c *common) flagBlock() *common {
	return c
}

// register8Breakpoint fires on a write to an 8-bit register, optionally
// only for a specific value.
type register8Breakpoint struct {
	common
	register string
	value    int // -1 matches any value
}

func (bk *register8Breakpoint) shouldBreak(rec debug.Record) bool {
	ev, ok := rec.Event.(debug.Register8Written)
	if !ok {
		return false
	}
	return ev.Register == bk.register && (bk.value < 0 || uint8(bk.value) == ev.Is)
}

func (bk *register8Breakpoint) String() string {
	if bk.value < 0 {
		return fmt.Sprintf("%s written", bk.register)
	}
	return fmt.Sprintf("%s = %02x", bk.register, bk.value)
}

// register16Breakpoint fires on a write to a 16-bit register. An
// any-value, one-shot breakpoint on PC is a single step.
type register16Breakpoint struct {
	common
	register string
	value    int
}

func (bk *register16Breakpoint) shouldBreak(rec debug.Record) bool {
	ev, ok := rec.Event.(debug.Register16Written)
	if !ok {
		return false
	}
	return ev.Register == bk.register && (bk.value < 0 || uint16(bk.value) == ev.Is)
}

func (bk *register16Breakpoint) String() string {
	if bk.value < 0 {
		return fmt.Sprintf("%s written", bk.register)
	}
	return fmt.Sprintf("%s = %04x", bk.register, bk.value)
}

// memoryBreakpoint fires on a read and/or write of an address, optionally
// only for a specific value.
type memoryBreakpoint struct {
	common
	address uint16
	onRead  bool
	onWrite bool
	value   int
}

func (bk *memoryBreakpoint) shouldBreak(rec debug.Record) bool {
	switch ev := rec.Event.(type) {
	case debug.MemoryRead:
		return bk.onRead && ev.Address == bk.address && (bk.value < 0 || uint8(bk.value) == ev.Value)
	case debug.MemoryWritten:
		return bk.onWrite && ev.Address == bk.address && (bk.value < 0 || uint8(bk.value) == ev.Is)
	}
	return false
}

func (bk *memoryBreakpoint) String() string {
	access := "never"
	switch {
	case bk.onRead && bk.onWrite:
		access = "access"
	case bk.onRead:
		access = "read"
	case bk.onWrite:
		access = "write"
	}
	if bk.value < 0 {
		return fmt.Sprintf("%04x %s", bk.address, access)
	}
	return fmt.Sprintf("%04x %s = %02x", bk.address, access, bk.value)
}

// crtcRegisterBreakpoint fires on a write to a CRTC register.
type crtcRegisterBreakpoint struct {
	common
	register int
}

func (bk *crtcRegisterBreakpoint) shouldBreak(rec debug.Record) bool {
	ev, ok := rec.Event.(debug.CRTCRegisterWritten)
	return ok && ev.Register == bk.register
}

func (bk *crtcRegisterBreakpoint) String() string {
	return fmt.Sprintf("crtc R%d written", bk.register)
}

// crtcCounterBreakpoint fires when a CRTC counter reaches a value.
type crtcCounterBreakpoint struct {
	common
	counter string // "hc", "sl" or "row"
	value   uint8
}

func (bk *crtcCounterBreakpoint) shouldBreak(rec debug.Record) bool {
	ev, ok := rec.Event.(debug.CRTCCounters)
	if !ok {
		return false
	}
	switch bk.counter {
	case "hc":
		return ev.Horizontal == bk.value
	case "sl":
		return ev.Scanline == bk.value
	case "row":
		return ev.CharacterRow == bk.value
	}
	return false
}

func (bk *crtcCounterBreakpoint) String() string {
	return fmt.Sprintf("crtc %s = %d", bk.counter, bk.value)
}

// syncEdgeBreakpoint fires on an HSYNC or VSYNC edge.
type syncEdgeBreakpoint struct {
	common
	vertical bool
	rising   bool
}

func (bk *syncEdgeBreakpoint) shouldBreak(rec debug.Record) bool {
	switch ev := rec.Event.(type) {
	case debug.HSyncChanged:
		return !bk.vertical && ev.Active == bk.rising
	case debug.VSyncChanged:
		return bk.vertical && ev.Active == bk.rising
	}
	return false
}

func (bk *syncEdgeBreakpoint) String() string {
	name := "hsync"
	if bk.vertical {
		name = "vsync"
	}
	edge := "end"
	if bk.rising {
		edge = "start"
	}
	return fmt.Sprintf("%s %s", name, edge)
}

// screenModeBreakpoint fires when the gate array latches a new screen
// mode.
type screenModeBreakpoint struct {
	common
	mode int // -1 matches any mode
}

func (bk *screenModeBreakpoint) shouldBreak(rec debug.Record) bool {
	ev, ok := rec.Event.(debug.ScreenModeChanged)
	return ok && (bk.mode < 0 || uint8(bk.mode) == ev.Is)
}

func (bk *screenModeBreakpoint) String() string {
	if bk.mode < 0 {
		return "screen mode change"
	}
	return fmt.Sprintf("screen mode %d", bk.mode)
}

// penColourBreakpoint fires when a colour is assigned to a pen.
type penColourBreakpoint struct {
	common
	pen int // -1 matches any pen
}

func (bk *penColourBreakpoint) shouldBreak(rec debug.Record) bool {
	ev, ok := rec.Event.(debug.PenColourWritten)
	return ok && (bk.pen < 0 || bk.pen == ev.Pen)
}

func (bk *penColourBreakpoint) String() string {
	if bk.pen < 0 {
		return "pen colour write"
	}
	return fmt.Sprintf("pen %d colour write", bk.pen)
}

// interruptBreakpoint fires when the gate array raises the periodic
// interrupt.
type interruptBreakpoint struct {
	common
}

func (bk *interruptBreakpoint) shouldBreak(rec debug.Record) bool {
	_, ok := rec.Event.(debug.InterruptRaised)
	return ok
}

func (bk *interruptBreakpoint) String() string {
	return "gate array interrupt"
}

// breakpoints tracks all currently defined breakpoints and the event
// subscription they are evaluated against.
type breakpoints struct {
	entries      map[int]breakpoint
	nextID       int
	subscription *debug.Subscription
}

func newBreakpoints() *breakpoints {
	return &breakpoints{
		entries:      make(map[int]breakpoint),
		subscription: debug.NewSubscription(debug.SourceAny),
	}
}

func (bks *breakpoints) close() {
	bks.subscription.Close()
}

func (bks *breakpoints) add(bk breakpoint) int {
	id := bks.nextID
	bks.nextID++
	bks.entries[id] = bk
	return id
}

func (bks *breakpoints) remove(id int) bool {
	if _, ok := bks.entries[id]; !ok {
		return false
	}
	delete(bks.entries, id)
	return true
}

func (bks *breakpoints) clear() {
	bks.entries = make(map[int]breakpoint)
}

// prepare removes fired one-shots and clears triggered flags. Called at
// the start of every evaluation cycle.
func (bks *breakpoints) prepare() {
	for id, bk := range bks.entries {
		f := bk.flagBlock()
		if f.triggered && f.oneShot {
			delete(bks.entries, id)
			continue
		}
		f.triggered = false
	}
}

// evaluate drains the subscription and flips the triggered flag on
// matching breakpoints.
func (bks *breakpoints) evaluate() {
	bks.subscription.PollBatch(func(rec debug.Record) {
		for _, bk := range bks.entries {
			f := bk.flagBlock()
			if f.enabled && bk.shouldBreak(rec) {
				f.triggered = true
			}
		}
	})
}

func (bks *breakpoints) anyTriggered() bool {
	for _, bk := range bks.entries {
		if bk.flagBlock().triggered {
			return true
		}
	}
	return false
}

func (bks *breakpoints) list() string {
	if len(bks.entries) == 0 {
		return "no breakpoints\n"
	}

	s := strings.Builder{}
	for id := 0; id < bks.nextID; id++ {
		bk, ok := bks.entries[id]
		if !ok {
			continue
		}
		f := bk.flagBlock()
		state := ""
		if !f.enabled {
			state = " (disabled)"
		}
		if f.oneShot {
			state += " (one shot)"
		}
		s.WriteString(fmt.Sprintf("%2d: %s%s\n", id, bk, state))
	}
	return s.String()
}
