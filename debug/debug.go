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

// Package debug is the append-only log of typed hardware events. Every
// peripheral in the emulation pushes events into the log as state changes;
// consumers (principally the breakpoint evaluator in the debugger package)
// read them back through subscriptions.
//
// The log is process scoped. The emulator is a singleton by design, so a
// package-level log is a deliberate simplification; the subscription count
// is kept in an atomic so that the hot paths in the CPU and memory packages
// can skip event construction entirely when nobody is listening.
//
// Entries are garbage collected as subscriptions consume them: after every
// poll the log is trimmed of entries below the minimum first-unconsumed
// sequence number across all live subscriptions.
package debug

import (
	"sync/atomic"
)

// Source identifies the part of the emulation that emitted an event.
type Source int

// List of valid Source values. SourceAny is only useful as a subscription
// filter.
const (
	SourceAny Source = iota
	SourceCPU
	SourceMemory
	SourceCRTC
	SourceGateArray
	SourceFDC
	SourcePPI
	SourcePSG
	SourceBus
)

func (s Source) String() string {
	switch s {
	case SourceAny:
		return "any"
	case SourceCPU:
		return "cpu"
	case SourceMemory:
		return "memory"
	case SourceCRTC:
		return "crtc"
	case SourceGateArray:
		return "gate array"
	case SourceFDC:
		return "fdc"
	case SourcePPI:
		return "ppi"
	case SourcePSG:
		return "psg"
	case SourceBus:
		return "bus"
	}
	return "unknown"
}

// Event is the interface implemented by all typed event payloads in this
// package.
type Event interface {
	String() string
}

// Record is a single entry in the event log.
type Record struct {
	Sequence uint64
	Source   Source
	Event    Event

	// the master clock tick at the time the event was emitted
	Clock uint64
}

// the central event log and subscription registry.
type log struct {
	records []Record

	// the sequence number that will be assigned to the next record
	sequence uint64

	// the current master clock tick, advanced by the bus
	clock uint64

	// live subscriptions. the first-unconsumed sequence of every
	// subscription is needed for garbage collection
	subscriptions map[int]*Subscription
	nextID        int
}

var central = &log{
	subscriptions: make(map[int]*Subscription),
}

// subscription count for the fast Active() check
var subscriptionCount atomic.Int32

// Active returns true if at least one subscription is live. Emission is
// pointless otherwise and hot paths should use this to elide the
// construction of event values altogether.
func Active() bool {
	return subscriptionCount.Load() > 0
}

// Emit appends an event to the central log. The event is dropped immediately
// when no subscription is live.
func Emit(source Source, event Event) {
	if !Active() {
		return
	}

	central.records = append(central.records, Record{
		Sequence: central.sequence,
		Source:   source,
		Event:    event,
		Clock:    central.clock,
	})
	central.sequence++
}

// AdvanceClock moves the master clock forward. Called by the bus once per
// character tick.
func AdvanceClock(ticks uint64) {
	central.clock += ticks
}

// Clock returns the current master clock tick.
func Clock() uint64 {
	return central.clock
}

// Subscription is a read cursor into the central event log. A subscription
// only sees events emitted after its creation. The zero value is not useful;
// use NewSubscription().
type Subscription struct {
	id int

	// the sequence number of the first record this subscription has not yet
	// consumed
	firstUnconsumed uint64

	// only records from this source are handed out. SourceAny matches
	// everything
	filter Source
}

// NewSubscription registers a new subscription with the central log. The
// subscription must be closed with Close() when no longer needed or the log
// will grow without bound.
func NewSubscription(filter Source) *Subscription {
	sub := &Subscription{
		id:              central.nextID,
		firstUnconsumed: central.sequence,
		filter:          filter,
	}
	central.nextID++
	central.subscriptions[sub.id] = sub
	subscriptionCount.Add(1)
	return sub
}

// Close unregisters the subscription. Records it had not consumed become
// eligible for collection.
func (sub *Subscription) Close() {
	if _, ok := central.subscriptions[sub.id]; !ok {
		return
	}
	delete(central.subscriptions, sub.id)
	subscriptionCount.Add(-1)
	collect()
}

// PollBatch hands every unconsumed record matching the subscription's filter
// to the callback, advances the subscription and trims the log of records
// every live subscription has consumed.
func (sub *Subscription) PollBatch(f func(Record)) {
	for _, rec := range central.records {
		if rec.Sequence < sub.firstUnconsumed {
			continue
		}
		if sub.filter != SourceAny && sub.filter != rec.Source {
			continue
		}
		f(rec)
	}
	sub.firstUnconsumed = central.sequence
	collect()
}

// Poll returns every unconsumed record matching the subscription's filter.
func (sub *Subscription) Poll() []Record {
	var records []Record
	sub.PollBatch(func(rec Record) {
		records = append(records, rec)
	})
	return records
}

// HasPending returns true if at least one record has been emitted since the
// last poll. The source filter is not taken into account.
func (sub *Subscription) HasPending() bool {
	return central.sequence > sub.firstUnconsumed
}

// collect trims the log of records consumed by every live subscription.
func collect() {
	if len(central.subscriptions) == 0 {
		central.records = central.records[:0]
		return
	}

	min := central.sequence
	for _, sub := range central.subscriptions {
		if sub.firstUnconsumed < min {
			min = sub.firstUnconsumed
		}
	}

	retain := len(central.records)
	for i, rec := range central.records {
		if rec.Sequence >= min {
			retain = i
			break
		}
	}
	central.records = central.records[retain:]
}
