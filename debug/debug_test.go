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

package debug_test

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/mdm/ronald/debug"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleSubscription(t *testing.T) {
	sub := debug.NewSubscription(debug.SourceCPU)
	defer sub.Close()

	debug.Emit(debug.SourceCPU, debug.Register8Written{Register: "A", Is: 0x42})

	records := sub.Poll()
	require.Len(t, records, 1)
	assert.IsType(t, debug.Register8Written{}, records[0].Event)

	// a second poll yields nothing
	assert.Empty(t, sub.Poll())
}

func TestEmitWithoutSubscribers(t *testing.T) {
	// must not panic and must not accumulate records
	debug.Emit(debug.SourceCPU, debug.Register8Written{Register: "A", Is: 0x42})
	assert.False(t, debug.Active())

	sub := debug.NewSubscription(debug.SourceAny)
	defer sub.Close()

	// the event emitted before the subscription existed is not delivered
	assert.Empty(t, sub.Poll())
}

func TestSourceFilter(t *testing.T) {
	cpuSub := debug.NewSubscription(debug.SourceCPU)
	defer cpuSub.Close()
	memSub := debug.NewSubscription(debug.SourceMemory)
	defer memSub.Close()

	debug.Emit(debug.SourceCPU, debug.Register8Written{Register: "A", Is: 0x42})
	debug.Emit(debug.SourceMemory, debug.MemoryRead{Address: 0x1000, Value: 0x42})

	cpuRecords := cpuSub.Poll()
	require.Len(t, cpuRecords, 1, spew.Sdump(cpuRecords))
	assert.Equal(t, debug.SourceCPU, cpuRecords[0].Source)

	memRecords := memSub.Poll()
	require.Len(t, memRecords, 1)
	assert.Equal(t, debug.SourceMemory, memRecords[0].Source)
}

func TestAnyReceivesAllSources(t *testing.T) {
	sub := debug.NewSubscription(debug.SourceAny)
	defer sub.Close()

	debug.Emit(debug.SourceCPU, debug.Register8Written{Register: "A", Is: 0x42})
	debug.Emit(debug.SourceMemory, debug.MemoryRead{Address: 0x1000, Value: 0x42})

	assert.Len(t, sub.Poll(), 2)
}

func TestSequencesAreMonotonic(t *testing.T) {
	sub := debug.NewSubscription(debug.SourceAny)
	defer sub.Close()

	for i := 0; i < 10; i++ {
		debug.Emit(debug.SourceCPU, debug.Register8Written{Register: "A", Is: uint8(i)})
	}

	records := sub.Poll()
	require.Len(t, records, 10)
	for i := 1; i < len(records); i++ {
		assert.Greater(t, records[i].Sequence, records[i-1].Sequence)
	}
}

func TestGarbageCollection(t *testing.T) {
	sub1 := debug.NewSubscription(debug.SourceAny)
	defer sub1.Close()
	sub2 := debug.NewSubscription(debug.SourceAny)

	for i := 0; i < 10; i++ {
		debug.Emit(debug.SourceCPU, debug.Register8Written{Register: "A", Is: uint8(i)})
	}

	// the first subscription consumes everything but the log must retain
	// the records for the second subscription
	assert.Len(t, sub1.Poll(), 10)
	assert.Len(t, sub2.Poll(), 10)

	// every record is now consumed by every live subscription
	assert.False(t, sub1.HasPending())
	assert.False(t, sub2.HasPending())

	// dropping a subscription releases its hold on the log
	debug.Emit(debug.SourceCPU, debug.Register8Written{Register: "A", Is: 0xff})
	sub2.Close()
	assert.Len(t, sub1.Poll(), 1)
}

func TestHasPending(t *testing.T) {
	sub := debug.NewSubscription(debug.SourceCPU)
	defer sub.Close()

	assert.False(t, sub.HasPending())
	debug.Emit(debug.SourceCPU, debug.Register8Written{Register: "A", Is: 0x42})
	assert.True(t, sub.HasPending())
	sub.Poll()
	assert.False(t, sub.HasPending())
}
