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

// Package performance measures and exposes how fast the emulation is
// running: a headless benchmark mode and an optional live statsview
// profiling server.
package performance

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/mdm/ronald/emulation"
	"github.com/mdm/ronald/logger"
)

// StartStatsview launches the live profiling web server. The returned stop
// function shuts it down.
func StartStatsview(addr string) func() {
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()

	go func() {
		mgr.Start()
	}()

	logger.Logf("performance", "statsview listening on %s", addr)

	return mgr.Stop
}

// Check runs the emulation flat out for a wall-clock duration and reports
// the speed relative to the 4MHz original.
func Check(output io.Writer, drv *emulation.Driver, duration time.Duration) {
	start := time.Now()
	startClock := drv.System().MasterClock

	for time.Since(start) < duration {
		drv.Step(emulation.FrameMicroseconds, nil, nil)
	}

	elapsed := time.Since(start).Seconds()
	ticks := drv.System().MasterClock - startClock

	// 16 million master clock ticks is one emulated second
	emulated := float64(ticks) / 16_000_000.0
	fmt.Fprintf(output, "%.2fs emulated in %.2fs (%.1f%%)\n",
		emulated, elapsed, 100*emulated/elapsed)
}
