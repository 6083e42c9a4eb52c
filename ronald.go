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

// Ronald is an emulator of the Amstrad CPC family of home computers.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mdm/ronald/debugger/colorterm"
	"github.com/mdm/ronald/emulation"
	"github.com/mdm/ronald/gui/otoaudio"
	"github.com/mdm/ronald/gui/sdlaudio"
	"github.com/mdm/ronald/gui/sdlplay"
	"github.com/mdm/ronald/hardware/model"
	"github.com/mdm/ronald/hardware/screen"
	"github.com/mdm/ronald/logger"
	"github.com/mdm/ronald/modalflag"
	"github.com/mdm/ronald/performance"
	"github.com/mdm/ronald/recorder"
)

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.AddSubModes("RUN", "DEBUG", "DISASM", "PERFORMANCE")

	p, err := md.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "* %v\n", err)
		os.Exit(10)
	}
	if p == modalflag.ParseHelp {
		os.Exit(0)
	}

	switch md.Mode() {
	case "RUN":
		err = play(md, false)
	case "DEBUG":
		err = play(md, true)
	case "DISASM":
		err = disasm(md)
	case "PERFORMANCE":
		err = perform(md)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "* %v\n", err)
		os.Exit(10)
	}
}

// machineFlags adds the flags shared by every mode and returns a function
// that builds the configured Driver.
func machineFlags(md *modalflag.Modes, terminal *colorterm.ColorTerm) func() (*emulation.Driver, error) {
	modelName := md.AddString("model", "464", "CPC model: 464, 664 or 6128")
	lowerRom := md.AddString("lowerrom", "", "operating system ROM file")
	upperRoms := md.AddString("upperroms", "", "upper ROMs as slot:file, comma separated")
	drive0 := md.AddString("drive0", "", "DSK image for drive A")
	drive1 := md.AddString("drive1", "", "DSK image for drive B")

	return func() (*emulation.Driver, error) {
		m, ok := model.ParseModel(*modelName)
		if !ok {
			return nil, fmt.Errorf("ronald: unknown model: %s", *modelName)
		}

		drv := emulation.NewDriver(m, terminal)

		if *lowerRom != "" {
			data, err := os.ReadFile(*lowerRom)
			if err != nil {
				return nil, fmt.Errorf("ronald: %w", err)
			}
			drv.LoadLowerRom(data)
		}

		if *upperRoms != "" {
			for _, assignment := range strings.Split(*upperRoms, ",") {
				slot, file, ok := strings.Cut(assignment, ":")
				if !ok {
					return nil, fmt.Errorf("ronald: bad upper rom assignment: %s", assignment)
				}
				n, err := strconv.Atoi(slot)
				if err != nil || n < 0 || n > 255 {
					return nil, fmt.Errorf("ronald: bad upper rom slot: %s", slot)
				}
				data, err := os.ReadFile(file)
				if err != nil {
					return nil, fmt.Errorf("ronald: %w", err)
				}
				drv.LoadUpperRom(uint8(n), data)
			}
		}

		for drive, file := range map[int]string{0: *drive0, 1: *drive1} {
			if file == "" {
				continue
			}
			data, err := os.ReadFile(file)
			if err != nil {
				return nil, fmt.Errorf("ronald: %w", err)
			}
			if err := drv.LoadDisk(drive, data, file); err != nil {
				return nil, err
			}
		}

		return drv, nil
	}
}

// play runs the emulation against the SDL window, optionally with the
// debugger attached from the start.
func play(md *modalflag.Modes, withDebugger bool) error {
	md.NewMode()

	scale := md.AddInt("scale", 1, "window scale factor")
	audioBackend := md.AddString("audio", "sdl", "audio backend: sdl, oto or none")
	record := md.AddString("record", "", "record audio to WAV file")
	stats := md.AddString("statsview", "", "address for the live profiling server")

	terminal := colorterm.NewColorTerm()
	defer terminal.Close()
	build := machineFlags(md, terminal)

	p, err := md.Parse()
	if err != nil || p == modalflag.ParseHelp {
		return err
	}

	drv, err := build()
	if err != nil {
		return err
	}

	if *stats != "" {
		stop := performance.StartStatsview(*stats)
		defer stop()
	}

	window, err := sdlplay.NewSdlPlay(*scale)
	if err != nil {
		return err
	}
	defer window.Destroy()

	var audio screen.AudioSink
	switch *audioBackend {
	case "sdl":
		sink, err := sdlaudio.NewAudio()
		if err != nil {
			return err
		}
		defer sink.EndMixing()
		audio = sink
	case "oto":
		sink, err := otoaudio.NewAudio()
		if err != nil {
			return err
		}
		defer sink.End()
		audio = sink
	case "none":
	default:
		return fmt.Errorf("ronald: unknown audio backend: %s", *audioBackend)
	}

	if *record != "" {
		rate := 44100
		if audio != nil {
			rate = audio.SampleRate()
		}
		rec, err := recorder.NewRecorder(*record, rate, audio)
		if err != nil {
			return err
		}
		defer rec.End()
		audio = rec
	}

	if withDebugger {
		drv.ActivateDebugger()
	}

	// the pacing loop: feed real elapsed time to the driver, capped so a
	// stalled process doesn't fast-forward
	last := time.Now()
	for window.Service(drv) {
		now := time.Now()
		elapsed := now.Sub(last).Microseconds()
		last = now

		if elapsed > 4*emulation.FrameMicroseconds {
			elapsed = 4 * emulation.FrameMicroseconds
		}

		drv.Step(elapsed, window, audio)
		time.Sleep(time.Millisecond)
	}

	logger.Write(os.Stderr)

	return nil
}

// disasm prints a disassembly of the loaded ROMs from the reset address.
func disasm(md *modalflag.Modes) error {
	md.NewMode()

	count := md.AddInt("count", 64, "number of instructions to disassemble")
	build := machineFlags(md, nil)

	p, err := md.Parse()
	if err != nil || p == modalflag.ParseHelp {
		return err
	}

	drv, err := build()
	if err != nil {
		return err
	}

	for _, entry := range drv.Disassemble(*count) {
		fmt.Printf("%04x: %s\n", entry.Address, entry.Mnemonic)
	}

	return nil
}

// perform runs the emulation headless and reports its speed.
func perform(md *modalflag.Modes) error {
	md.NewMode()

	duration := md.AddString("duration", "5s", "wall clock duration of the run")
	stats := md.AddString("statsview", "", "address for the live profiling server")
	build := machineFlags(md, nil)

	p, err := md.Parse()
	if err != nil || p == modalflag.ParseHelp {
		return err
	}

	drv, err := build()
	if err != nil {
		return err
	}

	d, err := time.ParseDuration(*duration)
	if err != nil {
		return fmt.Errorf("ronald: %w", err)
	}

	if *stats != "" {
		stop := performance.StartStatsview(*stats)
		defer stop()
	}

	performance.Check(os.Stdout, drv, d)

	return nil
}
