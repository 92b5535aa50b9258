package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"
	"github.com/pkg/errors"
	"github.com/retroenv/retrogolib/log"

	"github.com/dmnk/c8/chip8"
)

// devMode runs the program like run does, but keeps watching the ROM
// file and swaps in a fresh machine whenever it changes, so an
// assembler writing next to the runner gives a live edit loop. With
// the debugger enabled the machine is driven from the debug view.
func devMode(ctx context.Context, opts options, logger *log.Logger) (int, error) {
	romFile := filepath.Clean(opts.rom)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return 0, errors.Wrapf(err, "creating watcher")
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(romFile)); err != nil {
		return 0, errors.Wrapf(err, "watching %s", filepath.Dir(romFile))
	}

	var (
		dbg  *debugger
		r    *Runner
		logf func(format string, args ...any)
	)
	if opts.debugger {
		dbg = newDebugView()
		r = NewRunner(opts.gui, true, dbg.StateFunc)
		dbg.run = r
		logf = dbg.logf
		go func() {
			if err := dbg.Run(); err != nil {
				logger.Fatal("debugger failed", log.Err(err))
			}
			r.Debug("exit", 0)
		}()
	} else {
		r = NewRunner(opts.gui, true, nil)
		logf = func(format string, args ...any) {
			logger.Info(fmt.Sprintf(format, args...))
		}
	}
	r.Hz = opts.hz
	r.Logf = logf
	if opts.trace {
		r.Trace = traceFunc(logf)
	}

	romCh := make(chan []byte)
	go func() {
		started := false
		load := time.After(1 * time.Millisecond)
		for {
			select {
			case <-load:
				logf("dev: load %s", filepath.Base(romFile))
				rom, err := readROM(romFile)
				if err != nil {
					logf("dev: %v", err)
					break
				}
				if !started {
					logf("dev: start")
					romCh <- rom
					started = true
				} else {
					logf("dev: reset")
					r.Swap(rom)
				}
			case ev := <-watcher.Event:
				if ev.Name == romFile && !ev.IsAttrib() {
					// Editors and assemblers write in bursts; let
					// them settle before reloading.
					load = time.After(100 * time.Millisecond)
				}
			case err := <-watcher.Error:
				logf("dev: watcher: %v", err)
			}
		}
	}()

	go func() {
		<-ctx.Done()
		r.Debug("exit", 0)
	}()

	var rom []byte
	select {
	case rom = <-romCh:
	case <-ctx.Done():
		// Interrupted before the ROM file ever loaded.
		return 0, nil
	}

	code := r.Run(rom)
	if dbg != nil {
		dbg.Stop()
	}
	if err := r.Err(); err != nil && err != chip8.ErrStopped {
		logFault(logger, err)
	}
	return code, nil
}
