// Package main implements a TRS-80 Model I emulator around a Z80 core
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := ParseFlags(os.Args[1:])
	logger := createLogger(opts.Debug, opts.Quiet)
	if err != nil {
		var usageErr *UsageError
		if errors.As(err, &usageErr) {
			printBanner(logger, opts)
			usageErr.ShowUsage(os.Stdout)
			if errors.Is(err, flag.ErrHelp) {
				os.Exit(0)
			}
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		fatalError(logger, err)
	}
	printBanner(logger, opts)

	if err := run(ctx, logger, opts); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		fatalError(logger, err)
	}
}

func printBanner(logger *log.Logger, opts Options) {
	if opts.Quiet {
		return
	}
	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}
	logger.Info("trs80", log.String("version", versionString))
	if date != "" {
		logger.Info("Build", log.String("date", date))
	}
}

func run(ctx context.Context, logger *log.Logger, opts Options) error {
	var sound SoundSink
	if opts.Sound {
		beeper := NewTRS80Beeper(opts.ClockHz(), trs80SampleRate)
		player, err := NewOtoPlayer(trs80SampleRate)
		if err != nil {
			logger.Warn("Sound disabled", log.Err(err))
		} else {
			player.SetupPlayer(beeper)
			player.Start()
			defer player.Close()
			sound = beeper
		}
	}

	machine, err := NewMachine(MachineConfig{
		RAMKB:    opts.RAMKB,
		ClockHz:  opts.ClockHz(),
		Throttle: opts.Throttle,
		Seed:     opts.Seed,
		Sound:    sound,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	if opts.ROM != "" {
		if err := machine.LoadROM(opts.ROM); err != nil {
			return err
		}
	}
	for _, ld := range opts.Loads {
		if err := machine.LoadImage(ld.Addr, ld.Path); err != nil {
			return err
		}
	}
	if opts.HasEntry {
		machine.SetEntry(opts.Entry)
	}

	debugger := NewDebugZ80(machine, os.Stdout, logger)
	for _, addr := range opts.Trace {
		if err := debugger.AddTrap(addr, TrapTrace); err != nil {
			return err
		}
	}

	luaHost := NewLuaHost(ctx, debugger, machine, os.Stdout)
	defer luaHost.Close()
	if opts.Script != "" {
		if err := luaHost.DoFile(opts.Script); err != nil {
			return err
		}
	}

	if opts.Monitor {
		return NewMonitor(debugger, luaHost, os.Stdin, os.Stdout, logger).Run(ctx)
	}
	return runMachine(ctx, logger, opts, machine)
}

// runMachine runs the machine with the selected screen until it stops, the
// window closes or ctx is cancelled. F10 in the window resets the machine.
func runMachine(ctx context.Context, logger *log.Logger, opts Options, machine *Machine) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var windowDone <-chan struct{}
	resetCh := make(chan struct{}, 1)

	switch {
	case opts.Window:
		window, err := NewEbitenOutput(machine.Video(), opts.Scale)
		if err != nil {
			return err
		}
		window.SetKeyHandler(func(b byte) { machine.Keyboard().Enqueue(b) })
		window.SetResetHandler(func() {
			select {
			case resetCh <- struct{}{}:
			default:
			}
		})
		if err := window.Start(); err != nil {
			return err
		}
		defer window.Stop()
		windowDone = window.Done()

	case !opts.Headless && stdinIsTerminal():
		host := NewTerminalHost(machine.Keyboard(), cancel)
		host.Start()
		defer host.Stop()
		screen := NewTerminalScreen(machine.Video(), os.Stdout)
		go func() {
			if err := screen.Run(ctx); err != nil {
				logger.Error("Screen output failed", log.Err(err))
			}
		}()
	}

	resets := 0
	for {
		if err := machine.Start(ctx); err != nil {
			return err
		}
		select {
		case <-machine.Done():
		case <-windowDone:
			machine.Stop()
			return nil
		case <-resetCh:
			machine.Stop()
			machine.Reset()
			resets++
			logger.Info("Machine reset", log.Int("count", resets))
			continue
		}

		reason, err := machine.Wait()
		if err != nil {
			return err
		}
		switch reason {
		case Z80StopBreakpoint:
			pc := machine.CPU().PC
			logger.Info("Stopped at breakpoint", log.Hex("pc", pc))
			return nil
		default:
			return ctx.Err()
		}
	}
}
