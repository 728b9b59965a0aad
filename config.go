package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// Options holds the command line configuration.
type Options struct {
	ROM      string
	Loads    loadList
	Entry    uint16
	HasEntry bool
	RAMKB    int
	MHz      float64
	Seed     uint64

	Throttle bool
	Sound    bool
	Window   bool
	Headless bool
	Scale    int

	Monitor bool
	Script  string
	Trace   addrList

	Debug bool
	Quiet bool
}

// ImageLoad is one -load addr:file argument.
type ImageLoad struct {
	Addr uint16
	Path string
}

type loadList []ImageLoad

func (l *loadList) String() string {
	parts := make([]string, len(*l))
	for i, ld := range *l {
		parts[i] = fmt.Sprintf("%04X:%s", ld.Addr, ld.Path)
	}
	return strings.Join(parts, ",")
}

func (l *loadList) Set(value string) error {
	addr, path, ok := strings.Cut(value, ":")
	if !ok || path == "" {
		return fmt.Errorf("want addr:file, got %q", value)
	}
	a, ok := ParseAddress(addr)
	if !ok {
		return fmt.Errorf("invalid load address %q", addr)
	}
	*l = append(*l, ImageLoad{Addr: a, Path: path})
	return nil
}

type addrList []uint16

func (l *addrList) String() string {
	parts := make([]string, len(*l))
	for i, a := range *l {
		parts[i] = fmt.Sprintf("%04X", a)
	}
	return strings.Join(parts, ",")
}

func (l *addrList) Set(value string) error {
	for _, s := range strings.Split(value, ",") {
		a, ok := ParseAddress(s)
		if !ok {
			return fmt.Errorf("invalid address %q", s)
		}
		*l = append(*l, a)
	}
	return nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
	err   error
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) Unwrap() error {
	return e.err
}

func (e *UsageError) ShowUsage(w io.Writer) {
	fmt.Fprintf(w, "usage: trs80 [options] [rom file]\n\n")
	if e.flags != nil {
		e.flags.SetOutput(w)
		e.flags.PrintDefaults()
	}
	fmt.Fprintln(w)
}

// ParseFlags parses args (without the program name) into Options.
func ParseFlags(args []string) (Options, error) {
	flags := flag.NewFlagSet("trs80", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	opts := Options{}
	var entry string

	flags.StringVar(&opts.ROM, "rom", "", "raw ROM image loaded at $0000 (max 12K)")
	flags.Var(&opts.Loads, "load", "extra raw image as addr:file, may be repeated")
	flags.StringVar(&entry, "entry", "", "start address instead of $0000")
	flags.IntVar(&opts.RAMKB, "ram", 48, "RAM size in K (4, 16, 32 or 48)")
	flags.Float64Var(&opts.MHz, "mhz", 1.77408, "CPU clock in MHz")
	flags.Uint64Var(&opts.Seed, "seed", 0, "seed for the R register generator, 0 picks one")
	flags.BoolVar(&opts.Throttle, "throttle", true, "pace emulation to real time")
	flags.BoolVar(&opts.Sound, "sound", false, "play the cassette port through the audio device")
	flags.BoolVar(&opts.Window, "window", false, "show the screen in a window instead of the terminal")
	flags.BoolVar(&opts.Headless, "headless", false, "run without any screen output")
	flags.IntVar(&opts.Scale, "scale", 2, "window scale factor")
	flags.BoolVar(&opts.Monitor, "monitor", false, "start in the machine monitor")
	flags.StringVar(&opts.Script, "script", "", "Lua script run before the machine starts")
	flags.Var(&opts.Trace, "trace", "comma separated tracepoint addresses")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debug logging")
	flags.BoolVar(&opts.Quiet, "q", false, "only log errors")

	if err := flags.Parse(args); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error(), err: err}
	}

	switch rest := flags.Args(); {
	case len(rest) == 1 && opts.ROM == "":
		opts.ROM = rest[0]
	case len(rest) > 0:
		return opts, &UsageError{flags: flags, msg: fmt.Sprintf("unexpected arguments: %s", strings.Join(rest, " "))}
	}
	if opts.ROM == "" && len(opts.Loads) == 0 {
		return opts, &UsageError{flags: flags, msg: "nothing to run: give a ROM or -load an image"}
	}
	if entry != "" {
		a, ok := ParseAddress(entry)
		if !ok {
			return opts, &UsageError{flags: flags, msg: fmt.Sprintf("invalid entry address %q", entry)}
		}
		opts.Entry, opts.HasEntry = a, true
	}
	if opts.MHz <= 0 {
		return opts, &UsageError{flags: flags, msg: "clock must be positive"}
	}
	if opts.Window && opts.Headless {
		return opts, &UsageError{flags: flags, msg: "-window and -headless are exclusive"}
	}
	return opts, nil
}

// ClockHz is the configured clock in T-states per second.
func (o Options) ClockHz() int {
	return int(math.Round(o.MHz * 1e6))
}

// createLogger creates a logger with appropriate settings
func createLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// stdinIsTerminal reports whether raw keyboard input can be used.
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
