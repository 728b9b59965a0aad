package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/retroenv/retrogolib/log"
)

// fatalMessage formats the line printed when the emulator gives up.
func fatalMessage(program string, err error) string {
	return fmt.Sprintf("%s: fatal error: %v\n", filepath.Base(program), err)
}

// reportFatal logs err and writes the fatal line to w.
func reportFatal(logger *log.Logger, w io.Writer, err error) {
	if logger != nil {
		logger.Error("Emulation stopped", log.Err(err))
	}
	fmt.Fprint(w, fatalMessage(os.Args[0], err))
}

// fatalError reports err on stderr and exits with status 1.
func fatalError(logger *log.Logger, err error) {
	reportFatal(logger, os.Stderr, err)
	os.Exit(1)
}
