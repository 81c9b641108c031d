// Package debug provides conditional debug logging and the process-wide
// error log for the estimation core.
//
// Debug logging is enabled by setting the SANCHUL_DEBUG environment variable:
//
//	SANCHUL_DEBUG=1 sanchul
//
// When enabled, debug messages are written to stderr with timestamps.
// When disabled (default), all debug functions are no-ops with zero overhead.
//
// Error logging is independent of the debug switch: the core never lets a
// persistence failure escape to the caller, so every swallowed error is
// recorded through Error, which appends to the configured log file (and to
// stderr when debugging).
package debug

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

var (
	// enabled is true when SANCHUL_DEBUG env var is set
	enabled bool
	// logger writes to stderr with [SANCHUL] prefix
	logger *log.Logger

	mu      sync.Mutex
	logFile *os.File
)

func init() {
	if os.Getenv("SANCHUL_DEBUG") != "" {
		enabled = true
		logger = log.New(os.Stderr, "[SANCHUL] ", log.Ltime|log.Lmicroseconds)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = log.New(os.Stderr, "[SANCHUL] ", log.Ltime|log.Lmicroseconds)
	}
}

// SetLogFile opens (appending) the process-wide error log at path. Errors
// opening the file are returned but the package keeps working without one.
func SetLogFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	mu.Lock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	mu.Unlock()
	return nil
}

// CloseLogFile closes the error log if one is open.
func CloseLogFile() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// Error records a swallowed error. It always reaches the error log file when
// one is configured, and stderr when debug logging is on.
func Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	mu.Lock()
	if logFile != nil {
		fmt.Fprintf(logFile, "%s ERROR %s\n", time.Now().Format("2006-01-02 15:04:05.000"), msg)
	}
	mu.Unlock()
	if enabled {
		logger.Printf("ERROR %s", msg)
	}
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.Printf("%s took %v", name, d)
}

// LogIf writes a debug message only if the condition is true.
func LogIf(cond bool, format string, args ...any) {
	if !enabled || !cond {
		return
	}
	logger.Printf(format, args...)
}

// LogEnterExit logs function entry and exit with timing.
// Usage:
//
//	func myFunc() {
//	    defer debug.LogEnterExit("myFunc")()
//	    // ...
//	}
func LogEnterExit(name string) func() {
	if !enabled {
		return func() {}
	}
	logger.Printf("-> %s", name)
	start := time.Now()
	return func() {
		logger.Printf("<- %s (%v)", name, time.Since(start))
	}
}

// Dump logs a value with its type for debugging complex structures.
func Dump(name string, v any) {
	if !enabled {
		return
	}
	logger.Printf("%s: %T = %+v", name, v, v)
}
