// Package log is the process-wide logger. Everything goes to stderr so that
// stdout only carries the tables.
package log

import (
	"os"

	"github.com/charmbracelet/log"
)

var Logger = log.NewWithOptions(os.Stderr, log.Options{})

// SetDebug toggles debug messages and level prefixes
func SetDebug(enabled bool) {
	level := log.InfoLevel
	if enabled {
		level = log.DebugLevel
	}
	Logger.SetLevel(level)
}

func Debug(msg interface{}, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

// Info prints msg as plain text unless debug output is on
func Info(msg interface{}, keyvals ...interface{}) {
	if Logger.GetLevel() > log.DebugLevel {
		Logger.Print(msg, keyvals...)
		return
	}
	Logger.Info(msg, keyvals...)
}

// Warn reports something the package manager complained about
// without failing the run.
func Warn(msg interface{}, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

// Error reports a failure that ends the run
func Error(msg interface{}, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
}
