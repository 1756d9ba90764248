package display

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
)

// StartSpinner shows a spinner with msg on f while the package manager works.
// Nothing is drawn unless f is a terminal. The returned func stops and clears it.
func StartSpinner(f *os.File, msg string) (stop func()) {
	if f == nil || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(f))
	s.Suffix = " " + msg
	s.Start()
	return s.Stop
}
