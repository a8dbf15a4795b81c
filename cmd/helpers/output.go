package helpers

import (
	"io"
	"os"

	"github.com/zinc-sig/pst/internal/output"
)

// ColorEnabled reports whether w is a terminal that should get colors.
// NO_COLOR disables colors everywhere.
func ColorEnabled(w io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return IsTerminal(w)
}

// NewPrinter creates a result printer, colored when stderr is a terminal
func NewPrinter(out, errOut io.Writer) *output.Printer {
	return output.NewPrinter(out, errOut, ColorEnabled(errOut))
}
