package terminal

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/quentinrf/ambient-backlight/internal/domain"
)

// cursor up one line, erase to end of line
const clearPrevLine = "\x1b[A\x1b[K"

// Console prints status samples, redrawing the previous sample in place when
// the output is a terminal.
// This implements the ports.Renderer interface
type Console struct {
	out     io.Writer
	inPlace bool
}

// New renders to f, in place only if f is a terminal
func New(f *os.File) *Console {
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return &Console{out: colorable.NewColorable(f), inPlace: true}
	}
	return &Console{out: f}
}

// NewWriter renders to w; inPlace enables ANSI line replacement
func NewWriter(w io.Writer, inPlace bool) *Console {
	return &Console{out: w, inPlace: inPlace}
}

// Render writes one status line
func (c *Console) Render(sample *domain.Sample, overwrite bool) {
	if overwrite && c.inPlace {
		io.WriteString(c.out, clearPrevLine)
	}
	fmt.Fprintln(c.out, Format(sample))
}

// Format renders a sample as a single line
func Format(s *domain.Sample) string {
	return fmt.Sprintf("%6dµs %3d/s (%d) raw=%d/%d light=%.4f mapped=%.4f (%d/%d) %s",
		s.Delta.Microseconds(),
		s.Rate,
		s.Dropped,
		s.Raw,
		s.FullScale,
		s.Normalized,
		s.LevelFraction(),
		s.Level,
		s.ScreenMax,
		s.Flags,
	)
}
