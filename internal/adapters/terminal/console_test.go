package terminal

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/quentinrf/ambient-backlight/internal/domain"
)

func testSample() *domain.Sample {
	return &domain.Sample{
		Delta:      33333 * time.Microsecond,
		Raw:        1280,
		FullScale:  4095,
		Normalized: 0.5,
		Level:      325,
		ScreenMax:  1000,
		Rate:       30,
		Dropped:    2,
		Flags:      domain.Flags{false, true, false, false},
	}
}

func TestFormat(t *testing.T) {
	want := " 33333µs  30/s (2) raw=1280/4095 light=0.5000 mapped=0.3250 (325/1000) .x.."
	if got := Format(testSample()); got != want {
		t.Errorf("Format() =\n%q\nwant\n%q", got, want)
	}
}

func TestConsole_InPlace(t *testing.T) {
	var buf bytes.Buffer
	c := NewWriter(&buf, true)

	c.Render(testSample(), false)
	c.Render(testSample(), true)

	out := buf.String()
	if strings.Count(out, clearPrevLine) != 1 {
		t.Errorf("expected exactly one line erase, got %q", out)
	}
	if strings.HasPrefix(out, clearPrevLine) {
		t.Error("first sample must not erase the line above it")
	}
}

func TestConsole_PlainNeverErases(t *testing.T) {
	var buf bytes.Buffer
	c := NewWriter(&buf, false)

	c.Render(testSample(), true)
	c.Render(testSample(), true)

	if strings.Contains(buf.String(), "\x1b") {
		t.Errorf("expected no escape sequences, got %q", buf.String())
	}
	if n := strings.Count(buf.String(), "\n"); n != 2 {
		t.Errorf("expected 2 lines, got %d", n)
	}
}
