// Package term owns the display device: an exclusively-held, append-only
// byte sink the engine repaints. All cursor movement happens through control
// sequences; nothing here reads from the device.
package term

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/pvemon/ttydash/internal/errors"
)

// Screen wraps the output device with the two frame operations the engine
// needs: a full redraw and an in-place header repaint.
type Screen struct {
	w      io.Writer
	out    *termenv.Output
	closer io.Closer
}

// NewScreen wraps an existing writer, typically stdout or a test buffer.
func NewScreen(w io.Writer) *Screen {
	return &Screen{w: w, out: termenv.NewOutput(w)}
}

// Open opens a terminal device (e.g. /dev/tty1) write-only for exclusive use
// as the dashboard surface. Close releases it.
func Open(path string) (*Screen, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrRender,
			"Cannot open display device "+path,
			"Check the device path and that you have write permission (root is usually required for /dev/tty*)")
	}
	s := NewScreen(f)
	s.closer = f
	return s, nil
}

// Reset performs a full terminal reset (RIS) and hides the cursor. Called
// once at startup to take over the device.
func (s *Screen) Reset() {
	fmt.Fprint(s.w, "\x1bc")
	s.out.HideCursor()
}

// FullFrame redraws everything: home the cursor, write the header and body,
// then clear whatever a longer previous frame left below.
func (s *Screen) FullFrame(header, body string) {
	s.out.MoveCursor(1, 1)
	fmt.Fprint(s.w, header)
	fmt.Fprint(s.w, "\n")
	fmt.Fprint(s.w, body)
	fmt.Fprint(s.w, "\n\x1b[J")
}

// HeaderLine repaints only the header, leaving the body visually untouched:
// save the cursor, overwrite line one, clear its tail, restore the cursor.
func (s *Screen) HeaderLine(header string) {
	s.out.SaveCursorPosition()
	s.out.MoveCursor(1, 1)
	fmt.Fprint(s.w, header)
	s.out.ClearLineRight()
	s.out.RestoreCursorPosition()
}

// ShowCursor restores cursor visibility; part of the shutdown path so an
// interrupted run does not leave the console cursorless.
func (s *Screen) ShowCursor() {
	s.out.ShowCursor()
}

// IsTerminal reports whether the underlying writer is a real terminal.
func (s *Screen) IsTerminal() bool {
	f, ok := s.w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Close releases the device if Open acquired it.
func (s *Screen) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
