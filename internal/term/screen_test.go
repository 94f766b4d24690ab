package term

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetSequence(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf)

	s.Reset()
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\x1bc"), "must start with a full terminal reset")
	assert.Contains(t, out, "\x1b[?25l", "cursor hidden after reset")
}

func TestFullFrame(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf)

	s.FullFrame("HEADER", "row1\nrow2")
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "\x1b[1;1H"), "frame starts by homing the cursor")
	assert.Contains(t, out, "HEADER\nrow1\nrow2\n")
	assert.True(t, strings.HasSuffix(out, "\x1b[J"), "frame ends clearing below the body")
}

func TestHeaderLineLeavesBodyAlone(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf)

	s.HeaderLine("HEADER")
	out := buf.String()

	// Save, home, write, clear tail, restore: the body is never touched.
	save := strings.Index(out, "\x1b[s")
	home := strings.Index(out, "\x1b[1;1H")
	text := strings.Index(out, "HEADER")
	clear := strings.Index(out, "\x1b[0K")
	restore := strings.Index(out, "\x1b[u")

	require.GreaterOrEqual(t, save, 0)
	assert.Less(t, save, home)
	assert.Less(t, home, text)
	assert.Less(t, text, clear)
	assert.Less(t, clear, restore)
	assert.NotContains(t, out, "\x1b[J")
}

func TestShowCursor(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf)

	s.ShowCursor()
	assert.Contains(t, buf.String(), "\x1b[?25h")
}

func TestIsTerminalOnBuffer(t *testing.T) {
	s := NewScreen(&bytes.Buffer{})
	assert.False(t, s.IsTerminal())
}

func TestCloseWithoutDevice(t *testing.T) {
	s := NewScreen(&bytes.Buffer{})
	assert.NoError(t, s.Close())
}

func TestOpenMissingDevice(t *testing.T) {
	_, err := Open("/dev/definitely-not-a-tty")
	require.Error(t, err)
}
