package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPad(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		align string
		want  string
	}{
		{"left default", "ab", 5, "", "ab   "},
		{"left explicit", "ab", 5, "left", "ab   "},
		{"right", "ab", 5, "right", "   ab"},
		{"center even", "ab", 6, "center", "  ab  "},
		{"center odd gap favors right padding", "ab", 5, "center", " ab  "},
		{"zero width passthrough", "ab", 0, "right", "ab"},
		{"exact width untouched", "abcde", 5, "right", "abcde"},
		{"overlong not truncated", "abcdef", 5, "left", "abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pad(tt.text, tt.width, tt.align))
		})
	}
}

func TestPadIgnoresControlSequences(t *testing.T) {
	// Three visible characters wrapped in a color pair, padded right to six:
	// exactly three leading spaces, sequences excluded from the width.
	styled := "\x1b[32mrun\x1b[0m"
	assert.Equal(t, "   "+styled, Pad(styled, 6, "right"))

	assert.Equal(t, styled+"   ", Pad(styled, 6, "left"))
	assert.Equal(t, " "+styled+"  ", Pad(styled, 6, "center"))
}
