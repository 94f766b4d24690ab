// Package render turns resolved values into the header line and table body
// text the scheduler writes to the device. It never touches the backend or
// the device itself.
package render

import (
	"fmt"
	"strconv"
	"strings"
)

// byteUnits are the -b format's unit ladder.
var byteUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// Format renders a numeric value according to a format kind. The named kinds
// are percent, number, temp_c, kb, mb, and -b; anything else containing a
// printf verb is treated as a legacy printf pattern. known=false always yields
// the missing placeholder, whatever the kind.
func Format(value float64, known bool, kind string, decimals int, missing string) string {
	if !known {
		return missing
	}
	if decimals < 0 {
		decimals = 0
	}
	switch kind {
	case "percent":
		return strconv.FormatFloat(value, 'f', decimals, 64) + "%"
	case "number":
		return strconv.FormatFloat(value, 'f', decimals, 64)
	case "temp_c":
		return strconv.FormatFloat(value, 'f', 0, 64) + "°C"
	case "kb":
		return strconv.FormatFloat(value/1000.0, 'f', decimals, 64) + " KB"
	case "mb":
		return strconv.FormatFloat(value/1e6, 'f', decimals, 64) + " MB"
	case "-b":
		return formatBytes(value, decimals)
	default:
		return formatLegacy(value, kind, decimals)
	}
}

// formatBytes scales a byte count through the unit ladder. Each step
// truncates to an integer before shifting, so 1,500,000 bytes renders as
// "1.0 MB" rather than "1.4 MB". That truncation is load-bearing: existing
// dashboards show the same figures across restarts.
func formatBytes(value float64, decimals int) string {
	size := value
	unit := 0
	for size >= 1024 && unit < len(byteUnits)-1 {
		size = float64(int64(size) >> 10)
		unit++
	}
	return strconv.FormatFloat(size, 'f', decimals, 64) + " " + byteUnits[unit]
}

// formatLegacy applies an arbitrary printf pattern. A pattern that does not
// fit a float operand (fmt flags the output with "%!") falls back to a plain
// number so a config typo degrades visibly but harmlessly.
func formatLegacy(value float64, pattern string, decimals int) string {
	if strings.Contains(pattern, "%") {
		out := fmt.Sprintf(pattern, value)
		if !strings.Contains(out, "%!") {
			return out
		}
	}
	return strconv.FormatFloat(value, 'f', decimals, 64)
}
