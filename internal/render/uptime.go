package render

import (
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// uptimeSeconds is swappable in tests.
var uptimeSeconds = host.Uptime

// Uptime returns the host uptime formatted for the header. An OS that does
// not expose uptime renders as zero rather than a missing token.
func Uptime() string {
	secs, err := uptimeSeconds()
	if err != nil {
		secs = 0
	}
	return FormatUptime(secs)
}

// FormatUptime renders seconds as "up [Xd ][Xh ][Xm ]Xs", omitting
// zero-valued leading components. Seconds are always shown, so zero uptime
// renders as "up 0s".
func FormatUptime(secs uint64) string {
	d := secs / 86400
	h := secs % 86400 / 3600
	m := secs % 3600 / 60
	s := secs % 60

	var b strings.Builder
	b.WriteString("up ")
	if d > 0 {
		b.WriteString(strconv.FormatUint(d, 10))
		b.WriteString("d ")
	}
	if d > 0 || h > 0 {
		b.WriteString(strconv.FormatUint(h, 10))
		b.WriteString("h ")
	}
	if d > 0 || h > 0 || m > 0 {
		b.WriteString(strconv.FormatUint(m, 10))
		b.WriteString("m ")
	}
	b.WriteString(strconv.FormatUint(s, 10))
	b.WriteString("s")
	return b.String()
}
