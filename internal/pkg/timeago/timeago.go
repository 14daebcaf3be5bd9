// Package timeago renders coarse relative ages such as "3 minutes ago".
package timeago

import (
	"fmt"
	"time"
)

// Since formats the time elapsed from then to now. Ages of one minute or
// more are reported in whole minutes, shorter ages in whole seconds.
// Negative ages (clock skew) are reported as zero seconds.
func Since(then, now time.Time) string {
	d := now.Sub(then)
	if d < 0 {
		d = 0
	}
	if m := int(d / time.Minute); m > 0 {
		return plural(m, "minute")
	}
	return plural(int(d/time.Second), "second")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
