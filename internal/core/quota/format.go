package quota

import (
	"fmt"
	"time"
)

// FormatDuration renders d as "H hours and M minutes", or "M minutes" below one hour
func FormatDuration(d time.Duration) string {
	ms := max(d.Milliseconds(), 0)
	hours := ms / 3_600_000
	minutes := (ms % 3_600_000) / 60_000
	if hours > 0 {
		return fmt.Sprintf("%d %s and %d %s", hours, plural(hours, "hour"), minutes, plural(minutes, "minute"))
	}
	return fmt.Sprintf("%d %s", minutes, plural(minutes, "minute"))
}

func plural(n int64, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
