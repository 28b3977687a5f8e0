package report

import "fmt"

// FormatBytes renders a byte count in the largest unit that keeps the
// value above one. Plain bytes print as an integer, larger units with two
// decimals.
func FormatBytes(n int64) string {
	const unit = 1024.0

	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}

	size := float64(n)
	units := []string{"KB", "MB", "GB", "TB"}
	for i, suffix := range units {
		size /= unit
		if size < unit || i == len(units)-1 {
			return fmt.Sprintf("%.2f %s", size, suffix)
		}
	}
	return ""
}
