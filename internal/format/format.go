// Package format provides human-readable formatting helpers shared by the
// output modes.
package format

import "fmt"

// ByteSize formats a file size for display. Sizes below a kilobyte are shown
// in bytes, otherwise one decimal of the largest fitting binary unit.
func ByteSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Dimensions renders image dimensions as "WxH".
func Dimensions(w, h int) string {
	return fmt.Sprintf("%dx%d", w, h)
}
