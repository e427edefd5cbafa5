package domain

import (
	"strconv"
	"strings"
)

// IsLightColor reports whether a "#RRGGBB" (or "RRGGBB") color is light
// enough to need dark text on top of it. Anything that is not six hex
// digits is treated as dark.
func IsLightColor(hex string) bool {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return false
	}

	r, errR := strconv.ParseUint(hex[0:2], 16, 8)
	g, errG := strconv.ParseUint(hex[2:4], 16, 8)
	b, errB := strconv.ParseUint(hex[4:6], 16, 8)
	if errR != nil || errG != nil || errB != nil {
		return false
	}

	// perceived brightness (ITU-R BT.601 weights)
	luminance := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
	return luminance > 0.5
}

// ContrastTextColor picks the label text color for a category chip.
func ContrastTextColor(background string) string {
	if IsLightColor(background) {
		return "#111827"
	}
	return "#FFFFFF"
}
