package theme

import (
	"fmt"
	"regexp"
	"strconv"
)

var hexPattern = regexp.MustCompile(`(?i)^#?([a-f\d]{2})([a-f\d]{2})([a-f\d]{2})$`)

// HexToRGBTriplet converts a 6-digit hex color into "R, G, B".
// Anything else yields "0, 0, 0".
func HexToRGBTriplet(hex string) string {
	m := hexPattern.FindStringSubmatch(hex)
	if m == nil {
		return "0, 0, 0"
	}

	var rgb [3]uint64
	for i := range rgb {
		// the pattern guarantees two hex digits
		rgb[i], _ = strconv.ParseUint(m[i+1], 16, 8)
	}

	return fmt.Sprintf("%d, %d, %d", rgb[0], rgb[1], rgb[2])
}
