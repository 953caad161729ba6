package athle

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

var annotationRegex = regexp.MustCompile(`\s*\([^)]*\)`)
var metricRegex = regexp.MustCompile(`^(\d+)m(\d+)`)
var numberRegex = regexp.MustCompile(`\d+\.?\d*`)

// ParsePerformance splits a raw performance cell into its canonical
// display form and a numeric value usable for comparison.
//
//	"58m14 (RP)" -> ("58m14", 58.14)
//	"49m29"      -> ("49m29", 49.29)
//
// Strings without any numeric token come back with value 0; this never
// fails, a malformed performance is logged and kept as display text.
func ParsePerformance(raw string) (string, float64) {
	clean := strings.TrimSpace(annotationRegex.ReplaceAllString(raw, ""))

	if groups := metricRegex.FindStringSubmatch(clean); groups != nil {
		meters, _ := strconv.Atoi(groups[1])
		centimeters, _ := strconv.Atoi(groups[2])
		return clean, float64(meters) + float64(centimeters)/100
	}

	if number := numberRegex.FindString(clean); number != "" {
		value, err := strconv.ParseFloat(number, 64)
		if err == nil {
			return clean, value
		}
	}

	slog.Warn("could not parse performance", "raw", raw)
	return clean, 0
}
