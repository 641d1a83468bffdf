package engine

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/tartampluch/go-hijri/internal/config"
)

// ParseDateInput reads a date typed as "D - M - Y" (also "D M Y" or "D-M-Y")
// and validates it.
func ParseDateInput(raw string) (HijriDate, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return HijriDate{}, invalid(config.FieldDate, config.ReasonEmpty)
	}

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || string(r) == config.DateSeparator
	})
	if len(fields) != config.DateFieldCount {
		return HijriDate{}, invalid(config.FieldDate, config.ReasonDateFormat)
	}

	var parts [config.DateFieldCount]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return HijriDate{}, invalid(config.FieldDate, config.ReasonDateFormat)
		}
		parts[i] = n
	}

	d := HijriDate{Day: parts[0], Month: parts[1], Year: parts[2]}
	if err := d.Validate(); err != nil {
		return HijriDate{}, err
	}
	return d, nil
}
