package dataload

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// groupedNumber is a decimal with comma thousands grouping, e.g. 1,234.5
var groupedNumber = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)

// ParseNumeric coerces a cell to a number. The second result is false for
// anything that is not a finite decimal: blanks, text, NaN and Inf spellings.
// Commas are accepted only as well-formed thousands grouping; "1,5" is not a number.
func ParseNumeric(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") {
		if !groupedNumber.MatchString(s) {
			return 0, false
		}
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	v := d.InexactFloat64()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
