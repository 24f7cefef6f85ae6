package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// lineWidth is the width of every rule and table row.
const lineWidth = 78

// formatFixed formats with prec decimals, or "nan"/"inf" for non-finite values
func formatFixed(v float64, prec int) string {
	if s, ok := nonFinite(v); ok {
		return s
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// formatSig formats with prec significant digits
func formatSig(v float64, prec int) string {
	if s, ok := nonFinite(v); ok {
		return s
	}
	return strconv.FormatFloat(v, 'g', prec, 64)
}

// formatCoef uses fixed notation for magnitudes in [1e-4, 1e4) and zero,
// scientific notation otherwise.
func formatCoef(v float64, prec int) string {
	if s, ok := nonFinite(v); ok {
		return s
	}
	a := math.Abs(v)
	if a == 0 || (a >= 1e-4 && a < 1e4) {
		return strconv.FormatFloat(v, 'f', prec, 64)
	}
	return strconv.FormatFloat(v, 'e', prec, 64)
}

func nonFinite(v float64) (string, bool) {
	switch {
	case math.IsNaN(v):
		return "nan", true
	case math.IsInf(v, 1):
		return "inf", true
	case math.IsInf(v, -1):
		return "-inf", true
	}
	return "", false
}

func rule(ch string) string {
	return strings.Repeat(ch, lineWidth)
}

// center pads s to lineWidth with s in the middle
func center(s string) string {
	if len(s) >= lineWidth {
		return s
	}
	left := (lineWidth - len(s)) / 2
	return strings.Repeat(" ", left) + s
}

// field is one label/value cell of a two column block
type field struct {
	label string
	value string
}

// pairLine lays out two fields side by side, each half of lineWidth with
// the label left aligned and the value right aligned.
func pairLine(left, right field) string {
	half := (lineWidth - 2) / 2
	return strings.TrimRight(cell(left, half)+"  "+cell(right, half), " ")
}

func cell(f field, width int) string {
	if f.label == "" && f.value == "" {
		return strings.Repeat(" ", width)
	}
	label := f.label + ":"
	pad := width - len(label)
	if pad < len(f.value)+1 {
		pad = len(f.value) + 1
	}
	return label + fmt.Sprintf("%*s", pad, f.value)
}

// pairBlock zips two field columns, padding the shorter one
func pairBlock(left, right []field) []string {
	n := len(left)
	if len(right) > n {
		n = len(right)
	}
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		var l, r field
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		lines = append(lines, pairLine(l, r))
	}
	return lines
}
