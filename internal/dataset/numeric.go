package dataset

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var missingTokens = []string{"", "NA", "NaN", "nan", "N/A", "n/a", "null", "NULL", "<nil>"}

func isMissingText(s string) bool {
	s = strings.TrimSpace(s)
	for _, tok := range missingTokens {
		if s == tok {
			return true
		}
	}
	return false
}

// parseNumeric accepts plain and locale-formatted numbers ("1.234,5",
// "1,234.5", "1 234") and a trailing minutes unit ("45 min") or percent sign.
func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), "\u00A0", " ")
	raw = minutesSuffix.ReplaceAllString(raw, "")
	raw = strings.TrimSpace(strings.TrimSuffix(raw, "%"))
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

var minutesSuffix = regexp.MustCompile(`(?i)\s*(m|min|mins|minutes)\.?$`)

var headerUnitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(.*?)\s*\(([^)]+)\)\s*$`),  // Planned_Time (min)
	regexp.MustCompile(`^(.*?)\s*\[([^\]]+)\]\s*$`), // Planned_Time [min]
}

// headerKey normalizes a column name for lookup: trimmed, unit suffix
// removed, lower-cased, with spaces and dashes folded to underscores.
func headerKey(name string) string {
	s := strings.TrimSpace(name)
	for _, re := range headerUnitPatterns {
		if m := re.FindStringSubmatch(s); len(m) >= 3 && strings.TrimSpace(m[1]) != "" {
			s = strings.TrimSpace(m[1])
			break
		}
	}
	s = strings.ToLower(s)
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return s
}
