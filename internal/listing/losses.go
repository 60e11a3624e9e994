package listing

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	million = decimal.New(1, 6)
	billion = decimal.New(1, 9)
)

// unknownLosses are display strings that mean "no figure".
var unknownLosses = map[string]bool{
	"":         true,
	"Unknown":  true,
	"$Unknown": true,
	"$Ongoing": true,
}

// ParseLosses turns a free-text loss string such as "$4.2 million" into a
// number for sorting. It is a best-effort display heuristic, not a monetary
// type: every character other than digits and '.' is dropped, the leading
// numeric prefix of what remains is parsed (0 when there is none), and the
// result is scaled by 1e9 when the text mentions "billion" or by 1e6 when it
// mentions "million".
func ParseLosses(s string) float64 {
	if unknownLosses[s] {
		return 0
	}

	var clean strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			clean.WriteRune(r)
		}
	}

	n, err := decimal.NewFromString(numericPrefix(clean.String()))
	if err != nil {
		return 0
	}

	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "billion"):
		n = n.Mul(billion)
	case strings.Contains(lower, "million"):
		n = n.Mul(million)
	}
	return n.InexactFloat64()
}

// numericPrefix returns the longest prefix of s of the form digits[.digits].
// "1.2.3" yields "1.2"; ".5" yields ".5".
func numericPrefix(s string) string {
	seenDot := false
	for i, r := range s {
		if r == '.' {
			if seenDot {
				return s[:i]
			}
			seenDot = true
		}
	}
	return s
}
