package importer

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var pointDecimal = regexp.MustCompile(`^-?\d+\.\d{1,2}$`)

// ParseAmount parses an amount string into minor units. European formatting
// is assumed unless the value is a plain point-decimal such as "12.50".
// Format examples: "1.234,56" -> 123456, "588,74" -> 58874, "10" -> 1000.
func ParseAmount(s string) (int64, error) {
	clean := strings.ReplaceAll(s, " ", "")

	if !pointDecimal.MatchString(clean) {
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, err
	}

	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}
