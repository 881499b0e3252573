package catalog

// convert.go turns raw CSV cells into decimals.
//
// Price lists come out of spreadsheets, so numeric cells may carry an Excel
// formula prefix (="12.50"), stray quotes or a currency sign. Those artifacts
// are stripped; anything else that is not a plain decimal or scientific
// number is rejected. Decimal commas are not accepted: the comma is the
// field separator.

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// maxScale bounds both the exponent and the digit count of a parsed cell.
// Division by a value outside it would build a result with that many digits.
const maxScale = 30

// currencySigns are removed from numeric cells before validation.
var currencySigns = strings.NewReplacer("₽", "", "$", "", "€", "", "руб.", "", "руб", "")

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.TrimSpace(strings.Trim(s, `"'`))
}

// ParseDecimal converts a numeric cell to a decimal.
// Plain decimals are scanned through pgtype.Numeric so the accepted syntax
// matches the PostgreSQL numeric input format. pgtype.Numeric does not scan
// scientific notation, so exponents go through decimal directly.
func ParseDecimal(s string) (decimal.Decimal, error) {
	raw := s
	s = strings.TrimSpace(currencySigns.Replace(CleanCell(s)))
	if s == "" || !numericRegex.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}

	var d decimal.Decimal
	if strings.ContainsAny(s, "eE") {
		var err error
		if d, err = decimal.NewFromString(s); err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
		}
	} else {
		var n pgtype.Numeric
		if err := n.Scan(s); err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
		}
		if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
		}
		d = decimal.NewFromBigInt(n.Int, n.Exp)
	}

	if !inScale(d) {
		return decimal.Zero, fmt.Errorf("%w: %q out of range", ErrInvalidNumber, raw)
	}
	return d, nil
}

// inScale reports whether d has at most maxScale digits and an exponent
// within ±maxScale.
func inScale(d decimal.Decimal) bool {
	if d.IsZero() {
		return true
	}
	exp := d.Exponent()
	return exp >= -maxScale && exp <= maxScale && d.NumDigits() <= maxScale
}

// PricePerKg returns price / weight rounded half away from zero to 2 places.
// The caller guarantees weight > 0.
func PricePerKg(price, weight decimal.Decimal) decimal.Decimal {
	return price.DivRound(weight, 2)
}
