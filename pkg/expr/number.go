package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lemonberrylabs/keypad-calculator/pkg/types"
)

// FractionDigits is the number of fractional digits every intermediate
// result is rounded to.
const FractionDigits = 12

// Round12 rounds v to FractionDigits fractional digits and re-parses it,
// dropping binary floating-point noise such as 0.30000000000000004.
func Round12(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', FractionDigits, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// FormatNumber renders v as the shortest plain decimal that round-trips.
// Exponent notation is never used and negative zero prints as "0", so the
// output is always accepted back by Tokenize.
func FormatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseLiteral converts a numeric token to its value; a trailing % divides
// by 100.
func parseLiteral(tok Token) (float64, error) {
	raw, percent := strings.CutSuffix(tok.Value, "%")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, types.NewInvalidExpressionError(
			fmt.Sprintf("invalid number %q at position %d", tok.Value, tok.Pos))
	}
	if percent {
		v /= 100
	}
	return v, nil
}
