package domain

import (
	"strconv"
	"strings"
)

// missingTokens are cell values treated as absent before numeric parsing.
var missingTokens = map[string]bool{
	"":     true,
	"na":   true,
	"nan":  true,
	"null": true,
}

func isMissingToken(s string) bool {
	return missingTokens[strings.ToLower(strings.TrimSpace(s))]
}

// CoerceNumeric attempts to convert col to numeric in place. The column is
// converted only if every non-missing cell parses as a float; otherwise it is
// left untouched and the first offending cell is reported.
func CoerceNumeric(col *Column) Coercion {
	decision := Coercion{Column: col.Name}
	parsed := make([]Value, len(col.Values))
	for i, v := range col.Values {
		if isMissingToken(v.Text) {
			parsed[i] = Value{Text: v.Text, Missing: true}
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
		if err != nil {
			decision.Row = i
			decision.Value = v.Text
			return decision
		}
		parsed[i] = Value{Text: v.Text, Number: f}
	}
	col.Kind = KindNumeric
	col.Values = parsed
	decision.Numeric = true
	return decision
}
