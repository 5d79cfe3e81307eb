package domain

import (
	"encoding/json"
	"strings"
)

// Label is a normalized outcome: fire, not fire, or missing.
type Label int8

const (
	LabelMissing Label = -1
	LabelNotFire Label = 0
	LabelFire    Label = 1
)

var labelTokens = map[string]Label{
	"fire":    LabelFire,
	"notfire": LabelNotFire,
}

// CleanLabelToken lower-cases s and removes every space character.
func CleanLabelToken(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), " ", "")
}

// NormalizeLabel maps a raw outcome value to a Label. Tokens other than
// "fire" and "notfire" (after cleaning) yield LabelMissing.
func NormalizeLabel(raw string) Label {
	if l, ok := labelTokens[CleanLabelToken(raw)]; ok {
		return l
	}
	return LabelMissing
}

func (l Label) String() string {
	switch l {
	case LabelFire:
		return "fire"
	case LabelNotFire:
		return "not fire"
	default:
		return "missing"
	}
}

// MarshalJSON encodes missing labels as null.
func (l Label) MarshalJSON() ([]byte, error) {
	if l == LabelMissing {
		return []byte("null"), nil
	}
	return json.Marshal(int(l))
}

func (l Label) value(token string) Value {
	if l == LabelMissing {
		return Value{Text: token, Missing: true}
	}
	return Value{Text: token, Number: float64(l)}
}

func labelFromValue(v Value) Label {
	if v.Missing {
		return LabelMissing
	}
	return Label(v.Number)
}
