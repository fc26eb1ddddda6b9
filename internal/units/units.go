package units

import (
	"fmt"
	"strings"
)

// Qualifier marks a magnitude as a bound rather than an exact value.
type Qualifier string

const (
	Exact       Qualifier = ""
	GreaterThan Qualifier = ">"
	LessThan    Qualifier = "<"
)

// prefix returns the English prefix used when rendering a qualified value.
func (q Qualifier) prefix() string {
	switch q {
	case GreaterThan:
		return "greater than "
	case LessThan:
		return "less than "
	default:
		return ""
	}
}

// UnitsError reports a unit code that is not legal for a quantity.
type UnitsError struct {
	Quantity string
	Unit     string
}

func (e *UnitsError) Error() string {
	return fmt.Sprintf("unrecognized %s unit: %q", e.Quantity, e.Unit)
}

// lookupUnit normalizes code against the legal units of a quantity.
// An empty code resolves to native.
func lookupUnit[U ~string](quantity string, code, native U, legal map[U]float64) (U, error) {
	if code == "" {
		return native, nil
	}
	u := U(strings.ToUpper(strings.TrimSpace(string(code))))
	if _, ok := legal[u]; !ok {
		return "", &UnitsError{Quantity: quantity, Unit: string(code)}
	}
	return u, nil
}

// convert scales v between two units that are both defined as multiples of a
// common base unit.
func convert[U comparable](v float64, from, to U, toBase map[U]float64) float64 {
	if from == to {
		return v
	}
	return v * toBase[from] / toBase[to]
}

// splitQualifier strips a leading P (greater than) or M (less than) marker.
func splitQualifier(s string) (string, Qualifier) {
	switch {
	case strings.HasPrefix(s, "P"):
		return s[1:], GreaterThan
	case strings.HasPrefix(s, "M"):
		return s[1:], LessThan
	default:
		return s, Exact
	}
}
