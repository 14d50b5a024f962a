package dither

import (
	"fmt"
	"strings"
)

// Type selects the probability distribution of the dither noise.
type Type int

const (
	// None applies plain rounding.
	None Type = iota
	// Rectangular uses a uniform PDF of +/- amplitude LSB.
	Rectangular
	// Triangular uses a triangular PDF (TPDF).
	Triangular

	typeCount
)

var typeNames = [typeCount]string{"none", "rectangular", "triangular"}

// String returns the name of the dither type.
func (t Type) String() string {
	if t.Valid() {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Valid reports whether t is a known dither type.
func (t Type) Valid() bool {
	return t >= 0 && t < typeCount
}

// ParseType maps a name ("none", "rectangular", "triangular", "tpdf") to a
// Type. The match is case-insensitive.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return None, nil
	case "rectangular", "rpdf":
		return Rectangular, nil
	case "triangular", "tpdf":
		return Triangular, nil
	default:
		return None, fmt.Errorf("dither: unknown type %q", s)
	}
}
