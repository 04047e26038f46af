package water

import (
	"fmt"
	"strings"
)

// Parameter identifies one pad of the strip.
type Parameter string

const (
	PH         Parameter = "ph"
	Chlorine   Parameter = "chlorine"
	Nitrates   Parameter = "nitrates"
	Hardness   Parameter = "hardness"
	Alkalinity Parameter = "alkalinity"
	Bacteria   Parameter = "bacteria"
)

// canonical is the pad order on the strip, left to right then top to bottom.
var canonical = []Parameter{PH, Chlorine, Nitrates, Hardness, Alkalinity, Bacteria}

// Parameters returns the six parameters in pad order.
func Parameters() []Parameter {
	return append([]Parameter(nil), canonical...)
}

// Index returns the pad position of p, or -1 if p is unknown.
func (p Parameter) Index() int {
	for i, c := range canonical {
		if c == p {
			return i
		}
	}
	return -1
}

// Valid reports whether p is one of the six strip parameters.
func (p Parameter) Valid() bool {
	return p.Index() >= 0
}

// Unit returns the unit readings of p are expressed in.
func (p Parameter) Unit() string {
	switch p {
	case PH:
		return "pH"
	case Chlorine, Nitrates, Hardness, Alkalinity:
		return "ppm"
	case Bacteria:
		return "presence"
	}
	return ""
}

// DisplayName returns a human readable name.
func (p Parameter) DisplayName() string {
	switch p {
	case PH:
		return "pH"
	case Chlorine:
		return "Free Chlorine"
	case Nitrates:
		return "Nitrates"
	case Hardness:
		return "Total Hardness"
	case Alkalinity:
		return "Total Alkalinity"
	case Bacteria:
		return "Bacteria"
	}
	return string(p)
}

// ParseParameter accepts the canonical key in any case.
func ParseParameter(s string) (Parameter, error) {
	p := Parameter(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown parameter %q", s)
	}
	return p, nil
}
