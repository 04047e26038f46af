package colorimetry

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/stripscan/internal/imaging"
	"github.com/ironsheep/stripscan/internal/water"
)

//go:embed calibration.yaml
var embeddedTable []byte

// Anchor is one reference color of a calibration curve.
type Anchor struct {
	RGB   imaging.RGBColor `json:"rgb" yaml:"rgb" msgpack:"rgb"`
	Value float64          `json:"value" yaml:"value" msgpack:"value"`
	Label string           `json:"label" yaml:"label" msgpack:"label"`
}

// Curve maps reference colors to readings for a single parameter.
// A Curve is immutable once built.
type Curve struct {
	parameter water.Parameter
	unit      string
	anchors   []Anchor
	labs      []imaging.LabColor
}

// Parameter returns the parameter the curve calibrates.
func (c *Curve) Parameter() water.Parameter { return c.parameter }

// Unit returns the unit of the curve's values.
func (c *Curve) Unit() string { return c.unit }

// Anchors returns a copy of the anchors in ascending value order.
func (c *Curve) Anchors() []Anchor {
	return append([]Anchor(nil), c.anchors...)
}

// Range returns the lowest and highest anchor values.
func (c *Curve) Range() (lo, hi float64) {
	return c.anchors[0].Value, c.anchors[len(c.anchors)-1].Value
}

// ColorFor returns the color a pad shows for value v by linear RGB
// interpolation between the two anchors that bracket it. Values outside the
// curve clamp to the end anchors.
func (c *Curve) ColorFor(v float64) imaging.RGBColor {
	first, last := c.anchors[0], c.anchors[len(c.anchors)-1]
	if v <= first.Value {
		return first.RGB
	}
	if v >= last.Value {
		return last.RGB
	}
	for i := 1; i < len(c.anchors); i++ {
		hi := c.anchors[i]
		if v > hi.Value {
			continue
		}
		lo := c.anchors[i-1]
		span := hi.Value - lo.Value
		if span <= 0 {
			return hi.RGB
		}
		return imaging.Lerp(lo.RGB, hi.RGB, (v-lo.Value)/span)
	}
	return last.RGB
}

// Calibration is a complete set of curves, one per strip parameter.
type Calibration struct {
	curves map[water.Parameter]*Curve
}

// Curve returns the curve for p.
func (c *Calibration) Curve(p water.Parameter) (*Curve, bool) {
	curve, ok := c.curves[p]
	return curve, ok
}

// Table is the serialized form of a Calibration.
type Table struct {
	Curves map[water.Parameter]TableCurve `json:"curves" yaml:"curves" msgpack:"curves"`
}

// TableCurve is the serialized form of a Curve.
type TableCurve struct {
	Unit    string   `json:"unit" yaml:"unit" msgpack:"unit"`
	Anchors []Anchor `json:"anchors" yaml:"anchors" msgpack:"anchors"`
}

// Table returns the calibration in serializable form.
func (c *Calibration) Table() Table {
	t := Table{Curves: make(map[water.Parameter]TableCurve, len(c.curves))}
	for p, curve := range c.curves {
		t.Curves[p] = TableCurve{Unit: curve.unit, Anchors: curve.Anchors()}
	}
	return t
}

var (
	defaultOnce sync.Once
	defaultCal  *Calibration
	defaultErr  error
)

// Default returns the built-in calibration. It is parsed once and shared.
func Default() (*Calibration, error) {
	defaultOnce.Do(func() {
		defaultCal, defaultErr = Parse(embeddedTable)
	})
	return defaultCal, defaultErr
}

// LoadFile reads a calibration table from a YAML file.
func LoadFile(path string) (*Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read calibration file: %w", err)
	}
	cal, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("calibration file %s: %w", path, err)
	}
	return cal, nil
}

// Parse decodes and validates a YAML calibration table.
//
// Every strip parameter needs a curve with at least two labelled anchors.
// Anchors are sorted by value; duplicate values are rejected.
func Parse(data []byte) (*Calibration, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse calibration table: %w", err)
	}
	return FromTable(t)
}

// FromTable validates t and builds a Calibration from it.
func FromTable(t Table) (*Calibration, error) {
	cal := &Calibration{curves: make(map[water.Parameter]*Curve, len(t.Curves))}

	for p, tc := range t.Curves {
		if !p.Valid() {
			return nil, fmt.Errorf("unknown parameter %q in calibration table", p)
		}
		curve, err := newCurve(p, tc)
		if err != nil {
			return nil, err
		}
		cal.curves[p] = curve
	}
	for _, p := range water.Parameters() {
		if _, ok := cal.curves[p]; !ok {
			return nil, fmt.Errorf("calibration table has no curve for %s", p)
		}
	}
	return cal, nil
}

func newCurve(p water.Parameter, tc TableCurve) (*Curve, error) {
	if len(tc.Anchors) < 2 {
		return nil, fmt.Errorf("curve %s needs at least 2 anchors, has %d", p, len(tc.Anchors))
	}

	anchors := append([]Anchor(nil), tc.Anchors...)
	sort.SliceStable(anchors, func(i, j int) bool { return anchors[i].Value < anchors[j].Value })

	labs := make([]imaging.LabColor, len(anchors))
	for i, a := range anchors {
		if a.Label == "" {
			return nil, fmt.Errorf("curve %s: anchor %d has no label", p, i)
		}
		if i > 0 && a.Value == anchors[i-1].Value {
			return nil, fmt.Errorf("curve %s: duplicate anchor value %v", p, a.Value)
		}
		labs[i] = a.RGB.Lab()
	}

	unit := tc.Unit
	if unit == "" {
		unit = p.Unit()
	}
	return &Curve{parameter: p, unit: unit, anchors: anchors, labs: labs}, nil
}
