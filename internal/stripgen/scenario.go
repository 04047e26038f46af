package stripgen

import (
	"sort"

	"github.com/ironsheep/stripscan/internal/water"
)

// Scenario is a named set of known readings.
type Scenario struct {
	Name        string                      `json:"name" yaml:"name"`
	Description string                      `json:"description" yaml:"description"`
	Values      map[water.Parameter]float64 `json:"values" yaml:"values"`
}

var scenarios = []Scenario{
	{
		Name:        "excellent",
		Description: "Excellent quality drinking water",
		Values: map[water.Parameter]float64{
			water.PH: 7.2, water.Chlorine: 1, water.Nitrates: 0,
			water.Hardness: 75, water.Alkalinity: 120, water.Bacteria: 0,
		},
	},
	{
		Name:        "good",
		Description: "Good quality water with minor issues",
		Values: map[water.Parameter]float64{
			water.PH: 7.5, water.Chlorine: 2, water.Nitrates: 5,
			water.Hardness: 150, water.Alkalinity: 180, water.Bacteria: 0,
		},
	},
	{
		Name:        "poor",
		Description: "Poor quality water needing treatment",
		Values: map[water.Parameter]float64{
			water.PH: 6, water.Chlorine: 0, water.Nitrates: 50,
			water.Hardness: 300, water.Alkalinity: 40, water.Bacteria: 0,
		},
	},
	{
		Name:        "contaminated",
		Description: "Contaminated water - unsafe for consumption",
		Values: map[water.Parameter]float64{
			water.PH: 5.5, water.Chlorine: 0, water.Nitrates: 100,
			water.Hardness: 300, water.Alkalinity: 20, water.Bacteria: 1,
		},
	},
	// Every value sits on an anchor, so a clean image reads back exactly.
	{
		Name:        "reference",
		Description: "Every pad on a calibration anchor",
		Values: map[water.Parameter]float64{
			water.PH: 8.5, water.Chlorine: 3, water.Nitrates: 50,
			water.Hardness: 100, water.Alkalinity: 240, water.Bacteria: 0.3,
		},
	},
}

// Scenarios returns the built-in scenarios.
func Scenarios() []Scenario {
	out := make([]Scenario, len(scenarios))
	for i, s := range scenarios {
		out[i] = s.clone()
	}
	return out
}

// ScenarioNames returns the names of the built-in scenarios, sorted.
func ScenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for _, s := range scenarios {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// ScenarioByName looks up a built-in scenario.
func ScenarioByName(name string) (Scenario, bool) {
	for _, s := range scenarios {
		if s.Name == name {
			return s.clone(), true
		}
	}
	return Scenario{}, false
}

func (s Scenario) clone() Scenario {
	values := make(map[water.Parameter]float64, len(s.Values))
	for p, v := range s.Values {
		values[p] = v
	}
	s.Values = values
	return s
}
