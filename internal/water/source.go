package water

import "strings"

// Source is where the water sample was taken.
type Source string

const (
	Tap          Source = "Tap Water"
	Well         Source = "Well Water"
	LakePond     Source = "Lake/Pond"
	RiverStream  Source = "River/Stream"
	SwimmingPool Source = "Swimming Pool"
	Bottled      Source = "Bottled Water"
	Other        Source = "Other"
)

var sources = []Source{Tap, Well, LakePond, RiverStream, SwimmingPool, Bottled, Other}

// slugs maps short CLI/HTTP names to sources.
var slugs = map[string]Source{
	"tap":      Tap,
	"well":     Well,
	"lake":     LakePond,
	"pond":     LakePond,
	"river":    RiverStream,
	"stream":   RiverStream,
	"pool":     SwimmingPool,
	"swimming": SwimmingPool,
	"bottled":  Bottled,
	"other":    Other,

	// Accepted sources without a baseline of their own.
	"hot tub/spa": Other,
	"hot tub":     Other,
	"spa":         Other,
	"rainwater":   Other,
	"rain":        Other,
}

// Sources returns every recognized source, Other last.
func Sources() []Source {
	return append([]Source(nil), sources...)
}

// ParseSource resolves a display name ("Lake/Pond") or slug ("lake").
//
// Unrecognized or empty input resolves to Other with ok=false so callers can
// warn and continue.
func ParseSource(s string) (src Source, ok bool) {
	trimmed := strings.TrimSpace(s)
	for _, c := range sources {
		if strings.EqualFold(trimmed, string(c)) {
			return c, true
		}
	}
	if c, found := slugs[strings.ToLower(trimmed)]; found {
		return c, true
	}
	return Other, false
}

// Declared reports whether the source is a specific one rather than Other.
func (s Source) Declared() bool {
	_, ok := baselines[s]
	return ok
}

// baselines are typical readings per source, in canonical parameter order.
var baselines = map[Source][6]float64{
	Tap:          {7.2, 1.5, 5, 120, 100, 0},
	Well:         {6.8, 0, 15, 180, 80, 0},
	LakePond:     {7.5, 0, 8, 90, 70, 0.1},
	RiverStream:  {7.0, 0, 12, 100, 85, 0.2},
	SwimmingPool: {7.4, 2.5, 2, 110, 120, 0},
	Bottled:      {7.0, 0, 1, 60, 50, 0},
}

// Baseline returns the typical reading of p for source s. Sources without
// their own table (Other) use the tap water values.
func Baseline(s Source, p Parameter) float64 {
	i := p.Index()
	if i < 0 {
		return 0
	}
	table, ok := baselines[s]
	if !ok {
		table = baselines[Tap]
	}
	return table[i]
}
