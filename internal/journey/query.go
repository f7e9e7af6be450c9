package journey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// TimeIs says whether the query time is a departure or an arrival time.
type TimeIs string

const (
	TimeIsDeparting TimeIs = "departing"
	TimeIsArriving  TimeIs = "arriving"
)

// Preference is the journey planner's optimisation target.
type Preference string

const (
	PreferenceLeastInterchange Preference = "leastinterchange"
	PreferenceLeastTime        Preference = "leasttime"
	PreferenceLeastWalking     Preference = "leastwalking"
)

// DefaultModes is used when a query names no modes.
var DefaultModes = []string{
	"bus", "overground", "national-rail", "tube", "coach", "dlr",
	"cable-car", "tram", "river-bus", "walking", "cycle",
}

// Query holds the parameters of a single journey search. Location fields are
// opaque: coordinates as "lat,long", a postcode, a stop id or free text.
type Query struct {
	From                     string
	To                       string
	Via                      string
	NationalSearch           bool
	Date                     string // yyyyMMdd
	Time                     string // HHmm
	TimeIs                   TimeIs
	Preference               Preference
	Modes                    []string
	IncludeAlternativeRoutes bool
}

// Path builds the journey results request path and query string.
// Locations are interpolated verbatim and nothing is validated; the remote
// service diagnoses bad input.
func (q Query) Path() string {
	timeIs := q.TimeIs
	if timeIs == "" {
		timeIs = TimeIsDeparting
	}
	pref := q.Preference
	if pref == "" {
		pref = PreferenceLeastInterchange
	}
	modes := q.Modes
	if len(modes) == 0 {
		modes = DefaultModes
	}

	var b strings.Builder
	b.WriteString("/Journey/JourneyResults/")
	b.WriteString(q.From)
	b.WriteString("/to/")
	b.WriteString(q.To)

	b.WriteString("?nationalSearch=")
	b.WriteString(strconv.FormatBool(q.NationalSearch))
	b.WriteString("&timeIs=")
	b.WriteString(string(timeIs))
	b.WriteString("&journeyPreference=")
	b.WriteString(string(pref))
	b.WriteString("&mode=")
	b.WriteString(strings.Join(modes, ","))
	b.WriteString("&includeAlternativeRoutes=")
	b.WriteString(strconv.FormatBool(q.IncludeAlternativeRoutes))

	for _, p := range []struct{ key, value string }{
		{"via", q.Via},
		{"date", q.Date},
		{"time", q.Time},
	} {
		if p.value == "" {
			continue
		}
		b.WriteString("&")
		b.WriteString(p.key)
		b.WriteString("=")
		b.WriteString(p.value)
	}

	return b.String()
}

// Validate reports problems the remote service would reject. Path never
// calls it; hosts decide whether to warn or refuse.
func (q Query) Validate() error {
	var errs []error

	if strings.TrimSpace(q.From) == "" {
		errs = append(errs, errors.New("from location is required"))
	}
	if strings.TrimSpace(q.To) == "" {
		errs = append(errs, errors.New("to location is required"))
	}
	if q.Date != "" && !isDigits(q.Date, 8) {
		errs = append(errs, fmt.Errorf("date %q must be in yyyyMMdd format", q.Date))
	}
	if q.Time != "" && !isDigits(q.Time, 4) {
		errs = append(errs, fmt.Errorf("time %q must be in HHmm format", q.Time))
	}
	switch q.TimeIs {
	case "", TimeIsDeparting, TimeIsArriving:
	default:
		errs = append(errs, fmt.Errorf("timeIs %q must be departing or arriving", q.TimeIs))
	}
	switch q.Preference {
	case "", PreferenceLeastInterchange, PreferenceLeastTime, PreferenceLeastWalking:
	default:
		errs = append(errs, fmt.Errorf("journeyPreference %q must be leastinterchange, leasttime or leastwalking", q.Preference))
	}

	return errors.Join(errs...)
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
