package journey

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse means a success body broke the service contract:
// it did not parse, had no journeys array, or lacked a required leg field.
var ErrMalformedResponse = errors.New("malformed journey planner response")

// Role identifies which location parameter a disambiguation list belongs to.
type Role int

const (
	RoleFrom Role = iota
	RoleTo
	RoleVia
)

// Roles lists every role in rendering order.
var Roles = []Role{RoleFrom, RoleTo, RoleVia}

func (r Role) String() string {
	switch r {
	case RoleFrom:
		return "From"
	case RoleTo:
		return "To"
	case RoleVia:
		return "Via"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

func (r Role) documentKey() string {
	switch r {
	case RoleFrom:
		return "fromLocationDisambiguation"
	case RoleTo:
		return "toLocationDisambiguation"
	case RoleVia:
		return "viaLocationDisambiguation"
	default:
		return ""
	}
}

// DisambiguationOption is one candidate place for an ambiguous location.
// ParameterValue is the literal string to resubmit for that role.
type DisambiguationOption struct {
	Ordinal        int
	DisplayName    string
	ParameterValue string
}

// DisambiguationSet maps each flagged role to its non-empty candidate list.
type DisambiguationSet map[Role][]DisambiguationOption

// JourneyOption is one ranked itinerary returned by the service.
type JourneyOption struct {
	Legs []Leg
	Fare *FareBreakdown
}

// Leg is one continuous segment of a journey.
type Leg struct {
	InstructionSummary string
	DurationMinutes    int64
	DepartureTime      string
	ArrivalTime        string
	CallingPoints      []CallingPoint
	Disruptions        []Disruption
	PlannedWorks       []PlannedWork
}

type CallingPoint struct {
	DisplayName string
	ID          string
}

type Disruption struct {
	Description string
	ClosureText string
}

type PlannedWork struct {
	Description string
}

// FareBreakdown holds amounts in minor units (pence).
type FareBreakdown struct {
	TotalCost    int64
	HasTotalCost bool
	Fares        []FareLine
	Caveats      []FareCaveat
}

type FareLine struct {
	Type string
	Cost int64
}

type FareCaveat struct {
	Text string
	Type string
}

func extractDisambiguation(doc Node) DisambiguationSet {
	set := make(DisambiguationSet)
	for _, role := range Roles {
		var opts []DisambiguationOption
		for _, item := range doc.Path(role.documentKey(), "disambiguationOptions").Items() {
			param, ok := item.Get("parameterValue").String()
			if !ok {
				continue
			}
			place := item.Get("place")
			opts = append(opts, DisambiguationOption{
				Ordinal:        len(opts) + 1,
				DisplayName:    place.First("commonName", "name").StringOr("Unknown"),
				ParameterValue: param,
			})
		}
		if len(opts) > 0 {
			set[role] = opts
		}
	}
	return set
}

func extractJourneys(items []Node) ([]JourneyOption, error) {
	journeys := make([]JourneyOption, 0, len(items))
	for i, item := range items {
		j, err := extractJourney(item)
		if err != nil {
			return nil, fmt.Errorf("journey %d: %w", i+1, err)
		}
		journeys = append(journeys, j)
	}
	return journeys, nil
}

func extractJourney(n Node) (JourneyOption, error) {
	legNodes, ok := n.Get("legs").Array()
	if !ok {
		return JourneyOption{}, fmt.Errorf("%w: missing legs", ErrMalformedResponse)
	}

	j := JourneyOption{Legs: make([]Leg, 0, len(legNodes))}
	for i, ln := range legNodes {
		leg, err := extractLeg(ln)
		if err != nil {
			return JourneyOption{}, fmt.Errorf("leg %d: %w", i+1, err)
		}
		j.Legs = append(j.Legs, leg)
	}

	if fare := n.Get("fare"); fare.Exists() {
		j.Fare = extractFare(fare)
	}
	return j, nil
}

func extractLeg(n Node) (Leg, error) {
	var leg Leg
	var ok bool

	if leg.InstructionSummary, ok = n.Path("instruction", "summary").String(); !ok {
		return Leg{}, fmt.Errorf("%w: missing instruction.summary", ErrMalformedResponse)
	}
	if leg.DurationMinutes, ok = n.Get("duration").Int(); !ok {
		return Leg{}, fmt.Errorf("%w: missing duration", ErrMalformedResponse)
	}
	if leg.DepartureTime, ok = n.Get("departureTime").String(); !ok {
		return Leg{}, fmt.Errorf("%w: missing departureTime", ErrMalformedResponse)
	}
	if leg.ArrivalTime, ok = n.Get("arrivalTime").String(); !ok {
		return Leg{}, fmt.Errorf("%w: missing arrivalTime", ErrMalformedResponse)
	}

	for _, sp := range n.Path("path", "stopPoints").Items() {
		leg.CallingPoints = append(leg.CallingPoints, CallingPoint{
			DisplayName: sp.First("name", "commonName").StringOr("Unknown"),
			ID:          sp.Get("id").StringOr("???"),
		})
	}

	for _, d := range n.Get("disruptions").Items() {
		leg.Disruptions = append(leg.Disruptions, Disruption{
			Description: d.First("description", "summary").StringOr(""),
			ClosureText: d.Get("closureText").StringOr(""),
		})
	}

	for _, w := range n.Get("plannedWorks").Items() {
		leg.PlannedWorks = append(leg.PlannedWorks, PlannedWork{
			Description: w.Get("description").StringOr(""),
		})
	}

	return leg, nil
}

func extractFare(n Node) *FareBreakdown {
	fb := &FareBreakdown{}
	fb.TotalCost, fb.HasTotalCost = n.Get("totalCost").Int()

	for _, f := range n.Get("fares").Items() {
		cost, ok := f.Get("cost").Int()
		if !ok {
			continue
		}
		fb.Fares = append(fb.Fares, FareLine{
			Type: f.First("chargeProfileName", "type").StringOr("Unknown"),
			Cost: cost,
		})
	}

	for _, c := range n.Get("caveats").Items() {
		fb.Caveats = append(fb.Caveats, FareCaveat{
			Text: c.Get("text").StringOr(""),
			Type: c.Get("type").StringOr("None"),
		})
	}

	return fb
}
