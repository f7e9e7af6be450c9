package journey

import (
	"fmt"
	"net/http"
)

// OutcomeKind tags which variant of Outcome is populated. The zero value
// belongs to no variant.
type OutcomeKind int

const (
	outcomeUnknown OutcomeKind = iota
	OutcomeAmbiguous
	OutcomeEmpty
	OutcomeTransportError
	OutcomeSuccess
)

func (k OutcomeKind) String() string {
	switch k {
	case outcomeUnknown:
		return "unknown"
	case OutcomeAmbiguous:
		return "ambiguous"
	case OutcomeEmpty:
		return "empty"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeSuccess:
		return "success"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the classified result of one journey planner response.
// Only the fields belonging to Kind are set.
type Outcome struct {
	Kind           OutcomeKind
	Disambiguation DisambiguationSet // OutcomeAmbiguous
	StatusCode     int               // OutcomeTransportError
	Journeys       []JourneyOption   // OutcomeSuccess
}

// Disrupted reports whether any leg of any returned journey carries a
// disruption.
func (o Outcome) Disrupted() bool {
	for _, j := range o.Journeys {
		for _, leg := range j.Legs {
			if len(leg.Disruptions) > 0 {
				return true
			}
		}
	}
	return false
}

// Classify maps an upstream status and body onto exactly one Outcome.
// The only error it returns wraps ErrMalformedResponse.
func Classify(statusCode int, body []byte) (Outcome, error) {
	switch {
	case statusCode == http.StatusMultipleChoices:
		doc, err := ParseDocument(body)
		if err != nil {
			return Outcome{}, fmt.Errorf("%w: ambiguity body: %v", ErrMalformedResponse, err)
		}
		return Outcome{Kind: OutcomeAmbiguous, Disambiguation: extractDisambiguation(doc)}, nil

	case statusCode == http.StatusNotFound:
		return Outcome{Kind: OutcomeEmpty}, nil

	case statusCode < 200 || statusCode > 299:
		return Outcome{Kind: OutcomeTransportError, StatusCode: statusCode}, nil
	}

	doc, err := ParseDocument(body)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	items, ok := doc.Get("journeys").Array()
	if !ok {
		return Outcome{}, fmt.Errorf("%w: missing journeys array", ErrMalformedResponse)
	}
	if len(items) == 0 {
		return Outcome{Kind: OutcomeEmpty}, nil
	}

	journeys, err := extractJourneys(items)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Kind: OutcomeSuccess, Journeys: journeys}, nil
}
