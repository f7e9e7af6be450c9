package journey

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const (
	ambiguityBanner = "Location ambiguity response; Re-run this tool with your input clarified on which point of interest you are trying to plan to go or from or via.\n" +
		"If the station specified is not listed or close, try using the nationalSearch parameter for stations outside of London Zones\n"

	noJourneysText = "No journeys found. You can retry replacing words like \"Railway Station\" or \"Rail Station\" to see if you get better results. Especially for routes outside London.\n"

	closingAdvisory = "The listed information maybe important, please read carefully in detail before travelling.\n"
)

// RenderDisambiguation writes the resubmission prompt for an ambiguous query.
// Roles without candidates get no heading.
func RenderDisambiguation(set DisambiguationSet) string {
	var b strings.Builder
	b.WriteString(ambiguityBanner)

	for _, role := range Roles {
		opts := set[role]
		if len(opts) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\nOptions for %s parameter\n", role)
		for _, o := range opts {
			fmt.Fprintf(&b, "%d. %s (parameter: %s)\n", o.Ordinal, o.DisplayName, o.ParameterValue)
		}
	}

	return b.String()
}

// RenderNoJourneys is the notice for both a 404 and an empty journeys array.
func RenderNoJourneys() string {
	return noJourneysText
}

// RenderTransportError reports an upstream rejection verbatim.
func RenderTransportError(statusCode int) string {
	status := strconv.Itoa(statusCode)
	if reason := http.StatusText(statusCode); reason != "" {
		status += " " + reason
	}
	return fmt.Sprintf("Cannot retrieve journeys from API (%s)\n", status)
}

// RenderItinerary writes one block per journey option, in service order.
// It never fails: every optional field has already been resolved or omitted.
func RenderItinerary(journeys []JourneyOption, from, to string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Journey(s) from %s to %s\n", from, to)

	for i, j := range journeys {
		fmt.Fprintf(&b, "Option %d:\n", i+1)

		for step, leg := range j.Legs {
			fmt.Fprintf(&b, "%d. => %s (Length: %d min(s))\n", step+1, leg.InstructionSummary, leg.DurationMinutes)
			fmt.Fprintf(&b, "   Departs: %s\n", leg.DepartureTime)
			fmt.Fprintf(&b, "   Arrives: %s\n", leg.ArrivalTime)

			if line := callingAt(leg.CallingPoints); line != "" {
				b.WriteString(line)
				b.WriteString("\n")
			}
			for _, d := range leg.Disruptions {
				fmt.Fprintf(&b, "Disruptions: %s\n", joinNonEmpty(d.Description, d.ClosureText))
			}
			for _, w := range leg.PlannedWorks {
				fmt.Fprintf(&b, "Planned Engineering Works: %s\n", w.Description)
			}
		}

		if j.Fare != nil {
			writeFare(&b, j.Fare)
		}
	}

	b.WriteString(closingAdvisory)
	return b.String()
}

// callingAt joins stops as natural language: "A (1), B (2), and C (3)."
// A single stop still gets the "and" so the line reads the same at any length.
func callingAt(points []CallingPoint) string {
	if len(points) == 0 {
		return ""
	}

	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = fmt.Sprintf("%s (%s)", p.DisplayName, p.ID)
	}
	last := len(parts) - 1
	parts[last] = "and " + parts[last] + "."

	return "Calling at: " + strings.Join(parts, ", ")
}

func writeFare(b *strings.Builder, fare *FareBreakdown) {
	if fare.HasTotalCost {
		fmt.Fprintf(b, "Estimated total fare: £%s\n", formatPence(fare.TotalCost))
	}
	for _, f := range fare.Fares {
		fmt.Fprintf(b, "Fare Type: %s, Cost: £%s\n", f.Type, formatPence(f.Cost))
	}
	for _, c := range fare.Caveats {
		fmt.Fprintf(b, "Caveat: %s (%s)\n", c.Text, c.Type)
	}
}

// formatPence keeps the fractional pounds: 250 is "2.50", not "2.00".
func formatPence(minor int64) string {
	return fmt.Sprintf("%.2f", float64(minor)/100)
}

func joinNonEmpty(parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}
