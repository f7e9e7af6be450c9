package journey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_Path_Defaults(t *testing.T) {
	q := Query{From: "1001089", To: "1000129"}

	want := "/Journey/JourneyResults/1001089/to/1000129" +
		"?nationalSearch=false&timeIs=departing&journeyPreference=leastinterchange" +
		"&mode=bus,overground,national-rail,tube,coach,dlr,cable-car,tram,river-bus,walking,cycle" +
		"&includeAlternativeRoutes=false"

	assert.Equal(t, want, q.Path())
}

func TestQuery_Path_OmitsEmptyOptionals(t *testing.T) {
	q := Query{From: "a", To: "b", Via: "", Date: "", Time: "", Modes: []string{"tube"}}

	path := q.Path()
	assert.NotContains(t, path, "via=")
	assert.NotContains(t, path, "date=")
	assert.NotContains(t, path, "time=")
}

func TestQuery_Path_OptionalsInFixedOrder(t *testing.T) {
	q := Query{
		From:                     "51.5308,-0.1238",
		To:                       "SE1 7PB",
		Via:                      "1000035",
		NationalSearch:           true,
		Date:                     "20261016",
		Time:                     "0830",
		TimeIs:                   TimeIsArriving,
		Preference:               PreferenceLeastWalking,
		Modes:                    []string{"tube", "dlr"},
		IncludeAlternativeRoutes: true,
	}

	want := "/Journey/JourneyResults/51.5308,-0.1238/to/SE1 7PB" +
		"?nationalSearch=true&timeIs=arriving&journeyPreference=leastwalking" +
		"&mode=tube,dlr&includeAlternativeRoutes=true" +
		"&via=1000035&date=20261016&time=0830"

	assert.Equal(t, want, q.Path())
}

func TestQuery_Path_PassesMalformedValuesThrough(t *testing.T) {
	q := Query{From: "a", To: "b", Date: "16/10/2026", Time: "8:30am"}

	assert.Contains(t, q.Path(), "&date=16/10/2026&time=8:30am")
}

func TestQuery_Path_UsesDisambiguatedValueLiterally(t *testing.T) {
	for _, param := range []string{"1000129", "-0.11,51.50", "lonlat:\"-0.11,51.50\"", "Waterloo East"} {
		q := Query{From: "a", To: param}
		assert.Contains(t, q.Path(), "/to/"+param+"?", "parameter %q", param)
	}
}

func TestQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   Query
		wantErr string
	}{
		{name: "valid", query: Query{From: "a", To: "b", Date: "20261016", Time: "0830"}},
		{name: "missing from", query: Query{To: "b"}, wantErr: "from location is required"},
		{name: "short date", query: Query{From: "a", To: "b", Date: "2026101"}, wantErr: "yyyyMMdd"},
		{name: "non-digit time", query: Query{From: "a", To: "b", Time: "08:3"}, wantErr: "HHmm"},
		{name: "bad timeIs", query: Query{From: "a", To: "b", TimeIs: "leaving"}, wantErr: "timeIs"},
		{name: "bad preference", query: Query{From: "a", To: "b", Preference: "scenic"}, wantErr: "journeyPreference"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
