package tfl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(Config{})
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, client.baseURL.String())
	assert.Equal(t, DefaultUserAgent, client.userAgent)
	assert.NotNil(t, client.httpClient)
}

func TestNewClient_RejectsRelativeBaseURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "api.tfl.gov.uk"})
	assert.Error(t, err)
}

func TestClient_Fetch_PassesThroughStatusAndBody(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"success", http.StatusOK, `{"journeys":[]}`},
		{"ambiguous", http.StatusMultipleChoices, `{"toLocationDisambiguation":{}}`},
		{"not found", http.StatusNotFound, `{"message":"none"}`},
		{"server error", http.StatusInternalServerError, `oops`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := NewClient(Config{BaseURL: server.URL})
			require.NoError(t, err)

			status, body, err := client.Fetch(context.Background(), "/Journey/JourneyResults/a/to/b?mode=tube")
			require.NoError(t, err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.body, string(body))
		})
	}
}

func TestClient_Fetch_RequestShape(t *testing.T) {
	var gotPath, gotRawPath, gotQuery, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRawPath = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery
		gotAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, AppKey: "secret key", UserAgent: "test-agent/0.1"})
	require.NoError(t, err)

	_, _, err = client.Fetch(context.Background(),
		"/Journey/JourneyResults/51.53,-0.12/to/Waterloo East?nationalSearch=false&mode=tube,dlr&via=Bank Station")
	require.NoError(t, err)

	assert.Equal(t, "/Journey/JourneyResults/51.53,-0.12/to/Waterloo East", gotPath)
	assert.Equal(t, "/Journey/JourneyResults/51.53,-0.12/to/Waterloo%20East", gotRawPath)
	assert.Equal(t, "nationalSearch=false&mode=tube,dlr&via=Bank%20Station&app_key=secret+key", gotQuery)
	assert.Equal(t, "test-agent/0.1", gotAgent)
}

func TestClient_Fetch_KeepsExistingEscapes(t *testing.T) {
	var gotRawPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRawPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, _, err = client.Fetch(context.Background(), "/Journey/JourneyResults/King%27s%20Cross/to/1000129")
	require.NoError(t, err)
	assert.Equal(t, "/Journey/JourneyResults/King%27s%20Cross/to/1000129", gotRawPath)
}

func TestClient_Fetch_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewClient(Config{BaseURL: url})
	require.NoError(t, err)

	_, _, err = client.Fetch(context.Background(), "/Journey/JourneyResults/a/to/b")
	assert.ErrorContains(t, err, "executing request")
}

func TestEscapeUnsafe(t *testing.T) {
	assert.Equal(t, "a=1&b=two%20words&c=%C2%A3&d=%23x", escapeUnsafe("a=1&b=two words&c=£&d=#x"))
	assert.Equal(t, "via=51.5,-0.1&date=20261016", escapeUnsafe("via=51.5,-0.1&date=20261016"))
}
