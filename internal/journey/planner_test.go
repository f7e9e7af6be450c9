package journey

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockFetcher struct {
	status int
	body   []byte
	err    error

	mu    sync.Mutex
	paths []string
}

func (m *mockFetcher) Fetch(ctx context.Context, requestPath string) (int, []byte, error) {
	m.mu.Lock()
	m.paths = append(m.paths, requestPath)
	m.mu.Unlock()
	if m.err != nil {
		return 0, nil, m.err
	}
	return m.status, m.body, nil
}

func newTestPlanner(f Fetcher) (*Planner, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewPlanner(f, logger), hook
}

func TestPlanner_Success(t *testing.T) {
	fetcher := &mockFetcher{status: http.StatusOK, body: loadFixture(t, "journeys_full.json")}
	planner, hook := newTestPlanner(fetcher)

	out, err := planner.PlanJourney(context.Background(), Query{From: "Angel", To: "Waterloo"})
	require.NoError(t, err)

	assert.Contains(t, out, "Journey(s) from Angel to Waterloo\n")
	assert.Equal(t, 2, countLines(out, "Option "))
	require.Len(t, fetcher.paths, 1)
	assert.Equal(t, Query{From: "Angel", To: "Waterloo"}.Path(), fetcher.paths[0])

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "success", entry.Data["outcome"])
	assert.NotEmpty(t, entry.Data["request_id"])
}

func TestPlanner_Ambiguous(t *testing.T) {
	fetcher := &mockFetcher{status: http.StatusMultipleChoices, body: loadFixture(t, "disambiguation_to.json")}
	planner, _ := newTestPlanner(fetcher)

	out, err := planner.PlanJourney(context.Background(), Query{From: "51.5,-0.1", To: "Waterloo"})
	require.NoError(t, err)
	assert.Contains(t, out, "Options for To parameter")
}

func TestPlanner_ResubmitsDisambiguatedValue(t *testing.T) {
	fetcher := &mockFetcher{status: http.StatusMultipleChoices, body: loadFixture(t, "disambiguation_to.json")}
	planner, _ := newTestPlanner(fetcher)

	_, err := planner.PlanJourney(context.Background(), Query{From: "a", To: "Waterloo"})
	require.NoError(t, err)

	outcome, err := Classify(http.StatusMultipleChoices, loadFixture(t, "disambiguation_to.json"))
	require.NoError(t, err)
	chosen := outcome.Disambiguation[RoleTo][1].ParameterValue

	fetcher.status, fetcher.body = http.StatusOK, loadFixture(t, "journeys_minimal.json")
	_, err = planner.PlanJourney(context.Background(), Query{From: "a", To: chosen})
	require.NoError(t, err)

	assert.Contains(t, fetcher.paths[1], "/to/"+chosen+"?")
}

func TestPlanner_PlanReportsDisruption(t *testing.T) {
	tests := []struct {
		fixture   string
		disrupted bool
	}{
		{"journeys_full.json", true},
		{"journeys_minimal.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.fixture, func(t *testing.T) {
			planner, _ := newTestPlanner(&mockFetcher{status: http.StatusOK, body: loadFixture(t, tt.fixture)})

			res, err := planner.Plan(context.Background(), Query{From: "a", To: "b"})
			require.NoError(t, err)
			assert.Equal(t, OutcomeSuccess, res.Outcome.Kind)
			assert.Equal(t, tt.disrupted, res.Disrupted())

			text, err := planner.PlanJourney(context.Background(), Query{From: "a", To: "b"})
			require.NoError(t, err)
			assert.Equal(t, text, res.Text)
		})
	}
}

func TestPlanner_NoJourneys(t *testing.T) {
	fetcher := &mockFetcher{status: http.StatusNotFound, body: []byte(`{}`)}
	planner, _ := newTestPlanner(fetcher)

	out, err := planner.PlanJourney(context.Background(), Query{From: "a", To: "b"})
	require.NoError(t, err)
	assert.Equal(t, RenderNoJourneys(), out)
}

func TestPlanner_UpstreamError(t *testing.T) {
	fetcher := &mockFetcher{status: http.StatusServiceUnavailable, body: []byte(`upstream down`)}
	planner, _ := newTestPlanner(fetcher)

	out, err := planner.PlanJourney(context.Background(), Query{From: "a", To: "b"})
	require.NoError(t, err)
	assert.Equal(t, "Cannot retrieve journeys from API (503 Service Unavailable)\n", out)
}

func TestPlanner_FetchErrorBecomesText(t *testing.T) {
	fetcher := &mockFetcher{err: errors.New("dial tcp: connection refused")}
	planner, hook := newTestPlanner(fetcher)

	out, err := planner.PlanJourney(context.Background(), Query{From: "a", To: "b"})
	require.NoError(t, err)
	assert.Equal(t, "Cannot retrieve journeys from API (dial tcp: connection refused)\n", out)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestPlanner_MalformedResponseIsHardFailure(t *testing.T) {
	fetcher := &mockFetcher{status: http.StatusOK, body: []byte(`{"lines":[]}`)}
	planner, _ := newTestPlanner(fetcher)

	out, err := planner.PlanJourney(context.Background(), Query{From: "a", To: "b"})
	assert.Empty(t, out)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestPlanner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &mockFetcher{err: errors.New("request aborted")}
	planner, _ := newTestPlanner(fetcher)

	out, err := planner.PlanJourney(ctx, Query{From: "a", To: "b"})
	assert.Empty(t, out)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlanner_ConcurrentInvocations(t *testing.T) {
	fetcher := &mockFetcher{status: http.StatusOK, body: loadFixture(t, "journeys_minimal.json")}
	planner, _ := newTestPlanner(fetcher)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := planner.PlanJourney(context.Background(), Query{From: "a", To: "b"})
			assert.NoError(t, err)
			results[i] = out
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}

func countLines(s, prefix string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, prefix) {
			n++
		}
	}
	return n
}
