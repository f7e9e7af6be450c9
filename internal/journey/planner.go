// Package journey turns journey planner queries into text itineraries.
package journey

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Fetcher performs one GET against the journey planner and hands back the
// raw status and body. Retries, timeouts and connection reuse are its business.
type Fetcher interface {
	Fetch(ctx context.Context, requestPath string) (statusCode int, body []byte, err error)
}

// Planner runs the build, fetch, classify and render pipeline. It keeps no
// state between calls and is safe for concurrent use if its Fetcher is.
type Planner struct {
	fetcher Fetcher
	logger  *logrus.Logger
	tracer  trace.Tracer
}

func NewPlanner(fetcher Fetcher, logger *logrus.Logger) *Planner {
	return &Planner{
		fetcher: fetcher,
		logger:  logger,
		tracer:  otel.Tracer("journeypal/journey"),
	}
}

// Result is the text handed back to the caller together with the outcome it
// was rendered from. Outcome is the zero value when the fetch itself failed.
type Result struct {
	Text    string
	Outcome Outcome
}

// Disrupted reports whether the rendered itinerary includes disruptions.
func (r Result) Disrupted() bool {
	return r.Outcome.Disrupted()
}

// PlanJourney returns an itinerary, a disambiguation prompt, or a plain-text
// notice. An error is returned only for a malformed response or when ctx ends
// before the response arrives.
func (p *Planner) PlanJourney(ctx context.Context, q Query) (string, error) {
	res, err := p.Plan(ctx, q)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Plan is PlanJourney that also returns the classified outcome.
func (p *Planner) Plan(ctx context.Context, q Query) (Result, error) {
	ctx, span := p.tracer.Start(ctx, "journey.plan",
		trace.WithAttributes(
			attribute.String("journey.from", q.From),
			attribute.String("journey.to", q.To),
		),
	)
	defer span.End()

	path := q.Path()
	log := p.logger.WithFields(logrus.Fields{
		"request_id": uuid.NewString(),
		"path":       path,
	})
	log.Debug("requesting journey results")

	status, body, err := p.fetcher.Fetch(ctx, path)
	if err != nil {
		span.RecordError(err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			span.SetStatus(codes.Error, "cancelled")
			return Result{}, fmt.Errorf("fetching journey results: %w", errors.Join(ctxErr, err))
		}
		log.WithField("error", err).Warn("journey planner request failed")
		return Result{Text: fmt.Sprintf("Cannot retrieve journeys from API (%v)\n", err)}, nil
	}
	span.SetAttributes(attribute.Int("http.status_code", status))

	outcome, err := Classify(status, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed response")
		log.WithFields(logrus.Fields{
			"status": status,
			"error":  err,
		}).Error("journey planner returned a malformed response")
		return Result{}, err
	}
	span.SetAttributes(
		attribute.String("journey.outcome", outcome.Kind.String()),
		attribute.Bool("journey.disrupted", outcome.Disrupted()),
	)

	log.WithFields(logrus.Fields{
		"status":    status,
		"outcome":   outcome.Kind.String(),
		"journeys":  len(outcome.Journeys),
		"disrupted": outcome.Disrupted(),
	}).Info("journey planner response classified")

	return Result{Text: Render(outcome, q), Outcome: outcome}, nil
}

// Render picks the renderer for an outcome.
func Render(o Outcome, q Query) string {
	switch o.Kind {
	case OutcomeAmbiguous:
		return RenderDisambiguation(o.Disambiguation)
	case OutcomeEmpty:
		return RenderNoJourneys()
	case OutcomeTransportError:
		return RenderTransportError(o.StatusCode)
	case OutcomeSuccess:
		return RenderItinerary(o.Journeys, q.From, q.To)
	default:
		return ""
	}
}
