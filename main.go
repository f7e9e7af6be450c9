package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"github.com/danpilch/journeypal/internal/api/tfl"
	"github.com/danpilch/journeypal/internal/config"
	"github.com/danpilch/journeypal/internal/journey"
	"github.com/danpilch/journeypal/internal/monitor"
	"github.com/danpilch/journeypal/internal/notify"
	"github.com/danpilch/journeypal/internal/scheduler"
	"github.com/danpilch/journeypal/internal/tracing"
)

const version = "1.0.0"

type Globals struct {
	Config   string `help:"Path to config file" default:"config.yaml" type:"path"`
	LogLevel string `help:"Log level (debug, info, warn, error)" default:"info" enum:"debug,info,warn,error"`
}

var CLI struct {
	Globals

	Plan  PlanCmd  `cmd:"" help:"Plan a journey and print the itinerary."`
	Watch WatchCmd `cmd:"" help:"Check saved journeys on a schedule and push itineraries."`
}

type PlanCmd struct {
	From string `arg:"" help:"Origin: \"lat,long\", postcode, stop id or free text."`
	To   string `arg:"" help:"Destination, in any of the forms accepted for the origin."`

	Via            string   `help:"Travel through this point."`
	NationalSearch bool     `help:"Include stops outside the London zones."`
	Date           string   `help:"Travel date in yyyyMMdd format."`
	Time           string   `help:"Travel time in HHmm format."`
	TimeIs         string   `help:"Whether the time is a departing or arriving time." default:"departing"`
	Preference     string   `help:"leastinterchange, leasttime or leastwalking." default:"leastinterchange"`
	Mode           []string `help:"Comma separated transport modes (default: all)."`
	Alternatives   bool     `help:"Also return alternative routes."`
}

func (c *PlanCmd) Run(g *Globals, logger *logrus.Logger) error {
	cfg, err := config.LoadOrDefault(g.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	shutdown, err := tracing.Init(ctx, cfg.Tracing, version)
	if err != nil {
		return fmt.Errorf("initialising tracing: %w", err)
	}
	defer flushTraces(shutdown, logger)

	client, err := tfl.NewClient(cfg.ClientConfig(os.Getenv("TFL_APP_KEY")))
	if err != nil {
		return fmt.Errorf("creating tfl client: %w", err)
	}

	q := journey.Query{
		From:                     c.From,
		To:                       c.To,
		Via:                      c.Via,
		NationalSearch:           c.NationalSearch,
		Date:                     c.Date,
		Time:                     c.Time,
		TimeIs:                   journey.TimeIs(c.TimeIs),
		Preference:               journey.Preference(c.Preference),
		Modes:                    c.Mode,
		IncludeAlternativeRoutes: c.Alternatives,
	}
	if err := q.Validate(); err != nil {
		logger.WithField("error", err).Warn("query looks malformed, sending it anyway")
	}

	out, err := journey.NewPlanner(client, logger).PlanJourney(ctx, q)
	if err != nil {
		return err
	}

	_, err = io.WriteString(os.Stdout, out)
	return err
}

type WatchCmd struct{}

func (c *WatchCmd) Run(g *Globals, logger *logrus.Logger) error {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if len(cfg.Journeys) == 0 {
		return errors.New("no journeys configured to watch")
	}

	// Get credentials from environment
	pushoverToken := os.Getenv("PUSHOVER_TOKEN")
	pushoverUser := os.Getenv("PUSHOVER_USER")
	if pushoverToken == "" || pushoverUser == "" {
		return errors.New("PUSHOVER_TOKEN and PUSHOVER_USER environment variables are required")
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	shutdown, err := tracing.Init(ctx, cfg.Tracing, version)
	if err != nil {
		return fmt.Errorf("initialising tracing: %w", err)
	}
	defer flushTraces(shutdown, logger)

	client, err := tfl.NewClient(cfg.ClientConfig(os.Getenv("TFL_APP_KEY")))
	if err != nil {
		return fmt.Errorf("creating tfl client: %w", err)
	}

	planner := journey.NewPlanner(client, logger)
	notifier := notify.NewNotifier(pushoverToken, pushoverUser, logger)
	journeyMonitor := monitor.NewJourneyMonitor(planner, notifier, logger)
	sched := scheduler.NewScheduler(cfg, journeyMonitor, logger)

	logger.WithField("journeys", len(cfg.Journeys)).Info("starting journeypal watch")

	sched.Start(ctx)
	<-ctx.Done()
	sched.Stop()

	logger.Info("journeypal stopped")
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(logger *logrus.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			logger.WithField("signal", sig).Info("received signal, shutting down")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func flushTraces(shutdown func(context.Context) error, logger *logrus.Logger) {
	if err := shutdown(context.Background()); err != nil {
		logger.WithField("error", err).Warn("failed to flush traces")
	}
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("journeypal"),
		kong.Description("Plan TfL journeys as plain-text itineraries."),
		kong.UsageOnError(),
	)

	// Setup structured logging with logfmt; stdout carries the itinerary.
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})
	level, err := logrus.ParseLevel(CLI.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	err = ctx.Run(&CLI.Globals, logger)
	if err != nil {
		logger.WithField("error", err).Error("command failed")
		os.Exit(1)
	}
}
