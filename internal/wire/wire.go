// Package wire provides dependency injection for the presidium application.
// It creates singleton services with lazy initialization.
package wire

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	cliadapter "github.com/example/presidium/internal/adapters/cli"
	"github.com/example/presidium/internal/adapters/eventbus"
	"github.com/example/presidium/internal/adapters/sqlite"
	"github.com/example/presidium/internal/app"
	"github.com/example/presidium/internal/config"
	"github.com/example/presidium/internal/db"
	"github.com/example/presidium/internal/ports/primary"
	"github.com/example/presidium/internal/ports/secondary"
)

var (
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	bus      *eventbus.Bus

	sessionService   primary.SessionService
	votingService    primary.VotingService
	committeeService primary.CommitteeService
	eventLogService  primary.EventLogService

	cfgOnce sync.Once
	once    sync.Once
)

// Config returns the loaded configuration. Loading failures are fatal.
func Config() *config.Config {
	cfgOnce.Do(initConfig)
	return cfg
}

// Logger returns the process logger built from configuration.
func Logger() *slog.Logger {
	cfgOnce.Do(initConfig)
	return logger
}

// SessionService returns the singleton SessionService instance.
func SessionService() primary.SessionService {
	once.Do(initServices)
	return sessionService
}

// VotingService returns the singleton VotingService instance.
func VotingService() primary.VotingService {
	once.Do(initServices)
	return votingService
}

// CommitteeService returns the singleton CommitteeService instance.
func CommitteeService() primary.CommitteeService {
	once.Do(initServices)
	return committeeService
}

// EventLogService returns the singleton EventLogService instance.
func EventLogService() primary.EventLogService {
	once.Do(initServices)
	return eventLogService
}

func initConfig() {
	home, err := config.HomeDir()
	if err != nil {
		log.Fatalf("failed to resolve presidium home: %v", err)
	}
	cfg, err = config.LoadConfig(home)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger = NewLogger(cfg, os.Stderr)
}

// NewLogger builds a slog logger honouring log_level and log_format.
func NewLogger(c *config.Config, w io.Writer) *slog.Logger {
	level, err := c.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	c := Config()
	l := Logger()

	db.Configure(c.DatabasePath, l.With("component", "db"))
	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	sessionRepo := sqlite.NewSessionRepository(database)
	votingRepo := sqlite.NewVotingRepository(database)
	committeeRepo := sqlite.NewCommitteeRepository(database)
	eventRepo := sqlite.NewEventRepository(database)
	auditRepo := sqlite.NewAuditLogRepository(database)
	auditWriter := sqlite.NewAuditWriterAdapter(auditRepo)

	registry = prometheus.NewRegistry()
	bus = eventbus.New(c.EventWorkers, registry, l.With("component", "eventbus"))
	bus.SubscribeFunc(eventbus.AllEvents, func(evt secondary.PublishedEvent) {
		l.Debug("event broadcast", "event", evt.Name, "aggregate_id", evt.AggregateID, "visibility", evt.Visibility)
	})

	executor := app.NewEffectExecutor(eventRepo, bus, auditWriter, l.With("component", "effects"), nil)
	svcCfg := app.ServiceConfig{
		Logger:      l,
		Metrics:     app.NewMetrics(registry),
		SaveRetries: c.SaveRetries,
	}

	// Create services (primary ports implementation)
	sessionService = app.NewSessionService(sessionRepo, committeeRepo, executor, svcCfg)
	votingService = app.NewVotingService(votingRepo, sessionRepo, committeeRepo, executor, svcCfg)
	committeeService = app.NewCommitteeService(committeeRepo, l)
	eventLogService = app.NewEventLogService(eventRepo, auditRepo)
}

// Shutdown stops the event bus and closes the database.
// Safe to call when services were never initialized.
func Shutdown() {
	if bus != nil {
		bus.Stop()
	}
	if err := db.Close(); err != nil && logger != nil {
		logger.Warn("failed to close database", "error", err)
	}
}

// WriteMetrics prints every non-zero counter gathered during this process.
func WriteMetrics(out io.Writer) error {
	if registry == nil {
		return nil
	}
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				value = m.GetGauge().GetValue()
			}
			if value == 0 {
				continue
			}
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), strings.Join(labels, ","), value))
		}
	}
	sort.Strings(lines)
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	return nil
}

// SessionAdapter returns a new SessionAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func SessionAdapter() *cliadapter.SessionAdapter {
	return SessionAdapterWithOutput(os.Stdout)
}

// SessionAdapterWithOutput returns a new SessionAdapter writing to the given output.
func SessionAdapterWithOutput(out io.Writer) *cliadapter.SessionAdapter {
	return cliadapter.NewSessionAdapter(SessionService(), out)
}

// VotingAdapter returns a new VotingAdapter writing to stdout.
func VotingAdapter() *cliadapter.VotingAdapter {
	return cliadapter.NewVotingAdapter(VotingService(), os.Stdout)
}

// CommitteeAdapter returns a new CommitteeAdapter writing to stdout.
func CommitteeAdapter() *cliadapter.CommitteeAdapter {
	return cliadapter.NewCommitteeAdapter(CommitteeService(), os.Stdout)
}

// EventLogAdapter returns a new EventLogAdapter writing to stdout.
func EventLogAdapter() *cliadapter.EventLogAdapter {
	return cliadapter.NewEventLogAdapter(EventLogService(), os.Stdout)
}
