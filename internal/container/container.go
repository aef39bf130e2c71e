package container

import (
	"fmt"
	"io"

	"go-iris-match/internal/config"
	apperrors "go-iris-match/internal/errors"
	"go-iris-match/internal/factory"
	"go-iris-match/internal/logger"
	"go-iris-match/internal/matcher"
	"go-iris-match/internal/observer"
	"go-iris-match/internal/preprocess"
	"go-iris-match/internal/repository"
	"go-iris-match/internal/transport"
	"go-iris-match/internal/vision"
)

// Container holds all application dependencies
type Container struct {
	config       *config.Config
	primitives   vision.Primitives
	repository   repository.ImageRepository
	preprocessor *preprocess.Preprocessor
	events       *observer.EventPublisher
	metrics      *observer.MetricsObserver
	matcher      *matcher.Matcher
}

// NewContainer wires the matcher to the console: results and prompts go to
// stdout and retry paths are read from stdin.
func NewContainer(cfg *config.Config, stdin io.Reader, stdout io.Writer) (*Container, error) {
	components := factory.NewComponentFactory(cfg)

	primitives, err := components.VisionFactory.CreatePrimitives(factory.BackendType(cfg.Backend))
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("cannot use vision backend %q", cfg.Backend), err)
	}

	repo, err := components.CreateRepository()
	if err != nil {
		return nil, apperrors.NewConfigError("cannot set up image storage", err)
	}

	preprocessor := preprocess.NewPreprocessor(primitives, repo, preprocess.DefaultOptions())

	// the reporter must come first so each result line precedes the prompt
	events := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	events.Subscribe(transport.NewConsoleReporter(stdout, cfg.RejectThreshold))
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	opts := matcher.DefaultOptions().WithThresholds(cfg.RejectThreshold, cfg.AcceptThreshold)
	m := matcher.New(preprocessor, primitives, transport.NewConsolePrompt(stdin, stdout), events, opts)

	return &Container{
		config:       cfg,
		primitives:   primitives,
		repository:   repo,
		preprocessor: preprocessor,
		events:       events,
		metrics:      metrics,
		matcher:      m,
	}, nil
}

// Matcher returns the configured matcher
func (c *Container) Matcher() *matcher.Matcher {
	return c.matcher
}

// Metrics returns the match counters
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}

// Backend returns the name of the vision backend in use
func (c *Container) Backend() string {
	return c.primitives.Name()
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}
