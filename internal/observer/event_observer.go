package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// MatchEvent represents one step of a match
type MatchEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	MatchID        string                 `json:"match_id"`
	Location       string                 `json:"location,omitempty"`
	Attempt        int                    `json:"attempt,omitempty"`
	RawCorrelation float64                `json:"raw_correlation,omitempty"`
	Score          float64                `json:"score,omitempty"`
	Decision       string                 `json:"decision,omitempty"`
	Verdict        string                 `json:"verdict,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of match event
type EventType string

const (
	// MatchStarted when both locations have been accepted
	MatchStarted EventType = "match_started"
	// ImageNormalized when an image has been reduced to a histogram
	ImageNormalized EventType = "image_normalized"
	// ImageLoadFailed when an image cannot be fetched or decoded
	ImageLoadFailed EventType = "image_load_failed"
	// AttemptScored when an input image has been scored and a decision made
	AttemptScored EventType = "attempt_scored"
	// RetryRequested before the prompt for a second input image
	RetryRequested EventType = "retry_requested"
	// MatchCompleted when a verdict is reached
	MatchCompleted EventType = "match_completed"
	// MatchFailed when the match aborts without a verdict
	MatchFailed EventType = "match_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event MatchEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event MatchEvent)
}

// LoggingObserver logs match events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles match events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event MatchEvent) {
	fields := logrus.Fields{
		"event_type": event.EventType,
		"match_id":   event.MatchID,
	}
	if event.Location != "" {
		fields["location"] = event.Location
	}
	if event.Attempt > 0 {
		fields["attempt"] = event.Attempt
	}
	if event.ProcessingTime > 0 {
		fields["processing_time"] = event.ProcessingTime
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	switch event.EventType {
	case MatchStarted:
		o.logger.WithFields(fields).Info("Iris match started")
	case ImageNormalized:
		o.logger.WithFields(fields).Debug("Image normalized")
	case ImageLoadFailed:
		o.logger.WithFields(fields).Error("Image load failed")
	case AttemptScored:
		fields["raw_correlation"] = event.RawCorrelation
		fields["score"] = event.Score
		fields["decision"] = event.Decision
		o.logger.WithFields(fields).Info("Attempt scored")
	case RetryRequested:
		o.logger.WithFields(fields).Info("Requesting another input image")
	case MatchCompleted:
		fields["score"] = event.Score
		fields["verdict"] = event.Verdict
		o.logger.WithFields(fields).Info("Iris match completed")
	case MatchFailed:
		o.logger.WithFields(fields).Error("Iris match failed")
	default:
		o.logger.WithFields(fields).Info("Match event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects metrics from match events
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalMatches        int64
	completedMatches    int64
	failedMatches       int64
	retries             int64
	verdicts            map[string]int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{verdicts: make(map[string]int64)}
}

// OnEvent handles match events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event MatchEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case MatchStarted:
		o.totalMatches++
	case RetryRequested:
		o.retries++
	case MatchCompleted:
		o.completedMatches++
		o.verdicts[event.Verdict]++
		o.totalProcessingTime += event.ProcessingTime
	case MatchFailed:
		o.failedMatches++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current metrics
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.completedMatches > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.completedMatches)
	}

	verdicts := make(map[string]int64, len(o.verdicts))
	for k, v := range o.verdicts {
		verdicts[k] = v
	}

	return map[string]interface{}{
		"total_matches":         o.totalMatches,
		"completed_matches":     o.completedMatches,
		"failed_matches":        o.failedMatches,
		"retries":               o.retries,
		"verdicts":              verdicts,
		"total_processing_time": o.totalProcessingTime,
		"avg_processing_time":   avgProcessingTime,
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers delivers event to every observer in subscription order
// before returning. Result lines must be printed before the retry prompt.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event MatchEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	for _, observer := range observers {
		notify(ctx, observer, event)
	}
}

func notify(ctx context.Context, obs Observer, event MatchEvent) {
	defer func() {
		if r := recover(); r != nil {
			// Log panic but don't crash the application
			logrus.WithField("observer", obs.GetObserverName()).
				WithField("panic", r).
				Error("Observer panicked while handling event")
		}
	}()
	obs.OnEvent(ctx, event)
}
