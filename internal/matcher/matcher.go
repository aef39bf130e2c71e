// Package matcher scores an input iris against a database iris and runs the
// accept, reject or retry-once decision.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	apperrors "go-iris-match/internal/errors"
	"go-iris-match/internal/logger"
	"go-iris-match/internal/observer"
	"go-iris-match/internal/vision"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Matcher compares iris images
type Matcher struct {
	normalizer Normalizer
	comparer   Comparer
	prompt     RetryPrompt
	events     observer.Subject
	opts       Options
}

// New creates a matcher. events may be nil.
func New(normalizer Normalizer, comparer Comparer, prompt RetryPrompt, events observer.Subject, opts Options) *Matcher {
	return &Matcher{
		normalizer: normalizer,
		comparer:   comparer,
		prompt:     prompt,
		events:     events,
		opts:       opts,
	}
}

// Score turns a correlation coefficient into a percentage in [0, 100].
// Negative and undefined correlations score 0.
func Score(correlation float64) float64 {
	score := correlation * 100
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	return score
}

// DecideFirst applies the first-attempt policy
func (m *Matcher) DecideFirst(score float64) Decision {
	switch {
	case score < m.opts.RejectBelow:
		return DecisionRejectBelowFloor
	case score >= m.opts.AcceptAtOrAbove:
		return DecisionAccept
	default:
		return DecisionRetry
	}
}

// DecideRetry applies the retry policy: there is no second retry
func (m *Matcher) DecideRetry(score float64) Decision {
	if score >= m.opts.AcceptAtOrAbove {
		return DecisionAccept
	}
	return DecisionRejectAfterRetry
}

// matchRun carries the state of one Match call
type matchRun struct {
	id        string
	state     State
	dbHist    vision.Histogram
	inputPath string
	result    *MatchResult
	log       *logrus.Entry
}

// Match scores inputPath against dbPath. The database histogram is computed
// first and reused for the retry. Image load and prompt failures abort the
// match with an AppError.
func (m *Matcher) Match(ctx context.Context, inputPath, dbPath string) (*MatchResult, error) {
	start := time.Now()
	run := &matchRun{
		id:        uuid.NewString(),
		state:     StateStart,
		inputPath: inputPath,
	}
	run.result = &MatchResult{ID: run.id}
	run.log = logger.WithField("match_id", run.id)

	m.publish(ctx, observer.MatchEvent{
		EventType: observer.MatchStarted,
		MatchID:   run.id,
		Metadata:  map[string]interface{}{"input": inputPath, "database": dbPath},
	})

	for run.state != StateDone {
		var err error
		switch run.state {
		case StateStart:
			err = m.scoreFirst(ctx, run, dbPath)
		case StateFirstScored:
			m.afterFirst(ctx, run)
		case StateAwaitingRetryInput:
			err = m.scoreRetry(ctx, run)
		case StateRetryScored:
			m.afterRetry(run)
		default:
			err = apperrors.NewInternalError(fmt.Sprintf("unknown match state %q", run.state), nil)
		}
		if err != nil {
			m.publish(ctx, observer.MatchEvent{
				EventType:      observer.MatchFailed,
				MatchID:        run.id,
				ErrorMessage:   err.Error(),
				ProcessingTime: time.Since(start),
			})
			return nil, err
		}
	}

	res := run.result
	m.publish(ctx, observer.MatchEvent{
		EventType:      observer.MatchCompleted,
		MatchID:        run.id,
		Attempt:        res.Attempts,
		Score:          res.Score,
		Verdict:        string(res.Verdict),
		ProcessingTime: time.Since(start),
	})
	return res, nil
}

func (m *Matcher) scoreFirst(ctx context.Context, run *matchRun, dbPath string) error {
	dbHist, err := m.normalize(ctx, run, dbPath)
	if err != nil {
		return err
	}
	run.dbHist = dbHist

	if err := m.scoreAttempt(ctx, run, 1, m.DecideFirst); err != nil {
		return err
	}
	m.transition(run, StateFirstScored)
	return nil
}

func (m *Matcher) afterFirst(ctx context.Context, run *matchRun) {
	last := run.result.History[len(run.result.History)-1]
	switch last.Decision {
	case DecisionRejectBelowFloor:
		m.finish(run, Rejected)
	case DecisionAccept:
		m.finish(run, Accepted)
	default:
		m.publish(ctx, observer.MatchEvent{
			EventType: observer.RetryRequested,
			MatchID:   run.id,
			Attempt:   last.Number,
			Score:     last.Score,
		})
		m.transition(run, StateAwaitingRetryInput)
	}
}

func (m *Matcher) scoreRetry(ctx context.Context, run *matchRun) error {
	previous := run.result.History[len(run.result.History)-1]
	path, err := m.prompt.NextInputPath(ctx, previous)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return apperrors.NewInputError("failed to read the retry input path", err)
	}
	run.inputPath = path

	if err := m.scoreAttempt(ctx, run, 2, m.DecideRetry); err != nil {
		return err
	}
	m.transition(run, StateRetryScored)
	return nil
}

func (m *Matcher) afterRetry(run *matchRun) {
	last := run.result.History[len(run.result.History)-1]
	if last.Decision == DecisionAccept {
		m.finish(run, Accepted)
		return
	}
	m.finish(run, RejectedAfterRetry)
}

// scoreAttempt normalizes the current input image, scores it against the
// database histogram and records the decision.
func (m *Matcher) scoreAttempt(ctx context.Context, run *matchRun, number int, decide func(float64) Decision) error {
	inputHist, err := m.normalize(ctx, run, run.inputPath)
	if err != nil {
		return err
	}

	raw := m.comparer.CompareHist(inputHist, run.dbHist)
	attempt := Attempt{
		Number:         number,
		InputLocation:  run.inputPath,
		RawCorrelation: raw,
		Score:          Score(raw),
	}
	attempt.Decision = decide(attempt.Score)

	run.result.History = append(run.result.History, attempt)
	run.result.Attempts = number
	run.result.Score = attempt.Score

	m.publish(ctx, observer.MatchEvent{
		EventType:      observer.AttemptScored,
		MatchID:        run.id,
		Location:       attempt.InputLocation,
		Attempt:        attempt.Number,
		RawCorrelation: attempt.RawCorrelation,
		Score:          attempt.Score,
		Decision:       string(attempt.Decision),
	})
	return nil
}

func (m *Matcher) normalize(ctx context.Context, run *matchRun, location string) (vision.Histogram, error) {
	start := time.Now()
	hist, err := m.normalizer.Normalize(ctx, location)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeImageLoad) {
			m.publish(ctx, observer.MatchEvent{
				EventType:    observer.ImageLoadFailed,
				MatchID:      run.id,
				Location:     location,
				ErrorMessage: err.Error(),
			})
		}
		return nil, err
	}

	m.publish(ctx, observer.MatchEvent{
		EventType:      observer.ImageNormalized,
		MatchID:        run.id,
		Location:       location,
		ProcessingTime: time.Since(start),
	})
	return hist, nil
}

func (m *Matcher) finish(run *matchRun, verdict Verdict) {
	run.result.Verdict = verdict
	m.transition(run, StateDone)
}

func (m *Matcher) transition(run *matchRun, next State) {
	run.log.WithFields(logrus.Fields{
		"from": run.state,
		"to":   next,
	}).Debug("Match state changed")
	run.state = next
}

func (m *Matcher) publish(ctx context.Context, event observer.MatchEvent) {
	if m.events == nil {
		return
	}
	m.events.NotifyObservers(ctx, event)
}
