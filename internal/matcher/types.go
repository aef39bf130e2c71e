package matcher

import (
	"context"

	"go-iris-match/internal/vision"
)

// Verdict is the final outcome of a match
type Verdict string

const (
	Accepted           Verdict = "accepted"
	Rejected           Verdict = "rejected"
	RejectedAfterRetry Verdict = "rejected_after_retry"
)

// State is a step of the match state machine
type State string

const (
	StateStart              State = "start"
	StateFirstScored        State = "first_scored"
	StateAwaitingRetryInput State = "awaiting_retry_input"
	StateRetryScored        State = "retry_scored"
	StateDone               State = "done"
)

// Decision is what the policy concluded from one attempt's score
type Decision string

const (
	// DecisionRejectBelowFloor ends a first attempt scored under the floor
	DecisionRejectBelowFloor Decision = "reject_below_floor"
	// DecisionAccept ends any attempt scored at or above the accept threshold
	DecisionAccept Decision = "accept"
	// DecisionRetry asks for one more input image
	DecisionRetry Decision = "retry"
	// DecisionRejectAfterRetry ends a retry scored under the accept threshold
	DecisionRejectAfterRetry Decision = "reject_after_retry"
)

// Attempt records one scored input image
type Attempt struct {
	Number         int      `json:"number"`
	InputLocation  string   `json:"input_location"`
	RawCorrelation float64  `json:"raw_correlation"`
	Score          float64  `json:"score"`
	Decision       Decision `json:"decision"`
}

// MatchResult is the outcome of a completed match
type MatchResult struct {
	ID       string    `json:"id"`
	Score    float64   `json:"score"`
	Verdict  Verdict   `json:"verdict"`
	Attempts int       `json:"attempts"`
	History  []Attempt `json:"history"`
}

// Normalizer reduces the image at a location to its histogram
type Normalizer interface {
	Normalize(ctx context.Context, location string) (vision.Histogram, error)
}

// Comparer correlates two histograms
type Comparer interface {
	CompareHist(a, b vision.Histogram) float64
}

// RetryPrompt supplies the location of a replacement input image after an
// inconclusive first attempt.
type RetryPrompt interface {
	NextInputPath(ctx context.Context, previous Attempt) (string, error)
}

// PromptFunc adapts a function to RetryPrompt
type PromptFunc func(ctx context.Context, previous Attempt) (string, error)

// NextInputPath calls f
func (f PromptFunc) NextInputPath(ctx context.Context, previous Attempt) (string, error) {
	return f(ctx, previous)
}
