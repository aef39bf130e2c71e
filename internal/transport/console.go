package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	apperrors "go-iris-match/internal/errors"
	"go-iris-match/internal/matcher"
	"go-iris-match/internal/observer"
)

// PromptText is shown before reading a replacement input path
const PromptText = "Please enter the path of the input eye: "

// ConsolePrompt reads the retry input path from a terminal. It is not safe
// for concurrent use.
type ConsolePrompt struct {
	in  *bufio.Reader
	out io.Writer

	// read left running by a cancelled call; the next call collects it
	pending chan lineResult
}

// NewConsolePrompt creates a prompt reading from in and writing to out
func NewConsolePrompt(in io.Reader, out io.Writer) *ConsolePrompt {
	return &ConsolePrompt{
		in:  bufio.NewReader(in),
		out: out,
	}
}

type lineResult struct {
	line string
	err  error
}

// NextInputPath prompts until a non-blank line is entered. Surrounding
// quotes are removed. Running out of input is an input error.
func (p *ConsolePrompt) NextInputPath(ctx context.Context, previous matcher.Attempt) (string, error) {
	for {
		if _, err := io.WriteString(p.out, PromptText); err != nil {
			return "", apperrors.NewInputError("failed to write prompt", err)
		}

		line, err := p.readLine(ctx)
		if path := CleanPath(line); path != "" {
			return path, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", apperrors.NewInputError("no input path entered before end of input", err)
			}
			return "", apperrors.NewInputError("failed to read input path", err)
		}
	}
}

// readLine returns the next line, or ctx's error if it ends first. At most
// one goroutine reads from in at a time.
func (p *ConsolePrompt) readLine(ctx context.Context) (string, error) {
	if p.pending == nil {
		ch := make(chan lineResult, 1)
		go func() {
			line, err := p.in.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
		p.pending = ch
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-p.pending:
		p.pending = nil
		return res.line, res.err
	}
}

// CleanPath trims whitespace and one pair of matching surrounding quotes.
func CleanPath(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

// ConsoleReporter prints one result line per scored attempt
type ConsoleReporter struct {
	mu          sync.Mutex
	out         io.Writer
	rejectBelow float64
}

// NewConsoleReporter creates a reporter. rejectBelow is quoted in the
// automatic failure message.
func NewConsoleReporter(out io.Writer, rejectBelow float64) *ConsoleReporter {
	return &ConsoleReporter{out: out, rejectBelow: rejectBelow}
}

// OnEvent prints attempt results and ignores everything else
func (r *ConsoleReporter) OnEvent(ctx context.Context, event observer.MatchEvent) {
	if event.EventType != observer.AttemptScored {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, r.Line(event.Score, matcher.Decision(event.Decision)))
}

// GetObserverName returns the observer name
func (r *ConsoleReporter) GetObserverName() string {
	return "console_reporter"
}

// Line renders the result line for one attempt
func (r *ConsoleReporter) Line(score float64, decision matcher.Decision) string {
	prefix := fmt.Sprintf("Match percentage %s %%.", FormatPercentage(score))
	switch decision {
	case matcher.DecisionRejectBelowFloor:
		return fmt.Sprintf("%s Percentage is below automatic failure threshold (%s%%). Match unsuccessful.",
			prefix, strconv.FormatFloat(r.rejectBelow, 'g', -1, 64))
	case matcher.DecisionAccept:
		return prefix + " Match successful."
	case matcher.DecisionRetry:
		return prefix + " Match unsuccessful. You have one attempt remaining."
	default:
		return prefix + " Match unsuccessful."
	}
}

// FormatPercentage renders a score with twelve significant digits, always
// showing a fractional part for whole numbers (100 -> "100.0").
func FormatPercentage(score float64) string {
	s := strconv.FormatFloat(score, 'g', 12, 64)
	if !strings.ContainsAny(s, ".eIN") {
		s += ".0"
	}
	return s
}
