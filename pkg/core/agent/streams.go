package agent

import (
	"context"
	"sync"

	"github.com/weatherbot-go/weatherbot/pkg/core/forecast"
	"github.com/weatherbot-go/weatherbot/pkg/core/voice/tts"
)

// QuestionStream carries the transcript revisions of one listening turn.
// Texts() streams every revision; Wait() blocks for the final one.
type QuestionStream struct {
	texts chan string
	done  chan struct{}

	mu       sync.Mutex
	final    string
	hasValue bool
	err      error

	finishOnce sync.Once
}

// NewQuestionStream creates an empty question stream. Intended for
// pipeline implementations and tests; Agent.Question is the
// consumer-facing entry point.
func NewQuestionStream() *QuestionStream {
	return &QuestionStream{
		texts: make(chan string, 100),
		done:  make(chan struct{}),
	}
}

// Texts returns the channel of transcript revisions.
func (q *QuestionStream) Texts() <-chan string {
	return q.texts
}

// Done returns a channel that's closed when listening ends.
func (q *QuestionStream) Done() <-chan struct{} {
	return q.done
}

// Err returns the failure that ended the stream, if any.
func (q *QuestionStream) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.err
}

// Wait blocks until the stream completes and returns the last revision.
// The second result reports whether any revision arrived at all.
func (q *QuestionStream) Wait(ctx context.Context) (string, bool, error) {
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case <-q.done:
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.final, q.hasValue, q.err
}

// Internal methods for implementations

// Push delivers a transcript revision. Returns false if the stream ended.
func (q *QuestionStream) Push(text string) bool {
	q.mu.Lock()
	q.final = text
	q.hasValue = true
	q.mu.Unlock()
	select {
	case q.texts <- text:
		return true
	case <-q.done:
		return false
	}
}

// Fail records the failure that ends the stream.
func (q *QuestionStream) Fail(err error) {
	q.mu.Lock()
	q.err = err
	q.mu.Unlock()
	q.Finish()
}

// Finish completes the stream. Safe to call more than once.
func (q *QuestionStream) Finish() {
	q.finishOnce.Do(func() {
		close(q.texts)
		close(q.done)
	})
}

// Answer is a resolved reply to a question.
type Answer struct {
	// Icon identifies the forecast condition; empty for the fallback answer.
	Icon    string
	Summary forecast.Summary
}

// SpokenAnswer pairs an answer with the range of its spoken text
// currently being voiced.
type SpokenAnswer struct {
	Answer Answer
	Range  tts.SpokenRange
}

// SpokenAnswerStream carries the spoken-answer events of one turn.
type SpokenAnswerStream struct {
	events chan SpokenAnswer
	done   chan struct{}

	mu  sync.Mutex
	err error

	finishOnce sync.Once
}

// NewSpokenAnswerStream creates an empty spoken-answer stream.
func NewSpokenAnswerStream() *SpokenAnswerStream {
	return &SpokenAnswerStream{
		events: make(chan SpokenAnswer, 100),
		done:   make(chan struct{}),
	}
}

// Events returns the channel of spoken-answer events.
func (s *SpokenAnswerStream) Events() <-chan SpokenAnswer {
	return s.events
}

// Done returns a channel that's closed when the turn's answer ends.
func (s *SpokenAnswerStream) Done() <-chan struct{} {
	return s.done
}

// Err returns the failure that ended the stream, if any.
func (s *SpokenAnswerStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Internal methods for implementations

// Push delivers a spoken-answer event. Returns false if the stream ended.
func (s *SpokenAnswerStream) Push(e SpokenAnswer) bool {
	select {
	case s.events <- e:
		return true
	case <-s.done:
		return false
	}
}

// Fail records the failure that ends the stream.
func (s *SpokenAnswerStream) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	s.Finish()
}

// Finish completes the stream. Safe to call more than once.
func (s *SpokenAnswerStream) Finish() {
	s.finishOnce.Do(func() {
		close(s.events)
		close(s.done)
	})
}
