package dialog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/weatherbot-go/weatherbot/pkg/core/agent"
	"github.com/weatherbot-go/weatherbot/pkg/core/forecast"
	"github.com/weatherbot-go/weatherbot/pkg/core/voice/tts"
)

// scriptedTurn exposes one turn's streams so a test can drive them.
type scriptedTurn struct {
	ctx context.Context
	q   *agent.QuestionStream
	s   *agent.SpokenAnswerStream
}

type fakeAgent struct {
	mu    sync.Mutex
	turns []*scriptedTurn
}

func (f *fakeAgent) Question(ctx context.Context) *agent.QuestionStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &scriptedTurn{ctx: ctx, q: agent.NewQuestionStream()}
	f.turns = append(f.turns, t)
	return t.q
}

func (f *fakeAgent) SpokenAnswer(ctx context.Context, q *agent.QuestionStream) *agent.SpokenAnswerStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := f.turns[len(f.turns)-1]
	t.s = agent.NewSpokenAnswerStream()
	return t.s
}

// turn waits for the nth turn to have been started.
func (f *fakeAgent) turn(t *testing.T, n int) *scriptedTurn {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		if len(f.turns) > n && f.turns[n].s != nil {
			turn := f.turns[n]
			f.mu.Unlock()
			return turn
		}
		f.mu.Unlock()
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("turn %d never started", n)
	return nil
}

func recvBatch(t *testing.T, ch <-chan []DialogUpdate) []DialogUpdate {
	t.Helper()
	select {
	case batch := <-ch:
		return batch
	case <-time.After(time.Second):
		t.Fatal("no update batch arrived")
		return nil
	}
}

func recvBool(t *testing.T, ch <-chan bool) bool {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("no activity change arrived")
		return false
	}
}

func answerEvent(icon string) agent.SpokenAnswer {
	return agent.SpokenAnswer{
		Answer: agent.Answer{Icon: icon, Summary: forecast.Summary{Title: "Clear"}},
		Range:  tts.SpokenRange{Start: 0, Length: 5},
	}
}

func TestSessionTurnUpdateSequence(t *testing.T) {
	fa := &fakeAgent{}
	s := NewSession(fa, nil)
	defer s.Close()

	s.StartListening()
	turn := fa.turn(t, 0)

	// First revision inserts, later ones update.
	turn.q.Push("what")
	batch := recvBatch(t, s.Updates())
	if len(batch) != 1 || batch[0] != (DialogUpdate{PartQuestion, ActionInsert}) {
		t.Fatalf("batch = %v, want a question insert", batch)
	}
	turn.q.Push("what is the weather")
	batch = recvBatch(t, s.Updates())
	if batch[0] != (DialogUpdate{PartQuestion, ActionUpdate}) {
		t.Fatalf("batch = %v, want a question update", batch)
	}
	turn.q.Finish()

	if !recvBool(t, s.Activity()) {
		t.Fatal("activity did not turn on at resolution start")
	}

	turn.s.Push(answerEvent("clear-day"))
	batch = recvBatch(t, s.Updates())
	if batch[0] != (DialogUpdate{PartAnswer, ActionInsert}) {
		t.Fatalf("batch = %v, want an answer insert", batch)
	}
	turn.s.Push(answerEvent("clear-day"))
	batch = recvBatch(t, s.Updates())
	if batch[0] != (DialogUpdate{PartAnswer, ActionUpdate}) {
		t.Fatalf("batch = %v, want an answer update", batch)
	}
	turn.s.Finish()

	if recvBool(t, s.Activity()) {
		t.Fatal("activity did not turn off when the answer ended")
	}

	if q, ok := s.Question(); !ok || q != "what is the weather" {
		t.Fatalf("question slot = %q/%v", q, ok)
	}
	if a, ok := s.Answer(); !ok || a.Answer.Icon != "clear-day" {
		t.Fatalf("answer slot = %+v/%v", a, ok)
	}

	// A new turn clears the transcript, answer before question.
	s.StartListening()
	batch = recvBatch(t, s.Updates())
	want := []DialogUpdate{
		{PartAnswer, ActionDelete},
		{PartQuestion, ActionDelete},
	}
	if len(batch) != 2 || batch[0] != want[0] || batch[1] != want[1] {
		t.Fatalf("batch = %v, want %v", batch, want)
	}
}

func TestSessionFirstTurnHasNoClearBatch(t *testing.T) {
	fa := &fakeAgent{}
	s := NewSession(fa, nil)
	defer s.Close()

	s.StartListening()
	turn := fa.turn(t, 0)
	turn.q.Push("hello")

	batch := recvBatch(t, s.Updates())
	if batch[0].Action != ActionInsert {
		t.Fatalf("first batch = %v, want the question insert, not a clear", batch)
	}
}

func TestSessionPartialTurnClearsOnlyQuestion(t *testing.T) {
	fa := &fakeAgent{}
	s := NewSession(fa, nil)
	defer s.Close()

	s.StartListening()
	turn := fa.turn(t, 0)
	turn.q.Push("unfinished")
	recvBatch(t, s.Updates())

	s.StartListening()
	batch := recvBatch(t, s.Updates())
	if len(batch) != 1 || batch[0] != (DialogUpdate{PartQuestion, ActionDelete}) {
		t.Fatalf("batch = %v, want only a question delete", batch)
	}
}

func TestSessionFailureSurfacedOnce(t *testing.T) {
	fa := &fakeAgent{}
	s := NewSession(fa, nil)
	defer s.Close()

	s.StartListening()
	turn := fa.turn(t, 0)

	failure := &agent.Failure{Kind: agent.FailureAudioAuthorizationDenied, Message: "no mic"}
	turn.q.Fail(failure)
	turn.s.Fail(failure)

	select {
	case got := <-s.Failures():
		if got.Kind != agent.FailureAudioAuthorizationDenied {
			t.Fatalf("failure kind = %q", got.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("no failure arrived")
	}

	select {
	case got := <-s.Failures():
		t.Fatalf("second failure arrived for the same turn: %v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSessionStopSuppressesCancellation(t *testing.T) {
	fa := &fakeAgent{}
	s := NewSession(fa, nil)
	defer s.Close()

	s.StartListening()
	turn := fa.turn(t, 0)

	s.StopListening()
	s.StopListening() // idempotent

	select {
	case <-turn.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("turn context was not cancelled by StopListening")
	}
	turn.q.Fail(turn.ctx.Err())
	turn.s.Fail(turn.ctx.Err())

	select {
	case got := <-s.Failures():
		t.Fatalf("cancellation surfaced as a failure: %v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSessionStopDropsLateEvents(t *testing.T) {
	fa := &fakeAgent{}
	s := NewSession(fa, nil)
	defer s.Close()

	s.StartListening()
	turn := fa.turn(t, 0)
	turn.q.Push("what")
	recvBatch(t, s.Updates())

	s.StopListening()
	select {
	case <-turn.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("turn context was not cancelled by StopListening")
	}

	// A revision still buffered when the turn was stopped must not
	// surface as an update.
	turn.q.Push("what is the weather")
	select {
	case batch := <-s.Updates():
		t.Fatalf("update %v emitted after StopListening", batch)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSessionActivityEndsWhenAnswerOutpacesQuestion(t *testing.T) {
	fa := &fakeAgent{}
	s := NewSession(fa, nil)
	defer s.Close()

	s.StartListening()
	turn := fa.turn(t, 0)
	turn.q.Push("what is the weather")
	recvBatch(t, s.Updates())

	// Finish the answer stream before the question stream; the busy
	// signal must still come up and then down in that order.
	turn.s.Finish()
	turn.q.Finish()

	if !recvBool(t, s.Activity()) {
		t.Fatal("activity did not turn on when the question completed")
	}
	if recvBool(t, s.Activity()) {
		t.Fatal("activity did not turn off when the answer ended")
	}
}

func TestSessionLatestWins(t *testing.T) {
	fa := &fakeAgent{}
	s := NewSession(fa, nil)
	defer s.Close()

	s.StartListening()
	first := fa.turn(t, 0)
	first.q.Push("first question")
	recvBatch(t, s.Updates())

	s.StartListening()
	second := fa.turn(t, 1)

	select {
	case <-first.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("first turn was not cancelled by the second")
	}

	// The clear batch for the new turn.
	batch := recvBatch(t, s.Updates())
	if batch[0] != (DialogUpdate{PartQuestion, ActionDelete}) {
		t.Fatalf("batch = %v, want the question delete", batch)
	}

	// Late events from the first turn are dropped.
	first.q.Push("stale")
	second.q.Push("second question")
	batch = recvBatch(t, s.Updates())
	if batch[0] != (DialogUpdate{PartQuestion, ActionInsert}) {
		t.Fatalf("batch = %v, want the new turn's insert", batch)
	}
	if q, _ := s.Question(); q != "second question" {
		t.Fatalf("question slot = %q, want the new turn's text", q)
	}
}

func TestSessionCloseShutsChannels(t *testing.T) {
	fa := &fakeAgent{}
	s := NewSession(fa, nil)

	s.StartListening()
	fa.turn(t, 0)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if _, ok := <-s.Updates(); ok {
		t.Fatal("updates channel still open after Close")
	}
	if _, ok := <-s.Failures(); ok {
		t.Fatal("failures channel still open after Close")
	}

	// Commands after Close are no-ops.
	s.StartListening()
	s.StopListening()
}

func TestSessionQuestionWithNoValueStaysQuiet(t *testing.T) {
	fa := &fakeAgent{}
	s := NewSession(fa, nil)
	defer s.Close()

	s.StartListening()
	turn := fa.turn(t, 0)
	turn.q.Finish()
	turn.s.Finish()

	select {
	case v := <-s.Activity():
		t.Fatalf("activity = %v for a turn with no question", v)
	case <-time.After(50 * time.Millisecond):
	}
}
