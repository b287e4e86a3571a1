package dialog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/weatherbot-go/weatherbot/pkg/core/agent"
)

// ConversationalAgent is the turn pipeline the session drives.
// *agent.Agent satisfies it.
type ConversationalAgent interface {
	Question(ctx context.Context) *agent.QuestionStream
	SpokenAnswer(ctx context.Context, q *agent.QuestionStream) *agent.SpokenAnswerStream
}

type command int

const (
	cmdStart command = iota
	cmdStop
)

type turnEvent struct {
	turn string

	questionText string
	isQuestion   bool

	answer   agent.SpokenAnswer
	isAnswer bool

	questionDone bool
	answerDone   bool
	hasValue     bool
	err          error
}

// Session owns the conversation: it starts and cancels turns, folds
// their events into the transcript State, and fans out updates,
// failures, and activity changes. Starting a new turn cancels the
// previous one first; events from a cancelled turn are dropped.
type Session struct {
	agent  ConversationalAgent
	logger *slog.Logger

	commands chan command
	events   chan turnEvent

	updates  chan []DialogUpdate
	failures chan *agent.Failure
	activity chan bool

	mu    sync.Mutex
	state State

	closeOnce sync.Once
	closed    chan struct{}
	loopDone  chan struct{}
}

// NewSession creates a session over the given agent. Pass a nil logger
// for silence.
func NewSession(a ConversationalAgent, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Session{
		agent:    a,
		logger:   logger,
		commands: make(chan command, 16),
		events:   make(chan turnEvent, 100),
		updates:  make(chan []DialogUpdate, 100),
		failures: make(chan *agent.Failure, 16),
		activity: make(chan bool, 16),
		closed:   make(chan struct{}),
		loopDone: make(chan struct{}),
	}
	go s.loop()
	return s
}

// Updates returns batches of transcript updates, in production order.
func (s *Session) Updates() <-chan []DialogUpdate {
	return s.updates
}

// Failures returns at most one failure per turn.
func (s *Session) Failures() <-chan *agent.Failure {
	return s.failures
}

// Activity reports when the session is busy resolving an answer: true
// when resolution starts, false when the answer stream ends on any path.
func (s *Session) Activity() <-chan bool {
	return s.activity
}

// Question returns the question slot of the live transcript.
func (s *Session) Question() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Question()
}

// Answer returns the answer slot of the live transcript.
func (s *Session) Answer() (agent.SpokenAnswer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Answer()
}

// StartListening begins a new turn, cancelling any turn in flight.
func (s *Session) StartListening() {
	select {
	case s.commands <- cmdStart:
	case <-s.closed:
	}
}

// StopListening cancels the turn in flight, if any. Idempotent.
func (s *Session) StopListening() {
	select {
	case s.commands <- cmdStop:
	case <-s.closed:
	}
}

// Close cancels the active turn and shuts the session down. The outbound
// channels are closed once the event loop has drained.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
	<-s.loopDone
	return nil
}

func (s *Session) loop() {
	defer close(s.loopDone)
	defer close(s.updates)
	defer close(s.failures)
	defer close(s.activity)

	var (
		turn       string
		cancel     context.CancelFunc
		turnFailed bool
		active     bool
	)

	stopTurn := func() {
		if cancel != nil {
			cancel()
			cancel = nil
		}
	}
	defer stopTurn()

	setActivity := func(v bool) {
		if active == v {
			return
		}
		active = v
		select {
		case s.activity <- v:
		case <-s.closed:
		}
	}

	emitFailure := func(f *agent.Failure) {
		if turnFailed {
			return
		}
		turnFailed = true
		s.logger.Warn("turn failed", "turn", turn, "kind", f.Kind)
		select {
		case s.failures <- f:
		case <-s.closed:
		}
	}

	emitUpdates := func(batch []DialogUpdate) {
		if len(batch) == 0 {
			return
		}
		select {
		case s.updates <- batch:
		case <-s.closed:
		}
	}

	handleErr := func(err error, done func()) {
		if err == nil {
			if done != nil {
				done()
			}
			return
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Stopping a turn is not a failure.
			return
		}
		var failure *agent.Failure
		if !errors.As(err, &failure) {
			failure = &agent.Failure{Kind: agent.FailureUnknown, Message: err.Error(), Err: err}
		}
		emitFailure(failure)
	}

	for {
		select {
		case <-s.closed:
			return

		case cmd := <-s.commands:
			switch cmd {
			case cmdStart:
				stopTurn()
				setActivity(false)
				turn = uuid.NewString()
				turnFailed = false
				s.logger.Info("turn started", "turn", turn)

				s.mu.Lock()
				batch := s.state.BeginTurn()
				s.mu.Unlock()
				emitUpdates(batch)

				var ctx context.Context
				ctx, cancel = context.WithCancel(context.Background())
				s.runTurn(ctx, turn)

			case cmdStop:
				s.logger.Info("turn stopped", "turn", turn)
				stopTurn()
				// Invalidate the turn ID so in-flight events from the
				// stopped turn no longer pass the filter below.
				turn = ""
				setActivity(false)
			}

		case ev := <-s.events:
			if ev.turn != turn {
				continue
			}
			switch {
			case ev.isQuestion:
				s.mu.Lock()
				update := s.state.SetQuestion(ev.questionText)
				s.mu.Unlock()
				emitUpdates([]DialogUpdate{update})

			case ev.questionDone:
				handleErr(ev.err, func() {
					if ev.hasValue {
						setActivity(true)
					}
				})

			case ev.isAnswer:
				s.mu.Lock()
				update := s.state.SetAnswer(ev.answer)
				s.mu.Unlock()
				emitUpdates([]DialogUpdate{update})

			case ev.answerDone:
				handleErr(ev.err, nil)
				setActivity(false)
			}
		}
	}
}

// runTurn starts the agent pipeline for one turn and forwards its events,
// tagged with the turn ID, into the session's event loop.
func (s *Session) runTurn(ctx context.Context, turn string) {
	q := s.agent.Question(ctx)
	answers := s.agent.SpokenAnswer(ctx, q)

	// answerDone must reach the loop after questionDone, or the activity
	// signal raised by the question's completion would never be lowered.
	questionDone := make(chan struct{})

	go func() {
		for text := range q.Texts() {
			s.send(turnEvent{turn: turn, isQuestion: true, questionText: text})
		}
		_, hasValue, err := q.Wait(context.Background())
		s.send(turnEvent{turn: turn, questionDone: true, hasValue: hasValue, err: err})
		close(questionDone)
	}()

	go func() {
		for sa := range answers.Events() {
			s.send(turnEvent{turn: turn, isAnswer: true, answer: sa})
		}
		<-questionDone
		s.send(turnEvent{turn: turn, answerDone: true, err: answers.Err()})
	}()
}

func (s *Session) send(ev turnEvent) {
	select {
	case s.events <- ev:
	case <-s.closed:
	}
}
