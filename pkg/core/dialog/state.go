// Package dialog tracks the two-slot conversation transcript and drives
// turns against a conversational agent.
package dialog

import (
	"github.com/weatherbot-go/weatherbot/pkg/core/agent"
)

// Part identifies which transcript slot an update targets.
type Part string

const (
	PartQuestion Part = "question"
	PartAnswer   Part = "answer"
)

// Action is what the presentation layer should do with the slot.
type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// DialogUpdate is one incremental instruction for the transcript view.
type DialogUpdate struct {
	Part   Part
	Action Action
}

// State holds the live transcript: at most one question and one answer.
// It is pure bookkeeping; every mutation returns the updates that
// describe it.
type State struct {
	question *string
	answer   *agent.SpokenAnswer
}

// Question returns the current question slot.
func (s *State) Question() (string, bool) {
	if s.question == nil {
		return "", false
	}
	return *s.question, true
}

// Answer returns the current answer slot.
func (s *State) Answer() (agent.SpokenAnswer, bool) {
	if s.answer == nil {
		return agent.SpokenAnswer{}, false
	}
	return *s.answer, true
}

// BeginTurn clears both slots for a new turn. The batch deletes the
// answer before the question and skips empty slots; starting with an
// empty transcript yields no updates.
func (s *State) BeginTurn() []DialogUpdate {
	var batch []DialogUpdate
	if s.answer != nil {
		batch = append(batch, DialogUpdate{Part: PartAnswer, Action: ActionDelete})
		s.answer = nil
	}
	if s.question != nil {
		batch = append(batch, DialogUpdate{Part: PartQuestion, Action: ActionDelete})
		s.question = nil
	}
	return batch
}

// SetQuestion stores a transcript revision. The first revision of a turn
// inserts, later ones update.
func (s *State) SetQuestion(text string) DialogUpdate {
	action := ActionUpdate
	if s.question == nil {
		action = ActionInsert
	}
	s.question = &text
	return DialogUpdate{Part: PartQuestion, Action: action}
}

// SetAnswer stores a spoken-answer event. The first event of a turn
// inserts, later ones update.
func (s *State) SetAnswer(sa agent.SpokenAnswer) DialogUpdate {
	action := ActionUpdate
	if s.answer == nil {
		action = ActionInsert
	}
	s.answer = &sa
	return DialogUpdate{Part: PartAnswer, Action: action}
}
