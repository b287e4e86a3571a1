// Package nlu provides intent classification for recognized utterances.
package nlu

import "sort"

// Intent is the classified meaning of an utterance.
type Intent string

const (
	// IntentUnknown is returned when no domain unit produced a guess.
	IntentUnknown Intent = "unknown"

	// IntentCurrentForecast asks for the current weather conditions.
	IntentCurrentForecast Intent = "current_forecast"
)

// IntentGuess pairs an intent with the confidence a domain unit assigns to it.
// Confidence is in [0, 1].
type IntentGuess struct {
	Intent     Intent
	Confidence float64
}

// DomainUnit is a pluggable classifier specialized to one topic.
// It returns its best guess for the utterance, or false to abstain.
type DomainUnit interface {
	IdentifyIntent(speech string, lang Language) (IntentGuess, bool)
}

// Classifier combines a set of domain units into a single intent decision.
// Units are consulted in registration order; the highest-confidence guess
// wins, with ties resolved in favor of the earlier-registered unit.
type Classifier struct {
	language Language
	units    []DomainUnit
}

// NewClassifier creates a classifier for the given language and units.
func NewClassifier(lang Language, units ...DomainUnit) *Classifier {
	return &Classifier{
		language: lang,
		units:    units,
	}
}

// Identify classifies an utterance. It never fails: with no registered
// units, or all units abstaining, the result is IntentUnknown.
func (c *Classifier) Identify(speech string) Intent {
	parsed := c.parse(speech)

	guesses := make([]IntentGuess, 0, len(c.units))
	for _, unit := range c.units {
		if guess, ok := unit.IdentifyIntent(parsed, c.language); ok {
			guesses = append(guesses, guess)
		}
	}

	// Stable sort keeps registration order among equal confidences.
	sort.SliceStable(guesses, func(i, j int) bool {
		return guesses[i].Confidence > guesses[j].Confidence
	})

	if len(guesses) == 0 {
		return IntentUnknown
	}
	return guesses[0].Intent
}

// parse normalizes an utterance before classification. It is a pass-through
// today; tokenization and translation hook in here.
func (c *Classifier) parse(speech string) string {
	return speech
}
