package nlu

import "strings"

// weatherKeywords are the trigger words for the current-forecast intent.
var weatherKeywords = map[string]struct{}{
	"weather":     {},
	"forecast":    {},
	"temperature": {},
	"rain":        {},
	"raining":     {},
	"snow":        {},
	"snowing":     {},
	"cold":        {},
	"hot":         {},
	"warm":        {},
	"outside":     {},
	"umbrella":    {},
	"sunny":       {},
	"cloudy":      {},
	"windy":       {},
}

// WeatherUnit guesses the current-forecast intent from weather vocabulary.
// Confidence grows with the number of matched keywords.
type WeatherUnit struct{}

// IdentifyIntent implements DomainUnit. It abstains when the utterance
// contains no weather vocabulary.
func (WeatherUnit) IdentifyIntent(speech string, _ Language) (IntentGuess, bool) {
	matches := 0
	for _, word := range strings.Fields(strings.ToLower(speech)) {
		word = strings.Trim(word, ".,!?'\"")
		if _, ok := weatherKeywords[word]; ok {
			matches++
		}
	}
	if matches == 0 {
		return IntentGuess{}, false
	}

	confidence := 0.6 + 0.1*float64(matches-1)
	if confidence > 0.9 {
		confidence = 0.9
	}
	return IntentGuess{Intent: IntentCurrentForecast, Confidence: confidence}, true
}
