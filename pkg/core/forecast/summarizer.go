package forecast

import (
	"fmt"
	"strings"

	"github.com/weatherbot-go/weatherbot/pkg/core/nlu"
)

// sentenceSeparator joins a summary's title and message when spoken.
const sentenceSeparator = ".\n"

// Summary is a short human-readable answer derived from a forecast.
type Summary struct {
	Title   string
	Message string
}

// SpokenText is the summary as one speakable string.
func (s Summary) SpokenText() string {
	return s.Title + sentenceSeparator + s.Message
}

// Summarizer renders forecasts into summaries.
type Summarizer struct {
	Language nlu.Language
}

// Unknown is the fixed fallback summary for unclassified utterances.
// TODO: localize based on s.Language.
func (s Summarizer) Unknown() Summary {
	return Summary{
		Title:   "Sorry",
		Message: "I don't know what you mean.",
	}
}

// Forecast summarizes current conditions. Deterministic: the same forecast
// always produces the same summary.
// TODO: localize based on s.Language.
func (s Summarizer) Forecast(f Forecast) Summary {
	var sentences []string

	if f.Temperature != nil {
		sentences = append(sentences, fmt.Sprintf("The temperature is %s.", f.Temperature.Rounded()))
	}
	if f.FeelsLike != nil {
		sentences = append(sentences, fmt.Sprintf("It feels like %s.", f.FeelsLike.Rounded()))
	}
	if f.Precipitation != nil && f.Precipitation.Probability > 0.3 {
		percent := (int(f.Precipitation.Probability*100) / 5) * 5
		sentences = append(sentences, fmt.Sprintf("There's a %d%% chance of %s right now.", percent, f.Precipitation.Kind))
	}
	if f.Pressure != nil {
		sentences = append(sentences, fmt.Sprintf("The pressure is %s.", f.Pressure))
	}

	return Summary{
		Title:   f.Summary,
		Message: strings.Join(sentences, "\n"),
	}
}
