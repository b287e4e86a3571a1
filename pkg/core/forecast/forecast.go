// Package forecast holds the weather data model, unit conversion,
// summarization and the weather data provider contract.
package forecast

import (
	"github.com/weatherbot-go/weatherbot/pkg/core/location"
	"github.com/weatherbot-go/weatherbot/pkg/core/network"
	"github.com/weatherbot-go/weatherbot/pkg/core/nlu"
)

// PrecipitationKind is the form precipitation takes.
type PrecipitationKind string

const (
	Rain  PrecipitationKind = "rain"
	Snow  PrecipitationKind = "snow"
	Sleet PrecipitationKind = "sleet"
)

// Precipitation describes expected precipitation.
type Precipitation struct {
	Kind         PrecipitationKind
	Intensity    Speed
	Accumulation Distance
	Probability  float64 // in [0, 1]
}

// Wind describes wind conditions.
type Wind struct {
	Speed     Speed
	Direction Angle
}

// DayTemperature is the expected low and high for the day.
type DayTemperature struct {
	Low  Temperature
	High Temperature
}

// Forecast is an immutable snapshot of weather conditions. Optional fields
// are nil when the provider did not report them. Never mutated after
// construction.
type Forecast struct {
	ID      string // provider icon/condition identifier
	Summary string // human-readable condition summary

	Wind             *Wind
	Pressure         *Pressure
	Visibility       *Distance
	FeelsLike        *Temperature
	Temperature      *Temperature
	Precipitation    *Precipitation
	MaxPrecipitation *Precipitation
	DayTemperature   *DayTemperature
}

// WeatherService builds a fetchable forecast request for a coordinate.
type WeatherService interface {
	Current(coord location.Coordinate, lang nlu.Language) network.Request[Forecast]
}
