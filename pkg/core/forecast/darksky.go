package forecast

import (
	"encoding/json"
	"fmt"

	"github.com/weatherbot-go/weatherbot/pkg/core/location"
	"github.com/weatherbot-go/weatherbot/pkg/core/network"
	"github.com/weatherbot-go/weatherbot/pkg/core/nlu"
)

const defaultDarkSkyBaseURL = "https://api.darksky.net"

// DarkSky is a point-forecast provider speaking the Dark Sky wire format.
// Responses are requested in SI units and converted with Convert.
type DarkSky struct {
	BaseURL string
	APIKey  string
	Convert Converter
}

// NewDarkSky creates a provider with the given API key.
func NewDarkSky(apiKey string) *DarkSky {
	return &DarkSky{
		BaseURL: defaultDarkSkyBaseURL,
		APIKey:  apiKey,
	}
}

// Current implements WeatherService.
func (d *DarkSky) Current(coord location.Coordinate, lang nlu.Language) network.Request[Forecast] {
	url := fmt.Sprintf(
		"%s/forecast/%s/%.4f,%.4f?units=si&exclude=minutely,hourly,alerts,flags&lang=%s",
		d.BaseURL, d.APIKey, coord.Latitude, coord.Longitude, lang.Locale(),
	)
	return network.Request[Forecast]{
		URL:   url,
		Parse: d.parse,
	}
}

type darkSkyPoint struct {
	Icon                string   `json:"icon"`
	Summary             string   `json:"summary"`
	Temperature         *float64 `json:"temperature"`
	ApparentTemperature *float64 `json:"apparentTemperature"`
	Pressure            *float64 `json:"pressure"`
	Visibility          *float64 `json:"visibility"`
	WindSpeed           *float64 `json:"windSpeed"`
	WindBearing         *float64 `json:"windBearing"`
	PrecipType          string   `json:"precipType"`
	PrecipIntensity     *float64 `json:"precipIntensity"`
	PrecipIntensityMax  *float64 `json:"precipIntensityMax"`
	PrecipAccumulation  *float64 `json:"precipAccumulation"`
	PrecipProbability   *float64 `json:"precipProbability"`
	TemperatureMin      *float64 `json:"temperatureMin"`
	TemperatureMax      *float64 `json:"temperatureMax"`
}

type darkSkyResponse struct {
	Currently *darkSkyPoint `json:"currently"`
	Daily     *struct {
		Data []darkSkyPoint `json:"data"`
	} `json:"daily"`
}

func (d *DarkSky) parse(data []byte) (Forecast, error) {
	var resp darkSkyResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return Forecast{}, &network.DecodeError{
			Expected: "a JSON forecast object",
			Actual:   "undecodable body",
			Err:      err,
		}
	}
	if resp.Currently == nil {
		return Forecast{}, &network.DecodeError{
			Expected: `an object with a "currently" block`,
			Actual:   "an object without it",
		}
	}

	current := resp.Currently
	f := Forecast{
		ID:      current.Icon,
		Summary: current.Summary,
	}

	if current.Temperature != nil {
		f.Temperature = &Temperature{Value: *current.Temperature, Unit: Celsius}
	}
	if current.ApparentTemperature != nil {
		f.FeelsLike = &Temperature{Value: *current.ApparentTemperature, Unit: Celsius}
	}
	if current.Pressure != nil {
		f.Pressure = &Pressure{Value: *current.Pressure, Unit: Hectopascals}
	}
	if current.Visibility != nil {
		f.Visibility = &Distance{Value: *current.Visibility, Unit: Kilometers}
	}
	if current.WindSpeed != nil && current.WindBearing != nil {
		f.Wind = &Wind{
			Speed:     Speed{Value: *current.WindSpeed, Unit: MetersPerSecond},
			Direction: Angle{Value: *current.WindBearing, Unit: Degrees},
		}
	}
	if p := precipitationFromPoint(current, false); p != nil {
		f.Precipitation = p
	}

	if resp.Daily != nil && len(resp.Daily.Data) > 0 {
		today := &resp.Daily.Data[0]
		if today.TemperatureMin != nil && today.TemperatureMax != nil {
			f.DayTemperature = &DayTemperature{
				Low:  Temperature{Value: *today.TemperatureMin, Unit: Celsius},
				High: Temperature{Value: *today.TemperatureMax, Unit: Celsius},
			}
		}
		if p := precipitationFromPoint(today, true); p != nil {
			f.MaxPrecipitation = p
		}
	}

	return d.Convert.ConvertForecast(f), nil
}

func precipitationFromPoint(p *darkSkyPoint, useMax bool) *Precipitation {
	intensity := p.PrecipIntensity
	if useMax && p.PrecipIntensityMax != nil {
		intensity = p.PrecipIntensityMax
	}
	if p.PrecipType == "" || intensity == nil || p.PrecipProbability == nil {
		return nil
	}

	out := &Precipitation{
		Kind:        PrecipitationKind(p.PrecipType),
		Intensity:   Speed{Value: *intensity, Unit: MillimetersPerHour},
		Probability: *p.PrecipProbability,
	}
	if p.PrecipAccumulation != nil {
		out.Accumulation = Distance{Value: *p.PrecipAccumulation, Unit: Centimeters}
	}
	return out
}
