package forecast

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/weatherbot-go/weatherbot/pkg/core/location"
	"github.com/weatherbot-go/weatherbot/pkg/core/network"
	"github.com/weatherbot-go/weatherbot/pkg/core/nlu"
)

const darkSkyFixture = `{
	"currently": {
		"icon": "partly-cloudy-day",
		"summary": "Partly Cloudy",
		"temperature": 14.2,
		"apparentTemperature": 13.1,
		"pressure": 1016.8,
		"visibility": 16.09,
		"windSpeed": 3.4,
		"windBearing": 250,
		"precipType": "rain",
		"precipIntensity": 0.2,
		"precipProbability": 0.45
	},
	"daily": {
		"data": [{
			"temperatureMin": 9.4,
			"temperatureMax": 18.9,
			"precipType": "rain",
			"precipIntensity": 0.1,
			"precipIntensityMax": 1.3,
			"precipProbability": 0.7
		}]
	}
}`

func TestDarkSkyCurrent(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(darkSkyFixture))
	}))
	defer srv.Close()

	d := NewDarkSky("test-key")
	d.BaseURL = srv.URL
	req := d.Current(location.Coordinate{Latitude: 52.52, Longitude: 13.405}, nlu.English)

	f, err := network.Load(context.Background(), network.NewClient(nil), req)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if gotPath != "/forecast/test-key/52.5200,13.4050" {
		t.Fatalf("path = %q", gotPath)
	}
	for _, part := range []string{"units=si", "lang=en"} {
		if !strings.Contains(gotQuery, part) {
			t.Fatalf("query = %q, missing %q", gotQuery, part)
		}
	}

	if f.ID != "partly-cloudy-day" || f.Summary != "Partly Cloudy" {
		t.Fatalf("identity = %q/%q", f.ID, f.Summary)
	}
	if f.Temperature == nil || f.Temperature.Value != 14.2 || f.Temperature.Unit != Celsius {
		t.Fatalf("temperature = %v, want 14.2°C", f.Temperature)
	}
	if f.FeelsLike == nil || f.FeelsLike.Value != 13.1 {
		t.Fatalf("feels like = %v, want 13.1°C", f.FeelsLike)
	}
	if f.Pressure == nil || f.Pressure.Unit != Hectopascals {
		t.Fatalf("pressure = %v, want hPa", f.Pressure)
	}
	if f.Wind == nil || f.Wind.Speed.Value != 3.4 || f.Wind.Direction.Value != 250 {
		t.Fatalf("wind = %v", f.Wind)
	}
	if f.Precipitation == nil || f.Precipitation.Kind != Rain ||
		f.Precipitation.Intensity.Unit != MillimetersPerHour ||
		f.Precipitation.Probability != 0.45 {
		t.Fatalf("precipitation = %v", f.Precipitation)
	}
	if f.DayTemperature == nil || f.DayTemperature.Low.Value != 9.4 || f.DayTemperature.High.Value != 18.9 {
		t.Fatalf("day temperature = %v", f.DayTemperature)
	}
	if f.MaxPrecipitation == nil || f.MaxPrecipitation.Intensity.Value != 1.3 {
		t.Fatalf("max precipitation = %v, want intensity 1.3", f.MaxPrecipitation)
	}
}

func TestDarkSkyAppliesConverter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"currently": {"icon": "clear-day", "summary": "Clear", "temperature": 0}}`))
	}))
	defer srv.Close()

	d := NewDarkSky("test-key")
	d.BaseURL = srv.URL
	d.Convert = Converter{Temperature: Fahrenheit}

	f, err := network.Load(context.Background(), network.NewClient(nil), d.Current(location.Coordinate{}, nlu.English))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if f.Temperature == nil || f.Temperature.Value != 32 || f.Temperature.Unit != Fahrenheit {
		t.Fatalf("temperature = %v, want 32°F", f.Temperature)
	}
}

func TestDarkSkyMissingCurrently(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"daily": {"data": []}}`))
	}))
	defer srv.Close()

	d := NewDarkSky("test-key")
	d.BaseURL = srv.URL

	_, err := network.Load(context.Background(), network.NewClient(nil), d.Current(location.Coordinate{}, nlu.English))
	var decodeErr *network.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Load() error = %v, want DecodeError", err)
	}
}

func TestDarkSkyMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	d := NewDarkSky("test-key")
	d.BaseURL = srv.URL

	_, err := network.Load(context.Background(), network.NewClient(nil), d.Current(location.Coordinate{}, nlu.English))
	var decodeErr *network.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Load() error = %v, want DecodeError", err)
	}
}
