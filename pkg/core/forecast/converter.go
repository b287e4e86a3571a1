package forecast

// Converter maps a forecast into preferred display units. Zero-valued
// fields keep the source unit. Conversion is pure and nil-preserving.
type Converter struct {
	Temperature               TemperatureUnit
	Pressure                  PressureUnit
	Visibility                DistanceUnit
	WindSpeed                 SpeedUnit
	WindDirection             AngleUnit
	PrecipitationIntensity    SpeedUnit
	PrecipitationAccumulation DistanceUnit
}

// ConvertPrecipitation converts a precipitation record.
func (c Converter) ConvertPrecipitation(p Precipitation) Precipitation {
	return Precipitation{
		Kind:         p.Kind,
		Intensity:    p.Intensity.Converted(c.PrecipitationIntensity),
		Accumulation: p.Accumulation.Converted(c.PrecipitationAccumulation),
		Probability:  p.Probability,
	}
}

// ConvertWind converts a wind record.
func (c Converter) ConvertWind(w Wind) Wind {
	return Wind{
		Speed:     w.Speed.Converted(c.WindSpeed),
		Direction: w.Direction.Converted(c.WindDirection),
	}
}

// ConvertDayTemperature converts a daily low/high pair.
func (c Converter) ConvertDayTemperature(d DayTemperature) DayTemperature {
	return DayTemperature{
		Low:  d.Low.Converted(c.Temperature),
		High: d.High.Converted(c.Temperature),
	}
}

// ConvertForecast returns the forecast with every present quantity
// expressed in the converter's target units.
func (c Converter) ConvertForecast(f Forecast) Forecast {
	out := Forecast{
		ID:      f.ID,
		Summary: f.Summary,
	}

	if f.Wind != nil {
		wind := c.ConvertWind(*f.Wind)
		out.Wind = &wind
	}
	if f.Pressure != nil {
		pressure := f.Pressure.Converted(c.Pressure)
		out.Pressure = &pressure
	}
	if f.Visibility != nil {
		visibility := f.Visibility.Converted(c.Visibility)
		out.Visibility = &visibility
	}
	if f.FeelsLike != nil {
		feelsLike := f.FeelsLike.Converted(c.Temperature)
		out.FeelsLike = &feelsLike
	}
	if f.Temperature != nil {
		temperature := f.Temperature.Converted(c.Temperature)
		out.Temperature = &temperature
	}
	if f.Precipitation != nil {
		precipitation := c.ConvertPrecipitation(*f.Precipitation)
		out.Precipitation = &precipitation
	}
	if f.MaxPrecipitation != nil {
		maxPrecipitation := c.ConvertPrecipitation(*f.MaxPrecipitation)
		out.MaxPrecipitation = &maxPrecipitation
	}
	if f.DayTemperature != nil {
		dayTemperature := c.ConvertDayTemperature(*f.DayTemperature)
		out.DayTemperature = &dayTemperature
	}
	return out
}
