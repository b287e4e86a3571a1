package forecast

import (
	"fmt"
	"math"
	"strconv"
)

// Measurement units for forecast quantities. Each quantity type carries its
// value together with its unit and converts between units of the same
// dimension; conversion to an unrecognized unit returns the value unchanged.

type TemperatureUnit string

const (
	Celsius    TemperatureUnit = "°C"
	Fahrenheit TemperatureUnit = "°F"
	Kelvin     TemperatureUnit = "K"
)

// Temperature is a temperature measurement.
type Temperature struct {
	Value float64
	Unit  TemperatureUnit
}

// Converted returns the temperature expressed in the given unit.
func (t Temperature) Converted(unit TemperatureUnit) Temperature {
	if unit == "" || unit == t.Unit {
		return t
	}

	celsius := t.Value
	switch t.Unit {
	case Fahrenheit:
		celsius = (t.Value - 32) * 5 / 9
	case Kelvin:
		celsius = t.Value - 273.15
	}

	out := celsius
	switch unit {
	case Fahrenheit:
		out = celsius*9/5 + 32
	case Kelvin:
		out = celsius + 273.15
	}
	return Temperature{Value: out, Unit: unit}
}

// Rounded returns the temperature rounded to the nearest whole degree.
func (t Temperature) Rounded() Temperature {
	return Temperature{Value: math.Round(t.Value), Unit: t.Unit}
}

func (t Temperature) String() string {
	return formatValue(t.Value) + string(t.Unit)
}

type PressureUnit string

const (
	Hectopascals  PressureUnit = "hPa"
	InchesMercury PressureUnit = "inHg"
)

// Pressure is an atmospheric pressure measurement.
type Pressure struct {
	Value float64
	Unit  PressureUnit
}

// Converted returns the pressure expressed in the given unit.
func (p Pressure) Converted(unit PressureUnit) Pressure {
	if unit == "" || unit == p.Unit {
		return p
	}

	hpa := p.Value
	if p.Unit == InchesMercury {
		hpa = p.Value * 33.8639
	}

	out := hpa
	if unit == InchesMercury {
		out = hpa / 33.8639
	}
	return Pressure{Value: out, Unit: unit}
}

func (p Pressure) String() string {
	return formatValue(p.Value) + " " + string(p.Unit)
}

type SpeedUnit string

const (
	MetersPerSecond    SpeedUnit = "m/s"
	KilometersPerHour  SpeedUnit = "km/h"
	MilesPerHour       SpeedUnit = "mph"
	MillimetersPerHour SpeedUnit = "mm/h" // precipitation intensity
)

// Speed is a speed measurement (wind, precipitation intensity).
type Speed struct {
	Value float64
	Unit  SpeedUnit
}

// Converted returns the speed expressed in the given unit.
func (s Speed) Converted(unit SpeedUnit) Speed {
	if unit == "" || unit == s.Unit {
		return s
	}

	mps := s.Value
	switch s.Unit {
	case KilometersPerHour:
		mps = s.Value / 3.6
	case MilesPerHour:
		mps = s.Value * 0.44704
	case MillimetersPerHour:
		mps = s.Value / 3.6e6
	}

	out := mps
	switch unit {
	case KilometersPerHour:
		out = mps * 3.6
	case MilesPerHour:
		out = mps / 0.44704
	case MillimetersPerHour:
		out = mps * 3.6e6
	}
	return Speed{Value: out, Unit: unit}
}

func (s Speed) String() string {
	return formatValue(s.Value) + " " + string(s.Unit)
}

type DistanceUnit string

const (
	Meters      DistanceUnit = "m"
	Centimeters DistanceUnit = "cm"
	Kilometers  DistanceUnit = "km"
	Miles       DistanceUnit = "mi"
)

// Distance is a length measurement (visibility, accumulation).
type Distance struct {
	Value float64
	Unit  DistanceUnit
}

// Converted returns the distance expressed in the given unit.
func (d Distance) Converted(unit DistanceUnit) Distance {
	if unit == "" || unit == d.Unit {
		return d
	}

	meters := d.Value
	switch d.Unit {
	case Centimeters:
		meters = d.Value / 100
	case Kilometers:
		meters = d.Value * 1000
	case Miles:
		meters = d.Value * 1609.344
	}

	out := meters
	switch unit {
	case Centimeters:
		out = meters * 100
	case Kilometers:
		out = meters / 1000
	case Miles:
		out = meters / 1609.344
	}
	return Distance{Value: out, Unit: unit}
}

func (d Distance) String() string {
	return formatValue(d.Value) + " " + string(d.Unit)
}

type AngleUnit string

const Degrees AngleUnit = "°"

// Angle is a direction measurement.
type Angle struct {
	Value float64
	Unit  AngleUnit
}

// Converted returns the angle expressed in the given unit. Degrees is the
// only supported unit today, so this is the identity.
func (a Angle) Converted(unit AngleUnit) Angle {
	if unit == "" || unit == a.Unit {
		return a
	}
	return Angle{Value: a.Value, Unit: unit}
}

func (a Angle) String() string {
	return formatValue(a.Value) + string(a.Unit)
}

func formatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return fmt.Sprintf("%.1f", v)
}
