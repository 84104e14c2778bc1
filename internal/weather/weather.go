package weather

import (
	"context"
	"time"
)

// Report is the weather for one location at the time of the run.
type Report struct {
	Location    string
	Country     string
	Condition   string // short label, e.g. "Snow"
	Description string // e.g. "light snow"
	Temperature float64
	FeelsLike   float64
	Humidity    float64
	WindSpeed   float64
	Units       string
	ObservedAt  time.Time
	Forecast    []DayForecast
	Upcoming    []Interval
}

// DayForecast summarizes one calendar day in the location's timezone.
type DayForecast struct {
	Date      time.Time
	Day       string
	Condition string
	High      float64
	Low       float64
}

// Interval is a single forecast slot for the next few hours.
type Interval struct {
	Time        time.Time
	Temperature float64
	Condition   string
}

// Provider fetches current conditions and a forecast for a location.
type Provider interface {
	Fetch(ctx context.Context, location string) (*Report, error)
}

// TempUnit returns the temperature suffix for the report's units.
func (r *Report) TempUnit() string {
	if r.Units == "metric" {
		return "°C"
	}
	return "°F"
}

// SpeedUnit returns the wind speed unit for the report's units.
func (r *Report) SpeedUnit() string {
	if r.Units == "metric" {
		return "m/s"
	}
	return "mph"
}
