// Package advisory derives a driving advisory from a weather report using a
// fixed rule table. Derive is a pure function.
package advisory

import (
	"fmt"
	"strings"

	"github.com/ryosukesatoh/morning-summary/internal/weather"
)

type Severity string

const (
	Normal    Severity = "normal"
	Caution   Severity = "caution"
	Hazardous Severity = "hazardous"
)

func (s Severity) rank() int {
	switch s {
	case Hazardous:
		return 2
	case Caution:
		return 1
	default:
		return 0
	}
}

// MoreSevere reports whether s outranks other.
func (s Severity) MoreSevere(other Severity) bool {
	return s.rank() > other.rank()
}

// Label is the capitalized severity for display.
func (s Severity) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// RoadAdvisory is the driving advice for the day.
type RoadAdvisory struct {
	Severity    Severity
	Explanation string
}

var (
	iceKeywords  = []string{"snow", "sleet", "ice", "icy", "freezing", "hail", "blizzard"}
	wetKeywords  = []string{"rain", "drizzle", "shower", "thunderstorm", "storm", "squall", "tornado"}
	fogKeywords  = []string{"fog", "mist", "haze", "smoke", "dust", "sand"}
	windKeywords = []string{"wind", "gale"}
)

// Thresholds are the unit-dependent limits the rule table compares against.
type Thresholds struct {
	Freezing  float64
	HighWind  float64
	TempUnit  string
	SpeedUnit string
}

// ThresholdsFor returns the thresholds for "imperial" or "metric" units.
func ThresholdsFor(units string) Thresholds {
	if units == "metric" {
		return Thresholds{Freezing: 0, HighWind: 11, TempUnit: "°C", SpeedUnit: "m/s"}
	}
	return Thresholds{Freezing: 32, HighWind: 25, TempUnit: "°F", SpeedUnit: "mph"}
}

type rule struct {
	severity Severity
	reason   string
}

// Derive applies the rule table to r. When several rules match, the most
// severe one sets the severity and the explanation lists every reason at
// that severity.
func Derive(r *weather.Report) RoadAdvisory {
	th := ThresholdsFor(r.Units)
	text := strings.ToLower(r.Condition + " " + r.Description)

	var matched []rule
	if r.Temperature <= th.Freezing {
		matched = append(matched, rule{Hazardous, fmt.Sprintf(
			"Temperature is at or below freezing (%.0f%s); watch for black ice.", r.Temperature, th.TempUnit)})
	}
	if containsAny(text, iceKeywords) {
		matched = append(matched, rule{Hazardous, "Snow or ice expected; roads may be slippery. Drive carefully!"})
	}
	if containsAny(text, wetKeywords) {
		matched = append(matched, rule{Caution, "Wet/slippery conditions expected. Drive carefully!"})
	}
	if containsAny(text, fogKeywords) {
		matched = append(matched, rule{Caution, "Reduced visibility. Use caution while driving!"})
	}
	if r.WindSpeed > th.HighWind || containsAny(text, windKeywords) {
		matched = append(matched, rule{Caution, fmt.Sprintf(
			"High winds (%.0f %s). Be careful with high-profile vehicles!", r.WindSpeed, th.SpeedUnit)})
	}

	if len(matched) == 0 {
		return RoadAdvisory{Severity: Normal, Explanation: "Normal driving conditions expected."}
	}

	top := Normal
	for _, m := range matched {
		if m.severity.MoreSevere(top) {
			top = m.severity
		}
	}

	var reasons []string
	for _, m := range matched {
		if m.severity == top {
			reasons = append(reasons, m.reason)
		}
	}
	return RoadAdvisory{Severity: top, Explanation: strings.Join(reasons, " ")}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
