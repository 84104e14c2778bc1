package advisory

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ryosukesatoh/morning-summary/internal/weather"
)

func report(condition, description string, temp, wind float64) *weather.Report {
	return &weather.Report{
		Location:    "Chicago",
		Condition:   condition,
		Description: description,
		Temperature: temp,
		WindSpeed:   wind,
		Units:       "imperial",
	}
}

func TestChicagoSnowIsHazardous(t *testing.T) {
	adv := Derive(report("Snow", "light snow", 28, 5))

	assert.Equal(t, Hazardous, adv.Severity)
	lower := strings.ToLower(adv.Explanation)
	assert.True(t, strings.Contains(lower, "snow") || strings.Contains(lower, "ice"), "explanation %q", adv.Explanation)
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name   string
		report *weather.Report
		want   Severity
	}{
		{"clear and mild", report("Clear", "clear sky", 60, 5), Normal},
		{"clouds", report("Clouds", "overcast clouds", 45, 10), Normal},
		{"rain above freezing", report("Rain", "moderate rain", 50, 5), Caution},
		{"drizzle", report("Drizzle", "light intensity drizzle", 40, 3), Caution},
		{"thunderstorm", report("Thunderstorm", "thunderstorm with heavy rain", 70, 8), Caution},
		{"fog", report("Fog", "fog", 40, 2), Caution},
		{"mist", report("Mist", "mist", 40, 2), Caution},
		{"haze", report("Haze", "haze", 80, 2), Caution},
		{"high wind speed", report("Clear", "clear sky", 55, 30), Caution},
		{"wind exactly at threshold", report("Clear", "clear sky", 55, 25), Normal},
		{"exactly freezing", report("Clear", "clear sky", 32, 0), Hazardous},
		{"below freezing clear", report("Clear", "clear sky", 10, 0), Hazardous},
		{"just above freezing", report("Clear", "clear sky", 32.1, 0), Normal},
		{"snow above freezing", report("Snow", "wet snow", 34, 0), Hazardous},
		{"sleet", report("Snow", "sleet", 33, 0), Hazardous},
		{"freezing rain beats rain", report("Rain", "freezing rain", 33, 0), Hazardous},
		{"rain and wind below freezing", report("Rain", "heavy rain", 30, 40), Hazardous},
		{"case insensitive", report("SNOW", "HEAVY SNOW", 20, 0), Hazardous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adv := Derive(tt.report)
			assert.Equal(t, tt.want, adv.Severity)
			assert.NotEmpty(t, adv.Explanation)
		})
	}
}

func TestFreezingOrSnowAlwaysHazardous(t *testing.T) {
	conditions := []string{"Clear", "Rain", "Fog", "Clouds", "Snow"}
	for _, cond := range conditions {
		for temp := -20.0; temp <= 32; temp += 4 {
			for _, wind := range []float64{0, 40} {
				adv := Derive(report(cond, strings.ToLower(cond), temp, wind))
				assert.Equal(t, Hazardous, adv.Severity, "cond=%s temp=%v wind=%v", cond, temp, wind)
			}
		}
	}
	for temp := 33.0; temp < 90; temp += 7 {
		adv := Derive(report("Snow", "snow", temp, 0))
		assert.Equal(t, Hazardous, adv.Severity, "snow at %v", temp)
	}
}

func TestCautionAboveFreezing(t *testing.T) {
	for _, desc := range []string{"rain", "fog", "strong wind", "mist", "shower rain"} {
		for temp := 33.0; temp < 100; temp += 11 {
			adv := Derive(report("Weather", desc, temp, 0))
			assert.Equal(t, Caution, adv.Severity, fmt.Sprintf("%s at %v", desc, temp))
		}
	}
}

func TestExplanationListsOnlyWinningReasons(t *testing.T) {
	adv := Derive(report("Rain", "heavy rain", 30, 40))

	assert.Contains(t, adv.Explanation, "freezing")
	assert.NotContains(t, adv.Explanation, "Wet/slippery")
	assert.NotContains(t, adv.Explanation, "High winds")

	adv = Derive(report("Rain", "rain and fog", 50, 40))
	assert.Equal(t, Caution, adv.Severity)
	assert.Contains(t, adv.Explanation, "Wet/slippery")
	assert.Contains(t, adv.Explanation, "Reduced visibility")
	assert.Contains(t, adv.Explanation, "High winds (40 mph)")
}

func TestMetricThresholds(t *testing.T) {
	r := report("Clear", "clear sky", 0, 0)
	r.Units = "metric"
	assert.Equal(t, Hazardous, Derive(r).Severity)

	r.Temperature = 5
	assert.Equal(t, Normal, Derive(r).Severity)

	r.WindSpeed = 12
	adv := Derive(r)
	assert.Equal(t, Caution, adv.Severity)
	assert.Contains(t, adv.Explanation, "m/s")
}

func TestSeverityOrdering(t *testing.T) {
	assert.True(t, Hazardous.MoreSevere(Caution))
	assert.True(t, Caution.MoreSevere(Normal))
	assert.False(t, Normal.MoreSevere(Caution))
	assert.False(t, Caution.MoreSevere(Caution))
	assert.Equal(t, "Hazardous", Hazardous.Label())
}
