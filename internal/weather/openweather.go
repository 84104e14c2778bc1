package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ryosukesatoh/morning-summary/internal/provider"
)

const (
	maxForecastDays = 5
	upcomingSlots   = 3
)

// OpenWeather API response types

type owmCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type owmCurrent struct {
	Name    string         `json:"name"`
	Weather []owmCondition `json:"weather"`
	Main    struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Timezone int   `json:"timezone"`
	Dt       int64 `json:"dt"`
}

type owmForecast struct {
	List []owmSlot `json:"list"`
	City struct {
		Timezone int `json:"timezone"`
	} `json:"city"`
}

type owmSlot struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp    float64 `json:"temp"`
		TempMin float64 `json:"temp_min"`
		TempMax float64 `json:"temp_max"`
	} `json:"main"`
	Weather []owmCondition `json:"weather"`
}

type owmError struct {
	Message string `json:"message"`
}

// OpenWeatherClient fetches current weather and the 5-day/3-hour forecast
// from the OpenWeatherMap API.
type OpenWeatherClient struct {
	apiKey  string
	units   string
	client  *http.Client
	baseURL string
}

func NewOpenWeatherClient(apiKey, baseURL, units string, timeout time.Duration) *OpenWeatherClient {
	return &OpenWeatherClient{
		apiKey:  apiKey,
		units:   units,
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (c *OpenWeatherClient) Fetch(ctx context.Context, location string) (*Report, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, provider.Errorf(provider.Weather, "empty location")
	}

	var current owmCurrent
	if err := c.get(ctx, "weather", location, currentSchema, &current); err != nil {
		return nil, err
	}
	// An unresolved location is never replaced by a default one.
	if strings.TrimSpace(current.Name) == "" {
		return nil, provider.Errorf(provider.Weather, "location %q did not resolve to a city", location)
	}

	var forecast owmForecast
	if err := c.get(ctx, "forecast", location, forecastSchema, &forecast); err != nil {
		return nil, err
	}

	tz := forecast.City.Timezone
	if tz == 0 {
		tz = current.Timezone
	}
	loc := time.FixedZone(current.Name, tz)

	report := &Report{
		Location:    current.Name,
		Country:     current.Sys.Country,
		Condition:   current.Weather[0].Main,
		Description: current.Weather[0].Description,
		Temperature: current.Main.Temp,
		FeelsLike:   current.Main.FeelsLike,
		Humidity:    current.Main.Humidity,
		WindSpeed:   current.Wind.Speed,
		Units:       c.units,
		ObservedAt:  time.Unix(current.Dt, 0).In(loc),
		Forecast:    dailyForecast(forecast.List, loc),
		Upcoming:    upcoming(forecast.List, loc),
	}
	return report, nil
}

func (c *OpenWeatherClient) get(ctx context.Context, endpoint, location string, schema *jsonschema.Schema, out any) error {
	query := url.Values{}
	query.Set("q", location)
	query.Set("units", c.units)
	query.Set("appid", c.apiKey)

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return provider.Errorf(provider.Weather, "failed to create %s request: %w", endpoint, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return provider.Errorf(provider.Weather, "%s request failed: %w", endpoint, redact(err, c.apiKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return provider.Errorf(provider.Weather, "failed to read %s response: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr owmError
		_ = json.Unmarshal(body, &apiErr)
		return provider.StatusError(provider.Weather, resp.StatusCode, apiErr.Message)
	}

	return provider.DecodeValidated(provider.Weather, schema, body, out)
}

// dailyForecast groups the 3-hour slots by local calendar date. Each day
// takes the extreme temperatures and its most frequent condition.
func dailyForecast(slots []owmSlot, loc *time.Location) []DayForecast {
	type dayAcc struct {
		forecast DayForecast
		counts   map[string]int
		order    []string
	}

	var days []*dayAcc
	index := make(map[string]*dayAcc)

	for _, s := range slots {
		t := time.Unix(s.Dt, 0).In(loc)
		key := t.Format("2006-01-02")
		cond := s.Weather[0].Main

		acc, ok := index[key]
		if !ok {
			if len(days) == maxForecastDays {
				break
			}
			acc = &dayAcc{
				forecast: DayForecast{
					Date: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc),
					Day:  t.Weekday().String()[:3],
					High: s.Main.TempMax,
					Low:  s.Main.TempMin,
				},
				counts: make(map[string]int),
			}
			index[key] = acc
			days = append(days, acc)
		}

		if s.Main.TempMax > acc.forecast.High {
			acc.forecast.High = s.Main.TempMax
		}
		if s.Main.TempMin < acc.forecast.Low {
			acc.forecast.Low = s.Main.TempMin
		}
		if acc.counts[cond] == 0 {
			acc.order = append(acc.order, cond)
		}
		acc.counts[cond]++
	}

	out := make([]DayForecast, 0, len(days))
	for _, acc := range days {
		best := ""
		for _, cond := range acc.order {
			if best == "" || acc.counts[cond] > acc.counts[best] {
				best = cond
			}
		}
		acc.forecast.Condition = best
		out = append(out, acc.forecast)
	}
	return out
}

func upcoming(slots []owmSlot, loc *time.Location) []Interval {
	n := min(len(slots), upcomingSlots)
	out := make([]Interval, 0, n)
	for _, s := range slots[:n] {
		cond := s.Weather[0].Description
		if cond == "" {
			cond = s.Weather[0].Main
		}
		out = append(out, Interval{
			Time:        time.Unix(s.Dt, 0).In(loc),
			Temperature: s.Main.Temp,
			Condition:   cond,
		})
	}
	return out
}

// redact keeps the API key out of error messages, which url.Error would
// otherwise include with the full request URL.
func redact(err error, secret string) error {
	if secret == "" || !strings.Contains(err.Error(), secret) {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), secret, "REDACTED"))
}
