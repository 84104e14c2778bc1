package report

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/ryosukesatoh/morning-summary/internal/advisory"
	"github.com/ryosukesatoh/morning-summary/internal/news"
	"github.com/ryosukesatoh/morning-summary/internal/weather"
)

// NewsUnavailable marks a report whose news section could not be fetched.
const NewsUnavailable = "News unavailable"

const rule = "=================================================="

// SummaryReport is the composed daily summary. It is not modified after
// Compose returns.
type SummaryReport struct {
	Subject       string
	Text          string
	HTML          string
	Location      string
	Date          time.Time
	Severity      advisory.Severity
	NewsAvailable bool
}

// Input is everything a report is built from. A nil Digest means the news
// provider failed.
type Input struct {
	Weather  *weather.Report
	Advisory advisory.RoadAdvisory
	Digest   *news.Digest
	Now      time.Time
}

// Compose renders the report. Sections always appear in the same order:
// weather, road advisory, then news or the unavailable note.
func Compose(in Input) *SummaryReport {
	date := in.Now.Format("Monday, January 2, 2006")
	return &SummaryReport{
		Subject:       fmt.Sprintf("Daily Morning Summary - %s - %s", in.Weather.Location, date),
		Text:          buildText(in, date),
		HTML:          buildHTML(in, date),
		Location:      in.Weather.Location,
		Date:          in.Now,
		Severity:      in.Advisory.Severity,
		NewsAvailable: in.Digest != nil,
	}
}

func buildText(in Input, date string) string {
	w := in.Weather
	var sb strings.Builder

	sb.WriteString(rule + "\n")
	sb.WriteString("DAILY MORNING SUMMARY\n")
	sb.WriteString(date + "\n")
	sb.WriteString(rule + "\n\n")

	sb.WriteString("WEATHER REPORT\n")
	sb.WriteString(rule + "\n\n")
	fmt.Fprintf(&sb, "Location: %s\n", locationName(w))
	fmt.Fprintf(&sb, "Current Temperature: %.0f%s (feels like %.0f%s)\n", w.Temperature, w.TempUnit(), w.FeelsLike, w.TempUnit())
	fmt.Fprintf(&sb, "Conditions: %s\n", conditionText(w))
	fmt.Fprintf(&sb, "Humidity: %.0f%%\n", w.Humidity)
	fmt.Fprintf(&sb, "Wind Speed: %.1f %s\n\n", w.WindSpeed, w.SpeedUnit())

	if len(w.Upcoming) > 0 {
		sb.WriteString("NEXT HOURS:\n")
		for _, iv := range w.Upcoming {
			fmt.Fprintf(&sb, "  %s: %.0f%s - %s\n", iv.Time.Format("03:04 PM"), iv.Temperature, w.TempUnit(), titleCase(iv.Condition))
		}
		sb.WriteString("\n")
	}

	if len(w.Forecast) > 0 {
		fmt.Fprintf(&sb, "%d-DAY FORECAST:\n", len(w.Forecast))
		for _, d := range w.Forecast {
			fmt.Fprintf(&sb, "  %s %s: %s, high %.0f%s / low %.0f%s\n",
				d.Day, d.Date.Format("01/02"), d.Condition, d.High, w.TempUnit(), d.Low, w.TempUnit())
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "ROAD CONDITIONS: %s\n", strings.ToUpper(string(in.Advisory.Severity)))
	sb.WriteString(in.Advisory.Explanation + "\n\n")

	sb.WriteString("POLITICAL HIGHLIGHTS\n")
	sb.WriteString(rule + "\n\n")
	switch {
	case in.Digest == nil:
		sb.WriteString(NewsUnavailable + ": headlines could not be fetched today.\n\n")
	case len(in.Digest.Headlines) == 0:
		sb.WriteString("No political news available today.\n\n")
	default:
		for i, h := range in.Digest.Headlines {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, h.Title)
			fmt.Fprintf(&sb, "   Source: %s\n", h.Source)
			if h.Description != "" {
				fmt.Fprintf(&sb, "   %s\n", h.Description)
			}
			fmt.Fprintf(&sb, "   Read more: %s\n\n", h.URL)
		}
	}

	sb.WriteString(rule + "\n")
	sb.WriteString("Have a great day!\n")
	sb.WriteString(rule + "\n")
	return sb.String()
}

func buildHTML(in Input, date string) string {
	w := in.Weather
	esc := html.EscapeString
	var sb strings.Builder

	sb.WriteString(`<!DOCTYPE html><html><head><style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 700px; margin: 0 auto; padding: 20px; color: #333; }
h1 { color: #1a1a2e; border-bottom: 2px solid #e94560; padding-bottom: 10px; }
h2 { color: #16213e; }
.weather { background: #f0f0f0; padding: 15px; border-radius: 8px; margin-bottom: 20px; }
.advisory { border-left: 4px solid; padding: 10px 15px; margin-bottom: 20px; }
.advisory.normal { border-color: #2e7d32; }
.advisory.caution { border-color: #f9a825; }
.advisory.hazardous { border-color: #c62828; background: #fdecea; }
.headline { border: 1px solid #ddd; border-radius: 8px; padding: 15px; margin-bottom: 15px; }
.meta { color: #666; font-size: 0.9em; }
.unavailable { color: #c62828; }
</style></head><body>`)

	sb.WriteString("<h1>Daily Morning Summary</h1>")
	fmt.Fprintf(&sb, "<p><em>%s</em></p>", esc(date))

	sb.WriteString(`<div class="weather"><h2>Weather Report</h2><ul>`)
	fmt.Fprintf(&sb, "<li>Location: %s</li>", esc(locationName(w)))
	fmt.Fprintf(&sb, "<li>Current Temperature: %.0f%s (feels like %.0f%s)</li>", w.Temperature, w.TempUnit(), w.FeelsLike, w.TempUnit())
	fmt.Fprintf(&sb, "<li>Conditions: %s</li>", esc(conditionText(w)))
	fmt.Fprintf(&sb, "<li>Humidity: %.0f%%</li>", w.Humidity)
	fmt.Fprintf(&sb, "<li>Wind Speed: %.1f %s</li>", w.WindSpeed, w.SpeedUnit())
	sb.WriteString("</ul>")
	if len(w.Forecast) > 0 {
		sb.WriteString("<table><tr><th>Day</th><th>Conditions</th><th>High</th><th>Low</th></tr>")
		for _, d := range w.Forecast {
			fmt.Fprintf(&sb, "<tr><td>%s %s</td><td>%s</td><td>%.0f%s</td><td>%.0f%s</td></tr>",
				esc(d.Day), d.Date.Format("01/02"), esc(d.Condition), d.High, w.TempUnit(), d.Low, w.TempUnit())
		}
		sb.WriteString("</table>")
	}
	sb.WriteString("</div>")

	fmt.Fprintf(&sb, `<div class="advisory %s"><h2>Road Conditions: %s</h2><p>%s</p></div>`,
		esc(string(in.Advisory.Severity)), esc(in.Advisory.Severity.Label()), esc(in.Advisory.Explanation))

	sb.WriteString("<h2>Political Highlights</h2>")
	switch {
	case in.Digest == nil:
		fmt.Fprintf(&sb, `<p class="unavailable">%s: headlines could not be fetched today.</p>`, NewsUnavailable)
	case len(in.Digest.Headlines) == 0:
		sb.WriteString("<p>No political news available today.</p>")
	default:
		for i, h := range in.Digest.Headlines {
			sb.WriteString(`<div class="headline">`)
			fmt.Fprintf(&sb, `<h3>%d. <a href="%s">%s</a></h3>`, i+1, esc(h.URL), esc(h.Title))
			fmt.Fprintf(&sb, `<div class="meta">%s</div>`, esc(h.Source))
			if h.Description != "" {
				fmt.Fprintf(&sb, "<p>%s</p>", esc(h.Description))
			}
			sb.WriteString("</div>")
		}
	}

	sb.WriteString("</body></html>")
	return sb.String()
}

func locationName(w *weather.Report) string {
	if w.Country == "" {
		return w.Location
	}
	return w.Location + ", " + w.Country
}

func conditionText(w *weather.Report) string {
	if w.Description != "" {
		return titleCase(w.Description)
	}
	return w.Condition
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}
	return strings.Join(words, " ")
}
