package cli

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/pfrederiksen/rec-schedule/internal/app"
	"github.com/pfrederiksen/rec-schedule/internal/distance"
	"github.com/pfrederiksen/rec-schedule/internal/event"
	"github.com/pfrederiksen/rec-schedule/internal/facility"
	"github.com/pfrederiksen/rec-schedule/internal/schedule"
	"github.com/pfrederiksen/rec-schedule/internal/view"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatHTML OutputFormat = "html"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatHTML:
		return f, nil
	}
	return "", fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'html')", s)
}

// WriteDay writes a day view in the specified format
func WriteDay(w io.Writer, res *app.DayResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, res)
	case FormatHTML:
		return dayTemplate.Execute(w, res.View)
	case FormatText:
		return writeDayText(w, res, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeDayText outputs a day as human-readable text
func writeDayText(w io.Writer, res *app.DayResult, verbose bool) error {
	v := res.View

	title := v.Date
	if v.DayName != "" && v.DisplayDate != "" {
		title = fmt.Sprintf("%s, %s (%s)", v.DayName, v.DisplayDate, v.Date)
	}
	fmt.Fprintln(w, title)
	fmt.Fprintf(w, "Filters: %s\n", v.Filter)
	if verbose {
		fmt.Fprintf(w, "Window: %s\n", v.Window)
		fmt.Fprintf(w, "Distances: %s\n", distanceSource(res.Distances))
	}

	if v.Empty {
		fmt.Fprintln(w, "\nNo classes match.")
		return nil
	}

	for _, g := range v.Groups {
		fmt.Fprintf(w, "\n%s", g.Name)
		if g.Distance != nil {
			fmt.Fprintf(w, " (%s)", recordLabel(*g.Distance, v.Mode))
		}
		fmt.Fprintln(w)

		for _, p := range g.Events {
			status := ""
			if p.Event.Cancelled {
				status = "  CANCELLED"
			}
			fmt.Fprintf(w, "  %7s-%-7s  %s%s\n", p.StartLabel, p.EndLabel, p.Event.Title, status)
			if !verbose {
				continue
			}
			if p.Event.Instructor != "" {
				fmt.Fprintf(w, "                    Instructor: %s\n", p.Event.Instructor)
			}
			if p.Event.Studio != "" {
				fmt.Fprintf(w, "                    Studio: %s\n", p.Event.Studio)
			}
			if p.Position.TotalColumns > 1 {
				fmt.Fprintf(w, "                    Column: %d of %d\n", p.Position.Column+1, p.Position.TotalColumns)
			}
			if p.Description != "" {
				for _, line := range strings.Split(p.Description, "\n") {
					fmt.Fprintf(w, "                    %s\n", line)
				}
			}
		}
	}

	fmt.Fprintf(w, "\nTotal: %d classes at %d facilities\n", v.EventCount, len(v.Groups))
	return nil
}

// WriteWeeks writes the week index and, when week is set, its days.
func WriteWeeks(w io.Writer, weeks []event.WeekRef, current int, week *schedule.Week, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, struct {
			Current int             `json:"current"`
			Weeks   []event.WeekRef `json:"weeks"`
			Week    *schedule.Week  `json:"week,omitempty"`
		}{current, weeks, week})
	}

	for i, ref := range weeks {
		marker := " "
		if i == current {
			marker = "*"
		}
		label := ref.DisplayRange
		if label == "" {
			label = ref.File
		}
		fmt.Fprintf(w, "%s %d  %s\n", marker, i, label)
	}

	if week == nil {
		return nil
	}
	fmt.Fprintf(w, "\nWeek %d:\n", week.Index)
	for i, d := range week.Manifest.Days {
		fmt.Fprintf(w, "  %d  %-9s  %-12s  %s", i, d.DayName, d.DisplayDate, d.Date)
		if d.EventCount > 0 {
			fmt.Fprintf(w, "  (%d classes)", d.EventCount)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// WriteDistances writes a distance result. When mode is set only that mode is shown.
func WriteDistances(w io.Writer, res *distance.Result, mode facility.Mode, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, res)
	}

	fmt.Fprintf(w, "Distances: %s\n", distanceSource(res))
	if res.Origin != nil {
		fmt.Fprintf(w, "Origin: %s\n", res.Origin)
	}
	if res.Empty() {
		fmt.Fprintln(w, "\nNo distances available. Set a location with --location or --ip-location.")
		return nil
	}

	modes := facility.Modes
	if mode != "" {
		modes = []facility.Mode{mode}
	}

	fmt.Fprintln(w)
	for _, c := range res.Centers {
		fmt.Fprintf(w, "%-42s", c.Name)
		for _, m := range modes {
			rec := c.Get(m)
			if rec.IsZero() {
				fmt.Fprintf(w, "  %-26s", string(m)+": n/a")
				continue
			}
			fmt.Fprintf(w, "  %-26s", recordLabel(rec, m))
		}
		fmt.Fprintln(w)
	}
	return nil
}

func recordLabel(rec facility.Record, mode facility.Mode) string {
	label := fmt.Sprintf("%.1f mi, %s %s", rec.Miles, rec.TimeLabel, mode)
	if rec.Estimated {
		label = "~" + label
	}
	return label
}

func distanceSource(res *distance.Result) string {
	if res == nil {
		return string(distance.SourceNone)
	}
	s := string(res.Source)
	if res.Estimated {
		s += " (estimated)"
	}
	if res.Stale {
		s += " (stale)"
	}
	return s
}

var dayFuncMap = template.FuncMap{
	"num": func(f float64) string { return fmt.Sprintf("%.1f", f) },
	"hourLabel": func(h int) string {
		return event.FormatClock(h * 60)
	},
	"hourTop": func(h int, v view.DayView) string {
		return fmt.Sprintf("%.1f", float64(h*60-v.Window.Start)/60*view.HourHeight)
	},
	"gridHeight": func(v view.DayView) string {
		return fmt.Sprintf("%.1f", float64(v.Window.End-v.Window.Start)/60*view.HourHeight)
	},
	"distance": func(rec *facility.Record, mode facility.Mode) string {
		if rec == nil {
			return ""
		}
		return recordLabel(*rec, mode)
	},
}

var dayTemplate = template.Must(template.New("day").Funcs(dayFuncMap).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.DayName}} {{.DisplayDate}}</title>
<style>
body { font-family: sans-serif; }
.grid { display: flex; gap: 8px; }
.hours, .facility-body { position: relative; }
.facility { flex: 1; min-width: 160px; }
.event { position: absolute; box-sizing: border-box; border: 1px solid #4a7; background: #dfe; font-size: 12px; overflow: hidden; }
.event.cancelled { background: #eee; border-color: #aaa; text-decoration: line-through; }
.hour { position: absolute; font-size: 11px; color: #666; }
</style>
</head>
<body>
<h1 class="day" data-date="{{.Date}}">{{.DayName}}, {{.DisplayDate}}</h1>
<p class="filters">{{.Filter}}</p>
{{if .Empty}}<p class="empty">No classes match.</p>{{else}}
<div class="grid">
<div class="hours" style="height: {{gridHeight .}}px; width: 60px">
{{range .Hours}}<div class="hour" style="top: {{hourTop . $}}px">{{hourLabel .}}</div>
{{end}}</div>
{{range .Groups}}<div class="facility" data-name="{{.Name}}">
<h2>{{.Name}}</h2>
{{with .Distance}}<p class="distance">{{distance . $.Mode}}</p>{{end}}
<div class="facility-body" style="height: {{gridHeight $}}px">
{{range .Events}}<div class="event{{if .Event.Cancelled}} cancelled{{end}}" id="{{.ID}}" style="top: {{num .Rect.Top}}px; height: {{num .Rect.Height}}px; left: {{num .Rect.Left}}%; width: {{num .Rect.Width}}%"{{if .Description}} title="{{.Description}}"{{end}}>
<span class="time">{{.StartLabel}}-{{.EndLabel}}</span> <span class="title">{{.Event.Title}}</span>{{with .Event.Instructor}} <span class="instructor">{{.}}</span>{{end}}
</div>
{{end}}</div>
</div>
{{end}}</div>
{{end}}
</body>
</html>
`))
