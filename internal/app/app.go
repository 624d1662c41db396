// Package app wires configuration into the schedule, distance and preference components
// shared by the command-line interface and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/rec-schedule/internal/calendar"
	"github.com/pfrederiksen/rec-schedule/internal/config"
	"github.com/pfrederiksen/rec-schedule/internal/crypto"
	"github.com/pfrederiksen/rec-schedule/internal/descriptions"
	"github.com/pfrederiksen/rec-schedule/internal/distance"
	"github.com/pfrederiksen/rec-schedule/internal/event"
	"github.com/pfrederiksen/rec-schedule/internal/facility"
	"github.com/pfrederiksen/rec-schedule/internal/filter"
	"github.com/pfrederiksen/rec-schedule/internal/geo"
	"github.com/pfrederiksen/rec-schedule/internal/geocache"
	"github.com/pfrederiksen/rec-schedule/internal/layout"
	"github.com/pfrederiksen/rec-schedule/internal/locate"
	"github.com/pfrederiksen/rec-schedule/internal/logger"
	"github.com/pfrederiksen/rec-schedule/internal/preferences"
	"github.com/pfrederiksen/rec-schedule/internal/schedule"
	"github.com/pfrederiksen/rec-schedule/internal/storage"
	"github.com/pfrederiksen/rec-schedule/internal/view"
)

// App holds the long-lived components built from a Config.
type App struct {
	Config       *config.Config
	Facilities   *facility.Registry
	Loader       *schedule.Loader
	Resolver     *distance.Resolver
	GeoCache     *geocache.Cache
	Preferences  *preferences.Store
	Descriptions *descriptions.Catalog

	// Locator is nil when neither a fixed location nor IP lookup is configured.
	Locator locate.Locator
}

// New builds an App. Optional inputs that fail to load (static table, descriptions,
// stored routing key) are logged and skipped.
func New(cfg *config.Config) (*App, error) {
	store, err := storage.New(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	a := &App{
		Config:      cfg,
		Facilities:  facility.Builtin(),
		Loader:      schedule.NewLoader(schedule.NewSource(cfg.Data)),
		GeoCache:    geocache.New(store),
		Preferences: preferences.New(store, crypto.NewSealer(cfg.Passphrase)),
	}

	var static *distance.StaticTable
	if cfg.Static.Path != "" {
		static, err = distance.LoadStaticTable(cfg.Static.Path, cfg.Static.Origin)
		if err != nil {
			logger.Warn("Static distance table not loaded", logger.Fields{
				"path":  cfg.Static.Path,
				"error": err.Error(),
			})
			static = nil
		}
	}

	var router distance.Router
	if key := a.routingKey(); key != "" {
		router = distance.NewRoutingClient(key, cfg.Routing.BaseURL)
	}

	a.Resolver = distance.NewResolver(distance.Config{
		Facilities: a.Facilities,
		Cache:      a.GeoCache,
		Static:     static,
		Router:     router,
	})

	if cfg.Descriptions != "" {
		catalog, err := descriptions.Load(cfg.Descriptions)
		if err != nil {
			logger.Warn("Class descriptions not loaded", logger.Fields{
				"path":  cfg.Descriptions,
				"error": err.Error(),
			})
		} else {
			a.Descriptions = catalog
		}
	}

	switch {
	case cfg.Origin() != nil:
		a.Locator = locate.Fixed(*cfg.Origin())
	case cfg.Location.UseIP:
		a.Locator = locate.NewBounded(locate.NewIPLocator(cfg.Location.IPLookupURL))
	}

	logger.Debug("Application initialized", logger.Fields{
		"data":         a.Loader.Source().String(),
		"state_dir":    store.Dir(),
		"static":       static != nil,
		"routing":      a.Resolver.HasRouting(),
		"descriptions": a.Descriptions.Len(),
		"locator":      a.Locator != nil,
	})

	return a, nil
}

// routingKey prefers the configured key over the stored one.
func (a *App) routingKey() string {
	if a.Config.Routing.APIKey != "" {
		return a.Config.Routing.APIKey
	}
	key, err := a.Preferences.RoutingKey()
	if err != nil {
		logger.Warn("Stored routing key unavailable", logger.Fields{"error": err.Error()})
		return ""
	}
	return key
}

// State returns the initial view state with configured defaults applied.
func (a *App) State() view.State {
	return view.NewState().WithWindow(a.Config.DefaultWindow()).WithLimit(a.Config.Limit)
}

// Origin returns override when set, otherwise asks the locator. It returns nil when the
// location is unknown.
func (a *App) Origin(ctx context.Context, override *geo.Coordinate) *geo.Coordinate {
	if override != nil {
		return override
	}
	return locate.Optional(ctx, a.Locator)
}

// DateFor returns the ISO date of a day within a week. A negative week selects the current
// week; a day index past the end selects the last day.
func (a *App) DateFor(ctx context.Context, week, day int) (string, error) {
	w, err := a.Loader.Week(ctx, week)
	if err != nil {
		return "", err
	}
	days := w.Manifest.Days
	if len(days) == 0 {
		return "", fmt.Errorf("%w: week %d has no days", schedule.ErrDataUnavailable, w.Index)
	}
	if day < 0 {
		day = 0
	}
	if day >= len(days) {
		day = len(days) - 1
	}
	return days[day].Date, nil
}

// DayRequest selects and shapes one day view.
type DayRequest struct {
	Date   string
	State  view.State
	Origin *geo.Coordinate

	// Fit widens the window to cover every class of the day.
	Fit bool
}

// DayResult is a rendered day with the distances used to build it.
type DayResult struct {
	View      view.DayView     `json:"view"`
	Distances *distance.Result `json:"distances"`
}

// Day loads, filters and lays out one day.
func (a *App) Day(ctx context.Context, req DayRequest) (*DayResult, error) {
	started := time.Now()

	day, err := a.Loader.LoadDate(ctx, req.Date)
	if err != nil {
		return nil, err
	}

	state := req.State
	if req.Fit {
		state = state.WithWindow(layout.FitWindow(day.Events, state.Window))
	}

	distances := a.Resolver.Resolve(ctx, req.Origin)
	v := view.Build(*day, state, distances)
	v.Describe(a.Descriptions)

	logger.RecordTiming("app.day", time.Since(started))
	logger.Debug("Built day view", logger.Fields{
		"date":      req.Date,
		"events":    v.EventCount,
		"groups":    len(v.Groups),
		"distances": string(distances.Source),
	})

	return &DayResult{View: v, Distances: distances}, nil
}

// ExportDay renders the filtered classes of one day as an iCalendar document.
func (a *App) ExportDay(ctx context.Context, date string, f *filter.Filter) (string, error) {
	day, err := a.Loader.LoadDate(ctx, date)
	if err != nil {
		return "", err
	}
	return calendar.GenerateICS(*day, selected(*day, f), a.Config.TimeLocation())
}

// ExportWeek renders the filtered classes of a whole week. Days that cannot be loaded are
// skipped with a warning.
func (a *App) ExportWeek(ctx context.Context, week int, f *filter.Filter) (string, error) {
	w, err := a.Loader.Week(ctx, week)
	if err != nil {
		return "", err
	}

	days := make([]event.Day, 0, len(w.Manifest.Days))
	for _, ref := range w.Manifest.Days {
		day, err := a.Loader.LoadDay(ctx, ref)
		if err != nil {
			if !errors.Is(err, schedule.ErrDataUnavailable) {
				return "", err
			}
			logger.Warn("Skipping unavailable day in export", logger.Fields{"date": ref.Date})
			continue
		}
		day.Events = selected(*day, f)
		days = append(days, *day)
	}

	name := "Rec Center Schedule"
	if w.DisplayRange != "" {
		name += " " + w.DisplayRange
	}
	return calendar.GenerateWeekICS(days, a.Config.TimeLocation(), name)
}

func selected(day event.Day, f *filter.Filter) []event.Event {
	if f == nil {
		return day.Events
	}
	var out []event.Event
	for _, g := range f.Apply(day.Events, nil) {
		out = append(out, g.Events...)
	}
	return out
}
