package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pfrederiksen/rec-schedule/internal/event"
	"github.com/pfrederiksen/rec-schedule/internal/logger"
)

// Well-known data file names.
const (
	MasterManifestFile = "manifest.json"
	WeekManifestFile   = "week_manifest.json"
)

// Week is a loaded week manifest with its position in the master index.
type Week struct {
	Index        int                 `json:"index"`
	DisplayRange string              `json:"display_range,omitempty"`
	Manifest     *event.WeekManifest `json:"manifest"`
}

// Loader decodes schedule data from a Source.
type Loader struct {
	src Source
}

// NewLoader creates a loader over src.
func NewLoader(src Source) *Loader {
	return &Loader{src: src}
}

// Source returns the underlying data source.
func (l *Loader) Source() Source {
	return l.src
}

// LoadMaster loads the master index of weeks.
func (l *Loader) LoadMaster(ctx context.Context) (*event.MasterManifest, error) {
	var master event.MasterManifest
	if err := l.decode(ctx, MasterManifestFile, &master); err != nil {
		return nil, err
	}
	return &master, nil
}

// LoadWeek loads a week manifest by file name.
func (l *Loader) LoadWeek(ctx context.Context, file string) (*event.WeekManifest, error) {
	var week event.WeekManifest
	if err := l.decode(ctx, file, &week); err != nil {
		return nil, err
	}
	if err := week.Validate(); err != nil {
		return nil, fmt.Errorf("invalid week manifest %s: %w", file, err)
	}
	return &week, nil
}

// LoadDay loads the day a manifest entry points to.
func (l *Loader) LoadDay(ctx context.Context, ref event.DayRef) (*event.Day, error) {
	if _, err := event.ParseDate(ref.Date); err != nil {
		return nil, err
	}
	file := ref.File
	if file == "" {
		file = event.DayFileName(ref.Date)
	}

	var day event.Day
	if err := l.decode(ctx, file, &day); err != nil {
		return nil, err
	}
	if day.Date == "" {
		day.Date = ref.Date
	}
	if day.DisplayDate == "" {
		day.DisplayDate = ref.DisplayDate
	}
	if day.DayName == "" {
		day.DayName = ref.DayName
	}
	return &day, nil
}

// LoadDate loads a day by ISO date using the conventional file name.
func (l *Loader) LoadDate(ctx context.Context, date string) (*event.Day, error) {
	return l.LoadDay(ctx, event.DayRef{Date: date})
}

// Weeks lists the weeks in the master index. Without a master index the single
// week_manifest.json is reported as week 0.
func (l *Loader) Weeks(ctx context.Context) ([]event.WeekRef, int, error) {
	master, err := l.LoadMaster(ctx)
	if err == nil && len(master.Weeks) > 0 {
		current := master.CurrentWeek
		if current < 0 || current >= len(master.Weeks) {
			current = 0
		}
		return master.Weeks, current, nil
	}
	if err != nil && !errors.Is(err, ErrDataUnavailable) {
		return nil, 0, err
	}
	return []event.WeekRef{{File: WeekManifestFile}}, 0, nil
}

// Week resolves a week by index through the master index, falling back to
// week_manifest.json when there is none. A negative index selects the current week.
func (l *Loader) Week(ctx context.Context, index int) (*Week, error) {
	weeks, current, err := l.Weeks(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 {
		index = current
	}
	if index >= len(weeks) {
		return nil, fmt.Errorf("%w: week %d out of range (have %d)", ErrDataUnavailable, index, len(weeks))
	}

	ref := weeks[index]
	manifest, err := l.LoadWeek(ctx, ref.File)
	if err != nil {
		return nil, err
	}

	logger.Debug("Loaded week manifest", logger.Fields{
		"index": index,
		"file":  ref.File,
		"days":  len(manifest.Days),
	})

	return &Week{Index: index, DisplayRange: ref.DisplayRange, Manifest: manifest}, nil
}

func (l *Loader) decode(ctx context.Context, file string, v interface{}) error {
	data, err := l.src.Fetch(ctx, file)
	if err != nil {
		if errors.Is(err, ErrDataUnavailable) {
			logger.IncrCounter("schedule.unavailable")
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", file, err)
	}
	return nil
}
