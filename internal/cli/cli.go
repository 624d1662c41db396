package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/rec-schedule/internal/app"
	"github.com/pfrederiksen/rec-schedule/internal/config"
	"github.com/pfrederiksen/rec-schedule/internal/facility"
	"github.com/pfrederiksen/rec-schedule/internal/filter"
	"github.com/pfrederiksen/rec-schedule/internal/layout"
	"github.com/pfrederiksen/rec-schedule/internal/logger"
	"github.com/pfrederiksen/rec-schedule/internal/schedule"
	"github.com/pfrederiksen/rec-schedule/internal/server"
	"github.com/pfrederiksen/rec-schedule/internal/view"
)

// Version is reported by --version.
var Version = "dev"

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitNoData  = 2
)

// options holds the global flags and the state built from them.
type options struct {
	configPath   string
	data         string
	stateDir     string
	format       string
	location     string
	ipLocation   bool
	static       string
	staticOrigin string
	routingURL   string
	timezone     string
	descriptions string
	verbose      bool

	out    io.Writer
	cfg    *config.Config
	app    *app.App
	output OutputFormat
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "rec-schedule",
		Short: "Browse Denver recreation center class schedules",
		Long: `A CLI for the weekly Denver recreation center class schedule.
Shows a day's classes grouped by facility, filtered and sorted by travel time,
and exports them as calendar files.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "Config file (default <state-dir>/config.yaml)")
	f.StringVar(&opts.data, "data", "", "Schedule data directory or base URL")
	f.StringVar(&opts.stateDir, "state-dir", "", "Directory for preferences and the distance cache")
	f.StringVar(&opts.format, "format", "text", "Output format: text, json or html")
	f.StringVar(&opts.location, "location", "", "Your location as lat,lng")
	f.BoolVar(&opts.ipLocation, "ip-location", false, "Approximate your location from your IP address")
	f.StringVar(&opts.static, "static", "", "Precomputed distance table (JSON)")
	f.StringVar(&opts.staticOrigin, "static-origin", "", "Origin of the distance table as lat,lng, when the file has none")
	f.StringVar(&opts.routingURL, "routing-url", "", "Routing API base URL")
	f.StringVar(&opts.timezone, "timezone", "", "Timezone for calendar export")
	f.StringVar(&opts.descriptions, "descriptions", "", "Class descriptions file (JSON)")
	f.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(
		newDayCmd(opts),
		newWeeksCmd(opts),
		newDistancesCmd(opts),
		newExportCmd(opts),
		newServeCmd(opts),
		newPrefsCmd(opts),
		newCacheCmd(opts),
	)

	return cmd
}

// setup loads configuration, applies flag overrides and builds the app.
func (o *options) setup(cmd *cobra.Command) error {
	o.out = cmd.OutOrStdout()

	format, err := ParseFormat(o.format)
	if err != nil {
		return err
	}
	o.output = format

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if err := o.applyFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg

	level := logger.ParseLevel(cfg.LogLevel)
	if o.verbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, os.Stderr))

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	o.app = a
	return nil
}

func (o *options) applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed

	if changed("data") {
		cfg.Data = o.data
	}
	if changed("state-dir") {
		cfg.StateDir = o.stateDir
	}
	if changed("static") {
		cfg.Static.Path = o.static
	}
	if changed("static-origin") {
		c, err := config.ParseOrigin(o.staticOrigin)
		if err != nil {
			return fmt.Errorf("--static-origin: %w", err)
		}
		cfg.Static.Origin = &c
	}
	if changed("location") {
		c, err := config.ParseOrigin(o.location)
		if err != nil {
			return fmt.Errorf("--location: %w", err)
		}
		cfg.SetOrigin(c.Lat, c.Lng)
	}
	if changed("ip-location") {
		cfg.Location.UseIP = o.ipLocation
	}
	if changed("routing-url") {
		cfg.Routing.BaseURL = o.routingURL
	}
	if changed("timezone") {
		cfg.Timezone = o.timezone
	}
	if changed("descriptions") {
		cfg.Descriptions = o.descriptions
	}
	return nil
}

// filterFlags are shared by day and export.
type filterFlags struct {
	facilities    []string
	activities    []string
	search        string
	hideCancelled bool
	sort          string
	limit         int
}

func (ff *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&ff.facilities, "facility", nil, "Only these facilities (repeatable or comma-separated)")
	cmd.Flags().StringSliceVar(&ff.activities, "activity", nil, "Only these activity categories")
	cmd.Flags().StringVarP(&ff.search, "search", "q", "", "Search class, instructor, studio and facility")
	cmd.Flags().BoolVar(&ff.hideCancelled, "hide-cancelled", false, "Hide cancelled classes")
	cmd.Flags().StringVar(&ff.sort, "sort", "", "Facility order: name, driving, biking or walking")
	cmd.Flags().IntVar(&ff.limit, "limit", -1, "Show at most N facilities (0 = all, default from config)")
}

func (ff *filterFlags) apply(state view.State) (view.State, error) {
	sortMode, err := filter.ParseSortMode(ff.sort)
	if err != nil {
		return state, err
	}
	for _, name := range ff.facilities {
		state = state.ToggleFacility(name)
	}
	for _, name := range ff.activities {
		state = state.ToggleActivity(name)
	}
	state = state.WithSearch(ff.search).WithHideCancelled(ff.hideCancelled)
	if sortMode != filter.SortNone {
		state = state.WithSort(sortMode)
	}
	if ff.limit >= 0 {
		state = state.WithLimit(ff.limit)
	}
	return state, nil
}

func (ff *filterFlags) filter() (*filter.Filter, error) {
	state, err := ff.apply(view.NewState())
	if err != nil {
		return nil, err
	}
	return state.Filter.Clone(), nil
}

func newDayCmd(opts *options) *cobra.Command {
	var (
		ff     filterFlags
		week   int
		day    int
		mode   string
		window string
		fit    bool
	)

	cmd := &cobra.Command{
		Use:   "day [DATE]",
		Short: "Show one day's classes grouped by facility",
		Long: `Show one day's classes grouped by facility, laid out in columns.
DATE is YYYY-MM-DD; without it the day is picked with --week and --day.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a := opts.app

			state, err := ff.apply(a.State())
			if err != nil {
				return err
			}
			if mode != "" {
				m, err := facility.ParseMode(mode)
				if err != nil {
					return err
				}
				state = state.WithMode(m)
			}
			if window != "" {
				w, err := layout.ParseWindow(window)
				if err != nil {
					return err
				}
				state = state.WithWindow(w)
			}

			date := ""
			if len(args) == 1 {
				date = args[0]
			} else {
				if week >= 0 {
					state = state.SelectWeek(week)
				}
				state = state.SelectDay(day)
				if date, err = a.DateFor(ctx, week, state.DayIndex); err != nil {
					return err
				}
			}

			res, err := a.Day(ctx, app.DayRequest{
				Date:   date,
				State:  state,
				Origin: a.Origin(ctx, nil),
				Fit:    fit,
			})
			if err != nil {
				return err
			}
			return WriteDay(opts.out, res, opts.output, opts.verbose)
		},
	}

	ff.register(cmd)
	cmd.Flags().IntVar(&week, "week", -1, "Week index (-1 = current week)")
	cmd.Flags().IntVar(&day, "day", 0, "Day index within the week")
	cmd.Flags().StringVar(&mode, "mode", "", "Travel mode shown: driving, biking or walking")
	cmd.Flags().StringVar(&window, "window", "", "Visible time range, e.g. 6am-9pm")
	cmd.Flags().BoolVar(&fit, "fit", false, "Widen the window to cover every class")
	return cmd
}

func newWeeksCmd(opts *options) *cobra.Command {
	var week int

	cmd := &cobra.Command{
		Use:   "weeks",
		Short: "List published weeks and the days of one week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			weeks, current, err := opts.app.Loader.Weeks(ctx)
			if err != nil {
				return err
			}
			w, err := opts.app.Loader.Week(ctx, week)
			if err != nil {
				return err
			}
			return WriteWeeks(opts.out, weeks, current, w, opts.output)
		},
	}

	cmd.Flags().IntVar(&week, "week", -1, "Week whose days are listed (-1 = current week)")
	return cmd
}

func newDistancesCmd(opts *options) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "distances",
		Short: "Show travel distance and time to every facility",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var m facility.Mode
			if mode != "" {
				var err error
				if m, err = facility.ParseMode(mode); err != nil {
					return err
				}
			}
			res := opts.app.Resolver.Resolve(ctx, opts.app.Origin(ctx, nil))
			return WriteDistances(opts.out, res, m, opts.output)
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Only show one mode: driving, biking or walking")
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	var (
		ff     filterFlags
		week   int
		output string
	)

	cmd := &cobra.Command{
		Use:   "export [DATE]",
		Short: "Export classes as an iCalendar (.ics) file",
		Long: `Export one day's classes, or a whole week's with --week, as an iCalendar file.
Filter flags select which classes are included.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := ff.filter()
			if err != nil {
				return err
			}

			var ics string
			switch {
			case len(args) == 1:
				ics, err = opts.app.ExportDay(ctx, args[0], f)
			case cmd.Flags().Changed("week"):
				ics, err = opts.app.ExportWeek(ctx, week, f)
			default:
				return errors.New("give a DATE or --week")
			}
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = io.WriteString(opts.out, ics)
				return err
			}
			if err := os.WriteFile(output, []byte(ics), 0644); err != nil {
				return fmt.Errorf("writing calendar: %w", err)
			}
			logger.Info("Calendar exported", logger.Fields{"file": output})
			return nil
		},
	}

	ff.register(cmd)
	cmd.Flags().IntVar(&week, "week", -1, "Export a whole week (-1 = current week)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func newServeCmd(opts *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the schedule API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = opts.cfg.Server.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(opts.app).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, schedule.ErrDataUnavailable) {
			os.Exit(ExitNoData)
		}
		os.Exit(ExitError)
	}
}
