// Package server exposes the schedule pipelines over HTTP using gin.
//
// Handlers are thin: they parse query parameters into a view state, call the shared app
// components and encode the result. Data that cannot be found is reported as 404 so a
// client can show an empty state.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pfrederiksen/rec-schedule/internal/app"
	"github.com/pfrederiksen/rec-schedule/internal/event"
	"github.com/pfrederiksen/rec-schedule/internal/facility"
	"github.com/pfrederiksen/rec-schedule/internal/filter"
	"github.com/pfrederiksen/rec-schedule/internal/geo"
	"github.com/pfrederiksen/rec-schedule/internal/layout"
	"github.com/pfrederiksen/rec-schedule/internal/logger"
	"github.com/pfrederiksen/rec-schedule/internal/schedule"
	"github.com/pfrederiksen/rec-schedule/internal/view"
)

// RequestTimeout bounds every handler, including location lookup and routing calls.
const RequestTimeout = 30 * time.Second

// Server holds API dependencies
type Server struct {
	app *app.App
}

// New creates a server over a.
func New(a *app.App) *Server {
	return &Server{app: a}
}

// Handler returns a gin engine with every route registered.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	s.SetupRoutes(r)
	return r
}

// SetupRoutes configures all API routes
func (s *Server) SetupRoutes(r *gin.Engine) {
	r.GET("/health", s.Health)

	api := r.Group("/api")
	api.GET("/facilities", s.Facilities)
	api.GET("/weeks", s.Weeks)
	api.GET("/weeks/:index", s.Week)
	api.GET("/weeks/:index/calendar.ics", s.WeekCalendar)
	api.GET("/days/:date", s.Day)
	api.GET("/days/:date/calendar.ics", s.DayCalendar)
	api.GET("/distances", s.Distances)
	api.GET("/metrics", s.Metrics)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", logger.Fields{"addr": addr})
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("HTTP server shutting down", nil)
		return srv.Shutdown(shutdownCtx)
	}
}

// Health reports service status.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"data":    s.app.Loader.Source().String(),
		"routing": s.app.Resolver.HasRouting(),
	})
}

// Facilities lists the known recreation centers.
func (s *Server) Facilities(c *gin.Context) {
	list := s.app.Facilities.All()
	c.JSON(http.StatusOK, gin.H{
		"count":      len(list),
		"facilities": list,
	})
}

// Weeks lists the published weeks.
func (s *Server) Weeks(c *gin.Context) {
	weeks, current, err := s.app.Loader.Weeks(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"current": current,
		"weeks":   weeks,
	})
}

// Week returns one week manifest. The index may be "current".
func (s *Server) Week(c *gin.Context) {
	index, ok := weekIndex(c)
	if !ok {
		return
	}
	week, err := s.app.Loader.Week(c.Request.Context(), index)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

// Day returns the laid-out day view for a date.
func (s *Server) Day(c *gin.Context) {
	state, err := s.stateFromQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	origin, err := originFromQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), RequestTimeout)
	defer cancel()

	res, err := s.app.Day(ctx, app.DayRequest{
		Date:   c.Param("date"),
		State:  state,
		Origin: s.app.Origin(ctx, origin),
		Fit:    queryBool(c, "fit"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// DayCalendar exports the filtered classes of a date as iCalendar.
func (s *Server) DayCalendar(c *gin.Context) {
	f, err := filter.FromValues(c.Request.URL.Query())
	if err != nil {
		badRequest(c, err)
		return
	}
	date := c.Param("date")
	ics, err := s.app.ExportDay(c.Request.Context(), date, f)
	if err != nil {
		writeError(c, err)
		return
	}
	writeCalendar(c, "rec-schedule-"+date+".ics", ics)
}

// WeekCalendar exports the filtered classes of a week as iCalendar.
func (s *Server) WeekCalendar(c *gin.Context) {
	index, ok := weekIndex(c)
	if !ok {
		return
	}
	f, err := filter.FromValues(c.Request.URL.Query())
	if err != nil {
		badRequest(c, err)
		return
	}
	ics, err := s.app.ExportWeek(c.Request.Context(), index, f)
	if err != nil {
		writeError(c, err)
		return
	}
	writeCalendar(c, "rec-schedule-week.ics", ics)
}

// Distances resolves facility distances for a location. With a mode parameter the same
// policy result is projected onto that travel mode.
func (s *Server) Distances(c *gin.Context) {
	origin, err := originFromQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	var mode facility.Mode
	if m := c.Query("mode"); m != "" {
		if mode, err = facility.ParseMode(m); err != nil {
			badRequest(c, err)
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), RequestTimeout)
	defer cancel()
	res := s.app.Resolver.Resolve(ctx, s.app.Origin(ctx, origin))

	if mode == "" {
		c.JSON(http.StatusOK, res)
		return
	}
	if res.Empty() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "location is required for a mode lookup"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"source":    res.Source,
		"estimated": res.Estimated,
		"mode":      mode,
		"origin":    res.Origin,
		"centers":   res.ForMode(mode),
	})
}

// Metrics returns the in-process counters, gauges and timings.
func (s *Server) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, logger.GetMetricsSnapshot())
}

func (s *Server) stateFromQuery(c *gin.Context) (view.State, error) {
	state := s.app.State()

	f, err := filter.FromValues(c.Request.URL.Query())
	if err != nil {
		return state, err
	}
	if f.Limit == 0 {
		f.Limit = state.Filter.Limit
	}
	state = state.WithFilter(*f).WithSort(f.Sort)

	if m := c.Query("mode"); m != "" {
		mode, err := facility.ParseMode(m)
		if err != nil {
			return state, err
		}
		state = state.WithMode(mode)
	}
	if w := c.Query("window"); w != "" {
		win, err := layout.ParseWindow(w)
		if err != nil {
			return state, err
		}
		state = state.WithWindow(win)
	}
	return state, nil
}

func originFromQuery(c *gin.Context) (*geo.Coordinate, error) {
	lat, lng := c.Query("lat"), c.Query("lng")
	if lat == "" && lng == "" {
		return nil, nil
	}
	if lat == "" || lng == "" {
		return nil, errors.New("lat and lng must be given together")
	}
	la, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, errors.New("invalid lat")
	}
	ln, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return nil, errors.New("invalid lng")
	}
	coord := geo.Coordinate{Lat: la, Lng: ln}
	if !coord.Valid() {
		return nil, errors.New("location out of range")
	}
	return &coord, nil
}

func weekIndex(c *gin.Context) (int, bool) {
	raw := c.Param("index")
	if raw == "current" {
		return -1, true
	}
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		badRequest(c, errors.New("week index must be a non-negative integer or \"current\""))
		return 0, false
	}
	return index, true
}

func queryBool(c *gin.Context, key string) bool {
	v, err := strconv.ParseBool(c.Query(key))
	return err == nil && v
}

func writeCalendar(c *gin.Context, filename, ics string) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, event.ErrInvalidDate):
		badRequest(c, err)
	case errors.Is(err, schedule.ErrDataUnavailable):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "status": "unavailable"})
	default:
		logger.Error("Request failed", logger.Fields{"path": c.Request.URL.Path}, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		logger.IncrCounter("http.requests")
		logger.RecordTiming("http."+strings.TrimPrefix(route, "/"), elapsed)
		logger.Debug("HTTP request", logger.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": elapsed.String(),
		})
	}
}
