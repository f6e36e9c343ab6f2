package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/luach-api/internal/calendar"
	"github.com/zapponejosh/luach-api/internal/config"
	"github.com/zapponejosh/luach-api/internal/database"
	"github.com/zapponejosh/luach-api/internal/events"
	"github.com/zapponejosh/luach-api/internal/geo"
	"github.com/zapponejosh/luach-api/internal/holiday"
	"github.com/zapponejosh/luach-api/internal/ics"
	"github.com/zapponejosh/luach-api/internal/logger"
	"github.com/zapponejosh/luach-api/internal/parasha"
	"github.com/zapponejosh/luach-api/internal/solar"
	"github.com/zapponejosh/luach-api/internal/zmanim"
)

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	db       *database.DB
	cfg      *config.Config
	logger   *slog.Logger
	engines  *zmanim.Pool
	readings *parasha.Scheduler
	holidays *holiday.Calendar
	now      func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *database.DB, cfg *config.Config, engines *zmanim.Pool, logger *slog.Logger) *Handlers {
	return &Handlers{
		db:       db,
		cfg:      cfg,
		logger:   logger,
		engines:  engines,
		readings: parasha.NewScheduler(),
		holidays: holiday.NewCalendar(),
		now:      time.Now,
	}
}

// paramError is a malformed or missing request parameter.
type paramError struct {
	msg string
}

func (e *paramError) Error() string { return e.msg }

func badParam(format string, args ...any) error {
	return &paramError{msg: fmt.Sprintf(format, args...)}
}

// fail writes the response for err: 400 for parameter errors, the mapped
// status for domain errors and 500 for anything else.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	var pe *paramError
	if errors.As(err, &pe) {
		WriteBadRequest(w, pe.msg)
		return
	}
	if writeDomainError(w, err) {
		return
	}
	logger.FromContext(r.Context(), h.logger).Error(msg,
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	WriteInternalError(w, msg)
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Check database health
	if err := h.db.Health(ctx); err != nil {
		h.logger.Warn("health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
		return
	}
	version, err := h.db.SchemaVersion(ctx)
	if err != nil {
		h.logger.Warn("schema version lookup failed", slog.Any("error", err))
	}

	WriteSuccess(w, map[string]any{
		"status":         "healthy",
		"schema_version": version,
		"pooled_engines": h.engines.Len(),
	})
}

// =============================================================================
// Calendar
// =============================================================================

type hebrewDateResponse struct {
	Date            calendar.CivilDate  `json:"date"`
	Weekday         string              `json:"weekday"`
	Hebrew          calendar.HebrewDate `json:"hebrew"`
	Formatted       string              `json:"formatted"`
	MonthName       string              `json:"month_name"`
	HebrewMonthName string              `json:"hebrew_month_name"`
	Keviah          calendar.YearType   `json:"keviah"`
	KeviahCode      string              `json:"keviah_code"`
}

func newHebrewDateResponse(d calendar.CivilDate, hd calendar.HebrewDate) hebrewDateResponse {
	k := calendar.Keviah(hd.Year)
	return hebrewDateResponse{
		Date:            d,
		Weekday:         calendar.DayName(d.Weekday()),
		Hebrew:          hd,
		Formatted:       hd.String(),
		MonthName:       calendar.MonthName(hd.Year, hd.Month),
		HebrewMonthName: calendar.HebrewMonthName(hd.Year, hd.Month),
		Keviah:          k,
		KeviahCode:      k.Code(),
	}
}

// GetHebrewDate handles GET /api/v1/hebrew-date/{date}
func (h *Handlers) GetHebrewDate(w http.ResponseWriter, r *http.Request) {
	date, err := h.pathDate(r, h.cfg.Location())
	if err != nil {
		h.fail(w, r, err, "Failed to convert date")
		return
	}

	hd, err := calendar.ToHebrew(date)
	if err != nil {
		h.fail(w, r, err, "Failed to convert date")
		return
	}

	WriteSuccess(w, newHebrewDateResponse(date, hd))
}

// GetCivilDate handles GET /api/v1/civil-date?year=5785&month=7&day=1
func (h *Handlers) GetCivilDate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var parts [3]int
	for i, key := range []string{"year", "month", "day"} {
		v := q.Get(key)
		if v == "" {
			WriteBadRequest(w, "year, month and day parameters are required")
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			WriteBadRequest(w, fmt.Sprintf("Invalid %s: %s", key, v))
			return
		}
		parts[i] = n
	}

	hd := calendar.HebrewDate{Year: parts[0], Month: calendar.Month(parts[1]), Day: parts[2]}
	date, err := calendar.ToCivil(hd)
	if err != nil {
		h.fail(w, r, err, "Failed to convert date")
		return
	}

	WriteSuccess(w, newHebrewDateResponse(date, hd))
}

// GetMolad handles GET /api/v1/molad/{year}/{month}
func (h *Handlers) GetMolad(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		WriteBadRequest(w, "Invalid year")
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		WriteBadRequest(w, "Invalid month")
		return
	}

	m, err := calendar.MoladOf(year, calendar.Month(month))
	if err != nil {
		h.fail(w, r, err, "Failed to compute molad")
		return
	}

	WriteSuccess(w, map[string]any{
		"molad":      m,
		"month_name": calendar.MonthName(year, m.Month),
		"weekday":    calendar.DayName(m.Weekday),
	})
}

// =============================================================================
// Zmanim
// =============================================================================

// place is everything a time computation needs about where it happens.
type place struct {
	Name      string
	Coord     geo.Coordinate
	TimeZone  *time.Location
	Elevation float64
	Options   zmanim.Options
	Diaspora  bool
}

// placeFromQuery reads lat, lon, tz, elevation, candle and havdalah, with
// the configured defaults for everything but the coordinate.
func (h *Handlers) placeFromQuery(r *http.Request) (place, error) {
	q := r.URL.Query()
	p := place{
		TimeZone: h.cfg.Location(),
		Options: zmanim.Options{
			CandleLightingMinutes: h.cfg.CandleLightingMinutes,
			HavdalahMinutes:       h.cfg.HavdalahMinutes,
		},
		Diaspora: h.cfg.Diaspora,
	}

	latStr, lonStr := q.Get("lat"), q.Get("lon")
	if latStr == "" || lonStr == "" {
		return place{}, badParam("lat and lon parameters are required")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return place{}, badParam("Invalid lat: %s", latStr)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return place{}, badParam("Invalid lon: %s", lonStr)
	}
	p.Coord = geo.Coordinate{Latitude: lat, Longitude: lon}
	p.Name = p.Coord.String()

	if tz := q.Get("tz"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return place{}, badParam("Unknown time zone: %s", tz)
		}
		p.TimeZone = loc
	}
	if v := q.Get("elevation"); v != "" {
		e, err := strconv.ParseFloat(v, 64)
		if err != nil || !solar.ValidElevation(e) {
			return place{}, badParam("Invalid elevation: %s (want 0 to %d metres)", v, solar.MaxElevation)
		}
		p.Elevation = e
	}
	if p.Options.CandleLightingMinutes, err = queryInt(r, "candle", p.Options.CandleLightingMinutes); err != nil {
		return place{}, err
	}
	if p.Options.HavdalahMinutes, err = queryInt(r, "havdalah", p.Options.HavdalahMinutes); err != nil {
		return place{}, err
	}
	if p.Diaspora, err = queryBool(r, "diaspora", p.Diaspora); err != nil {
		return place{}, err
	}
	return p, nil
}

// placeFromLocation adapts a saved location.
func placeFromLocation(l *database.Location) place {
	return place{
		Name:      l.Name,
		Coord:     l.Coordinate(),
		TimeZone:  l.TimeZone(),
		Elevation: l.Elevation,
		Options:   l.Options(),
		Diaspora:  l.Diaspora,
	}
}

type weeklyResponse struct {
	Location string `json:"location"`
	TimeZone string `json:"timezone"`
	zmanim.Zmanim
}

type dailyResponse struct {
	Location string `json:"location"`
	TimeZone string `json:"timezone"`
	zmanim.DayTimes
}

func (h *Handlers) weekly(p place, date calendar.CivilDate) (weeklyResponse, error) {
	engine, err := h.engines.For(p.Elevation)
	if err != nil {
		return weeklyResponse{}, err
	}
	z, err := engine.Weekly(p.Coord, date, p.Options)
	if err != nil {
		return weeklyResponse{}, err
	}
	return weeklyResponse{Location: p.Name, TimeZone: p.TimeZone.String(), Zmanim: z.In(p.TimeZone)}, nil
}

// GetZmanim handles GET /api/v1/zmanim?lat=&lon=&tz=&date=&candle=&havdalah=
func (h *Handlers) GetZmanim(w http.ResponseWriter, r *http.Request) {
	p, err := h.placeFromQuery(r)
	if err != nil {
		h.fail(w, r, err, "Failed to compute zmanim")
		return
	}
	date, err := h.queryDate(r, "date", p.TimeZone)
	if err != nil {
		h.fail(w, r, err, "Failed to compute zmanim")
		return
	}

	resp, err := h.weekly(p, date)
	if err != nil {
		h.fail(w, r, err, "Failed to compute zmanim")
		return
	}

	WriteSuccess(w, resp)
}

// GetDailyZmanim handles GET /api/v1/zmanim/daily?lat=&lon=&tz=&date=
func (h *Handlers) GetDailyZmanim(w http.ResponseWriter, r *http.Request) {
	p, err := h.placeFromQuery(r)
	if err != nil {
		h.fail(w, r, err, "Failed to compute zmanim")
		return
	}
	date, err := h.queryDate(r, "date", p.TimeZone)
	if err != nil {
		h.fail(w, r, err, "Failed to compute zmanim")
		return
	}

	engine, err := h.engines.For(p.Elevation)
	if err != nil {
		h.fail(w, r, err, "Failed to compute zmanim")
		return
	}
	d, err := engine.Daily(p.Coord, date)
	if err != nil {
		h.fail(w, r, err, "Failed to compute zmanim")
		return
	}

	WriteSuccess(w, dailyResponse{Location: p.Name, TimeZone: p.TimeZone.String(), DayTimes: d.In(p.TimeZone)})
}

// =============================================================================
// Readings and holidays
// =============================================================================

type parashaResponse struct {
	Name     string `json:"name"`
	Diaspora bool   `json:"diaspora"`
	parasha.Reading
}

// GetParasha handles GET /api/v1/parasha/{date}?diaspora=true
//
// A Sabbath that falls on a festival is not an error for clients: the
// response names the festival and carries no portions.
func (h *Handlers) GetParasha(w http.ResponseWriter, r *http.Request) {
	date, err := h.pathDate(r, h.cfg.Location())
	if err != nil {
		h.fail(w, r, err, "Failed to resolve parasha")
		return
	}
	diaspora, err := queryBool(r, "diaspora", h.cfg.Diaspora)
	if err != nil {
		h.fail(w, r, err, "Failed to resolve parasha")
		return
	}

	reading, err := h.readings.For(date, diaspora)
	var fe *parasha.FestivalError
	if err != nil && !errors.As(err, &fe) {
		h.fail(w, r, err, "Failed to resolve parasha")
		return
	}

	WriteSuccess(w, parashaResponse{Name: reading.Name(), Diaspora: diaspora, Reading: reading})
}

// GetHolidays handles GET /api/v1/holidays/{year}?diaspora=true
func (h *Handlers) GetHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		WriteBadRequest(w, "Invalid year")
		return
	}
	diaspora, err := queryBool(r, "diaspora", h.cfg.Diaspora)
	if err != nil {
		h.fail(w, r, err, "Failed to list holidays")
		return
	}

	list, err := h.holidays.ForYear(year, diaspora)
	if err != nil {
		h.fail(w, r, err, "Failed to list holidays")
		return
	}

	k := calendar.Keviah(year)
	WriteSuccess(w, map[string]any{
		"year":        year,
		"diaspora":    diaspora,
		"keviah":      k,
		"keviah_code": k.Code(),
		"holidays":    list,
	})
}

// =============================================================================
// Events
// =============================================================================

type eventsQuery struct {
	from     calendar.CivilDate
	days     int
	diaspora bool
	place    *place
}

// parseEventsQuery reads from, days, diaspora and either location (a saved
// location ID) or lat/lon. Without a place only holidays and portions are
// produced.
func (h *Handlers) parseEventsQuery(r *http.Request) (eventsQuery, error) {
	q := r.URL.Query()
	eq := eventsQuery{diaspora: h.cfg.Diaspora}
	tz := h.cfg.Location()

	switch {
	case q.Get("location") != "":
		id, err := strconv.ParseInt(q.Get("location"), 10, 64)
		if err != nil {
			return eventsQuery{}, badParam("Invalid location ID")
		}
		l, err := h.db.GetLocation(r.Context(), id)
		if err != nil {
			return eventsQuery{}, err
		}
		p := placeFromLocation(l)
		eq.place = &p
	case q.Get("lat") != "" || q.Get("lon") != "":
		p, err := h.placeFromQuery(r)
		if err != nil {
			return eventsQuery{}, err
		}
		eq.place = &p
	}
	if eq.place != nil {
		eq.diaspora = eq.place.Diaspora
		tz = eq.place.TimeZone
	}

	var err error
	if eq.diaspora, err = queryBool(r, "diaspora", eq.diaspora); err != nil {
		return eventsQuery{}, err
	}
	if eq.from, err = h.queryDate(r, "from", tz); err != nil {
		return eventsQuery{}, err
	}
	if eq.days, err = queryInt(r, "days", h.cfg.HorizonDays); err != nil {
		return eventsQuery{}, err
	}
	return eq, nil
}

func (h *Handlers) upcoming(eq eventsQuery) (iter.Seq[holiday.Event], error) {
	cfg := events.Config{Diaspora: eq.diaspora}
	var engine *zmanim.Engine
	if eq.place != nil {
		cfg.Location = &events.Location{
			Coordinate: eq.place.Coord,
			TimeZone:   eq.place.TimeZone,
			Options:    eq.place.Options,
		}
		var err error
		if engine, err = h.engines.For(eq.place.Elevation); err != nil {
			return nil, err
		}
	}

	agg, err := events.NewAggregator(engine, cfg)
	if err != nil {
		return nil, err
	}
	return agg.Upcoming(eq.from, eq.days)
}

// GetEvents handles GET /api/v1/events?from=&days=&location=
func (h *Handlers) GetEvents(w http.ResponseWriter, r *http.Request) {
	eq, err := h.parseEventsQuery(r)
	if err != nil {
		h.fail(w, r, err, "Failed to list events")
		return
	}
	seq, err := h.upcoming(eq)
	if err != nil {
		h.fail(w, r, err, "Failed to list events")
		return
	}

	list := slices.Collect(seq)
	if list == nil {
		list = []holiday.Event{}
	}
	resp := map[string]any{
		"from":     eq.from,
		"days":     eq.days,
		"diaspora": eq.diaspora,
		"events":   list,
	}
	if eq.place != nil {
		resp["location"] = eq.place.Name
	}
	WriteSuccess(w, resp)
}

// GetEventsICS handles GET /api/v1/events.ics with the parameters of GetEvents.
func (h *Handlers) GetEventsICS(w http.ResponseWriter, r *http.Request) {
	eq, err := h.parseEventsQuery(r)
	if err != nil {
		h.fail(w, r, err, "Failed to build calendar")
		return
	}
	seq, err := h.upcoming(eq)
	if err != nil {
		h.fail(w, r, err, "Failed to build calendar")
		return
	}

	name := "Luach"
	if eq.place != nil {
		name += " - " + eq.place.Name
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="luach.ics"`)
	if err := ics.Write(w, name, seq, h.now().UTC()); err != nil {
		// Headers are already sent.
		logger.FromContext(r.Context(), h.logger).Error("failed to write calendar",
			slog.Any("error", err))
	}
}

// =============================================================================
// Locations
// =============================================================================

// locationRequest is the body of POST and PUT. Omitted observance fields
// take the server defaults.
type locationRequest struct {
	Name            string   `json:"name"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Timezone        string   `json:"timezone"`
	Elevation       float64  `json:"elevation"`
	Diaspora        *bool    `json:"diaspora"`
	CandleMinutes   *int     `json:"candle_minutes"`
	HavdalahMinutes *int     `json:"havdalah_minutes"`
}

func (req locationRequest) location(cfg *config.Config) (*database.Location, error) {
	if req.Latitude == nil || req.Longitude == nil {
		return nil, badParam("latitude and longitude are required")
	}
	l := &database.Location{
		Name:            req.Name,
		Latitude:        *req.Latitude,
		Longitude:       *req.Longitude,
		Timezone:        req.Timezone,
		Elevation:       req.Elevation,
		Diaspora:        cfg.Diaspora,
		CandleMinutes:   cfg.CandleLightingMinutes,
		HavdalahMinutes: cfg.HavdalahMinutes,
	}
	if req.Diaspora != nil {
		l.Diaspora = *req.Diaspora
	}
	if req.CandleMinutes != nil {
		l.CandleMinutes = *req.CandleMinutes
	}
	if req.HavdalahMinutes != nil {
		l.HavdalahMinutes = *req.HavdalahMinutes
	}
	return l, nil
}

// ListLocations handles GET /api/v1/locations
func (h *Handlers) ListLocations(w http.ResponseWriter, r *http.Request) {
	list, err := h.db.ListLocations(r.Context())
	if err != nil {
		h.fail(w, r, err, "Failed to list locations")
		return
	}
	WriteSuccess(w, list)
}

// GetLocation handles GET /api/v1/locations/{id}
func (h *Handlers) GetLocation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err, "Failed to get location")
		return
	}
	l, err := h.db.GetLocation(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Failed to get location")
		return
	}
	WriteSuccess(w, l)
}

// GetLocationZmanim handles GET /api/v1/locations/{id}/zmanim?date=
func (h *Handlers) GetLocationZmanim(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err, "Failed to compute zmanim")
		return
	}
	l, err := h.db.GetLocation(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, "Failed to compute zmanim")
		return
	}
	p := placeFromLocation(l)
	date, err := h.queryDate(r, "date", p.TimeZone)
	if err != nil {
		h.fail(w, r, err, "Failed to compute zmanim")
		return
	}

	resp, err := h.weekly(p, date)
	if err != nil {
		h.fail(w, r, err, "Failed to compute zmanim")
		return
	}
	WriteSuccess(w, resp)
}

// CreateLocation handles POST /api/v1/locations
func (h *Handlers) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	l, err := req.location(h.cfg)
	if err != nil {
		h.fail(w, r, err, "Failed to create location")
		return
	}

	if err := h.db.CreateLocation(r.Context(), l); err != nil {
		h.fail(w, r, err, "Failed to create location")
		return
	}

	logger.FromContext(r.Context(), h.logger).Info("location created",
		slog.Int64("id", l.ID),
		slog.String("name", l.Name))
	WriteCreated(w, l)
}

// UpdateLocation handles PUT /api/v1/locations/{id}
func (h *Handlers) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err, "Failed to update location")
		return
	}
	var req locationRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	l, err := req.location(h.cfg)
	if err != nil {
		h.fail(w, r, err, "Failed to update location")
		return
	}
	l.ID = id

	if err := h.db.UpdateLocation(r.Context(), l); err != nil {
		h.fail(w, r, err, "Failed to update location")
		return
	}
	WriteSuccess(w, l)
}

// DeleteLocation handles DELETE /api/v1/locations/{id}
func (h *Handlers) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, err, "Failed to delete location")
		return
	}
	if err := h.db.DeleteLocation(r.Context(), id); err != nil {
		h.fail(w, r, err, "Failed to delete location")
		return
	}
	WriteSuccess(w, map[string]string{"message": "Location deleted"})
}

// =============================================================================
// Parameter helpers
// =============================================================================

// today is the current civil date in loc.
func (h *Handlers) today(loc *time.Location) calendar.CivilDate {
	return calendar.DateOf(h.now().In(loc))
}

// pathDate reads the {date} URL parameter; "today" resolves in loc.
func (h *Handlers) pathDate(r *http.Request, loc *time.Location) (calendar.CivilDate, error) {
	s := chi.URLParam(r, "date")
	if s == "today" {
		return h.today(loc), nil
	}
	d, err := calendar.ParseDateString(s)
	if err != nil {
		return calendar.CivilDate{}, badParam("Invalid date format: %s. Use YYYY-MM-DD", s)
	}
	return d, nil
}

// queryDate reads an optional date query parameter, defaulting to today in loc.
func (h *Handlers) queryDate(r *http.Request, key string, loc *time.Location) (calendar.CivilDate, error) {
	s := r.URL.Query().Get(key)
	if s == "" || s == "today" {
		return h.today(loc), nil
	}
	d, err := calendar.ParseDateString(s)
	if err != nil {
		return calendar.CivilDate{}, badParam("Invalid %s format: %s. Use YYYY-MM-DD", key, s)
	}
	return d, nil
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, badParam("Invalid %s: %s", key, s)
	}
	return n, nil
}

func queryBool(r *http.Request, key string, def bool) (bool, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, badParam("Invalid %s: %s", key, s)
	}
	return b, nil
}

func pathID(r *http.Request) (int64, error) {
	s := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, badParam("Invalid location ID: %s", s)
	}
	return id, nil
}

// decodeJSON decodes JSON request body.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("request body is empty")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
