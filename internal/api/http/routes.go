package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-destinations/internal/badge"
	"github.com/i474232898/weather-destinations/internal/declutter"
	"github.com/i474232898/weather-destinations/internal/destination"
	"github.com/i474232898/weather-destinations/internal/geocode"
	"github.com/i474232898/weather-destinations/internal/pipeline"
	"github.com/i474232898/weather-destinations/internal/store"
	"github.com/i474232898/weather-destinations/internal/weather"
)

var validate = validator.New()

// PlaceWriter adds places to the catalog.
type PlaceWriter interface {
	Upsert(ctx context.Context, places []destination.Place) (int, error)
}

// Deps are the services the handlers call into.
type Deps struct {
	Weather  *weather.Service
	Markers  *pipeline.Service
	Places   PlaceWriter
	Geocoder geocode.Resolver
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		locReq, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, err := deps.Weather.GetLatest(locReq.toLocation())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather data for requested location")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
		}

		return c.JSON(snapshot)
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc := req.Location.toLocation()
		snapshots, err := deps.Weather.GetRange(loc, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
		}

		return c.JSON(fiber.Map{
			"location":  loc,
			"from":      req.From,
			"to":        req.To,
			"snapshots": snapshots,
		})
	})

	v1.Get("/weather/forecast", func(c *fiber.Ctx) error {
		var req forecastQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc := req.Location.toLocation()
		forecast, err := deps.Weather.GetForecast(c.UserContext(), loc, req.Days)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "no forecast data available")
		}
		return c.JSON(fiber.Map{
			"location": loc,
			"days":     req.Days,
			"forecast": forecast,
		})
	})

	v1.Get("/badges", func(c *fiber.Ctx) error {
		detailOnly := deps.Markers.Config().Badges.DetailOnlySet()
		type badgeInfo struct {
			badge.Meta
			DetailOnly bool `json:"detailOnly"`
		}
		out := make([]badgeInfo, 0, len(badge.All()))
		for _, m := range badge.All() {
			out = append(out, badgeInfo{Meta: m, DetailOnly: detailOnly[m.Type]})
		}
		return c.JSON(out)
	})

	v1.Get("/markers", func(c *fiber.Ctx) error {
		var q markersQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		center, err := q.center(deps.Geocoder)
		if err != nil {
			return err
		}

		resp, err := deps.Markers.Markers(c.UserContext(), pipeline.Request{
			Session:  c.Get("X-Session-ID"),
			Center:   center,
			City:     q.City,
			Country:  q.Country,
			Viewport: declutter.Viewport{Zoom: q.Zoom, RadiusKm: q.RadiusKm},
		})
		if err != nil {
			if errors.Is(err, pipeline.ErrSuperseded) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to compute markers")
		}
		return c.JSON(resp)
	})

	v1.Get("/markers/latest", func(c *fiber.Ctx) error {
		session := c.Get("X-Session-ID")
		if session == "" {
			return fiber.NewError(fiber.StatusBadRequest, "X-Session-ID header is required")
		}
		resp, ok := deps.Markers.Latest(session)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no completed search for session")
		}
		return c.JSON(resp)
	})

	v1.Post("/markers/evaluate", func(c *fiber.Ctx) error {
		var req evaluateRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var origin *destination.Candidate
		if req.Origin != nil {
			pos := destination.Position{Lat: req.Origin.Lat, Lon: req.Origin.Lon}
			if cs := destination.FromRecords([]destination.Record{*req.Origin}, pos); len(cs) == 1 {
				o := destination.AsOrigin(cs[0])
				origin = &o
			}
		}

		center := destination.Position{}
		if origin != nil {
			center = origin.Position
		}
		candidates := destination.FromRecords(req.Candidates, center)
		if origin == nil && len(candidates) > 0 {
			// Distances are measured from the synthetic origin at the centroid.
			syn := destination.SyntheticOrigin(centroidOf(candidates), candidates)
			candidates = destination.FromRecords(req.Candidates, syn.Position)
			origin = &syn
		}

		return c.JSON(deps.Markers.Evaluate(origin, candidates, req.Viewport))
	})

	v1.Post("/places", func(c *fiber.Ctx) error {
		var places []destination.Place
		if err := c.BodyParser(&places); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		for _, p := range places {
			if err := validate.Struct(placeInput{ID: p.ID, Lat: p.Position.Lat, Lon: p.Position.Lon}); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}
		n, err := deps.Places.Upsert(c.UserContext(), places)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to store places")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"written": n})
	})
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	City    string `validate:"required"`
	Country string `validate:"required"`
}

func (l locationQuery) toLocation() weather.Location {
	return weather.Location{
		City:    l.City,
		Country: l.Country,
	}
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	var q locationQuery

	q.City = c.Query("city")
	q.Country = c.Query("country")

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Location locationQuery
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	loc, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	h.Location = loc

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// forecastQuery holds query parameters for the forecast endpoint.
type forecastQuery struct {
	Location locationQuery
	Days     int `validate:"required,min=1,max=7"`
}

func (f *forecastQuery) bind(c *fiber.Ctx) error {
	loc, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	f.Location = loc

	daysStr := c.Query("days")
	if daysStr == "" {
		return errors.New("days query parameter is required")
	}
	days, err := strconv.Atoi(daysStr)
	if err != nil {
		return errors.New("days must be an integer")
	}
	f.Days = days
	return nil
}

// markersQuery holds query parameters for the markers endpoint. Either
// lat/lon or city/country identify the origin.
type markersQuery struct {
	Lat       float64 `validate:"gte=-90,lte=90"`
	Lon       float64 `validate:"gte=-180,lte=180"`
	HasCoords bool
	City      string
	Country   string  `validate:"required_with=City"`
	RadiusKm  float64 `validate:"gt=0,lte=5000"`
	Zoom      int     `validate:"gte=1,lte=22"`
}

func (m *markersQuery) bind(c *fiber.Ctx) error {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if (latStr == "") != (lonStr == "") {
		return errors.New("lat and lon must be given together")
	}

	var err error
	if latStr != "" {
		if m.Lat, err = strconv.ParseFloat(latStr, 64); err != nil {
			return errors.New("lat must be a number")
		}
		if m.Lon, err = strconv.ParseFloat(lonStr, 64); err != nil {
			return errors.New("lon must be a number")
		}
		m.HasCoords = true
	}
	m.City = c.Query("city")
	m.Country = c.Query("country")
	if !m.HasCoords && m.City == "" {
		return errors.New("lat and lon, or city and country, are required")
	}

	if m.RadiusKm, err = strconv.ParseFloat(c.Query("radius", "500"), 64); err != nil {
		return errors.New("radius must be a number")
	}
	if m.Zoom, err = strconv.Atoi(c.Query("zoom", "5")); err != nil {
		return errors.New("zoom must be an integer")
	}
	return nil
}

func (m markersQuery) center(g geocode.Resolver) (destination.Position, error) {
	if m.HasCoords {
		return destination.Position{Lat: m.Lat, Lon: m.Lon}, nil
	}
	if g == nil {
		return destination.Position{}, fiber.NewError(fiber.StatusBadRequest, "lat and lon are required")
	}
	pos, err := g.Resolve(m.City, m.Country)
	if err != nil {
		if errors.Is(err, geocode.ErrDisabled) {
			return destination.Position{}, fiber.NewError(fiber.StatusBadRequest, "lat and lon are required")
		}
		return destination.Position{}, fiber.NewError(fiber.StatusBadGateway, "could not resolve location")
	}
	return pos, nil
}

// evaluateRequest carries a complete search for a pure evaluation.
type evaluateRequest struct {
	Origin     *destination.Record  `json:"origin"`
	Candidates []destination.Record `json:"candidates" validate:"dive"`
	Viewport   declutter.Viewport   `json:"viewport"`
}

type placeInput struct {
	ID  string  `validate:"required"`
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

func centroidOf(cs []destination.Candidate) destination.Position {
	var lat, lon float64
	for _, c := range cs {
		lat += c.Position.Lat
		lon += c.Position.Lon
	}
	n := float64(len(cs))
	return destination.Position{Lat: lat / n, Lon: lon / n}
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
