package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/paulmach/orb/geojson"

	"github.com/azybler/bike_router/pkg/errs"
	"github.com/azybler/bike_router/pkg/geo"
	"github.com/azybler/bike_router/pkg/routing"
)

const (
	maxBodyBytes     = 16 << 10
	maxNearestRadius = 5_000
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	service      routing.Service
	stats        StatsResponse
	maxWaypoints int
	snapRadius   float64
	metrics      *Metrics
}

// HandlerOptions configures Handlers.
type HandlerOptions struct {
	MaxWaypoints int
	// SnapRadius is the default radius of nearest-node queries.
	SnapRadius float64
	Metrics    *Metrics // optional
}

// NewHandlers creates handlers serving queries with service.
func NewHandlers(service routing.Service, stats StatsResponse, opts HandlerOptions) *Handlers {
	if opts.MaxWaypoints < 2 {
		opts.MaxWaypoints = 2
	}
	if opts.SnapRadius <= 0 {
		opts.SnapRadius = routing.DefaultPlannerConfig().SnapRadius
	}
	return &Handlers{
		service:      service,
		stats:        stats,
		maxWaypoints: opts.MaxWaypoints,
		snapRadius:   opts.SnapRadius,
		metrics:      opts.Metrics,
	}
}

// HandleRoute handles POST /api/v1/route.
func (h *Handlers) HandleRoute(w http.ResponseWriter, r *http.Request) {
	// Enforce Content-Type.
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	// Parse request.
	var req RouteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "")
		return
	}

	coords := req.Waypoints
	if len(coords) == 0 && req.Start != nil && req.End != nil {
		coords = []LatLngJSON{*req.Start, *req.End}
	}
	if len(coords) < 2 || len(coords) > h.maxWaypoints {
		writeError(w, http.StatusBadRequest, "invalid_waypoint_count", "waypoints")
		return
	}

	// Validate coordinates.
	waypoints := make([]geo.PointCH, len(coords))
	for i, c := range coords {
		if err := validateCoord(c); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_coordinates", fmt.Sprintf("waypoints[%d]", i))
			return
		}
		waypoints[i] = geo.FromWGS84(c.Lng, c.Lat)
	}

	// Route.
	plan, err := h.service.Plan(r.Context(), waypoints)
	if err != nil {
		h.metrics.observeRoute(outcomeOf(err), 0)
		writeServiceError(w, err)
		return
	}
	h.metrics.observeRoute(outcomeOK, plan.Route.Length())

	writeJSON(w, http.StatusOK, newRouteResponse(plan))
}

// HandleNearest handles GET /api/v1/nearest?lat=..&lng=..[&radius=..].
func (h *Handlers) HandleNearest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	ll := LatLngJSON{Lat: lat, Lng: lng}
	if errLat != nil || errLng != nil || validateCoord(ll) != nil {
		writeError(w, http.StatusBadRequest, "invalid_coordinates", "")
		return
	}

	radius := h.snapRadius
	if s := q.Get("radius"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || !(v >= 0 && v <= maxNearestRadius) {
			writeError(w, http.StatusBadRequest, "invalid_radius", "radius")
			return
		}
		radius = v
	}

	node, err := h.service.Nearest(geo.FromWGS84(lng, lat), radius)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	lon, latOut := node.Point.ToWGS84()
	writeJSON(w, http.StatusOK, NearestResponse{
		NodeID:         node.ID,
		Location:       LatLngJSON{Lat: latOut, Lng: lon},
		DistanceMeters: node.Distance,
	})
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stats)
}

func newRouteResponse(plan *routing.Plan) RouteResponse {
	rt, prof := plan.Route, plan.Profile

	feature := geojson.NewFeature(geo.LineString(rt.Points()))
	feature.Properties["distance_meters"] = rt.Length()

	samples := prof.Samples()
	resp := RouteResponse{
		TotalDistanceMeters: rt.Length(),
		AscentMeters:        prof.TotalAscent(),
		DescentMeters:       prof.TotalDescent(),
		MinElevationMeters:  prof.MinElevation(),
		MaxElevationMeters:  prof.MaxElevation(),
		Elevation: ElevationJSON{
			StepMeters: prof.Length() / float64(len(samples)-1),
			Samples:    samples,
		},
		Legs:     make([]LegJSON, len(plan.Legs)),
		Geometry: feature,
	}
	for i, leg := range plan.Legs {
		resp.Legs[i] = LegJSON{
			StartMeters:    leg.Start,
			DistanceMeters: leg.Length,
			FromNodeID:     leg.FromNodeID,
			ToNodeID:       leg.ToNodeID,
		}
	}
	return resp
}

func validateCoord(ll LatLngJSON) error {
	if !geo.ValidWGS84(ll.Lng, ll.Lat) {
		return errors.New("coordinates must be finite and in range")
	}
	return nil
}

const (
	outcomeOK       = "ok"
	outcomeTooFar   = "point_too_far"
	outcomeNoRoute  = "no_route"
	outcomeInvalid  = "invalid"
	outcomeCanceled = "timeout"
	outcomeError    = "error"
)

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, routing.ErrPointTooFar):
		return outcomeTooFar
	case errors.Is(err, routing.ErrNoRoute):
		return outcomeNoRoute
	case errors.Is(err, errs.ErrInvalidArgument):
		return outcomeInvalid
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return outcomeCanceled
	}
	return outcomeError
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch outcomeOf(err) {
	case outcomeTooFar:
		writeError(w, http.StatusUnprocessableEntity, "point_too_far_from_road", "")
	case outcomeNoRoute:
		writeError(w, http.StatusNotFound, "no_route_found", "")
	case outcomeInvalid:
		writeError(w, http.StatusBadRequest, "invalid_request", "")
	case outcomeCanceled:
		writeError(w, http.StatusServiceUnavailable, "request_timeout", "")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, field string) {
	writeJSON(w, status, ErrorResponse{Error: code, Field: field})
}
