package api

import "github.com/paulmach/orb/geojson"

// RouteRequest is the JSON body for POST /api/v1/route. Either Waypoints or
// Start and End must be set.
type RouteRequest struct {
	Waypoints []LatLngJSON `json:"waypoints,omitempty"`
	Start     *LatLngJSON  `json:"start,omitempty"`
	End       *LatLngJSON  `json:"end,omitempty"`
}

// LatLngJSON represents a WGS84 lat/lng pair in JSON.
type LatLngJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RouteResponse is the JSON response for a successful route query.
type RouteResponse struct {
	TotalDistanceMeters float64       `json:"total_distance_meters"`
	AscentMeters        float64       `json:"ascent_meters"`
	DescentMeters       float64       `json:"descent_meters"`
	MinElevationMeters  float64       `json:"min_elevation_meters"`
	MaxElevationMeters  float64       `json:"max_elevation_meters"`
	Elevation           ElevationJSON `json:"elevation"`
	Legs                []LegJSON     `json:"legs"`
	// Geometry is a LineString feature in WGS84.
	Geometry *geojson.Feature `json:"geometry"`
}

// ElevationJSON is the elevation profile, one sample every StepMeters.
type ElevationJSON struct {
	StepMeters float64   `json:"step_meters"`
	Samples    []float32 `json:"samples"`
}

// LegJSON is the part of the route between two waypoints.
type LegJSON struct {
	StartMeters    float64 `json:"start_meters"`
	DistanceMeters float64 `json:"distance_meters"`
	FromNodeID     int     `json:"from_node_id"`
	ToNodeID       int     `json:"to_node_id"`
}

// NearestResponse is the JSON response for GET /api/v1/nearest.
type NearestResponse struct {
	NodeID         int        `json:"node_id"`
	Location       LatLngJSON `json:"location"`
	DistanceMeters float64    `json:"distance_meters"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumNodes         int `json:"num_nodes"`
	NumEdges         int `json:"num_edges"`
	NumAttributeSets int `json:"num_attribute_sets"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
