// Package crs implements the equal-area projection used to bring windowed
// land-cover rasters into a meters-based grid before metric computation.
package crs

import (
	"fmt"
	"math"

	"github.com/terralab/landscape-cli/internal/config"
)

// Authalic sphere radius (GRS80), meters.
const earthRadius = 6371007.181

// ProjectionError reports that reprojection cannot produce a valid grid.
// It is a per-landscape failure; the batch continues.
type ProjectionError struct {
	Reason string
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("crs: projection failure: %s", e.Reason)
}

// Albers is a spherical Albers equal-area conic projection. Equal-area is
// required for consistent area- and distance-based landscape metrics.
type Albers struct {
	lon0 float64 // central meridian, radians
	n    float64
	c    float64
	rho0 float64
}

// NewAlbers derives projection constants from configuration.
func NewAlbers(cfg config.CRSConfig) (*Albers, error) {
	lat0 := rad(cfg.LatitudeOrigin)
	sp1 := rad(cfg.StdParallel1)
	sp2 := rad(cfg.StdParallel2)

	n := (math.Sin(sp1) + math.Sin(sp2)) / 2
	if math.Abs(n) < 1e-10 {
		return nil, &ProjectionError{Reason: "standard parallels symmetric about the equator"}
	}
	c := math.Cos(sp1)*math.Cos(sp1) + 2*n*math.Sin(sp1)

	a := &Albers{
		lon0: rad(cfg.CentralMeridian),
		n:    n,
		c:    c,
	}
	a.rho0 = a.rho(lat0)
	return a, nil
}

func (a *Albers) rho(lat float64) float64 {
	return earthRadius / a.n * math.Sqrt(a.c-2*a.n*math.Sin(lat))
}

// Forward projects geographic coordinates (degrees) to map coordinates
// (meters).
func (a *Albers) Forward(lon, lat float64) (x, y float64) {
	rho := a.rho(rad(lat))
	theta := a.n * (rad(lon) - a.lon0)
	return rho * math.Sin(theta), a.rho0 - rho*math.Cos(theta)
}

// Inverse converts map coordinates (meters) back to geographic coordinates
// (degrees).
func (a *Albers) Inverse(x, y float64) (lon, lat float64) {
	dy := a.rho0 - y
	rho := math.Hypot(x, dy)
	theta := math.Atan2(x, dy)
	if a.n < 0 {
		rho = -rho
		theta = math.Atan2(-x, -dy)
	}
	sinLat := (a.c - (rho*a.n/earthRadius)*(rho*a.n/earthRadius)) / (2 * a.n)
	sinLat = math.Max(-1, math.Min(1, sinLat))
	return deg(a.lon0 + theta/a.n), deg(math.Asin(sinLat))
}

func rad(d float64) float64 { return d * math.Pi / 180 }
func deg(r float64) float64 { return r * 180 / math.Pi }
