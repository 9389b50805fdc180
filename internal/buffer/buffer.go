// Package buffer derives the concentric buffer polygons that bound each
// landscape analyzed around a sampling site.
package buffer

import (
	"fmt"
	"math"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/terralab/landscape-cli/internal/sites"
)

// Meters of latitude per degree on the authalic sphere.
const metersPerDegree = 111194.9

// Scale is one buffer radius with its column-label form.
type Scale struct {
	RadiusMeters float64
	Label        string
}

// Label renders a radius as its scale label: 500 → "500m", 1000 → "1k",
// 8000 → "8k".
func Label(radiusMeters float64) string {
	if radiusMeters >= 1000 && math.Mod(radiusMeters, 1000) == 0 {
		return fmt.Sprintf("%dk", int(radiusMeters/1000))
	}
	return fmt.Sprintf("%dm", int(radiusMeters))
}

// Scales returns the scale set ordered largest-first, the order the
// hierarchical walker consumes.
func Scales(radiiMeters []float64) []Scale {
	sorted := append([]float64(nil), radiiMeters...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	out := make([]Scale, len(sorted))
	for i, r := range sorted {
		out[i] = Scale{RadiusMeters: r, Label: Label(r)}
	}
	return out
}

// Set holds one site's buffer polygons for every scale, all derived from the
// same center so nesting holds by construction.
type Set struct {
	Site sites.SamplingSite
	// Scales is ordered largest-first; Polygons is keyed by scale label.
	Scales   []Scale
	Polygons map[string]*geom.Polygon
}

// Build generates a site's buffer polygon at every radius. Polygons are
// produced in geographic coordinates matching the source rasters; segments
// is the vertex count approximating each circle.
func Build(site sites.SamplingSite, radiiMeters []float64, segments int) (*Set, error) {
	if len(radiiMeters) == 0 {
		return nil, eris.New("buffer: no radii configured")
	}
	if segments < 8 {
		return nil, eris.Errorf("buffer: %d segments cannot approximate a circle", segments)
	}
	if math.Abs(site.Lat) > 89 {
		return nil, eris.Errorf("buffer: site %s latitude %g too close to a pole", site.LandscapeID, site.Lat)
	}

	set := &Set{
		Site:     site,
		Scales:   Scales(radiiMeters),
		Polygons: make(map[string]*geom.Polygon, len(radiiMeters)),
	}
	for _, sc := range set.Scales {
		set.Polygons[sc.Label] = circle(site.Lon, site.Lat, sc.RadiusMeters, segments)
	}
	return set, nil
}

// circle approximates a geodesic circle as a polygon in degrees. The
// longitude extent is widened by 1/cos(lat) so the ring is circular in
// ground distance.
func circle(lon, lat, radiusMeters float64, segments int) *geom.Polygon {
	dLat := radiusMeters / metersPerDegree
	dLon := dLat / math.Cos(lat*math.Pi/180)

	flat := make([]float64, 0, (segments+1)*2)
	for i := 0; i <= segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		flat = append(flat, lon+dLon*math.Cos(theta), lat+dLat*math.Sin(theta))
	}
	return geom.NewPolygonFlat(geom.XY, flat, []int{len(flat)})
}

// CheckNesting verifies that each smaller polygon lies inside the next
// larger one, the correctness precondition for hierarchical windowing.
func (s *Set) CheckNesting() error {
	for i := 1; i < len(s.Scales); i++ {
		outer := s.Polygons[s.Scales[i-1].Label]
		inner := s.Polygons[s.Scales[i].Label]
		ring := inner.LinearRing(0)
		for j := 0; j < ring.NumCoords(); j++ {
			if !xy.IsPointInRing(outer.Layout(), ring.Coord(j), outer.LinearRing(0).FlatCoords()) {
				return eris.Errorf("buffer: site %s: %s polygon escapes %s polygon",
					s.Site.LandscapeID, s.Scales[i].Label, s.Scales[i-1].Label)
			}
		}
	}
	return nil
}

// BuildAll generates buffer sets for every site and validates nesting.
func BuildAll(siteList []sites.SamplingSite, radiiMeters []float64, segments int) ([]*Set, error) {
	out := make([]*Set, 0, len(siteList))
	for _, site := range siteList {
		set, err := Build(site, radiiMeters, segments)
		if err != nil {
			return nil, err
		}
		if err := set.CheckNesting(); err != nil {
			return nil, err
		}
		out = append(out, set)
	}
	return out, nil
}
