// Package viewport computes the initial map view for a set of markers.
//
// Points that cannot be plotted are ignored, including the (0, 0) placeholder
// left on records that were never geocoded. A box wider than MaxSpanDegrees on
// either axis falls back to the default region view.
package viewport

import "math"

// Defaults for the service region
const (
	DefaultLatitude  = -33.9249
	DefaultLongitude = 18.4241
	DefaultZoom      = 12

	DefaultMaxSpanDegrees = 2.0
	DefaultPadding        = 0.2
)

// LatLng is a WGS84 coordinate in degrees
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether p is finite, in range and not the (0, 0) sentinel
func (p LatLng) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) {
		return false
	}
	if math.Abs(p.Lat) > 90 || math.Abs(p.Lng) > 180 {
		return false
	}
	return !(p.Lat == 0 && p.Lng == 0)
}

// Bounds is an axis-aligned box
type Bounds struct {
	SouthWest LatLng `json:"southWest"`
	NorthEast LatLng `json:"northEast"`
}

// LatSpan is the box height in degrees
func (b Bounds) LatSpan() float64 {
	return math.Abs(b.NorthEast.Lat - b.SouthWest.Lat)
}

// LngSpan is the box width in degrees
func (b Bounds) LngSpan() float64 {
	return math.Abs(b.NorthEast.Lng - b.SouthWest.Lng)
}

// Center is the midpoint of the box
func (b Bounds) Center() LatLng {
	return LatLng{
		Lat: (b.SouthWest.Lat + b.NorthEast.Lat) / 2,
		Lng: (b.SouthWest.Lng + b.NorthEast.Lng) / 2,
	}
}

// Pad grows the box by ratio of its own span on every side
func (b Bounds) Pad(ratio float64) Bounds {
	dLat := b.LatSpan() * ratio
	dLng := b.LngSpan() * ratio
	return Bounds{
		SouthWest: LatLng{Lat: b.SouthWest.Lat - dLat, Lng: b.SouthWest.Lng - dLng},
		NorthEast: LatLng{Lat: b.NorthEast.Lat + dLat, Lng: b.NorthEast.Lng + dLng},
	}
}

// Contains reports whether p lies inside the box, edges included
func (b Bounds) Contains(p LatLng) bool {
	return p.Lat >= b.SouthWest.Lat && p.Lat <= b.NorthEast.Lat &&
		p.Lng >= b.SouthWest.Lng && p.Lng <= b.NorthEast.Lng
}

// View is the computed map view. A default view sets Zoom and leaves Bounds
// nil; a fitted view sets Bounds and the map picks the zoom that fits them.
type View struct {
	Bounds  *Bounds `json:"bounds,omitempty"`
	Center  LatLng  `json:"center"`
	Zoom    int     `json:"zoom,omitempty"`
	Default bool    `json:"default"`
}

// Fitter holds the fitting policy
type Fitter struct {
	Anchor         LatLng
	Zoom           int
	MaxSpanDegrees float64
	Padding        float64
}

// NewFitter returns the fitter for the service region
func NewFitter() Fitter {
	return Fitter{
		Anchor:         LatLng{Lat: DefaultLatitude, Lng: DefaultLongitude},
		Zoom:           DefaultZoom,
		MaxSpanDegrees: DefaultMaxSpanDegrees,
		Padding:        DefaultPadding,
	}
}

// DefaultView is the fixed anchor view
func (f Fitter) DefaultView() View {
	return View{Center: f.Anchor, Zoom: f.Zoom, Default: true}
}

// Fit computes the view for points
func (f Fitter) Fit(points []LatLng) View {
	var box Bounds
	n := 0
	for _, p := range points {
		if !p.Valid() {
			continue
		}
		if n == 0 {
			box = Bounds{SouthWest: p, NorthEast: p}
		} else {
			box.SouthWest.Lat = math.Min(box.SouthWest.Lat, p.Lat)
			box.SouthWest.Lng = math.Min(box.SouthWest.Lng, p.Lng)
			box.NorthEast.Lat = math.Max(box.NorthEast.Lat, p.Lat)
			box.NorthEast.Lng = math.Max(box.NorthEast.Lng, p.Lng)
		}
		n++
	}

	if n == 0 {
		return f.DefaultView()
	}
	if box.LatSpan() > f.MaxSpanDegrees || box.LngSpan() > f.MaxSpanDegrees {
		return f.DefaultView()
	}

	padded := box.Pad(f.Padding)
	return View{Bounds: &padded, Center: padded.Center()}
}
