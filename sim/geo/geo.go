// Package geo holds the planar geometry of the simulated network: client
// and station coordinates, circular coverage areas, and a k-d tree index
// for nearest-station queries.
package geo

import (
	"fmt"
	"math"
)

// Coordinate is a point on the simulation plane.
type Coordinate struct {
	X, Y float64
}

// Add returns c displaced by (dx, dy).
func (c Coordinate) Add(dx, dy float64) Coordinate {
	return Coordinate{X: c.X + dx, Y: c.Y + dy}
}

// Distance returns the Euclidean distance between c and o.
func (c Coordinate) Distance(o Coordinate) float64 {
	return math.Hypot(c.X-o.X, c.Y-o.Y)
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", c.X, c.Y)
}

// CoverageArea is the disc a base station serves.
type CoverageArea struct {
	Center Coordinate
	Radius float64
}

// NewCoverageArea returns an area; it fails for a negative or non-finite radius.
func NewCoverageArea(center Coordinate, radius float64) (CoverageArea, error) {
	if radius < 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return CoverageArea{}, fmt.Errorf("coverage radius must be finite and >= 0, got %v", radius)
	}
	return CoverageArea{Center: center, Radius: radius}, nil
}

// Contains reports whether p lies within the area, boundary included.
func (a CoverageArea) Contains(p Coordinate) bool {
	dx, dy := p.X-a.Center.X, p.Y-a.Center.Y
	return dx*dx+dy*dy <= a.Radius*a.Radius
}

// Rect is an axis-aligned rectangle, used for the statistics area.
type Rect struct {
	MinX, MaxX, MinY, MaxY float64
}

// Contains reports whether p lies within r, edges included.
func (r Rect) Contains(p Coordinate) bool {
	return r.MinX <= p.X && p.X <= r.MaxX && r.MinY <= p.Y && p.Y <= r.MaxY
}
