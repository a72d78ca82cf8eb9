package models

import "image"

// Point is a vertex of a detection's bounding polygon, in pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Detection struct {
	// Geometry
	Box []Point `json:"box"` // Bounding polygon, first vertex is the top-left corner

	// Recognition
	Text       string  `json:"text"`       // Text as reported by the engine
	Confidence float64 `json:"confidence"` // Engine confidence in [0,1]
}

// Top returns the y coordinate of the top-left vertex, or 0 without a box.
func (d Detection) Top() int {
	if len(d.Box) == 0 {
		return 0
	}
	return d.Box[0].Y
}

// BoxFromRect converts an axis-aligned rectangle into a clockwise polygon
// starting at the top-left corner.
func BoxFromRect(r image.Rectangle) []Point {
	return []Point{
		{X: r.Min.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Max.Y},
		{X: r.Min.X, Y: r.Max.Y},
	}
}

// Reading is the merged outcome of one or more OCR passes over a capture.
type Reading struct {
	Text       string      `json:"text"`       // Surviving texts joined in reading order
	Confidence float64     `json:"confidence"` // Mean confidence of the survivors
	Detections []Detection `json:"detections"` // Survivors, sorted top to bottom
	Candidates int         `json:"candidates"` // Raw detections across all passes, before filtering
}

// Empty reports whether no detection survived the merge.
func (r Reading) Empty() bool {
	return len(r.Detections) == 0
}
