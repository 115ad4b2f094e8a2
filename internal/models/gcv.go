package models

// Google Cloud Vision structures
type GCVResponse struct {
	Responses []Response `json:"responses"`
}

type Response struct {
	LocalizedObjectAnnotations []ObjectAnnotation `json:"localizedObjectAnnotations"`
}

type ObjectAnnotation struct {
	MID          string       `json:"mid,omitempty"`
	Name         string       `json:"name"`
	Score        float64      `json:"score"`
	BoundingPoly BoundingPoly `json:"boundingPoly"`
}

type BoundingPoly struct {
	NormalizedVertices []NormalizedVertex `json:"normalizedVertices"`
}

// NormalizedVertex is a polygon corner in [0,1] image coordinates.
type NormalizedVertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
