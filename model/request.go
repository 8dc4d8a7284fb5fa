package model

// RenderRequest is the input of a single loop render.
type RenderRequest struct {
	Genre      string
	Style      string
	InspiredBy string
	BPM        float64
	OutputPath string

	// Seed makes selection reproducible when non-zero.
	Seed int64
}
