package model

type RenderRequestBody struct {
	Genre      string  `json:"genre"`
	Style      string  `json:"style"`
	InspiredBy string  `json:"inspired_by,omitempty"`
	BPM        float64 `json:"bpm,omitempty"`
	Name       string  `json:"name,omitempty"`
	Seed       int64   `json:"seed,omitempty"`
}

type RenderResponse struct {
	ID          string   `json:"id"`
	PatternID   string   `json:"pattern_id"`
	InspiredBy  string   `json:"inspired_by"`
	BPM         float64  `json:"bpm"`
	Seed        int64    `json:"seed"`
	DurationMs  float64  `json:"duration_ms"`
	Roles       []Role   `json:"roles"`
	Loop        string   `json:"loop"`
	Archive     string   `json:"archive,omitempty"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

type StyleSummary struct {
	Name    string `json:"name"`
	Entries int    `json:"entries"`
}

type GenreSummary struct {
	Name   string         `json:"name"`
	Styles []StyleSummary `json:"styles"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
