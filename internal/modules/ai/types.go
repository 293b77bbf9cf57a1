package ai

import "errors"

// ErrServiceUnavailable is raised by the gateway on any failure: timeout,
// non-2xx status or malformed payload. It never escapes the generator
// functions; they substitute deterministic fallbacks instead.
var ErrServiceUnavailable = errors.New("AI service unavailable")

// Nominal and degraded confidence values reported by generators. Tests and
// callers distinguish genuine output from fallbacks by the Degraded flag
// rather than by guessing from the text.
const (
	NominalConfidence  = 0.85
	DegradedConfidence = 0.1
)

// TextResult is a tagged generator outcome carrying one string.
type TextResult struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
	Degraded   bool    `json:"degraded"`
}

// ListResult is a tagged generator outcome carrying a string set.
type ListResult struct {
	Values     []string `json:"values"`
	Confidence float64  `json:"confidence"`
	Degraded   bool     `json:"degraded"`
}
