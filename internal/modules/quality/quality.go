// Package quality scores code with deterministic text heuristics. The
// scores complement the AI metadata: they are cheap, pure and reproducible,
// so they also run when the generative backend is down.
package quality

import (
	"math"
	"regexp"
	"strings"
)

// Metrics holds the four sub-scores and their rounded average, each in [0,10].
type Metrics struct {
	Readability     int `json:"readability"`
	Security        int `json:"security"`
	Performance     int `json:"performance"`
	Maintainability int `json:"maintainability"`
	Overall         int `json:"overall"`
}

const maxShortLen = 2000

var (
	singleLetterToken = regexp.MustCompile(`\b[a-z]\b`)
	errorHandling     = regexp.MustCompile(`try|catch|except|error|Error`)
)

// Score rates code on readability, security, performance and
// maintainability. Pure: the same input always yields the same metrics.
func Score(code string) Metrics {
	hasComments := strings.Contains(code, "//") ||
		strings.Contains(code, "/*") ||
		strings.Contains(code, "#")
	hasProperIndentation := strings.Contains(code, "  ") || strings.Contains(code, "\t")
	hasDescriptiveNames := !singleLetterToken.MatchString(code)
	isNotTooLong := len(code) < maxShortLen
	hasErrorHandling := errorHandling.MatchString(code)

	readability := 5
	if hasComments {
		readability += 2
	}
	if hasProperIndentation {
		readability += 2
	}
	if hasDescriptiveNames {
		readability++
	}

	maintainability := 4
	if hasComments {
		maintainability += 3
	}
	if isNotTooLong {
		maintainability += 2
	}
	if hasDescriptiveNames {
		maintainability++
	}

	security := 5
	if hasErrorHandling {
		security = 7
	}

	performance := 4
	if isNotTooLong {
		performance = 7
	}

	m := Metrics{
		Readability:     clamp(readability),
		Security:        clamp(security),
		Performance:     clamp(performance),
		Maintainability: clamp(maintainability),
	}
	m.Overall = clamp(int(math.Round(float64(m.Readability+m.Security+m.Performance+m.Maintainability) / 4)))
	return m
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
