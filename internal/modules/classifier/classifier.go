package classifier

import (
	"path/filepath"
	"strings"
)

// Result is the outcome of one classification. Scores holds the accumulated
// per-language score for every language that scored above zero.
type Result struct {
	Language   string             `json:"language"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores,omitempty"`
}

// Classify guesses the language of code, optionally hinted by a filename.
// Pure and deterministic: identical input always yields identical output.
//
// Each language scores matched-patterns/total-patterns, plus a fixed bonus
// when the filename extension is one of its known extensions. The highest
// score wins; equal scores resolve to the earlier table row. When nothing
// scores above zero the result is "other" with zero confidence.
func Classify(code, filename string) Result {
	ext := strings.ToLower(filepath.Ext(filename))

	scores := make(map[string]float64, len(rules))
	best := ""
	bestScore := 0.0

	for _, rule := range rules {
		score := 0.0
		if ext != "" && hasExtension(rule, ext) {
			score += extensionBonus
		}

		matched := 0
		for _, p := range rule.patterns {
			if p.MatchString(code) {
				matched++
			}
		}
		score += float64(matched) / float64(len(rule.patterns))

		if score > 0 {
			scores[rule.name] = score
		}
		if score > bestScore {
			bestScore = score
			best = rule.name
		}
	}

	if best == "" {
		return Result{Language: "other", Confidence: 0, Scores: scores}
	}

	confidence := bestScore
	if confidence > 1 {
		confidence = 1
	}
	return Result{Language: best, Confidence: confidence, Scores: scores}
}

func hasExtension(rule languageRule, ext string) bool {
	for _, e := range rule.extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Supported lists the languages in table order.
func Supported() []string {
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.name)
	}
	return names
}
