package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/snipvault/core/internal/pkg/taxonomy"
)

// Temperatures per generator: classification wants determinism, prose can
// wander a little.
const (
	temperatureProse    = 0.7
	temperatureClassify = 0.2
)

// Service wraps a Generator with the per-call fallback contract: every
// method returns a tagged result, never an error. A failed backend call
// yields a deterministic, non-empty fallback referencing the language, with
// degraded confidence.
type Service struct {
	gen Generator
}

func NewService(gen Generator) *Service {
	return &Service{gen: gen}
}

// GenerateDescription produces a prose description of the code.
func (s *Service) GenerateDescription(ctx context.Context, code, language string) TextResult {
	out, err := s.gen.Generate(ctx, buildPrompt(descriptionPrompt, language, code), temperatureProse)
	if err != nil {
		return TextResult{
			Value:      fmt.Sprintf("A %s code snippet. Automatic description is temporarily unavailable.", language),
			Confidence: DegradedConfidence,
			Degraded:   true,
		}
	}
	return TextResult{Value: strings.TrimSpace(out), Confidence: NominalConfidence}
}

// GenerateSummary produces a one-line summary of the code.
func (s *Service) GenerateSummary(ctx context.Context, code, language string) TextResult {
	out, err := s.gen.Generate(ctx, buildPrompt(summaryPrompt, language, code), temperatureProse)
	if err != nil {
		return TextResult{
			Value:      fmt.Sprintf("%s code snippet", language),
			Confidence: DegradedConfidence,
			Degraded:   true,
		}
	}
	return TextResult{Value: strings.TrimSpace(out), Confidence: NominalConfidence}
}

// GenerateExplanation produces a step-by-step walkthrough of the code.
func (s *Service) GenerateExplanation(ctx context.Context, code, language string) TextResult {
	out, err := s.gen.Generate(ctx, buildPrompt(explanationPrompt, language, code), temperatureProse)
	if err != nil {
		return TextResult{
			Value:      fmt.Sprintf("This is a %s snippet. An automatic explanation could not be generated right now.", language),
			Confidence: DegradedConfidence,
			Degraded:   true,
		}
	}
	return TextResult{Value: strings.TrimSpace(out), Confidence: NominalConfidence}
}

// ExtractTags asks the model for topic tags. Model output is free-form, so
// the JSON array is parsed defensively; unparseable output yields an empty
// set, not an error.
func (s *Service) ExtractTags(ctx context.Context, code, language string) ListResult {
	out, err := s.gen.Generate(ctx, buildPrompt(tagsPrompt, language, code), temperatureClassify)
	if err != nil {
		return ListResult{
			Values:     []string{taxonomy.Slugify(language)},
			Confidence: DegradedConfidence,
			Degraded:   true,
		}
	}
	return ListResult{Values: parseStringArray(out), Confidence: NominalConfidence}
}

// DetectFrameworks asks the model which frameworks the code uses.
func (s *Service) DetectFrameworks(ctx context.Context, code, language string) ListResult {
	out, err := s.gen.Generate(ctx, buildPrompt(frameworksPrompt, language, code), temperatureClassify)
	if err != nil {
		return ListResult{Values: []string{}, Confidence: DegradedConfidence, Degraded: true}
	}
	return ListResult{Values: parseStringArray(out), Confidence: NominalConfidence}
}

// DetectLibraries asks the model which libraries the code depends on.
func (s *Service) DetectLibraries(ctx context.Context, code, language string) ListResult {
	out, err := s.gen.Generate(ctx, buildPrompt(librariesPrompt, language, code), temperatureClassify)
	if err != nil {
		return ListResult{Values: []string{}, Confidence: DegradedConfidence, Degraded: true}
	}
	return ListResult{Values: parseStringArray(out), Confidence: NominalConfidence}
}

// AnalyzeCode asks the model for a short static review of the code.
func (s *Service) AnalyzeCode(ctx context.Context, code, language string) TextResult {
	out, err := s.gen.Generate(ctx, buildPrompt(analysisPrompt, language, code), temperatureClassify)
	if err != nil {
		return TextResult{
			Value:      fmt.Sprintf("Automatic analysis for this %s snippet is temporarily unavailable.", language),
			Confidence: DegradedConfidence,
			Degraded:   true,
		}
	}
	return TextResult{Value: strings.TrimSpace(out), Confidence: NominalConfidence}
}

// parseStringArray digs a JSON string array out of free-form model text.
// Markdown fences and surrounding prose are tolerated; if no parseable
// array is found the result is empty.
func parseStringArray(raw string) []string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var arr []string
	if err := json.Unmarshal([]byte(cleaned), &arr); err == nil {
		return nonEmpty(arr)
	}

	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &arr); err == nil {
			return nonEmpty(arr)
		}
	}
	return []string{}
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
