package ai

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeGenerator struct {
	output string
	err    error
	calls  int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.output, nil
}

func TestGenerateDescriptionFallback(t *testing.T) {
	svc := NewService(&fakeGenerator{err: fmt.Errorf("%w: dial refused", ErrServiceUnavailable)})
	res := svc.GenerateDescription(context.Background(), "def foo(): pass", "python")

	assert.NotEmpty(t, res.Value)
	assert.Contains(t, res.Value, "python")
	assert.True(t, res.Degraded)
	assert.Equal(t, DegradedConfidence, res.Confidence)
}

func TestGenerateDescriptionFallbackIsDeterministic(t *testing.T) {
	svc := NewService(&fakeGenerator{err: ErrServiceUnavailable})
	first := svc.GenerateDescription(context.Background(), "code", "go")
	second := svc.GenerateDescription(context.Background(), "code", "go")
	assert.Equal(t, first, second)
}

func TestGenerateDescriptionNominal(t *testing.T) {
	svc := NewService(&fakeGenerator{output: "  Adds two numbers.  "})
	res := svc.GenerateDescription(context.Background(), "a+b", "python")

	assert.Equal(t, "Adds two numbers.", res.Value)
	assert.False(t, res.Degraded)
	assert.Equal(t, NominalConfidence, res.Confidence)
}

func TestExtractTagsParsesArray(t *testing.T) {
	svc := NewService(&fakeGenerator{output: `["Sorting", "recursion"]`})
	res := svc.ExtractTags(context.Background(), "code", "python")

	assert.Equal(t, []string{"Sorting", "recursion"}, res.Values)
	assert.False(t, res.Degraded)
}

func TestExtractTagsFallback(t *testing.T) {
	svc := NewService(&fakeGenerator{err: ErrServiceUnavailable})
	res := svc.ExtractTags(context.Background(), "code", "Python")

	assert.Equal(t, []string{"python"}, res.Values)
	assert.True(t, res.Degraded)
	assert.Equal(t, DegradedConfidence, res.Confidence)
}

func TestDetectFrameworksFallbackIsEmpty(t *testing.T) {
	svc := NewService(&fakeGenerator{err: ErrServiceUnavailable})
	res := svc.DetectFrameworks(context.Background(), "code", "go")

	assert.Empty(t, res.Values)
	assert.True(t, res.Degraded)
}

func TestParseStringArray(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", `["a","b"]`, []string{"a", "b"}},
		{"fenced", "```json\n[\"react\"]\n```", []string{"react"}},
		{"embedded prose", `Here are the tags: ["x", "y"], hope that helps!`, []string{"x", "y"}},
		{"garbage", "no array here", []string{}},
		{"malformed json", `["unterminated`, []string{}},
		{"empty elements dropped", `["", "  ", "kept"]`, []string{"kept"}},
		{"empty array", `[]`, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseStringArray(tc.in))
		})
	}
}
