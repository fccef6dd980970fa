package llm

import (
	"context"
	"strings"
	"unicode"
)

const staticModelName = "static-keywords"

// StaticGenerator is an offline fallback that answers category-suggestion
// prompts with the most frequent meaningful word of the prompt's subject
// text. Deterministic, which also makes it the test double for the
// organize stage.
type StaticGenerator struct{}

// NewStaticGenerator creates a static generator
func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

func (g *StaticGenerator) Generate(_ context.Context, req GenerateRequest) (string, error) {
	if err := validatePrompt(req); err != nil {
		return "", err
	}

	counts := make(map[string]int)
	best := "misc"
	bestCount := 0

	for _, word := range strings.FieldsFunc(strings.ToLower(req.Prompt), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(word) < 4 {
			continue
		}
		counts[word]++
		if counts[word] > bestCount {
			best, bestCount = word, counts[word]
		}
	}

	return best, nil
}

func (g *StaticGenerator) Model() string {
	return staticModelName
}

func (g *StaticGenerator) Close() error {
	return nil
}
