package textprep

import (
	"fmt"
	"math"
)

const (
	// DefaultCharsPerToken is the heuristic for estimating tokens from
	// character counts. Prose averages roughly 3.5 characters per token.
	DefaultCharsPerToken = 3.5

	// DefaultContextTokens is the fallback context window when the
	// embedding model's limit is not known.
	DefaultContextTokens = 8192

	// HeadroomRatio is the fraction of the nominal context window kept
	// usable; the rest is safety margin against hard input-size failures.
	HeadroomRatio = 0.85

	// MinTokens is the floor applied to every computed token limit.
	MinTokens = 32
)

// TruncateResult reports the outcome of a hard character cap.
type TruncateResult struct {
	Text         string
	WasTruncated bool
	MaxChars     int
}

// CapOptions configures CapEmbeddingInput.
type CapOptions struct {
	// MaxTokens is the embedding model's nominal context size. Zero
	// falls back to DefaultContextTokens.
	MaxTokens int

	// CharsPerToken overrides the estimation heuristic. Zero falls back
	// to DefaultCharsPerToken.
	CharsPerToken float64
}

// CapResult reports the outcome of capping one embedding input.
type CapResult struct {
	Text         string
	WasTruncated bool

	// EstimatedTokens is computed on the original text, before any
	// truncation.
	EstimatedTokens int
	MaxTokens       int
}

// EstimateTokens estimates the token count of a text as
// ceil(runes / charsPerToken) with the default heuristic.
func EstimateTokens(text string) int {
	return EstimateTokensWith(text, DefaultCharsPerToken)
}

// EstimateTokensWith estimates tokens with an explicit chars-per-token
// ratio. Counts runes, not bytes, so multi-byte text is not over-counted.
func EstimateTokensWith(text string, charsPerToken float64) int {
	if text == "" {
		return 0
	}
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	return int(math.Ceil(float64(runeLen(text)) / charsPerToken))
}

// EstimateTokensOf estimates tokens for any stringifiable value.
func EstimateTokensOf(v any) int {
	if v == nil {
		return 0
	}
	if s, ok := v.(string); ok {
		return EstimateTokens(s)
	}
	return EstimateTokens(fmt.Sprint(v))
}

// TokenLimit returns the usable token budget for an explicit model limit:
// the limit scaled by HeadroomRatio, floored at MinTokens. A zero or
// negative explicitLimit falls back to DefaultContextTokens scaled the
// same way.
func TokenLimit(explicitLimit int) int {
	limit := explicitLimit
	if limit <= 0 {
		limit = DefaultContextTokens
	}

	scaled := int(math.Floor(float64(limit) * HeadroomRatio))
	if scaled < MinTokens {
		return MinTokens
	}
	return scaled
}

// TruncateToTokenLimit hard-caps a text at maxTokens * charsPerToken
// characters. The cap counts runes, so a multi-byte sequence is never
// split mid-codepoint.
func TruncateToTokenLimit(text string, maxTokens int, charsPerToken float64) TruncateResult {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}

	maxChars := int(float64(maxTokens) * charsPerToken)
	result := TruncateResult{Text: text, MaxChars: maxChars}

	if maxChars <= 0 {
		result.Text = ""
		result.WasTruncated = text != ""
		return result
	}

	runes := []rune(text)
	if len(runes) <= maxChars {
		return result
	}

	result.Text = string(runes[:maxChars])
	result.WasTruncated = true
	return result
}

// CapEmbeddingInput applies the headroom-adjusted token limit to a text
// and truncates it to fit. EstimatedTokens reflects the original text;
// re-capping already-capped text reports WasTruncated false.
func CapEmbeddingInput(text string, opts CapOptions) CapResult {
	charsPerToken := opts.CharsPerToken
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}

	maxTokens := TokenLimit(opts.MaxTokens)
	estimated := EstimateTokensWith(text, charsPerToken)

	truncated := TruncateToTokenLimit(text, maxTokens, charsPerToken)

	return CapResult{
		Text:            truncated.Text,
		WasTruncated:    truncated.WasTruncated,
		EstimatedTokens: estimated,
		MaxTokens:       maxTokens,
	}
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
