package security

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxInputLength is the hard bound on free-text user input.
const MaxInputLength = 500

// ErrInvalidInput marks sanitizer rejections. Handlers must surface a
// generic message and never echo which check fired.
var ErrInvalidInput = errors.New("invalid input")

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	bracketChars   = regexp.MustCompile(`[<>{}]`)
	quoteChars     = regexp.MustCompile(`["']`)
	specialRuns    = regexp.MustCompile(`[!@#$%^&*()_+=\-\[\]\\|;:,.<>?/]{3,}`)
)

// Validates and cleans free-text user input before it is embedded into an
// outbound model prompt.
type Sanitizer struct{}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// Returns the cleaned input, or ErrInvalidInput when the text is empty, too
// long, matches an injection signature, or carries too many suspicious
// keywords. The two reject triggers are independent: a single pattern match
// blocks, and so do 3+ distinct keyword hits with no pattern match at all.
func (s *Sanitizer) Sanitize(rawInput string) (string, error) {
	if strings.TrimSpace(rawInput) == "" {
		return "", fmt.Errorf("%w: empty message", ErrInvalidInput)
	}

	// Characters, not bytes: peso-sign heavy input is three bytes per rune
	if utf8.RuneCountInString(rawInput) > MaxInputLength {
		return "", fmt.Errorf("%w: input exceeds %d characters", ErrInvalidInput, MaxInputLength)
	}

	for _, category := range injectionCategories {
		for _, pattern := range category.Patterns {
			if pattern.MatchString(rawInput) {
				return "", fmt.Errorf("%w: %s", ErrInvalidInput, category.Name)
			}
		}
	}

	if countSuspiciousWords(rawInput) >= 3 {
		return "", fmt.Errorf("%w: too many suspicious keywords", ErrInvalidInput)
	}

	return cleanInput(rawInput), nil
}

// Counts distinct suspicious words present as substrings.
func countSuspiciousWords(input string) int {
	lower := strings.ToLower(input)

	count := 0
	for _, word := range suspiciousWords {
		if strings.Contains(lower, word) {
			count++
		}
	}

	return count
}

func cleanInput(input string) string {
	cleaned := whitespaceRuns.ReplaceAllString(strings.TrimSpace(input), " ")
	cleaned = bracketChars.ReplaceAllString(cleaned, "")
	cleaned = quoteChars.ReplaceAllString(cleaned, "")
	cleaned = specialRuns.ReplaceAllString(cleaned, "...")

	return cleaned
}
