package bench

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TextAnalysis describes which kinds of content an engine recovered.
type TextAnalysis struct {
	Digits       bool `json:"digits"`
	SpecialChars bool `json:"special_chars"`
	Email        bool `json:"email"`
	Currency     bool `json:"currency"`
	Punctuation  bool `json:"punctuation"`
	Arabic       bool `json:"arabic"`
	Length       int  `json:"length"`
	Lines        int  `json:"lines"`
}

// Analyze inspects recognized text.
func Analyze(text string) TextAnalysis {
	a := TextAnalysis{
		SpecialChars: strings.ContainsAny(text, "@#$%&*()"),
		Email:        strings.Contains(text, "@") && strings.Contains(text, "."),
		Currency:     strings.ContainsAny(text, "€$"),
		Punctuation:  strings.ContainsAny(text, "!?.,"),
		Length:       utf8.RuneCountInString(strings.TrimSpace(text)),
	}

	for _, r := range text {
		if unicode.IsDigit(r) {
			a.Digits = true
		}
		if r >= 0x0600 && r <= 0x06FF {
			a.Arabic = true
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			a.Lines++
		}
	}

	return a
}
