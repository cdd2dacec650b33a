// Package localization translates user-facing triage strings. Unknown strings
// and unknown languages always pass through untranslated.
package localization

import (
	"context"
	"strings"
)

// Language identifies an output language. The set is open: a language with no
// dictionary entries is valid and yields source text.
type Language string

const (
	English Language = "english"
	Hindi   Language = "hindi"
	Kannada Language = "kannada"

	// Source is the language triage strings are authored in.
	Source = English
)

// ParseLanguage normalizes a client supplied language code. Empty means Source.
func ParseLanguage(value string) Language {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return Source
	}
	return Language(value)
}

func (l Language) IsSource() bool {
	return l == Source
}

type Translator interface {
	Translate(ctx context.Context, text string, target Language) (string, error)
	// TranslateMany preserves order and length of texts.
	TranslateMany(ctx context.Context, texts []string, target Language) ([]string, error)
}

func translateEach(ctx context.Context, t Translator, texts []string, target Language) ([]string, error) {
	out := make([]string, len(texts))
	for i, text := range texts {
		translated, err := t.Translate(ctx, text, target)
		if err != nil {
			return nil, err
		}
		out[i] = translated
	}
	return out, nil
}
