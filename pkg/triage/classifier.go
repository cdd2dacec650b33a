package triage

import (
	"context"
	"strings"
)

// Keys the compound-symptom overrides resolve to.
const (
	ChestPainKey           ConditionKey = "chest pain"
	DifficultyBreathingKey ConditionKey = "difficulty breathing"
	BoneFractureKey        ConditionKey = "bone fracture"

	// DefaultKey identifies the fallback match; it is not a catalog rule.
	DefaultKey ConditionKey = "general health consultation"
)

type MatchStage string

const (
	StageKeyword  MatchStage = "keyword"
	StageOverride MatchStage = "override"
	StageDefault  MatchStage = "default"
)

type Match struct {
	Key   ConditionKey
	Entry MappingEntry
	Stage MatchStage
}

func (m Match) IsDefault() bool {
	return m.Stage == StageDefault
}

type ClassifierConfig struct {
	PainWords      []string
	BreathingTerms []string
	BoneKeywords   []string
}

func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		PainWords:      []string{"pain", "hurt", "ache"},
		BreathingTerms: []string{"breath"},
		BoneKeywords:   []string{"fracture", "bone", "broken", "sprain"},
	}
}

// Classifier maps free text to exactly one condition. Stage A takes the first
// rule whose key occurs in the text, in MappingStore.Rules order. Stage B then
// applies the safety overrides: chest with a pain word forces chest pain,
// otherwise a breathing term forces difficulty breathing, and bone vocabulary
// forces bone fracture only when nothing more specific matched.
type Classifier struct {
	store          *MappingStore
	painWords      []string
	breathingTerms []string
	boneKeywords   []string
}

func NewClassifier(store *MappingStore, cfg ClassifierConfig) *Classifier {
	defaults := DefaultClassifierConfig()
	if len(cfg.PainWords) == 0 {
		cfg.PainWords = defaults.PainWords
	}
	if len(cfg.BreathingTerms) == 0 {
		cfg.BreathingTerms = defaults.BreathingTerms
	}
	if len(cfg.BoneKeywords) == 0 {
		cfg.BoneKeywords = defaults.BoneKeywords
	}

	return &Classifier{
		store:          store,
		painWords:      lowerAll(cfg.PainWords),
		breathingTerms: lowerAll(cfg.BreathingTerms),
		boneKeywords:   lowerAll(cfg.BoneKeywords),
	}
}

func (c *Classifier) Classify(ctx context.Context, text string) Match {
	normalized := strings.ToLower(text)

	match := Match{Key: DefaultKey, Entry: DefaultEntry(), Stage: StageDefault}

	for _, rule := range c.store.Rules(ctx) {
		if strings.Contains(normalized, string(rule.Key)) {
			match = Match{Key: rule.Key, Entry: rule.MappingEntry, Stage: StageKeyword}
			break
		}
	}

	switch {
	case strings.Contains(normalized, "chest") && containsAny(normalized, c.painWords):
		match = c.override(ctx, ChestPainKey, match)
	case containsAny(normalized, c.breathingTerms):
		match = c.override(ctx, DifficultyBreathingKey, match)
	}

	if match.IsDefault() && containsAny(normalized, c.boneKeywords) {
		match = c.override(ctx, BoneFractureKey, match)
	}

	return match
}

// override replaces current with key's entry. When key is absent from the
// catalog and overlay, current is kept.
func (c *Classifier) override(ctx context.Context, key ConditionKey, current Match) Match {
	if current.Key == key {
		return current
	}
	entry, ok := c.store.resolve(ctx, key)
	if !ok {
		return current
	}
	return Match{Key: key, Entry: entry, Stage: StageOverride}
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			out = append(out, w)
		}
	}
	return out
}
