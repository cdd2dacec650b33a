package triage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/medilink-health/triage/pkg/kvstore"
)

func TestLoadCatalogFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `rules:
  - key: " Gout "
    specializations: [Rheumatologist]
    severity: moderate
    remedies: [Rest the joint]
  - key: fever
    specializations: [General Physician]
    severity: mild
    remedies: [Rest adequately]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}

	rules, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rules) != 2 || rules[0].Key != "gout" || rules[1].Key != "fever" {
		t.Fatalf("unexpected rules %+v", rules)
	}
	if rules[0].Specializations[0] != "Rheumatologist" || rules[0].Severity != Moderate {
		t.Fatalf("inline mapping not decoded: %+v", rules[0])
	}
}

func TestLoadCatalogRejectsBadRules(t *testing.T) {
	tests := map[string]string{
		"duplicate": `rules:
  - {key: fever, specializations: [A], severity: mild, remedies: [B]}
  - {key: FEVER, specializations: [A], severity: mild, remedies: [B]}
`,
		"invalid severity": `rules:
  - {key: fever, specializations: [A], severity: urgent, remedies: [B]}
`,
		"empty": `rules: []`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "catalog.yaml")
			os.WriteFile(path, []byte(content), 0o600)
			if _, err := LoadCatalog(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDefaultCatalogIsValid(t *testing.T) {
	seen := map[ConditionKey]int{}
	for i, rule := range DefaultRules() {
		if err := rule.Validate(); err != nil {
			t.Fatalf("rule %q invalid: %v", rule.Key, err)
		}
		seen[rule.Key] = i
	}
	if seen[BoneFractureKey] > seen["fracture"] {
		t.Fatal("bone fracture must precede fracture")
	}
	for _, key := range []ConditionKey{ChestPainKey, DifficultyBreathingKey, BoneFractureKey} {
		if _, ok := seen[key]; !ok {
			t.Fatalf("override target %q missing from catalog", key)
		}
	}
	if err := DefaultEntry().Validate(); err != nil {
		t.Fatalf("default entry invalid: %v", err)
	}
}

func TestLoadCatalogMissingFile(t *testing.T) {
	rules, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing catalog")
	}
	if rules != nil {
		t.Fatalf("expected no rules alongside the error, got %d", len(rules))
	}
}

func TestFractureFollowsBoneRules(t *testing.T) {
	_, store := newTestEngine(kvstore.NewMemory(), nil)
	classifier := NewClassifier(store, DefaultClassifierConfig())
	ctx := context.Background()

	if got := classifier.Classify(ctx, "possible bone injury after a fall").Key; got != "bone injury" {
		t.Fatalf("expected bone injury, got %q", got)
	}
	if got := classifier.Classify(ctx, "stress fracture in my foot").Key; got != "fracture" {
		t.Fatalf("expected fracture, got %q", got)
	}
}
