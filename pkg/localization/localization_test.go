package localization

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/medilink-health/triage/pkg/common/logger"
)

func init() {
	logger.Discard()
}

func TestDictionaryTranslate(t *testing.T) {
	dict := DefaultDictionary()
	ctx := context.Background()

	got, err := dict.Translate(ctx, "Fever", Hindi)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "बुखार" {
		t.Fatalf("expected hindi fever, got %q", got)
	}

	got, _ = dict.Translate(ctx, "Fever", English)
	if got != "Fever" {
		t.Fatalf("expected english pass-through, got %q", got)
	}

	got, _ = dict.Translate(ctx, "Unknown phrase", Kannada)
	if got != "Unknown phrase" {
		t.Fatalf("expected unknown phrase pass-through, got %q", got)
	}

	got, _ = dict.Translate(ctx, "Fever", Language("tamil"))
	if got != "Fever" {
		t.Fatalf("expected language without entries to pass through, got %q", got)
	}
}

func TestDictionaryTranslateManyPreservesOrder(t *testing.T) {
	dict := DefaultDictionary()
	in := []string{"Stay hydrated", "Not in dictionary", "Rest adequately"}
	out, err := dict.TranslateMany(context.Background(), in, Kannada)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d results, got %d", len(in), len(out))
	}
	if out[1] != "Not in dictionary" {
		t.Fatalf("expected pass-through at index 1, got %q", out[1])
	}
	if out[0] == in[0] || out[2] == in[2] {
		t.Fatalf("expected known phrases to be translated, got %v", out)
	}
}

func TestLoadDictionaryMergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.yaml")
	content := []byte("languages:\n  Tamil:\n    Fever: \"காய்ச்சல்\"\n  hindi:\n    Cold: \"सर्दी\"\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write dictionary: %v", err)
	}

	dict, err := LoadDictionary(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()
	if got, _ := dict.Translate(ctx, "Fever", Language("tamil")); got != "காய்ச்சல்" {
		t.Fatalf("expected tamil entry, got %q", got)
	}
	if got, _ := dict.Translate(ctx, "Cold", Hindi); got != "सर्दी" {
		t.Fatalf("expected overridden hindi entry, got %q", got)
	}
	if got, _ := dict.Translate(ctx, "Fever", Hindi); got != "बुखार" {
		t.Fatalf("expected built-in entry to survive merge, got %q", got)
	}
}

func TestParseLanguage(t *testing.T) {
	if ParseLanguage("") != English {
		t.Fatal("expected empty language to mean english")
	}
	if ParseLanguage("  Hindi ") != Hindi {
		t.Fatal("expected language to be normalized")
	}
}

func TestRemoteTranslateMany(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		var req translateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		out := make([]string, len(req.Q))
		for i, q := range req.Q {
			out[i] = string(req.Target) + ":" + q
		}
		json.NewEncoder(w).Encode(translateResponse{Translations: out})
	}))
	defer server.Close()

	remote := NewRemoteWithClient(server.Client(), server.URL, 3)
	out, err := remote.TranslateMany(context.Background(), []string{"a", "b"}, Hindi)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0] != "hindi:a" || out[1] != "hindi:b" {
		t.Fatalf("unexpected translations %v", out)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected one retry, got %d calls", calls.Load())
	}
}

func TestRemoteSkipsSourceLanguage(t *testing.T) {
	remote := NewRemoteWithClient(http.DefaultClient, "http://127.0.0.1:1", 1)
	got, err := remote.Translate(context.Background(), "Fever", English)
	if err != nil || got != "Fever" {
		t.Fatalf("expected pass-through without a request, got %q err=%v", got, err)
	}
}

type failingTranslator struct{}

func (failingTranslator) Translate(context.Context, string, Language) (string, error) {
	return "", errors.New("unavailable")
}

func (failingTranslator) TranslateMany(context.Context, []string, Language) ([]string, error) {
	return nil, errors.New("unavailable")
}

func TestChainFallsBack(t *testing.T) {
	chain := NewChain(failingTranslator{}, DefaultDictionary())
	got, err := chain.Translate(context.Background(), "Fever", Hindi)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "बुखार" {
		t.Fatalf("expected dictionary fallback, got %q", got)
	}

	if _, err := NewChain(failingTranslator{}).TranslateMany(context.Background(), []string{"x"}, Hindi); err == nil {
		t.Fatal("expected error when every translator fails")
	}
}

type countingTranslator struct {
	calls int
}

func (c *countingTranslator) Translate(_ context.Context, text string, _ Language) (string, error) {
	c.calls++
	return "t:" + text, nil
}

func (c *countingTranslator) TranslateMany(ctx context.Context, texts []string, target Language) ([]string, error) {
	return translateEach(ctx, c, texts, target)
}

func TestCachedMemoizes(t *testing.T) {
	inner := &countingTranslator{}
	cached := NewCached(inner)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if got, _ := cached.Translate(ctx, "Fever", Hindi); got != "t:Fever" {
			t.Fatalf("unexpected translation %q", got)
		}
	}
	out, _ := cached.TranslateMany(ctx, []string{"Fever", "Cold"}, Hindi)
	if out[0] != "t:Fever" || out[1] != "t:Cold" {
		t.Fatalf("unexpected translations %v", out)
	}
	if inner.calls != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", inner.calls)
	}

	cached.Clear()
	cached.Translate(ctx, "Fever", Hindi)
	if inner.calls != 3 {
		t.Fatalf("expected cache miss after clear, got %d calls", inner.calls)
	}
}

type switchableTranslator struct {
	down  bool
	calls int
}

func (s *switchableTranslator) Translate(_ context.Context, text string, _ Language) (string, error) {
	s.calls++
	if s.down {
		return "", errors.New("unavailable")
	}
	return "remote:" + text, nil
}

func (s *switchableTranslator) TranslateMany(ctx context.Context, texts []string, target Language) ([]string, error) {
	return translateEach(ctx, s, texts, target)
}

func TestCachedRemoteRecoversAfterOutage(t *testing.T) {
	remote := &switchableTranslator{down: true}
	chain := NewChain(NewCached(remote), DefaultDictionary())
	ctx := context.Background()

	got, err := chain.Translate(ctx, "Migraine", Hindi)
	if err != nil || got != "Migraine" {
		t.Fatalf("expected dictionary pass-through during outage, got %q, %v", got, err)
	}

	remote.down = false
	if got, _ := chain.Translate(ctx, "Migraine", Hindi); got != "remote:Migraine" {
		t.Fatalf("expected remote translation after recovery, got %q", got)
	}
	calls := remote.calls
	if got, _ := chain.Translate(ctx, "Migraine", Hindi); got != "remote:Migraine" {
		t.Fatalf("expected cached remote translation, got %q", got)
	}
	if remote.calls != calls {
		t.Fatal("expected recovered translation to be served from cache")
	}
}
