package localization

import (
	"context"
	"sync"

	"github.com/medilink-health/triage/pkg/common/logger"
)

// Chain tries each translator in order and returns the first result that did
// not fail. It fails only when every translator failed.
type Chain struct {
	translators []Translator
}

func NewChain(translators ...Translator) *Chain {
	return &Chain{translators: translators}
}

func (c *Chain) Translate(ctx context.Context, text string, target Language) (string, error) {
	var lastErr error
	for _, t := range c.translators {
		translated, err := t.Translate(ctx, text, target)
		if err == nil {
			return translated, nil
		}
		lastErr = err
		logger.Log.WithError(err).WithField("language", target).Warn("translator failed, trying next")
	}
	if lastErr == nil {
		return text, nil
	}
	return "", lastErr
}

func (c *Chain) TranslateMany(ctx context.Context, texts []string, target Language) ([]string, error) {
	var lastErr error
	for _, t := range c.translators {
		translated, err := t.TranslateMany(ctx, texts, target)
		if err == nil {
			return translated, nil
		}
		lastErr = err
		logger.Log.WithError(err).WithField("language", target).Warn("translator failed, trying next")
	}
	if lastErr == nil {
		return append([]string(nil), texts...), nil
	}
	return nil, lastErr
}

type cacheKey struct {
	text   string
	target Language
}

// Cached memoizes successful translations of the wrapped translator.
type Cached struct {
	next  Translator
	mu    sync.RWMutex
	cache map[cacheKey]string
}

func NewCached(next Translator) *Cached {
	return &Cached{next: next, cache: make(map[cacheKey]string)}
}

func (c *Cached) Translate(ctx context.Context, text string, target Language) (string, error) {
	if text == "" || target.IsSource() {
		return text, nil
	}
	key := cacheKey{text: text, target: target}
	c.mu.RLock()
	translated, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return translated, nil
	}

	translated, err := c.next.Translate(ctx, text, target)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.cache[key] = translated
	c.mu.Unlock()
	return translated, nil
}

func (c *Cached) TranslateMany(ctx context.Context, texts []string, target Language) ([]string, error) {
	if target.IsSource() {
		return append([]string(nil), texts...), nil
	}

	out := make([]string, len(texts))
	var missing []string
	var missingIdx []int
	c.mu.RLock()
	for i, text := range texts {
		if translated, ok := c.cache[cacheKey{text: text, target: target}]; ok {
			out[i] = translated
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}
	c.mu.RUnlock()

	if len(missing) == 0 {
		return out, nil
	}

	translated, err := c.next.TranslateMany(ctx, missing, target)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	for j, idx := range missingIdx {
		out[idx] = translated[j]
		c.cache[cacheKey{text: missing[j], target: target}] = translated[j]
	}
	c.mu.Unlock()
	return out, nil
}

// Clear drops every cached translation.
func (c *Cached) Clear() {
	c.mu.Lock()
	c.cache = make(map[cacheKey]string)
	c.mu.Unlock()
}
