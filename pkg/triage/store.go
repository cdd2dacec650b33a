package triage

import (
	"context"
	"sync"

	"github.com/medilink-health/triage/pkg/common/logger"
	"github.com/medilink-health/triage/pkg/kvstore"
	"github.com/medilink-health/triage/pkg/observability/metrics"
)

// OverlayStorageKey is the key the overlay document is persisted under.
const OverlayStorageKey = "medilink_disease_db_overlay_v1"

// Mapping describes one effective rule and the layer it came from.
type Mapping struct {
	Rule
	Overlay bool `json:"overlay"`
}

// MappingStore resolves condition keys against the overlay, then the base
// catalog, then DefaultEntry. The base catalog is never mutated. The overlay
// is loaded from the key-value store on first use and written through on
// every change.
type MappingStore struct {
	base      []Rule
	baseIndex map[ConditionKey]int
	kv        kvstore.Store

	mu      sync.RWMutex
	overlay *overlay
	loaded  bool
}

func NewMappingStore(base []Rule, kv kvstore.Store) *MappingStore {
	s := &MappingStore{
		base:      make([]Rule, 0, len(base)),
		baseIndex: make(map[ConditionKey]int, len(base)),
		kv:        kv,
		overlay:   newOverlay(),
	}
	for _, rule := range base {
		key := NormalizeKey(string(rule.Key))
		if _, dup := s.baseIndex[key]; dup || key == "" {
			continue
		}
		s.baseIndex[key] = len(s.base)
		s.base = append(s.base, Rule{Key: key, MappingEntry: rule.MappingEntry.clone()})
	}
	return s
}

// ensureLoaded reads the overlay once. A failed read leaves the store
// unloaded so the next call retries; callers treat the overlay as empty
// meanwhile.
func (s *MappingStore) ensureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}

	raw, ok, err := s.kv.Read(ctx, OverlayStorageKey)
	if err != nil {
		logger.Log.WithError(err).Error("failed to read mapping overlay, using built-in mappings")
		return &StorageError{Op: "read", Key: OverlayStorageKey, Err: err}
	}

	next := newOverlay()
	if ok && raw != "" {
		skipped, err := next.decode([]byte(raw))
		if err != nil {
			// A corrupt document is not retried; the next upsert replaces it.
			logger.Log.WithError(err).Error("failed to decode mapping overlay, ignoring it")
			next = newOverlay()
		}
		for key, reason := range skipped {
			logger.Log.WithError(reason).WithField("condition", key).Warn("dropping invalid overlay entry")
		}
	}

	s.overlay = next
	s.loaded = true
	logger.Log.WithField("overlay_entries", len(next.keys)).Debug("mapping overlay loaded")
	return nil
}

// Lookup returns the effective entry for key. It never fails.
func (s *MappingStore) Lookup(ctx context.Context, key string) MappingEntry {
	entry, _ := s.resolve(ctx, NormalizeKey(key))
	return entry
}

func (s *MappingStore) resolve(ctx context.Context, key ConditionKey) (MappingEntry, bool) {
	_ = s.ensureLoaded(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if entry, ok := s.overlay.get(key); ok {
		return entry.clone(), true
	}
	if idx, ok := s.baseIndex[key]; ok {
		return s.base[idx].MappingEntry.clone(), true
	}
	return DefaultEntry(), false
}

// Upsert validates entry and stores it in the overlay, replacing any previous
// entry for key. The overlay is persisted before Upsert returns; on a storage
// failure the in-memory overlay is left unchanged.
func (s *MappingStore) Upsert(ctx context.Context, key string, entry MappingEntry) error {
	k := NormalizeKey(key)
	if k == "" {
		return ValidationError{Field: "key", Reason: "condition key is required"}
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	if err := s.ensureLoaded(ctx); err != nil {
		metrics.ObserveUpsert(false)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.overlay.clone()
	next.set(k, entry)
	if err := s.persist(ctx, next); err != nil {
		metrics.ObserveUpsert(false)
		return err
	}
	s.overlay = next
	metrics.ObserveUpsert(true)
	return nil
}

// Delete removes key from the overlay so the base entry, if any, applies again.
func (s *MappingStore) Delete(ctx context.Context, key string) error {
	k := NormalizeKey(key)
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.overlay.clone()
	if !next.remove(k) {
		return ErrNotFound
	}
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.overlay = next
	return nil
}

func (s *MappingStore) persist(ctx context.Context, o *overlay) error {
	data, err := o.MarshalJSON()
	if err != nil {
		return &StorageError{Op: "encode", Key: OverlayStorageKey, Err: err}
	}
	if err := s.kv.Write(ctx, OverlayStorageKey, string(data)); err != nil {
		logger.Log.WithError(err).Error("failed to persist mapping overlay")
		return &StorageError{Op: "write", Key: OverlayStorageKey, Err: err}
	}
	return nil
}

// Rules returns the effective rules in classification order: base order with
// overlay values substituted in place, then overlay-only keys in insertion order.
func (s *MappingStore) Rules(ctx context.Context) []Rule {
	mappings := s.Mappings(ctx)
	rules := make([]Rule, len(mappings))
	for i, m := range mappings {
		rules[i] = m.Rule
	}
	return rules
}

func (s *MappingStore) Mappings(ctx context.Context) []Mapping {
	_ = s.ensureLoaded(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Mapping, 0, len(s.base)+len(s.overlay.keys))
	for _, rule := range s.base {
		if entry, ok := s.overlay.get(rule.Key); ok {
			out = append(out, Mapping{Rule: Rule{Key: rule.Key, MappingEntry: entry.clone()}, Overlay: true})
			continue
		}
		out = append(out, Mapping{Rule: Rule{Key: rule.Key, MappingEntry: rule.MappingEntry.clone()}})
	}
	for _, key := range s.overlay.keys {
		if _, inBase := s.baseIndex[key]; inBase {
			continue
		}
		entry, _ := s.overlay.get(key)
		out = append(out, Mapping{Rule: Rule{Key: key, MappingEntry: entry.clone()}, Overlay: true})
	}
	return out
}

// AllKeys returns base and overlay keys in classification order.
func (s *MappingStore) AllKeys(ctx context.Context) []ConditionKey {
	rules := s.Rules(ctx)
	keys := make([]ConditionKey, len(rules))
	for i, rule := range rules {
		keys[i] = rule.Key
	}
	return keys
}
