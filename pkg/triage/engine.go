package triage

import (
	"context"

	"github.com/medilink-health/triage/pkg/common/logger"
	"github.com/medilink-health/triage/pkg/localization"
	"github.com/medilink-health/triage/pkg/observability/metrics"
)

const eventSource = "triage-service"

const (
	EventAnalyzed       = "triage.analyzed"
	EventMappingUpsert  = "triage.mapping_upserted"
	EventMappingDeleted = "triage.mapping_deleted"
)

// EventPublisher is satisfied by kafka.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, source string, data map[string]interface{}) error
}

type Engine struct {
	store      *MappingStore
	classifier *Classifier
	composer   *Composer
	events     EventPublisher
}

// NewEngine wires the triage pipeline. events may be nil.
func NewEngine(store *MappingStore, classifier *Classifier, composer *Composer, events EventPublisher) *Engine {
	return &Engine{
		store:      store,
		classifier: classifier,
		composer:   composer,
		events:     events,
	}
}

// Analyze classifies symptomText and composes a localized result. It fails
// only when ctx is already done.
func (e *Engine) Analyze(ctx context.Context, symptomText string, lang localization.Language) (AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return AnalysisResult{}, err
	}

	match := e.classifier.Classify(ctx, symptomText)
	result := e.composer.Compose(ctx, match, lang)

	metrics.ObserveAnalysis(string(result.Severity), string(result.MatchedBy))
	logger.Log.WithFields(map[string]interface{}{
		"condition":  match.Key,
		"severity":   match.Entry.Severity,
		"matched_by": match.Stage,
		"language":   lang,
		"localized":  result.Localized,
	}).Debug("symptoms analyzed")

	e.publish(ctx, EventAnalyzed, map[string]interface{}{
		"condition_key":   string(match.Key),
		"severity":        string(result.Severity),
		"matched_by":      string(result.MatchedBy),
		"specializations": result.Specializations,
		"language":        string(lang),
	})

	return result, nil
}

// UpsertMapping teaches the engine a condition mapping. Returns a
// ValidationError for malformed entries and a *StorageError when the overlay
// could not be persisted.
func (e *Engine) UpsertMapping(ctx context.Context, conditionKey string, entry MappingEntry) error {
	if err := e.store.Upsert(ctx, conditionKey, entry); err != nil {
		return err
	}

	logger.Log.WithFields(map[string]interface{}{
		"condition": NormalizeKey(conditionKey),
		"severity":  entry.Severity,
	}).Info("mapping upserted")

	e.publish(ctx, EventMappingUpsert, map[string]interface{}{
		"condition_key":   string(NormalizeKey(conditionKey)),
		"specializations": entry.Specializations,
		"severity":        string(entry.Severity),
		"remedies":        entry.Remedies,
	})
	return nil
}

func (e *Engine) DeleteMapping(ctx context.Context, conditionKey string) error {
	if err := e.store.Delete(ctx, conditionKey); err != nil {
		return err
	}

	logger.Log.WithField("condition", NormalizeKey(conditionKey)).Info("mapping deleted")
	e.publish(ctx, EventMappingDeleted, map[string]interface{}{
		"condition_key": string(NormalizeKey(conditionKey)),
	})
	return nil
}

func (e *Engine) Mappings(ctx context.Context) []Mapping {
	return e.store.Mappings(ctx)
}

func (e *Engine) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if e.events == nil {
		return
	}
	if err := e.events.PublishEvent(ctx, eventType, eventSource, data); err != nil {
		logger.Log.WithError(err).WithField("event_type", eventType).Warn("failed to publish triage event")
	}
}
