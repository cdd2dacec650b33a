package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	analysesTotal        atomic.Int64
	analysesMild         atomic.Int64
	analysesModerate     atomic.Int64
	analysesSevere       atomic.Int64
	analysesCritical     atomic.Int64
	matchedByKeyword     atomic.Int64
	matchedByOverride    atomic.Int64
	defaultFallbacks     atomic.Int64
	translationFallbacks atomic.Int64
	overlayUpserts       atomic.Int64
	overlayUpsertFailed  atomic.Int64
)

// ObserveAnalysis records one completed analysis by severity and match stage.
func ObserveAnalysis(severity, stage string) {
	analysesTotal.Add(1)
	switch severity {
	case "mild":
		analysesMild.Add(1)
	case "moderate":
		analysesModerate.Add(1)
	case "severe":
		analysesSevere.Add(1)
	case "critical":
		analysesCritical.Add(1)
	}
	switch stage {
	case "keyword":
		matchedByKeyword.Add(1)
	case "override":
		matchedByOverride.Add(1)
	default:
		defaultFallbacks.Add(1)
	}
}

func ObserveTranslationFallback() {
	translationFallbacks.Add(1)
}

func ObserveUpsert(ok bool) {
	if ok {
		overlayUpserts.Add(1)
		return
	}
	overlayUpsertFailed.Add(1)
}

type Snapshot struct {
	Analyses             int64
	DefaultFallbacks     int64
	TranslationFallbacks int64
	OverlayUpserts       int64
	OverlayUpsertFailed  int64
}

func Current() Snapshot {
	return Snapshot{
		Analyses:             analysesTotal.Load(),
		DefaultFallbacks:     defaultFallbacks.Load(),
		TranslationFallbacks: translationFallbacks.Load(),
		OverlayUpserts:       overlayUpserts.Load(),
		OverlayUpsertFailed:  overlayUpsertFailed.Load(),
	}
}

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP medilink_triage_analyses_total Number of symptom analyses served.\n")
	fmt.Fprintf(w, "# TYPE medilink_triage_analyses_total counter\n")
	fmt.Fprintf(w, "medilink_triage_analyses_total %d\n", analysesTotal.Load())

	fmt.Fprintf(w, "# HELP medilink_triage_analyses_by_severity_total Number of symptom analyses by resulting severity.\n")
	fmt.Fprintf(w, "# TYPE medilink_triage_analyses_by_severity_total counter\n")
	fmt.Fprintf(w, "medilink_triage_analyses_by_severity_total{severity=\"mild\"} %d\n", analysesMild.Load())
	fmt.Fprintf(w, "medilink_triage_analyses_by_severity_total{severity=\"moderate\"} %d\n", analysesModerate.Load())
	fmt.Fprintf(w, "medilink_triage_analyses_by_severity_total{severity=\"severe\"} %d\n", analysesSevere.Load())
	fmt.Fprintf(w, "medilink_triage_analyses_by_severity_total{severity=\"critical\"} %d\n", analysesCritical.Load())

	fmt.Fprintf(w, "# HELP medilink_triage_matches_total Number of symptom analyses by match stage.\n")
	fmt.Fprintf(w, "# TYPE medilink_triage_matches_total counter\n")
	fmt.Fprintf(w, "medilink_triage_matches_total{stage=\"keyword\"} %d\n", matchedByKeyword.Load())
	fmt.Fprintf(w, "medilink_triage_matches_total{stage=\"override\"} %d\n", matchedByOverride.Load())
	fmt.Fprintf(w, "medilink_triage_matches_total{stage=\"default\"} %d\n", defaultFallbacks.Load())

	fmt.Fprintf(w, "# HELP medilink_triage_translation_fallbacks_total Number of analyses returned untranslated because localization failed.\n")
	fmt.Fprintf(w, "# TYPE medilink_triage_translation_fallbacks_total counter\n")
	fmt.Fprintf(w, "medilink_triage_translation_fallbacks_total %d\n", translationFallbacks.Load())

	fmt.Fprintf(w, "# HELP medilink_triage_overlay_upserts_total Number of mapping overlay upserts persisted.\n")
	fmt.Fprintf(w, "# TYPE medilink_triage_overlay_upserts_total counter\n")
	fmt.Fprintf(w, "medilink_triage_overlay_upserts_total %d\n", overlayUpserts.Load())

	fmt.Fprintf(w, "# HELP medilink_triage_overlay_upsert_failures_total Number of mapping overlay upserts that could not be persisted.\n")
	fmt.Fprintf(w, "# TYPE medilink_triage_overlay_upsert_failures_total counter\n")
	fmt.Fprintf(w, "medilink_triage_overlay_upsert_failures_total %d\n", overlayUpsertFailed.Load())
}
