package triage

import (
	"context"
	"net/url"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/medilink-health/triage/pkg/common/logger"
	"github.com/medilink-health/triage/pkg/localization"
	"github.com/medilink-health/triage/pkg/observability/metrics"
)

const (
	// DefaultConfidence is reported for every analysis. It is a fixed value,
	// not a measure of how well the text matched.
	DefaultConfidence = 0.85

	DefaultLabel = "General Health Consultation"

	videoSearchURL = "https://www.youtube.com/results?search_query="
)

type AnalysisResult struct {
	Disease                   string                `json:"disease"`
	ConditionKey              ConditionKey          `json:"condition_key"`
	Severity                  Severity              `json:"severity"`
	Confidence                float64               `json:"confidence"`
	HomeRemedies              []string              `json:"home_remedies"`
	RecommendedSpecialization string                `json:"recommended_specialization"`
	Specializations           []string              `json:"recommended_specializations"`
	SafetyVideoURL            string                `json:"safety_video_url"`
	Language                  localization.Language `json:"language"`
	MatchedBy                 MatchStage            `json:"matched_by"`
	Localized                 bool                  `json:"localized"`
}

type Composer struct {
	translator localization.Translator
	timeout    time.Duration
}

// NewComposer builds a composer. A nil translator returns source strings for
// every language; timeout bounds each analysis's localization calls when > 0.
func NewComposer(translator localization.Translator, timeout time.Duration) *Composer {
	return &Composer{translator: translator, timeout: timeout}
}

func (c *Composer) Compose(ctx context.Context, match Match, lang localization.Language) AnalysisResult {
	label := Label(match)
	remedies := append([]string(nil), match.Entry.Remedies...)

	result := AnalysisResult{
		Disease:                   label,
		ConditionKey:              match.Key,
		Severity:                  match.Entry.Severity,
		Confidence:                DefaultConfidence,
		HomeRemedies:              remedies,
		RecommendedSpecialization: match.Entry.Specializations[0],
		Specializations:           append([]string(nil), match.Entry.Specializations...),
		SafetyVideoURL:            SafetyVideoURL(label),
		Language:                  lang,
		MatchedBy:                 match.Stage,
		Localized:                 true,
	}

	if lang.IsSource() || c.translator == nil {
		return result
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if translated, err := c.translator.Translate(ctx, label, lang); err != nil {
		c.fallback(err, lang, "label")
		result.Localized = false
	} else {
		result.Disease = translated
	}

	if translated, err := c.translator.TranslateMany(ctx, remedies, lang); err != nil || len(translated) != len(remedies) {
		c.fallback(err, lang, "remedies")
		result.Localized = false
	} else {
		result.HomeRemedies = translated
	}

	return result
}

func (c *Composer) fallback(err error, lang localization.Language, field string) {
	metrics.ObserveTranslationFallback()
	logger.Log.WithError(err).WithFields(map[string]interface{}{
		"language": lang,
		"field":    field,
	}).Warn("localization unavailable, returning source text")
}

// Label is the display form of a match: the key with its first letter
// upper-cased, or DefaultLabel for the fallback.
func Label(match Match) string {
	if match.IsDefault() {
		return DefaultLabel
	}
	key := string(match.Key)
	if key == "" {
		return DefaultLabel
	}
	r, size := utf8.DecodeRuneInString(key)
	return string(unicode.ToUpper(r)) + key[size:]
}

// SafetyVideoURL is always built from the untranslated label.
func SafetyVideoURL(label string) string {
	return videoSearchURL + url.QueryEscape(label+" home remedies")
}
