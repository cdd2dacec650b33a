// Package recommendation hands the specializations chosen by a triage
// analysis to the doctor-matching view, keyed by patient session.
package recommendation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/medilink-health/triage/pkg/common/models"
	"github.com/medilink-health/triage/pkg/kvstore"
)

const keyPrefix = "medilink_recommendation:"

var (
	ErrNotFound       = errors.New("recommendation not found")
	ErrSessionMissing = errors.New("session id required")
)

type Store struct {
	kv  kvstore.Store
	now func() time.Time
}

func NewStore(kv kvstore.Store) *Store {
	return &Store{kv: kv, now: time.Now}
}

func (s *Store) Save(ctx context.Context, rec models.Recommendation) error {
	rec.SessionID = strings.TrimSpace(rec.SessionID)
	if rec.SessionID == "" {
		return ErrSessionMissing
	}
	if rec.Specialization == "" && len(rec.Specializations) > 0 {
		rec.Specialization = rec.Specializations[0]
	}
	rec.UpdatedAt = s.now().UTC()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding recommendation: %w", err)
	}
	if err := s.kv.Write(ctx, keyPrefix+rec.SessionID, string(data)); err != nil {
		return fmt.Errorf("persisting recommendation: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, sessionID string) (models.Recommendation, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return models.Recommendation{}, ErrSessionMissing
	}
	raw, ok, err := s.kv.Read(ctx, keyPrefix+sessionID)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("reading recommendation: %w", err)
	}
	if !ok {
		return models.Recommendation{}, ErrNotFound
	}
	var rec models.Recommendation
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return models.Recommendation{}, fmt.Errorf("decoding recommendation: %w", err)
	}
	return rec, nil
}

// Matches reports whether a doctor's specialization is among the recommended
// ones. Comparison ignores case and surrounding space.
func Matches(rec models.Recommendation, specialization string) bool {
	specialization = strings.TrimSpace(specialization)
	for _, s := range rec.Specializations {
		if strings.EqualFold(strings.TrimSpace(s), specialization) {
			return true
		}
	}
	return strings.EqualFold(strings.TrimSpace(rec.Specialization), specialization) && specialization != ""
}
