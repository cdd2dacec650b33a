package models

import (
	"time"
)

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // triage.analyzed, triage.mapping_upserted, mapping.upsert, mapping.delete
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

// Triage API
type AnalyzeRequest struct {
	Symptoms  string `json:"symptoms"`
	Language  string `json:"language,omitempty"` // english, hindi, kannada, ...
	SessionID string `json:"session_id,omitempty"`
}

type MappingRequest struct {
	Specializations []string `json:"specializations"`
	Severity        string   `json:"severity"`
	Remedies        []string `json:"remedies"`
}

type MappingView struct {
	Key             string   `json:"key"`
	Specializations []string `json:"specializations"`
	Severity        string   `json:"severity"`
	Remedies        []string `json:"remedies"`
	Source          string   `json:"source"` // base, overlay
}

// MappingCommand is the payload of mapping.upsert / mapping.delete events.
type MappingCommand struct {
	Key     string          `json:"key"`
	Mapping *MappingRequest `json:"mapping,omitempty"`
}

// Doctor matching handoff
type Recommendation struct {
	SessionID       string    `json:"session_id"`
	Specialization  string    `json:"recommended_specialization"`
	Specializations []string  `json:"recommended_specializations"`
	Disease         string    `json:"detected_disease"`
	UpdatedAt       time.Time `json:"updated_at"`
}
