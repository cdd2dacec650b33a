package triage

import (
	"errors"
	"fmt"
	"strings"
)

type Severity string

const (
	Mild     Severity = "mild"
	Moderate Severity = "moderate"
	Severe   Severity = "severe"
	Critical Severity = "critical"
)

var severityRank = map[Severity]int{
	Mild:     1,
	Moderate: 2,
	Severe:   3,
	Critical: 4,
}

func ParseSeverity(value string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(value)))
	if !s.Valid() {
		return "", ValidationError{Field: "severity", Reason: fmt.Sprintf("%q is not one of mild, moderate, severe, critical", value)}
	}
	return s, nil
}

func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// Rank orders severities by clinical urgency. Unknown values rank 0.
func (s Severity) Rank() int {
	return severityRank[s]
}

// ConditionKey is a trimmed, lower-cased condition name such as "chest pain".
type ConditionKey string

func NormalizeKey(key string) ConditionKey {
	return ConditionKey(strings.ToLower(strings.TrimSpace(key)))
}

type MappingEntry struct {
	Specializations []string `yaml:"specializations" json:"specializations"`
	Severity        Severity `yaml:"severity" json:"severity"`
	Remedies        []string `yaml:"remedies" json:"remedies"`
}

// Validate checks that the entry has at least one specialization and remedy
// and a known severity.
func (e MappingEntry) Validate() error {
	if len(e.Specializations) == 0 {
		return ValidationError{Field: "specializations", Reason: "at least one specialization is required"}
	}
	for _, s := range e.Specializations {
		if strings.TrimSpace(s) == "" {
			return ValidationError{Field: "specializations", Reason: "blank specialization"}
		}
	}
	if len(e.Remedies) == 0 {
		return ValidationError{Field: "remedies", Reason: "at least one remedy is required"}
	}
	for _, r := range e.Remedies {
		if strings.TrimSpace(r) == "" {
			return ValidationError{Field: "remedies", Reason: "blank remedy"}
		}
	}
	if !e.Severity.Valid() {
		return ValidationError{Field: "severity", Reason: fmt.Sprintf("%q is not one of mild, moderate, severe, critical", e.Severity)}
	}
	return nil
}

func (e MappingEntry) clone() MappingEntry {
	return MappingEntry{
		Specializations: append([]string(nil), e.Specializations...),
		Severity:        e.Severity,
		Remedies:        append([]string(nil), e.Remedies...),
	}
}

// Rule binds a condition key to its mapping. Rules are evaluated in slice order.
type Rule struct {
	Key          ConditionKey `yaml:"key" json:"key"`
	MappingEntry `yaml:",inline"`
}

var (
	ErrNotFound = errors.New("mapping not found")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid mapping %s: %s", e.Field, e.Reason)
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// StorageError reports that the persistent store could not be read or written.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("mapping store %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
