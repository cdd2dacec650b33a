package triage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/medilink-health/triage/pkg/common/logger"
	"github.com/medilink-health/triage/pkg/common/models"
)

// Mapping command event types consumed from the commands topic.
const (
	CommandUpsert = "mapping.upsert"
	CommandDelete = "mapping.delete"
)

// HandleCommand applies a mapping command event. Malformed or invalid commands
// are logged and dropped; storage failures are returned so the consumer
// leaves the message uncommitted and retries it.
func (e *Engine) HandleCommand(ctx context.Context, event models.Event) error {
	var cmd models.MappingCommand
	if err := decodeEventData(event.Data, &cmd); err != nil {
		logger.Log.WithError(err).WithField("event_id", event.ID).Warn("dropping malformed mapping command")
		return nil
	}

	var err error
	switch event.Type {
	case CommandUpsert:
		if cmd.Mapping == nil {
			logger.Log.WithField("event_id", event.ID).Warn("mapping.upsert without mapping payload")
			return nil
		}
		var entry MappingEntry
		if entry, err = EntryFromRequest(*cmd.Mapping); err == nil {
			err = e.UpsertMapping(ctx, cmd.Key, entry)
		}
	case CommandDelete:
		err = e.DeleteMapping(ctx, cmd.Key)
	default:
		logger.Log.WithField("event_type", event.Type).Debug("ignoring unknown command")
		return nil
	}

	switch {
	case err == nil:
		return nil
	case IsValidationError(err), errors.Is(err, ErrNotFound):
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"event_id":  event.ID,
			"condition": cmd.Key,
		}).Warn("rejected mapping command")
		return nil
	default:
		return err
	}
}

func decodeEventData(data map[string]interface{}, out interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding event data: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding event data: %w", err)
	}
	return nil
}
