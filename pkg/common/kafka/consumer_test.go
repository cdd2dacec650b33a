package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/medilink-health/triage/pkg/common/logger"
	"github.com/medilink-health/triage/pkg/common/models"
	"github.com/segmentio/kafka-go"
)

func init() {
	logger.Discard()
}

type fakeReader struct {
	messages  []kafka.Message
	next      int
	committed []int64
	onDrained context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if r.next >= len(r.messages) {
		r.onDrained()
		return kafka.Message{}, context.Canceled
	}
	m := r.messages[r.next]
	r.next++
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Config() kafka.ReaderConfig {
	return kafka.ReaderConfig{Topic: "triage-mapping-commands"}
}

func (r *fakeReader) Close() error { return nil }

func eventMessage(t *testing.T, offset int64, id string) kafka.Message {
	value, err := json.Marshal(models.Event{ID: id, Type: "mapping.upsert"})
	if err != nil {
		t.Fatalf("failed to encode event: %v", err)
	}
	return kafka.Message{Offset: offset, Value: value}
}

func newTestConsumer(reader messageReader) *Consumer {
	c := newConsumer(reader)
	c.retryBase = time.Millisecond
	c.retryMax = 2 * time.Millisecond
	return c
}

func TestConsumeRetriesFailedMessageBeforeNext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		messages:  []kafka.Message{eventMessage(t, 10, "a"), eventMessage(t, 11, "b")},
		onDrained: cancel,
	}
	consumer := newTestConsumer(reader)

	var seen []string
	failures := 2
	err := consumer.Consume(ctx, func(_ context.Context, event models.Event) error {
		seen = append(seen, event.ID)
		if event.ID == "a" && failures > 0 {
			failures--
			return errors.New("storage unavailable")
		}
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	want := []string{"a", "a", "a", "b"}
	if len(seen) != len(want) {
		t.Fatalf("expected handler calls %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("expected handler calls %v, got %v", want, seen)
		}
	}
	if len(reader.committed) != 2 || reader.committed[0] != 10 || reader.committed[1] != 11 {
		t.Fatalf("expected offsets 10 then 11 committed, got %v", reader.committed)
	}
	if consumer.failed.Load() != 2 || consumer.processed.Load() != 2 {
		t.Fatalf("unexpected counts failed=%d processed=%d", consumer.failed.Load(), consumer.processed.Load())
	}
}

func TestConsumeNeverCommitsPastFailingMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		messages:  []kafka.Message{eventMessage(t, 10, "a"), eventMessage(t, 11, "b")},
		onDrained: cancel,
	}
	consumer := newTestConsumer(reader)

	attempts := 0
	err := consumer.Consume(ctx, func(_ context.Context, event models.Event) error {
		if event.ID != "a" {
			t.Fatalf("message %s fetched while %s was still failing", event.ID, "a")
		}
		attempts++
		if attempts == 3 {
			cancel()
		}
		return errors.New("storage unavailable")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(reader.committed) != 0 {
		t.Fatalf("failing message must not be committed, got %v", reader.committed)
	}
	if reader.next != 1 {
		t.Fatalf("expected only the failing message to be fetched, got %d", reader.next)
	}
}

func TestConsumeCommitsUndecodableMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		messages:  []kafka.Message{{Offset: 5, Value: []byte("not json")}, eventMessage(t, 6, "b")},
		onDrained: cancel,
	}
	calls := 0
	newTestConsumer(reader).Consume(ctx, func(context.Context, models.Event) error {
		calls++
		return nil
	})
	if calls != 1 {
		t.Fatalf("expected one handled event, got %d", calls)
	}
	if len(reader.committed) != 2 || reader.committed[0] != 5 {
		t.Fatalf("expected undecodable message committed, got %v", reader.committed)
	}
}
