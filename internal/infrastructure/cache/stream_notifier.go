package cache

import (
	"context"
	"fmt"

	"github.com/erp/retail/internal/application/event"
	"github.com/redis/go-redis/v9"
)

// StreamNotifier appends notifications to a Redis stream. The stream is
// trimmed approximately to maxLen entries.
type StreamNotifier struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewStreamNotifier creates a notifier writing to stream
func NewStreamNotifier(client *redis.Client, stream string, maxLen int64) *StreamNotifier {
	if stream == "" {
		stream = keyPrefix + "notifications"
	}
	return &StreamNotifier{client: client, stream: stream, maxLen: maxLen}
}

// Notify adds one entry to the stream
func (n *StreamNotifier) Notify(ctx context.Context, note event.Notification) error {
	args := &redis.XAddArgs{
		Stream: n.stream,
		Values: map[string]interface{}{
			"id":           note.ID.String(),
			"type":         note.Type,
			"tenant_id":    note.TenantID.String(),
			"aggregate_id": note.AggregateID.String(),
			"occurred_at":  note.OccurredAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			"subject":      note.Subject,
			"payload":      string(note.Payload),
		},
	}
	if n.maxLen > 0 {
		args.MaxLen = n.maxLen
		args.Approx = true
	}
	if err := n.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to append to stream %s: %w", n.stream, err)
	}
	return nil
}

var _ event.Notifier = (*StreamNotifier)(nil)
