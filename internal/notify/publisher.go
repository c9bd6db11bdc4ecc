// Package notify publishes triggered alerts to a Pub/Sub topic for
// out-of-band delivery (push notifications, downstream consumers).
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/V8Velocity/auto-climate/internal/alert"
)

// AlertMessage is the wire format of a published alert.
type AlertMessage struct {
	RuleID      string   `json:"rule_id"`
	RuleName    string   `json:"rule_name"`
	OwnerID     string   `json:"owner_id,omitempty"`
	Location    string   `json:"location"`
	Reasons     []string `json:"reasons"`
	TriggeredAt string   `json:"triggered_at"`
}

// PublisherConfig holds configuration for the alert publisher.
type PublisherConfig struct {
	ProjectID string
	TopicName string
	Logger    zerolog.Logger
}

// Publisher publishes triggered alerts. Delivery is best-effort: publish
// failures are logged and never surfaced to the alert engine.
type Publisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	logger    zerolog.Logger
}

// NewPublisher creates a Pub/Sub alert publisher.
func NewPublisher(ctx context.Context, cfg PublisherConfig) (*Publisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &Publisher{
		client:    client,
		publisher: client.Publisher(cfg.TopicName),
		logger:    cfg.Logger,
	}, nil
}

// NotifyTriggered publishes one triggered alert. Safe on a nil receiver,
// so callers can wire the engine unconditionally.
func (p *Publisher) NotifyTriggered(ctx context.Context, t alert.Triggered) {
	if p == nil {
		return
	}

	data, err := json.Marshal(AlertMessage{
		RuleID:      t.RuleID,
		RuleName:    t.RuleName,
		OwnerID:     t.OwnerID,
		Location:    t.Location,
		Reasons:     t.Reasons,
		TriggeredAt: t.TriggeredAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to marshal alert message")
		return
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{Data: data})

	// Resolve the publish off the evaluation path.
	go func() {
		id, err := result.Get(context.WithoutCancel(ctx))
		if err != nil {
			p.logger.Warn().Err(err).Str("rule_id", t.RuleID).Msg("alert publish failed")
			return
		}
		p.logger.Debug().Str("rule_id", t.RuleID).Str("message_id", id).Msg("alert published")
	}()
}

// Close flushes pending publishes and closes the client.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	p.publisher.Stop()
	return p.client.Close()
}

// Ensure Publisher implements the notifier interface.
var _ alert.Notifier = (*Publisher)(nil)
