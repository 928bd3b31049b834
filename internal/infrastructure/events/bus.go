// Package events is the in-process notification channel for asynchronously
// generated recipes.
package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fridgechef/backend/internal/domain"
)

var _ domain.RecipeNotifier = (*Bus)(nil)

// Bus publishes and fans out generated-recipe events over a watermill Go channel.
// Events published while nobody is subscribed are dropped.
type Bus struct {
	pubsub *gochannel.GoChannel
	log    zerolog.Logger
}

// NewBus creates a bus. buffer bounds the per-subscriber output channel.
func NewBus(buffer int64, log zerolog.Logger) *Bus {
	log = log.With().Str("component", "events").Logger()
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: buffer,
		}, NewLoggerAdapter(log)),
		log: log,
	}
}

// PublishGenerated emits an event on TopicRecipesGenerated.
func (b *Bus) PublishGenerated(ctx context.Context, event domain.GeneratedRecipesEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal generated event: %w", err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("request_id", event.RequestID)

	if err := b.pubsub.Publish(domain.TopicRecipesGenerated, msg); err != nil {
		return fmt.Errorf("publish generated event: %w", err)
	}

	b.log.Debug().Str("request_id", event.RequestID).Int("recipes", len(event.Recipes)).Msg("published generated recipes")
	return nil
}

// SubscribeGenerated streams decoded events until ctx is done.
func (b *Bus) SubscribeGenerated(ctx context.Context) (<-chan domain.GeneratedRecipesEvent, error) {
	messages, err := b.pubsub.Subscribe(ctx, domain.TopicRecipesGenerated)
	if err != nil {
		return nil, fmt.Errorf("subscribe generated events: %w", err)
	}

	out := make(chan domain.GeneratedRecipesEvent)
	go func() {
		defer close(out)
		for msg := range messages {
			var event domain.GeneratedRecipesEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				b.log.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping undecodable event")
				msg.Ack()
				continue
			}
			msg.Ack()

			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// Close shuts down the underlying pub/sub and closes all subscriptions.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
