package services

import (
	"context"
	"fmt"

	pubnub "github.com/pubnub/go"

	"valetdesk/models"
	"valetdesk/utils"
)

// Publisher broadcasts ticket changes to realtime subscribers.
type Publisher interface {
	Publish(ctx context.Context, event models.ItemEvent) error
}

// NopPublisher drops every event. Used when realtime updates are not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event models.ItemEvent) error {
	return nil
}

type PubNubPublisher struct {
	PubNub  *pubnub.PubNub
	channel string
}

func NewPubNubPublisher(pn *pubnub.PubNub, channel string) *PubNubPublisher {
	return &PubNubPublisher{PubNub: pn, channel: channel}
}

func (p *PubNubPublisher) Publish(ctx context.Context, event models.ItemEvent) error {
	message := map[string]any{
		"type":    event.Type,
		"item_id": event.ItemID,
	}
	if event.Item != nil {
		message["item"] = event.Item
	}

	_, _, err := p.PubNub.Publish().
		Channel(p.channel).
		Message(message).
		Execute()
	if err != nil {
		return fmt.Errorf("pubnub publish to %s: %w", p.channel, err)
	}
	return nil
}

// BreakerPublisher stops calling a failing publisher until its breaker cools down.
type BreakerPublisher struct {
	inner   Publisher
	breaker *utils.CircuitBreaker
}

func NewBreakerPublisher(inner Publisher, breaker *utils.CircuitBreaker) *BreakerPublisher {
	return &BreakerPublisher{inner: inner, breaker: breaker}
}

func (p *BreakerPublisher) Publish(ctx context.Context, event models.ItemEvent) error {
	return p.breaker.Execute(func() error {
		return p.inner.Publish(ctx, event)
	})
}
