// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

// Package bus carries cache mutation events between the ingress paths
// (webhooks, push client) and the cache consumer over an in-process
// Watermill pub/sub channel.
//
// Ingress handlers publish and return immediately; delivery and cache
// application happen on the consumer's goroutine. Publish failures are
// logged, never surfaced to the HTTP caller.
package bus

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/models"
)

// Topics for cache mutation events.
const (
	TopicPresenceUpdated = "presence.updated"
	TopicUserUpdated     = "user.updated"
)

// Bus wraps an in-process Watermill pub/sub.
type Bus struct {
	pubSub *gochannel.GoChannel
}

// New creates a Bus with a buffered output channel so ingress publishes do
// not block on a slow consumer.
func New() *Bus {
	return &Bus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 256},
			newLoggerAdapter(),
		),
	}
}

// PublishPresenceUpdate emits a presence mutation event.
func (b *Bus) PublishPresenceUpdate(update models.PresenceUpdate) error {
	return b.publish(TopicPresenceUpdated, update)
}

// PublishUserUpdate emits a user profile mutation event.
func (b *Bus) PublishUserUpdate(patch models.UserPatch) error {
	return b.publish(TopicUserUpdated, patch)
}

func (b *Bus) publish(topic string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.pubSub.Publish(topic, message.NewMessage(watermill.NewUUID(), payload))
}

// Subscribe returns the message stream for a topic. The subscription ends
// when ctx is canceled or the bus closes.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubSub.Subscribe(ctx, topic)
}

// Close shuts the pub/sub down, closing all subscriber channels.
func (b *Bus) Close() error {
	return b.pubSub.Close()
}
