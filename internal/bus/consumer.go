// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

package bus

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/logging"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/models"
)

// CacheMutator is the slice of the cache the consumer writes to.
type CacheMutator interface {
	UpdateUserPresence(userID string, presence models.PhoneUserPresence)
	UpdateUser(userID string, patch models.UserPatch)
}

// Consumer applies published mutation events to the cache. It runs as a
// supervised service; Serve blocks until the context is canceled.
type Consumer struct {
	bus   *Bus
	cache CacheMutator
}

// NewConsumer wires the consumer to a bus and cache.
func NewConsumer(b *Bus, cache CacheMutator) *Consumer {
	return &Consumer{bus: b, cache: cache}
}

// Serve subscribes to both mutation topics and applies events until ctx is
// canceled. Malformed payloads are logged and acked so they are not
// redelivered.
func (c *Consumer) Serve(ctx context.Context) error {
	presence, err := c.bus.Subscribe(ctx, TopicPresenceUpdated)
	if err != nil {
		return err
	}
	users, err := c.bus.Subscribe(ctx, TopicUserUpdated)
	if err != nil {
		return err
	}

	logging.Info().Msg("cache mutation consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-presence:
			if !ok {
				return nil
			}
			c.applyPresence(msg)
		case msg, ok := <-users:
			if !ok {
				return nil
			}
			c.applyUser(msg)
		}
	}
}

func (c *Consumer) applyPresence(msg *message.Message) {
	defer msg.Ack()

	var update models.PresenceUpdate
	if err := json.Unmarshal(msg.Payload, &update); err != nil {
		logging.Error().Err(err).Str("message_id", msg.UUID).Msg("malformed presence update event")
		return
	}
	if update.UserID == "" {
		logging.Warn().Str("message_id", msg.UUID).Msg("presence update event without user_id")
		return
	}

	c.cache.UpdateUserPresence(update.UserID, models.PhoneUserPresence{
		UserID:        update.UserID,
		Status:        update.Status,
		PersonalNotes: update.PersonalNotes,
	})
	logging.Debug().Str("user_id", update.UserID).Str("status", update.Status).Msg("applied presence update")
}

func (c *Consumer) applyUser(msg *message.Message) {
	defer msg.Ack()

	var patch models.UserPatch
	if err := json.Unmarshal(msg.Payload, &patch); err != nil {
		logging.Error().Err(err).Str("message_id", msg.UUID).Msg("malformed user update event")
		return
	}
	if patch.UserID == "" {
		logging.Warn().Str("message_id", msg.UUID).Msg("user update event without user_id")
		return
	}

	c.cache.UpdateUser(patch.UserID, patch)
	logging.Debug().Str("user_id", patch.UserID).Msg("applied user update")
}
