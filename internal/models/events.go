// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

package models

import (
	"time"

	"github.com/goccy/go-json"
)

// WebhookEnvelope is the outer shape of every inbound Zoom webhook delivery.
type WebhookEnvelope struct {
	Event   string          `json:"event"`
	EventTS int64           `json:"event_ts,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EventURLValidation is the handshake event Zoom sends when the webhook
// endpoint URL is (re)configured. It is a control message, never recorded
// as a business event.
const EventURLValidation = "endpoint.url_validation"

// URLValidationPayload carries the challenge token of a handshake request.
type URLValidationPayload struct {
	PlainToken string `json:"plainToken"`
}

// URLValidationResponse echoes the challenge token alongside its HMAC.
type URLValidationResponse struct {
	PlainToken     string `json:"plainToken"`
	EncryptedToken string `json:"encryptedToken"`
}

// Event categories for retained webhook events. The ingress derives one of
// these from the upstream event-type string.
const (
	CategoryCallEvents       = "call_events"
	CategoryPresenceEvents   = "presence_events"
	CategoryVoicemailEvents  = "voicemail_events"
	CategorySMSEvents        = "sms_events"
	CategoryUserEvents       = "user_events"
	CategoryCommonAreaEvents = "common_area_events"
	CategoryOtherEvents      = "other_events"
)

// EventCategories lists all categories in a stable order.
var EventCategories = []string{
	CategoryCallEvents,
	CategoryPresenceEvents,
	CategoryVoicemailEvents,
	CategorySMSEvents,
	CategoryUserEvents,
	CategoryCommonAreaEvents,
	CategoryOtherEvents,
}

// WebhookEvent is a normalized record of one received webhook delivery,
// retained in a bounded per-category buffer.
type WebhookEvent struct {
	EventType        string          `json:"event_type"`
	Timestamp        int64           `json:"timestamp"` // epoch millis at receipt
	WebhookTimestamp string          `json:"webhook_timestamp,omitempty"`
	Payload          json.RawMessage `json:"payload,omitempty"`
}

// Push channel message types. The envelope is shared in both directions.
const (
	PushTypeCallEvent       = "call_event"
	PushTypePresenceEvent   = "presence_event"
	PushTypeQueueEvent      = "queue_event"
	PushTypeVoicemailEvent  = "voicemail_event"
	PushTypeSMSEvent        = "sms_event"
	PushTypeParkedCallEvent = "parked_call_event"
	PushTypeUserUpdated     = "user_updated"
	PushTypeEnableEvents    = "enable_events"
	PushTypeHeartbeat       = "heartbeat"
	PushTypeHeartbeatAck    = "heartbeat_ack"
	PushTypeConnected       = "connected"
	PushTypeDisconnected    = "disconnected"
	PushTypeError           = "error"
)

// PushMessage is the envelope exchanged over the push channel.
type PushMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"` // epoch millis
}

// NewPushMessage builds an envelope with the current timestamp.
func NewPushMessage(msgType string, data json.RawMessage) PushMessage {
	return PushMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
}

// PresenceUpdate is the bus payload for presence-affecting events coming
// from either the webhook ingress or the push client.
type PresenceUpdate struct {
	UserID        string `json:"user_id"`
	Status        string `json:"presence_status,omitempty"`
	PersonalNotes string `json:"personal_notes,omitempty"`
}

// UserPatch is the bus payload for user-directory mutations: a shallow set
// of fields merged into the cached user with the given ID.
type UserPatch struct {
	UserID string                 `json:"user_id"`
	Fields map[string]interface{} `json:"fields"`
}
