// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

package webhook

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/logging"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/metrics"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/models"
)

// Outcome classifies the result of processing one delivery; the HTTP layer
// maps it to a status code.
type Outcome int

const (
	// OutcomeProcessed: event accepted and recorded; respond 200.
	OutcomeProcessed Outcome = iota
	// OutcomeHandshake: URL-validation challenge; respond 200 with tokens.
	OutcomeHandshake
	// OutcomeMalformed: body is not valid JSON; respond 400.
	OutcomeMalformed
	// OutcomeBadSignature: signature verification failed; respond 401.
	OutcomeBadSignature
	// OutcomeMissingSecret: no shared secret configured in production;
	// respond 500.
	OutcomeMissingSecret
)

// Result is the processing verdict handed back to the HTTP layer.
type Result struct {
	Outcome   Outcome
	Category  string
	Handshake *models.URLValidationResponse
}

// EventPublisher is the slice of the bus the processor publishes to.
type EventPublisher interface {
	PublishPresenceUpdate(update models.PresenceUpdate) error
}

// Processor verifies, classifies, retains, and fans out inbound deliveries.
type Processor struct {
	store      *Store
	publisher  EventPublisher
	secret     string
	production bool

	// now is swappable for tests.
	now func() time.Time
}

// NewProcessor creates a Processor. An empty secret is tolerated outside
// production; in production it turns every delivery into a 500.
func NewProcessor(store *Store, publisher EventPublisher, secret string, production bool) *Processor {
	return &Processor{
		store:      store,
		publisher:  publisher,
		secret:     secret,
		production: production,
		now:        time.Now,
	}
}

// Store exposes the retained-event store for the read endpoint.
func (p *Processor) Store() *Store {
	return p.store
}

// Process handles one raw delivery. rawBody must be the exact bytes read
// from the wire. signature and timestamp come from the x-zm-signature and
// x-zm-request-timestamp headers, either possibly empty.
//
// Signature enforcement is deliberately relaxed outside production, and
// skipped when the header is absent, so local tunnels and replay tools work
// without the shared secret.
func (p *Processor) Process(rawBody []byte, signature, timestamp string) Result {
	if p.production && p.secret == "" {
		metrics.RecordWebhookRejection("unconfigured")
		logging.Error().Msg("webhook secret not configured in production")
		return Result{Outcome: OutcomeMissingSecret}
	}

	if p.production && signature != "" {
		if !VerifySignature(rawBody, signature, timestamp, p.secret) {
			metrics.RecordWebhookRejection("bad_signature")
			logging.Warn().Str("timestamp", timestamp).Msg("webhook signature mismatch")
			return Result{Outcome: OutcomeBadSignature}
		}
	}

	var envelope models.WebhookEnvelope
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		metrics.RecordWebhookRejection("malformed")
		logging.Warn().Err(err).Msg("malformed webhook payload")
		return Result{Outcome: OutcomeMalformed}
	}

	if envelope.Event == models.EventURLValidation {
		return p.handshake(envelope)
	}

	category := Classify(envelope.Event)
	p.store.Record(category, models.WebhookEvent{
		EventType:        envelope.Event,
		Timestamp:        p.now().UnixMilli(),
		WebhookTimestamp: timestamp,
		Payload:          envelope.Payload,
	})
	metrics.RecordWebhookEvent(category)

	logging.Debug().
		Str("event", envelope.Event).
		Str("category", category).
		Msg("webhook event recorded")

	switch envelope.Event {
	case "user.presence_status_updated", "user.personal_notes_updated":
		// Fire-and-forget: a publish failure never changes the response.
		p.publishPresenceUpdate(envelope)
	}

	return Result{Outcome: OutcomeProcessed, Category: category}
}

// handshake answers a URL-validation challenge. Control messages are never
// recorded in the retention buffers.
func (p *Processor) handshake(envelope models.WebhookEnvelope) Result {
	var payload models.URLValidationPayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil || payload.PlainToken == "" {
		metrics.RecordWebhookRejection("malformed")
		logging.Warn().Err(err).Msg("url_validation without plainToken")
		return Result{Outcome: OutcomeMalformed}
	}

	logging.Info().Msg("answering webhook url_validation handshake")
	return Result{
		Outcome: OutcomeHandshake,
		Handshake: &models.URLValidationResponse{
			PlainToken:     payload.PlainToken,
			EncryptedToken: HashToken(p.secret, payload.PlainToken),
		},
	}
}

// presenceObject is the inner object of presence-affecting events.
type presenceObject struct {
	Object struct {
		ID             string `json:"id"`
		PresenceStatus string `json:"presence_status"`
		PersonalNotes  string `json:"personal_notes"`
	} `json:"object"`
}

func (p *Processor) publishPresenceUpdate(envelope models.WebhookEnvelope) {
	var po presenceObject
	if err := json.Unmarshal(envelope.Payload, &po); err != nil || po.Object.ID == "" {
		logging.Warn().Err(err).Str("event", envelope.Event).Msg("presence event without user object")
		return
	}

	update := models.PresenceUpdate{
		UserID:        po.Object.ID,
		Status:        po.Object.PresenceStatus,
		PersonalNotes: po.Object.PersonalNotes,
	}
	if err := p.publisher.PublishPresenceUpdate(update); err != nil {
		logging.Error().Err(err).Str("user_id", update.UserID).Msg("presence update publish failed")
	}
}
