// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

// Package wsclient maintains the persistent push channel to the Zoom event
// gateway: dial with a best-effort bearer token, heartbeat every 30s,
// reconnect with exponential backoff on unclean closes, and fan inbound
// messages out to typed subscribers and the cache mutation bus.
package wsclient

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/logging"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/metrics"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/models"
)

// State of the push channel.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// TokenProvider supplies the bearer token attached to the dial request.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// Publisher is the slice of the bus the client forwards mutations to.
type Publisher interface {
	PublishPresenceUpdate(update models.PresenceUpdate) error
	PublishUserUpdate(patch models.UserPatch) error
}

// Handler receives one push message. Handlers run on the read loop
// goroutine and must not block.
type Handler func(msg models.PushMessage)

// Config holds push channel settings.
type Config struct {
	// URL of the push gateway, ws:// or wss://.
	URL string

	// HeartbeatInterval between client heartbeats. Default 30s.
	HeartbeatInterval time.Duration

	// ReconnectBaseDelay is the first backoff step. Default 1s; attempt n
	// waits base * 2^(n-1).
	ReconnectBaseDelay time.Duration

	// MaxReconnectAttempts before the channel stays down until a manual
	// Connect. Default 5.
	MaxReconnectAttempts int

	// Dialer may be overridden in tests.
	Dialer *websocket.Dialer
}

const writeTimeout = 10 * time.Second

// Client is the reconnecting push channel client.
type Client struct {
	cfg       Config
	tokens    TokenProvider
	publisher Publisher

	mu       sync.Mutex
	state    State
	conn     *websocket.Conn
	attempts int
	closing  bool
	stopHB   chan struct{}

	subMu sync.RWMutex
	subs  map[string][]Handler

	// sleep is swappable for backoff tests.
	sleep func(time.Duration)
}

// New creates a Client in the idle state. The publisher may be nil when
// cache forwarding is not wanted (tests).
func New(cfg Config, tokens TokenProvider, publisher Publisher) *Client {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 30 * time.Second
	}
	if cfg.ReconnectBaseDelay <= 0 {
		cfg.ReconnectBaseDelay = time.Second
	}
	if cfg.MaxReconnectAttempts <= 0 {
		cfg.MaxReconnectAttempts = 5
	}
	if cfg.Dialer == nil {
		cfg.Dialer = &websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	}
	return &Client{
		cfg:       cfg,
		tokens:    tokens,
		publisher: publisher,
		state:     StateIdle,
		subs:      make(map[string][]Handler),
		sleep:     time.Sleep,
	}
}

// State returns the current channel state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers a handler for one message type ("*" for all types)
// and returns its unsubscribe function.
func (c *Client) Subscribe(msgType string, h Handler) func() {
	c.subMu.Lock()
	c.subs[msgType] = append(c.subs[msgType], h)
	idx := len(c.subs[msgType]) - 1
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		handlers := c.subs[msgType]
		if idx < len(handlers) {
			handlers[idx] = nil
		}
	}
}

// emit fans a message out to its type's subscribers and the wildcard list.
func (c *Client) emit(msg models.PushMessage) {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	for _, h := range c.subs[msg.Type] {
		if h != nil {
			h(msg)
		}
	}
	for _, h := range c.subs["*"] {
		if h != nil {
			h(msg)
		}
	}
}

// Connect opens the channel. A no-op while already connecting or open, so
// callers may invoke it freely. A manual Connect after the channel gave up
// resets the attempt counter and starts over.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateConnecting || c.state == StateOpen {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.closing = false
	c.attempts = 0
	c.mu.Unlock()

	return c.dial(ctx)
}

// dial performs one connection attempt.
func (c *Client) dial(ctx context.Context) error {
	header := http.Header{}
	if c.tokens != nil {
		// Best effort: the channel is not yet authenticated server-side, so
		// a token failure downgrades to an anonymous dial.
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			logging.Warn().Err(err).Msg("push channel token unavailable, dialing without auth")
		} else {
			header.Set("Authorization", "Bearer "+token)
		}
	}

	conn, resp, err := c.cfg.Dialer.DialContext(ctx, c.cfg.URL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		logging.Warn().Err(err).Str("url", c.cfg.URL).Msg("push channel dial failed")
		c.handleUncleanClose(ctx)
		return err
	}

	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		conn.Close()
		return nil
	}
	c.conn = conn
	c.state = StateOpen
	c.attempts = 0
	c.stopHB = make(chan struct{})
	stopHB := c.stopHB
	c.mu.Unlock()

	logging.Info().Str("url", c.cfg.URL).Msg("push channel open")
	c.emit(models.NewPushMessage(models.PushTypeConnected, nil))

	// Tell the gateway to start streaming events on this channel.
	if err := c.write(conn, models.NewPushMessage(models.PushTypeEnableEvents, nil)); err != nil {
		logging.Warn().Err(err).Msg("enable-events write failed")
	}

	go c.heartbeatLoop(conn, stopHB)
	go c.readLoop(ctx, conn)
	return nil
}

// Disconnect closes the channel cleanly; no reconnect is scheduled.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.closing = true
	c.state = StateClosed
	conn := c.conn
	c.conn = nil
	if c.stopHB != nil {
		close(c.stopHB)
		c.stopHB = nil
	}
	c.mu.Unlock()

	if conn != nil {
		deadline := time.Now().Add(writeTimeout)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		conn.Close()
	}
	c.emit(models.NewPushMessage(models.PushTypeDisconnected, nil))
}

// heartbeatLoop sends a heartbeat at the configured interval until the
// connection goes away.
func (c *Client) heartbeatLoop(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := c.write(conn, models.NewPushMessage(models.PushTypeHeartbeat, nil)); err != nil {
				logging.Debug().Err(err).Msg("heartbeat write failed")
				return
			}
		}
	}
}

// write sends one message with a bounded deadline. Writes are serialized by
// the connection mutex inside gorilla only per message type, so all app
// writes go through here.
func (c *Client) write(conn *websocket.Conn, msg models.PushMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// readLoop decodes and dispatches inbound messages until the connection
// errors, then decides between clean shutdown and reconnection.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	// A connection that delivers nothing for several heartbeat intervals is
	// dead even if TCP has not noticed.
	idleTimeout := 3 * c.cfg.HeartbeatInterval

	for {
		conn.SetReadDeadline(time.Now().Add(idleTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closing := c.closing
			if c.conn == conn {
				c.conn = nil
				if c.stopHB != nil {
					close(c.stopHB)
					c.stopHB = nil
				}
			}
			c.mu.Unlock()

			if closing {
				return
			}
			logging.Warn().Err(err).Msg("push channel closed uncleanly")
			c.emit(models.NewPushMessage(models.PushTypeDisconnected, nil))
			c.handleUncleanClose(ctx)
			return
		}

		var msg models.PushMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logging.Warn().Err(err).Msg("undecodable push message")
			continue
		}
		c.dispatch(conn, msg)
	}
}

// dispatch routes one inbound message by type.
func (c *Client) dispatch(conn *websocket.Conn, msg models.PushMessage) {
	metrics.RecordPushMessage(msg.Type)

	switch msg.Type {
	case models.PushTypeHeartbeat:
		if err := c.write(conn, models.NewPushMessage(models.PushTypeHeartbeatAck, nil)); err != nil {
			logging.Debug().Err(err).Msg("heartbeat ack write failed")
		}
		return
	case models.PushTypeHeartbeatAck:
		return
	case models.PushTypePresenceEvent:
		c.forwardPresence(msg)
	case models.PushTypeUserUpdated:
		c.forwardUserUpdate(msg)
	}

	c.emit(msg)
}

// presenceEventData is the payload of presence_event push messages.
type presenceEventData struct {
	UserID         string `json:"user_id"`
	ID             string `json:"id"`
	PresenceStatus string `json:"presence_status"`
	PersonalNotes  string `json:"personal_notes"`
}

func (c *Client) forwardPresence(msg models.PushMessage) {
	if c.publisher == nil {
		return
	}
	var data presenceEventData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		logging.Warn().Err(err).Msg("malformed presence_event data")
		return
	}
	userID := data.UserID
	if userID == "" {
		userID = data.ID
	}
	if userID == "" {
		return
	}
	update := models.PresenceUpdate{
		UserID:        userID,
		Status:        data.PresenceStatus,
		PersonalNotes: data.PersonalNotes,
	}
	if err := c.publisher.PublishPresenceUpdate(update); err != nil {
		logging.Error().Err(err).Str("user_id", userID).Msg("presence forward failed")
	}
}

func (c *Client) forwardUserUpdate(msg models.PushMessage) {
	if c.publisher == nil {
		return
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(msg.Data, &fields); err != nil {
		logging.Warn().Err(err).Msg("malformed user_updated data")
		return
	}
	userID, _ := fields["user_id"].(string)
	if userID == "" {
		userID, _ = fields["id"].(string)
	}
	if userID == "" {
		return
	}
	delete(fields, "user_id")
	delete(fields, "id")

	patch := models.UserPatch{UserID: userID, Fields: fields}
	if err := c.publisher.PublishUserUpdate(patch); err != nil {
		logging.Error().Err(err).Str("user_id", userID).Msg("user update forward failed")
	}
}

// backoffDelay is the wait before reconnect attempt n (1-based).
func (c *Client) backoffDelay(attempt int) time.Duration {
	return c.cfg.ReconnectBaseDelay * (1 << (attempt - 1))
}

// handleUncleanClose schedules the next reconnect attempt, or gives up
// after the configured maximum and stays closed until a manual Connect.
func (c *Client) handleUncleanClose(ctx context.Context) {
	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		return
	}
	c.attempts++
	attempt := c.attempts
	if attempt > c.cfg.MaxReconnectAttempts {
		c.state = StateClosed
		c.mu.Unlock()
		logging.Error().
			Int("attempts", attempt-1).
			Msg("push channel reconnect attempts exhausted")
		c.emit(models.NewPushMessage(models.PushTypeError, json.RawMessage(`{"reason":"reconnect attempts exhausted"}`)))
		return
	}
	c.state = StateReconnecting
	c.mu.Unlock()

	delay := c.backoffDelay(attempt)
	metrics.PushReconnectsTotal.Inc()
	logging.Info().
		Int("attempt", attempt).
		Dur("delay", delay).
		Msg("scheduling push channel reconnect")

	go func() {
		c.sleep(delay)
		c.mu.Lock()
		if c.closing || c.state != StateReconnecting {
			c.mu.Unlock()
			return
		}
		c.state = StateConnecting
		c.mu.Unlock()
		_ = c.dial(ctx)
	}()
}
