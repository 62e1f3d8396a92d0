// Package messaging provides a NATS client wrapper for the matchmaking
// service. It handles connection lifecycle, subject-based subscriptions,
// and convenience methods for the engine's request and notification
// channels.
package messaging

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subject patterns used by the matchmaking service.
const (
	SubjectSubmit     = "match.submit"   // request, reply-aware
	SubjectWithdraw   = "match.withdraw" // request, reply-aware
	SubjectStatus     = "match.status"   // request, reply-aware
	SubjectEndSession = "session.end"    // request, reply-aware

	SubjectMatchFound   = "match.found"   // + .<participant_id>
	SubjectMatchExpired = "match.expired" // + .<participant_id>
	SubjectEvents       = "match.events"  // + .<event_type>
)

// Client wraps the NATS connection with helper methods for pub/sub.
type Client struct {
	conn *nats.Conn
	mu   sync.Mutex
	subs map[string]*nats.Subscription
}

// Config holds NATS connection settings.
type Config struct {
	URL           string        // nats://localhost:4222
	Name          string        // client name for identification
	ReconnectWait time.Duration // time between reconnect attempts
	MaxReconnects int           // max reconnect attempts (-1 for infinite)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		URL:           "nats://localhost:4222",
		Name:          "matchd",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1, // infinite reconnects
	}
}

// NewClient connects to NATS with the given config and returns a ready
// client. It returns an error if the initial connection fails.
func NewClient(config Config) (*Client, error) {
	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[nats] disconnected: %v", err)
			} else {
				log.Printf("[nats] disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[nats] reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Printf("[nats] connection closed")
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	log.Printf("[nats] connected to %s", nc.ConnectedUrl())

	return &Client{
		conn: nc,
		subs: make(map[string]*nats.Subscription),
	}, nil
}

// Publish sends data to the given NATS subject.
func (c *Client) Publish(subject string, data []byte) error {
	return c.conn.Publish(subject, data)
}

// Subscribe registers a handler for the given subject and stores the
// subscription internally for later cleanup.
func (c *Client) Subscribe(subject string, handler func(msg *nats.Msg)) error {
	sub, err := c.conn.Subscribe(subject, handler)
	if err != nil {
		return fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	c.mu.Lock()
	c.subs[subject] = sub
	c.mu.Unlock()

	return nil
}

// SubscribeSubmit subscribes to match submissions. Handlers receive the
// raw message so they can reply with the match result.
func (c *Client) SubscribeSubmit(handler func(msg *nats.Msg)) error {
	return c.Subscribe(SubjectSubmit, handler)
}

// SubscribeWithdraw subscribes to withdrawal requests.
func (c *Client) SubscribeWithdraw(handler func(msg *nats.Msg)) error {
	return c.Subscribe(SubjectWithdraw, handler)
}

// SubscribeStatus subscribes to status queries.
func (c *Client) SubscribeStatus(handler func(msg *nats.Msg)) error {
	return c.Subscribe(SubjectStatus, handler)
}

// SubscribeEndSession subscribes to session-end requests.
func (c *Client) SubscribeEndSession(handler func(msg *nats.Msg)) error {
	return c.Subscribe(SubjectEndSession, handler)
}

// PublishMatchFound pushes a match notification to one participant.
func (c *Client) PublishMatchFound(participantID string, data []byte) error {
	return c.Publish(SubjectMatchFound+"."+participantID, data)
}

// SubscribeMatchFound subscribes to match notifications for a participant.
func (c *Client) SubscribeMatchFound(participantID string, handler func(data []byte)) error {
	subject := SubjectMatchFound + "." + participantID
	return c.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
}

// UnsubscribeMatchFound unsubscribes from match notifications.
func (c *Client) UnsubscribeMatchFound(participantID string) error {
	return c.unsubscribe(SubjectMatchFound + "." + participantID)
}

// PublishMatchExpired pushes a wait-pool expiry notification to one
// participant.
func (c *Client) PublishMatchExpired(participantID string, data []byte) error {
	return c.Publish(SubjectMatchExpired+"."+participantID, data)
}

// PublishEvent publishes an engine lifecycle event on the observability
// stream.
func (c *Client) PublishEvent(eventType string, data []byte) error {
	return c.Publish(SubjectEvents+"."+eventType, data)
}

// Close drains all active subscriptions and closes the NATS connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for subject, sub := range c.subs {
		if err := sub.Drain(); err != nil {
			log.Printf("[nats] drain %s: %v", subject, err)
		}
	}
	c.subs = make(map[string]*nats.Subscription)

	if err := c.conn.Drain(); err != nil {
		log.Printf("[nats] connection drain: %v", err)
	}

	log.Printf("[nats] client closed")
}

// unsubscribe removes and unsubscribes from a specific subject.
func (c *Client) unsubscribe(subject string) error {
	c.mu.Lock()
	sub, ok := c.subs[subject]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("nats: no subscription for subject %s", subject)
	}
	delete(c.subs, subject)
	c.mu.Unlock()

	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("nats unsubscribe %s: %w", subject, err)
	}
	return nil
}
