package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
)

// DefaultMaxConcurrent bounds the requests one instance handles at once
const DefaultMaxConcurrent = 8

// ErrNotConnected indicates the NATS connection is down
var ErrNotConnected = errors.New("nats not connected")

// Config configures the NATS bus
type Config struct {
	URL            string
	Prefix         string
	QueueGroup     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	RequestTimeout time.Duration
	// MaxConcurrent bounds in-flight requests across all served kinds
	MaxConcurrent int
}

// Handler answers one request payload
type Handler func(ctx context.Context, data []byte) (interface{}, error)

// NATSBus publishes outcomes and serves requests over one NATS connection
type NATSBus struct {
	conn     *nats.Conn
	subjects Subjects
	cfg      Config
	logger   *logrus.Entry

	workers *pool.Pool

	mu   sync.Mutex
	subs []*nats.Subscription
}

// Connect dials NATS and keeps retrying in the background if the server is
// not yet reachable.
func Connect(cfg Config, logger *logrus.Logger) (*NATSBus, error) {
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = 60
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = 2 * time.Second
	}
	entry := logger.WithField("component", "events")

	nc, err := nats.Connect(cfg.URL,
		nats.Name("boat-oracle"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				entry.WithError(err).Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			entry.WithField("url", c.ConnectedUrl()).Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return NewNATSBus(nc, cfg, entry), nil
}

// NewNATSBus wraps an existing connection
func NewNATSBus(conn *nats.Conn, cfg Config, logger *logrus.Entry) *NATSBus {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 90 * time.Second
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	return &NATSBus{
		conn:     conn,
		subjects: Subjects{Prefix: cfg.Prefix},
		cfg:      cfg,
		logger:   logger,
		workers:  pool.New().WithMaxGoroutines(cfg.MaxConcurrent),
	}
}

// Subjects returns the subject builder of this bus
func (b *NATSBus) Subjects() Subjects {
	return b.subjects
}

// Publish sends data as JSON
func (b *NATSBus) Publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return b.conn.Publish(subject, payload)
}

// Serve answers requests of one kind with h. Requests are spread across the
// configured queue group so several instances can share the load, and each
// instance runs up to MaxConcurrent of them at once.
func (b *NATSBus) Serve(kind string, h Handler) error {
	subject := b.subjects.Request(kind)
	sub, err := b.conn.QueueSubscribe(subject, b.cfg.QueueGroup, func(msg *nats.Msg) {
		var respond func([]byte) error
		if msg.Reply != "" {
			respond = msg.Respond
		}
		b.dispatch(subject, h, msg.Data, respond)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	b.logger.WithField("subject", subject).Info("Serving requests")
	return nil
}

// dispatch runs h on the worker pool. It blocks the subscription while the
// pool is full. respond may be nil for requests without a reply subject.
func (b *NATSBus) dispatch(subject string, h Handler, data []byte, respond func([]byte) error) {
	b.workers.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), b.cfg.RequestTimeout)
		defer cancel()

		reply := HandleRequest(ctx, h, data)
		if respond == nil {
			return
		}
		if err := respond(reply); err != nil {
			b.logger.WithError(err).WithField("subject", subject).Warn("Failed to respond to request")
		}
	})
}

// HandleRequest runs h and encodes its outcome as a Reply
func HandleRequest(ctx context.Context, h Handler, data []byte) []byte {
	var reply Reply

	result, err := runHandler(ctx, h, data)
	if err == nil {
		var encoded []byte
		encoded, err = json.Marshal(result)
		reply.Result = encoded
	}
	if err != nil {
		reply = Reply{Error: err.Error()}
	} else {
		reply.OK = true
	}

	out, _ := json.Marshal(reply)
	return out
}

func runHandler(ctx context.Context, h Handler, data []byte) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h(ctx, data)
}

// Name identifies the bus in readiness checks
func (b *NATSBus) Name() string {
	return "nats"
}

// Check reports whether the connection is usable
func (b *NATSBus) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !b.conn.IsConnected() {
		return fmt.Errorf("%w: %s", ErrNotConnected, b.conn.Status())
	}
	return nil
}

// Close stops serving, waits for in-flight requests and drains the connection
func (b *NATSBus) Close() {
	b.mu.Lock()
	for _, sub := range b.subs {
		_ = sub.Unsubscribe()
	}
	b.subs = nil
	b.mu.Unlock()

	b.workers.Wait()

	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}
