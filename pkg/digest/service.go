package digest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/fluxorio/threadpool/pkg/core"
	"github.com/fluxorio/threadpool/pkg/core/concurrency"
	"github.com/fluxorio/threadpool/pkg/core/failfast"
)

const drainPollInterval = 5 * time.Millisecond

// RequestIDHeader is echoed on replies; a fresh ID is assigned when absent
const RequestIDHeader = "X-Request-ID"

var (
	// ErrAlreadyStarted is returned by Start on a running service
	ErrAlreadyStarted = errors.New("digest: service already started")

	// ErrNotStarted is returned by Stop on a service that is not running
	ErrNotStarted = errors.New("digest: service not started")
)

// Config configures the digest service
type Config struct {
	// Subject is the NATS subject requests arrive on
	Subject string

	// QueueGroup load-balances requests across service instances
	QueueGroup string

	// Logger defaults to core.NewDefaultLogger()
	Logger core.Logger
}

// DefaultConfig returns the default service configuration
func DefaultConfig() Config {
	return Config{
		Subject:    "threadpool.digest",
		QueueGroup: "threadpool",
	}
}

// Stats counts requests seen by a service
type Stats struct {
	Received int64
	Replied  int64
	Rejected int64 // not accepted by the pool
}

// Service answers digest requests on a NATS subject, one pool job per message
type Service struct {
	nc     *nats.Conn
	pool   *concurrency.Pool
	cfg    Config
	logger core.Logger

	mu  sync.Mutex
	sub *nats.Subscription

	received int64
	replied  int64
	rejected int64
}

// NewService creates a digest service. nc and pool must not be nil.
func NewService(nc *nats.Conn, pool *concurrency.Pool, cfg Config) *Service {
	failfast.NotNil(nc, "nc")
	failfast.NotNil(pool, "pool")

	defaults := DefaultConfig()
	if cfg.Subject == "" {
		cfg.Subject = defaults.Subject
	}
	if cfg.QueueGroup == "" {
		cfg.QueueGroup = defaults.QueueGroup
	}
	logger := cfg.Logger
	if logger == nil {
		logger = core.NewDefaultLogger()
	}

	return &Service{
		nc:     nc,
		pool:   pool,
		cfg:    cfg,
		logger: logger,
	}
}

// Start subscribes to the request subject
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sub != nil {
		return ErrAlreadyStarted
	}
	sub, err := s.nc.QueueSubscribe(s.cfg.Subject, s.cfg.QueueGroup, s.onMsg)
	if err != nil {
		return fmt.Errorf("digest: subscribe %s: %w", s.cfg.Subject, err)
	}
	s.sub = sub
	s.logger.Infof("digest service listening on %s (queue %s)", s.cfg.Subject, s.cfg.QueueGroup)
	return nil
}

// Stop drains the subscription and waits, up to ctx, until every message
// already delivered has been handed to the pool. Shut the pool down after
// Stop returns so none of them is rejected.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	if sub == nil {
		return ErrNotStarted
	}
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("digest: drain %s: %w", s.cfg.Subject, err)
	}

	// Drain is asynchronous; the subscription turns invalid once the last
	// pending message has gone through onMsg.
	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()
	for sub.IsValid() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("digest: drain %s: %w", s.cfg.Subject, ctx.Err())
		case <-ticker.C:
		}
	}
	s.logger.Infof("digest service on %s drained", s.cfg.Subject)
	return nil
}

// Subject returns the subject the service listens on
func (s *Service) Subject() string {
	return s.cfg.Subject
}

// Stats returns request counters
func (s *Service) Stats() Stats {
	return Stats{
		Received: atomic.LoadInt64(&s.received),
		Replied:  atomic.LoadInt64(&s.replied),
		Rejected: atomic.LoadInt64(&s.rejected),
	}
}

func (s *Service) onMsg(msg *nats.Msg) {
	atomic.AddInt64(&s.received, 1)

	requestID := msg.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	job := concurrency.NewNamedJob("digest."+s.cfg.Subject, func(context.Context) error {
		return s.handle(msg, requestID)
	})
	if err := s.pool.Submit(job); err != nil {
		atomic.AddInt64(&s.rejected, 1)
		s.logger.Warnf("digest request %s rejected: %v", requestID, err)
		if rerr := s.respond(msg, requestID, Response{Error: err.Error()}); rerr != nil {
			s.logger.Errorf("digest request %s: reply: %v", requestID, rerr)
		}
	}
}

func (s *Service) handle(msg *nats.Msg, requestID string) error {
	var req Request
	resp := Response{}
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		resp.Error = fmt.Sprintf("decode request: %v", err)
	} else {
		resp = Process(req)
	}

	if resp.Error != "" {
		s.logger.Debugf("digest request %s failed: %s", requestID, resp.Error)
	}
	if err := s.respond(msg, requestID, resp); err != nil {
		return fmt.Errorf("digest request %s: reply: %w", requestID, err)
	}
	return nil
}

func (s *Service) respond(msg *nats.Msg, requestID string, resp Response) error {
	if msg.Reply == "" {
		return nil
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	reply := &nats.Msg{
		Subject: msg.Reply,
		Data:    data,
		Header:  nats.Header{},
	}
	reply.Header.Set(RequestIDHeader, requestID)
	if err := s.nc.PublishMsg(reply); err != nil {
		return err
	}
	atomic.AddInt64(&s.replied, 1)
	return nil
}
