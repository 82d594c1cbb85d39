package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/bidwise/competitor-price-ingest/internal/config"
	redis "github.com/redis/go-redis/v9"
)

// ErrUnavailable indicates the shared store connection is not in the
// Connected state. Callers do not reconnect themselves; the Manager does.
var ErrUnavailable = errors.New("store: connection unavailable")

// ConnState tracks the lifecycle of the shared store connection.
type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

const (
	defaultOpTimeout  = 2 * time.Second
	defaultMinBackoff = 500 * time.Millisecond
	defaultMaxBackoff = 30 * time.Second
)

// Manager owns the single shared store connection per process and its
// reconnect loop. All components reach Redis through it.
type Manager struct {
	client *redis.Client
	logger *log.Logger

	opTimeout  time.Duration
	minBackoff time.Duration
	maxBackoff time.Duration

	mu      sync.Mutex
	state   ConnState
	probing bool

	closed chan struct{}
	wg     sync.WaitGroup
}

func NewManager(cfg config.Config, logger *log.Logger) *Manager {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return &Manager{
		client:     client,
		logger:     logger,
		opTimeout:  defaultOpTimeout,
		minBackoff: defaultMinBackoff,
		maxBackoff: defaultMaxBackoff,
		state:      StateDisconnected,
		closed:     make(chan struct{}),
	}
}

// Client exposes the underlying connection for store wrappers.
func (m *Manager) Client() *redis.Client {
	return m.client
}

func (m *Manager) State() ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Connected() bool {
	return m.State() == StateConnected
}

// Connect performs the initial ping. On failure the Manager transitions to
// Reconnecting and keeps probing in the background, so the process can come
// up even when the store is down.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return ErrUnavailable
	}
	m.state = StateConnecting
	m.mu.Unlock()

	pingCtx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()
	if err := m.client.Ping(pingCtx).Err(); err != nil {
		m.startProbe()
		return fmt.Errorf("redis PING: %w", err)
	}

	m.mu.Lock()
	m.state = StateConnected
	m.mu.Unlock()
	return nil
}

// Ping checks store reachability within the Manager's bounded timeout.
// A failed ping also flags the connection for background reconnection.
func (m *Manager) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()
	if err := m.client.Ping(pingCtx).Err(); err != nil {
		m.MarkFailure()
		return fmt.Errorf("redis PING: %w", err)
	}
	return nil
}

// MarkFailure records a failed store operation. The connection moves to
// Reconnecting and a probe loop runs until the store answers again.
func (m *Manager) MarkFailure() {
	m.startProbe()
}

func (m *Manager) startProbe() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateClosed {
		return
	}
	m.state = StateReconnecting
	if m.probing {
		return
	}
	m.probing = true
	m.wg.Add(1)
	go m.probe()
}

// probe retries the store with bounded randomized backoff, indefinitely.
// There is no permanent failure short of process shutdown.
func (m *Manager) probe() {
	defer m.wg.Done()

	backoff := m.minBackoff
	for {
		select {
		case <-m.closed:
			return
		case <-time.After(withJitter(backoff)):
		}

		pingCtx, cancel := context.WithTimeout(context.Background(), m.opTimeout)
		err := m.client.Ping(pingCtx).Err()
		cancel()

		m.mu.Lock()
		if m.state == StateClosed {
			m.probing = false
			m.mu.Unlock()
			return
		}
		if err == nil {
			m.state = StateConnected
			m.probing = false
			m.mu.Unlock()
			m.logger.Printf("store connection restored")
			return
		}
		m.mu.Unlock()

		m.logger.Printf("store reconnect failed, next attempt in ~%s: %v", backoff, err)
		backoff *= 2
		if backoff > m.maxBackoff {
			backoff = m.maxBackoff
		}
	}
}

func withJitter(d time.Duration) time.Duration {
	return d + time.Duration(rand.Int63n(int64(d/2)+1))
}

// Close stops the probe loop and closes the connection. Safe to call once
// during drain.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.state == StateClosed {
		m.mu.Unlock()
		return nil
	}
	m.state = StateClosed
	m.mu.Unlock()

	close(m.closed)
	m.wg.Wait()
	return m.client.Close()
}
