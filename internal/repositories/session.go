package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"nihith303/interview-ace/internal/interview"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
	ErrSessionConflict = errors.New("session was modified concurrently")
)

// SessionStore persists sessions. Update serialises mutation of one session:
// fn runs against the current state and its result is saved only when fn
// returns nil.
type SessionStore interface {
	Create(ctx context.Context, session *interview.Session) error
	Get(ctx context.Context, id string) (*interview.Session, error)
	Update(ctx context.Context, id string, fn func(*interview.Session) error) (*interview.Session, error)
}

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]interview.Snapshot
}

func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{sessions: make(map[string]interview.Snapshot)}
}

func (s *memorySessionStore) Create(_ context.Context, session *interview.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID()]; ok {
		return ErrSessionExists
	}
	s.sessions[session.ID()] = session.Snapshot()
	return nil
}

func (s *memorySessionStore) Get(_ context.Context, id string) (*interview.Session, error) {
	s.mu.Lock()
	snap, ok := s.sessions[id]
	s.mu.Unlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	return interview.RestoreSession(snap)
}

func (s *memorySessionStore) Update(_ context.Context, id string, fn func(*interview.Session) error) (*interview.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	session, err := interview.RestoreSession(snap)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	s.sessions[id] = session.Snapshot()
	return session, nil
}

// RedisSessionStore keeps session snapshots in Redis with TTL. Updates use
// optimistic WATCH/MULTI transactions.
type RedisSessionStore struct {
	client     *redis.Client
	prefix     string
	ttl        time.Duration
	maxRetries int
}

// NewRedisSessionStore builds a Redis-backed session store.
func NewRedisSessionStore(addr, password, prefix string, ttl time.Duration) *RedisSessionStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "interview:session"
	}
	return &RedisSessionStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		prefix:     prefix,
		ttl:        ttl,
		maxRetries: 10,
	}
}

// Ping checks connectivity.
func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisSessionStore) Close() error {
	return s.client.Close()
}

func (s *RedisSessionStore) key(id string) string {
	return s.prefix + ":" + id
}

func (s *RedisSessionStore) Create(ctx context.Context, session *interview.Session) error {
	data, err := json.Marshal(session.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	ok, err := s.client.SetNX(ctx, s.key(session.ID()), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if !ok {
		return ErrSessionExists
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*interview.Session, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return decodeSession(data)
}

func (s *RedisSessionStore) Update(ctx context.Context, id string, fn func(*interview.Session) error) (*interview.Session, error) {
	key := s.key(id)
	var updated *interview.Session

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}
		session, err := decodeSession(data)
		if err != nil {
			return err
		}
		if err := fn(session); err != nil {
			return err
		}
		encoded, err := json.Marshal(session.Snapshot())
		if err != nil {
			return fmt.Errorf("failed to encode session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, s.ttl)
			return nil
		})
		if err == nil {
			updated = session
		}
		return err
	}

	for i := 0; i < s.maxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrSessionConflict
}

func decodeSession(data []byte) (*interview.Session, error) {
	var snap interview.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return interview.RestoreSession(snap)
}
