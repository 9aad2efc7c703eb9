// File: services/conversation/session.go
package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"hestia/models"

	"github.com/go-redis/redis/v8"
)

const sessionKeyPrefix = "chat:session:"

// SessionStore keeps one GuestSession per WhatsApp id with a sliding TTL.
// Load returns (nil, nil) for an unknown or expired id; the orchestrator
// treats that as a brand-new conversation. Save with a nil session deletes
// the entry.
type SessionStore interface {
	Load(ctx context.Context, waID string) (*models.GuestSession, error)
	Save(ctx context.Context, waID string, sess *models.GuestSession) error
	New(waID, phone, name string, at time.Time) *models.GuestSession
}

// SessionBrowser is the ops-facing view of a store: snapshot of live
// sessions plus forced expiry.
type SessionBrowser interface {
	ListActive(ctx context.Context) ([]models.GuestSession, error)
	Expire(ctx context.Context, waID string) error
}

func newSession(waID, phone, name string, at time.Time) *models.GuestSession {
	return &models.GuestSession{
		WaID:          waID,
		Phone:         phone,
		DisplayName:   name,
		State:         models.StateInit,
		CreatedAt:     at,
		LastMessageAt: at,
		UpdatedAt:     at,
	}
}

// RedisSessionStore persists sessions as JSON values under a key prefix.
// Every Save re-arms the Redis TTL, which gives the sliding-expiry
// semantics; Load double-checks LastMessageAt so a stale entry surviving in
// a backend without eviction still reads as expired.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Load(ctx context.Context, waID string) (*models.GuestSession, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+waID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", waID, err)
	}
	var sess models.GuestSession
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", waID, err)
	}
	if time.Since(sess.LastMessageAt) > s.ttl {
		_ = s.client.Del(ctx, sessionKeyPrefix+waID).Err()
		return nil, nil
	}
	return &sess, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, waID string, sess *models.GuestSession) error {
	if sess == nil {
		return s.client.Del(ctx, sessionKeyPrefix+waID).Err()
	}
	sess.UpdatedAt = time.Now()
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", waID, err)
	}
	return s.client.Set(ctx, sessionKeyPrefix+waID, b, s.ttl).Err()
}

func (s *RedisSessionStore) New(waID, phone, name string, at time.Time) *models.GuestSession {
	return newSession(waID, phone, name, at)
}

func (s *RedisSessionStore) ListActive(ctx context.Context) ([]models.GuestSession, error) {
	var sessions []models.GuestSession
	iter := s.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Result()
		if err != nil {
			continue
		}
		var sess models.GuestSession
		if err := json.Unmarshal([]byte(data), &sess); err != nil {
			continue
		}
		if time.Since(sess.LastMessageAt) <= s.ttl {
			sessions = append(sessions, sess)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	return sessions, nil
}

func (s *RedisSessionStore) Expire(ctx context.Context, waID string) error {
	return s.client.Del(ctx, sessionKeyPrefix+waID).Err()
}

// MemorySessionStore is the in-process store used in tests and single-node
// deployments without Redis.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.GuestSession
	ttl      time.Duration
	now      func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*models.GuestSession),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemorySessionStore) Load(ctx context.Context, waID string) (*models.GuestSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[waID]
	if !ok {
		return nil, nil
	}
	if s.now().Sub(sess.LastMessageAt) > s.ttl {
		delete(s.sessions, waID)
		return nil, nil
	}
	cp := *sess
	return &cp, nil
}

func (s *MemorySessionStore) Save(ctx context.Context, waID string, sess *models.GuestSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess == nil {
		delete(s.sessions, waID)
		return nil
	}
	sess.UpdatedAt = s.now()
	cp := *sess
	s.sessions[waID] = &cp
	return nil
}

func (s *MemorySessionStore) New(waID, phone, name string, at time.Time) *models.GuestSession {
	return newSession(waID, phone, name, at)
}

func (s *MemorySessionStore) ListActive(ctx context.Context) ([]models.GuestSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sessions []models.GuestSession
	for _, sess := range s.sessions {
		if s.now().Sub(sess.LastMessageAt) <= s.ttl {
			sessions = append(sessions, *sess)
		}
	}
	return sessions, nil
}

func (s *MemorySessionStore) Expire(ctx context.Context, waID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, waID)
	return nil
}
