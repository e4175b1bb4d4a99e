package memory

import (
	"context"
	"sync"
	"time"
)

// SessionStore 进程内的会话与Token黑名单，Redis未启用时使用
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[uint]expiring[map[string]interface{}]
	blacklist map[string]time.Time
	now       func() time.Time
}

type expiring[T any] struct {
	value     T
	expiresAt time.Time
}

// NewSessionStore 创建会话存储
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:  make(map[uint]expiring[map[string]interface{}]),
		blacklist: make(map[string]time.Time),
		now:       time.Now,
	}
}

func (s *SessionStore) SaveSession(ctx context.Context, userID uint, data map[string]interface{}, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make(map[string]interface{}, len(data))
	for k, v := range data {
		cp[k] = v
	}
	s.sessions[userID] = expiring[map[string]interface{}]{value: cp, expiresAt: s.now().Add(ttl)}
	return nil
}

// Session 读取未过期的会话
func (s *SessionStore) Session(userID uint) (map[string]interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[userID]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

func (s *SessionStore) DeleteSession(ctx context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func (s *SessionStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	// 顺带清理已过期的条目
	for id, exp := range s.blacklist {
		if !now.Before(exp) {
			delete(s.blacklist, id)
		}
	}
	s.blacklist[tokenID] = now.Add(ttl)
	return nil
}

func (s *SessionStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.blacklist[tokenID]
	return ok && s.now().Before(exp), nil
}
