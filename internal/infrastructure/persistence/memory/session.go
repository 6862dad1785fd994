package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xiebiao/bookworld/internal/domain/user"
	apperrors "github.com/xiebiao/bookworld/pkg/errors"
)

type entry struct {
	session   map[string]string
	expiresAt time.Time
}

// SessionStore 进程内会话存储，条目按TTL惰性过期
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[string]entry
	blacklist map[string]time.Time
	now       func() time.Time
}

// NewSessionStore 创建会话存储
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:  make(map[string]entry),
		blacklist: make(map[string]time.Time),
		now:       time.Now,
	}
}

var _ user.SessionStore = (*SessionStore)(nil)

func (s *SessionStore) SaveSession(_ context.Context, userID string, data map[string]interface{}, ttl time.Duration) error {
	session := make(map[string]string, len(data))
	for k, v := range data {
		session[k] = fmt.Sprint(v)
	}
	s.mu.Lock()
	s.sessions[userID] = entry{session: session, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) GetSession(_ context.Context, userID string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[userID]
	if !ok || !s.now().Before(e.expiresAt) {
		delete(s.sessions, userID)
		return nil, apperrors.ErrUnauthorized
	}
	out := make(map[string]string, len(e.session))
	for k, v := range e.session {
		out[k] = v
	}
	return out, nil
}

func (s *SessionStore) DeleteSession(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.sessions, userID)
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) AddToBlacklist(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	s.blacklist[token] = s.now().Add(ttl)
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) IsInBlacklist(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.blacklist[token]
	if !ok {
		return false, nil
	}
	if !s.now().Before(exp) {
		delete(s.blacklist, token)
		return false, nil
	}
	return true, nil
}
