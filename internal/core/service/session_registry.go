package service

import (
	"sync"

	"github.com/google/uuid"

	"github.com/rl1809/aspas/internal/core/domain"
)

// SessionRegistry maps opaque tokens handed to a presentation client to the
// session they were issued for.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]domain.Session)}
}

func (r *SessionRegistry) Start(sess domain.Session) (string, error) {
	if err := sess.Validate(); err != nil {
		return "", err
	}

	token := uuid.NewString()
	r.mu.Lock()
	r.sessions[token] = sess
	r.mu.Unlock()
	return token, nil
}

func (r *SessionRegistry) Lookup(token string) (domain.Session, error) {
	r.mu.RLock()
	sess, ok := r.sessions[token]
	r.mu.RUnlock()
	if !ok {
		return domain.Session{}, domain.ErrUnauthorized
	}
	return sess, nil
}

// End forgets the token. Unknown tokens are ignored.
func (r *SessionRegistry) End(token string) {
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
}
