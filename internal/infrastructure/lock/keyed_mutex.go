// Package lock verrou par clé en mémoire, utilisé quand Redis n'est pas configuré
// (instance unique, tests).
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/ravito-ci/ravito-api/internal/application/ports"
	"github.com/ravito-ci/ravito-api/internal/domain"
)

var _ ports.Locker = (*KeyedMutex)(nil)

// KeyedMutex une file d'attente par clé; les entrées sont libérées quand plus personne n'attend.
type KeyedMutex struct {
	mu    sync.Mutex
	slots map[string]*slot
	wait  time.Duration
}

type slot struct {
	ch      chan struct{} // capacité 1: jeton du verrou
	waiters int
}

// NewKeyedMutex construit un verrou vide. wait > 0 borne l'attente d'une clé prise.
func NewKeyedMutex(wait time.Duration) *KeyedMutex {
	return &KeyedMutex{slots: make(map[string]*slot), wait: wait}
}

// Acquire attend le verrou de key ou l'annulation du contexte (ErrLockNotObtained).
func (m *KeyedMutex) Acquire(ctx context.Context, key string) (func(), error) {
	if m.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.wait)
		defer cancel()
	}

	m.mu.Lock()
	s, ok := m.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		m.slots[key] = s
	}
	s.waiters++
	m.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		m.leave(key, s)
		return nil, domain.ErrLockNotObtained
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			m.leave(key, s)
		})
	}, nil
}

func (m *KeyedMutex) leave(key string, s *slot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.waiters--
	if s.waiters == 0 {
		delete(m.slots, key)
	}
}

// Len nombre de clés suivies (tests).
func (m *KeyedMutex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}
