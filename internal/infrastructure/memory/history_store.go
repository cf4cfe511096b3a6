// Package memory holds the process-local behavioral history used for
// feature derivation. History lives in process memory and is lost on restart.
package memory

import (
	"context"
	"sync"

	"github.com/bibbank/risk-service/internal/domain/model"
	"github.com/bibbank/risk-service/internal/domain/port"
)

// Compile-time interface check.
var _ port.HistoryStore = (*HistoryStore)(nil)

// userLog is one user's observations guarded by a channel-based mutex, so a
// waiter can give up when its context is cancelled.
type userLog struct {
	lock         chan struct{}
	observations []model.Observation
}

func newUserLog() *userLog {
	l := &userLog{lock: make(chan struct{}, 1)}
	l.lock <- struct{}{} // Start unlocked.
	return l
}

func (l *userLog) acquire(ctx context.Context) error {
	select {
	case <-l.lock:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *userLog) release() {
	l.lock <- struct{}{}
}

// Stats summarizes the store's size.
type Stats struct {
	Users        int
	Observations int
}

// HistoryStore is an in-memory port.HistoryStore with one lock per user.
// Operations on different users never contend on the same user lock.
type HistoryStore struct {
	// resetMu is held shared by every user operation and exclusively by
	// ResetAll, so a reset never interleaves with an in-flight update.
	resetMu sync.RWMutex

	mu    sync.Mutex
	users map[string]*userLog

	maxPerUser int
}

// NewHistoryStore creates an empty store. maxPerUser caps each user's log,
// dropping the oldest observations first; zero or less means unbounded.
func NewHistoryStore(maxPerUser int) *HistoryStore {
	if maxPerUser < 0 {
		maxPerUser = 0
	}
	return &HistoryStore{
		users:      make(map[string]*userLog),
		maxPerUser: maxPerUser,
	}
}

func (s *HistoryStore) lookup(userID string, create bool) *userLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.users[userID]
	if !ok && create {
		l = newUserLog()
		s.users[userID] = l
	}
	return l
}

// Get returns a copy of the user's observations in insertion order.
func (s *HistoryStore) Get(userID string) []model.Observation {
	s.resetMu.RLock()
	defer s.resetMu.RUnlock()

	l := s.lookup(userID, false)
	if l == nil {
		return []model.Observation{}
	}

	_ = l.acquire(context.Background())
	defer l.release()

	out := make([]model.Observation, len(l.observations))
	copy(out, l.observations)
	return out
}

// Append adds an observation to the user's log.
func (s *HistoryStore) Append(userID string, obs model.Observation) {
	s.resetMu.RLock()
	defer s.resetMu.RUnlock()

	l := s.lookup(userID, true)
	_ = l.acquire(context.Background())
	defer l.release()

	s.appendLocked(l, obs)
}

// Update holds the user's lock across reading prior observations and
// appending the observation fn returns.
func (s *HistoryStore) Update(ctx context.Context, userID string, fn func(prior []model.Observation) (model.Observation, error)) error {
	s.resetMu.RLock()
	defer s.resetMu.RUnlock()

	l := s.lookup(userID, true)
	if err := l.acquire(ctx); err != nil {
		return err
	}
	defer l.release()

	// Clip capacity so fn cannot write into the backing array.
	prior := l.observations[:len(l.observations):len(l.observations)]

	obs, err := fn(prior)
	if err != nil {
		return err
	}

	s.appendLocked(l, obs)
	return nil
}

// ResetAll atomically discards all history.
func (s *HistoryStore) ResetAll() {
	s.resetMu.Lock()
	defer s.resetMu.Unlock()

	s.mu.Lock()
	s.users = make(map[string]*userLog)
	s.mu.Unlock()
}

// Stats reports how many users and observations the store holds.
func (s *HistoryStore) Stats() Stats {
	s.resetMu.RLock()
	defer s.resetMu.RUnlock()

	s.mu.Lock()
	logs := make([]*userLog, 0, len(s.users))
	for _, l := range s.users {
		logs = append(logs, l)
	}
	s.mu.Unlock()

	stats := Stats{Users: len(logs)}
	for _, l := range logs {
		_ = l.acquire(context.Background())
		stats.Observations += len(l.observations)
		l.release()
	}
	return stats
}

// appendLocked must be called with the user's lock held.
func (s *HistoryStore) appendLocked(l *userLog, obs model.Observation) {
	l.observations = append(l.observations, obs)
	if s.maxPerUser > 0 && len(l.observations) > s.maxPerUser {
		trimmed := make([]model.Observation, s.maxPerUser)
		copy(trimmed, l.observations[len(l.observations)-s.maxPerUser:])
		l.observations = trimmed
	}
}
