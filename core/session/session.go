// Package session tracks which users are currently authenticated.
//
// The tracker only holds user IDs; the persisted stay-logged-in flag on
// each user record is what survives restarts, and the registry service
// repopulates the tracker from it at startup.
package session

import (
	"sort"
	"sync"

	"github.com/campuskit/gradebook/core"
)

type Tracker struct {
	active map[string]struct{}
	mu     sync.RWMutex
	logger core.Logger
}

func NewTracker(logger core.Logger) *Tracker {
	return &Tracker{
		active: make(map[string]struct{}),
		logger: logger,
	}
}

func (t *Tracker) Add(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active[userID] = struct{}{}
	t.logger.Info("session opened", "userID", userID)
}

// Remove is idempotent; removing an absent ID is a no-op.
func (t *Tracker) Remove(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.active[userID]; ok {
		delete(t.active, userID)
		t.logger.Info("session closed", "userID", userID)
	}
}

func (t *Tracker) Contains(userID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, ok := t.active[userID]
	return ok
}

// IDs returns the active user IDs in stable (sorted) order.
func (t *Tracker) IDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0, len(t.active))
	for id := range t.active {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.active)
}
