// Package memory keeps aggregates in process memory. It backs
// storage.driver=memory and the concurrency tests, and applies the same
// version check on SaveWithLock as the GORM repositories.
package memory

import (
	"slices"
	"sync"

	"github.com/erp/pos/internal/domain/shared"
)

// table stores snapshots keyed by id. Callers only ever see restored copies.
type table[S any] struct {
	mu      sync.RWMutex
	rows    map[int64]S
	version func(S) int
	bump    func(*S, int)
}

func newTable[S any](version func(S) int, bump func(*S, int)) *table[S] {
	return &table[S]{rows: make(map[int64]S), version: version, bump: bump}
}

func (t *table[S]) get(id int64) (S, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.rows[id]
	return s, ok
}

func (t *table[S]) put(id int64, s S) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows[id] = s
}

// putIfVersion stores s only if the stored row still has s's version, then
// stores it with the next version. It returns the new version.
func (t *table[S]) putIfVersion(id int64, s S) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	current, ok := t.rows[id]
	if !ok {
		return 0, shared.ErrNotFound
	}
	if t.version(current) != t.version(s) {
		return 0, shared.ErrConcurrencyConflict
	}
	next := t.version(s) + 1
	t.bump(&s, next)
	t.rows[id] = s
	return next, nil
}

func (t *table[S]) exists(id int64) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.rows[id]
	return ok
}

func (t *table[S]) delete(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}

// list returns the rows accepted by keep, ordered by id
func (t *table[S]) list(keep func(S) bool) []S {
	t.mu.RLock()
	ids := make([]int64, 0, len(t.rows))
	for id, s := range t.rows {
		if keep == nil || keep(s) {
			ids = append(ids, id)
		}
	}
	out := make([]S, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		out = append(out, t.rows[id])
	}
	t.mu.RUnlock()
	return out
}

func (t *table[S]) some(match func(S) bool) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, s := range t.rows {
		if match(s) {
			return true
		}
	}
	return false
}
