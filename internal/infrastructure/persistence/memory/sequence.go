package memory

import (
	"context"
	"sync"

	"github.com/erp/pos/internal/domain/shared"
)

// Sequences hands out ids from per-sequence counters held in memory
type Sequences struct {
	mu   sync.Mutex
	next map[string]int64
}

// NewSequences creates counters that all start at 1
func NewSequences() *Sequences {
	return &Sequences{next: make(map[string]int64)}
}

// NextID returns the next id of a sequence
func (s *Sequences) NextID(ctx context.Context, sequence string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next[sequence]++
	return s.next[sequence], nil
}

// Advance makes the next id of a sequence at least after. Used when the
// store is seeded with existing rows.
func (s *Sequences) Advance(sequence string, after int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next[sequence] < after {
		s.next[sequence] = after
	}
}

var _ shared.IDGenerator = (*Sequences)(nil)
