package status

import (
	"time"

	"github.com/mensylisir/taskcores/cache"
	"github.com/mensylisir/taskcores/outcome"
)

// MemoryStore is an in-process Store backed by the generic TTL cache.
// Suitable for tests and single-process deployments; snapshots older than
// the retention period are dropped.
type MemoryStore struct {
	snapshots *cache.Cache[string, *outcome.Outcome]
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a MemoryStore. A retention of 0 keeps snapshots
// forever.
func NewMemoryStore(retention time.Duration) *MemoryStore {
	return &MemoryStore{
		snapshots: cache.New(cache.WithDefaultTTL[string, *outcome.Outcome](retention)),
	}
}

func (s *MemoryStore) GetLatest(invocationID string) (*outcome.Outcome, bool, error) {
	out, ok := s.snapshots.Get(invocationID)
	return out, ok, nil
}

func (s *MemoryStore) Get(invocationID string) (*outcome.Outcome, bool, error) {
	out, ok := s.snapshots.Get(invocationID)
	return out, ok, nil
}

func (s *MemoryStore) Save(invocationID string, out *outcome.Outcome) error {
	s.snapshots.Set(invocationID, out)
	return nil
}

// Invocations returns the ids of all retained snapshots.
func (s *MemoryStore) Invocations() []string {
	return s.snapshots.Keys()
}
