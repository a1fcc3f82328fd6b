package spawner

import (
	"context"
	"fmt"
	"sync"
)

// LocalSpawner runs units as goroutines in the current process, with one
// incrementing counter, shared by every name prefix, standing in for
// Docker's container-name suffixing (vault-share-1, vault-share-2,
// vault-bootstrap-3, ...). It is used by tests and by the
// cmd/vaultd all-in-one demo, where spinning up real containers is out of
// scope.
type LocalSpawner struct {
	mu      sync.Mutex
	counter int
	units   map[string]*localUnit
}

type localUnit struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLocalSpawner constructs an empty LocalSpawner.
func NewLocalSpawner() *LocalSpawner {
	return &LocalSpawner{units: make(map[string]*localUnit)}
}

func (s *LocalSpawner) Spawn(ctx context.Context, namePrefix string, fn UnitFunc) (Handle, error) {
	s.mu.Lock()
	s.counter++
	id := fmt.Sprintf("%s-%d", namePrefix, s.counter)
	unitCtx, cancel := context.WithCancel(ctx)
	u := &localUnit{cancel: cancel, done: make(chan struct{})}
	s.units[id] = u
	s.mu.Unlock()

	go func() {
		defer close(u.done)
		fn(unitCtx, id)
	}()

	return Handle{ContainerID: id}, nil
}

func (s *LocalSpawner) get(h Handle) (*localUnit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[h.ContainerID]
	return u, ok
}

func (s *LocalSpawner) WaitForStop(ctx context.Context, h Handle) error {
	u, ok := s.get(h)
	if !ok {
		return fmt.Errorf("spawner: unknown handle %q", h.ContainerID)
	}
	select {
	case <-u.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *LocalSpawner) Stop(h Handle) error {
	u, ok := s.get(h)
	if !ok {
		return fmt.Errorf("spawner: unknown handle %q", h.ContainerID)
	}
	u.cancel()
	return nil
}

func (s *LocalSpawner) Remove(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.units[h.ContainerID]; !ok {
		return fmt.Errorf("spawner: unknown handle %q", h.ContainerID)
	}
	delete(s.units, h.ContainerID)
	return nil
}

var _ Spawner = (*LocalSpawner)(nil)
