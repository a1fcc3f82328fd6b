// Package setup implements the SetupMaster/SetupUnit rendezvous: every
// bootstrap and share-server process, once spawned, dials back to the
// manager's SetupMaster and registers its container id, address, and public
// key before the manager is allowed to treat it as ready.
package setup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dedis/onet/log"
)

// ServiceType distinguishes the two kinds of spawned units a SetupMaster
// tracks.
type ServiceType int

const (
	ServiceTypeShareServer ServiceType = iota
	ServiceTypeBootstrap
)

// ServiceRecord is what a unit reports about itself at registration time,
// the Go analogue of the Python ServiceData model.
type ServiceRecord struct {
	Type        ServiceType
	ContainerID string
	IPAddress   string
	PublicKey   []byte
}

// ErrRegistrationTimeout is returned by WaitForRegistration/
// WaitForUnregistration when the deadline elapses with no matching record.
var ErrRegistrationTimeout = errors.New("setup: timed out waiting for registration")

// Master is the registry every spawned unit registers against. A single
// sync.Cond stands in for the Python implementation's asyncio.Condition:
// every Register/Unregister call broadcasts, and every waiter re-checks the
// registry under the lock rather than trusting the wakeup alone, so
// spurious wakeups and notifications that race the wait are both handled.
type Master struct {
	mu   sync.Mutex
	cond *sync.Cond

	records map[string]ServiceRecord

	bootstrapIdx   int
	shareServerIdx int
}

// NewMaster constructs an empty registry.
func NewMaster() *Master {
	m := &Master{records: make(map[string]ServiceRecord)}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Register records a unit's self-reported identity and wakes every waiter so
// they can recheck whether the container id they are blocked on just
// appeared. It is the handler body for the SetupRegister RPC.
func (m *Master) Register(rec ServiceRecord) {
	m.mu.Lock()
	m.records[rec.ContainerID] = rec
	m.cond.Broadcast()
	m.mu.Unlock()
	log.Lvl2("setup: registered", rec.ContainerID, "at", rec.IPAddress)
}

// Unregister removes a unit's record and wakes every waiter. It is the
// handler body for the SetupUnregister RPC; removing an unknown id is not an
// error; it simply has no effect.
func (m *Master) Unregister(containerID string) (found bool) {
	m.mu.Lock()
	_, found = m.records[containerID]
	delete(m.records, containerID)
	m.cond.Broadcast()
	m.mu.Unlock()
	return found
}

func (m *Master) get(containerID string) (ServiceRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[containerID]
	return rec, ok
}

// waitUntil blocks on the condition variable until pred returns true or
// timeout elapses, rechecking pred every time the condition is signaled
// (guarding against both spurious wakeups and missed-in-the-race
// notifications).
func (m *Master) waitUntil(ctx context.Context, timeout time.Duration, pred func() bool) error {
	deadline := time.Now().Add(timeout)

	// sync.Cond has no timed wait, so a helper goroutine turns the deadline
	// (and ctx cancellation) into a broadcast the waiter will observe.
	done := make(chan struct{})
	defer close(done)
	go func() {
		timer := time.NewTimer(time.Until(deadline))
		defer timer.Stop()
		select {
		case <-timer.C:
			m.cond.Broadcast()
		case <-ctx.Done():
			m.cond.Broadcast()
		case <-done:
		}
	}()

	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		if pred() {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrRegistrationTimeout
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		m.cond.Wait()
	}
}

// WaitForRegistration blocks until containerID has a registered record or
// timeout elapses, recomputing the remaining time on every wakeup exactly as
// _wait_for_container_id_registration does.
func (m *Master) WaitForRegistration(ctx context.Context, containerID string, timeout time.Duration) (ServiceRecord, error) {
	err := m.waitUntil(ctx, timeout, func() bool {
		_, ok := m.get(containerID)
		return ok
	})
	if err != nil {
		return ServiceRecord{}, fmt.Errorf("wait for registration of %q: %w", containerID, err)
	}
	rec, _ := m.get(containerID)
	return rec, nil
}

// WaitForUnregistration blocks until containerID no longer has a registered
// record or timeout elapses.
func (m *Master) WaitForUnregistration(ctx context.Context, containerID string, timeout time.Duration) error {
	err := m.waitUntil(ctx, timeout, func() bool {
		_, ok := m.get(containerID)
		return !ok
	})
	if err != nil {
		return fmt.Errorf("wait for unregistration of %q: %w", containerID, err)
	}
	return nil
}

// NextBootstrapIndex and NextShareServerIndex hand out the monotonically
// increasing container-name suffixes (vault-bootstrap-1, vault-share-1, ...)
// the Python SetupMaster keeps as bootstrap_idx/share_server_idx.
func (m *Master) NextBootstrapIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bootstrapIdx++
	return m.bootstrapIdx
}

func (m *Master) NextShareServerIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shareServerIdx++
	return m.shareServerIdx
}
