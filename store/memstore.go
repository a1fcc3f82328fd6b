package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jonco5555/vault/setup"
)

// MemStore is an in-process Store used by tests that need a real Store
// implementation without a filesystem-backed sqlite database.
type MemStore struct {
	mu          sync.Mutex
	users       map[string][]byte
	secrets     map[[2]string][]byte
	servers     map[string]setup.ServiceRecord
	authClients map[string]AuthRecord
}

// NewMemStore constructs an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		users:       make(map[string][]byte),
		secrets:     make(map[[2]string][]byte),
		servers:     make(map[string]setup.ServiceRecord),
		authClients: make(map[string]AuthRecord),
	}
}

func (m *MemStore) Close() error { return nil }

func (m *MemStore) AddUser(_ context.Context, userID string, publicKey []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; ok {
		return fmt.Errorf("add user %q: %w", userID, ErrAlreadyExists)
	}
	m.users[userID] = publicKey
	return nil
}

func (m *MemStore) GetUserPublicKey(_ context.Context, userID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pub, ok := m.users[userID]
	if !ok {
		return nil, fmt.Errorf("get user %q public key: %w", userID, ErrNotFound)
	}
	return pub, nil
}

func (m *MemStore) UserExists(_ context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[userID]
	return ok, nil
}

func (m *MemStore) AddSecret(_ context.Context, userID, secretID string, secret []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]string{userID, secretID}
	if _, ok := m.secrets[key]; ok {
		return fmt.Errorf("add secret %q/%q: %w", userID, secretID, ErrAlreadyExists)
	}
	m.secrets[key] = secret
	return nil
}

func (m *MemStore) GetSecret(_ context.Context, userID, secretID string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	secret, ok := m.secrets[[2]string{userID, secretID}]
	if !ok {
		return nil, fmt.Errorf("get secret %q/%q: %w", userID, secretID, ErrNotFound)
	}
	return secret, nil
}

func (m *MemStore) AddServer(_ context.Context, rec setup.ServiceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.servers[rec.ContainerID]; ok {
		return fmt.Errorf("add server %q: %w", rec.ContainerID, ErrAlreadyExists)
	}
	m.servers[rec.ContainerID] = rec
	return nil
}

func (m *MemStore) RemoveServer(_ context.Context, containerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.servers[containerID]; !ok {
		return fmt.Errorf("remove server %q: %w", containerID, ErrNotFound)
	}
	delete(m.servers, containerID)
	return nil
}

func (m *MemStore) GetServer(_ context.Context, containerID string) (setup.ServiceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.servers[containerID]
	if !ok {
		return setup.ServiceRecord{}, fmt.Errorf("get server %q: %w", containerID, ErrNotFound)
	}
	return rec, nil
}

// serverIDsLocked returns the registered container ids in sorted order, so
// GetServersKeys and GetServersAddresses list servers in the same order.
func (m *MemStore) serverIDsLocked() []string {
	ids := make([]string, 0, len(m.servers))
	for id := range m.servers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *MemStore) GetServersKeys(_ context.Context) ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([][]byte, 0, len(m.servers))
	for _, id := range m.serverIDsLocked() {
		keys = append(keys, m.servers[id].PublicKey)
	}
	return keys, nil
}

func (m *MemStore) GetServersAddresses(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	addrs := make([]string, 0, len(m.servers))
	for _, id := range m.serverIDsLocked() {
		addrs = append(addrs, m.servers[id].IPAddress)
	}
	return addrs, nil
}

func (m *MemStore) AddAuthClient(_ context.Context, rec AuthRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.authClients[rec.Username]; ok {
		return fmt.Errorf("add auth client %q: %w", rec.Username, ErrAlreadyExists)
	}
	m.authClients[rec.Username] = rec
	return nil
}

func (m *MemStore) GetAuthClient(_ context.Context, username string) (AuthRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.authClients[username]
	if !ok {
		return AuthRecord{}, fmt.Errorf("get auth client %q: %w", username, ErrNotFound)
	}
	return rec, nil
}

func (m *MemStore) RemoveAuthClient(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.authClients[username]; !ok {
		return fmt.Errorf("remove auth client %q: %w", username, ErrNotFound)
	}
	delete(m.authClients, username)
	return nil
}

var _ Store = (*MemStore)(nil)
var _ Store = (*SQLStore)(nil)
