// Package credstore persists the remember credential between runs so it
// only has to be entered once.
package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"hrtools/lib/scrapers/horsereality/core"
	"sync"

	"github.com/zalando/go-keyring"
)

var ErrNoCredential = errors.New("no stored credential")

const DefaultProfile = "default"

type Store interface {
	Get(profile string) (core.RememberCredential, error)
	Set(profile string, credential core.RememberCredential) error
	Delete(profile string) error
}

type MemoryStore struct {
	mu          sync.Mutex
	credentials map[string]core.RememberCredential
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{credentials: map[string]core.RememberCredential{}}
}

func (s *MemoryStore) Get(profile string) (core.RememberCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cred, ok := s.credentials[profile]
	if !ok {
		return core.RememberCredential{}, ErrNoCredential
	}
	return cred, nil
}

func (s *MemoryStore) Set(profile string, credential core.RememberCredential) error {
	err := credential.Validate()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credentials[profile] = credential
	return nil
}

func (s *MemoryStore) Delete(profile string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.credentials[profile]; !ok {
		return ErrNoCredential
	}
	delete(s.credentials, profile)
	return nil
}

var (
	keyringSet    = keyring.Set
	keyringGet    = keyring.Get
	keyringDelete = keyring.Delete
)

// KeyringStore keeps credentials in the OS keyring, one entry per profile
// holding the credential as json.
type KeyringStore struct {
	Service string
}

func NewKeyringStore() KeyringStore {
	return KeyringStore{Service: "hrtools"}
}

func (s KeyringStore) Get(profile string) (core.RememberCredential, error) {
	value, err := keyringGet(s.Service, profile)
	if errors.Is(err, keyring.ErrNotFound) {
		return core.RememberCredential{}, ErrNoCredential
	}
	if err != nil {
		return core.RememberCredential{}, fmt.Errorf("read keyring: %w", err)
	}

	var cred core.RememberCredential
	err = json.Unmarshal([]byte(value), &cred)
	if err != nil {
		return core.RememberCredential{}, fmt.Errorf("decode stored credential: %w", err)
	}
	return cred, cred.Validate()
}

func (s KeyringStore) Set(profile string, credential core.RememberCredential) error {
	err := credential.Validate()
	if err != nil {
		return err
	}
	value, err := json.Marshal(credential)
	if err != nil {
		return err
	}
	err = keyringSet(s.Service, profile, string(value))
	if err != nil {
		return fmt.Errorf("write keyring: %w", err)
	}
	return nil
}

func (s KeyringStore) Delete(profile string) error {
	err := keyringDelete(s.Service, profile)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNoCredential
	}
	return err
}
