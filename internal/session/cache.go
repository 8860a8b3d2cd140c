// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package session holds the key material of one unlocked client session.
//
// The cache moves through three states:
//
//	Locked ──BeginUnlock──▶ Unlocking ──SetIdentity──▶ Unlocked
//	   ▲                        │                         │
//	   └────────FailUnlock──────┘                         │
//	   └──────────────────────Clear───────────────────────┘
//
// Secrets are kept in memguard enclaves (encrypted at rest in memory) and are
// handed out as fresh copies that the caller must wipe. Clear drops every
// enclave and is the only way secrets leave the cache.
package session

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/awnumar/memguard"
)

// State is the lifecycle state of a [Cache].
type State int

const (
	Locked State = iota
	Unlocking
	Unlocked
)

func (s State) String() string {
	switch s {
	case Locked:
		return "locked"
	case Unlocking:
		return "unlocking"
	case Unlocked:
		return "unlocked"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Account is the non-secret identity of the unlocked user.
type Account struct {
	UserID    int64
	Login     string
	PublicKey []byte
}

// Cache is the per-session key store. It is safe for concurrent use.
type Cache struct {
	mu sync.RWMutex

	state      State
	account    Account
	masterKey  *memguard.Enclave
	privateKey *memguard.Enclave
	vaultKeys  map[string]*memguard.Enclave
}

// New returns a locked cache.
func New() *Cache {
	return &Cache{
		state:     Locked,
		vaultKeys: make(map[string]*memguard.Enclave),
	}
}

// State returns the current state.
func (c *Cache) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// BeginUnlock moves Locked to Unlocking.
func (c *Cache) BeginUnlock() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Unlocking:
		return ErrUnlockInProgress
	case Unlocked:
		return ErrAlreadyUnlocked
	}
	c.state = Unlocking
	return nil
}

// FailUnlock aborts an unlock and returns to Locked. Nothing from the failed
// attempt is retained.
func (c *Cache) FailUnlock() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Unlocking {
		c.state = Locked
	}
}

// SetIdentity completes an unlock. Copies of masterKey and privateKey are
// sealed into enclaves; the caller keeps ownership of the arguments.
func (c *Cache) SetIdentity(account Account, masterKey, privateKey []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Unlocking {
		return fmt.Errorf("%w: set identity while %s", ErrInvalidTransition, c.state)
	}
	if len(masterKey) == 0 || len(privateKey) == 0 {
		return ErrEmptyKey
	}

	c.masterKey = memguard.NewEnclave(bytes.Clone(masterKey))
	c.privateKey = memguard.NewEnclave(bytes.Clone(privateKey))
	c.account = Account{
		UserID:    account.UserID,
		Login:     account.Login,
		PublicKey: bytes.Clone(account.PublicKey),
	}
	c.state = Unlocked
	return nil
}

// SetVaultKey caches an unwrapped vault key, replacing any previous one.
func (c *Cache) SetVaultKey(vaultID string, key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Unlocked {
		return ErrLocked
	}
	if len(key) == 0 {
		return ErrEmptyKey
	}
	c.vaultKeys[vaultID] = memguard.NewEnclave(bytes.Clone(key))
	return nil
}

// VaultKey returns a copy of the cached key for vaultID. The boolean is
// false when the cache is locked or the key was never set.
func (c *Cache) VaultKey(vaultID string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state != Unlocked {
		return nil, false
	}
	enclave, ok := c.vaultKeys[vaultID]
	if !ok {
		return nil, false
	}
	key, err := open(enclave)
	if err != nil {
		return nil, false
	}
	return key, true
}

// DropVaultKey forgets the cached key for vaultID, e.g. after rotation.
func (c *Cache) DropVaultKey(vaultID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.vaultKeys, vaultID)
}

// MasterKey returns a copy of the master key.
func (c *Cache) MasterKey() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state != Unlocked {
		return nil, ErrLocked
	}
	return open(c.masterKey)
}

// PrivateKey returns a copy of the identity private key.
func (c *Cache) PrivateKey() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state != Unlocked {
		return nil, ErrLocked
	}
	return open(c.privateKey)
}

// Account returns the identity of the unlocked user.
func (c *Cache) Account() (Account, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state != Unlocked {
		return Account{}, ErrLocked
	}
	a := c.account
	a.PublicKey = bytes.Clone(a.PublicKey)
	return a, nil
}

// Clear drops all key material and returns to Locked. It is safe to call in
// any state.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.masterKey = nil
	c.privateKey = nil
	clear(c.vaultKeys)
	c.account = Account{}
	c.state = Locked
}

// open decrypts an enclave into a plain copy and destroys the locked buffer.
func open(e *memguard.Enclave) ([]byte, error) {
	if e == nil {
		return nil, ErrLocked
	}
	buf, err := e.Open()
	if err != nil {
		return nil, fmt.Errorf("open enclave: %w", err)
	}
	defer buf.Destroy()
	return bytes.Clone(buf.Bytes()), nil
}
