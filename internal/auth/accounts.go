package auth

import (
	"errors"
	"sync"

	"github.com/spec-kit/request-desk/internal/domain"
)

// ErrBadCredentials is returned for an unknown username or wrong password.
var ErrBadCredentials = errors.New("invalid username or password")

type account struct {
	passwordHash string
	identity     domain.Identity
}

// AccountRegistry is the credential side of the authentication
// collaborator: a fixed set of demo accounts resolved at login. The core
// never sees this registry, only the Identity it yields.
type AccountRegistry struct {
	mu       sync.RWMutex
	accounts map[string]account
	cost     int
}

// NewAccountRegistry creates an empty registry hashing with the given
// bcrypt cost.
func NewAccountRegistry(cost int) *AccountRegistry {
	return &AccountRegistry{
		accounts: make(map[string]account),
		cost:     cost,
	}
}

// Seed registers a username/password pair for the identity, replacing any
// existing entry.
func (r *AccountRegistry) Seed(username, password string, identity domain.Identity) error {
	hashed, err := HashPassword(password, r.cost)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[username] = account{passwordHash: hashed, identity: identity}
	return nil
}

// SeedDefaults loads the stock demo accounts: one admin and two ordinary
// requesters.
func (r *AccountRegistry) SeedDefaults() error {
	seeds := []struct {
		username string
		password string
		identity domain.Identity
	}{
		{"admin", "admin", domain.Identity{ID: "1", Role: domain.RoleAdmin, DisplayName: "admin"}},
		{"user1", "password", domain.Identity{ID: "2", Role: domain.RoleUser, DisplayName: "user1"}},
		{"user2", "password", domain.Identity{ID: "3", Role: domain.RoleUser, DisplayName: "user2"}},
	}
	for _, seed := range seeds {
		if err := r.Seed(seed.username, seed.password, seed.identity); err != nil {
			return err
		}
	}
	return nil
}

// Authenticate resolves a username/password pair to an identity.
func (r *AccountRegistry) Authenticate(username, password string) (domain.Identity, error) {
	r.mu.RLock()
	acct, ok := r.accounts[username]
	r.mu.RUnlock()
	if !ok {
		return domain.Identity{}, ErrBadCredentials
	}
	if err := ComparePassword(acct.passwordHash, password); err != nil {
		return domain.Identity{}, ErrBadCredentials
	}
	return acct.identity, nil
}
