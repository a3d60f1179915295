// Package mock provides in-memory account repositories for handler tests.
package mock

import (
	"context"
	"sync"

	"github.com/garnizeh/jobmatch/pkg/models"
	"github.com/garnizeh/jobmatch/pkg/repository"
)

// Accounts keeps users, professionals, companies and revoked token ids in
// memory. Only the account methods are implemented; calling any other
// repository.Store method panics on the nil embedded interface.
type Accounts struct {
	repository.Store

	mu            sync.Mutex
	Users         map[string]*models.User
	Professionals []models.Professional
	Companies     []models.Company
	Revoked       map[string]int64

	CreateErr error
	RevokeErr error
}

func NewAccounts() *Accounts {
	return &Accounts{
		Users:   map[string]*models.User{},
		Revoked: map[string]int64{},
	}
}

// AddUser stores u under its email and assigns the next id when unset.
func (m *Accounts) AddUser(u models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == 0 {
		u.ID = int64(len(m.Users) + 1)
	}
	m.Users[u.Email] = &u
	return &u
}

func (m *Accounts) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	return m.AddUser(*u).ID, nil
}

func (m *Accounts) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *Accounts) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Users[email], nil
}

func (m *Accounts) CreateProfessional(ctx context.Context, p *models.Professional) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *p
	c.ID = int64(len(m.Professionals) + 1)
	m.Professionals = append(m.Professionals, c)
	return c.ID, nil
}

func (m *Accounts) CreateCompany(ctx context.Context, c *models.Company) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	cp.ID = int64(len(m.Companies) + 1)
	m.Companies = append(m.Companies, cp)
	return cp.ID, nil
}

// WithTx runs fn directly; the mock has no rollback.
func (m *Accounts) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return fn(m)
}

func (m *Accounts) RevokeToken(ctx context.Context, jti string, expiresAt int64) error {
	if m.RevokeErr != nil {
		return m.RevokeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Revoked[jti] = expiresAt
	return nil
}

func (m *Accounts) IsRevoked(ctx context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Revoked[jti]
	return ok, nil
}
