// Package identitytest provides an in-memory identity.Directory for tests.
package identitytest

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/bharatcyclehub/bch-admin/internal/identity"
	"github.com/bharatcyclehub/bch-admin/internal/model"
)

// Directory is an in-memory directory with call counters and error injection.
type Directory struct {
	mu       sync.Mutex
	accounts map[string]model.Account // by uid
	seq      int

	// Passwords records the password each account was created with.
	Passwords map[string]string

	Creates   int
	ClaimSets int

	GetErr    error
	CreateErr error
	ClaimsErr error

	// Tokens maps ID tokens to uids for Verify.
	Tokens map[string]string
}

func New() *Directory {
	return &Directory{
		accounts:  map[string]model.Account{},
		Passwords: map[string]string{},
		Tokens:    map[string]string{},
	}
}

var (
	_ identity.Directory     = (*Directory)(nil)
	_ identity.TokenVerifier = (*Directory)(nil)
)

// Add seeds an account and returns it with a generated uid when none is set.
func (d *Directory) Add(a model.Account) model.Account {
	d.mu.Lock()
	defer d.mu.Unlock()
	if a.UID == "" {
		d.seq++
		a.UID = fmt.Sprintf("uid-%d", d.seq)
	}
	d.accounts[a.UID] = a
	return a
}

// Len returns the number of accounts.
func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.accounts)
}

func (d *Directory) GetByEmail(_ context.Context, email string) (model.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.GetErr != nil {
		return model.Account{}, d.GetErr
	}
	for _, a := range d.accounts {
		if strings.EqualFold(a.Email, email) {
			return clone(a), nil
		}
	}
	return model.Account{}, fmt.Errorf("get user by email %s: %w", email, model.ErrNotFound)
}

func (d *Directory) Get(_ context.Context, uid string) (model.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.accounts[uid]
	if !ok {
		return model.Account{}, fmt.Errorf("get user %s: %w", uid, model.ErrNotFound)
	}
	return clone(a), nil
}

func (d *Directory) Create(_ context.Context, n model.NewAccount) (model.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.CreateErr != nil {
		return model.Account{}, d.CreateErr
	}
	for _, a := range d.accounts {
		if strings.EqualFold(a.Email, n.Email) {
			return model.Account{}, fmt.Errorf("create user %s: email already exists", n.Email)
		}
	}
	d.seq++
	d.Creates++
	a := model.Account{
		UID:           fmt.Sprintf("uid-%d", d.seq),
		Email:         n.Email,
		DisplayName:   n.DisplayName,
		EmailVerified: n.EmailVerified,
	}
	d.accounts[a.UID] = a
	d.Passwords[a.UID] = n.Password
	return clone(a), nil
}

func (d *Directory) SetClaims(_ context.Context, uid string, claims map[string]any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ClaimsErr != nil {
		return d.ClaimsErr
	}
	a, ok := d.accounts[uid]
	if !ok {
		return fmt.Errorf("set claims for %s: %w", uid, model.ErrNotFound)
	}
	d.ClaimSets++
	a.Claims = maps.Clone(claims)
	d.accounts[uid] = a
	return nil
}

func (d *Directory) Verify(_ context.Context, idToken string) (string, map[string]any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	uid, ok := d.Tokens[idToken]
	if !ok {
		return "", nil, fmt.Errorf("verify id token: invalid token")
	}
	a, ok := d.accounts[uid]
	if !ok {
		return "", nil, fmt.Errorf("verify id token: user %s not found", uid)
	}
	claims := maps.Clone(a.Claims)
	if claims == nil {
		claims = map[string]any{}
	}
	claims["email"] = a.Email
	return uid, claims, nil
}

func clone(a model.Account) model.Account {
	a.Claims = maps.Clone(a.Claims)
	return a
}
