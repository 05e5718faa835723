// Package provision ensures a privileged storefront operator account exists.
package provision

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/bharatcyclehub/bch-admin/internal/audit"
	"github.com/bharatcyclehub/bch-admin/internal/identity"
	"github.com/bharatcyclehub/bch-admin/internal/logger"
	"github.com/bharatcyclehub/bch-admin/internal/metrics"
	"github.com/bharatcyclehub/bch-admin/internal/model"
)

const DefaultDisplayName = "Admin User"

// ProfileWriter stores the denormalised users/{uid} document.
type ProfileWriter interface {
	Put(ctx context.Context, p model.AdminProfile) error
}

type Target struct {
	Email       string
	Password    string
	DisplayName string
	Role        string
	Permissions []string
}

func (t Target) withDefaults() Target {
	if t.DisplayName == "" {
		t.DisplayName = DefaultDisplayName
	}
	if t.Role == "" {
		t.Role = model.RoleSuperAdmin
	}
	if len(t.Permissions) == 0 {
		t.Permissions = slices.Clone(model.DefaultPermissions)
	}
	return t
}

type Outcome struct {
	Account model.Account
	Created bool
}

type Provisioner struct {
	dir      identity.Directory
	profiles ProfileWriter
	rec      *audit.Recorder
}

func New(dir identity.Directory, profiles ProfileWriter, rec *audit.Recorder) *Provisioner {
	return &Provisioner{dir: dir, profiles: profiles, rec: rec}
}

// Provision creates the account when missing, then always assigns the admin
// claims and overwrites the profile document. Running it twice leaves one
// account in the same state.
func (p *Provisioner) Provision(ctx context.Context, t Target) (Outcome, error) {
	if t.Email == "" {
		return Outcome{}, errors.New("provision: email is required")
	}
	t = t.withDefaults()

	var out Outcome
	acc, err := p.dir.GetByEmail(ctx, t.Email)
	switch {
	case err == nil:
		logger.Log.Info("account exists", zap.String("uid", acc.UID), zap.String("email", acc.Email))
	case errors.Is(err, model.ErrNotFound):
		if t.Password == "" {
			return Outcome{}, fmt.Errorf("provision %s: password is required to create the account", t.Email)
		}
		acc, err = p.dir.Create(ctx, model.NewAccount{
			Email:         t.Email,
			Password:      t.Password,
			DisplayName:   t.DisplayName,
			EmailVerified: true,
		})
		if err != nil {
			metrics.AccountsTotal.WithLabelValues("provision", "failed").Inc()
			return Outcome{}, fmt.Errorf("create account: %w", err)
		}
		out.Created = true
		logger.Log.Info("account created", zap.String("uid", acc.UID), zap.String("email", acc.Email))
		p.rec.Record(ctx, model.ActionAccountCreated, acc.UID, acc.Email)
	default:
		metrics.AccountsTotal.WithLabelValues("provision", "failed").Inc()
		return Outcome{}, fmt.Errorf("look up account: %w", err)
	}

	claims := model.AdminClaims(t.Role)
	if err := p.dir.SetClaims(ctx, acc.UID, claims); err != nil {
		metrics.AccountsTotal.WithLabelValues("provision", "failed").Inc()
		return out, fmt.Errorf("assign claims: %w", err)
	}
	acc.Claims = claims
	p.rec.Record(ctx, model.ActionClaimsAssigned, acc.UID, t.Role)

	displayName := acc.DisplayName
	if displayName == "" {
		displayName = t.DisplayName
	}
	err = p.profiles.Put(ctx, model.AdminProfile{
		UID:         acc.UID,
		Email:       acc.Email,
		DisplayName: displayName,
		Role:        t.Role,
		Permissions: t.Permissions,
		IsActive:    true,
	})
	if err != nil {
		metrics.AccountsTotal.WithLabelValues("provision", "failed").Inc()
		return out, fmt.Errorf("write profile: %w", err)
	}
	p.rec.Record(ctx, model.ActionProfileWritten, acc.UID, t.Role)

	outcome := "reused"
	if out.Created {
		outcome = "created"
	}
	metrics.AccountsTotal.WithLabelValues("provision", outcome).Inc()

	out.Account = acc
	return out, nil
}
