// Package verify checks that an operator account carries the admin claim and
// repairs it when it does not.
package verify

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/bharatcyclehub/bch-admin/internal/audit"
	"github.com/bharatcyclehub/bch-admin/internal/identity"
	"github.com/bharatcyclehub/bch-admin/internal/logger"
	"github.com/bharatcyclehub/bch-admin/internal/metrics"
	"github.com/bharatcyclehub/bch-admin/internal/model"
)

const (
	DefaultPassword    = "admin123"
	DefaultDisplayName = "Admin User"
)

// State is the terminal state a verification reached.
type State string

const (
	StateCreated       State = "created"
	StateClaimAssigned State = "claim_assigned"
	StateAlreadyAdmin  State = "already_admin"
)

func (s State) String() string { return string(s) }

type Options struct {
	DefaultPassword string
	DisplayName     string
	Role            string
}

type Outcome struct {
	State   State
	Account model.Account
	// Password is set only when the account was created.
	Password string
}

type Verifier struct {
	dir  identity.Directory
	opts Options
	rec  *audit.Recorder
}

func New(dir identity.Directory, opts Options, rec *audit.Recorder) *Verifier {
	if opts.DefaultPassword == "" {
		opts.DefaultPassword = DefaultPassword
	}
	if opts.DisplayName == "" {
		opts.DisplayName = DefaultDisplayName
	}
	if opts.Role == "" {
		opts.Role = model.RoleAdmin
	}
	return &Verifier{dir: dir, opts: opts, rec: rec}
}

// Verify walks NotFound -> Create -> AssignClaim, Found+HasClaim -> Done, or
// Found+NoClaim -> AssignClaim -> Done. An account that already holds the
// admin claim is never mutated.
func (v *Verifier) Verify(ctx context.Context, email string) (Outcome, error) {
	if email == "" {
		return Outcome{}, errors.New("verify: email is required")
	}

	out := Outcome{}
	acc, err := v.dir.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if acc.IsAdmin() {
			logger.Log.Info("admin claim present",
				zap.String("uid", acc.UID),
				zap.String("email", acc.Email),
				zap.String("role", acc.Role()),
			)
			v.rec.Record(ctx, model.ActionClaimsPresent, acc.UID, acc.Role())
			metrics.AccountsTotal.WithLabelValues("verify", StateAlreadyAdmin.String()).Inc()
			return Outcome{State: StateAlreadyAdmin, Account: acc}, nil
		}
		out.State = StateClaimAssigned
	case errors.Is(err, model.ErrNotFound):
		acc, err = v.dir.Create(ctx, model.NewAccount{
			Email:         email,
			Password:      v.opts.DefaultPassword,
			DisplayName:   v.opts.DisplayName,
			EmailVerified: true,
		})
		if err != nil {
			metrics.AccountsTotal.WithLabelValues("verify", "failed").Inc()
			return Outcome{}, fmt.Errorf("create account: %w", err)
		}
		out.State = StateCreated
		out.Password = v.opts.DefaultPassword
		// the operator has no other way to learn the generated credential
		logger.Log.Warn("account created with default password",
			zap.String("uid", acc.UID),
			zap.String("email", acc.Email),
			zap.String("password", v.opts.DefaultPassword),
		)
		v.rec.Record(ctx, model.ActionAccountCreated, acc.UID, acc.Email)
	default:
		metrics.AccountsTotal.WithLabelValues("verify", "failed").Inc()
		return Outcome{}, fmt.Errorf("look up account: %w", err)
	}

	claims := model.AdminClaims(v.opts.Role)
	if err := v.dir.SetClaims(ctx, acc.UID, claims); err != nil {
		metrics.AccountsTotal.WithLabelValues("verify", "failed").Inc()
		return out, fmt.Errorf("assign admin claim: %w", err)
	}
	acc.Claims = claims
	v.rec.Record(ctx, model.ActionClaimsAssigned, acc.UID, v.opts.Role)
	logger.Log.Info("admin claim assigned", zap.String("uid", acc.UID), zap.String("role", v.opts.Role))

	metrics.AccountsTotal.WithLabelValues("verify", out.State.String()).Inc()
	out.Account = acc
	return out, nil
}
