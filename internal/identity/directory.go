package identity

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"

	"github.com/bharatcyclehub/bch-admin/internal/model"
)

// Directory is the slice of the authentication directory the admin tooling uses.
type Directory interface {
	// GetByEmail returns model.ErrNotFound (wrapped) when no account has that email.
	GetByEmail(ctx context.Context, email string) (model.Account, error)
	Get(ctx context.Context, uid string) (model.Account, error)
	Create(ctx context.Context, a model.NewAccount) (model.Account, error)
	SetClaims(ctx context.Context, uid string, claims map[string]any) error
}

// TokenVerifier validates ID tokens presented to the admin API.
type TokenVerifier interface {
	// Verify checks signature, expiry and revocation, returning the uid and claims.
	Verify(ctx context.Context, idToken string) (uid string, claims map[string]any, err error)
}

type FirebaseDirectory struct {
	client *auth.Client
}

func NewFirebaseDirectory(client *auth.Client) *FirebaseDirectory {
	return &FirebaseDirectory{client: client}
}

var (
	_ Directory     = (*FirebaseDirectory)(nil)
	_ TokenVerifier = (*FirebaseDirectory)(nil)
)

func (d *FirebaseDirectory) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	u, err := d.client.GetUserByEmail(ctx, email)
	if err != nil {
		return model.Account{}, wrap("get user by email "+email, err)
	}
	return toAccount(u), nil
}

func (d *FirebaseDirectory) Get(ctx context.Context, uid string) (model.Account, error) {
	u, err := d.client.GetUser(ctx, uid)
	if err != nil {
		return model.Account{}, wrap("get user "+uid, err)
	}
	return toAccount(u), nil
}

func (d *FirebaseDirectory) Create(ctx context.Context, a model.NewAccount) (model.Account, error) {
	params := (&auth.UserToCreate{}).
		Email(a.Email).
		Password(a.Password).
		EmailVerified(a.EmailVerified).
		DisplayName(a.DisplayName).
		Disabled(false)

	u, err := d.client.CreateUser(ctx, params)
	if err != nil {
		return model.Account{}, wrap("create user "+a.Email, err)
	}
	return toAccount(u), nil
}

func (d *FirebaseDirectory) SetClaims(ctx context.Context, uid string, claims map[string]any) error {
	if err := d.client.SetCustomUserClaims(ctx, uid, claims); err != nil {
		return wrap("set claims for "+uid, err)
	}
	return nil
}

func (d *FirebaseDirectory) Verify(ctx context.Context, idToken string) (string, map[string]any, error) {
	tok, err := d.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return "", nil, fmt.Errorf("verify id token: %w", err)
	}
	return tok.UID, tok.Claims, nil
}

func toAccount(u *auth.UserRecord) model.Account {
	a := model.Account{
		EmailVerified: u.EmailVerified,
		Disabled:      u.Disabled,
		Claims:        u.CustomClaims,
	}
	if u.UserInfo != nil {
		a.UID = u.UID
		a.Email = u.Email
		a.DisplayName = u.DisplayName
	}
	return a
}

func wrap(op string, err error) error {
	if auth.IsUserNotFound(err) {
		return fmt.Errorf("%s: %w: %w", op, model.ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
