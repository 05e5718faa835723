package verify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bharatcyclehub/bch-admin/internal/audit"
	"github.com/bharatcyclehub/bch-admin/internal/audit/audittest"
	"github.com/bharatcyclehub/bch-admin/internal/identity/identitytest"
	"github.com/bharatcyclehub/bch-admin/internal/model"
)

const email = "admin@bharatcyclehub.com"

func TestVerifyCreatesMissingAccount(t *testing.T) {
	dir := identitytest.New()
	mem := &audittest.Memory{}

	out, err := New(dir, Options{}, audit.NewRecorder("run", "admin verify", mem)).Verify(context.Background(), email)
	require.NoError(t, err)

	assert.Equal(t, StateCreated, out.State)
	assert.Equal(t, DefaultPassword, out.Password)
	assert.Equal(t, DefaultPassword, dir.Passwords[out.Account.UID])
	assert.Equal(t, "Admin User", out.Account.DisplayName)
	assert.True(t, out.Account.IsAdmin())
	assert.Equal(t, model.RoleAdmin, out.Account.Role())
	assert.Equal(t, 1, dir.ClaimSets)
	assert.Equal(t, map[model.AuditAction]int{
		model.ActionAccountCreated: 1,
		model.ActionClaimsAssigned: 1,
	}, mem.Actions())
}

func TestVerifyAssignsMissingClaim(t *testing.T) {
	dir := identitytest.New()
	existing := dir.Add(model.Account{Email: email, Claims: map[string]any{"role": "viewer"}})

	out, err := New(dir, Options{}, nil).Verify(context.Background(), email)
	require.NoError(t, err)

	assert.Equal(t, StateClaimAssigned, out.State)
	assert.Empty(t, out.Password)
	assert.Equal(t, existing.UID, out.Account.UID)
	assert.Zero(t, dir.Creates)

	acc, err := dir.Get(context.Background(), existing.UID)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"admin": true, "role": "admin"}, acc.Claims)
}

func TestVerifyAdminFalseIsRepaired(t *testing.T) {
	dir := identitytest.New()
	dir.Add(model.Account{Email: email, Claims: map[string]any{"admin": false}})

	out, err := New(dir, Options{Role: "super_admin"}, nil).Verify(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, StateClaimAssigned, out.State)
	assert.Equal(t, "super_admin", out.Account.Role())
}

func TestVerifyIsIdempotent(t *testing.T) {
	dir := identitytest.New()
	dir.Add(model.Account{Email: email, Claims: map[string]any{"admin": true, "role": "super_admin"}})
	mem := &audittest.Memory{}
	v := New(dir, Options{}, audit.NewRecorder("run", "admin verify", mem))

	for i := 0; i < 2; i++ {
		out, err := v.Verify(context.Background(), email)
		require.NoError(t, err)
		assert.Equal(t, StateAlreadyAdmin, out.State)
		assert.Equal(t, "super_admin", out.Account.Role())
	}

	assert.Zero(t, dir.Creates)
	assert.Zero(t, dir.ClaimSets)
	assert.Equal(t, map[model.AuditAction]int{model.ActionClaimsPresent: 2}, mem.Actions())
}

func TestVerifySecondRunAfterCreateIsNoop(t *testing.T) {
	dir := identitytest.New()
	v := New(dir, Options{DefaultPassword: "s3cret!"}, nil)

	first, err := v.Verify(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, "s3cret!", first.Password)

	second, err := v.Verify(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, StateAlreadyAdmin, second.State)
	assert.Equal(t, 1, dir.ClaimSets)
}

func TestVerifyErrors(t *testing.T) {
	dir := identitytest.New()
	dir.GetErr = errors.New("internal error")
	_, err := New(dir, Options{}, nil).Verify(context.Background(), email)
	require.Error(t, err)
	assert.Zero(t, dir.Creates)

	dir = identitytest.New()
	dir.ClaimsErr = errors.New("claims too large")
	out, err := New(dir, Options{}, nil).Verify(context.Background(), email)
	require.Error(t, err)
	assert.Equal(t, StateCreated, out.State)

	_, err = New(identitytest.New(), Options{}, nil).Verify(context.Background(), "")
	require.Error(t, err)
}
