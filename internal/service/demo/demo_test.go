package demo

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bharatcyclehub/bch-admin/internal/model"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) ListRecent(ctx context.Context, limit int, status model.PaymentStatus) ([]model.Lead, error) {
	args := m.Called(ctx, limit, status)
	leads, _ := args.Get(0).([]model.Lead)
	return leads, args.Error(1)
}

func (m *mockStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func defaultMatcher() Matcher {
	return NewMatcher(DefaultTokens, DefaultPrefixes)
}

func TestMatcher(t *testing.T) {
	m := defaultMatcher()

	for _, name := range []string{"Test ", "test", "  DEMO", "asdf", "Testing Account", "tEsTer", "abc", "vvvv"} {
		assert.True(t, m.Match(name), name)
	}
	for _, name := range []string{"", "   ", "Ravi Kumar", "abcd", "my test", "demo user", "Priya"} {
		assert.False(t, m.Match(name), name)
	}
}

func TestMatcherConfigurableTokens(t *testing.T) {
	m := NewMatcher([]string{" Dummy "}, nil)
	assert.True(t, m.Match("dummy"))
	assert.False(t, m.Match("test"))
	assert.False(t, m.Match("dummy lead"))
}

func TestCleanerDeletesTrimmedCaseFoldedMatch(t *testing.T) {
	store := &mockStore{}
	store.On("ListRecent", mock.Anything, DefaultLimit, model.PaymentStatus("")).Return([]model.Lead{
		{ID: "lead_1", Name: "Test ", Phone: "9876543210"},
		{ID: "lead_2", Name: "Ravi Kumar", Phone: "9123456780"},
	}, nil)
	store.On("Delete", mock.Anything, "lead_1").Return(nil).Once()

	var out bytes.Buffer
	res, err := NewCleaner(store, defaultMatcher(), Options{Out: &out}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Result{Scanned: 2, Matched: 1, Deleted: 1}, res)
	assert.Contains(t, out.String(), "Deleting: lead_1 | Test  | 9876543210")
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Delete", mock.Anything, "lead_2")
}

func TestCleanerDryRun(t *testing.T) {
	store := &mockStore{}
	store.On("ListRecent", mock.Anything, 10, model.PaymentStatus("")).Return([]model.Lead{
		{ID: "lead_1", Name: "demo"},
	}, nil)

	var out bytes.Buffer
	res, err := NewCleaner(store, defaultMatcher(), Options{Limit: 10, DryRun: true, Out: &out}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Result{Scanned: 1, Matched: 1}, res)
	assert.Contains(t, out.String(), "Would delete: lead_1")
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCleanerStopsOnDeleteError(t *testing.T) {
	store := &mockStore{}
	store.On("ListRecent", mock.Anything, DefaultLimit, model.PaymentStatus("")).Return([]model.Lead{
		{ID: "lead_1", Name: "test"},
		{ID: "lead_2", Name: "demo"},
		{ID: "lead_3", Name: "xxx"},
	}, nil)
	store.On("Delete", mock.Anything, "lead_1").Return(nil)
	store.On("Delete", mock.Anything, "lead_2").Return(errors.New("unavailable"))

	res, err := NewCleaner(store, defaultMatcher(), Options{}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete lead lead_2")
	assert.Equal(t, 1, res.Deleted)
	store.AssertNotCalled(t, "Delete", mock.Anything, "lead_3")
}

func TestCleanerReadError(t *testing.T) {
	store := &mockStore{}
	store.On("ListRecent", mock.Anything, DefaultLimit, model.PaymentStatus("")).Return(nil, model.ErrPermissionDenied)

	_, err := NewCleaner(store, defaultMatcher(), Options{}).Run(context.Background())
	require.ErrorIs(t, err, model.ErrPermissionDenied)
}

func TestLister(t *testing.T) {
	store := &mockStore{}
	store.On("ListRecent", mock.Anything, DefaultLimit, model.PaymentStatus("")).Return([]model.Lead{
		{ID: "lead_1", Name: "Asha", Phone: "+919876543210", Source: "quiz", Payment: model.LeadPayment{Status: model.PaymentPaid}},
		{ID: "lead_2", Name: "Vikram", Phone: "9123456780", Source: "landing"},
	}, nil)

	var out bytes.Buffer
	leads, err := NewLister(store, 0, &out).List(context.Background())
	require.NoError(t, err)
	assert.Len(t, leads, 2)

	assert.Equal(t,
		"lead_1 | Asha | +919876543210 | PAID | quiz\n"+
			"lead_2 | Vikram | 9123456780 | N/A | landing\n"+
			"Total: 2\n",
		out.String())
}
