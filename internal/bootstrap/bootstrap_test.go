package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bharatcyclehub/bch-admin/internal/audit"
	"github.com/bharatcyclehub/bch-admin/internal/config"
)

func newTree(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	root := &cobra.Command{Use: "bch-admin"}
	BindFlags(root)
	leaf := &cobra.Command{Use: "stats", RunE: func(*cobra.Command, []string) error { return nil }}
	group := &cobra.Command{Use: "leads"}
	group.AddCommand(leaf)
	root.AddCommand(group)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return leaf
}

func TestSetup(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("demo:\n  limit: 25\n"), 0o600))

	leaf := newTree(t, "leads", "stats", "--config", cfgPath, "--log-level", "debug", "--timeout", "30s", "--env-file", "x.env")

	rt, err := Setup(leaf)
	require.NoError(t, err)
	defer rt.Close()

	assert.Equal(t, "leads stats", rt.Command)
	assert.Len(t, rt.RunID, 26)
	assert.Equal(t, 25, rt.Config.Demo.Limit)
	assert.Equal(t, "debug", rt.Config.Log.Level)
	assert.Equal(t, "x.env", rt.Config.Firebase.EnvFile)
	assert.Equal(t, 30*time.Second, rt.Flags.Timeout)
}

func TestContextTimeout(t *testing.T) {
	rt := &Runtime{Flags: Flags{Timeout: time.Millisecond}}
	ctx, cancel := rt.Context(context.Background(), true)
	defer cancel()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.DeadlineExceeded)

	ctx2, cancel2 := rt.Context(context.Background(), false)
	defer cancel2()
	_, hasDeadline := ctx2.Deadline()
	assert.False(t, hasDeadline)
}

func TestCloseRunsInReverse(t *testing.T) {
	rt := &Runtime{}
	var order []int
	rt.OnClose(func() error { order = append(order, 1); return nil })
	rt.OnClose(func() error { order = append(order, 2); return errors.New("boom") })
	err := rt.Close()
	require.Error(t, err)
	assert.Equal(t, []int{2, 1}, order)
}

func TestAuditSinkWithoutKafka(t *testing.T) {
	rt := &Runtime{Config: config.Config{}}
	sink, ok := rt.AuditSink().(audit.Multi)
	require.True(t, ok)
	assert.Len(t, sink, 1)
}

func TestFirebaseMissingCredentials(t *testing.T) {
	for _, k := range []string{config.EnvProjectID, config.EnvPrivateKey, config.EnvClientEmail} {
		t.Setenv(k, "")
	}
	rt := &Runtime{}
	_, err := rt.Firebase(context.Background())
	require.ErrorIs(t, err, config.ErrMissingCredentials)
}
