// Package bootstrap builds the runtime shared by every command: config,
// logger, signal-aware context, Firebase clients, audit sink and metrics push.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bharatcyclehub/bch-admin/internal/audit"
	"github.com/bharatcyclehub/bch-admin/internal/config"
	"github.com/bharatcyclehub/bch-admin/internal/firebase"
	"github.com/bharatcyclehub/bch-admin/internal/kafka"
	"github.com/bharatcyclehub/bch-admin/internal/logger"
	"github.com/bharatcyclehub/bch-admin/internal/metrics"
	"github.com/bharatcyclehub/bch-admin/internal/util"
)

const (
	FlagConfig   = "config"
	FlagEnvFile  = "env-file"
	FlagTimeout  = "timeout"
	FlagLogLevel = "log-level"

	DefaultTimeout = 10 * time.Minute
)

// Flags are the root persistent flags every subcommand inherits.
type Flags struct {
	ConfigPath string
	EnvFile    string
	LogLevel   string
	Timeout    time.Duration
}

// BindFlags registers the persistent flags on root.
func BindFlags(root *cobra.Command) {
	pf := root.PersistentFlags()
	pf.String(FlagConfig, "config.yaml", "path to YAML config file")
	pf.String(FlagEnvFile, "", "env file with FIREBASE_ADMIN_* credentials (default firebase.env_file)")
	pf.Duration(FlagTimeout, DefaultTimeout, "abort one-shot commands after this long (0 disables)")
	pf.String(FlagLogLevel, "", "override log.level (debug|info|warn|error)")
}

func FlagsFrom(cmd *cobra.Command) Flags {
	pf := cmd.Root().PersistentFlags()
	var f Flags
	f.ConfigPath, _ = pf.GetString(FlagConfig)
	f.EnvFile, _ = pf.GetString(FlagEnvFile)
	f.LogLevel, _ = pf.GetString(FlagLogLevel)
	f.Timeout, _ = pf.GetDuration(FlagTimeout)
	return f
}

// Runtime is what a command gets after bootstrapping.
type Runtime struct {
	Config  config.Config
	Flags   Flags
	RunID   string
	Command string

	closers []func() error
}

// Setup loads config and initializes the logger. The returned Runtime must be closed.
func Setup(cmd *cobra.Command) (*Runtime, error) {
	f := FlagsFrom(cmd)

	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if f.LogLevel != "" {
		cfg.Log.Level = f.LogLevel
	}
	if f.EnvFile != "" {
		cfg.Firebase.EnvFile = f.EnvFile
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Encoding); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	rt := &Runtime{
		Config:  cfg,
		Flags:   f,
		RunID:   util.NewID(),
		Command: strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" "),
	}
	logger.Log.Debug("bootstrap", zap.String("run_id", rt.RunID), zap.String("command", rt.Command))
	return rt, nil
}

// OnClose registers fn to run (in reverse order) when the runtime closes.
func (rt *Runtime) OnClose(fn func() error) {
	rt.closers = append(rt.closers, fn)
}

func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	logger.Sync()
	return errors.Join(errs...)
}

// Context is cancelled on SIGINT/SIGTERM and, for one-shot commands, after --timeout.
func (rt *Runtime) Context(parent context.Context, bounded bool) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	if !bounded || rt.Flags.Timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, rt.Flags.Timeout)
	return ctx, func() { cancel(); stop() }
}

// Firebase loads credentials (env file, then process env) and builds the Admin SDK clients.
func (rt *Runtime) Firebase(ctx context.Context) (*firebase.App, error) {
	if err := config.LoadEnvFile(rt.Config.Firebase.EnvFile); err != nil {
		return nil, err
	}
	creds, err := config.CredentialsFromEnv(os.LookupEnv)
	if err != nil {
		return nil, err
	}
	app, err := firebase.New(ctx, creds)
	if err != nil {
		return nil, err
	}
	rt.OnClose(app.Close)
	logger.Log.Info("firebase ready", zap.String("project_id", app.ProjectID))
	return app, nil
}

// AuditSink always logs and also publishes to Kafka when brokers are configured.
func (rt *Runtime) AuditSink() audit.Sink {
	sinks := audit.Multi{audit.LogSink{}}
	if len(rt.Config.Kafka.Brokers) > 0 && rt.Config.Audit.Topic != "" {
		p := kafka.NewProducer(rt.Config.Kafka.Brokers, rt.Config.Audit.Topic)
		rt.OnClose(p.Close)
		sinks = append(sinks, audit.NewKafkaSink(p))
	}
	return sinks
}

func (rt *Runtime) Recorder() *audit.Recorder {
	return audit.NewRecorder(rt.RunID, rt.Command, rt.AuditSink())
}

// PushMetrics sends this run's counters to the Pushgateway, if one is configured.
// Failures are logged only.
func (rt *Runtime) PushMetrics(ctx context.Context) {
	m := rt.Config.Metrics
	if m.PushgatewayURL == "" {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := metrics.Push(pctx, m.PushgatewayURL, m.Job); err != nil {
		logger.Log.Warn("metrics push failed", zap.Error(err))
	}
}
