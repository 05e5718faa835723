package audit

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/bharatcyclehub/bch-admin/internal/logger"
	"github.com/bharatcyclehub/bch-admin/internal/model"
)

// Sink receives audit events.
type Sink interface {
	Emit(ctx context.Context, e model.AuditEvent) error
}

// LogSink writes events to the structured log.
type LogSink struct{}

func (LogSink) Emit(_ context.Context, e model.AuditEvent) error {
	logger.Log.Info("audit",
		zap.String("run_id", e.RunID),
		zap.String("command", e.Command),
		zap.String("action", e.Action.String()),
		zap.String("subject", e.Subject),
		zap.String("detail", e.Detail),
	)
	return nil
}

// Multi fans an event out to every sink and joins their errors.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, e model.AuditEvent) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DefaultEmitTimeout bounds a single Emit call made by a Recorder.
const DefaultEmitTimeout = 2 * time.Second

// Recorder stamps events with the run id and command of one invocation.
// Emission failures are logged and never fail the maintenance operation.
// Each Emit runs under its own timeout, detached from the caller's context.
type Recorder struct {
	RunID   string
	Command string
	Sink    Sink
	Now     func() time.Time
	Timeout time.Duration
}

func NewRecorder(runID, command string, sink Sink) *Recorder {
	return &Recorder{RunID: runID, Command: command, Sink: sink, Now: time.Now, Timeout: DefaultEmitTimeout}
}

func (r *Recorder) Record(ctx context.Context, action model.AuditAction, subject, detail string) {
	if r == nil || r.Sink == nil {
		return
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	e := model.AuditEvent{
		RunID:   r.RunID,
		Command: r.Command,
		Action:  action,
		Subject: subject,
		Detail:  detail,
		At:      now().UTC(),
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultEmitTimeout
	}
	ectx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := r.Sink.Emit(ectx, e); err != nil {
		logger.Log.Warn("audit emit failed",
			zap.String("action", action.String()),
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}
