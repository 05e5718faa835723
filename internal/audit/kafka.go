package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bharatcyclehub/bch-admin/internal/kafka"
	"github.com/bharatcyclehub/bch-admin/internal/model"
)

// KafkaSink publishes events as JSON keyed by run id, so one run lands on one partition.
type KafkaSink struct {
	p *kafka.Producer
}

func NewKafkaSink(p *kafka.Producer) *KafkaSink {
	return &KafkaSink{p: p}
}

func (s *KafkaSink) Emit(ctx context.Context, e model.AuditEvent) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	return s.p.Publish(ctx, []byte(e.RunID), b)
}
