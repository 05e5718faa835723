package repository

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bharatcyclehub/bch-admin/internal/model"
)

func TestBuildArchiveInsert(t *testing.T) {
	created := time.Date(2026, 1, 28, 9, 30, 0, 0, time.UTC)
	archived := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	leads := []model.Lead{
		{ID: "lead_A", Name: "Test", Phone: "98765 43210", Source: "quiz",
			Payment: model.LeadPayment{Status: model.PaymentUnpaid}, CreatedAt: created},
		{ID: "lead_B", Name: "demo"},
	}

	q, args, err := buildArchiveInsert("run1", leads, archived)
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(q, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"))
	assert.Contains(t, q, "ON DUPLICATE KEY UPDATE")
	require.Len(t, args, 20)

	assert.Equal(t, "lead_A", args[0])
	assert.Equal(t, "run1", args[1])
	assert.Equal(t, "+919876543210", args[3])
	assert.Equal(t, "UNPAID", args[6])
	assert.Equal(t, created, args[8])
	assert.Equal(t, archived, args[9])

	var payload model.Lead
	require.NoError(t, json.Unmarshal(args[7].([]byte), &payload))
	assert.Equal(t, "lead_A", payload.ID)

	// second row has no creation time
	assert.Nil(t, args[18])
}
