package api

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/miradorstack/aura/internal/catalog"
	"github.com/miradorstack/aura/internal/models"
	"github.com/miradorstack/aura/internal/session"
	"github.com/miradorstack/aura/internal/tools"
	"github.com/miradorstack/aura/internal/workflow"
)

func TestStatusFromError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   codes.Code
		reason string
	}{
		{"unknown scenario", &catalog.UnknownScenarioError{ID: "x", Available: []models.ScenarioID{catalog.CostAnomaly}}, codes.NotFound, ReasonUnknownScenario},
		{"out of order", fmt.Errorf("advance: %w", &workflow.OutOfOrderStageError{State: models.StateIdle, Trigger: models.TriggerDetect}), codes.FailedPrecondition, ReasonOutOfOrderStage},
		{"missing session", fmt.Errorf("%w: abc", session.ErrNotFound), codes.NotFound, ReasonSessionNotFound},
		{"bad tool call", fmt.Errorf("%w: unknown tool: x", tools.ErrInvalidCall), codes.InvalidArgument, ""},
		{"cancelled", context.Canceled, codes.Canceled, ""},
		{"other", fmt.Errorf("boom"), codes.Internal, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := StatusFromError(tc.err)
			assert.Equal(t, tc.code, status.Code(err))
			info := ErrorInfoFrom(err)
			if tc.reason == "" {
				assert.Nil(t, info)
				return
			}
			require.NotNil(t, info)
			assert.Equal(t, tc.reason, info.GetReason())
			assert.Equal(t, ErrorDomain, info.GetDomain())
		})
	}
	assert.NoError(t, StatusFromError(nil))
}

func TestStatusFromErrorUnknownScenarioMetadata(t *testing.T) {
	err := StatusFromError(&catalog.UnknownScenarioError{
		ID:        "disk_full",
		Available: []models.ScenarioID{catalog.CostAnomaly, catalog.SecurityVulnerability},
	})
	info := ErrorInfoFrom(err)
	require.NotNil(t, info)
	assert.Equal(t, "disk_full", info.GetMetadata()["scenario"])
	assert.Equal(t, "cost_anomaly,security_vulnerability", info.GetMetadata()["available_types"])
}
