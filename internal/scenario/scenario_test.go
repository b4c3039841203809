package scenario_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ringmodel/wmverify/internal/scenario"
	"github.com/ringmodel/wmverify/internal/verify"
)

func TestAllScenariosBuildValidTraces(t *testing.T) {
	for _, s := range scenario.All() {
		require.NotNil(t, s.Trace, s.Name)
		require.NotNil(t, s.Violation, s.Name)
	}
}

func TestBundledScenariosMatchExpectedOutcome(t *testing.T) {
	for _, s := range scenario.All() {
		s := s
		t.Run(s.Name, func(t *testing.T) {
			result, err := verify.Verify(context.Background(), s.Trace, s.Mode, s.Violation, s.Progress, nil)
			require.NoError(t, err)
			require.Equal(t, s.Expected, result.Outcome)
		})
	}
}
