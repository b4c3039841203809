package verify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ringmodel/wmverify/internal/model"
	"github.com/ringmodel/wmverify/internal/smt"
	"github.com/ringmodel/wmverify/internal/verify"
)

// mpEvents is a minimal message-passing pattern: thread 1 writes a data
// value then a release flag; thread 2 acquires the flag then reads the
// data. Read ids: 3 reads the flag, 4 reads the data.
func mpEvents() []model.Event {
	return []model.Event{
		{ID: -2, Thread: -1, Kind: model.Write, Addr: 0, Val: 0, Mode: model.SC},
		{ID: -1, Thread: -1, Kind: model.Write, Addr: 1, Val: 0, Mode: model.SC},
		{ID: 1, Thread: 1, Kind: model.Write, Addr: 0, Val: 1, Mode: model.Rel},
		{ID: 2, Thread: 1, Kind: model.Write, Addr: 1, Val: 1, Mode: model.Rel},
		{ID: 3, Thread: 2, Kind: model.Read, Addr: 1, Mode: model.Acq},
		{ID: 4, Thread: 2, Kind: model.Read, Addr: 0, Mode: model.Acq},
	}
}

func TestAnalyzeSCIsSatisfiable(t *testing.T) {
	tr, err := model.BuildTrace(mpEvents())
	require.NoError(t, err)

	result, err := verify.Analyze(context.Background(), tr, verify.ModeSC)
	require.NoError(t, err)
	require.Equal(t, verify.Sat, result.Outcome)
}

// stale reports: the acquire on the flag observed it set, but the data
// read observed it unset. Under message-passing happens-before, that
// combination is unreachable.
func staleRead(ctx verify.Ctx) (*smt.BoolExprPtr, error) {
	eb := ctx.ExprBuilder()
	flagSeen, err := eb.Eq(ctx.ReadValue(3), eb.BVV(1, ctx.BitWidth()))
	if err != nil {
		return nil, err
	}
	dataStale, err := eb.Eq(ctx.ReadValue(4), eb.BVV(0, ctx.BitWidth()))
	if err != nil {
		return nil, err
	}
	return eb.BoolAnd(flagSeen, dataStale)
}

func TestVerifyMessagePassingHappensBeforeForbidsStaleRead(t *testing.T) {
	tr, err := model.BuildTrace(mpEvents())
	require.NoError(t, err)

	result, err := verify.Verify(context.Background(), tr, verify.ModeRA, staleRead, nil, nil)
	require.NoError(t, err)
	require.Equal(t, verify.Unsat, result.Outcome)
}

func TestVerifyRelaxedModeAdmitsStaleRead(t *testing.T) {
	events := mpEvents()
	for i := range events {
		if !events[i].IsInitial() {
			events[i].Mode = model.Rlx
		}
	}
	tr, err := model.BuildTrace(events)
	require.NoError(t, err)

	result, err := verify.Verify(context.Background(), tr, verify.ModeRelaxed, staleRead, nil, nil)
	require.NoError(t, err)
	require.Equal(t, verify.Sat, result.Outcome)
}

func TestVerifyCancellationYieldsUnknown(t *testing.T) {
	tr, err := model.BuildTrace(mpEvents())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := verify.Analyze(ctx, tr, verify.ModeSC)
	require.NoError(t, err)
	require.Equal(t, verify.Unknown, result.Outcome)
}
