package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ringmodel/wmverify/internal/model"
)

func TestPOSameThreadOrdering(t *testing.T) {
	a := model.Event{ID: 1, Thread: 1}
	b := model.Event{ID: 2, Thread: 1}
	c := model.Event{ID: 3, Thread: 2}

	require.True(t, model.PO(a, b))
	require.False(t, model.PO(b, a))
	require.False(t, model.PO(a, c))
}

func TestPPORelaxedDropsNonSCSameThreadPairs(t *testing.T) {
	a := model.Event{ID: 1, Thread: 1, Mode: model.Rlx}
	b := model.Event{ID: 2, Thread: 1, Mode: model.Rlx}

	require.True(t, model.PO(a, b))
	require.False(t, model.PPORelaxed(a, b))

	c := model.Event{ID: 3, Thread: 1, Mode: model.SC}
	require.True(t, model.PPORelaxed(a, c))
}

func TestPPOSCMatchesPO(t *testing.T) {
	a := model.Event{ID: 1, Thread: 1, Mode: model.Rlx}
	b := model.Event{ID: 2, Thread: 1, Mode: model.Rel}

	require.Equal(t, model.PO(a, b), model.PPOSC(a, b))
}

func TestWellFormedRfRequiresExactlyOneSource(t *testing.T) {
	events := []model.Event{
		{ID: -1, Thread: -1, Kind: model.Write, Addr: 0, Val: 0, Mode: model.SC},
		{ID: 1, Thread: 1, Kind: model.Write, Addr: 0, Val: 1, Mode: model.SC},
		{ID: 2, Thread: 2, Kind: model.Read, Addr: 0, Val: 1, Mode: model.SC},
	}
	tr, err := model.BuildTrace(events)
	require.NoError(t, err)

	w := events[1]
	r := events[2]

	require.True(t, model.WellFormedRf(tr, []model.RfEdge{{W: w, R: r}}))
	require.False(t, model.WellFormedRf(tr, nil))
}

func TestWellFormedRfRejectsMismatchedValue(t *testing.T) {
	w := model.Event{ID: 1, Thread: 1, Kind: model.Write, Addr: 0, Val: 1, Mode: model.SC}
	r := model.Event{ID: 2, Thread: 2, Kind: model.Read, Addr: 0, Val: 2, Mode: model.SC}

	require.False(t, model.WellFormedRf(nil, []model.RfEdge{{W: w, R: r}}))
}

func TestFrDerivesFromRfAndCo(t *testing.T) {
	w0 := model.Event{ID: -1, Thread: -1, Kind: model.Write, Addr: 0, Val: 0, Mode: model.SC}
	w1 := model.Event{ID: 1, Thread: 1, Kind: model.Write, Addr: 0, Val: 1, Mode: model.SC}
	r := model.Event{ID: 2, Thread: 2, Kind: model.Read, Addr: 0, Val: 0, Mode: model.SC}

	rf := []model.RfEdge{{W: w0, R: r}}
	co := []model.CoEdge{{W1: w0, W2: w1}}

	fr := model.Fr(rf, co)
	require.Len(t, fr, 1)
	require.Equal(t, r.ID, fr[0].R.ID)
	require.Equal(t, w1.ID, fr[0].W2.ID)
}
