package encode_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ringmodel/wmverify/internal/encode"
	"github.com/ringmodel/wmverify/internal/model"
)

func simpleTrace(t *testing.T) *model.Trace {
	events := []model.Event{
		{ID: -1, Thread: -1, Kind: model.Write, Addr: 0, Val: 0, Mode: model.SC},
		{ID: 1, Thread: 1, Kind: model.Write, Addr: 0, Val: 1, Mode: model.SC},
		{ID: 2, Thread: 2, Kind: model.Read, Addr: 0, Val: 0, Mode: model.SC},
	}
	tr, err := model.BuildTrace(events)
	require.NoError(t, err)
	return tr
}

func TestEncodeProducesOneRfVarPerCandidateWrite(t *testing.T) {
	tr := simpleTrace(t)
	enc, err := encode.Encode(tr, model.PPOSC)
	require.NoError(t, err)
	require.NotEmpty(t, enc.Constraints())

	r, _ := tr.ByID(2)
	w0, _ := tr.ByID(-1)
	w1, _ := tr.ByID(1)

	// both candidate writes share the same address as r, so rf(w, r) is a
	// genuine symbolic variable, not a constant-folded false.
	require.False(t, enc.Rf(w0, r).IsConst())
	require.False(t, enc.Rf(w1, r).IsConst())
}

// A read on an address nothing writes has no rf candidate. Such a trace
// never reaches Encode: BuildTrace already rejects the address for lacking
// an initial write.
func TestReadWithNoCandidateWriteIsRejectedBeforeEncode(t *testing.T) {
	events := []model.Event{
		{ID: -1, Thread: -1, Kind: model.Write, Addr: 0, Val: 0, Mode: model.SC},
		{ID: -2, Thread: -1, Kind: model.Write, Addr: 1, Val: 0, Mode: model.SC},
		{ID: 2, Thread: 2, Kind: model.Read, Addr: 5, Val: 0, Mode: model.SC},
	}
	_, err := model.BuildTrace(events)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no initial write")
}

func TestCoIsFalseAcrossAddresses(t *testing.T) {
	tr := simpleTrace(t)
	enc, err := encode.Encode(tr, model.PPOSC)
	require.NoError(t, err)

	w0, _ := tr.ByID(-1)
	other := model.Event{ID: 99, Thread: -1, Kind: model.Write, Addr: 1, Val: 0, Mode: model.SC}
	co := enc.Co(w0, other)
	require.True(t, co.IsConst())
	v, _ := co.GetConst()
	require.False(t, v)
}

func TestAxiomsAddScTotalOrderConstraints(t *testing.T) {
	tr := simpleTrace(t)
	enc, err := encode.Encode(tr, model.PPOSC)
	require.NoError(t, err)

	cs, err := enc.Axioms(true)
	require.NoError(t, err)
	require.NotEmpty(t, cs)
}
