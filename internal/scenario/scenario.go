// Package scenario bundles the ring-buffer trace literals the verifier
// ships with: one correct baseline, a handful of under/over-synchronized
// variants, and a producer/consumer deadlock pattern. Each is meant to be
// run through internal/verify and checked against its Expected outcome.
package scenario

import (
	"github.com/ringmodel/wmverify/internal/model"
	"github.com/ringmodel/wmverify/internal/smt"
	"github.com/ringmodel/wmverify/internal/verify"
)

// Addresses used by the ring-buffer scenarios.
const (
	Data0 = 0
	Data1 = 1
	Tail  = 2
	Head  = 3
)

const (
	producerThread = 1
	consumerThread = 2
)

// Scenario is one bundled demo: a trace, the analysis mode it should be
// checked under, the violation/progress predicates that express the bug
// pattern being searched for, and the outcome a correct verifier must
// produce.
type Scenario struct {
	Name      string
	Trace     *model.Trace
	Mode      verify.AnalysisMode
	Violation verify.Predicate
	Progress  verify.Predicate
	Expected  verify.Outcome
}

func w(id, thread, addr, val int, mode model.Mode) model.Event {
	return model.Event{ID: id, Thread: thread, Kind: model.Write, Addr: addr, Val: val, Mode: mode}
}

func r(id, thread, addr int, mode model.Mode) model.Event {
	return model.Event{ID: id, Thread: thread, Kind: model.Read, Addr: addr, Mode: mode}
}

func initW(id, addr int) model.Event {
	return model.Event{ID: id, Thread: -1, Kind: model.Write, Addr: addr, Val: 0, Mode: model.SC}
}

func bvv(ctx verify.Ctx, v int64) *smt.BVExprPtr {
	return ctx.ExprBuilder().BVV(v, ctx.BitWidth())
}

// ringBufferEvents builds the produce/consume trace every P1-P5 scenario
// shares (four initial writes plus ten program events), varying only the
// modes of the ten program events.
func ringBufferEvents(m [10]model.Mode) []model.Event {
	return []model.Event{
		initW(-4, Data0),
		initW(-3, Data1),
		initW(-2, Tail),
		initW(-1, Head),

		w(1, producerThread, Data0, 1, m[0]),
		w(2, producerThread, Tail, 1, m[1]),
		w(3, producerThread, Data1, 2, m[2]),
		w(4, producerThread, Tail, 2, m[3]),

		r(5, consumerThread, Tail, m[4]),
		r(6, consumerThread, Data0, m[5]),
		w(7, consumerThread, Head, 1, m[6]),
		r(8, consumerThread, Tail, m[7]),
		r(9, consumerThread, Data1, m[8]),
		w(10, consumerThread, Head, 0, m[9]),
	}
}

// ringBufferViolation is the stale-read violation predicate shared by
// P1-P5: either consumer-visible slot, once its tail has advanced far
// enough to claim the slot was produced, disagrees with the value the
// producer actually wrote there.
func ringBufferViolation(ctx verify.Ctx) (*smt.BoolExprPtr, error) {
	eb := ctx.ExprBuilder()
	tail1, data0, tail2, data1 := ctx.ReadValue(5), ctx.ReadValue(6), ctx.ReadValue(8), ctx.ReadValue(9)

	tail1Ge1, err := eb.SGe(tail1, bvv(ctx, 1))
	if err != nil {
		return nil, err
	}
	data0Eq1, err := eb.Eq(data0, bvv(ctx, 1))
	if err != nil {
		return nil, err
	}
	data0Ne1, err := eb.BoolNot(data0Eq1)
	if err != nil {
		return nil, err
	}
	left, err := eb.BoolAnd(tail1Ge1, data0Ne1)
	if err != nil {
		return nil, err
	}

	tail2Ge2, err := eb.SGe(tail2, bvv(ctx, 2))
	if err != nil {
		return nil, err
	}
	data1Eq2, err := eb.Eq(data1, bvv(ctx, 2))
	if err != nil {
		return nil, err
	}
	data1Ne2, err := eb.BoolNot(data1Eq2)
	if err != nil {
		return nil, err
	}
	right, err := eb.BoolAnd(tail2Ge2, data1Ne2)
	if err != nil {
		return nil, err
	}

	return eb.BoolOr(left, right)
}

// ringBufferProgress rules out the trivial schedule where the consumer
// never observes either handoff at all.
func ringBufferProgress(ctx verify.Ctx) (*smt.BoolExprPtr, error) {
	eb := ctx.ExprBuilder()
	tail1Eq1, err := eb.Eq(ctx.ReadValue(5), bvv(ctx, 1))
	if err != nil {
		return nil, err
	}
	tail2Eq2, err := eb.Eq(ctx.ReadValue(8), bvv(ctx, 2))
	if err != nil {
		return nil, err
	}
	return eb.BoolAnd(tail1Eq1, tail2Eq2)
}

func ringBufferScenario(name string, modes [10]model.Mode, mode verify.AnalysisMode, expected verify.Outcome) Scenario {
	events := ringBufferEvents(modes)
	tr, err := model.BuildTrace(events)
	if err != nil {
		panic(err)
	}
	return Scenario{
		Name:      name,
		Trace:     tr,
		Mode:      mode,
		Violation: ringBufferViolation,
		Progress:  ringBufferProgress,
		Expected:  expected,
	}
}

var (
	sc  = model.SC
	rel = model.Rel
	acq = model.Acq
	rlx = model.Rlx
)

// P1 is the fully sequentially consistent baseline: every event is sc.
// The solver cannot find a schedule witnessing a stale read.
func P1() Scenario {
	return ringBufferScenario("P1-all-sc-correct",
		[10]model.Mode{sc, sc, sc, sc, sc, sc, sc, sc, sc, sc},
		verify.ModeSC, verify.Unsat)
}

// P2 drops every event to relaxed. With no ordering at all beyond rf/co
// well-formedness, the consumer can observe an advanced tail alongside
// stale data.
func P2() Scenario {
	return ringBufferScenario("P2-all-relaxed-buggy",
		[10]model.Mode{rlx, rlx, rlx, rlx, rlx, rlx, rlx, rlx, rlx, rlx},
		verify.ModeRelaxed, verify.Sat)
}

// P3 over-synchronizes: every producer write is release, every consumer
// read is acquire. That is more synchronization than the bug needs (P4
// tags only the tail handoff and is unsat too), so it is also unsat -- it
// demonstrates that the extra release/acquire tags are not a correctness
// regression here, just a cost one.
func P3() Scenario {
	return ringBufferScenario("P3-over-conservative-ra",
		[10]model.Mode{rel, rel, rel, rel, acq, acq, rlx, acq, acq, rlx},
		verify.ModeRA, verify.Unsat)
}

// P4 is the minimal synchronization that still rules out the bug: only
// the tail handoff is rel/acq tagged, data stays relaxed, and that is
// enough because the happens-before edge release-acquire establishes
// covers every po-predecessor of the release, including the data write.
func P4() Scenario {
	return ringBufferScenario("P4-minimal-ra-recommended",
		[10]model.Mode{rlx, rel, rlx, rel, acq, rlx, rlx, acq, rlx, rlx},
		verify.ModeRA, verify.Unsat)
}

// P5 misuses the pattern: only the second tail write carries release, so
// the first handoff establishes no happens-before edge at all and the
// data it guards can still be read stale.
func P5() Scenario {
	return ringBufferScenario("P5-misused-ra",
		[10]model.Mode{rlx, rlx, rlx, rel, acq, rlx, rlx, acq, rlx, rlx},
		verify.ModeRA, verify.Sat)
}

// deadlockViolation is shared by every deadlock variant: both threads
// see the handoff flag they're waiting on still at its initial value.
func deadlockViolation(ctx verify.Ctx) (*smt.BoolExprPtr, error) {
	eb := ctx.ExprBuilder()
	headEq0, err := eb.Eq(ctx.ReadValue(3), bvv(ctx, 0))
	if err != nil {
		return nil, err
	}
	tailEq0, err := eb.Eq(ctx.ReadValue(7), bvv(ctx, 0))
	if err != nil {
		return nil, err
	}
	return eb.BoolAnd(headEq0, tailEq0)
}

func deadlockEvents(mProd2, mProd3, mCons6, mCons7 model.Mode) []model.Event {
	return []model.Event{
		initW(-3, Data0),
		initW(-2, Tail),
		initW(-1, Head),

		w(1, producerThread, Data0, 1, rlx),
		w(2, producerThread, Tail, 1, mProd2),
		r(3, producerThread, Head, mProd3),

		r(4, consumerThread, Tail, rlx),
		r(5, consumerThread, Data0, rlx),
		w(6, consumerThread, Head, 1, mCons6),
		r(7, consumerThread, Tail, mCons7),
	}
}

func deadlockScenario(name string, mode verify.AnalysisMode, mProd2, mProd3, mCons6, mCons7 model.Mode, expected verify.Outcome) Scenario {
	tr, err := model.BuildTrace(deadlockEvents(mProd2, mProd3, mCons6, mCons7))
	if err != nil {
		panic(err)
	}
	return Scenario{
		Name:      name,
		Trace:     tr,
		Mode:      mode,
		Violation: deadlockViolation,
		Progress:  nil,
		Expected:  expected,
	}
}

// PDeadlockSC: after a full produce/consume round, the producer re-checks
// head for free space and the consumer re-checks tail for new data. Under
// full program order the two po chains plus the two stale-read rf choices
// form a genuine rank cycle, so no admissible execution can deadlock.
func PDeadlockSC() Scenario {
	return deadlockScenario("P-deadlock-sc", verify.ModeSC, sc, sc, sc, sc, verify.Unsat)
}

// PDeadlockRelaxed substitutes every mode with rlx. ppo_relaxed drops the
// now-unenforced same-thread edges the cycle depended on, so the same
// stale reads become satisfiable.
func PDeadlockRelaxed() Scenario {
	return deadlockScenario("P-deadlock-relaxed", verify.ModeRelaxed, rlx, rlx, rlx, rlx, verify.Sat)
}

// PDeadlockCrossRA tags every handoff release/acquire. That alone
// doesn't save it: the violation still requires both reads to take
// their value from the stale initial write rather than from the
// rel-tagged write on the same address, so rf never actually fires
// between the matching rel/acq pair and the release-acquire
// implication's antecedent stays false. No happens-before edge is
// established, and with neither read tagged sc, scLatestVisible has
// nothing to say either, so the rank cycle that made PDeadlockSC unsat
// never gets reinstated.
func PDeadlockCrossRA() Scenario {
	return deadlockScenario("P-deadlock-cross-address-ra", verify.ModeRA, rel, acq, rel, acq, verify.Sat)
}

// All returns every bundled scenario, in a stable presentation order.
func All() []Scenario {
	return []Scenario{P1(), P2(), P3(), P4(), P5(), PDeadlockSC(), PDeadlockRelaxed(), PDeadlockCrossRA()}
}
