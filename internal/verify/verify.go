package verify

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/ringmodel/wmverify/internal/encode"
	"github.com/ringmodel/wmverify/internal/model"
	"github.com/ringmodel/wmverify/internal/smt"
)

// AnalysisMode selects the ppo variant Analyze encodes with and whether
// release-acquire happens-before is enforced as a default.
type AnalysisMode int

const (
	// ModeSC preserves full program order (ppo_sc); SC axioms and
	// release-acquire happens-before both apply.
	ModeSC AnalysisMode = iota
	// ModeRA uses ppo_relaxed but keeps release-acquire happens-before
	// enabled wherever rf actually connects a release to an acquire.
	ModeRA
	// ModeRelaxed uses ppo_relaxed and disables release-acquire
	// happens-before entirely, even across matching rel/acq pairs.
	ModeRelaxed
)

func (m AnalysisMode) String() string {
	switch m {
	case ModeSC:
		return "sc"
	case ModeRA:
		return "ra"
	case ModeRelaxed:
		return "relaxed"
	default:
		return "?"
	}
}

func (m AnalysisMode) ppo() encode.PPO {
	if m == ModeSC {
		return model.PPOSC
	}
	return model.PPORelaxed
}

func (m AnalysisMode) raEnabled() bool {
	return m != ModeRelaxed
}

// Ctx is the handle violation, progress and extra-constraint predicates
// are written against. It exposes exactly the symbolic surface the core
// spec grants predicates: read values in trace order, the rf/co
// predicates, the rank function, and the list of writes.
type Ctx interface {
	ReadValues() []*smt.BVExprPtr
	ReadValue(readID int) *smt.BVExprPtr
	Rf(w, r model.Event) *smt.BoolExprPtr
	Co(w1, w2 model.Event) *smt.BoolExprPtr
	Rank(e model.Event) *smt.BVExprPtr
	Writes() []model.Event
	ExprBuilder() *smt.ExprBuilder
	BitWidth() uint
}

// Predicate is a caller-supplied boolean constraint expression over a Ctx:
// a violation predicate, a progress predicate, or an extra constraint.
type Predicate func(ctx Ctx) (*smt.BoolExprPtr, error)

// Outcome is the three-way result a solve can produce.
type Outcome int

const (
	Unsat Outcome = iota
	Sat
	Unknown
)

func (o Outcome) String() string {
	switch o {
	case Unsat:
		return "unsat"
	case Sat:
		return "sat"
	case Unknown:
		return "unknown"
	default:
		return "?"
	}
}

// Result is what Verify and Analyze return: the outcome, and — when
// Sat — the encoder and solver needed to pull a witness model out via
// internal/render.
type Result struct {
	Outcome Outcome
	Trace   *model.Trace
	Enc     *encode.Encoder
	Solver  *smt.Solver
}

// Verify assembles the base memory-model encoding for trace, layers in
// the SC/release-acquire axioms, conjoins the caller's violation,
// progress and (optional) extra predicates, and asks the solver whether
// the conjunction is satisfiable. A Sat result witnesses the violation;
// Unsat proves no admissible execution can reach it.
//
// Invocation is idempotent and pure with respect to trace: each call
// builds its own ExprBuilder and Solver and mutates no shared state.
func Verify(ctx context.Context, trace *model.Trace, mode AnalysisMode, violation, progress, extra Predicate) (*Result, error) {
	if err := ctx.Err(); err != nil {
		log.Warn("verification cancelled before solving started")
		return &Result{Outcome: Unknown, Trace: trace}, nil
	}

	enc, err := encode.Encode(trace, mode.ppo())
	if err != nil {
		log.WithError(err).Warn("failed to encode trace")
		return nil, err
	}

	axioms, err := enc.Axioms(mode.raEnabled())
	if err != nil {
		log.WithError(err).Warn("failed to emit memory-order axioms")
		return nil, err
	}

	solver := smt.NewZ3Solver(enc.EB)
	for _, c := range enc.Constraints() {
		solver.Add(c)
	}
	for _, c := range axioms {
		solver.Add(c)
	}

	query := enc.EB.BoolVal(true)
	for _, p := range []Predicate{violation, progress, extra} {
		if p == nil {
			continue
		}
		c, err := p(enc)
		if err != nil {
			log.WithError(err).Warn("predicate evaluation failed")
			return nil, &model.Error{Kind: "PredicateError", Msg: err.Error()}
		}
		query, err = enc.EB.BoolAnd(query, c)
		if err != nil {
			return nil, err
		}
	}

	log.WithField("mode", mode.String()).Info("solving")

	done := make(chan int, 1)
	go func() { done <- solver.CheckSat(query) }()

	var r int
	select {
	case r = <-done:
	case <-ctx.Done():
		log.Warn("verification cancelled by caller")
		return &Result{Outcome: Unknown, Trace: trace, Enc: enc, Solver: solver}, nil
	}

	switch r {
	case smt.RESULT_SAT:
		log.Info("solver returned sat")
		return &Result{Outcome: Sat, Trace: trace, Enc: enc, Solver: solver}, nil
	case smt.RESULT_UNSAT:
		log.Info("solver returned unsat")
		return &Result{Outcome: Unsat, Trace: trace, Enc: enc, Solver: solver}, nil
	default:
		log.Warn("solver returned unknown")
		return &Result{Outcome: Unknown, Trace: trace, Enc: enc, Solver: solver}, nil
	}
}

// Analyze is Verify with no caller-supplied predicates: it just checks
// that the base encoding plus the mode's axioms is itself satisfiable,
// i.e. that the trace admits at least one execution under that mode.
func Analyze(ctx context.Context, trace *model.Trace, mode AnalysisMode) (*Result, error) {
	return Verify(ctx, trace, mode, nil, nil, nil)
}
