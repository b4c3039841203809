package encode

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/ringmodel/wmverify/internal/model"
	"github.com/ringmodel/wmverify/internal/smt"
)

// PPO selects the preserved-program-order variant an Encoder ranks
// same-thread event pairs with; callers pass model.PPOSC or
// model.PPORelaxed depending on the analysis mode in use.
type PPO func(e1, e2 model.Event) bool

type rfKey struct {
	w, r int
}

// Encoder allocates and holds every symbolic variable the memory-model
// encoding needs for one trace: the rf one-hot matrix, one co_rank per
// write, and one rank per event. Constraints accumulate into a plain
// slice and are conjoined by the caller (internal/verify), per the core
// spec's "accumulate, don't short-circuit" iteration style.
type Encoder struct {
	EB    *smt.ExprBuilder
	Trace *model.Trace
	Width uint

	rfVars  map[rfKey]*smt.BoolExprPtr
	rfBV    map[rfKey]*smt.BVExprPtr
	coRank  map[int]*smt.BVExprPtr
	rank    map[int]*smt.BVExprPtr
	readVal map[int]*smt.BVExprPtr

	constraints []*smt.BoolExprPtr
}

// Encode builds the symbolic encoding of trace: the rf matrix and its
// one-hot constraints, the co_rank integers and their distinctness/
// init-ordering constraints, the per-event ranks and the acyclicity
// implications over ppo ∪ rf ∪ co ∪ fr, and the initial-write rank
// pinning. It never fails on a trace that already passed
// model.BuildTrace.
func Encode(trace *model.Trace, ppo PPO) (*Encoder, error) {
	eb := smt.NewExprBuilder()
	width := computeWidth(trace)

	enc := &Encoder{
		EB:      eb,
		Trace:   trace,
		Width:   width,
		rfVars:  make(map[rfKey]*smt.BoolExprPtr),
		rfBV:    make(map[rfKey]*smt.BVExprPtr),
		coRank:  make(map[int]*smt.BVExprPtr),
		rank:    make(map[int]*smt.BVExprPtr),
		readVal: make(map[int]*smt.BVExprPtr),
	}

	log.WithFields(log.Fields{"events": len(trace.Events()), "width": width}).Debug("encoding trace")

	if err := enc.encodeRf(); err != nil {
		return nil, err
	}
	enc.encodeCo()
	if err := enc.encodeRanks(ppo); err != nil {
		return nil, err
	}

	log.WithField("constraints", len(enc.constraints)).Debug("base encoding complete")
	return enc, nil
}

func (enc *Encoder) addConstraint(c *smt.BoolExprPtr) {
	enc.constraints = append(enc.constraints, c)
}

// Constraints returns every base constraint emitted by Encode. Mode
// axioms from internal/encode's Axioms are kept separate and must be
// added by the caller alongside these.
func (enc *Encoder) Constraints() []*smt.BoolExprPtr {
	return enc.constraints
}

func or(eb *smt.ExprBuilder, terms []*smt.BoolExprPtr) (*smt.BoolExprPtr, error) {
	res := eb.BoolVal(false)
	var err error
	for _, t := range terms {
		res, err = eb.BoolOr(res, t)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

func and(eb *smt.ExprBuilder, terms []*smt.BoolExprPtr) (*smt.BoolExprPtr, error) {
	res := eb.BoolVal(true)
	var err error
	for _, t := range terms {
		res, err = eb.BoolAnd(res, t)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

func implies(eb *smt.ExprBuilder, a, b *smt.BoolExprPtr) (*smt.BoolExprPtr, error) {
	na, err := eb.BoolNot(a)
	if err != nil {
		return nil, err
	}
	return eb.BoolOr(na, b)
}

// encodeRf allocates the |R|x|W same-address| boolean matrix and emits,
// per read, the at-least-one and pairwise at-most-one constraints that
// together express "exactly one rf source" (the one-hot encoding the
// core spec's design notes call out as equivalent to a sum-identity
// encoding). It also resolves each read's symbolic value as an ITE chain
// over its one-hot row, so no bitvector arithmetic is needed to express
// the value-matching half of rf well-formedness.
func (enc *Encoder) encodeRf() error {
	eb := enc.EB
	writes := enc.Trace.Writes()

	for _, r := range enc.Trace.Reads() {
		matches := make([]model.Event, 0)
		for _, w := range writes {
			if w.Addr != r.Addr {
				continue
			}
			matches = append(matches, w)
			v := eb.BVS(fmt.Sprintf("rf_%d_%d", w.ID, r.ID), 1)
			b, err := eb.Eq(v, eb.BVV(1, 1))
			if err != nil {
				return err
			}
			enc.rfVars[rfKey{w.ID, r.ID}] = b
			enc.rfBV[rfKey{w.ID, r.ID}] = v
		}
		if len(matches) == 0 {
			return &model.Error{Kind: "MalformedTrace", Msg: fmt.Sprintf("read %d has no candidate writes on its address", r.ID)}
		}

		vars := make([]*smt.BoolExprPtr, 0, len(matches))
		for _, w := range matches {
			vars = append(vars, enc.rfVars[rfKey{w.ID, r.ID}])
		}
		atLeastOne, err := or(eb, vars)
		if err != nil {
			return err
		}
		enc.addConstraint(atLeastOne)

		for i := 0; i < len(vars); i++ {
			for j := i + 1; j < len(vars); j++ {
				both, err := eb.BoolAnd(vars[i], vars[j])
				if err != nil {
					return err
				}
				notBoth, err := eb.BoolNot(both)
				if err != nil {
					return err
				}
				enc.addConstraint(notBoth)
			}
		}

		valExpr := eb.BVV(int64(matches[len(matches)-1].Val), enc.Width)
		for i := len(matches) - 2; i >= 0; i-- {
			w := matches[i]
			valExpr, err = eb.ITE(vars[i], eb.BVV(int64(w.Val), enc.Width), valExpr)
			if err != nil {
				return err
			}
		}
		enc.readVal[r.ID] = valExpr
	}
	return nil
}

// encodeCo allocates one co_rank integer per write and emits distinctness
// (every pair of same-address writes gets a different rank) plus
// init-minimality (an initial write's co_rank is below every non-initial
// write on the same address).
func (enc *Encoder) encodeCo() {
	eb := enc.EB
	writes := enc.Trace.Writes()

	for _, w := range writes {
		enc.coRank[w.ID] = eb.BVS(fmt.Sprintf("co_%d", w.ID), enc.Width)
	}

	for i := 0; i < len(writes); i++ {
		for j := i + 1; j < len(writes); j++ {
			w1, w2 := writes[i], writes[j]
			if w1.Addr != w2.Addr {
				continue
			}
			eq, _ := eb.Eq(enc.coRank[w1.ID], enc.coRank[w2.ID])
			neq, _ := eb.BoolNot(eq)
			enc.addConstraint(neq)

			if w1.IsInitial() && !w2.IsInitial() {
				lt, _ := eb.SLt(enc.coRank[w1.ID], enc.coRank[w2.ID])
				enc.addConstraint(lt)
			} else if w2.IsInitial() && !w1.IsInitial() {
				lt, _ := eb.SLt(enc.coRank[w2.ID], enc.coRank[w1.ID])
				enc.addConstraint(lt)
			}
		}
	}
}

// Rf returns the symbolic predicate for rf(w, r): false when the
// addresses don't match (no variable was ever allocated for that pair),
// otherwise the one-hot cell for the pair.
func (enc *Encoder) Rf(w, r model.Event) *smt.BoolExprPtr {
	if v, ok := enc.rfVars[rfKey{w.ID, r.ID}]; ok {
		return v
	}
	return enc.EB.BoolVal(false)
}

// RfVar returns the raw one-hot bitvector variable backing rf(w, r), or
// nil when the addresses don't match and no variable was allocated. The
// witness renderer evaluates this directly, since the solver's Eval only
// takes bitvector expressions.
func (enc *Encoder) RfVar(w, r model.Event) *smt.BVExprPtr {
	return enc.rfBV[rfKey{w.ID, r.ID}]
}

// Co returns the symbolic predicate for co(w1, w2).
func (enc *Encoder) Co(w1, w2 model.Event) *smt.BoolExprPtr {
	if w1.Addr != w2.Addr {
		return enc.EB.BoolVal(false)
	}
	lt, err := enc.EB.SLt(enc.coRank[w1.ID], enc.coRank[w2.ID])
	if err != nil {
		panic(err)
	}
	return lt
}

// Fr returns the symbolic predicate for fr(r, w2): there exists a write w
// such that rf(w, r) and co(w, w2).
func (enc *Encoder) Fr(r, w2 model.Event) *smt.BoolExprPtr {
	if r.Addr != w2.Addr {
		return enc.EB.BoolVal(false)
	}
	terms := make([]*smt.BoolExprPtr, 0)
	for _, w := range enc.Trace.WritesTo(r.Addr) {
		if w.ID == w2.ID {
			continue
		}
		rf := enc.Rf(w, r)
		co := enc.Co(w, w2)
		term, err := enc.EB.BoolAnd(rf, co)
		if err != nil {
			panic(err)
		}
		terms = append(terms, term)
	}
	res, err := or(enc.EB, terms)
	if err != nil {
		panic(err)
	}
	return res
}

// Rank returns the symbolic rank variable for e.
func (enc *Encoder) Rank(e model.Event) *smt.BVExprPtr {
	return enc.rank[e.ID]
}

// ReadValues returns the resolved symbolic value expression for every
// read, in trace order.
func (enc *Encoder) ReadValues() []*smt.BVExprPtr {
	res := make([]*smt.BVExprPtr, 0, len(enc.Trace.Reads()))
	for _, r := range enc.Trace.Reads() {
		res = append(res, enc.readVal[r.ID])
	}
	return res
}

// ReadValue returns the resolved symbolic value expression for a single
// read by id.
func (enc *Encoder) ReadValue(readID int) *smt.BVExprPtr {
	return enc.readVal[readID]
}

// Writes returns every write in the trace, in trace order.
func (enc *Encoder) Writes() []model.Event {
	return enc.Trace.Writes()
}

// ExprBuilder returns the expression builder every symbolic variable and
// constant in this encoding was allocated from. Predicates need it to
// build comparison constants at the encoding's bit width.
func (enc *Encoder) ExprBuilder() *smt.ExprBuilder {
	return enc.EB
}

// BitWidth returns the bit width every symbolic integer in this encoding
// was allocated with.
func (enc *Encoder) BitWidth() uint {
	return enc.Width
}

// encodeRanks allocates one rank integer per event and emits the
// acyclicity implications over ppo ∪ rf ∪ co ∪ fr, plus the
// initial-write rank pinning that keeps initial writes from floating
// above program events.
func (enc *Encoder) encodeRanks(ppo PPO) error {
	eb := enc.EB
	events := enc.Trace.Events()

	for _, e := range events {
		enc.rank[e.ID] = eb.BVS(fmt.Sprintf("rank_%d", e.ID), enc.Width)
	}

	for _, e1 := range events {
		for _, e2 := range events {
			if e1.ID == e2.ID {
				continue
			}

			terms := make([]*smt.BoolExprPtr, 0, 4)
			terms = append(terms, eb.BoolVal(ppo(e1, e2)))

			if e1.Kind == model.Write && e2.Kind == model.Read {
				terms = append(terms, enc.Rf(e1, e2))
			}
			if e1.Kind == model.Write && e2.Kind == model.Write {
				terms = append(terms, enc.Co(e1, e2))
			}
			if e1.Kind == model.Read && e2.Kind == model.Write {
				terms = append(terms, enc.Fr(e1, e2))
			}

			edge, err := or(eb, terms)
			if err != nil {
				return err
			}
			if edge.IsConst() {
				if v, _ := edge.GetConst(); !v {
					continue
				}
			}

			lt, err := eb.SLt(enc.rank[e1.ID], enc.rank[e2.ID])
			if err != nil {
				return err
			}
			imp, err := implies(eb, edge, lt)
			if err != nil {
				return err
			}
			enc.addConstraint(imp)
		}
	}

	for _, e := range events {
		if e.IsInitial() {
			eq, err := eb.Eq(enc.rank[e.ID], eb.BVV(int64(e.ID), enc.Width))
			if err != nil {
				return err
			}
			enc.addConstraint(eq)
		} else {
			gt, err := eb.SGt(enc.rank[e.ID], eb.BVV(0, enc.Width))
			if err != nil {
				return err
			}
			enc.addConstraint(gt)
		}
	}
	return nil
}
