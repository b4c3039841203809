package encode

import (
	"github.com/ringmodel/wmverify/internal/model"
	"github.com/ringmodel/wmverify/internal/smt"
)

// Axioms emits the per-mode memory-order constraints layered on top of a
// base Encoding: SC total order plus the SC latest-visible rule, and
// (when raEnabled) release-acquire happens-before. rf timing is not
// re-emitted here — it already falls out of encodeRanks treating rf as
// one of the relations ranked by the acyclicity implications, exactly as
// the rank[w] < rank[r] consequence the core spec calls "required even
// though po/co/fr imply much of this".
func (enc *Encoder) Axioms(raEnabled bool) ([]*smt.BoolExprPtr, error) {
	cs := make([]*smt.BoolExprPtr, 0)

	scTotal, err := enc.scTotalOrder()
	if err != nil {
		return nil, err
	}
	cs = append(cs, scTotal...)

	scLatest, err := enc.scLatestVisible()
	if err != nil {
		return nil, err
	}
	cs = append(cs, scLatest...)

	if raEnabled {
		ra, err := enc.releaseAcquire()
		if err != nil {
			return nil, err
		}
		cs = append(cs, ra...)
	}

	return cs, nil
}

// scTotalOrder forbids any two distinct SC-tagged events from sharing a
// rank; combined with acyclicity this yields a strict total order on SC
// events.
func (enc *Encoder) scTotalOrder() ([]*smt.BoolExprPtr, error) {
	eb := enc.EB
	events := enc.Trace.Events()
	cs := make([]*smt.BoolExprPtr, 0)

	for i := 0; i < len(events); i++ {
		if events[i].Mode != model.SC {
			continue
		}
		for j := i + 1; j < len(events); j++ {
			if events[j].Mode != model.SC {
				continue
			}
			eq, err := eb.Eq(enc.Rank(events[i]), enc.Rank(events[j]))
			if err != nil {
				return nil, err
			}
			neq, err := eb.BoolNot(eq)
			if err != nil {
				return nil, err
			}
			cs = append(cs, neq)
		}
	}
	return cs, nil
}

// scLatestVisible forbids an SC read from seeing a stale write: whenever
// rf(w, r) holds for an SC read r, no co-successor of w on the same
// address may rank below r.
func (enc *Encoder) scLatestVisible() ([]*smt.BoolExprPtr, error) {
	eb := enc.EB
	cs := make([]*smt.BoolExprPtr, 0)

	for _, r := range enc.Trace.Reads() {
		if r.Mode != model.SC {
			continue
		}
		candidates := enc.Trace.WritesTo(r.Addr)
		for _, w := range candidates {
			rf := enc.Rf(w, r)
			if rf.IsConst() {
				if v, _ := rf.GetConst(); !v {
					continue
				}
			}

			staleTerms := make([]*smt.BoolExprPtr, 0)
			for _, wp := range candidates {
				if wp.ID == w.ID {
					continue
				}
				co := enc.Co(w, wp)
				rankLt, err := eb.SLt(enc.Rank(wp), enc.Rank(r))
				if err != nil {
					return nil, err
				}
				stale, err := eb.BoolAnd(co, rankLt)
				if err != nil {
					return nil, err
				}
				staleTerms = append(staleTerms, stale)
			}

			anyStale, err := or(eb, staleTerms)
			if err != nil {
				return nil, err
			}
			noStale, err := eb.BoolNot(anyStale)
			if err != nil {
				return nil, err
			}
			forbid, err := implies(eb, rf, noStale)
			if err != nil {
				return nil, err
			}
			cs = append(cs, forbid)
		}
	}
	return cs, nil
}

// releaseAcquire emits the message-passing happens-before edge: whenever
// rf(w, r) connects a release write to an acquire read, every po-
// predecessor of w ranks strictly below every po-successor of r.
func (enc *Encoder) releaseAcquire() ([]*smt.BoolExprPtr, error) {
	eb := enc.EB
	events := enc.Trace.Events()
	cs := make([]*smt.BoolExprPtr, 0)

	for _, w := range enc.Trace.Writes() {
		if w.Mode != model.Rel {
			continue
		}
		pres := make([]model.Event, 0)
		for _, e := range events {
			if model.PO(e, w) {
				pres = append(pres, e)
			}
		}

		for _, r := range enc.Trace.Reads() {
			if r.Mode != model.Acq || r.Addr != w.Addr {
				continue
			}
			rf := enc.Rf(w, r)
			if rf.IsConst() {
				if v, _ := rf.GetConst(); !v {
					continue
				}
			}

			posts := make([]model.Event, 0)
			for _, e := range events {
				if model.PO(r, e) {
					posts = append(posts, e)
				}
			}
			if len(pres) == 0 || len(posts) == 0 {
				continue
			}

			pairTerms := make([]*smt.BoolExprPtr, 0, len(pres)*len(posts))
			for _, pre := range pres {
				for _, post := range posts {
					lt, err := eb.SLt(enc.Rank(pre), enc.Rank(post))
					if err != nil {
						return nil, err
					}
					pairTerms = append(pairTerms, lt)
				}
			}
			allOrdered, err := and(eb, pairTerms)
			if err != nil {
				return nil, err
			}
			imp, err := implies(eb, rf, allOrdered)
			if err != nil {
				return nil, err
			}
			cs = append(cs, imp)
		}
	}
	return cs, nil
}
