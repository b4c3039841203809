package model

// PO is the static, concrete program-order relation: same thread, e1's id
// strictly before e2's id.
func PO(e1, e2 Event) bool {
	return e1.Thread == e2.Thread && e1.ID < e2.ID
}

// PPOSC is the preserved program order under the sc analysis mode: every
// same-thread pair is preserved, matching full per-thread order.
func PPOSC(e1, e2 Event) bool {
	return PO(e1, e2)
}

// PPORelaxed is the preserved program order under the relaxed analysis
// mode: a same-thread pair is only preserved when at least one endpoint is
// tagged sc. Non-SC same-thread pairs are left free for the solver to
// reorder, constrained only by whatever rf/co/fr dependencies apply to
// them independently.
func PPORelaxed(e1, e2 Event) bool {
	return PO(e1, e2) && (e1.Mode == SC || e2.Mode == SC)
}

// RfEdge is a concrete reads-from edge, as read back out of a satisfying
// model by internal/verify and internal/render.
type RfEdge struct {
	W, R Event
}

// CoEdge is a concrete coherence edge.
type CoEdge struct {
	W1, W2 Event
}

// WellFormedRf reports whether rf assigns every read in t exactly one
// same-address, same-value source write. It is used to validate a
// concrete model pulled out of the solver, not to emit constraints —
// the symbolic version of this relation lives in internal/encode.
func WellFormedRf(t *Trace, rf []RfEdge) bool {
	bySrc := make(map[int]int) // read id -> count of rf sources
	for _, e := range rf {
		if e.W.Addr != e.R.Addr || e.W.Val != e.R.Val {
			return false
		}
		bySrc[e.R.ID]++
	}
	for _, r := range t.Reads() {
		if bySrc[r.ID] != 1 {
			return false
		}
	}
	return true
}

// WellFormedCo reports whether co is a same-address relation with every
// initial write ordered before every non-initial write on that address.
func WellFormedCo(t *Trace, co []CoEdge) bool {
	for _, e := range co {
		if e.W1.Addr != e.W2.Addr {
			return false
		}
		if e.W2.IsInitial() {
			return false
		}
	}
	for _, w := range t.Writes() {
		if w.IsInitial() {
			continue
		}
		w0, _ := t.Init(w.Addr)
		ordered := false
		for _, e := range co {
			ordered = ordered || (e.W1.ID == w0.ID && e.W2.ID == w.ID)
		}
		if !ordered {
			return false
		}
	}
	return true
}

// FrEdge is a concrete from-read edge: R reads before W' in coherence
// order, i.e. fr(R, W').
type FrEdge struct {
	R  Event
	W2 Event
}

// Fr derives the from-read relation: fr(r, w') holds iff r reads from some
// w with co(w, w').
func Fr(rf []RfEdge, co []CoEdge) []FrEdge {
	coBySrc := make(map[int][]Event)
	for _, c := range co {
		coBySrc[c.W1.ID] = append(coBySrc[c.W1.ID], c.W2)
	}

	res := make([]FrEdge, 0)
	for _, e := range rf {
		for _, w2 := range coBySrc[e.W.ID] {
			res = append(res, FrEdge{R: e.R, W2: w2})
		}
	}
	return res
}
