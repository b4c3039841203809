package smt

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
)

type bvexpr struct {
	exp     internalBVExpr
	counter int
}

type boolexpr struct {
	exp     internalBoolExpr
	counter int
}

type ExprBuilderStats struct {
	CacheHits    uint
	CacheLookups uint
	CachedBVs    uint
	CachedBools  uint
}

// ExprBuilder hash-conses every expression it builds, so structurally equal
// subterms (the same rank comparison emitted twice, say) share one node.
type ExprBuilder struct {
	lock      sync.RWMutex
	bvcache   map[uint64][]bvexpr
	boolcache map[uint64][]boolexpr

	Stats ExprBuilderStats
}

func NewExprBuilder() *ExprBuilder {
	return &ExprBuilder{
		lock:      sync.RWMutex{},
		bvcache:   map[uint64][]bvexpr{},
		boolcache: map[uint64][]boolexpr{},
		Stats:     ExprBuilderStats{},
	}
}

func (eb *ExprBuilder) bvFinalizer(e *BVExprPtr) {
	eb.lock.Lock()
	defer eb.lock.Unlock()

	h := e.e.hash()
	if _, ok := eb.bvcache[h]; !ok {
		return
	}
	buck := eb.bvcache[h]
	newBuck := make([]bvexpr, 0)
	for i := 0; i < len(buck); i++ {
		if buck[i].exp.rawPtr() == e.e.rawPtr() {
			buck[i].counter -= 1
			if buck[i].counter <= 0 {
				eb.Stats.CachedBVs -= 1
				continue
			}
		}
		newBuck = append(newBuck, buck[i])
	}
	eb.bvcache[h] = newBuck
}

func (eb *ExprBuilder) boolFinalizer(e *BoolExprPtr) {
	eb.lock.Lock()
	defer eb.lock.Unlock()

	h := e.e.hash()
	if _, ok := eb.boolcache[h]; !ok {
		return
	}
	buck := eb.boolcache[h]
	newBuck := make([]boolexpr, 0)
	for i := 0; i < len(buck); i++ {
		if buck[i].exp.rawPtr() == e.e.rawPtr() {
			buck[i].counter -= 1
			if buck[i].counter <= 0 {
				eb.Stats.CachedBools -= 1
				continue
			}
		}
		newBuck = append(newBuck, buck[i])
	}
	eb.boolcache[h] = newBuck
}

func (eb *ExprBuilder) getOrCreateBV(e internalBVExpr) *BVExprPtr {
	eb.lock.Lock()
	defer eb.lock.Unlock()
	eb.Stats.CacheLookups += 1

	h := e.hash()
	bucket := eb.bvcache[h]
	for i := 0; i < len(bucket); i++ {
		if bucket[i].exp.shallowEq(e) {
			eb.Stats.CacheHits += 1
			bucket[i].counter += 1
			r := &BVExprPtr{bucket[i].exp}
			runtime.SetFinalizer(r, eb.bvFinalizer)
			return r
		}
	}
	eb.Stats.CachedBVs += 1

	bucket = append(bucket, bvexpr{e, 1})
	eb.bvcache[h] = bucket
	r := &BVExprPtr{e}
	runtime.SetFinalizer(r, eb.bvFinalizer)
	return r
}

func (eb *ExprBuilder) getOrCreateBool(e internalBoolExpr) *BoolExprPtr {
	eb.lock.Lock()
	defer eb.lock.Unlock()
	eb.Stats.CacheLookups += 1

	h := e.hash()
	bucket := eb.boolcache[h]
	for i := 0; i < len(bucket); i++ {
		if bucket[i].exp.shallowEq(e) {
			eb.Stats.CacheHits += 1
			bucket[i].counter += 1
			r := &BoolExprPtr{bucket[i].exp}
			runtime.SetFinalizer(r, eb.boolFinalizer)
			return r
		}
	}
	eb.Stats.CachedBools += 1

	bucket = append(bucket, boolexpr{e, 1})
	eb.boolcache[h] = bucket
	r := &BoolExprPtr{e}
	runtime.SetFinalizer(r, eb.boolFinalizer)
	return r
}

// ExprPtr is the common handle shared by BVExprPtr and BoolExprPtr, used
// wherever a constraint needs to walk either kind of tree generically.
type ExprPtr interface {
	getInternal() internalExpr
}

func (bv *BVExprPtr) getInternal() internalExpr {
	return bv.e
}

func (e *BoolExprPtr) getInternal() internalExpr {
	return e.e
}

// InvolvedInputs returns the distinct symbols reachable from e. The solver
// uses this to index which constraints a given symbol participates in.
func (eb *ExprBuilder) InvolvedInputs(e ExprPtr) []*BVExprPtr {
	queue := make([]internalExpr, 0)
	visited := make(map[uintptr]bool)
	symbols := make([]*BVExprPtr, 0)

	queue = append(queue, e.getInternal())
	for len(queue) > 0 {
		el := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if _, ok := visited[el.rawPtr()]; ok {
			continue
		}
		visited[el.rawPtr()] = true

		if el.kind() == TY_SYM {
			symel := el.(internalBVExpr)
			symbols = append(symbols, eb.getOrCreateBV(symel))
			continue
		}

		queue = append(queue, el.subexprs()...)
	}
	return symbols
}

// *** Constructors ***

func (eb *ExprBuilder) BVV(val int64, size uint) *BVExprPtr {
	return eb.getOrCreateBV(mkinternalBVV(val, size))
}

func (eb *ExprBuilder) BVS(name string, size uint) *BVExprPtr {
	return eb.getOrCreateBV(mkinternalBVS(name, size))
}

func (eb *ExprBuilder) ITE(guard *BoolExprPtr, iftrue *BVExprPtr, iffalse *BVExprPtr) (*BVExprPtr, error) {
	if iftrue.Size() != iffalse.Size() {
		return nil, fmt.Errorf("invalid sizes in ITE")
	}

	// Constant propagation
	if guard.IsConst() {
		g, _ := guard.GetConst()
		if g {
			return iftrue, nil
		}
		return iffalse, nil
	}
	if iftrue.Id() == iffalse.Id() {
		return iftrue, nil
	}

	ex, err := mkinternalBVExprITE(guard, iftrue, iffalse)
	if err != nil {
		return nil, err
	}
	return eb.getOrCreateBV(ex), nil
}

func (eb *ExprBuilder) cmp(lhs, rhs *BVExprPtr, kind int,
	mk func(*BVExprPtr, *BVExprPtr) (*internalBoolExprCmp, error),
	fold func(*BVConst, *BVConst) (BoolConst, error)) (*BoolExprPtr, error) {
	if lhs.Size() != rhs.Size() {
		return nil, fmt.Errorf("different sizes")
	}

	if lhs.IsConst() && rhs.IsConst() {
		c1, _ := lhs.GetConst()
		c2, _ := rhs.GetConst()
		r, err := fold(c1, c2)
		if err != nil {
			return nil, err
		}
		return eb.getOrCreateBool(mkinternalBoolConst(r.Value)), nil
	}

	ex, err := mk(lhs, rhs)
	if err != nil {
		return nil, err
	}
	return eb.getOrCreateBool(ex), nil
}

func (eb *ExprBuilder) SLt(lhs, rhs *BVExprPtr) (*BoolExprPtr, error) {
	return eb.cmp(lhs, rhs, TY_SLT, mkinternalBoolExprSlt, (*BVConst).SLt)
}

func (eb *ExprBuilder) SLe(lhs, rhs *BVExprPtr) (*BoolExprPtr, error) {
	return eb.cmp(lhs, rhs, TY_SLE, mkinternalBoolExprSle, (*BVConst).SLe)
}

func (eb *ExprBuilder) SGt(lhs, rhs *BVExprPtr) (*BoolExprPtr, error) {
	return eb.cmp(lhs, rhs, TY_SGT, mkinternalBoolExprSgt, (*BVConst).SGt)
}

func (eb *ExprBuilder) SGe(lhs, rhs *BVExprPtr) (*BoolExprPtr, error) {
	return eb.cmp(lhs, rhs, TY_SGE, mkinternalBoolExprSge, (*BVConst).SGe)
}

func (eb *ExprBuilder) Eq(lhs, rhs *BVExprPtr) (*BoolExprPtr, error) {
	return eb.cmp(lhs, rhs, TY_EQ, mkinternalBoolExprEq, (*BVConst).Eq)
}

func (eb *ExprBuilder) BoolVal(v bool) *BoolExprPtr {
	return eb.getOrCreateBool(mkinternalBoolConst(v))
}

func (eb *ExprBuilder) BoolNot(e *BoolExprPtr) (*BoolExprPtr, error) {
	// Constant propagation
	if e.IsConst() {
		v, _ := e.GetConst()
		return eb.getOrCreateBool(mkinternalBoolConst(!v)), nil
	}

	// Not of Not
	if e.Kind() == TY_BOOL_NOT {
		eBoolNot := e.e.(*internalBoolUnArithmetic)
		return eBoolNot.child, nil
	}

	// Distribute Not over And/Or (De Morgan)
	if e.Kind() == TY_BOOL_AND || e.Kind() == TY_BOOL_OR {
		eInt := e.e.(*internalBoolExprNaryOp)
		children := make([]*BoolExprPtr, 0, len(eInt.children))
		for i := 0; i < len(eInt.children); i++ {
			child, err := eb.BoolNot(eInt.children[i])
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		combine := eb.BoolOr
		if e.Kind() == TY_BOOL_OR {
			combine = eb.BoolAnd
		}
		r, err := combine(children[0], children[1])
		if err != nil {
			return nil, err
		}
		for i := 2; i < len(children); i++ {
			r, err = combine(r, children[i])
			if err != nil {
				return nil, err
			}
		}
		return r, nil
	}

	// Not of { Sle, Slt, Sge, Sgt, Eq } has a direct dual, except Eq which
	// has no single comparison dual and falls through to a plain negation.
	if eInt, ok := e.e.(*internalBoolExprCmp); ok {
		var ex *internalBoolExprCmp
		var err error
		switch eInt.kind() {
		case TY_SLE:
			ex, err = mkinternalBoolExprSgt(eInt.lhs, eInt.rhs)
		case TY_SLT:
			ex, err = mkinternalBoolExprSge(eInt.lhs, eInt.rhs)
		case TY_SGT:
			ex, err = mkinternalBoolExprSle(eInt.lhs, eInt.rhs)
		case TY_SGE:
			ex, err = mkinternalBoolExprSlt(eInt.lhs, eInt.rhs)
		}
		if ex != nil {
			if err != nil {
				return nil, err
			}
			return eb.getOrCreateBool(ex), nil
		}
	}

	ex, err := mkinternalBoolNot(e)
	if err != nil {
		return nil, err
	}
	return eb.getOrCreateBool(ex), nil
}

func (eb *ExprBuilder) naryBool(lhs, rhs *BoolExprPtr, ty int,
	mk func([]*BoolExprPtr) (*internalBoolExprNaryOp, error),
	absorbing bool) (*BoolExprPtr, error) {
	if lhs.IsConst() {
		lhsV, _ := lhs.GetConst()
		if lhsV == !absorbing {
			return rhs, nil
		}
		return eb.getOrCreateBool(mkinternalBoolConst(absorbing)), nil
	}
	if rhs.IsConst() {
		rhsV, _ := rhs.GetConst()
		if rhsV == !absorbing {
			return lhs, nil
		}
		return eb.getOrCreateBool(mkinternalBoolConst(absorbing)), nil
	}

	children := make([]*BoolExprPtr, 0, 2)
	if lhs.Kind() == ty {
		lhsInner := lhs.e.(*internalBoolExprNaryOp)
		children = append(children, lhsInner.children...)
	} else {
		children = append(children, lhs)
	}
	if rhs.Kind() == ty {
		rhsInner := rhs.e.(*internalBoolExprNaryOp)
		children = append(children, rhsInner.children...)
	} else {
		children = append(children, rhs)
	}

	sort.Slice(children, func(i, j int) bool { return children[i].Id() < children[j].Id() })
	ex, err := mk(children)
	if err != nil {
		return nil, err
	}
	return eb.getOrCreateBool(ex), nil
}

func (eb *ExprBuilder) BoolAnd(lhs, rhs *BoolExprPtr) (*BoolExprPtr, error) {
	return eb.naryBool(lhs, rhs, TY_BOOL_AND, mkinternalBoolExprAnd, false)
}

func (eb *ExprBuilder) BoolOr(lhs, rhs *BoolExprPtr) (*BoolExprPtr, error) {
	return eb.naryBool(lhs, rhs, TY_BOOL_OR, mkinternalBoolExprOr, true)
}
