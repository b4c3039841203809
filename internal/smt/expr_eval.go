package smt

import "fmt"

// EvalBV substitutes every symbol found in interp into e and folds the
// result down to a constant where possible. It is how a solver's model —
// a flat map from symbol name to value — gets pushed through a compound
// expression like an ITE chain that the model itself knows nothing about.
func (eb *ExprBuilder) EvalBV(e *BVExprPtr, interp map[string]*BVConst) (*BVExprPtr, error) {
	cache := make(map[uintptr]*BVExprPtr)
	boolCache := make(map[uintptr]*BoolExprPtr)
	return eb.evalBV(e, interp, cache, boolCache)
}

func (eb *ExprBuilder) evalBV(e *BVExprPtr, interp map[string]*BVConst,
	cache map[uintptr]*BVExprPtr, boolCache map[uintptr]*BoolExprPtr) (*BVExprPtr, error) {
	if r, ok := cache[e.Id()]; ok {
		return r, nil
	}

	var result *BVExprPtr
	var err error
	switch e.Kind() {
	case TY_SYM:
		bvs := e.e.(*internalBVS)
		if c, ok := interp[bvs.name]; ok {
			result = eb.getOrCreateBV(mkinternalBVVFromConst(*c))
		} else {
			result = e
		}
	case TY_CONST:
		result = e
	case TY_ITE:
		ite := e.e.(*internalBVExprITE)
		guard, gerr := eb.evalBool(ite.cond, interp, cache, boolCache)
		if gerr != nil {
			return nil, gerr
		}
		iftrue, terr := eb.evalBV(ite.iftrue, interp, cache, boolCache)
		if terr != nil {
			return nil, terr
		}
		iffalse, ferr := eb.evalBV(ite.iffalse, interp, cache, boolCache)
		if ferr != nil {
			return nil, ferr
		}
		result, err = eb.ITE(guard, iftrue, iffalse)
	default:
		return nil, fmt.Errorf("EvalBV: unsupported kind %d", e.Kind())
	}
	if err != nil {
		return nil, err
	}

	cache[e.Id()] = result
	return result, nil
}

func (eb *ExprBuilder) evalBool(e *BoolExprPtr, interp map[string]*BVConst,
	cache map[uintptr]*BVExprPtr, boolCache map[uintptr]*BoolExprPtr) (*BoolExprPtr, error) {
	if r, ok := boolCache[e.Id()]; ok {
		return r, nil
	}

	var result *BoolExprPtr
	var err error
	switch e.Kind() {
	case TY_BOOL_CONST:
		result = e
	case TY_BOOL_NOT:
		un := e.e.(*internalBoolUnArithmetic)
		child, cerr := eb.evalBool(un.child, interp, cache, boolCache)
		if cerr != nil {
			return nil, cerr
		}
		result, err = eb.BoolNot(child)
	case TY_BOOL_AND, TY_BOOL_OR:
		nary := e.e.(*internalBoolExprNaryOp)
		children := make([]*BoolExprPtr, len(nary.children))
		for i, c := range nary.children {
			children[i], err = eb.evalBool(c, interp, cache, boolCache)
			if err != nil {
				return nil, err
			}
		}
		combine := eb.BoolAnd
		if e.Kind() == TY_BOOL_OR {
			combine = eb.BoolOr
		}
		res := children[0]
		for i := 1; i < len(children); i++ {
			res, err = combine(res, children[i])
			if err != nil {
				return nil, err
			}
		}
		result = res
	case TY_SLT, TY_SLE, TY_SGT, TY_SGE, TY_EQ:
		cmp := e.e.(*internalBoolExprCmp)
		lhs, lerr := eb.evalBV(cmp.lhs, interp, cache, boolCache)
		if lerr != nil {
			return nil, lerr
		}
		rhs, rerr := eb.evalBV(cmp.rhs, interp, cache, boolCache)
		if rerr != nil {
			return nil, rerr
		}
		switch e.Kind() {
		case TY_SLT:
			result, err = eb.SLt(lhs, rhs)
		case TY_SLE:
			result, err = eb.SLe(lhs, rhs)
		case TY_SGT:
			result, err = eb.SGt(lhs, rhs)
		case TY_SGE:
			result, err = eb.SGe(lhs, rhs)
		case TY_EQ:
			result, err = eb.Eq(lhs, rhs)
		}
	default:
		return nil, fmt.Errorf("evalBool: unsupported kind %d", e.Kind())
	}
	if err != nil {
		return nil, err
	}

	boolCache[e.Id()] = result
	return result, nil
}
