package smt

import (
	"fmt"

	"github.com/aclements/go-z3/z3"
)

// z3backend drives a single Z3 context/solver pair. Queries are converted
// expression-by-expression, with a per-check cache so shared subterms (the
// hash-consed ones) are translated to Z3 only once.
type z3backend struct {
	ctx    *z3.Context
	cfg    *z3.Config
	solver *z3.Solver

	lastSymbols map[uintptr]z3.BV
}

func newZ3Backend() *z3backend {
	cfg := z3.NewContextConfig()
	ctx := z3.NewContext(cfg)
	return &z3backend{
		ctx:    ctx,
		cfg:    cfg,
		solver: z3.NewSolver(ctx),
	}
}

func (s *z3backend) assertQuery(query *BoolExprPtr, cache map[uintptr]z3.Value) {
	if query.Kind() == TY_BOOL_AND {
		andQuery := query.e.(*internalBoolExprNaryOp)
		for i := 0; i < len(andQuery.children); i++ {
			z3query := s.convert(andQuery.children[i].e, cache, s.lastSymbols)
			s.solver.Assert(z3query.(z3.Bool))
		}
		return
	}
	z3query := s.convert(query.e, cache, s.lastSymbols)
	s.solver.Assert(z3query.(z3.Bool))
}

func (s *z3backend) check(query *BoolExprPtr) int {
	s.solver.Reset()
	s.lastSymbols = make(map[uintptr]z3.BV)

	cache := make(map[uintptr]z3.Value)
	s.assertQuery(query, cache)

	r, err := s.solver.Check()
	if err != nil {
		return RESULT_UNKNOWN
	}
	if r {
		return RESULT_SAT
	}
	return RESULT_UNSAT
}

func convertZ3Const(c z3.BV) (*BVConst, error) {
	v := MakeBVConstFromString(c.String()[2:], 16, uint(c.Sort().BVSize()))
	if v == nil {
		return nil, fmt.Errorf("not a constant")
	}
	return v, nil
}

func (s *z3backend) model() map[string]*BVConst {
	m := s.solver.Model()
	if m == nil {
		return nil
	}

	res := make(map[string]*BVConst)
	for _, sym := range s.lastSymbols {
		v := m.Eval(sym, false).(z3.BV)
		c, err := convertZ3Const(v)
		if err != nil {
			panic("unable to create constant")
		}
		res[sym.String()] = c
	}
	return res
}

// convert lowers one node of the (trimmed) expression IR to a Z3 value. The
// memory-order encoder never needs extraction, concatenation, or the
// arithmetic/bitwise operators a general bitvector front-end would, so the
// switch only covers the symbol/const/ITE/signed-comparison/propositional
// kinds the rest of the package can produce.
func (s *z3backend) convert(e internalExpr, cache map[uintptr]z3.Value, symbols map[uintptr]z3.BV) z3.Value {
	if v, ok := cache[e.rawPtr()]; ok {
		return v
	}

	var result z3.Value
	switch e.kind() {
	case TY_SYM:
		bv := e.(*internalBVS)
		result = s.ctx.BVConst(bv.name, int(bv.size()))
		symbols[bv.rawPtr()] = result.(z3.BV)
	case TY_CONST:
		bv := e.(*internalBVV)
		result = s.ctx.FromBigInt(bv.Value.value, s.ctx.BVSort(int(bv.size())))
	case TY_ITE:
		e := e.(*internalBVExprITE)
		guard := s.convert(e.cond.e, cache, symbols).(z3.Bool)
		iftrue := s.convert(e.iftrue.e, cache, symbols).(z3.BV)
		iffalse := s.convert(e.iffalse.e, cache, symbols).(z3.BV)
		result = guard.IfThenElse(iftrue, iffalse)
	case TY_SLT:
		e := e.(*internalBoolExprCmp)
		lhs := s.convert(e.lhs.e, cache, symbols).(z3.BV)
		rhs := s.convert(e.rhs.e, cache, symbols).(z3.BV)
		result = lhs.SLT(rhs)
	case TY_SLE:
		e := e.(*internalBoolExprCmp)
		lhs := s.convert(e.lhs.e, cache, symbols).(z3.BV)
		rhs := s.convert(e.rhs.e, cache, symbols).(z3.BV)
		result = lhs.SLE(rhs)
	case TY_SGT:
		e := e.(*internalBoolExprCmp)
		lhs := s.convert(e.lhs.e, cache, symbols).(z3.BV)
		rhs := s.convert(e.rhs.e, cache, symbols).(z3.BV)
		result = lhs.SGT(rhs)
	case TY_SGE:
		e := e.(*internalBoolExprCmp)
		lhs := s.convert(e.lhs.e, cache, symbols).(z3.BV)
		rhs := s.convert(e.rhs.e, cache, symbols).(z3.BV)
		result = lhs.SGE(rhs)
	case TY_EQ:
		e := e.(*internalBoolExprCmp)
		lhs := s.convert(e.lhs.e, cache, symbols).(z3.BV)
		rhs := s.convert(e.rhs.e, cache, symbols).(z3.BV)
		result = lhs.Eq(rhs)
	case TY_BOOL_CONST:
		e := e.(*internalBoolVal)
		result = s.ctx.FromBool(e.Value.Value)
	case TY_BOOL_NOT:
		e := e.(*internalBoolUnArithmetic)
		child := s.convert(e.child.e, cache, symbols).(z3.Bool)
		return child.Not()
	case TY_BOOL_AND:
		e := e.(*internalBoolExprNaryOp)
		res := s.convert(e.children[0].e, cache, symbols).(z3.Bool)
		for i := 1; i < len(e.children); i++ {
			child := s.convert(e.children[i].e, cache, symbols).(z3.Bool)
			res = res.And(child)
		}
		result = res
	case TY_BOOL_OR:
		e := e.(*internalBoolExprNaryOp)
		res := s.convert(e.children[0].e, cache, symbols).(z3.Bool)
		for i := 1; i < len(e.children); i++ {
			child := s.convert(e.children[i].e, cache, symbols).(z3.Bool)
			res = res.Or(child)
		}
		result = res
	default:
		panic("invalid expression type")
	}

	cache[e.rawPtr()] = result
	return result
}
