package smt

const (
	RESULT_ERROR   = 0
	RESULT_SAT     = 1
	RESULT_UNSAT   = 2
	RESULT_UNKNOWN = 3
)

type solverBackend interface {
	check(query *BoolExprPtr) int
	model() map[string]*BVConst
}

// Solver accumulates boolean constraints and asks the backend whether their
// conjunction, plus an optional extra query, is satisfiable.
type Solver struct {
	eb              *ExprBuilder
	backend         solverBackend
	constraints     map[uintptr]*BoolExprPtr
	symToContraints map[uintptr]map[uintptr]*BoolExprPtr
	symDependencies map[uintptr]map[uintptr]*BVExprPtr
}

func NewZ3Solver(eb *ExprBuilder) *Solver {
	return &Solver{
		eb:              eb,
		backend:         newZ3Backend(),
		constraints:     make(map[uintptr]*BoolExprPtr),
		symToContraints: make(map[uintptr]map[uintptr]*BoolExprPtr),
		symDependencies: make(map[uintptr]map[uintptr]*BVExprPtr),
	}
}

func (s *Solver) registerConstraintForSym(sym *BVExprPtr, constraint *BoolExprPtr) {
	if _, ok := s.symToContraints[sym.Id()]; !ok {
		s.symToContraints[sym.Id()] = make(map[uintptr]*BoolExprPtr)
	}
	s.symToContraints[sym.Id()][constraint.Id()] = constraint
}

func (s *Solver) registerSymDepencency(sym1 *BVExprPtr, sym2 *BVExprPtr) {
	if _, ok := s.symDependencies[sym1.Id()]; !ok {
		s.symDependencies[sym1.Id()] = make(map[uintptr]*BVExprPtr)
	}
	if _, ok := s.symDependencies[sym2.Id()]; !ok {
		s.symDependencies[sym2.Id()] = make(map[uintptr]*BVExprPtr)
	}
	s.symDependencies[sym1.Id()][sym2.Id()] = sym2
	s.symDependencies[sym2.Id()][sym1.Id()] = sym1
}

func (s *Solver) getDependentConstraints(constraint ExprPtr) []*BoolExprPtr {
	// return the constraints over the input's symbols and over every symbol
	// that shares a constraint with one of them; dependencies further
	// removed than that are not followed
	syms := s.eb.InvolvedInputs(constraint)
	symsMap := make(map[uintptr]*BVExprPtr)
	for i := 0; i < len(syms); i++ {
		symsMap[syms[i].Id()] = syms[i]
		for _, osym := range s.symDependencies[syms[i].Id()] {
			symsMap[osym.Id()] = osym
		}
	}

	constraints := make(map[uintptr]*BoolExprPtr)
	for _, sym := range symsMap {
		for _, v := range s.symToContraints[sym.Id()] {
			constraints[v.Id()] = v
		}
	}

	res := make([]*BoolExprPtr, 0, len(constraints))
	for _, c := range constraints {
		res = append(res, c)
	}
	return res
}

// Add registers a constraint that must hold in every subsequent check.
func (s *Solver) Add(constraint *BoolExprPtr) {
	if _, ok := s.constraints[constraint.Id()]; ok {
		return
	}
	if constraint.IsConst() {
		c, _ := constraint.GetConst()
		if c {
			return
		}
	}
	s.constraints[constraint.Id()] = constraint

	syms := s.eb.InvolvedInputs(constraint)
	for i := 0; i < len(syms); i++ {
		sym := syms[i]
		s.registerConstraintForSym(sym, constraint)
		for j := i + 1; j < len(syms); j++ {
			s.registerSymDepencency(sym, syms[j])
		}
	}
}

// Pi is the conjunction of every constraint added so far.
func (s *Solver) Pi() *BoolExprPtr {
	res := s.eb.BoolVal(true)
	for _, val := range s.constraints {
		var err error
		res, err = s.eb.BoolAnd(res, val)
		if err != nil {
			// a malformed path constraint is a programmer error, not
			// a runtime condition the caller can recover from
			panic(err)
		}
	}
	return res
}

func (s *Solver) pi(e ExprPtr) *BoolExprPtr {
	res := s.eb.BoolVal(true)
	for _, v := range s.getDependentConstraints(e) {
		var err error
		res, err = s.eb.BoolAnd(res, v)
		if err != nil {
			panic(err)
		}
	}
	return res
}

// Satisfiable checks Pi() alone, with no extra query.
func (s *Solver) Satisfiable() int {
	return s.backend.check(s.Pi())
}

// CheckSat checks Pi() ∧ query.
func (s *Solver) CheckSat(query *BoolExprPtr) int {
	pi, err := s.eb.BoolAnd(s.Pi(), query)
	if err != nil {
		panic(err)
	}
	return s.backend.check(pi)
}

// Model returns the last satisfying assignment, keyed by symbol name.
func (s *Solver) Model() map[string]*BVConst {
	return s.backend.model()
}

// Eval resolves bv under the last satisfying assignment. Bare constants
// and symbols are resolved by direct lookup; anything compound (an ITE
// chain over a one-hot rf row, say) is resolved by substituting the
// model into it and folding, via EvalBV.
func (s *Solver) Eval(bv *BVExprPtr) *BVConst {
	m := s.Model()
	if m == nil {
		return nil
	}
	if bv.IsConst() {
		c, _ := bv.GetConst()
		return c
	}
	if bv.Kind() == TY_SYM {
		if c, ok := m[bv.String()]; ok {
			return c
		}
		return nil
	}

	resolved, err := s.eb.EvalBV(bv, m)
	if err != nil {
		panic(err)
	}
	if !resolved.IsConst() {
		return nil
	}
	c, _ := resolved.GetConst()
	return c
}
