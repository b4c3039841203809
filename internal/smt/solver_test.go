package smt

import "testing"

func TestSolverSat1(t *testing.T) {
	eb := NewExprBuilder()
	s := NewZ3Solver(eb)

	a := eb.BVS("a", 32)
	e, _ := eb.SLe(a, eb.BVV(42, 32))
	s.Add(e)

	e, _ = eb.SGe(a, eb.BVV(21, 32))
	sat := s.CheckSat(e)
	if sat != RESULT_SAT {
		t.Error("should be sat")
		return
	}

	m := s.Model()
	if _, ok := m["a"]; !ok {
		t.Error("unable to find the assignment")
		return
	}
}

func TestSolverUnsat1(t *testing.T) {
	eb := NewExprBuilder()
	s := NewZ3Solver(eb)

	a := eb.BVS("a", 32)
	e, _ := eb.SLt(a, eb.BVV(0, 32))
	s.Add(e)

	e, _ = eb.SGt(a, eb.BVV(0, 32))
	sat := s.CheckSat(e)
	if sat != RESULT_UNSAT {
		t.Error("should be unsat: a cannot be both negative and positive")
		return
	}
}

func TestSolverEval1(t *testing.T) {
	eb := NewExprBuilder()
	s := NewZ3Solver(eb)

	a := eb.BVS("a", 32)
	e, _ := eb.SLe(a, eb.BVV(42, 32))
	s.Add(e)

	e, _ = eb.SGe(a, eb.BVV(21, 32))
	s.Add(e)

	if s.Satisfiable() != RESULT_SAT {
		t.Error("should be sat")
		return
	}

	aVal := s.Eval(a).AsLong()
	if aVal > 42 || aVal < 21 {
		t.Error("invalid eval value")
		return
	}
}

func TestSolverEvalResolvesCompoundITEChain(t *testing.T) {
	eb := NewExprBuilder()
	s := NewZ3Solver(eb)

	sel := eb.BVS("sel", 1)
	selIsOne, _ := eb.Eq(sel, eb.BVV(1, 1))
	ite, _ := eb.ITE(selIsOne, eb.BVV(7, 32), eb.BVV(9, 32))

	eqSel, _ := eb.Eq(sel, eb.BVV(1, 1))
	s.Add(eqSel)

	if s.Satisfiable() != RESULT_SAT {
		t.Error("should be sat")
		return
	}

	v := s.Eval(ite)
	if v == nil {
		t.Error("eval of compound ITE expression should not be nil")
		return
	}
	if v.AsLong() != 7 {
		t.Errorf("expected 7, got %d", v.AsLong())
	}
}

func TestSolverIndependentConstraints(t *testing.T) {
	eb := NewExprBuilder()
	s := NewZ3Solver(eb)

	a := eb.BVS("a", 32)
	b := eb.BVS("b", 32)

	eqA, _ := eb.Eq(a, eb.BVV(1, 32))
	s.Add(eqA)
	eqB, _ := eb.Eq(b, eb.BVV(2, 32))
	s.Add(eqB)

	// CheckSat(query involving only a) should not be affected by b's
	// constraint, but must still hold it when computing the model.
	query, _ := eb.Eq(a, eb.BVV(1, 32))
	if s.CheckSat(query) != RESULT_SAT {
		t.Error("should be sat")
		return
	}
}
