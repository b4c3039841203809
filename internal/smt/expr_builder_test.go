package smt

import (
	"runtime"
	"testing"
)

func TestCache1(t *testing.T) {
	eb := NewExprBuilder()

	var oldid uintptr
	{
		s1 := eb.BVS("s1", 32)
		s2 := eb.BVS("s2", 32)
		e, err := eb.Eq(s1, s2)
		if err != nil {
			t.Error(err)
			return
		}

		ss1 := eb.BVS("s1", 32)
		if s1.Id() != ss1.Id() {
			t.Error("should be the same object")
			return
		}
		ee, _ := eb.Eq(ss1, s2)
		if e.Id() != ee.Id() {
			t.Error("should be the same object")
			return
		}
		oldid = s1.Id()
	}

	runtime.GC()

	for i := 0; i < 32; i++ {
		// create noise...
		eb.BVV(int64(i), 32)
	}

	runtime.GC()

	s1 := eb.BVS("s1", 32)
	if s1.Id() == oldid {
		t.Error("should not be the same object")
		return
	}
}

func TestCache2(t *testing.T) {
	eb := NewExprBuilder()

	s1 := eb.BVS("s1", 32)
	var oldid uintptr
	{
		s2 := eb.BVS("s2", 32)
		e, err := eb.Eq(s1, s2)
		if err != nil {
			t.Error(err)
			return
		}

		ss1 := eb.BVS("s1", 32)
		if s1.Id() != ss1.Id() {
			t.Error("should be the same object")
			return
		}
		ee, _ := eb.Eq(ss1, s2)
		if e.Id() != ee.Id() {
			t.Error("should be the same object")
			return
		}

		oldid = s2.Id()
	}

	runtime.GC()

	for i := 0; i < 32; i++ {
		eb.BVV(int64(i), 32)
	}

	runtime.GC()

	s1_cpy := eb.BVS("s1", 32)
	if s1.Id() != s1_cpy.Id() {
		t.Error("should be the same object")
		return
	}
	s2_cpy := eb.BVS("s2", 32)
	if oldid == s2_cpy.Id() {
		t.Error("should not be the same object")
		return
	}
}

func TestITEConstantFold(t *testing.T) {
	eb := NewExprBuilder()

	a := eb.BVV(1, 32)
	b := eb.BVV(2, 32)
	e, err := eb.ITE(eb.BoolVal(true), a, b)
	if err != nil {
		t.Error(err)
		return
	}
	if e.Id() != a.Id() {
		t.Error("should fold to the true branch")
		return
	}
}

func TestITESameBranch(t *testing.T) {
	eb := NewExprBuilder()

	sym := eb.BVS("x", 32)
	cond, _ := eb.SLt(eb.BVS("y", 32), eb.BVV(0, 32))
	e, err := eb.ITE(cond, sym, sym)
	if err != nil {
		t.Error(err)
		return
	}
	if e.Id() != sym.Id() {
		t.Error("ITE with identical branches should collapse")
		return
	}
}

func TestBoolDoubleNegation(t *testing.T) {
	eb := NewExprBuilder()

	a, _ := eb.Eq(eb.BVS("a", 1), eb.BVV(1, 1))
	nn, err := eb.BoolNot(a)
	if err != nil {
		t.Error(err)
		return
	}
	n2, err := eb.BoolNot(nn)
	if err != nil {
		t.Error(err)
		return
	}
	if n2.Id() != a.Id() {
		t.Error("!!a should simplify back to a")
		return
	}
}

func TestBoolDeMorgan(t *testing.T) {
	eb := NewExprBuilder()

	a, _ := eb.Eq(eb.BVS("a", 1), eb.BVV(1, 1))
	b, _ := eb.Eq(eb.BVS("b", 1), eb.BVV(1, 1))

	and, err := eb.BoolAnd(a, b)
	if err != nil {
		t.Error(err)
		return
	}
	notAnd, err := eb.BoolNot(and)
	if err != nil {
		t.Error(err)
		return
	}

	notA, _ := eb.BoolNot(a)
	notB, _ := eb.BoolNot(b)
	orNots, err := eb.BoolOr(notA, notB)
	if err != nil {
		t.Error(err)
		return
	}

	if notAnd.Id() != orNots.Id() {
		t.Error("De Morgan rewrite should hash-cons to the same node")
		return
	}
}

func TestComparisonDual(t *testing.T) {
	eb := NewExprBuilder()

	x := eb.BVS("x", 32)
	y := eb.BVS("y", 32)

	sle, _ := eb.SLe(x, y)
	notSle, err := eb.BoolNot(sle)
	if err != nil {
		t.Error(err)
		return
	}
	sgt, _ := eb.SGt(x, y)
	if notSle.Id() != sgt.Id() {
		t.Error("!(x <= y) should rewrite to x > y")
		return
	}
}

func TestNaryFlattening(t *testing.T) {
	eb := NewExprBuilder()

	a, _ := eb.Eq(eb.BVS("a", 1), eb.BVV(1, 1))
	b, _ := eb.Eq(eb.BVS("b", 1), eb.BVV(1, 1))
	c, _ := eb.Eq(eb.BVS("c", 1), eb.BVV(1, 1))

	ab, err := eb.BoolAnd(a, b)
	if err != nil {
		t.Error(err)
		return
	}
	abc, err := eb.BoolAnd(ab, c)
	if err != nil {
		t.Error(err)
		return
	}

	bc, _ := eb.BoolAnd(b, c)
	abc2, err := eb.BoolAnd(a, bc)
	if err != nil {
		t.Error(err)
		return
	}

	if abc.Id() != abc2.Id() {
		t.Error("and(and(a,b),c) and and(a,and(b,c)) should flatten to the same node")
		return
	}
}

func TestBoolAbsorbing(t *testing.T) {
	eb := NewExprBuilder()

	a, _ := eb.Eq(eb.BVS("a", 1), eb.BVV(1, 1))
	orTrue, err := eb.BoolOr(a, eb.BoolVal(true))
	if err != nil {
		t.Error(err)
		return
	}
	if !orTrue.IsConst() {
		t.Error("a || true should fold to true")
		return
	}
	v, _ := orTrue.GetConst()
	if !v {
		t.Error("a || true should fold to true")
		return
	}

	andFalse, err := eb.BoolAnd(a, eb.BoolVal(false))
	if err != nil {
		t.Error(err)
		return
	}
	if !andFalse.IsConst() {
		t.Error("a && false should fold to false")
		return
	}
}

func TestInvolvedInputs(t *testing.T) {
	eb := NewExprBuilder()

	a := eb.BVS("a", 32)
	b := eb.BVS("b", 32)
	c := eb.BVS("c", 32)

	lt, _ := eb.SLt(a, b)
	eq, _ := eb.Eq(b, c)
	both, err := eb.BoolAnd(lt, eq)
	if err != nil {
		t.Error(err)
		return
	}

	syms := eb.InvolvedInputs(both)
	if len(syms) != 3 {
		t.Errorf("expected 3 involved symbols, got %d", len(syms))
		return
	}
}
