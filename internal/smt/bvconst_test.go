package smt

import "testing"

func TestBVConstSignedCompare(t *testing.T) {
	neg := MakeBVConst(-1, 8)
	pos := MakeBVConst(1, 8)

	gt, err := pos.SGt(neg)
	if err != nil {
		t.Error(err)
		return
	}
	if !gt.Value {
		t.Error("1 should be signed-greater than -1")
		return
	}

	lt, err := neg.SLt(pos)
	if err != nil {
		t.Error(err)
		return
	}
	if !lt.Value {
		t.Error("-1 should be signed-less than 1")
		return
	}
}

func TestBVConstEq(t *testing.T) {
	a := MakeBVConst(5, 32)
	b := MakeBVConst(5, 32)
	c := MakeBVConst(6, 32)

	eq, err := a.Eq(b)
	if err != nil || !eq.Value {
		t.Error("5 == 5 should hold")
		return
	}

	neq, err := a.NEq(c)
	if err != nil || !neq.Value {
		t.Error("5 != 6 should hold")
		return
	}
}

func TestBVConstAsLong(t *testing.T) {
	neg := MakeBVConst(-42, 32)
	if neg.AsLong() != -42 {
		t.Errorf("expected -42, got %d", neg.AsLong())
		return
	}

	pos := MakeBVConst(42, 32)
	if pos.AsLong() != 42 {
		t.Errorf("expected 42, got %d", pos.AsLong())
		return
	}
}

func TestBVConstSGeSLe(t *testing.T) {
	a := MakeBVConst(3, 16)
	b := MakeBVConst(3, 16)

	ge, err := a.SGe(b)
	if err != nil || !ge.Value {
		t.Error("3 >= 3 should hold")
		return
	}
	le, err := a.SLe(b)
	if err != nil || !le.Value {
		t.Error("3 <= 3 should hold")
		return
	}
}

func TestBVConstFromString(t *testing.T) {
	c := MakeBVConstFromString("2a", 16, 32)
	if c == nil {
		t.Error("expected a parsed constant")
		return
	}
	if c.AsLong() != 42 {
		t.Errorf("expected 42, got %d", c.AsLong())
		return
	}
}
