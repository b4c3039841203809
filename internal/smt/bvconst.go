package smt

import (
	"fmt"
	"math/big"
)

var zero = big.NewInt(0)
var one = big.NewInt(1)

// BVConst is a concrete, fixed-width two's-complement integer: the value
// type behind every rank and memory value the encoder hands to the solver.
type BVConst struct {
	Size  uint
	mask  *big.Int
	value *big.Int
}

func makeMask(size uint) *big.Int {
	bytes := make([]byte, size/8)
	for i := uint(0); i < size/8; i++ {
		bytes[i] = 0xff
	}
	v := big.NewInt(0)
	v.SetBytes(bytes)
	for i := size / 8 * 8; i < size/8*8+size%8; i++ {
		v.SetBit(v, int(i), 1)
	}
	return v
}

func MakeBVConst(value int64, size uint) *BVConst {
	if size == 0 {
		return nil
	}

	mask := makeMask(size)
	v := big.NewInt(value)
	if v.Cmp(zero) < 0 {
		v = v.Neg(v)
		v = v.Sub(v, one)
		v = v.Sub(mask, v)
		v = v.And(v, mask)
	}
	return &BVConst{Size: size, mask: mask, value: v}
}

// MakeBVConstFromString parses a magnitude literal (as produced by a
// backend's model, e.g. a hex string with no sign) into a two's-complement
// value of the given width.
func MakeBVConstFromString(s string, base int, size uint) *BVConst {
	v, ok := big.NewInt(0).SetString(s, base)
	if !ok {
		return nil
	}
	mask := makeMask(size)
	v.And(v, mask)
	return &BVConst{Size: size, mask: mask, value: v}
}

func (bv *BVConst) IsNegative() bool {
	return bv.value.Bit(int(bv.Size)-1) == 1
}

func (bv *BVConst) IsZero() bool {
	return bv.value.Cmp(zero) == 0
}

func (bv *BVConst) IsOne() bool {
	return bv.value.Cmp(one) == 0
}

func (bv *BVConst) Copy() *BVConst {
	newVal := big.NewInt(0).Add(big.NewInt(0), bv.value)
	return &BVConst{Size: bv.Size, mask: bv.mask, value: newVal}
}

func (bv *BVConst) String() string {
	return fmt.Sprintf("<BV%d 0x%x>", bv.Size, bv.value)
}

func (bv *BVConst) FitInLong() bool {
	maxulong := big.NewInt(2)
	maxulong.Lsh(maxulong, 64)
	maxulong.Sub(maxulong, one)

	return bv.value.Cmp(maxulong) <= 0
}

func (bv *BVConst) AsULong() uint64 {
	// if it does not `FitInLong`, result is undefined
	return bv.value.Uint64()
}

func (bv *BVConst) AsLong() int64 {
	// if it does not `FitInLong`, result is undefined
	if !bv.IsNegative() {
		return bv.value.Int64()
	}
	bvCpy := bv.Copy()
	bvCpy.value.Not(bvCpy.value)
	bvCpy.value.And(bvCpy.value, bvCpy.mask)
	one := MakeBVConst(1, bv.Size)
	bvCpy.value.Add(bvCpy.value, one.value)
	bvCpy.value.And(bvCpy.value, bvCpy.mask)
	return -int64(bvCpy.AsULong())
}

func (bv *BVConst) Eq(o *BVConst) (BoolConst, error) {
	if bv.Size != o.Size {
		return BoolTrue(), fmt.Errorf("different sizes %d and %d", bv.Size, o.Size)
	}
	return BoolConst{bv.value.Cmp(o.value) == 0}, nil
}

func (bv *BVConst) NEq(o *BVConst) (BoolConst, error) {
	r, err := bv.Eq(o)
	return r.Not(), err
}

func (bv *BVConst) SGt(o *BVConst) (BoolConst, error) {
	if bv.Size != o.Size {
		return BoolTrue(), fmt.Errorf("different sizes %d and %d", bv.Size, o.Size)
	}

	switch {
	case bv.IsNegative() && !o.IsNegative():
		return BoolFalse(), nil
	case !bv.IsNegative() && o.IsNegative():
		return BoolTrue(), nil
	default:
		return BoolConst{bv.value.Cmp(o.value) > 0}, nil
	}
}

func (bv *BVConst) SGe(o *BVConst) (BoolConst, error) {
	eq, err := bv.Eq(o)
	if err != nil || eq.Value {
		return BoolTrue(), err
	}
	return bv.SGt(o)
}

func (bv *BVConst) SLt(o *BVConst) (BoolConst, error) {
	v, err := bv.SGe(o)
	return v.Not(), err
}

func (bv *BVConst) SLe(o *BVConst) (BoolConst, error) {
	v, err := bv.SGt(o)
	return v.Not(), err
}
