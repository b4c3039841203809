package smt

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// Expression kinds. The memory model only ever needs integers (for ranks
// and values), a three-way mux, signed ordering, equality and propositional
// connectives -- so the IR is kept to exactly that, unlike a general-purpose
// bitvector front-end.
const (
	TY_SYM  = 1
	TY_CONST = 2
	TY_ITE  = 3

	TY_SLT = 4
	TY_SLE = 5
	TY_SGT = 6
	TY_SGE = 7
	TY_EQ  = 8

	TY_BOOL_CONST = 9
	TY_BOOL_NOT   = 10
	TY_BOOL_AND   = 11
	TY_BOOL_OR    = 12
)

/*
 *   Public Interface
 */

type BVExprPtr struct {
	e internalBVExpr
}

func (bv *BVExprPtr) IsConst() bool {
	return bv.e.kind() == TY_CONST
}

func (bv *BVExprPtr) GetConst() (*BVConst, error) {
	if bv.e.kind() != TY_CONST {
		return nil, fmt.Errorf("not a constant")
	}
	c := bv.e.(*internalBVV)
	return c.Value.Copy(), nil
}

func (bv *BVExprPtr) Size() uint {
	return bv.e.size()
}

func (bv *BVExprPtr) String() string {
	return bv.e.String()
}

func (bv *BVExprPtr) Id() uintptr {
	return bv.e.rawPtr()
}

func (bv *BVExprPtr) Kind() int {
	return bv.e.kind()
}

type BoolExprPtr struct {
	e internalBoolExpr
}

func (e *BoolExprPtr) IsConst() bool {
	return e.e.kind() == TY_BOOL_CONST
}

func (e *BoolExprPtr) GetConst() (bool, error) {
	if e.e.kind() != TY_BOOL_CONST {
		return false, fmt.Errorf("not a constant")
	}
	c := e.e.(*internalBoolVal)
	return c.Value.Value, nil
}

func (e *BoolExprPtr) String() string {
	return e.e.String()
}

func (e *BoolExprPtr) Id() uintptr {
	return e.e.rawPtr()
}

func (e *BoolExprPtr) Kind() int {
	return e.e.kind()
}

/*
 *   Private Interface
 */

type internalExpr interface {
	String() string

	kind() int
	hash() uint64
	isLeaf() bool
	rawPtr() uintptr
	subexprs() []internalExpr
}

type internalBVExpr interface {
	internalExpr

	size() uint
	shallowEq(internalBVExpr) bool
}

type internalBoolExpr interface {
	internalExpr

	shallowEq(internalBoolExpr) bool
}

/*
 *  TY_CONST
 */

type internalBVV struct {
	Value BVConst
}

func mkinternalBVV(value int64, size uint) *internalBVV {
	return &internalBVV{Value: *MakeBVConst(value, size)}
}

func mkinternalBVVFromConst(c BVConst) *internalBVV {
	return &internalBVV{Value: c}
}

func (bvv *internalBVV) String() string {
	return fmt.Sprintf("0x%x", bvv.Value.value)
}

func (bvv *internalBVV) size() uint {
	return bvv.Value.Size
}

func (bvv *internalBVV) subexprs() []internalExpr {
	return make([]internalExpr, 0)
}

func (bvv *internalBVV) kind() int {
	return TY_CONST
}

func (bvv *internalBVV) hash() uint64 {
	if bvv.Value.Size > 64 {
		cpy := bvv.Value.Copy()
		return cpy.AsULong()
	}
	return bvv.Value.AsULong()
}

func (bvv *internalBVV) shallowEq(other internalBVExpr) bool {
	if other.kind() != TY_CONST {
		return false
	}
	obvv := other.(*internalBVV)
	res, err := bvv.Value.Eq(&obvv.Value)
	return err == nil && res.Value
}

func (bvv *internalBVV) isLeaf() bool {
	return true
}

func (bvv *internalBVV) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(bvv))
}

/*
 *  TY_BOOL_CONST
 */

type internalBoolVal struct {
	Value BoolConst
}

func mkinternalBoolConst(value bool) *internalBoolVal {
	if value {
		return &internalBoolVal{Value: BoolTrue()}
	}
	return &internalBoolVal{Value: BoolFalse()}
}

func (b *internalBoolVal) String() string {
	return b.Value.String()
}

func (b *internalBoolVal) subexprs() []internalExpr {
	return make([]internalExpr, 0)
}

func (b *internalBoolVal) kind() int {
	return TY_BOOL_CONST
}

func (b *internalBoolVal) hash() uint64 {
	if b.Value.Value {
		return 1
	}
	return 0
}

func (b *internalBoolVal) shallowEq(other internalBoolExpr) bool {
	if other.kind() != TY_BOOL_CONST {
		return false
	}
	ob := other.(*internalBoolVal)
	return ob.Value.Value == b.Value.Value
}

func (b *internalBoolVal) isLeaf() bool {
	return true
}

func (b *internalBoolVal) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(b))
}

/*
 *  TY_SYM
 */

type internalBVS struct {
	name string
	sz   uint
}

func mkinternalBVS(name string, size uint) *internalBVS {
	return &internalBVS{name: name, sz: size}
}

func (bvs *internalBVS) String() string {
	return bvs.name
}

func (bvs *internalBVS) size() uint {
	return bvs.sz
}

func (bvs *internalBVS) subexprs() []internalExpr {
	return make([]internalExpr, 0)
}

func (bvs *internalBVS) kind() int {
	return TY_SYM
}

func (bvs *internalBVS) hash() uint64 {
	h := xxhash.New()
	if _, err := h.Write([]byte(bvs.name)); err != nil {
		panic(err)
	}
	return h.Sum64()
}

func (bvs *internalBVS) shallowEq(other internalBVExpr) bool {
	if other.kind() != TY_SYM {
		return false
	}
	obvs := other.(*internalBVS)
	return obvs.sz == bvs.sz && obvs.name == bvs.name
}

func (bvs *internalBVS) isLeaf() bool {
	return true
}

func (bvs *internalBVS) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(bvs))
}

/*
 * TY_SLT, TY_SLE, TY_SGT, TY_SGE, TY_EQ
 */

type internalBoolExprCmp struct {
	knd      uint8
	symbol   string
	lhs, rhs *BVExprPtr
}

func mkinternalBoolExprCmp(lhs, rhs *BVExprPtr, kind int, symbol string) (*internalBoolExprCmp, error) {
	if rhs.Size() != lhs.Size() {
		return nil, fmt.Errorf("mkinternalBoolExprCmp(): invalid sizes")
	}
	return &internalBoolExprCmp{knd: uint8(kind), symbol: symbol, lhs: lhs, rhs: rhs}, nil
}

func (e *internalBoolExprCmp) String() string {
	b := strings.Builder{}
	if e.lhs.e.isLeaf() {
		b.WriteString(e.lhs.String())
	} else {
		b.WriteString(fmt.Sprintf("(%s)", e.lhs.String()))
	}

	b.WriteString(fmt.Sprintf(" %s ", e.symbol))

	if e.rhs.e.isLeaf() {
		b.WriteString(e.rhs.String())
	} else {
		b.WriteString(fmt.Sprintf("(%s)", e.rhs.String()))
	}
	return b.String()
}

func (e *internalBoolExprCmp) subexprs() []internalExpr {
	return []internalExpr{e.lhs.e, e.rhs.e}
}

func (e *internalBoolExprCmp) kind() int {
	return int(e.knd)
}

func (e *internalBoolExprCmp) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte(e.symbol))

	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(e.lhs.e.rawPtr()))
	h.Write(raw)
	binary.BigEndian.PutUint64(raw, uint64(e.rhs.e.rawPtr()))
	h.Write(raw)

	return h.Sum64()
}

func (e *internalBoolExprCmp) shallowEq(other internalBoolExpr) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*internalBoolExprCmp)
	return e.lhs.e.rawPtr() == oe.lhs.e.rawPtr() && e.rhs.e.rawPtr() == oe.rhs.e.rawPtr()
}

func (e *internalBoolExprCmp) isLeaf() bool {
	return false
}

func (e *internalBoolExprCmp) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}

func mkinternalBoolExprSlt(lhs, rhs *BVExprPtr) (*internalBoolExprCmp, error) {
	return mkinternalBoolExprCmp(lhs, rhs, TY_SLT, "s<")
}
func mkinternalBoolExprSle(lhs, rhs *BVExprPtr) (*internalBoolExprCmp, error) {
	return mkinternalBoolExprCmp(lhs, rhs, TY_SLE, "s<=")
}
func mkinternalBoolExprSgt(lhs, rhs *BVExprPtr) (*internalBoolExprCmp, error) {
	return mkinternalBoolExprCmp(lhs, rhs, TY_SGT, "s>")
}
func mkinternalBoolExprSge(lhs, rhs *BVExprPtr) (*internalBoolExprCmp, error) {
	return mkinternalBoolExprCmp(lhs, rhs, TY_SGE, "s>=")
}
func mkinternalBoolExprEq(lhs, rhs *BVExprPtr) (*internalBoolExprCmp, error) {
	return mkinternalBoolExprCmp(lhs, rhs, TY_EQ, "==")
}

/*
 * TY_BOOL_AND, TY_BOOL_OR
 */

type internalBoolExprNaryOp struct {
	knd      uint8
	symbol   string
	children []*BoolExprPtr
}

func mkinternalBoolExprNaryOp(children []*BoolExprPtr, kind int, symbol string) (*internalBoolExprNaryOp, error) {
	if len(children) < 2 {
		return nil, fmt.Errorf("mkinternalBoolExprNaryOp(): not enough children")
	}
	return &internalBoolExprNaryOp{knd: uint8(kind), symbol: symbol, children: children}, nil
}

func (e *internalBoolExprNaryOp) String() string {
	b := strings.Builder{}
	if e.children[0].e.isLeaf() {
		b.WriteString(e.children[0].e.String())
	} else {
		b.WriteString(fmt.Sprintf("(%s)", e.children[0].e.String()))
	}

	for i := 1; i < len(e.children); i++ {
		b.WriteString(fmt.Sprintf(" %s ", e.symbol))
		if e.children[i].e.isLeaf() {
			b.WriteString(e.children[i].String())
		} else {
			b.WriteString(fmt.Sprintf("(%s)", e.children[i].String()))
		}
	}
	return b.String()
}

func (e *internalBoolExprNaryOp) subexprs() []internalExpr {
	res := make([]internalExpr, 0, len(e.children))
	for i := 0; i < len(e.children); i++ {
		res = append(res, e.children[i].e)
	}
	return res
}

func (e *internalBoolExprNaryOp) kind() int {
	return int(e.knd)
}

func (e *internalBoolExprNaryOp) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte(e.symbol))

	for i := 0; i < len(e.children); i++ {
		raw := make([]byte, 8)
		binary.BigEndian.PutUint64(raw, uint64(e.children[i].e.rawPtr()))
		h.Write(raw)
	}
	return h.Sum64()
}

func (e *internalBoolExprNaryOp) shallowEq(other internalBoolExpr) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*internalBoolExprNaryOp)
	if len(e.children) != len(oe.children) {
		return false
	}
	for i := 0; i < len(e.children); i++ {
		if e.children[i].e.rawPtr() != oe.children[i].e.rawPtr() {
			return false
		}
	}
	return true
}

func (e *internalBoolExprNaryOp) isLeaf() bool {
	return false
}

func (e *internalBoolExprNaryOp) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}

func mkinternalBoolExprAnd(children []*BoolExprPtr) (*internalBoolExprNaryOp, error) {
	return mkinternalBoolExprNaryOp(children, TY_BOOL_AND, "&&")
}
func mkinternalBoolExprOr(children []*BoolExprPtr) (*internalBoolExprNaryOp, error) {
	return mkinternalBoolExprNaryOp(children, TY_BOOL_OR, "||")
}

/*
 * TY_BOOL_NOT
 */

type internalBoolUnArithmetic struct {
	knd    uint8
	symbol string
	child  *BoolExprPtr
}

func mkinternalBoolUnArithmetic(child *BoolExprPtr, kind int, symbol string) (*internalBoolUnArithmetic, error) {
	return &internalBoolUnArithmetic{knd: uint8(kind), symbol: symbol, child: child}, nil
}

func (e *internalBoolUnArithmetic) String() string {
	if e.child.e.isLeaf() {
		return fmt.Sprintf("%s%s", e.symbol, e.child.String())
	}
	return fmt.Sprintf("%s(%s)", e.symbol, e.child.String())
}

func (e *internalBoolUnArithmetic) subexprs() []internalExpr {
	return []internalExpr{e.child.e}
}

func (e *internalBoolUnArithmetic) kind() int {
	return int(e.knd)
}

func (e *internalBoolUnArithmetic) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte(e.symbol))

	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(e.child.e.rawPtr()))
	h.Write(raw)

	return h.Sum64()
}

func (e *internalBoolUnArithmetic) shallowEq(other internalBoolExpr) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*internalBoolUnArithmetic)
	return e.child.e.rawPtr() == oe.child.e.rawPtr()
}

func (e *internalBoolUnArithmetic) isLeaf() bool {
	return false
}

func (e *internalBoolUnArithmetic) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}

func mkinternalBoolNot(e *BoolExprPtr) (*internalBoolUnArithmetic, error) {
	return mkinternalBoolUnArithmetic(e, TY_BOOL_NOT, "!")
}

/*
 *   TY_ITE
 */

type internalBVExprITE struct {
	cond    *BoolExprPtr
	iftrue  *BVExprPtr
	iffalse *BVExprPtr
}

func mkinternalBVExprITE(cond *BoolExprPtr, iftrue *BVExprPtr, iffalse *BVExprPtr) (*internalBVExprITE, error) {
	if iftrue.Size() != iffalse.Size() {
		return nil, fmt.Errorf("mkinternalBVExprITE(): invalid sizes")
	}
	return &internalBVExprITE{cond: cond, iftrue: iftrue, iffalse: iffalse}, nil
}

func (e *internalBVExprITE) String() string {
	return fmt.Sprintf("ITE(%s, %s, %s)", e.cond.String(), e.iftrue.String(), e.iffalse.String())
}

func (e *internalBVExprITE) size() uint {
	return e.iftrue.Size()
}

func (e *internalBVExprITE) subexprs() []internalExpr {
	return []internalExpr{e.iftrue.e, e.iffalse.e, e.cond.e}
}

func (e *internalBVExprITE) kind() int {
	return TY_ITE
}

func (e *internalBVExprITE) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte("TY_ITE"))

	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(e.cond.e.rawPtr()))
	h.Write(raw)
	binary.BigEndian.PutUint64(raw, uint64(e.iftrue.e.rawPtr()))
	h.Write(raw)
	binary.BigEndian.PutUint64(raw, uint64(e.iffalse.e.rawPtr()))
	h.Write(raw)

	return h.Sum64()
}

func (e *internalBVExprITE) shallowEq(other internalBVExpr) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*internalBVExprITE)
	return e.cond.e.rawPtr() == oe.cond.e.rawPtr() &&
		e.iftrue.e.rawPtr() == oe.iftrue.e.rawPtr() &&
		e.iffalse.e.rawPtr() == oe.iffalse.e.rawPtr()
}

func (e *internalBVExprITE) isLeaf() bool {
	return false
}

func (e *internalBVExprITE) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}
