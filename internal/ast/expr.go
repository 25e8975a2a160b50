package ast

import "jstep/internal/source"

type ExprKind uint8

const (
	ExprInvalid ExprKind = iota // заглушка после синтаксической ошибки
	ExprIdent
	ExprLit
	ExprThis
	ExprSuper
	ExprBinary
	ExprUnary
	ExprAssign
	ExprIncDec
	ExprTernary
	ExprMember
	ExprCall
	ExprIndex
	ExprNew
	ExprNewArray
	ExprArrayInit
	ExprCast
	ExprInstanceOf
	ExprGroup
)

type Expr struct {
	Kind    ExprKind
	Span    source.Span
	Payload PayloadID
}

type LitKind uint8

const (
	LitInt LitKind = iota
	LitDouble
	LitChar
	LitString
	LitTrue
	LitFalse
	LitNull
)

type ExprIdentData struct {
	Name source.StringID
}

// ExprLitData keeps the raw lexeme; decoding happens in the code generator.
type ExprLitData struct {
	Kind LitKind
	Raw  string
}

type ExprBinaryData struct {
	Op          BinaryOp
	Left, Right ExprID
}

type ExprUnaryData struct {
	Op UnaryOp
	X  ExprID
}

type ExprAssignData struct {
	Op     AssignOp
	Target ExprID
	Value  ExprID
}

type ExprIncDecData struct {
	Inc    bool
	Prefix bool
	X      ExprID
}

type ExprTernaryData struct {
	Cond, Then, Else ExprID
}

type ExprMemberData struct {
	Target   ExprID
	Name     source.StringID
	NameSpan source.Span
}

// ExprCallData with no Target is an unqualified call m(args).
type ExprCallData struct {
	Target   ExprID
	Name     source.StringID
	NameSpan source.Span
	Args     []ExprID
}

type ExprIndexData struct {
	X, Index ExprID
}

type ExprNewData struct {
	Type TypeID
	Args []ExprID
}

// ExprNewArrayData: new Elem[d1][d2][]... or new Elem[]...{init}.
// Type is the full array type.
type ExprNewArrayData struct {
	Type TypeID
	Dims []ExprID
	Init ExprID
}

type ExprArrayInitData struct {
	Elems []ExprID
}

// ExprTypedData is shared by cast and instanceof.
type ExprTypedData struct {
	Type TypeID
	X    ExprID
}

type ExprGroupData struct {
	X ExprID
}

type Exprs struct {
	Arena      *Arena[Expr]
	Idents     *Arena[ExprIdentData]
	Literals   *Arena[ExprLitData]
	Binaries   *Arena[ExprBinaryData]
	Unaries    *Arena[ExprUnaryData]
	Assigns    *Arena[ExprAssignData]
	IncDecs    *Arena[ExprIncDecData]
	Ternaries  *Arena[ExprTernaryData]
	Members    *Arena[ExprMemberData]
	Calls      *Arena[ExprCallData]
	Indices    *Arena[ExprIndexData]
	News       *Arena[ExprNewData]
	NewArrays  *Arena[ExprNewArrayData]
	ArrayInits *Arena[ExprArrayInitData]
	Typeds     *Arena[ExprTypedData]
	Groups     *Arena[ExprGroupData]
}

func NewExprs(capHint uint) *Exprs {
	small := capHint/8 + 1
	return &Exprs{
		Arena:      NewArena[Expr](capHint),
		Idents:     NewArena[ExprIdentData](capHint / 2),
		Literals:   NewArena[ExprLitData](capHint / 2),
		Binaries:   NewArena[ExprBinaryData](small),
		Unaries:    NewArena[ExprUnaryData](small),
		Assigns:    NewArena[ExprAssignData](small),
		IncDecs:    NewArena[ExprIncDecData](small),
		Ternaries:  NewArena[ExprTernaryData](small),
		Members:    NewArena[ExprMemberData](small),
		Calls:      NewArena[ExprCallData](small),
		Indices:    NewArena[ExprIndexData](small),
		News:       NewArena[ExprNewData](small),
		NewArrays:  NewArena[ExprNewArrayData](small),
		ArrayInits: NewArena[ExprArrayInitData](small),
		Typeds:     NewArena[ExprTypedData](small),
		Groups:     NewArena[ExprGroupData](small),
	}
}

func (e *Exprs) new(kind ExprKind, span source.Span, payload uint32) ExprID {
	return ExprID(e.Arena.Allocate(Expr{Kind: kind, Span: span, Payload: PayloadID(payload)}))
}

// Get returns the expression with the given ID.
func (e *Exprs) Get(id ExprID) *Expr {
	return e.Arena.Get(uint32(id))
}

func (e *Exprs) payload(id ExprID, kinds ...ExprKind) (uint32, bool) {
	x := e.Get(id)
	if x == nil {
		return 0, false
	}
	for _, k := range kinds {
		if x.Kind == k {
			return uint32(x.Payload), true
		}
	}
	return 0, false
}

func (e *Exprs) NewInvalid(sp source.Span) ExprID { return e.new(ExprInvalid, sp, 0) }
func (e *Exprs) NewThis(sp source.Span) ExprID    { return e.new(ExprThis, sp, 0) }
func (e *Exprs) NewSuper(sp source.Span) ExprID   { return e.new(ExprSuper, sp, 0) }

func (e *Exprs) NewIdent(sp source.Span, name source.StringID) ExprID {
	return e.new(ExprIdent, sp, e.Idents.Allocate(ExprIdentData{Name: name}))
}

func (e *Exprs) Ident(id ExprID) (*ExprIdentData, bool) {
	p, ok := e.payload(id, ExprIdent)
	if !ok {
		return nil, false
	}
	return e.Idents.Get(p), true
}

func (e *Exprs) NewLiteral(sp source.Span, kind LitKind, raw string) ExprID {
	return e.new(ExprLit, sp, e.Literals.Allocate(ExprLitData{Kind: kind, Raw: raw}))
}

func (e *Exprs) Literal(id ExprID) (*ExprLitData, bool) {
	p, ok := e.payload(id, ExprLit)
	if !ok {
		return nil, false
	}
	return e.Literals.Get(p), true
}

func (e *Exprs) NewBinary(sp source.Span, op BinaryOp, left, right ExprID) ExprID {
	return e.new(ExprBinary, sp, e.Binaries.Allocate(ExprBinaryData{Op: op, Left: left, Right: right}))
}

func (e *Exprs) Binary(id ExprID) (*ExprBinaryData, bool) {
	p, ok := e.payload(id, ExprBinary)
	if !ok {
		return nil, false
	}
	return e.Binaries.Get(p), true
}

func (e *Exprs) NewUnary(sp source.Span, op UnaryOp, x ExprID) ExprID {
	return e.new(ExprUnary, sp, e.Unaries.Allocate(ExprUnaryData{Op: op, X: x}))
}

func (e *Exprs) Unary(id ExprID) (*ExprUnaryData, bool) {
	p, ok := e.payload(id, ExprUnary)
	if !ok {
		return nil, false
	}
	return e.Unaries.Get(p), true
}

func (e *Exprs) NewAssign(sp source.Span, op AssignOp, target, value ExprID) ExprID {
	return e.new(ExprAssign, sp, e.Assigns.Allocate(ExprAssignData{Op: op, Target: target, Value: value}))
}

func (e *Exprs) Assign(id ExprID) (*ExprAssignData, bool) {
	p, ok := e.payload(id, ExprAssign)
	if !ok {
		return nil, false
	}
	return e.Assigns.Get(p), true
}

func (e *Exprs) NewIncDec(sp source.Span, inc, prefix bool, x ExprID) ExprID {
	return e.new(ExprIncDec, sp, e.IncDecs.Allocate(ExprIncDecData{Inc: inc, Prefix: prefix, X: x}))
}

func (e *Exprs) IncDec(id ExprID) (*ExprIncDecData, bool) {
	p, ok := e.payload(id, ExprIncDec)
	if !ok {
		return nil, false
	}
	return e.IncDecs.Get(p), true
}

func (e *Exprs) NewTernary(sp source.Span, cond, then, els ExprID) ExprID {
	return e.new(ExprTernary, sp, e.Ternaries.Allocate(ExprTernaryData{Cond: cond, Then: then, Else: els}))
}

func (e *Exprs) Ternary(id ExprID) (*ExprTernaryData, bool) {
	p, ok := e.payload(id, ExprTernary)
	if !ok {
		return nil, false
	}
	return e.Ternaries.Get(p), true
}

func (e *Exprs) NewMember(sp source.Span, data ExprMemberData) ExprID {
	return e.new(ExprMember, sp, e.Members.Allocate(data))
}

func (e *Exprs) Member(id ExprID) (*ExprMemberData, bool) {
	p, ok := e.payload(id, ExprMember)
	if !ok {
		return nil, false
	}
	return e.Members.Get(p), true
}

func (e *Exprs) NewCall(sp source.Span, data ExprCallData) ExprID {
	return e.new(ExprCall, sp, e.Calls.Allocate(data))
}

func (e *Exprs) Call(id ExprID) (*ExprCallData, bool) {
	p, ok := e.payload(id, ExprCall)
	if !ok {
		return nil, false
	}
	return e.Calls.Get(p), true
}

func (e *Exprs) NewIndex(sp source.Span, x, index ExprID) ExprID {
	return e.new(ExprIndex, sp, e.Indices.Allocate(ExprIndexData{X: x, Index: index}))
}

func (e *Exprs) Index(id ExprID) (*ExprIndexData, bool) {
	p, ok := e.payload(id, ExprIndex)
	if !ok {
		return nil, false
	}
	return e.Indices.Get(p), true
}

func (e *Exprs) NewNew(sp source.Span, typ TypeID, args []ExprID) ExprID {
	return e.new(ExprNew, sp, e.News.Allocate(ExprNewData{Type: typ, Args: args}))
}

func (e *Exprs) New(id ExprID) (*ExprNewData, bool) {
	p, ok := e.payload(id, ExprNew)
	if !ok {
		return nil, false
	}
	return e.News.Get(p), true
}

func (e *Exprs) NewNewArray(sp source.Span, data ExprNewArrayData) ExprID {
	return e.new(ExprNewArray, sp, e.NewArrays.Allocate(data))
}

func (e *Exprs) NewArray(id ExprID) (*ExprNewArrayData, bool) {
	p, ok := e.payload(id, ExprNewArray)
	if !ok {
		return nil, false
	}
	return e.NewArrays.Get(p), true
}

func (e *Exprs) NewArrayInit(sp source.Span, elems []ExprID) ExprID {
	return e.new(ExprArrayInit, sp, e.ArrayInits.Allocate(ExprArrayInitData{Elems: elems}))
}

func (e *Exprs) ArrayInit(id ExprID) (*ExprArrayInitData, bool) {
	p, ok := e.payload(id, ExprArrayInit)
	if !ok {
		return nil, false
	}
	return e.ArrayInits.Get(p), true
}

// NewTyped builds a cast or instanceof expression.
func (e *Exprs) NewTyped(kind ExprKind, sp source.Span, typ TypeID, x ExprID) ExprID {
	return e.new(kind, sp, e.Typeds.Allocate(ExprTypedData{Type: typ, X: x}))
}

func (e *Exprs) Typed(id ExprID) (*ExprTypedData, bool) {
	p, ok := e.payload(id, ExprCast, ExprInstanceOf)
	if !ok {
		return nil, false
	}
	return e.Typeds.Get(p), true
}

func (e *Exprs) NewGroup(sp source.Span, x ExprID) ExprID {
	return e.new(ExprGroup, sp, e.Groups.Allocate(ExprGroupData{X: x}))
}

func (e *Exprs) Group(id ExprID) (*ExprGroupData, bool) {
	p, ok := e.payload(id, ExprGroup)
	if !ok {
		return nil, false
	}
	return e.Groups.Get(p), true
}

// Unparen strips redundant parentheses.
func (e *Exprs) Unparen(id ExprID) ExprID {
	for {
		g, ok := e.Group(id)
		if !ok {
			return id
		}
		id = g.X
	}
}
