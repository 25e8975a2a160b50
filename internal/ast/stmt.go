package ast

import "jstep/internal/source"

type StmtKind uint8

const (
	StmtEmpty StmtKind = iota
	StmtBlock
	StmtLocal
	StmtExpr
	StmtIf
	StmtWhile
	StmtDoWhile
	StmtFor
	StmtForEach
	StmtSwitch
	StmtBreak
	StmtContinue
	StmtReturn
	StmtThrow
	StmtTry
	StmtCtorCall // this(...) / super(...)
)

type Stmt struct {
	Kind    StmtKind
	Span    source.Span
	Payload PayloadID
}

type StmtBlockData struct {
	Stmts []StmtID
}

type VarDecl struct {
	Name     source.StringID
	NameSpan source.Span
	Type     TypeID // с учётом "int a[]" - уже обёрнут в массив
	Init     ExprID
}

type StmtLocalData struct {
	Type  TypeID
	Decls []VarDecl
}

// StmtExprData is shared by expression, return and throw statements.
type StmtExprData struct {
	X ExprID
}

type StmtIfData struct {
	Cond ExprID
	Then StmtID
	Else StmtID
}

// StmtLoopData is shared by while and do-while.
type StmtLoopData struct {
	Cond ExprID
	Body StmtID
}

type StmtForData struct {
	Init   []StmtID
	Cond   ExprID
	Update []ExprID
	Body   StmtID
}

type StmtForEachData struct {
	Type     TypeID
	Name     source.StringID
	NameSpan source.Span
	Iter     ExprID
	Body     StmtID
}

// SwitchCase with no Labels is the default clause.
type SwitchCase struct {
	Span   source.Span
	Labels []ExprID
	Body   []StmtID
}

type StmtSwitchData struct {
	Tag   ExprID
	Cases []SwitchCase
}

type CatchClause struct {
	Span     source.Span
	Types    []TypeID
	Name     source.StringID
	NameSpan source.Span
	Body     StmtID
}

type StmtTryData struct {
	Body    StmtID
	Catches []CatchClause
}

type StmtCtorCallData struct {
	Super bool
	Args  []ExprID
}

type Stmts struct {
	Arena     *Arena[Stmt]
	Blocks    *Arena[StmtBlockData]
	Locals    *Arena[StmtLocalData]
	Exprs     *Arena[StmtExprData]
	Ifs       *Arena[StmtIfData]
	Loops     *Arena[StmtLoopData]
	Fors      *Arena[StmtForData]
	ForEachs  *Arena[StmtForEachData]
	Switches  *Arena[StmtSwitchData]
	Tries     *Arena[StmtTryData]
	CtorCalls *Arena[StmtCtorCallData]
}

func NewStmts(capHint uint) *Stmts {
	small := capHint/8 + 1
	return &Stmts{
		Arena:     NewArena[Stmt](capHint),
		Blocks:    NewArena[StmtBlockData](small),
		Locals:    NewArena[StmtLocalData](small),
		Exprs:     NewArena[StmtExprData](capHint / 2),
		Ifs:       NewArena[StmtIfData](small),
		Loops:     NewArena[StmtLoopData](small),
		Fors:      NewArena[StmtForData](small),
		ForEachs:  NewArena[StmtForEachData](small),
		Switches:  NewArena[StmtSwitchData](small),
		Tries:     NewArena[StmtTryData](small),
		CtorCalls: NewArena[StmtCtorCallData](small),
	}
}

func (s *Stmts) new(kind StmtKind, sp source.Span, payload uint32) StmtID {
	return StmtID(s.Arena.Allocate(Stmt{Kind: kind, Span: sp, Payload: PayloadID(payload)}))
}

func (s *Stmts) Get(id StmtID) *Stmt {
	return s.Arena.Get(uint32(id))
}

func (s *Stmts) payload(id StmtID, kinds ...StmtKind) (uint32, bool) {
	st := s.Get(id)
	if st == nil {
		return 0, false
	}
	for _, k := range kinds {
		if st.Kind == k {
			return uint32(st.Payload), true
		}
	}
	return 0, false
}

func (s *Stmts) NewEmpty(sp source.Span) StmtID { return s.new(StmtEmpty, sp, 0) }

func (s *Stmts) NewBreak(sp source.Span) StmtID { return s.new(StmtBreak, sp, 0) }

func (s *Stmts) NewContinue(sp source.Span) StmtID { return s.new(StmtContinue, sp, 0) }

func (s *Stmts) NewBlock(sp source.Span, stmts []StmtID) StmtID {
	return s.new(StmtBlock, sp, s.Blocks.Allocate(StmtBlockData{Stmts: stmts}))
}

func (s *Stmts) Block(id StmtID) (*StmtBlockData, bool) {
	p, ok := s.payload(id, StmtBlock)
	if !ok {
		return nil, false
	}
	return s.Blocks.Get(p), true
}

func (s *Stmts) NewLocal(sp source.Span, data StmtLocalData) StmtID {
	return s.new(StmtLocal, sp, s.Locals.Allocate(data))
}

func (s *Stmts) Local(id StmtID) (*StmtLocalData, bool) {
	p, ok := s.payload(id, StmtLocal)
	if !ok {
		return nil, false
	}
	return s.Locals.Get(p), true
}

// NewExprLike builds an expression, return or throw statement.
func (s *Stmts) NewExprLike(kind StmtKind, sp source.Span, x ExprID) StmtID {
	return s.new(kind, sp, s.Exprs.Allocate(StmtExprData{X: x}))
}

// ExprOf returns the payload of an expression, return or throw statement.
func (s *Stmts) ExprOf(id StmtID) (*StmtExprData, bool) {
	p, ok := s.payload(id, StmtExpr, StmtReturn, StmtThrow)
	if !ok {
		return nil, false
	}
	return s.Exprs.Get(p), true
}

func (s *Stmts) NewIf(sp source.Span, data StmtIfData) StmtID {
	return s.new(StmtIf, sp, s.Ifs.Allocate(data))
}

func (s *Stmts) If(id StmtID) (*StmtIfData, bool) {
	p, ok := s.payload(id, StmtIf)
	if !ok {
		return nil, false
	}
	return s.Ifs.Get(p), true
}

// NewLoop builds a while or do-while statement.
func (s *Stmts) NewLoop(kind StmtKind, sp source.Span, data StmtLoopData) StmtID {
	return s.new(kind, sp, s.Loops.Allocate(data))
}

func (s *Stmts) Loop(id StmtID) (*StmtLoopData, bool) {
	p, ok := s.payload(id, StmtWhile, StmtDoWhile)
	if !ok {
		return nil, false
	}
	return s.Loops.Get(p), true
}

func (s *Stmts) NewFor(sp source.Span, data StmtForData) StmtID {
	return s.new(StmtFor, sp, s.Fors.Allocate(data))
}

func (s *Stmts) For(id StmtID) (*StmtForData, bool) {
	p, ok := s.payload(id, StmtFor)
	if !ok {
		return nil, false
	}
	return s.Fors.Get(p), true
}

func (s *Stmts) NewForEach(sp source.Span, data StmtForEachData) StmtID {
	return s.new(StmtForEach, sp, s.ForEachs.Allocate(data))
}

func (s *Stmts) ForEach(id StmtID) (*StmtForEachData, bool) {
	p, ok := s.payload(id, StmtForEach)
	if !ok {
		return nil, false
	}
	return s.ForEachs.Get(p), true
}

func (s *Stmts) NewSwitch(sp source.Span, data StmtSwitchData) StmtID {
	return s.new(StmtSwitch, sp, s.Switches.Allocate(data))
}

func (s *Stmts) Switch(id StmtID) (*StmtSwitchData, bool) {
	p, ok := s.payload(id, StmtSwitch)
	if !ok {
		return nil, false
	}
	return s.Switches.Get(p), true
}

func (s *Stmts) NewTry(sp source.Span, data StmtTryData) StmtID {
	return s.new(StmtTry, sp, s.Tries.Allocate(data))
}

func (s *Stmts) Try(id StmtID) (*StmtTryData, bool) {
	p, ok := s.payload(id, StmtTry)
	if !ok {
		return nil, false
	}
	return s.Tries.Get(p), true
}

func (s *Stmts) NewCtorCall(sp source.Span, data StmtCtorCallData) StmtID {
	return s.new(StmtCtorCall, sp, s.CtorCalls.Allocate(data))
}

func (s *Stmts) CtorCall(id StmtID) (*StmtCtorCallData, bool) {
	p, ok := s.payload(id, StmtCtorCall)
	if !ok {
		return nil, false
	}
	return s.CtorCalls.Get(p), true
}
