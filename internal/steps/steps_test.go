package steps

import (
	"bytes"
	"strings"
	"testing"
)

func TestCoalesceCutsAtStatementsJumpsAndCalls(t *testing.T) {
	code := []Step{
		{Op: OpPushConst, Flags: FlagStmtStart},       // 0
		{Op: OpStoreLocal, A: 0},                      // 1
		{Op: OpLoadLocal, A: 0, Flags: FlagStmtStart}, // 2
		{Op: OpPushConst},                             // 3
		{Op: OpBinary, A: int32(BinLt)},               // 4
		{Op: OpJumpIfFalse, A: 8},                     // 5
		{Op: OpCall, A: 1, B: 0},                      // 6
		{Op: OpJump, A: 2},                            // 7
		{Op: OpReturn, Flags: FlagStmtStart},          // 8
	}
	got := Coalesce(code, nil)
	want := []Multi{{0, 2}, {2, 6}, {6, 7}, {7, 8}, {8, 9}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	p := &Program{Steps: code}
	p.Finish()
	if !p.IsCut(2) || p.IsCut(3) || !p.IsCut(9) {
		t.Fatalf("cut index inconsistent with multi partition")
	}
}

func TestHandlerTargetStartsMulti(t *testing.T) {
	code := []Step{{Op: OpPushConst}, {Op: OpPop}, {Op: OpPushNull}, {Op: OpReturn}}
	got := Coalesce(code, []Handler{{Clauses: []Clause{{Target: 2}}}})
	if len(got) != 2 || got[1].Begin != 2 {
		t.Fatalf("got %v", got)
	}
}

func TestAddConstDeduplicates(t *testing.T) {
	p := &Program{}
	a := p.AddConst(Const{Kind: ConstString, S: "x"})
	b := p.AddConst(Const{Kind: ConstInt, N: 1})
	c := p.AddConst(Const{Kind: ConstString, S: "x"})
	if a != c || a == b || len(p.Consts) != 2 {
		t.Fatalf("a=%d b=%d c=%d consts=%v", a, b, c, p.Consts)
	}
}

func TestEncodeDecode(t *testing.T) {
	p := &Program{Name: "Main.main", Kind: KindMethod, SlotCount: 2,
		Steps: []Step{{Op: OpPushConst, Flags: FlagStmtStart}, {Op: OpReturnValue}}}
	p.AddConst(Const{Kind: ConstInt, N: 42})
	p.Finish()
	var buf bytes.Buffer
	if err := Encode(&buf, []*Program{p}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].Name != "Main.main" || len(out[0].Steps) != 2 || out[0].Consts[0].N != 42 {
		t.Fatalf("decoded %+v", out)
	}
	if !out[0].IsCut(0) {
		t.Fatalf("decoded program lost its multi index")
	}
}

func TestDisasm(t *testing.T) {
	p := &Program{Name: "s", Steps: []Step{{Op: OpJump, A: 0, Flags: FlagStmtStart}}}
	p.Finish()
	var sb strings.Builder
	if err := Disasm(&sb, p, nil, nil); err != nil {
		t.Fatalf("disasm: %v", err)
	}
	if !strings.Contains(sb.String(), "jump") || !strings.Contains(sb.String(), "-> 0000") {
		t.Fatalf("unexpected listing:\n%s", sb.String())
	}
}
