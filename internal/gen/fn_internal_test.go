package gen

import (
	"math"
	"strconv"
	"testing"

	"jstep/internal/diag"
	"jstep/internal/source"
)

func TestOperandOutOfRangeIsReported(t *testing.T) {
	if strconv.IntSize < 64 {
		t.Skip("int is 32 bits wide")
	}
	bag := diag.NewBag(0)
	f := &fn{rep: diag.BagReporter{Bag: bag}}

	if got := f.narrow(42, source.Span{}); got != 42 || bag.Len() != 0 {
		t.Fatalf("got %d with %d diagnostics, want 42 and none", got, bag.Len())
	}
	var big int64 = math.MaxInt32 + 1
	f.narrow(int(big), source.Span{})
	if items := bag.Items(); len(items) != 1 || items[0].Code != diag.GenInternal {
		t.Fatalf("got %v, want one %v", items, diag.GenInternal)
	}
}
