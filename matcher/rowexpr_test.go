package matcher

import (
	"testing"

	"github.com/sliceindex/matchjit/asmbuf"
	"github.com/sliceindex/matchjit/regalloc"
)

func TestAndRequiresTwoChildren(t *testing.T) {
	rows, _ := regalloc.New([]int{0})
	f := asmbuf.NewFunc()
	c := newRowCompiler(f, rows, rIter)

	if _, err := (And{Children: []RowExpr{RowRef{RowID: 0}}}).emit(c); err == nil {
		t.Fatalf("expected And with one child to fail")
	}
}

func TestCompileRejectsUnassignedRowID(t *testing.T) {
	rows, err := regalloc.New([]int{0})
	if err != nil {
		t.Fatalf("regalloc.New: %v", err)
	}

	if _, err := Compile(rows, RowRef{RowID: 99}); err == nil {
		t.Fatalf("expected Compile to return an error for an unassigned row id, got nil")
	}
}

func TestUnassignedRowIDFails(t *testing.T) {
	rows, _ := regalloc.New([]int{0})
	f := asmbuf.NewFunc()
	c := newRowCompiler(f, rows, rIter)

	if _, err := (RowRef{RowID: 7}).emit(c); err == nil {
		t.Fatalf("expected RowRef to an unassigned row id to fail")
	}
}

func TestScratchExhaustionFails(t *testing.T) {
	rows, _ := regalloc.New([]int{0})
	f := asmbuf.NewFunc()
	c := newRowCompiler(f, rows, rIter)

	// Drain the scratch pool directly to force the next allocation to fail,
	// rather than constructing a pathologically deep tree.
	for len(c.free) > 0 {
		if _, err := c.alloc(); err != nil {
			t.Fatalf("unexpected alloc failure while draining: %v", err)
		}
	}

	if _, err := (Const{Value: 1}).emit(c); err == nil {
		t.Fatalf("expected emit to fail once scratch registers are exhausted")
	}
}

func TestNotCompilesSingleChild(t *testing.T) {
	rows, _ := regalloc.New([]int{0})
	f := asmbuf.NewFunc()
	c := newRowCompiler(f, rows, rIter)

	if _, err := (Not{Child: RowRef{RowID: 0}}).emit(c); err != nil {
		t.Fatalf("emit: %v", err)
	}
}
