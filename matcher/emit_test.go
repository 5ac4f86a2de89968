package matcher

import (
	"bytes"
	"testing"

	"github.com/sliceindex/matchjit/asmbuf"
	"github.com/sliceindex/matchjit/regalloc"
)

func TestRowPreloadEmptyForZeroRows(t *testing.T) {
	rows, err := regalloc.New(nil)
	if err != nil {
		t.Fatalf("regalloc.New(nil): %v", err)
	}
	f := asmbuf.NewFunc()
	emitRowPreload(f, rows)
	if len(f.Bytes()) != 0 {
		t.Fatalf("expected K=0 preload to emit nothing, got %d bytes", len(f.Bytes()))
	}
}

func TestRowPreloadEmitsOneLoadPerSlot(t *testing.T) {
	rows, err := regalloc.New([]int{3, 1})
	if err != nil {
		t.Fatalf("regalloc.New: %v", err)
	}
	f := asmbuf.NewFunc()
	emitRowPreload(f, rows)
	if len(f.Bytes()) == 0 {
		t.Fatalf("expected preload to emit code for K=2")
	}
	// One load of R-rowbase, then one load per slot: row 3 into r8,
	// row 1 into r9.
	want := asmbuf.NewFunc()
	want.MovRegMem(rRowbase, rParam, offRowOffsets)
	want.MovRegMem(asmbuf.R8, rRowbase, 8*3)
	want.MovRegMem(asmbuf.R9, rRowbase, 8*1)
	if !bytes.Equal(f.Bytes(), want.Bytes()) {
		t.Fatalf("expected one load per slot % x, got % x", want.Bytes(), f.Bytes())
	}
}

func TestCompileProducesNonEmptyFunction(t *testing.T) {
	rows, err := regalloc.New([]int{0})
	if err != nil {
		t.Fatalf("regalloc.New: %v", err)
	}
	f := asmbuf.NewFunc()
	if err := emit(f, rows, RowRef{RowID: 0}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(f.Bytes()) == 0 {
		t.Fatalf("expected emit to produce machine code")
	}
	// Every label this emitter reserves must end up placed, or
	// Finalize's resolveFixups would reject the function.
	if _, err := f.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
}
