package matcher

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/sliceindex/matchjit/asmbuf"
	"github.com/sliceindex/matchjit/regalloc"
)

const backPointerMarker = 0xDEADBEEF

// buildSlice constructs a minimal slice buffer: 8 bytes of
// back-pointer (an opaque value the matcher copies verbatim into
// Record.SlicePtr without ever dereferencing, per spec §3/§4.4)
// followed by one row's worth of quadwords.
func buildSlice(rowQuadwords ...uint64) []byte {
	return buildSliceWithBackPointer(backPointerMarker, rowQuadwords...)
}

// buildSliceWithBackPointer is buildSlice with an explicit back-pointer
// value, so multi-slice tests can tell which slice a match came from.
func buildSliceWithBackPointer(backPointer uint64, rowQuadwords ...uint64) []byte {
	buf := make([]byte, 8+8*len(rowQuadwords))
	binary.LittleEndian.PutUint64(buf[0:8], backPointer)
	for i, q := range rowQuadwords {
		binary.LittleEndian.PutUint64(buf[8+8*i:16+8*i], q)
	}
	return buf
}

func TestCompileNilExprRejected(t *testing.T) {
	rows, err := regalloc.New([]int{0})
	if err != nil {
		t.Fatalf("regalloc.New: %v", err)
	}
	if _, err := Compile(rows, nil); err == nil {
		t.Fatalf("expected Compile(rows, nil) to fail")
	}
}

func TestSingleRowSingleMatch(t *testing.T) {
	rows, err := regalloc.New([]int{0})
	if err != nil {
		t.Fatalf("regalloc.New: %v", err)
	}
	runner, err := Compile(rows, RowRef{RowID: 0})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	defer runner.Release()

	buf := buildSlice(1 << 3) // bit 3 set: document index 3
	sliceBuffers := []unsafe.Pointer{unsafe.Pointer(&buf[0])}
	rowOffsets := []int64{8}

	matches, err := runner.Run(sliceBuffers, 1, rowOffsets, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].DocIndex != 3 {
		t.Fatalf("expected doc index 3, got %d", matches[0].DocIndex)
	}
	if uintptr(matches[0].SlicePtr) != backPointerMarker {
		t.Fatalf("expected slice pointer to round-trip, got %#x", uintptr(matches[0].SlicePtr))
	}
}

func TestAndOfTwoRowsNarrowsMatches(t *testing.T) {
	rows, err := regalloc.New([]int{0, 1})
	if err != nil {
		t.Fatalf("regalloc.New: %v", err)
	}
	expr := And{Children: []RowExpr{RowRef{RowID: 0}, RowRef{RowID: 1}}}
	runner, err := Compile(rows, expr)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	defer runner.Release()

	buf := make([]byte, 8+16) // backpointer + 2 row quadwords laid out contiguously
	binary.LittleEndian.PutUint64(buf[0:8], backPointerMarker)
	binary.LittleEndian.PutUint64(buf[8:16], 0b0110)  // row 0: bits 1,2
	binary.LittleEndian.PutUint64(buf[16:24], 0b0011) // row 1: bits 0,1
	sliceBuffers := []unsafe.Pointer{unsafe.Pointer(&buf[0])}
	rowOffsets := []int64{8, 16}

	matches, err := runner.Run(sliceBuffers, 1, rowOffsets, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match (bit 1 common to both rows), got %d", len(matches))
	}
	if matches[0].DocIndex != 1 {
		t.Fatalf("expected doc index 1, got %d", matches[0].DocIndex)
	}
}

func TestNoRowsNoMatches(t *testing.T) {
	rows, err := regalloc.New(nil)
	if err != nil {
		t.Fatalf("regalloc.New(nil): %v", err)
	}
	runner, err := Compile(rows, Const{Value: 0})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	defer runner.Release()

	buf := buildSlice(0xFFFFFFFFFFFFFFFF)
	sliceBuffers := []unsafe.Pointer{unsafe.Pointer(&buf[0])}

	matches, err := runner.Run(sliceBuffers, 1, nil, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches for a constant-zero expression, got %d", len(matches))
	}
}

func TestCapacityBoundsMatches(t *testing.T) {
	rows, err := regalloc.New([]int{0})
	if err != nil {
		t.Fatalf("regalloc.New: %v", err)
	}
	runner, err := Compile(rows, RowRef{RowID: 0})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	defer runner.Release()

	buf := buildSlice(0xFFFFFFFFFFFFFFFF) // all 64 bits set
	sliceBuffers := []unsafe.Pointer{unsafe.Pointer(&buf[0])}
	rowOffsets := []int64{8}

	matches, err := runner.Run(sliceBuffers, 1, rowOffsets, 5)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(matches) != 5 {
		t.Fatalf("expected exactly capacity (5) matches, got %d", len(matches))
	}
}

// TestMultiSliceRunPreservesInputOrder exercises spec §8's "slices
// appear in input order" property across more than one slice buffer,
// distinguishing slices by a unique back-pointer each rather than
// relying on a single shared marker.
func TestMultiSliceRunPreservesInputOrder(t *testing.T) {
	rows, err := regalloc.New([]int{0})
	if err != nil {
		t.Fatalf("regalloc.New: %v", err)
	}
	runner, err := Compile(rows, RowRef{RowID: 0})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	defer runner.Release()

	const firstSlicePtr, secondSlicePtr = 0x1000, 0x2000
	buf1 := buildSliceWithBackPointer(firstSlicePtr, 1<<2)  // doc 2
	buf2 := buildSliceWithBackPointer(secondSlicePtr, 1<<5) // doc 5
	sliceBuffers := []unsafe.Pointer{unsafe.Pointer(&buf1[0]), unsafe.Pointer(&buf2[0])}
	rowOffsets := []int64{8}

	matches, err := runner.Run(sliceBuffers, 1, rowOffsets, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if uintptr(matches[0].SlicePtr) != firstSlicePtr || matches[0].DocIndex != 2 {
		t.Fatalf("expected first match from slice 0 doc 2, got ptr %#x doc %d", uintptr(matches[0].SlicePtr), matches[0].DocIndex)
	}
	if uintptr(matches[1].SlicePtr) != secondSlicePtr || matches[1].DocIndex != 5 {
		t.Fatalf("expected second match from slice 1 doc 5, got ptr %#x doc %d", uintptr(matches[1].SlicePtr), matches[1].DocIndex)
	}
}

// TestMultiIterationRunRecordsEveryQuadword exercises
// iterationsPerSlice > 1, so the inner loop actually repeats and the
// drain runs more than once per slice rather than exactly once.
func TestMultiIterationRunRecordsEveryQuadword(t *testing.T) {
	rows, err := regalloc.New([]int{0})
	if err != nil {
		t.Fatalf("regalloc.New: %v", err)
	}
	runner, err := Compile(rows, RowRef{RowID: 0})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	defer runner.Release()

	// Two consecutive quadwords for row 0: bit 4 set in the first,
	// bit 9 set in the second.
	buf := buildSlice(1<<4, 1<<9)
	sliceBuffers := []unsafe.Pointer{unsafe.Pointer(&buf[0])}
	rowOffsets := []int64{8}

	matches, err := runner.Run(sliceBuffers, 2, rowOffsets, 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches (one per quadword), got %d", len(matches))
	}
	for _, m := range matches {
		if uintptr(m.SlicePtr) != backPointerMarker {
			t.Fatalf("expected slice pointer to round-trip on every match, got %#x", uintptr(m.SlicePtr))
		}
	}
	if matches[0].DocIndex != 4 {
		t.Fatalf("expected first quadword's match at doc 4, got %d", matches[0].DocIndex)
	}
	if matches[1].DocIndex != 9 {
		t.Fatalf("expected second quadword's match at doc 9, got %d", matches[1].DocIndex)
	}
}

// TestCompiledFunctionAdvancesSliceCursorAndZeroesCount drives the
// compiled function directly (bypassing Runner.Run, which never
// exposes its local Params back to the caller) to check spec §8's
// "decrements sliceCount to zero and advances sliceBuffers by
// 8 * originalSliceCount bytes" property.
func TestCompiledFunctionAdvancesSliceCursorAndZeroesCount(t *testing.T) {
	rows, err := regalloc.New([]int{0})
	if err != nil {
		t.Fatalf("regalloc.New: %v", err)
	}
	runner, err := Compile(rows, RowRef{RowID: 0})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	defer runner.Release()

	buf1 := buildSlice(0)
	buf2 := buildSlice(0)
	sliceBuffers := []unsafe.Pointer{unsafe.Pointer(&buf1[0]), unsafe.Pointer(&buf2[0])}
	rowOffsets := []int64{8}
	matches := make([]Record, 4)

	params := Params{
		SliceCount:         int64(len(sliceBuffers)),
		SliceBuffers:       unsafe.Pointer(&sliceBuffers[0]),
		IterationsPerSlice: 1,
		RowOffsets:         unsafe.Pointer(&rowOffsets[0]),
		Capacity:           int64(len(matches)),
		Matches:            unsafe.Pointer(&matches[0]),
	}

	asmbuf.CallCompiled(runner.exec.EntryPointer(), unsafe.Pointer(&params))

	if params.SliceCount != 0 {
		t.Fatalf("expected sliceCount decremented to 0, got %d", params.SliceCount)
	}
	wantAdvance := uintptr(8 * len(sliceBuffers))
	gotAdvance := uintptr(params.SliceBuffers) - uintptr(unsafe.Pointer(&sliceBuffers[0]))
	if gotAdvance != wantAdvance {
		t.Fatalf("expected sliceBuffers to advance by %d bytes, got %d", wantAdvance, gotAdvance)
	}
}
