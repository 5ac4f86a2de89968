/*
Copyright (C) 2024-2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package matcher

import (
	"fmt"
	"log"
	"unsafe"

	"github.com/docker/go-units"
	"github.com/google/uuid"

	"github.com/sliceindex/matchjit/asmbuf"
	"github.com/sliceindex/matchjit/regalloc"
)

// defaultCapacity is the match-buffer size Run allocates when the
// caller does not ask for a different one, per spec §6.
const defaultCapacity = 100

// Runner wraps a compiled matcher function together with the
// executable buffer backing it. The UUID tag has no bearing on
// semantics; it exists so logs from concurrent invocations (spec §5)
// can be correlated back to the compilation that produced each
// Runner, the same way the teacher tags JIT entry points in
// scm/jit_entry.go.
type Runner struct {
	id   uuid.UUID
	rows *regalloc.Assignment
	exec *asmbuf.Exec
}

// Compile emits, finalizes, and wraps a matcher function for expr
// evaluated over the row slots described by rows. expr must not be
// nil: see errNilExpr and SPEC_FULL.md's discussion of the no-row-case
// open question.
func Compile(rows *regalloc.Assignment, expr RowExpr) (*Runner, error) {
	if expr == nil {
		return nil, errNilExpr
	}

	f := asmbuf.NewFunc()
	if err := emit(f, rows, expr); err != nil {
		return nil, fmt.Errorf("matcher: compile: %w", err)
	}

	exec, err := f.Finalize()
	if err != nil {
		return nil, fmt.Errorf("matcher: compile: %w", err)
	}

	r := &Runner{id: uuid.New(), rows: rows, exec: exec}
	log.Printf("matcher: compiled runner %s: %s code, K=%d rows", r.id, units.BytesSize(float64(exec.Len())), rows.K())
	return r, nil
}

// ID returns the UUID this Runner was tagged with at compile time.
func (r *Runner) ID() uuid.UUID { return r.id }

// Release frees the executable buffer. Calling Run after Release is
// undefined behavior; see asmbuf.Exec.Release.
func (r *Runner) Release() error {
	return r.exec.Release()
}

// Run constructs a parameters block per spec §6, invokes the compiled
// function, and returns the matches actually recorded (bounded by
// capacity; see spec §7 on silent capacity-overflow dropping).
//
// sliceBuffers holds one base pointer per slice; rowOffsets holds one
// byte offset per row known to rows. capacity <= 0 selects
// defaultCapacity.
func (r *Runner) Run(sliceBuffers []unsafe.Pointer, iterationsPerSlice int64, rowOffsets []int64, capacity int64) ([]Record, error) {
	if len(sliceBuffers) == 0 {
		return nil, nil
	}
	if capacity <= 0 {
		capacity = defaultCapacity
	}

	matches := make([]Record, capacity)
	params := Params{
		SliceCount:         int64(len(sliceBuffers)),
		SliceBuffers:       unsafe.Pointer(&sliceBuffers[0]),
		IterationsPerSlice: iterationsPerSlice,
		Capacity:           capacity,
		Matches:            unsafe.Pointer(&matches[0]),
	}
	if len(rowOffsets) > 0 {
		params.RowOffsets = unsafe.Pointer(&rowOffsets[0])
	}

	asmbuf.CallCompiled(r.exec.EntryPointer(), unsafe.Pointer(&params))

	return matches[:params.MatchCount], nil
}
