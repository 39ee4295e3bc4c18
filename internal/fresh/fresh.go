// Package fresh is the monotonic generator of unique
// type-variable names (spec §4.1). It is deliberately not global
// mutable state: callers own a *Source and thread it explicitly
// through one inference run, and tests construct their own Source to
// get reproducible, from-zero names (spec §5, determinism).
package fresh

import (
	"fmt"

	"github.com/sunholo/ailang-infer/internal/types"
)

// Source hands out fresh type or row variables. The zero value is
// ready to use and starts counting from zero.
type Source struct {
	counter int
}

// NewSource creates a Source starting from zero, used both by the
// module driver (one per inference run) and by tests that need
// reproducible variable names.
func NewSource() *Source {
	return &Source{}
}

// Var mints a fresh, non-user-specified variable of the given kind.
func (s *Source) Var(kind types.Kind) types.Var {
	s.counter++
	prefix := "t"
	if kind == types.KindRow {
		prefix = "r"
	}
	return types.Var{
		Name:          fmt.Sprintf("%s%d", prefix, s.counter),
		UserSpecified: false,
		VarKind:       kind,
	}
}

// Value is shorthand for Var(types.KindValue).
func (s *Source) Value() types.Var { return s.Var(types.KindValue) }

// Row is shorthand for Var(types.KindRow).
func (s *Source) Row() types.Var { return s.Var(types.KindRow) }

// Count reports how many variables this source has produced so far —
// used by tests asserting determinism across two runs seeded
// identically.
func (s *Source) Count() int { return s.counter }

// Reset rewinds the counter to zero. Module inference never calls
// this mid-run; it exists so that unrelated module inferences (or
// test cases) can each start again from t1, r2, … names (spec §5:
// "across modules, counters may reset").
func (s *Source) Reset() { s.counter = 0 }
