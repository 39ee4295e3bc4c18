// Package rows implements the row algebra's utility operations —
// insertion, decomposition, and rebuilding — that the unifier composes
// into the Rémy/Cardelli-style rewrite rule for extensible
// records and effects (spec §4.3, "Row unification").
package rows

import (
	"sort"

	"github.com/sunholo/ailang-infer/internal/types"
)

// Insert prepends one labeled field onto a row tail.
func Insert(label string, fieldType types.Monotype, tail types.Monotype) types.RowExt {
	return types.RowExt{Label: label, FieldType: fieldType, Tail: tail}
}

// Decompose flattens a chain of RowExt nodes into a label->type map
// plus the non-RowExt tail at the end of the chain: types.RowEmpty{}
// for a closed row, or a types.Var (kind row) for an open one. It
// panics if row is not of kind row — callers must check the kind
// discipline before decomposing.
func Decompose(row types.Monotype) (map[string]types.Monotype, types.Monotype) {
	labels := make(map[string]types.Monotype)
	for {
		switch r := row.(type) {
		case types.RowExt:
			// First occurrence of a label wins: row syntax rejects
			// duplicate labels at parse time (spec §4.5), so any
			// repeat here can only come from an internal rewrite and
			// must not clobber the outer binding.
			if _, seen := labels[r.Label]; !seen {
				labels[r.Label] = r.FieldType
			}
			row = r.Tail
		case types.RowEmpty:
			return labels, types.RowEmpty{}
		default:
			return labels, row
		}
	}
}

// Rebuild constructs a canonical RowExt chain from a label map and a
// tail, with labels ordered by name so that two structurally equal
// rows always rebuild to the same chain (spec §3, row canonicity).
func Rebuild(labels map[string]types.Monotype, tail types.Monotype) types.Monotype {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	row := tail
	for i := len(keys) - 1; i >= 0; i-- {
		row = types.RowExt{Label: keys[i], FieldType: labels[keys[i]], Tail: row}
	}
	return row
}

// Partition splits two decomposed label sets into the labels common to
// both and the labels unique to each side.
func Partition(a, b map[string]types.Monotype) (common []string, onlyA, onlyB map[string]types.Monotype) {
	onlyA = make(map[string]types.Monotype)
	onlyB = make(map[string]types.Monotype)
	for label, t := range a {
		if _, ok := b[label]; ok {
			common = append(common, label)
		} else {
			onlyA[label] = t
		}
	}
	for label, t := range b {
		if _, ok := a[label]; !ok {
			onlyB[label] = t
		}
	}
	sort.Strings(common)
	return common, onlyA, onlyB
}

// LabelNames returns the sorted label names of a decomposed row, used
// to phrase "row-label-missing" errors deterministically.
func LabelNames(labels map[string]types.Monotype) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
