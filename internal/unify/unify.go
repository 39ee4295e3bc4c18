// Package unify implements unification over constants, applications,
// variables, and rows (spec §4.3). Rows are unified up to label
// permutation with a shared tail, by rewriting whichever side is
// missing a label the other side has.
package unify

import (
	"github.com/sunholo/ailang-infer/internal/fresh"
	"github.com/sunholo/ailang-infer/internal/rows"
	"github.com/sunholo/ailang-infer/internal/subst"
	"github.com/sunholo/ailang-infer/internal/types"
)

// Unify returns a substitution that makes a and b syntactically equal
// under sub, or a *types.CheckError. at is attached to any error
// produced (the generator is expected to carry a source location per
// constraint; pass types.Location{} if none is available).
func Unify(freshSrc *fresh.Source, sub subst.Substitution, a, b types.Monotype, at types.Location) (subst.Substitution, error) {
	a = subst.Apply(sub, a)
	b = subst.Apply(sub, b)

	// A variable on either side unifies against the other, after the
	// occurs check and a kind check. Two identically-named variables
	// unify trivially. A user-specified variable is never widened:
	// bindVar reports annotation-too-general when it would have to be
	// bound to a non-variable monotype or to a user-specified variable
	// with a different name, and binds a fresh variable to it rather
	// than the reverse (spec §4.7).
	if av, ok := a.(types.Var); ok {
		if bv, ok := b.(types.Var); ok && av.Name == bv.Name {
			return sub, nil
		}
		return bindVar(freshSrc, sub, av, b, at)
	}
	if bv, ok := b.(types.Var); ok {
		return bindVar(freshSrc, sub, bv, a, at)
	}

	switch a := a.(type) {
	case types.Constant:
		b, ok := b.(types.Constant)
		if !ok || a.Name != b.Name {
			return nil, types.NewConstantMismatchError(a, b, at)
		}
		return sub, nil

	case types.App:
		b, ok := b.(types.App)
		if !ok || a.Op != b.Op {
			return nil, types.NewConstantMismatchError(a, b, at)
		}
		if len(a.Args) != len(b.Args) {
			return nil, types.NewArityMismatchError(a.Op, len(a.Args), len(b.Args), at)
		}
		var err error
		for i := range a.Args {
			sub, err = Unify(freshSrc, sub, a.Args[i], b.Args[i], at)
			if err != nil {
				return nil, err
			}
		}
		return sub, nil

	case types.RowEmpty:
		if _, ok := b.(types.RowEmpty); ok {
			return sub, nil
		}
		return unifyRows(freshSrc, sub, a, b, at)

	case types.RowExt:
		return unifyRows(freshSrc, sub, a, b, at)

	default:
		return nil, types.NewKindMismatchError(a.Kind(), b.Kind(), at)
	}
}

// bindVar binds v to t, enforcing the occurs check, the kind
// discipline, and the user-specified-variable restriction: a variable
// the programmer wrote in an annotation may never be widened by
// binding it to something other than itself (spec §4.7). Ordinary
// (non-user-specified) variables bind freely.
func bindVar(freshSrc *fresh.Source, sub subst.Substitution, v types.Var, t types.Monotype, at types.Location) (subst.Substitution, error) {
	if v.Kind() != t.Kind() {
		return nil, types.NewKindMismatchError(v.Kind(), t.Kind(), at)
	}
	if v.UserSpecified {
		if tv, ok := t.(types.Var); ok {
			if tv.UserSpecified && tv.Name != v.Name {
				return nil, types.NewAnnotationTooGeneralError(v.Name, t, at)
			}
			// Binding a user-specified variable to a fresh
			// (non-user) variable is how wildcard instantiation
			// works (spec §4.7): the wildcard var is bound to the
			// user's named variable, never the reverse, so the
			// stronger identity wins. We achieve that by flipping
			// the bind direction here.
			if !tv.UserSpecified {
				return bindVar(freshSrc, sub, tv, v, at)
			}
		} else {
			return nil, types.NewAnnotationTooGeneralError(v.Name, t, at)
		}
	}
	out, err := subst.Extend(sub, v.Name, t)
	if err != nil {
		return nil, types.NewOccursCheckError(v.Name, t, at)
	}
	return out, nil
}

// unifyRows implements the Rémy/Cardelli row rewrite (spec §4.3): two
// rows unify by unifying their common labels, then reconciling the
// labels unique to each side against the other side's tail. A tail of
// RowEmpty cannot accept an unmatched label and fails with
// row-label-missing — this is the mechanism behind "cannot extend a
// closed record".
func unifyRows(freshSrc *fresh.Source, sub subst.Substitution, a, b types.Monotype, at types.Location) (subst.Substitution, error) {
	la, tailA := rows.Decompose(a)
	lb, tailB := rows.Decompose(b)

	if tailA.Kind() != types.KindRow || tailB.Kind() != types.KindRow {
		return nil, types.NewKindMismatchError(types.KindRow, tailA.Kind(), at)
	}

	common, onlyA, onlyB := rows.Partition(la, lb)
	var err error
	for _, label := range common {
		sub, err = Unify(freshSrc, sub, la[label], lb[label], at)
		if err != nil {
			return nil, err
		}
	}

	aClosed := isRowEmpty(tailA)
	bClosed := isRowEmpty(tailB)

	switch {
	case aClosed && bClosed:
		if len(onlyA) > 0 {
			return nil, types.NewRowLabelMissingError(rows.LabelNames(onlyA)[0], at)
		}
		if len(onlyB) > 0 {
			return nil, types.NewRowLabelMissingError(rows.LabelNames(onlyB)[0], at)
		}
		return sub, nil

	case aClosed && !bClosed:
		if len(onlyB) > 0 {
			return nil, types.NewRowLabelMissingError(rows.LabelNames(onlyB)[0], at)
		}
		// b's tail absorbs a's unique labels and closes.
		return bindRowVar(sub, tailB.(types.Var), rows.Rebuild(onlyA, types.RowEmpty{}), at)

	case !aClosed && bClosed:
		if len(onlyA) > 0 {
			return nil, types.NewRowLabelMissingError(rows.LabelNames(onlyA)[0], at)
		}
		return bindRowVar(sub, tailA.(types.Var), rows.Rebuild(onlyB, types.RowEmpty{}), at)

	default:
		ta, tb := tailA.(types.Var), tailB.(types.Var)
		if ta.Name == tb.Name {
			if len(onlyA) > 0 || len(onlyB) > 0 {
				return nil, types.NewRowLabelMissingError("(shared tail with differing fields)", at)
			}
			return sub, nil
		}
		// Both open with distinct tails: introduce one fresh tail
		// variable for the remainder each side doesn't mention, per
		// spec §4.3's rewrite rule — bounded because the fresh
		// variable is strictly new each call, so the rewrite cannot
		// loop.
		freshTail := freshSrc.Row()
		sub, err = bindRowVar(sub, ta, rows.Rebuild(onlyB, freshTail), at)
		if err != nil {
			return nil, err
		}
		return bindRowVar(sub, tb, rows.Rebuild(onlyA, freshTail), at)
	}
}

func isRowEmpty(t types.Monotype) bool {
	_, ok := t.(types.RowEmpty)
	return ok
}

func bindRowVar(sub subst.Substitution, v types.Var, t types.Monotype, at types.Location) (subst.Substitution, error) {
	out, err := subst.Extend(sub, v.Name, t)
	if err != nil {
		return nil, types.NewOccursCheckError(v.Name, t, at)
	}
	return out, nil
}
