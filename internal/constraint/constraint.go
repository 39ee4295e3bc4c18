// Package constraint defines the four constraint kinds the generator
// emits and the Assumption carrier for free-variable uses (spec §3,
// §4.5).
package constraint

import (
	"fmt"

	"github.com/sunholo/ailang-infer/internal/types"
)

// Constraint is one of Equal, EffectEqual, ImplicitInstance, or
// ExplicitInstance.
type Constraint interface {
	constraint()
	At() types.Location
	String() string
}

// Equal demands that two monotypes (of kind value, in the ordinary
// case — but row-kind equalities route through here too, e.g. from
// EffectEqual's reduction) unify.
type Equal struct {
	A, B     types.Monotype
	Location types.Location
}

func (Equal) constraint()        {}
func (e Equal) At() types.Location { return e.Location }
func (e Equal) String() string {
	return fmt.Sprintf("%s ~ %s", types.Print(e.A), types.Print(e.B))
}

// EffectEqual demands that an expression node's effect row equal a
// particular effect-kind monotype. It is always solvable by reducing
// to Equal on the two row types (spec §4.6).
type EffectEqual struct {
	NodeEffect types.Monotype
	Target     types.Monotype
	Location   types.Location
}

func (EffectEqual) constraint()        {}
func (e EffectEqual) At() types.Location { return e.Location }
func (e EffectEqual) String() string {
	return fmt.Sprintf("effect(%s) ~ %s", types.Print(e.NodeEffect), types.Print(e.Target))
}

// ImplicitInstance demands that Use be an instance of the scheme
// obtained by generalizing Template against Monovars — the
// let-polymorphism constraint (spec §4.5, §4.9). Monovars is the
// *name set* of the monomorphic type variables live at the point this
// constraint was generated; it is captured by value since the
// monomorphic set at generation time, not at solving time, is what
// must be excluded from generalization.
type ImplicitInstance struct {
	Use      types.Monotype
	Monovars map[string]bool
	Template types.Monotype
	Location types.Location
}

func (ImplicitInstance) constraint()        {}
func (c ImplicitInstance) At() types.Location { return c.Location }
func (c ImplicitInstance) String() string {
	return fmt.Sprintf("%s ≤ gen(%s)", types.Print(c.Use), types.Print(c.Template))
}

// ExplicitInstance demands that Use be an instance of an
// already-known scheme — a primitive or an imported external binding
// (spec §4.5, §4.9).
type ExplicitInstance struct {
	Use      types.Monotype
	Scheme   *types.Scheme
	Location types.Location
}

func (ExplicitInstance) constraint()        {}
func (c ExplicitInstance) At() types.Location { return c.Location }
func (c ExplicitInstance) String() string {
	return fmt.Sprintf("%s ≤ %s", types.Print(c.Use), types.PrintScheme(c.Scheme))
}

// Assumption represents a free variable use awaiting resolution: its
// name, the fresh type and effect the generator minted for that use,
// and where it occurred. The module driver later converts every
// Assumption into an Equal (parameter binding), ImplicitInstance
// (internal let/module binding), or ExplicitInstance (external
// binding) constraint, or reports it as unknown (spec §3, §4.9).
type Assumption struct {
	Name     string
	Type     types.Monotype
	Effect   types.Monotype
	Location types.Location
}
