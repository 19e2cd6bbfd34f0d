// Package unpairedrandom flags callables that draw pseudo-random values
// without a reachable seed initialization. On-chain randomness drawn
// from an unseeded generator is predictable by validators.
package unpairedrandom

import (
	"context"
	"fmt"

	"github.com/augurlint/augur/pkg/ast"
	"github.com/augurlint/augur/pkg/detector"
	"github.com/augurlint/augur/pkg/ir"
	"github.com/augurlint/augur/pkg/models"
)

// Detector checks that every use of the pseudo-random generator is
// reachable from a callable that seeds it.
type Detector struct{}

// New creates the detector.
func New() *Detector { return &Detector{} }

var _ detector.Detector = (*Detector)(nil)

func (d *Detector) ID() string              { return "unpaired-random" }
func (d *Detector) Sharing() models.Sharing { return models.ShareUnion }

func (d *Detector) Check(_ context.Context, cu *ir.CompilationUnit) ([]models.Warning, error) {
	g := cu.CallGraph
	if g == nil {
		return nil, nil
	}

	var seeds, uses []*ir.CGNode
	for _, n := range g.Nodes() {
		if n.Effects.Has(ir.EffectPrgSeedInit) {
			seeds = append(seeds, n)
		}
		if n.Effects.Has(ir.EffectPrgUse) {
			uses = append(uses, n)
		}
	}

	var warnings []models.Warning
	for _, use := range uses {
		seeded := false
		for _, seed := range seeds {
			ok, err := g.Reachable(seed.ID, use.ID)
			if err != nil {
				return nil, err
			}
			if ok {
				seeded = true
				break
			}
		}
		if seeded {
			continue
		}
		warnings = append(warnings, models.Warning{
			Detector: d.ID(),
			Severity: models.SeverityHigh,
			Sharing:  d.Sharing(),
			Message:  fmt.Sprintf("%s draws random values but no seeding callable reaches it", use.Name),
			Location: nodeLocation(cu, use),
		})
	}
	return warnings, nil
}

func nodeLocation(cu *ir.CompilationUnit, n *ir.CGNode) ast.Location {
	if decl, ok := n.DeclID(); ok {
		if loc, ok := cu.AST.Pos(decl); ok {
			return loc
		}
	}
	return ast.Location{}
}
