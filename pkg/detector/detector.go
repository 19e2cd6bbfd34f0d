// Package detector defines the plugin surface of the engine: detectors
// report warnings over a compilation unit, tools produce free-form
// output. Implementations live in subpackages and receive a read-only
// unit, so they can run concurrently without coordination.
package detector

import (
	"context"
	"fmt"

	"github.com/augurlint/augur/pkg/ir"
	"github.com/augurlint/augur/pkg/models"
)

// Detector inspects one compilation unit and returns warnings. Check
// must not retain or mutate the unit.
type Detector interface {
	ID() string
	Sharing() models.Sharing
	Check(ctx context.Context, cu *ir.CompilationUnit) ([]models.Warning, error)
}

// Tool produces an artifact from one compilation unit instead of
// warnings (graph dumps, statistics).
type Tool interface {
	ID() string
	Run(ctx context.Context, cu *ir.CompilationUnit) (models.ToolOutput, error)
}

// FactsDependent is implemented by detectors that need the external
// fact engine. When the engine binary is unavailable the driver skips
// them instead of failing the run.
type FactsDependent interface {
	RequiresFacts() bool
}

// Registry holds the detectors and tools enabled for a run. Registering
// the same id twice is a configuration mistake, reported as a plain
// error.
type Registry struct {
	detectors []Detector
	tools     []Tool
	ids       map[string]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ids: make(map[string]bool)}
}

// RegisterDetector adds a detector, rejecting duplicate ids.
func (r *Registry) RegisterDetector(d Detector) error {
	if r.ids[d.ID()] {
		return fmt.Errorf("detector %q configured twice", d.ID())
	}
	r.ids[d.ID()] = true
	r.detectors = append(r.detectors, d)
	return nil
}

// RegisterTool adds a tool, rejecting duplicate ids.
func (r *Registry) RegisterTool(t Tool) error {
	if r.ids[t.ID()] {
		return fmt.Errorf("tool %q configured twice", t.ID())
	}
	r.ids[t.ID()] = true
	r.tools = append(r.tools, t)
	return nil
}

// Detectors returns registered detectors in registration order.
func (r *Registry) Detectors() []Detector { return r.detectors }

// Tools returns registered tools in registration order.
func (r *Registry) Tools() []Tool { return r.tools }
