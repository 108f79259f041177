package blueprint

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/imamik/akslab/internal/arm"
)

// Layer groups modules by dependency depth.
type Layer int

const (
	Foundation Layer = iota
	Compute
	Monitoring
	Governance
)

func (l Layer) String() string {
	switch l {
	case Foundation:
		return "foundation"
	case Compute:
		return "compute"
	case Monitoring:
		return "monitoring"
	case Governance:
		return "governance"
	default:
		return fmt.Sprintf("layer(%d)", int(l))
	}
}

// Scope is where a module's resources are deployed.
type Scope int

const (
	ScopeResourceGroup Scope = iota
	ScopeSubscription
)

func (s Scope) String() string {
	if s == ScopeSubscription {
		return "subscription"
	}
	return "resource-group"
}

// Input wires a module parameter to another module's output.
type Input struct {
	Param  string
	Module string
	Output string
}

// Module is one nested deployment.
type Module struct {
	Name  string
	Layer Layer
	Step  int
	Scope Scope
	// Condition names a bool main-template parameter that gates the module.
	Condition string
	// Params are main-template parameters passed through unchanged.
	Params []string
	Inputs []Input
	// After lists modules that must finish first without passing outputs.
	After []string
	// Template builds the module's inner template. Its parameters must be
	// exactly Params plus the Param of every Input.
	Template func() *arm.Template
}

// Outputs returns the output names declared by the module template.
func (m *Module) Outputs() []string {
	return slices.Sorted(maps.Keys(m.Template().Outputs))
}

func (m *Module) before(o *Module) bool {
	if m.Layer != o.Layer {
		return m.Layer < o.Layer
	}
	return m.Step < o.Step
}

// Graph is a validated set of modules.
type Graph struct {
	modules []*Module
	byName  map[string]*Module
}

// Validation errors.
var (
	ErrDuplicateModule = errors.New("duplicate module")
	ErrUnknownModule   = errors.New("unknown module")
	ErrUnknownOutput   = errors.New("unknown output")
	ErrLayerViolation  = errors.New("module references a module that is not strictly earlier")
	ErrCondition       = errors.New("module references a conditional module it does not share the condition with")
	ErrParamMismatch   = errors.New("module parameters do not match its template")
)

// NewGraph builds and validates a graph.
func NewGraph(modules ...*Module) (*Graph, error) {
	g := &Graph{byName: make(map[string]*Module, len(modules))}
	for _, m := range modules {
		if _, ok := g.byName[m.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateModule, m.Name)
		}
		g.byName[m.Name] = m
		g.modules = append(g.modules, m)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Module returns the named module.
func (g *Graph) Module(name string) (*Module, bool) {
	m, ok := g.byName[name]
	return m, ok
}

// Validate checks every reference: the producer must exist, declare the
// output, be strictly earlier, and share any condition.
func (g *Graph) Validate() error {
	var errs []error
	for _, m := range g.modules {
		tmpl := m.Template()
		want := slices.Clone(m.Params)
		for _, in := range m.Inputs {
			want = append(want, in.Param)

			src, ok := g.byName[in.Module]
			if !ok {
				errs = append(errs, fmt.Errorf("%w: %s references %s", ErrUnknownModule, m.Name, in.Module))
				continue
			}
			if _, ok := src.Template().Outputs[in.Output]; !ok {
				errs = append(errs, fmt.Errorf("%w: %s references %s.%s", ErrUnknownOutput, m.Name, in.Module, in.Output))
			}
			if !src.before(m) {
				errs = append(errs, fmt.Errorf("%w: %s (%s/%d) references %s (%s/%d)",
					ErrLayerViolation, m.Name, m.Layer, m.Step, src.Name, src.Layer, src.Step))
			}
			if src.Condition != "" && src.Condition != m.Condition {
				errs = append(errs, fmt.Errorf("%w: %s references %s (condition %s)", ErrCondition, m.Name, src.Name, src.Condition))
			}
		}
		for _, name := range m.After {
			src, ok := g.byName[name]
			if !ok {
				errs = append(errs, fmt.Errorf("%w: %s runs after %s", ErrUnknownModule, m.Name, name))
				continue
			}
			if !src.before(m) {
				errs = append(errs, fmt.Errorf("%w: %s (%s/%d) runs after %s (%s/%d)",
					ErrLayerViolation, m.Name, m.Layer, m.Step, src.Name, src.Layer, src.Step))
			}
			if src.Condition != "" && src.Condition != m.Condition {
				errs = append(errs, fmt.Errorf("%w: %s runs after %s (condition %s)", ErrCondition, m.Name, src.Name, src.Condition))
			}
		}
		slices.Sort(want)
		want = slices.Compact(want)
		got := slices.Sorted(maps.Keys(tmpl.Parameters))
		if !slices.Equal(want, got) {
			errs = append(errs, fmt.Errorf("%w: %s declares %v, wired %v", ErrParamMismatch, m.Name, got, want))
		}
	}
	return errors.Join(errs...)
}

// Order returns the modules in topological order. Among modules that are
// ready at the same time, lower layers and steps come first, then
// declaration order.
func (g *Graph) Order() []*Module {
	indeg := make(map[string]int, len(g.modules))
	dependents := make(map[string][]*Module)
	for _, m := range g.modules {
		for _, dep := range g.dependencies(m) {
			indeg[m.Name]++
			dependents[dep.Name] = append(dependents[dep.Name], m)
		}
	}

	index := make(map[string]int, len(g.modules))
	for i, m := range g.modules {
		index[m.Name] = i
	}
	less := func(a, b *Module) int {
		return cmp.Or(
			cmp.Compare(a.Layer, b.Layer),
			cmp.Compare(a.Step, b.Step),
			cmp.Compare(index[a.Name], index[b.Name]),
		)
	}

	var ready []*Module
	for _, m := range g.modules {
		if indeg[m.Name] == 0 {
			ready = append(ready, m)
		}
	}

	order := make([]*Module, 0, len(g.modules))
	for len(ready) > 0 {
		slices.SortFunc(ready, less)
		m := ready[0]
		ready = ready[1:]
		order = append(order, m)
		for _, d := range dependents[m.Name] {
			indeg[d.Name]--
			if indeg[d.Name] == 0 {
				ready = append(ready, d)
			}
		}
	}
	return order
}

// dependencies returns the distinct modules m consumes outputs from or
// runs after, in declaration order.
func (g *Graph) dependencies(m *Module) []*Module {
	var deps []*Module
	add := func(name string) {
		src := g.byName[name]
		if src != nil && !slices.Contains(deps, src) {
			deps = append(deps, src)
		}
	}
	for _, in := range m.Inputs {
		add(in.Module)
	}
	for _, name := range m.After {
		add(name)
	}
	return deps
}
