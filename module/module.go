package module

import (
	"maps"
	"slices"

	"github.com/ardnew/stx/syntax"
	"github.com/ardnew/stx/term"
)

// Module is a compiled module. It is never modified after compilation.
type Module struct {
	// Path is the resolved path the module was loaded from.
	Path string

	// Phase is the phase the module was compiled at.
	Phase syntax.Phase

	// Items holds every run-time term of the module in source order.
	Items []term.Term

	Imports []term.Term
	Exports []term.Term
	Pragmas []*term.Pragma
	Body    []term.Term

	names       map[string]*syntax.Syntax
	fingerprint uint64
}

// ExportedName returns the identifier that declares the export name.
func (m *Module) ExportedName(name string) (*syntax.Syntax, bool) {
	s, ok := m.names[name]

	return s, ok
}

// ExportNames returns the exported names in sorted order.
func (m *Module) ExportNames() []string {
	return slices.Sorted(maps.Keys(m.names))
}

// partition sorts the items of m into their buckets.
func (m *Module) partition() {
	for _, t := range m.Items {
		switch t := t.(type) {
		case *term.Import, *term.ImportNamespace:
			m.Imports = append(m.Imports, t)

		case *term.Export, *term.ExportDefault, *term.ExportFrom, *term.ExportAllFrom:
			m.Exports = append(m.Exports, t)

		case *term.Pragma:
			m.Pragmas = append(m.Pragmas, t)

		default:
			m.Body = append(m.Body, t)
		}
	}
}

// declare records the local names exported by t. Re-exports of other
// modules are handled by the orchestrator.
func (m *Module) declare(t term.Term) {
	switch t := t.(type) {
	case *term.Export:
		switch d := t.Declaration.(type) {
		case *term.VariableDeclaration:
			for _, dc := range d.Declarators {
				for _, name := range term.BoundNames(dc.Binding) {
					m.names[name.Val()] = name
				}
			}

		case *term.FunctionDeclaration:
			if d.Name != nil {
				m.names[d.Name.Name.Val()] = d.Name.Name
			}

		case *term.ClassDeclaration:
			if d.Name != nil {
				m.names[d.Name.Name.Val()] = d.Name.Name
			}
		}

	case *term.ExportDefault:
		switch d := t.Body.(type) {
		case *term.FunctionDeclaration:
			if d.Name != nil {
				m.names[defaultExport] = d.Name.Name
			}

		case *term.ClassDeclaration:
			if d.Name != nil {
				m.names[defaultExport] = d.Name.Name
			}
		}

	case *term.ExportFrom:
		if t.ModuleSpecifier != nil {
			return
		}

		for _, spec := range t.NamedExports {
			local := spec.Name
			if local == nil {
				local = spec.ExportedName
			}

			m.names[spec.ExportedName.Val()] = local
		}
	}
}

// defaultExport is the name a default export is imported by.
const defaultExport = "_default"
