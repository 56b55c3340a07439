package expand

import (
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/stx/syntax"
)

// Transform describes what an identifier's binding means to the
// enforester.
type Transform interface{ isTransform() }

// Form identifies a core language form.
type Form uint8

//nolint:revive
const (
	FormNone Form = iota
	FormFunction
	FormVar
	FormLet
	FormConst
	FormSyntax
	FormSyntaxrec
	FormSyntaxQuote
	FormReturn
	FormWhile
	FormIf
	FormFor
	FormSwitch
	FormBreak
	FormContinue
	FormDo
	FormDebugger
	FormWith
	FormTry
	FormThrow
	FormNew
	FormThis
	FormClass
	FormYield
)

type (
	// FormTransform binds a core language form.
	FormTransform struct{ Form Form }

	// VarBindingTransform binds a run-time variable. ID is the identifier
	// in its declaring position.
	VarBindingTransform struct{ ID *syntax.Syntax }

	// CompiletimeTransform binds a compile-time value, usually a [Macro].
	CompiletimeTransform struct{ Value any }
)

func (FormTransform) isTransform()        {}
func (VarBindingTransform) isTransform()  {}
func (CompiletimeTransform) isTransform() {}

//nolint:gochecknoglobals
var baseForms = map[string]Form{
	"function":    FormFunction,
	"var":         FormVar,
	"let":         FormLet,
	"const":       FormConst,
	"syntax":      FormSyntax,
	"syntaxrec":   FormSyntaxrec,
	"syntaxQuote": FormSyntaxQuote,
	"return":      FormReturn,
	"while":       FormWhile,
	"if":          FormIf,
	"for":         FormFor,
	"switch":      FormSwitch,
	"break":       FormBreak,
	"continue":    FormContinue,
	"do":          FormDo,
	"debugger":    FormDebugger,
	"with":        FormWith,
	"try":         FormTry,
	"throw":       FormThrow,
	"new":         FormNew,
	"this":        FormThis,
	"class":       FormClass,
	"yield":       FormYield,
}

// Env maps bindings to transforms. A new Env holds the core forms under
// their free bindings.
type Env struct {
	mu sync.RWMutex
	m  map[string]Transform
}

// NewEnv returns an environment holding only the core forms.
func NewEnv() *Env {
	e := &Env{m: make(map[string]Transform, len(baseForms))}
	for name, form := range baseForms {
		e.m[syntax.Free(name).String()] = FormTransform{Form: form}
	}

	return e
}

// Get returns the transform bound to b.
func (e *Env) Get(b syntax.Binding) (Transform, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, ok := e.m[b.String()]

	return t, ok
}

// Set binds b to t.
func (e *Env) Set(b syntax.Binding, t Transform) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.m[b.String()] = t
}

// MacroNames returns the sorted, distinct source names of every
// compile-time binding in e.
func (e *Env) MacroNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var names []string

	for k, t := range e.m {
		if _, ok := t.(CompiletimeTransform); ok {
			name, _, _ := strings.Cut(k, "#")
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return slices.Compact(names)
}
