package expand

import (
	"context"

	"github.com/ardnew/stx/term"
)

// Compiler expands a stream at one phase: the token expander registers
// declarations and runs macros, then the term expander finishes each
// resulting term.
type Compiler struct {
	ctx *Context
}

// NewCompiler returns a compiler over ctx.
func NewCompiler(ctx *Context) *Compiler { return &Compiler{ctx: ctx} }

// Compile returns the fully expanded terms of items.
func (c *Compiler) Compile(goctx context.Context, items []term.Item) ([]term.Term, error) {
	terms, err := NewTokenExpander(c.ctx).Expand(goctx, items)
	if err != nil {
		return nil, err
	}

	x := NewTermExpander(c.ctx)

	out := make([]term.Term, 0, len(terms))

	for _, t := range terms {
		e, err := x.Expand(goctx, t)
		if err != nil {
			return nil, err
		}

		out = append(out, e)
	}

	return out, nil
}
