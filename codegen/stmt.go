package codegen

import (
	"github.com/ardnew/stx/syntax"
	"github.com/ardnew/stx/term"
)

// omitted reports whether it produces no output at statement level.
func omitted(it term.Item) bool {
	switch t := it.(type) {
	case *term.EOF, *term.Pragma:
		return true
	case *term.VariableDeclarationStatement:
		return t.Declaration.IsSyntax()
	case *term.Export:
		d, ok := t.Declaration.(*term.VariableDeclaration)

		return ok && d.IsSyntax()
	default:
		return false
	}
}

// list writes statement-level items on separate lines.
func (g *generator) list(items []term.Item) {
	first := true

	for _, it := range items {
		if omitted(it) {
			continue
		}

		if !first {
			g.newline()
		}

		first = false

		g.item(it)
	}
}

func (g *generator) item(it term.Item) {
	switch v := it.(type) {
	case *syntax.Syntax:
		g.raw(v)
	case term.Term:
		g.stmt(v)
	}
}

func (g *generator) block(items []term.Item) {
	n := 0

	for _, it := range items {
		if !omitted(it) {
			n++
		}
	}

	if n == 0 {
		g.write("{}")

		return
	}

	g.write("{")
	g.depth++
	g.newline()
	g.list(items)
	g.depth--
	g.newline()
	g.write("}")
}

func termItems[T term.Term](ts []T) []term.Item {
	out := make([]term.Item, len(ts))
	for i, t := range ts {
		out[i] = t
	}

	return out
}

//nolint:cyclop,funlen,gocyclo,maintidx
func (g *generator) stmt(t term.Term) {
	switch t := t.(type) {
	case *term.Module:
		g.list(termItems(t.Items))

	case *term.EOF, *term.Pragma:

	case *term.BlockStatement:
		g.block(t.Block.Statements)

	case *term.Block:
		g.block(t.Statements)

	case *term.ExpressionStatement:
		if startsAmbiguous(t.Expression) {
			g.write("(")
			g.expr(t.Expression, precSequence)
			g.write(")")
		} else {
			g.expr(t.Expression, precSequence)
		}

		g.write(";")

	case *term.VariableDeclarationStatement:
		g.declaration(t.Declaration, true)
		g.write(";")

	case *term.FunctionDeclaration:
		g.function(t.Name, t.IsGenerator, t.Params, t.Body)

	case *term.ClassDeclaration:
		g.class(t.Name, t.Super, t.Elements)

	case *term.ReturnStatement:
		g.write("return")

		if t.Expression != nil {
			g.write(" ")
			g.expr(t.Expression, precSequence)
		}

		g.write(";")

	case *term.IfStatement:
		g.write("if (")
		g.expr(t.Test, precSequence)
		g.write(") ")
		g.stmt(t.Consequent)

		if t.Alternate != nil {
			g.write(" else ")
			g.stmt(t.Alternate)
		}

	case *term.WhileStatement:
		g.write("while (")
		g.expr(t.Test, precSequence)
		g.write(") ")
		g.stmt(t.Body)

	case *term.DoWhileStatement:
		g.write("do ")
		g.stmt(t.Body)
		g.write(" while (")
		g.expr(t.Test, precSequence)
		g.write(");")

	case *term.ForStatement:
		g.write("for (")

		if t.Init != nil {
			g.forHead(t.Init, true)
		}

		g.write(";")

		if t.Test != nil {
			g.write(" ")
			g.expr(t.Test, precSequence)
		}

		g.write(";")

		if t.Update != nil {
			g.write(" ")
			g.expr(t.Update, precSequence)
		}

		g.write(") ")
		g.stmt(t.Body)

	case *term.ForInStatement:
		g.write("for (")
		g.forHead(t.Left, false)
		g.write(" in ")
		g.expr(t.Right, precSequence)
		g.write(") ")
		g.stmt(t.Body)

	case *term.ForOfStatement:
		g.write("for (")
		g.forHead(t.Left, false)
		g.write(" of ")
		g.expr(t.Right, precAssignment)
		g.write(") ")
		g.stmt(t.Body)

	case *term.SwitchStatement:
		g.switchHead(t.Discriminant)
		g.cases(t.Cases)
		g.switchTail()

	case *term.SwitchStatementWithDefault:
		g.switchHead(t.Discriminant)
		g.cases(t.PreDefaultCases)
		g.newline()
		g.write("default:")
		g.consequent(t.DefaultCase.Consequent)
		g.cases(t.PostDefaultCases)
		g.switchTail()

	case *term.BreakStatement:
		g.jump("break", t.Label)

	case *term.ContinueStatement:
		g.jump("continue", t.Label)

	case *term.DebuggerStatement:
		g.write("debugger;")

	case *term.WithStatement:
		g.write("with (")
		g.expr(t.Object, precSequence)
		g.write(") ")
		g.stmt(t.Body)

	case *term.TryCatchStatement:
		g.write("try ")
		g.stmt(t.Body)
		g.catch(t.CatchClause)

	case *term.TryFinallyStatement:
		g.write("try ")
		g.stmt(t.Body)

		if t.CatchClause != nil {
			g.catch(t.CatchClause)
		}

		g.write(" finally ")
		g.stmt(t.Finalizer)

	case *term.ThrowStatement:
		g.write("throw ")
		g.expr(t.Expression, precSequence)
		g.write(";")

	case *term.LabeledStatement:
		g.write(t.Label.Val(), ": ")
		g.stmt(t.Body)

	case *term.EmptyStatement:
		g.write(";")

	case *term.Import:
		g.importDecl(t)

	case *term.ImportNamespace:
		g.write("import ")

		if t.DefaultBinding != nil {
			g.pattern(t.DefaultBinding)
			g.write(", ")
		}

		g.write("* as ")
		g.pattern(t.NamespaceBinding)
		g.write(" from ", t.ModuleSpecifier.String(), ";")

	case *term.Export:
		g.write("export ")

		if d, ok := t.Declaration.(*term.VariableDeclaration); ok {
			g.declaration(d, true)
			g.write(";")
		} else {
			g.stmt(t.Declaration)
		}

	case *term.ExportDefault:
		g.write("export default ")

		switch b := t.Body.(type) {
		case *term.FunctionDeclaration, *term.ClassDeclaration:
			g.stmt(b)
		default:
			g.expr(b, precAssignment)
			g.write(";")
		}

	case *term.ExportFrom:
		g.write("export {")

		for i, s := range t.NamedExports {
			if i > 0 {
				g.write(", ")
			}

			if s.Name != nil {
				g.write(s.Name.Val(), " as ")
			}

			g.write(s.ExportedName.Val())
		}

		g.write("}")

		if t.ModuleSpecifier != nil {
			g.write(" from ", t.ModuleSpecifier.String())
		}

		g.write(";")

	case *term.ExportAllFrom:
		g.write("export * from ", t.ModuleSpecifier.String(), ";")

	default:
		g.expr(t, precSequence)
	}
}

func (g *generator) importDecl(t *term.Import) {
	g.write("import ")

	if t.DefaultBinding == nil && len(t.NamedImports) == 0 {
		g.write(t.ModuleSpecifier.String(), ";")

		return
	}

	if t.DefaultBinding != nil {
		g.pattern(t.DefaultBinding)

		if len(t.NamedImports) > 0 {
			g.write(", ")
		}
	}

	if len(t.NamedImports) > 0 {
		g.write("{")

		for i, s := range t.NamedImports {
			if i > 0 {
				g.write(", ")
			}

			if s.Name != nil {
				g.write(s.Name.Val(), " as ")
			}

			g.pattern(s.Binding)
		}

		g.write("}")
	}

	g.write(" from ", t.ModuleSpecifier.String())

	if t.ForSyntax {
		g.write(" for syntax")
	}

	g.write(";")
}

func (g *generator) declaration(d *term.VariableDeclaration, withInit bool) {
	g.write(d.Kind, " ")

	for i, decl := range d.Declarators {
		if i > 0 {
			g.write(", ")
		}

		g.pattern(decl.Binding)

		if withInit && decl.Init != nil {
			g.write(" = ")
			g.expr(decl.Init, precAssignment)
		}
	}
}

func (g *generator) forHead(t term.Term, withInit bool) {
	if d, ok := t.(*term.VariableDeclaration); ok {
		g.declaration(d, withInit)

		return
	}

	if withInit {
		g.expr(t, precSequence)
	} else {
		g.pattern(t)
	}
}

func (g *generator) switchHead(discriminant term.Term) {
	g.write("switch (")
	g.expr(discriminant, precSequence)
	g.write(") {")
	g.depth++
}

func (g *generator) switchTail() {
	g.depth--
	g.newline()
	g.write("}")
}

func (g *generator) cases(cases []*term.SwitchCase) {
	for _, c := range cases {
		g.newline()
		g.write("case ")
		g.expr(c.Test, precSequence)
		g.write(":")
		g.consequent(c.Consequent)
	}
}

func (g *generator) consequent(stmts []term.Term) {
	g.depth++

	for _, s := range stmts {
		if omitted(s) {
			continue
		}

		g.newline()
		g.stmt(s)
	}

	g.depth--
}

func (g *generator) jump(keyword string, label *syntax.Syntax) {
	g.write(keyword)

	if label != nil {
		g.write(" ", label.Val())
	}

	g.write(";")
}

func (g *generator) catch(c *term.CatchClause) {
	g.write(" catch (")
	g.pattern(c.Binding)
	g.write(") ")
	g.stmt(c.Body)
}

func (g *generator) function(
	name *term.BindingIdentifier,
	generator bool,
	params *term.FormalParameters,
	body *term.FunctionBody,
) {
	g.write("function")

	if generator {
		g.write("*")
	}

	if name != nil {
		g.write(" ")
		g.pattern(name)
	}

	g.params(params)
	g.write(" ")
	g.body(body)
}

func (g *generator) params(p *term.FormalParameters) {
	g.write("(")

	if p != nil {
		for i, it := range p.Items {
			if i > 0 {
				g.write(", ")
			}

			g.pattern(it)
		}

		if p.Rest != nil {
			if len(p.Items) > 0 {
				g.write(", ")
			}

			g.write("...")
			g.pattern(p.Rest)
		}
	}

	g.write(")")
}

func (g *generator) body(b *term.FunctionBody) {
	if b == nil {
		g.write("{}")

		return
	}

	g.block(b.Statements)
}

func (g *generator) class(
	name *term.BindingIdentifier,
	super term.Term,
	elements []*term.ClassElement,
) {
	g.write("class")

	if name != nil {
		g.write(" ")
		g.pattern(name)
	}

	if super != nil {
		g.write(" extends ")
		g.expr(super, precCall)
	}

	if len(elements) == 0 {
		g.write(" {}")

		return
	}

	g.write(" {")
	g.depth++

	for _, el := range elements {
		g.newline()

		if el.IsStatic {
			g.write("static ")
		}

		g.method(el.Method)
	}

	g.depth--
	g.newline()
	g.write("}")
}

// method writes a method, getter, or setter definition.
func (g *generator) method(t term.Term) {
	switch m := t.(type) {
	case *term.Method:
		if m.IsGenerator {
			g.write("*")
		}

		g.propertyName(m.Name)
		g.params(m.Params)
		g.write(" ")
		g.body(m.Body)

	case *term.Getter:
		g.write("get ")
		g.propertyName(m.Name)
		g.write("() ")
		g.body(m.Body)

	case *term.Setter:
		g.write("set ")
		g.propertyName(m.Name)
		g.write("(")
		g.pattern(m.Param)
		g.write(") ")
		g.body(m.Body)

	default:
		g.unsupported(t)
	}
}
