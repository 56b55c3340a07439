package expand

import (
	"github.com/ardnew/stx/syntax"
	"github.com/ardnew/stx/term"
)

func (e *Enforester) enforestModuleItem() (term.Term, error) {
	head := e.peek(0)

	switch {
	case isKeyword(head, "import"):
		e.advance()

		return e.enforestImportDeclaration()

	case isKeyword(head, "export"):
		e.advance()

		return e.enforestExportDeclaration()

	case isIdentifier(head, "#") && isIdentifier(e.peek(1), "lang"):
		return e.enforestPragma()
	}

	return e.enforestStatement()
}

// enforestPragma parses # lang "path".
func (e *Enforester) enforestPragma() (term.Term, error) {
	e.advance()
	e.advance()

	path, err := e.matchStringLiteral()
	if err != nil {
		return nil, err
	}

	e.consumeSemicolon()

	return &term.Pragma{Kind: "lang", Items: []*syntax.Syntax{path}}, nil
}

func (e *Enforester) enforestImportDeclaration() (term.Term, error) {
	head := e.peek(0)

	if isString(head) {
		spec := stxOf(e.advance())
		e.consumeSemicolon()

		return &term.Import{ModuleSpecifier: spec}, nil
	}

	var def *term.BindingIdentifier

	if isIdentifier(head) || isKeyword(head) {
		id, err := e.enforestBindingIdentifier()
		if err != nil {
			return nil, err
		}

		def = id

		if !isPunctuator(e.peek(0), ",") {
			spec, forSyntax, err := e.enforestFromClause()
			if err != nil {
				return nil, err
			}

			return &term.Import{
				DefaultBinding:  def,
				ModuleSpecifier: spec,
				ForSyntax:       forSyntax,
			}, nil
		}

		e.advance()
	}

	switch head = e.peek(0); {
	case isBraces(head):
		named, err := e.enforestNamedImports()
		if err != nil {
			return nil, err
		}

		spec, forSyntax, err := e.enforestFromClause()
		if err != nil {
			return nil, err
		}

		return &term.Import{
			DefaultBinding:  def,
			NamedImports:    named,
			ModuleSpecifier: spec,
			ForSyntax:       forSyntax,
		}, nil

	case isPunctuator(head, "*"):
		e.advance()

		if _, err := e.matchContextual("as"); err != nil {
			return nil, err
		}

		ns, err := e.enforestBindingIdentifier()
		if err != nil {
			return nil, err
		}

		spec, forSyntax, err := e.enforestFromClause()
		if err != nil {
			return nil, err
		}

		return &term.ImportNamespace{
			DefaultBinding:   def,
			NamespaceBinding: ns,
			ModuleSpecifier:  spec,
			ForSyntax:        forSyntax,
		}, nil
	}

	return nil, e.createError(head, "invalid import declaration")
}

// enforestFromClause parses from "spec" with an optional "for syntax".
func (e *Enforester) enforestFromClause() (*syntax.Syntax, bool, error) {
	if _, err := e.matchContextual("from"); err != nil {
		return nil, false, err
	}

	spec, err := e.matchStringLiteral()
	if err != nil {
		return nil, false, err
	}

	forSyntax := false

	if isKeyword(e.peek(0), "for") && isIdentifier(e.peek(1), "syntax") {
		e.advance()
		e.advance()

		forSyntax = true
	}

	e.consumeSemicolon()

	return spec, forSyntax, nil
}

func (e *Enforester) enforestNamedImports() ([]*term.ImportSpecifier, error) {
	inner, err := e.matchCurlies()
	if err != nil {
		return nil, err
	}

	sub := e.subSyntax(inner)

	var specs []*term.ImportSpecifier

	for !sub.Done() {
		head := sub.peek(0)
		if !isIdentifier(head) && !isKeyword(head) {
			return nil, sub.createError(head, "expecting an import name")
		}

		name := stxOf(sub.advance())

		if isIdentifier(sub.peek(0), "as") {
			sub.advance()

			id, err := sub.enforestBindingIdentifier()
			if err != nil {
				return nil, err
			}

			specs = append(specs, &term.ImportSpecifier{Name: name, Binding: id})
		} else {
			specs = append(specs, &term.ImportSpecifier{
				Binding: &term.BindingIdentifier{Name: name},
			})
		}

		if !sub.Done() {
			if _, err := sub.matchPunctuator(","); err != nil {
				return nil, err
			}
		}
	}

	return specs, nil
}

//nolint:cyclop,funlen
func (e *Enforester) enforestExportDeclaration() (term.Term, error) {
	head := e.peek(0)

	switch {
	case isPunctuator(head, "*"):
		e.advance()

		if _, err := e.matchContextual("from"); err != nil {
			return nil, err
		}

		spec, err := e.matchStringLiteral()
		if err != nil {
			return nil, err
		}

		e.consumeSemicolon()

		return &term.ExportAllFrom{ModuleSpecifier: spec}, nil

	case isBraces(head):
		named, err := e.enforestExportClause()
		if err != nil {
			return nil, err
		}

		var spec *syntax.Syntax

		if isIdentifier(e.peek(0), "from") {
			e.advance()

			if spec, err = e.matchStringLiteral(); err != nil {
				return nil, err
			}
		}

		e.consumeSemicolon()

		return &term.ExportFrom{NamedExports: named, ModuleSpecifier: spec}, nil

	case e.isForm(head, FormClass):
		decl, err := e.enforestClass(false, false)
		if err != nil {
			return nil, err
		}

		return &term.Export{Declaration: decl}, nil

	case e.isForm(head, FormFunction):
		decl, err := e.enforestFunction(false, false)
		if err != nil {
			return nil, err
		}

		return &term.Export{Declaration: decl}, nil

	case isKeyword(head, "default"):
		e.advance()

		var (
			body term.Term
			err  error
		)

		switch head = e.peek(0); {
		case e.isForm(head, FormFunction):
			body, err = e.enforestFunction(false, true)
		case e.isForm(head, FormClass):
			body, err = e.enforestClass(false, true)
		default:
			body, err = e.restExpression()
			e.consumeSemicolon()
		}

		if err != nil {
			return nil, err
		}

		return &term.ExportDefault{Body: body}, nil

	case e.isVarDecl(head):
		decl, err := e.enforestVariableDeclaration()
		if err != nil {
			return nil, err
		}

		e.consumeSemicolon()

		return &term.Export{Declaration: decl}, nil
	}

	return nil, e.createError(head, "unexpected syntax in export")
}

func (e *Enforester) enforestExportClause() ([]*term.ExportSpecifier, error) {
	inner, err := e.matchCurlies()
	if err != nil {
		return nil, err
	}

	sub := e.subSyntax(inner)

	var specs []*term.ExportSpecifier

	for !sub.Done() {
		head := sub.peek(0)
		if !isIdentifier(head) && !isKeyword(head) {
			return nil, sub.createError(head, "expecting an export name")
		}

		name := stxOf(sub.advance())

		if isIdentifier(sub.peek(0), "as") {
			sub.advance()

			exported := sub.peek(0)
			if !isIdentifier(exported) && !isKeyword(exported) {
				return nil, sub.createError(exported, "expecting an export name")
			}

			specs = append(specs, &term.ExportSpecifier{
				Name:         name,
				ExportedName: stxOf(sub.advance()),
			})
		} else {
			specs = append(specs, &term.ExportSpecifier{ExportedName: name})
		}

		if !sub.Done() {
			if _, err := sub.matchPunctuator(","); err != nil {
				return nil, err
			}
		}
	}

	return specs, nil
}
