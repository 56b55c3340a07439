package expand

import (
	"github.com/ardnew/stx/syntax"
	"github.com/ardnew/stx/term"
)

func isStatement(t term.Term) bool {
	switch t.(type) {
	case *term.BlockStatement, *term.WhileStatement, *term.IfStatement,
		*term.ForStatement, *term.ForInStatement, *term.ForOfStatement,
		*term.SwitchStatement, *term.SwitchStatementWithDefault,
		*term.BreakStatement, *term.ContinueStatement,
		*term.DoWhileStatement, *term.DebuggerStatement,
		*term.WithStatement, *term.TryCatchStatement,
		*term.TryFinallyStatement, *term.ThrowStatement,
		*term.LabeledStatement, *term.VariableDeclarationStatement,
		*term.ReturnStatement, *term.EmptyStatement,
		*term.ExpressionStatement, *term.FunctionDeclaration,
		*term.ClassDeclaration, *term.Import, *term.ImportNamespace,
		*term.Export, *term.ExportDefault, *term.ExportFrom,
		*term.ExportAllFrom, *term.Pragma, *term.EOF:
		return true
	default:
		return false
	}
}

//nolint:cyclop,funlen,gocyclo
func (e *Enforester) enforestStatement() (term.Term, error) {
	e.term = nil

	if err := e.expandMacro(); err != nil {
		return nil, err
	}

	head := e.peek(0)

	if t, ok := head.(term.Term); ok && isStatement(t) {
		e.advance()

		return t, nil
	}

	switch {
	case isBraces(head):
		block, err := e.enforestBlock()
		if err != nil {
			return nil, err
		}

		return &term.BlockStatement{Block: block}, nil

	case e.isForm(head, FormWhile):
		return e.enforestWhileStatement()

	case e.isForm(head, FormIf):
		return e.enforestIfStatement()

	case e.isForm(head, FormFor):
		return e.enforestForStatement()

	case e.isForm(head, FormSwitch):
		return e.enforestSwitchStatement()

	case e.isForm(head, FormBreak):
		e.advance()
		label := e.enforestLabel(head)

		return &term.BreakStatement{Label: label}, nil

	case e.isForm(head, FormContinue):
		e.advance()
		label := e.enforestLabel(head)

		return &term.ContinueStatement{Label: label}, nil

	case e.isForm(head, FormDo):
		return e.enforestDoStatement()

	case e.isForm(head, FormDebugger):
		e.advance()
		e.consumeSemicolon()

		return &term.DebuggerStatement{}, nil

	case e.isForm(head, FormWith):
		e.advance()

		obj, err := e.parensExpression()
		if err != nil {
			return nil, err
		}

		body, err := e.enforestStatement()
		if err != nil {
			return nil, err
		}

		return &term.WithStatement{Object: obj, Body: body}, nil

	case e.isForm(head, FormTry):
		return e.enforestTryStatement()

	case e.isForm(head, FormThrow):
		e.advance()

		expr, err := e.enforestExpression()
		if err != nil {
			return nil, err
		}

		e.consumeSemicolon()

		return &term.ThrowStatement{Expression: expr}, nil

	case e.isForm(head, FormClass):
		return e.enforestClass(false, false)

	case e.isForm(head, FormFunction):
		return e.enforestFunction(false, false)

	case isIdentifier(head) && isPunctuator(e.peek(1), ":"):
		label := stxOf(e.advance())
		e.advance()

		body, err := e.enforestStatement()
		if err != nil {
			return nil, err
		}

		return &term.LabeledStatement{Label: label, Body: body}, nil

	case e.isVarDecl(head):
		decl, err := e.enforestVariableDeclaration()
		if err != nil {
			return nil, err
		}

		e.consumeSemicolon()

		return &term.VariableDeclarationStatement{Declaration: decl}, nil

	case e.isForm(head, FormReturn):
		e.advance()

		var expr term.Term

		if next := e.peek(0); next != nil && !isPunctuator(next, ";") && sameLine(head, next) {
			var err error
			if expr, err = e.enforestExpression(); err != nil {
				return nil, err
			}
		}

		e.consumeSemicolon()

		return &term.ReturnStatement{Expression: expr}, nil

	case isPunctuator(head, ";"):
		e.advance()

		return &term.EmptyStatement{}, nil
	}

	expr, err := e.enforestExpression()
	if err != nil {
		return nil, err
	}

	if expr == nil {
		return nil, e.createError(e.peek(0), "unexpected syntax")
	}

	e.consumeSemicolon()

	return &term.ExpressionStatement{Expression: expr}, nil
}

// enforestLabel parses the optional label of break or continue, which must
// start on the same line as the keyword.
func (e *Enforester) enforestLabel(kw term.Item) *syntax.Syntax {
	var label *syntax.Syntax

	if next := e.peek(0); isIdentifier(next) && sameLine(kw, next) {
		label = stxOf(e.advance())
	}

	e.consumeSemicolon()

	return label
}

func (e *Enforester) enforestBlock() (*term.Block, error) {
	inner, err := e.matchCurlies()
	if err != nil {
		return nil, err
	}

	return &term.Block{Statements: term.Items(inner)}, nil
}

func (e *Enforester) enforestWhileStatement() (term.Term, error) {
	e.advance()

	test, err := e.parensExpression()
	if err != nil {
		return nil, err
	}

	body, err := e.enforestStatement()
	if err != nil {
		return nil, err
	}

	return &term.WhileStatement{Test: test, Body: body}, nil
}

func (e *Enforester) enforestIfStatement() (term.Term, error) {
	e.advance()

	test, err := e.parensExpression()
	if err != nil {
		return nil, err
	}

	cons, err := e.enforestStatement()
	if err != nil {
		return nil, err
	}

	var alt term.Term

	if isKeyword(e.peek(0), "else") {
		e.advance()

		if alt, err = e.enforestStatement(); err != nil {
			return nil, err
		}
	}

	return &term.IfStatement{Test: test, Consequent: cons, Alternate: alt}, nil
}

func (e *Enforester) enforestDoStatement() (term.Term, error) {
	e.advance()

	body, err := e.enforestStatement()
	if err != nil {
		return nil, err
	}

	if !e.isForm(e.peek(0), FormWhile) {
		return nil, e.createError(e.peek(0), "expecting while")
	}

	e.advance()

	test, err := e.parensExpression()
	if err != nil {
		return nil, err
	}

	e.consumeSemicolon()

	return &term.DoWhileStatement{Body: body, Test: test}, nil
}

//nolint:cyclop,funlen
func (e *Enforester) enforestForStatement() (term.Term, error) {
	e.advance()

	inner, err := e.matchParens()
	if err != nil {
		return nil, err
	}

	enf := e.subSyntax(inner)

	var init term.Term

	switch head := enf.peek(0); {
	case isPunctuator(head, ";"):

	case enf.isVarDecl(head):
		decl, err := enf.enforestVariableDeclaration()
		if err != nil {
			return nil, err
		}

		init = decl

		if next := enf.peek(0); isKeyword(next, "in") || isIdentifier(next, "of") {
			return e.enforestForEach(enf, init)
		}

	case isKeyword(enf.peek(1), "in") || isIdentifier(enf.peek(1), "of"):
		left, err := enf.enforestBindingTarget()
		if err != nil {
			return nil, err
		}

		return e.enforestForEach(enf, left)

	default:
		if init, err = enf.enforestExpression(); err != nil {
			return nil, err
		}
	}

	if _, err := enf.matchPunctuator(";"); err != nil {
		return nil, err
	}

	var test, update term.Term

	if !isPunctuator(enf.peek(0), ";") {
		if test, err = enf.enforestExpression(); err != nil {
			return nil, err
		}
	}

	if _, err := enf.matchPunctuator(";"); err != nil {
		return nil, err
	}

	if !enf.Done() {
		if update, err = enf.enforestExpression(); err != nil {
			return nil, err
		}
	}

	if err := enf.expectDone(); err != nil {
		return nil, err
	}

	body, err := e.enforestStatement()
	if err != nil {
		return nil, err
	}

	return &term.ForStatement{Init: init, Test: test, Update: update, Body: body}, nil
}

// enforestForEach finishes a for-in or for-of statement whose left side has
// been parsed by enf.
func (e *Enforester) enforestForEach(enf *Enforester, left term.Term) (term.Term, error) {
	isIn := isKeyword(enf.advance(), "in")

	right, err := enf.enforestExpression()
	if err != nil {
		return nil, err
	}

	if err := enf.expectDone(); err != nil {
		return nil, err
	}

	body, err := e.enforestStatement()
	if err != nil {
		return nil, err
	}

	if isIn {
		return &term.ForInStatement{Left: left, Right: right, Body: body}, nil
	}

	return &term.ForOfStatement{Left: left, Right: right, Body: body}, nil
}

func (e *Enforester) enforestSwitchStatement() (term.Term, error) {
	e.advance()

	disc, err := e.parensExpression()
	if err != nil {
		return nil, err
	}

	inner, err := e.matchCurlies()
	if err != nil {
		return nil, err
	}

	enf := e.subSyntax(inner)

	pre, err := enf.enforestSwitchCases()
	if err != nil {
		return nil, err
	}

	if !isKeyword(enf.peek(0), "default") {
		if err := enf.expectDone(); err != nil {
			return nil, err
		}

		return &term.SwitchStatement{Discriminant: disc, Cases: pre}, nil
	}

	enf.advance()

	cons, err := enf.enforestSwitchCaseBody()
	if err != nil {
		return nil, err
	}

	post, err := enf.enforestSwitchCases()
	if err != nil {
		return nil, err
	}

	if err := enf.expectDone(); err != nil {
		return nil, err
	}

	return &term.SwitchStatementWithDefault{
		Discriminant:     disc,
		PreDefaultCases:  pre,
		DefaultCase:      &term.SwitchDefault{Consequent: cons},
		PostDefaultCases: post,
	}, nil
}

func (e *Enforester) enforestSwitchCases() ([]*term.SwitchCase, error) {
	var cases []*term.SwitchCase

	for isKeyword(e.peek(0), "case") {
		e.advance()

		test, err := e.enforestExpression()
		if err != nil {
			return nil, err
		}

		cons, err := e.enforestSwitchCaseBody()
		if err != nil {
			return nil, err
		}

		cases = append(cases, &term.SwitchCase{Test: test, Consequent: cons})
	}

	return cases, nil
}

func (e *Enforester) enforestSwitchCaseBody() ([]term.Term, error) {
	if _, err := e.matchPunctuator(":"); err != nil {
		return nil, err
	}

	var stmts []term.Term

	for !e.Done() && !isKeyword(e.peek(0), "case", "default") {
		t, err := e.enforestStatement()
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, t)
	}

	return stmts, nil
}

func (e *Enforester) enforestTryStatement() (term.Term, error) {
	e.advance()

	body, err := e.enforestBlock()
	if err != nil {
		return nil, err
	}

	var catch *term.CatchClause

	if isKeyword(e.peek(0), "catch") {
		if catch, err = e.enforestCatchClause(); err != nil {
			return nil, err
		}
	}

	if isKeyword(e.peek(0), "finally") {
		e.advance()

		fin, err := e.enforestBlock()
		if err != nil {
			return nil, err
		}

		return &term.TryFinallyStatement{Body: body, CatchClause: catch, Finalizer: fin}, nil
	}

	if catch == nil {
		return nil, e.createError(e.peek(0), "expecting catch or finally")
	}

	return &term.TryCatchStatement{Body: body, CatchClause: catch}, nil
}

func (e *Enforester) enforestCatchClause() (*term.CatchClause, error) {
	e.advance()

	inner, err := e.matchParens()
	if err != nil {
		return nil, err
	}

	enf := e.subSyntax(inner)

	binding, err := enf.enforestBindingTarget()
	if err != nil {
		return nil, err
	}

	if err := enf.expectDone(); err != nil {
		return nil, err
	}

	body, err := e.enforestBlock()
	if err != nil {
		return nil, err
	}

	return &term.CatchClause{Binding: binding, Body: body}, nil
}

func (e *Enforester) enforestVariableDeclaration() (*term.VariableDeclaration, error) {
	kw := e.advance()

	ft, _ := e.transform(kw).(FormTransform)

	kind := map[Form]string{
		FormVar:       "var",
		FormLet:       "let",
		FormConst:     "const",
		FormSyntax:    "syntax",
		FormSyntaxrec: "syntaxrec",
	}[ft.Form]

	decl := &term.VariableDeclaration{Kind: kind}

	for {
		d, err := e.enforestVariableDeclarator(decl.IsSyntax())
		if err != nil {
			return nil, err
		}

		decl.Declarators = append(decl.Declarators, d)

		if !isPunctuator(e.peek(0), ",") {
			return decl, nil
		}

		e.advance()
	}
}

func (e *Enforester) enforestVariableDeclarator(isSyntax bool) (*term.VariableDeclarator, error) {
	id, err := e.enforestBindingTarget()
	if err != nil {
		return nil, err
	}

	var init term.Term

	if isPunctuator(e.peek(0), "=") {
		e.advance()

		if init, err = e.restExpression(); err != nil {
			return nil, err
		}
	} else if isSyntax {
		return nil, e.createError(e.peek(0), "syntax declarations require an initializer")
	}

	return &term.VariableDeclarator{Binding: id, Init: init}, nil
}
