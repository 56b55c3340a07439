package term

import "github.com/ardnew/stx/syntax"

// Term is a node of the parsed program.
type Term interface{ isTerm() }

// Item is an element of an enforester stream: either a *syntax.Syntax or a
// [Term].
type Item = any

// Items converts a token sequence to a stream.
func Items(stx []*syntax.Syntax) []Item {
	out := make([]Item, len(stx))
	for i, s := range stx {
		out[i] = s
	}

	return out
}

// AsSyntax returns it as a syntax object when it is one.
func AsSyntax(it Item) (*syntax.Syntax, bool) {
	s, ok := it.(*syntax.Syntax)

	return s, ok && s != nil
}

// Module items.
type (
	Module struct {
		Items []Term
	}

	// EOF marks the end of a token stream.
	EOF struct{}

	// Pragma is a "# lang" directive. Kind is "lang" and Items holds the
	// path string literal.
	Pragma struct {
		Kind  string
		Items []*syntax.Syntax
	}

	Import struct {
		DefaultBinding  *BindingIdentifier
		NamedImports    []*ImportSpecifier
		ModuleSpecifier *syntax.Syntax
		ForSyntax       bool
	}

	ImportNamespace struct {
		DefaultBinding   *BindingIdentifier
		NamespaceBinding *BindingIdentifier
		ModuleSpecifier  *syntax.Syntax
		ForSyntax        bool
	}

	// ImportSpecifier binds the export Name (or the binding's own name when
	// Name is nil) to Binding.
	ImportSpecifier struct {
		Name    *syntax.Syntax
		Binding *BindingIdentifier
	}

	ExportAllFrom struct {
		ModuleSpecifier *syntax.Syntax
	}

	ExportFrom struct {
		NamedExports    []*ExportSpecifier
		ModuleSpecifier *syntax.Syntax
	}

	ExportSpecifier struct {
		Name         *syntax.Syntax
		ExportedName *syntax.Syntax
	}

	// Export wraps a function, class, or variable declaration.
	Export struct {
		Declaration Term
	}

	ExportDefault struct {
		Body Term
	}
)

// Statements.
type (
	BlockStatement struct {
		Block *Block
	}

	// Block holds raw tokens until it is expanded, and statement terms
	// afterwards.
	Block struct {
		Statements []Item
	}

	WhileStatement struct {
		Test Term
		Body Term
	}

	IfStatement struct {
		Test       Term
		Consequent Term
		Alternate  Term
	}

	ForStatement struct {
		Init   Term
		Test   Term
		Update Term
		Body   Term
	}

	ForInStatement struct {
		Left  Term
		Right Term
		Body  Term
	}

	ForOfStatement struct {
		Left  Term
		Right Term
		Body  Term
	}

	SwitchStatement struct {
		Discriminant Term
		Cases        []*SwitchCase
	}

	SwitchStatementWithDefault struct {
		Discriminant     Term
		PreDefaultCases  []*SwitchCase
		DefaultCase      *SwitchDefault
		PostDefaultCases []*SwitchCase
	}

	SwitchCase struct {
		Test       Term
		Consequent []Term
	}

	SwitchDefault struct {
		Consequent []Term
	}

	BreakStatement struct {
		Label *syntax.Syntax
	}

	ContinueStatement struct {
		Label *syntax.Syntax
	}

	DoWhileStatement struct {
		Body Term
		Test Term
	}

	DebuggerStatement struct{}

	WithStatement struct {
		Object Term
		Body   Term
	}

	TryCatchStatement struct {
		Body        *Block
		CatchClause *CatchClause
	}

	// TryFinallyStatement has an optional CatchClause.
	TryFinallyStatement struct {
		Body        *Block
		CatchClause *CatchClause
		Finalizer   *Block
	}

	CatchClause struct {
		Binding Term
		Body    *Block
	}

	ThrowStatement struct {
		Expression Term
	}

	LabeledStatement struct {
		Label *syntax.Syntax
		Body  Term
	}

	VariableDeclarationStatement struct {
		Declaration *VariableDeclaration
	}

	// VariableDeclaration declares one or more bindings. Kind is one of
	// "var", "let", "const", "syntax", or "syntaxrec".
	VariableDeclaration struct {
		Kind        string
		Declarators []*VariableDeclarator
	}

	VariableDeclarator struct {
		Binding Term
		Init    Term
	}

	ReturnStatement struct {
		Expression Term
	}

	EmptyStatement struct{}

	ExpressionStatement struct {
		Expression Term
	}
)

// Functions and classes.
type (
	FunctionDeclaration struct {
		Name        *BindingIdentifier
		IsGenerator bool
		Params      *FormalParameters
		Body        *FunctionBody
	}

	FunctionExpression struct {
		Name        *BindingIdentifier
		IsGenerator bool
		Params      *FormalParameters
		Body        *FunctionBody
	}

	// ArrowExpression has either a *FunctionBody or an expression body.
	ArrowExpression struct {
		Params *FormalParameters
		Body   Term
	}

	// FunctionBody holds the raw tokens of a body until it is expanded, and
	// statement terms afterwards.
	FunctionBody struct {
		Statements []Item
	}

	FormalParameters struct {
		Items []Term
		Rest  Term
	}

	Method struct {
		Name        Term
		IsGenerator bool
		Params      *FormalParameters
		Body        *FunctionBody
	}

	Getter struct {
		Name Term
		Body *FunctionBody
	}

	Setter struct {
		Name  Term
		Param Term
		Body  *FunctionBody
	}

	ClassDeclaration struct {
		Name     *BindingIdentifier
		Super    Term
		Elements []*ClassElement
	}

	ClassExpression struct {
		Name     *BindingIdentifier
		Super    Term
		Elements []*ClassElement
	}

	ClassElement struct {
		IsStatic bool
		Method   Term
	}
)

// Object properties.
type (
	DataProperty struct {
		Name       Term
		Expression Term
	}

	ShorthandProperty struct {
		Name *syntax.Syntax
	}

	StaticPropertyName struct {
		Value *syntax.Syntax
	}

	ComputedPropertyName struct {
		Expression Term
	}
)

// Expressions.
type (
	ObjectExpression struct {
		Properties []Term
	}

	// ArrayExpression elements are nil for holes.
	ArrayExpression struct {
		Elements []Term
	}

	SpreadElement struct {
		Expression Term
	}

	ThisExpression struct {
		Stx *syntax.Syntax
	}

	Super struct{}

	IdentifierExpression struct {
		Name *syntax.Syntax
	}

	LiteralNumericExpression struct {
		Value *syntax.Syntax
	}

	LiteralInfinityExpression struct{}

	LiteralStringExpression struct {
		Value *syntax.Syntax
	}

	LiteralBooleanExpression struct {
		Value *syntax.Syntax
	}

	LiteralNullExpression struct{}

	LiteralRegExpExpression struct {
		Pattern string
		Flags   string
	}

	// TemplateExpression elements alternate between *TemplateElement and
	// interpolated expressions. Tag is nil for an untagged template.
	TemplateExpression struct {
		Tag      Term
		Elements []Term
	}

	TemplateElement struct {
		RawValue string
	}

	ParenthesizedExpression struct {
		Inner []Item
	}

	UnaryExpression struct {
		Operator string
		Operand  Term
	}

	UpdateExpression struct {
		IsPrefix bool
		Operator string
		Operand  Term
	}

	BinaryExpression struct {
		Left     Term
		Operator *syntax.Syntax
		Right    Term
	}

	ConditionalExpression struct {
		Test       Term
		Consequent Term
		Alternate  Term
	}

	AssignmentExpression struct {
		Binding    Term
		Expression Term
	}

	CompoundAssignmentExpression struct {
		Binding    Term
		Operator   string
		Expression Term
	}

	StaticMemberExpression struct {
		Object   Term
		Property *syntax.Syntax
	}

	ComputedMemberExpression struct {
		Object     Term
		Expression Term
	}

	CallExpression struct {
		Callee    Term
		Arguments []Item
	}

	NewExpression struct {
		Callee    Term
		Arguments []Item
	}

	NewTargetExpression struct{}

	YieldExpression struct {
		Expression Term
	}

	YieldGeneratorExpression struct {
		Expression Term
	}

	// SyntaxTemplate is a #`...` literal. Template is the delimiter group.
	SyntaxTemplate struct {
		Template *syntax.Syntax
	}

	// SyntaxQuote is a syntaxQuote`...` tagged template. Name supplies the
	// lexical context of the quoted tokens.
	SyntaxQuote struct {
		Name     *syntax.Syntax
		Template *TemplateExpression
	}
)

// Binding patterns.
type (
	BindingIdentifier struct {
		Name *syntax.Syntax
	}

	BindingWithDefault struct {
		Binding Term
		Init    Term
	}

	ArrayBinding struct {
		Elements    []Term
		RestElement Term
	}

	ObjectBinding struct {
		Properties []Term
	}

	BindingPropertyIdentifier struct {
		Binding *BindingIdentifier
		Init    Term
	}

	BindingPropertyProperty struct {
		Name    Term
		Binding Term
	}
)

func (*Module) isTerm()                       {}
func (*EOF) isTerm()                          {}
func (*Pragma) isTerm()                       {}
func (*Import) isTerm()                       {}
func (*ImportNamespace) isTerm()              {}
func (*ImportSpecifier) isTerm()              {}
func (*ExportAllFrom) isTerm()                {}
func (*ExportFrom) isTerm()                   {}
func (*ExportSpecifier) isTerm()              {}
func (*Export) isTerm()                       {}
func (*ExportDefault) isTerm()                {}
func (*BlockStatement) isTerm()               {}
func (*Block) isTerm()                        {}
func (*WhileStatement) isTerm()               {}
func (*IfStatement) isTerm()                  {}
func (*ForStatement) isTerm()                 {}
func (*ForInStatement) isTerm()               {}
func (*ForOfStatement) isTerm()               {}
func (*SwitchStatement) isTerm()              {}
func (*SwitchStatementWithDefault) isTerm()   {}
func (*SwitchCase) isTerm()                   {}
func (*SwitchDefault) isTerm()                {}
func (*BreakStatement) isTerm()               {}
func (*ContinueStatement) isTerm()            {}
func (*DoWhileStatement) isTerm()             {}
func (*DebuggerStatement) isTerm()            {}
func (*WithStatement) isTerm()                {}
func (*TryCatchStatement) isTerm()            {}
func (*TryFinallyStatement) isTerm()          {}
func (*CatchClause) isTerm()                  {}
func (*ThrowStatement) isTerm()               {}
func (*LabeledStatement) isTerm()             {}
func (*VariableDeclarationStatement) isTerm() {}
func (*VariableDeclaration) isTerm()          {}
func (*VariableDeclarator) isTerm()           {}
func (*ReturnStatement) isTerm()              {}
func (*EmptyStatement) isTerm()               {}
func (*ExpressionStatement) isTerm()          {}
func (*FunctionDeclaration) isTerm()          {}
func (*FunctionExpression) isTerm()           {}
func (*ArrowExpression) isTerm()              {}
func (*FunctionBody) isTerm()                 {}
func (*FormalParameters) isTerm()             {}
func (*Method) isTerm()                       {}
func (*Getter) isTerm()                       {}
func (*Setter) isTerm()                       {}
func (*ClassDeclaration) isTerm()             {}
func (*ClassExpression) isTerm()              {}
func (*ClassElement) isTerm()                 {}
func (*DataProperty) isTerm()                 {}
func (*ShorthandProperty) isTerm()            {}
func (*StaticPropertyName) isTerm()           {}
func (*ComputedPropertyName) isTerm()         {}
func (*ObjectExpression) isTerm()             {}
func (*ArrayExpression) isTerm()              {}
func (*SpreadElement) isTerm()                {}
func (*ThisExpression) isTerm()               {}
func (*Super) isTerm()                        {}
func (*IdentifierExpression) isTerm()         {}
func (*LiteralNumericExpression) isTerm()     {}
func (*LiteralInfinityExpression) isTerm()    {}
func (*LiteralStringExpression) isTerm()      {}
func (*LiteralBooleanExpression) isTerm()     {}
func (*LiteralNullExpression) isTerm()        {}
func (*LiteralRegExpExpression) isTerm()      {}
func (*TemplateExpression) isTerm()           {}
func (*TemplateElement) isTerm()              {}
func (*ParenthesizedExpression) isTerm()      {}
func (*UnaryExpression) isTerm()              {}
func (*UpdateExpression) isTerm()             {}
func (*BinaryExpression) isTerm()             {}
func (*ConditionalExpression) isTerm()        {}
func (*AssignmentExpression) isTerm()         {}
func (*CompoundAssignmentExpression) isTerm() {}
func (*StaticMemberExpression) isTerm()       {}
func (*ComputedMemberExpression) isTerm()     {}
func (*CallExpression) isTerm()               {}
func (*NewExpression) isTerm()                {}
func (*NewTargetExpression) isTerm()          {}
func (*YieldExpression) isTerm()              {}
func (*YieldGeneratorExpression) isTerm()     {}
func (*SyntaxTemplate) isTerm()               {}
func (*SyntaxQuote) isTerm()                  {}
func (*BindingIdentifier) isTerm()            {}
func (*BindingWithDefault) isTerm()           {}
func (*ArrayBinding) isTerm()                 {}
func (*ObjectBinding) isTerm()                {}
func (*BindingPropertyIdentifier) isTerm()    {}
func (*BindingPropertyProperty) isTerm()      {}

// IsSyntax reports whether d declares compile-time macro bindings.
func (d *VariableDeclaration) IsSyntax() bool {
	return d.Kind == "syntax" || d.Kind == "syntaxrec"
}

// BoundNames returns the identifiers a binding pattern introduces, in
// source order.
func BoundNames(binding Term) []*syntax.Syntax {
	var names []*syntax.Syntax

	var visit func(Term)

	visit = func(t Term) {
		switch b := t.(type) {
		case *BindingIdentifier:
			if b != nil {
				names = append(names, b.Name)
			}

		case *BindingWithDefault:
			visit(b.Binding)

		case *BindingPropertyIdentifier:
			visit(b.Binding)

		case *BindingPropertyProperty:
			visit(b.Binding)

		case *ArrayBinding:
			for _, el := range b.Elements {
				if el != nil {
					visit(el)
				}
			}

			if b.RestElement != nil {
				visit(b.RestElement)
			}

		case *ObjectBinding:
			for _, p := range b.Properties {
				visit(p)
			}
		}
	}

	visit(binding)

	return names
}
