package syntax

import "strconv"

// Kind classifies the token held by a [Syntax].
type Kind uint8

const (
	KindEOF        Kind = iota // end of input
	KindIdentifier             // identifier
	KindKeyword                // keyword
	KindPunctuator             // punctuator
	KindNumber                 // number
	KindString                 // string
	KindTemplate               // template
	KindRegExp                 // regexp
	KindBoolean                // boolean
	KindNull                   // null
	KindDelimiter              // delimiter
)

var kindName = [...]string{
	KindEOF:        "eof",
	KindIdentifier: "identifier",
	KindKeyword:    "keyword",
	KindPunctuator: "punctuator",
	KindNumber:     "number",
	KindString:     "string",
	KindTemplate:   "template",
	KindRegExp:     "regexp",
	KindBoolean:    "boolean",
	KindNull:       "null",
	KindDelimiter:  "delimiter",
}

func (k Kind) String() string {
	if int(k) < len(kindName) {
		return kindName[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindName {
		if name == s {
			return Kind(k), true
		}
	}

	return 0, false
}

// Delim identifies the bracketing of a delimited group.
type Delim uint8

const (
	DelimNone           Delim = iota
	DelimParens               // ( )
	DelimBraces               // { }
	DelimBrackets             // [ ]
	DelimSyntaxTemplate       // #` `
)

var delimPair = [...][2]string{
	DelimNone:           {"", ""},
	DelimParens:         {"(", ")"},
	DelimBraces:         {"{", "}"},
	DelimBrackets:       {"[", "]"},
	DelimSyntaxTemplate: {"#`", "`"},
}

// Open returns the opening lexeme of d.
func (d Delim) Open() string { return delimPair[d][0] }

// Close returns the closing lexeme of d.
func (d Delim) Close() string { return delimPair[d][1] }

func (d Delim) String() string {
	switch d {
	case DelimParens:
		return "parens"
	case DelimBraces:
		return "braces"
	case DelimBrackets:
		return "brackets"
	case DelimSyntaxTemplate:
		return "syntax-template"
	default:
		return "none"
	}
}

// ParseDelim returns the Delim named s.
func ParseDelim(s string) Delim {
	for d := DelimParens; d <= DelimSyntaxTemplate; d++ {
		if d.String() == s {
			return d
		}
	}

	return DelimNone
}

// Token is the lexical payload of an atomic [Syntax].
type Token struct {
	Kind Kind
	// Value is the lexeme, except for string literals where it holds the
	// decoded contents.
	Value string
	// Raw is the source text when it differs from Value.
	Raw  string
	Line int
	Col  int
}

// TemplatePart is one element of a template literal: either a raw text chunk
// or an interpolated braces group.
type TemplatePart struct {
	Text string
	Expr *Syntax
}
