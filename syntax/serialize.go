package syntax

import (
	"log/slog"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/stx/pkg"
)

// ErrDecode is returned when serialized syntax cannot be decoded.
var ErrDecode = pkg.NewError("malformed serialized syntax")

// node is the serialized form of a Syntax. Scopes are stored by identity,
// so serialized syntax is only meaningful within the process that wrote it.
type node struct {
	Kind  string           `yaml:"k"`
	Value string           `yaml:"v,omitempty"`
	Raw   string           `yaml:"r,omitempty"`
	Line  int              `yaml:"l,omitempty"`
	Delim string           `yaml:"d,omitempty"`
	Inner []node           `yaml:"in,omitempty"`
	Parts []part           `yaml:"pt,omitempty"`
	All   []uint64         `yaml:"all,omitempty"`
	Phase map[int][]uint64 `yaml:"ph,omitempty"`
}

type part struct {
	Text string `yaml:"t,omitempty"`
	Expr *node  `yaml:"e,omitempty"`
}

// Marshal serializes items, including their scope sets, to a single-line
// YAML document suitable for embedding in generated source.
func Marshal(items []*Syntax) (string, error) {
	nodes := make([]node, len(items))
	for i, s := range items {
		nodes[i] = encode(s)
	}

	b, err := yaml.MarshalWithOptions(nodes, yaml.Flow(true))
	if err != nil {
		return "", ErrDecode.Wrap(err)
	}

	return string(b), nil
}

// Unmarshal decodes syntax written by [Marshal]. The decoded objects resolve
// against bt.
func Unmarshal(src string, bt *BindingTable) ([]*Syntax, error) {
	var nodes []node

	if err := yaml.Unmarshal([]byte(src), &nodes); err != nil {
		return nil, ErrDecode.Wrap(err).With(slog.Int("length", len(src)))
	}

	out := make([]*Syntax, len(nodes))

	for i, n := range nodes {
		s, err := decode(n, bt)
		if err != nil {
			return nil, err
		}

		out[i] = s
	}

	return out, nil
}

func encodeScopes(ss ScopeSet) []uint64 {
	if len(ss) == 0 {
		return nil
	}

	out := make([]uint64, len(ss))
	for i, s := range ss {
		out[i] = uint64(s)
	}

	return out
}

func decodeScopes(ids []uint64) ScopeSet {
	if len(ids) == 0 {
		return nil
	}

	out := make(ScopeSet, len(ids))
	for i, id := range ids {
		out[i] = Scope(id)
	}

	return out
}

func encode(s *Syntax) node {
	n := node{
		Kind:  s.tok.Kind.String(),
		Value: s.tok.Value,
		Raw:   s.tok.Raw,
		Line:  s.tok.Line,
		All:   encodeScopes(s.all),
	}

	if s.IsDelimiter() {
		n.Delim = s.delim.String()
		n.Inner = make([]node, len(s.inner))

		for i, c := range s.inner {
			n.Inner[i] = encode(c)
		}
	}

	for _, p := range s.parts {
		if p.Expr != nil {
			e := encode(p.Expr)
			n.Parts = append(n.Parts, part{Expr: &e})
		} else {
			n.Parts = append(n.Parts, part{Text: p.Text})
		}
	}

	for ph, ss := range s.phase {
		if len(ss) == 0 {
			continue
		}

		if n.Phase == nil {
			n.Phase = make(map[int][]uint64)
		}

		n.Phase[int(ph)] = encodeScopes(ss)
	}

	return n
}

func decode(n node, bt *BindingTable) (*Syntax, error) {
	kind, ok := ParseKind(n.Kind)
	if !ok {
		return nil, ErrDecode.Wrapf("unknown token kind %q", n.Kind)
	}

	s := &Syntax{
		tok:      Token{Kind: kind, Value: n.Value, Raw: n.Raw, Line: n.Line},
		bindings: bt,
		all:      decodeScopes(n.All),
	}

	if kind == KindDelimiter {
		s.delim = ParseDelim(n.Delim)
		if s.delim == DelimNone {
			return nil, ErrDecode.Wrapf("unknown delimiter %q", n.Delim)
		}

		s.inner = make([]*Syntax, len(n.Inner))

		for i, c := range n.Inner {
			d, err := decode(c, bt)
			if err != nil {
				return nil, err
			}

			s.inner[i] = d
		}
	}

	for _, p := range n.Parts {
		if p.Expr == nil {
			s.parts = append(s.parts, TemplatePart{Text: p.Text})

			continue
		}

		d, err := decode(*p.Expr, bt)
		if err != nil {
			return nil, err
		}

		s.parts = append(s.parts, TemplatePart{Expr: d})
	}

	if kind == KindTemplate && s.parts == nil {
		s.parts = []TemplatePart{}
	}

	for ph, ids := range n.Phase {
		if s.phase == nil {
			s.phase = make(map[Phase]ScopeSet, len(n.Phase))
		}

		s.phase[Phase(ph)] = decodeScopes(ids)
	}

	return s, nil
}
