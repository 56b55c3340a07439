package syntax

import (
	"cmp"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ardnew/stx/pkg"
)

// ErrAmbiguous is returned when an identifier's scope set has more than one
// maximal binding candidate.
var ErrAmbiguous = pkg.NewError("ambiguous binding")

// Binding is the semantic meaning an identifier resolves to.
//
// A binding with a zero ID is free: it denotes the lexeme Name itself.
type Binding struct {
	Name string
	ID   uint64
}

//nolint:gochecknoglobals
var gensymCounter atomic.Uint64

// Gensym returns a fresh binding that is distinct from every other binding,
// free or not.
func Gensym(name string) Binding {
	return Binding{Name: name, ID: gensymCounter.Add(1)}
}

// Free returns the free binding of name.
func Free(name string) Binding { return Binding{Name: name} }

// IsFree reports whether b is a free binding.
func (b Binding) IsFree() bool { return b.ID == 0 }

// String returns Name for a free binding and "Name#ID" otherwise. The "#"
// can never appear in an identifier, so the two forms cannot collide.
func (b Binding) String() string {
	if b.IsFree() {
		return b.Name
	}

	return b.Name + "#" + strconv.FormatUint(b.ID, 10)
}

// Record is one entry in a [BindingTable].
type Record struct {
	Scopes  ScopeSet
	Binding Binding
	// Alias, when set, forwards resolution to another identifier.
	Alias *Syntax
}

// BindingTable maps identifier names to every scope set they have been bound
// under. It is shared by all syntax objects of a compilation and only grows.
type BindingTable struct {
	mu sync.RWMutex
	m  map[string][]Record
}

// NewBindingTable returns an empty table.
func NewBindingTable() *BindingTable {
	return &BindingTable{m: make(map[string][]Record)}
}

// Add records that stx, with its scopes at phase, denotes b. If a record
// with an identical scope set already exists (e.g. "var x; var x;") the table
// is unchanged and the existing binding is returned.
func (t *BindingTable) Add(stx *Syntax, b Binding, phase Phase) Binding {
	return t.add(stx, Record{Scopes: stx.Scopes(phase), Binding: b})
}

// AddForward records that stx resolves as fwd does. The binding b identifies
// the forwarding record itself.
func (t *BindingTable) AddForward(stx, fwd *Syntax, b Binding, phase Phase) {
	t.add(stx, Record{Scopes: stx.Scopes(phase), Binding: b, Alias: fwd})
}

func (t *BindingTable) add(stx *Syntax, r Record) Binding {
	t.mu.Lock()
	defer t.mu.Unlock()

	name := stx.tok.Value

	for _, old := range t.m[name] {
		if len(old.Scopes) == len(r.Scopes) && old.Scopes.SubsetOf(r.Scopes) {
			return old.Binding
		}
	}

	t.m[name] = append(t.m[name], r)

	return r.Binding
}

// Records returns a copy of the records bound under name.
func (t *BindingTable) Records(name string) []Record {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return slices.Clone(t.m[name])
}

// Names returns the bound names in sorted order.
func (t *BindingTable) Names() iter.Seq[string] {
	t.mu.RLock()
	names := slices.Sorted(maps.Keys(t.m))
	t.mu.RUnlock()

	return slices.Values(names)
}

// Resolve computes the binding s denotes at phase.
//
// Candidates are the records for s's name whose scope set is a subset of
// s's effective scope set. The candidate with the largest scope set wins;
// an alias on the winner is resolved in its place. Without candidates, or
// for anything other than an identifier or keyword, s is free.
func (s *Syntax) Resolve(phase Phase) (Binding, error) {
	free := Free(s.Val())

	if !(s.IsIdentifier() || s.IsKeyword()) || s.bindings == nil {
		return free, nil
	}

	scopes := s.Scopes(phase)
	if len(scopes) == 0 {
		return free, nil
	}

	var cands []Record

	for _, r := range s.bindings.Records(s.tok.Value) {
		if r.Scopes.SubsetOf(scopes) {
			cands = append(cands, r)
		}
	}

	if len(cands) == 0 {
		return free, nil
	}

	slices.SortStableFunc(cands, func(a, b Record) int {
		return cmp.Compare(len(b.Scopes), len(a.Scopes))
	})

	if len(cands) > 1 && len(cands[0].Scopes) == len(cands[1].Scopes) {
		tied := []string{cands[0].Scopes.String()}

		for _, r := range cands[1:] {
			if len(r.Scopes) != len(cands[0].Scopes) {
				break
			}

			tied = append(tied, r.Scopes.String())
		}

		return free, ErrAmbiguous.
			Wrapf("scopeset %s has ambiguous subsets %s",
				scopes, strings.Join(tied, ", ")).
			With(
				slog.String("name", s.tok.Value),
				slog.Int("line", s.tok.Line),
				slog.Any("candidates", tied),
			)
	}

	if cands[0].Alias != nil {
		return cands[0].Alias.Resolve(phase)
	}

	return cands[0].Binding, nil
}
