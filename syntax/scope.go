package syntax

import (
	"math"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Labels attached to scopes created by the expander.
const (
	LabelTop        = "top"    // module top level
	LabelFunction   = "fun"    // function, arrow, and method bodies
	LabelBlock      = "block"  // nested statement blocks
	LabelUse        = "u"      // macro use site
	LabelIntroduced = "i"      // introduced by a macro
	LabelNonrec     = "nonrec" // non-recursive syntax declaration
)

// Scope is an opaque identity representing one lexical context.
//
// Scopes are small integers allocated from a process-wide counter, so two
// scopes are equal only when they were returned by the same call to
// [NewScope].
type Scope uint64

//nolint:gochecknoglobals
var (
	scopeCounter atomic.Uint64
	scopeLabels  sync.Map // Scope -> string
)

// NewScope returns a fresh scope tagged with a human-readable label.
func NewScope(label string) Scope {
	s := Scope(scopeCounter.Add(1))
	if label != "" {
		scopeLabels.Store(s, label)
	}

	return s
}

// Label returns the label s was created with.
func (s Scope) Label() string {
	if v, ok := scopeLabels.Load(s); ok {
		return v.(string) //nolint:forcetypeassert
	}

	return ""
}

// String renders s as its label followed by its identity.
func (s Scope) String() string {
	label := s.Label()
	if label == "" {
		label = "scope"
	}

	return label + "_" + strconv.FormatUint(uint64(s), 10)
}

// Phase identifies a compilation stage. Phase 0 is run time; phase n+1
// holds the code that computes the macros used while expanding phase n.
type Phase int

// AllPhases selects the scope set shared by every phase.
const AllPhases Phase = math.MinInt32

// String returns the decimal phase number, or "all".
func (p Phase) String() string {
	if p == AllPhases {
		return "all"
	}

	return strconv.Itoa(int(p))
}

// ScopeSet is an ordered collection of scopes. Order is the order scopes were
// added, which only matters for finding the most recently entered context.
type ScopeSet []Scope

// Index returns the position of the first occurrence of s, or -1.
func (ss ScopeSet) Index(s Scope) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}

	return -1
}

// Contains reports whether s is in ss.
func (ss ScopeSet) Contains(s Scope) bool { return ss.Index(s) >= 0 }

// SubsetOf reports whether every scope of ss is also in other.
func (ss ScopeSet) SubsetOf(other ScopeSet) bool {
	for _, s := range ss {
		if !other.Contains(s) {
			return false
		}
	}

	return true
}

// Last returns the most recently added scope, if any.
func (ss ScopeSet) Last() (Scope, bool) {
	if len(ss) == 0 {
		return 0, false
	}

	return ss[len(ss)-1], true
}

// HasLabel reports whether any scope in ss was created with label.
func (ss ScopeSet) HasLabel(label string) bool {
	for _, s := range ss {
		if s.Label() == label {
			return true
		}
	}

	return false
}

func (ss ScopeSet) with(s Scope) ScopeSet {
	out := make(ScopeSet, len(ss), len(ss)+1)
	copy(out, ss)

	return append(out, s)
}

func (ss ScopeSet) without(i int) ScopeSet {
	out := make(ScopeSet, 0, len(ss)-1)
	out = append(out, ss[:i]...)

	return append(out, ss[i+1:]...)
}

// String renders ss as "{a_1, b_2}".
func (ss ScopeSet) String() string {
	var sb strings.Builder

	sb.WriteByte('{')

	for i, s := range ss {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(s.String())
	}

	sb.WriteByte('}')

	return sb.String()
}
