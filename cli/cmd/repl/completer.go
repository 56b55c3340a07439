package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/stx/reader"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "source", "edit", "reset", "clear", "quit"}

// macroKeywords introduce the declarations specific to macro definitions.
var macroKeywords = []string{"syntax", "syntaxrec", "syntaxQuote"}

// isWordBoundary reports whether r ends an identifier for completion
// purposes. Identifiers may contain '$' and '_'.
func isWordBoundary(r rune) bool {
	switch r {
	case '.', ' ', '\t', '#', '`',
		'(', ')', '[', ']', '{', '}',
		'+', '-', '*', '/', '%', '^', '~',
		'<', '>', '=', '!',
		'&', '|', ',', '?', ':', ';', '"', '\'':
		return true
	}

	return false
}

// wordBounds returns the word at the cursor position and its byte
// boundaries within input. It returns an empty word when the cursor sits on
// a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// afterMember reports whether the word starting at wordStart follows a
// member access dot. Properties are never completed.
func afterMember(input string, wordStart int) bool {
	return strings.HasSuffix(input[:wordStart], ".")
}

// expandCandidates returns the completion candidates in expand mode: the
// names bound in the session and the reserved words.
func expandCandidates(s *Session) []string {
	names := append(s.Names(), reader.Keywords()...)
	names = append(names, macroKeywords...)

	slices.Sort(names)

	return slices.Compact(names)
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor. It returns the matches ranked best-first, the candidate list, and
// the word boundaries. An empty word has no matches.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())
	if word == "" {
		return nil, nil, wordStart, wordEnd
	}

	switch m.mode {
	case modeCtrl:
		candidates = ctrlCommands
	default:
		if afterMember(input, wordStart) {
			return nil, nil, wordStart, wordEnd
		}

		candidates = m.names
	}

	return fuzzy.Find(word, candidates), candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within width. The selected candidate uses the selected style while
// tab-cycling.
func renderCandidateBar(
	matches fuzzy.Matches,
	macros map[string]bool,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, macros[match.Str], tabActive && i == suggIdx)

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Macros are drawn in the macro style.
func renderCandidate(match fuzzy.Match, macro, selected bool) string {
	baseStyle := suggestionStyle
	if macro {
		baseStyle = macroStyle
	}

	highlightStyle := baseStyle.Bold(true)

	if selected {
		baseStyle = selectedStyle
		highlightStyle = selectedStyle.Bold(true)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlightStyle.Render(string(r)))
		} else {
			b.WriteString(baseStyle.Render(string(r)))
		}
	}

	return b.String()
}
