// ABOUTME: Text preparation for the PDF renderer
// ABOUTME: Folds accents and symbols to plain ASCII and detects checklist activity text
package render

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// symbols the core PDF fonts cannot draw, mapped to readable tokens.
var symbolReplacer = strings.NewReplacer(
	"✅", "[OK]",
	"✔", "[OK]",
	"✓", "[OK]",
	"❌", "[X]",
	"✘", "[X]",
	"✗", "[X]",
	"⚠", "[!]",
	"→", "->",
	"←", "<-",
	"•", "-",
	"–", "-",
	"—", "-",
	"…", "...",
	"“", "\"",
	"”", "\"",
	"‘", "'",
	"’", "'",
	"°", "o",
	"º", "o",
	"ª", "a",
	"×", "x",
	"\t", " ",
	"\r", "",
)

// Sanitize returns s reduced to printable ASCII plus newlines. Accented
// letters keep their base letter; known symbols become bracketed tokens;
// anything else is dropped.
func Sanitize(s string) string {
	s = symbolReplacer.Replace(s)

	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || (r >= 0x20 && r < 0x7f) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// orDash sanitizes s, substituting "-" when nothing printable remains.
func orDash(s string) string {
	s = strings.TrimSpace(Sanitize(s))
	if s == "" {
		return "-"
	}
	return s
}

type checkState int

const (
	checkNone checkState = iota
	checkOpen
	checkDone
)

type checkItem struct {
	state checkState
	text  string
}

// markers are tried longest first.
var checkMarkers = []struct {
	prefix string
	state  checkState
}{
	{"- [x]", checkDone},
	{"- [X]", checkDone},
	{"- [ ]", checkOpen},
	{"[x]", checkDone},
	{"[X]", checkDone},
	{"[ ]", checkOpen},
	{"✅", checkDone},
	{"✔", checkDone},
	{"✓", checkDone},
}

// parseChecklist splits text into checklist items. ok is false unless at
// least one line carries a check marker. Runs on the raw text so markers are
// seen before sanitizing rewrites them.
func parseChecklist(text string) (items []checkItem, ok bool) {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		item := checkItem{text: trimmed}
		for _, m := range checkMarkers {
			if rest, found := strings.CutPrefix(trimmed, m.prefix); found {
				item = checkItem{state: m.state, text: strings.TrimSpace(rest)}
				ok = true
				break
			}
		}
		items = append(items, item)
	}
	return items, ok
}
