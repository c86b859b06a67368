// Package highlight marks query terms in result text and groups results
// by site section for display.
package highlight

import (
	"html"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/docsearch/pkg/types"
)

// DefaultGroup labels results whose URL has no section segment
const DefaultGroup = "Dokumentasjon"

// Tokens lowercases q and splits it on runs of non letters and digits,
// keeping tokens of at least minLen runes in query order
func Tokens(q string, minLen int) []string {
	fields := strings.FieldsFunc(strings.ToLower(q), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minLen {
			out = append(out, f)
		}
	}
	return out
}

// pattern builds an alternation of the unique tokens, longest first, so a
// longer token wins over a prefix starting at the same position
func pattern(tokens []string) *regexp.Regexp {
	seen := make(map[string]bool, len(tokens))
	uniq := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		uniq = append(uniq, t)
	}
	if len(uniq) == 0 {
		return nil
	}
	sort.SliceStable(uniq, func(i, j int) bool {
		return utf8.RuneCountInString(uniq[i]) > utf8.RuneCountInString(uniq[j])
	})
	for i, t := range uniq {
		uniq[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(uniq, "|") + `)`)
}

// Highlight wraps every case-insensitive, non-overlapping token match in
// text with open and close
func Highlight(text string, tokens []string, open, close string) string {
	return mark(text, tokens, open, close, func(s string) string { return s })
}

// HTML is Highlight for markup: text outside and inside the marks is escaped
// and matches are wrapped in <mark class="...">
func HTML(text string, tokens []string, class string) string {
	open := "<mark>"
	if class != "" {
		open = `<mark class="` + html.EscapeString(class) + `">`
	}
	return mark(text, tokens, open, "</mark>", html.EscapeString)
}

func mark(text string, tokens []string, open, close string, escape func(string) string) string {
	if text == "" {
		return ""
	}
	re := pattern(tokens)
	if re == nil {
		return escape(text)
	}

	var b strings.Builder
	last := 0
	for _, m := range re.FindAllStringIndex(text, -1) {
		b.WriteString(escape(text[last:m[0]]))
		b.WriteString(open)
		b.WriteString(escape(text[m[0]:m[1]]))
		b.WriteString(close)
		last = m[1]
	}
	b.WriteString(escape(text[last:]))
	return b.String()
}

// GroupLabel returns the capitalised first URL segment, skipping a leading
// language segment
func GroupLabel(url string) string {
	var parts []string
	for _, p := range strings.Split(url, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 && (parts[0] == "en" || parts[0] == "nb") {
		parts = parts[1:]
	}
	if len(parts) == 0 {
		return DefaultGroup
	}
	r, size := utf8.DecodeRuneInString(parts[0])
	return string(unicode.ToUpper(r)) + parts[0][size:]
}

// Group is a run of results sharing a label
type Group struct {
	Label   string
	Results []types.SearchResult
}

// GroupResults buckets results by GroupLabel. Groups appear in the order
// their first result does and keep result order within each group.
func GroupResults(results []types.SearchResult) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, r := range results {
		label := GroupLabel(r.URL)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, Group{Label: label})
		}
		groups[i].Results = append(groups[i].Results, r)
	}
	return groups
}
