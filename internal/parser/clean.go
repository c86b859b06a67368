package parser

import (
	"regexp"
	"strings"
)

var (
	moduleLineRe = regexp.MustCompile(`^\s*(?:import|export)\s+`)
	shortcodeRe  = regexp.MustCompile(`(?s)\{\{[<%].*?[>%]\}\}`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
)

// StripDirectives removes MDX import and export lines. Line endings are
// normalized to "\n".
func StripDirectives(text string) string {
	lines := strings.Split(normalizeNewlines(text), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if moduleLineRe.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// StripShortcodes removes Hugo shortcodes, including paired open and close
// tags, and collapses the blank runs they leave behind.
func StripShortcodes(text string) string {
	text = shortcodeRe.ReplaceAllString(text, "")
	return blankRunRe.ReplaceAllString(text, "\n\n")
}

func normalizeNewlines(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}
