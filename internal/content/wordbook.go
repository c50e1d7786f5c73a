package content

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// PatternEntry is a pattern flattened out of its chapter for the wordbook.
type PatternEntry struct {
	Pattern
	ChapterID     int
	ChapterTitle  string
	JapaneseTitle string
	// Index is the pattern's position inside its chapter.
	Index int
}

// Key identifies the entry as "<chapter id>-<index>".
func (e PatternEntry) Key() string {
	return fmt.Sprintf("%d-%d", e.ChapterID, e.Index)
}

// Headword returns the part of the title to read aloud: everything before
// the first parenthesis, so "～ば (~면)" yields "～ば".
func (p Pattern) Headword() string {
	head, _, _ := strings.Cut(p.Title, "(")
	return strings.TrimSpace(head)
}

// Patterns lists every pattern of the course in chapter order.
func (c *Course) Patterns() []PatternEntry {
	if c == nil {
		return nil
	}
	var out []PatternEntry
	for _, ch := range c.Chapters {
		for i, p := range ch.Patterns {
			out = append(out, PatternEntry{
				Pattern:       p,
				ChapterID:     ch.ID,
				ChapterTitle:  ch.Title,
				JapaneseTitle: ch.JapaneseTitle,
				Index:         i,
			})
		}
	}
	return out
}

// SearchPatterns returns the patterns whose title, description or example
// text contains term, ignoring case. A blank term matches everything.
func (c *Course) SearchPatterns(term string) []PatternEntry {
	all := c.Patterns()
	term = strings.TrimSpace(term)
	if term == "" {
		return all
	}

	fold := cases.Fold()
	needle := fold.String(term)
	contains := func(s string) bool {
		return s != "" && strings.Contains(fold.String(s), needle)
	}

	var out []PatternEntry
	for _, e := range all {
		if matchesPattern(e.Pattern, contains) {
			out = append(out, e)
		}
	}
	return out
}

func matchesPattern(p Pattern, contains func(string) bool) bool {
	if contains(p.Title) || contains(p.Description) {
		return true
	}
	for _, ex := range p.Examples {
		if contains(ex.Japanese) || contains(ex.Korean) {
			return true
		}
	}
	return false
}
