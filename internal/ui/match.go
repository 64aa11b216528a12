package ui

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/hayeah/aicontent/internal/pathindex"
)

// termQuery is the exact filter syntax. A query is space-separated terms
// that must all match a path, case-insensitively:
//
//	foo     substring
//	^foo    path starts with foo
//	foo$    path ends with foo
//	'foo    foo starts a word
//	'foo'   foo is a whole word
type termQuery []term

type term struct {
	text      string
	head      bool
	tail      bool
	wordStart bool
	wordWhole bool
}

// isTermQuery reports whether input uses the exact syntax rather than a
// plain fuzzy search.
func isTermQuery(input string) bool {
	return strings.ContainsAny(strings.TrimSpace(input), " ^$'")
}

func parseTermQuery(input string) (termQuery, error) {
	fields := strings.Fields(input)
	q := make(termQuery, 0, len(fields))
	for _, raw := range fields {
		var t term
		s := raw
		if rest, ok := strings.CutPrefix(s, "'"); ok {
			s = rest
			if whole, ok := strings.CutSuffix(s, "'"); ok && s != "" {
				s = whole
				t.wordWhole = true
			} else {
				t.wordStart = true
			}
		}
		if rest, ok := strings.CutPrefix(s, "^"); ok {
			s = rest
			t.head = true
		}
		if rest, ok := strings.CutSuffix(s, "$"); ok {
			s = rest
			t.tail = true
		}
		if s == "" {
			return nil, fmt.Errorf("empty term %q", raw)
		}
		t.text = strings.ToLower(s)
		q = append(q, t)
	}
	return q, nil
}

// match reports whether every term matches p.
func (q termQuery) match(p pathindex.Path) bool {
	s := strings.ToLower(string(p))
	for _, t := range q {
		if !t.match(s) {
			return false
		}
	}
	return true
}

func (t term) match(s string) bool {
	if t.head && t.tail && !t.wordStart && !t.wordWhole {
		return s == t.text
	}

	region := s
	if t.head {
		if !strings.HasPrefix(s, t.text) {
			return false
		}
		region = s[:len(t.text)]
	}
	if t.tail {
		if !strings.HasSuffix(s, t.text) {
			return false
		}
		region = s[len(s)-len(t.text):]
	}

	switch {
	case t.wordWhole:
		return indexWord(region, t.text, true)
	case t.wordStart:
		return indexWord(region, t.text, false)
	}
	return strings.Contains(region, t.text)
}

// indexWord looks for needle starting at a word boundary, and also ending at
// one when whole is set.
func indexWord(s, needle string, whole bool) bool {
	for from := 0; from+len(needle) <= len(s); {
		i := strings.Index(s[from:], needle)
		if i < 0 {
			return false
		}
		i += from
		end := i + len(needle)
		left := i == 0 || !isWordByte(s[i-1])
		right := end == len(s) || !isWordByte(s[end])
		if left && (!whole || right) {
			return true
		}
		from = i + 1
	}
	return false
}

func isWordByte(b byte) bool {
	r := rune(b)
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
