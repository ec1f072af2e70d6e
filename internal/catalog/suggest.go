package catalog

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Suggest corrects query word by word against the catalog words (from
// titles and tags). Each word is replaced by the closest catalog word within
// maxDistance edits and the corrected words are joined with single spaces.
// It returns "" when some word has no close match or when every word is
// already spelled as in the catalog.
func (s *Store) Suggest(query string, maxDistance int) string {
	words := strings.Fields(strings.ToLower(query))
	if len(words) == 0 || maxDistance <= 0 {
		return ""
	}
	vocab := s.vocabulary()
	changed := false
	for i, w := range words {
		best, ok := closest(w, vocab, maxDistance)
		if !ok {
			return ""
		}
		if best != w {
			words[i], changed = best, true
		}
	}
	if !changed {
		return ""
	}
	return strings.Join(words, " ")
}

// closest returns word itself when it is in vocab, else the nearest entry
// within maxDistance. Ties go to the earlier entry.
func closest(word string, vocab []string, maxDistance int) (string, bool) {
	best, bestDist := "", maxDistance+1
	for _, v := range vocab {
		d := levenshtein.ComputeDistance(word, v)
		if d == 0 {
			return v, true
		}
		if d < bestDist {
			best, bestDist = v, d
		}
	}
	return best, best != ""
}

func (s *Store) vocabulary() []string {
	var out []string
	seen := map[string]bool{}
	add := func(w string) {
		w = strings.ToLower(strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}))
		if len([]rune(w)) < 2 || seen[w] {
			return
		}
		seen[w] = true
		out = append(out, w)
	}
	for _, c := range s.ListAll() {
		for _, tag := range c.Tags {
			add(tag)
		}
		for _, w := range strings.Fields(c.Title) {
			add(w)
		}
	}
	return out
}
