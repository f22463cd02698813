package penalty

import (
	"strings"
	"unicode"
)

// ExcerptContext is the number of characters kept on each side of a match.
const ExcerptContext = 100

// PageBreak separates pages in extracted document text.
const PageBreak = "\f"

// ellipsis marks a side of an excerpt cut short by the context window.
const ellipsis = "..."

// Excerpt is a bounded window of document text around a match.
type Excerpt struct {
	Text string `json:"text"`

	// Page is the 1-based page the match was found on.
	Page int `json:"page"`
}

// FindExcerpts returns every excerpt of text matching query under mode,
// in page order and then in scan order. Matching ignores case. Excerpts
// with the same text on the same page are reported once.
//
// With MatchExact every non-overlapping occurrence of the whole query is
// reported. With MatchAllWords only pages holding every token are
// scanned, and then every occurrence of every token is reported. With
// MatchAnyWord every occurrence of every token is reported.
func FindExcerpts(text, query string, mode MatchMode) []Excerpt {
	if text == "" || query == "" {
		return nil
	}

	needles := needlesFor(query, mode)
	if len(needles) == 0 {
		return nil
	}

	var excerpts []Excerpt
	seen := make(map[Excerpt]bool)
	for i, page := range strings.Split(text, PageBreak) {
		runes := []rune(page)
		lower := lowerRunes(runes)

		if mode == MatchAllWords && !containsAll(lower, needles) {
			continue
		}

		for _, needle := range needles {
			for start := 0; ; {
				idx := indexRunes(lower, needle, start)
				if idx < 0 {
					break
				}
				e := Excerpt{Text: excerptAt(runes, idx, len(needle)), Page: i + 1}
				if !seen[e] {
					seen[e] = true
					excerpts = append(excerpts, e)
				}
				start = idx + len(needle)
			}
		}
	}
	return excerpts
}

// PageExcerpts returns at most limit excerpts starting at offset.
// A limit of zero or less returns everything after offset.
func PageExcerpts(excerpts []Excerpt, offset, limit int) []Excerpt {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(excerpts) {
		return nil
	}
	end := len(excerpts)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return excerpts[offset:end]
}

// needlesFor returns the lowercased strings to scan for.
func needlesFor(query string, mode MatchMode) [][]rune {
	if mode == MatchExact {
		return [][]rune{lowerRunes([]rune(query))}
	}
	var needles [][]rune
	for _, tok := range Tokens(query) {
		needles = append(needles, []rune(tok))
	}
	return needles
}

// excerptAt cuts the context window around runes[idx:idx+n].
func excerptAt(runes []rune, idx, n int) string {
	start := max(0, idx-ExcerptContext)
	end := min(len(runes), idx+n+ExcerptContext)

	var sb strings.Builder
	if start > 0 {
		sb.WriteString(ellipsis)
	}
	sb.WriteString(string(runes[start:end]))
	if end < len(runes) {
		sb.WriteString(ellipsis)
	}
	return strings.TrimSpace(sb.String())
}

// lowerRunes lowercases rune by rune so offsets stay aligned with the input.
func lowerRunes(runes []rune) []rune {
	out := make([]rune, len(runes))
	for i, r := range runes {
		out[i] = unicode.ToLower(r)
	}
	return out
}

func containsAll(hay []rune, needles [][]rune) bool {
	for _, n := range needles {
		if indexRunes(hay, n, 0) < 0 {
			return false
		}
	}
	return true
}

// indexRunes returns the first index >= from where needle occurs in hay, or -1.
func indexRunes(hay, needle []rune, from int) int {
	if len(needle) == 0 {
		return -1
	}
	for i := from; i+len(needle) <= len(hay); i++ {
		if hay[i] != needle[0] {
			continue
		}
		match := true
		for j := 1; j < len(needle); j++ {
			if hay[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// Highlight wraps every match of query in text with the before and after
// markers, ignoring case. Adjacent or overlapping matches share one pair.
func Highlight(text, query string, mode MatchMode, before, after string) string {
	if text == "" || query == "" {
		return text
	}

	needles := needlesFor(query, mode)
	runes := []rune(text)
	lower := lowerRunes(runes)
	marked := make([]bool, len(runes))
	for _, needle := range needles {
		for start := 0; ; {
			idx := indexRunes(lower, needle, start)
			if idx < 0 {
				break
			}
			for k := idx; k < idx+len(needle); k++ {
				marked[k] = true
			}
			start = idx + len(needle)
		}
	}

	var sb strings.Builder
	for i, r := range runes {
		if marked[i] && (i == 0 || !marked[i-1]) {
			sb.WriteString(before)
		}
		sb.WriteRune(r)
		if marked[i] && (i == len(runes)-1 || !marked[i+1]) {
			sb.WriteString(after)
		}
	}
	return sb.String()
}
