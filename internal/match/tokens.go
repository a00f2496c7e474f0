package match

import (
	"slices"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/handiism/audio-info-updater/internal/model"
)

// scoreTable holds token scores between open files (rows) and open
// records (columns).
type scoreTable struct {
	files       []int
	records     []int
	distinctive [][]float64
	overlap     [][]float64
}

func (m *Matcher) scores(p *pool) scoreTable {
	s := scoreTable{files: p.openFiles(), records: p.openRecords()}

	fileTokens := make([][]string, len(s.files))
	for i, fi := range s.files {
		fileTokens[i] = m.clean(p.files[fi].Tokens)
	}
	fileTokens = FilterSharedItems(fileTokens)

	titleTokens := make([]map[string]bool, len(s.records))
	for j, ri := range s.records {
		titleTokens[j] = toSet(m.clean(model.Tokenize(p.records[ri].Title)))
	}
	distinct := DistinctiveTokens(titleTokens)

	s.distinctive = make([][]float64, len(s.files))
	s.overlap = make([][]float64, len(s.files))
	for i := range s.files {
		present := toSet(fileTokens[i])
		s.distinctive[i] = make([]float64, len(s.records))
		s.overlap[i] = make([]float64, len(s.records))
		for j := range s.records {
			for token := range titleTokens[j] {
				if !present[token] {
					continue
				}
				s.overlap[i][j]++
				if distinct[token] {
					s.distinctive[i][j]++
				}
			}
		}
	}
	return s
}

// clean drops stopwords from a token list.
func (m *Matcher) clean(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if m.opts.Stopwords != nil && m.opts.Stopwords.Contains(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// DistinctiveTokens returns the tokens that appear in at most one of the
// given titles. A word shared by several titles, such as "Part" or
// "Remix" on an album of remixes, says nothing about which title a file
// belongs to.
func DistinctiveTokens(titles []map[string]bool) map[string]bool {
	counts := map[string]int{}
	for _, title := range titles {
		for token := range title {
			counts[token]++
		}
	}
	distinct := make(map[string]bool, len(counts))
	for token, n := range counts {
		distinct[token] = n <= 1
	}
	return distinct
}

// FilterSharedItems removes the longest leading and trailing token runs
// shared by every list, such as an artist name prefixing every file. Each
// list keeps at least one token. Fewer than two lists are returned as is.
func FilterSharedItems(lists [][]string) [][]string {
	if len(lists) < 2 {
		return lists
	}
	out := make([][]string, len(lists))
	copy(out, lists)

	if n := sharedLength(out, func(list []string, i int) string { return list[i] }); n > 0 {
		for i := range out {
			out[i] = out[i][n:]
		}
	}
	if n := sharedLength(out, func(list []string, i int) string { return list[len(list)-1-i] }); n > 0 {
		for i := range out {
			out[i] = out[i][:len(out[i])-n]
		}
	}
	return out
}

// sharedLength counts the positions, read with at, holding the same token
// in every list, leaving at least one token in the shortest list.
func sharedLength(lists [][]string, at func(list []string, i int) string) int {
	shortest := len(lists[0])
	for _, list := range lists[1:] {
		shortest = min(shortest, len(list))
	}
	n := 0
	for ; n < shortest-1; n++ {
		token := at(lists[0], n)
		same := slices.IndexFunc(lists[1:], func(list []string) bool { return at(list, n) != token }) < 0
		if !same {
			break
		}
	}
	return n
}

// Similarity returns 1 minus the Levenshtein distance divided by the
// length of the longer string, in runes.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func toSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}
