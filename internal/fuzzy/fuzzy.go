// Package fuzzy scores candidate labels against free-text queries.
//
// It serves two callers: the executor's text-search node, and the
// top-level search entry point when structured parsing fails or never
// applied. Scoring is additive over several signals and capped at 1.0;
// candidates below the threshold are discarded.
package fuzzy

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Threshold is the minimum score a candidate must reach to be reported.
const Threshold = 0.3

// Candidate is one scorable item: a label plus optional description and
// keywords that contribute weaker signals.
type Candidate struct {
	Label       string
	Description string
	Keywords    []string
}

// Match pairs a candidate index with its score.
type Match struct {
	Index int
	Score float64
}

// Score rates a candidate against a query. Contributions:
//
//	exact label match          1.0
//	label prefix               0.9
//	label substring            0.7
//	keyword substring          0.6
//	description substring      0.5
//	character subsequence      ratio x 0.4
//	first-letter abbreviation  ratio x 0.3
//
// The sum is capped at 1.0. An empty query scores zero.
func Score(queryText string, c Candidate) float64 {
	q := Normalize(queryText)
	if q == "" {
		return 0
	}
	label := Normalize(c.Label)

	score := 0.0
	if label == q {
		score += 1.0
	}
	if strings.HasPrefix(label, q) {
		score += 0.9
	}
	if strings.Contains(label, q) {
		score += 0.7
	}
	for _, kw := range c.Keywords {
		if strings.Contains(Normalize(kw), q) {
			score += 0.6
			break
		}
	}
	if c.Description != "" && strings.Contains(Normalize(c.Description), q) {
		score += 0.5
	}
	score += subsequenceRatio(q, label) * 0.4
	score += abbreviationRatio(q, label) * 0.3

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// Rank scores every candidate, drops those below Threshold and returns
// the rest sorted by descending score. The sort is stable, so equal
// scores keep candidate order.
func Rank(queryText string, candidates []Candidate) []Match {
	matches := make([]Match, 0, len(candidates))
	for i, c := range candidates {
		if s := Score(queryText, c); s >= Threshold {
			matches = append(matches, Match{Index: i, Score: s})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// Normalize lowercases, trims and NFC-normalizes text so that composed
// and decomposed spellings of the same name compare equal.
func Normalize(s string) string {
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(s)))
}

// Subsequence reports whether every rune of q appears in s in order.
func Subsequence(q, s string) bool {
	return subsequenceRatio(Normalize(q), Normalize(s)) == 1.0
}

// subsequenceRatio returns the fraction of q's runes found in s in order.
func subsequenceRatio(q, s string) float64 {
	if q == "" {
		return 0
	}
	runes := []rune(q)
	matched := 0
	for _, r := range s {
		if matched < len(runes) && r == runes[matched] {
			matched++
		}
	}
	return float64(matched) / float64(len(runes))
}

// abbreviationRatio matches q against the first letters of s's words
// ("mark aarav present" abbreviates to "map") and returns the common
// prefix fraction.
func abbreviationRatio(q, s string) float64 {
	if q == "" {
		return 0
	}
	var abbr []rune
	for _, word := range strings.Fields(s) {
		for _, r := range word {
			abbr = append(abbr, r)
			break
		}
	}
	qr := []rune(q)
	matched := 0
	for matched < len(qr) && matched < len(abbr) && qr[matched] == abbr[matched] {
		matched++
	}
	return float64(matched) / float64(len(qr))
}
