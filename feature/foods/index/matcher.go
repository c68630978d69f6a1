package index

import (
	"slices"
	"strings"
	"unicode"
)

// DefaultLimit applies when a query does not set a limit.
const DefaultLimit = 50

// Matcher answers description queries against one locale's records.
type Matcher struct {
	foods      []entry[FoodHeader]
	categories []entry[CategoryHeader]
	hidden     map[string]bool
	synonyms   map[string][]string
}

type entry[H any] struct {
	header  H
	code    string
	tokens  []string
	nameLen int
}

type scored[H any] struct {
	header  H
	code    string
	exact   int
	nameLen int
}

// NewMatcher indexes the records of one locale.
func NewMatcher(foods []FoodRecord, categories []CategoryRecord, builders map[string]FoodBuilderEntry) *Matcher {
	m := &Matcher{
		foods:      make([]entry[FoodHeader], 0, len(foods)),
		categories: make([]entry[CategoryHeader], 0, len(categories)),
		hidden:     make(map[string]bool),
		synonyms:   make(map[string][]string),
	}

	for _, f := range foods {
		names := []string{f.LocalName, f.EnglishName}
		for _, alts := range f.AltNames {
			names = append(names, alts...)
		}
		name := f.DisplayName()
		m.foods = append(m.foods, entry[FoodHeader]{
			header:  FoodHeader{ID: f.ID, Code: f.Code, Name: name},
			code:    f.Code,
			tokens:  tokenizeAll(names),
			nameLen: len([]rune(name)),
		})
	}

	for _, c := range categories {
		name := c.DisplayName()
		m.categories = append(m.categories, entry[CategoryHeader]{
			header:  CategoryHeader{ID: c.ID, Code: c.Code, Name: name},
			code:    c.Code,
			tokens:  tokenizeAll([]string{c.LocalName, c.EnglishName}),
			nameLen: len([]rune(name)),
		})
		if c.Hidden {
			m.hidden[c.Code] = true
		}
	}

	for _, b := range builders {
		group := tokenizeAll(append([]string{b.Name}, b.Synonyms...))
		for _, t := range group {
			for _, other := range group {
				if other != t && !slices.Contains(m.synonyms[t], other) {
					m.synonyms[t] = append(m.synonyms[t], other)
				}
			}
		}
	}

	return m
}

// Search returns the foods and categories matching params.Description, best
// first, each list truncated to params.Limit.
func (m *Matcher) Search(params SearchParams) SearchResults {
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := tokenize(params.Description)
	res := SearchResults{Foods: []FoodHeader{}, Categories: []CategoryHeader{}}
	if len(query) == 0 {
		return res
	}

	alternatives := make([][]string, len(query))
	for i, q := range query {
		alternatives[i] = append([]string{q}, m.synonyms[q]...)
	}

	res.Foods = rank(m.foods, alternatives, limit, nil)
	res.Categories = rank(m.categories, alternatives, limit, func(code string) bool {
		return !params.IncludeHidden && m.hidden[code]
	})
	return res
}

func rank[H any](entries []entry[H], alternatives [][]string, limit int, skip func(code string) bool) []H {
	var hits []scored[H]
	for _, e := range entries {
		if skip != nil && skip(e.code) {
			continue
		}
		exact, ok := match(e.tokens, alternatives)
		if !ok {
			continue
		}
		hits = append(hits, scored[H]{header: e.header, code: e.code, exact: exact, nameLen: e.nameLen})
	}

	slices.SortStableFunc(hits, func(a, b scored[H]) int {
		if a.exact != b.exact {
			return b.exact - a.exact
		}
		if a.nameLen != b.nameLen {
			return a.nameLen - b.nameLen
		}
		return strings.Compare(a.code, b.code)
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]H, len(hits))
	for i, h := range hits {
		out[i] = h.header
	}
	return out
}

// match reports whether every query token prefixes some record token, and
// how many query tokens matched a record token exactly.
func match(tokens []string, alternatives [][]string) (int, bool) {
	exact := 0
	for _, alts := range alternatives {
		found, isExact := false, false
		for _, t := range tokens {
			for _, a := range alts {
				if t == a {
					found, isExact = true, true
					break
				}
				if strings.HasPrefix(t, a) {
					found = true
				}
			}
			if isExact {
				break
			}
		}
		if !found {
			return 0, false
		}
		if isExact {
			exact++
		}
	}
	return exact, true
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func tokenizeAll(names []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, n := range names {
		for _, t := range tokenize(n) {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
