package analyzer

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/OliwiaLewandowska/som-monitor/internal/models"
)

// ErrInvalidInput marks malformed arguments to the pure analysis functions.
var ErrInvalidInput = errors.New("invalid input")

// contextRadius is how many characters around a match are kept as context.
const contextRadius = 40

// Analyzer extracts brand mentions from response text. Matching is
// case-insensitive and whole-word: a brand never matches inside a longer
// token ("Meta" does not match "Metadata"). Multi-word brand names match as
// contiguous phrases with flexible whitespace.
type Analyzer struct {
	brands   []string
	patterns map[string]*regexp.Regexp
}

// New builds an Analyzer for the given brand list. It fails with
// ErrInvalidInput when the list contains empty names or duplicates.
func New(brands []string) (*Analyzer, error) {
	seen := make(map[string]bool, len(brands))
	patterns := make(map[string]*regexp.Regexp, len(brands))

	for _, brand := range brands {
		if strings.TrimSpace(brand) == "" {
			return nil, fmt.Errorf("%w: empty brand name", ErrInvalidInput)
		}
		key := strings.ToLower(brand)
		if seen[key] {
			return nil, fmt.Errorf("%w: duplicate brand %q", ErrInvalidInput, brand)
		}
		seen[key] = true

		re, err := regexp.Compile(brandPattern(brand))
		if err != nil {
			return nil, fmt.Errorf("%w: brand %q: %v", ErrInvalidInput, brand, err)
		}
		patterns[brand] = re
	}

	return &Analyzer{
		brands:   append([]string(nil), brands...),
		patterns: patterns,
	}, nil
}

// Brands returns the tracked brand list in construction order.
func (a *Analyzer) Brands() []string {
	return a.brands
}

// Extract finds every tracked brand in text and returns the per-brand mention
// map plus the mention order: mentioned brands sorted ascending by the offset
// of their first occurrence. Same input always yields the same output.
func (a *Analyzer) Extract(text string) (map[string]models.BrandMention, []string) {
	type hit struct {
		brand  string
		offset int
		length int
	}

	mentions := make(map[string]models.BrandMention, len(a.brands))
	var hits []hit

	for _, brand := range a.brands {
		re := a.patterns[brand]
		locs := re.FindAllStringIndex(text, -1)
		if len(locs) == 0 {
			mentions[brand] = models.BrandMention{Brand: brand, Mentioned: false}
			continue
		}
		first := locs[0]
		hits = append(hits, hit{brand: brand, offset: first[0], length: first[1] - first[0]})
		mentions[brand] = models.BrandMention{
			Brand:     brand,
			Mentioned: true,
			Count:     len(locs),
			Context:   snippet(text, first[0], first[1]),
		}
	}

	// Distinct literal names cannot start at the same offset, but aliases
	// introduced later could: longest match wins there, then lexical order.
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].offset != hits[j].offset {
			return hits[i].offset < hits[j].offset
		}
		if hits[i].length != hits[j].length {
			return hits[i].length > hits[j].length
		}
		return hits[i].brand < hits[j].brand
	})

	order := make([]string, 0, len(hits))
	for rank, h := range hits {
		pos := rank
		m := mentions[h.brand]
		m.Position = &pos
		mentions[h.brand] = m
		order = append(order, h.brand)
	}

	return mentions, order
}

// brandPattern builds a case-insensitive whole-phrase pattern for a brand
// name. Word boundaries are only anchored where the name starts or ends with
// a word character, so names like "1&1" or "O2" still match exactly.
func brandPattern(brand string) string {
	fields := strings.Fields(brand)
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}
	pattern := strings.Join(quoted, `\s+`)

	first := fields[0]
	last := fields[len(fields)-1]
	if isWordByte(first[0]) {
		pattern = `\b` + pattern
	}
	if isWordByte(last[len(last)-1]) {
		pattern += `\b`
	}
	return `(?i)` + pattern
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= '0' && b <= '9') ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z')
}

// snippet returns a short window of text around the match at [start, end).
func snippet(text string, start, end int) string {
	lo := start - contextRadius
	if lo < 0 {
		lo = 0
	}
	hi := end + contextRadius
	if hi > len(text) {
		hi = len(text)
	}
	return strings.TrimSpace(text[lo:hi])
}
