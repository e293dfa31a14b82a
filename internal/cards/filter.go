package cards

import (
	"sort"
	"strings"
)

type FilterOptions struct {
	Name       string   `json:"name"`
	FreeWords  string   `json:"free_words"`
	Types      []string `json:"types"`
	Supertypes []string `json:"supertypes"`
	Sets       []string `json:"sets"`
	Rarities   []string `json:"rarities"`
}

func containsAny(hay []string, needles []string) bool {
	for _, n := range needles {
		for _, h := range hay {
			if strings.EqualFold(h, n) {
				return true
			}
		}
	}
	return false
}

func Filter(cards []Card, opt FilterOptions) []Card {
	out := []Card{}
	name := strings.ToLower(strings.TrimSpace(opt.Name))
	for _, c := range cards {
		if name != "" && !strings.Contains(strings.ToLower(c.Name), name) {
			continue
		}
		if len(opt.Types) > 0 && !containsAny(c.Types, opt.Types) {
			continue
		}
		if len(opt.Supertypes) > 0 && !containsAny([]string{c.Supertype}, opt.Supertypes) {
			continue
		}
		if len(opt.Sets) > 0 && !containsAny([]string{c.Set}, opt.Sets) {
			continue
		}
		if len(opt.Rarities) > 0 && !containsAny([]string{c.Rarity}, opt.Rarities) {
			continue
		}
		if opt.FreeWords != "" {
			ok := true
			for _, k := range strings.Fields(opt.FreeWords) {
				k = strings.ToLower(k)
				if !strings.Contains(strings.ToLower(c.Name), k) &&
					!strings.Contains(strings.ToLower(strings.Join(c.Subtypes, " ")), k) &&
					!strings.Contains(strings.ToLower(strings.Join(c.Types, " ")), k) &&
					!strings.Contains(strings.ToLower(c.Set), k) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// Page returns the 1-based page of cards. Pages past the end are empty.
func Page(cards []Card, page, pageSize int) []Card {
	if page < 1 || pageSize < 1 {
		return []Card{}
	}
	start := (page - 1) * pageSize
	if start >= len(cards) {
		return []Card{}
	}
	end := start + pageSize
	if end > len(cards) {
		end = len(cards)
	}
	return cards[start:end]
}

// SortByName returns a copy of cards ordered by name. Cards with equal names
// keep their relative order.
func SortByName(cs []Card) []Card {
	out := make([]Card, len(cs))
	copy(out, cs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}
