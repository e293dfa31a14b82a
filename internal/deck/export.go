package deck

import (
	"sort"
	"strconv"
	"strings"
)

// ExportDeckText renders d as a plain deck list, one "<count> <name> <id>"
// line per entry ordered by name then id.
func ExportDeckText(d Deck) string {
	lines := []string{}
	if d.Name != "" {
		lines = append(lines, "# "+d.Name)
	}
	entries := make([]Entry, len(d.Cards))
	copy(entries, d.Cards)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Card.Name != entries[j].Card.Name {
			return entries[i].Card.Name < entries[j].Card.Name
		}
		return entries[i].Card.ID < entries[j].Card.ID
	})
	for _, e := range entries {
		lines = append(lines, strings.TrimSpace(strconv.Itoa(e.Count)+" "+e.Card.Name+" "+e.Card.ID))
	}
	lines = append(lines, "Total: "+strconv.Itoa(d.Total()))
	return strings.Join(lines, "\n")
}
