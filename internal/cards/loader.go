package cards

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func parseListCell(s string) []string {
	parts := strings.Split(s, "/")
	out := []string{}
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" && t != "-" {
			out = append(out, t)
		}
	}
	return out
}

// LoadCardsFromDataDir loads CSV files from a data directory (best-effort).
// It expects at least cards.csv; promo_cards.csv is optional. Cards whose id
// was already seen in an earlier file are skipped.
func LoadCardsFromDataDir(dataDir string) ([]Card, error) {
	files := []string{
		filepath.Join(dataDir, "cards.csv"),
		filepath.Join(dataDir, "promo_cards.csv"),
	}

	var all []Card
	var found bool
	seen := map[string]bool{}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		found = true
		cs, err := loadSingleCSV(f)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", f, err)
		}
		for _, c := range cs {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			all = append(all, c)
		}
	}
	if !found {
		return nil, fmt.Errorf("no input CSVs found in %s", dataDir)
	}
	return all, nil
}

func loadSingleCSV(path string) ([]Card, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	r := csv.NewReader(fp)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("csv %s has no header", path)
	}
	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.TrimSpace(strings.ToLower(h))] = i
	}
	if _, ok := cols["id"]; !ok {
		return nil, fmt.Errorf("csv %s has no id column", path)
	}

	get := func(row []string, name string) string {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	out := []Card{}
	for _, row := range rows[1:] {
		c := Card{
			ID:        get(row, "id"),
			Name:      get(row, "name"),
			ImageURL:  get(row, "image_url"),
			Supertype: get(row, "supertype"),
			Subtypes:  parseListCell(get(row, "subtypes")),
			Types:     parseListCell(get(row, "types")),
			HP:        get(row, "hp"),
			Set:       get(row, "set"),
			Rarity:    get(row, "rarity"),
		}
		if c.ID == "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
