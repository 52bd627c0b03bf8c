// Package lore serves the hardcoded codex of world-building fragments shown
// on the Chama Espiral lore portal. The dataset is embedded; there is no
// database behind it.
package lore

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed fragments.yaml
var fragmentsYAML []byte

// Fragment is one codex entry.
type Fragment struct {
	ID          int    `yaml:"id" json:"id"`
	Category    string `yaml:"category" json:"category"`
	Subcategory string `yaml:"subcategory" json:"subcategory"`
	Title       string `yaml:"title" json:"title"`
	Type        string `yaml:"type" json:"type"`
	Status      string `yaml:"status" json:"status"`
	Content     string `yaml:"content" json:"content"`
	RelatedIDs  []int  `yaml:"related_ids" json:"related_ids"`
}

// Unlocked reports whether the fragment is readable.
func (f *Fragment) Unlocked() bool { return f.Status == "unlocked" }

// Dataset is the loaded codex. Fragments keep their file order, which drives
// the "first of subcategory" navigation links.
type Dataset struct {
	fragments []Fragment
	byID      map[int]*Fragment
}

// Load parses the embedded dataset. Call once at startup.
func Load() (*Dataset, error) {
	var doc struct {
		Fragments []Fragment `yaml:"fragments"`
	}
	if err := yaml.Unmarshal(fragmentsYAML, &doc); err != nil {
		return nil, fmt.Errorf("parse lore dataset: %w", err)
	}
	if len(doc.Fragments) == 0 {
		return nil, fmt.Errorf("lore dataset is empty")
	}
	ds := &Dataset{
		fragments: doc.Fragments,
		byID:      make(map[int]*Fragment, len(doc.Fragments)),
	}
	for i := range ds.fragments {
		ds.byID[ds.fragments[i].ID] = &ds.fragments[i]
	}
	return ds, nil
}

// Get returns a fragment by id. Unknown ids fall back to the first fragment,
// matching how the portal always shows something.
func (d *Dataset) Get(id int) *Fragment {
	if f, ok := d.byID[id]; ok {
		return f
	}
	return &d.fragments[0]
}

// First returns the id of the first fragment in a category, optionally
// narrowed to a subcategory. Missing combinations yield 1.
func (d *Dataset) First(category, subcategory string) int {
	for i := range d.fragments {
		f := &d.fragments[i]
		if f.Category != category {
			continue
		}
		if subcategory != "" && f.Subcategory != subcategory {
			continue
		}
		return f.ID
	}
	return 1
}

// Siblings returns every fragment sharing the given fragment's category and
// subcategory, in file order.
func (d *Dataset) Siblings(f *Fragment) []Fragment {
	var out []Fragment
	for _, other := range d.fragments {
		if other.Category == f.Category && other.Subcategory == f.Subcategory {
			out = append(out, other)
		}
	}
	return out
}

// Related resolves a fragment's cross-references.
func (d *Dataset) Related(f *Fragment) []Fragment {
	var out []Fragment
	for _, id := range f.RelatedIDs {
		if rel, ok := d.byID[id]; ok {
			out = append(out, *rel)
		}
	}
	return out
}

// Count returns how many fragments exist under a category/subcategory pair.
func (d *Dataset) Count(category, subcategory string) int {
	n := 0
	for _, f := range d.fragments {
		if f.Category == category && f.Subcategory == subcategory {
			n++
		}
	}
	return n
}

// Total returns the number of fragments in the codex.
func (d *Dataset) Total() int { return len(d.fragments) }

// UnlockedCount returns how many fragments are readable.
func (d *Dataset) UnlockedCount() int {
	n := 0
	for _, f := range d.fragments {
		if f.Unlocked() {
			n++
		}
	}
	return n
}

// ProgressPercent is the unlocked share as an integer percentage.
func (d *Dataset) ProgressPercent() int {
	if len(d.fragments) == 0 {
		return 0
	}
	return d.UnlockedCount() * 100 / len(d.fragments)
}

// navigation pairs every sidebar entry with its category/subcategory.
var navigation = []struct {
	Key         string
	Category    string
	Subcategory string
}{
	{"lore_historia", "lore", "historia"},
	{"lore_eventos", "lore", "eventos"},
	{"lore_cronologia", "lore", "cronologia"},
	{"personagens_guardioes", "personagens", "guardioes"},
	{"personagens_lideres", "personagens", "lideres"},
	{"personagens_entidades", "personagens", "entidades"},
	{"locais_templos", "locais", "templos"},
	{"locais_ruinas", "locais", "ruinas"},
	{"locais_santuarios", "locais", "santuarios"},
	{"artefatos_reliquias", "artefatos", "reliquias"},
	{"artefatos_fragmentos", "artefatos", "fragmentos"},
	{"galeria_concept", "galeria", "concept_art"},
	{"galeria_ilustracoes", "galeria", "ilustracoes"},
	{"puzzles_facil", "puzzles", "facil"},
	{"puzzles_medio", "puzzles", "medio"},
	{"puzzles_dificil", "puzzles", "dificil"},
	{"extras_curiosidades", "extras", "curiosidades"},
	{"extras_referencias", "extras", "referencias"},
}

// mainCategories maps each top-level tab to its landing subcategory.
var mainCategories = map[string]string{
	"lore":        "historia",
	"personagens": "guardioes",
	"locais":      "templos",
	"artefatos":   "reliquias",
	"galeria":     "concept_art",
	"puzzles":     "facil",
	"extras":      "curiosidades",
}

// Page is everything the lore portal template needs for one fragment.
type Page struct {
	Selected        *Fragment      `json:"selected"`
	ListItems       []Fragment     `json:"current_list_items"`
	RelatedItems    []Fragment     `json:"related_items"`
	NavLinks        map[string]int `json:"nav_links"`
	MainLinks       map[string]int `json:"main_links"`
	Counts          map[string]int `json:"counts"`
	ActiveCategory  string         `json:"active_category"`
	ActiveSub       string         `json:"active_subcategory"`
	TotalItems      int            `json:"total_items"`
	UnlockedCount   int            `json:"unlocked_count"`
	ProgressPercent int            `json:"progress_percent"`
}

// BuildPage assembles the portal view model for a fragment id.
func (d *Dataset) BuildPage(fragmentID int) *Page {
	selected := d.Get(fragmentID)

	nav := make(map[string]int, len(navigation))
	counts := make(map[string]int, len(navigation))
	for _, entry := range navigation {
		nav[entry.Key] = d.First(entry.Category, entry.Subcategory)
		// Count keys mirror the sidebar labels, keyed by subcategory with
		// concept_art shortened to concept.
		countKey := entry.Subcategory
		if countKey == "concept_art" {
			countKey = "concept"
		}
		counts[countKey] = d.Count(entry.Category, entry.Subcategory)
	}

	main := make(map[string]int, len(mainCategories))
	for category, subcategory := range mainCategories {
		main[category] = d.First(category, subcategory)
	}

	return &Page{
		Selected:        selected,
		ListItems:       d.Siblings(selected),
		RelatedItems:    d.Related(selected),
		NavLinks:        nav,
		MainLinks:       main,
		Counts:          counts,
		ActiveCategory:  selected.Category,
		ActiveSub:       selected.Subcategory,
		TotalItems:      d.Total(),
		UnlockedCount:   d.UnlockedCount(),
		ProgressPercent: d.ProgressPercent(),
	}
}
