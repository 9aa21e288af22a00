package nutrition

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// METValues holds the MET for each intensity.
type METValues struct {
	Low      float64 `yaml:"low" json:"low"`
	Moderate float64 `yaml:"moderate" json:"moderate"`
	Vigorous float64 `yaml:"vigorous" json:"vigorous"`
}

// For returns the MET for intensity i.
func (m METValues) For(i Intensity) float64 {
	switch i {
	case IntensityLow:
		return m.Low
	case IntensityVigorous:
		return m.Vigorous
	default:
		return m.Moderate
	}
}

// CatalogEntry is a reference activity with known MET values.
type CatalogEntry struct {
	ID            int       `yaml:"-" json:"id"`
	Name          string    `yaml:"name" json:"name"`
	Category      string    `yaml:"category" json:"category"`
	MET           METValues `yaml:"met" json:"met"`
	MuscleGroups  []string  `yaml:"muscle_groups" json:"muscle_groups"`
	RecoveryNotes string    `yaml:"recovery_notes,omitempty" json:"recovery_notes,omitempty"`
	Popularity    int       `yaml:"-" json:"popularity"`
}

// Catalog is the read/increment contract the activity estimator needs.
type Catalog interface {
	ListActivities(ctx context.Context) ([]CatalogEntry, error)
	IncrementPopularity(ctx context.Context, id int) error
}

type catalogFile struct {
	Activities []CatalogEntry `yaml:"activities"`
}

// LoadCatalog parses a YAML catalog and validates every entry.
func LoadCatalog(r io.Reader) ([]CatalogEntry, error) {
	var f catalogFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	seen := make(map[string]bool, len(f.Activities))
	for i, e := range f.Activities {
		key := normalizeActivityName(e.Name)
		if key == "" {
			return nil, fmt.Errorf("catalog entry %d: name is required", i)
		}
		if seen[key] {
			return nil, fmt.Errorf("catalog entry %q: duplicate name", e.Name)
		}
		seen[key] = true
		if e.MET.Low <= 0 || e.MET.Moderate < e.MET.Low || e.MET.Vigorous < e.MET.Moderate {
			return nil, fmt.Errorf("catalog entry %q: MET values must be positive and non-decreasing", e.Name)
		}
		if len(e.MuscleGroups) == 0 {
			f.Activities[i].MuscleGroups = []string{MuscleFullBody}
		}
	}
	return f.Activities, nil
}

// DefaultCatalogEntries returns the embedded seed catalog.
func DefaultCatalogEntries() []CatalogEntry {
	entries, err := LoadCatalog(strings.NewReader(string(defaultCatalogYAML)))
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return entries
}

// MemoryCatalog is an in-process Catalog used by the offline CLI and tests.
type MemoryCatalog struct {
	mu      sync.Mutex
	entries []CatalogEntry
}

// NewMemoryCatalog assigns sequential ids starting at 1.
func NewMemoryCatalog(entries []CatalogEntry) *MemoryCatalog {
	c := &MemoryCatalog{entries: make([]CatalogEntry, len(entries))}
	for i, e := range entries {
		e.ID = i + 1
		c.entries[i] = e
	}
	return c
}

func (c *MemoryCatalog) ListActivities(ctx context.Context) ([]CatalogEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out, nil
}

func (c *MemoryCatalog) IncrementPopularity(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.entries {
		if c.entries[i].ID == id {
			c.entries[i].Popularity++
			return nil
		}
	}
	return fmt.Errorf("activity %d not found", id)
}

// MatchActivity finds the catalog entry for name: a case-insensitive exact
// match first, then the most specific entry whose words are all contained
// in the query (or vice versa). Returns nil when nothing matches.
func MatchActivity(entries []CatalogEntry, name string) *CatalogEntry {
	query := normalizeActivityName(name)
	if query == "" {
		return nil
	}
	for i := range entries {
		if normalizeActivityName(entries[i].Name) == query {
			return &entries[i]
		}
	}

	queryWords := strings.Fields(query)
	var candidates []int
	for i := range entries {
		entryWords := strings.Fields(normalizeActivityName(entries[i].Name))
		if containsAllWords(queryWords, entryWords) || containsAllWords(entryWords, queryWords) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		ea, eb := entries[candidates[a]], entries[candidates[b]]
		wa, wb := len(strings.Fields(ea.Name)), len(strings.Fields(eb.Name))
		if wa != wb {
			return wa > wb
		}
		return ea.Popularity > eb.Popularity
	})
	return &entries[candidates[0]]
}

// SearchActivities returns entries whose name contains q, most popular first.
// An empty q returns the whole catalog.
func SearchActivities(entries []CatalogEntry, q string, limit int) []CatalogEntry {
	query := normalizeActivityName(q)
	out := make([]CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if query == "" || strings.Contains(normalizeActivityName(e.Name), query) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Popularity != out[b].Popularity {
			return out[a].Popularity > out[b].Popularity
		}
		return out[a].Name < out[b].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// containsAllWords reports whether every word in needle appears in haystack.
func containsAllWords(haystack, needle []string) bool {
	if len(needle) == 0 {
		return false
	}
	set := make(map[string]bool, len(haystack))
	for _, w := range haystack {
		set[w] = true
	}
	for _, w := range needle {
		if !set[w] {
			return false
		}
	}
	return true
}

// normalizeActivityName lowercases and collapses punctuation to single spaces.
func normalizeActivityName(s string) string {
	var b strings.Builder
	space := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r)
			space = false
			continue
		}
		space = true
	}
	return b.String()
}
