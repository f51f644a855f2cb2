package catalog

// Filter narrows List output. Zero values match everything.
type Filter struct {
	Category      string
	MaxDifficulty int
}

// Entry is one row of a catalog listing.
type Entry struct {
	Key         Key
	Name        string
	Difficulty  int
	TotalFrames int // as declared in the document; 0 if absent
}

// List returns the motions matching f, known categories first in listing
// order, then extra categories; motions keep document order within a
// category.
func (c *Catalog) List(f Filter) []Entry {
	byCategory := make(map[string][]Key)
	for _, k := range c.order {
		byCategory[k.Category] = append(byCategory[k.Category], k)
	}

	var out []Entry
	for _, cat := range c.searchOrder() {
		if f.Category != "" && cat != f.Category {
			continue
		}
		for _, k := range byCategory[cat] {
			m := c.motions[k]
			if f.MaxDifficulty > 0 && m.Level() > f.MaxDifficulty {
				continue
			}
			out = append(out, Entry{
				Key:         k,
				Name:        m.DisplayName(),
				Difficulty:  m.Level(),
				TotalFrames: m.TotalFrames,
			})
		}
	}
	return out
}

// Stats counts motions per category.
type Stats struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category"`
}

// Stats returns motion counts. Every known category is present, with zero
// when the document lacks it.
func (c *Catalog) Stats() Stats {
	s := Stats{ByCategory: make(map[string]int, len(KnownCategories))}
	for _, cat := range KnownCategories {
		s.ByCategory[cat] = 0
	}
	for _, k := range c.order {
		s.ByCategory[k.Category]++
		s.Total++
	}
	return s
}

// Template returns a starter motion: a 3-tick wind-up, a 1-tick press of A
// and a 5-tick recovery.
func Template(name, category string, difficulty int) Motion {
	step := func(input string, hold int, comment string) Step {
		return Step{Input: &input, Hold: TicksOf(hold), Comment: comment}
	}
	return Motion{
		Key:         Key{Category: category, Name: name},
		Name:        name,
		Category:    category,
		Difficulty:  difficulty,
		TotalFrames: 9,
		Frames: []Step{
			step("5", 3, "wind-up"),
			step("5+A", 1, "press"),
			step("5", 5, "recovery"),
		},
	}
}
