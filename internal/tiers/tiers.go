package tiers

import "time"

// Tier is one catalog entry: a fixed session duration and base point value.
type Tier struct {
	ID        int
	Label     string
	Intensity string
	Minutes   int
	Points    int
}

func (t Tier) Duration() time.Duration {
	return time.Duration(t.Minutes) * time.Minute
}

// Catalog maps tier IDs to their definitions. IDs are ordered by increasing
// intensity; the highest ID is the top tier.
type Catalog struct {
	tiers map[int]Tier
	top   int
}

func New(list []Tier) Catalog {
	c := Catalog{tiers: make(map[int]Tier, len(list))}
	for _, t := range list {
		c.tiers[t.ID] = t
		if t.ID > c.top {
			c.top = t.ID
		}
	}
	return c
}

func DefaultCatalog() Catalog {
	return New([]Tier{
		{ID: 1, Label: "Light Chicken", Intensity: "casual", Minutes: 15, Points: 1},
		{ID: 2, Label: "Medium Chicken", Intensity: "normal", Minutes: 30, Points: 2},
		{ID: 3, Label: "Heavy Chicken", Intensity: "deep focus", Minutes: 45, Points: 3},
	})
}

func (c Catalog) Get(id int) (Tier, bool) {
	t, ok := c.tiers[id]
	return t, ok
}

// Top returns the highest tier ID in the catalog.
func (c Catalog) Top() int {
	return c.top
}

// List returns all tiers ordered by ascending ID.
func (c Catalog) List() []Tier {
	out := make([]Tier, 0, len(c.tiers))
	for id := 1; id <= c.top; id++ {
		if t, ok := c.tiers[id]; ok {
			out = append(out, t)
		}
	}
	return out
}
