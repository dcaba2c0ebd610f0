package scoring

import (
	"chicfocus/internal/sessions"
	"chicfocus/internal/tiers"
)

// Price computes the points earned by completed[idx] given its position in
// the user's completed-session history. The trailing window of up to three
// completions drives a repeat penalty and a switch bonus; the two conditions
// overlap and can both fire on the same window. A run of three or more
// consecutive top-tier completions ending here adds a boss bonus. The result
// never goes negative.
func Price(completed []sessions.Session, idx int, cat tiers.Catalog) int {
	if idx < 0 || idx >= len(completed) {
		return 0
	}
	s := completed[idx]
	tier, ok := cat.Get(s.Tier)
	if !ok {
		return 0
	}
	points := tier.Points

	if idx >= 2 {
		window := completed[idx-2 : idx+1]

		allSame := true
		for _, w := range window {
			if w.Task != s.Task {
				allSame = false
				break
			}
		}
		if allSame {
			points--
		}

		distinct := map[string]bool{}
		for _, w := range window {
			distinct[w.Task] = true
		}
		if len(distinct) > 1 {
			points += 2
		}
	}

	if s.Tier == cat.Top() {
		run := 1
		for j := idx - 1; j >= 0; j-- {
			if completed[j].Tier != cat.Top() {
				break
			}
			run++
		}
		if run >= 3 {
			points += 3
		}
	}

	if points < 0 {
		points = 0
	}
	return points
}

// PriceFinal applies the double-points session modifier on top of Price.
func PriceFinal(completed []sessions.Session, idx int, cat tiers.Catalog) int {
	if idx < 0 || idx >= len(completed) {
		return 0
	}
	p := Price(completed, idx, cat)
	if completed[idx].DoublePoints {
		p *= 2
	}
	return p
}

// Total sums PriceFinal over an entire completed-session history, each
// session evaluated with its own positional context.
func Total(completed []sessions.Session, cat tiers.Catalog) int {
	total := 0
	for i := range completed {
		total += PriceFinal(completed, i, cat)
	}
	return total
}
