package scoring

import (
	"testing"
	"time"

	"chicfocus/internal/sessions"
	"chicfocus/internal/tiers"
)

func history(specs ...[2]interface{}) []sessions.Session {
	base := time.Now().Add(-24 * time.Hour)
	out := make([]sessions.Session, len(specs))
	for i, spec := range specs {
		at := base.Add(time.Duration(i) * time.Hour)
		out[i] = sessions.Session{
			Task:        spec[0].(string),
			Tier:        spec[1].(int),
			StartedAt:   at,
			Completed:   true,
			CompletedAt: &at,
		}
	}
	return out
}

func TestPrice_RepeatPenalty(t *testing.T) {
	cat := tiers.DefaultCatalog()
	h := history([2]interface{}{"X", 1}, [2]interface{}{"X", 1}, [2]interface{}{"X", 1})

	// Third tier-1 session of the same task: base 1, penalty -1.
	if got := Price(h, 2, cat); got != 0 {
		t.Errorf("Price([X,X,X][2]) = %d, want 0", got)
	}
}

func TestPrice_SwitchBonus(t *testing.T) {
	cat := tiers.DefaultCatalog()
	h := history([2]interface{}{"X", 1}, [2]interface{}{"Y", 1}, [2]interface{}{"X", 1})

	// Window has two distinct names: base 1 + 2, no repeat penalty.
	if got := Price(h, 2, cat); got != 3 {
		t.Errorf("Price([X,Y,X][2]) = %d, want 3", got)
	}
}

func TestPrice_BossStreak(t *testing.T) {
	cat := tiers.DefaultCatalog()
	h := history([2]interface{}{"X", 3}, [2]interface{}{"X", 3}, [2]interface{}{"X", 3})

	// Base 3, repeat -1, boss run of 3 gives +3.
	if got := Price(h, 2, cat); got != 5 {
		t.Errorf("Price(three top-tier X) = %d, want 5", got)
	}
}

func TestPrice_BossStreakWithSwitch(t *testing.T) {
	cat := tiers.DefaultCatalog()
	h := history([2]interface{}{"A", 3}, [2]interface{}{"B", 3}, [2]interface{}{"C", 3})

	// Base 3, switch +2, boss +3.
	if got := Price(h, 2, cat); got != 8 {
		t.Errorf("Price(top-tier A,B,C) = %d, want 8", got)
	}
}

func TestPrice_BossStreakBrokenRun(t *testing.T) {
	cat := tiers.DefaultCatalog()
	h := history([2]interface{}{"A", 3}, [2]interface{}{"B", 1}, [2]interface{}{"C", 3}, [2]interface{}{"D", 3})

	// Trailing top-tier run is only 2, so no boss bonus: base 3 + switch 2.
	if got := Price(h, 3, cat); got != 5 {
		t.Errorf("Price(broken run) = %d, want 5", got)
	}
}

func TestPrice_ShortHistory(t *testing.T) {
	cat := tiers.DefaultCatalog()
	h := history([2]interface{}{"X", 2})

	// No window of 3 yet: just the base.
	if got := Price(h, 0, cat); got != 2 {
		t.Errorf("Price(single session) = %d, want 2", got)
	}
}

func TestPrice_NeverNegative(t *testing.T) {
	cat := tiers.DefaultCatalog()
	for n := 3; n <= 8; n++ {
		specs := make([][2]interface{}, n)
		for i := range specs {
			specs[i] = [2]interface{}{"same", 1}
		}
		h := history(specs...)
		if got := Price(h, n-1, cat); got < 0 {
			t.Errorf("Price returned negative value %d for %d repeats", got, n)
		}
	}
}

func TestPriceFinal_DoublePoints(t *testing.T) {
	cat := tiers.DefaultCatalog()
	h := history([2]interface{}{"X", 2})
	h[0].DoublePoints = true

	if got := PriceFinal(h, 0, cat); got != 4 {
		t.Errorf("PriceFinal(double tier-2) = %d, want 4", got)
	}
}

func TestPriceFinal_IndexOutOfRange(t *testing.T) {
	cat := tiers.DefaultCatalog()
	h := history([2]interface{}{"X", 2})

	if got := PriceFinal(h, 1, cat); got != 0 {
		t.Errorf("PriceFinal(past end) = %d, want 0", got)
	}
	if got := PriceFinal(h, -1, cat); got != 0 {
		t.Errorf("PriceFinal(-1) = %d, want 0", got)
	}
	if got := PriceFinal(nil, 0, cat); got != 0 {
		t.Errorf("PriceFinal(empty history) = %d, want 0", got)
	}
}

func TestTotal_SumsPositionalPrices(t *testing.T) {
	cat := tiers.DefaultCatalog()
	h := history(
		[2]interface{}{"X", 1}, // 1
		[2]interface{}{"X", 1}, // 1
		[2]interface{}{"X", 1}, // 1 - 1 = 0
		[2]interface{}{"Y", 1}, // 1 + 2 = 3
	)

	want := 0
	for i := range h {
		want += Price(h, i, cat)
	}
	if got := Total(h, cat); got != want {
		t.Errorf("Total() = %d, want %d", got, want)
	}
	if got := Total(h, cat); got != 5 {
		t.Errorf("Total() = %d, want 5", got)
	}
}
