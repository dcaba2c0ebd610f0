package effects

import "math/rand"

type Kind string

const (
	BonusPoint    Kind = "bonus_point"
	SkipBreak     Kind = "skip_break"
	DoublePoints  Kind = "double_points"
	MirrorMode    Kind = "mirror_mode"
	TierUpgrade   Kind = "tier_upgrade"
	ComboExtender Kind = "combo_extender"
	DualChallenge Kind = "dual_challenge"
	ThemeSwap     Kind = "theme_swap"
)

type Effect struct {
	Kind        Kind
	Name        string
	Description string
	// Immediate effects apply at trigger time; the rest are stored as the
	// user's single pending effect until a later action consumes them.
	Immediate bool
}

var All = map[Kind]Effect{
	BonusPoint:    {Kind: BonusPoint, Name: "Bonus Point", Description: "+1 point, right now", Immediate: true},
	SkipBreak:     {Kind: SkipBreak, Name: "Skip Break", Description: "Your next break is waived"},
	DoublePoints:  {Kind: DoublePoints, Name: "Double Points", Description: "Your next session scores double"},
	MirrorMode:    {Kind: MirrorMode, Name: "Mirror Mode", Description: "See what your partner last worked on", Immediate: true},
	TierUpgrade:   {Kind: TierUpgrade, Name: "Tier Upgrade", Description: "Your next session is bumped up a tier"},
	ComboExtender: {Kind: ComboExtender, Name: "Combo Extender", Description: "Your streak survives the next reset"},
	DualChallenge: {Kind: DualChallenge, Name: "Dual Challenge", Description: "Your next session can duel regardless of timing"},
	ThemeSwap:     {Kind: ThemeSwap, Name: "Theme Swap", Description: "Borrow your partner's theme", Immediate: true},
}

// kinds in a fixed order so a seeded source always rolls the same sequence.
var kinds = []Kind{
	BonusPoint, SkipBreak, DoublePoints, MirrorMode,
	TierUpgrade, ComboExtender, DualChallenge, ThemeSwap,
}

// Dispenser rolls the once-daily mystery egg. The random source is
// injectable so selection is reproducible in tests.
type Dispenser struct {
	rng *rand.Rand
}

func NewDispenser(src rand.Source) *Dispenser {
	return &Dispenser{rng: rand.New(src)}
}

// Roll selects uniformly among all effect kinds.
func (d *Dispenser) Roll() Effect {
	return All[kinds[d.rng.Intn(len(kinds))]]
}
