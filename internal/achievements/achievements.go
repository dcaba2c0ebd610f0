package achievements

type ID string

const (
	WeekWarrior   ID = "week_warrior"
	BossMode      ID = "boss_mode"
	GoldStandard  ID = "gold_standard"
	CycleChampion ID = "cycle_champion"
	Tier3Master   ID = "tier3_master"
	PerfectWeek   ID = "perfect_week"
)

type Achievement struct {
	ID          ID
	Name        string
	Description string
	Icon        string
	// Theme is a cosmetic set unlocked alongside the badge, if any.
	Theme string
}

var All = map[ID]Achievement{
	WeekWarrior:   {ID: WeekWarrior, Name: "WeekWarrior", Description: "5 completions in one week", Icon: "🗡️"},
	BossMode:      {ID: BossMode, Name: "Boss Mode", Description: "3 heavy sessions back to back", Icon: "🔥"},
	GoldStandard:  {ID: GoldStandard, Name: "Gold Standard", Description: "20 lifetime heavy completions", Icon: "🏆", Theme: "golden"},
	CycleChampion: {ID: CycleChampion, Name: "Cycle Champion", Description: "Won a weekly cycle", Icon: "👑"},
	Tier3Master:   {ID: Tier3Master, Name: "Tier 3 Master", Description: "5 heavy completions in one week", Icon: "💪"},
	PerfectWeek:   {ID: PerfectWeek, Name: "Perfect Week", Description: "5+ sessions across 5+ days in one cycle", Icon: "✨", Theme: "rainbow"},
}

// CompletionStats is the snapshot evaluated after every natural completion.
type CompletionStats struct {
	WeeklyCompleted int
	LifetimeTopTier int
	// LastThreeTopTier is true when the 3 most recent completed sessions,
	// including this one, are all top-tier.
	LastThreeTopTier bool
}

// CycleStats is the per-user snapshot evaluated at cycle rollover.
type CycleStats struct {
	IsWinner      bool
	WeeklyTopTier int
	Completions   int
	DistinctDays  int
}

// EvaluateCompletion checks which achievements a completion earns. Callers
// filter against the user's existing set; evaluation itself is stateless.
func EvaluateCompletion(stats CompletionStats) []Achievement {
	var earned []Achievement

	if stats.WeeklyCompleted >= 5 {
		earned = append(earned, All[WeekWarrior])
	}
	if stats.LastThreeTopTier {
		earned = append(earned, All[BossMode])
	}
	if stats.LifetimeTopTier >= 20 {
		earned = append(earned, All[GoldStandard])
	}

	return earned
}

// EvaluateCycle checks which achievements a finished cycle earns.
func EvaluateCycle(stats CycleStats) []Achievement {
	var earned []Achievement

	if stats.IsWinner {
		earned = append(earned, All[CycleChampion])
	}
	if stats.WeeklyTopTier >= 5 {
		earned = append(earned, All[Tier3Master])
	}
	if stats.Completions >= 5 && stats.DistinctDays >= 5 {
		earned = append(earned, All[PerfectWeek])
	}

	return earned
}
