package achievements

import "testing"

func hasAchievement(list []Achievement, id ID) bool {
	for _, a := range list {
		if a.ID == id {
			return true
		}
	}
	return false
}

func TestEvaluateCompletion_WeekWarrior(t *testing.T) {
	earned := EvaluateCompletion(CompletionStats{WeeklyCompleted: 5})
	if !hasAchievement(earned, WeekWarrior) {
		t.Error("should earn WeekWarrior with 5 weekly completions")
	}
}

func TestEvaluateCompletion_NoWeekWarrior(t *testing.T) {
	earned := EvaluateCompletion(CompletionStats{WeeklyCompleted: 4})
	if hasAchievement(earned, WeekWarrior) {
		t.Error("should not earn WeekWarrior with 4 weekly completions")
	}
}

func TestEvaluateCompletion_BossMode(t *testing.T) {
	earned := EvaluateCompletion(CompletionStats{LastThreeTopTier: true})
	if !hasAchievement(earned, BossMode) {
		t.Error("should earn Boss Mode when last three completions are top-tier")
	}
}

func TestEvaluateCompletion_GoldStandard(t *testing.T) {
	earned := EvaluateCompletion(CompletionStats{LifetimeTopTier: 20})
	if !hasAchievement(earned, GoldStandard) {
		t.Error("should earn Gold Standard with 20 lifetime top-tier completions")
	}
	if All[GoldStandard].Theme == "" {
		t.Error("Gold Standard should unlock a cosmetic theme")
	}
}

func TestEvaluateCompletion_NoGoldStandard(t *testing.T) {
	earned := EvaluateCompletion(CompletionStats{LifetimeTopTier: 19})
	if hasAchievement(earned, GoldStandard) {
		t.Error("should not earn Gold Standard with 19 lifetime top-tier completions")
	}
}

func TestEvaluateCompletion_Multiple(t *testing.T) {
	earned := EvaluateCompletion(CompletionStats{
		WeeklyCompleted:  6,
		LifetimeTopTier:  25,
		LastThreeTopTier: true,
	})
	if len(earned) != 3 {
		t.Errorf("should earn 3 achievements, got %d", len(earned))
	}
}

func TestEvaluateCycle_CycleChampion(t *testing.T) {
	earned := EvaluateCycle(CycleStats{IsWinner: true})
	if !hasAchievement(earned, CycleChampion) {
		t.Error("cycle winner should earn Cycle Champion")
	}
}

func TestEvaluateCycle_Tier3Master(t *testing.T) {
	earned := EvaluateCycle(CycleStats{WeeklyTopTier: 5})
	if !hasAchievement(earned, Tier3Master) {
		t.Error("should earn Tier 3 Master with 5 weekly top-tier completions")
	}
}

func TestEvaluateCycle_PerfectWeek(t *testing.T) {
	earned := EvaluateCycle(CycleStats{Completions: 5, DistinctDays: 5})
	if !hasAchievement(earned, PerfectWeek) {
		t.Error("should earn Perfect Week with 5 sessions on 5 days")
	}

	earned = EvaluateCycle(CycleStats{Completions: 7, DistinctDays: 4})
	if hasAchievement(earned, PerfectWeek) {
		t.Error("should not earn Perfect Week with only 4 distinct days")
	}
}

func TestEvaluateCycle_NothingForLoser(t *testing.T) {
	earned := EvaluateCycle(CycleStats{IsWinner: false, WeeklyTopTier: 2, Completions: 3, DistinctDays: 3})
	if len(earned) != 0 {
		t.Errorf("should earn nothing, got %v", earned)
	}
}
