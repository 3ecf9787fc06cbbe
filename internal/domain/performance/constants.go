package performance

const (
	AssessmentStatusDraft  = "draft"
	AssessmentStatusActive = "active"
	AssessmentStatusClosed = "closed"
)

// BossMode selects how the boss enters scores for an assessment.
type BossMode string

const (
	// BossModeFull scores every item directly, like a leader.
	BossModeFull BossMode = "full"
	// BossModeSimplified rates each category with stars using the category mapping.
	BossModeSimplified BossMode = "simplified"
	// BossModeTraditional rates each category with stars using the global mapping.
	BossModeTraditional BossMode = "traditional"
)

func (m BossMode) Valid() bool {
	switch m {
	case BossModeFull, BossModeSimplified, BossModeTraditional:
		return true
	}
	return false
}

func (m BossMode) UsesStars() bool {
	return m == BossModeSimplified || m == BossModeTraditional
}
