package convention

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderift/drift/internal/confidence"
)

func TestDiscoverRequiresMinimumOccurrencesAndSpread(t *testing.T) {
	_, ok := Discover("naming.getter", []Alternative{{Name: "camelCase", Count: 1}}, 1, 10)
	assert.False(t, ok, "expected discovery to fail below minimum occurrences/spread")
}

func TestDiscoverDominantAllele(t *testing.T) {
	alts := []Alternative{{Name: "camelCase", Count: 18}, {Name: "snake_case", Count: 2}}
	g, ok := Discover("naming.getter", alts, 4, 10)
	require.True(t, ok, "expected discovery to trigger")
	assert.Equal(t, "camelCase", g.Dominant)
}

func TestContestedRuleOnCloseGap(t *testing.T) {
	means := map[string]float64{"camelCase": 0.55, "snake_case": 0.45}
	assert.True(t, IsContested(means), "expected a 10pp gap to be contested")
}

func TestNotContestedOnWideGap(t *testing.T) {
	means := map[string]float64{"camelCase": 0.90, "snake_case": 0.10}
	assert.False(t, IsContested(means), "expected a wide gap to not be contested")
}

func TestAssignCategoryUniversal(t *testing.T) {
	g := &Gene{
		PosteriorMeans: map[string]float64{"camelCase": 0.97, "snake_case": 0.03},
		FileSpread:     95,
		TotalFiles:     100,
		Tier:           confidence.TierEstablished,
	}
	assert.Equal(t, CategoryUniversal, AssignCategory(g))
}

func TestAssignCategoryLegacyOnStaleness(t *testing.T) {
	g := &Gene{
		PosteriorMeans: map[string]float64{"old": 0.9, "new": 0.1},
		FileSpread:     3,
		TotalFiles:     100,
		Tier:           confidence.TierTentative,
		DaysSinceSeen:  120,
	}
	assert.Equal(t, CategoryLegacy, AssignCategory(g), "expected Legacy for a pattern unseen >90 days")
}

func TestPromotionRequiresEstablishedTierAndSpread(t *testing.T) {
	g := &Gene{Status: StatusDiscovered, Tier: confidence.TierEstablished, FileSpread: 6}
	AdvanceLifecycle(g)
	assert.Equal(t, StatusApproved, g.Status, "expected promotion to Approved")
}

func TestApprovedDemotesToReviewNotExpired(t *testing.T) {
	g := &Gene{Status: StatusApproved, DaysSinceSeen: 95}
	AdvanceLifecycle(g)
	assert.Equal(t, StatusReview, g.Status, "expected demotion to Review")
}

func TestReviewExpiresAfterFurtherAbsence(t *testing.T) {
	g := &Gene{Status: StatusReview, DaysSinceSeen: 200}
	AdvanceLifecycle(g)
	assert.Equal(t, StatusExpired, g.Status, "expected expiry after prolonged absence")
}

func TestOperatorOverrideBlocksAutomaticLifecycle(t *testing.T) {
	g := &Gene{Status: StatusApproved, DaysSinceSeen: 200, OperatorOverride: true}
	AdvanceLifecycle(g)
	assert.Equal(t, StatusApproved, g.Status, "expected operator override to pin status")
}

func TestShouldFullRelearnAboveTenPercentChurn(t *testing.T) {
	assert.True(t, ShouldFullRelearn(15, 100), "expected full relearn above 10%% churn")
	assert.False(t, ShouldFullRelearn(5, 100), "expected incremental update below 10%% churn")
}

func TestReviewFileRoundTrip(t *testing.T) {
	entries := []ReviewEntry{{GeneID: "naming.getter", Decision: "approved", Note: "looks right"}}
	text := SaveReviewFile(entries)
	parsed, err := LoadReviewFile(text)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, "naming.getter", parsed[0].GeneID)
	assert.Equal(t, "approved", parsed[0].Decision)
}

func TestApplyReviewPinsOverride(t *testing.T) {
	g := &Gene{Status: StatusDiscovered}
	ApplyReview(g, ReviewEntry{Decision: "rejected"})
	assert.Equal(t, StatusExpired, g.Status, "expected rejected review to expire the gene")
	assert.True(t, g.OperatorOverride, "expected rejected review to pin the gene")
}
