package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZeroObservationsYieldsUncertainNoPanic(t *testing.T) {
	s := NewScore()
	assert.Equal(t, 1.0, s.Alpha)
	assert.Equal(t, 1.0, s.Beta)
	assert.Equal(t, TierUncertain, s.Tier)
	assert.Equal(t, 0.5, s.PosteriorMean())
}

func TestSingleObservationDoesNotPanic(t *testing.T) {
	prior := NewScore()
	updated := Update(prior, Observation{Conforming: 1, Total: 1, ScanID: "scan-1"})
	assert.GreaterOrEqual(t, updated.Alpha, 1.0)
	assert.GreaterOrEqual(t, updated.Beta, 1.0)
}

func TestIdempotentUpdateSameScanID(t *testing.T) {
	prior := NewScore()
	prior.ScanID = "scan-1"
	updated := Update(prior, Observation{Conforming: 5, Total: 5, ScanID: "scan-1"})
	assert.Equal(t, prior.Alpha, updated.Alpha, "expected re-applying the same scan_id to be a no-op")
	assert.Equal(t, prior.Beta, updated.Beta)
}

func TestAlphaBetaAlwaysValid(t *testing.T) {
	s := Update(NewScore(), Observation{Conforming: -5, Total: -10, ScanID: "scan-x"})
	assert.GreaterOrEqual(t, s.Alpha, 1.0, "clamp failed")
	assert.GreaterOrEqual(t, s.Beta, 1.0, "clamp failed")
}

func TestTierMonotonicInPosteriorMean(t *testing.T) {
	low := Score{Alpha: 2, Beta: 20}
	high := Score{Alpha: 20, Beta: 2}
	if assignTier(low) == TierEstablished {
		assert.Equal(t, TierEstablished, assignTier(high), "tier assignment not monotonic in posterior mean")
	}
}

func TestBootstrapSeedsFromLegacyScore(t *testing.T) {
	s := Bootstrap(0.8, 10)
	assert.Equal(t, 9.0, s.Alpha, "expected Beta(9,3) from k=8,n=10")
	assert.Equal(t, 3.0, s.Beta)
}
