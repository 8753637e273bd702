package outlier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func uniform(n int, value float64) []Sample {
	out := make([]Sample, n)
	for i := range out {
		out[i] = Sample{FileID: 1, Line: uint(i + 1), Value: value}
	}
	return out
}

func TestIdenticalValuesYieldNoOutliers(t *testing.T) {
	samples := uniform(40, 5)
	out := Detect(samples, false)
	assert.Empty(t, out, "expected no outliers for identical values")
}

func TestSmallSampleSelectsRuleBased(t *testing.T) {
	samples := make([]Sample, 9)
	for i := range samples {
		samples[i] = Sample{FileID: 1, Line: uint(i), Text: "getUserById"}
	}
	assert.Equal(t, MethodRuleBased, SelectMethod(samples, false), "expected rule-based for n<10")
}

func TestMidSampleSelectsGrubbs(t *testing.T) {
	samples := make([]Sample, 15)
	for i := range samples {
		samples[i] = Sample{FileID: 1, Line: uint(i), Value: 3}
	}
	samples[0].Value = 200
	assert.Equal(t, MethodGrubbs, SelectMethod(samples, false), "expected grubbs for 15 samples")
	out := Detect(samples, false)
	assert.NotEmpty(t, out, "expected grubbs to flag the extreme value")
}

func TestLargeSampleWithMildSkewSelectsZScore(t *testing.T) {
	samples := make([]Sample, 35)
	for i := range samples {
		samples[i] = Sample{FileID: 1, Line: uint(i), Value: 10 + float64(i%3)}
	}
	samples[0].Value = 40
	m := SelectMethod(samples, false)
	assert.Equal(t, MethodZScore, m, "expected z-score for a large, mildly-skewed sample")
	out := Detect(samples, false)
	assert.NotEmpty(t, out, "expected z-score to flag the extreme value")
}

func TestLargeHeavilySkewedSampleFallsBackToMAD(t *testing.T) {
	samples := make([]Sample, 35)
	for i := range samples {
		samples[i] = Sample{FileID: 1, Line: uint(i), Value: 10}
	}
	samples[0].Value = 1000
	samples[1].Value = 1000
	m := SelectMethod(samples, false)
	assert.Equal(t, MethodMAD, m, "expected MAD fallback for a heavily skewed large sample")
	out := Detect(samples, false)
	assert.NotEmpty(t, out, "expected MAD to flag the extreme values")
}

func TestSignificanceTiering(t *testing.T) {
	cases := []struct {
		score float64
		want  Significance
	}{
		{0.95, SignificanceCritical},
		{0.80, SignificanceHigh},
		{0.60, SignificanceModerate},
		{0.20, SignificanceLow},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, significanceFor(c.score), "significanceFor(%f)", c.score)
	}
}

func TestRuleBasedFlagsDivergentText(t *testing.T) {
	samples := []Sample{
		{FileID: 1, Line: 1, Text: "getUserById"},
		{FileID: 1, Line: 2, Text: "getUserById"},
		{FileID: 1, Line: 3, Text: "getUserById"},
		{FileID: 2, Line: 1, Text: "getUserById"},
		{FileID: 2, Line: 2, Text: "fetchAccountRecordByIdentifierXYZ"},
	}
	out := Detect(samples, false)
	found := false
	for _, o := range out {
		if o.FileID == 2 && o.Line == 2 {
			found = true
		}
	}
	assert.True(t, found, "expected the divergent text sample to be flagged")
}

func TestIQRHandlesNonNormalMidSample(t *testing.T) {
	samples := make([]Sample, 12)
	for i := range samples {
		samples[i] = Sample{FileID: 1, Line: uint(i), Value: float64(i + 1)}
	}
	samples[0].Value = 500
	out := detectIQR(samples)
	assert.NotEmpty(t, out, "expected IQR to flag the extreme value")
}
