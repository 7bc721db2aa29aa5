package sampling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fam450/domain/core"
)

// exactTails serves fixed probabilities so threshold ties are exact.
type exactTails struct {
	atMost  []float64 // index k
	atLeast []float64 // index k
}

func (e exactTails) AtMost(k int) float64  { return e.atMost[k] }
func (e exactTails) AtLeast(k int) float64 { return e.atLeast[k] }

func mustParams(t *testing.T, n int, trd, ovr float64) SampleParameters {
	t.Helper()
	p, err := NewSampleParameters(n, trd, ovr)
	require.NoError(t, err)
	return p
}

func TestQuantileSearch_ReferenceExample(t *testing.T) {
	params := mustParams(t, 158, 0.05, 0.10)

	less, err := QuantileSearch(params, Less)
	require.NoError(t, err)
	assert.Equal(t, 4, less.K)
	assert.Equal(t, Less, less.Direction)
	assert.InDelta(t, 0.90042, less.AchievedConfidence, 1e-4)

	greater, err := QuantileSearch(params, Greater)
	require.NoError(t, err)
	assert.Equal(t, 11, greater.K)
	assert.InDelta(t, 0.90070, greater.AchievedConfidence, 1e-4)
}

func TestQuantileSearch_FAM450Tables(t *testing.T) {
	sizes := []int{45, 78, 105, 132, 158}
	tests := []struct {
		dir  Direction
		trd  float64
		want []int
	}{
		{Less, 0.05, []int{0, 1, 2, 3, 4}},
		{Less, 0.10, []int{1, 4, 6, 8, 10}},
		{Greater, 0.05, []int{4, 6, 8, 10, 11}},
		{Greater, 0.10, []int{7, 11, 15, 18, 21}},
	}

	for _, tt := range tests {
		for i, n := range sizes {
			res, err := QuantileSearch(mustParams(t, n, tt.trd, 0.10), tt.dir)
			require.NoError(t, err, "n=%d trd=%g dir=%s", n, tt.trd, tt.dir)
			assert.Equal(t, tt.want[i], res.K, "n=%d trd=%g dir=%s", n, tt.trd, tt.dir)
		}
	}
}

func TestQuantileSearch_LargerSamples(t *testing.T) {
	tests := []struct {
		n           int
		trd, ovr    float64
		less, great int
	}{
		{2000, 0.05, 0.05, 83, 116},
		{1000, 0.01, 0.10, 5, 14},
		{100, 0.05, 0.05, 1, 9},
		{60, 0.10, 0.05, 1, 10},
		{20, 0.30, 0.50, 5, 6},
	}

	for _, tt := range tests {
		params := mustParams(t, tt.n, tt.trd, tt.ovr)

		less, err := QuantileSearch(params, Less)
		require.NoError(t, err)
		assert.Equal(t, tt.less, less.K, "less n=%d", tt.n)

		greater, err := QuantileSearch(params, Greater)
		require.NoError(t, err)
		assert.Equal(t, tt.great, greater.K, "greater n=%d", tt.n)
	}
}

func TestQuantileSearch_MinimalSample(t *testing.T) {
	res, err := QuantileSearch(mustParams(t, 1, 0.5, 0.5), Less)
	require.NoError(t, err)
	assert.Contains(t, []int{0, 1}, res.K)
}

func TestQuantileSearch_Unattainable(t *testing.T) {
	_, err := QuantileSearch(mustParams(t, 10, 0.01, 0.01), Less)
	require.Error(t, err)
	assert.True(t, core.IsUnattainable(err), "got %v", err)

	// P(X = 1) = 0.5 > 0.1: even a single deviation in a single trial proves nothing.
	_, err = QuantileSearch(mustParams(t, 1, 0.5, 0.1), Greater)
	require.Error(t, err)
	assert.True(t, core.IsUnattainable(err), "got %v", err)
}

func TestQuantileSearch_RejectsBadInput(t *testing.T) {
	_, err := QuantileSearch(SampleParameters{N: 0, TRD: 0.05, OVR: 0.1}, Less)
	assert.True(t, core.IsInvalidParameter(err))

	_, err = QuantileSearch(mustParams(t, 10, 0.05, 0.1), Direction("two-sided"))
	assert.True(t, core.IsUnsupportedDirection(err))
}

func TestSearch_TieSatisfiesThreshold(t *testing.T) {
	params := SampleParameters{N: 3, TRD: 0.5, OVR: 0.25}
	tails := exactTails{
		atMost:  []float64{0.25, 0.5, 0.75, 1},
		atLeast: []float64{1, 0.75, 0.5, 0.25},
	}

	less, err := search(params, Less, tails)
	require.NoError(t, err)
	assert.Equal(t, 0, less.K)
	assert.Equal(t, 0.75, less.AchievedConfidence)

	greater, err := search(params, Greater, tails)
	require.NoError(t, err)
	assert.Equal(t, 2, greater.K)
	assert.Equal(t, 0.75, greater.AchievedConfidence)
}

func TestSearch_JustAboveThresholdIsUnattainable(t *testing.T) {
	params := SampleParameters{N: 2, TRD: 0.5, OVR: 0.25}
	tails := exactTails{
		atMost:  []float64{0.2500001, 0.75, 1},
		atLeast: []float64{1, 0.75, 0.2500001},
	}

	_, err := search(params, Less, tails)
	assert.True(t, core.IsUnattainable(err))

	_, err = search(params, Greater, tails)
	assert.True(t, core.IsUnattainable(err))
}

// The boundary must be extremal, not merely feasible.
func TestQuantileSearch_Extremal(t *testing.T) {
	for _, n := range []int{5, 25, 45, 158, 400} {
		for _, trd := range []float64{0.02, 0.05, 0.1, 0.25} {
			for _, ovr := range []float64{0.01, 0.05, 0.1, 0.3} {
				params := mustParams(t, n, trd, ovr)
				tails := newBinomialTails(n, trd)

				if res, err := QuantileSearch(params, Less); err == nil {
					assert.LessOrEqual(t, tails.AtMost(res.K), ovr)
					if res.K < n {
						assert.Greater(t, tails.AtMost(res.K+1), ovr, "less n=%d trd=%g ovr=%g", n, trd, ovr)
					}
					assert.GreaterOrEqual(t, res.AchievedConfidence, params.Confidence())
				} else {
					require.True(t, core.IsUnattainable(err))
					assert.Greater(t, tails.AtMost(0), ovr)
				}

				if res, err := QuantileSearch(params, Greater); err == nil {
					assert.LessOrEqual(t, tails.AtLeast(res.K+1), ovr)
					if res.K > 0 {
						assert.Greater(t, tails.AtLeast(res.K), ovr, "greater n=%d trd=%g ovr=%g", n, trd, ovr)
					}
					assert.GreaterOrEqual(t, res.AchievedConfidence, params.Confidence())
				} else {
					require.True(t, core.IsUnattainable(err))
					assert.Greater(t, tails.AtLeast(n), ovr)
				}
			}
		}
	}
}

// searchOrSentinel maps unattainable results onto the end of the order they would sit at:
// below every count for Less, above every count for Greater.
func searchOrSentinel(t *testing.T, n int, trd, ovr float64, dir Direction) int {
	t.Helper()
	res, err := QuantileSearch(mustParams(t, n, trd, ovr), dir)
	if core.IsUnattainable(err) {
		if dir == Less {
			return -1
		}
		return n + 1
	}
	require.NoError(t, err)
	return res.K
}

func TestQuantileSearch_MonotoneInOVR(t *testing.T) {
	ovrs := []float64{0.01, 0.025, 0.05, 0.1, 0.2, 0.3, 0.5, 0.7}
	for _, n := range []int{10, 45, 158, 500} {
		for _, trd := range []float64{0.01, 0.05, 0.1, 0.2} {
			prevLess, prevGreater := -2, n+2
			for _, ovr := range ovrs {
				less := searchOrSentinel(t, n, trd, ovr, Less)
				greater := searchOrSentinel(t, n, trd, ovr, Greater)
				assert.GreaterOrEqual(t, less, prevLess, "less n=%d trd=%g ovr=%g", n, trd, ovr)
				assert.LessOrEqual(t, greater, prevGreater, "greater n=%d trd=%g ovr=%g", n, trd, ovr)
				prevLess, prevGreater = less, greater
			}
		}
	}
}

func TestQuantileSearch_LessMonotoneInTRD(t *testing.T) {
	trds := []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.15, 0.3, 0.6}
	for _, n := range []int{10, 45, 158, 500} {
		for _, ovr := range []float64{0.05, 0.1, 0.25} {
			prev := -2
			for _, trd := range trds {
				k := searchOrSentinel(t, n, trd, ovr, Less)
				assert.GreaterOrEqual(t, k, prev, "n=%d trd=%g ovr=%g", n, trd, ovr)
				prev = k
			}
		}
	}
}

func TestBinomialTails_Complementary(t *testing.T) {
	tails := newBinomialTails(158, 0.05)
	for k := 1; k <= 30; k++ {
		assert.InDelta(t, 1-tails.AtMost(k-1), tails.AtLeast(k), 1e-12, "k=%d", k)
	}
	assert.Equal(t, 1.0, tails.AtLeast(0))
	assert.Equal(t, 0.0, tails.AtLeast(159))
	assert.Equal(t, 1.0, tails.AtMost(158))
}
