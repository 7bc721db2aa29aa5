package sampling

import (
	"sort"

	"fam450/domain/core"
)

// QuantileSearch finds the extremal deviation count k in [0, n] at which a one-sided exact
// binomial test against params.TRD reaches confidence 1 - params.OVR.
//
// For Less, k is the largest count with P(X <= k) <= OVR: observing k or fewer deviations
// rejects "rate >= trd". For Greater, k is the smallest count with P(X >= k+1) <= OVR:
// observing more than k deviations rejects "rate <= trd". Equality satisfies the threshold.
//
// When no count qualifies the error wraps core.ErrUnattainableResult.
func QuantileSearch(params SampleParameters, dir Direction) (QuantileResult, error) {
	if err := params.Validate(); err != nil {
		return QuantileResult{}, err
	}
	if err := dir.Validate(); err != nil {
		return QuantileResult{}, err
	}
	return search(params, dir, newBinomialTails(params.N, params.TRD))
}

func search(params SampleParameters, dir Direction, tails tailProbabilities) (QuantileResult, error) {
	switch dir {
	case Less:
		return searchLess(params, tails)
	case Greater:
		return searchGreater(params, tails)
	default:
		return QuantileResult{}, core.NewUnsupportedDirectionError(string(dir))
	}
}

// P(X <= k) is non-decreasing in k, so the counts that reject form a prefix of [0, n].
func searchLess(params SampleParameters, tails tailProbabilities) (QuantileResult, error) {
	firstAccepting := sort.Search(params.N+1, func(k int) bool {
		return tails.AtMost(k) > params.OVR
	})
	if firstAccepting == 0 {
		return QuantileResult{}, core.NewUnattainableError(string(Less), params.N, params.TRD, params.OVR)
	}

	k := firstAccepting - 1
	return QuantileResult{
		Params:             params,
		Direction:          Less,
		K:                  k,
		AchievedConfidence: 1 - tails.AtMost(k),
	}, nil
}

// P(X >= k+1) is non-increasing in k, so the qualifying thresholds form a suffix of [0, n-1].
// k = n is excluded: more than n deviations cannot be observed.
func searchGreater(params SampleParameters, tails tailProbabilities) (QuantileResult, error) {
	k := sort.Search(params.N, func(k int) bool {
		return tails.AtLeast(k+1) <= params.OVR
	})
	if k == params.N {
		return QuantileResult{}, core.NewUnattainableError(string(Greater), params.N, params.TRD, params.OVR)
	}

	return QuantileResult{
		Params:             params,
		Direction:          Greater,
		K:                  k,
		AchievedConfidence: 1 - tails.AtLeast(k+1),
	}, nil
}
