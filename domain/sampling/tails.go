package sampling

import (
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

// tailProbabilities evaluates one-sided binomial tails for a fixed (n, p).
type tailProbabilities interface {
	// AtMost returns P(X <= k).
	AtMost(k int) float64
	// AtLeast returns P(X >= k).
	AtLeast(k int) float64
}

// binomialTails is backed by gonum.
type binomialTails struct {
	n    int
	p    float64
	dist distuv.Binomial
}

func newBinomialTails(n int, p float64) binomialTails {
	return binomialTails{
		n:    n,
		p:    p,
		dist: distuv.Binomial{N: float64(n), P: p},
	}
}

func (b binomialTails) AtMost(k int) float64 {
	return b.dist.CDF(float64(k))
}

// AtLeast uses P(X >= k) = I_p(k, n-k+1) directly; distuv's Survival is 1 - CDF and
// cancels badly in the upper tail.
func (b binomialTails) AtLeast(k int) float64 {
	switch {
	case k <= 0:
		return 1
	case k > b.n:
		return 0
	}
	return mathext.RegIncBeta(float64(k), float64(b.n-k+1), b.p)
}
