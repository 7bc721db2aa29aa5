package sampling

import (
	"fmt"
	"strings"

	"fam450/domain/core"
)

// ============================================================================
// SAMPLE PARAMETERS
// ============================================================================

// SampleParameters fixes one attribute-sampling design.
// INVARIANTS:
// - N >= 1
// - 0 < TRD < 1
// - 0 < OVR < 1
type SampleParameters struct {
	N   int     `json:"n"`   // Sample size
	TRD float64 `json:"trd"` // Tolerable rate of deviation
	OVR float64 `json:"ovr"` // Risk of overreliance (1 - confidence)
}

// NewSampleParameters validates and builds a parameter set. Values are never clamped.
func NewSampleParameters(n int, trd, ovr float64) (SampleParameters, error) {
	p := SampleParameters{N: n, TRD: trd, OVR: ovr}
	if err := p.Validate(); err != nil {
		return SampleParameters{}, err
	}
	return p, nil
}

// Validate checks the invariants; it is exported for values decoded from JSON or flags.
func (p SampleParameters) Validate() error {
	if p.N < 1 {
		return core.NewInvalidParameterError("n", fmt.Sprintf("must be a positive integer, got %d", p.N))
	}
	if !openUnit(p.TRD) {
		return core.NewInvalidParameterError("trd", fmt.Sprintf("must be in (0, 1), got %g", p.TRD))
	}
	if !openUnit(p.OVR) {
		return core.NewInvalidParameterError("ovr", fmt.Sprintf("must be in (0, 1), got %g", p.OVR))
	}
	return nil
}

// Confidence returns the requested confidence level 1 - OVR.
func (p SampleParameters) Confidence() float64 {
	return 1 - p.OVR
}

// NaN fails both comparisons.
func openUnit(x float64) bool {
	return x > 0 && x < 1
}

// ============================================================================
// DIRECTION
// ============================================================================

// Direction selects the one-sided alternative hypothesis.
type Direction string

const (
	// Less tests effectiveness: H0 rate >= trd, H1 rate < trd.
	Less Direction = "less"
	// Greater tests ineffectiveness: H0 rate <= trd, H1 rate > trd.
	Greater Direction = "greater"
)

// Directions lists the supported alternatives in table order.
func Directions() []Direction {
	return []Direction{Less, Greater}
}

// ParseDirection maps a literal onto a Direction. Surrounding whitespace and case are ignored.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if err := d.Validate(); err != nil {
		return "", core.NewUnsupportedDirectionError(s)
	}
	return d, nil
}

// Validate rejects values built by plain conversion.
func (d Direction) Validate() error {
	switch d {
	case Less, Greater:
		return nil
	default:
		return core.NewUnsupportedDirectionError(string(d))
	}
}

func (d Direction) String() string {
	return string(d)
}

// ============================================================================
// RESULTS
// ============================================================================

// QuantileResult is the outcome of one search.
type QuantileResult struct {
	Params    SampleParameters `json:"params"`
	Direction Direction        `json:"direction"`
	// K is the maximum allowed count for Less and the count that must be exceeded for Greater.
	K int `json:"k"`
	// AchievedConfidence is 1 minus the tail p-value at the boundary; always >= Params.Confidence().
	AchievedConfidence float64 `json:"achieved_confidence"`
}

// ObservedRate returns K / N.
func (r QuantileResult) ObservedRate() float64 {
	return float64(r.K) / float64(r.Params.N)
}
