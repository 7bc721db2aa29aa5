package sampling

import (
	"fmt"

	"fam450/domain/core"
)

// AuditTest binds one set of sample parameters. It is a value: every call recomputes from the
// parameters and no result is remembered between directions.
type AuditTest struct {
	params SampleParameters
}

// NewAuditTest validates n, trd and ovr.
func NewAuditTest(n int, trd, ovr float64) (AuditTest, error) {
	params, err := NewSampleParameters(n, trd, ovr)
	if err != nil {
		return AuditTest{}, err
	}
	return AuditTest{params: params}, nil
}

// Params returns the bound parameters.
func (a AuditTest) Params() SampleParameters {
	return a.params
}

// Search runs QuantileSearch for the bound parameters.
func (a AuditTest) Search(dir Direction) (QuantileResult, error) {
	return QuantileSearch(a.params, dir)
}

// AllowedDeviations returns k for dir.
func (a AuditTest) AllowedDeviations(dir Direction) (int, error) {
	result, err := a.Search(dir)
	if err != nil {
		return 0, err
	}
	return result.K, nil
}

// AllowedDeviationsFor accepts the literal "less" or "greater".
func (a AuditTest) AllowedDeviationsFor(literal string) (int, error) {
	dir, err := ParseDirection(literal)
	if err != nil {
		return 0, err
	}
	return a.AllowedDeviations(dir)
}

// Decision applies a search result to a deviation count actually observed in the sample.
type Decision struct {
	Observed   int    `json:"observed"`
	RejectNull bool   `json:"reject_null"`
	Conclusion string `json:"conclusion"`
}

// Interpret decides whether observed deviations reject the null hypothesis of r.
func Interpret(r QuantileResult, observed int) (Decision, error) {
	if observed < 0 || observed > r.Params.N {
		return Decision{}, core.NewInvalidParameterError("observed",
			fmt.Sprintf("must be in [0, %d], got %d", r.Params.N, observed))
	}

	var reject bool
	var claim string
	switch r.Direction {
	case Less:
		reject = observed <= r.K
		claim = "effective"
	case Greater:
		reject = observed > r.K
		claim = "ineffective"
	default:
		return Decision{}, core.NewUnsupportedDirectionError(string(r.Direction))
	}

	lead := printer.Sprintf("Observing %d deviations in a sample size of %d (%s)",
		observed, r.Params.N, ratePercent(float64(observed)/float64(r.Params.N)))
	conf := wholePercent(r.Params.Confidence())

	var conclusion string
	if reject {
		conclusion = fmt.Sprintf("%s rejects the null hypothesis with %s confidence: the internal controls are %s.",
			lead, conf, claim)
	} else {
		conclusion = fmt.Sprintf("%s fails to reject the null hypothesis with %s confidence: there is not enough evidence that the internal controls are %s.",
			lead, conf, claim)
	}

	return Decision{Observed: observed, RejectNull: reject, Conclusion: conclusion}, nil
}
