package sampling

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer groups thousands in counts ("1,234").
var printer = message.NewPrinter(language.English)

// SimpleResults states k in one sentence.
func SimpleResults(r QuantileResult) string {
	switch r.Direction {
	case Greater:
		return printer.Sprintf("%d is the minimum number of allowed deviations, after which an experimenter has enough evidence to determine the internal controls are ineffective.", r.K)
	default:
		return printer.Sprintf("%d is the maximum number of allowed deviations that an experimenter has enough evidence to determine the internal controls are effective.", r.K)
	}
}

// DetailedResults states both hypotheses, then explains the reject and fail-to-reject cases.
func DetailedResults(r QuantileResult) string {
	trd := wholePercent(r.Params.TRD)
	conf := wholePercent(r.Params.Confidence())
	rate := ratePercent(r.ObservedRate())

	switch r.Direction {
	case Greater:
		return printer.Sprintf("Null Hypothesis: The true tolerable rate of deviation is at most %s.\n"+
			"Alternative Hypothesis: The true tolerable rate of deviation is greater than %s.\n\n"+
			"If the experimenter observes more than %d deviations in a sample size of %d (%s), "+
			"they can reject with %s confidence the null hypothesis that the true tolerable rate of deviation is at most %s "+
			"in favor of the alternative that it's greater than %s.  "+
			"If the experimenter observes %d or fewer deviations, they fail to reject the null hypothesis, "+
			"but cannot say the true tolerable rate of deviation is at most %s.",
			trd, trd, r.K, r.Params.N, rate, conf, trd, trd, r.K, trd)
	default:
		return printer.Sprintf("Null Hypothesis: The true tolerable rate of deviation is %s or more.\n"+
			"Alternative Hypothesis: The true tolerable rate of deviation is less than %s.\n\n"+
			"If the experimenter observes %d deviations or less in a sample size of %d (%s), "+
			"they can reject with %s confidence the null hypothesis that the true tolerable rate of deviation is %s or more "+
			"in favor of the alternative that it's less than %s.  "+
			"If the experimenter observes more than %d deviations, they fail to reject the null hypothesis, "+
			"but cannot say the true tolerable rate of deviation is %s or more.",
			trd, trd, r.K, r.Params.N, rate, conf, trd, trd, r.K, trd)
	}
}

// wholePercent renders 0.05 as "5%" and 0.025 as "2.5%".
func wholePercent(x float64) string {
	pct := math.Round(x*100*1e4) / 1e4
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}

// ratePercent renders an observed rate with two decimals: 4/158 is "2.53%".
func ratePercent(x float64) string {
	return strconv.FormatFloat(x*100, 'f', 2, 64) + "%"
}
