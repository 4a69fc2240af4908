package scoring

type Verdict string

const (
	VerdictExcellent    Verdict = "excellent"
	VerdictGood         Verdict = "good"
	VerdictModerate     Verdict = "moderate"
	VerdictBelowAverage Verdict = "below_average"
	VerdictPoor         Verdict = "poor"
)

// bands are ordered by lower bound, highest first. Lower bounds are inclusive.
var bands = []struct {
	min     float64
	verdict Verdict
	text    string
}{
	{85, VerdictExcellent, "Excellent fit! Strong candidate with relevant experience and skills. Recommend for interview."},
	{75, VerdictGood, "Good fit with minor gaps. Solid candidate worth considering for next round."},
	{65, VerdictModerate, "Moderate fit. Has potential but may need training in some areas. Consider if other candidates are limited."},
	{50, VerdictBelowAverage, "Below average fit. Significant skill or experience gaps. Only consider if willing to invest in training."},
}

const poorText = "Poor fit for this role. Major gaps in requirements. Not recommended for this position."

func VerdictFor(score float64) Verdict {
	for _, b := range bands {
		if score >= b.min {
			return b.verdict
		}
	}
	return VerdictPoor
}

// Recommendation is the recruiter-facing sentence for the verdict.
func (v Verdict) Recommendation() string {
	for _, b := range bands {
		if b.verdict == v {
			return b.text
		}
	}
	return poorText
}
