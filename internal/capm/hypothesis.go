package capm

import (
	"fmt"
	"math"
	"strconv"

	"capmcli/internal/regression"
	"capmcli/pkg/contracts/domain"
)

// Test kinds
const (
	KindF = "F"
	KindT = "t"
)

// TestResult is the outcome of a hypothesis test at a significance level
type TestResult struct {
	Name              string
	Kind              string
	Hypothesis        string
	Statistic         float64
	PValue            float64
	SignificanceLevel float64
	Reject            bool
	Decision          string
}

// BetaSymmetryTest tests H0: b1 = b2, the up-market beta equals the
// down-market beta, on the extended model. The statistic is F(1, n-4).
func BetaSymmetryTest(extended *regression.Model, alpha float64) (*TestResult, error) {
	r, err := extended.EqualityRestriction(domain.ColumnUpMarket, domain.ColumnDownMarket)
	if err != nil {
		return nil, err
	}
	f, err := extended.FTest(r)
	if err != nil {
		return nil, err
	}

	res := &TestResult{
		Name:              "F-test",
		Kind:              KindF,
		Hypothesis:        "H_0: beta_1 = beta_2",
		Statistic:         f.FValue,
		PValue:            f.PValue,
		SignificanceLevel: alpha,
		Reject:            rejects(f.PValue, alpha),
	}
	if res.Reject {
		res.Decision = "Decision: We reject H_0. The up and down market betas are significantly different under the observed data."
	} else {
		res.Decision = "Decision: We fail to reject H_0. No significant difference in betas under the observed data."
	}
	return res, nil
}

// ZeroAlphaTest tests H0: alpha = 0 on the CAPM model using the fit's own
// intercept t statistic.
func ZeroAlphaTest(capmModel *regression.Model, alpha float64) (*TestResult, error) {
	t, err := capmModel.TTest(regression.InterceptName)
	if err != nil {
		return nil, err
	}

	res := &TestResult{
		Name:              "t-test",
		Kind:              KindT,
		Hypothesis:        "H_0: alpha = 0",
		Statistic:         t.TValue,
		PValue:            t.PValue,
		SignificanceLevel: alpha,
		Reject:            rejects(t.PValue, alpha),
	}
	pct := FormatPercent(alpha)
	if res.Reject {
		res.Decision = fmt.Sprintf("Decision: We reject H_0. Alpha is different from zero at %s significance level.", pct)
	} else {
		res.Decision = fmt.Sprintf("Decision: Fail to reject H_0. Alpha is not statistically different from zero at %s significance level.", pct)
	}
	return res, nil
}

// rejects is p < alpha; an undefined p-value never rejects.
func rejects(p, alpha float64) bool {
	return !math.IsNaN(p) && p < alpha
}

// FormatPercent renders 0.05 as "5%".
func FormatPercent(alpha float64) string {
	v := math.Round(alpha*100*1e6) / 1e6
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}
