package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"capmcli/internal/regression"
)

// largeConditionNumber is where the summary starts warning about collinearity.
const largeConditionNumber = 1000

// WriteSummary writes the OLS summary table of m
func WriteSummary(w io.Writer, m *regression.Model) error {
	if m == nil {
		return fmt.Errorf("no model to summarise")
	}
	_, err := io.WriteString(w, summary(m))
	return err
}

func summary(m *regression.Model) string {
	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	line(center("OLS Regression Results"))
	line(rule("="))
	header := pairBlock(
		[]field{
			{"Dep. Variable", m.Dependent},
			{"Model", "OLS"},
			{"Method", "Least Squares"},
			{"No. Observations", strconv.Itoa(m.NObs)},
			{"Df Residuals", formatSig(m.DFResid, 6)},
			{"Df Model", formatSig(m.DFModel, 6)},
			{"Covariance Type", "nonrobust"},
		},
		[]field{
			{"R-squared", formatFixed(m.RSquared, 3)},
			{"Adj. R-squared", formatFixed(m.AdjRSquared, 3)},
			{"F-statistic", formatSig(m.FValue, 4)},
			{"Prob (F-statistic)", formatSig(m.FPValue, 3)},
			{"Log-Likelihood", formatSig(m.LogLikelihood, 5)},
			{"AIC", formatSig(m.AIC, 4)},
			{"BIC", formatSig(m.BIC, 4)},
		},
	)
	for _, l := range header {
		line(l)
	}
	line(rule("="))

	lower, upper := confidenceLabels(m.Alpha)
	line(fmt.Sprintf("%-15s%10s%10s%10s%10s%10s%10s", "", "coef", "std err", "t", "P>|t|", lower, upper))
	line(rule("-"))
	for _, c := range m.Coefficients {
		line(fmt.Sprintf("%-15s%10s%10s%10s%10s%10s%10s",
			truncate(c.Name, 15),
			formatCoef(c.Estimate, 4),
			formatFixed(c.StdErr, 3),
			formatFixed(c.TValue, 3),
			formatFixed(c.PValue, 3),
			formatFixed(c.CILower, 3),
			formatFixed(c.CIUpper, 3)))
	}
	line(rule("="))

	d := m.Diagnostics
	var left []field
	if d.HasOmnibus {
		left = append(left,
			field{"Omnibus", formatFixed(d.Omnibus, 3)},
			field{"Prob(Omnibus)", formatFixed(d.OmnibusPValue, 3)})
	}
	left = append(left,
		field{"Skew", formatFixed(d.Skew, 3)},
		field{"Kurtosis", formatFixed(d.Kurtosis, 3)})
	right := []field{
		{"Durbin-Watson", formatFixed(d.DurbinWatson, 3)},
		{"Jarque-Bera (JB)", formatFixed(d.JarqueBera, 3)},
		{"Prob(JB)", formatSig(d.JarqueBeraPValue, 3)},
		{"Cond. No.", formatSig(m.ConditionNumber, 3)},
	}
	for _, l := range pairBlock(left, right) {
		line(l)
	}
	line(rule("="))

	line("")
	line("Notes:")
	line("[1] Standard Errors assume that the covariance matrix of the errors is correctly specified.")
	n := 2
	if !d.HasOmnibus {
		line(fmt.Sprintf("[%d] Omnibus test omitted: it needs at least %d observations.", n, regression.MinOmnibusObservations))
		n++
	}
	if m.ConditionNumber > largeConditionNumber {
		line(fmt.Sprintf("[%d] The condition number is large, %s. This might indicate strong multicollinearity or other numerical problems.",
			n, formatSig(m.ConditionNumber, 3)))
	}
	return b.String()
}

// confidenceLabels renders the interval column headers, "[0.025" and "0.975]" at alpha 0.05
func confidenceLabels(alpha float64) (string, string) {
	if alpha <= 0 || alpha >= 1 {
		alpha = regression.DefaultAlpha
	}
	return "[" + strconv.FormatFloat(alpha/2, 'f', 3, 64),
		strconv.FormatFloat(1-alpha/2, 'f', 3, 64) + "]"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
