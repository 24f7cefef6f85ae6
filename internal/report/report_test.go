package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capmcli/internal/capm"
	"capmcli/internal/regression"
	"capmcli/pkg/contracts/domain"
)

func textbookModel(t *testing.T) *regression.Model {
	t.Helper()
	m, err := regression.Fit("Textbook",
		regression.Column{Name: "y", Values: []float64{2, 4, 5, 4, 5}},
		[]regression.Column{{Name: "x", Values: []float64{1, 2, 3, 4, 5}}},
		regression.Options{})
	require.NoError(t, err)
	return m
}

func sampleAnalysis(t *testing.T, n int) Analysis {
	t.Helper()
	returns := make([]domain.ReturnRecord, n)
	for i := range returns {
		fi := float64(i)
		rm := 0.03 * math.Sin(fi*1.37+0.3)
		returns[i] = domain.ReturnRecord{
			Row:          i + 3,
			MarketReturn: rm,
			StockReturn:  0.002 + 1.2*rm + 0.005*math.Sin(fi*2.9+0.7),
			RiskFreeRate: 0.001,
		}
	}
	records := capm.BuildFeatures(returns)

	opts := regression.Options{Alpha: 0.05}
	c, err := capm.FitCAPM(records, opts)
	require.NoError(t, err)
	e, err := capm.FitExtended(records, opts)
	require.NoError(t, err)
	f, err := capm.BetaSymmetryTest(e, 0.05)
	require.NoError(t, err)
	z, err := capm.ZeroAlphaTest(c, 0.05)
	require.NoError(t, err)

	return Analysis{Records: records, CAPM: c, Extended: e, BetaSymmetry: f, ZeroAlpha: z}
}

func TestFormatters(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"fixed", formatFixed(0.59996, 3), "0.600"},
		{"fixed nan", formatFixed(math.NaN(), 3), "nan"},
		{"fixed inf", formatFixed(math.Inf(-1), 3), "-inf"},
		{"sig", formatSig(14.519539, 4), "14.52"},
		{"sig integer", formatSig(3, 6), "3"},
		{"coef fixed", formatCoef(2.2, 4), "2.2000"},
		{"coef zero", formatCoef(0, 4), "0.0000"},
		{"coef small", formatCoef(0.00001234, 4), "1.2340e-05"},
		{"coef large", formatCoef(-123456, 4), "-1.2346e+05"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

func TestPairLine(t *testing.T) {
	line := pairLine(field{"Model", "OLS"}, field{"R-squared", "0.600"})
	assert.True(t, strings.HasPrefix(line, "Model:"))
	assert.True(t, strings.HasSuffix(line, "0.600"))
	assert.Len(t, line, lineWidth)

	assert.Len(t, pairBlock([]field{{"a", "1"}}, []field{{"b", "2"}, {"c", "3"}}), 2)
}

func TestSummary_Textbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, textbookModel(t)))
	out := buf.String()

	for _, pattern := range []string{
		`Dep. Variable:\s+y\b`,
		`No. Observations:\s+5\b`,
		`Df Residuals:\s+3\b`,
		`R-squared:\s+0\.600`,
		`Adj. R-squared:\s+0\.467`,
		`F-statistic:\s+4\.5\b`,
		`Prob \(F-statistic\):\s+0\.124`,
		`Log-Likelihood:\s+-5\.2598`,
		`AIC:\s+14\.52`,
		`BIC:\s+13\.74`,
		`Intercept\s+2\.2000\s+0\.938\s+2\.345\s+0\.101\s+-0\.785\s+5\.185`,
		`x\s+0\.6000\s+0\.283\s+2\.121\s+0\.124\s+-0\.300\s+1\.500`,
		`\[0\.025\s+0\.975\]`,
		`Durbin-Watson:\s+2\.017`,
		`Prob\(JB\):\s+0\.752`,
		`Kurtosis:\s+1\.450`,
		`Cond. No.:\s+8\.37`,
	} {
		assert.Regexp(t, regexp.MustCompile(pattern), out)
	}

	assert.NotContains(t, out, "Omnibus:")
	assert.Contains(t, out, "Omnibus test omitted")
	assert.NotContains(t, out, "condition number is large")
}

func TestSummary_OmnibusShownWithEnoughRows(t *testing.T) {
	a := sampleAnalysis(t, 30)
	out := summary(a.CAPM)
	assert.Contains(t, out, "Omnibus:")
	assert.Contains(t, out, "Prob(Omnibus):")
	assert.NotContains(t, out, "Omnibus test omitted")
}

func TestWriteSummary_NilModel(t *testing.T) {
	assert.Error(t, WriteSummary(&bytes.Buffer{}, nil))
}

func TestConfidenceLabels(t *testing.T) {
	lo, hi := confidenceLabels(0.05)
	assert.Equal(t, "[0.025", lo)
	assert.Equal(t, "0.975]", hi)

	lo, hi = confidenceLabels(0.1)
	assert.Equal(t, "[0.050", lo)
	assert.Equal(t, "0.950]", hi)

	lo, _ = confidenceLabels(0)
	assert.Equal(t, "[0.025", lo)
}

func TestPreview(t *testing.T) {
	a := sampleAnalysis(t, 12)

	out := Preview(a.Records, 5)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 6)

	header := strings.Fields(lines[0])
	assert.Equal(t, append([]string{"Row"}, domain.RegressionColumns...), header)
	assert.Equal(t, "3", strings.Fields(lines[1])[0])

	assert.Len(t, strings.Split(Preview(a.Records[:2], 5), "\n"), 3)
	assert.Len(t, strings.Split(Preview(nil, 5), "\n"), 1)
}

func TestRender_Plain(t *testing.T) {
	a := sampleAnalysis(t, 30)

	var buf bytes.Buffer
	require.NoError(t, New(&buf, Options{PreviewRows: 3}).Render(a))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, TitlePreview+"\n"))
	assert.Less(t, strings.Index(out, TitleCAPM), strings.Index(out, TitleExtended))
	assert.Equal(t, 2, strings.Count(out, "OLS Regression Results"))

	assert.Contains(t, out, "F-Test for H_0: beta_1 = beta_2")
	assert.Contains(t, out, "t-Test for H_0: alpha = 0")
	assert.Contains(t, out, "F-statistic: "+formatFixed(a.BetaSymmetry.Statistic, 5)+"\n")
	assert.Contains(t, out, "t-statistic: "+formatFixed(a.ZeroAlpha.Statistic, 5)+"\n")
	assert.Contains(t, out, "P-value: "+formatFixed(a.ZeroAlpha.PValue, 5)+"\n")
	assert.Contains(t, out, a.BetaSymmetry.Decision+"\n")
	assert.Contains(t, out, a.ZeroAlpha.Decision+"\n")
	assert.NotContains(t, out, "\x1b[")
}

func TestRender_Color(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, Options{Color: true}).Render(sampleAnalysis(t, 30)))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestRender_Incomplete(t *testing.T) {
	a := sampleAnalysis(t, 12)
	a.ZeroAlpha = nil
	assert.Error(t, New(&bytes.Buffer{}, Options{}).Render(a))
}

func TestColorEnabled(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, ColorEnabled(f, false))
	assert.False(t, ColorEnabled(f, true))
	assert.False(t, ColorEnabled(nil, false))
}
