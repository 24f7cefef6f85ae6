package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"capmcli/internal/capm"
	"capmcli/internal/config"
	"capmcli/internal/regression"
	"capmcli/pkg/contracts/domain"
)

// Section titles
const (
	TitlePreview  = "Regression data:"
	TitleCAPM     = "Model 1: Standard CAPM (OLS)"
	TitleExtended = "Model 2: Extended Asymmetric Model (OLS)"
)

// Analysis is everything the report prints
type Analysis struct {
	Records      []domain.RegressionRecord
	CAPM         *regression.Model
	Extended     *regression.Model
	BetaSymmetry *capm.TestResult
	ZeroAlpha    *capm.TestResult
}

// Options controls rendering
type Options struct {
	// PreviewRows is how many regression rows to show. Zero or less means
	// config.DefaultPreviewRows.
	PreviewRows int
	// Color highlights decision lines with ANSI colour.
	Color bool
}

// Renderer writes an Analysis as text
type Renderer struct {
	w       io.Writer
	opts    Options
	reject  *color.Color
	accept  *color.Color
	heading *color.Color
}

// New creates a renderer writing to w
func New(w io.Writer, opts Options) *Renderer {
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = config.DefaultPreviewRows
	}
	r := &Renderer{
		w:       w,
		opts:    opts,
		reject:  color.New(color.FgRed, color.Bold),
		accept:  color.New(color.FgGreen, color.Bold),
		heading: color.New(color.Bold),
	}
	for _, c := range []*color.Color{r.reject, r.accept, r.heading} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// ColorEnabled reports whether f is a terminal and colour was not turned off
func ColorEnabled(f *os.File, noColor bool) bool {
	if noColor || f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Render writes the full report
func (r *Renderer) Render(a Analysis) error {
	if a.CAPM == nil || a.Extended == nil || a.BetaSymmetry == nil || a.ZeroAlpha == nil {
		return errors.New("analysis is incomplete")
	}

	var b strings.Builder
	b.WriteString(r.heading.Sprint(TitlePreview))
	b.WriteByte('\n')
	b.WriteString(Preview(a.Records, r.opts.PreviewRows))
	b.WriteString("\n\n")

	for _, s := range []struct {
		title string
		model *regression.Model
	}{
		{TitleCAPM, a.CAPM},
		{TitleExtended, a.Extended},
	} {
		b.WriteString("\n " + r.heading.Sprint(s.title) + "\n")
		b.WriteString(summary(s.model))
	}

	for _, t := range []*capm.TestResult{a.BetaSymmetry, a.ZeroAlpha} {
		b.WriteString("\n " + r.heading.Sprint(testTitle(t)) + "\n")
		b.WriteString(r.testBlock(t))
	}

	_, err := io.WriteString(r.w, b.String())
	return err
}

// Preview formats the first n records as a table in regression column order
func Preview(records []domain.RegressionRecord, n int) string {
	if n > len(records) {
		n = len(records)
	}
	if n < 0 {
		n = 0
	}

	widths := make([]int, len(domain.RegressionColumns))
	for i, name := range domain.RegressionColumns {
		widths[i] = len(name)
		if widths[i] < 10 {
			widths[i] = 10
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%5s", "Row")
	for i, name := range domain.RegressionColumns {
		fmt.Fprintf(&b, "  %*s", widths[i], name)
	}
	for _, rec := range records[:n] {
		b.WriteByte('\n')
		fmt.Fprintf(&b, "%5d", rec.Row)
		for i, v := range rec.Values() {
			fmt.Fprintf(&b, "  %*s", widths[i], formatFixed(v, 6))
		}
	}
	return b.String()
}

func testTitle(t *capm.TestResult) string {
	return fmt.Sprintf("%s-Test for %s", t.Kind, t.Hypothesis)
}

func (r *Renderer) testBlock(t *capm.TestResult) string {
	decision := r.accept
	if t.Reject {
		decision = r.reject
	}
	return fmt.Sprintf("%s-statistic: %.5f\nP-value: %.5f\n%s\n",
		t.Kind, t.Statistic, t.PValue, decision.Sprint(t.Decision))
}
