// Package report renders the results of a CAPM analysis as plain text.
//
// The output has four parts, written in order to a single io.Writer:
//
// Preview: the first rows of the regression table with the columns
// Excess_R_Stock, Excess_R_M, X1_U_M, X2_D_M and X3_Squared.
//
// Summaries: an OLS summary for the standard CAPM and for the extended
// up/down market model, laid out like the statsmodels summary table.
//
// Tests: the beta symmetry F test and the zero alpha t test, each with its
// statistic, p-value and decision sentence.
//
// Example usage:
//
//	r := report.New(os.Stdout, report.Options{
//		PreviewRows: 5,
//		Color:       report.ColorEnabled(os.Stdout, noColor),
//	})
//	err := r.Render(report.Analysis{
//		Records:      state.Records,
//		CAPM:         state.CAPM,
//		Extended:     state.Extended,
//		BetaSymmetry: state.BetaSymmetry,
//		ZeroAlpha:    state.ZeroAlpha,
//	})
package report
