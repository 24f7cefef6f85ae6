package regression

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	apperrors "capmcli/internal/errors"
)

// Restriction is a set of linear hypotheses R·b = Q over a model's
// parameters. Each row of R has one weight per parameter in model order.
type Restriction struct {
	Label string
	R     [][]float64
	Q     []float64
}

// FTestResult is a Wald F test of a Restriction. For OLS it equals the
// restricted versus unrestricted residual sum of squares F statistic.
type FTestResult struct {
	Restriction string
	FValue      float64
	PValue      float64
	DFNum       float64
	DFDenom     float64
}

// TTestResult is the t test of a single coefficient against zero
type TTestResult struct {
	Param  string
	TValue float64
	PValue float64
	DF     float64
}

// EqualityRestriction builds the single hypothesis a = b.
func (m *Model) EqualityRestriction(a, b string) (Restriction, error) {
	ia, ok := m.index[a]
	if !ok {
		return Restriction{}, apperrors.NewNotFoundError(fmt.Sprintf("parameter %s in model %s", a, m.Name))
	}
	ib, ok := m.index[b]
	if !ok {
		return Restriction{}, apperrors.NewNotFoundError(fmt.Sprintf("parameter %s in model %s", b, m.Name))
	}
	if ia == ib {
		return Restriction{}, fmt.Errorf("restriction %s = %s is trivially true", a, b)
	}

	row := make([]float64, len(m.Coefficients))
	row[ia] = 1
	row[ib] = -1
	return Restriction{
		Label: fmt.Sprintf("%s = %s", a, b),
		R:     [][]float64{row},
		Q:     []float64{0},
	}, nil
}

// FTest computes F = (Rb-q)' [R V R']^-1 (Rb-q) / rows with V the parameter
// covariance, distributed F(rows, df_resid) under the null.
func (m *Model) FTest(r Restriction) (*FTestResult, error) {
	k := len(m.Coefficients)
	rows := len(r.R)
	if rows == 0 {
		return nil, fmt.Errorf("restriction %q has no rows", r.Label)
	}
	if len(r.Q) != rows {
		return nil, fmt.Errorf("restriction %q has %d rows but %d targets", r.Label, rows, len(r.Q))
	}

	rm := mat.NewDense(rows, k, nil)
	for i, w := range r.R {
		if len(w) != k {
			return nil, fmt.Errorf("restriction %q row %d has %d weights, model %s has %d parameters",
				r.Label, i, len(w), m.Name, k)
		}
		rm.SetRow(i, w)
	}

	beta := mat.NewVecDense(k, nil)
	for j, c := range m.Coefficients {
		beta.SetVec(j, c.Estimate)
	}

	var diff mat.VecDense
	diff.MulVec(rm, beta)
	diff.SubVec(&diff, mat.NewVecDense(rows, append([]float64(nil), r.Q...)))

	var rv, rvr mat.Dense
	rv.Mul(rm, m.covParams)
	rvr.Mul(&rv, rm.T())

	var inv mat.Dense
	if err := inv.Inverse(&rvr); err != nil {
		return nil, apperrors.NewInsufficientDataError(fmt.Sprintf(
			"restriction %q is not testable on model %s: %v", r.Label, m.Name, err))
	}

	f := mat.Inner(&diff, &inv, &diff) / float64(rows)

	return &FTestResult{
		Restriction: r.Label,
		FValue:      f,
		PValue:      fSurvival(f, float64(rows), m.DFResid),
		DFNum:       float64(rows),
		DFDenom:     m.DFResid,
	}, nil
}

// TTest returns the fit's own t statistic and two-sided p-value for param.
func (m *Model) TTest(param string) (*TTestResult, error) {
	c, ok := m.Coefficient(param)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("parameter %s in model %s (have %s)",
			param, m.Name, strings.Join(m.ParamNames(), ", ")))
	}
	return &TTestResult{
		Param:  param,
		TValue: c.TValue,
		PValue: c.PValue,
		DF:     m.DFResid,
	}, nil
}

// String renders the result the way statsmodels prints an F contrast.
func (r *FTestResult) String() string {
	return fmt.Sprintf("<F test: F=%s, p=%s, df_denom=%g, df_num=%g>",
		formatFloat(r.FValue), formatFloat(r.PValue), r.DFDenom, r.DFNum)
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return fmt.Sprintf("%v", v)
}
