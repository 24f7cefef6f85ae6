package regression

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"

	apperrors "capmcli/internal/errors"
)

// InterceptName is the name given to the constant term of every fit.
const InterceptName = "Intercept"

// DefaultAlpha sets the coverage of the reported confidence intervals.
const DefaultAlpha = 0.05

// machineEpsilon is float64 unit roundoff as used for SVD rank tolerance.
const machineEpsilon = 2.220446049250313e-16

// Column is a named series of observations
type Column struct {
	Name   string
	Values []float64
}

// Options tunes a fit
type Options struct {
	// Alpha sets the confidence interval coverage to 1-Alpha. Zero means DefaultAlpha.
	Alpha float64
}

// Coefficient is one estimated parameter
type Coefficient struct {
	Name     string
	Estimate float64
	StdErr   float64
	TValue   float64
	PValue   float64
	CILower  float64
	CIUpper  float64
}

// Model is the immutable result of an ordinary least squares fit with an
// intercept. Coefficients are ordered Intercept first, then the regressors
// in the order given to Fit.
type Model struct {
	Name      string
	Dependent string
	Alpha     float64

	Coefficients []Coefficient

	NObs    int
	DFModel float64
	DFResid float64

	SSR         float64
	ESS         float64
	CenteredTSS float64
	Scale       float64

	RSquared    float64
	AdjRSquared float64
	FValue      float64
	FPValue     float64

	LogLikelihood float64
	AIC           float64
	BIC           float64

	Diagnostics Diagnostics

	ConditionNumber float64

	Residuals []float64
	Fitted    []float64

	covParams *mat.SymDense
	index     map[string]int
}

// Fit estimates y = b0 + sum(bi * xi) + e by ordinary least squares.
//
// It fails with an InsufficientDataError when there are not more rows than
// parameters or when the design matrix is rank deficient.
func Fit(name string, y Column, regressors []Column, opts Options) (*Model, error) {
	if opts.Alpha <= 0 || opts.Alpha >= 1 {
		opts.Alpha = DefaultAlpha
	}

	n := len(y.Values)
	k := len(regressors) + 1

	for _, c := range regressors {
		if len(c.Values) != n {
			return nil, apperrors.NewDataError(fmt.Sprintf(
				"model %s: regressor %s has %d values, dependent %s has %d", name, c.Name, len(c.Values), y.Name, n), nil)
		}
	}
	if n <= k {
		return nil, apperrors.NewInsufficientDataError(fmt.Sprintf(
			"model %s needs more than %d observations for %d parameters, got %d", name, k, k, n))
	}

	names := make([]string, k)
	names[0] = InterceptName
	x := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
	}
	for j, c := range regressors {
		names[j+1] = c.Name
		for i, v := range c.Values {
			if !isFinite(v) {
				return nil, apperrors.NewDataError(fmt.Sprintf(
					"model %s: regressor %s has a non-finite value at position %d", name, c.Name, i), nil)
			}
			x.Set(i, j+1, v)
		}
	}
	for i, v := range y.Values {
		if !isFinite(v) {
			return nil, apperrors.NewDataError(fmt.Sprintf(
				"model %s: dependent %s has a non-finite value at position %d", name, y.Name, i), nil)
		}
	}

	condNo, err := checkRank(name, x, n, k)
	if err != nil {
		return nil, err
	}

	var qr mat.QR
	qr.Factorize(x)
	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, mat.NewVecDense(n, append([]float64(nil), y.Values...))); err != nil {
		return nil, apperrors.NewInsufficientDataError(fmt.Sprintf("model %s: least squares solve failed: %v", name, err))
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	sym := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			sym.SetSym(i, j, (xtx.At(i, j)+xtx.At(j, i))/2)
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, apperrors.NewInsufficientDataError(fmt.Sprintf(
			"model %s: X'X is not positive definite; regressors are collinear", name))
	}
	var xtxInv mat.SymDense
	if err := chol.InverseTo(&xtxInv); err != nil {
		return nil, apperrors.NewInsufficientDataError(fmt.Sprintf("model %s: cannot invert X'X: %v", name, err))
	}

	var fittedVec mat.VecDense
	fittedVec.MulVec(x, &beta)

	m := &Model{
		Name:            name,
		Dependent:       y.Name,
		Alpha:           opts.Alpha,
		NObs:            n,
		DFModel:         float64(k - 1),
		DFResid:         float64(n - k),
		ConditionNumber: condNo,
		Residuals:       make([]float64, n),
		Fitted:          make([]float64, n),
		index:           make(map[string]int, k),
	}

	var mean float64
	for _, v := range y.Values {
		mean += v
	}
	mean /= float64(n)

	for i, v := range y.Values {
		f := fittedVec.AtVec(i)
		e := v - f
		m.Fitted[i] = f
		m.Residuals[i] = e
		m.SSR += e * e
		m.CenteredTSS += (v - mean) * (v - mean)
	}
	m.ESS = m.CenteredTSS - m.SSR
	m.Scale = m.SSR / m.DFResid

	m.RSquared = 1 - m.SSR/m.CenteredTSS
	m.AdjRSquared = 1 - float64(n-1)/m.DFResid*(1-m.RSquared)
	if m.DFModel > 0 {
		m.FValue = (m.ESS / m.DFModel) / (m.SSR / m.DFResid)
		m.FPValue = fSurvival(m.FValue, m.DFModel, m.DFResid)
	} else {
		m.FValue, m.FPValue = math.NaN(), math.NaN()
	}

	nf := float64(n)
	m.LogLikelihood = -nf/2*math.Log(2*math.Pi) - nf/2*math.Log(m.SSR/nf) - nf/2
	m.AIC = -2*m.LogLikelihood + 2*float64(k)
	m.BIC = -2*m.LogLikelihood + float64(k)*math.Log(nf)

	m.covParams = mat.NewSymDense(k, nil)
	m.covParams.ScaleSym(m.Scale, &xtxInv)

	q := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: m.DFResid}.Quantile(1 - opts.Alpha/2)
	m.Coefficients = make([]Coefficient, k)
	for j := 0; j < k; j++ {
		b := beta.AtVec(j)
		se := math.Sqrt(m.covParams.At(j, j))
		t := b / se
		m.Coefficients[j] = Coefficient{
			Name:     names[j],
			Estimate: b,
			StdErr:   se,
			TValue:   t,
			PValue:   twoSidedP(t, m.DFResid),
			CILower:  b - q*se,
			CIUpper:  b + q*se,
		}
		m.index[names[j]] = j
	}

	m.Diagnostics = computeDiagnostics(m.Residuals)

	return m, nil
}

// checkRank rejects rank-deficient designs using the numpy matrix_rank
// tolerance and returns the condition number of x.
func checkRank(name string, x *mat.Dense, n, k int) (float64, error) {
	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDNone); !ok {
		return 0, apperrors.NewInsufficientDataError(fmt.Sprintf("model %s: SVD of the design matrix failed", name))
	}
	sv := svd.Values(nil)

	tol := sv[0] * float64(maxInt(n, k)) * machineEpsilon
	rank := 0
	for _, s := range sv {
		if s > tol {
			rank++
		}
	}
	if rank < k {
		return 0, apperrors.NewInsufficientDataError(fmt.Sprintf(
			"model %s: design matrix is singular (rank %d of %d); a regressor is constant or collinear with others",
			name, rank, k)).
			WithContext("rank", rank)
	}
	return sv[0] / sv[len(sv)-1], nil
}

// Coefficient looks up a parameter by name.
func (m *Model) Coefficient(name string) (Coefficient, bool) {
	j, ok := m.index[name]
	if !ok {
		return Coefficient{}, false
	}
	return m.Coefficients[j], true
}

// ParamNames returns the parameter names in model order.
func (m *Model) ParamNames() []string {
	out := make([]string, len(m.Coefficients))
	for i, c := range m.Coefficients {
		out[i] = c.Name
	}
	return out
}

// CovParams returns a copy of the estimated parameter covariance matrix.
func (m *Model) CovParams() *mat.SymDense {
	c := mat.NewSymDense(m.covParams.SymmetricDim(), nil)
	c.CopySym(m.covParams)
	return c
}

// twoSidedP is the two-sided Student t p-value of t.
func twoSidedP(t, df float64) float64 {
	switch {
	case math.IsNaN(t):
		return math.NaN()
	case math.IsInf(t, 0):
		return 0
	}
	// P(|T| > t) = I_x(df/2, 1/2) with x = df/(df+t^2), evaluated directly
	// so tiny p-values are not lost to 1 - CDF cancellation.
	return mathext.RegIncBeta(df/2, 0.5, df/(df+t*t))
}

// fSurvival is P(F > f) for an F(d1, d2) variable.
func fSurvival(f, d1, d2 float64) float64 {
	switch {
	case math.IsNaN(f):
		return math.NaN()
	case math.IsInf(f, 1):
		return 0
	case f <= 0:
		return 1
	}
	return mathext.RegIncBeta(d2/2, d1/2, d2/(d2+d1*f))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
