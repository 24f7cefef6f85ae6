package regression

import (
	"math"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat"
)

// MinOmnibusObservations is the smallest sample for the D'Agostino skew test.
const MinOmnibusObservations = 8

// Diagnostics summarises the residuals of a fit
type Diagnostics struct {
	DurbinWatson float64

	JarqueBera       float64
	JarqueBeraPValue float64

	// Skew and Kurtosis are the biased sample moments; Kurtosis is not excess.
	Skew     float64
	Kurtosis float64

	// Omnibus is D'Agostino's K^2; only set when HasOmnibus.
	HasOmnibus    bool
	Omnibus       float64
	OmnibusPValue float64
}

func computeDiagnostics(resid []float64) Diagnostics {
	var d Diagnostics

	var num, den float64
	for i, e := range resid {
		den += e * e
		if i > 0 {
			diff := e - resid[i-1]
			num += diff * diff
		}
	}
	d.DurbinWatson = num / den

	n := float64(len(resid))
	m2 := stat.Moment(2, resid, nil)
	d.Skew = stat.Moment(3, resid, nil) / math.Pow(m2, 1.5)
	d.Kurtosis = stat.Moment(4, resid, nil) / (m2 * m2)

	d.JarqueBera = n / 6 * (d.Skew*d.Skew + (d.Kurtosis-3)*(d.Kurtosis-3)/4)
	d.JarqueBeraPValue = chi2Survival(d.JarqueBera, 2)

	if len(resid) >= MinOmnibusObservations {
		zs := skewTestZ(d.Skew, n)
		zk := kurtosisTestZ(d.Kurtosis, n)
		d.Omnibus = zs*zs + zk*zk
		d.OmnibusPValue = chi2Survival(d.Omnibus, 2)
		d.HasOmnibus = true
	}

	return d
}

// skewTestZ transforms the sample skewness b to an approximately standard
// normal score (D'Agostino 1970).
func skewTestZ(b, n float64) float64 {
	y := b * math.Sqrt((n+1)*(n+3)/(6*(n-2)))
	beta2 := 3 * (n*n + 27*n - 70) * (n + 1) * (n + 3) / ((n - 2) * (n + 5) * (n + 7) * (n + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	delta := 1 / math.Sqrt(0.5*math.Log(w2))
	alpha := math.Sqrt(2 / (w2 - 1))
	return delta * math.Asinh(y/alpha)
}

// kurtosisTestZ transforms the sample kurtosis b2 (not excess) to an
// approximately standard normal score (Anscombe and Glynn 1983).
func kurtosisTestZ(b2, n float64) float64 {
	e := 3 * (n - 1) / (n + 1)
	varb2 := 24 * n * (n - 2) * (n - 3) / ((n + 1) * (n + 1) * (n + 3) * (n + 5))
	x := (b2 - e) / math.Sqrt(varb2)
	sqrtBeta1 := 6 * (n*n - 5*n + 2) / ((n + 7) * (n + 9)) * math.Sqrt(6*(n+3)*(n+5)/(n*(n-2)*(n-3)))
	a := 6 + 8/sqrtBeta1*(2/sqrtBeta1+math.Sqrt(1+4/(sqrtBeta1*sqrtBeta1)))
	term1 := 1 - 2/(9*a)
	denom := 1 + x*math.Sqrt(2/(a-4))
	if denom == 0 {
		return math.NaN()
	}
	term2 := math.Copysign(math.Cbrt((1-2/a)/math.Abs(denom)), denom)
	return (term1 - term2) / math.Sqrt(2/(9*a))
}

func chi2Survival(x, k float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if x <= 0 {
		return 1
	}
	return mathext.GammaIncRegComp(k/2, x/2)
}
