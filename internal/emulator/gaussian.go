// Package emulator fits a regression model from simulation parameters to
// observables so that new parameter sets can be evaluated without running
// the simulation.
package emulator

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/user/skygp_go/internal/errkind"
)

// ErrNotFitted is returned by Predict before a successful Fit.
var ErrNotFitted = errors.New("emulator: not fitted")

// Regressor maps rows of x to rows of y.
type Regressor interface {
	Fit(x, y *mat.Dense) error
	Predict(x *mat.Dense) (*mat.Dense, error)
}

// Hyperparameters are searched within [hyperMin, hyperMax].
const (
	hyperMin = 1e-5
	hyperMax = 1e5
)

// GaussianProcess is a zero-mean Gaussian process with a squared-exponential
// kernel and a fixed noise term on the diagonal.
type GaussianProcess struct {
	LengthScale    float64
	SignalVariance float64
	Noise          float64

	// Optimize makes Fit tune LengthScale and SignalVariance by maximizing
	// the log marginal likelihood, starting from the current values and
	// from Restarts() random points drawn log-uniformly.
	Optimize bool
	Seed     uint64

	restarts int
	xTrain   *mat.Dense
	yTrain   *mat.Dense
	weights  *mat.Dense
	logLik   float64
}

func NewGaussianProcess() *GaussianProcess {
	return &GaussianProcess{LengthScale: 1, SignalVariance: 1, Noise: 1e-10}
}

// SetRestarts sets how many random starts the hyperparameter search adds to
// the initial one. It has no effect unless Optimize is set.
func (g *GaussianProcess) SetRestarts(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: restarts must be >= 0, got %d", errkind.ErrFormat, n)
	}
	g.restarts = n
	return nil
}

// Restarts returns the configured optimizer restarts.
func (g *GaussianProcess) Restarts() int { return g.restarts }

// Fit stores copies of x and y and solves for the kernel weights. With
// Optimize set the hyperparameters are tuned first and left on g.
func (g *GaussianProcess) Fit(x, y *mat.Dense) error {
	if err := checkMatrix("x_train", x); err != nil {
		return err
	}
	if err := checkMatrix("y_train", y); err != nil {
		return err
	}
	n, _ := x.Dims()
	if yr, _ := y.Dims(); yr != n {
		return fmt.Errorf("%w: x_train has %d rows, y_train has %d", errkind.ErrFormat, n, yr)
	}
	if g.LengthScale <= 0 {
		return fmt.Errorf("%w: length scale must be positive, got %g", errkind.ErrFormat, g.LengthScale)
	}

	if g.SignalVariance <= 0 {
		return fmt.Errorf("%w: signal variance must be positive, got %g", errkind.ErrFormat, g.SignalVariance)
	}

	xTrain := mat.DenseCopyOf(x)
	yTrain := mat.DenseCopyOf(y)
	if g.Optimize {
		if err := g.tune(xTrain, yTrain); err != nil {
			return err
		}
	}
	chol, w, err := g.solve(xTrain, yTrain, g.LengthScale, g.SignalVariance)
	if err != nil {
		return err
	}

	g.xTrain = xTrain
	g.yTrain = yTrain
	g.weights = w
	g.logLik = logMarginalLikelihood(chol, w, yTrain)
	return nil
}

// LogLikelihood returns the log marginal likelihood of the training data
// under the fitted hyperparameters.
func (g *GaussianProcess) LogLikelihood() float64 { return g.logLik }

func (g *GaussianProcess) solve(x, y *mat.Dense, lengthScale, signalVariance float64) (*mat.Cholesky, *mat.Dense, error) {
	n, _ := x.Dims()
	k := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := rbf(x.RawRowView(i), x.RawRowView(j), lengthScale, signalVariance)
			if i == j {
				v += g.Noise
			}
			k.SetSym(i, j, v)
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(k); !ok {
		return nil, nil, errors.New("emulator: kernel matrix is not positive definite; increase noise")
	}
	var w mat.Dense
	if err := chol.SolveTo(&w, y); err != nil {
		return nil, nil, fmt.Errorf("emulator: solve kernel system: %w", err)
	}
	return &chol, &w, nil
}

// tune minimizes the negative log marginal likelihood over the log of the
// length scale and signal variance and keeps the best of all starts.
func (g *GaussianProcess) tune(x, y *mat.Dense) error {
	lo, hi := math.Log(hyperMin), math.Log(hyperMax)
	objective := func(p []float64) float64 {
		for _, v := range p {
			if v < lo || v > hi {
				return math.Inf(1)
			}
		}
		chol, w, err := g.solve(x, y, math.Exp(p[0]), math.Exp(p[1]))
		if err != nil {
			return math.Inf(1)
		}
		return -logMarginalLikelihood(chol, w, y)
	}

	starts := [][]float64{{math.Log(g.LengthScale), math.Log(g.SignalVariance)}}
	rng := rand.New(rand.NewPCG(g.Seed, g.Seed))
	for i := 0; i < g.restarts; i++ {
		starts = append(starts, []float64{lo + rng.Float64()*(hi-lo), lo + rng.Float64()*(hi-lo)})
	}

	best := math.Inf(1)
	var bestX []float64
	for _, start := range starts {
		res, _ := optimize.Minimize(optimize.Problem{Func: objective}, start,
			&optimize.Settings{MajorIterations: 500}, &optimize.NelderMead{})
		if res == nil || math.IsNaN(res.F) || math.IsInf(res.F, 0) {
			continue
		}
		if res.F < best {
			best = res.F
			bestX = append(bestX[:0], res.X...)
		}
	}
	if bestX == nil {
		return errors.New("emulator: no hyperparameter start gave a positive definite kernel")
	}
	g.LengthScale = math.Exp(bestX[0])
	g.SignalVariance = math.Exp(bestX[1])
	return nil
}

// logMarginalLikelihood sums the likelihood of every output column, which
// share the kernel.
func logMarginalLikelihood(chol *mat.Cholesky, w, y *mat.Dense) float64 {
	n, m := y.Dims()
	var fit float64
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			fit += y.At(i, j) * w.At(i, j)
		}
	}
	return -0.5*fit - 0.5*float64(m)*chol.LogDet() - 0.5*float64(n*m)*math.Log(2*math.Pi)
}

// Predict returns the posterior mean at every row of x.
func (g *GaussianProcess) Predict(x *mat.Dense) (*mat.Dense, error) {
	if g.weights == nil {
		return nil, ErrNotFitted
	}
	if err := checkMatrix("x", x); err != nil {
		return nil, err
	}
	m, c := x.Dims()
	n, tc := g.xTrain.Dims()
	if c != tc {
		return nil, fmt.Errorf("%w: x has %d columns, model was trained on %d", errkind.ErrFormat, c, tc)
	}

	cross := mat.NewDense(m, n, nil)
	for i := 0; i < m; i++ {
		xi := mat.Row(nil, i, x)
		for j := 0; j < n; j++ {
			cross.Set(i, j, g.kernel(xi, g.xTrain.RawRowView(j)))
		}
	}
	var out mat.Dense
	out.Mul(cross, g.weights)
	return &out, nil
}

// TrainingData returns the matrices passed to the last Fit.
func (g *GaussianProcess) TrainingData() (x, y *mat.Dense) {
	return g.xTrain, g.yTrain
}

func (g *GaussianProcess) kernel(a, b []float64) float64 {
	return rbf(a, b, g.LengthScale, g.SignalVariance)
}

func rbf(a, b []float64, lengthScale, signalVariance float64) float64 {
	var d2 float64
	for i := range a {
		d := a[i] - b[i]
		d2 += d * d
	}
	return signalVariance * math.Exp(-d2/(2*lengthScale*lengthScale))
}

func checkMatrix(name string, m *mat.Dense) error {
	if m == nil {
		return fmt.Errorf("%w: %s is nil", errkind.ErrFormat, name)
	}
	if r, c := m.Dims(); r == 0 || c == 0 {
		return fmt.Errorf("%w: %s is empty", errkind.ErrFormat, name)
	}
	return nil
}
