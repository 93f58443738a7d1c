package rotor

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/rotorsim/internal/blade"
	"github.com/san-kum/rotorsim/internal/dynamo"
)

const (
	DefaultMaxIters  = 5000
	DefaultTolerance = 1e-12
	DefaultRelax     = 0.01

	// strips per goroutine when solving in parallel
	parallelChunk = 8
)

var (
	// ErrNonPositiveSpeed indicates a calc requested at zero or negative rpm,
	// where the strip equations divide by the rotational speed.
	ErrNonPositiveSpeed = errors.New("rotor: rotational speed must be positive")

	// ErrInflowLength indicates a warm-start array that does not match the
	// strip count.
	ErrInflowLength = errors.New("rotor: inflow length does not match strip count")

	// ErrConfig indicates invalid rotor construction parameters.
	ErrConfig = errors.New("rotor: invalid configuration")
)

// Options control the per-strip inflow iteration.
type Options struct {
	MaxIters  int     `yaml:"max_iters" json:"max_iters"`
	Tolerance float64 `yaml:"tolerance" json:"tolerance"`
	// Relax is the under-relaxation factor in (0, 1]. Smaller is slower but
	// more robust against oscillation.
	Relax    float64 `yaml:"relax" json:"relax"`
	Parallel bool    `yaml:"parallel" json:"parallel"`
}

func DefaultOptions() Options {
	return Options{
		MaxIters:  DefaultMaxIters,
		Tolerance: DefaultTolerance,
		Relax:     DefaultRelax,
	}
}

func (o Options) validate() error {
	if o.MaxIters < 1 {
		return fmt.Errorf("%w: max iterations must be at least 1, got %d", ErrConfig, o.MaxIters)
	}
	if o.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance must be positive, got %g", ErrConfig, o.Tolerance)
	}
	if o.Relax <= 0 || o.Relax > 1 {
		return fmt.Errorf("%w: relaxation must be in (0, 1], got %g", ErrConfig, o.Relax)
	}
	return nil
}

// Recorder receives per-calc solver statistics.
type Recorder interface {
	ObserveCalc(elapsed time.Duration, iterations []int, unconverged int)
}

// Discretization holds strip centre geometry and the uniform strip width.
type Discretization struct {
	Radius []float64
	Chord  []float64
	Twist  []float64
	Width  float64
}

func (d Discretization) clone() Discretization {
	return Discretization{
		Radius: append([]float64(nil), d.Radius...),
		Chord:  append([]float64(nil), d.Chord...),
		Twist:  append([]float64(nil), d.Twist...),
		Width:  d.Width,
	}
}

// Condition is one operating point.
type Condition struct {
	Density float64 `json:"density"`
	// Axial is the free-stream velocity along the rotor axis.
	Axial float64 `json:"axial"`
	RPM   float64 `json:"rpm"`
	// Pitch is the collective pitch in degrees.
	Pitch float64 `json:"pitch"`
}

// Omega returns the rotational speed in rad/s.
func (c Condition) Omega() float64 {
	return RPMToOmega(c.RPM)
}

func RPMToOmega(rpm float64) float64 {
	return rpm / 60 * 2 * math.Pi
}

type Rotor struct {
	blade    *blade.Blade
	blades   int
	disc     Discretization
	opts     Options
	logger   *log.Logger
	recorder Recorder
}

type Option func(*Rotor)

func WithOptions(o Options) Option {
	return func(r *Rotor) { r.opts = o }
}

func WithLogger(l *log.Logger) Option {
	return func(r *Rotor) { r.logger = l }
}

func WithRecorder(rec Recorder) Option {
	return func(r *Rotor) { r.recorder = rec }
}

// New builds a rotor of nblades copies of b cut into nstrips strips.
func New(b *blade.Blade, nblades, nstrips int, opts ...Option) (*Rotor, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil blade", ErrConfig)
	}
	if nblades < 1 {
		return nil, fmt.Errorf("%w: blade count must be at least 1, got %d", ErrConfig, nblades)
	}
	r := &Rotor{
		blade:  b,
		blades: nblades,
		opts:   DefaultOptions(),
	}
	for _, o := range opts {
		o(r)
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	if err := r.opts.validate(); err != nil {
		return nil, err
	}
	if err := r.Discretize(nstrips); err != nil {
		return nil, err
	}
	return r, nil
}

// Discretize recomputes strip centres, chord and twist for nstrips equal
// strips between the inner and outer radius. Warm-start arrays from an
// earlier discretisation are no longer valid afterwards.
func (r *Rotor) Discretize(nstrips int) error {
	if nstrips < 1 {
		return fmt.Errorf("%w: strip count must be at least 1, got %d", ErrConfig, nstrips)
	}
	ri := r.blade.InnerRadius()
	ro := r.blade.OuterRadius()
	d := Discretization{
		Radius: make([]float64, nstrips),
		Chord:  make([]float64, nstrips),
		Twist:  make([]float64, nstrips),
		Width:  (ro - ri) / float64(nstrips),
	}
	for i := 0; i < nstrips; i++ {
		rr := ri + (float64(i)+0.5)*d.Width
		d.Radius[i] = rr
		d.Chord[i] = r.blade.Chord(rr)
		d.Twist[i] = r.blade.Twist(rr)
	}
	r.disc = d
	return nil
}

func (r *Rotor) Blade() *blade.Blade { return r.blade }
func (r *Rotor) Blades() int         { return r.blades }
func (r *Rotor) Strips() int         { return len(r.disc.Radius) }
func (r *Rotor) Options() Options    { return r.opts }

// Discretization returns a copy of the strip geometry.
func (r *Rotor) Discretization() Discretization { return r.disc.clone() }

// DiskArea is the swept area of the outer radius.
func (r *Rotor) DiskArea() float64 {
	ro := r.blade.OuterRadius()
	return math.Pi * ro * ro
}

// Calc solves every strip at cond, seeding the iteration from inflow (nil
// means a cold start from zero). The input slice is not modified; the
// converged inflow is returned in the result.
func (r *Rotor) Calc(cond Condition, inflow []float64) (*State, error) {
	n := r.Strips()
	if inflow == nil {
		inflow = make([]float64, n)
	}
	if len(inflow) != n {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInflowLength, len(inflow), n)
	}
	if !(cond.RPM > 0) {
		return nil, fmt.Errorf("%w: rpm=%g", ErrNonPositiveSpeed, cond.RPM)
	}

	start := time.Now()
	omega := cond.Omega()
	st := newState(r.disc, cond)

	solve := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			res := r.solveStrip(i, cond, omega, inflow[i])
			st.set(i, res)
		}
	}
	if r.opts.Parallel {
		dynamo.ParallelFor(n, parallelChunk, solve)
	} else {
		solve(0, n)
	}

	for i, res := range st.Residual {
		if res > r.opts.Tolerance {
			st.Unconverged = append(st.Unconverged, i)
			r.logger.Warn("inflow did not converge", "strip", i, "residual", res, "iterations", st.Iterations[i])
		}
	}

	ro := r.blade.OuterRadius()
	area := r.DiskArea()
	tip := omega * ro
	st.Thrust = floats.Sum(st.DT)
	st.Power = floats.Sum(st.DP)
	st.CT = st.Thrust / (cond.Density * area * tip * tip)
	st.CP = st.Power / (cond.Density * area * tip * tip * tip)
	st.Torque = st.Power / omega

	if r.recorder != nil {
		r.recorder.ObserveCalc(time.Since(start), st.Iterations, len(st.Unconverged))
	}
	return st, nil
}

type stripResult struct {
	inflow, alpha, cl, cd, dT, dP float64
	residual                      float64
	iters                         int
}

// solveStrip iterates the induced inflow of strip i from the seed vi.
func (r *Rotor) solveStrip(i int, cond Condition, omega, vi float64) stripResult {
	rr := r.disc.Radius[i]
	chord := r.disc.Chord[i]
	twist := r.disc.Twist[i]
	dr := r.disc.Width
	ro := r.blade.OuterRadius()
	b := float64(r.blades)
	foil := r.blade.Airfoil()

	tipSpeed := omega * ro
	annulus := 4 * math.Pi * cond.Density * rr * dr
	relax := r.opts.Relax

	res := stripResult{residual: math.Inf(1)}
	for res.residual > r.opts.Tolerance && res.iters < r.opts.MaxIters {
		ut := omega * rr
		up := cond.Axial + vi
		phi := math.Atan(up / ut)
		alpha := cond.Pitch + twist - phi*180/math.Pi
		cl, cd := foil.Coefficients(alpha)
		q := 0.5 * cond.Density * (ut*ut + up*up) * chord
		lift, drag := q*cl, q*cd

		f := 1.0
		if up > 0 {
			f = TipLoss(r.blades, rr, ro, phi)
		}

		sin, cos := math.Sincos(phi)
		dT := b * f * dr * (lift*cos - drag*sin)
		dP := b * f * ut * dr * (drag*cos + lift*sin)

		vim := MomentumInflow(cond.Axial, dT, annulus)
		res.residual = math.Abs(vim-vi) / tipSpeed
		vi = relax*vim + (1-relax)*vi
		res.iters++

		res.alpha, res.cl, res.cd, res.dT, res.dP = alpha, cl, cd, dT, dP
	}
	res.inflow = vi
	return res
}

// TipLoss returns the Prandtl tip-loss factor for a strip at radius r of a
// rotor with the given blade count and outer radius, at inflow angle phi
// (radians). Non-positive inflow angles carry no loss.
func TipLoss(blades int, r, outer, phi float64) float64 {
	sin := math.Sin(phi)
	if sin <= 0 {
		return 1
	}
	f := 0.5 * float64(blades) * (outer - r) / (r * sin)
	return math.Acos(math.Exp(-f)) / (math.Pi / 2)
}

// MomentumInflow solves dT = a*(V*v + v^2) for the induced velocity v, where
// a = 4*pi*rho*r*dr is the annulus factor. A negative radicand is clamped to
// zero.
func MomentumInflow(axial, dT, annulus float64) float64 {
	arg := 0.25*axial*axial + dT/annulus
	return -0.5*axial + math.Sqrt(math.Max(arg, 0))
}
