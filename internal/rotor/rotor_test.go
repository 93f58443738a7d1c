package rotor_test

import (
	"errors"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rotorsim/internal/airfoil"
	"github.com/san-kum/rotorsim/internal/blade"
	"github.com/san-kum/rotorsim/internal/rotor"
)

// linearFoil has Cl = 0.1/deg and constant Cd over +-30 degrees.
func linearFoil() *airfoil.Airfoil {
	var tbl airfoil.Table
	for a := -30.0; a <= 30; a++ {
		tbl.Alpha = append(tbl.Alpha, a)
		tbl.Cl = append(tbl.Cl, 0.1*a)
		tbl.Cd = append(tbl.Cd, 0.01)
	}
	foil, err := airfoil.New("linear", tbl)
	Expect(err).NotTo(HaveOccurred())
	return foil
}

func testBlade() *blade.Blade {
	b, err := blade.New(
		[]float64{0.1, 0.5, 1.0},
		[]float64{0.08, 0.08, 0.06},
		[]float64{6, 3, 0},
		linearFoil(),
	)
	Expect(err).NotTo(HaveOccurred())
	return b
}

func quietLogger() *log.Logger { return log.New(io.Discard) }

type countingRecorder struct {
	calls       int
	unconverged int
	strips      int
}

func (c *countingRecorder) ObserveCalc(_ time.Duration, iters []int, unconverged int) {
	c.calls++
	c.unconverged += unconverged
	c.strips = len(iters)
}

var _ = Describe("Rotor", func() {
	var (
		r    *rotor.Rotor
		cond rotor.Condition
	)

	BeforeEach(func() {
		var err error
		r, err = rotor.New(testBlade(), 3, 40, rotor.WithLogger(quietLogger()))
		Expect(err).NotTo(HaveOccurred())
		cond = rotor.Condition{Density: 1.225, Axial: 2, RPM: 1200, Pitch: 8}
	})

	Describe("Discretize", func() {
		It("places strip centres at equal widths", func() {
			d := r.Discretization()
			Expect(d.Radius).To(HaveLen(40))
			Expect(d.Width).To(BeNumerically("~", 0.9/40, 1e-15))
			Expect(d.Radius[0]).To(BeNumerically("~", 0.1+0.5*d.Width, 1e-15))
			Expect(d.Radius[39]).To(BeNumerically("~", 1.0-0.5*d.Width, 1e-12))
		})

		It("interpolates chord and twist at the strip centres", func() {
			Expect(r.Discretize(2)).To(Succeed())
			d := r.Discretization()
			// centres at 0.325 and 0.775
			Expect(d.Chord[0]).To(BeNumerically("~", 0.08, 1e-12))
			Expect(d.Twist[0]).To(BeNumerically("~", 6-3*(0.225/0.4), 1e-12))
			Expect(d.Chord[1]).To(BeNumerically("~", 0.08-0.02*(0.275/0.5), 1e-12))
			Expect(d.Twist[1]).To(BeNumerically("~", 3-3*(0.275/0.5), 1e-12))
		})

		It("rejects a non-positive strip count", func() {
			Expect(errors.Is(r.Discretize(0), rotor.ErrConfig)).To(BeTrue())
		})
	})

	Describe("Calc", func() {
		It("rejects non-positive rpm", func() {
			cond.RPM = 0
			_, err := r.Calc(cond, nil)
			Expect(errors.Is(err, rotor.ErrNonPositiveSpeed)).To(BeTrue())
		})

		It("rejects a warm start of the wrong length", func() {
			_, err := r.Calc(cond, make([]float64, 7))
			Expect(errors.Is(err, rotor.ErrInflowLength)).To(BeTrue())
		})

		It("does not modify the caller's inflow", func() {
			seed := make([]float64, r.Strips())
			for i := range seed {
				seed[i] = 1.5
			}
			_, err := r.Calc(cond, seed)
			Expect(err).NotTo(HaveOccurred())
			for _, v := range seed {
				Expect(v).To(Equal(1.5))
			}
		})

		It("satisfies the momentum balance on every strip", func() {
			st, err := r.Calc(cond, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.Converged()).To(BeTrue())

			d := r.Discretization()
			for i, rr := range d.Radius {
				vi := st.Inflow[i]
				a := 4 * math.Pi * cond.Density * rr * d.Width
				momentum := a * (cond.Axial*vi + vi*vi)
				Expect(momentum).To(BeNumerically("~", st.DT[i], 1e-6*math.Abs(st.DT[i])+1e-9))
			}
		})

		It("normalises thrust and power by the disk", func() {
			st, err := r.Calc(cond, nil)
			Expect(err).NotTo(HaveOccurred())
			area := math.Pi
			tip := cond.Omega() * 1.0
			Expect(st.Thrust).To(BeNumerically(">", 0))
			Expect(st.CT).To(BeNumerically("~", st.Thrust/(cond.Density*area*tip*tip), 1e-15))
			Expect(st.CP).To(BeNumerically("~", st.Power/(cond.Density*area*tip*tip*tip), 1e-15))
			Expect(st.Torque).To(BeNumerically("~", st.Power/cond.Omega(), 1e-9))
		})

		It("sums strip coefficients to the rotor coefficients", func() {
			st, err := r.Calc(cond, nil)
			Expect(err).NotTo(HaveOccurred())
			var ct, cp float64
			for i := range st.DT {
				ct += st.StripCT()[i]
				cp += st.StripCP()[i]
			}
			Expect(ct).To(BeNumerically("~", st.CT, 1e-12))
			Expect(cp).To(BeNumerically("~", st.CP, 1e-12))
		})

		It("reaches the same answer from a warm start", func() {
			cold, err := r.Calc(cond, nil)
			Expect(err).NotTo(HaveOccurred())
			warm, err := r.Calc(cond, cold.Inflow)
			Expect(err).NotTo(HaveOccurred())
			Expect(warm.CT).To(BeNumerically("~", cold.CT, 1e-9*cold.CT))
			Expect(warm.CP).To(BeNumerically("~", cold.CP, 1e-9*cold.CP))

			coldIters, warmIters := 0, 0
			for i := range cold.Iterations {
				coldIters += cold.Iterations[i]
				warmIters += warm.Iterations[i]
			}
			Expect(warmIters).To(BeNumerically("<", coldIters))
		})

		It("matches the sequential result when solving in parallel", func() {
			opts := rotor.DefaultOptions()
			opts.Parallel = true
			pr, err := rotor.New(testBlade(), 3, 40, rotor.WithOptions(opts), rotor.WithLogger(quietLogger()))
			Expect(err).NotTo(HaveOccurred())

			seq, err := r.Calc(cond, nil)
			Expect(err).NotTo(HaveOccurred())
			par, err := pr.Calc(cond, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(par.DT).To(Equal(seq.DT))
			Expect(par.Inflow).To(Equal(seq.Inflow))
			Expect(par.CT).To(Equal(seq.CT))
		})

		It("reports strips that hit the iteration limit", func() {
			opts := rotor.DefaultOptions()
			opts.MaxIters = 1
			rec := &countingRecorder{}
			lr, err := rotor.New(testBlade(), 3, 10,
				rotor.WithOptions(opts), rotor.WithLogger(quietLogger()), rotor.WithRecorder(rec))
			Expect(err).NotTo(HaveOccurred())

			st, err := lr.Calc(cond, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.Converged()).To(BeFalse())
			Expect(st.Unconverged).To(HaveLen(10))
			Expect(st.Iterations).To(HaveEach(1))
			Expect(rec.calls).To(Equal(1))
			Expect(rec.unconverged).To(Equal(10))
			Expect(rec.strips).To(Equal(10))
		})

		It("produces more thrust at higher collective", func() {
			low, err := r.Calc(cond, nil)
			Expect(err).NotTo(HaveOccurred())
			cond.Pitch = 12
			high, err := r.Calc(cond, low.Inflow)
			Expect(err).NotTo(HaveOccurred())
			Expect(high.Thrust).To(BeNumerically(">", low.Thrust))
			Expect(high.Power).To(BeNumerically(">", low.Power))
		})
	})

	Describe("Sweep", func() {
		It("warm-starts each pitch and returns the last inflow", func() {
			pitches := []float64{2, 4, 6, 8}
			pts, inflow, err := r.Sweep(cond, pitches, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(pts).To(HaveLen(4))
			Expect(inflow).To(HaveLen(r.Strips()))
			for i := 1; i < len(pts); i++ {
				Expect(pts[i].CT).To(BeNumerically(">", pts[i-1].CT))
			}

			cond.Pitch = 8
			st, err := r.Calc(cond, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(pts[3].CT).To(BeNumerically("~", st.CT, 1e-9*st.CT))
		})

		It("stops at the first failing point", func() {
			cond.RPM = -1
			pts, _, err := r.Sweep(cond, []float64{1, 2}, nil)
			Expect(errors.Is(err, rotor.ErrNonPositiveSpeed)).To(BeTrue())
			Expect(pts).To(BeEmpty())
		})
	})

	Describe("New", func() {
		It("validates options", func() {
			opts := rotor.DefaultOptions()
			opts.Relax = 0
			_, err := rotor.New(testBlade(), 2, 10, rotor.WithOptions(opts))
			Expect(errors.Is(err, rotor.ErrConfig)).To(BeTrue())

			_, err = rotor.New(testBlade(), 0, 10)
			Expect(errors.Is(err, rotor.ErrConfig)).To(BeTrue())
		})
	})
})

var _ = DescribeTable("TipLoss",
	func(blades int, r, outer, phi float64, lo, hi float64) {
		f := rotor.TipLoss(blades, r, outer, phi)
		Expect(f).To(BeNumerically(">=", lo))
		Expect(f).To(BeNumerically("<=", hi))
	},
	Entry("mid span", 3, 0.5, 1.0, 0.1, 0.99, 1.0),
	Entry("near tip", 3, 0.999, 1.0, 0.1, 0.0, 0.5),
	Entry("many blades", 200, 0.9, 1.0, 0.05, 1-1e-12, 1.0),
	Entry("zero inflow angle", 3, 0.9, 1.0, 0.0, 1.0, 1.0),
	Entry("negative inflow angle", 3, 0.9, 1.0, -0.1, 1.0, 1.0),
)

var _ = Describe("MomentumInflow", func() {
	It("inverts the annulus momentum relation", func() {
		a, v := 2.0, 3.0
		vi := 1.7
		dT := a * (v*vi + vi*vi)
		Expect(rotor.MomentumInflow(v, dT, a)).To(BeNumerically("~", vi, 1e-12))
	})

	It("clamps a negative radicand", func() {
		Expect(rotor.MomentumInflow(0, -5, 1)).To(Equal(0.0))
		Expect(rotor.MomentumInflow(4, -100, 1)).To(Equal(-2.0))
	})
})
