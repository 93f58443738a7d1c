package vehicle_test

import (
	"errors"
	"io"
	"math"

	"github.com/charmbracelet/log"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rotorsim/internal/airfoil"
	"github.com/san-kum/rotorsim/internal/blade"
	"github.com/san-kum/rotorsim/internal/rotor"
	"github.com/san-kum/rotorsim/internal/vehicle"
)

func testRotor() *rotor.Rotor {
	var tbl airfoil.Table
	for a := -30.0; a <= 30; a++ {
		tbl.Alpha = append(tbl.Alpha, a)
		tbl.Cl = append(tbl.Cl, 0.1*a)
		tbl.Cd = append(tbl.Cd, 0.01)
	}
	foil, err := airfoil.New("linear", tbl)
	Expect(err).NotTo(HaveOccurred())
	b, err := blade.New([]float64{0.3, 1.5}, []float64{0.2, 0.1}, []float64{10, 2}, foil)
	Expect(err).NotTo(HaveOccurred())
	r, err := rotor.New(b, 2, 20, rotor.WithLogger(log.New(io.Discard)))
	Expect(err).NotTo(HaveOccurred())
	return r
}

var params = vehicle.Params{
	WheelRadius:    0.4,
	GearRatio:      1.5,
	GearEfficiency: 0.85,
	CDFront:        0.3,
	CDBack:         0.4,
	Crr:            0.01,
	FrontalArea:    2,
	Mass:           300,
}

var env = vehicle.Environment{Wind: 5, Density: 1.225, Gravity: 9.81}

var _ = Describe("Vehicle", func() {
	var v *vehicle.Vehicle

	BeforeEach(func() {
		var err error
		v, err = vehicle.New(params, testRotor(), vehicle.WithLogger(log.New(io.Discard)))
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires a speed before computing forces", func() {
		_, err := v.ComputeForces(env, 0)
		Expect(errors.Is(err, vehicle.ErrSpeedNotSet)).To(BeTrue())
	})

	It("derives wheel and rotor rpm from speed", func() {
		v.SetSpeed(10)
		wheel := 10 / (2 * math.Pi * 0.4) * 60
		Expect(v.WheelRPM()).To(BeNumerically("~", wheel, 1e-9))
		Expect(v.RotorRPM()).To(BeNumerically("~", wheel/1.5, 1e-9))
	})

	Context("at rest", func() {
		It("zeroes rotor forces and is pushed by the tailwind", func() {
			v.SetSpeed(0)
			f, err := v.ComputeForces(env, 4)
			Expect(err).NotTo(HaveOccurred())
			Expect(f.RotorThrust).To(Equal(0.0))
			Expect(f.RotorDrag).To(Equal(0.0))
			Expect(v.LastRotorState()).To(BeNil())

			q := 0.5 * env.Density * env.Wind * env.Wind * params.FrontalArea
			Expect(f.AeroDrag).To(BeNumerically("~", params.CDBack*q, 1e-12))
			Expect(f.Rolling).To(BeNumerically("~", -params.Crr*params.Mass*env.Gravity, 1e-12))
			Expect(f.Net()).To(BeNumerically("~", f.AeroDrag+f.Rolling, 1e-12))
		})
	})

	Context("below wind speed", func() {
		It("reflects rotor power through the transmission as wheel drag", func() {
			v.SetSpeed(3)
			f, err := v.ComputeForces(env, 4)
			Expect(err).NotTo(HaveOccurred())

			st := v.LastRotorState()
			Expect(st).NotTo(BeNil())
			Expect(st.Condition.Axial).To(BeNumerically("~", -2, 1e-12))
			Expect(st.Condition.RPM).To(BeNumerically("~", v.RotorRPM(), 1e-12))
			Expect(f.RotorThrust).To(Equal(st.Thrust))

			omega := rotor.RPMToOmega(v.RotorRPM())
			want := -(st.Power / omega) / (params.GearRatio * params.GearEfficiency) / params.WheelRadius
			Expect(f.RotorDrag).To(BeNumerically("~", want, 1e-9*math.Abs(want)+1e-12))
			Expect(f.AeroDrag).To(BeNumerically(">", 0))
		})
	})

	Context("above wind speed", func() {
		It("sees a headwind on the body", func() {
			v.SetSpeed(8)
			f, err := v.ComputeForces(env, 4)
			Expect(err).NotTo(HaveOccurred())
			q := 0.5 * env.Density * 9 * params.FrontalArea
			Expect(f.AeroDrag).To(BeNumerically("~", -params.CDFront*q, 1e-12))
		})
	})

	It("carries the rotor inflow between calls", func() {
		// overdrive with no relative wind keeps the rotor near hover
		p := params
		p.GearRatio = 0.1
		var err error
		v, err = vehicle.New(p, testRotor(), vehicle.WithLogger(log.New(io.Discard)))
		Expect(err).NotTo(HaveOccurred())
		calm := env
		calm.Wind = 3

		v.SetSpeed(3)
		first, err := v.ComputeForces(calm, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.Inflow()).To(HaveLen(20))

		Expect(v.LastRotorState().Converged()).To(BeTrue())

		second, err := v.ComputeForces(calm, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.RotorThrust).To(BeNumerically("~", first.RotorThrust, 1e-8*math.Abs(first.RotorThrust)))

		v.ResetInflow()
		Expect(v.Inflow()).To(BeEmpty())
	})

	It("treats reversing as a stopped rotor", func() {
		v.SetSpeed(-1)
		f, err := v.ComputeForces(env, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.RotorThrust).To(Equal(0.0))
		Expect(f.RotorDrag).To(Equal(0.0))
	})
})

var _ = DescribeTable("Params.Validate",
	func(mutate func(*vehicle.Params), ok bool) {
		p := params
		mutate(&p)
		err := p.Validate()
		if ok {
			Expect(err).NotTo(HaveOccurred())
		} else {
			Expect(errors.Is(err, vehicle.ErrParams)).To(BeTrue())
		}
	},
	Entry("valid", func(p *vehicle.Params) {}, true),
	Entry("zero wheel radius", func(p *vehicle.Params) { p.WheelRadius = 0 }, false),
	Entry("zero gear ratio", func(p *vehicle.Params) { p.GearRatio = 0 }, false),
	Entry("efficiency above one", func(p *vehicle.Params) { p.GearEfficiency = 1.1 }, false),
	Entry("zero mass", func(p *vehicle.Params) { p.Mass = 0 }, false),
	Entry("negative drag", func(p *vehicle.Params) { p.CDFront = -0.1 }, false),
)
