package config_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rotorsim/internal/config"
	"github.com/san-kum/rotorsim/internal/sim"
	"github.com/san-kum/rotorsim/internal/validation"
)

func run(cfg *config.Config) *sim.Result {
	m, err := cfg.Build(config.BuildOptions{})
	Expect(err).NotTo(HaveOccurred())
	res, err := m.Simulator().Run(context.Background(), cfg.Integrator)
	Expect(err).NotTo(HaveOccurred())
	return res
}

var _ = Describe("DDWFTTW preset", func() {
	var cfg *config.Config

	BeforeEach(func() {
		cfg = config.DDWFTTW()
		cfg.Integrator.MaxSteps = 10
	})

	It("records the initial state as step 0", func() {
		res := run(cfg)
		Expect(res.Samples).To(HaveLen(res.StepsTaken + 1))
		first := res.Samples[0]
		Expect(first.Step).To(Equal(0))
		Expect(first.Time).To(BeZero())
		Expect(first.Speed).To(Equal(cfg.Integrator.InitialSpeed))
		Expect(first.RotorRPM).To(BeNumerically(">", 0))
	})

	It("accelerates from half the wind speed", func() {
		res := run(cfg)
		Expect(res.MaxSpeedStep).To(Equal(-1))
		Expect(res.StepsTaken).To(Equal(10))
		for i := 1; i < len(res.Samples); i++ {
			Expect(res.Samples[i].Speed).To(BeNumerically(">", res.Samples[i-1].Speed))
			Expect(res.Samples[i].Forces.Net()).To(BeNumerically(">", 0))
		}
	})

	It("gives the same early motion with euler and rk4", func() {
		rk4 := run(cfg)
		cfg.Integrator.Method = "euler"
		euler := run(cfg)
		a, _ := rk4.Final()
		b, _ := euler.Final()
		Expect(b.Speed).To(BeNumerically("~", a.Speed, 1e-3))
	})

	Context("in still air", func() {
		BeforeEach(func() {
			cfg.Environment.Wind = 0
			cfg.Schedule.Relative = false
			cfg.Integrator.MaxSteps = 40
		})

		It("stops at the first step without positive net force", func() {
			res := run(cfg)
			Expect(res.MaxSpeedStep).To(BeNumerically(">", 0))
			Expect(res.StepsTaken).To(Equal(res.MaxSpeedStep))
			last, ok := res.Final()
			Expect(ok).To(BeTrue())
			Expect(last.Forces.Net()).To(BeNumerically("<=", 0))
			Expect(last.Speed).To(BeNumerically("<", cfg.Integrator.InitialSpeed))
		})
	})
})

var _ = Describe("TN-626 preset", func() {
	It("matches the measured thrust at high collective", func() {
		cfg := config.TN626()
		_, _, r, err := cfg.BuildRotor(config.BuildOptions{})
		Expect(err).NotTo(HaveOccurred())

		rep, err := validation.Run(r, cfg.Sweep.Condition(0), cfg.Sweep.Pitches(), validation.TN626)
		Expect(err).NotTo(HaveOccurred())
		Expect(rep.Points).NotTo(BeEmpty())
		Expect(rep.MaxCTError(8)).To(BeNumerically("<", 0.1))
	})
})
