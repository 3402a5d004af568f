package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rdsim/internal/dynamo"
	"github.com/san-kum/rdsim/internal/physics"
)

var _ = Describe("GrayScott", func() {
	var g *physics.GrayScott

	BeforeEach(func() {
		var err error
		g, err = physics.NewGrayScott(64, 64, physics.WithSeed(11))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("live parameter changes", func() {
		It("picks up a new diffusion rate on the next update", func() {
			Expect(g.Update()).To(Succeed())
			Expect(g.Dt()).To(BeNumerically("~", 1.25, 1e-12))

			g.SetDv(0.25)
			Expect(g.Dt()).To(BeNumerically("~", 1.25, 1e-12))

			Expect(g.Update()).To(Succeed())
			Expect(g.Dt()).To(BeNumerically("~", 0.8, 1e-12))
		})

		It("accumulates simulated time from the per-step dt", func() {
			Expect(g.Update()).To(Succeed())
			g.SetDu(0.1)
			g.SetDv(0.1)
			Expect(g.Update()).To(Succeed())
			Expect(g.Time()).To(BeNumerically("~", 1.25+2.0, 1e-12))
		})
	})

	Describe("degenerate diffusion", func() {
		It("rejects the step and recovers once a rate is positive again", func() {
			g.SetDu(0)
			g.SetDv(0)
			Expect(g.Update()).To(MatchError(dynamo.ErrDegenerateTimestep))
			Expect(g.Steps()).To(Equal(0))

			g.SetDv(0.05)
			Expect(g.Update()).To(Succeed())
			Expect(g.Steps()).To(Equal(1))
			Expect(g.Dt()).To(BeNumerically("~", 4.0, 1e-12))
		})
	})

	Describe("long runs", func() {
		It("stays finite and keeps v inside a physical range with default parameters", func() {
			for i := 0; i < 500; i++ {
				Expect(g.Update()).To(Succeed())
			}
			Expect(g.Valid()).To(BeTrue())

			st := g.Stats()
			Expect(st.VMin).To(BeNumerically(">", -0.5))
			Expect(st.VMax).To(BeNumerically("<", 1.5))
			Expect(math.IsNaN(st.VMean)).To(BeFalse())
		})

		It("restarts the counter on reset without touching parameters", func() {
			g.SetF(0.037)
			for i := 0; i < 10; i++ {
				Expect(g.Update()).To(Succeed())
			}
			Expect(g.Reset(physics.DefaultRandomStrength)).To(Succeed())
			Expect(g.Steps()).To(BeZero())
			Expect(g.F()).To(Equal(0.037))
		})
	})
})
