package globe_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dotglobe/internal/config"
	"github.com/san-kum/dotglobe/internal/globe"
	"github.com/san-kum/dotglobe/internal/metrics"
	"github.com/san-kum/dotglobe/internal/probe"
	"github.com/san-kum/dotglobe/internal/sphere"
	"gonum.org/v1/gonum/spatial/r3"
)

func smallConfig(count int) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Count = count
	return cfg
}

func allZero(vs []r3.Vec) bool {
	for _, v := range vs {
		if v != (r3.Vec{}) {
			return false
		}
	}
	return true
}

var _ = Describe("Globe", func() {
	var g *globe.Globe

	BeforeEach(func() {
		var err error
		g, err = globe.New(smallConfig(500))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		It("starts at rest on the generated sphere", func() {
			Expect(g.Len()).To(Equal(500))
			Expect(g.BasePositions()).To(Equal(sphere.Generate(500)))
			Expect(allZero(g.Displacements())).To(BeTrue())
			Expect(g.Positions()).To(Equal(g.BasePositions()))
		})

		It("rejects an invalid configuration", func() {
			cfg := smallConfig(0)
			_, err := globe.New(cfg)
			Expect(err).To(MatchError(config.ErrInvalidConfiguration))
		})

		It("handles a single particle at the pole", func() {
			one, err := globe.New(smallConfig(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(one.BasePositions()).To(Equal([]r3.Vec{sphere.Pole}))
			hover := sphere.Pole
			one.Step(&hover)
			Expect(one.Displacements()[0].Y).To(BeNumerically(">", 0))
		})
	})

	Describe("a thousand-point sphere", func() {
		It("keeps every rest position on the unit sphere", func() {
			big, err := globe.New(smallConfig(1000))
			Expect(err).NotTo(HaveOccurred())
			for _, p := range big.BasePositions() {
				Expect(r3.Norm(p)).To(BeNumerically("~", 1, 1e-5))
			}
		})
	})

	Describe("stepping", func() {
		It("pushes a particle under the hover point outward then relaxes it", func() {
			one, err := globe.New(smallConfig(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(one.UpdateLive(globe.LiveParams{
				ScatterEnabled: true, Radius: 0.35, Strength: 0.015, Decay: 0.92,
				Color: "#bcd2ff", DotSize: 0.01, RotateSpeed: 0.6, Workers: 1,
			})).To(Succeed())

			hover := sphere.Pole
			Expect(one.Step(&hover)).To(Equal(1))
			d := one.Displacements()[0]
			Expect(d.Y).To(BeNumerically("~", 0.0138, 1e-12))
			Expect(d.X).To(BeZero())
			Expect(d.Z).To(BeZero())
		})

		It("relaxes geometrically with no hover", func() {
			g.Displace(7, r3.Vec{X: 0.1})
			for i := 0; i < 50; i++ {
				g.Step(nil)
			}
			got := r3.Norm(g.Displacements()[7])
			want := 0.1 * math.Pow(0.92, 50)
			Expect(math.Abs(got-want) / want).To(BeNumerically("<", 0.01))
		})

		It("keeps position equal to base plus displacement", func() {
			hover := r3.Vec{X: 1}
			for i := 0; i < 10; i++ {
				g.Step(&hover)
			}
			for i, p := range g.Positions() {
				want := r3.Add(g.BasePositions()[i], g.Displacements()[i])
				Expect(r3.Norm(r3.Sub(p, want))).To(BeNumerically("<", 1e-15))
			}
		})

		It("ignores the hover point while scatter is disabled but still relaxes", func() {
			g.Displace(0, r3.Vec{Y: 0.2})
			Expect(g.SetScatterEnabled(false)).To(Succeed())

			hover := g.BasePositions()[0]
			Expect(g.Step(&hover)).To(BeZero())
			Expect(g.Displacements()[0].Y).To(BeNumerically("~", 0.2*0.92, 1e-15))
			for i := 1; i < g.Len(); i++ {
				Expect(g.Displacements()[i]).To(Equal(r3.Vec{}))
			}
		})

		It("notifies observers and metrics", func() {
			var seen []metrics.Sample
			g.AddObserver(globe.ObserverFunc(func(s metrics.Sample) { seen = append(seen, s) }))
			peak := metrics.NewPeakDisplacement()
			g.AddMetric(peak)

			hover := r3.Vec{Z: 1}
			g.Step(&hover)
			g.Step(nil)

			Expect(seen).To(HaveLen(2))
			Expect(seen[0].Hovering).To(BeTrue())
			Expect(seen[0].Engaged).To(BeNumerically(">", 0))
			Expect(seen[1].Hovering).To(BeFalse())
			Expect(seen[1].Step).To(Equal(1))
			Expect(peak.Value()).To(BeNumerically(">", 0))
			Expect(g.Steps()).To(Equal(2))
		})
	})

	Describe("clear", func() {
		It("zeroes displacement exactly regardless of magnitude", func() {
			hover := r3.Vec{X: 1}
			for i := 0; i < 30; i++ {
				g.Step(&hover)
			}
			g.Displace(3, r3.Vec{X: 1e6, Y: -1e6})
			gen := g.Generation()

			g.Clear()

			Expect(allZero(g.Displacements())).To(BeTrue())
			Expect(g.Positions()).To(Equal(g.BasePositions()))
			Expect(g.Generation()).To(Equal(gen))
			Expect(g.Len()).To(Equal(500))
		})
	})

	Describe("rebuild path", func() {
		It("resizes to the new count with zero displacement", func() {
			hover := r3.Vec{X: 1}
			g.Step(&hover)
			old := g.Buffers()

			Expect(g.SetCount(1234)).To(Succeed())

			Expect(g.Len()).To(Equal(1234))
			Expect(g.Config().Count).To(Equal(1234))
			Expect(g.BasePositions()).To(Equal(sphere.Generate(1234)))
			Expect(allZero(g.Displacements())).To(BeTrue())
			Expect(g.Generation()).To(Equal(old.Generation + 1))

			Expect(old.Len()).To(Equal(500))
			Expect(old.Displacement).To(HaveLen(500))
		})

		It("rejects a zero count and keeps the previous set", func() {
			before := g.Buffers()
			err := g.SetCount(0)
			Expect(err).To(MatchError(config.ErrInvalidConfiguration))
			Expect(g.Buffers()).To(BeIdenticalTo(before))
			Expect(g.Config().Count).To(Equal(500))
		})

		It("regenerates on an explicit rebuild", func() {
			g.Displace(1, r3.Vec{Z: 0.4})
			g.Rebuild()
			Expect(allZero(g.Displacements())).To(BeTrue())
			Expect(g.Len()).To(Equal(500))
		})
	})

	Describe("live path", func() {
		It("updates physics values without reallocating", func() {
			before := g.Buffers()

			Expect(g.SetScatterRadius(0.6)).To(Succeed())
			Expect(g.SetScatterStrength(0.04)).To(Succeed())
			Expect(g.SetDecay(0.5)).To(Succeed())
			Expect(g.SetColor("#ff0000")).To(Succeed())
			Expect(g.SetDotSize(0.02)).To(Succeed())
			Expect(g.SetRotateSpeed(2)).To(Succeed())
			Expect(g.SetAutoRotate(false)).To(Succeed())

			Expect(g.Buffers()).To(BeIdenticalTo(before))
			cfg := g.Config()
			Expect(cfg.Scatter.Radius).To(Equal(0.6))
			Expect(cfg.Scatter.Strength).To(Equal(0.04))
			Expect(cfg.Decay).To(Equal(0.5))
			Expect(cfg.Color).To(Equal("#ff0000"))
			Expect(cfg.AutoRotate).To(BeFalse())
		})

		It("leaves cosmetic values out of the physics", func() {
			twin, err := globe.New(smallConfig(500))
			Expect(err).NotTo(HaveOccurred())
			Expect(twin.SetColor("#123456")).To(Succeed())
			Expect(twin.SetDotSize(0.029)).To(Succeed())
			Expect(twin.SetRotateSpeed(2.5)).To(Succeed())

			hover := r3.Vec{Y: 1}
			for i := 0; i < 20; i++ {
				g.Step(&hover)
				twin.Step(&hover)
			}
			Expect(twin.Displacements()).To(Equal(g.Displacements()))
		})

		DescribeTable("rejects invalid values and keeps the old ones",
			func(set func(*globe.Globe) error) {
				before := g.Config()
				Expect(set(g)).To(MatchError(config.ErrInvalidConfiguration))
				Expect(g.Config()).To(Equal(before))
			},
			Entry("zero radius", func(g *globe.Globe) error { return g.SetScatterRadius(0) }),
			Entry("negative radius", func(g *globe.Globe) error { return g.SetScatterRadius(-1) }),
			Entry("negative strength", func(g *globe.Globe) error { return g.SetScatterStrength(-0.1) }),
			Entry("decay of one", func(g *globe.Globe) error { return g.SetDecay(1) }),
			Entry("decay of zero", func(g *globe.Globe) error { return g.SetDecay(0) }),
			Entry("bad colour", func(g *globe.Globe) error { return g.SetColor("red") }),
			Entry("zero dot size", func(g *globe.Globe) error { return g.SetDotSize(0) }),
		)
	})

	Describe("Apply", func() {
		It("classifies and routes changes", func() {
			next := g.Config()
			next.Decay = 0.7
			change, err := g.Apply(&next)
			Expect(err).NotTo(HaveOccurred())
			Expect(change).To(Equal(config.Live))
			Expect(g.Len()).To(Equal(500))

			next.Count = 64
			change, err = g.Apply(&next)
			Expect(err).NotTo(HaveOccurred())
			Expect(change).To(Equal(config.Rebuild))
			Expect(g.Len()).To(Equal(64))

			change, err = g.Apply(&next)
			Expect(err).NotTo(HaveOccurred())
			Expect(change).To(Equal(config.NoChange))
		})

		It("switches to a parallel engine with identical results", func() {
			seq, err := globe.New(smallConfig(5000))
			Expect(err).NotTo(HaveOccurred())
			par, err := globe.New(smallConfig(5000))
			Expect(err).NotTo(HaveOccurred())

			next := par.Config()
			next.Workers = 4
			_, err = par.Apply(&next)
			Expect(err).NotTo(HaveOccurred())

			hover := r3.Vec{X: 1}
			for i := 0; i < 5; i++ {
				seq.Step(&hover)
				par.Step(&hover)
			}
			Expect(par.Displacements()).To(Equal(seq.Displacements()))
		})
	})

	Describe("Run", func() {
		It("records one frame per step", func() {
			g.AddMetric(metrics.NewEngaged())
			res, err := g.Run(context.Background(), 40, probe.Orbit{Latitude: 0.2, Speed: 0.1})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Frames).To(HaveLen(40))
			Expect(res.Frames[0].Hovering).To(BeTrue())
			Expect(res.Frames[39].Step).To(Equal(39))
			Expect(res.Metrics).To(HaveKey("peak_engaged"))
			Expect(res.Metrics["peak_engaged"]).To(BeNumerically(">", 0))
		})

		It("stops between steps when cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			stopAt := 5
			g.AddObserver(globe.ObserverFunc(func(s metrics.Sample) {
				if s.Step == stopAt-1 {
					cancel()
				}
			}))

			res, err := g.Run(ctx, 100, probe.None{})
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.Frames).To(HaveLen(stopAt))
			Expect(g.Steps()).To(Equal(stopAt))
		})

		It("rejects a negative step count without stepping", func() {
			var (
				res *globe.Result
				err error
			)
			Expect(func() { res, err = g.Run(context.Background(), -1, nil) }).NotTo(Panic())
			Expect(err).To(MatchError(globe.ErrInvalidSteps))
			Expect(res).To(BeNil())
			Expect(g.Steps()).To(BeZero())
		})

		It("returns an empty result for zero steps", func() {
			res, err := g.Run(context.Background(), 0, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Frames).To(BeEmpty())
		})

		It("settles back to rest once hovering stops", func() {
			src := probe.Intermittent{Inner: probe.Fixed{Point: r3.Vec{X: 1}}, On: 30, Off: 300}
			res, err := g.Run(context.Background(), 330, src)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Frames[29].Max).To(BeNumerically(">", 0.03))
			Expect(res.Frames[329].Max).To(BeNumerically("<", 1e-9))
		})
	})
})
