package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sphgas/internal/dynamo"
	"github.com/san-kum/sphgas/internal/experiment"
)

func smallStep(steps int) ScenarioStep {
	return ScenarioStep{
		Preset: "quick",
		Params: map[string]float64{"count": 24, "neighbors": 6},
		Steps:  steps,
	}
}

var _ = Describe("LoadScenario", func() {
	write := func(body string) string {
		path := filepath.Join(GinkgoT().TempDir(), "scenario.yml")
		Expect(os.WriteFile(path, []byte(body), 0644)).To(Succeed())
		return path
	}

	It("reads steps and parameters", func() {
		sc, err := LoadScenario(write(`
name: warmup
steps:
  - preset: quick
    steps: 10
    trials: 3
    params:
      temperature: 0.5
  - preset: dust
    save_as: cold
`))
		Expect(err).NotTo(HaveOccurred())
		Expect(sc.Name).To(Equal("warmup"))
		Expect(sc.Steps).To(HaveLen(2))
		Expect(sc.Steps[0].Trials).To(Equal(3))
		Expect(sc.Steps[0].Params).To(HaveKeyWithValue("temperature", 0.5))
		Expect(sc.Steps[1].SaveAs).To(Equal("cold"))
	})

	It("rejects an empty scenario", func() {
		_, err := LoadScenario(write("name: nothing\n"))
		Expect(errors.Is(err, dynamo.ErrConfig)).To(BeTrue())
	})

	It("rejects malformed YAML", func() {
		_, err := LoadScenario(write("steps: [\n"))
		Expect(errors.Is(err, dynamo.ErrConfig)).To(BeTrue())
	})
})

var _ = Describe("RunScenario", func() {
	var (
		reg     *experiment.Registry
		results []StepResult
		sink    Sink
	)

	BeforeEach(func() {
		reg = experiment.NewRegistry()
		results = nil
		sink = func(r StepResult) error {
			results = append(results, r)
			return nil
		}
	})

	It("runs every trial of every step in order", func() {
		first := smallStep(3)
		first.Trials = 2
		second := smallStep(2)
		second.SaveAs = "tail"
		sc := &Scenario{Name: "pair", Steps: []ScenarioStep{first, second}}

		n, err := RunScenario(context.Background(), sc, reg, sink)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(3))
		Expect(results).To(HaveLen(3))

		Expect(results[0].Step).To(Equal(1))
		Expect(results[1].Trial).To(Equal(1))
		Expect(results[1].Result.Config.Seed).To(Equal(results[0].Result.Config.Seed + 1))
		Expect(results[0].Result.Config.Count).To(Equal(24))
		Expect(results[0].Result.StepsTaken).To(Equal(3))

		Expect(results[2].Result.Name).To(Equal("tail"))
		Expect(results[2].Result.StepsTaken).To(Equal(2))
		for _, r := range results {
			Expect(r.Err).NotTo(HaveOccurred())
		}
	})

	It("stops on an unknown parameter", func() {
		step := smallStep(1)
		step.Params["viscosity"] = 1
		n, err := RunScenario(context.Background(), &Scenario{Steps: []ScenarioStep{step}}, reg, sink)
		Expect(errors.Is(err, dynamo.ErrConfig)).To(BeTrue())
		Expect(n).To(BeZero())
		Expect(results).To(BeEmpty())
	})

	It("stops on an unknown preset", func() {
		_, err := RunScenario(context.Background(), &Scenario{Steps: []ScenarioStep{{Preset: "nope"}}}, reg, sink)
		Expect(errors.Is(err, dynamo.ErrConfig)).To(BeTrue())
	})

	It("stops when cancelled and reports the partial run", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		sc := &Scenario{Steps: []ScenarioStep{smallStep(5), smallStep(5)}}

		n, err := RunScenario(ctx, sc, reg, sink)
		Expect(errors.Is(err, dynamo.ErrContextCanceled)).To(BeTrue())
		Expect(n).To(Equal(1))
		Expect(results).To(HaveLen(1))
		Expect(results[0].Result.StepsTaken).To(BeZero())
	})

	It("stops when the sink fails", func() {
		boom := errors.New("disk full")
		sc := &Scenario{Steps: []ScenarioStep{smallStep(1), smallStep(1)}}
		n, err := RunScenario(context.Background(), sc, reg, func(StepResult) error { return boom })
		Expect(err).To(MatchError(boom))
		Expect(n).To(Equal(1))
	})
})
