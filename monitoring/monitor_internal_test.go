package monitoring

import (
	"encoding/json"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ransim/sim"
)

type namedThing struct {
	name  string
	Count int
}

func (t *namedThing) Name() string {
	return t.name
}

var _ = Describe("Monitor", func() {
	var m *Monitor

	BeforeEach(func() {
		m = NewMonitor()
		m.RegisterEngine(sim.NewSerialEngine())
	})

	It("should list registered components", func() {
		m.RegisterComponent(&namedThing{name: "GNB"})
		m.RegisterComponent(&namedThing{name: "UE"})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/list_components", nil)
		m.router().ServeHTTP(rec, req)

		Expect(rec.Body.String()).To(Equal(`["GNB","UE"]`))
	})

	It("should report the current time in nanoseconds", func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/now", nil)
		m.router().ServeHTTP(rec, req)

		Expect(rec.Body.String()).To(Equal(`{"now_ns":0}`))
	})

	It("should 404 on an unknown component", func() {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/component/Nobody", nil)
		m.router().ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(404))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("Slots", 100)
		bar.Advance(40)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/progress", nil)
		m.router().ServeHTTP(rec, req)

		var bars []map[string]any
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0]["name"]).To(Equal("Slots"))
		Expect(bars[0]["finished"]).To(BeNumerically("==", 40))

		m.CompleteProgressBar(bar)
		Expect(m.progressBars).To(BeEmpty())
	})
})
