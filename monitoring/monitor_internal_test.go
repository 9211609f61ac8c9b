package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/trafficsim/apps"
	"github.com/sarchlab/trafficsim/sim"
)

type sampleApp struct {
	*apps.Base

	Sent    int
	started bool
}

func newSampleApp(name string, engine sim.Engine) *sampleApp {
	a := &sampleApp{}
	a.Base = apps.NewBase(name, engine, a)

	return a
}

func (a *sampleApp) Handle(_ sim.Event) error {
	return nil
}

func (a *sampleApp) Start() {
	a.started = true
}

func (a *sampleApp) Stop() {
	a.started = false
}

type noopHandler struct{}

func (noopHandler) Handle(_ sim.Event) error {
	return nil
}

type bufferList []sim.Buffer

func (l bufferList) SendBuffers() []sim.Buffer {
	return l
}

func fillBuffer(name string, capacity, level int) sim.Buffer {
	b := sim.NewBuffer(name, capacity)
	for i := 0; i < level; i++ {
		b.Push(i)
	}

	return b
}

var _ = Describe("Monitor", func() {
	var (
		engine *sim.SerialEngine
		m      *Monitor
		router http.Handler
	)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		return rec
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		m = NewMonitor()
		m.RegisterEngine(engine)
	})

	JustBeforeEach(func() {
		router = m.newRouter()
	})

	It("should fall back to a random port for reserved ports", func() {
		Expect(m.WithPortNumber(80).portNumber).To(Equal(0))
		Expect(m.WithPortNumber(8080).portNumber).To(Equal(8080))
	})

	It("should refuse to open a browser before the server starts", func() {
		Expect(m.OpenInBrowser()).To(HaveOccurred())
	})

	It("should report the virtual time", func() {
		engine.Schedule(sim.NewEventBase(2.5, noopHandler{}))
		Expect(engine.Run()).To(Succeed())

		rec := get("/api/now")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal(`{"now":2.5000000000}`))
	})

	Context("with apps", func() {
		BeforeEach(func() {
			m.RegisterApp(newSampleApp("Source", engine))
			m.RegisterApp(newSampleApp("Sink", engine))
		})

		It("should refuse duplicated names", func() {
			Expect(func() {
				m.RegisterApp(newSampleApp("Sink", engine))
			}).To(Panic())
		})

		It("should attach the metrics to the apps", func() {
			Expect(m.apps[0].Hooks()).To(ContainElement(m.Metrics()))
		})

		It("should list the apps", func() {
			var names []string

			rec := get("/api/list_apps")

			Expect(json.Unmarshal(rec.Body.Bytes(), &names)).To(Succeed())
			Expect(names).To(Equal([]string{"Source", "Sink"}))
		})

		It("should serialize an app", func() {
			rec := get("/api/app/Sink")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.Len()).To(BeNumerically(">", 0))
		})

		It("should return 404 for unknown apps", func() {
			Expect(get("/api/app/Nobody").Code).To(Equal(http.StatusNotFound))
		})

		It("should reject malformed field requests", func() {
			rec := get("/api/field/" + url.PathEscape("{not json"))

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Context("with buffers", func() {
		BeforeEach(func() {
			m.RegisterBuffer(fillBuffer("Half", 4, 2))
			m.RegisterBuffer(fillBuffer("Empty", 4, 0))
			m.RegisterBufferLister(bufferList{
				fillBuffer("Big", 10, 3),
				fillBuffer("Full", 1, 1),
			})
		})

		list := func(query string) []bufferRsp {
			var rsp []bufferRsp

			rec := get("/api/buffers" + query)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())

			return rsp
		}

		names := func(rsp []bufferRsp) []string {
			n := make([]string, 0, len(rsp))
			for _, b := range rsp {
				n = append(n, b.Buffer)
			}

			return n
		}

		It("should sort by percent by default", func() {
			Expect(names(list(""))).To(
				Equal([]string{"Full", "Half", "Big", "Empty"}))
		})

		It("should sort by level", func() {
			Expect(names(list("?sort=level"))).To(
				Equal([]string{"Big", "Half", "Full", "Empty"}))
		})

		It("should apply limit and offset", func() {
			Expect(names(list("?sort=level&limit=2&offset=1"))).To(
				Equal([]string{"Half", "Full"}))
			Expect(list("?offset=10")).To(BeEmpty())
		})

		It("should report levels and capacities", func() {
			rsp := list("?limit=1")
			Expect(rsp).To(Equal([]bufferRsp{{Buffer: "Full", Level: 1, Cap: 1}}))
		})

		It("should reject bad parameters", func() {
			Expect(get("/api/buffers?sort=name").Code).
				To(Equal(http.StatusBadRequest))
			Expect(get("/api/buffers?limit=x").Code).
				To(Equal(http.StatusBadRequest))
			Expect(get("/api/buffers?offset=-1").Code).
				To(Equal(http.StatusBadRequest))
		})
	})

	It("should pause and continue the engine", func() {
		Expect(get("/api/pause").Code).To(Equal(http.StatusOK))
		Expect(get("/api/continue").Code).To(Equal(http.StatusOK))
	})
})
