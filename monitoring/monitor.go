// Package monitoring turns a running simulation into an HTTP server that
// can pause it, report its progress and inspect its applications.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/sarchlab/trafficsim/apps"
	"github.com/sarchlab/trafficsim/sim"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// A BufferLister reports buffers that come and go during the simulation,
// such as the send buffers of sockets.
type BufferLister interface {
	SendBuffers() []sim.Buffer
}

// Monitor can turn a simulation into a server and allows external
// monitoring and controlling of the simulation.
type Monitor struct {
	engine        sim.Engine
	apps          []apps.Application
	buffers       []sim.Buffer
	bufferListers []BufferLister
	metrics       *Metrics
	portNumber    int
	url           string
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterEngine registers the engine that is used in the simulation. It
// also creates the metrics, which report the engine's time.
func (m *Monitor) RegisterEngine(e sim.Engine) {
	m.engine = e
	m.metrics = NewMetrics(e)
}

// Metrics returns the Prometheus metrics served by the monitor. It is nil
// until an engine is registered.
func (m *Monitor) Metrics() *Metrics {
	return m.metrics
}

// RegisterApp registers an application to be monitored. The packets the
// application sends and receives are counted in the metrics.
func (m *Monitor) RegisterApp(a apps.Application) {
	for _, existing := range m.apps {
		if existing.Name() == a.Name() {
			log.Panicf("app %s already registered", a.Name())
		}
	}

	m.apps = append(m.apps, a)

	if m.metrics != nil {
		a.AcceptHook(m.metrics)
	}
}

// RegisterBuffer registers a buffer whose level is reported.
func (m *Monitor) RegisterBuffer(b sim.Buffer) {
	m.buffers = append(m.buffers, b)
}

// RegisterBufferLister registers a source of buffers whose levels are
// reported.
func (m *Monitor) RegisterBufferLister(l BufferLister) {
	m.bufferListers = append(m.bufferListers, l)
}

// URL returns the address that the server listens on. It is empty before
// the server starts.
func (m *Monitor) URL() string {
	return m.url
}

func (m *Monitor) newRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/list_apps", m.listApps)
	r.HandleFunc("/api/app/{name}", m.listAppDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/buffers", m.listBuffers)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	if m.metrics != nil {
		r.Handle("/metrics", m.metrics.Handler())
	}

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() string {
	r := m.newRouter()

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.url = fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", m.url)

	go func() {
		err := http.Serve(listener, r)
		dieOnErr(err)
	}()

	return m.url
}

// OpenInBrowser opens the monitor's application list in the default
// browser.
func (m *Monitor) OpenInBrowser() error {
	if m.url == "" {
		return errors.New("monitoring server is not started")
	}

	return browser.OpenURL(m.url + "/api/list_apps")
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.engine.CurrentTime()
	fmt.Fprintf(w, "{\"now\":%.10f}", now)
}

func (m *Monitor) listApps(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.apps))
	for _, a := range m.apps {
		names = append(names, a.Name())
	}

	bytes, err := json.Marshal(names)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listAppDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	app := m.findAppOr404(w, name)
	if app == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(app)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	AppName   string `json:"app_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	app := m.findAppOr404(w, req.AppName)
	if app == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(app)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

type bufferRsp struct {
	Buffer string `json:"buffer"`
	Level  int    `json:"level"`
	Cap    int    `json:"cap"`
}

func (m *Monitor) listBuffers(w http.ResponseWriter, r *http.Request) {
	sortMethod, limit, offset, err := buffersParseParams(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	selected := sortAndSelectBuffers(m.allBuffers(), sortMethod, limit, offset)

	rsp := make([]bufferRsp, 0, len(selected))
	for _, b := range selected {
		rsp = append(rsp, bufferRsp{
			Buffer: b.Name(),
			Level:  b.Size(),
			Cap:    b.Capacity(),
		})
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) allBuffers() []sim.Buffer {
	buffers := make([]sim.Buffer, len(m.buffers))
	copy(buffers, m.buffers)

	for _, l := range m.bufferListers {
		buffers = append(buffers, l.SendBuffers()...)
	}

	return buffers
}

func buffersParseParams(
	r *http.Request,
) (sortMethod string, limit, offset int, err error) {
	sortMethod = r.URL.Query().Get("sort")
	if sortMethod == "" {
		sortMethod = "percent"
	}

	if sortMethod != "level" && sortMethod != "percent" {
		return "", 0, 0, fmt.Errorf(
			"invalid sort method: %s, allowed values are `level` and `percent`",
			sortMethod)
	}

	limit, err = queryInt(r, "limit")
	if err != nil {
		return sortMethod, 0, 0, err
	}

	offset, err = queryInt(r, "offset")
	if err != nil {
		return sortMethod, limit, 0, err
	}

	if limit < 0 || offset < 0 {
		return sortMethod, limit, offset,
			errors.New("limit and offset must not be negative")
	}

	return sortMethod, limit, offset, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	str := r.URL.Query().Get(key)
	if str == "" {
		return 0, nil
	}

	return strconv.Atoi(str)
}

func bufferPercent(b sim.Buffer) float64 {
	return float64(b.Size()) / float64(b.Capacity())
}

// sortAndSelectBuffers orders the buffers from the fullest and returns at
// most limit of them after skipping offset. A zero limit means no limit.
func sortAndSelectBuffers(
	buffers []sim.Buffer,
	sortMethod string,
	limit, offset int,
) []sim.Buffer {
	sorted := make([]sim.Buffer, len(buffers))
	copy(sorted, buffers)

	switch sortMethod {
	case "level":
		sort.SliceStable(sorted, func(i, j int) bool {
			sizeI, sizeJ := sorted[i].Size(), sorted[j].Size()
			if sizeI != sizeJ {
				return sizeI > sizeJ
			}

			return bufferPercent(sorted[i]) > bufferPercent(sorted[j])
		})
	case "percent":
		sort.SliceStable(sorted, func(i, j int) bool {
			percentI, percentJ := bufferPercent(sorted[i]), bufferPercent(sorted[j])
			if percentI != percentJ {
				return percentI > percentJ
			}

			return sorted[i].Size() > sorted[j].Size()
		})
	default:
		panic("invalid sort method " + sortMethod)
	}

	if offset >= len(sorted) {
		return nil
	}

	sorted = sorted[offset:]

	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}

	return sorted
}

func (m *Monitor) findAppOr404(
	w http.ResponseWriter,
	name string,
) apps.Application {
	for _, a := range m.apps {
		if a.Name() == name {
			return a
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("App not found"))
	dieOnErr(err)

	return nil
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
