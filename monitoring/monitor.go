// Package monitoring turns a running simulation into an HTTP server that
// exposes the state of the emulated EEPROM drivers.
package monitoring

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/flexee/datarecording"
	"github.com/sarchlab/flexee/eep"
	"github.com/sarchlab/flexee/ftfc"
	"github.com/sarchlab/flexee/sim"
	"github.com/sarchlab/flexee/tracing"
)

type target struct {
	driver *eep.Driver
	device *ftfc.Device
	waker  eep.Waker
	bar    *ProgressBar
}

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
type Monitor struct {
	lock sync.Mutex

	engine      sim.Engine
	targets     []*target
	reader      datarecording.DataReader
	gatherer    prometheus.Gatherer
	portNumber  int
	openBrowser bool
	log         logr.Logger
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{log: logr.Discard()}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser makes StartServer open the monitor in a web browser.
func (m *Monitor) WithBrowser(open bool) *Monitor {
	m.openBrowser = open
	return m
}

// WithLogger sets the logger.
func (m *Monitor) WithLogger(log logr.Logger) *Monitor {
	m.log = log
	return m
}

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e sim.Engine) {
	m.engine = e
}

// RegisterDriver registers a driver and the device it runs on. The waker, if
// not nil, is used by the tick endpoint.
func (m *Monitor) RegisterDriver(
	d *eep.Driver,
	dev *ftfc.Device,
	waker eep.Waker,
) *ProgressBar {
	bar := &ProgressBar{
		ID:   sim.GetIDGenerator().Generate(),
		Name: d.Name(),
	}
	d.AcceptHook(bar)

	m.lock.Lock()
	m.targets = append(m.targets, &target{
		driver: d,
		device: dev,
		waker:  waker,
		bar:    bar,
	})
	m.lock.Unlock()

	return bar
}

// RegisterJobReader sets where the history of traced jobs is read from.
func (m *Monitor) RegisterJobReader(r datarecording.DataReader) {
	r.MapTable(tracing.JobTable, tracing.JobEntry{})
	m.reader = r
}

// RegisterGatherer sets the metrics served on /metrics.
func (m *Monitor) RegisterGatherer(g prometheus.Gatherer) {
	m.gatherer = g
}

// Router returns the HTTP routes of the monitor.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/run", m.run)
	r.HandleFunc("/api/list_drivers", m.listDrivers)
	r.HandleFunc("/api/status/{name}", m.status)
	r.HandleFunc("/api/job/{name}", m.job)
	r.HandleFunc("/api/component/{name}", m.componentDetails)
	r.HandleFunc("/api/dump/{name}", m.dump)
	r.HandleFunc("/api/tick/{name}", m.tick).Methods(http.MethodPost)
	r.HandleFunc("/api/jobs", m.jobs)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	if m.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

// StartServer starts serving in the background and returns the URL of the
// monitor.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(m.portNumber))
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	go func() {
		err := http.Serve(listener, m.Router())
		if err != nil {
			m.log.Error(err, "monitor stopped")
		}
	}()

	if m.openBrowser {
		if err := browser.OpenURL(url + "/api/list_drivers"); err != nil {
			m.log.Info("cannot open browser", "reason", err.Error())
		}
	}

	return url, nil
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	if !m.engineOr503(w) {
		return
	}

	m.engine.Pause()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	if !m.engineOr503(w) {
		return
	}

	m.engine.Continue()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	if !m.engineOr503(w) {
		return
	}

	fmt.Fprintf(w, "{\"now\":%.10f}", m.engine.CurrentTime())
}

func (m *Monitor) run(w http.ResponseWriter, _ *http.Request) {
	if !m.engineOr503(w) {
		return
	}

	go func() {
		if err := m.engine.Run(); err != nil {
			m.log.Error(err, "engine stopped")
		}
	}()

	w.WriteHeader(http.StatusAccepted)
}

func (m *Monitor) engineOr503(w http.ResponseWriter) bool {
	if m.engine == nil {
		http.Error(w, "no engine registered", http.StatusServiceUnavailable)
		return false
	}

	return true
}

func (m *Monitor) listDrivers(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	names := make([]string, 0, len(m.targets))
	for _, t := range m.targets {
		names = append(names, t.driver.Name())
	}
	m.lock.Unlock()

	writeJSON(w, names)
}

// DriverStatus is the state of a driver as served by the monitor.
type DriverStatus struct {
	Name     string          `json:"name"`
	Status   string          `json:"status"`
	State    string          `json:"state"`
	Mode     string          `json:"mode"`
	Result   string          `json:"result"`
	BrownOut string          `json:"brown_out"`
	Routine  string          `json:"routine"`
	Version  eep.VersionInfo `json:"version"`
	Job      eep.JobInfo     `json:"job"`
	Device   ftfc.Stats      `json:"device"`
}

func (t *target) status() DriverStatus {
	d := t.driver

	s := DriverStatus{
		Name:     d.Name(),
		Status:   d.Status().String(),
		State:    d.State().String(),
		Mode:     d.Mode().String(),
		Result:   d.JobResult().String(),
		BrownOut: d.BrownOut().String(),
		Routine:  "none",
		Version:  d.VersionInfo(),
		Job:      d.LastJob(),
	}

	if kind, ok := d.Relocator().Loaded(); ok {
		s.Routine = kind.String()
	}

	if t.device != nil {
		s.Device = t.device.Stats()
	}

	return s
}

func (m *Monitor) status(w http.ResponseWriter, r *http.Request) {
	t := m.findTargetOr404(w, mux.Vars(r)["name"])
	if t == nil {
		return
	}

	writeJSON(w, t.status())
}

func (m *Monitor) job(w http.ResponseWriter, r *http.Request) {
	t := m.findTargetOr404(w, mux.Vars(r)["name"])
	if t == nil {
		return
	}

	writeJSON(w, t.driver.LastJob())
}

func (m *Monitor) componentDetails(w http.ResponseWriter, r *http.Request) {
	t := m.findTargetOr404(w, mux.Vars(r)["name"])
	if t == nil {
		return
	}

	status := t.status()

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&status)
	serializer.SetMaxDepth(2)

	if err := serializer.Serialize(w); err != nil {
		m.log.Error(err, "cannot serialize driver", "name", status.Name)
	}
}

type dumpRsp struct {
	Offset uint64 `json:"offset"`
	Length uint64 `json:"length"`
	Data   string `json:"data"`
}

func (m *Monitor) dump(w http.ResponseWriter, r *http.Request) {
	t := m.findTargetOr404(w, mux.Vars(r)["name"])
	if t == nil {
		return
	}

	if t.device == nil {
		http.Error(w, "no device registered", http.StatusNotFound)
		return
	}

	storage := t.device.Storage()

	offset, err := queryUint(r, "offset", 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	length, err := queryUint(r, "length", storage.Capacity()-min(offset, storage.Capacity()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data, err := storage.Read(offset, length)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, dumpRsp{
		Offset: offset,
		Length: length,
		Data:   hex.EncodeToString(data),
	})
}

func (m *Monitor) tick(w http.ResponseWriter, r *http.Request) {
	t := m.findTargetOr404(w, mux.Vars(r)["name"])
	if t == nil {
		return
	}

	if t.waker == nil {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	t.waker.TickLater()
	w.WriteHeader(http.StatusOK)
}

type jobsRsp struct {
	Total int                 `json:"total"`
	Jobs  []*tracing.JobEntry `json:"jobs"`
}

func (m *Monitor) jobs(w http.ResponseWriter, r *http.Request) {
	if m.reader == nil {
		http.Error(w, "no job history", http.StatusNotFound)
		return
	}

	limit, err1 := queryUint(r, "limit", 100)
	offset, err2 := queryUint(r, "offset", 0)

	if err1 != nil || err2 != nil {
		http.Error(w, "invalid limit or offset", http.StatusBadRequest)
		return
	}

	params := datarecording.QueryParams{
		OrderBy: "StartTime DESC",
		Limit:   int(limit),
		Offset:  int(offset),
	}

	if kind := r.URL.Query().Get("kind"); kind != "" {
		params.Where = "Kind = ?"
		params.Args = []any{kind}
	}

	results, total, err := m.reader.Query(r.Context(), tracing.JobTable, params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	rsp := jobsRsp{Total: total, Jobs: make([]*tracing.JobEntry, 0, len(results))}
	for _, res := range results {
		rsp.Jobs = append(rsp.Jobs, res.(*tracing.JobEntry))
	}

	writeJSON(w, rsp)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	views := make([]progressView, 0, len(m.targets))
	for _, t := range m.targets {
		views = append(views, t.bar.view())
	}
	m.lock.Unlock()

	writeJSON(w, views)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	memoryInfo, err := proc.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, r *http.Request) {
	duration := time.Second
	if ms, err := queryUint(r, "ms", 1000); err == nil {
		duration = time.Duration(ms) * time.Millisecond
	}

	prof, err := cpuProfile(r.Context(), duration)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, prof)
}

func cpuProfile(ctx context.Context, d time.Duration) (*profile.Profile, error) {
	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		return nil, err
	}

	select {
	case <-time.After(d):
	case <-ctx.Done():
	}

	pprof.StopCPUProfile()

	return profile.ParseData(buf.Bytes())
}

func (m *Monitor) findTargetOr404(w http.ResponseWriter, name string) *target {
	m.lock.Lock()
	defer m.lock.Unlock()

	for _, t := range m.targets {
		if t.driver.Name() == name {
			return t
		}
	}

	http.Error(w, "Driver not found", http.StatusNotFound)

	return nil
}

func queryUint(r *http.Request, key string, def uint64) (uint64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}

	return strconv.ParseUint(v, 0, 64)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
