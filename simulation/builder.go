package simulation

import (
	"io"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/xid"

	"github.com/sarchlab/flexee/config"
	"github.com/sarchlab/flexee/datarecording"
	"github.com/sarchlab/flexee/eep"
	"github.com/sarchlab/flexee/ftfc"
	"github.com/sarchlab/flexee/metrics"
	"github.com/sarchlab/flexee/regs"
	"github.com/sarchlab/flexee/report"
	"github.com/sarchlab/flexee/sim"
	"github.com/sarchlab/flexee/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	settings       config.Settings
	log            logr.Logger
	freq           sim.Freq
	recording      bool
	outputFileName string
	dataRecorder   datarecording.DataRecorder
	jobTrace       io.Writer
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		settings: config.Defaults(),
		log:      logr.Discard(),
		freq:     1 * sim.MHz,
	}
}

// WithSettings sets the driver, feature and device settings.
func (b Builder) WithSettings(s config.Settings) Builder {
	b.settings = s
	return b
}

// WithLogger sets the logger shared by the driver and the reporters.
func (b Builder) WithLogger(log logr.Logger) Builder {
	b.log = log
	return b
}

// WithFreq sets the frequency at which the driver is ticked.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithRecording records every finished job in a SQLite file.
func (b Builder) WithRecording() Builder {
	b.recording = true
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
// It implies WithRecording.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.recording = true
	b.outputFileName = filename

	return b
}

// WithDataRecorder records jobs into the given recorder instead of a SQLite
// file. The job history is then not served by the monitor.
func (b Builder) WithDataRecorder(r datarecording.DataRecorder) Builder {
	b.recording = true
	b.dataRecorder = r

	return b
}

// WithJobTrace writes every finished job to w as one JSON object per line.
func (b Builder) WithJobTrace(w io.Writer) Builder {
	b.jobTrace = w
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.settings.Config == nil {
		panic("settings without a configuration set")
	}

	if b.freq <= 0 {
		panic("frequency must be positive")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:       xid.New().String(),
		settings: b.settings,
		log:      b.log,
		engine:   sim.NewSerialEngine(),
		device:   ftfc.NewDevice(b.settings.Device),
		registry: prometheus.NewRegistry(),
	}

	s.engine.AcceptHook(sim.NewEventLogger(b.log.V(2)))
	s.ticking = sim.NewTickingComponent("EEP", s.engine, b.freq, nil)

	collector := metrics.New(s.registry)
	reporter := report.Tee{report.NewLogger(b.log), collector}

	s.driver = eep.MakeBuilder().
		WithRegisters(regs.New(s.device)).
		WithFeatures(b.settings.Features).
		WithDevErrorReporter(reporter).
		WithProductionErrorReporter(reporter).
		WithLogger(b.log).
		WithWaker(s.ticking).
		Build("EEP")
	s.ticking.SetTicker(s.driver)
	s.driver.AcceptHook(collector)

	s.totalTracer = tracing.NewTotalTimeTracer(s.engine, nil)
	s.busyTracer = tracing.NewBusyTimeTracer(s.engine, nil)
	s.stepTracer = tracing.NewStepCountTracer(nil)
	tracing.CollectTrace(s.driver, s.totalTracer)
	tracing.CollectTrace(s.driver, s.busyTracer)
	tracing.CollectTrace(s.driver, s.stepTracer)

	if b.jobTrace != nil {
		tracing.CollectTrace(s.driver,
			tracing.NewJSONTracer(s.engine, b.jobTrace))
	}

	if b.recording {
		b.setupRecording(s)
	}

	return s
}

func (b Builder) setupRecording(s *Simulation) {
	s.dataRecorder = b.dataRecorder
	if s.dataRecorder == nil {
		s.outputPath = b.outputFileName
		if s.outputPath == "" {
			s.outputPath = "flexee_sim_" + s.id
		}

		s.dataRecorder = datarecording.New(s.outputPath)
	}

	s.execRecorder = datarecording.NewExecRecorder(s.dataRecorder)
	s.execRecorder.Start()
	s.execRecorder.Set("Simulation ID", s.id)

	env := config.Env(b.settings)
	for _, key := range config.Keys() {
		s.execRecorder.Set(key, env[key])
	}

	s.visTracer = tracing.NewDBTracer(s.engine, s.dataRecorder)
	tracing.CollectTrace(s.driver, s.visTracer)
}
